package repositories

import (
	"context"
	"fmt"
	"time"

	"gnsons/internal/models"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// Supported storage drivers.
const (
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
	DriverMongo    = "mongo"
)

// Options selects and locates the backing database.
type Options struct {
	Driver        string
	DSN           string
	MongoURI      string
	MongoDatabase string
	// Attempts is the number of connection tries before giving up.
	Attempts int
	// Backoff is multiplied by the attempt number between tries.
	Backoff time.Duration
}

// Store bundles one repository per collection over a single connection pool.
type Store struct {
	Admins   AdminRepository
	Products ProductRepository
	Carts    CartRepository
	Orders   OrderRepository
	Messages MessageRepository
	Contacts ContactRepository

	close func(ctx context.Context) error
}

// Close releases the underlying connection pool.
func (s *Store) Close(ctx context.Context) error {
	if s.close == nil {
		return nil
	}
	return s.close(ctx)
}

// Open connects to the configured database, retrying with linearly increasing
// backoff. It returns the last connection error once all attempts are spent.
func Open(ctx context.Context, opts Options, log *zap.Logger) (*Store, error) {
	attempts := opts.Attempts
	if attempts < 1 {
		attempts = 1
	}

	var lastErr error
	for attempt := 1; attempt <= attempts; attempt++ {
		log.Info("Connecting to database",
			zap.String("driver", opts.Driver),
			zap.Int("attempt", attempt),
			zap.Int("max_attempts", attempts))

		store, err := connect(ctx, opts)
		if err == nil {
			log.Info("Database connected", zap.String("driver", opts.Driver))
			return store, nil
		}
		lastErr = err
		log.Error("Database connection attempt failed", zap.Int("attempt", attempt), zap.Error(err))

		if attempt < attempts {
			wait := time.Duration(attempt) * opts.Backoff
			log.Info("Retrying database connection", zap.Duration("wait", wait))
			select {
			case <-time.After(wait):
			case <-ctx.Done():
				return nil, ctx.Err()
			}
		}
	}
	return nil, fmt.Errorf("failed to connect to %s after %d attempts: %w", opts.Driver, attempts, lastErr)
}

func connect(ctx context.Context, opts Options) (*Store, error) {
	switch opts.Driver {
	case DriverPostgres:
		return openGORM(ctx, postgres.Open(opts.DSN))
	case DriverSQLite:
		return openGORM(ctx, sqlite.Open(opts.DSN))
	case DriverMongo:
		return openMongo(ctx, opts)
	default:
		return nil, fmt.Errorf("unsupported database driver %q", opts.Driver)
	}
}

func openGORM(ctx context.Context, dialector gorm.Dialector) (*Store, error) {
	db, err := gorm.Open(dialector, &gorm.Config{
		TranslateError: true,
		Logger:         gormlogger.Default.LogMode(gormlogger.Warn),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to access connection pool: %w", err)
	}
	sqlDB.SetMaxOpenConns(10)
	sqlDB.SetMaxIdleConns(2)
	if err := sqlDB.PingContext(ctx); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}
	if err := AutoMigrate(db); err != nil {
		_ = sqlDB.Close()
		return nil, err
	}

	store := NewGORMStore(db)
	store.close = func(context.Context) error { return sqlDB.Close() }
	return store, nil
}

// AutoMigrate creates or updates every table the GORM repositories use.
func AutoMigrate(db *gorm.DB) error {
	err := db.AutoMigrate(
		&models.Admin{},
		&models.Product{},
		&models.Cart{},
		&models.Order{},
		&models.Message{},
		&models.Contact{},
	)
	if err != nil {
		return fmt.Errorf("failed to migrate database: %w", err)
	}
	return nil
}

// NewGORMStore wires the GORM repositories over db.
func NewGORMStore(db *gorm.DB) *Store {
	return &Store{
		Admins:   NewGORMAdminRepository(db),
		Products: NewGORMProductRepository(db),
		Carts:    NewGORMCartRepository(db),
		Orders:   NewGORMOrderRepository(db),
		Messages: NewGORMMessageRepository(db),
		Contacts: NewGORMContactRepository(db),
	}
}

func openMongo(ctx context.Context, opts Options) (*Store, error) {
	clientOpts := options.Client().
		ApplyURI(opts.MongoURI).
		SetAppName("GN-SONS-Backend").
		SetMaxPoolSize(10).
		SetMinPoolSize(2).
		SetServerSelectionTimeout(10 * time.Second).
		SetRetryWrites(true).
		SetRetryReads(true)

	client, err := mongo.Connect(ctx, clientOpts)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to MongoDB: %w", err)
	}
	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(ctx)
		return nil, fmt.Errorf("failed to ping MongoDB: %w", err)
	}

	db := client.Database(opts.MongoDatabase)
	if err := EnsureMongoIndexes(ctx, db); err != nil {
		_ = client.Disconnect(ctx)
		return nil, err
	}

	store := NewMongoStore(db)
	store.close = client.Disconnect
	return store, nil
}

// NewMongoStore wires the MongoDB repositories over db.
func NewMongoStore(db *mongo.Database) *Store {
	return &Store{
		Admins:   NewMongoAdminRepository(db),
		Products: NewMongoProductRepository(db),
		Carts:    NewMongoCartRepository(db),
		Orders:   NewMongoOrderRepository(db),
		Messages: NewMongoMessageRepository(db),
		Contacts: NewMongoContactRepository(db),
	}
}
