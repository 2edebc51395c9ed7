package repositories

import (
	"context"
	"fmt"
	"time"

	"gnsons/internal/models"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

// MongoAdminRepository is a MongoDB implementation of AdminRepository.
type MongoAdminRepository struct {
	coll *mongo.Collection
}

// NewMongoAdminRepository creates a new instance of MongoAdminRepository.
func NewMongoAdminRepository(db *mongo.Database) *MongoAdminRepository {
	return &MongoAdminRepository{coll: db.Collection(collAdmins)}
}

func (r *MongoAdminRepository) Create(ctx context.Context, admin *models.Admin) error {
	if admin.ID == "" {
		admin.ID = uuid.New().String()
	}
	if admin.CreatedAt.IsZero() {
		admin.CreatedAt = time.Now()
	}
	if _, err := r.coll.InsertOne(ctx, admin); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return fmt.Errorf("admin %s: %w", admin.Email, ErrDuplicate)
		}
		return fmt.Errorf("failed to create admin: %w", err)
	}
	return nil
}

func (r *MongoAdminRepository) GetByID(ctx context.Context, id string) (*models.Admin, error) {
	var admin models.Admin
	if err := r.coll.FindOne(ctx, bson.M{"_id": id}).Decode(&admin); err != nil {
		return nil, mongoNotFound(err, "admin", id)
	}
	return &admin, nil
}

func (r *MongoAdminRepository) GetByEmail(ctx context.Context, email string) (*models.Admin, error) {
	var admin models.Admin
	if err := r.coll.FindOne(ctx, bson.M{"email": email}).Decode(&admin); err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, fmt.Errorf("admin with email %s: %w", email, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get admin by email %s: %w", email, err)
	}
	return &admin, nil
}

func (r *MongoAdminRepository) UpdateLastLogin(ctx context.Context, id string, at time.Time) error {
	res, err := r.coll.UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$set": bson.M{"lastLogin": at}})
	return matchedOrNotFound(res, err, "admin", id)
}

func (r *MongoAdminRepository) Delete(ctx context.Context, id string) error {
	res, err := r.coll.DeleteOne(ctx, bson.M{"_id": id})
	return deletedOrNotFound(res, err, "admin", id)
}
