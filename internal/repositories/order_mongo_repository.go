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

// MongoOrderRepository is a MongoDB implementation of OrderRepository.
type MongoOrderRepository struct {
	coll *mongo.Collection
}

// NewMongoOrderRepository creates a new instance of MongoOrderRepository.
func NewMongoOrderRepository(db *mongo.Database) *MongoOrderRepository {
	return &MongoOrderRepository{coll: db.Collection(collOrders)}
}

func (r *MongoOrderRepository) Create(ctx context.Context, order *models.Order) error {
	if order.ID == "" {
		order.ID = uuid.New().String()
	}
	if order.Version == 0 {
		order.Version = 1
	}
	now := time.Now()
	if order.CreatedAt.IsZero() {
		order.CreatedAt = now
	}
	order.UpdatedAt = now
	if _, err := r.coll.InsertOne(ctx, order); err != nil {
		return fmt.Errorf("failed to create order: %w", err)
	}
	return nil
}

func (r *MongoOrderRepository) GetByID(ctx context.Context, id string) (*models.Order, error) {
	var order models.Order
	if err := r.coll.FindOne(ctx, bson.M{"_id": id}).Decode(&order); err != nil {
		return nil, mongoNotFound(err, "order", id)
	}
	return &order, nil
}

func (r *MongoOrderRepository) ListByUser(ctx context.Context, userID string) ([]models.Order, error) {
	return r.find(ctx, bson.M{"userId": userID})
}

func (r *MongoOrderRepository) ListAll(ctx context.Context) ([]models.Order, error) {
	return r.find(ctx, bson.M{})
}

func (r *MongoOrderRepository) find(ctx context.Context, query bson.M) ([]models.Order, error) {
	cur, err := r.coll.Find(ctx, query, newestFirst("createdAt"))
	if err != nil {
		return nil, fmt.Errorf("failed to list orders: %w", err)
	}
	orders := []models.Order{}
	if err := cur.All(ctx, &orders); err != nil {
		return nil, fmt.Errorf("failed to decode orders: %w", err)
	}
	return orders, nil
}

func (r *MongoOrderRepository) UpdateStatus(ctx context.Context, id string, version int64, status models.OrderStatus) error {
	res, err := r.coll.UpdateOne(ctx,
		bson.M{"_id": id, "version": version},
		bson.M{"$set": bson.M{"status": status, "version": version + 1, "updatedAt": time.Now()}})
	if err != nil {
		return fmt.Errorf("failed to update order status for order %s: %w", id, err)
	}
	if res.MatchedCount > 0 {
		return nil
	}
	n, err := r.coll.CountDocuments(ctx, bson.M{"_id": id})
	if err != nil {
		return fmt.Errorf("failed to check order %s: %w", id, err)
	}
	if n == 0 {
		return fmt.Errorf("order with ID %s: %w", id, ErrNotFound)
	}
	return fmt.Errorf("order %s at version %d: %w", id, version, ErrVersionConflict)
}
