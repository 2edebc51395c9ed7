package repositories

import (
	"context"
	"fmt"
	"time"

	"gnsons/internal/models"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// MongoCartRepository is a MongoDB implementation of CartRepository.
type MongoCartRepository struct {
	coll *mongo.Collection
}

// NewMongoCartRepository creates a new instance of MongoCartRepository.
func NewMongoCartRepository(db *mongo.Database) *MongoCartRepository {
	return &MongoCartRepository{coll: db.Collection(collCarts)}
}

func (r *MongoCartRepository) GetByUserID(ctx context.Context, userID string) (*models.Cart, error) {
	var cart models.Cart
	if err := r.coll.FindOne(ctx, bson.M{"userId": userID}).Decode(&cart); err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, fmt.Errorf("cart for user %s: %w", userID, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get cart for user %s: %w", userID, err)
	}
	return &cart, nil
}

func (r *MongoCartRepository) Save(ctx context.Context, cart *models.Cart) error {
	now := time.Now()
	if cart.Version == 0 {
		if cart.ID == "" {
			cart.ID = uuid.New().String()
		}
		cart.Version = 1
		cart.UpdatedAt = now
		if _, err := r.coll.InsertOne(ctx, cart); err != nil {
			cart.Version = 0
			if mongo.IsDuplicateKeyError(err) {
				return fmt.Errorf("cart for user %s created concurrently: %w", cart.UserID, ErrVersionConflict)
			}
			return fmt.Errorf("failed to create cart: %w", err)
		}
		return nil
	}

	res, err := r.coll.UpdateOne(ctx,
		bson.M{"_id": cart.ID, "version": cart.Version},
		bson.M{"$set": bson.M{
			"items":     cart.Items,
			"total":     cart.Total,
			"version":   cart.Version + 1,
			"updatedAt": now,
		}})
	if err != nil {
		return fmt.Errorf("failed to update cart: %w", err)
	}
	if res.MatchedCount == 0 {
		return fmt.Errorf("cart %s at version %d: %w", cart.ID, cart.Version, ErrVersionConflict)
	}
	cart.Version++
	cart.UpdatedAt = now
	return nil
}

func (r *MongoCartRepository) Reset(ctx context.Context, userID string) error {
	_, err := r.coll.UpdateOne(ctx,
		bson.M{"userId": userID},
		bson.M{
			"$set":         bson.M{"items": bson.A{}, "total": 0.0, "updatedAt": time.Now()},
			"$inc":         bson.M{"version": 1},
			"$setOnInsert": bson.M{"_id": uuid.New().String()},
		},
		options.Update().SetUpsert(true))
	if err != nil {
		return fmt.Errorf("failed to reset cart for user %s: %w", userID, err)
	}
	return nil
}
