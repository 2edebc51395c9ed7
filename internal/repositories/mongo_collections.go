package repositories

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// Collection names shared by the MongoDB repositories.
const (
	collAdmins   = "admins"
	collProducts = "products"
	collCarts    = "carts"
	collOrders   = "orders"
	collMessages = "messages"
	collContacts = "contacts"
)

// EnsureMongoIndexes creates the unique and lookup indexes the repositories rely on.
func EnsureMongoIndexes(ctx context.Context, db *mongo.Database) error {
	indexes := map[string][]mongo.IndexModel{
		collAdmins: {
			{Keys: bson.D{{Key: "email", Value: 1}}, Options: options.Index().SetUnique(true)},
		},
		collCarts: {
			{Keys: bson.D{{Key: "userId", Value: 1}}, Options: options.Index().SetUnique(true)},
		},
		collOrders: {
			{Keys: bson.D{{Key: "userId", Value: 1}, {Key: "createdAt", Value: -1}}},
			{Keys: bson.D{{Key: "createdAt", Value: -1}}},
		},
		collMessages: {
			{Keys: bson.D{{Key: "conversationId", Value: 1}, {Key: "timestamp", Value: 1}}},
		},
		collProducts: {
			{Keys: bson.D{{Key: "category", Value: 1}}},
		},
	}
	for coll, models := range indexes {
		if _, err := db.Collection(coll).Indexes().CreateMany(ctx, models); err != nil {
			return fmt.Errorf("failed to create indexes on %s: %w", coll, err)
		}
	}
	return nil
}

func mongoNotFound(err error, kind, id string) error {
	if err == mongo.ErrNoDocuments {
		return fmt.Errorf("%s with ID %s: %w", kind, id, ErrNotFound)
	}
	return fmt.Errorf("failed to get %s %s: %w", kind, id, err)
}

func matchedOrNotFound(res *mongo.UpdateResult, err error, kind, id string) error {
	if err != nil {
		return fmt.Errorf("failed to update %s %s: %w", kind, id, err)
	}
	if res.MatchedCount == 0 {
		return fmt.Errorf("%s with ID %s: %w", kind, id, ErrNotFound)
	}
	return nil
}

func deletedOrNotFound(res *mongo.DeleteResult, err error, kind, id string) error {
	if err != nil {
		return fmt.Errorf("failed to delete %s %s: %w", kind, id, err)
	}
	if res.DeletedCount == 0 {
		return fmt.Errorf("%s with ID %s: %w", kind, id, ErrNotFound)
	}
	return nil
}

func newestFirst(field string) *options.FindOptions {
	return options.Find().SetSort(bson.D{{Key: field, Value: -1}})
}
