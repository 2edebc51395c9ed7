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

// MongoMessageRepository is a MongoDB implementation of MessageRepository.
type MongoMessageRepository struct {
	coll *mongo.Collection
}

// NewMongoMessageRepository creates a new instance of MongoMessageRepository.
func NewMongoMessageRepository(db *mongo.Database) *MongoMessageRepository {
	return &MongoMessageRepository{coll: db.Collection(collMessages)}
}

func (r *MongoMessageRepository) Create(ctx context.Context, msg *models.Message) error {
	if msg.ID == "" {
		msg.ID = uuid.New().String()
	}
	if msg.Timestamp.IsZero() {
		msg.Timestamp = time.Now()
	}
	if _, err := r.coll.InsertOne(ctx, msg); err != nil {
		return fmt.Errorf("failed to create message: %w", err)
	}
	return nil
}

func (r *MongoMessageRepository) ListByConversation(ctx context.Context, conversationID string) ([]models.Message, error) {
	opts := options.Find().SetSort(bson.D{{Key: "timestamp", Value: 1}})
	return r.find(ctx, bson.M{"conversationId": conversationID}, opts)
}

func (r *MongoMessageRepository) ListAll(ctx context.Context) ([]models.Message, error) {
	return r.find(ctx, bson.M{}, newestFirst("timestamp"))
}

func (r *MongoMessageRepository) find(ctx context.Context, query bson.M, opts *options.FindOptions) ([]models.Message, error) {
	cur, err := r.coll.Find(ctx, query, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to list messages: %w", err)
	}
	msgs := []models.Message{}
	if err := cur.All(ctx, &msgs); err != nil {
		return nil, fmt.Errorf("failed to decode messages: %w", err)
	}
	return msgs, nil
}

func (r *MongoMessageRepository) MarkRead(ctx context.Context, id string, at time.Time) error {
	res, err := r.coll.UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$set": bson.M{"isRead": true, "readAt": at}})
	return matchedOrNotFound(res, err, "message", id)
}

func (r *MongoMessageRepository) Delete(ctx context.Context, id string) error {
	res, err := r.coll.DeleteOne(ctx, bson.M{"_id": id})
	return deletedOrNotFound(res, err, "message", id)
}
