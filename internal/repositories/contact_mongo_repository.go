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

// MongoContactRepository is a MongoDB implementation of ContactRepository.
type MongoContactRepository struct {
	coll *mongo.Collection
}

// NewMongoContactRepository creates a new instance of MongoContactRepository.
func NewMongoContactRepository(db *mongo.Database) *MongoContactRepository {
	return &MongoContactRepository{coll: db.Collection(collContacts)}
}

func (r *MongoContactRepository) Create(ctx context.Context, contact *models.Contact) error {
	if contact.ID == "" {
		contact.ID = uuid.New().String()
	}
	now := time.Now()
	if contact.CreatedAt.IsZero() {
		contact.CreatedAt = now
	}
	contact.UpdatedAt = now
	if _, err := r.coll.InsertOne(ctx, contact); err != nil {
		return fmt.Errorf("failed to create contact: %w", err)
	}
	return nil
}

func (r *MongoContactRepository) ListAll(ctx context.Context) ([]models.Contact, error) {
	cur, err := r.coll.Find(ctx, bson.M{}, newestFirst("createdAt"))
	if err != nil {
		return nil, fmt.Errorf("failed to list contacts: %w", err)
	}
	contacts := []models.Contact{}
	if err := cur.All(ctx, &contacts); err != nil {
		return nil, fmt.Errorf("failed to decode contacts: %w", err)
	}
	return contacts, nil
}

func (r *MongoContactRepository) UpdateStatus(ctx context.Context, id string, status models.ContactStatus) error {
	res, err := r.coll.UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$set": bson.M{"status": status, "updatedAt": time.Now()}})
	return matchedOrNotFound(res, err, "contact", id)
}
