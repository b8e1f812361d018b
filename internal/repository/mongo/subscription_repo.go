// internal/repository/mongo/subscription_repo.go
package mongo

import (
	"context"
	"errors"
	"time"

	"vitacoach/adherence-app/internal/domain"
	"vitacoach/adherence-app/internal/repository"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const subscriptionCollectionName = "push_subscriptions"

// mongoSubscriptionRepository implements repository.SubscriptionRepository
type mongoSubscriptionRepository struct {
	collection *mongo.Collection
}

// NewMongoSubscriptionRepository creates a new PushSubscription repository.
func NewMongoSubscriptionRepository(db *mongo.Database) repository.SubscriptionRepository {
	return &mongoSubscriptionRepository{
		collection: db.Collection(subscriptionCollectionName),
	}
}

// Upsert stores the subscription keyed on its endpoint. Re-subscribing from
// the same browser refreshes the keys instead of duplicating the row.
func (r *mongoSubscriptionRepository) Upsert(ctx context.Context, sub *domain.PushSubscription) error {
	if sub.UserID == primitive.NilObjectID || sub.Endpoint == "" {
		return errors.New("subscription requires userId and endpoint")
	}

	filter := bson.M{"endpoint": sub.Endpoint}
	update := bson.M{
		"$set": bson.M{
			"userId": sub.UserID,
			"p256dh": sub.P256dh,
			"auth":   sub.Auth,
		},
		"$setOnInsert": bson.M{
			"createdAt": time.Now().UTC(),
		},
	}

	_, err := r.collection.UpdateOne(ctx, filter, update, options.Update().SetUpsert(true))
	return err
}

func (r *mongoSubscriptionRepository) ListByUser(ctx context.Context, userID primitive.ObjectID) ([]domain.PushSubscription, error) {
	var subs []domain.PushSubscription
	cursor, err := r.collection.Find(ctx, bson.M{"userId": userID})
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	if err = cursor.All(ctx, &subs); err != nil {
		return nil, err
	}
	if err = cursor.Err(); err != nil {
		return nil, err
	}
	return subs, nil
}

// DeleteByEndpoint removes a subscription the transport reported as gone.
// Deleting an already-deleted endpoint is not an error.
func (r *mongoSubscriptionRepository) DeleteByEndpoint(ctx context.Context, endpoint string) error {
	_, err := r.collection.DeleteOne(ctx, bson.M{"endpoint": endpoint})
	if err != nil {
		return repository.ErrDeleteFailed
	}
	return nil
}

// EnsureSubscriptionIndexes creates necessary indexes. Call during startup.
func EnsureSubscriptionIndexes(ctx context.Context, collection *mongo.Collection) {
	indexes := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "endpoint", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
		{
			Keys:    bson.D{{Key: "userId", Value: 1}},
			Options: options.Index(),
		},
	}
	_, err := collection.Indexes().CreateMany(ctx, indexes)
	if err != nil {
		// log.Printf("WARN: Failed to create indexes for collection %s: %v", collection.Name(), err)
	}
}
