// internal/repository/mongo/notification_repo.go
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

const notificationCollectionName = "notifications"

// mongoNotificationRepository implements repository.NotificationRepository
type mongoNotificationRepository struct {
	collection *mongo.Collection
}

// NewMongoNotificationRepository creates a new Notification repository.
func NewMongoNotificationRepository(db *mongo.Database) repository.NotificationRepository {
	return &mongoNotificationRepository{
		collection: db.Collection(notificationCollectionName),
	}
}

// CreateIfAbsent inserts the row and treats a duplicate-key error on the
// (userId, type, scopeKey) unique index as "already exists", not a failure.
// This is what lets redundant rule-engine runs stay idempotent.
func (r *mongoNotificationRepository) CreateIfAbsent(ctx context.Context, n *domain.Notification) (bool, error) {
	if n.UserID == primitive.NilObjectID || n.Type == "" || n.ScopeKey == "" {
		return false, errors.New("notification requires userId, type, and scopeKey")
	}
	n.ID = primitive.NewObjectID()
	now := time.Now().UTC()
	n.CreatedAt = now
	n.UpdatedAt = now

	_, err := r.collection.InsertOne(ctx, n)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

func (r *mongoNotificationRepository) ListEmailPending(ctx context.Context, userID primitive.ObjectID, since time.Time, maxAttempts int) ([]domain.Notification, error) {
	filter := bson.M{
		"userId":            userID,
		"createdAt":         bson.M{"$gte": since.UTC()},
		"emailStatus":       bson.M{"$ne": domain.DeliveryStatusSent},
		"emailAttemptCount": bson.M{"$lt": maxAttempts},
	}
	return r.list(ctx, filter)
}

func (r *mongoNotificationRepository) ListPushPending(ctx context.Context, userID primitive.ObjectID, maxAttempts int) ([]domain.Notification, error) {
	filter := bson.M{
		"userId":           userID,
		"pushStatus":       bson.M{"$ne": domain.DeliveryStatusSent},
		"pushAttemptCount": bson.M{"$lt": maxAttempts},
	}
	return r.list(ctx, filter)
}

func (r *mongoNotificationRepository) list(ctx context.Context, filter bson.M) ([]domain.Notification, error) {
	var notifications []domain.Notification
	cursor, err := r.collection.Find(ctx, filter, options.Find().SetSort(bson.D{{Key: "createdAt", Value: 1}}))
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	if err = cursor.All(ctx, &notifications); err != nil {
		return nil, err
	}
	if err = cursor.Err(); err != nil {
		return nil, err
	}
	return notifications, nil
}

// ClaimEmailAttempt is the send-attempt reservation: a conditional increment
// whose affected count tells this worker whether it won the row. A false
// return means a concurrent worker already moved the counter (or sent it).
func (r *mongoNotificationRepository) ClaimEmailAttempt(ctx context.Context, id primitive.ObjectID, expectedAttempts int) (bool, error) {
	filter := bson.M{
		"_id":               id,
		"emailAttemptCount": expectedAttempts,
		"emailStatus":       bson.M{"$ne": domain.DeliveryStatusSent},
	}
	update := bson.M{
		"$inc": bson.M{"emailAttemptCount": 1},
		"$set": bson.M{"updatedAt": time.Now().UTC()},
	}

	result, err := r.collection.UpdateOne(ctx, filter, update)
	if err != nil {
		return false, err
	}
	return result.ModifiedCount == 1, nil
}

func (r *mongoNotificationRepository) MarkEmailSent(ctx context.Context, id primitive.ObjectID, at time.Time) error {
	update := bson.M{
		"$set": bson.M{
			"emailStatus":    domain.DeliveryStatusSent,
			"emailSentAt":    at.UTC(),
			"emailLastError": "",
			"updatedAt":      time.Now().UTC(),
		},
	}
	return r.updateByID(ctx, id, update)
}

func (r *mongoNotificationRepository) MarkEmailFailed(ctx context.Context, id primitive.ObjectID, errMsg string) error {
	update := bson.M{
		"$set": bson.M{
			"emailStatus":    domain.DeliveryStatusFailed,
			"emailLastError": errMsg,
			"updatedAt":      time.Now().UTC(),
		},
	}
	return r.updateByID(ctx, id, update)
}

func (r *mongoNotificationRepository) ClaimPushAttempt(ctx context.Context, id primitive.ObjectID, expectedAttempts int) (bool, error) {
	filter := bson.M{
		"_id":              id,
		"pushAttemptCount": expectedAttempts,
		"pushStatus":       bson.M{"$ne": domain.DeliveryStatusSent},
	}
	update := bson.M{
		"$inc": bson.M{"pushAttemptCount": 1},
		"$set": bson.M{"updatedAt": time.Now().UTC()},
	}

	result, err := r.collection.UpdateOne(ctx, filter, update)
	if err != nil {
		return false, err
	}
	return result.ModifiedCount == 1, nil
}

func (r *mongoNotificationRepository) MarkPushSent(ctx context.Context, id primitive.ObjectID, at time.Time) error {
	update := bson.M{
		"$set": bson.M{
			"pushStatus":    domain.DeliveryStatusSent,
			"pushSentAt":    at.UTC(),
			"pushLastError": "",
			"updatedAt":     time.Now().UTC(),
		},
	}
	return r.updateByID(ctx, id, update)
}

func (r *mongoNotificationRepository) MarkPushFailed(ctx context.Context, id primitive.ObjectID, errMsg string) error {
	update := bson.M{
		"$set": bson.M{
			"pushStatus":    domain.DeliveryStatusFailed,
			"pushLastError": errMsg,
			"updatedAt":     time.Now().UTC(),
		},
	}
	return r.updateByID(ctx, id, update)
}

func (r *mongoNotificationRepository) updateByID(ctx context.Context, id primitive.ObjectID, update bson.M) error {
	result, err := r.collection.UpdateOne(ctx, bson.M{"_id": id}, update)
	if err != nil {
		return err
	}
	if result.MatchedCount == 0 {
		return repository.ErrNotFound
	}
	return nil
}

// EnsureNotificationIndexes creates necessary indexes. The unique compound
// index is the idempotency key for candidate creation.
func EnsureNotificationIndexes(ctx context.Context, collection *mongo.Collection) {
	indexes := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "userId", Value: 1}, {Key: "type", Value: 1}, {Key: "scopeKey", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
		{
			Keys:    bson.D{{Key: "userId", Value: 1}, {Key: "createdAt", Value: 1}},
			Options: options.Index(),
		},
	}
	_, err := collection.Indexes().CreateMany(ctx, indexes)
	if err != nil {
		// log.Printf("WARN: Failed to create indexes for collection %s: %v", collection.Name(), err)
	}
}
