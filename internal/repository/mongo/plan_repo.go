// internal/repository/mongo/plan_repo.go
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

const planCollectionName = "weekly_plans"

// mongoPlanRepository implements repository.PlanRepository
type mongoPlanRepository struct {
	collection *mongo.Collection
}

// NewMongoPlanRepository creates a new WeeklyPlan repository.
func NewMongoPlanRepository(db *mongo.Database) repository.PlanRepository {
	return &mongoPlanRepository{
		collection: db.Collection(planCollectionName),
	}
}

func (r *mongoPlanRepository) GetByUserAndWeek(ctx context.Context, userID primitive.ObjectID, weekStart time.Time) (*domain.WeeklyPlan, error) {
	var plan domain.WeeklyPlan
	filter := bson.M{"userId": userID, "weekStart": weekStart.UTC()}
	err := r.collection.FindOne(ctx, filter).Decode(&plan)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}
	return &plan, nil
}

// ClaimRegeneration is the lock acquisition. The filter admits the row only
// when it is unlocked or the previous lock went stale; the affected count is
// the claim signal, so a zero simply means another worker won the race.
func (r *mongoPlanRepository) ClaimRegeneration(ctx context.Context, userID primitive.ObjectID, weekStart time.Time, lockID string, now, staleBefore time.Time) (bool, error) {
	filter := bson.M{
		"userId":    userID,
		"weekStart": weekStart.UTC(),
		"$or": bson.A{
			bson.M{"regenLockedAt": nil},
			bson.M{"regenLockedAt": bson.M{"$exists": false}},
			bson.M{"regenLockedAt": bson.M{"$lt": staleBefore.UTC()}},
		},
	}
	update := bson.M{
		"$set": bson.M{
			"regenLockId":   lockID,
			"regenLockedAt": now.UTC(),
		},
	}

	result, err := r.collection.UpdateOne(ctx, filter, update)
	if err != nil {
		return false, err
	}
	return result.ModifiedCount == 1, nil
}

// ReleaseRegeneration clears the lock fields only while they still hold this
// worker's token. If the lock went stale and was re-claimed, the filter does
// not match and the newer claim survives.
func (r *mongoPlanRepository) ReleaseRegeneration(ctx context.Context, userID primitive.ObjectID, weekStart time.Time, lockID string) error {
	filter := bson.M{
		"userId":      userID,
		"weekStart":   weekStart.UTC(),
		"regenLockId": lockID,
	}
	update := bson.M{
		"$set": bson.M{
			"regenLockId":   nil,
			"regenLockedAt": nil,
		},
	}

	_, err := r.collection.UpdateOne(ctx, filter, update)
	return err
}

// EnsurePlanIndexes creates necessary indexes. Call during startup.
func EnsurePlanIndexes(ctx context.Context, collection *mongo.Collection) {
	indexes := []mongo.IndexModel{
		{
			// One plan row per user-week; also backs the lock claim filter.
			Keys:    bson.D{{Key: "userId", Value: 1}, {Key: "weekStart", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
	}
	_, err := collection.Indexes().CreateMany(ctx, indexes)
	if err != nil {
		// log.Printf("WARN: Failed to create indexes for collection %s: %v", collection.Name(), err)
	}
}
