// internal/repository/mongo/activity_repo.go
package mongo

import (
	"context"
	"time"

	"vitacoach/adherence-app/internal/domain"
	"vitacoach/adherence-app/internal/repository"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const (
	trainingLogCollectionName  = "training_logs"
	nutritionLogCollectionName = "nutrition_logs"
)

// mongoActivityLogRepository implements repository.ActivityLogRepository
type mongoActivityLogRepository struct {
	trainingColl  *mongo.Collection
	nutritionColl *mongo.Collection
}

// NewMongoActivityLogRepository creates a new activity log repository over both
// log collections. Logs are written by the logging collaborator; this
// repository only reads.
func NewMongoActivityLogRepository(db *mongo.Database) repository.ActivityLogRepository {
	return &mongoActivityLogRepository{
		trainingColl:  db.Collection(trainingLogCollectionName),
		nutritionColl: db.Collection(nutritionLogCollectionName),
	}
}

func (r *mongoActivityLogRepository) TrainingLogsInRange(ctx context.Context, userID primitive.ObjectID, from, to time.Time) ([]domain.TrainingLog, error) {
	var logs []domain.TrainingLog
	cursor, err := r.trainingColl.Find(ctx, rangeFilter(userID, from, to), options.Find().SetSort(bson.D{{Key: "occurredAt", Value: 1}}))
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	if err = cursor.All(ctx, &logs); err != nil {
		return nil, err
	}
	if err = cursor.Err(); err != nil {
		return nil, err
	}
	return logs, nil
}

func (r *mongoActivityLogRepository) NutritionLogsInRange(ctx context.Context, userID primitive.ObjectID, from, to time.Time) ([]domain.NutritionLog, error) {
	var logs []domain.NutritionLog
	cursor, err := r.nutritionColl.Find(ctx, rangeFilter(userID, from, to), options.Find().SetSort(bson.D{{Key: "occurredAt", Value: 1}}))
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	if err = cursor.All(ctx, &logs); err != nil {
		return nil, err
	}
	if err = cursor.Err(); err != nil {
		return nil, err
	}
	return logs, nil
}

// rangeFilter matches logs inside [from, to) for one user.
func rangeFilter(userID primitive.ObjectID, from, to time.Time) bson.M {
	return bson.M{
		"userId": userID,
		"occurredAt": bson.M{
			"$gte": from.UTC(),
			"$lt":  to.UTC(),
		},
	}
}

// EnsureActivityLogIndexes creates necessary indexes on both collections.
func EnsureActivityLogIndexes(ctx context.Context, trainingColl, nutritionColl *mongo.Collection) {
	indexes := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "userId", Value: 1}, {Key: "occurredAt", Value: 1}},
			Options: options.Index(),
		},
	}
	if _, err := trainingColl.Indexes().CreateMany(ctx, indexes); err != nil {
		// log.Printf("WARN: Failed to create indexes for collection %s: %v", trainingColl.Name(), err)
	}
	if _, err := nutritionColl.Indexes().CreateMany(ctx, indexes); err != nil {
		// log.Printf("WARN: Failed to create indexes for collection %s: %v", nutritionColl.Name(), err)
	}
}
