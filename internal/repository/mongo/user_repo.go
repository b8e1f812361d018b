// internal/repository/mongo/user_repo.go
package mongo

import (
	"context"
	"errors"

	"vitacoach/adherence-app/internal/domain"
	"vitacoach/adherence-app/internal/repository"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const userCollectionName = "users"

// mongoUserRepository implements repository.UserRepository
type mongoUserRepository struct {
	collection *mongo.Collection
}

// NewMongoUserRepository creates a new User repository.
func NewMongoUserRepository(db *mongo.Database) repository.UserRepository {
	return &mongoUserRepository{
		collection: db.Collection(userCollectionName),
	}
}

func (r *mongoUserRepository) GetByID(ctx context.Context, id primitive.ObjectID) (*domain.User, error) {
	var user domain.User
	err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&user)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}
	return &user, nil
}

func (r *mongoUserRepository) ListWithProfile(ctx context.Context) ([]domain.User, error) {
	return r.list(ctx, bson.M{"hasProfile": true})
}

func (r *mongoUserRepository) ListByEmailHour(ctx context.Context, hourUTC int) ([]domain.User, error) {
	filter := bson.M{
		"preferences.emailEnabled": true,
		"preferences.emailHourUtc": hourUTC,
	}
	return r.list(ctx, filter)
}

func (r *mongoUserRepository) ListPushEnabled(ctx context.Context) ([]domain.User, error) {
	return r.list(ctx, bson.M{"preferences.pushEnabled": true})
}

func (r *mongoUserRepository) list(ctx context.Context, filter bson.M) ([]domain.User, error) {
	var users []domain.User
	cursor, err := r.collection.Find(ctx, filter)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	if err = cursor.All(ctx, &users); err != nil {
		return nil, err
	}
	if err = cursor.Err(); err != nil {
		return nil, err
	}
	return users, nil
}

// EnsureUserIndexes creates necessary indexes. Call during startup.
func EnsureUserIndexes(ctx context.Context, collection *mongo.Collection) {
	indexes := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "email", Value: 1}},
			Options: options.Index().SetUnique(true).SetSparse(true),
		},
		{
			// Email delivery eligibility scan runs every hour.
			Keys:    bson.D{{Key: "preferences.emailEnabled", Value: 1}, {Key: "preferences.emailHourUtc", Value: 1}},
			Options: options.Index(),
		},
		{
			Keys:    bson.D{{Key: "hasProfile", Value: 1}},
			Options: options.Index(),
		},
	}
	_, err := collection.Indexes().CreateMany(ctx, indexes)
	if err != nil {
		// log.Printf("WARN: Failed to create indexes for collection %s: %v", collection.Name(), err)
	}
}
