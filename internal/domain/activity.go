// internal/domain/activity.go
package domain

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// TrainingLog records one training activity entry. Logs are immutable once
// written; the logging collaborator owns creation.
type TrainingLog struct {
	ID         primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	UserID     primitive.ObjectID `bson:"userId" json:"userId"`
	OccurredAt time.Time          `bson:"occurredAt" json:"occurredAt"`
	Completed  bool               `bson:"completed" json:"completed"`
	Notes      string             `bson:"notes,omitempty" json:"notes,omitempty"`
	CreatedAt  time.Time          `bson:"createdAt" json:"createdAt"`
}

// NutritionLog records one meal entry and whether it followed the plan.
type NutritionLog struct {
	ID           primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	UserID       primitive.ObjectID `bson:"userId" json:"userId"`
	OccurredAt   time.Time          `bson:"occurredAt" json:"occurredAt"`
	FollowedPlan bool               `bson:"followedPlan" json:"followedPlan"`
	CreatedAt    time.Time          `bson:"createdAt" json:"createdAt"`
}
