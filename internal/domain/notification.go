// internal/domain/notification.go
package domain

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// NotificationType enumerates the candidates the rule engine can emit.
type NotificationType string

const (
	NotificationWeekBehindGoal       NotificationType = "WEEK_BEHIND_GOAL"
	NotificationStreakBroken         NotificationType = "STREAK_BROKEN"
	NotificationTodayTrainingReminder NotificationType = "TODAY_TRAINING_REMINDER"
)

// DeliveryStatus tracks one channel's progress for a notification.
type DeliveryStatus string

const (
	DeliveryStatusSent   DeliveryStatus = "SENT"
	DeliveryStatusFailed DeliveryStatus = "FAILED"
)

// Notification is one persisted notification row. (UserID, Type, ScopeKey) is
// unique: duplicate candidates from redundant sweeps collapse into one row.
// Rows are created by the rule engine output and mutated only by the delivery
// services; they are never deleted here.
type Notification struct {
	ID       primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	UserID   primitive.ObjectID `bson:"userId" json:"userId"`
	Type     NotificationType   `bson:"type" json:"type"`
	ScopeKey string             `bson:"scopeKey" json:"scopeKey"` // "week:<date>" or "day:<date>"

	Title   string            `bson:"title" json:"title"`
	Message string            `bson:"message" json:"message"`
	Data    map[string]string `bson:"data,omitempty" json:"data,omitempty"`

	EmailStatus       DeliveryStatus `bson:"emailStatus,omitempty" json:"emailStatus,omitempty"`
	EmailAttemptCount int            `bson:"emailAttemptCount" json:"emailAttemptCount"`
	EmailSentAt       *time.Time     `bson:"emailSentAt,omitempty" json:"emailSentAt,omitempty"`
	EmailLastError    string         `bson:"emailLastError,omitempty" json:"emailLastError,omitempty"`

	PushStatus       DeliveryStatus `bson:"pushStatus,omitempty" json:"pushStatus,omitempty"`
	PushAttemptCount int            `bson:"pushAttemptCount" json:"pushAttemptCount"`
	PushSentAt       *time.Time     `bson:"pushSentAt,omitempty" json:"pushSentAt,omitempty"`
	PushLastError    string         `bson:"pushLastError,omitempty" json:"pushLastError,omitempty"`

	CreatedAt time.Time `bson:"createdAt" json:"createdAt"`
	UpdatedAt time.Time `bson:"updatedAt" json:"updatedAt"`
}

// PushSubscription is one browser/device web-push registration. The endpoint is
// unique; the push delivery service deletes subscriptions the transport reports
// as permanently gone.
type PushSubscription struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	UserID    primitive.ObjectID `bson:"userId" json:"userId"`
	Endpoint  string             `bson:"endpoint" json:"endpoint"`
	P256dh    string             `bson:"p256dh" json:"p256dh"`
	Auth      string             `bson:"auth" json:"auth"`
	CreatedAt time.Time          `bson:"createdAt" json:"createdAt"`
}
