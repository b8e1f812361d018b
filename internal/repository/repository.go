package repository

import (
	"context"
	"time"

	"vitacoach/adherence-app/internal/domain"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Error constants for the repository layer.
var (
	ErrNotFound     = RepositoryError("not found")
	ErrUpdateFailed = RepositoryError("update failed")
	ErrDeleteFailed = RepositoryError("delete failed")
)

// RepositoryError helps distinguish repository errors.
type RepositoryError string

func (e RepositoryError) Error() string {
	return string(e)
}

// UserRepository reads user accounts and their notification preferences.
// Account creation and editing belong to the identity collaborator.
type UserRepository interface {
	GetByID(ctx context.Context, id primitive.ObjectID) (*domain.User, error)
	// ListWithProfile returns every user eligible for the regeneration sweep.
	ListWithProfile(ctx context.Context) ([]domain.User, error)
	// ListByEmailHour returns email-enabled users whose preferred UTC hour matches.
	ListByEmailHour(ctx context.Context, hourUTC int) ([]domain.User, error)
	// ListPushEnabled returns users with push delivery switched on.
	ListPushEnabled(ctx context.Context) ([]domain.User, error)
}

// PlanRepository reads plan snapshots and owns the regeneration lock fields.
// Plan content is written by the plan-management collaborator; this service
// only ever touches regenLockId/regenLockedAt.
type PlanRepository interface {
	GetByUserAndWeek(ctx context.Context, userID primitive.ObjectID, weekStart time.Time) (*domain.WeeklyPlan, error)

	// ClaimRegeneration atomically sets the lock token and timestamp on the
	// user's plan row for the week, but only when the row is unlocked or the
	// existing lock is older than staleBefore. Returns false when another
	// worker holds a fresh lock; that is a race loss, not an error.
	ClaimRegeneration(ctx context.Context, userID primitive.ObjectID, weekStart time.Time, lockID string, now, staleBefore time.Time) (bool, error)

	// ReleaseRegeneration clears both lock fields, but only while they still
	// carry this worker's token. Releasing a lock stolen after going stale is
	// a no-op.
	ReleaseRegeneration(ctx context.Context, userID primitive.ObjectID, weekStart time.Time, lockID string) error
}

// ActivityLogRepository reads immutable training and nutrition logs.
type ActivityLogRepository interface {
	TrainingLogsInRange(ctx context.Context, userID primitive.ObjectID, from, to time.Time) ([]domain.TrainingLog, error)
	NutritionLogsInRange(ctx context.Context, userID primitive.ObjectID, from, to time.Time) ([]domain.NutritionLog, error)
}

// NotificationRepository persists notification rows and implements the
// claim-by-conditional-update discipline both delivery channels rely on.
type NotificationRepository interface {
	// CreateIfAbsent inserts the notification unless a row with the same
	// (userId, type, scopeKey) already exists. Returns false on conflict.
	CreateIfAbsent(ctx context.Context, n *domain.Notification) (bool, error)

	// ListEmailPending returns the user's rows not yet SENT over email, with
	// fewer than maxAttempts attempts, created at or after since.
	ListEmailPending(ctx context.Context, userID primitive.ObjectID, since time.Time, maxAttempts int) ([]domain.Notification, error)

	// ClaimEmailAttempt increments the email attempt counter only while the row
	// still holds expectedAttempts and is not SENT. A false return means
	// another worker claimed the row first.
	ClaimEmailAttempt(ctx context.Context, id primitive.ObjectID, expectedAttempts int) (bool, error)
	MarkEmailSent(ctx context.Context, id primitive.ObjectID, at time.Time) error
	MarkEmailFailed(ctx context.Context, id primitive.ObjectID, errMsg string) error

	// ListPushPending mirrors ListEmailPending for the push channel.
	ListPushPending(ctx context.Context, userID primitive.ObjectID, maxAttempts int) ([]domain.Notification, error)
	ClaimPushAttempt(ctx context.Context, id primitive.ObjectID, expectedAttempts int) (bool, error)
	MarkPushSent(ctx context.Context, id primitive.ObjectID, at time.Time) error
	MarkPushFailed(ctx context.Context, id primitive.ObjectID, errMsg string) error
}

// SubscriptionRepository stores web-push subscriptions.
type SubscriptionRepository interface {
	Upsert(ctx context.Context, sub *domain.PushSubscription) error
	ListByUser(ctx context.Context, userID primitive.ObjectID) ([]domain.PushSubscription, error)
	DeleteByEndpoint(ctx context.Context, endpoint string) error
}
