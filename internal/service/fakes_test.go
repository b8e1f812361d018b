// internal/service/fakes_test.go
package service

import (
	"context"
	"fmt"
	"time"

	"vitacoach/adherence-app/internal/domain"
	"vitacoach/adherence-app/internal/repository"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// --- fake user repository ---

type fakeUserRepo struct {
	users []domain.User
}

func (r *fakeUserRepo) GetByID(_ context.Context, id primitive.ObjectID) (*domain.User, error) {
	for i := range r.users {
		if r.users[i].ID == id {
			u := r.users[i]
			return &u, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (r *fakeUserRepo) ListWithProfile(_ context.Context) ([]domain.User, error) {
	var out []domain.User
	for _, u := range r.users {
		if u.HasProfile {
			out = append(out, u)
		}
	}
	return out, nil
}

func (r *fakeUserRepo) ListByEmailHour(_ context.Context, hourUTC int) ([]domain.User, error) {
	var out []domain.User
	for _, u := range r.users {
		if u.Preferences.EmailEnabled && u.Preferences.EmailHourUTC == hourUTC {
			out = append(out, u)
		}
	}
	return out, nil
}

func (r *fakeUserRepo) ListPushEnabled(_ context.Context) ([]domain.User, error) {
	var out []domain.User
	for _, u := range r.users {
		if u.Preferences.PushEnabled {
			out = append(out, u)
		}
	}
	return out, nil
}

// --- fake notification repository ---

type fakeNotificationRepo struct {
	rows []*domain.Notification
}

func scopeIndexKey(n *domain.Notification) string {
	return fmt.Sprintf("%s|%s|%s", n.UserID.Hex(), n.Type, n.ScopeKey)
}

func (r *fakeNotificationRepo) CreateIfAbsent(_ context.Context, n *domain.Notification) (bool, error) {
	for _, existing := range r.rows {
		if scopeIndexKey(existing) == scopeIndexKey(n) {
			return false, nil
		}
	}
	stored := *n
	stored.ID = primitive.NewObjectID()
	r.rows = append(r.rows, &stored)
	return true, nil
}

func (r *fakeNotificationRepo) ListEmailPending(_ context.Context, userID primitive.ObjectID, since time.Time, maxAttempts int) ([]domain.Notification, error) {
	var out []domain.Notification
	for _, n := range r.rows {
		if n.UserID == userID && n.EmailStatus != domain.DeliveryStatusSent &&
			n.EmailAttemptCount < maxAttempts && !n.CreatedAt.Before(since) {
			out = append(out, *n)
		}
	}
	return out, nil
}

func (r *fakeNotificationRepo) ClaimEmailAttempt(_ context.Context, id primitive.ObjectID, expectedAttempts int) (bool, error) {
	for _, n := range r.rows {
		if n.ID == id && n.EmailStatus != domain.DeliveryStatusSent && n.EmailAttemptCount == expectedAttempts {
			n.EmailAttemptCount++
			return true, nil
		}
	}
	return false, nil
}

func (r *fakeNotificationRepo) MarkEmailSent(_ context.Context, id primitive.ObjectID, at time.Time) error {
	for _, n := range r.rows {
		if n.ID == id {
			n.EmailStatus = domain.DeliveryStatusSent
			n.EmailSentAt = &at
			return nil
		}
	}
	return repository.ErrNotFound
}

func (r *fakeNotificationRepo) MarkEmailFailed(_ context.Context, id primitive.ObjectID, errMsg string) error {
	for _, n := range r.rows {
		if n.ID == id {
			n.EmailStatus = domain.DeliveryStatusFailed
			n.EmailLastError = errMsg
			return nil
		}
	}
	return repository.ErrNotFound
}

func (r *fakeNotificationRepo) ListPushPending(_ context.Context, userID primitive.ObjectID, maxAttempts int) ([]domain.Notification, error) {
	var out []domain.Notification
	for _, n := range r.rows {
		if n.UserID == userID && n.PushStatus != domain.DeliveryStatusSent && n.PushAttemptCount < maxAttempts {
			out = append(out, *n)
		}
	}
	return out, nil
}

func (r *fakeNotificationRepo) ClaimPushAttempt(_ context.Context, id primitive.ObjectID, expectedAttempts int) (bool, error) {
	for _, n := range r.rows {
		if n.ID == id && n.PushStatus != domain.DeliveryStatusSent && n.PushAttemptCount == expectedAttempts {
			n.PushAttemptCount++
			return true, nil
		}
	}
	return false, nil
}

func (r *fakeNotificationRepo) MarkPushSent(_ context.Context, id primitive.ObjectID, at time.Time) error {
	for _, n := range r.rows {
		if n.ID == id {
			n.PushStatus = domain.DeliveryStatusSent
			n.PushSentAt = &at
			return nil
		}
	}
	return repository.ErrNotFound
}

func (r *fakeNotificationRepo) MarkPushFailed(_ context.Context, id primitive.ObjectID, errMsg string) error {
	for _, n := range r.rows {
		if n.ID == id {
			n.PushStatus = domain.DeliveryStatusFailed
			n.PushLastError = errMsg
			return nil
		}
	}
	return repository.ErrNotFound
}

// --- fake subscription repository ---

type fakeSubscriptionRepo struct {
	subs []domain.PushSubscription
}

func (r *fakeSubscriptionRepo) Upsert(_ context.Context, sub *domain.PushSubscription) error {
	for i := range r.subs {
		if r.subs[i].Endpoint == sub.Endpoint {
			r.subs[i] = *sub
			return nil
		}
	}
	stored := *sub
	stored.ID = primitive.NewObjectID()
	r.subs = append(r.subs, stored)
	return nil
}

func (r *fakeSubscriptionRepo) ListByUser(_ context.Context, userID primitive.ObjectID) ([]domain.PushSubscription, error) {
	var out []domain.PushSubscription
	for _, s := range r.subs {
		if s.UserID == userID {
			out = append(out, s)
		}
	}
	return out, nil
}

func (r *fakeSubscriptionRepo) DeleteByEndpoint(_ context.Context, endpoint string) error {
	kept := r.subs[:0]
	for _, s := range r.subs {
		if s.Endpoint != endpoint {
			kept = append(kept, s)
		}
	}
	r.subs = kept
	return nil
}

// --- fake plan repository ---

type fakePlanRepo struct {
	plans map[string]*domain.WeeklyPlan
}

func newFakePlanRepo() *fakePlanRepo {
	return &fakePlanRepo{plans: make(map[string]*domain.WeeklyPlan)}
}

func planKey(userID primitive.ObjectID, weekStart time.Time) string {
	return userID.Hex() + "|" + weekStart.UTC().Format("2006-01-02")
}

func (r *fakePlanRepo) put(p *domain.WeeklyPlan) {
	r.plans[planKey(p.UserID, p.WeekStart)] = p
}

func (r *fakePlanRepo) GetByUserAndWeek(_ context.Context, userID primitive.ObjectID, weekStart time.Time) (*domain.WeeklyPlan, error) {
	if p, ok := r.plans[planKey(userID, weekStart)]; ok {
		copied := *p
		return &copied, nil
	}
	return nil, repository.ErrNotFound
}

func (r *fakePlanRepo) ClaimRegeneration(_ context.Context, userID primitive.ObjectID, weekStart time.Time, lockID string, now, staleBefore time.Time) (bool, error) {
	p, ok := r.plans[planKey(userID, weekStart)]
	if !ok {
		return false, nil
	}
	if p.RegenLockedAt != nil && !p.RegenLockedAt.Before(staleBefore) {
		return false, nil
	}
	p.RegenLockID = &lockID
	lockedAt := now
	p.RegenLockedAt = &lockedAt
	return true, nil
}

func (r *fakePlanRepo) ReleaseRegeneration(_ context.Context, userID primitive.ObjectID, weekStart time.Time, lockID string) error {
	p, ok := r.plans[planKey(userID, weekStart)]
	if !ok {
		return nil
	}
	if p.RegenLockID != nil && *p.RegenLockID == lockID {
		p.RegenLockID = nil
		p.RegenLockedAt = nil
	}
	return nil
}

// --- fake activity log repository ---

type fakeActivityRepo struct {
	training  []domain.TrainingLog
	nutrition []domain.NutritionLog
}

func (r *fakeActivityRepo) TrainingLogsInRange(_ context.Context, userID primitive.ObjectID, from, to time.Time) ([]domain.TrainingLog, error) {
	var out []domain.TrainingLog
	for _, l := range r.training {
		if l.UserID == userID && !l.OccurredAt.Before(from) && l.OccurredAt.Before(to) {
			out = append(out, l)
		}
	}
	return out, nil
}

func (r *fakeActivityRepo) NutritionLogsInRange(_ context.Context, userID primitive.ObjectID, from, to time.Time) ([]domain.NutritionLog, error) {
	var out []domain.NutritionLog
	for _, l := range r.nutrition {
		if l.UserID == userID && !l.OccurredAt.Before(from) && l.OccurredAt.Before(to) {
			out = append(out, l)
		}
	}
	return out, nil
}
