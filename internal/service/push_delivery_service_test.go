// internal/service/push_delivery_service_test.go
package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"vitacoach/adherence-app/internal/domain"
	"vitacoach/adherence-app/internal/transport"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type fakePushSender struct {
	// errByEndpoint maps an endpoint to the error its sends return; endpoints
	// not listed succeed.
	errByEndpoint map[string]error
	delivered     []string
}

func (f *fakePushSender) Send(_ context.Context, sub domain.PushSubscription, _ transport.PushPayload) error {
	if err, ok := f.errByEndpoint[sub.Endpoint]; ok {
		return err
	}
	f.delivered = append(f.delivered, sub.Endpoint)
	return nil
}

func pushFixture(t *testing.T) (primitive.ObjectID, *fakeUserRepo, *fakeNotificationRepo, *fakeSubscriptionRepo, time.Time) {
	t.Helper()
	userID := primitive.NewObjectID()
	now := time.Date(2025, 6, 4, 14, 0, 0, 0, time.UTC)

	users := &fakeUserRepo{users: []domain.User{{
		ID: userID,
		Preferences: domain.NotificationPreferences{
			PushEnabled:     true,
			QuietHoursStart: 22,
			QuietHoursEnd:   7,
		},
	}}}
	notifs := &fakeNotificationRepo{rows: []*domain.Notification{{
		ID:        primitive.NewObjectID(),
		UserID:    userID,
		Type:      domain.NotificationTodayTrainingReminder,
		ScopeKey:  "day:2025-06-04",
		Title:     "Training planned for today",
		Message:   "Your session is not done yet.",
		CreatedAt: now.Add(-time.Hour),
	}}}
	subs := &fakeSubscriptionRepo{subs: []domain.PushSubscription{
		{ID: primitive.NewObjectID(), UserID: userID, Endpoint: "https://push.example/a"},
		{ID: primitive.NewObjectID(), UserID: userID, Endpoint: "https://push.example/b"},
	}}
	return userID, users, notifs, subs, now
}

func TestDeliverPendingPushes(t *testing.T) {
	t.Run("delivers to all subscriptions and marks sent", func(t *testing.T) {
		_, users, notifs, subs, now := pushFixture(t)
		sender := &fakePushSender{}
		svc := NewPushDeliveryService(users, notifs, subs, sender)

		report, err := svc.DeliverPendingPushes(context.Background(), now)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if report.Scanned != 1 || report.Sent != 1 || report.Failed != 0 {
			t.Fatalf("report = %+v, want {1 1 0}", report)
		}
		if len(sender.delivered) != 2 {
			t.Fatalf("delivered to %d endpoints, want 2", len(sender.delivered))
		}
		if notifs.rows[0].PushStatus != domain.DeliveryStatusSent {
			t.Fatalf("row status = %s, want SENT", notifs.rows[0].PushStatus)
		}
	})

	t.Run("one successful endpoint is enough", func(t *testing.T) {
		_, users, notifs, subs, now := pushFixture(t)
		sender := &fakePushSender{errByEndpoint: map[string]error{
			"https://push.example/a": errors.New("provider 500"),
		}}
		svc := NewPushDeliveryService(users, notifs, subs, sender)

		report, err := svc.DeliverPendingPushes(context.Background(), now)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if report.Sent != 1 {
			t.Fatalf("report = %+v, want the row sent", report)
		}
	})

	t.Run("quiet hours leave rows pending", func(t *testing.T) {
		_, users, notifs, subs, _ := pushFixture(t)
		svc := NewPushDeliveryService(users, notifs, subs, &fakePushSender{})

		night := time.Date(2025, 6, 4, 23, 0, 0, 0, time.UTC) // inside 22..07
		report, err := svc.DeliverPendingPushes(context.Background(), night)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if report.Scanned != 0 {
			t.Fatalf("report = %+v, want nothing scanned during quiet hours", report)
		}
		if notifs.rows[0].PushAttemptCount != 0 {
			t.Fatal("quiet hours must not consume an attempt")
		}
	})

	t.Run("zero subscriptions fail the row", func(t *testing.T) {
		_, users, notifs, _, now := pushFixture(t)
		empty := &fakeSubscriptionRepo{}
		svc := NewPushDeliveryService(users, notifs, empty, &fakePushSender{})

		report, err := svc.DeliverPendingPushes(context.Background(), now)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if report.Failed != 1 {
			t.Fatalf("report = %+v, want one failure", report)
		}
		if notifs.rows[0].PushStatus != domain.DeliveryStatusFailed {
			t.Fatalf("row status = %s, want FAILED", notifs.rows[0].PushStatus)
		}
	})

	t.Run("gone endpoints are dropped", func(t *testing.T) {
		userID, users, notifs, subs, now := pushFixture(t)
		sender := &fakePushSender{errByEndpoint: map[string]error{
			"https://push.example/a": transport.ErrEndpointGone,
		}}
		svc := NewPushDeliveryService(users, notifs, subs, sender)

		report, err := svc.DeliverPendingPushes(context.Background(), now)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if report.Sent != 1 {
			t.Fatalf("report = %+v, want the row sent via the live endpoint", report)
		}

		remaining, _ := subs.ListByUser(context.Background(), userID)
		if len(remaining) != 1 || remaining[0].Endpoint != "https://push.example/b" {
			t.Fatalf("remaining subscriptions = %+v, want only the live endpoint", remaining)
		}
	})

	t.Run("all endpoints failing marks the row failed", func(t *testing.T) {
		_, users, notifs, subs, now := pushFixture(t)
		sender := &fakePushSender{errByEndpoint: map[string]error{
			"https://push.example/a": errors.New("provider 500"),
			"https://push.example/b": errors.New("provider 500"),
		}}
		svc := NewPushDeliveryService(users, notifs, subs, sender)

		report, err := svc.DeliverPendingPushes(context.Background(), now)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if report.Failed != 1 {
			t.Fatalf("report = %+v, want one failure", report)
		}
		row := notifs.rows[0]
		if row.PushStatus != domain.DeliveryStatusFailed || row.PushLastError == "" {
			t.Fatalf("row = %+v, want FAILED with an error message", row)
		}
		if row.PushAttemptCount != 1 {
			t.Fatalf("attempts = %d, want 1", row.PushAttemptCount)
		}
	})
}
