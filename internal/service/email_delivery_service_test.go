// internal/service/email_delivery_service_test.go
package service

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"vitacoach/adherence-app/internal/domain"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type sentEmail struct {
	to, subject, body string
}

type fakeEmailSender struct {
	sent     []sentEmail
	failWith error
}

func (f *fakeEmailSender) Send(_ context.Context, to, subject, body string) error {
	if f.failWith != nil {
		return f.failWith
	}
	f.sent = append(f.sent, sentEmail{to, subject, body})
	return nil
}

func emailFixture(t *testing.T) (primitive.ObjectID, *fakeUserRepo, *fakeNotificationRepo, time.Time) {
	t.Helper()
	userID := primitive.NewObjectID()
	now := time.Date(2025, 6, 4, 9, 0, 0, 0, time.UTC)

	users := &fakeUserRepo{users: []domain.User{{
		ID:    userID,
		Email: "sam@example.com",
		Preferences: domain.NotificationPreferences{
			EmailEnabled: true,
			EmailHourUTC: 9,
		},
	}}}
	notifs := &fakeNotificationRepo{rows: []*domain.Notification{{
		ID:        primitive.NewObjectID(),
		UserID:    userID,
		Type:      domain.NotificationWeekBehindGoal,
		ScopeKey:  "week:2025-06-02",
		Title:     "This week needs a push",
		Message:   "You are behind your goal.",
		CreatedAt: now.Add(-2 * time.Hour),
	}}}
	return userID, users, notifs, now
}

func TestDeliverPendingEmails(t *testing.T) {
	t.Run("delivers a fresh pending row", func(t *testing.T) {
		_, users, notifs, now := emailFixture(t)
		sender := &fakeEmailSender{}
		svc := NewEmailDeliveryService(users, notifs, sender)

		report, err := svc.DeliverPendingEmails(context.Background(), now)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if report.Scanned != 1 || report.Sent != 1 || report.Failed != 0 {
			t.Fatalf("report = %+v, want {1 1 0}", report)
		}
		if len(sender.sent) != 1 || sender.sent[0].to != "sam@example.com" {
			t.Fatalf("sender calls = %+v", sender.sent)
		}

		row := notifs.rows[0]
		if row.EmailStatus != domain.DeliveryStatusSent || row.EmailAttemptCount != 1 || row.EmailSentAt == nil {
			t.Fatalf("row not marked sent: %+v", row)
		}
	})

	t.Run("second pass after success is a no-op", func(t *testing.T) {
		_, users, notifs, now := emailFixture(t)
		svc := NewEmailDeliveryService(users, notifs, &fakeEmailSender{})

		if _, err := svc.DeliverPendingEmails(context.Background(), now); err != nil {
			t.Fatalf("first pass: %v", err)
		}
		report, err := svc.DeliverPendingEmails(context.Background(), now)
		if err != nil {
			t.Fatalf("second pass: %v", err)
		}
		if report.Scanned != 0 || report.Sent != 0 {
			t.Fatalf("second pass report = %+v, want all zero", report)
		}
	})

	t.Run("skips users outside their preferred hour", func(t *testing.T) {
		_, users, notifs, now := emailFixture(t)
		svc := NewEmailDeliveryService(users, notifs, &fakeEmailSender{})

		report, err := svc.DeliverPendingEmails(context.Background(), now.Add(3*time.Hour))
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if report.Scanned != 0 {
			t.Fatalf("report = %+v, want nothing scanned at the wrong hour", report)
		}
	})

	t.Run("missing email fails the row without a send attempt", func(t *testing.T) {
		_, users, notifs, now := emailFixture(t)
		users.users[0].Email = ""
		sender := &fakeEmailSender{}
		svc := NewEmailDeliveryService(users, notifs, sender)

		report, err := svc.DeliverPendingEmails(context.Background(), now)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if report.Failed != 1 || len(sender.sent) != 0 {
			t.Fatalf("report = %+v, sends = %d; want one failure and zero sends", report, len(sender.sent))
		}
		if notifs.rows[0].EmailStatus != domain.DeliveryStatusFailed {
			t.Fatalf("row status = %s, want FAILED", notifs.rows[0].EmailStatus)
		}
	})

	t.Run("send failure records a truncated error", func(t *testing.T) {
		_, users, notifs, now := emailFixture(t)
		longErr := errors.New(strings.Repeat("smtp 451 temporary failure ", 20))
		svc := NewEmailDeliveryService(users, notifs, &fakeEmailSender{failWith: longErr})

		report, err := svc.DeliverPendingEmails(context.Background(), now)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if report.Failed != 1 {
			t.Fatalf("report = %+v, want one failure", report)
		}

		row := notifs.rows[0]
		if row.EmailStatus != domain.DeliveryStatusFailed {
			t.Fatalf("row status = %s, want FAILED", row.EmailStatus)
		}
		if len(row.EmailLastError) != MaxErrorMessageLen {
			t.Fatalf("stored error length = %d, want %d", len(row.EmailLastError), MaxErrorMessageLen)
		}
		if row.EmailAttemptCount != 1 {
			t.Fatalf("attempts = %d, want 1", row.EmailAttemptCount)
		}
	})

	t.Run("rows older than the freshness window age out", func(t *testing.T) {
		_, users, notifs, now := emailFixture(t)
		notifs.rows[0].CreatedAt = now.Add(-25 * time.Hour)
		svc := NewEmailDeliveryService(users, notifs, &fakeEmailSender{})

		report, err := svc.DeliverPendingEmails(context.Background(), now)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if report.Scanned != 0 {
			t.Fatalf("report = %+v, want stale row ignored", report)
		}
	})

	t.Run("exhausted rows are not retried", func(t *testing.T) {
		_, users, notifs, now := emailFixture(t)
		notifs.rows[0].EmailAttemptCount = MaxChannelAttempts
		svc := NewEmailDeliveryService(users, notifs, &fakeEmailSender{})

		report, err := svc.DeliverPendingEmails(context.Background(), now)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if report.Scanned != 0 {
			t.Fatalf("report = %+v, want exhausted row ignored", report)
		}
	})
}
