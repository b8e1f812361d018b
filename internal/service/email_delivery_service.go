// internal/service/email_delivery_service.go
package service

import (
	"context"
	"fmt"
	"time"

	"vitacoach/adherence-app/internal/domain"
	"vitacoach/adherence-app/internal/logger"
	"vitacoach/adherence-app/internal/repository"
	"vitacoach/adherence-app/internal/transport"
)

// DeliveryReport summarizes one delivery pass over a channel.
type DeliveryReport struct {
	Scanned int `json:"scanned"`
	Sent    int `json:"sent"`
	Failed  int `json:"failed"`
}

// EmailDeliveryService sends pending notification rows over email. One pass
// targets only users whose preferred delivery hour matches the current UTC
// hour, and only rows created inside the freshness window; stale rows age out
// unsent rather than arriving a day late.
type EmailDeliveryService interface {
	DeliverPendingEmails(ctx context.Context, now time.Time) (DeliveryReport, error)
}

type emailDeliveryService struct {
	userRepo  repository.UserRepository
	notifRepo repository.NotificationRepository
	sender    transport.EmailSender
}

// NewEmailDeliveryService creates a new EmailDeliveryService instance.
func NewEmailDeliveryService(
	userRepo repository.UserRepository,
	notifRepo repository.NotificationRepository,
	sender transport.EmailSender,
) EmailDeliveryService {
	return &emailDeliveryService{
		userRepo:  userRepo,
		notifRepo: notifRepo,
		sender:    sender,
	}
}

func (s *emailDeliveryService) DeliverPendingEmails(ctx context.Context, now time.Time) (DeliveryReport, error) {
	var report DeliveryReport

	hour := now.UTC().Hour()
	users, err := s.userRepo.ListByEmailHour(ctx, hour)
	if err != nil {
		return report, fmt.Errorf("failed to list users for email hour %d: %w", hour, err)
	}

	since := now.Add(-EmailFreshnessWindow)
	for _, user := range users {
		pending, err := s.notifRepo.ListEmailPending(ctx, user.ID, since, MaxChannelAttempts)
		if err != nil {
			logger.Log.Errorf("Email delivery: failed to list pending rows for user %s: %v", user.ID.Hex(), err)
			continue
		}

		for _, n := range pending {
			report.Scanned++
			switch s.deliverOne(ctx, user, n, now) {
			case outcomeSent:
				report.Sent++
			case outcomeFailed:
				report.Failed++
			}
		}
	}

	logger.Log.Infof("Email delivery pass done: scanned=%d sent=%d failed=%d", report.Scanned, report.Sent, report.Failed)
	return report, nil
}

type deliveryOutcome int

const (
	outcomeSkipped deliveryOutcome = iota // lost the claim race; nothing to record
	outcomeSent
	outcomeFailed
)

// deliverOne claims, sends and marks one row.
func (s *emailDeliveryService) deliverOne(ctx context.Context, user domain.User, n domain.Notification, now time.Time) deliveryOutcome {
	if user.Email == "" {
		// No address to send to; burn the row instead of retrying forever.
		if err := s.notifRepo.MarkEmailFailed(ctx, n.ID, "user has no email address"); err != nil {
			logger.Log.Errorf("Email delivery: failed to mark row %s failed: %v", n.ID.Hex(), err)
		}
		return outcomeFailed
	}

	claimed, err := s.notifRepo.ClaimEmailAttempt(ctx, n.ID, n.EmailAttemptCount)
	if err != nil {
		logger.Log.Errorf("Email delivery: claim failed for row %s: %v", n.ID.Hex(), err)
		return outcomeSkipped
	}
	if !claimed {
		return outcomeSkipped
	}

	if err := s.sender.Send(ctx, user.Email, n.Title, n.Message); err != nil {
		msg := truncateError(err)
		if markErr := s.notifRepo.MarkEmailFailed(ctx, n.ID, msg); markErr != nil {
			logger.Log.Errorf("Email delivery: failed to record failure on row %s: %v", n.ID.Hex(), markErr)
		}
		logger.Log.Warnf("Email delivery: send failed for row %s (attempt %d): %v", n.ID.Hex(), n.EmailAttemptCount+1, err)
		return outcomeFailed
	}

	if err := s.notifRepo.MarkEmailSent(ctx, n.ID, now); err != nil {
		logger.Log.Errorf("Email delivery: sent but failed to mark row %s: %v", n.ID.Hex(), err)
	}
	return outcomeSent
}

// truncateError bounds a transport error so the stored row stays small.
func truncateError(err error) string {
	msg := err.Error()
	if len(msg) > MaxErrorMessageLen {
		msg = msg[:MaxErrorMessageLen]
	}
	return msg
}
