// internal/service/push_delivery_service.go
package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"vitacoach/adherence-app/internal/domain"
	"vitacoach/adherence-app/internal/logger"
	"vitacoach/adherence-app/internal/repository"
	"vitacoach/adherence-app/internal/transport"
)

// PushDeliveryService sends pending notification rows to every registered
// web-push subscription of eligible users. Users inside their quiet hours are
// left alone; their rows stay pending for a later pass.
type PushDeliveryService interface {
	DeliverPendingPushes(ctx context.Context, now time.Time) (DeliveryReport, error)
}

type pushDeliveryService struct {
	userRepo  repository.UserRepository
	notifRepo repository.NotificationRepository
	subRepo   repository.SubscriptionRepository
	sender    transport.PushSender
}

// NewPushDeliveryService creates a new PushDeliveryService instance.
func NewPushDeliveryService(
	userRepo repository.UserRepository,
	notifRepo repository.NotificationRepository,
	subRepo repository.SubscriptionRepository,
	sender transport.PushSender,
) PushDeliveryService {
	return &pushDeliveryService{
		userRepo:  userRepo,
		notifRepo: notifRepo,
		subRepo:   subRepo,
		sender:    sender,
	}
}

func (s *pushDeliveryService) DeliverPendingPushes(ctx context.Context, now time.Time) (DeliveryReport, error) {
	var report DeliveryReport

	users, err := s.userRepo.ListPushEnabled(ctx)
	if err != nil {
		return report, fmt.Errorf("failed to list push-enabled users: %w", err)
	}

	hour := now.UTC().Hour()
	for _, user := range users {
		if user.Preferences.InQuietHours(hour) {
			continue
		}

		pending, err := s.notifRepo.ListPushPending(ctx, user.ID, MaxChannelAttempts)
		if err != nil {
			logger.Log.Errorf("Push delivery: failed to list pending rows for user %s: %v", user.ID.Hex(), err)
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

	logger.Log.Infof("Push delivery pass done: scanned=%d sent=%d failed=%d", report.Scanned, report.Sent, report.Failed)
	return report, nil
}

// deliverOne claims one row and fans it out to every subscription the user
// has. One successful device is enough to call the row SENT; endpoints the
// push service reports as gone are dropped on the spot.
func (s *pushDeliveryService) deliverOne(ctx context.Context, user domain.User, n domain.Notification, now time.Time) deliveryOutcome {
	claimed, err := s.notifRepo.ClaimPushAttempt(ctx, n.ID, n.PushAttemptCount)
	if err != nil {
		logger.Log.Errorf("Push delivery: claim failed for row %s: %v", n.ID.Hex(), err)
		return outcomeSkipped
	}
	if !claimed {
		return outcomeSkipped
	}

	subs, err := s.subRepo.ListByUser(ctx, user.ID)
	if err != nil {
		msg := truncateError(err)
		if markErr := s.notifRepo.MarkPushFailed(ctx, n.ID, msg); markErr != nil {
			logger.Log.Errorf("Push delivery: failed to record failure on row %s: %v", n.ID.Hex(), markErr)
		}
		return outcomeFailed
	}
	if len(subs) == 0 {
		if err := s.notifRepo.MarkPushFailed(ctx, n.ID, "user has no push subscriptions"); err != nil {
			logger.Log.Errorf("Push delivery: failed to mark row %s failed: %v", n.ID.Hex(), err)
		}
		return outcomeFailed
	}

	payload := transport.PushPayload{
		Title:   n.Title,
		Message: n.Message,
		Data:    n.Data,
	}

	anySuccess := false
	var lastErr error
	for _, sub := range subs {
		err := s.sender.Send(ctx, sub, payload)
		if err == nil {
			anySuccess = true
			continue
		}
		if errors.Is(err, transport.ErrEndpointGone) {
			if delErr := s.subRepo.DeleteByEndpoint(ctx, sub.Endpoint); delErr != nil {
				logger.Log.Errorf("Push delivery: failed to drop dead endpoint for user %s: %v", user.ID.Hex(), delErr)
			}
		}
		lastErr = err
	}

	if anySuccess {
		if err := s.notifRepo.MarkPushSent(ctx, n.ID, now); err != nil {
			logger.Log.Errorf("Push delivery: sent but failed to mark row %s: %v", n.ID.Hex(), err)
		}
		return outcomeSent
	}

	if err := s.notifRepo.MarkPushFailed(ctx, n.ID, truncateError(lastErr)); err != nil {
		logger.Log.Errorf("Push delivery: failed to record failure on row %s: %v", n.ID.Hex(), err)
	}
	logger.Log.Warnf("Push delivery: all %d subscriptions failed for row %s: %v", len(subs), n.ID.Hex(), lastErr)
	return outcomeFailed
}
