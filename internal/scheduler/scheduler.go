// Package scheduler runs the recurring passes on an in-process cron. The same
// passes are also reachable over the authenticated cron HTTP endpoints; the
// services themselves are idempotent, so overlap between the two entry points
// is harmless.
package scheduler

import (
	"context"
	"time"

	"vitacoach/adherence-app/internal/config"
	"vitacoach/adherence-app/internal/logger"
	"vitacoach/adherence-app/internal/service"

	"github.com/robfig/cron/v3"
)

// jobTimeout bounds one scheduled pass; a wedged pass must not hold its slot
// until the next fire.
const jobTimeout = 10 * time.Minute

type Scheduler struct {
	cron *cron.Cron
	cfg  config.CronConfig

	notifications service.NotificationService
	emailDelivery service.EmailDeliveryService
	pushDelivery  service.PushDeliveryService
	regeneration  service.RegenerationService
}

func New(
	cfg config.CronConfig,
	notifications service.NotificationService,
	emailDelivery service.EmailDeliveryService,
	pushDelivery service.PushDeliveryService,
	regeneration service.RegenerationService,
) *Scheduler {
	return &Scheduler{
		cron:          cron.New(),
		cfg:           cfg,
		notifications: notifications,
		emailDelivery: emailDelivery,
		pushDelivery:  pushDelivery,
		regeneration:  regeneration,
	}
}

// Start registers all jobs and launches the cron loop. Registration errors are
// configuration mistakes (a bad cron spec) and abort startup.
func (s *Scheduler) Start() error {
	if _, err := s.cron.AddFunc(s.cfg.CandidatesSpec, s.runCandidates); err != nil {
		return err
	}
	if _, err := s.cron.AddFunc(s.cfg.EmailSpec, s.runEmailDelivery); err != nil {
		return err
	}
	if _, err := s.cron.AddFunc(s.cfg.PushSpec, s.runPushDelivery); err != nil {
		return err
	}
	if _, err := s.cron.AddFunc(s.cfg.RegenerationSpec, s.runRegeneration); err != nil {
		return err
	}

	s.cron.Start()
	logger.Log.Infof("Scheduler started: candidates=%q email=%q push=%q regeneration=%q (regeneration enabled: %t)",
		s.cfg.CandidatesSpec, s.cfg.EmailSpec, s.cfg.PushSpec, s.cfg.RegenerationSpec, s.cfg.RegenerationEnabled)
	return nil
}

// Stop halts the cron loop and waits for running jobs to finish.
func (s *Scheduler) Stop() {
	ctx := s.cron.Stop()
	<-ctx.Done()
	logger.Log.Info("Scheduler stopped")
}

func (s *Scheduler) runCandidates() {
	ctx, cancel := context.WithTimeout(context.Background(), jobTimeout)
	defer cancel()
	if _, err := s.notifications.GenerateDailyCandidates(ctx, time.Now().UTC()); err != nil {
		logger.Log.Errorf("Scheduled candidate generation failed: %v", err)
	}
}

func (s *Scheduler) runEmailDelivery() {
	ctx, cancel := context.WithTimeout(context.Background(), jobTimeout)
	defer cancel()
	if _, err := s.emailDelivery.DeliverPendingEmails(ctx, time.Now().UTC()); err != nil {
		logger.Log.Errorf("Scheduled email delivery failed: %v", err)
	}
}

func (s *Scheduler) runPushDelivery() {
	ctx, cancel := context.WithTimeout(context.Background(), jobTimeout)
	defer cancel()
	if _, err := s.pushDelivery.DeliverPendingPushes(ctx, time.Now().UTC()); err != nil {
		logger.Log.Errorf("Scheduled push delivery failed: %v", err)
	}
}

func (s *Scheduler) runRegeneration() {
	if !s.cfg.RegenerationEnabled {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), jobTimeout)
	defer cancel()
	if _, err := s.regeneration.RunWeeklySweep(ctx, time.Now().UTC()); err != nil {
		logger.Log.Errorf("Scheduled regeneration sweep failed: %v", err)
	}
}
