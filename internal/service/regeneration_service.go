// internal/service/regeneration_service.go
package service

import (
	"context"
	"errors"
	"time"

	"vitacoach/adherence-app/internal/logger"
	"vitacoach/adherence-app/internal/repository"
	"vitacoach/adherence-app/internal/week"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// PlanGenerator produces the new weekly plan content. The actual generation
// lives in the plan-management collaborator; the sweep only coordinates who
// runs it, for whom, and when.
type PlanGenerator interface {
	RegenerateWeeklyPlan(ctx context.Context, userID primitive.ObjectID, weekStart time.Time) error
}

// SweepReport summarizes one regeneration sweep.
type SweepReport struct {
	Processed     int `json:"processed"`
	Succeeded     int `json:"succeeded"`
	Failed        int `json:"failed"`
	SkippedLocked int `json:"skippedLocked"`
}

// RegenerationService runs the weekly plan regeneration sweep. Each user-week
// is guarded by a lock on the plan row so overlapping sweeps (two scheduler
// instances, a retry after a deploy) never regenerate the same plan twice.
// Locks older than RegenLockStaleness count as abandoned and may be stolen.
type RegenerationService interface {
	RunWeeklySweep(ctx context.Context, now time.Time) (SweepReport, error)
}

type regenerationService struct {
	userRepo  repository.UserRepository
	planRepo  repository.PlanRepository
	generator PlanGenerator
	reports   ReportService // optional; nil disables report archiving
}

// NewRegenerationService creates a new RegenerationService instance. A nil
// reports service switches off archiving of the finished week.
func NewRegenerationService(
	userRepo repository.UserRepository,
	planRepo repository.PlanRepository,
	generator PlanGenerator,
	reports ReportService,
) RegenerationService {
	return &regenerationService{
		userRepo:  userRepo,
		planRepo:  planRepo,
		generator: generator,
		reports:   reports,
	}
}

func (s *regenerationService) RunWeeklySweep(ctx context.Context, now time.Time) (SweepReport, error) {
	var report SweepReport

	users, err := s.userRepo.ListWithProfile(ctx)
	if err != nil {
		return report, err
	}

	weekStart := week.StartOf(now)
	staleBefore := now.Add(-RegenLockStaleness)

	for _, user := range users {
		lockID := uuid.NewString()

		claimed, err := s.planRepo.ClaimRegeneration(ctx, user.ID, weekStart, lockID, now, staleBefore)
		if err != nil {
			logger.Log.Errorf("Regeneration sweep: lock claim errored for user %s: %v", user.ID.Hex(), err)
			report.Processed++
			report.Failed++
			continue
		}
		if !claimed {
			report.SkippedLocked++
			continue
		}

		report.Processed++
		if err := s.regenerateLocked(ctx, user.ID, weekStart, lockID); err != nil {
			logger.Log.Errorf("Regeneration sweep: generation failed for user %s: %v", user.ID.Hex(), err)
			report.Failed++
			continue
		}
		report.Succeeded++

		// The week that just closed gets its report archived. Best effort;
		// a storage hiccup must not fail the regeneration itself.
		if s.reports != nil {
			finishedWeek := weekStart.AddDate(0, 0, -7)
			if _, err := s.reports.ArchiveWeeklyReport(ctx, user.ID, finishedWeek, user.Preferences.GoalPercent); err != nil && !errors.Is(err, ErrPlanNotFound) {
				logger.Log.Warnf("Regeneration sweep: report archive failed for user %s: %v", user.ID.Hex(), err)
			}
		}
	}

	s.emitSweepOutcome(report)
	return report, nil
}

// regenerateLocked runs the generator and guarantees the lock is released,
// generator panic or error notwithstanding. A release that loses to a staleness
// steal is a silent no-op inside the repository.
func (s *regenerationService) regenerateLocked(ctx context.Context, userID primitive.ObjectID, weekStart time.Time, lockID string) error {
	defer func() {
		if err := s.planRepo.ReleaseRegeneration(ctx, userID, weekStart, lockID); err != nil {
			logger.Log.Errorf("Regeneration sweep: failed to release lock for user %s: %v", userID.Hex(), err)
		}
	}()
	return s.generator.RegenerateWeeklyPlan(ctx, userID, weekStart)
}

// emitSweepOutcome surfaces the sweep result for operators. Total failure is
// an error event, partial failure a warning; a clean sweep logs at info only.
func (s *regenerationService) emitSweepOutcome(r SweepReport) {
	switch {
	case r.Processed > 0 && r.Failed == r.Processed:
		logger.Log.WithFields(map[string]interface{}{
			"processed":     r.Processed,
			"failed":        r.Failed,
			"skippedLocked": r.SkippedLocked,
		}).Error("Regeneration sweep failed for every processed user")
	case r.Failed > 0:
		logger.Log.WithFields(map[string]interface{}{
			"processed":     r.Processed,
			"succeeded":     r.Succeeded,
			"failed":        r.Failed,
			"skippedLocked": r.SkippedLocked,
		}).Warn("Regeneration sweep finished with failures")
	default:
		logger.Log.Infof("Regeneration sweep done: processed=%d succeeded=%d skippedLocked=%d",
			r.Processed, r.Succeeded, r.SkippedLocked)
	}
}
