// internal/service/snapshot_service.go
package service

import (
	"context"
	"errors"
	"time"

	"vitacoach/adherence-app/internal/domain"
	"vitacoach/adherence-app/internal/repository"
	"vitacoach/adherence-app/internal/week"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// --- Error Definitions ---
var (
	ErrPlanNotFound = errors.New("no plan exists for this user and week")
)

// WeekSnapshot bundles everything known about one user-week.
type WeekSnapshot struct {
	Plan      *domain.WeeklyPlan     `json:"plan"`
	Breakdown domain.WeeklyBreakdown `json:"breakdown"`
	Insights  WeeklyInsights         `json:"insights"`
}

// SnapshotService loads plan and logs for a user-week and runs the pure
// engines over them. It is the read-side entry point shared by the API, the
// candidate generator and the report archiver.
type SnapshotService interface {
	// WeekSnapshot computes the breakdown and insights for one user-week.
	// Returns ErrPlanNotFound when the week has no plan row.
	WeekSnapshot(ctx context.Context, userID primitive.ObjectID, weekStart time.Time) (*WeekSnapshot, error)

	// RecentBreakdowns computes breakdowns for up to n recent weeks, most
	// recent first. Weeks without a plan are skipped, not zero-filled.
	RecentBreakdowns(ctx context.Context, userID primitive.ObjectID, n int, now time.Time) ([]domain.WeeklyBreakdown, error)
}

type snapshotService struct {
	planRepo     repository.PlanRepository
	activityRepo repository.ActivityLogRepository
	adherence    AdherenceService
	insights     InsightsService
}

// NewSnapshotService creates a new SnapshotService instance.
func NewSnapshotService(
	planRepo repository.PlanRepository,
	activityRepo repository.ActivityLogRepository,
	adherence AdherenceService,
	insights InsightsService,
) SnapshotService {
	return &snapshotService{
		planRepo:     planRepo,
		activityRepo: activityRepo,
		adherence:    adherence,
		insights:     insights,
	}
}

func (s *snapshotService) WeekSnapshot(ctx context.Context, userID primitive.ObjectID, weekStart time.Time) (*WeekSnapshot, error) {
	plan, trainingLogs, nutritionLogs, err := s.loadWeek(ctx, userID, weekStart)
	if err != nil {
		return nil, err
	}

	breakdown := s.adherence.ComputeWeeklyAdherence(plan, trainingLogs, nutritionLogs, weekStart)
	insights := s.insights.WeeklyAdherenceInsights(breakdown, plan, trainingLogs, nutritionLogs, weekStart)

	return &WeekSnapshot{
		Plan:      plan,
		Breakdown: breakdown,
		Insights:  insights,
	}, nil
}

func (s *snapshotService) RecentBreakdowns(ctx context.Context, userID primitive.ObjectID, n int, now time.Time) ([]domain.WeeklyBreakdown, error) {
	starts := week.RecentWeekStarts(n, now)
	items := make([]domain.WeeklyBreakdown, 0, len(starts))
	for _, start := range starts {
		plan, trainingLogs, nutritionLogs, err := s.loadWeek(ctx, userID, start)
		if err != nil {
			if errors.Is(err, ErrPlanNotFound) {
				continue
			}
			return nil, err
		}
		items = append(items, s.adherence.ComputeWeeklyAdherence(plan, trainingLogs, nutritionLogs, start))
	}
	return items, nil
}

func (s *snapshotService) loadWeek(ctx context.Context, userID primitive.ObjectID, weekStart time.Time) (*domain.WeeklyPlan, []domain.TrainingLog, []domain.NutritionLog, error) {
	plan, err := s.planRepo.GetByUserAndWeek(ctx, userID, week.StartOf(weekStart))
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, nil, nil, ErrPlanNotFound
		}
		return nil, nil, nil, err
	}

	window := week.Range(weekStart)
	trainingLogs, err := s.activityRepo.TrainingLogsInRange(ctx, userID, window.Start, window.End)
	if err != nil {
		return nil, nil, nil, err
	}
	nutritionLogs, err := s.activityRepo.NutritionLogsInRange(ctx, userID, window.Start, window.End)
	if err != nil {
		return nil, nil, nil, err
	}
	return plan, trainingLogs, nutritionLogs, nil
}
