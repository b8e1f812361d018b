// internal/service/notification_service.go
package service

import (
	"context"
	"errors"
	"time"

	"vitacoach/adherence-app/internal/domain"
	"vitacoach/adherence-app/internal/logger"
	"vitacoach/adherence-app/internal/repository"
	"vitacoach/adherence-app/internal/week"
)

// candidateHistoryWeeks is how far back the streak inputs look when deciding
// today's notifications.
const candidateHistoryWeeks = 6

// CandidateReport summarizes one candidate-generation pass.
type CandidateReport struct {
	Processed int `json:"processed"`
	Created   int `json:"created"`
}

// NotificationService runs the daily rule pass: for every onboarded user it
// assembles the week state, asks the rule engine for candidates, and persists
// them. Persistence is idempotent per (user, type, scope); rerunning the pass
// creates nothing new.
type NotificationService interface {
	GenerateDailyCandidates(ctx context.Context, now time.Time) (CandidateReport, error)
}

type notificationService struct {
	userRepo     repository.UserRepository
	planRepo     repository.PlanRepository
	activityRepo repository.ActivityLogRepository
	notifRepo    repository.NotificationRepository
	snapshots    SnapshotService
	streaks      StreakService
	rules        RulesService
}

// NewNotificationService creates a new NotificationService instance.
func NewNotificationService(
	userRepo repository.UserRepository,
	planRepo repository.PlanRepository,
	activityRepo repository.ActivityLogRepository,
	notifRepo repository.NotificationRepository,
	snapshots SnapshotService,
	streaks StreakService,
	rules RulesService,
) NotificationService {
	return &notificationService{
		userRepo:     userRepo,
		planRepo:     planRepo,
		activityRepo: activityRepo,
		notifRepo:    notifRepo,
		snapshots:    snapshots,
		streaks:      streaks,
		rules:        rules,
	}
}

func (s *notificationService) GenerateDailyCandidates(ctx context.Context, now time.Time) (CandidateReport, error) {
	var report CandidateReport

	users, err := s.userRepo.ListWithProfile(ctx)
	if err != nil {
		return report, err
	}

	for _, user := range users {
		created, err := s.generateForUser(ctx, user, now)
		if err != nil {
			logger.Log.Errorf("Candidate generation failed for user %s: %v", user.ID.Hex(), err)
			continue
		}
		report.Processed++
		report.Created += created
	}

	logger.Log.Infof("Candidate generation done: processed=%d created=%d", report.Processed, report.Created)
	return report, nil
}

func (s *notificationService) generateForUser(ctx context.Context, user domain.User, now time.Time) (int, error) {
	weekStart := week.StartOf(now)

	history, err := s.snapshots.RecentBreakdowns(ctx, user.ID, candidateHistoryWeeks, now)
	if err != nil {
		return 0, err
	}

	candidateCtx := CandidateContext{
		Today:       now,
		WeekStart:   weekStart,
		GoalPercent: user.Preferences.GoalPercent,
	}

	// The streak inputs split the history at the current week: the current
	// streak sees everything, the previous streak pretends this week has not
	// happened yet.
	currentIdx := -1
	if len(history) > 0 && history[0].WeekStart.Equal(weekStart) {
		currentIdx = 0
	}

	goal := user.Preferences.GoalPercent
	currentStreak := s.streaks.ComputeStreak(history, goal)

	params := NudgeParams{
		GoalPercent:        goal,
		CurrentStreakWeeks: currentStreak.CurrentStreakWeeks,
	}
	if currentIdx == 0 {
		percent := history[0].TotalPercent
		candidateCtx.CurrentWeekPercent = &percent
		params.CurrentWeekPercent = percent

		prevStreak := s.streaks.ComputeStreak(history[1:], goal).CurrentStreakWeeks
		params.PreviousStreakWeeks = &prevStreak
	} else {
		prevStreak := currentStreak.CurrentStreakWeeks
		params.PreviousStreakWeeks = &prevStreak
	}

	prevWeekStart := weekStart.AddDate(0, 0, -7)
	for _, b := range history {
		if b.WeekStart.Equal(prevWeekStart) {
			percent := b.TotalPercent
			params.PreviousWeekPercent = &percent
			break
		}
	}

	candidateCtx.Nudge = s.streaks.WeeklyNudge(params)

	planned, completed, err := s.todaySessionState(ctx, user, weekStart, now)
	if err != nil {
		return 0, err
	}
	candidateCtx.SessionPlannedToday = planned
	candidateCtx.SessionCompletedToday = completed

	created := 0
	for _, c := range s.rules.BuildDailyNotificationCandidates(candidateCtx) {
		inserted, err := s.notifRepo.CreateIfAbsent(ctx, &domain.Notification{
			UserID:    user.ID,
			Type:      c.Type,
			ScopeKey:  c.ScopeKey,
			Title:     c.Title,
			Message:   c.Message,
			Data:      c.Data,
			CreatedAt: now,
			UpdatedAt: now,
		})
		if err != nil {
			return created, err
		}
		if inserted {
			created++
		}
	}
	return created, nil
}

// todaySessionState reports whether the current plan schedules a session on
// today's weekday, and whether a completed session is already logged today.
func (s *notificationService) todaySessionState(ctx context.Context, user domain.User, weekStart, now time.Time) (planned, completed bool, err error) {
	plan, err := s.planRepo.GetByUserAndWeek(ctx, user.ID, weekStart)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return false, false, nil
		}
		return false, false, err
	}

	today := week.DayIndex(now)
	for _, sess := range plan.Sessions {
		if sess.DayIndex == today {
			planned = true
			break
		}
	}
	if !planned {
		return false, false, nil
	}

	dayStart := week.DayKey(now)
	logs, err := s.activityRepo.TrainingLogsInRange(ctx, user.ID, dayStart, dayStart.AddDate(0, 0, 1))
	if err != nil {
		return true, false, err
	}
	for _, l := range logs {
		if l.Completed {
			return true, true, nil
		}
	}
	return true, false, nil
}
