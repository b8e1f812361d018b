// internal/service/streak_service.go
package service

import (
	"fmt"

	"vitacoach/adherence-app/internal/domain"
)

// StreakService computes goal streaks over recent weeks and classifies the
// weekly nudge. Pure and stateless.
type StreakService interface {
	// ComputeStreak expects breakdowns ordered most-recent-first.
	ComputeStreak(itemsDesc []domain.WeeklyBreakdown, goalPercent int) domain.Streak
	WeeklyNudge(params NudgeParams) domain.Nudge
}

// NudgeParams carries the inputs for classifying the current week.
type NudgeParams struct {
	CurrentWeekPercent  int
	GoalPercent         int
	PreviousWeekPercent *int
	CurrentStreakWeeks  int
	PreviousStreakWeeks *int
}

type streakService struct{}

// NewStreakService creates the goal streak engine.
func NewStreakService() StreakService {
	return &streakService{}
}

// ComputeStreak counts the leading run of weeks meeting the goal and the best
// run anywhere in the list. BestStreakWeeks is nil when no week ever met it.
func (s *streakService) ComputeStreak(itemsDesc []domain.WeeklyBreakdown, goalPercent int) domain.Streak {
	current := 0
	for _, item := range itemsDesc {
		if item.TotalPercent < goalPercent {
			break
		}
		current++
	}

	best := 0
	run := 0
	for _, item := range itemsDesc {
		if item.TotalPercent >= goalPercent {
			run++
			if run > best {
				best = run
			}
		} else {
			run = 0
		}
	}

	streak := domain.Streak{CurrentStreakWeeks: current}
	if best > 0 {
		streak.BestStreakWeeks = &best
	}
	return streak
}

// WeeklyNudge picks exactly one nudge by priority: a freshly extended streak,
// then plain on-track, then a just-broken streak, then behind-goal.
func (s *streakService) WeeklyNudge(p NudgeParams) domain.Nudge {
	prevStreak := 0
	if p.PreviousStreakWeeks != nil {
		prevStreak = *p.PreviousStreakWeeks
	}

	if p.CurrentWeekPercent >= p.GoalPercent {
		if p.CurrentStreakWeeks >= MinStreakWeeks && p.CurrentStreakWeeks > prevStreak {
			return domain.Nudge{
				Type:     domain.NudgeNewStreak,
				Severity: domain.SeverityLow,
				Message:  fmt.Sprintf("%d weeks on goal in a row. Keep the streak alive!", p.CurrentStreakWeeks),
			}
		}
		return domain.Nudge{
			Type:     domain.NudgeOnTrack,
			Severity: domain.SeverityLow,
			Message:  fmt.Sprintf("You hit %d%% this week, right on your %d%% goal.", p.CurrentWeekPercent, p.GoalPercent),
		}
	}

	if prevStreak >= MinStreakWeeks && p.CurrentStreakWeeks == 0 {
		return domain.Nudge{
			Type:     domain.NudgeStreakBroken,
			Severity: domain.SeverityMedium,
			Message:  fmt.Sprintf("Your %d-week streak ended. One good week gets you back on track.", prevStreak),
		}
	}

	gap := clampPercent(p.GoalPercent) - clampPercent(p.CurrentWeekPercent)
	severity := domain.SeverityMedium
	if gap >= BehindGoalHighGap {
		severity = domain.SeverityHigh
	}
	return domain.Nudge{
		Type:     domain.NudgeBehindGoal,
		Severity: severity,
		Message:  fmt.Sprintf("You are %d points below your %d%% goal this week.", gap, p.GoalPercent),
	}
}

func clampPercent(v int) int {
	if v < 0 {
		return 0
	}
	if v > 100 {
		return 100
	}
	return v
}
