// internal/service/rules_service_test.go
package service

import (
	"testing"
	"time"

	"vitacoach/adherence-app/internal/domain"
)

func TestBuildDailyNotificationCandidates(t *testing.T) {
	svc := NewRulesService()
	today := testWeekStart.AddDate(0, 0, 2).Add(8 * time.Hour) // Wednesday morning
	intp := func(v int) *int { return &v }

	base := CandidateContext{
		Today:       today,
		WeekStart:   testWeekStart,
		GoalPercent: 80,
	}

	t.Run("behind goal yields a week-scoped candidate", func(t *testing.T) {
		ctx := base
		ctx.Nudge = domain.Nudge{Type: domain.NudgeBehindGoal}
		ctx.CurrentWeekPercent = intp(55)

		out := svc.BuildDailyNotificationCandidates(ctx)
		if len(out) != 1 {
			t.Fatalf("candidates = %d, want 1", len(out))
		}
		if out[0].Type != domain.NotificationWeekBehindGoal {
			t.Fatalf("type = %s, want WEEK_BEHIND_GOAL", out[0].Type)
		}
		if out[0].ScopeKey != "week:2025-06-02" {
			t.Fatalf("scope = %q, want week:2025-06-02", out[0].ScopeKey)
		}
	})

	t.Run("planned but uncompleted session yields a day-scoped reminder", func(t *testing.T) {
		ctx := base
		ctx.Nudge = domain.Nudge{Type: domain.NudgeOnTrack}
		ctx.SessionPlannedToday = true

		out := svc.BuildDailyNotificationCandidates(ctx)
		if len(out) != 1 || out[0].Type != domain.NotificationTodayTrainingReminder {
			t.Fatalf("got %+v, want one TODAY_TRAINING_REMINDER", out)
		}
		if out[0].ScopeKey != "day:2025-06-04" {
			t.Fatalf("scope = %q, want day:2025-06-04", out[0].ScopeKey)
		}
	})

	t.Run("completed session suppresses the reminder", func(t *testing.T) {
		ctx := base
		ctx.Nudge = domain.Nudge{Type: domain.NudgeOnTrack}
		ctx.SessionPlannedToday = true
		ctx.SessionCompletedToday = true

		if out := svc.BuildDailyNotificationCandidates(ctx); len(out) != 0 {
			t.Fatalf("expected no candidates, got %d", len(out))
		}
	})

	t.Run("cap keeps the two highest-priority candidates", func(t *testing.T) {
		ctx := base
		ctx.Nudge = domain.Nudge{Type: domain.NudgeStreakBroken}
		ctx.SessionPlannedToday = true
		// A broken streak plus a reminder plus behind-goal cannot all fire at
		// once through the nudge, but the session reminder joins the streak one.
		out := svc.BuildDailyNotificationCandidates(ctx)
		if len(out) > MaxCandidates {
			t.Fatalf("candidates = %d, want at most %d", len(out), MaxCandidates)
		}
		if out[0].Type != domain.NotificationStreakBroken {
			t.Fatalf("first candidate = %s, want STREAK_BROKEN", out[0].Type)
		}
	})

	t.Run("behind-goal nudge without a breakdown stays silent", func(t *testing.T) {
		ctx := base
		ctx.Nudge = domain.Nudge{Type: domain.NudgeBehindGoal}
		ctx.CurrentWeekPercent = nil

		if out := svc.BuildDailyNotificationCandidates(ctx); len(out) != 0 {
			t.Fatalf("expected no candidates without a current percent, got %d", len(out))
		}
	})
}
