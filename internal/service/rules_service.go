// internal/service/rules_service.go
package service

import (
	"fmt"
	"sort"
	"time"

	"vitacoach/adherence-app/internal/domain"
)

const scopeDateLayout = "2006-01-02"

// CandidateContext is everything the rule engine needs to decide what, if
// anything, should be said to one user today.
type CandidateContext struct {
	Today              time.Time // any timestamp inside today
	WeekStart          time.Time
	GoalPercent        int
	Nudge              domain.Nudge
	CurrentWeekPercent *int // nil when no breakdown could be computed
	SessionPlannedToday   bool
	SessionCompletedToday bool
}

// NotificationCandidate is one proposed notification row. The scope key makes
// redundant rule runs collapse on the (user, type, scopeKey) unique index.
type NotificationCandidate struct {
	Type     domain.NotificationType
	ScopeKey string
	Title    string
	Message  string
	Data     map[string]string
}

// RulesService turns nudge and session state into a bounded, prioritized set
// of notification candidates. Pure and stateless.
type RulesService interface {
	BuildDailyNotificationCandidates(ctx CandidateContext) []NotificationCandidate
}

type rulesService struct{}

// NewRulesService creates the notification rule engine.
func NewRulesService() RulesService {
	return &rulesService{}
}

// truncation priority: lower survives first.
var candidatePriority = map[domain.NotificationType]int{
	domain.NotificationStreakBroken:          0,
	domain.NotificationTodayTrainingReminder: 1,
	domain.NotificationWeekBehindGoal:        2,
}

func (s *rulesService) BuildDailyNotificationCandidates(ctx CandidateContext) []NotificationCandidate {
	weekKey := "week:" + ctx.WeekStart.UTC().Format(scopeDateLayout)
	dayKey := "day:" + ctx.Today.UTC().Format(scopeDateLayout)

	var candidates []NotificationCandidate

	if ctx.Nudge.Type == domain.NudgeBehindGoal && ctx.CurrentWeekPercent != nil && *ctx.CurrentWeekPercent < ctx.GoalPercent {
		candidates = append(candidates, NotificationCandidate{
			Type:     domain.NotificationWeekBehindGoal,
			ScopeKey: weekKey,
			Title:    "This week needs a push",
			Message:  fmt.Sprintf("You are at %d%% of your %d%% weekly goal. There is still time.", *ctx.CurrentWeekPercent, ctx.GoalPercent),
			Data: map[string]string{
				"weekStart":   ctx.WeekStart.UTC().Format(scopeDateLayout),
				"percent":     fmt.Sprintf("%d", *ctx.CurrentWeekPercent),
				"goalPercent": fmt.Sprintf("%d", ctx.GoalPercent),
			},
		})
	}

	if ctx.Nudge.Type == domain.NudgeStreakBroken {
		candidates = append(candidates, NotificationCandidate{
			Type:     domain.NotificationStreakBroken,
			ScopeKey: weekKey,
			Title:    "Your streak ended",
			Message:  "Last week broke your run of on-goal weeks. One solid week starts a new one.",
			Data:     map[string]string{"weekStart": ctx.WeekStart.UTC().Format(scopeDateLayout)},
		})
	}

	if ctx.SessionPlannedToday && !ctx.SessionCompletedToday {
		candidates = append(candidates, NotificationCandidate{
			Type:     domain.NotificationTodayTrainingReminder,
			ScopeKey: dayKey,
			Title:    "Training planned for today",
			Message:  "You have a session on today's plan that is not done yet.",
			Data:     map[string]string{"date": ctx.Today.UTC().Format(scopeDateLayout)},
		})
	}

	sort.SliceStable(candidates, func(i, j int) bool {
		return candidatePriority[candidates[i].Type] < candidatePriority[candidates[j].Type]
	})
	if len(candidates) > MaxCandidates {
		candidates = candidates[:MaxCandidates]
	}
	return candidates
}
