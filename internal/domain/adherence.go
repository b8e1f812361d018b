// internal/domain/adherence.go
package domain

import "time"

// Severity ranks insights, alerts and nudges.
type Severity string

const (
	SeverityLow    Severity = "low"
	SeverityMedium Severity = "medium"
	SeverityHigh   Severity = "high"
)

// Rank maps a severity to a sortable weight (higher sorts first).
func (s Severity) Rank() int {
	switch s {
	case SeverityHigh:
		return 3
	case SeverityMedium:
		return 2
	case SeverityLow:
		return 1
	}
	return 0
}

// CategoryBreakdown is the planned/completed/percent triple for one category.
type CategoryBreakdown struct {
	Planned   int `bson:"planned" json:"planned"`
	Completed int `bson:"completed" json:"completed"`
	Percent   int `bson:"percent" json:"percent"`
}

// WeeklyBreakdown is the computed adherence for one user-week. It is derived,
// never persisted by this service (a snapshot collaborator may cache it).
type WeeklyBreakdown struct {
	WeekStart    time.Time         `json:"weekStart"`
	Training     CategoryBreakdown `json:"training"`
	Nutrition    CategoryBreakdown `json:"nutrition"`
	TotalPercent int               `json:"totalPercent"`
}

// Insight types.
type InsightType string

const (
	InsightPlanTooAmbitious      InsightType = "PLAN_TOO_AMBITIOUS"
	InsightTrainingLowAdherence  InsightType = "TRAINING_LOW_ADHERENCE"
	InsightMissedTrainingDays    InsightType = "MISSED_TRAINING_DAYS"
	InsightNutritionLowAdherence InsightType = "NUTRITION_LOW_ADHERENCE"
	InsightMissedMealsDays       InsightType = "MISSED_MEALS_DAYS"
)

// Insight is one ranked observation about a single week.
type Insight struct {
	Type     InsightType `json:"type"`
	Severity Severity    `json:"severity"`
	Title    string      `json:"title"`
	Detail   string      `json:"detail"`
}

// NextAction types.
type NextActionType string

const (
	ActionKeepGoing          NextActionType = "KEEP_GOING"
	ActionReduceDaysPerWeek  NextActionType = "REDUCE_DAYS_PER_WEEK"
	ActionScheduleReminder   NextActionType = "SCHEDULE_REMINDER"
	ActionReduceMealsPerDay  NextActionType = "REDUCE_MEALS_PER_DAY"
	ActionSimplifyCookingTime NextActionType = "SIMPLIFY_COOKING_TIME"
)

// NextAction is the single recommended adjustment for the week.
type NextAction struct {
	Type   NextActionType `json:"type"`
	Title  string         `json:"title"`
	Detail string         `json:"detail"`
}

// Alert types produced by the cross-week trend scan.
type AlertType string

const (
	AlertLowAdherenceStreak    AlertType = "LOW_ADHERENCE_STREAK"
	AlertNutritionDrop         AlertType = "NUTRITION_DROP"
	AlertPlanTooAmbitiousTrend AlertType = "PLAN_TOO_AMBITIOUS_TREND"
	AlertImprovingTrend        AlertType = "IMPROVING_TREND"
)

// Alert is one cross-week pattern worth surfacing.
type Alert struct {
	Type     AlertType   `json:"type"`
	Severity Severity    `json:"severity"`
	Title    string      `json:"title"`
	Detail   string      `json:"detail"`
	Weeks    []time.Time `json:"weeks,omitempty"` // involved week starts, ascending
}

// Streak summarizes goal attainment across recent weeks.
type Streak struct {
	CurrentStreakWeeks int  `json:"currentStreakWeeks"`
	BestStreakWeeks    *int `json:"bestStreakWeeks,omitempty"` // nil when the goal was never met
}

// Nudge types classify the motivational state of the current week.
type NudgeType string

const (
	NudgeOnTrack      NudgeType = "ON_TRACK"
	NudgeBehindGoal   NudgeType = "BEHIND_GOAL"
	NudgeNewStreak    NudgeType = "NEW_STREAK"
	NudgeStreakBroken NudgeType = "STREAK_BROKEN"
)

// Nudge is the single classified motivational state for the current week.
type Nudge struct {
	Type     NudgeType `json:"type"`
	Severity Severity  `json:"severity"`
	Message  string    `json:"message"`
}
