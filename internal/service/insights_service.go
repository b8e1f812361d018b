// internal/service/insights_service.go
package service

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"vitacoach/adherence-app/internal/domain"
	"vitacoach/adherence-app/internal/week"
)

var dayNames = [7]string{"Monday", "Tuesday", "Wednesday", "Thursday", "Friday", "Saturday", "Sunday"}

// WeeklyInsights bundles the ranked insights with the one recommended action.
type WeeklyInsights struct {
	Insights   []domain.Insight  `json:"insights"`
	NextAction domain.NextAction `json:"nextAction"`
}

// InsightsService turns one week's breakdown plus the plan shape into ranked
// insights and a single next action. Pure and stateless; recomputed per call.
type InsightsService interface {
	WeeklyAdherenceInsights(breakdown domain.WeeklyBreakdown, plan *domain.WeeklyPlan, trainingLogs []domain.TrainingLog, nutritionLogs []domain.NutritionLog, weekStart time.Time) WeeklyInsights
}

type insightsService struct{}

// NewInsightsService creates the weekly insights engine.
func NewInsightsService() InsightsService {
	return &insightsService{}
}

func (s *insightsService) WeeklyAdherenceInsights(
	breakdown domain.WeeklyBreakdown,
	plan *domain.WeeklyPlan,
	trainingLogs []domain.TrainingLog,
	nutritionLogs []domain.NutritionLog,
	weekStart time.Time,
) WeeklyInsights {
	action := s.nextAction(breakdown, plan)
	insights := s.collectInsights(breakdown, plan, trainingLogs, nutritionLogs, weekStart)

	sortInsightsBySeverity(insights)
	if len(insights) > MaxInsights {
		insights = insights[:MaxInsights]
	}
	return WeeklyInsights{Insights: insights, NextAction: action}
}

// nextAction picks the first matching recommendation, in fixed priority order.
func (s *insightsService) nextAction(b domain.WeeklyBreakdown, plan *domain.WeeklyPlan) domain.NextAction {
	keepGoing := domain.NextAction{
		Type:   domain.ActionKeepGoing,
		Title:  "Keep going",
		Detail: "Your week is in good shape. Stick with the current plan.",
	}

	if b.TotalPercent >= KeepGoingPercent {
		return keepGoing
	}

	if b.Training.Percent < LowCategoryPercent {
		if plan.PlannedTrainingSessions() >= ReduceDaysSessionMin {
			return domain.NextAction{
				Type:   domain.ActionReduceDaysPerWeek,
				Title:  "Try fewer training days",
				Detail: "A plan with fewer weekly sessions is easier to complete consistently.",
			}
		}
		return domain.NextAction{
			Type:   domain.ActionScheduleReminder,
			Title:  "Schedule a training reminder",
			Detail: "Pick a fixed time slot for your sessions and set a reminder.",
		}
	}

	if b.Nutrition.Percent < LowCategoryPercent && plan != nil {
		if plan.MealsPerDay >= ReduceMealsPerDayMin {
			return domain.NextAction{
				Type:   domain.ActionReduceMealsPerDay,
				Title:  "Try fewer meals per day",
				Detail: "Fewer, larger meals are easier to track and follow.",
			}
		}
		if !plan.CookingTime.IsFastTier() {
			return domain.NextAction{
				Type:   domain.ActionSimplifyCookingTime,
				Title:  "Simplify your cooking",
				Detail: "Switching to quicker recipes lowers the barrier on busy days.",
			}
		}
	}

	return keepGoing
}

// collectInsights appends every qualifying insight; the branches are
// independent of the next-action choice and of each other.
func (s *insightsService) collectInsights(
	b domain.WeeklyBreakdown,
	plan *domain.WeeklyPlan,
	trainingLogs []domain.TrainingLog,
	nutritionLogs []domain.NutritionLog,
	weekStart time.Time,
) []domain.Insight {
	var insights []domain.Insight

	sessions := plan.PlannedTrainingSessions()
	meals := plan.PlannedMeals()

	if sessions >= AmbitiousSessionCount && b.Training.Percent < LowWeekPercent {
		insights = append(insights, domain.Insight{
			Type:     domain.InsightPlanTooAmbitious,
			Severity: domain.SeverityHigh,
			Title:    "Training plan may be too ambitious",
			Detail:   fmt.Sprintf("%d sessions were planned but only %d%% got done.", sessions, b.Training.Percent),
		})
	}
	if meals >= AmbitiousMealCount && b.Nutrition.Percent < LowWeekPercent {
		insights = append(insights, domain.Insight{
			Type:     domain.InsightPlanTooAmbitious,
			Severity: domain.SeverityHigh,
			Title:    "Meal plan may be too ambitious",
			Detail:   fmt.Sprintf("%d meals were planned but only %d%% were followed.", meals, b.Nutrition.Percent),
		})
	}

	if sev, ok := lowAdherenceSeverity(b.Training.Percent); ok {
		insights = append(insights, domain.Insight{
			Type:     domain.InsightTrainingLowAdherence,
			Severity: sev,
			Title:    "Training adherence is low",
			Detail:   fmt.Sprintf("You completed %d%% of your planned training this week.", b.Training.Percent),
		})
		if missed := s.missedTrainingDayNames(plan, trainingLogs, weekStart); len(missed) > 0 {
			insights = append(insights, domain.Insight{
				Type:     domain.InsightMissedTrainingDays,
				Severity: oneNotchLower(sev),
				Title:    "Missed training days",
				Detail:   fmt.Sprintf("No completed session on %s.", strings.Join(missed, " and ")),
			})
		}
	}

	if sev, ok := lowAdherenceSeverity(b.Nutrition.Percent); ok {
		insights = append(insights, domain.Insight{
			Type:     domain.InsightNutritionLowAdherence,
			Severity: sev,
			Title:    "Nutrition adherence is low",
			Detail:   fmt.Sprintf("You followed %d%% of your planned meals this week.", b.Nutrition.Percent),
		})
		if zeroDays := countDaysWithoutFollowedMeals(nutritionLogs, weekStart); zeroDays > 0 {
			insights = append(insights, domain.Insight{
				Type:     domain.InsightMissedMealsDays,
				Severity: oneNotchLower(sev),
				Title:    "Days without tracked meals",
				Detail:   fmt.Sprintf("%d of 7 days had no meal following the plan.", zeroDays),
			})
		}
	}

	return insights
}

// missedTrainingDayNames returns up to MaxMissedDaysNamed names of planned
// days with no completed log inside the week.
func (s *insightsService) missedTrainingDayNames(plan *domain.WeeklyPlan, logs []domain.TrainingLog, weekStart time.Time) []string {
	if plan == nil {
		return nil
	}
	window := week.Range(weekStart)

	completedDays := make(map[int]bool)
	for _, l := range logs {
		if l.Completed && window.Contains(l.OccurredAt) {
			completedDays[week.DayIndex(l.OccurredAt)] = true
		}
	}

	var missed []string
	for _, sess := range plan.Sessions {
		if sess.DayIndex < 0 || sess.DayIndex > 6 || completedDays[sess.DayIndex] {
			continue
		}
		completedDays[sess.DayIndex] = true // avoid naming a day twice
		missed = append(missed, dayNames[sess.DayIndex])
		if len(missed) == MaxMissedDaysNamed {
			break
		}
	}
	return missed
}

// countDaysWithoutFollowedMeals counts the week's days (out of 7) that have no
// followed-plan nutrition log at all.
func countDaysWithoutFollowedMeals(logs []domain.NutritionLog, weekStart time.Time) int {
	window := week.Range(weekStart)
	daysWithMeals := make(map[time.Time]bool)
	for _, l := range logs {
		if l.FollowedPlan && window.Contains(l.OccurredAt) {
			daysWithMeals[week.DayKey(l.OccurredAt)] = true
		}
	}
	return 7 - len(daysWithMeals)
}

// lowAdherenceSeverity maps a category percent to an insight severity.
// Below 50 is high, 50..79 is medium, 80 and above produces no insight.
func lowAdherenceSeverity(percent int) (domain.Severity, bool) {
	switch {
	case percent < LowCategoryPercent:
		return domain.SeverityHigh, true
	case percent < MediumCategoryPercent:
		return domain.SeverityMedium, true
	default:
		return "", false
	}
}

func oneNotchLower(sev domain.Severity) domain.Severity {
	switch sev {
	case domain.SeverityHigh:
		return domain.SeverityMedium
	case domain.SeverityMedium:
		return domain.SeverityLow
	default:
		return domain.SeverityLow
	}
}

func sortInsightsBySeverity(insights []domain.Insight) {
	sort.SliceStable(insights, func(i, j int) bool {
		return insights[i].Severity.Rank() > insights[j].Severity.Rank()
	})
}
