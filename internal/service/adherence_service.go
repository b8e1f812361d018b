// internal/service/adherence_service.go
package service

import (
	"math"
	"time"

	"vitacoach/adherence-app/internal/domain"
	"vitacoach/adherence-app/internal/week"
)

// AdherenceService computes the planned-vs-completed breakdown for one
// user-week. It is pure: same plan and logs always produce the same breakdown,
// so it may be called from any number of handlers without coordination.
type AdherenceService interface {
	ComputeWeeklyAdherence(plan *domain.WeeklyPlan, trainingLogs []domain.TrainingLog, nutritionLogs []domain.NutritionLog, weekStart time.Time) domain.WeeklyBreakdown
}

type adherenceService struct{}

// NewAdherenceService creates the weekly adherence calculator.
func NewAdherenceService() AdherenceService {
	return &adherenceService{}
}

// ComputeWeeklyAdherence derives the training/nutrition/total percentages.
// A nil plan or missing arrays count as zero planned activity, never an error;
// rejecting malformed plan documents is the job of the upstream validation gate.
func (s *adherenceService) ComputeWeeklyAdherence(
	plan *domain.WeeklyPlan,
	trainingLogs []domain.TrainingLog,
	nutritionLogs []domain.NutritionLog,
	weekStart time.Time,
) domain.WeeklyBreakdown {
	window := week.Range(weekStart)

	plannedTraining := plan.PlannedTrainingSessions()
	plannedNutrition := plan.PlannedMeals()

	// Training: a day counts once no matter how many completed logs it has.
	trainedDays := make(map[int]struct{})
	for _, l := range trainingLogs {
		if !l.Completed || !window.Contains(l.OccurredAt) {
			continue
		}
		trainedDays[week.DayIndex(l.OccurredAt)] = struct{}{}
	}
	completedTraining := len(trainedDays)
	if completedTraining > plannedTraining {
		completedTraining = plannedTraining
	}

	// Nutrition: per-day counters capped at MealsPerDay, then summed.
	mealsPerDay := 0
	if plan != nil {
		mealsPerDay = plan.MealsPerDay
	}
	mealsByDay := make(map[time.Time]int)
	for _, l := range nutritionLogs {
		if !l.FollowedPlan || !window.Contains(l.OccurredAt) {
			continue
		}
		day := week.DayKey(l.OccurredAt)
		if mealsByDay[day] < mealsPerDay {
			mealsByDay[day]++
		}
	}
	completedNutrition := 0
	for _, n := range mealsByDay {
		completedNutrition += n
	}

	return domain.WeeklyBreakdown{
		WeekStart: window.Start,
		Training: domain.CategoryBreakdown{
			Planned:   plannedTraining,
			Completed: completedTraining,
			Percent:   percentOf(completedTraining, plannedTraining),
		},
		Nutrition: domain.CategoryBreakdown{
			Planned:   plannedNutrition,
			Completed: completedNutrition,
			Percent:   percentOf(completedNutrition, plannedNutrition),
		},
		TotalPercent: percentOf(completedTraining+completedNutrition, plannedTraining+plannedNutrition),
	}
}

// percentOf rounds completed/planned to a whole percent; zero planned yields
// zero rather than a division error.
func percentOf(completed, planned int) int {
	if planned == 0 {
		return 0
	}
	return int(math.Round(float64(completed) / float64(planned) * 100))
}
