// internal/service/adherence_service_test.go
package service

import (
	"testing"
	"time"

	"vitacoach/adherence-app/internal/domain"
)

var testWeekStart = time.Date(2025, 6, 2, 0, 0, 0, 0, time.UTC) // a Monday

func dayAt(dayIndex, hour int) time.Time {
	return testWeekStart.AddDate(0, 0, dayIndex).Add(time.Duration(hour) * time.Hour)
}

func testPlan(sessions, mealsPerDay int) *domain.WeeklyPlan {
	plan := &domain.WeeklyPlan{
		SchemaVersion: domain.PlanSchemaVersion,
		WeekStart:     testWeekStart,
		MealsPerDay:   mealsPerDay,
		CookingTime:   domain.CookingTimeStandard,
	}
	for i := 0; i < sessions; i++ {
		plan.Sessions = append(plan.Sessions, domain.PlannedSession{DayIndex: i})
	}
	for d := 0; d < 7; d++ {
		day := domain.PlannedDay{DayIndex: d}
		for m := 0; m < mealsPerDay; m++ {
			day.Meals = append(day.Meals, domain.PlannedMeal{})
		}
		plan.Days = append(plan.Days, day)
	}
	return plan
}

func TestComputeWeeklyAdherence(t *testing.T) {
	svc := NewAdherenceService()

	t.Run("counts distinct training days and caps at planned", func(t *testing.T) {
		plan := testPlan(3, 0)
		logs := []domain.TrainingLog{
			{OccurredAt: dayAt(0, 9), Completed: true},
			{OccurredAt: dayAt(0, 18), Completed: true}, // same day, counts once
			{OccurredAt: dayAt(1, 9), Completed: true},
			{OccurredAt: dayAt(2, 9), Completed: true},
			{OccurredAt: dayAt(3, 9), Completed: true}, // fourth day exceeds plan
			{OccurredAt: dayAt(4, 9), Completed: false},
		}

		b := svc.ComputeWeeklyAdherence(plan, logs, nil, testWeekStart)
		if b.Training.Planned != 3 || b.Training.Completed != 3 {
			t.Fatalf("training = %d/%d, want 3/3", b.Training.Completed, b.Training.Planned)
		}
		if b.Training.Percent != 100 {
			t.Fatalf("training percent = %d, want 100", b.Training.Percent)
		}
	})

	t.Run("caps nutrition per day at meals per day", func(t *testing.T) {
		plan := testPlan(0, 2)
		var logs []domain.NutritionLog
		for i := 0; i < 5; i++ { // five followed meals on Monday, only two count
			logs = append(logs, domain.NutritionLog{OccurredAt: dayAt(0, 8+i), FollowedPlan: true})
		}
		logs = append(logs, domain.NutritionLog{OccurredAt: dayAt(1, 12), FollowedPlan: true})

		b := svc.ComputeWeeklyAdherence(plan, nil, logs, testWeekStart)
		if b.Nutrition.Planned != 14 {
			t.Fatalf("planned meals = %d, want 14", b.Nutrition.Planned)
		}
		if b.Nutrition.Completed != 3 {
			t.Fatalf("completed meals = %d, want 3", b.Nutrition.Completed)
		}
	})

	t.Run("ignores logs outside the week window", func(t *testing.T) {
		plan := testPlan(2, 1)
		training := []domain.TrainingLog{
			{OccurredAt: testWeekStart.Add(-time.Hour), Completed: true},      // previous week
			{OccurredAt: testWeekStart.AddDate(0, 0, 7), Completed: true},     // next Monday 00:00, excluded
			{OccurredAt: testWeekStart.AddDate(0, 0, 7).Add(-time.Second), Completed: true}, // Sunday night, included
		}

		b := svc.ComputeWeeklyAdherence(plan, training, nil, testWeekStart)
		if b.Training.Completed != 1 {
			t.Fatalf("training completed = %d, want 1", b.Training.Completed)
		}
	})

	t.Run("zero planned yields zero percent, not an error", func(t *testing.T) {
		b := svc.ComputeWeeklyAdherence(nil, nil, nil, testWeekStart)
		if b.Training.Percent != 0 || b.Nutrition.Percent != 0 || b.TotalPercent != 0 {
			t.Fatalf("expected all-zero breakdown, got %+v", b)
		}
	})

	t.Run("total combines both categories with rounding", func(t *testing.T) {
		plan := testPlan(3, 1) // 3 sessions + 7 meals = 10 planned units
		training := []domain.TrainingLog{
			{OccurredAt: dayAt(0, 9), Completed: true},
			{OccurredAt: dayAt(1, 9), Completed: true},
		}
		nutrition := []domain.NutritionLog{
			{OccurredAt: dayAt(0, 12), FollowedPlan: true},
		}

		b := svc.ComputeWeeklyAdherence(plan, training, nutrition, testWeekStart)
		if b.TotalPercent != 30 {
			t.Fatalf("total percent = %d, want 30", b.TotalPercent)
		}
		if b.Training.Percent != 67 { // 2/3 rounds to 67
			t.Fatalf("training percent = %d, want 67", b.Training.Percent)
		}
	})
}
