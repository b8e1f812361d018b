// internal/service/alerts_service_test.go
package service

import (
	"testing"

	"vitacoach/adherence-app/internal/domain"
)

func weekTotals(totals ...int) []domain.WeeklyBreakdown {
	items := breakdownsDesc(totals...)
	for i := range items {
		// keep category percents level with the total unless a test overrides
		items[i].Training.Percent = totals[i]
		items[i].Nutrition.Percent = totals[i]
	}
	return items
}

func findAlert(alerts []domain.Alert, typ domain.AlertType) *domain.Alert {
	for i := range alerts {
		if alerts[i].Type == typ {
			return &alerts[i]
		}
	}
	return nil
}

func TestAdherenceAlerts(t *testing.T) {
	svc := NewAlertsService()

	t.Run("two low weeks raise a high-severity streak alert", func(t *testing.T) {
		items := weekTotals(50, 55, 90)
		alerts := svc.AdherenceAlerts(items)

		alert := findAlert(alerts, domain.AlertLowAdherenceStreak)
		if alert == nil {
			t.Fatal("expected LOW_ADHERENCE_STREAK alert")
		}
		if alert.Severity != domain.SeverityHigh {
			t.Fatalf("severity = %s, want high", alert.Severity)
		}
		if len(alert.Weeks) != 2 {
			t.Fatalf("weeks = %d, want 2", len(alert.Weeks))
		}
		if !alert.Weeks[0].Before(alert.Weeks[1]) {
			t.Fatal("weeks should be listed in ascending order")
		}
	})

	t.Run("three or more low weeks change the title wording", func(t *testing.T) {
		two := findAlert(svc.AdherenceAlerts(weekTotals(50, 55, 90)), domain.AlertLowAdherenceStreak)
		three := findAlert(svc.AdherenceAlerts(weekTotals(50, 55, 40)), domain.AlertLowAdherenceStreak)
		if two == nil || three == nil {
			t.Fatal("expected streak alerts in both runs")
		}
		if two.Title == three.Title {
			t.Fatal("expected different titles for 2-week and 3-week runs")
		}
	})

	t.Run("nutrition drop fires on a wide gap", func(t *testing.T) {
		items := weekTotals(70)
		items[0].Training.Percent = 80
		items[0].Nutrition.Percent = 35 // gap 45, below the high cut

		alert := findAlert(svc.AdherenceAlerts(items), domain.AlertNutritionDrop)
		if alert == nil {
			t.Fatal("expected NUTRITION_DROP alert")
		}
		if alert.Severity != domain.SeverityHigh {
			t.Fatalf("severity = %s, want high", alert.Severity)
		}
	})

	t.Run("ambitious trend is suppressed while the low streak fires", func(t *testing.T) {
		items := weekTotals(40, 45)
		alerts := svc.AdherenceAlerts(items)

		if findAlert(alerts, domain.AlertLowAdherenceStreak) == nil {
			t.Fatal("expected the low streak alert")
		}
		if findAlert(alerts, domain.AlertPlanTooAmbitiousTrend) != nil {
			t.Fatal("ambitious trend must not double up with the low streak alert")
		}
	})

	t.Run("improving trend on a ten point climb", func(t *testing.T) {
		items := weekTotals(75, 60)
		alert := findAlert(svc.AdherenceAlerts(items), domain.AlertImprovingTrend)
		if alert == nil {
			t.Fatal("expected IMPROVING_TREND alert")
		}
		if alert.Severity != domain.SeverityLow {
			t.Fatalf("severity = %s, want low", alert.Severity)
		}
	})

	t.Run("unsorted input is handled and output ordered by severity", func(t *testing.T) {
		items := weekTotals(55, 50, 90)
		// oldest first; the engine must re-sort before counting runs
		reversed := []domain.WeeklyBreakdown{items[2], items[1], items[0]}

		alerts := svc.AdherenceAlerts(reversed)
		if findAlert(alerts, domain.AlertLowAdherenceStreak) == nil {
			t.Fatal("expected the low streak alert from re-sorted input")
		}
		for i := 1; i < len(alerts); i++ {
			if alerts[i-1].Severity.Rank() < alerts[i].Severity.Rank() {
				t.Fatal("alerts are not sorted high to low")
			}
		}
	})

	t.Run("empty history yields no alerts", func(t *testing.T) {
		if alerts := svc.AdherenceAlerts(nil); len(alerts) != 0 {
			t.Fatalf("expected no alerts, got %d", len(alerts))
		}
	})
}
