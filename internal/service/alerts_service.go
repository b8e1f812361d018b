// internal/service/alerts_service.go
package service

import (
	"fmt"
	"sort"
	"time"

	"vitacoach/adherence-app/internal/domain"
)

// AlertsService scans a short history of weekly breakdowns for cross-week
// patterns worth alerting on. Pure and stateless.
type AlertsService interface {
	// AdherenceAlerts accepts breakdowns in any order; they are re-sorted
	// most-recent-first internally. Returns at most 3 alerts, high to low.
	AdherenceAlerts(items []domain.WeeklyBreakdown) []domain.Alert
}

type alertsService struct{}

// NewAlertsService creates the trend alerts engine.
func NewAlertsService() AlertsService {
	return &alertsService{}
}

func (s *alertsService) AdherenceAlerts(items []domain.WeeklyBreakdown) []domain.Alert {
	if len(items) == 0 {
		return nil
	}

	// Defensive re-sort: callers are supposed to pass weeks descending, but a
	// mis-ordered history would silently produce wrong streak runs.
	sorted := make([]domain.WeeklyBreakdown, len(items))
	copy(sorted, items)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].WeekStart.After(sorted[j].WeekStart)
	})

	var alerts []domain.Alert

	lowStreakFired := false
	if run := leadingLowRun(sorted); run >= 2 {
		lowStreakFired = true
		weeks := make([]time.Time, 0, run)
		for i := run - 1; i >= 0; i-- { // chronological (ascending) order
			weeks = append(weeks, sorted[i].WeekStart)
		}
		title := "Adherence below 60% two weeks running"
		if run >= 3 {
			title = "Adherence below 60% for three or more weeks"
		}
		alerts = append(alerts, domain.Alert{
			Type:     domain.AlertLowAdherenceStreak,
			Severity: domain.SeverityHigh,
			Title:    title,
			Detail:   fmt.Sprintf("Your total adherence has stayed under %d%% for %d consecutive weeks.", LowWeekPercent, run),
			Weeks:    weeks,
		})
	}

	latest := sorted[0]
	if latest.Nutrition.Percent <= latest.Training.Percent-NutritionDropGap && latest.Nutrition.Percent < LowWeekPercent {
		severity := domain.SeverityMedium
		if latest.Nutrition.Percent < NutritionDropHighCut {
			severity = domain.SeverityHigh
		}
		alerts = append(alerts, domain.Alert{
			Type:     domain.AlertNutritionDrop,
			Severity: severity,
			Title:    "Nutrition is lagging behind training",
			Detail: fmt.Sprintf("This week nutrition sits at %d%% while training is at %d%%.",
				latest.Nutrition.Percent, latest.Training.Percent),
		})
	}

	if !lowStreakFired && len(sorted) >= 2 &&
		sorted[0].TotalPercent < LowWeekPercent && sorted[1].TotalPercent < LowWeekPercent &&
		latest.Training.Percent < LowWeekPercent && latest.Nutrition.Percent < LowWeekPercent {
		alerts = append(alerts, domain.Alert{
			Type:     domain.AlertPlanTooAmbitiousTrend,
			Severity: domain.SeverityMedium,
			Title:    "The plan may be too ambitious",
			Detail:   "Both training and nutrition have been under 60% for two weeks. A lighter plan could work better.",
		})
	}

	if len(sorted) >= 2 && sorted[0].TotalPercent >= sorted[1].TotalPercent+ImprovingDelta {
		alerts = append(alerts, domain.Alert{
			Type:     domain.AlertImprovingTrend,
			Severity: domain.SeverityLow,
			Title:    "Nice recovery this week",
			Detail: fmt.Sprintf("Total adherence climbed from %d%% to %d%%.",
				sorted[1].TotalPercent, sorted[0].TotalPercent),
		})
	}

	sortBySeverity(alerts)
	if len(alerts) > MaxAlerts {
		alerts = alerts[:MaxAlerts]
	}
	return alerts
}

// leadingLowRun counts how many of the most recent weeks in a row fell below
// the low-week threshold.
func leadingLowRun(sortedDesc []domain.WeeklyBreakdown) int {
	run := 0
	for _, item := range sortedDesc {
		if item.TotalPercent >= LowWeekPercent {
			break
		}
		run++
	}
	return run
}

// sortBySeverity orders high before medium before low, preserving insertion
// order among equals.
func sortBySeverity(alerts []domain.Alert) {
	sort.SliceStable(alerts, func(i, j int) bool {
		return alerts[i].Severity.Rank() > alerts[j].Severity.Rank()
	})
}
