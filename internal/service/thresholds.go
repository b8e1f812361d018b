// internal/service/thresholds.go
package service

import "time"

// Product thresholds shared across the adherence engines. The values carry
// behavioral meaning for users; change them only together with product.
const (
	// Percent cutoffs.
	KeepGoingPercent      = 85 // at or above: no corrective action suggested
	LowCategoryPercent    = 50 // below: category adherence is considered low
	MediumCategoryPercent = 80 // below (and >= 50): category adherence is mediocre
	LowWeekPercent        = 60 // below: a week counts toward low-adherence streaks

	// Severity gaps and deltas.
	BehindGoalHighGap    = 20 // goal minus percent at or above this is a high-severity miss
	NutritionDropGap     = 20 // nutrition must trail training by at least this
	NutritionDropHighCut = 40 // nutrition below this makes the drop high severity
	ImprovingDelta       = 10 // latest week must beat previous by at least this

	// Plan-shape cutoffs for "too ambitious".
	AmbitiousSessionCount = 5
	AmbitiousMealCount    = 28
	ReduceDaysSessionMin  = 4 // at or above: suggest fewer sessions rather than reminders
	ReduceMealsPerDayMin  = 4

	// Output caps.
	MaxInsights        = 3
	MaxAlerts          = 3
	MaxCandidates      = 2
	MaxMissedDaysNamed = 2

	// Streak qualification.
	MinStreakWeeks = 2

	// Delivery policy.
	MaxChannelAttempts   = 3
	EmailFreshnessWindow = 24 * time.Hour
	MaxErrorMessageLen   = 200

	// Regeneration lock staleness; older claims are considered abandoned.
	RegenLockStaleness = 15 * time.Minute
)
