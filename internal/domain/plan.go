// internal/domain/plan.go
package domain

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// PlanSchemaVersion is the only plan document shape this service understands.
// Documents carrying any other version are quarantined by the validation gate
// upstream and must never reach the calculators.
const PlanSchemaVersion = 1

// CookingTime mirrors the user's preferred meal-preparation effort tier.
type CookingTime string

const (
	CookingTimeMinimal   CookingTime = "minimal" // fastest tier
	CookingTimeQuick     CookingTime = "quick"   // second fastest tier
	CookingTimeStandard  CookingTime = "standard"
	CookingTimeElaborate CookingTime = "elaborate"
)

// IsFastTier reports whether the setting is one of the two fastest tiers,
// in which case suggesting an even simpler cooking time makes no sense.
func (c CookingTime) IsFastTier() bool {
	return c == CookingTimeMinimal || c == CookingTimeQuick
}

// PlannedSession is one scheduled training session inside a week.
type PlannedSession struct {
	DayIndex int    `bson:"dayIndex" json:"dayIndex"` // 0=Monday .. 6=Sunday
	Focus    string `bson:"focus,omitempty" json:"focus,omitempty"`
}

// PlannedMeal is one meal slot inside a planned day.
type PlannedMeal struct {
	Name string `bson:"name,omitempty" json:"name,omitempty"`
}

// PlannedDay groups the meal slots of one weekday.
type PlannedDay struct {
	DayIndex int           `bson:"dayIndex" json:"dayIndex"`
	Meals    []PlannedMeal `bson:"meals" json:"meals"`
}

// WeeklyPlan is the materialized plan for one user-week. This service reads the
// plan shape and mutates ONLY the regeneration lock fields; content generation
// belongs to the plan-management collaborator.
type WeeklyPlan struct {
	ID            primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	UserID        primitive.ObjectID `bson:"userId" json:"userId"`
	WeekStart     time.Time          `bson:"weekStart" json:"weekStart"` // Monday 00:00 UTC
	SchemaVersion int                `bson:"schemaVersion" json:"schemaVersion"`

	Sessions    []PlannedSession `bson:"sessions" json:"sessions"`
	Days        []PlannedDay     `bson:"days" json:"days"`
	MealsPerDay int              `bson:"mealsPerDay" json:"mealsPerDay"`
	CookingTime CookingTime      `bson:"cookingTime,omitempty" json:"cookingTime,omitempty"`

	// Regeneration lock. Both fields are nil when unlocked; they are set together
	// by the claiming worker and cleared together on release.
	RegenLockID   *string    `bson:"regenLockId,omitempty" json:"-"`
	RegenLockedAt *time.Time `bson:"regenLockedAt,omitempty" json:"-"`

	CreatedAt time.Time `bson:"createdAt" json:"createdAt"`
	UpdatedAt time.Time `bson:"updatedAt" json:"updatedAt"`
}

// PlannedTrainingSessions counts the scheduled sessions, tolerating a nil slice.
func (p *WeeklyPlan) PlannedTrainingSessions() int {
	if p == nil {
		return 0
	}
	return len(p.Sessions)
}

// PlannedMeals sums the meal slots across all planned days, tolerating nil slices.
func (p *WeeklyPlan) PlannedMeals() int {
	if p == nil {
		return 0
	}
	total := 0
	for _, d := range p.Days {
		total += len(d.Meals)
	}
	return total
}
