package domain

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// NotificationPreferences holds the per-user delivery policy. Authentication
// and profile editing live in external collaborators; this service only reads.
type NotificationPreferences struct {
	GoalPercent     int  `bson:"goalPercent" json:"goalPercent"`         // weekly adherence goal, 0..100
	EmailEnabled    bool `bson:"emailEnabled" json:"emailEnabled"`
	EmailHourUTC    int  `bson:"emailHourUtc" json:"emailHourUtc"`       // preferred delivery hour, 0..23
	PushEnabled     bool `bson:"pushEnabled" json:"pushEnabled"`
	QuietHoursStart int  `bson:"quietHoursStart" json:"quietHoursStart"` // UTC hour, may be > end (crosses midnight)
	QuietHoursEnd   int  `bson:"quietHoursEnd" json:"quietHoursEnd"`
}

// InQuietHours reports whether the given UTC hour falls inside the configured
// quiet window. A start greater than the end means the window crosses midnight.
func (p NotificationPreferences) InQuietHours(hour int) bool {
	if p.QuietHoursStart == p.QuietHoursEnd {
		return false // zero-length window, quiet hours effectively disabled
	}
	if p.QuietHoursStart > p.QuietHoursEnd {
		return hour >= p.QuietHoursStart || hour < p.QuietHoursEnd
	}
	return hour >= p.QuietHoursStart && hour < p.QuietHoursEnd
}

// User represents an account tracked by the adherence service. Email may be
// empty when the user registered through a channel without one.
type User struct {
	ID          primitive.ObjectID      `bson:"_id,omitempty" json:"id"`
	Name        string                  `bson:"name" json:"name"`
	Email       string                  `bson:"email,omitempty" json:"email,omitempty"`
	HasProfile  bool                    `bson:"hasProfile" json:"hasProfile"` // onboarding finished; sweep targets only these
	Preferences NotificationPreferences `bson:"preferences" json:"preferences"`
	CreatedAt   time.Time               `bson:"createdAt" json:"createdAt"`
	UpdatedAt   time.Time               `bson:"updatedAt" json:"updatedAt"`
}
