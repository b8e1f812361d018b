// Package advice guards the boundary to the external advice-generation step.
// It owns two things: the deterministic fingerprint of an advice request used
// for caching and audit, and the provider selection that keeps stand-in
// implementations from ever returning fabricated advice to users.
package advice

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"

	"vitacoach/adherence-app/internal/domain"
)

// InsightShape is the hashable projection of one insight: type and severity
// only. Titles and details are free text and must never influence the hash.
type InsightShape struct {
	Type     domain.InsightType `json:"type"`
	Severity domain.Severity    `json:"severity"`
}

// Request is the shape of one advice-generation call. Every field is a number,
// enum, or date string; free text is excluded by construction so that two
// weeks with the same numeric shape share a fingerprint regardless of wording.
type Request struct {
	WeekStart        string                 `json:"weekStart"` // 2006-01-02
	PlannedSessions  int                    `json:"plannedSessions"`
	PlannedMeals     int                    `json:"plannedMeals"`
	MealsPerDay      int                    `json:"mealsPerDay"`
	TrainingPercent  int                    `json:"trainingPercent"`
	NutritionPercent int                    `json:"nutritionPercent"`
	TotalPercent     int                    `json:"totalPercent"`
	Insights         []InsightShape         `json:"insights"`
	NextAction       domain.NextActionType  `json:"nextAction"`
}

// Fingerprint produces the stable hash of a request. The value is round-tripped
// through a generic JSON document so that every object level is serialized with
// sorted keys; struct field order and map iteration order cannot leak in.
func Fingerprint(req Request) (string, error) {
	canonical, err := canonicalJSON(req)
	if err != nil {
		return "", fmt.Errorf("failed to canonicalize advice request: %w", err)
	}
	sum := sha256.Sum256(canonical)
	return hex.EncodeToString(sum[:]), nil
}

// canonicalJSON re-encodes v with deterministic key order at every depth.
// encoding/json sorts map keys, so decoding into interface{} and re-encoding
// yields a canonical byte stream.
func canonicalJSON(v interface{}) ([]byte, error) {
	raw, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	var doc interface{}
	if err := json.Unmarshal(raw, &doc); err != nil {
		return nil, err
	}
	return json.Marshal(doc)
}
