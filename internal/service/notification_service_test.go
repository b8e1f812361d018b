// internal/service/notification_service_test.go
package service

import (
	"context"
	"testing"
	"time"

	"vitacoach/adherence-app/internal/domain"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

func candidateFixture(t *testing.T) (NotificationService, *fakeNotificationRepo, time.Time) {
	t.Helper()
	userID := primitive.NewObjectID()
	now := time.Date(2025, 6, 4, 8, 0, 0, 0, time.UTC) // Wednesday

	users := &fakeUserRepo{users: []domain.User{{
		ID:         userID,
		HasProfile: true,
		Preferences: domain.NotificationPreferences{GoalPercent: 80},
	}}}

	plans := newFakePlanRepo()
	plan := testPlan(3, 2)
	plan.UserID = userID
	plan.Sessions = []domain.PlannedSession{{DayIndex: 0}, {DayIndex: 2}, {DayIndex: 4}} // Mon, Wed, Fri
	plans.put(plan)

	activity := &fakeActivityRepo{} // nothing logged yet
	notifs := &fakeNotificationRepo{}

	snapshots := NewSnapshotService(plans, activity, NewAdherenceService(), NewInsightsService())
	svc := NewNotificationService(users, plans, activity, notifs, snapshots, NewStreakService(), NewRulesService())
	return svc, notifs, now
}

func TestGenerateDailyCandidates(t *testing.T) {
	t.Run("behind goal with a session today creates both candidates", func(t *testing.T) {
		svc, notifs, now := candidateFixture(t)

		report, err := svc.GenerateDailyCandidates(context.Background(), now)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if report.Processed != 1 || report.Created != 2 {
			t.Fatalf("report = %+v, want {1 2}", report)
		}

		var haveReminder, haveBehind bool
		for _, n := range notifs.rows {
			switch n.Type {
			case domain.NotificationTodayTrainingReminder:
				haveReminder = true
				if n.ScopeKey != "day:2025-06-04" {
					t.Fatalf("reminder scope = %q", n.ScopeKey)
				}
			case domain.NotificationWeekBehindGoal:
				haveBehind = true
				if n.ScopeKey != "week:2025-06-02" {
					t.Fatalf("behind-goal scope = %q", n.ScopeKey)
				}
			}
		}
		if !haveReminder || !haveBehind {
			t.Fatalf("rows = %+v, want reminder and behind-goal", notifs.rows)
		}
	})

	t.Run("rerunning the pass creates nothing new", func(t *testing.T) {
		svc, notifs, now := candidateFixture(t)

		if _, err := svc.GenerateDailyCandidates(context.Background(), now); err != nil {
			t.Fatalf("first pass: %v", err)
		}
		report, err := svc.GenerateDailyCandidates(context.Background(), now)
		if err != nil {
			t.Fatalf("second pass: %v", err)
		}
		if report.Created != 0 {
			t.Fatalf("second pass created = %d, want 0", report.Created)
		}
		if len(notifs.rows) != 2 {
			t.Fatalf("rows = %d, want the original 2", len(notifs.rows))
		}
	})
}
