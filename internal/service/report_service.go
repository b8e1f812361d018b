// internal/service/report_service.go
package service

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"vitacoach/adherence-app/internal/domain"
	"vitacoach/adherence-app/internal/logger"
	"vitacoach/adherence-app/internal/storage"
	"vitacoach/adherence-app/internal/week"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

const reportDateLayout = "2006-01-02"

// WeeklyReport is the archived snapshot of one finished user-week.
type WeeklyReport struct {
	UserID      string                   `json:"userId"`
	WeekStart   string                   `json:"weekStart"`
	GeneratedAt time.Time                `json:"generatedAt"`
	Breakdown   domain.WeeklyBreakdown   `json:"breakdown"`
	Insights    WeeklyInsights           `json:"insights"`
	Streak      domain.Streak            `json:"streak"`
	Alerts      []domain.Alert           `json:"alerts"`
	History     []domain.WeeklyBreakdown `json:"history"`
}

// ReportService archives weekly adherence reports to object storage and hands
// out short-lived download links. Reports are immutable once written; a
// re-archive of the same week simply overwrites the object with identical
// content.
type ReportService interface {
	ArchiveWeeklyReport(ctx context.Context, userID primitive.ObjectID, weekStart time.Time, goalPercent int) (string, error)
	ReportDownloadURL(ctx context.Context, userID primitive.ObjectID, weekStart time.Time) (string, error)
}

type reportService struct {
	snapshots SnapshotService
	streaks   StreakService
	alerts    AlertsService
	archive   storage.ReportArchive
}

// NewReportService creates a new ReportService instance.
func NewReportService(
	snapshots SnapshotService,
	streaks StreakService,
	alerts AlertsService,
	archive storage.ReportArchive,
) ReportService {
	return &reportService{
		snapshots: snapshots,
		streaks:   streaks,
		alerts:    alerts,
		archive:   archive,
	}
}

// ArchiveWeeklyReport computes the full report for one user-week and uploads
// it. Returns the object key the report was stored under.
func (s *reportService) ArchiveWeeklyReport(ctx context.Context, userID primitive.ObjectID, weekStart time.Time, goalPercent int) (string, error) {
	weekStart = week.StartOf(weekStart)

	snapshot, err := s.snapshots.WeekSnapshot(ctx, userID, weekStart)
	if err != nil {
		return "", err
	}

	// History is anchored at the report's week, not at wall-clock now, so
	// re-archiving an old week reproduces the same document.
	historyAnchor := weekStart.AddDate(0, 0, 6)
	history, err := s.snapshots.RecentBreakdowns(ctx, userID, candidateHistoryWeeks, historyAnchor)
	if err != nil {
		return "", err
	}

	report := WeeklyReport{
		UserID:      userID.Hex(),
		WeekStart:   weekStart.Format(reportDateLayout),
		GeneratedAt: time.Now().UTC(),
		Breakdown:   snapshot.Breakdown,
		Insights:    snapshot.Insights,
		Streak:      s.streaks.ComputeStreak(history, goalPercent),
		Alerts:      s.alerts.AdherenceAlerts(history),
		History:     history,
	}

	body, err := json.Marshal(report)
	if err != nil {
		return "", fmt.Errorf("failed to serialize weekly report: %w", err)
	}

	key := reportObjectKey(userID, weekStart)
	if err := s.archive.PutReport(ctx, key, "application/json", body); err != nil {
		return "", err
	}

	logger.Log.Infof("Archived weekly report %s (%d bytes)", key, len(body))
	return key, nil
}

func (s *reportService) ReportDownloadURL(ctx context.Context, userID primitive.ObjectID, weekStart time.Time) (string, error) {
	key := reportObjectKey(userID, week.StartOf(weekStart))
	return s.archive.GeneratePresignedDownloadURL(ctx, key, storage.DefaultPresignedURLExpiry)
}

func reportObjectKey(userID primitive.ObjectID, weekStart time.Time) string {
	return fmt.Sprintf("reports/%s/%s.json", userID.Hex(), weekStart.UTC().Format(reportDateLayout))
}
