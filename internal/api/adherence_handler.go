// internal/api/adherence_handler.go
package api

import (
	"errors"
	"net/http"
	"time"

	"vitacoach/adherence-app/internal/advice"
	"vitacoach/adherence-app/internal/config"
	"vitacoach/adherence-app/internal/domain"
	"vitacoach/adherence-app/internal/repository"
	"vitacoach/adherence-app/internal/service"
	"vitacoach/adherence-app/internal/week"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

const queryDateLayout = "2006-01-02"

// historyWeeksShown bounds the history and alert endpoints.
const historyWeeksShown = 6

type AdherenceHandler struct {
	snapshots service.SnapshotService
	streaks   service.StreakService
	alerts    service.AlertsService
	reports   service.ReportService
	userRepo  repository.UserRepository
	adviceCfg config.AdviceConfig
}

func NewAdherenceHandler(
	snapshots service.SnapshotService,
	streaks service.StreakService,
	alerts service.AlertsService,
	reports service.ReportService,
	userRepo repository.UserRepository,
	adviceCfg config.AdviceConfig,
) *AdherenceHandler {
	return &AdherenceHandler{
		snapshots: snapshots,
		streaks:   streaks,
		alerts:    alerts,
		reports:   reports,
		userRepo:  userRepo,
		adviceCfg: adviceCfg,
	}
}

// --- DTOs ---

type WeekAdherenceResponse struct {
	WeekStart    string                   `json:"weekStart"`
	Training     domain.CategoryBreakdown `json:"training"`
	Nutrition    domain.CategoryBreakdown `json:"nutrition"`
	TotalPercent int                      `json:"totalPercent"`
	Insights     []domain.Insight         `json:"insights"`
	NextAction   domain.NextAction        `json:"nextAction"`
}

type StreakResponse struct {
	GoalPercent        int  `json:"goalPercent"`
	CurrentStreakWeeks int  `json:"currentStreakWeeks"`
	BestStreakWeeks    *int `json:"bestStreakWeeks,omitempty"`
}

type ReportURLResponse struct {
	WeekStart string `json:"weekStart"`
	URL       string `json:"url"`
	ExpiresIn int    `json:"expiresInSeconds"`
}

func mapSnapshotToWeekResponse(s *service.WeekSnapshot) WeekAdherenceResponse {
	return WeekAdherenceResponse{
		WeekStart:    s.Breakdown.WeekStart.UTC().Format(queryDateLayout),
		Training:     s.Breakdown.Training,
		Nutrition:    s.Breakdown.Nutrition,
		TotalPercent: s.Breakdown.TotalPercent,
		Insights:     s.Insights.Insights,
		NextAction:   s.Insights.NextAction,
	}
}

// --- Handler Methods ---

// GetWeekAdherence godoc
// @Summary Get weekly adherence breakdown
// @Description Returns the adherence breakdown, insights and next action for one week.
// @Tags Adherence
// @Produce json
// @Security BearerAuth
// @Param weekStart query string false "Week start date (YYYY-MM-DD), defaults to the current week"
// @Success 200 {object} WeekAdherenceResponse
// @Failure 404 {object} gin.H "No plan for that week"
// @Router /adherence/week [get]
func (h *AdherenceHandler) GetWeekAdherence(c *gin.Context) {
	userID, ok := requireUserID(c)
	if !ok {
		return
	}
	weekStart, ok := h.parseWeekStart(c)
	if !ok {
		return
	}

	snapshot, err := h.snapshots.WeekSnapshot(c.Request.Context(), userID, weekStart)
	if err != nil {
		if errors.Is(err, service.ErrPlanNotFound) {
			abortWithError(c, http.StatusNotFound, "No plan exists for this week.")
			return
		}
		abortWithError(c, http.StatusInternalServerError, "Failed to compute weekly adherence.")
		return
	}
	c.JSON(http.StatusOK, mapSnapshotToWeekResponse(snapshot))
}

// GetHistory godoc
// @Summary Get recent weekly breakdowns
// @Tags Adherence
// @Produce json
// @Security BearerAuth
// @Success 200 {array} domain.WeeklyBreakdown
// @Router /adherence/history [get]
func (h *AdherenceHandler) GetHistory(c *gin.Context) {
	userID, ok := requireUserID(c)
	if !ok {
		return
	}

	items, err := h.snapshots.RecentBreakdowns(c.Request.Context(), userID, historyWeeksShown, time.Now().UTC())
	if err != nil {
		abortWithError(c, http.StatusInternalServerError, "Failed to compute adherence history.")
		return
	}
	if items == nil {
		c.JSON(http.StatusOK, []domain.WeeklyBreakdown{})
		return
	}
	c.JSON(http.StatusOK, items)
}

// GetStreak godoc
// @Summary Get the current goal streak
// @Tags Adherence
// @Produce json
// @Security BearerAuth
// @Success 200 {object} StreakResponse
// @Router /adherence/streak [get]
func (h *AdherenceHandler) GetStreak(c *gin.Context) {
	userID, ok := requireUserID(c)
	if !ok {
		return
	}

	user, err := h.userRepo.GetByID(c.Request.Context(), userID)
	if err != nil {
		abortWithError(c, http.StatusInternalServerError, "Failed to load user preferences.")
		return
	}

	history, err := h.snapshots.RecentBreakdowns(c.Request.Context(), userID, historyWeeksShown, time.Now().UTC())
	if err != nil {
		abortWithError(c, http.StatusInternalServerError, "Failed to compute adherence history.")
		return
	}

	streak := h.streaks.ComputeStreak(history, user.Preferences.GoalPercent)
	c.JSON(http.StatusOK, StreakResponse{
		GoalPercent:        user.Preferences.GoalPercent,
		CurrentStreakWeeks: streak.CurrentStreakWeeks,
		BestStreakWeeks:    streak.BestStreakWeeks,
	})
}

// GetAlerts godoc
// @Summary Get cross-week trend alerts
// @Tags Adherence
// @Produce json
// @Security BearerAuth
// @Success 200 {array} domain.Alert
// @Router /adherence/alerts [get]
func (h *AdherenceHandler) GetAlerts(c *gin.Context) {
	userID, ok := requireUserID(c)
	if !ok {
		return
	}

	history, err := h.snapshots.RecentBreakdowns(c.Request.Context(), userID, historyWeeksShown, time.Now().UTC())
	if err != nil {
		abortWithError(c, http.StatusInternalServerError, "Failed to compute adherence history.")
		return
	}

	alerts := h.alerts.AdherenceAlerts(history)
	if alerts == nil {
		c.JSON(http.StatusOK, []domain.Alert{})
		return
	}
	c.JSON(http.StatusOK, alerts)
}

// GetAdvice godoc
// @Summary Get generated coaching advice for a week
// @Description Builds the numeric week shape and asks the configured advice provider.
// @Tags Adherence
// @Produce json
// @Security BearerAuth
// @Param weekStart query string false "Week start date (YYYY-MM-DD)"
// @Success 200 {object} advice.Result
// @Failure 503 {object} gin.H "Advice generation disabled"
// @Router /adherence/advice [get]
func (h *AdherenceHandler) GetAdvice(c *gin.Context) {
	userID, ok := requireUserID(c)
	if !ok {
		return
	}
	weekStart, ok := h.parseWeekStart(c)
	if !ok {
		return
	}

	snapshot, err := h.snapshots.WeekSnapshot(c.Request.Context(), userID, weekStart)
	if err != nil {
		if errors.Is(err, service.ErrPlanNotFound) {
			abortWithError(c, http.StatusNotFound, "No plan exists for this week.")
			return
		}
		abortWithError(c, http.StatusInternalServerError, "Failed to compute weekly adherence.")
		return
	}

	shapes := make([]advice.InsightShape, 0, len(snapshot.Insights.Insights))
	for _, ins := range snapshot.Insights.Insights {
		shapes = append(shapes, advice.InsightShape{Type: ins.Type, Severity: ins.Severity})
	}
	req := advice.Request{
		WeekStart:        weekStart.Format(queryDateLayout),
		PlannedSessions:  snapshot.Plan.PlannedTrainingSessions(),
		PlannedMeals:     snapshot.Plan.PlannedMeals(),
		MealsPerDay:      snapshot.Plan.MealsPerDay,
		TrainingPercent:  snapshot.Breakdown.Training.Percent,
		NutritionPercent: snapshot.Breakdown.Nutrition.Percent,
		TotalPercent:     snapshot.Breakdown.TotalPercent,
		Insights:         shapes,
		NextAction:       snapshot.Insights.NextAction.Type,
	}

	result, err := advice.NewProvider(h.adviceCfg).GenerateAdvice(c.Request.Context(), req)
	if err != nil {
		if errors.Is(err, advice.ErrAdviceDisabled) {
			abortWithError(c, http.StatusServiceUnavailable, "Advice generation is disabled.")
			return
		}
		abortWithError(c, http.StatusBadGateway, "Advice provider failed.")
		return
	}
	c.JSON(http.StatusOK, result)
}

// GetReportDownloadURL godoc
// @Summary Get a presigned download link for an archived weekly report
// @Tags Adherence
// @Produce json
// @Security BearerAuth
// @Param weekStart query string false "Week start date (YYYY-MM-DD)"
// @Success 200 {object} ReportURLResponse
// @Router /adherence/report-url [get]
func (h *AdherenceHandler) GetReportDownloadURL(c *gin.Context) {
	userID, ok := requireUserID(c)
	if !ok {
		return
	}
	weekStart, ok := h.parseWeekStart(c)
	if !ok {
		return
	}

	url, err := h.reports.ReportDownloadURL(c.Request.Context(), userID, weekStart)
	if err != nil {
		abortWithError(c, http.StatusInternalServerError, "Failed to generate report download link.")
		return
	}
	c.JSON(http.StatusOK, ReportURLResponse{
		WeekStart: weekStart.Format(queryDateLayout),
		URL:       url,
		ExpiresIn: 15 * 60,
	})
}

// --- Helpers ---

func requireUserID(c *gin.Context) (primitive.ObjectID, bool) {
	idStr, err := getUserIDFromContext(c)
	if err != nil {
		abortWithError(c, http.StatusUnauthorized, "Unable to identify user.")
		return primitive.NilObjectID, false
	}
	userID, err := primitive.ObjectIDFromHex(idStr)
	if err != nil {
		abortWithError(c, http.StatusBadRequest, "Invalid user ID format in token.")
		return primitive.NilObjectID, false
	}
	return userID, true
}

// parseWeekStart reads the optional weekStart query parameter and normalizes
// it to Monday 00:00 UTC, defaulting to the current week.
func (h *AdherenceHandler) parseWeekStart(c *gin.Context) (time.Time, bool) {
	raw := c.Query("weekStart")
	if raw == "" {
		return week.StartOf(time.Now().UTC()), true
	}
	parsed, err := time.ParseInLocation(queryDateLayout, raw, time.UTC)
	if err != nil {
		abortWithError(c, http.StatusBadRequest, "Invalid weekStart, expected YYYY-MM-DD.")
		return time.Time{}, false
	}
	return week.StartOf(parsed), true
}
