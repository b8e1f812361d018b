package api

import (
	"net/http"

	"vitacoach/adherence-app/internal/config"
	"vitacoach/adherence-app/internal/repository"
	"vitacoach/adherence-app/internal/service"

	"github.com/gin-gonic/gin"
)

// RouteDeps bundles everything the HTTP surface needs. The API never touches
// Mongo directly except through the repository interfaces listed here.
type RouteDeps struct {
	Config config.Config

	Snapshots     service.SnapshotService
	Streaks       service.StreakService
	Alerts        service.AlertsService
	Reports       service.ReportService
	Notifications service.NotificationService
	EmailDelivery service.EmailDeliveryService
	PushDelivery  service.PushDeliveryService
	Regeneration  service.RegenerationService

	UserRepo repository.UserRepository
	SubRepo  repository.SubscriptionRepository
}

func SetupRoutes(router *gin.Engine, deps RouteDeps) {
	adherenceHandler := NewAdherenceHandler(
		deps.Snapshots, deps.Streaks, deps.Alerts, deps.Reports, deps.UserRepo, deps.Config.Advice,
	)
	subscriptionHandler := NewSubscriptionHandler(deps.SubRepo)
	cronHandler := NewCronHandler(
		deps.Notifications, deps.EmailDelivery, deps.PushDelivery, deps.Regeneration, deps.Config.Cron,
	)

	authMiddleware := AuthMiddleware(deps.Config.JWT.Secret)
	cronMiddleware := CronSecretMiddleware(deps.Config.Cron.Secret)

	router.GET("/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"message": "pong"})
	})

	apiV1 := router.Group("/api/v1")

	protected := apiV1.Group("")
	protected.Use(authMiddleware)
	{
		adherenceGroup := protected.Group("/adherence")
		{
			// GET /api/v1/adherence/week?weekStart=YYYY-MM-DD
			adherenceGroup.GET("/week", adherenceHandler.GetWeekAdherence)
			// GET /api/v1/adherence/history
			adherenceGroup.GET("/history", adherenceHandler.GetHistory)
			// GET /api/v1/adherence/streak
			adherenceGroup.GET("/streak", adherenceHandler.GetStreak)
			// GET /api/v1/adherence/alerts
			adherenceGroup.GET("/alerts", adherenceHandler.GetAlerts)
			// GET /api/v1/adherence/advice?weekStart=YYYY-MM-DD
			adherenceGroup.GET("/advice", adherenceHandler.GetAdvice)
			// GET /api/v1/adherence/report-url?weekStart=YYYY-MM-DD
			adherenceGroup.GET("/report-url", adherenceHandler.GetReportDownloadURL)
		}

		pushGroup := protected.Group("/push")
		{
			pushGroup.POST("/subscriptions", subscriptionHandler.RegisterSubscription)
			pushGroup.GET("/subscriptions", subscriptionHandler.ListSubscriptions)
			pushGroup.DELETE("/subscriptions", subscriptionHandler.UnregisterSubscription)
		}
	}

	// The cron group authenticates with the shared secret, not a user token.
	cronGroup := apiV1.Group("/cron")
	cronGroup.Use(cronMiddleware)
	{
		cronGroup.POST("/notifications/candidates", cronHandler.RunCandidateGeneration)
		cronGroup.POST("/notifications/email", cronHandler.RunEmailDelivery)
		cronGroup.POST("/notifications/push", cronHandler.RunPushDelivery)
		cronGroup.POST("/regeneration", cronHandler.RunRegenerationSweep)
	}
}
