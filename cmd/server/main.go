package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"vitacoach/adherence-app/internal/api"
	"vitacoach/adherence-app/internal/config"
	"vitacoach/adherence-app/internal/logger"
	"vitacoach/adherence-app/internal/repository/mongo"
	"vitacoach/adherence-app/internal/scheduler"
	"vitacoach/adherence-app/internal/service"
	"vitacoach/adherence-app/internal/storage"
	"vitacoach/adherence-app/internal/transport"

	"github.com/gin-gonic/gin"
)

// @title Adherence & Notifications API
// @version 1.0
// @description Weekly plan adherence analytics, goal streaks and notification delivery.
// @host localhost:8080
// @BasePath /api/v1
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and JWT token.
func main() {
	// --- Configuration ---
	cfg, err := config.LoadConfig(".")
	if err != nil {
		logger.Log.Fatalf("FATAL: Could not load config: %v", err)
	}
	logger.Init(cfg.Log)
	logger.Log.Info("Configuration loaded.")

	// --- Database Connection ---
	dbClient, err := mongo.ConnectDB(cfg.Database.URI)
	if err != nil {
		logger.Log.Fatalf("FATAL: Could not connect to MongoDB: %v", err)
	}
	defer func() {
		logger.Log.Info("Disconnecting MongoDB...")
		if err := mongo.DisconnectDB(dbClient); err != nil {
			logger.Log.Errorf("Failed to disconnect MongoDB: %v", err)
		}
	}()
	appDB := dbClient.Database(cfg.Database.Name)
	logger.Log.Info("Database connection established.")

	// --- Ensure Indexes ---
	go func() { // Run index creation concurrently/in background
		ctx, cancel := context.WithTimeout(context.Background(), 1*time.Minute)
		defer cancel()
		mongo.EnsureUserIndexes(ctx, appDB.Collection("users"))
		mongo.EnsurePlanIndexes(ctx, appDB.Collection("weekly_plans"))
		mongo.EnsureActivityLogIndexes(ctx, appDB.Collection("training_logs"), appDB.Collection("nutrition_logs"))
		mongo.EnsureNotificationIndexes(ctx, appDB.Collection("notifications"))
		mongo.EnsureSubscriptionIndexes(ctx, appDB.Collection("push_subscriptions"))
		logger.Log.Info("Index creation process completed.")
	}()

	// --- Initialize Storage ---
	reportArchive, err := storage.NewS3ReportArchive(cfg.S3)
	if err != nil {
		logger.Log.Fatalf("FATAL: Failed to initialize S3 report archive: %v", err)
	}

	// --- Initialize Repositories ---
	userRepo := mongo.NewMongoUserRepository(appDB)
	planRepo := mongo.NewMongoPlanRepository(appDB)
	activityRepo := mongo.NewMongoActivityLogRepository(appDB)
	notificationRepo := mongo.NewMongoNotificationRepository(appDB)
	subscriptionRepo := mongo.NewMongoSubscriptionRepository(appDB)

	// --- Initialize Transports ---
	emailSender := transport.NewSMTPEmailSender(cfg.SMTP)
	pushSender := transport.NewWebPushSender(cfg.Push)
	planGenerator := transport.NewHTTPPlanGenerator(cfg.PlanGen)

	// --- Initialize Services ---
	adherenceService := service.NewAdherenceService()
	streakService := service.NewStreakService()
	alertsService := service.NewAlertsService()
	insightsService := service.NewInsightsService()
	rulesService := service.NewRulesService()

	snapshotService := service.NewSnapshotService(planRepo, activityRepo, adherenceService, insightsService)
	reportService := service.NewReportService(snapshotService, streakService, alertsService, reportArchive)
	notificationService := service.NewNotificationService(
		userRepo, planRepo, activityRepo, notificationRepo, snapshotService, streakService, rulesService,
	)
	emailDelivery := service.NewEmailDeliveryService(userRepo, notificationRepo, emailSender)
	pushDelivery := service.NewPushDeliveryService(userRepo, notificationRepo, subscriptionRepo, pushSender)
	regenerationService := service.NewRegenerationService(userRepo, planRepo, planGenerator, reportService)

	// --- Initialize Gin Engine ---
	if cfg.Log.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.Default() // Includes Logger and Recovery middleware

	api.SetupRoutes(router, api.RouteDeps{
		Config:        cfg,
		Snapshots:     snapshotService,
		Streaks:       streakService,
		Alerts:        alertsService,
		Reports:       reportService,
		Notifications: notificationService,
		EmailDelivery: emailDelivery,
		PushDelivery:  pushDelivery,
		Regeneration:  regenerationService,
		UserRepo:      userRepo,
		SubRepo:       subscriptionRepo,
	})

	// --- Start Scheduler ---
	sched := scheduler.New(cfg.Cron, notificationService, emailDelivery, pushDelivery, regenerationService)
	if err := sched.Start(); err != nil {
		logger.Log.Fatalf("FATAL: Could not start scheduler: %v", err)
	}

	// --- Start HTTP Server ---
	server := &http.Server{
		Addr:         cfg.Server.Address,
		Handler:      router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	logger.Log.Infof("Server starting on %s", cfg.Server.Address)

	// --- Graceful Shutdown ---
	go func() {
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Log.Fatalf("FATAL: ListenAndServe Error: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Log.Info("Shutting down server...")

	sched.Stop()

	ctxShutdown, cancelShutdown := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancelShutdown()

	if err := server.Shutdown(ctxShutdown); err != nil {
		logger.Log.Fatalf("FATAL: Server forced to shutdown: %v", err)
	}

	logger.Log.Info("Server exiting.")
}
