package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"medibook/config"
	"medibook/cron"
	"medibook/database"
	"medibook/database/repository"
	"medibook/handlers"
	"medibook/middleware"
	"medibook/routes"
	"medibook/services/checkout"
	"medibook/services/coreapi"
	"medibook/services/tasks"
	"medibook/utils"

	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
	"github.com/hibiken/asynq"
)

func main() {
	config.LoadConfig()
	logger := utils.GetLogger()

	database.InitDB()
	utils.InitSessionCache()
	utils.InitHandoffCache()

	// Create the Gin router.
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(utils.ErrorHandler())
	router.Use(gin.Logger())
	router.Use(middleware.RateLimitMiddleware())

	// External collaborators.
	coreClient := coreapi.NewHTTPClient(
		config.AppConfig.CoreAPIBaseURL,
		config.AppConfig.CoreAPIKey,
		time.Duration(config.AppConfig.CoreAPITimeoutMS)*time.Millisecond,
		logger,
	)

	// Repositories and stores.
	attemptRepo := repository.NewMongoAttemptRepo()
	sessionStore := checkout.NewRedisSessionStore(utils.GetSessionCacheClient())
	handoffStore := checkout.NewRedisHandoffStore(utils.GetHandoffCacheClient())

	enqueuer := tasks.NewEnqueuer(asynq.RedisClientOpt{
		Addr:     config.AppConfig.RedisAddr,
		Password: config.AppConfig.RedisPassword,
		DB:       config.AppConfig.RedisQueueDB,
	})
	defer enqueuer.Close()

	// Services.
	checkoutService := &checkout.DefaultCheckoutService{
		Sessions: sessionStore,
		Handoff:  handoffStore,
		Core:     coreClient,
		Journal:  attemptRepo,
		Tasks:    enqueuer,
		Fees: checkout.FeePolicy{
			TaxRate:           config.AppConfig.TaxRate,
			AppointmentRegFee: config.AppConfig.AppointmentRegFee,
			LabTestRegFee:     config.AppConfig.LabTestRegFee,
			Currency:          config.AppConfig.Currency,
		},
		ReturnURL: config.AppConfig.ConfirmationReturnURL,
		Logger:    logger,
	}

	resolver := &checkout.ConfirmationResolver{
		Handoff: handoffStore,
		Core:    coreClient,
		Journal: attemptRepo,
		Logger:  logger,
	}

	checkoutHandler := handlers.NewCheckoutHandler(checkoutService, logger)
	confirmationHandler := handlers.NewConfirmationHandler(resolver, logger)

	// Background reconciliation worker and health monitor.
	cron.InitReconcileWorker(coreClient, attemptRepo, enqueuer)
	utils.StartHealthMonitor(
		[]*redis.Client{utils.GetSessionCacheClient(), utils.GetHandoffCacheClient()},
		database.MongoClient,
	)

	// Register routes.
	routes.RegisterRoutes(router, checkoutHandler, confirmationHandler)

	// Start the HTTP server.
	port := config.AppConfig.AppPort
	if port == "" {
		port = "8080"
	}
	srv := &http.Server{
		Addr:    "0.0.0.0:" + port,
		Handler: router,
	}

	logger.Sugar().Infof("Starting server on %s...", srv.Addr)
	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Sugar().Fatalf("main: server failed to start: %v", err)
		}
	}()

	// Wait for an OS signal to gracefully shutdown.
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Sugar().Info("main: server is shutting down...")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logger.Sugar().Fatalf("main: server forced to shutdown: %v", err)
	}

	logger.Sugar().Info("main: server stopped gracefully")
}
