package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"

	"github.com/Basel6/Private-Coach-Web-App/internal/handler"
	"github.com/Basel6/Private-Coach-Web-App/internal/middleware"
	"github.com/Basel6/Private-Coach-Web-App/internal/repository"
	"github.com/Basel6/Private-Coach-Web-App/internal/scheduler"
	"github.com/Basel6/Private-Coach-Web-App/internal/service"
	"github.com/Basel6/Private-Coach-Web-App/pkg/cache"
	"github.com/Basel6/Private-Coach-Web-App/pkg/config"
	"github.com/Basel6/Private-Coach-Web-App/pkg/database"
	"github.com/Basel6/Private-Coach-Web-App/pkg/logger"
	corsmiddleware "github.com/Basel6/Private-Coach-Web-App/pkg/middleware/cors"
	reqidmiddleware "github.com/Basel6/Private-Coach-Web-App/pkg/middleware/requestid"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logr, err := logger.New(cfg)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logr.Sync() //nolint:errcheck

	db, err := database.NewPostgres(cfg.Database)
	if err != nil {
		logr.Sugar().Fatalw("failed to connect to postgres", "error", err)
	}
	defer db.Close()

	var sessions repository.SessionStore
	if cfg.Scheduler.SessionStore == "memory" {
		sessions = repository.NewMemorySessionStore()
		logr.Info("using in-memory suggestion session store")
	} else {
		redisClient, redisErr := cache.NewRedis(cfg.Redis)
		if redisErr != nil {
			logr.Sugar().Fatalw("failed to connect to redis", "error", redisErr)
		}
		defer redisClient.Close()
		sessions = repository.NewRedisSessionStore(redisClient)
	}

	slotRepo := repository.NewSlotRepository(db)
	planRepo := repository.NewPlanRepository(db)
	prefRepo := repository.NewPreferenceRepository(db)
	bookingRepo := repository.NewBookingRepository(db)
	userRepo := repository.NewUserRepository(db)

	engine := scheduler.New(scheduler.Config{
		Weights: scheduler.Weights{
			Version:             cfg.Scheduler.Weights.Version,
			PreferenceMatch:     cfg.Scheduler.Weights.PreferenceMatch,
			CoachLoadBalance:    cfg.Scheduler.Weights.CoachLoadBalance,
			CapacityUtilization: cfg.Scheduler.Weights.CapacityUtilization,
			RecoveryTime:        cfg.Scheduler.Weights.RecoveryTime,
			TimeContinuity:      cfg.Scheduler.Weights.TimeContinuity,
		},
		RecoveryHours:  cfg.Scheduler.RecoveryHours,
		SessionLength:  cfg.Scheduler.SessionLength,
		SolverBudget:   cfg.Scheduler.SolverBudget,
		MaxSuggestions: cfg.Scheduler.MaxSuggestions,
	})

	var metricsSvc *service.MetricsService
	if cfg.Metrics.Enabled {
		metricsSvc = service.NewMetricsService()
	}

	validate := validator.New()

	suggestionSvc := service.NewSuggestionService(
		planRepo, prefRepo, slotRepo, bookingRepo, userRepo, sessions,
		engine, metricsSvc, validate, logr,
		service.SuggestionConfig{
			SessionTTL:     cfg.Scheduler.SessionTTL,
			MaxFlexibility: cfg.Scheduler.MaxFlexibility,
			WeightsVersion: cfg.Scheduler.Weights.Version,
		},
	)
	bookingSvc := service.NewBookingService(db, slotRepo, bookingRepo, sessions, metricsSvc, validate, logr)
	scheduleSvc := service.NewScheduleService(slotRepo, planRepo, prefRepo, validate, logr)

	suggestionHandler := handler.NewSuggestionHandler(suggestionSvc)
	bookingHandler := handler.NewBookingHandler(bookingSvc)
	scheduleHandler := handler.NewScheduleHandler(scheduleSvc)

	if cfg.Env == config.EnvProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(logr))
	r.Use(corsmiddleware.New(cfg.CORS.AllowedOrigins))
	r.Use(middleware.Metrics(metricsSvc))

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/ready", func(c *gin.Context) {
		if err := db.Ping(); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "database unreachable"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ready"})
	})
	if metricsSvc != nil {
		r.GET("/metrics", gin.WrapH(metricsSvc.Handler()))
	}

	api := r.Group(cfg.APIPrefix)
	{
		api.POST("/suggestions", suggestionHandler.Suggest)
		api.POST("/suggestions/re-suggest", suggestionHandler.ReSuggestAll)
		api.POST("/suggestions/re-suggest-slot", suggestionHandler.ReSuggestOne)
		api.GET("/suggestions/:token", suggestionHandler.Session)

		api.POST("/bookings/commit", bookingHandler.Commit)

		api.GET("/slots", scheduleHandler.ListSlots)
		api.GET("/plans/:clientId", scheduleHandler.GetPlan)
		api.GET("/preferences/:clientId", scheduleHandler.GetPreference)
		api.PUT("/preferences/:clientId", scheduleHandler.UpsertPreference)
		api.GET("/occupancy", scheduleHandler.Occupancy)
	}

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logr.Sugar().Infow("server starting", "addr", srv.Addr, "env", cfg.Env)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logr.Sugar().Fatalw("server failed", "error", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logr.Info("shutting down")
	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logr.Sugar().Errorw("graceful shutdown failed", "error", err)
	}
}
