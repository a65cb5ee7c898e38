package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"net/http"
	"net/url"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gorilla/mux"
	"github.com/redis/go-redis/v9"
	"github.com/rs/cors"
	"go.uber.org/zap"

	"github.com/tasuku-app/tasuku/internal/command"
	"github.com/tasuku-app/tasuku/internal/config"
	"github.com/tasuku-app/tasuku/internal/database"
	"github.com/tasuku-app/tasuku/internal/handlers"
	"github.com/tasuku-app/tasuku/internal/line"
	"github.com/tasuku-app/tasuku/internal/logger"
	"github.com/tasuku-app/tasuku/internal/middleware"
	"github.com/tasuku-app/tasuku/internal/queue"
	"github.com/tasuku-app/tasuku/internal/services/ai"
	"github.com/tasuku-app/tasuku/internal/services/token"
)

func main() {
	debugFlag := flag.Bool("debug", false, "Enable debug mode for classifier API logging")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	debugMode := cfg.ServerDebugMode || *debugFlag

	zapLogger, err := logger.NewProductionLogger(debugMode)
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer func() {
		_ = zapLogger.Sync()
	}()

	zapLogger.Info("starting_server",
		zap.Bool("debug_mode", debugMode),
		zap.String("server_port", cfg.ServerPort),
		zap.String("frontend_url", cfg.FrontendURL),
		zap.String("ai_model", cfg.AIModel),
	)

	db, err := database.New(cfg.DatabaseURL)
	if err != nil {
		zapLogger.Fatal("failed_to_connect_to_database", zap.Error(err))
	}
	defer func() {
		if err := db.Close(); err != nil {
			zapLogger.Warn("failed_to_close_database_connection", zap.Error(err))
		}
	}()
	zapLogger.Info("connected_to_database")

	// Redis is optional; without it the dashboard runs without rate limiting.
	var redisClient *redis.Client
	if cfg.RedisURL != "" {
		opts, err := redis.ParseURL(cfg.RedisURL)
		if err != nil {
			zapLogger.Fatal("invalid_redis_url", zap.Error(err))
		}
		redisClient = redis.NewClient(opts)
		defer func() {
			if err := redisClient.Close(); err != nil {
				zapLogger.Warn("failed_to_close_redis_connection", zap.Error(err))
			}
		}()
		zapLogger.Info("connected_to_redis")
	}

	jobQueue := connectQueue(cfg, zapLogger)
	defer func() {
		if err := jobQueue.Close(); err != nil {
			zapLogger.Warn("failed_to_close_queue_connection", zap.Error(err))
		}
	}()

	taskRepo := database.NewTaskRepository(db)
	settingsRepo := database.NewSettingsRepository(db)

	classifier := createClassifier(cfg, zapLogger, debugMode)

	issuer := token.NewIssuer(cfg.JWTSecret, token.DefaultTTL)
	dashboardLinker := func(userID string) (string, error) {
		t, err := issuer.Issue(userID)
		if err != nil {
			return "", err
		}
		return fmt.Sprintf("%s/?token=%s", cfg.FrontendURL, url.QueryEscape(t)), nil
	}

	lineClient := line.NewClient(cfg.ChannelToken, zapLogger)
	executor := command.NewExecutor(taskRepo, classifier, dashboardLinker, zapLogger)

	webhookHandler := handlers.NewWebhookHandler(cfg.ChannelSecret, executor, lineClient, zapLogger)
	taskHandler := handlers.NewTaskHandler(taskRepo, classifier, jobQueue, zapLogger)
	settingsHandler := handlers.NewSettingsHandler(settingsRepo, zapLogger)
	adminHandler := handlers.NewAdminHandler(taskRepo, jobQueue, cfg.AdminUserID, zapLogger)
	healthChecker := handlers.NewHealthChecker(db)

	r := mux.NewRouter()
	r.Use(middleware.SecurityHeaders)
	r.Use(middleware.Timeout(30 * time.Second))
	r.Use(middleware.ErrorHandler(zapLogger))
	r.Use(middleware.Logging(zapLogger))

	r.HandleFunc("/healthz", healthChecker.HealthCheck).Methods("GET")

	// Webhook is authenticated by its signature, not by a bearer token, and
	// must never be rate limited against the platform's delivery IPs.
	r.HandleFunc("/webhook", webhookHandler.Handle).Methods("POST")

	apiRouter := r.PathPrefix("/api/v1").Subrouter()
	apiRouter.Use(middleware.Auth(issuer, zapLogger))
	apiRouter.Use(middleware.AccessLog(jobQueue, zapLogger))

	if redisClient != nil {
		rateLimitMW, err := middleware.RateLimit(redisClient, cfg.RateLimit)
		if err != nil {
			zapLogger.Fatal("failed_to_create_rate_limiter", zap.Error(err))
		}
		apiRouter.Use(rateLimitMW)
	}

	taskHandler.RegisterRoutes(apiRouter.PathPrefix("/tasks").Subrouter())
	settingsHandler.RegisterRoutes(apiRouter.PathPrefix("/settings").Subrouter())
	adminHandler.RegisterRoutes(apiRouter.PathPrefix("/admin").Subrouter())

	corsHandler := cors.New(cors.Options{
		AllowedOrigins:   []string{cfg.FrontendURL},
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Authorization", "Content-Type"},
		AllowCredentials: true,
	})

	srv := &http.Server{
		Addr:           ":" + cfg.ServerPort,
		Handler:        corsHandler.Handler(r),
		ReadTimeout:    15 * time.Second,
		WriteTimeout:   15 * time.Second,
		IdleTimeout:    60 * time.Second,
		MaxHeaderBytes: 1 << 20,
	}

	go func() {
		zapLogger.Info("server_starting", zap.String("port", cfg.ServerPort))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			zapLogger.Fatal("server_failed_to_start", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	zapLogger.Info("server_shutting_down")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		zapLogger.Fatal("server_forced_to_shutdown", zap.Error(err))
	}

	zapLogger.Info("server_exited")
}

// connectQueue connects to RabbitMQ with retries, or returns a no-op queue
// when no broker is configured. Notification jobs are fire-and-forget so a
// missing broker only loses visit logs and operator alerts.
func connectQueue(cfg *config.Config, zapLogger *zap.Logger) queue.JobQueue {
	if cfg.RabbitMQURL == "" {
		zapLogger.Info("rabbitmq_not_configured_notifications_disabled")
		return queue.Noop{}
	}

	const maxRetries = 10
	const initialDelay = 2 * time.Second

	for attempt := 0; attempt < maxRetries; attempt++ {
		q, err := queue.NewRabbitMQQueue(cfg.RabbitMQURL)
		if err == nil {
			zapLogger.Info("connected_to_rabbitmq")
			return q
		}

		delay := initialDelay * time.Duration(1<<uint(attempt))
		if delay > 30*time.Second {
			delay = 30 * time.Second
		}
		zapLogger.Warn("failed_to_connect_to_rabbitmq_retrying",
			zap.Int("attempt", attempt+1),
			zap.Int("max_retries", maxRetries),
			zap.Duration("retry_delay", delay),
			zap.Error(err),
		)
		time.Sleep(delay)
	}

	zapLogger.Warn("rabbitmq_unreachable_notifications_disabled")
	return queue.Noop{}
}

// createClassifier builds the AI classifier, or the disabled stub when no
// API key is configured. The bot still works without it via the manual-entry
// fallback.
func createClassifier(cfg *config.Config, zapLogger *zap.Logger, debugMode bool) ai.Classifier {
	if cfg.OpenAIKey == "" {
		zapLogger.Warn("openai_key_not_configured_classifier_disabled")
		return ai.Disabled{}
	}

	rubric := ai.DefaultRubric()
	if cfg.RubricPath != "" {
		loaded, err := ai.LoadRubric(cfg.RubricPath)
		if err != nil {
			zapLogger.Warn("failed_to_load_rubric_using_default",
				zap.String("path", cfg.RubricPath),
				zap.Error(err),
			)
		} else {
			rubric = loaded
		}
	}

	return ai.NewOpenAIClassifier(cfg.OpenAIKey, cfg.AIBaseURL, cfg.AIModel, rubric, zapLogger, debugMode)
}
