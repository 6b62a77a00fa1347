package main

import (
	"context"
	"errors"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-contrib/sessions"
	"github.com/gin-contrib/sessions/cookie"
	redisStore "github.com/gin-contrib/sessions/redis"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/yukikurage/release-planner/internal/blob"
	"github.com/yukikurage/release-planner/internal/cache"
	"github.com/yukikurage/release-planner/internal/calendar"
	"github.com/yukikurage/release-planner/internal/config"
	"github.com/yukikurage/release-planner/internal/constants"
	"github.com/yukikurage/release-planner/internal/database"
	"github.com/yukikurage/release-planner/internal/handlers"
	"github.com/yukikurage/release-planner/internal/metrics"
	"github.com/yukikurage/release-planner/internal/models"
	"github.com/yukikurage/release-planner/internal/notify"
	"github.com/yukikurage/release-planner/internal/realtime"
	"github.com/yukikurage/release-planner/internal/reminder"
	"github.com/yukikurage/release-planner/internal/repository"
	"github.com/yukikurage/release-planner/internal/services"
	"github.com/yukikurage/release-planner/internal/templates"
)

func main() {
	// Load configuration
	cfg := config.Load()

	// Set Gin mode
	gin.SetMode(cfg.GinMode)
	isProduction := cfg.GinMode == "release"

	logger := newLogger(isProduction)
	slog.SetDefault(logger)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Local cache is always present; it is the only store in local-only mode
	snaps, err := cache.Open(cfg.LocalCachePath)
	if err != nil {
		log.Fatalf("Failed to open local cache: %v", err)
	}

	var db *gorm.DB
	var feed realtime.Feed
	if cfg.LocalOnly() {
		logger.Warn("no remote store configured, running on the local cache only")
		if err := snaps.DB().AutoMigrate(&models.Account{}); err != nil {
			log.Fatalf("Failed to migrate accounts: %v", err)
		}
	} else {
		db, err = database.Connect(cfg)
		if err != nil {
			log.Fatalf("Failed to connect to database: %v", err)
		}
		if err := database.Migrate(db); err != nil {
			log.Fatalf("Failed to run migrations: %v", err)
		}
		feed, err = openFeed(ctx, cfg, logger)
		if err != nil {
			log.Fatalf("Failed to open change feed: %v", err)
		}
		defer feed.Close()
	}

	ws := services.NewWorkspace(services.WorkspaceConfig{
		DB:     db,
		Feed:   feed,
		Cache:  snaps,
		Logger: logger,
	})
	if err := ws.Start(ctx); err != nil {
		// collections fall back to the cache; the service stays up
		logger.Error("initial load incomplete", "error", err)
	}
	defer ws.Stop()
	if db != nil {
		migrated, err := ws.MigrateLocalCache(ctx)
		if err != nil {
			logger.Error("local cache migration incomplete", "error", err)
		}
		for name, n := range migrated {
			if n > 0 {
				logger.Info("migrated cached collection", "collection", name, "records", n)
			}
		}
	}

	// Notifications
	var mailer notify.Mailer = notify.LogMailer{Logger: logger}
	if cfg.MailAPIURL != "" {
		mailer = notify.NewHTTPMailer(cfg.MailAPIURL, cfg.MailAPIKey, cfg.MailFrom)
	}
	queue := notify.NewQueue(notify.NewDispatcher(mailer, logger), cfg.NotifyQueueSize, logger)
	queue.Start(context.Background())
	defer queue.Close()

	reminders, err := reminder.New(cfg.ReminderSchedule, ws, queue, logger)
	if err != nil {
		log.Fatalf("Failed to schedule reminders: %v", err)
	}
	reminders.Start()
	defer reminders.Stop()

	// Calendar
	var cal calendar.Provider = calendar.Noop{}
	if cfg.CalendarConfigured() {
		client := calendar.OAuthClient(ctx, calendar.Credentials{
			ClientID:     cfg.CalendarClientID,
			ClientSecret: cfg.CalendarClientSecret,
			RefreshToken: cfg.CalendarRefreshToken,
		})
		cal = calendar.NewGoogleClient(client, cfg.CalendarBaseURL, cfg.CalendarID)
	}

	// Attachments
	var uploads blob.Store
	if cfg.BlobURL != "" {
		uploads = blob.NewStorageClient(cfg.BlobURL, cfg.BlobKey, cfg.BlobBucket)
	}
	attacher := blob.NewAttacher(uploads, cfg.InlineAttachmentBytes)

	// Initialize services
	effects := &services.Effects{Calendar: cal, Notifier: queue, Logger: logger, Now: time.Now}
	catalog := templates.Default()

	accountDB := db
	if accountDB == nil {
		accountDB = snaps.DB()
	}
	authService := services.NewAuthService(repository.NewAccountRepository(accountDB))
	kpiService := services.NewKPIService(ws, effects)
	launchService := services.NewLaunchService(ws, catalog, effects)
	publicationService := services.NewPublicationService(ws, catalog, effects)

	// Initialize handlers
	h := handlers.Handlers{
		Auth:         handlers.NewAuthHandler(authService),
		Tasks:        handlers.NewTaskHandler(services.NewTaskService(ws, kpiService, effects)),
		KPIs:         handlers.NewKPIHandler(kpiService),
		Launches:     handlers.NewLaunchHandler(launchService, publicationService),
		Publications: handlers.NewPublicationHandler(publicationService),
		Ideas:        handlers.NewIdeaHandler(services.NewIdeaService(ws, attacher, effects)),
		Directory: handlers.NewDirectoryHandler(
			services.NewParticipantService(ws, effects),
			services.NewPerspectiveService(ws, effects),
		),
		Templates: handlers.NewTemplateHandler(catalog),
		Exports:   handlers.NewExportHandler(services.NewExportService(ws, effects)),
		Stream:    handlers.NewStreamHandler(ws.Hub),
		Assistant: handlers.NewAssistantHandler(services.NewContentAssistant(cfg.OpenAIAPIKey, ws)),
	}

	// Initialize Gin router
	r := gin.New()
	r.Use(gin.Recovery(), requestLogger(logger))

	store, err := newSessionStore(cfg)
	if err != nil {
		log.Fatalf("Failed to create session store: %v", err)
	}
	store.Options(sessions.Options{
		Path:     "/",
		MaxAge:   86400 * 7,
		HttpOnly: true,
		Secure:   isProduction,
		SameSite: http.SameSiteLaxMode,
	})
	r.Use(sessions.Sessions(constants.SessionName, store))

	// Health check endpoint
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":      "ok",
			"message":     "Release Planner API is running",
			"local_only":  cfg.LocalOnly(),
			"change_feed": feedState(feed),
		})
	})
	r.GET("/metrics", gin.WrapH(metrics.Handler()))

	handlers.RegisterRoutes(r.Group("/api"), h)

	srv := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}
	go func() {
		logger.Info("server starting", "addr", cfg.HTTPAddr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("Failed to start server: %v", err)
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("server shutdown failed", "error", err)
	}
}

func newLogger(json bool) *slog.Logger {
	if json {
		return slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))
	}
	return slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelDebug}))
}

// feedState is "none" in local-only mode, else whether the feed is
// receiving changes.
func feedState(feed realtime.Feed) string {
	switch {
	case feed == nil:
		return "none"
	case realtime.Connected(feed):
		return "connected"
	default:
		return "disconnected"
	}
}

// openFeed picks the change feed other instances publish on.
func openFeed(ctx context.Context, cfg *config.Config, logger *slog.Logger) (realtime.Feed, error) {
	switch cfg.ChangeFeed {
	case "nats":
		return realtime.DialNATS(cfg.NATSURL, logger)
	case "postgres":
		return realtime.ListenPostgres(ctx, database.DSN(cfg), logger)
	default:
		return realtime.NewBus(), nil
	}
}

// newSessionStore uses Redis when configured so sessions survive restarts
// and are shared between instances.
func newSessionStore(cfg *config.Config) (sessions.Store, error) {
	if cfg.RedisHost == "" {
		return cookie.NewStore([]byte(cfg.SessionSecret)), nil
	}
	store, err := redisStore.NewStore(
		10,    // Redis pool size
		"tcp", // network type
		cfg.RedisHost+":"+cfg.RedisPort,
		"", // password (empty = no password)
		[]byte(cfg.SessionSecret),
	)
	if err != nil {
		return nil, err
	}
	return store, nil
}

func requestLogger(logger *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		logger.Info("request",
			"method", c.Request.Method,
			"path", c.FullPath(),
			"status", c.Writer.Status(),
			"duration", time.Since(start),
		)
	}
}
