package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/cashbookhq/cashbook-bot/internal/adapters/database/sqlite"
	"github.com/cashbookhq/cashbook-bot/internal/adapters/sheets"
	"github.com/cashbookhq/cashbook-bot/internal/adapters/state"
	"github.com/cashbookhq/cashbook-bot/internal/adapters/telegram"
	"github.com/cashbookhq/cashbook-bot/internal/core/ports"
	"github.com/cashbookhq/cashbook-bot/internal/core/services"
	"github.com/cashbookhq/cashbook-bot/internal/handlers"
	"github.com/cashbookhq/cashbook-bot/internal/middleware"
	"github.com/cashbookhq/cashbook-bot/internal/platform/config"
	"github.com/cashbookhq/cashbook-bot/pkg/database"
)

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		slog.Error("Failed to load config", slog.String("error", err.Error()))
		os.Exit(1)
	}

	logger, closeLog, err := newLogger(cfg)
	if err != nil {
		slog.Error("Failed to initialize logger", slog.String("error", err.Error()))
		os.Exit(1)
	}
	defer closeLog()
	slog.SetDefault(logger)

	ctx := context.Background()

	stateStore, err := state.NewFileStore(cfg.DataDir)
	if err != nil {
		logger.Error("Failed to open state directory", slog.String("error", err.Error()))
		os.Exit(1)
	}

	db, err := database.NewSQLiteDB(ctx, cfg.DatabasePath())
	if err != nil {
		logger.Error("Failed to open local store", slog.String("error", err.Error()))
		os.Exit(1)
	}
	defer db.Close()
	if err := sqlite.EnsureSchema(ctx, db); err != nil {
		logger.Error("Failed to ensure store schema", slog.String("error", err.Error()))
		os.Exit(1)
	}
	repos := sqlite.NewRepositoryProvider(db)
	logger.Info("Local store ready", slog.String("path", cfg.DatabasePath()))

	gateway, err := sheets.NewGateway(ctx, cfg.CredentialsPath)
	if err != nil {
		logger.Error("Failed to initialize spreadsheet gateway", slog.String("error", err.Error()))
		os.Exit(1)
	}

	notifier := newNotifier(cfg, logger)

	container, err := services.NewServiceContainer(cfg, repos, gateway, stateStore, stateStore, notifier, logger)
	if err != nil {
		logger.Error("Failed to build services", slog.String("error", err.Error()))
		os.Exit(1)
	}
	defer container.Mirror.Stop()

	if err := container.Identity.MigrateRoles(ctx); err != nil {
		logger.Error("Role migration failed", slog.String("error", err.Error()))
		os.Exit(1)
	}

	// Startup pass: close any gaps that accumulated while the process was down.
	startupCtx := middleware.WithLogger(ctx, logger)
	if stats, err := container.Reconcile.ReconcilePayments(startupCtx); err != nil {
		logger.Warn("Startup payment reconciliation failed", slog.String("error", err.Error()))
	} else {
		logger.Info("Startup payment reconciliation done",
			slog.Int("pulled", stats.Pulled),
			slog.Int("pushed", stats.Pushed),
		)
	}

	gin.SetMode(gin.ReleaseMode)
	r := gin.New()
	r.Use(middleware.StructuredLoggingMiddleware(logger), gin.Recovery())
	if err := r.SetTrustedProxies(nil); err != nil {
		logger.Error("Failed to set trusted proxies", slog.String("error", err.Error()))
		os.Exit(1)
	}
	handlers.RegisterRoutes(r, container, &repos)

	srv := &http.Server{
		Addr:    ":" + cfg.OpsPort,
		Handler: r,
	}
	go func() {
		logger.Info("Ops server starting", slog.String("port", cfg.OpsPort))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("Ops server failed", slog.String("error", err.Error()))
			os.Exit(1)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop
	logger.Info("Shutting down")

	shutdownCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("Ops server shutdown failed", slog.String("error", err.Error()))
	}
	// Mirror.Stop (deferred) waits for in-flight sheet writes before the
	// store closes.
}

// newLogger builds the JSON logger from LOG_LEVEL and the optional LOG_FILE
// sink. The returned closer flushes the file sink, if any.
func newLogger(cfg *config.Config) (*slog.Logger, func(), error) {
	var level slog.Level
	switch cfg.LogLevel {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}

	sink := os.Stdout
	closeLog := func() {}
	if cfg.LogFile != "" {
		f, err := os.OpenFile(cfg.LogFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return nil, nil, err
		}
		sink = f
		closeLog = func() { _ = f.Close() }
	}

	return slog.New(slog.NewJSONHandler(sink, &slog.HandlerOptions{Level: level})), closeLog, nil
}

// newNotifier connects the Telegram transport, falling back to a no-op sender
// when no token is configured so notifications degrade instead of failing.
func newNotifier(cfg *config.Config, logger *slog.Logger) ports.Notifier {
	if cfg.ChatTransportToken == "" {
		return noopNotifier{}
	}
	n, err := telegram.NewNotifier(cfg.ChatTransportToken)
	if err != nil {
		logger.Warn("Chat transport unavailable, notifications disabled", slog.String("error", err.Error()))
		return noopNotifier{}
	}
	if cfg.LogChatID != 0 {
		logChat := cfg.LogChatID
		n.SetLogChat(&logChat)
	}
	return n
}

type noopNotifier struct{}

func (noopNotifier) Send(context.Context, int64, string) error   { return nil }
func (noopNotifier) NotifyLogChat(context.Context, string) error { return nil }
