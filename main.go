package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/example/learnpath/internal/api"
	"github.com/example/learnpath/internal/config"
	"github.com/example/learnpath/internal/database"
	"github.com/example/learnpath/internal/logging"
	"github.com/example/learnpath/internal/metrics"
	"github.com/example/learnpath/internal/notify"
	"github.com/example/learnpath/internal/personalization"
	"github.com/example/learnpath/internal/scheduler"
	"github.com/example/learnpath/internal/service"
	"github.com/spf13/cobra"
)

var cfg *config.Config

var rootCmd = &cobra.Command{
	Use:   "learnpath",
	Short: "Adaptive e-learning backend",
	Long: `learnpath serves the course catalog, quizzes, study groups and forum
over HTTP and recommends courses adapted to each learner.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		cfg, err = config.Load()
		if err != nil {
			return err
		}
		logging.Init(logging.Config{Level: cfg.LogLevel, Format: cfg.LogFormat})

		if err := database.Connect(cfg.DBDriver, cfg.DatabaseURL); err != nil {
			return fmt.Errorf("failed to connect to database: %w", err)
		}
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if err := database.Close(); err != nil {
			logging.Warn().Err(err).Msg("failed to close database")
		}
	},
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP API and the reminder scheduler",
	RunE:  runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd, importCmd, seedCmd, checkUserCmd, remindCmd, dbcheckCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// newEngine builds and trains the personalization models
func newEngine(reg *metrics.Registry) (*personalization.Engine, error) {
	engineCfg := personalization.DefaultConfig()
	engineCfg.ComponentCap = cfg.SVDComponentCap
	engineCfg.DefaultCount = cfg.RecommendationCount

	engine := personalization.New(engineCfg, logging.Logger(), reg)
	if err := engine.Init(); err != nil {
		return nil, fmt.Errorf("failed to initialize personalization models: %w", err)
	}
	return engine, nil
}

// newNotifier picks Telegram when a bot token is configured
func newNotifier() scheduler.Notifier {
	logger := logging.With("notify")
	if cfg.TelegramBotToken == "" {
		return notify.NewLogNotifier(logger)
	}
	n, err := notify.NewTelegramNotifier(cfg.TelegramBotToken, logger)
	if err != nil {
		logger.Error().Err(err).Msg("telegram unavailable, reminders will only be logged")
		return notify.NewLogNotifier(logger)
	}
	return n
}

func newScheduler(reg *metrics.Registry) *scheduler.Scheduler {
	schedCfg := scheduler.DefaultConfig()
	schedCfg.StartHour = cfg.NotificationStartHour
	schedCfg.EndHour = cfg.NotificationEndHour
	schedCfg.InactiveDays = cfg.ReminderInactiveDays
	return scheduler.New(schedCfg, newNotifier(), logging.Logger(), reg)
}

func runServe(cmd *cobra.Command, args []string) error {
	if err := cfg.RequireSecureJWTSecret(); err != nil {
		return err
	}

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	reg := metrics.NewDefault()
	engine, err := newEngine(reg)
	if err != nil {
		return err
	}

	srv := api.NewServer(
		service.NewAuthService(cfg.JWTSecret),
		service.NewPersonalizationService(engine, cfg.RecommendationCount, logging.Logger()),
		logging.Logger(),
		reg,
	)
	httpServer := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           srv.Router(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	var sched *scheduler.Scheduler
	if cfg.EnableScheduler {
		sched = newScheduler(reg)
		if err := sched.Start(); err != nil {
			return err
		}
	}

	errChan := make(chan error, 1)
	go func() {
		logging.Info().Str("addr", cfg.HTTPAddr).Msg("HTTP server started")
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errChan <- err
		}
		close(errChan)
	}()

	select {
	case sig := <-sigChan:
		logging.Info().Str("signal", sig.String()).Msg("received signal, shutting down")
	case err := <-errChan:
		if err != nil {
			return fmt.Errorf("http server failed: %w", err)
		}
	}

	if sched != nil {
		sched.Stop()
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("error during shutdown: %w", err)
	}
	logging.Info().Msg("server stopped successfully")
	return nil
}
