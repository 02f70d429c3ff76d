// Command notifier runs the outbox relay, the broker consumer and the trip
// reminder job without the HTTP API. Run it with NOTIFIER_EMBEDDED=false on
// the API servers.
package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"wanderly/internal/auth"
	"wanderly/internal/notifications"
	"wanderly/internal/registrations"
	"wanderly/internal/shared/config"
	"wanderly/internal/shared/database"
	"wanderly/pkg/logger"

	"github.com/joho/godotenv"
)

func main() {
	_ = godotenv.Load()

	cfg := config.Load()
	logger.SetDefault(logger.NewWithWriter(os.Stdout, cfg.LogLevel, !cfg.IsDevelopment()))
	appLogger := logger.GetDefault().WithComponent("notifier")

	pg, err := database.OpenPostgreSQL(cfg)
	if err != nil {
		appLogger.Error("failed to connect to PostgreSQL", slog.Any("error", err))
		os.Exit(1)
	}

	client, err := database.OpenMongo(cfg)
	if err != nil {
		appLogger.Error("failed to connect to MongoDB", slog.Any("error", err))
		os.Exit(1)
	}
	db := &database.DB{PostgreSQL: pg, Mongo: client, MongoDB: client.Database(cfg.Mongo.Database)}
	defer db.Close()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	users := auth.NewUserDirectory(auth.NewRepository(db.PostgreSQL))
	pipeline, err := notifications.StartPipeline(ctx, cfg, db.PostgreSQL, db.MongoDB, users)
	if err != nil {
		appLogger.Error("failed to start notification pipeline", slog.Any("error", err))
		os.Exit(1)
	}

	var reminders *registrations.ReminderJob
	if cfg.Reminders.Enabled {
		reminders = registrations.NewReminderJob(registrations.NewRepository(db.PostgreSQL), cfg.Reminders)
		reminders.Start(ctx)
	}

	appLogger.Info("notifier running",
		slog.String("broker", cfg.Notifications.Broker),
		slog.Bool("reminders", reminders != nil))

	<-ctx.Done()
	appLogger.Info("shutting down notifier...")

	if reminders != nil {
		reminders.Stop()
	}
	pipeline.Stop()
}
