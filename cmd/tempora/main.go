package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/tempora-app/tempora/internal/cli"
	"github.com/tempora-app/tempora/internal/config"
	"github.com/tempora-app/tempora/internal/db"
	"github.com/tempora-app/tempora/internal/notify"
	"github.com/tempora-app/tempora/internal/repository"
	"github.com/tempora-app/tempora/internal/schedule"
	"github.com/tempora-app/tempora/internal/timer"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load(os.Getenv("TEMPORA_CONFIG"))
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	logger := cli.NewLogger(cfg.Logging)

	// Open database
	database, err := db.OpenDB(cfg.Storage.Path)
	if err != nil {
		return fmt.Errorf("opening database: %w", err)
	}
	defer database.Close()

	// Wire repositories
	timerRepo := repository.NewSQLiteTimerRepo(database)
	prefsRepo := repository.NewSQLitePrefsRepo(database)
	subsRepo := repository.NewSQLiteSubscriptionRepo(database)

	// Wire unit of work for transactional operations
	uow := db.NewSQLiteUnitOfWork(database)

	// Wire the deferred-task wheel and notification pipeline
	wheel := schedule.NewWheel(logger)

	push := notify.NewHTTPPushTransport(time.Duration(cfg.Push.TimeoutSeconds) * time.Second)
	email := &notify.SMTPEmailTransport{
		Host:     cfg.SMTP.Host,
		Port:     cfg.SMTP.Port,
		From:     cfg.SMTP.From,
		Username: cfg.SMTP.Username,
		Password: cfg.SMTP.Password,
	}
	sms := notify.NewHTTPSMSTransport(cfg.SMS.GatewayURL, cfg.SMS.APIToken, cfg.SMS.From)
	chat := notify.NewHTTPChatTransport()

	fallback := notify.NewFallbackDispatcher(email, sms, chat, logger)
	dispatcher := notify.NewDispatcher(prefsRepo, subsRepo, push, fallback, wheel, logger, time.Now)
	escalator := notify.NewEscalator(prefsRepo, timerRepo, fallback, logger, time.Now)

	// Wire the timer state machine and its sweeps
	svc := timer.NewService(timerRepo, uow, wheel, dispatcher, logger, time.Now)
	reaper := timer.NewReaper(timerRepo, uow, svc, dispatcher, logger, time.Now)

	// Deferred task bodies re-read state before acting, so a stale firing
	// is a no-op rather than a duplicate action.
	wheel.Register(schedule.TaskInterruptCheck, func(ctx context.Context, p schedule.Payload) error {
		_, err := svc.RequestInterrupt(ctx, p.Identity)
		return err
	})
	wheel.Register(schedule.TaskMissedAckAutoStop, func(ctx context.Context, p schedule.Payload) error {
		_, err := svc.AutoStopForMissedAck(ctx, p.Identity, p.TimerID)
		return err
	})
	wheel.Register(schedule.TaskEscalationCheck, func(ctx context.Context, p schedule.Payload) error {
		_, err := escalator.Check(ctx, p)
		return err
	})

	app := &cli.App{
		Timers: svc,
		Reaper: reaper,
		Config: cfg,
		Logger: logger,
	}

	// Execute root command
	rootCmd := cli.NewRootCmd(app)
	return rootCmd.Execute()
}
