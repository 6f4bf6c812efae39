package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"dailyspend/internal/domain/user"
	httphandlers "dailyspend/internal/interfaces/http"
	"dailyspend/internal/interfaces/scheduler"
	"dailyspend/internal/shared/config"
	"dailyspend/internal/shared/telemetry"
)

func main() {
	if err := run(); err != nil {
		log.Fatalf("Application error: %v", err)
	}
}

func run() error {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment")
	}

	cfg, err := config.Load()
	if err != nil {
		return err
	}

	ctx := context.Background()

	if cfg.Telemetry.Enabled {
		shutdown, err := telemetry.Init(ctx, telemetry.Config{
			ServiceName:  cfg.Telemetry.ServiceName,
			Environment:  cfg.Telemetry.Environment,
			OTLPEndpoint: cfg.Telemetry.OTLPEndpoint,
			MetricsPort:  cfg.Telemetry.MetricsPort,
		})
		if err != nil {
			return err
		}
		defer func() {
			if err := shutdown(context.Background()); err != nil {
				log.Printf("Telemetry shutdown error: %v", err)
			}
		}()
	}

	deps, err := NewDependencies(ctx, cfg)
	if err != nil {
		return err
	}
	defer deps.Close()

	// Background job families. Each runs on its own interval; the notify
	// family ticks every minute so a user's local notify time is hit within
	// a minute of resolution.
	var sched *scheduler.Scheduler
	if cfg.Jobs.Enabled {
		sched = scheduler.New(scheduler.Config{
			WorkerCount:  cfg.Jobs.WorkerCount,
			JobDelay:     cfg.Jobs.JobDelay,
			QueueSize:    cfg.Jobs.QueueSize,
			RunOnStartup: cfg.Jobs.RunOnStartup,
		})
		sched.Register(scheduler.Family{
			Name:     scheduler.FamilyTransactionSync,
			Interval: cfg.Jobs.TransactionSyncInterval,
			Provider: scheduler.PerUserProvider(deps.UserRepo, func(u *user.User) scheduler.Job {
				return scheduler.NewTransactionSyncJob(u.ID, deps.TransactionSync)
			}),
		})
		sched.Register(scheduler.Family{
			Name:     scheduler.FamilyBalanceSync,
			Interval: cfg.Jobs.BalanceSyncInterval,
			Provider: scheduler.PerUserProvider(deps.UserRepo, func(u *user.User) scheduler.Job {
				return scheduler.NewBalanceSyncJob(u.ID, deps.BalanceSync)
			}),
		})
		sched.Register(scheduler.Family{
			Name:     scheduler.FamilyReport,
			Interval: cfg.Jobs.ReportInterval,
			Provider: scheduler.PerUserProvider(deps.UserRepo, func(u *user.User) scheduler.Job {
				return scheduler.NewReportJob(u, deps.ReportService)
			}),
		})
		sched.Register(scheduler.Family{
			Name:     scheduler.FamilyNotify,
			Interval: cfg.Jobs.NotifyTick,
			Provider: scheduler.NotifiableProvider(deps.UserRepo, deps.Dispatcher),
		})
		sched.Register(scheduler.Family{
			Name:     scheduler.FamilyDeviceCleanup,
			Interval: cfg.Jobs.DeviceCleanupInterval,
			Provider: scheduler.SingletonProvider(scheduler.NewCleanupJob(deps.Cleanup)),
		})
		sched.Start()
	} else {
		log.Println("Background jobs are disabled")
	}

	// Webhook-driven syncs bypass the schedule; the in-flight guard inside
	// the sync service prevents overlap with a scheduled run.
	enqueueSync := func(userID int64) {
		go func() {
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
			defer cancel()
			if err := deps.TransactionSync.SyncUser(ctx, userID); err != nil {
				log.Printf("Webhook-triggered sync failed for user %d: %v", userID, err)
			}
		}()
	}
	deps.WebhookHandler = httphandlers.NewWebhookHandler(cfg.Provider.WebhookSecret, deps.ItemRepo, enqueueSync)

	var trigger httphandlers.SyncTrigger = noTrigger{}
	if sched != nil {
		trigger = sched
	}
	deps.AdminHandler = httphandlers.NewAdminHandler(trigger, deps.TransactionSync.SyncUser, deps.ItemRepo, deps.Vault)

	handler := SetupRoutes(deps)
	srv := StartServer(cfg.Server.Host+":"+cfg.Server.Port, handler)

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	GracefulShutdown(srv, sched, 30*time.Second)
	return nil
}

// noTrigger rejects manual family triggers when background jobs are disabled.
type noTrigger struct{}

func (noTrigger) TriggerFamily(name string) error {
	return fmt.Errorf("background jobs are disabled")
}
