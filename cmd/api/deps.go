package main

import (
	"context"
	"log"

	"dailyspend/internal/domain/notification"
	"dailyspend/internal/domain/report"
	"dailyspend/internal/domain/syncer"
	"dailyspend/internal/infrastructure/crypto"
	"dailyspend/internal/infrastructure/postgres"
	"dailyspend/internal/infrastructure/provider"
	"dailyspend/internal/infrastructure/push"
	httphandlers "dailyspend/internal/interfaces/http"
	"dailyspend/internal/shared/config"
	"dailyspend/internal/shared/messages"
)

// Dependencies holds all initialized application components.
type Dependencies struct {
	DB *postgres.DB

	// Repositories shared with the scheduler wiring
	UserRepo *postgres.UserRepository
	ItemRepo *postgres.ItemRepository

	Vault *crypto.Encryptor

	// Services
	TransactionSync *syncer.TransactionSyncService
	BalanceSync     *syncer.BalanceSyncService
	ReportService   *report.Service
	Dispatcher      *notification.Dispatcher
	Cleanup         *notification.CleanupService

	// Handlers
	TodayHandler  *httphandlers.TodayHandler
	UserHandler   *httphandlers.UserHandler
	DeviceHandler *httphandlers.DeviceHandler

	// Set in main once the scheduler exists.
	WebhookHandler *httphandlers.WebhookHandler
	AdminHandler   *httphandlers.AdminHandler
}

// NewDependencies initializes all application dependencies.
func NewDependencies(ctx context.Context, cfg *config.Config) (*Dependencies, error) {
	db, err := postgres.New(cfg.Database.ConnectionString())
	if err != nil {
		return nil, err
	}
	log.Println("Connected to database")

	encryptor, err := crypto.NewEncryptor(cfg.Encryption.Key)
	if err != nil {
		return nil, err
	}

	userRepo := postgres.NewUserRepository(db)
	itemRepo := postgres.NewItemRepository(db)
	selectionRepo := postgres.NewSelectionRepository(db)
	snapshotRepo := postgres.NewSnapshotRepository(db)
	transactionRepo := postgres.NewTransactionRepository(db)
	reportRepo := postgres.NewReportRepository(db)
	deviceRepo := postgres.NewDeviceRepository(db)

	providerClient := provider.NewClient(cfg.Provider.BaseURL, cfg.Provider.RequestTimeout, cfg.Provider.RateLimit)

	resolver := syncer.NewResolver(itemRepo, providerClient, encryptor)
	guard := syncer.NewInFlight()
	balanceSync := syncer.NewBalanceSyncService(resolver, selectionRepo, snapshotRepo)
	transactionSync := syncer.NewTransactionSyncService(
		resolver, providerClient, itemRepo, selectionRepo, transactionRepo,
		balanceSync, guard, cfg.Provider.SyncWindowDays,
	)

	reportService := report.NewService(userRepo, transactionRepo, reportRepo, selectionRepo)

	msgs, err := messages.Load(cfg.Messages.File)
	if err != nil {
		return nil, err
	}

	var messenger notification.Messenger
	if cfg.Firebase.CredentialsFile != "" {
		fcm, err := push.NewClient(ctx, cfg.Firebase.CredentialsFile)
		if err != nil {
			return nil, err
		}
		messenger = fcm
	} else {
		log.Println("Firebase credentials not configured, push delivery disabled")
		messenger = noopMessenger{}
	}

	delivery := notification.NewDeliveryService(messenger)
	dispatcher := notification.NewDispatcher(userRepo, reportRepo, reportService, deviceRepo, delivery, msgs.DailyReport)
	cleanup := notification.NewCleanupService(deviceRepo, delivery)

	return &Dependencies{
		DB:              db,
		UserRepo:        userRepo,
		ItemRepo:        itemRepo,
		Vault:           encryptor,
		TransactionSync: transactionSync,
		BalanceSync:     balanceSync,
		ReportService:   reportService,
		Dispatcher:      dispatcher,
		Cleanup:         cleanup,
		TodayHandler:    httphandlers.NewTodayHandler(userRepo, reportService, selectionRepo, snapshotRepo),
		UserHandler:     httphandlers.NewUserHandler(userRepo, selectionRepo),
		DeviceHandler:   httphandlers.NewDeviceHandler(deviceRepo),
	}, nil
}

// Close releases all resources held by dependencies.
func (d *Dependencies) Close() {
	if d.DB != nil {
		d.DB.Close()
	}
}

// noopMessenger drops every push. Used when no Firebase credentials are
// configured, e.g. in local development.
type noopMessenger struct{}

func (noopMessenger) Send(ctx context.Context, token, title, body string, data map[string]string) error {
	log.Printf("Push (disabled): %s", title)
	return nil
}

func (noopMessenger) SendProbe(ctx context.Context, token string) error {
	return nil
}
