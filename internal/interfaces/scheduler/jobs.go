package scheduler

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"dailyspend/internal/domain/notification"
	"dailyspend/internal/domain/report"
	"dailyspend/internal/domain/syncer"
	"dailyspend/internal/domain/user"
)

// Job family names, used for registration and manual triggers.
const (
	FamilyTransactionSync = "transaction-sync"
	FamilyBalanceSync     = "balance-sync"
	FamilyReport          = "report"
	FamilyNotify          = "notify"
	FamilyDeviceCleanup   = "device-cleanup"
)

// TransactionSyncJob pulls one user's spend-account transactions.
type TransactionSyncJob struct {
	userID int64
	svc    *syncer.TransactionSyncService
}

func NewTransactionSyncJob(userID int64, svc *syncer.TransactionSyncService) *TransactionSyncJob {
	return &TransactionSyncJob{userID: userID, svc: svc}
}

func (j *TransactionSyncJob) Execute(ctx context.Context) error {
	return j.svc.SyncUser(ctx, j.userID)
}

func (j *TransactionSyncJob) UserID() string { return strconv.FormatInt(j.userID, 10) }

func (j *TransactionSyncJob) Description() string {
	return fmt.Sprintf("Transaction sync for user %d", j.userID)
}

// BalanceSyncJob snapshots one user's account balances.
type BalanceSyncJob struct {
	userID int64
	svc    *syncer.BalanceSyncService
}

func NewBalanceSyncJob(userID int64, svc *syncer.BalanceSyncService) *BalanceSyncJob {
	return &BalanceSyncJob{userID: userID, svc: svc}
}

func (j *BalanceSyncJob) Execute(ctx context.Context) error {
	return j.svc.SyncUser(ctx, j.userID)
}

func (j *BalanceSyncJob) UserID() string { return strconv.FormatInt(j.userID, 10) }

func (j *BalanceSyncJob) Description() string {
	return fmt.Sprintf("Balance sync for user %d", j.userID)
}

// ReportJob recomputes one user's report for their current local day.
type ReportJob struct {
	user *user.User
	svc  *report.Service
}

func NewReportJob(u *user.User, svc *report.Service) *ReportJob {
	return &ReportJob{user: u, svc: svc}
}

func (j *ReportJob) Execute(ctx context.Context) error {
	dateKey := report.DateKeyAt(time.Now(), report.Location(j.user))
	_, err := j.svc.ComputeReport(ctx, j.user.ID, dateKey)
	return err
}

func (j *ReportJob) UserID() string { return strconv.FormatInt(j.user.ID, 10) }

func (j *ReportJob) Description() string {
	return fmt.Sprintf("Daily report for user %d", j.user.ID)
}

// DispatchJob runs the notification scheduling decision for one user.
type DispatchJob struct {
	user       *user.User
	dispatcher *notification.Dispatcher
}

func NewDispatchJob(u *user.User, dispatcher *notification.Dispatcher) *DispatchJob {
	return &DispatchJob{user: u, dispatcher: dispatcher}
}

func (j *DispatchJob) Execute(ctx context.Context) error {
	return j.dispatcher.DispatchUser(ctx, j.user)
}

func (j *DispatchJob) UserID() string { return strconv.FormatInt(j.user.ID, 10) }

func (j *DispatchJob) Description() string {
	return fmt.Sprintf("Notification dispatch for user %d", j.user.ID)
}

// CleanupJob sweeps all registered devices for dead push tokens.
type CleanupJob struct {
	svc *notification.CleanupService
}

func NewCleanupJob(svc *notification.CleanupService) *CleanupJob {
	return &CleanupJob{svc: svc}
}

func (j *CleanupJob) Execute(ctx context.Context) error {
	return j.svc.Run(ctx)
}

func (j *CleanupJob) UserID() string { return "-" }

func (j *CleanupJob) Description() string { return "Device cleanup sweep" }

// PerUserProvider builds one job per syncable user.
func PerUserProvider(users user.Repository, build func(u *user.User) Job) func(ctx context.Context) ([]Job, error) {
	return func(ctx context.Context) ([]Job, error) {
		list, err := users.ListWithSelection(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to list users: %w", err)
		}
		jobs := make([]Job, 0, len(list))
		for i := range list {
			jobs = append(jobs, build(&list[i]))
		}
		return jobs, nil
	}
}

// NotifiableProvider builds one dispatch job per notifiable user.
func NotifiableProvider(users user.Repository, dispatcher *notification.Dispatcher) func(ctx context.Context) ([]Job, error) {
	return func(ctx context.Context) ([]Job, error) {
		list, err := users.ListNotifiable(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to list notifiable users: %w", err)
		}
		jobs := make([]Job, 0, len(list))
		for i := range list {
			jobs = append(jobs, NewDispatchJob(&list[i], dispatcher))
		}
		return jobs, nil
	}
}

// SingletonProvider wraps one standalone job, e.g. the cleanup sweep.
func SingletonProvider(job Job) func(ctx context.Context) ([]Job, error) {
	return func(ctx context.Context) ([]Job, error) {
		return []Job{job}, nil
	}
}
