package user

import "context"

// Repository defines user data access operations.
type Repository interface {
	GetByID(ctx context.Context, id int64) (*User, error)
	// ListWithSelection returns users that have an account selection and at
	// least one linked item, i.e. users the sync jobs should process.
	ListWithSelection(ctx context.Context) ([]User, error)
	// ListNotifiable returns users with a timezone and notify time set.
	ListNotifiable(ctx context.Context) ([]User, error)
	UpdateSettings(ctx context.Context, id int64, params UpdateSettingsParams) (*User, error)
}
