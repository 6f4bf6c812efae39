package postgres

import (
	"context"
	"fmt"

	"dailyspend/internal/domain/user"
)

type UserRepository struct {
	db *DB
}

func NewUserRepository(db *DB) *UserRepository {
	return &UserRepository{db: db}
}

const userColumns = `id, email, name, timezone, notify_time, goal_label, created_at, updated_at`

func (r *UserRepository) GetByID(ctx context.Context, id int64) (*user.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE id = $1`

	var u user.User
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&u.ID, &u.Email, &u.Name, &u.Timezone, &u.NotifyTime, &u.GoalLabel, &u.CreatedAt, &u.UpdatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to get user %d: %w", id, err)
	}
	return &u, nil
}

// ListWithSelection returns users eligible for sync: they have chosen a
// spend account and hold at least one linked item.
func (r *UserRepository) ListWithSelection(ctx context.Context) ([]user.User, error) {
	query := `
		SELECT ` + userColumns + `
		FROM users u
		WHERE EXISTS (SELECT 1 FROM account_selections s WHERE s.user_id = u.id)
		  AND EXISTS (SELECT 1 FROM linked_items i WHERE i.user_id = u.id)
		ORDER BY u.id
	`

	return r.list(ctx, query)
}

// ListNotifiable returns users with both a timezone and a notify time set.
func (r *UserRepository) ListNotifiable(ctx context.Context) ([]user.User, error) {
	query := `
		SELECT ` + userColumns + `
		FROM users u
		WHERE timezone IS NOT NULL AND notify_time IS NOT NULL
		ORDER BY u.id
	`

	return r.list(ctx, query)
}

func (r *UserRepository) list(ctx context.Context, query string, args ...any) ([]user.User, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}
	defer rows.Close()

	var users []user.User
	for rows.Next() {
		var u user.User
		if err := rows.Scan(&u.ID, &u.Email, &u.Name, &u.Timezone, &u.NotifyTime, &u.GoalLabel, &u.CreatedAt, &u.UpdatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan user: %w", err)
		}
		users = append(users, u)
	}
	return users, rows.Err()
}

// UpdateSettings patches the user's setup fields. Nil params leave the
// stored values untouched.
func (r *UserRepository) UpdateSettings(ctx context.Context, id int64, params user.UpdateSettingsParams) (*user.User, error) {
	query := `
		UPDATE users
		SET timezone = COALESCE($2, timezone),
		    notify_time = COALESCE($3, notify_time),
		    goal_label = COALESCE($4, goal_label),
		    updated_at = NOW()
		WHERE id = $1
		RETURNING ` + userColumns

	var u user.User
	err := r.db.QueryRowContext(ctx, query, id, params.Timezone, params.NotifyTime, params.GoalLabel).Scan(
		&u.ID, &u.Email, &u.Name, &u.Timezone, &u.NotifyTime, &u.GoalLabel, &u.CreatedAt, &u.UpdatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to update user settings: %w", err)
	}
	return &u, nil
}
