package db

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"cetracker/internal/models"
)

const userColumns = `id, COALESCE(username, ''), COALESCE(password_hash, ''), fullname, COALESCE(sub, ''), email, created_at, updated_at`

func scanUser(row pgx.Row) (*models.User, error) {
	var user models.User
	err := row.Scan(
		&user.ID,
		&user.Username,
		&user.PasswordHash,
		&user.FullName,
		&user.Sub,
		&user.Email,
		&user.CreatedAt,
		&user.UpdatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrUserNotFound
	}
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// CreateUser inserts a local user and links them to their states in a single
// transaction. The user's ID and timestamps are set on success.
func (d *DB) CreateUser(ctx context.Context, user *models.User, states []models.UserState) error {
	return pgx.BeginFunc(ctx, d.Pool, func(tx pgx.Tx) error {
		err := tx.QueryRow(ctx, `
			INSERT INTO users (username, password_hash, fullname, email)
			VALUES ($1, $2, $3, $4)
			RETURNING id, created_at, updated_at
		`, user.Username, user.PasswordHash, user.FullName, user.Email).Scan(&user.ID, &user.CreatedAt, &user.UpdatedAt)
		if err != nil {
			if pgErrorCode(err) == pgUniqueViolation {
				return ErrUsernameTaken
			}
			return fmt.Errorf("insert user: %w", err)
		}

		for _, s := range states {
			_, err := tx.Exec(ctx, `
				INSERT INTO user_states (user_id, state_code, hours_complete, renewal_date)
				VALUES ($1, $2, $3, $4)
			`, user.ID, s.StateCode, s.HoursComplete, s.RenewalDate)
			if err != nil {
				if pgErrorCode(err) == pgForeignKeyViolation {
					return fmt.Errorf("%w: %s", ErrUnknownState, s.StateCode)
				}
				return fmt.Errorf("link state %s: %w", s.StateCode, err)
			}
		}

		return nil
	})
}

// UpsertUserBySub creates or updates a user based on their OIDC subject.
func (d *DB) UpsertUserBySub(ctx context.Context, user *models.User) error {
	query := `
		INSERT INTO users (sub, fullname, email)
		VALUES ($1, $2, $3)
		ON CONFLICT (sub) DO UPDATE SET
			fullname = EXCLUDED.fullname,
			email = EXCLUDED.email,
			updated_at = NOW()
		RETURNING id, COALESCE(username, ''), created_at, updated_at
	`

	return d.Pool.QueryRow(ctx, query, user.Sub, user.FullName, user.Email).
		Scan(&user.ID, &user.Username, &user.CreatedAt, &user.UpdatedAt)
}

// GetUserByUsername retrieves a local user by username.
func (d *DB) GetUserByUsername(ctx context.Context, username string) (*models.User, error) {
	return scanUser(d.Pool.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE username = $1`, username))
}

// GetUserByID retrieves a user by their UUID.
func (d *DB) GetUserByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	return scanUser(d.Pool.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE id = $1`, id))
}

// GetUserBySub retrieves a user by their OIDC subject identifier.
func (d *DB) GetUserBySub(ctx context.Context, sub string) (*models.User, error) {
	return scanUser(d.Pool.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE sub = $1`, sub))
}

// DeleteUser deletes a user by ID. Their state links cascade.
func (d *DB) DeleteUser(ctx context.Context, userID uuid.UUID) error {
	tag, err := d.Pool.Exec(ctx, `DELETE FROM users WHERE id = $1`, userID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrUserNotFound
	}
	return nil
}

// GetUserCount returns the total number of users.
func (d *DB) GetUserCount(ctx context.Context) (int, error) {
	var count int
	err := d.Pool.QueryRow(ctx, `SELECT COUNT(*) FROM users`).Scan(&count)
	return count, err
}
