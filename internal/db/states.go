package db

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"cetracker/internal/models"
)

// GetUserStates returns a user's progress for every state they are licensed in.
func (d *DB) GetUserStates(ctx context.Context, userID uuid.UUID) ([]models.UserState, error) {
	query := `
		SELECT us.user_id, us.state_code, us.hours_complete, s.required_hours, us.renewal_date
		FROM user_states us
		JOIN states s ON s.code = us.state_code
		WHERE us.user_id = $1
		ORDER BY us.state_code ASC
	`

	rows, err := d.Pool.Query(ctx, query, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var states []models.UserState
	for rows.Next() {
		var s models.UserState
		if err := rows.Scan(&s.UserID, &s.StateCode, &s.HoursComplete, &s.RequiredHours, &s.RenewalDate); err != nil {
			return nil, err
		}
		states = append(states, s)
	}

	return states, rows.Err()
}

// UpdateHours sets the completed hours for one of a user's states and returns
// the stored value.
func (d *DB) UpdateHours(ctx context.Context, userID uuid.UUID, stateCode string, hours int) (int, error) {
	query := `
		UPDATE user_states SET hours_complete = $1, updated_at = NOW()
		WHERE user_id = $2 AND state_code = $3
		RETURNING hours_complete
	`

	var updated int
	err := d.Pool.QueryRow(ctx, query, hours, userID, stateCode).Scan(&updated)
	if err == nil {
		return updated, nil
	}
	if !isNoRows(err) {
		return 0, err
	}

	exists, err := d.StateExists(ctx, stateCode)
	if err != nil {
		return 0, err
	}
	if !exists {
		return 0, ErrUnknownState
	}
	return 0, ErrUserStateNotFound
}

// StateExists reports whether stateCode is a known state.
func (d *DB) StateExists(ctx context.Context, stateCode string) (bool, error) {
	var exists bool
	err := d.Pool.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM states WHERE code = $1)`, stateCode).Scan(&exists)
	return exists, err
}

// ListStates returns every state and its requirement.
func (d *DB) ListStates(ctx context.Context) ([]models.State, error) {
	rows, err := d.Pool.Query(ctx, `SELECT code, required_hours FROM states ORDER BY code`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var states []models.State
	for rows.Next() {
		var s models.State
		if err := rows.Scan(&s.Code, &s.RequiredHours); err != nil {
			return nil, err
		}
		states = append(states, s)
	}
	return states, rows.Err()
}

// ApplyStateRequirements overrides required hours for the given states.
func (d *DB) ApplyStateRequirements(ctx context.Context, required map[string]int) error {
	for code, hours := range required {
		tag, err := d.Pool.Exec(ctx, `UPDATE states SET required_hours = $1 WHERE code = $2`, hours, code)
		if err != nil {
			return fmt.Errorf("failed to update requirement for %s: %w", code, err)
		}
		if tag.RowsAffected() == 0 {
			return fmt.Errorf("%w: %s", ErrUnknownState, code)
		}
	}
	return nil
}

// GetOutstandingHoursByState sums outstanding hours across all users per state.
func (d *DB) GetOutstandingHoursByState(ctx context.Context) (map[string]int64, error) {
	query := `
		SELECT us.state_code, COALESCE(SUM(GREATEST(s.required_hours - us.hours_complete, 0)), 0)
		FROM user_states us
		JOIN states s ON s.code = us.state_code
		GROUP BY us.state_code
	`

	rows, err := d.Pool.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	totals := make(map[string]int64)
	for rows.Next() {
		var code string
		var hours int64
		if err := rows.Scan(&code, &hours); err != nil {
			return nil, err
		}
		totals[code] = hours
	}

	return totals, rows.Err()
}
