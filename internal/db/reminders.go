package db

import (
	"context"
	"time"

	"github.com/google/uuid"

	"cetracker/internal/models"
)

// GetRenewalsDue returns linked states whose renewal date falls within
// windowDays from today, that still have outstanding hours, and that have not
// been reminded within cooldown.
func (d *DB) GetRenewalsDue(ctx context.Context, windowDays int, cooldown time.Duration, limit int) ([]models.RenewalReminder, error) {
	query := `
		SELECT us.user_id, u.email, u.fullname, us.state_code, us.hours_complete, s.required_hours, us.renewal_date
		FROM user_states us
		JOIN states s ON s.code = us.state_code
		JOIN users u ON u.id = us.user_id
		WHERE us.renewal_date IS NOT NULL
		  AND us.renewal_date BETWEEN CURRENT_DATE AND CURRENT_DATE + $1::int
		  AND us.hours_complete < s.required_hours
		  AND u.email <> ''
		  AND (us.last_reminded_at IS NULL OR us.last_reminded_at < NOW() - make_interval(secs => $2::float8))
		ORDER BY us.renewal_date ASC
		LIMIT $3
	`

	rows, err := d.Pool.Query(ctx, query, windowDays, cooldown.Seconds(), limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var due []models.RenewalReminder
	for rows.Next() {
		var r models.RenewalReminder
		if err := rows.Scan(&r.UserID, &r.Email, &r.FullName, &r.StateCode, &r.HoursComplete, &r.RequiredHours, &r.RenewalDate); err != nil {
			return nil, err
		}
		due = append(due, r)
	}

	return due, rows.Err()
}

// MarkReminded records that a reminder was sent for one of a user's states.
func (d *DB) MarkReminded(ctx context.Context, userID uuid.UUID, stateCode string) error {
	_, err := d.Pool.Exec(ctx,
		`UPDATE user_states SET last_reminded_at = NOW() WHERE user_id = $1 AND state_code = $2`,
		userID, stateCode)
	return err
}
