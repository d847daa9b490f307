package models

import (
	"time"

	"github.com/google/uuid"
)

// State is a licensing jurisdiction and its CE hour requirement.
type State struct {
	Code          string `json:"code"`
	RequiredHours int    `json:"required_hours"`
}

// UserState is a user's progress toward one state's requirement.
type UserState struct {
	UserID        uuid.UUID  `json:"-"`
	StateCode     string     `json:"state_code"`
	HoursComplete int        `json:"hours_complete"`
	RequiredHours int        `json:"legal_hours"`
	RenewalDate   *time.Time `json:"renewal_date,omitempty"`
}

// Outstanding returns the hours still needed, never negative.
func (s UserState) Outstanding() int {
	return max(s.RequiredHours-s.HoursComplete, 0)
}

// TotalOutstanding sums outstanding hours across states.
func TotalOutstanding(states []UserState) int {
	total := 0
	for _, s := range states {
		total += s.Outstanding()
	}
	return total
}

// StateCodes lists the two-letter codes of all supported states.
var StateCodes = []string{
	"AL", "AK", "AZ", "AR", "CA", "CO", "CT", "DE", "FL", "GA",
	"HI", "ID", "IL", "IN", "IA", "KS", "KY", "LA", "ME", "MD",
	"MA", "MI", "MN", "MS", "MO", "MT", "NE", "NV", "NH", "NJ",
	"NM", "NY", "NC", "ND", "OH", "OK", "OR", "PA", "RI", "SC",
	"SD", "TN", "TX", "UT", "VT", "VA", "WA", "WV", "WI", "WY",
}

// RenewalReminder is a state whose renewal date is near while hours are
// still outstanding.
type RenewalReminder struct {
	UserID        uuid.UUID
	Email         string
	FullName      string
	StateCode     string
	HoursComplete int
	RequiredHours int
	RenewalDate   time.Time
}

// Outstanding returns the hours still needed, never negative.
func (r RenewalReminder) Outstanding() int {
	return max(r.RequiredHours-r.HoursComplete, 0)
}

// DaysLeft returns whole days from now until the renewal date. Negative once
// the date has passed.
func (r RenewalReminder) DaysLeft(now time.Time) int {
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	due := time.Date(r.RenewalDate.Year(), r.RenewalDate.Month(), r.RenewalDate.Day(), 0, 0, 0, 0, time.UTC)
	return int(due.Sub(today).Hours() / 24)
}
