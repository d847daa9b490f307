package models

import (
	"time"

	"github.com/google/uuid"
)

// User is a licensed professional tracking CE hours. Users sign in with a
// username and password, through OIDC, or both.
type User struct {
	ID           uuid.UUID `json:"id"`
	Username     string    `json:"username"`
	PasswordHash string    `json:"-"`
	FullName     string    `json:"fullname"`
	Sub          string    `json:"-"` // OIDC subject identifier, empty for local accounts
	Email        string    `json:"email"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// HasPassword returns true if the user can sign in with a password.
func (u *User) HasPassword() bool {
	return u.PasswordHash != ""
}

// DisplayName returns the best available name for the user.
func (u *User) DisplayName() string {
	switch {
	case u.FullName != "":
		return u.FullName
	case u.Username != "":
		return u.Username
	default:
		return u.Email
	}
}
