package db

import (
	"context"
	"errors"
	"testing"

	"cetracker/internal/models"
)

func TestUpdateHours(t *testing.T) {
	db, cleanup := setupTestDB(t)
	defer cleanup()

	ctx := context.Background()

	user := &models.User{Username: "hours", PasswordHash: "h", FullName: "Hours"}
	if err := db.CreateUser(ctx, user, []models.UserState{{StateCode: "FL", HoursComplete: 3}}); err != nil {
		t.Fatalf("CreateUser() error = %v", err)
	}

	updated, err := db.UpdateHours(ctx, user.ID, "FL", 12)
	if err != nil {
		t.Fatalf("UpdateHours() error = %v", err)
	}
	if updated != 12 {
		t.Errorf("UpdateHours() = %d, want 12", updated)
	}

	tests := []struct {
		name    string
		code    string
		wantErr error
	}{
		{"known state not linked", "NY", ErrUserStateNotFound},
		{"unknown state", "ZZ", ErrUnknownState},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := db.UpdateHours(ctx, user.ID, tt.code, 1); !errors.Is(err, tt.wantErr) {
				t.Errorf("UpdateHours(%s) error = %v, want %v", tt.code, err, tt.wantErr)
			}
		})
	}
}

func TestListStates(t *testing.T) {
	db, cleanup := setupTestDB(t)
	defer cleanup()

	states, err := db.ListStates(context.Background())
	if err != nil {
		t.Fatalf("ListStates() error = %v", err)
	}
	if len(states) != len(models.StateCodes) {
		t.Errorf("ListStates() returned %d states, want %d", len(states), len(models.StateCodes))
	}
}

func TestApplyStateRequirements(t *testing.T) {
	db, cleanup := setupTestDB(t)
	defer cleanup()

	ctx := context.Background()
	defer db.ApplyStateRequirements(ctx, map[string]int{"VT": 20})

	if err := db.ApplyStateRequirements(ctx, map[string]int{"VT": 22}); err != nil {
		t.Fatalf("ApplyStateRequirements() error = %v", err)
	}

	user := &models.User{Username: "vt", PasswordHash: "h", FullName: "Vermont"}
	if err := db.CreateUser(ctx, user, []models.UserState{{StateCode: "VT", HoursComplete: 2}}); err != nil {
		t.Fatalf("CreateUser() error = %v", err)
	}
	states, err := db.GetUserStates(ctx, user.ID)
	if err != nil {
		t.Fatalf("GetUserStates() error = %v", err)
	}
	if states[0].RequiredHours != 22 {
		t.Errorf("VT required = %d, want 22", states[0].RequiredHours)
	}

	if err := db.ApplyStateRequirements(ctx, map[string]int{"ZZ": 1}); !errors.Is(err, ErrUnknownState) {
		t.Errorf("ApplyStateRequirements(ZZ) error = %v, want ErrUnknownState", err)
	}
}

func TestGetOutstandingHoursByState(t *testing.T) {
	db, cleanup := setupTestDB(t)
	defer cleanup()

	ctx := context.Background()

	for _, u := range []struct {
		name  string
		hours int
	}{{"ny-a", 4}, {"ny-b", 30}} {
		user := &models.User{Username: u.name, PasswordHash: "h", FullName: u.name}
		if err := db.CreateUser(ctx, user, []models.UserState{{StateCode: "NY", HoursComplete: u.hours}}); err != nil {
			t.Fatalf("CreateUser(%s) error = %v", u.name, err)
		}
	}

	totals, err := db.GetOutstandingHoursByState(ctx)
	if err != nil {
		t.Fatalf("GetOutstandingHoursByState() error = %v", err)
	}
	// 24-4 = 20, and the over-complete user contributes 0.
	if totals["NY"] != 20 {
		t.Errorf("NY outstanding = %d, want 20", totals["NY"])
	}
}
