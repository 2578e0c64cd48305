package database

import (
	"context"
	"errors"
	"testing"
)

func TestCreateStaffUser(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	user, err := db.CreateStaffUser(ctx, "alex", "alex@example.com", "hash", RoleAdmin)
	if err != nil {
		t.Fatalf("CreateStaffUser returned error: %v", err)
	}
	if user == nil || user.ID == "" {
		t.Fatalf("expected created user, got %+v", user)
	}
	if user.Role != RoleAdmin || !user.CreatedAt.Valid {
		t.Errorf("unexpected user %+v", user)
	}

	tests := []struct {
		name     string
		username string
		email    string
		want     error
	}{
		{"duplicate username", "alex", "other@example.com", ErrUsernameTaken},
		{"duplicate email", "other", "alex@example.com", ErrEmailTaken},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := db.CreateStaffUser(ctx, tt.username, tt.email, "hash", RoleModerator)
			if !errors.Is(err, tt.want) {
				t.Fatalf("expected %v, got %v", tt.want, err)
			}
		})
	}

	found, err := db.GetStaffUserByUsername(ctx, "alex")
	if err != nil || found == nil {
		t.Fatalf("GetStaffUserByUsername returned %v, %v", found, err)
	}
	if found.Email != "alex@example.com" {
		t.Errorf("email = %q", found.Email)
	}

	missing, err := db.GetStaffUserByUsername(ctx, "nobody")
	if err != nil || missing != nil {
		t.Fatalf("expected nil, nil for unknown user, got %v, %v", missing, err)
	}
}
