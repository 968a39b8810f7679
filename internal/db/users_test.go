package db

import (
	"context"
	"testing"

	"github.com/byronguina/sprintbot/internal/model"
)

func TestCreateUser(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	u := createTestUser(t, db, "ana", model.RoleDeveloper, "5215500000001")
	if u.ID == 0 {
		t.Fatal("expected generated id")
	}

	got, err := db.GetUser(ctx, u.ID)
	if err != nil {
		t.Fatalf("failed to get user: %v", err)
	}
	if got.Phone != "+5215500000001" {
		t.Errorf("phone = %q, want normalized +5215500000001", got.Phone)
	}
	if got.Role != model.RoleDeveloper {
		t.Errorf("role = %q, want Developer", got.Role)
	}
}

func TestCreateUser_InvalidRole(t *testing.T) {
	db := setupTestDB(t)

	err := db.CreateUser(context.Background(), &model.User{Username: "x", Role: model.Role("Admin")})
	if err == nil {
		t.Error("expected error for invalid role")
	}
}

func TestCreateUser_DuplicatePhone(t *testing.T) {
	db := setupTestDB(t)

	createTestUser(t, db, "ana", model.RoleDeveloper, "+5215500000001")
	err := db.CreateUser(context.Background(), &model.User{Username: "bea", Role: model.RoleDeveloper, Phone: "5215500000001"})
	if err == nil {
		t.Fatal("expected unique phone violation")
	}
	if !IsConstraintError(err) {
		t.Errorf("expected constraint error, got %v", err)
	}
}

func TestGetUserByPhone(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	u := createTestUser(t, db, "ana", model.RoleDeveloper, "+5215500000001")

	tests := []struct {
		name  string
		phone string
		found bool
	}{
		{"with plus", "+5215500000001", true},
		{"without plus", "5215500000001", true},
		{"unknown", "+10000000000", false},
		{"empty", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := db.GetUserByPhone(ctx, tt.phone)
			if !tt.found {
				if !IsNotFound(err) {
					t.Errorf("expected not found, got %v", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got.ID != u.ID {
				t.Errorf("id = %d, want %d", got.ID, u.ID)
			}
		})
	}
}

func TestListUsersByRole(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	createTestUser(t, db, "maria", model.RoleManager, "+1")
	createTestUser(t, db, "ana", model.RoleDeveloper, "+2")
	createTestUser(t, db, "luis", model.RoleDeveloper, "+3")

	devs, err := db.ListUsersByRole(ctx, model.RoleDeveloper)
	if err != nil {
		t.Fatalf("failed to list: %v", err)
	}
	if len(devs) != 2 {
		t.Fatalf("expected 2 developers, got %d", len(devs))
	}
	if devs[0].Username != "ana" || devs[1].Username != "luis" {
		t.Errorf("unexpected order: %s, %s", devs[0].Username, devs[1].Username)
	}

	all, _ := db.ListUsers(ctx)
	if len(all) != 3 {
		t.Errorf("expected 3 users, got %d", len(all))
	}

	if _, err := db.ListUsersByRole(ctx, model.Role("nope")); err == nil {
		t.Error("expected error for invalid role")
	}
}
