package db

import (
	"context"
	"testing"
	"time"

	"github.com/byronguina/sprintbot/internal/model"
)

func TestCreateSprint(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	s := createTestSprint(t, db, "Sprint 1")

	got, err := db.GetSprint(ctx, s.ID)
	if err != nil {
		t.Fatalf("failed to get sprint: %v", err)
	}
	if got.Status != model.SprintPlanned {
		t.Errorf("status = %q, want PLANNED default", got.Status)
	}
	if got.StartDate.Format(model.DateLayout) != "2026-03-02" {
		t.Errorf("start = %s", got.StartDate.Format(model.DateLayout))
	}
}

func TestCreateSprint_Invalid(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	day := time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC)
	if err := db.CreateSprint(ctx, &model.Sprint{Name: "", StartDate: day, EndDate: day}); err == nil {
		t.Error("expected error for empty name")
	}
	if err := db.CreateSprint(ctx, &model.Sprint{Name: "x", StartDate: day, EndDate: day.AddDate(0, 0, -1)}); err == nil {
		t.Error("expected error for reversed dates")
	}
	if err := db.CreateSprint(ctx, &model.Sprint{Name: "x", StartDate: day, EndDate: day, Status: "RUNNING"}); err == nil {
		t.Error("expected error for invalid status")
	}
}

func TestUpdateSprintStatus(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	s := createTestSprint(t, db, "Sprint 1")
	got, err := db.UpdateSprintStatus(ctx, s.ID, model.SprintActive)
	if err != nil {
		t.Fatalf("failed to update: %v", err)
	}
	if got.Status != model.SprintActive {
		t.Errorf("status = %q, want ACTIVE", got.Status)
	}

	active, err := db.ListSprintsByStatus(ctx, model.SprintActive)
	if err != nil {
		t.Fatalf("failed to list: %v", err)
	}
	if len(active) != 1 {
		t.Errorf("expected 1 active sprint, got %d", len(active))
	}

	if _, err := db.UpdateSprintStatus(ctx, 999, model.SprintActive); !IsNotFound(err) {
		t.Errorf("expected not found, got %v", err)
	}
}

func TestActiveSprints(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	createTestSprint(t, db, "Covers today") // 2026-03-02..2026-03-15
	later := &model.Sprint{
		Name:      "Later but active",
		StartDate: time.Date(2026, 4, 1, 0, 0, 0, 0, time.UTC),
		EndDate:   time.Date(2026, 4, 14, 0, 0, 0, 0, time.UTC),
		Status:    model.SprintActive,
	}
	if err := db.CreateSprint(ctx, later); err != nil {
		t.Fatalf("failed to create: %v", err)
	}
	old := &model.Sprint{
		Name:      "Old",
		StartDate: time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC),
		EndDate:   time.Date(2026, 1, 14, 0, 0, 0, 0, time.UTC),
		Status:    model.SprintCompleted,
	}
	if err := db.CreateSprint(ctx, old); err != nil {
		t.Fatalf("failed to create: %v", err)
	}

	sprints, err := db.ActiveSprints(ctx, time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC))
	if err != nil {
		t.Fatalf("failed to list: %v", err)
	}
	if len(sprints) != 2 {
		t.Fatalf("expected 2 active sprints, got %d", len(sprints))
	}
	if sprints[0].Name != "Covers today" || sprints[1].Name != "Later but active" {
		t.Errorf("unexpected sprints: %s, %s", sprints[0].Name, sprints[1].Name)
	}
}

func TestDeleteSprint_UnlinksTasks(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	s := createTestSprint(t, db, "Sprint 1")
	a := createTestTask(t, db, "A", model.StatusPending, nil, &s.ID)
	b := createTestTask(t, db, "B", model.StatusCompleted, nil, &s.ID)

	if err := db.DeleteSprint(ctx, s.ID); err != nil {
		t.Fatalf("failed to delete sprint: %v", err)
	}

	for _, id := range []int64{a.ID, b.ID} {
		task, err := db.GetTask(ctx, id)
		if err != nil {
			t.Fatalf("task %d should survive sprint deletion: %v", id, err)
		}
		if task.SprintID != nil {
			t.Errorf("task %d still linked to sprint %d", id, *task.SprintID)
		}
	}

	if _, err := db.GetSprint(ctx, s.ID); !IsNotFound(err) {
		t.Errorf("expected sprint gone, got %v", err)
	}
	if err := db.DeleteSprint(ctx, s.ID); !IsNotFound(err) {
		t.Errorf("expected not found on second delete, got %v", err)
	}
}
