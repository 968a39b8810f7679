package db

import (
	"context"
	"testing"
	"time"

	"github.com/byronguina/sprintbot/internal/model"
)

func TestCreateTask(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	task := &model.Task{
		Description:    "Write report",
		Priority:       model.PriorityHigh,
		CreatedBy:      1,
		EstimatedHours: model.Ptr(3.5),
	}
	if err := db.CreateTask(ctx, task); err != nil {
		t.Fatalf("failed to create task: %v", err)
	}

	got, err := db.GetTask(ctx, task.ID)
	if err != nil {
		t.Fatalf("failed to get task: %v", err)
	}

	if got.Status != model.StatusPending {
		t.Errorf("status = %q, want Pending default", got.Status)
	}
	if got.Done() {
		t.Error("new task should not be done")
	}
	if got.EstimatedHours == nil || *got.EstimatedHours != 3.5 {
		t.Errorf("estimated = %v, want 3.5", got.EstimatedHours)
	}
	if got.ActualHours != nil || got.SprintID != nil || got.AssignedTo != nil {
		t.Error("optional fields should be nil")
	}
	if got.CreatedAt.IsZero() {
		t.Error("created_at should be set")
	}
}

func TestCreateTask_Invalid(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	tests := []struct {
		name string
		task model.Task
	}{
		{"empty description", model.Task{Description: "  "}},
		{"bad status", model.Task{Description: "x", Status: model.Status("Done")}},
		{"bad priority", model.Task{Description: "x", Priority: model.Priority("Urgent")}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			task := tt.task
			if err := db.CreateTask(ctx, &task); err == nil {
				t.Error("expected error")
			}
		})
	}
}

func TestCreateTasks_Atomic(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	tasks := []*model.Task{
		{Description: "part 1", CreatedBy: 1},
		{Description: "", CreatedBy: 1},
	}
	if err := db.CreateTasks(ctx, tasks); err == nil {
		t.Fatal("expected error for invalid second task")
	}

	all, err := db.ListTasks(ctx, model.TaskFilter{})
	if err != nil {
		t.Fatalf("failed to list: %v", err)
	}
	if len(all) != 0 {
		t.Errorf("expected rollback, found %d tasks", len(all))
	}

	tasks[1].Description = "part 2"
	if err := db.CreateTasks(ctx, tasks); err != nil {
		t.Fatalf("failed to create tasks: %v", err)
	}
	if tasks[0].ID == 0 || tasks[1].ID == 0 || tasks[0].ID == tasks[1].ID {
		t.Errorf("expected distinct ids, got %d and %d", tasks[0].ID, tasks[1].ID)
	}
}

func TestUpdateTask(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	dev := createTestUser(t, db, "ana", model.RoleDeveloper, "+1")
	sprint := createTestSprint(t, db, "Sprint 1")
	task := createTestTask(t, db, "Fix login", model.StatusPending, nil, nil)

	status := model.StatusCompleted
	got, err := db.UpdateTask(ctx, task.ID, model.TaskUpdate{
		Status:      &status,
		ActualHours: model.Ptr(2.0),
		AssignedTo:  &dev.ID,
		SprintID:    &sprint.ID,
	})
	if err != nil {
		t.Fatalf("failed to update: %v", err)
	}

	if !got.Done() {
		t.Error("task should be done after completing")
	}
	if got.Actual() != 2.0 {
		t.Errorf("actual = %v, want 2", got.Actual())
	}
	if !got.IsAssignedTo(dev.ID) || !got.InSprint(sprint.ID) {
		t.Error("assignee or sprint not stored")
	}

	got, err = db.UpdateTask(ctx, task.ID, model.TaskUpdate{Unassign: true, ClearSprint: true})
	if err != nil {
		t.Fatalf("failed to clear: %v", err)
	}
	if got.AssignedTo != nil || got.SprintID != nil {
		t.Error("expected assignee and sprint cleared")
	}
}

func TestUpdateTask_NotFound(t *testing.T) {
	db := setupTestDB(t)

	desc := "x"
	_, err := db.UpdateTask(context.Background(), 42, model.TaskUpdate{Description: &desc})
	if !IsNotFound(err) {
		t.Errorf("expected not found, got %v", err)
	}
}

func TestUpdateTaskStatus_DoneFollowsStatus(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	task := createTestTask(t, db, "Deploy", model.StatusPending, nil, nil)

	for _, status := range []model.Status{model.StatusCompleted, model.StatusInReview, model.StatusCompleted, model.StatusPending} {
		got, err := db.UpdateTaskStatus(ctx, task.ID, status)
		if err != nil {
			t.Fatalf("failed to set %s: %v", status, err)
		}
		if got.Done() != (status == model.StatusCompleted) {
			t.Errorf("after %s Done() = %v", status, got.Done())
		}
	}

	if _, err := db.UpdateTaskStatus(ctx, task.ID, model.Status("bogus")); err == nil {
		t.Error("expected error for invalid status")
	}
}

func TestDeleteTask(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	task := createTestTask(t, db, "Remove me", model.StatusPending, nil, nil)
	if err := db.DeleteTask(ctx, task.ID); err != nil {
		t.Fatalf("failed to delete: %v", err)
	}
	if _, err := db.GetTask(ctx, task.ID); !IsNotFound(err) {
		t.Errorf("expected not found after delete, got %v", err)
	}
	if err := db.DeleteTask(ctx, task.ID); !IsNotFound(err) {
		t.Errorf("expected not found on second delete, got %v", err)
	}
}

func TestListTasks_Filters(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	ana := createTestUser(t, db, "ana", model.RoleDeveloper, "+1")
	luis := createTestUser(t, db, "luis", model.RoleDeveloper, "+2")
	sprint := createTestSprint(t, db, "Sprint 1")

	createTestTask(t, db, "A", model.StatusPending, &ana.ID, &sprint.ID)
	createTestTask(t, db, "B", model.StatusCompleted, &ana.ID, nil)
	createTestTask(t, db, "C", model.StatusInProgress, &luis.ID, &sprint.ID)
	archived := createTestTask(t, db, "D", model.StatusPending, &ana.ID, nil)
	if err := db.ArchiveTask(ctx, archived.ID); err != nil {
		t.Fatalf("failed to archive: %v", err)
	}

	completed := model.StatusCompleted
	tests := []struct {
		name   string
		filter model.TaskFilter
		want   []string
	}{
		{"all active", model.TaskFilter{}, []string{"A", "B", "C"}},
		{"with archived", model.TaskFilter{IncludeArchived: true}, []string{"A", "B", "C", "D"}},
		{"assignee", model.TaskFilter{AssignedTo: &ana.ID}, []string{"A", "B"}},
		{"assignee not completed", model.TaskFilter{AssignedTo: &ana.ID, ExcludeStatus: &completed}, []string{"A"}},
		{"status", model.TaskFilter{Status: &completed}, []string{"B"}},
		{"sprint", model.TaskFilter{SprintID: &sprint.ID}, []string{"A", "C"}},
		{"no sprint", model.TaskFilter{NoSprint: true}, []string{"B"}},
		{"priority", model.TaskFilter{Priority: model.Ptr(model.PriorityMedium)}, []string{"A", "B", "C"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tasks, err := db.ListTasks(ctx, tt.filter)
			if err != nil {
				t.Fatalf("failed to list: %v", err)
			}
			var got []string
			for _, task := range tasks {
				got = append(got, task.Description)
			}
			if len(got) != len(tt.want) {
				t.Fatalf("got %v, want %v", got, tt.want)
			}
			for i := range got {
				if got[i] != tt.want[i] {
					t.Errorf("got %v, want %v", got, tt.want)
					break
				}
			}
		})
	}
}

func TestListTasks_CreationOrder(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	for i, desc := range []string{"third", "first", "second"} {
		offset := []int{3, 1, 2}[i]
		task := &model.Task{Description: desc, CreatedBy: 1, CreatedAt: base.Add(time.Duration(offset) * time.Hour)}
		if err := db.CreateTask(ctx, task); err != nil {
			t.Fatalf("failed to create: %v", err)
		}
	}

	tasks, err := db.ListTasks(ctx, model.TaskFilter{})
	if err != nil {
		t.Fatalf("failed to list: %v", err)
	}
	if tasks[0].Description != "first" || tasks[1].Description != "second" || tasks[2].Description != "third" {
		t.Errorf("unexpected order: %s, %s, %s", tasks[0].Description, tasks[1].Description, tasks[2].Description)
	}
}
