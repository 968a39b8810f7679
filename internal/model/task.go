package model

import (
	"fmt"
	"time"
)

type Status string

const (
	StatusPending    Status = "Pending"
	StatusInProgress Status = "In Progress"
	StatusInReview   Status = "In Review"
	StatusCompleted  Status = "Completed"
)

// Statuses lists task statuses in workflow order.
var Statuses = []Status{StatusPending, StatusInProgress, StatusInReview, StatusCompleted}

func (s Status) IsValid() bool {
	switch s {
	case StatusPending, StatusInProgress, StatusInReview, StatusCompleted:
		return true
	}
	return false
}

// ParseStatus validates a raw status string.
func ParseStatus(s string) (Status, error) {
	status := Status(s)
	if !status.IsValid() {
		return "", fmt.Errorf("invalid status: %q", s)
	}
	return status, nil
}

type Priority string

const (
	PriorityLow      Priority = "Low"
	PriorityMedium   Priority = "Medium"
	PriorityHigh     Priority = "High"
	PriorityCritical Priority = "Critical"
)

var Priorities = []Priority{PriorityLow, PriorityMedium, PriorityHigh, PriorityCritical}

func (p Priority) IsValid() bool {
	switch p {
	case PriorityLow, PriorityMedium, PriorityHigh, PriorityCritical:
		return true
	}
	return false
}

func ParsePriority(s string) (Priority, error) {
	p := Priority(s)
	if !p.IsValid() {
		return "", fmt.Errorf("invalid priority: %q", s)
	}
	return p, nil
}

// Task is a unit of work. Whether it is done is derived from Status.
type Task struct {
	ID             int64
	Description    string
	Steps          string
	Status         Status
	Priority       Priority // empty when unset
	AssignedTo     *int64
	CreatedBy      int64
	Archived       bool
	CreatedAt      time.Time
	EstimatedHours *float64
	ActualHours    *float64
	SprintID       *int64
}

// Done reports whether the task is completed.
func (t Task) Done() bool {
	return t.Status == StatusCompleted
}

// IsAssignedTo reports whether the task belongs to the given user.
func (t Task) IsAssignedTo(userID int64) bool {
	return t.AssignedTo != nil && *t.AssignedTo == userID
}

// InSprint reports whether the task is linked to the given sprint.
func (t Task) InSprint(sprintID int64) bool {
	return t.SprintID != nil && *t.SprintID == sprintID
}

// Estimated returns the estimate or 0.
func (t Task) Estimated() float64 {
	if t.EstimatedHours == nil {
		return 0
	}
	return *t.EstimatedHours
}

// Actual returns the recorded hours or 0.
func (t Task) Actual() float64 {
	if t.ActualHours == nil {
		return 0
	}
	return *t.ActualHours
}

// TaskUpdate is a partial update. Nil fields are left untouched.
type TaskUpdate struct {
	Description    *string
	Steps          *string
	Status         *Status
	Priority       *Priority
	AssignedTo     *int64
	Unassign       bool
	Archived       *bool
	EstimatedHours *float64
	ActualHours    *float64
	SprintID       *int64
	ClearSprint    bool
}

// TaskFilter narrows task listings. The zero value lists every active task.
type TaskFilter struct {
	AssignedTo      *int64
	Status          *Status
	ExcludeStatus   *Status
	Priority        *Priority
	SprintID        *int64
	NoSprint        bool
	IncludeArchived bool
}

// Ptr returns a pointer to v.
func Ptr[T any](v T) *T {
	return &v
}
