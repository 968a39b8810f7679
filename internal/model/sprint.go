package model

import (
	"fmt"
	"time"
)

type SprintStatus string

const (
	SprintPlanned   SprintStatus = "PLANNED"
	SprintActive    SprintStatus = "ACTIVE"
	SprintCompleted SprintStatus = "COMPLETED"
	SprintCancelled SprintStatus = "CANCELLED"
)

func (s SprintStatus) IsValid() bool {
	switch s {
	case SprintPlanned, SprintActive, SprintCompleted, SprintCancelled:
		return true
	}
	return false
}

func ParseSprintStatus(s string) (SprintStatus, error) {
	status := SprintStatus(s)
	if !status.IsValid() {
		return "", fmt.Errorf("invalid sprint status: %q", s)
	}
	return status, nil
}

// DateLayout is the calendar format used for sprint boundaries.
const DateLayout = "2006-01-02"

type Sprint struct {
	ID        int64
	Name      string
	StartDate time.Time
	EndDate   time.Time
	Status    SprintStatus
	CreatedBy *int64
	CreatedAt time.Time
}

// Covers reports whether day falls within the sprint, inclusive on both ends.
func (s Sprint) Covers(day time.Time) bool {
	d := truncateDay(day)
	return !d.Before(truncateDay(s.StartDate)) && !d.After(truncateDay(s.EndDate))
}

// SprintUpdate is a partial sprint update.
type SprintUpdate struct {
	Name      *string
	StartDate *time.Time
	EndDate   *time.Time
	Status    *SprintStatus
}

func truncateDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
