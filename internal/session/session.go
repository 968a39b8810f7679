// Package session stores per-chat conversation state.
package session

import (
	"context"
	"fmt"
	"time"

	"github.com/byronguina/sprintbot/internal/model"
)

// State is the step a chat is at in a multi-message dialogue.
type State string

const (
	StateNone                   State = "NONE"
	StateSelectingSprintForTask State = "SELECTING_SPRINT_FOR_TASK"
	StateAddingNewTask          State = "ADDING_NEW_TASK"
	StateAddingEstimatedHours   State = "ADDING_TASK_ESTIMATED_HOURS"
	StateAssigningDeveloper     State = "ASSIGNING_DEVELOPER"
	StateCompletingTaskHours    State = "COMPLETING_TASK_HOURS"
	StateChangingTaskName       State = "CHANGING_TASK_NAME"
	StateSettingEstimatedHours  State = "SETTING_ESTIMATED_HOURS"
	StateKPIMenu                State = "KPI_MENU"
	StateKPISelectingSprint     State = "KPI_SELECTING_SPRINT"
	StateKPISelectingDeveloper  State = "KPI_SELECTING_DEVELOPER"
	StateKPISelectingWeek       State = "KPI_SELECTING_WEEK"
)

func (s State) IsValid() bool {
	switch s {
	case StateNone, StateSelectingSprintForTask, StateAddingNewTask, StateAddingEstimatedHours,
		StateAssigningDeveloper, StateCompletingTaskHours, StateChangingTaskName,
		StateSettingEstimatedHours, StateKPIMenu, StateKPISelectingSprint, StateKPISelectingDeveloper,
		StateKPISelectingWeek:
		return true
	}
	return false
}

// InKPI reports whether the state belongs to the KPI drill-down.
func (s State) InKPI() bool {
	switch s {
	case StateKPIMenu, StateKPISelectingSprint, StateKPISelectingDeveloper, StateKPISelectingWeek:
		return true
	}
	return false
}

// AwaitsNumber reports whether the state expects a positive number as text input.
func (s State) AwaitsNumber() bool {
	switch s {
	case StateAddingEstimatedHours, StateCompletingTaskHours, StateSettingEstimatedHours:
		return true
	}
	return false
}

// KPI report kinds carried between KPI steps.
const (
	KPICompletedTasks = "completedTasks"
	KPITeamSprint     = "teamSprint"
	KPIPersonalSprint = "personalSprint"
	KPITeamWeek       = "teamWeek"
	KPIPersonalWeek   = "personalWeek"
)

// Data is the bag of values collected during a flow.
type Data struct {
	TaskID         int64          `json:"task_id,omitempty"`
	SprintID       *int64         `json:"sprint_id,omitempty"`
	Description    string         `json:"description,omitempty"`
	Priority       model.Priority `json:"priority,omitempty"`
	EstimatedHours float64        `json:"estimated_hours,omitempty"`
	AssignedTo     *int64         `json:"assigned_to,omitempty"`
	MessageID      int            `json:"message_id,omitempty"`
	NewStatus      model.Status   `json:"new_status,omitempty"`
	KPIKind        string         `json:"kpi_kind,omitempty"`
	DeveloperID    int64          `json:"developer_id,omitempty"`
}

type Session struct {
	State     State     `json:"state"`
	Data      Data      `json:"data"`
	UpdatedAt time.Time `json:"updated_at"`
}

// New returns an idle session.
func New() Session {
	return Session{State: StateNone}
}

// Reset returns the session to NONE with an empty bag.
func (s *Session) Reset() {
	s.State = StateNone
	s.Data = Data{}
}

// Enter starts a flow: the bag is cleared and the state set.
func (s *Session) Enter(state State) {
	s.Data = Data{}
	s.State = state
}

// Idle reports whether no flow is in progress.
func (s Session) Idle() bool {
	return s.State == StateNone
}

// Store keeps one session per chat. Get never fails for an unknown chat: it
// returns a fresh idle session.
type Store interface {
	Get(ctx context.Context, chatID int64) (Session, error)
	Put(ctx context.Context, chatID int64, s Session) error
	Clear(ctx context.Context, chatID int64) error
}

func sessionKey(chatID int64) string {
	return fmt.Sprintf("session:%d", chatID)
}

func authKey(chatID int64) string {
	return fmt.Sprintf("auth:%d", chatID)
}
