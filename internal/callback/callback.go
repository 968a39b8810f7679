// Package callback encodes and parses inline button payloads of the form
// action:p1:p2. Numeric parameters are ids; at most one parameter is free text
// (a priority, a status or a KPI kind).
package callback

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

type Action string

const (
	MainMenu  Action = "main_menu"
	Cancel    Action = "cancel"
	ListTasks Action = "list_tasks"
	AddTask   Action = "add_task"

	SprintSelect Action = "sprint_select"
	Priority     Action = "priority"
	AssignDev    Action = "assign_dev"

	CompleteTask      Action = "complete_task"
	TaskComplete      Action = "task_complete"
	TaskUpdateStatus  Action = "task_update_status"
	ModifyTask        Action = "modify_task"
	ChangeStatus      Action = "change_status"
	EditTaskName      Action = "edit_task_name"
	SetEstimatedHours Action = "set_estimated_hours"
	AssignTaskSprint  Action = "assign_task_sprint"
	TaskSprint        Action = "task_sprint"
	DeleteTask        Action = "delete_task"

	ViewSprints     Action = "view_sprints"
	DevSprintStats  Action = "dev_sprint_stats"
	ViewSprintTasks Action = "view_sprint_tasks"
	ViewDevelopers  Action = "view_developers"

	HoursReport     Action = "hours_report"
	TasksSummary    Action = "tasks_summary"
	SummaryGeneral  Action = "summary_general"
	SummaryBySprint Action = "summary_by_sprint"
	SprintSummary   Action = "sprint_summary"

	ViewKPIs          Action = "view_kpis"
	KPICompletedTasks Action = "kpi_completed_tasks"
	KPITeamSprint     Action = "kpi_team_sprint"
	KPIPersonalSprint Action = "kpi_personal_sprint"
	KPITeamWeek       Action = "kpi_team_week"
	KPIPersonalWeek   Action = "kpi_personal_week"
	KPISprint         Action = "kpi_sprint"
	KPIDeveloper      Action = "kpi_developer"
	KPIPersonalFinal  Action = "kpi_personal_final"
	KPIWeek           Action = "kpi_week"
)

// shapes lists the parameters each action takes: 'i' for an id, 's' for text.
var shapes = map[Action]string{
	MainMenu:  "",
	Cancel:    "",
	ListTasks: "",
	AddTask:   "",

	SprintSelect: "i",
	Priority:     "s",
	AssignDev:    "i",

	CompleteTask:      "",
	TaskComplete:      "i",
	TaskUpdateStatus:  "is",
	ModifyTask:        "i",
	ChangeStatus:      "i",
	EditTaskName:      "i",
	SetEstimatedHours: "i",
	AssignTaskSprint:  "i",
	TaskSprint:        "ii",
	DeleteTask:        "i",

	ViewSprints:     "",
	DevSprintStats:  "i",
	ViewSprintTasks: "i",
	ViewDevelopers:  "",

	HoursReport:     "",
	TasksSummary:    "",
	SummaryGeneral:  "",
	SummaryBySprint: "",
	SprintSummary:   "i",

	ViewKPIs:          "",
	KPICompletedTasks: "",
	KPITeamSprint:     "",
	KPIPersonalSprint: "",
	KPITeamWeek:       "",
	KPIPersonalWeek:   "",
	KPISprint:         "si",
	KPIDeveloper:      "si",
	KPIPersonalFinal:  "ii",
	KPIWeek:           "iii",
}

var ErrMalformed = errors.New("malformed callback")

// Callback is a parsed button payload.
type Callback struct {
	Action Action
	IDs    []int64
	Arg    string
}

// ID returns the i-th numeric parameter.
func (c Callback) ID(i int) int64 {
	if i < 0 || i >= len(c.IDs) {
		return 0
	}
	return c.IDs[i]
}

// Parse splits data into an action and typed parameters. Unknown actions,
// missing or extra parameters and non-numeric ids are rejected.
func Parse(data string) (Callback, error) {
	parts := strings.Split(data, ":")
	action := Action(parts[0])
	shape, ok := shapes[action]
	if !ok {
		return Callback{}, fmt.Errorf("%w: unknown action %q", ErrMalformed, parts[0])
	}

	params := parts[1:]
	if shape == "" && len(params) == 0 {
		return Callback{Action: action}, nil
	}
	if len(params) != len(shape) {
		return Callback{}, fmt.Errorf("%w: %s wants %d params, got %d", ErrMalformed, action, len(shape), len(params))
	}

	cb := Callback{Action: action}
	for i, kind := range shape {
		p := params[i]
		switch kind {
		case 'i':
			id, err := strconv.ParseInt(p, 10, 64)
			if err != nil || id < 0 {
				return Callback{}, fmt.Errorf("%w: %s param %d: %q is not an id", ErrMalformed, action, i+1, p)
			}
			cb.IDs = append(cb.IDs, id)
		case 's':
			if p == "" {
				return Callback{}, fmt.Errorf("%w: %s param %d is empty", ErrMalformed, action, i+1)
			}
			cb.Arg = p
		}
	}
	return cb, nil
}

// Encode builds a payload. Parameters are formatted with %v.
func Encode(action Action, params ...any) string {
	if len(params) == 0 {
		return string(action)
	}
	var b strings.Builder
	b.WriteString(string(action))
	for _, p := range params {
		b.WriteByte(':')
		fmt.Fprint(&b, p)
	}
	return b.String()
}

func (c Callback) String() string {
	params := make([]any, 0, len(c.IDs)+1)
	shape := shapes[c.Action]
	ids := c.IDs
	for _, kind := range shape {
		if kind == 's' {
			params = append(params, c.Arg)
			continue
		}
		if len(ids) == 0 {
			break
		}
		params = append(params, ids[0])
		ids = ids[1:]
	}
	return Encode(c.Action, params...)
}
