package bot

import (
	"context"

	"github.com/byronguina/sprintbot/internal/callback"
	"github.com/byronguina/sprintbot/internal/format"
	"github.com/byronguina/sprintbot/internal/model"
	"github.com/byronguina/sprintbot/internal/session"
)

// managerOnly lists the actions developers may not trigger.
var managerOnly = map[callback.Action]bool{
	callback.AssignDev:         true,
	callback.ModifyTask:        true,
	callback.ChangeStatus:      true,
	callback.EditTaskName:      true,
	callback.SetEstimatedHours: true,
	callback.AssignTaskSprint:  true,
	callback.TaskSprint:        true,
	callback.DeleteTask:        true,
	callback.ViewDevelopers:    true,
	callback.HoursReport:       true,
	callback.TasksSummary:      true,
	callback.SummaryGeneral:    true,
	callback.SummaryBySprint:   true,
	callback.SprintSummary:     true,
	callback.ViewKPIs:          true,
	callback.KPICompletedTasks: true,
	callback.KPITeamSprint:     true,
	callback.KPIPersonalSprint: true,
	callback.KPITeamWeek:       true,
	callback.KPIPersonalWeek:   true,
	callback.KPISprint:         true,
	callback.KPIDeveloper:      true,
	callback.KPIPersonalFinal:  true,
	callback.KPIWeek:           true,
}

// flowSteps are the actions that continue the task creation flow. Every other
// button leaves whatever flow the chat was in.
var flowSteps = map[callback.Action]bool{
	callback.SprintSelect: true,
	callback.Priority:     true,
	callback.AssignDev:    true,
}

func (b *Bot) handleCallback(ctx context.Context, t *turn) {
	cb, err := callback.Parse(t.ev.Data)
	if err != nil {
		b.log.Warn().Ctx(ctx).Err(err).Str("data", t.ev.Data).Msg("ignoring malformed callback")
		b.showMainMenu(ctx, t)
		return
	}
	b.rec.IncCallback(string(cb.Action))

	if managerOnly[cb.Action] && !t.user.IsManager() {
		b.log.Warn().Ctx(ctx).Str("action", string(cb.Action)).Int64("user_id", t.user.ID).Msg("manager action denied")
		t.sess.Reset()
		b.send(ctx, t, format.ManagerOnly())
		return
	}
	if !flowSteps[cb.Action] {
		t.sess.Reset()
	}

	switch cb.Action {
	case callback.MainMenu, callback.Cancel:
		b.showMainMenu(ctx, t)

	case callback.AddTask:
		b.startAdd(ctx, t)
	case callback.SprintSelect:
		b.onSprintSelect(ctx, t, cb.ID(0))
	case callback.Priority:
		b.onPriority(ctx, t, cb.Arg)
	case callback.AssignDev:
		b.onAssignDev(ctx, t, cb.ID(0))

	case callback.ListTasks:
		if t.user.IsManager() {
			b.showSprintBrowser(ctx, t)
		} else {
			b.showMyTasks(ctx, t)
		}
	case callback.CompleteTask:
		b.showCompletable(ctx, t)
	case callback.TaskComplete:
		b.transition(ctx, t, cb.ID(0), model.StatusCompleted)
	case callback.TaskUpdateStatus:
		b.onUpdateStatus(ctx, t, cb.ID(0), cb.Arg)

	case callback.ModifyTask:
		b.showModifyTask(ctx, t, cb.ID(0))
	case callback.ChangeStatus:
		b.showStatusPicker(ctx, t, cb.ID(0))
	case callback.EditTaskName:
		b.startRename(ctx, t, cb.ID(0))
	case callback.SetEstimatedHours:
		b.startEstimate(ctx, t, cb.ID(0))
	case callback.AssignTaskSprint:
		b.showSprintAssignPicker(ctx, t, cb.ID(0))
	case callback.TaskSprint:
		b.assignSprint(ctx, t, cb.ID(0), cb.ID(1))
	case callback.DeleteTask:
		b.deleteTask(ctx, t, cb.ID(0))

	case callback.ViewSprints:
		b.showSprints(ctx, t)
	case callback.DevSprintStats:
		b.showDevSprintStats(ctx, t, cb.ID(0))
	case callback.ViewSprintTasks:
		b.showSprintTasks(ctx, t, cb.ID(0))
	case callback.ViewDevelopers:
		b.showTeam(ctx, t)

	case callback.HoursReport:
		b.showHoursReport(ctx, t)
	case callback.TasksSummary:
		b.replace(ctx, t, format.TasksSummaryMenu())
	case callback.SummaryGeneral:
		b.showSummaryGeneral(ctx, t)
	case callback.SummaryBySprint:
		b.showSprintSummaryPicker(ctx, t)
	case callback.SprintSummary:
		b.showSprintSummary(ctx, t, cb.ID(0))

	case callback.ViewKPIs:
		b.showKPIMenu(ctx, t)
	case callback.KPICompletedTasks, callback.KPITeamSprint, callback.KPIPersonalSprint,
		callback.KPITeamWeek, callback.KPIPersonalWeek:
		b.startKPI(ctx, t, cb.Action)
	case callback.KPISprint:
		b.onKPISprint(ctx, t, cb.Arg, 0, cb.ID(0))
	case callback.KPIDeveloper:
		b.onKPIDeveloper(ctx, t, cb.Arg, cb.ID(0))
	case callback.KPIPersonalFinal:
		b.onKPISprint(ctx, t, session.KPIPersonalSprint, cb.ID(0), cb.ID(1))
	case callback.KPIWeek:
		b.onKPIWeek(ctx, t, cb.ID(0), int(cb.ID(1)), int(cb.ID(2)))

	default:
		b.log.Warn().Ctx(ctx).Str("action", string(cb.Action)).Msg("unhandled callback action")
		b.showMainMenu(ctx, t)
	}
}
