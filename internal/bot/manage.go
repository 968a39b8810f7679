package bot

import (
	"context"

	"github.com/byronguina/sprintbot/internal/db"
	"github.com/byronguina/sprintbot/internal/format"
	"github.com/byronguina/sprintbot/internal/model"
	"github.com/byronguina/sprintbot/internal/session"
)

func (b *Bot) showSprintBrowser(ctx context.Context, t *turn) {
	sprints, err := b.store.ListSprints(ctx)
	if err != nil {
		b.fail(ctx, t, err, msgLoadFailed)
		return
	}
	b.replace(ctx, t, format.SprintBrowser(sprints))
}

// loadSprint fetches a sprint, answering the chat when it is missing.
func (b *Bot) loadSprint(ctx context.Context, t *turn, sprintID int64) (*model.Sprint, bool) {
	sprint, err := b.store.GetSprint(ctx, sprintID)
	if db.IsNotFound(err) {
		b.send(ctx, t, format.Failure(msgSprintMissing))
		return nil, false
	}
	if err != nil {
		b.fail(ctx, t, err, msgLoadFailed)
		return nil, false
	}
	return sprint, true
}

// showSprintTasks shows a manager every task of the sprint (id 0: tasks with
// no sprint) and a developer their own tasks in it.
func (b *Bot) showSprintTasks(ctx context.Context, t *turn, sprintID int64) {
	dir, err := b.directory(ctx)
	if err != nil {
		b.fail(ctx, t, err, msgLoadFailed)
		return
	}

	if !t.user.IsManager() {
		sprint, ok := b.loadSprint(ctx, t, sprintID)
		if !ok {
			return
		}
		tasks, err := b.store.ListTasks(ctx, model.TaskFilter{AssignedTo: &t.user.ID, SprintID: &sprint.ID})
		if err != nil {
			b.fail(ctx, t, err, msgLoadFailed)
			return
		}
		b.replace(ctx, t, format.MySprintTasks(*sprint, tasks, dir))
		return
	}

	filter := model.TaskFilter{NoSprint: true}
	var sprint *model.Sprint
	if sprintID != 0 {
		var ok bool
		if sprint, ok = b.loadSprint(ctx, t, sprintID); !ok {
			return
		}
		filter = model.TaskFilter{SprintID: &sprint.ID}
	}
	tasks, err := b.store.ListTasks(ctx, filter)
	if err != nil {
		b.fail(ctx, t, err, msgLoadFailed)
		return
	}
	b.replace(ctx, t, format.SprintTasks(sprint, tasks, dir))
}

func (b *Bot) showModifyTask(ctx context.Context, t *turn, taskID int64) {
	task, ok := b.loadTask(ctx, t, taskID)
	if !ok {
		return
	}
	dir, err := b.directory(ctx)
	if err != nil {
		b.fail(ctx, t, err, msgLoadFailed)
		return
	}
	b.replace(ctx, t, format.ModifyTask(*task, dir))
}

func (b *Bot) showStatusPicker(ctx context.Context, t *turn, taskID int64) {
	task, ok := b.loadTask(ctx, t, taskID)
	if !ok {
		return
	}
	b.replace(ctx, t, format.StatusPicker(task.ID))
}

func (b *Bot) startRename(ctx context.Context, t *turn, taskID int64) {
	task, ok := b.loadTask(ctx, t, taskID)
	if !ok {
		return
	}
	t.sess.Enter(session.StateChangingTaskName)
	t.sess.Data.TaskID = task.ID
	t.sess.Data.MessageID = b.editPressed(ctx, t, format.RenamePrompt())
}

func (b *Bot) onRename(ctx context.Context, t *turn, text string) {
	if text == "" {
		b.send(ctx, t, format.EmptyName())
		return
	}
	task, err := b.store.UpdateTask(ctx, t.sess.Data.TaskID, model.TaskUpdate{Description: &text})
	if db.IsNotFound(err) {
		t.sess.Reset()
		b.send(ctx, t, format.Failure(msgTaskMissing))
		return
	}
	if err != nil {
		b.fail(ctx, t, err, msgSaveFailed)
		return
	}
	b.log.Info().Ctx(ctx).Int64("task_id", task.ID).Msg("task renamed")

	b.out.EditOrSend(ctx, t.chatID(), t.sess.Data.MessageID, format.Renamed(task.Description))
	t.sess.Reset()
}

func (b *Bot) startEstimate(ctx context.Context, t *turn, taskID int64) {
	task, ok := b.loadTask(ctx, t, taskID)
	if !ok {
		return
	}
	t.sess.Enter(session.StateSettingEstimatedHours)
	t.sess.Data.TaskID = task.ID
	t.sess.Data.MessageID = b.editPressed(ctx, t, format.EstimatePrompt())
}

func (b *Bot) onEstimate(ctx context.Context, t *turn, text string) {
	h, ok := b.parseHours(ctx, t, text)
	if !ok {
		return
	}
	task, err := b.store.UpdateTask(ctx, t.sess.Data.TaskID, model.TaskUpdate{EstimatedHours: &h})
	if db.IsNotFound(err) {
		t.sess.Reset()
		b.send(ctx, t, format.Failure(msgTaskMissing))
		return
	}
	if err != nil {
		b.fail(ctx, t, err, msgSaveFailed)
		return
	}
	b.log.Info().Ctx(ctx).Int64("task_id", task.ID).Float64("estimated_hours", h).Msg("task estimate changed")

	b.out.EditOrSend(ctx, t.chatID(), t.sess.Data.MessageID, format.EstimateChanged(h))
	t.sess.Reset()
}

func (b *Bot) showSprintAssignPicker(ctx context.Context, t *turn, taskID int64) {
	task, ok := b.loadTask(ctx, t, taskID)
	if !ok {
		return
	}
	sprints, err := b.store.ListSprints(ctx)
	if err != nil {
		b.fail(ctx, t, err, msgLoadFailed)
		return
	}
	b.replace(ctx, t, format.SprintAssignPicker(task.ID, sprints))
}

// assignSprint links a task to a sprint and puts it in progress.
func (b *Bot) assignSprint(ctx context.Context, t *turn, taskID, sprintID int64) {
	task, ok := b.loadTask(ctx, t, taskID)
	if !ok {
		return
	}
	sprint, ok := b.loadSprint(ctx, t, sprintID)
	if !ok {
		return
	}

	inProgress := model.StatusInProgress
	if _, err := b.store.UpdateTask(ctx, task.ID, model.TaskUpdate{SprintID: &sprint.ID, Status: &inProgress}); err != nil {
		b.fail(ctx, t, err, msgSaveFailed)
		return
	}
	b.log.Info().Ctx(ctx).Int64("task_id", task.ID).Int64("sprint_id", sprint.ID).Msg("task assigned to sprint")

	b.editPressed(ctx, t, format.SprintAssigned(sprint.Name))
	b.mainMenuLater(ctx, t)
}

func (b *Bot) deleteTask(ctx context.Context, t *turn, taskID int64) {
	task, ok := b.loadTask(ctx, t, taskID)
	if !ok {
		return
	}
	if err := b.store.DeleteTask(ctx, task.ID); err != nil {
		b.fail(ctx, t, err, msgSaveFailed)
		return
	}
	b.log.Info().Ctx(ctx).Int64("task_id", task.ID).Msg("task deleted")

	confirmID := b.editPressed(ctx, t, format.TaskDeleted())
	user := t.user
	b.later(ctx, t, b.cfg.RefreshDelay, func(ctx context.Context) {
		b.out.Delete(ctx, t.chatID(), confirmID)
		b.out.Send(ctx, t.chatID(), format.MainMenu(user))
	})
}
