package bot

import (
	"context"

	"github.com/byronguina/sprintbot/internal/db"
	"github.com/byronguina/sprintbot/internal/format"
	"github.com/byronguina/sprintbot/internal/model"
	"github.com/byronguina/sprintbot/internal/session"
)

// loadTask fetches a task, answering the chat when it is missing or belongs to
// someone else. ok is false when the caller should stop.
func (b *Bot) loadTask(ctx context.Context, t *turn, taskID int64) (*model.Task, bool) {
	task, err := b.store.GetTask(ctx, taskID)
	if db.IsNotFound(err) {
		b.send(ctx, t, format.Failure(msgTaskMissing))
		return nil, false
	}
	if err != nil {
		b.fail(ctx, t, err, msgLoadFailed)
		return nil, false
	}
	if !t.user.IsManager() && !task.IsAssignedTo(t.user.ID) {
		b.send(ctx, t, format.NotAssignedToYou())
		return nil, false
	}
	return task, true
}

func (b *Bot) onUpdateStatus(ctx context.Context, t *turn, taskID int64, raw string) {
	status, err := model.ParseStatus(raw)
	if err != nil {
		b.log.Warn().Ctx(ctx).Err(err).Msg("ignoring status button")
		b.showMainMenu(ctx, t)
		return
	}
	b.transition(ctx, t, taskID, status)
}

// transition is the single path every status change goes through. Completing
// an estimated task without recorded hours first asks for the hours; any
// other change is applied at once and the card is redrawn a moment later.
func (b *Bot) transition(ctx context.Context, t *turn, taskID int64, target model.Status) {
	task, ok := b.loadTask(ctx, t, taskID)
	if !ok {
		return
	}

	if target == model.StatusCompleted && task.EstimatedHours != nil && task.ActualHours == nil {
		t.sess.Enter(session.StateCompletingTaskHours)
		t.sess.Data.TaskID = task.ID
		t.sess.Data.NewStatus = target
		t.sess.Data.MessageID = b.editPressed(ctx, t, format.CompletionPrompt(*task))
		return
	}

	updated, err := b.store.UpdateTask(ctx, task.ID, model.TaskUpdate{Status: &target})
	if err != nil {
		b.fail(ctx, t, err, msgSaveFailed)
		return
	}
	b.log.Info().Ctx(ctx).Int64("task_id", task.ID).Str("from", string(task.Status)).Str("to", string(target)).Msg("task status changed")

	confirmation := format.StatusChanged(*updated)
	if target == model.StatusCompleted && updated.EstimatedHours == nil {
		confirmation = format.TaskDone(*updated)
	}
	cardID := b.editPressed(ctx, t, confirmation)

	user := t.user
	b.later(ctx, t, b.cfg.CompletionRefreshDelay, func(ctx context.Context) {
		b.out.Delete(ctx, t.chatID(), cardID)
		if user.IsManager() {
			b.out.Send(ctx, t.chatID(), format.MainMenu(user))
			return
		}
		b.sendMyTasks(ctx, t.chatID(), user)
	})
}

func (b *Bot) onCompletionHours(ctx context.Context, t *turn, text string) {
	h, ok := b.parseHours(ctx, t, text)
	if !ok {
		return
	}

	status := t.sess.Data.NewStatus
	if status == "" {
		status = model.StatusCompleted
	}
	task, err := b.store.UpdateTask(ctx, t.sess.Data.TaskID, model.TaskUpdate{ActualHours: &h, Status: &status})
	if db.IsNotFound(err) {
		t.sess.Reset()
		b.send(ctx, t, format.Failure(msgTaskMissing))
		return
	}
	if err != nil {
		b.fail(ctx, t, err, msgSaveFailed)
		return
	}
	b.log.Info().Ctx(ctx).Int64("task_id", task.ID).Float64("actual_hours", h).Msg("task completed")

	b.send(ctx, t, format.CompletionSummary(*task))
	b.out.Delete(ctx, t.chatID(), t.sess.Data.MessageID)
	t.sess.Reset()
}

func (b *Bot) openTasks(ctx context.Context, userID int64) ([]model.Task, error) {
	completed := model.StatusCompleted
	return b.store.ListTasks(ctx, model.TaskFilter{AssignedTo: &userID, ExcludeStatus: &completed})
}

// sendMyTasks sends the developer's open tasks as one card per task.
func (b *Bot) sendMyTasks(ctx context.Context, chatID int64, user model.User) {
	tasks, err := b.openTasks(ctx, user.ID)
	if err != nil {
		b.log.Error().Ctx(ctx).Err(err).Msg("failed to list open tasks")
		b.out.Send(ctx, chatID, format.Failure(msgLoadFailed))
		return
	}
	if len(tasks) == 0 {
		b.out.Send(ctx, chatID, format.NoPendingTasks())
		return
	}

	dir, err := b.directory(ctx)
	if err != nil {
		b.log.Warn().Ctx(ctx).Err(err).Msg("failed to load names for task list")
	}
	b.out.Send(ctx, chatID, format.PendingHeader(tasks))
	for _, task := range tasks {
		b.out.Send(ctx, chatID, format.TaskCard(task, dir))
	}
	b.out.Send(ctx, chatID, format.ListFooter())
}

func (b *Bot) showMyTasks(ctx context.Context, t *turn) {
	b.out.Delete(ctx, t.chatID(), t.ev.MessageID)
	b.sendMyTasks(ctx, t.chatID(), t.user)
}

func (b *Bot) showCompletable(ctx context.Context, t *turn) {
	tasks, err := b.openTasks(ctx, t.user.ID)
	if err != nil {
		b.fail(ctx, t, err, msgLoadFailed)
		return
	}
	if len(tasks) == 0 {
		b.replace(ctx, t, format.NothingToComplete())
		return
	}
	b.replace(ctx, t, format.CompletableList(tasks))
}
