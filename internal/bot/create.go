package bot

import (
	"context"
	"fmt"
	"math"

	"github.com/byronguina/sprintbot/internal/db"
	"github.com/byronguina/sprintbot/internal/format"
	"github.com/byronguina/sprintbot/internal/model"
	"github.com/byronguina/sprintbot/internal/session"
)

// Subdivide splits a task whose estimate exceeds limit into ceil(h/limit)
// equal parts named "desc (Parte i de n)". Smaller tasks come back alone.
func Subdivide(base model.Task, limit float64) []*model.Task {
	h := base.Estimated()
	if limit <= 0 || h <= limit {
		t := base
		return []*model.Task{&t}
	}

	n := int(math.Ceil(h / limit))
	share := h / float64(n)
	parts := make([]*model.Task, n)
	for i := range parts {
		p := base
		p.Description = fmt.Sprintf("%s (Parte %d de %d)", base.Description, i+1, n)
		p.EstimatedHours = model.Ptr(share)
		parts[i] = &p
	}
	return parts
}

func (b *Bot) startAdd(ctx context.Context, t *turn) {
	sprints, err := b.store.ListSprints(ctx)
	if err != nil {
		b.fail(ctx, t, err, msgLoadFailed)
		return
	}
	t.sess.Enter(session.StateSelectingSprintForTask)
	b.replace(ctx, t, format.NewTaskSprintPicker(sprints))
}

// startQuickAdd handles "/add <description>": the task gets no sprint and
// the flow jumps straight to the priority picker.
func (b *Bot) startQuickAdd(ctx context.Context, t *turn, description string) {
	if description == "" {
		b.startAdd(ctx, t)
		return
	}
	t.sess.Enter(session.StateAddingNewTask)
	t.sess.Data.Description = description
	b.send(ctx, t, format.PriorityPicker(description))
}

func (b *Bot) onSprintSelect(ctx context.Context, t *turn, sprintID int64) {
	if t.sess.State != session.StateSelectingSprintForTask {
		b.showMainMenu(ctx, t)
		return
	}

	name := "Sin Sprint"
	if sprintID != 0 {
		sprint, err := b.store.GetSprint(ctx, sprintID)
		if db.IsNotFound(err) {
			t.sess.Reset()
			b.replace(ctx, t, format.Failure(msgSprintMissing))
			return
		}
		if err != nil {
			b.fail(ctx, t, err, msgLoadFailed)
			return
		}
		name = sprint.Name
		t.sess.Data.SprintID = &sprint.ID
	} else {
		t.sess.Data.SprintID = nil
	}

	t.sess.State = session.StateAddingNewTask
	b.replace(ctx, t, format.SprintChosen(name))
}

func (b *Bot) onDescription(ctx context.Context, t *turn, text string) {
	if text == "" {
		b.send(ctx, t, format.EmptyDescription())
		return
	}
	t.sess.Data.Description = text
	b.send(ctx, t, format.PriorityPicker(text))
}

func (b *Bot) onPriority(ctx context.Context, t *turn, raw string) {
	if t.sess.State != session.StateAddingNewTask || t.sess.Data.Description == "" {
		b.showMainMenu(ctx, t)
		return
	}
	p, err := model.ParsePriority(raw)
	if err != nil {
		b.log.Warn().Ctx(ctx).Err(err).Msg("ignoring priority button")
		return
	}
	t.sess.Data.Priority = p
	t.sess.State = session.StateAddingEstimatedHours
	b.replace(ctx, t, format.PriorityChosen(p))
}

func (b *Bot) onCreationHours(ctx context.Context, t *turn, text string) {
	h, ok := b.parseHours(ctx, t, text)
	if !ok {
		return
	}
	t.sess.Data.EstimatedHours = h

	if !t.user.IsManager() {
		t.sess.Data.AssignedTo = &t.user.ID
		b.createTask(ctx, t)
		return
	}

	devs, err := b.store.ListUsersByRole(ctx, model.RoleDeveloper)
	if err != nil {
		b.fail(ctx, t, err, msgLoadFailed)
		return
	}
	t.sess.State = session.StateAssigningDeveloper
	b.send(ctx, t, format.DeveloperPicker(devs))
}

func (b *Bot) onAssignDev(ctx context.Context, t *turn, userID int64) {
	if t.sess.State != session.StateAssigningDeveloper {
		b.showMainMenu(ctx, t)
		return
	}
	if userID == 0 {
		t.sess.Data.AssignedTo = nil
	} else {
		dev, err := b.store.GetUser(ctx, userID)
		if db.IsNotFound(err) {
			t.sess.Reset()
			b.replace(ctx, t, format.Failure(msgUserMissing))
			return
		}
		if err != nil {
			b.fail(ctx, t, err, msgLoadFailed)
			return
		}
		t.sess.Data.AssignedTo = &dev.ID
	}
	b.out.Delete(ctx, t.chatID(), t.ev.MessageID)
	b.createTask(ctx, t)
}

// createTask stores the task collected in the session, subdividing it when
// the estimate is over the limit, and ends the flow.
func (b *Bot) createTask(ctx context.Context, t *turn) {
	d := t.sess.Data
	base := model.Task{
		Description:    d.Description,
		Status:         model.StatusPending,
		Priority:       d.Priority,
		AssignedTo:     d.AssignedTo,
		CreatedBy:      t.user.ID,
		CreatedAt:      b.now(),
		EstimatedHours: model.Ptr(d.EstimatedHours),
		SprintID:       d.SprintID,
	}
	parts := Subdivide(base, b.cfg.MaxSubtaskHours)

	if err := b.store.CreateTasks(ctx, parts); err != nil {
		b.fail(ctx, t, err, msgSaveFailed)
		return
	}
	t.sess.Reset()
	b.rec.AddTasksCreated(len(parts))
	b.log.Info().Ctx(ctx).Int("parts", len(parts)).Int64("task_id", parts[0].ID).Msg("task created")

	dir, err := b.directory(ctx)
	if err != nil {
		b.log.Warn().Ctx(ctx).Err(err).Msg("failed to load names for task summary")
	}
	if len(parts) == 1 {
		b.send(ctx, t, format.TaskCreated(*parts[0], dir))
		return
	}
	created := make([]model.Task, len(parts))
	for i, p := range parts {
		created[i] = *p
	}
	b.send(ctx, t, format.TaskSubdivided(created, b.cfg.MaxSubtaskHours, dir))
}
