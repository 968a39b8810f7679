package bot

import (
	"context"

	"github.com/byronguina/sprintbot/internal/format"
	"github.com/byronguina/sprintbot/internal/model"
	"github.com/byronguina/sprintbot/internal/report"
)

// overview loads what the report views are computed from.
type overview struct {
	sprints []model.Sprint
	tasks   []model.Task
	devs    []model.User
}

func (b *Bot) loadOverview(ctx context.Context, withDevs bool) (overview, error) {
	var o overview
	var err error
	if o.sprints, err = b.store.ListSprints(ctx); err != nil {
		return o, err
	}
	if o.tasks, err = b.allTasks(ctx); err != nil {
		return o, err
	}
	if withDevs {
		if o.devs, err = b.store.ListUsersByRole(ctx, model.RoleDeveloper); err != nil {
			return o, err
		}
	}
	return o, nil
}

func (b *Bot) showSprints(ctx context.Context, t *turn) {
	o, err := b.loadOverview(ctx, false)
	if err != nil {
		b.fail(ctx, t, err, msgLoadFailed)
		return
	}
	if t.user.IsManager() {
		b.replace(ctx, t, format.SprintList(o.sprints, o.tasks))
		return
	}
	b.replace(ctx, t, format.DeveloperSprints(t.user.ID, o.sprints, o.tasks))
}

func (b *Bot) showDevSprintStats(ctx context.Context, t *turn, sprintID int64) {
	sprint, ok := b.loadSprint(ctx, t, sprintID)
	if !ok {
		return
	}
	tasks, err := b.allTasks(ctx)
	if err != nil {
		b.fail(ctx, t, err, msgLoadFailed)
		return
	}
	dir, err := b.directory(ctx)
	if err != nil {
		b.fail(ctx, t, err, msgLoadFailed)
		return
	}
	r := report.DeveloperSprint(t.user.ID, *sprint, tasks)
	b.replace(ctx, t, format.DeveloperSprintStats(r, dir))
}

func (b *Bot) showTeam(ctx context.Context, t *turn) {
	o, err := b.loadOverview(ctx, true)
	if err != nil {
		b.fail(ctx, t, err, msgLoadFailed)
		return
	}
	b.replace(ctx, t, format.Team(o.devs, o.tasks))
}

func (b *Bot) showHoursReport(ctx context.Context, t *turn) {
	o, err := b.loadOverview(ctx, false)
	if err != nil {
		b.fail(ctx, t, err, msgLoadFailed)
		return
	}
	b.replace(ctx, t, format.HoursReport(o.sprints, o.tasks))
}

func (b *Bot) showSummaryGeneral(ctx context.Context, t *turn) {
	o, err := b.loadOverview(ctx, true)
	if err != nil {
		b.fail(ctx, t, err, msgLoadFailed)
		return
	}
	b.replace(ctx, t, format.SummaryGeneral(o.tasks, o.devs))
}

func (b *Bot) showSprintSummaryPicker(ctx context.Context, t *turn) {
	sprints, err := b.store.ListSprints(ctx)
	if err != nil {
		b.fail(ctx, t, err, msgLoadFailed)
		return
	}
	b.replace(ctx, t, format.SprintSummaryPicker(sprints))
}

func (b *Bot) showSprintSummary(ctx context.Context, t *turn, sprintID int64) {
	sprint, ok := b.loadSprint(ctx, t, sprintID)
	if !ok {
		return
	}
	tasks, err := b.allTasks(ctx)
	if err != nil {
		b.fail(ctx, t, err, msgLoadFailed)
		return
	}
	b.replace(ctx, t, format.SprintSummary(report.TeamSprint(*sprint, tasks)))
}
