package bot

import (
	"context"
	"strconv"
	"strings"

	"github.com/byronguina/sprintbot/internal/callback"
	"github.com/byronguina/sprintbot/internal/chat"
	"github.com/byronguina/sprintbot/internal/db"
	"github.com/byronguina/sprintbot/internal/format"
	"github.com/byronguina/sprintbot/internal/model"
	"github.com/byronguina/sprintbot/internal/report"
	"github.com/byronguina/sprintbot/internal/session"
)

var kpiKinds = map[callback.Action]string{
	callback.KPICompletedTasks: session.KPICompletedTasks,
	callback.KPITeamSprint:     session.KPITeamSprint,
	callback.KPIPersonalSprint: session.KPIPersonalSprint,
	callback.KPITeamWeek:       session.KPITeamWeek,
	callback.KPIPersonalWeek:   session.KPIPersonalWeek,
}

func (b *Bot) showKPIMenu(ctx context.Context, t *turn) {
	t.sess.Enter(session.StateKPIMenu)
	b.replace(ctx, t, format.KPIMenu())
}

// startKPI opens the first selection step of a KPI report.
func (b *Bot) startKPI(ctx context.Context, t *turn, action callback.Action) {
	kind := kpiKinds[action]
	switch kind {
	case session.KPICompletedTasks, session.KPITeamSprint:
		sprints, err := b.store.ListSprints(ctx)
		if err != nil {
			b.fail(ctx, t, err, msgLoadFailed)
			return
		}
		t.sess.Enter(session.StateKPISelectingSprint)
		t.sess.Data.KPIKind = kind
		b.replace(ctx, t, format.KPISprintPicker(kind, sprints))

	case session.KPIPersonalSprint, session.KPIPersonalWeek:
		devs, err := b.store.ListUsersByRole(ctx, model.RoleDeveloper)
		if err != nil {
			b.fail(ctx, t, err, msgLoadFailed)
			return
		}
		t.sess.Enter(session.StateKPISelectingDeveloper)
		t.sess.Data.KPIKind = kind
		b.replace(ctx, t, format.KPIDeveloperPicker(kind, devs))

	case session.KPITeamWeek:
		t.sess.Enter(session.StateKPISelectingWeek)
		t.sess.Data.KPIKind = kind
		b.replace(ctx, t, format.KPIWeekPicker(0, report.CurrentWeek(b.now())))
	}
}

func (b *Bot) loadDeveloper(ctx context.Context, t *turn, userID int64) (*model.User, bool) {
	dev, err := b.store.GetUser(ctx, userID)
	if db.IsNotFound(err) {
		b.send(ctx, t, format.DeveloperNotFound())
		return nil, false
	}
	if err != nil {
		b.fail(ctx, t, err, msgLoadFailed)
		return nil, false
	}
	return dev, true
}

// onKPIDeveloper moves a personal report on to its second selection.
func (b *Bot) onKPIDeveloper(ctx context.Context, t *turn, kind string, userID int64) {
	dev, ok := b.loadDeveloper(ctx, t, userID)
	if !ok {
		return
	}

	switch kind {
	case session.KPIPersonalSprint:
		sprints, err := b.store.ListSprints(ctx)
		if err != nil {
			b.fail(ctx, t, err, msgLoadFailed)
			return
		}
		t.sess.Enter(session.StateKPISelectingSprint)
		t.sess.Data.KPIKind = kind
		t.sess.Data.DeveloperID = dev.ID
		b.replace(ctx, t, format.KPIPersonalSprintPicker(*dev, sprints))
	case session.KPIPersonalWeek:
		t.sess.Enter(session.StateKPISelectingWeek)
		t.sess.Data.KPIKind = kind
		t.sess.Data.DeveloperID = dev.ID
		b.replace(ctx, t, format.KPIWeekPicker(dev.ID, report.CurrentWeek(b.now())))
	default:
		b.log.Warn().Ctx(ctx).Str("kind", kind).Msg("unknown kpi kind")
		b.showMainMenu(ctx, t)
	}
}

// onKPISprint renders one of the sprint-level reports. devID is only used by
// the personal report.
func (b *Bot) onKPISprint(ctx context.Context, t *turn, kind string, devID, sprintID int64) {
	sprint, err := b.store.GetSprint(ctx, sprintID)
	if db.IsNotFound(err) {
		b.send(ctx, t, format.SprintNotFound())
		return
	}
	if err != nil {
		b.fail(ctx, t, err, msgLoadFailed)
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

	switch kind {
	case session.KPICompletedTasks:
		b.sendReport(ctx, t, format.KPICompletedTasks(report.CompletedInSprint(*sprint, tasks), dir))
	case session.KPITeamSprint:
		b.sendReport(ctx, t, format.KPITeamSprint(report.TeamSprint(*sprint, tasks)))
	case session.KPIPersonalSprint:
		dev, ok := b.loadDeveloper(ctx, t, devID)
		if !ok {
			return
		}
		b.sendReport(ctx, t, format.KPIPersonalSprint(report.PersonalSprint(*dev, *sprint, tasks), dir))
	default:
		b.log.Warn().Ctx(ctx).Str("kind", kind).Msg("unknown kpi kind")
		b.showMainMenu(ctx, t)
	}
}

// onKPIWeek renders the weekly report of the team (userID 0) or one developer.
func (b *Bot) onKPIWeek(ctx context.Context, t *turn, userID int64, year, week int) {
	w := report.Week{Year: year, Week: week}
	if !w.Valid() {
		b.send(ctx, t, format.KPIInvalidWeek())
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

	if userID == 0 {
		b.sendReport(ctx, t, format.KPITeamWeek(report.TeamWeek(w, tasks), dir))
		return
	}
	dev, ok := b.loadDeveloper(ctx, t, userID)
	if !ok {
		return
	}
	b.sendReport(ctx, t, format.KPIPersonalWeek(report.PersonalWeek(*dev, w, tasks), dir))
}

// sendReport ends the KPI flow with a report followed by the main menu.
func (b *Bot) sendReport(ctx context.Context, t *turn, msg chat.Message) {
	t.sess.Reset()
	b.replace(ctx, t, msg)
	b.mainMenuLater(ctx, t)
}

// onKPIText handles typed input during the KPI drill-down: "menu" leaves,
// ids and weeks may be typed instead of pressed.
func (b *Bot) onKPIText(ctx context.Context, t *turn, text string) {
	if strings.EqualFold(text, "menu") {
		b.showMainMenu(ctx, t)
		return
	}

	d := t.sess.Data
	switch t.sess.State {
	case session.StateKPISelectingSprint:
		id, err := strconv.ParseInt(text, 10, 64)
		if err != nil || id <= 0 {
			b.send(ctx, t, format.KPIInvalidID("sprint"))
			return
		}
		b.onKPISprint(ctx, t, d.KPIKind, d.DeveloperID, id)
	case session.StateKPISelectingDeveloper:
		id, err := strconv.ParseInt(text, 10, 64)
		if err != nil || id <= 0 {
			b.send(ctx, t, format.KPIInvalidID("desarrollador"))
			return
		}
		b.onKPIDeveloper(ctx, t, d.KPIKind, id)
	case session.StateKPISelectingWeek:
		w, err := report.ParseWeek(text)
		if err != nil {
			b.send(ctx, t, format.KPIInvalidWeek())
			return
		}
		b.onKPIWeek(ctx, t, d.DeveloperID, w.Year, w.Week)
	default:
		b.send(ctx, t, format.KPIUseButtons())
	}
}
