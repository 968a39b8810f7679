package bot

import (
	"context"
	"math"
	"strconv"
	"strings"

	"github.com/byronguina/sprintbot/internal/format"
	"github.com/byronguina/sprintbot/internal/session"
)

const (
	msgLoadFailed    = "No se pudo cargar la información. Intenta nuevamente."
	msgSaveFailed    = "No se pudo guardar el cambio. Intenta nuevamente."
	msgTaskMissing   = "Tarea no encontrada."
	msgSprintMissing = "Sprint no encontrado."
	msgUserMissing   = "Desarrollador no encontrado."
)

func (b *Bot) handleText(ctx context.Context, t *turn) {
	text := strings.TrimSpace(t.ev.Text)

	if text == format.CancelText {
		b.log.Debug().Ctx(ctx).Str("state", string(t.sess.State)).Msg("flow cancelled")
		b.showMainMenu(ctx, t)
		return
	}

	switch t.sess.State {
	case session.StateAddingNewTask:
		b.onDescription(ctx, t, text)
		return
	case session.StateAddingEstimatedHours:
		b.onCreationHours(ctx, t, text)
		return
	case session.StateCompletingTaskHours:
		b.onCompletionHours(ctx, t, text)
		return
	case session.StateChangingTaskName:
		b.onRename(ctx, t, text)
		return
	case session.StateSettingEstimatedHours:
		b.onEstimate(ctx, t, text)
		return
	case session.StateKPIMenu, session.StateKPISelectingSprint,
		session.StateKPISelectingDeveloper, session.StateKPISelectingWeek:
		b.onKPIText(ctx, t, text)
		return
	}

	switch {
	case isCommand(text, "/start"), isCommand(text, "/menu"):
		b.showMainMenu(ctx, t)
	case isCommand(text, "/hide"):
		t.sess.Reset()
		b.send(ctx, t, format.Bye())
	case isCommand(text, "/add"):
		b.startQuickAdd(ctx, t, commandArg(text))
	default:
		b.send(ctx, t, format.UseButtons())
	}
}

// parseHours reads a positive hour amount. On failure it re-prompts once and
// returns ok=false, leaving the session untouched.
func (b *Bot) parseHours(ctx context.Context, t *turn, text string) (float64, bool) {
	h, err := strconv.ParseFloat(strings.TrimSpace(text), 64)
	if err != nil || math.IsNaN(h) || math.IsInf(h, 0) {
		b.send(ctx, t, format.NotANumber())
		return 0, false
	}
	if h <= 0 {
		b.send(ctx, t, format.NotPositive())
		return 0, false
	}
	return h, true
}
