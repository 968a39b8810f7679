package format

import (
	"fmt"

	"github.com/byronguina/sprintbot/internal/callback"
	"github.com/byronguina/sprintbot/internal/chat"
	"github.com/byronguina/sprintbot/internal/model"
	"github.com/byronguina/sprintbot/internal/report"
)

// NoPendingTasks is shown instead of the task list when nothing is open.
func NoPendingTasks() chat.Message {
	return chat.HTMLText("📝 <b>Mis Tareas Pendientes</b>\n\n¡Excelente! No tienes tareas pendientes. ¡Sigue así! 🎉",
		chat.InlineKeyboard{}.Row(backToMenuButton()))
}

// PendingHeader opens the developer task list with counts per status.
func PendingHeader(tasks []model.Task) chat.Message {
	s := report.Summarize(tasks)
	var l lines
	l.add("📝 <b>MIS TAREAS PENDIENTES</b>")
	l.blank()
	l.add("📊 Total: %d tareas", s.Total)
	l.add("⏳ Pendientes: %d | 🔄 En progreso: %d | 👁️ En revisión: %d", s.Pending, s.InProgress, s.InReview)
	return chat.HTMLText(l.String(), nil)
}

// TaskCard renders one open task with buttons for every other status.
func TaskCard(t model.Task, dir Directory) chat.Message {
	var l lines
	l.add("%s %s <b>%s</b>", StatusGlyph(t.Status), PriorityGlyph(t.Priority), Escape(t.Description))
	l.add("🔹 Estado: %s", t.Status)
	if t.Priority != "" {
		l.add("🔹 Prioridad: %s", t.Priority)
	}
	if t.EstimatedHours != nil {
		l.add("🔹 Tiempo estimado: %s horas", Hours(*t.EstimatedHours))
	}
	if t.SprintID != nil {
		l.add("🔹 Sprint: %s", Escape(dir.SprintName(t.SprintID)))
	}

	var row []chat.Button
	for _, s := range []model.Status{model.StatusPending, model.StatusInProgress, model.StatusInReview} {
		if s != t.Status {
			row = append(row, btn(StatusButtonLabel(s), callback.TaskUpdateStatus, t.ID, s))
		}
	}
	row = append(row, btn("✅ Completar", callback.TaskComplete, t.ID))
	return chat.HTMLText(l.String(), chat.InlineKeyboard{}.Row(row...))
}

// ListFooter closes a run of task cards.
func ListFooter() chat.Message {
	return chat.Message{Text: "━━━━━━━━━━━━━━━━━━━━", Inline: chat.InlineKeyboard{}.Row(homeButton())}
}

func NothingToComplete() chat.Message {
	return chat.HTMLText("✅ <b>COMPLETAR TAREAS</b>\n\n¡Perfecto! No tienes tareas pendientes para completar. 🎉",
		chat.InlineKeyboard{}.Row(backToMenuButton()))
}

// CompletableList offers one button per open task.
func CompletableList(tasks []model.Task) chat.Message {
	var l lines
	l.add("✅ <b>COMPLETAR TAREAS</b>")
	l.blank()
	l.add("Selecciona la tarea que has terminado:")
	l.add("📊 Tareas disponibles: %d", len(tasks))

	kb := chat.InlineKeyboard{}
	for _, t := range tasks {
		label := fmt.Sprintf("%s %s %s", StatusGlyph(t.Status), PriorityGlyph(t.Priority), Truncate(t.Description, ListWidth))
		kb = kb.Row(btn(label, callback.TaskComplete, t.ID))
	}
	kb = kb.Row(backToMenuButton())
	return chat.HTMLText(l.String(), kb)
}

// CompletionPrompt asks for the hours actually spent.
func CompletionPrompt(t model.Task) chat.Message {
	var l lines
	l.add("🎯 <b>COMPLETANDO TAREA</b>")
	l.blank()
	l.add("📝 %s", Escape(t.Description))
	l.add("⏱️ Tiempo estimado: %s horas", Hours(t.Estimated()))
	l.blank()
	l.add("💭 <b>¿Cuántas horas trabajaste realmente?</b>")
	l.add("Escribe el número de horas:")
	return chat.HTMLText(l.String(), chat.InlineKeyboard{}.Row(cancelButton()))
}

// TaskDone confirms a completion that needed no hours.
func TaskDone(t model.Task) chat.Message {
	return chat.HTMLText(fmt.Sprintf("🎉 <b>¡TAREA COMPLETADA!</b>\n\n✅ %s\n\n¡Excelente trabajo! 🚀", Escape(t.Description)), nil)
}

// CompletionSummary celebrates a completion with recorded hours.
func CompletionSummary(t model.Task) chat.Message {
	var l lines
	l.add("🎉 <b>¡TAREA COMPLETADA!</b>")
	l.blank()
	l.add("✅ %s", Escape(t.Description))
	l.blank()
	if t.EstimatedHours != nil {
		est, act := t.Estimated(), t.Actual()
		l.add("📊 <b>RESUMEN:</b>")
		l.add("⏱️ Tiempo estimado: %sh", Hours(est))
		l.add("⏱️ Tiempo real: %sh", Hours(act))

		diff := act - est
		switch {
		case diff > -0.01 && diff < 0.01:
			l.add("🎯 ¡Perfecto! Completada exactamente en el tiempo estimado.")
		case diff > 0:
			l.add("⚠️ Tomó %s horas extra.", fixed1(diff))
		default:
			l.add("🚀 ¡Excelente! Terminaste %s horas antes.", fixed1(-diff))
		}
		if eff, ok := report.Efficiency(est, act); ok {
			l.add("📈 Eficiencia: %s %s%%", EfficiencyGlyph(eff), fixed1(eff))
		}
		l.blank()
	}
	l.add("🏆 ¡Sigue así, gran trabajo!")

	kb := chat.InlineKeyboard{}.Row(homeButton(), btn("📋 Ver Mis Tareas", callback.ListTasks))
	return chat.HTMLText(l.String(), kb)
}

// StatusChanged confirms a status transition in place of the task card.
func StatusChanged(t model.Task) chat.Message {
	text := fmt.Sprintf("✅ <b>Estado actualizado</b>\n\n%s %s\n🔄 Nuevo estado: <b>%s</b>",
		StatusGlyph(t.Status), Escape(t.Description), t.Status)
	return chat.HTMLText(text, nil)
}
