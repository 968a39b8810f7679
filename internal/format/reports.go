package format

import (
	"fmt"

	"github.com/byronguina/sprintbot/internal/callback"
	"github.com/byronguina/sprintbot/internal/chat"
	"github.com/byronguina/sprintbot/internal/model"
	"github.com/byronguina/sprintbot/internal/report"
)

const sprintDateLayout = "02/01/2006"

func period(s model.Sprint) string {
	return s.StartDate.Format(sprintDateLayout) + " - " + s.EndDate.Format(sprintDateLayout)
}

func backKeyboard(text string, action callback.Action, params ...any) chat.InlineKeyboard {
	return chat.InlineKeyboard{}.Row(btn(text, action, params...))
}

// efficiencyLine renders "label: glyph pct%" or nothing when efficiency is undefined.
func efficiencyLine(l *lines, label string, s report.Stats) {
	if eff, ok := s.Efficiency(); ok {
		l.add("%s: %s %s%%", label, EfficiencyGlyph(eff), fixed1(eff))
	}
}

// SprintList is the manager overview of every sprint.
func SprintList(sprints []model.Sprint, tasks []model.Task) chat.Message {
	var l lines
	l.add("📋 <b>SPRINTS DISPONIBLES</b>")
	l.blank()
	if len(sprints) == 0 {
		l.add("No hay sprints disponibles en el sistema.")
	}
	for _, s := range sprints {
		st := report.Summarize(report.Filter(tasks, report.InSprint(s.ID)))
		l.add("🔸 <b>%s</b>", Escape(s.Name))
		l.add("   📅 %s", period(s))
		l.add("   📊 Tareas: %d (⏳%d 🔄%d ✅%d)", st.Total, st.Pending, st.InProgress, st.Completed)
		l.blank()
	}
	return chat.HTMLText(l.String(), chat.InlineKeyboard{}.Row(backToMenuButton()))
}

// DeveloperSprints lists the sprints holding at least one of the developer's tasks.
func DeveloperSprints(userID int64, sprints []model.Sprint, tasks []model.Task) chat.Message {
	mine := report.Filter(tasks, report.AssignedTo(userID))
	kb := chat.InlineKeyboard{}
	for _, s := range sprints {
		st := report.Summarize(report.Filter(mine, report.InSprint(s.ID)))
		if st.Total == 0 {
			continue
		}
		label := fmt.Sprintf("📋 %s (%d/%d ✅)", s.Name, st.Completed, st.Total)
		kb = kb.Row(btn(label, callback.DevSprintStats, s.ID))
	}
	kb = kb.Row(backToMenuButton())

	text := "📊 <b>MIS SPRINTS</b>\n\nSelecciona un sprint para ver tus estadísticas y progreso:"
	if len(kb) == 1 {
		text = "📊 <b>MIS SPRINTS</b>\n\nActualmente no tienes tareas asignadas en ningún sprint."
	}
	return chat.HTMLText(text, kb)
}

// DeveloperSprintStats compares the developer's numbers with the team's.
func DeveloperSprintStats(r report.DeveloperSprintReport, dir Directory) chat.Message {
	var l lines
	l.add("📊 <b>ESTADÍSTICAS - %s</b>", Escape(r.Sprint.Name))
	l.add("📅 %s", period(r.Sprint))
	l.blank()

	l.add("👤 <b>MIS ESTADÍSTICAS</b>")
	l.add("📋 Total de tareas: %d", r.Mine.Total)
	l.add("✅ Completadas: %d", r.Mine.Completed)
	l.add("🔄 En progreso: %d", r.Mine.InProgress)
	l.add("⏳ Pendientes: %d", r.Mine.Pending)
	l.add("📈 Mi progreso: %s%%", fixed1(r.Mine.CompletionRate()))
	l.add("⏱️ Horas estimadas: %sh", fixed1(r.Mine.EstimatedHours))
	l.add("⏱️ Horas trabajadas: %sh", fixed1(r.Mine.ActualHours))
	efficiencyLine(&l, "📊 Mi eficiencia", r.Mine)
	l.blank()

	l.add("👥 <b>RESUMEN DEL EQUIPO</b>")
	l.add("📋 Total de tareas: %d", r.Team.Total)
	l.add("✅ Completadas: %d", r.Team.Completed)
	l.add("📈 Progreso del equipo: %s%%", fixed1(r.Team.CompletionRate()))
	l.add("👨‍💻 Desarrolladores activos: %d", r.ActiveDevelopers)

	if len(r.Top) > 0 {
		l.blank()
		l.add("🏆 <b>TOP PERFORMERS</b>")
		for _, d := range r.Top {
			name := Escape(Truncate(dir.UserName(&d.UserID), ButtonWidth))
			if d.UserID == r.UserID {
				l.add("• %s: %d tareas 🔥", name, d.Stats.Completed)
			} else {
				l.add("• %s: %d tareas", name, d.Stats.Completed)
			}
		}
	}

	kb := chat.InlineKeyboard{}.
		Row(btn("📋 Ver Mis Tareas del Sprint", callback.ViewSprintTasks, r.Sprint.ID)).
		Row(btn("🔙 Mis Sprints", callback.ViewSprints))
	return chat.HTMLText(l.String(), kb)
}

// Team lists every developer with their workload and efficiency.
func Team(devs []model.User, tasks []model.Task) chat.Message {
	var l lines
	l.add("👨‍💻 <b>EQUIPO DE DESARROLLO</b>")
	l.blank()
	if len(devs) == 0 {
		l.add("No hay desarrolladores registrados.")
	}
	for _, d := range devs {
		st := report.Summarize(report.Filter(tasks, report.AssignedTo(d.ID)))
		l.add("🔸 <b>%s</b>", Escape(d.Name))
		l.add("   📧 %s", Escape(d.Username))
		l.add("   📊 Tareas: %d (⏳%d 🔄%d ✅%d)", st.Total, st.Pending, st.InProgress, st.Completed)
		l.add("   ⏱️ Horas trabajadas: %sh", fixed1(st.ActualHours))
		efficiencyLine(&l, "   📈 Eficiencia", st)
		l.blank()
	}
	return chat.HTMLText(l.String(), chat.InlineKeyboard{}.Row(backToMenuButton()))
}

func TasksSummaryMenu() chat.Message {
	kb := chat.InlineKeyboard{}.
		Row(btn("📈 Resumen General", callback.SummaryGeneral)).
		Row(btn("📋 Resumen por Sprint", callback.SummaryBySprint)).
		Row(backToMenuButton())
	return chat.HTMLText("📊 <b>RESUMEN DE TAREAS</b>\n\n¿Qué tipo de resumen deseas ver?", kb)
}

// SummaryGeneral aggregates every active task.
func SummaryGeneral(tasks []model.Task, devs []model.User) chat.Message {
	st := report.Summarize(tasks)
	var unassigned, noSprint, estimatedOpen int
	for _, t := range tasks {
		if t.AssignedTo == nil {
			unassigned++
		}
		if t.SprintID == nil {
			noSprint++
		}
		if t.EstimatedHours != nil && !t.Done() {
			estimatedOpen++
		}
	}

	var l lines
	l.add("📊 <b>RESUMEN GENERAL DE TAREAS</b>")
	l.blank()
	l.add("📋 Total de tareas: %d", st.Total)
	for _, s := range model.Statuses {
		l.add("%s %s: %d", StatusGlyph(s), s, st.Count(s))
	}
	l.add("📈 <b>Progreso:</b> %s%%", fixed1(st.CompletionRate()))
	l.blank()
	l.add("👤 Tareas sin asignar: %d", unassigned)
	l.add("📌 Tareas sin sprint: %d", noSprint)
	l.blank()
	l.add("⏱️ Horas estimadas: %sh", fixed1(st.EstimatedHours))
	l.add("⏱️ Horas trabajadas: %sh", fixed1(st.ActualHours))
	l.add("⏳ Tareas estimadas pero no completadas: %d", estimatedOpen)
	efficiencyLine(&l, "📊 Eficiencia", st)

	if len(devs) > 0 {
		l.blank()
		l.add("👥 <b>Por desarrollador:</b>")
		for _, d := range devs {
			ds := report.Summarize(report.Filter(tasks, report.AssignedTo(d.ID)))
			l.add("   👨‍💻 %s: %d total (✅%d)", Escape(d.Name), ds.Total, ds.Completed)
		}
	}
	return chat.HTMLText(l.String(), backKeyboard("🔙 Volver", callback.TasksSummary))
}

func SprintSummaryPicker(sprints []model.Sprint) chat.Message {
	kb := chat.InlineKeyboard{}
	for _, s := range sprints {
		kb = kb.Row(btn(s.Name, callback.SprintSummary, s.ID))
	}
	kb = kb.Row(btn("🔙 Volver", callback.TasksSummary))
	text := "📋 <b>RESUMEN POR SPRINT</b>\n\nSelecciona el sprint:"
	if len(sprints) == 0 {
		text = "📋 <b>RESUMEN POR SPRINT</b>\n\nNo hay sprints disponibles."
	}
	return chat.HTMLText(text, kb)
}

// SprintSummary shows counts, progress and hours for one sprint.
func SprintSummary(r report.SprintReport) chat.Message {
	st := r.Stats
	var l lines
	l.add("📋 <b>RESUMEN - %s</b>", Escape(r.Sprint.Name))
	l.add("📅 Periodo: %s", period(r.Sprint))
	l.blank()
	l.add("📋 Total de tareas: %d", st.Total)
	for _, s := range model.Statuses {
		l.add("%s %s: %d", StatusGlyph(s), s, st.Count(s))
	}
	l.blank()
	l.add("📈 <b>Progreso:</b> %s%%", fixed1(st.CompletionRate()))
	l.add("⏱️ Horas estimadas: %sh", fixed1(st.EstimatedHours))
	l.add("⏱️ Horas trabajadas: %sh", fixed1(st.ActualHours))
	efficiencyLine(&l, "📊 Eficiencia", st)
	return chat.HTMLText(l.String(), backKeyboard("🔙 Volver", callback.SummaryBySprint))
}

// HoursReport compares estimated and worked hours per sprint.
func HoursReport(sprints []model.Sprint, tasks []model.Task) chat.Message {
	var l lines
	l.add("📊 <b>REPORTE DE HORAS POR SPRINT</b>")
	l.blank()
	if len(sprints) == 0 {
		l.add("No hay sprints disponibles para generar el reporte.")
	}
	for _, s := range sprints {
		st := report.Summarize(report.Filter(tasks, report.InSprint(s.ID)))
		l.add("🔸 <b>%s</b>", Escape(s.Name))
		l.add("   📈 Progreso: %s%% (%d/%d)", fixed1(st.CompletionRate()), st.Completed, st.Total)
		l.add("   ⏱️ Horas estimadas: %s h", fixed2(st.EstimatedHours))
		l.add("   ⏱️ Horas trabajadas: %s h", fixed2(st.ActualHours))
		l.add("   ⏳ Horas pendientes: %s h", fixed2(st.RemainingHours))
		efficiencyLine(&l, "   📊 Eficiencia", st)
		l.blank()
	}
	return chat.HTMLText(l.String(), chat.InlineKeyboard{}.Row(backToMenuButton()))
}
