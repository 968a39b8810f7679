package format

import (
	"fmt"

	"github.com/byronguina/sprintbot/internal/callback"
	"github.com/byronguina/sprintbot/internal/chat"
	"github.com/byronguina/sprintbot/internal/model"
	"github.com/byronguina/sprintbot/internal/report"
)

func kpiMenuButton() chat.Button { return btn("📊 Menú KPI", callback.ViewKPIs) }

// KPIMenu offers the five KPI reports.
func KPIMenu() chat.Message {
	var l lines
	l.add("📊 <b>MENÚ DE REPORTES KPI</b>")
	l.blank()
	l.add("Selecciona una opción:")
	l.blank()
	l.add("🔙 Para volver al menú principal, escribe 'menu'")

	kb := chat.InlineKeyboard{}.
		Row(btn("1️⃣ Tareas Completadas por Sprint", callback.KPICompletedTasks)).
		Row(btn("2️⃣ KPI de Equipo por Sprint", callback.KPITeamSprint)).
		Row(btn("3️⃣ KPI de Equipo por Semana", callback.KPITeamWeek)).
		Row(btn("4️⃣ KPI Personal por Sprint", callback.KPIPersonalSprint)).
		Row(btn("5️⃣ KPI Personal por Semana", callback.KPIPersonalWeek)).
		Row(backToMenuButton())
	return chat.HTMLText(l.String(), kb)
}

// KPISprintPicker asks which sprint a sprint-level report covers. The sprint
// id can also be typed.
func KPISprintPicker(kind string, sprints []model.Sprint) chat.Message {
	var l lines
	l.add("📋 <b>SELECCIONE UN SPRINT PARA VER SUS KPIs</b>")
	l.blank()
	kb := chat.InlineKeyboard{}
	for _, s := range sprints {
		l.add("ID: %d - %s", s.ID, Escape(s.Name))
		l.add("   📅 Periodo: %s", period(s))
		l.add("   🔄 Estado: %s", s.Status)
		kb = kb.Row(btn(Truncate(s.Name, ButtonWidth), callback.KPISprint, kind, s.ID))
	}
	if len(sprints) == 0 {
		l.add("No hay sprints disponibles.")
	} else {
		l.blank()
		l.add("Selecciona un sprint o responde con su ID.")
	}
	kb = kb.Row(kpiMenuButton())
	return chat.HTMLText(l.String(), kb)
}

// KPIDeveloperPicker asks which developer a personal report covers.
func KPIDeveloperPicker(kind string, devs []model.User) chat.Message {
	var l lines
	l.add("👨‍💻 <b>SELECCIONE UN DESARROLLADOR PARA VER SUS KPIs</b>")
	l.blank()
	kb := chat.InlineKeyboard{}
	for _, d := range devs {
		l.add("ID: %d - %s", d.ID, Escape(d.Name))
		kb = kb.Row(btn(Truncate(d.Name, ButtonWidth), callback.KPIDeveloper, kind, d.ID))
	}
	if len(devs) == 0 {
		l.add("No hay desarrolladores registrados.")
	} else {
		l.blank()
		l.add("Selecciona un desarrollador o responde con su ID.")
	}
	kb = kb.Row(kpiMenuButton())
	return chat.HTMLText(l.String(), kb)
}

// KPIPersonalSprintPicker is the second step of the personal sprint report.
func KPIPersonalSprintPicker(dev model.User, sprints []model.Sprint) chat.Message {
	var l lines
	l.add("👨‍💻 <b>%s</b>", Escape(dev.Name))
	l.add("📋 <b>SELECCIONE UN SPRINT</b>")
	l.blank()
	kb := chat.InlineKeyboard{}
	for _, s := range sprints {
		l.add("ID: %d - %s", s.ID, Escape(s.Name))
		kb = kb.Row(btn(Truncate(s.Name, ButtonWidth), callback.KPIPersonalFinal, dev.ID, s.ID))
	}
	if len(sprints) == 0 {
		l.add("No hay sprints disponibles.")
	}
	kb = kb.Row(kpiMenuButton())
	return chat.HTMLText(l.String(), kb)
}

// KPIWeekPicker offers the current week and the three before it. userID 0
// means the team report. A week can also be typed as YYYY-WW.
func KPIWeekPicker(userID int64, current report.Week) chat.Message {
	var l lines
	l.add("📅 <b>SELECCIÓN DE SEMANA PARA ANÁLISIS KPI</b>")
	l.blank()
	l.add("Año actual: %d", current.Year)
	l.add("Semana actual: %d", current.Week)
	l.blank()
	l.add("Selecciona una semana o escribe el año y número de semana en formato 'YYYY-WW'.")
	l.add("Ejemplo: %s (semana actual)", current)

	kb := chat.InlineKeyboard{}
	w := current
	for range 4 {
		start, end := w.Bounds()
		label := fmt.Sprintf("Semana %d (%s - %s)", w.Week, start.Format("02/01"), end.Format("02/01"))
		kb = kb.Row(btn(label, callback.KPIWeek, userID, w.Year, w.Week))
		w = w.Prev()
	}
	kb = kb.Row(kpiMenuButton())
	return chat.HTMLText(l.String(), kb)
}

func KPIUseButtons() chat.Message {
	return chat.Message{Text: "🤖 Por favor, usa los botones para navegar por los KPIs."}
}

// KPIInvalidID re-prompts for a numeric id. what names the awaited entity.
func KPIInvalidID(what string) chat.Message {
	return chat.Message{Text: fmt.Sprintf("❌ Por favor, ingresa un número válido para el ID del %s o 'menu' para volver.", what)}
}

func KPIInvalidWeek() chat.Message {
	return chat.Message{Text: "❌ Formato de semana inválido. Usa 'YYYY-WW' o 'menu' para volver."}
}

func SprintNotFound() chat.Message {
	return chat.Message{Text: "❌ Error: Sprint no encontrado.", Inline: chat.InlineKeyboard{}.Row(kpiMenuButton())}
}

func DeveloperNotFound() chat.Message {
	return chat.Message{Text: "❌ Error: Desarrollador no encontrado.", Inline: chat.InlineKeyboard{}.Row(kpiMenuButton())}
}

func hoursAnalysis(l *lines, st report.Stats, effLabel string) {
	l.add("<b>ANÁLISIS DE HORAS:</b>")
	l.add("⏱️ Horas estimadas (Total): %s", fixed2(st.EstimatedHours))
	l.add("⏱️ Horas estimadas (Completadas): %s", fixed2(st.CompletedEstimated))
	l.add("⏱️ Horas reales trabajadas: %s", fixed2(st.ActualHours))
	if eff, ok := st.Efficiency(); ok {
		l.add("📈 %s: %s %s%%", effLabel, EfficiencyGlyph(eff), fixed2(eff))
	}
	l.add("⏳ Horas pendientes estimadas: %s", fixed2(st.RemainingHours))
	l.blank()
}

func generalMetrics(l *lines, st report.Stats, totalLabel string) {
	l.add("<b>MÉTRICAS GENERALES:</b>")
	l.add("📋 %s: %d", totalLabel, st.Total)
	l.add("✅ Tareas completadas: %d", st.Completed)
	l.add("🎯 Tasa de completado: %s%%", fixed2(st.CompletionRate()))
	l.blank()
}

func statusDistribution(l *lines, st report.Stats) {
	l.add("<b>DISTRIBUCIÓN POR ESTADO:</b>")
	for _, s := range model.Statuses {
		if n := st.Count(s); n > 0 {
			l.add("%s %s: %d tarea(s)", StatusGlyph(s), s, n)
		}
	}
}

func taskDetail(l *lines, tasks []model.Task, dir Directory, withSprint bool) {
	l.blank()
	l.add("<b>DETALLE DE TAREAS:</b>")
	l.blank()
	for _, t := range tasks {
		l.add("%s %s", StatusGlyph(t.Status), Escape(t.Description))
		l.add("   🔄 Estado: %s", t.Status)
		if withSprint && t.SprintID != nil {
			l.add("   📋 Sprint: %s", Escape(dir.SprintName(t.SprintID)))
		}
		if t.EstimatedHours != nil {
			l.add("   ⏱️ Horas estimadas: %s", fixed2(*t.EstimatedHours))
		}
		if t.ActualHours != nil {
			l.add("   ⏱️ Horas reales: %s", fixed2(*t.ActualHours))
		}
		if eff, ok := report.TaskEfficiency(t); ok {
			l.add("   📈 Eficiencia: %s%%", fixed2(eff))
		}
		l.blank()
	}
}

func sprintReportKeyboard() chat.InlineKeyboard {
	return chat.InlineKeyboard{}.Row(kpiMenuButton(), homeButton())
}

func weekReportKeyboard(userID int64, w report.Week) chat.InlineKeyboard {
	prev, next := w.Prev(), w.Next()
	return chat.InlineKeyboard{}.
		Row(btn("◀️ Semana anterior", callback.KPIWeek, userID, prev.Year, prev.Week),
			btn("Semana siguiente ▶️", callback.KPIWeek, userID, next.Year, next.Week)).
		Row(kpiMenuButton(), homeButton())
}

func weekPeriod(w report.Week) string {
	start, end := w.Bounds()
	return start.Format(sprintDateLayout) + " al " + end.Format(sprintDateLayout)
}

// KPICompletedTasks lists the completed tasks of a sprint with their hours.
func KPICompletedTasks(r report.SprintReport, dir Directory) chat.Message {
	var l lines
	l.add("📋 <b>TAREAS COMPLETADAS EN SPRINT: %s</b>", Escape(r.Sprint.Name))
	l.blank()
	if len(r.Tasks) == 0 {
		l.add("No hay tareas completadas en este sprint.")
		return chat.HTMLText(l.String(), sprintReportKeyboard())
	}

	l.add("📅 Periodo: %s al %s", r.Sprint.StartDate.Format(sprintDateLayout), r.Sprint.EndDate.Format(sprintDateLayout))
	l.add("✅ Total tareas completadas: %d", len(r.Tasks))
	l.blank()
	l.add("<b>DETALLES DE TAREAS:</b>")
	l.blank()
	for _, t := range r.Tasks {
		l.add("📌 %s", Escape(t.Description))
		l.add("  👨‍💻 Desarrollador: %s", Escape(dir.UserName(t.AssignedTo)))
		l.add("  ⏱️ Horas estimadas: %s", fixed2(t.Estimated()))
		l.add("  ⏱️ Horas reales: %s", fixed2(t.Actual()))
		if eff, ok := report.TaskEfficiency(t); ok {
			l.add("  📈 Eficiencia: %s%%", fixed2(eff))
		}
		l.blank()
	}
	l.add("<b>RESUMEN DE HORAS:</b>")
	l.add("⏱️ Total horas estimadas: %s", fixed2(r.Stats.EstimatedHours))
	l.add("⏱️ Total horas reales: %s", fixed2(r.Stats.ActualHours))
	if eff, ok := r.Stats.Efficiency(); ok {
		l.add("📈 Eficiencia global: %s%%", fixed2(eff))
	}
	return chat.HTMLText(l.String(), sprintReportKeyboard())
}

// KPITeamSprint aggregates every task of a sprint.
func KPITeamSprint(r report.SprintReport) chat.Message {
	var l lines
	l.add("📊 <b>KPI DE EQUIPO - SPRINT: %s</b>", Escape(r.Sprint.Name))
	l.blank()
	l.add("📅 Periodo: %s al %s", r.Sprint.StartDate.Format(sprintDateLayout), r.Sprint.EndDate.Format(sprintDateLayout))
	l.blank()
	generalMetrics(&l, r.Stats, "Total tareas")
	hoursAnalysis(&l, r.Stats, "Eficiencia del equipo")
	statusDistribution(&l, r.Stats)
	return chat.HTMLText(l.String(), sprintReportKeyboard())
}

// KPIPersonalSprint shows one developer's tasks in a sprint.
func KPIPersonalSprint(r report.SprintReport, dir Directory) chat.Message {
	var l lines
	if r.Developer != nil {
		l.add("👨‍💻 <b>KPI PERSONAL - %s</b>", Escape(r.Developer.Name))
	}
	l.add("📋 SPRINT: %s", Escape(r.Sprint.Name))
	l.blank()
	l.add("📅 Periodo: %s al %s", r.Sprint.StartDate.Format(sprintDateLayout), r.Sprint.EndDate.Format(sprintDateLayout))
	l.blank()
	if r.Stats.Total == 0 {
		l.add("No tiene tareas asignadas en este sprint.")
		return chat.HTMLText(l.String(), sprintReportKeyboard())
	}
	generalMetrics(&l, r.Stats, "Total tareas asignadas")
	hoursAnalysis(&l, r.Stats, "Eficiencia personal")
	statusDistribution(&l, r.Stats)
	taskDetail(&l, r.Tasks, dir, false)
	return chat.HTMLText(l.String(), sprintReportKeyboard())
}

// KPITeamWeek aggregates the tasks created in a week, per developer.
func KPITeamWeek(r report.WeekReport, dir Directory) chat.Message {
	var l lines
	l.add("📊 <b>KPI DE EQUIPO - SEMANA %d DE %d</b>", r.Week.Week, r.Week.Year)
	l.blank()
	l.add("📅 Periodo: %s", weekPeriod(r.Week))
	l.blank()
	generalMetrics(&l, r.Stats, "Total tareas")
	hoursAnalysis(&l, r.Stats, "Eficiencia del equipo")
	statusDistribution(&l, r.Stats)
	if len(r.ByDeveloper) > 0 {
		l.blank()
		l.add("<b>TAREAS POR DESARROLLADOR:</b>")
		for _, d := range r.ByDeveloper {
			l.add("👨‍💻 %s: %d/%d completadas", Escape(dir.UserName(&d.UserID)), d.Stats.Completed, d.Stats.Total)
		}
	}
	return chat.HTMLText(l.String(), weekReportKeyboard(0, r.Week))
}

// KPIPersonalWeek shows one developer's tasks created in a week.
func KPIPersonalWeek(r report.WeekReport, dir Directory) chat.Message {
	var userID int64
	var l lines
	if r.Developer != nil {
		userID = r.Developer.ID
		l.add("👨‍💻 <b>KPI PERSONAL - %s</b>", Escape(r.Developer.Name))
	}
	l.add("📅 SEMANA %d DE %d", r.Week.Week, r.Week.Year)
	l.blank()
	l.add("📅 Periodo: %s", weekPeriod(r.Week))
	l.blank()
	if r.Stats.Total == 0 {
		l.add("No tiene tareas asignadas en esta semana.")
		return chat.HTMLText(l.String(), weekReportKeyboard(userID, r.Week))
	}
	generalMetrics(&l, r.Stats, "Total tareas asignadas")
	hoursAnalysis(&l, r.Stats, "Eficiencia personal")
	if len(r.BySprint) > 0 {
		l.add("<b>DISTRIBUCIÓN POR SPRINT:</b>")
		for _, s := range r.BySprint {
			l.add("   📋 %s: %d/%d completadas", Escape(dir.SprintName(&s.SprintID)), s.Completed, s.Total)
		}
		l.blank()
	}
	statusDistribution(&l, r.Stats)
	taskDetail(&l, r.Tasks, dir, true)
	return chat.HTMLText(l.String(), weekReportKeyboard(userID, r.Week))
}
