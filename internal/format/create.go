package format

import (
	"fmt"

	"github.com/byronguina/sprintbot/internal/callback"
	"github.com/byronguina/sprintbot/internal/chat"
	"github.com/byronguina/sprintbot/internal/model"
)

// NewTaskSprintPicker starts task creation. Sprint id 0 means "no sprint".
func NewTaskSprintPicker(sprints []model.Sprint) chat.Message {
	kb := chat.InlineKeyboard{}
	for _, s := range sprints {
		kb = kb.Row(btn(s.Name, callback.SprintSelect, s.ID))
	}
	kb = kb.
		Row(btn("📌 Sin Sprint (asignar después)", callback.SprintSelect, 0)).
		Row(cancelButton())
	return chat.HTMLText("📝 <b>NUEVA TAREA</b>\n\nPrimero, selecciona el sprint al que deseas asignar esta tarea:", kb)
}

func SprintChosen(sprintName string) chat.Message {
	return chat.Message{
		Text:   fmt.Sprintf("✅ Sprint seleccionado: %s\n\n📝 Ahora escribe el nombre de la tarea:", sprintName),
		Inline: chat.InlineKeyboard{}.Row(cancelButton()),
	}
}

// PriorityPicker echoes the description and asks for a priority.
func PriorityPicker(description string) chat.Message {
	kb := chat.InlineKeyboard{}.
		Row(btn(priorityButtonLabel(model.PriorityLow), callback.Priority, model.PriorityLow),
			btn(priorityButtonLabel(model.PriorityMedium), callback.Priority, model.PriorityMedium)).
		Row(btn(priorityButtonLabel(model.PriorityHigh), callback.Priority, model.PriorityHigh),
			btn(priorityButtonLabel(model.PriorityCritical), callback.Priority, model.PriorityCritical)).
		Row(cancelButton())
	return chat.HTMLText("⚠️ <b>SELECCIONAR PRIORIDAD</b>\n\nSelecciona la prioridad para la tarea:\n\n📝 "+Escape(description), kb)
}

func PriorityChosen(p model.Priority) chat.Message {
	return chat.Message{
		Text:   fmt.Sprintf("✅ Prioridad seleccionada: %s\n\n⏱️ Ahora ingresa las horas estimadas:", p),
		Inline: chat.InlineKeyboard{}.Row(cancelButton()),
	}
}

// DeveloperPicker lets a manager choose the assignee. Id 0 leaves the task unassigned.
func DeveloperPicker(devs []model.User) chat.Message {
	kb := chat.InlineKeyboard{}
	for _, d := range devs {
		kb = kb.Row(btn(d.Name, callback.AssignDev, d.ID))
	}
	kb = kb.
		Row(btn("📌 Dejar sin asignar", callback.AssignDev, 0)).
		Row(cancelButton())
	return chat.HTMLText("👨‍💻 <b>ASIGNAR DESARROLLADOR</b>\n\nSelecciona el desarrollador para esta tarea:", kb)
}

func afterCreateKeyboard() chat.InlineKeyboard {
	return chat.InlineKeyboard{}.Row(homeButton(), btn("➕ Crear Otra Tarea", callback.AddTask))
}

// TaskCreated confirms a single new task.
func TaskCreated(t model.Task, dir Directory) chat.Message {
	var l lines
	l.add("✅ <b>TAREA CREADA</b>")
	l.blank()
	l.add("📌 %s", Escape(t.Description))
	l.add("🔄 Estado: %s", t.Status)
	l.add("⚠️ Prioridad: %s", t.Priority)
	l.add("⏱️ Horas estimadas: %s", Hours(t.Estimated()))
	l.add("👨‍💻 Asignada a: %s", Escape(dir.UserName(t.AssignedTo)))
	l.add("📋 Sprint: %s", Escape(dir.SprintName(t.SprintID)))
	return chat.HTMLText(l.String(), afterCreateKeyboard())
}

// TaskSubdivided lists the parts an oversized task was split into.
func TaskSubdivided(parts []model.Task, limit float64, dir Directory) chat.Message {
	var l lines
	l.add("⚠️ <b>TAREA SUBDIVIDIDA</b>")
	l.blank()
	l.add("La tarea excede las %s horas permitidas. Se ha dividido en %d subtareas:", Hours(limit), len(parts))
	l.blank()
	for _, p := range parts {
		l.add("📌 %s - %s horas", Escape(p.Description), fixed2(p.Estimated()))
	}
	if len(parts) > 0 {
		first := parts[0]
		l.blank()
		l.add("⚠️ Prioridad: %s", first.Priority)
		l.add("👨‍💻 Asignadas a: %s", Escape(dir.UserName(first.AssignedTo)))
		l.add("📋 Sprint: %s", Escape(dir.SprintName(first.SprintID)))
	}
	return chat.HTMLText(l.String(), afterCreateKeyboard())
}

func EmptyDescription() chat.Message {
	return chat.Message{
		Text:   "❌ El nombre de la tarea no puede estar vacío. Escribe el nombre de la tarea:",
		Inline: chat.InlineKeyboard{}.Row(cancelButton()),
	}
}
