package format

import (
	"fmt"
	"strings"

	"github.com/byronguina/sprintbot/internal/callback"
	"github.com/byronguina/sprintbot/internal/chat"
	"github.com/byronguina/sprintbot/internal/model"
)

const (
	sprintGroupPreview = 3
	sprintTaskButtons  = 8
)

// SprintBrowser lets a manager pick which sprint's tasks to browse.
func SprintBrowser(sprints []model.Sprint) chat.Message {
	kb := chat.InlineKeyboard{}
	for _, s := range sprints {
		kb = kb.Row(btn(s.Name, callback.ViewSprintTasks, s.ID))
	}
	kb = kb.
		Row(btn("📌 Tareas Sin Sprint", callback.ViewSprintTasks, 0)).
		Row(backToMenuButton())
	return chat.HTMLText("📋 <b>Selecciona un Sprint</b>\n\nElige el sprint para ver sus tareas:", kb)
}

// SprintTasks groups tasks by status, previews a few per group and offers
// quick-modify buttons. A nil sprint means the tasks without a sprint.
func SprintTasks(sprint *model.Sprint, tasks []model.Task, dir Directory) chat.Message {
	title := "📌 <b>TAREAS SIN SPRINT</b>"
	if sprint != nil {
		title = "📋 <b>SPRINT: " + Escape(sprint.Name) + "</b>"
	}
	kb := chat.InlineKeyboard{}
	for _, t := range tasks[:min(sprintTaskButtons, len(tasks))] {
		kb = kb.Row(btn("📝 "+Truncate(t.Description, ButtonWidth), callback.ModifyTask, t.ID))
	}
	kb = kb.Row(btn("🔙 Volver a Sprints", callback.ListTasks))
	return chat.HTMLText(groupedTasks(title, tasks, dir, true), kb)
}

// MySprintTasks is the developer's read-only view of their tasks in a sprint.
func MySprintTasks(sprint model.Sprint, tasks []model.Task, dir Directory) chat.Message {
	title := "📋 <b>MIS TAREAS - " + Escape(sprint.Name) + "</b>"
	kb := chat.InlineKeyboard{}.
		Row(btn("📊 Ver Estadísticas", callback.DevSprintStats, sprint.ID)).
		Row(btn("🔙 Mis Sprints", callback.ViewSprints))
	return chat.HTMLText(groupedTasks(title, tasks, dir, false), kb)
}

func groupedTasks(title string, tasks []model.Task, dir Directory, withAssignee bool) string {
	if len(tasks) == 0 {
		return title + "\n\n❌ No hay tareas disponibles."
	}

	var l lines
	l.add("%s", title)
	l.blank()
	for _, status := range model.Statuses {
		var group []model.Task
		for _, t := range tasks {
			if t.Status == status {
				group = append(group, t)
			}
		}
		if len(group) == 0 {
			continue
		}
		l.add("%s <b>%s</b> (%d)", StatusGlyph(status), strings.ToUpper(string(status)), len(group))
		for _, t := range group[:min(sprintGroupPreview, len(group))] {
			if withAssignee && t.AssignedTo != nil {
				l.add("• %s (%s)", Escape(t.Description), Escape(dir.UserName(t.AssignedTo)))
			} else {
				l.add("• %s", Escape(t.Description))
			}
		}
		if len(group) > sprintGroupPreview {
			l.add("  ... y %d más", len(group)-sprintGroupPreview)
		}
		l.blank()
	}
	return l.String()
}

// ModifyTask shows a task with every edit a manager can make.
func ModifyTask(t model.Task, dir Directory) chat.Message {
	var l lines
	l.add("📝 <b>MODIFICAR TAREA</b>")
	l.blank()
	l.add("<b>Nombre:</b> %s", Escape(t.Description))
	l.add("<b>Estado:</b> %s", t.Status)
	if t.Priority != "" {
		l.add("<b>Prioridad:</b> %s", t.Priority)
	}
	if t.EstimatedHours != nil {
		l.add("<b>Horas estimadas:</b> %s", Hours(*t.EstimatedHours))
	}
	l.add("<b>Asignada a:</b> %s", Escape(dir.UserName(t.AssignedTo)))
	if t.SprintID != nil {
		l.add("<b>Sprint:</b> %s", Escape(dir.SprintName(t.SprintID)))
	} else {
		l.add("<b>Sprint:</b> Sin asignar")
	}

	kb := chat.InlineKeyboard{}.
		Row(btn("✏️ Cambiar Nombre", callback.EditTaskName, t.ID)).
		Row(btn("🔄 Cambiar Estado", callback.ChangeStatus, t.ID)).
		Row(btn("⏱️ Definir Horas Estimadas", callback.SetEstimatedHours, t.ID))
	if t.SprintID == nil {
		kb = kb.Row(btn("📋 Asignar a Sprint", callback.AssignTaskSprint, t.ID))
	}
	kb = kb.
		Row(btn("🗑️ Eliminar Tarea", callback.DeleteTask, t.ID)).
		Row(btn("🔙 Volver", callback.ListTasks))
	return chat.HTMLText(l.String(), kb)
}

// StatusPicker offers every status for a task.
func StatusPicker(taskID int64) chat.Message {
	kb := chat.InlineKeyboard{}
	for _, s := range model.Statuses {
		kb = kb.Row(btn(StatusGlyph(s)+" "+string(s), callback.TaskUpdateStatus, taskID, s))
	}
	kb = kb.Row(btn("🔙 Volver a Tarea", callback.ModifyTask, taskID))
	return chat.HTMLText("🔄 <b>CAMBIAR ESTADO</b>\n\nSelecciona el nuevo estado para la tarea:", kb)
}

func RenamePrompt() chat.Message {
	return chat.HTMLText("✏️ <b>CAMBIAR NOMBRE</b>\n\nEscribe el nuevo nombre para la tarea:",
		chat.InlineKeyboard{}.Row(cancelButton()))
}

func EstimatePrompt() chat.Message {
	return chat.HTMLText("⏱️ <b>DEFINIR HORAS ESTIMADAS</b>\n\nEscribe el número de horas estimadas para esta tarea:",
		chat.InlineKeyboard{}.Row(cancelButton()))
}

// SprintAssignPicker links an unsprinted task to a sprint.
func SprintAssignPicker(taskID int64, sprints []model.Sprint) chat.Message {
	kb := chat.InlineKeyboard{}
	for _, s := range sprints {
		kb = kb.Row(btn(s.Name, callback.TaskSprint, taskID, s.ID))
	}
	kb = kb.Row(btn("🔙 Volver a Tarea", callback.ModifyTask, taskID))
	return chat.HTMLText("📋 <b>ASIGNAR A SPRINT</b>\n\nSelecciona el sprint para esta tarea:", kb)
}

func SprintAssigned(sprintName string) chat.Message {
	return chat.Message{
		Text: fmt.Sprintf("✅ Tarea asignada exitosamente al sprint \"%s\" y marcada como 'En Progreso'.", sprintName),
	}
}

func Renamed(name string) chat.Message {
	return chat.Message{
		Text:   "✅ Nombre actualizado exitosamente.\n\n📝 Nuevo nombre: " + name,
		Inline: chat.InlineKeyboard{}.Row(homeButton()),
	}
}

func EstimateChanged(hours float64) chat.Message {
	return chat.Message{
		Text:   "✅ Horas estimadas actualizadas exitosamente.\n\n⏱️ Horas estimadas: " + Hours(hours),
		Inline: chat.InlineKeyboard{}.Row(homeButton()),
	}
}

func TaskDeleted() chat.Message {
	return chat.Message{Text: "✅ Tarea eliminada exitosamente."}
}

func EmptyName() chat.Message {
	return chat.Message{Text: "❌ El nombre no puede estar vacío. Escribe el nuevo nombre para la tarea:"}
}
