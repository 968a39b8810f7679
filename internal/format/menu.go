package format

import (
	"github.com/byronguina/sprintbot/internal/callback"
	"github.com/byronguina/sprintbot/internal/chat"
	"github.com/byronguina/sprintbot/internal/model"
)

// CancelText is the literal text that aborts any flow.
const CancelText = "❌ Cancelar"

const verifyButton = "📱 VERIFICAR MI IDENTIDAD 📱"

func btn(text string, action callback.Action, params ...any) chat.Button {
	return chat.Btn(text, callback.Encode(action, params...))
}

func homeButton() chat.Button { return btn("🏠 Menú Principal", callback.MainMenu) }

func backToMenuButton() chat.Button { return btn("🔙 Menú Principal", callback.MainMenu) }

func cancelButton() chat.Button { return btn(CancelText, callback.Cancel) }

// RequestContact asks an unverified chat to share its phone number.
func RequestContact() chat.Message {
	return chat.Message{
		Text: "¡Bienvenido! Este bot requiere verificación de identidad.\n\n" +
			"Por favor, presiona el botón de abajo para verificar tu acceso. " +
			"Esto es un requisito de seguridad único y solo lo necesitarás hacer una vez.",
		Reply: &chat.ReplyKeyboard{
			Rows:    [][]chat.ReplyKey{{{Text: verifyButton, RequestContact: true}}},
			OneTime: true,
		},
	}
}

// PleaseVerify answers anything an unverified chat sends other than /start or a contact.
func PleaseVerify() chat.Message {
	return chat.Message{
		Text: "Para usar este bot, primero necesitas verificar tu identidad. " +
			"Por favor, usa el comando /start y luego presiona el botón para compartir tu contacto.",
		Reply: &chat.ReplyKeyboard{
			Rows:    [][]chat.ReplyKey{{{Text: "/start"}}},
			OneTime: true,
		},
	}
}

func AccessVerified() chat.Message {
	return chat.Message{Text: "✅ ¡Acceso verificado exitosamente!", RemoveReply: true}
}

func NotRegistered() chat.Message {
	return chat.Message{
		Text: "❌ Tu número no está registrado en el sistema.\n\n" +
			"Por favor, contacta con tu Manager para solicitar acceso e incluir tu número de teléfono en la base de datos.",
		RemoveReply: true,
	}
}

// ForeignContact rejects a contact card that belongs to someone else.
func ForeignContact() chat.Message {
	return chat.Message{
		Text:        "❌ Debes compartir tu propio contacto usando el botón de verificación.",
		RemoveReply: true,
	}
}

func Bye() chat.Message {
	return chat.Message{Text: "¡Hasta luego! Selecciona /start para continuar.", RemoveReply: true}
}

// MainMenu greets the user and offers the actions of their role.
func MainMenu(u model.User) chat.Message {
	var l lines
	if u.IsManager() {
		l.add("✨ COMMAND CENTER ✨")
		l.add("━━━━━━━━━━━━━━━━━━━")
		l.blank()
		l.add("👑 <b>%s</b>", Escape(u.Name))
		l.add("🔹 <i>Project Leader &amp; Team Commander</i>")
		l.blank()
		l.add("🎯 <b>READY TO LEAD</b>")
		l.add("🎖️ Orchestrate team success\n🔥 Drive project excellence\n📊 Monitor performance metrics")
		l.blank()
		l.add("💡 What strategic move will you make today?")
	} else {
		l.add("✨ DEV WORKSPACE ✨")
		l.add("━━━━━━━━━━━━━━━━━━━")
		l.blank()
		l.add("🚀 <b>%s</b>", Escape(u.Name))
		l.add("🔹 <i>Code Architect &amp; Problem Solver</i>")
		l.blank()
		l.add("🎯 <b>READY TO BUILD</b>")
		l.add("⚡ Transform ideas into reality\n🛠️ Craft efficient solutions\n🏆 Deliver exceptional code")
		l.blank()
		l.add("💡 What will you create today?")
	}

	kb := chat.InlineKeyboard{}.Row(
		btn("📋 Ver Tareas", callback.ListTasks),
		btn("➕ Nueva Tarea", callback.AddTask),
	)
	if u.IsManager() {
		kb = kb.
			Row(btn("👨‍💻 Equipo", callback.ViewDevelopers), btn("📋 Sprints", callback.ViewSprints)).
			Row(btn("⏱️ Reporte Horas", callback.HoursReport), btn("📊 Resumen Tareas", callback.TasksSummary)).
			Row(btn("📈 Reportes KPI", callback.ViewKPIs))
	} else {
		kb = kb.Row(btn("✅ Completar Tarea", callback.CompleteTask), btn("📊 Ver Sprints", callback.ViewSprints))
	}
	return chat.HTMLText(l.String(), kb)
}

// UseButtons is the fallback for free text outside any flow.
func UseButtons() chat.Message {
	return chat.Message{
		Text:   "🤖 Te recomiendo usar los botones del menú para una mejor experiencia.\n\n¿Necesitas volver al menú principal?",
		Inline: chat.InlineKeyboard{}.Row(homeButton()),
	}
}

func ManagerOnly() chat.Message {
	return chat.Message{
		Text:   "⛔ Esta opción solo está disponible para Managers.",
		Inline: chat.InlineKeyboard{}.Row(homeButton()),
	}
}

func NotAssignedToYou() chat.Message {
	return chat.Message{Text: "❌ Esta tarea no está asignada a ti.", Inline: chat.InlineKeyboard{}.Row(homeButton())}
}

// Failure reports an operation that could not be completed.
func Failure(text string) chat.Message {
	return chat.Message{
		Text:   "❌ " + text,
		Inline: chat.InlineKeyboard{}.Row(homeButton()),
	}
}

// Hour input prompts shared by every numeric state.
func NotANumber() chat.Message {
	return chat.Message{Text: "❌ Por favor, ingresa un número válido para las horas:"}
}

func NotPositive() chat.Message {
	return chat.Message{Text: "❌ El número de horas debe ser mayor que cero. Por favor, intenta nuevamente:"}
}
