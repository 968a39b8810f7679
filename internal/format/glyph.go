package format

import "github.com/byronguina/sprintbot/internal/model"

func StatusGlyph(s model.Status) string {
	switch s {
	case model.StatusPending:
		return "⏳"
	case model.StatusInProgress:
		return "🔄"
	case model.StatusInReview:
		return "👁️"
	case model.StatusCompleted:
		return "✅"
	}
	return "📌"
}

func PriorityGlyph(p model.Priority) string {
	switch p {
	case model.PriorityLow:
		return "🟢"
	case model.PriorityMedium:
		return "🟡"
	case model.PriorityHigh:
		return "🟠"
	case model.PriorityCritical:
		return "🔴"
	}
	return "⚪"
}

// EfficiencyGlyph classifies an efficiency percentage: above 100 is good,
// 85 to 100 is acceptable, anything lower is poor.
func EfficiencyGlyph(pct float64) string {
	switch {
	case pct > 100:
		return "🟢"
	case pct >= 85:
		return "🟡"
	}
	return "🔴"
}

// StatusButtonLabel is the Spanish label used on status buttons.
func StatusButtonLabel(s model.Status) string {
	switch s {
	case model.StatusPending:
		return "⏳ Pending"
	case model.StatusInProgress:
		return "🔄 En Progreso"
	case model.StatusInReview:
		return "👁️ En Revisión"
	case model.StatusCompleted:
		return "✅ Completar"
	}
	return StatusGlyph(s) + " " + string(s)
}

func priorityButtonLabel(p model.Priority) string {
	switch p {
	case model.PriorityLow:
		return "🟢 Low (Baja)"
	case model.PriorityMedium:
		return "🟡 Medium (Media)"
	case model.PriorityHigh:
		return "🟠 High (Alta)"
	case model.PriorityCritical:
		return "🔴 Critical (Crítica)"
	}
	return string(p)
}
