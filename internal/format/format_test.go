package format

import (
	"strconv"
	"strings"
	"testing"
	"time"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/byronguina/sprintbot/internal/callback"
	"github.com/byronguina/sprintbot/internal/chat"
	"github.com/byronguina/sprintbot/internal/model"
	"github.com/byronguina/sprintbot/internal/report"
)

func TestTruncate(t *testing.T) {
	tests := []struct {
		name string
		in   string
		n    int
		want string
	}{
		{"short", "abc", 5, "abc"},
		{"exact", "abcde", 5, "abcde"},
		{"cut", "abcdef", 5, "abcde..."},
		{"runes", "ñandú rápido", 5, "ñandú..."},
		{"no limit", "abc", 0, "abc"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Truncate(tt.in, tt.n))
		})
	}
}

func TestHours(t *testing.T) {
	assert.Equal(t, "4", Hours(4))
	assert.Equal(t, "2.5", Hours(2.5))
	assert.Equal(t, "3.33", Hours(10.0/3))
}

func TestEscape(t *testing.T) {
	assert.Equal(t, "a &lt;b&gt; &amp; c", Escape("a <b> & c"))
}

func TestSplit_Short(t *testing.T) {
	parts := Split("hola", 10)
	require.Len(t, parts, 1)
	assert.Equal(t, "hola", parts[0])
}

func TestSplit_PrefersLineBreaks(t *testing.T) {
	text := strings.Repeat("linea\n", 10) // 60 runes
	parts := Split(text, 25)

	require.Greater(t, len(parts), 1)
	for i, p := range parts {
		prefix := "Parte " + strconv.Itoa(i+1) + " de " + strconv.Itoa(len(parts)) + ":\n\n"
		require.True(t, strings.HasPrefix(p, prefix), "part %d: %q", i, p)
		body := strings.TrimPrefix(p, prefix)
		assert.LessOrEqual(t, utf8.RuneCountInString(body), 25)
		if i < len(parts)-1 {
			assert.True(t, strings.HasSuffix(body, "\n"), "part %d should end on a line break", i)
		}
	}
}

func TestSplit_NoLineBreak(t *testing.T) {
	text := strings.Repeat("x", 30)
	parts := Split(text, 10)
	require.Len(t, parts, 3)

	var joined strings.Builder
	for i, p := range parts {
		joined.WriteString(strings.TrimPrefix(p, "Parte "+strconv.Itoa(i+1)+" de 3:\n\n"))
	}
	assert.Equal(t, text, joined.String())
}

func TestGlyphs(t *testing.T) {
	assert.Equal(t, "⏳", StatusGlyph(model.StatusPending))
	assert.Equal(t, "✅", StatusGlyph(model.StatusCompleted))
	assert.Equal(t, "📌", StatusGlyph("Blocked"))
	assert.Equal(t, "🔴", PriorityGlyph(model.PriorityCritical))
	assert.Equal(t, "⚪", PriorityGlyph(""))
}

func TestEfficiencyGlyph(t *testing.T) {
	tests := []struct {
		pct  float64
		want string
	}{
		{120, "🟢"},
		{100.1, "🟢"},
		{100, "🟡"},
		{85, "🟡"},
		{84.9, "🔴"},
		{80, "🔴"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, EfficiencyGlyph(tt.pct), "pct %v", tt.pct)
	}
}

func callbacks(kb chat.InlineKeyboard) []string {
	var out []string
	for _, b := range kb.Buttons() {
		out = append(out, b.Data)
	}
	return out
}

func TestTaskCard_OffersOtherStatuses(t *testing.T) {
	task := model.Task{ID: 7, Description: "Fix <login>", Status: model.StatusInProgress, Priority: model.PriorityHigh}
	msg := TaskCard(task, Directory{})

	assert.True(t, msg.HTML)
	assert.Contains(t, msg.Text, "Fix &lt;login&gt;")
	assert.Equal(t, []string{
		"task_update_status:7:Pending",
		"task_update_status:7:In Review",
		"task_complete:7",
	}, callbacks(msg.Inline))

	for _, data := range callbacks(msg.Inline) {
		_, err := callback.Parse(data)
		assert.NoError(t, err, data)
	}
}

func TestNewTaskSprintPicker_HasNoSprintOption(t *testing.T) {
	msg := NewTaskSprintPicker([]model.Sprint{{ID: 3, Name: "Sprint 3"}})
	assert.Equal(t, []string{"sprint_select:3", "sprint_select:0", "cancel"}, callbacks(msg.Inline))
}

func TestTaskSubdivided(t *testing.T) {
	est := 10.0 / 3
	parts := []model.Task{
		{Description: "Deploy (Parte 1 de 3)", EstimatedHours: &est, Priority: model.PriorityHigh},
		{Description: "Deploy (Parte 2 de 3)", EstimatedHours: &est, Priority: model.PriorityHigh},
		{Description: "Deploy (Parte 3 de 3)", EstimatedHours: &est, Priority: model.PriorityHigh},
	}
	msg := TaskSubdivided(parts, 4, Directory{})

	assert.Contains(t, msg.Text, "excede las 4 horas")
	assert.Contains(t, msg.Text, "3 subtareas")
	assert.Equal(t, 3, strings.Count(msg.Text, "3.33 horas"))
	assert.Contains(t, msg.Text, "Sin asignar")
	assert.Contains(t, msg.Text, "Sin Sprint")
}

func TestCompletionSummary(t *testing.T) {
	task := model.Task{Description: "API", EstimatedHours: model.Ptr(4.0), ActualHours: model.Ptr(5.0)}
	msg := CompletionSummary(task)

	assert.Contains(t, msg.Text, "Tomó 1.0 horas extra")
	assert.Contains(t, msg.Text, "🔴 80.0%")

	task.ActualHours = model.Ptr(4.0)
	assert.Contains(t, CompletionSummary(task).Text, "exactamente en el tiempo estimado")
}

func TestModifyTask_SprintButtonOnlyWithoutSprint(t *testing.T) {
	task := model.Task{ID: 4, Description: "Docs", Status: model.StatusPending}
	assert.Contains(t, callbacks(ModifyTask(task, Directory{}).Inline), "assign_task_sprint:4")

	task.SprintID = model.Ptr(int64(1))
	data := callbacks(ModifyTask(task, Directory{}).Inline)
	assert.NotContains(t, data, "assign_task_sprint:4")
	assert.Contains(t, data, "delete_task:4")
}

func TestSprintTasks_Grouping(t *testing.T) {
	var tasks []model.Task
	for i := range 5 {
		tasks = append(tasks, model.Task{ID: int64(i + 1), Description: "p" + strconv.Itoa(i), Status: model.StatusPending})
	}
	tasks = append(tasks, model.Task{ID: 9, Description: "done", Status: model.StatusCompleted})

	msg := SprintTasks(nil, tasks, Directory{})
	assert.Contains(t, msg.Text, "TAREAS SIN SPRINT")
	assert.Contains(t, msg.Text, "<b>PENDING</b> (5)")
	assert.Contains(t, msg.Text, "... y 2 más")
	assert.Contains(t, msg.Text, "<b>COMPLETED</b> (1)")

	empty := SprintTasks(&model.Sprint{Name: "S1"}, nil, Directory{})
	assert.Contains(t, empty.Text, "No hay tareas disponibles")
}

func TestDeveloperSprintStats_PoorEfficiency(t *testing.T) {
	sprint := model.Sprint{ID: 1, Name: "Sprint 1",
		StartDate: time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC),
		EndDate:   time.Date(2026, 3, 15, 0, 0, 0, 0, time.UTC)}
	dev := model.User{ID: 10, Name: "Ana", Role: model.RoleDeveloper}
	tasks := []model.Task{
		{ID: 1, Status: model.StatusPending, AssignedTo: &dev.ID, SprintID: &sprint.ID},
		{ID: 2, Status: model.StatusInProgress, AssignedTo: &dev.ID, SprintID: &sprint.ID},
		{ID: 3, Status: model.StatusCompleted, AssignedTo: &dev.ID, SprintID: &sprint.ID,
			EstimatedHours: model.Ptr(4.0), ActualHours: model.Ptr(5.0)},
	}

	r := report.DeveloperSprint(dev.ID, sprint, tasks)
	msg := DeveloperSprintStats(r, NewDirectory([]model.User{dev}, []model.Sprint{sprint}))

	assert.Contains(t, msg.Text, "Mi eficiencia: 🔴 80.0%")
	assert.Contains(t, msg.Text, "Ana: 1 tareas 🔥")
	assert.Contains(t, msg.Text, "02/03/2026 - 15/03/2026")
}

func TestTeam_OmitsEfficiencyWithoutHours(t *testing.T) {
	dev := model.User{ID: 2, Name: "Luis", Username: "luis"}
	tasks := []model.Task{{ID: 1, Status: model.StatusCompleted, AssignedTo: &dev.ID, EstimatedHours: model.Ptr(3.0)}}

	msg := Team([]model.User{dev}, tasks)
	assert.Contains(t, msg.Text, "Tareas: 1 (⏳0 🔄0 ✅1)")
	assert.NotContains(t, msg.Text, "Eficiencia")
}

func TestKPIWeekPicker(t *testing.T) {
	msg := KPIWeekPicker(0, report.Week{Year: 2026, Week: 2})
	assert.Equal(t, []string{
		"kpi_week:0:2026:2",
		"kpi_week:0:2026:1",
		"kpi_week:0:2025:52",
		"kpi_week:0:2025:51",
		"view_kpis",
	}, callbacks(msg.Inline))
	assert.Contains(t, msg.Text, "2026-02")
}

func TestKPITeamWeek(t *testing.T) {
	dev := model.User{ID: 5, Name: "Eva"}
	week := report.Week{Year: 2026, Week: 11}
	created, _ := week.Bounds()
	tasks := []model.Task{
		{ID: 1, Status: model.StatusCompleted, AssignedTo: &dev.ID, CreatedAt: created,
			EstimatedHours: model.Ptr(2.0), ActualHours: model.Ptr(2.0)},
		{ID: 2, Status: model.StatusPending, AssignedTo: &dev.ID, CreatedAt: created},
	}

	msg := KPITeamWeek(report.TeamWeek(week, tasks), NewDirectory([]model.User{dev}, nil))
	assert.Contains(t, msg.Text, "SEMANA 11 DE 2026")
	assert.Contains(t, msg.Text, "Periodo: 09/03/2026 al 15/03/2026")
	assert.Contains(t, msg.Text, "Tasa de completado: 50.00%")
	assert.Contains(t, msg.Text, "Eficiencia del equipo: 🟡 100.00%")
	assert.Contains(t, msg.Text, "Eva: 1/2 completadas")
	assert.Contains(t, callbacks(msg.Inline), "kpi_week:0:2026:10")
	assert.Contains(t, callbacks(msg.Inline), "kpi_week:0:2026:12")
}

func TestKPICompletedTasks_Empty(t *testing.T) {
	msg := KPICompletedTasks(report.SprintReport{Sprint: model.Sprint{Name: "S"}}, Directory{})
	assert.Contains(t, msg.Text, "No hay tareas completadas en este sprint.")
}

func TestMainMenu_ByRole(t *testing.T) {
	manager := MainMenu(model.User{Name: "Mia", Role: model.RoleManager})
	assert.Contains(t, callbacks(manager.Inline), "view_kpis")
	assert.NotContains(t, callbacks(manager.Inline), "complete_task")

	dev := MainMenu(model.User{Name: "Dan", Role: model.RoleDeveloper})
	assert.Contains(t, callbacks(dev.Inline), "complete_task")
	assert.NotContains(t, callbacks(dev.Inline), "view_kpis")
}
