package report

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/byronguina/sprintbot/internal/model"
)

func task(id int64, status model.Status, est, act *float64) model.Task {
	return model.Task{ID: id, Description: "t", Status: status, EstimatedHours: est, ActualHours: act}
}

func assigned(t model.Task, user, sprint int64) model.Task {
	t.AssignedTo = model.Ptr(user)
	if sprint != 0 {
		t.SprintID = model.Ptr(sprint)
	}
	return t
}

func h(v float64) *float64 { return &v }

func TestSummarize(t *testing.T) {
	tasks := []model.Task{
		task(1, model.StatusPending, h(2), nil),
		task(2, model.StatusInProgress, h(3), h(1)),
		task(3, model.StatusInReview, nil, nil),
		task(4, model.StatusCompleted, h(4), h(5)),
	}

	s := Summarize(tasks)
	assert.Equal(t, 4, s.Total)
	assert.Equal(t, 1, s.Pending)
	assert.Equal(t, 1, s.InProgress)
	assert.Equal(t, 1, s.InReview)
	assert.Equal(t, 1, s.Completed)
	assert.Equal(t, 3, s.Open())
	assert.InDelta(t, 9.0, s.EstimatedHours, 1e-9)
	assert.InDelta(t, 6.0, s.ActualHours, 1e-9)
	assert.InDelta(t, 5.0, s.RemainingHours, 1e-9)
	assert.InDelta(t, 4.0, s.CompletedEstimated, 1e-9)
	assert.InDelta(t, 5.0, s.CompletedActual, 1e-9)
	assert.InDelta(t, 25.0, s.CompletionRate(), 1e-9)

	eff, ok := s.Efficiency()
	require.True(t, ok)
	assert.InDelta(t, 80.0, eff, 1e-9)
}

func TestStats_EmptyAndNoActual(t *testing.T) {
	assert.Zero(t, Summarize(nil).CompletionRate())

	s := Summarize([]model.Task{task(1, model.StatusCompleted, h(4), nil)})
	_, ok := s.Efficiency()
	assert.False(t, ok, "efficiency is omitted when no actual hours were recorded")
}

func TestEfficiency(t *testing.T) {
	tests := []struct {
		est, act float64
		want     float64
		ok       bool
	}{
		{4, 5, 80, true},
		{5, 4, 125, true},
		{3, 3, 100, true},
		{3, 0, 0, false},
		{3, -1, 0, false},
	}
	for _, tt := range tests {
		got, ok := Efficiency(tt.est, tt.act)
		assert.Equal(t, tt.ok, ok)
		assert.InDelta(t, tt.want, got, 1e-9)
	}
}

func TestTopByEfficiency_StableDescending(t *testing.T) {
	tasks := []model.Task{
		task(1, model.StatusCompleted, h(2), h(4)), // 50
		task(2, model.StatusCompleted, h(4), h(2)), // 200
		task(3, model.StatusCompleted, h(3), h(3)), // 100
		task(4, model.StatusCompleted, h(2), h(1)), // 200, after task 2
		task(5, model.StatusPending, h(2), nil),    // skipped
	}

	top := TopByEfficiency(tasks, 3)
	require.Len(t, top, 3)
	assert.Equal(t, int64(2), top[0].Task.ID)
	assert.Equal(t, int64(4), top[1].Task.ID)
	assert.Equal(t, int64(3), top[2].Task.ID)

	assert.Len(t, TopByEfficiency(tasks, 10), 4)
}

func TestByDeveloper_FirstSeenOrder(t *testing.T) {
	tasks := []model.Task{
		assigned(task(1, model.StatusPending, nil, nil), 9, 0),
		task(2, model.StatusPending, nil, nil),
		assigned(task(3, model.StatusCompleted, h(4), h(5)), 3, 0),
		assigned(task(4, model.StatusCompleted, h(2), h(2)), 9, 0),
	}

	groups := ByDeveloper(tasks)
	require.Len(t, groups, 2)
	assert.Equal(t, int64(9), groups[0].UserID)
	assert.Equal(t, 2, groups[0].Stats.Total)
	assert.Equal(t, int64(3), groups[1].UserID)

	eff, ok := groups[1].Stats.Efficiency()
	require.True(t, ok)
	assert.InDelta(t, 80.0, eff, 1e-9)
}

func TestTopByCompleted(t *testing.T) {
	tasks := []model.Task{
		assigned(task(1, model.StatusCompleted, nil, nil), 1, 0),
		assigned(task(2, model.StatusCompleted, nil, nil), 2, 0),
		assigned(task(3, model.StatusCompleted, nil, nil), 2, 0),
		assigned(task(4, model.StatusPending, nil, nil), 3, 0),
		assigned(task(5, model.StatusCompleted, nil, nil), 4, 0),
	}

	top := TopByCompleted(tasks, 2)
	require.Len(t, top, 2)
	assert.Equal(t, int64(2), top[0].UserID)
	assert.Equal(t, int64(1), top[1].UserID, "ties keep first-seen order")
}

func TestFilter(t *testing.T) {
	tasks := []model.Task{
		assigned(task(1, model.StatusCompleted, nil, nil), 1, 7),
		assigned(task(2, model.StatusPending, nil, nil), 1, 7),
		assigned(task(3, model.StatusPending, nil, nil), 2, 7),
		assigned(task(4, model.StatusPending, nil, nil), 1, 8),
	}

	got := Filter(tasks, InSprint(7), AssignedTo(1), Open)
	require.Len(t, got, 1)
	assert.Equal(t, int64(2), got[0].ID)

	assert.Len(t, Filter(tasks, Completed), 1)
	assert.Len(t, Filter(tasks), 4)
}

func TestWeek(t *testing.T) {
	start, end := WeekBounds(2026, 1)
	assert.Equal(t, time.Date(2025, 12, 29, 0, 0, 0, 0, time.UTC), start)
	assert.Equal(t, time.Date(2026, 1, 4, 0, 0, 0, 0, time.UTC), end)

	w := WeekOf(time.Date(2026, 3, 4, 12, 0, 0, 0, time.UTC))
	assert.Equal(t, Week{Year: 2026, Week: 10}, w)
	assert.Equal(t, Week{Year: 2025, Week: 52}, Week{Year: 2026, Week: 1}.Prev())
	assert.Equal(t, Week{Year: 2026, Week: 11}, w.Next())
	assert.Equal(t, "2026-10", w.String())

	assert.True(t, Week{Year: 2026, Week: 53}.Valid())
	assert.False(t, Week{Year: 2025, Week: 53}.Valid())
}

func TestParseWeek(t *testing.T) {
	w, err := ParseWeek("2026-07")
	require.NoError(t, err)
	assert.Equal(t, Week{Year: 2026, Week: 7}, w)

	for _, bad := range []string{"", "abc", "2026-60", "2025-53"} {
		_, err := ParseWeek(bad)
		assert.Error(t, err, bad)
	}
}

func TestInWeek(t *testing.T) {
	in := model.Task{ID: 1, CreatedAt: time.Date(2026, 3, 4, 9, 0, 0, 0, time.UTC)}
	out := model.Task{ID: 2, CreatedAt: time.Date(2026, 3, 9, 9, 0, 0, 0, time.UTC)}
	zero := model.Task{ID: 3}

	got := Filter([]model.Task{in, out, zero}, InWeek(Week{Year: 2026, Week: 10}))
	require.Len(t, got, 1)
	assert.Equal(t, int64(1), got[0].ID)
}

func TestDeveloperSprint(t *testing.T) {
	sprint := model.Sprint{ID: 7, Name: "S1"}
	tasks := []model.Task{
		assigned(task(1, model.StatusPending, h(2), nil), 1, 7),
		assigned(task(2, model.StatusPending, h(2), nil), 1, 7),
		assigned(task(3, model.StatusCompleted, h(4), h(5)), 1, 7),
		assigned(task(4, model.StatusCompleted, h(1), h(1)), 2, 7),
		assigned(task(5, model.StatusCompleted, h(1), h(1)), 2, 8),
	}

	r := DeveloperSprint(1, sprint, tasks)
	assert.Equal(t, 3, r.Mine.Total)
	assert.Equal(t, 4, r.Team.Total)
	assert.Equal(t, 2, r.ActiveDevelopers)

	eff, ok := r.Mine.Efficiency()
	require.True(t, ok)
	assert.InDelta(t, 80.0, eff, 1e-9)

	require.Len(t, r.Top, 2)
}

func TestPersonalWeek_BySprint(t *testing.T) {
	created := time.Date(2026, 3, 4, 9, 0, 0, 0, time.UTC)
	mk := func(id int64, status model.Status, sprint int64) model.Task {
		tk := assigned(task(id, status, nil, nil), 1, sprint)
		tk.CreatedAt = created
		return tk
	}
	tasks := []model.Task{
		mk(1, model.StatusCompleted, 7),
		mk(2, model.StatusPending, 7),
		mk(3, model.StatusPending, 0),
		mk(4, model.StatusPending, 8),
	}

	r := PersonalWeek(model.User{ID: 1}, WeekOf(created), tasks)
	assert.Equal(t, 4, r.Stats.Total)
	assert.Equal(t, []SprintCount{{SprintID: 7, Completed: 1, Total: 2}, {SprintID: 8, Total: 1}}, r.BySprint)
}
