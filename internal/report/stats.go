// Package report computes task statistics and KPIs. Every function here is
// pure: callers load tasks from the store and pass them in.
package report

import (
	"cmp"
	"slices"

	"github.com/byronguina/sprintbot/internal/model"
)

// Stats aggregates a set of tasks.
type Stats struct {
	Total      int
	Pending    int
	InProgress int
	InReview   int
	Completed  int

	EstimatedHours float64 // every task with an estimate
	ActualHours    float64 // every task with recorded hours
	RemainingHours float64 // estimates of tasks not yet completed

	CompletedEstimated float64
	CompletedActual    float64
}

// Summarize counts tasks by status and sums their hours.
func Summarize(tasks []model.Task) Stats {
	var s Stats
	for _, t := range tasks {
		s.Total++
		s.EstimatedHours += t.Estimated()
		s.ActualHours += t.Actual()

		switch t.Status {
		case model.StatusPending:
			s.Pending++
		case model.StatusInProgress:
			s.InProgress++
		case model.StatusInReview:
			s.InReview++
		case model.StatusCompleted:
			s.Completed++
		}

		if t.Done() {
			s.CompletedEstimated += t.Estimated()
			s.CompletedActual += t.Actual()
		} else {
			s.RemainingHours += t.Estimated()
		}
	}
	return s
}

// Count returns the number of tasks in the given status.
func (s Stats) Count(status model.Status) int {
	switch status {
	case model.StatusPending:
		return s.Pending
	case model.StatusInProgress:
		return s.InProgress
	case model.StatusInReview:
		return s.InReview
	case model.StatusCompleted:
		return s.Completed
	}
	return 0
}

// Open is the number of tasks that are not completed.
func (s Stats) Open() int {
	return s.Total - s.Completed
}

// CompletionRate is the completed share in percent, 0 for an empty set.
func (s Stats) CompletionRate() float64 {
	if s.Total == 0 {
		return 0
	}
	return float64(s.Completed) / float64(s.Total) * 100
}

// Efficiency compares estimated against actual hours of completed tasks.
// ok is false when no actual hours were recorded.
func (s Stats) Efficiency() (pct float64, ok bool) {
	return Efficiency(s.CompletedEstimated, s.CompletedActual)
}

// Efficiency returns estimated/actual*100. ok is false when actual is not positive.
func Efficiency(estimated, actual float64) (pct float64, ok bool) {
	if actual <= 0 {
		return 0, false
	}
	return estimated / actual * 100, true
}

// TaskEfficiency is the efficiency of a single task with both an estimate and recorded hours.
func TaskEfficiency(t model.Task) (float64, bool) {
	if t.EstimatedHours == nil || t.ActualHours == nil {
		return 0, false
	}
	return Efficiency(*t.EstimatedHours, *t.ActualHours)
}

// Ranked pairs a task with its efficiency.
type Ranked struct {
	Task       model.Task
	Efficiency float64
}

// TopByEfficiency returns up to n tasks ordered by efficiency, highest first.
// Tasks without a measurable efficiency are skipped; ties keep input order.
func TopByEfficiency(tasks []model.Task, n int) []Ranked {
	var ranked []Ranked
	for _, t := range tasks {
		if eff, ok := TaskEfficiency(t); ok {
			ranked = append(ranked, Ranked{Task: t, Efficiency: eff})
		}
	}
	slices.SortStableFunc(ranked, func(a, b Ranked) int {
		return cmp.Compare(b.Efficiency, a.Efficiency)
	})
	if n >= 0 && len(ranked) > n {
		ranked = ranked[:n]
	}
	return ranked
}

// DeveloperStats is the Stats of the tasks assigned to one user.
type DeveloperStats struct {
	UserID int64
	Stats  Stats
}

// ByDeveloper groups assigned tasks per user in first-seen order.
// Unassigned tasks are ignored.
func ByDeveloper(tasks []model.Task) []DeveloperStats {
	index := make(map[int64]int)
	var groups [][]model.Task
	var ids []int64

	for _, t := range tasks {
		if t.AssignedTo == nil {
			continue
		}
		id := *t.AssignedTo
		i, ok := index[id]
		if !ok {
			i = len(groups)
			index[id] = i
			groups = append(groups, nil)
			ids = append(ids, id)
		}
		groups[i] = append(groups[i], t)
	}

	out := make([]DeveloperStats, len(groups))
	for i, g := range groups {
		out[i] = DeveloperStats{UserID: ids[i], Stats: Summarize(g)}
	}
	return out
}

// TopByCompleted ranks developers by completed task count, highest first.
// Developers with nothing completed are left out; ties keep first-seen order.
func TopByCompleted(tasks []model.Task, n int) []DeveloperStats {
	var out []DeveloperStats
	for _, d := range ByDeveloper(tasks) {
		if d.Stats.Completed > 0 {
			out = append(out, d)
		}
	}
	slices.SortStableFunc(out, func(a, b DeveloperStats) int {
		return cmp.Compare(b.Stats.Completed, a.Stats.Completed)
	})
	if n >= 0 && len(out) > n {
		out = out[:n]
	}
	return out
}
