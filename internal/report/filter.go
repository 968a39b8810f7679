package report

import "github.com/byronguina/sprintbot/internal/model"

// Predicate selects tasks.
type Predicate func(model.Task) bool

// Filter returns the tasks matching every predicate, preserving order.
func Filter(tasks []model.Task, preds ...Predicate) []model.Task {
	var out []model.Task
next:
	for _, t := range tasks {
		for _, p := range preds {
			if !p(t) {
				continue next
			}
		}
		out = append(out, t)
	}
	return out
}

func InSprint(sprintID int64) Predicate {
	return func(t model.Task) bool { return t.InSprint(sprintID) }
}

func AssignedTo(userID int64) Predicate {
	return func(t model.Task) bool { return t.IsAssignedTo(userID) }
}

func Completed(t model.Task) bool { return t.Done() }

func Open(t model.Task) bool { return !t.Done() }

// Active excludes archived tasks.
func Active(t model.Task) bool { return !t.Archived }

// InWeek selects tasks created during the ISO week w.
func InWeek(w Week) Predicate {
	return func(t model.Task) bool {
		if t.CreatedAt.IsZero() {
			return false
		}
		year, week := t.CreatedAt.ISOWeek()
		return year == w.Year && week == w.Week
	}
}
