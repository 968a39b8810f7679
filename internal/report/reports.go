package report

import "github.com/byronguina/sprintbot/internal/model"

// SprintReport covers one sprint, optionally narrowed to one developer.
type SprintReport struct {
	Sprint    model.Sprint
	Developer *model.User
	Tasks     []model.Task
	Stats     Stats
}

// CompletedInSprint lists the completed tasks of a sprint.
func CompletedInSprint(sprint model.Sprint, tasks []model.Task) SprintReport {
	done := Filter(tasks, InSprint(sprint.ID), Completed)
	return SprintReport{Sprint: sprint, Tasks: done, Stats: Summarize(done)}
}

// TeamSprint aggregates every task of a sprint.
func TeamSprint(sprint model.Sprint, tasks []model.Task) SprintReport {
	in := Filter(tasks, InSprint(sprint.ID))
	return SprintReport{Sprint: sprint, Tasks: in, Stats: Summarize(in)}
}

// PersonalSprint aggregates the tasks one developer holds in a sprint.
func PersonalSprint(dev model.User, sprint model.Sprint, tasks []model.Task) SprintReport {
	mine := Filter(tasks, InSprint(sprint.ID), AssignedTo(dev.ID))
	return SprintReport{Sprint: sprint, Developer: &dev, Tasks: mine, Stats: Summarize(mine)}
}

// SprintCount is a completed/total pair for one sprint.
type SprintCount struct {
	SprintID  int64
	Completed int
	Total     int
}

// WeekReport covers the tasks created during one ISO week.
type WeekReport struct {
	Week      Week
	Developer *model.User
	Tasks     []model.Task
	Stats     Stats

	// ByDeveloper is filled for team reports.
	ByDeveloper []DeveloperStats
	// BySprint is filled for personal reports.
	BySprint []SprintCount
}

// TeamWeek aggregates every task created in the week.
func TeamWeek(week Week, tasks []model.Task) WeekReport {
	in := Filter(tasks, InWeek(week))
	return WeekReport{
		Week:        week,
		Tasks:       in,
		Stats:       Summarize(in),
		ByDeveloper: ByDeveloper(in),
	}
}

// PersonalWeek aggregates the developer's tasks created in the week.
func PersonalWeek(dev model.User, week Week, tasks []model.Task) WeekReport {
	mine := Filter(tasks, InWeek(week), AssignedTo(dev.ID))
	return WeekReport{
		Week:      week,
		Developer: &dev,
		Tasks:     mine,
		Stats:     Summarize(mine),
		BySprint:  bySprint(mine),
	}
}

func bySprint(tasks []model.Task) []SprintCount {
	index := make(map[int64]int)
	var out []SprintCount
	for _, t := range tasks {
		if t.SprintID == nil {
			continue
		}
		i, ok := index[*t.SprintID]
		if !ok {
			i = len(out)
			index[*t.SprintID] = i
			out = append(out, SprintCount{SprintID: *t.SprintID})
		}
		out[i].Total++
		if t.Done() {
			out[i].Completed++
		}
	}
	return out
}

// DeveloperSprintReport is what a developer sees for one sprint: their own
// numbers next to the team's.
type DeveloperSprintReport struct {
	Sprint           model.Sprint
	UserID           int64
	Mine             Stats
	Team             Stats
	ActiveDevelopers int
	Top              []DeveloperStats
}

// DeveloperSprint builds the developer view of a sprint. Top holds the three
// developers with the most completed tasks.
func DeveloperSprint(userID int64, sprint model.Sprint, tasks []model.Task) DeveloperSprintReport {
	in := Filter(tasks, InSprint(sprint.ID))
	return DeveloperSprintReport{
		Sprint:           sprint,
		UserID:           userID,
		Mine:             Summarize(Filter(in, AssignedTo(userID))),
		Team:             Summarize(in),
		ActiveDevelopers: len(ByDeveloper(in)),
		Top:              TopByCompleted(in, 3),
	}
}
