package format

import "github.com/byronguina/sprintbot/internal/model"

// Directory resolves ids to display names.
type Directory struct {
	Users   map[int64]model.User
	Sprints map[int64]model.Sprint
}

// NewDirectory indexes users and sprints by id.
func NewDirectory(users []model.User, sprints []model.Sprint) Directory {
	d := Directory{
		Users:   make(map[int64]model.User, len(users)),
		Sprints: make(map[int64]model.Sprint, len(sprints)),
	}
	for _, u := range users {
		d.Users[u.ID] = u
	}
	for _, s := range sprints {
		d.Sprints[s.ID] = s
	}
	return d
}

// UserName returns the user's name or "Sin asignar".
func (d Directory) UserName(id *int64) string {
	if id == nil {
		return "Sin asignar"
	}
	if u, ok := d.Users[*id]; ok {
		return u.Name
	}
	return "Sin asignar"
}

// SprintName returns the sprint's name or "Sin Sprint".
func (d Directory) SprintName(id *int64) string {
	if id == nil {
		return "Sin Sprint"
	}
	if s, ok := d.Sprints[*id]; ok {
		return s.Name
	}
	return "Sin Sprint"
}
