// Package seed loads users, sprints and tasks from a YAML fixture file.
package seed

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"golang.org/x/crypto/bcrypt"
	"gopkg.in/yaml.v3"

	"github.com/byronguina/sprintbot/internal/db"
	"github.com/byronguina/sprintbot/internal/model"
)

// Fixtures is the fixture file layout. Tasks refer to users by username and
// to sprints by name.
type Fixtures struct {
	Users   []UserFixture   `yaml:"users"`
	Sprints []SprintFixture `yaml:"sprints"`
	Tasks   []TaskFixture   `yaml:"tasks"`
}

type UserFixture struct {
	Username string `yaml:"username"`
	Name     string `yaml:"name"`
	Role     string `yaml:"role"`
	Phone    string `yaml:"phone"`
	Password string `yaml:"password"`
}

type SprintFixture struct {
	Name   string `yaml:"name"`
	Start  string `yaml:"start"`
	End    string `yaml:"end"`
	Status string `yaml:"status"`
}

type TaskFixture struct {
	Description    string   `yaml:"description"`
	Steps          string   `yaml:"steps"`
	Status         string   `yaml:"status"`
	Priority       string   `yaml:"priority"`
	Assignee       string   `yaml:"assignee"`
	Creator        string   `yaml:"creator"`
	Sprint         string   `yaml:"sprint"`
	EstimatedHours *float64 `yaml:"estimated_hours"`
	ActualHours    *float64 `yaml:"actual_hours"`
}

// Store is what Apply writes to.
type Store interface {
	CreateUser(ctx context.Context, u *model.User) error
	GetUserByUsername(ctx context.Context, username string) (*model.User, error)
	CreateSprint(ctx context.Context, s *model.Sprint) error
	ListSprints(ctx context.Context) ([]model.Sprint, error)
	CreateTasks(ctx context.Context, tasks []*model.Task) error
}

// Result counts what Apply created. Users and sprints that already existed
// are reused, not counted.
type Result struct {
	Users   int
	Sprints int
	Tasks   int
}

// Parse decodes fixtures, rejecting unknown fields.
func Parse(r io.Reader) (*Fixtures, error) {
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)

	var fx Fixtures
	if err := dec.Decode(&fx); err != nil {
		if errors.Is(err, io.EOF) {
			return &fx, nil
		}
		return nil, fmt.Errorf("failed to parse fixtures: %w", err)
	}
	return &fx, nil
}

// HashPassword bcrypt-hashes a plain password. An empty password stays empty.
func HashPassword(plain string, cost int) (string, error) {
	if plain == "" {
		return "", nil
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(plain), cost)
	if err != nil {
		return "", fmt.Errorf("failed to hash password: %w", err)
	}
	return string(hash), nil
}

// Apply writes fixtures to the store. Passwords are hashed with the given
// bcrypt cost. All tasks are created in one transaction.
func Apply(ctx context.Context, store Store, fx *Fixtures, cost int) (Result, error) {
	var res Result

	users := make(map[string]int64, len(fx.Users))
	for i, uf := range fx.Users {
		id, created, err := applyUser(ctx, store, uf, cost)
		if err != nil {
			return res, fmt.Errorf("user %d (%s): %w", i+1, uf.Username, err)
		}
		users[uf.Username] = id
		if created {
			res.Users++
		}
	}

	existing, err := store.ListSprints(ctx)
	if err != nil {
		return res, fmt.Errorf("failed to list sprints: %w", err)
	}
	sprints := make(map[string]int64, len(existing)+len(fx.Sprints))
	for _, s := range existing {
		sprints[s.Name] = s.ID
	}
	for i, sf := range fx.Sprints {
		if _, ok := sprints[sf.Name]; ok {
			continue
		}
		s, err := sf.sprint()
		if err != nil {
			return res, fmt.Errorf("sprint %d (%s): %w", i+1, sf.Name, err)
		}
		if err := store.CreateSprint(ctx, s); err != nil {
			return res, fmt.Errorf("sprint %d (%s): %w", i+1, sf.Name, err)
		}
		sprints[s.Name] = s.ID
		res.Sprints++
	}

	tasks := make([]*model.Task, 0, len(fx.Tasks))
	for i, tf := range fx.Tasks {
		t, err := tf.task(ctx, store, users, sprints)
		if err != nil {
			return res, fmt.Errorf("task %d (%s): %w", i+1, tf.Description, err)
		}
		tasks = append(tasks, t)
	}
	if len(tasks) > 0 {
		if err := store.CreateTasks(ctx, tasks); err != nil {
			return res, fmt.Errorf("failed to create tasks: %w", err)
		}
	}
	res.Tasks = len(tasks)
	return res, nil
}

func applyUser(ctx context.Context, store Store, uf UserFixture, cost int) (int64, bool, error) {
	u, err := store.GetUserByUsername(ctx, uf.Username)
	if err == nil {
		return u.ID, false, nil
	}
	if !db.IsNotFound(err) {
		return 0, false, err
	}

	role, err := model.ParseRole(uf.Role)
	if err != nil {
		return 0, false, err
	}
	hash, err := HashPassword(uf.Password, cost)
	if err != nil {
		return 0, false, err
	}
	name := uf.Name
	if name == "" {
		name = uf.Username
	}
	u = &model.User{Username: uf.Username, Name: name, Role: role, Phone: uf.Phone, Password: hash}
	if err := store.CreateUser(ctx, u); err != nil {
		return 0, false, err
	}
	return u.ID, true, nil
}

func (sf SprintFixture) sprint() (*model.Sprint, error) {
	start, err := time.Parse(model.DateLayout, sf.Start)
	if err != nil {
		return nil, fmt.Errorf("bad start date: %w", err)
	}
	end, err := time.Parse(model.DateLayout, sf.End)
	if err != nil {
		return nil, fmt.Errorf("bad end date: %w", err)
	}
	s := &model.Sprint{Name: sf.Name, StartDate: start, EndDate: end}
	if sf.Status != "" {
		if s.Status, err = model.ParseSprintStatus(strings.ToUpper(sf.Status)); err != nil {
			return nil, err
		}
	}
	return s, nil
}

func (tf TaskFixture) task(ctx context.Context, store Store, users, sprints map[string]int64) (*model.Task, error) {
	t := &model.Task{
		Description:    tf.Description,
		Steps:          tf.Steps,
		EstimatedHours: tf.EstimatedHours,
		ActualHours:    tf.ActualHours,
	}

	var err error
	if tf.Status != "" {
		if t.Status, err = model.ParseStatus(tf.Status); err != nil {
			return nil, err
		}
	}
	if tf.Priority != "" {
		if t.Priority, err = model.ParsePriority(tf.Priority); err != nil {
			return nil, err
		}
	}

	if tf.Assignee != "" {
		id, err := lookupUser(ctx, store, users, tf.Assignee)
		if err != nil {
			return nil, fmt.Errorf("assignee: %w", err)
		}
		t.AssignedTo = &id
	}
	if tf.Creator != "" {
		if t.CreatedBy, err = lookupUser(ctx, store, users, tf.Creator); err != nil {
			return nil, fmt.Errorf("creator: %w", err)
		}
	}
	if tf.Sprint != "" {
		id, ok := sprints[tf.Sprint]
		if !ok {
			return nil, fmt.Errorf("unknown sprint %q", tf.Sprint)
		}
		t.SprintID = &id
	}
	return t, nil
}

// lookupUser resolves a username from the fixture file or the store.
func lookupUser(ctx context.Context, store Store, users map[string]int64, username string) (int64, error) {
	if id, ok := users[username]; ok {
		return id, nil
	}
	u, err := store.GetUserByUsername(ctx, username)
	if db.IsNotFound(err) {
		return 0, fmt.Errorf("unknown user %q", username)
	}
	if err != nil {
		return 0, err
	}
	users[username] = u.ID
	return u.ID, nil
}
