// Package tasks extracts tasks from free text and tracks their lifecycle.
package tasks

import (
	"math"
	"time"

	"github.com/sahilm/fuzzy"

	"github.com/tgienger/double/internal/models"
)

// Completion is the outcome of completing an active task.
type Completion struct {
	Task    models.Task
	AllDone bool // no active tasks remain
}

// Manager owns the active, completed and historical task collections.
// It is not safe for concurrent use; callers serialize access.
type Manager struct {
	active    []models.Task
	completed []models.Task
	all       []models.Task
	now       func() time.Time
}

// NewManager creates an empty manager.
func NewManager() *Manager {
	return &Manager{now: time.Now}
}

// Restore creates a manager from persisted collections.
func Restore(active, completed, all []models.Task) *Manager {
	m := NewManager()
	m.active = append([]models.Task(nil), active...)
	m.completed = append([]models.Task(nil), completed...)
	m.all = append([]models.Task(nil), all...)
	return m
}

// SetClock overrides the time source used for completion timestamps.
func (m *Manager) SetClock(now func() time.Time) {
	m.now = now
}

// AddTasks appends tasks to the active and historical collections and
// returns how many were added.
func (m *Manager) AddTasks(tasks []models.Task) int {
	m.active = append(m.active, tasks...)
	m.all = append(m.all, tasks...)
	return len(tasks)
}

// CompleteTask marks the active task with the given id as completed. It
// reports false, leaving state untouched, when no active task has that id.
func (m *Manager) CompleteTask(id string) (Completion, bool) {
	idx := -1
	for i, t := range m.active {
		if t.ID == id {
			idx = i
			break
		}
	}
	if idx < 0 {
		return Completion{}, false
	}

	done := m.active[idx]
	completedAt := m.now()
	done.Completed = true
	done.CompletedAt = &completedAt

	m.active = append(m.active[:idx:idx], m.active[idx+1:]...)
	m.completed = append(m.completed, done)
	for i := range m.all {
		if m.all[i].ID == id {
			m.all[i] = done
			break
		}
	}

	return Completion{Task: done, AllDone: len(m.active) == 0}, true
}

// Stats derives progress counts. The success rate is zero when there are
// no tasks at all.
func (m *Manager) Stats() models.Stats {
	s := models.Stats{
		Completed: len(m.completed),
		Pending:   len(m.active),
		Total:     len(m.all),
	}
	if s.Total > 0 {
		s.SuccessRate = int(math.Round(float64(s.Completed) / float64(s.Total) * 100))
	}
	return s
}

// Match returns the active task whose text best matches query.
func (m *Manager) Match(query string) (models.Task, bool) {
	if query == "" || len(m.active) == 0 {
		return models.Task{}, false
	}
	matches := fuzzy.FindFrom(query, activeSource(m.active))
	if len(matches) == 0 {
		return models.Task{}, false
	}
	return m.active[matches[0].Index], true
}

// Active returns a copy of the active tasks in creation order.
func (m *Manager) Active() []models.Task {
	return append([]models.Task{}, m.active...)
}

// Completed returns a copy of the completed tasks in completion order.
func (m *Manager) Completed() []models.Task {
	return append([]models.Task{}, m.completed...)
}

// All returns a copy of every task ever created.
func (m *Manager) All() []models.Task {
	return append([]models.Task{}, m.all...)
}

// activeSource adapts tasks to fuzzy.Source
type activeSource []models.Task

func (s activeSource) String(i int) string { return s[i].Text }
func (s activeSource) Len() int            { return len(s) }
