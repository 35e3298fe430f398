package tasks

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tgienger/double/internal/models"
)

func newTestManager(t *testing.T, input string) (*Manager, []models.Task) {
	t.Helper()
	m := NewManager()
	m.SetClock(func() time.Time { return fixedNow.Add(time.Hour) })
	created := Extract(input, fixedNow)
	require.Equal(t, len(created), m.AddTasks(created))
	return m, created
}

func TestAddTasks(t *testing.T) {
	m, created := newTestManager(t, "- buy milk\n- call mom")

	assert.Equal(t, created, m.Active())
	assert.Equal(t, created, m.All())
	assert.Empty(t, m.Completed())
	assert.Equal(t, 0, m.AddTasks(nil))
}

func TestCompleteTask(t *testing.T) {
	m, created := newTestManager(t, "- buy milk\n- call mom")
	totalBefore := len(m.All())

	c, ok := m.CompleteTask(created[0].ID)
	require.True(t, ok)
	assert.False(t, c.AllDone)
	assert.True(t, c.Task.Completed)
	require.NotNil(t, c.Task.CompletedAt)
	assert.Equal(t, fixedNow.Add(time.Hour), *c.Task.CompletedAt)

	assert.Equal(t, []string{"call mom"}, texts(m.Active()))
	assert.Equal(t, []string{"buy milk"}, texts(m.Completed()))
	assert.True(t, m.Completed()[0].Completed)

	all := m.All()
	assert.Len(t, all, totalBefore)
	assert.True(t, all[0].Completed, "historical record updated in place")
	assert.False(t, all[1].Completed)
}

func TestCompleteLastTask(t *testing.T) {
	m, created := newTestManager(t, "- buy milk\n- call mom")

	c, ok := m.CompleteTask(created[1].ID)
	require.True(t, ok)
	assert.False(t, c.AllDone)

	c, ok = m.CompleteTask(created[0].ID)
	require.True(t, ok)
	assert.True(t, c.AllDone)
	assert.Empty(t, m.Active())
}

func TestCompleteTaskIdempotent(t *testing.T) {
	m, created := newTestManager(t, "- buy milk\n- call mom")

	_, ok := m.CompleteTask(created[0].ID)
	require.True(t, ok)

	active, completed, all := m.Active(), m.Completed(), m.All()
	_, ok = m.CompleteTask(created[0].ID)
	assert.False(t, ok)
	assert.Equal(t, active, m.Active())
	assert.Equal(t, completed, m.Completed())
	assert.Equal(t, all, m.All())
}

func TestCompleteUnknownTask(t *testing.T) {
	m, _ := newTestManager(t, "- buy milk")

	c, ok := m.CompleteTask("missing")
	assert.False(t, ok)
	assert.Equal(t, Completion{}, c)
	assert.Len(t, m.Active(), 1)
	assert.Empty(t, m.Completed())
}

func TestStats(t *testing.T) {
	assert.Equal(t, models.Stats{}, NewManager().Stats())

	m, created := newTestManager(t, "- one task\n- two task\n- three task")
	_, ok := m.CompleteTask(created[0].ID)
	require.True(t, ok)

	assert.Equal(t, models.Stats{Completed: 1, Pending: 2, Total: 3, SuccessRate: 33}, m.Stats())

	_, ok = m.CompleteTask(created[1].ID)
	require.True(t, ok)
	assert.Equal(t, 67, m.Stats().SuccessRate)
}

func TestInvariantsAfterMixedOperations(t *testing.T) {
	m, created := newTestManager(t, "- alpha task\n- beta task\n- gamma task\n- delta task")
	for _, i := range []int{2, 0} {
		_, ok := m.CompleteTask(created[i].ID)
		require.True(t, ok)
	}

	active := map[string]bool{}
	for _, task := range m.Active() {
		assert.False(t, task.Completed)
		assert.Nil(t, task.CompletedAt)
		active[task.ID] = true
	}
	for _, task := range m.Completed() {
		assert.True(t, task.Completed)
		assert.NotNil(t, task.CompletedAt)
		assert.False(t, active[task.ID])
	}

	seen := map[string]int{}
	for _, task := range m.All() {
		seen[task.ID]++
	}
	assert.Len(t, seen, len(created))
	for id, n := range seen {
		assert.Equal(t, 1, n, id)
	}
	assert.Equal(t, []string{"gamma task", "alpha task"}, texts(m.Completed()))
}

func TestMatch(t *testing.T) {
	m, created := newTestManager(t, "- water the plants\n- call the dentist")

	got, ok := m.Match("dentist")
	require.True(t, ok)
	assert.Equal(t, created[1].ID, got.ID)

	_, ok = m.Match("zzzz")
	assert.False(t, ok)

	_, ok = m.Match("")
	assert.False(t, ok)
}

func TestRestore(t *testing.T) {
	m, created := newTestManager(t, "- buy milk\n- call mom")
	_, ok := m.CompleteTask(created[0].ID)
	require.True(t, ok)

	restored := Restore(m.Active(), m.Completed(), m.All())
	assert.Equal(t, m.Stats(), restored.Stats())
	assert.Equal(t, m.All(), restored.All())
}
