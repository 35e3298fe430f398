package engine

import (
	"bytes"
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tgienger/double/internal/convo"
	"github.com/tgienger/double/internal/models"
	"github.com/tgienger/double/internal/reply"
)

var fixedNow = time.Date(2024, 3, 1, 9, 30, 0, 0, time.UTC)

type memStore struct {
	mu      sync.Mutex
	session *models.Session
	saves   int
	loadErr error
	saveErr error
}

func (m *memStore) Load(context.Context) (*models.Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.loadErr != nil {
		return nil, m.loadErr
	}
	if m.session == nil {
		return nil, nil
	}
	s := *m.session
	return &s, nil
}

func (m *memStore) Save(_ context.Context, s *models.Session) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.saves++
	if m.saveErr != nil {
		return m.saveErr
	}
	c := *s
	m.session = &c
	return nil
}

func newTestEngine(t *testing.T, store Store, at time.Time) *Engine {
	t.Helper()
	return New(context.Background(), store, Options{
		Clock:  func() time.Time { return at },
		Picker: reply.FixedPicker(0),
	})
}

// setUp returns an engine that already completed setup as Sam.
func setUp(t *testing.T, store Store) *Engine {
	t.Helper()
	e := newTestEngine(t, store, fixedNow)
	e.Start(context.Background())
	_, ok := e.Send(context.Background(), "Sam")
	require.True(t, ok)
	return e
}

func texts(msgs []models.Message) []string {
	out := make([]string, len(msgs))
	for i, m := range msgs {
		out[i] = m.Text
	}
	return out
}

func TestStartGreetsNewUser(t *testing.T) {
	ctx := context.Background()
	e := newTestEngine(t, &memStore{}, fixedNow)

	got := e.Start(ctx)
	assert.Equal(t, []string{reply.Greeting()[0].Text, reply.Greeting()[1].Text}, texts(got))
	assert.Equal(t, models.ModeSetup, e.Mode())

	// Greeting is not repeated once the transcript has content
	assert.Empty(t, e.Start(ctx))
	assert.Len(t, e.Snapshot().Transcript, 2)
}

func TestStartCheckIn(t *testing.T) {
	store := &memStore{}
	setUp(t, store)

	evening := time.Date(2024, 3, 1, 20, 5, 0, 0, time.UTC)
	e := newTestEngine(t, store, evening)
	got := e.Start(context.Background())
	require.Len(t, got, 1)
	text, _ := reply.CheckInText(reply.CheckInEvening)
	assert.Equal(t, text, got[0].Text)
	assert.Equal(t, models.SenderAssistant, got[0].Sender)

	// A second start in the same hour does not repeat it
	again := newTestEngine(t, store, evening.Add(30*time.Minute))
	assert.Empty(t, again.Start(context.Background()))

	tomorrow := newTestEngine(t, store, evening.Add(24*time.Hour))
	assert.Len(t, tomorrow.Start(context.Background()), 1)
}

func TestSetupTurn(t *testing.T) {
	ctx := context.Background()
	e := newTestEngine(t, &memStore{}, fixedNow)
	e.Start(ctx)

	r, ok := e.Send(ctx, "  Sam  ")
	require.True(t, ok)
	assert.Equal(t, models.IntentSetup, r.Intent)
	assert.Len(t, r.Messages, len(reply.Welcome("Sam"))+len(reply.WelcomeFollowUp()))
	assert.Equal(t, "Nice to meet you, Sam! 🎉", r.Messages[0].Text)
	assert.Empty(t, r.FollowUps)

	s := e.Snapshot()
	assert.Equal(t, "Sam", s.UserName)
	assert.True(t, s.IsSetup)
	assert.Equal(t, models.ModeNormal, s.Mode)
	// greeting, user message, welcome burst, follow-up
	assert.Len(t, s.Transcript, 2+1+4)
	assert.Equal(t, models.SenderUser, s.Transcript[2].Sender)
}

func TestRespondKeepsFollowUpsPending(t *testing.T) {
	ctx := context.Background()
	e := newTestEngine(t, nil, fixedNow)
	e.Start(ctx)

	_, ok := e.Receive(ctx, "Sam")
	require.True(t, ok)
	r := e.Respond(ctx, "Sam")
	assert.Len(t, r.Messages, 3)
	require.Len(t, r.FollowUps, 1)
	assert.Len(t, e.Snapshot().Transcript, 2+1+3)

	e.Emit(ctx, r.FollowUps)
	assert.Len(t, e.Snapshot().Transcript, 2+1+4)
}

func TestBlankInputIgnored(t *testing.T) {
	ctx := context.Background()
	store := &memStore{}
	e := setUp(t, store)
	before := e.Snapshot()
	saves := store.saves

	_, ok := e.Send(ctx, "   \n\t")
	assert.False(t, ok)
	_, ok = e.Receive(ctx, "")
	assert.False(t, ok)

	assert.Empty(t, cmp.Diff(before, e.Snapshot()))
	assert.Equal(t, saves, store.saves)
}

func TestTaskTurn(t *testing.T) {
	ctx := context.Background()
	e := setUp(t, &memStore{})

	r, ok := e.Send(ctx, "1. Buy milk\n2. Call mom")
	require.True(t, ok)
	assert.Equal(t, models.IntentTask, r.Intent)
	assert.Equal(t, []string{
		"Perfect! I've added 2 tasks for you:",
		"1. Buy milk",
		"2. Call mom",
		"I'll help you stay on track! Need to set any reminders for these? 🔔",
	}, texts(r.Messages))
	assert.True(t, r.Messages[1].IsTask)
	assert.False(t, r.Messages[3].IsTask)

	s := e.Snapshot()
	require.Len(t, s.ActiveTasks, 2)
	assert.Equal(t, "Buy milk", s.ActiveTasks[0].Text)
	assert.Equal(t, fixedNow.Add(24*time.Hour), s.ActiveTasks[0].DueDate)
	assert.Equal(t, models.Stats{Pending: 2, Total: 2}, e.Stats())
}

func TestTaskAddingModeSettles(t *testing.T) {
	ctx := context.Background()
	e := setUp(t, &memStore{})

	mode, err := e.ToggleMode(ctx)
	require.NoError(t, err)
	assert.Equal(t, models.ModeTaskAdding, mode)

	r, _ := e.Send(ctx, "groceries and laundry")
	assert.Equal(t, models.IntentTask, r.Intent)
	assert.Equal(t, models.ModeNormal, e.Mode())
	require.Len(t, e.Snapshot().ActiveTasks, 1)
	assert.Equal(t, "groceries and laundry", e.Snapshot().ActiveTasks[0].Text)
}

func TestToggleDuringSetup(t *testing.T) {
	e := newTestEngine(t, &memStore{}, fixedNow)
	_, err := e.ToggleMode(context.Background())
	assert.ErrorIs(t, err, convo.ErrSetupPending)
	assert.Equal(t, models.ModeSetup, e.Mode())
}

func TestCompleteTask(t *testing.T) {
	ctx := context.Background()
	e := setUp(t, &memStore{})
	e.Send(ctx, "1. Buy milk\n2. Call mom")
	active := e.Snapshot().ActiveTasks

	r, err := e.CompleteTask(ctx, active[0].ID)
	require.NoError(t, err)
	require.NotNil(t, r.Completed)
	assert.True(t, r.Completed.Completed)
	assert.Equal(t, []string{`🎉 Boom! You crushed: "Buy milk"`}, texts(r.Messages))
	assert.Empty(t, r.FollowUps)

	r, err = e.CompleteTask(ctx, active[1].ID)
	require.NoError(t, err)
	assert.Equal(t, reply.AllDone(), r.FollowUps)

	assert.Equal(t, models.Stats{Completed: 2, Total: 2, SuccessRate: 100}, e.Stats())
}

func TestCompleteUnknownTask(t *testing.T) {
	ctx := context.Background()
	e := setUp(t, &memStore{})
	e.Send(ctx, "1. Buy milk")
	before := e.Snapshot()

	_, err := e.CompleteTask(ctx, "nope")
	assert.ErrorIs(t, err, ErrTaskNotFound)
	assert.Empty(t, cmp.Diff(before, e.Snapshot()))
}

func TestCompletionStatsAndDistraction(t *testing.T) {
	ctx := context.Background()
	e := setUp(t, &memStore{})

	r, _ := e.Send(ctx, "I finished the report")
	assert.Equal(t, models.IntentTaskCompletion, r.Intent)
	assert.Equal(t, []string{reply.CompletionPrompt}, texts(r.Messages))

	r, _ = e.Send(ctx, "show me my stats")
	assert.Equal(t, models.IntentStats, r.Intent)
	assert.True(t, r.ShowStats)
	require.Len(t, r.Messages, 1)
	assert.Contains(t, r.Messages[0].Text, "🏆 Success Rate: 0%")

	r, _ = e.Send(ctx, "watching youtube")
	assert.Equal(t, models.IntentDistraction, r.Intent)
	assert.False(t, r.ShowStats)
	require.Len(t, r.Messages, 1)
}

func TestReminderTurn(t *testing.T) {
	ctx := context.Background()
	e := setUp(t, &memStore{})

	r, _ := e.Send(ctx, "remind me in 2 hours")
	assert.Equal(t, models.IntentAlarm, r.Intent)
	assert.Equal(t, []string{reply.ReminderSet}, texts(r.Messages))
	alarms := e.Snapshot().Alarms
	require.Len(t, alarms, 1)
	assert.True(t, alarms[0].Active)
	assert.Equal(t, fixedNow.Add(time.Minute), alarms[0].Time)

	r, _ = e.Send(ctx, "remind me later")
	assert.Equal(t, []string{reply.ReminderHelp}, texts(r.Messages))
	assert.Len(t, e.Snapshot().Alarms, 1)
}

func TestCheckIn(t *testing.T) {
	ctx := context.Background()
	e := setUp(t, &memStore{})

	msg, ok := e.CheckIn(ctx, reply.CheckInMorning)
	require.True(t, ok)
	assert.Contains(t, msg.Text, "Good morning")

	_, ok = e.CheckIn(ctx, "noon")
	assert.False(t, ok)
}

func TestMatchTask(t *testing.T) {
	ctx := context.Background()
	e := setUp(t, &memStore{})
	e.Send(ctx, "1. Buy milk\n2. Call mom")

	task, ok := e.MatchTask("mom")
	require.True(t, ok)
	assert.Equal(t, "Call mom", task.Text)
}

func TestSessionRestores(t *testing.T) {
	ctx := context.Background()
	store := &memStore{}
	e := setUp(t, store)
	e.Send(ctx, "1. Buy milk\n2. Call mom")
	e.Send(ctx, "remind me in 1 hour")
	e.ToggleMode(ctx)
	e.CompleteTask(ctx, e.Snapshot().ActiveTasks[0].ID)

	restored := newTestEngine(t, store, fixedNow)
	assert.Empty(t, restored.Start(ctx))
	if diff := cmp.Diff(e.Snapshot(), restored.Snapshot()); diff != "" {
		t.Errorf("restored session mismatch (-want +got):\n%s", diff)
	}
	assert.Equal(t, models.ModeTaskAdding, restored.Mode())
}

func TestPersistenceFailuresAreLogged(t *testing.T) {
	ctx := context.Background()
	var buf bytes.Buffer
	log := zerolog.New(&buf)
	store := &memStore{
		loadErr: errors.New("disk on fire"),
		saveErr: errors.New("read-only"),
	}

	e := New(ctx, store, Options{Clock: func() time.Time { return fixedNow }, Logger: &log})
	assert.Contains(t, buf.String(), "failed to load session")
	assert.Equal(t, models.ModeSetup, e.Mode())

	r, ok := e.Send(ctx, "Sam")
	require.True(t, ok)
	assert.Equal(t, models.IntentSetup, r.Intent)
	assert.Contains(t, buf.String(), "failed to save session")
	assert.Equal(t, "Sam", e.Snapshot().UserName)
}

func TestClassificationLogsMatchedRules(t *testing.T) {
	ctx := context.Background()
	var buf bytes.Buffer
	log := zerolog.New(&buf).Level(zerolog.DebugLevel)
	e := New(ctx, &memStore{}, Options{Clock: func() time.Time { return fixedNow }, Logger: &log})
	e.Send(ctx, "Sam")

	buf.Reset()
	e.Send(ctx, "1. Buy milk")
	assert.Contains(t, buf.String(), `"rules":["list-marker"]`)
	assert.Contains(t, buf.String(), `"intent":"task"`)
}
