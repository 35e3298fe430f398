package engine

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/tgienger/double/internal/models"
	"github.com/tgienger/double/internal/reply"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

type harness struct {
	events chan Event
	cancel context.CancelFunc
	done   chan error
	d      *Dispatcher
}

func startDispatcher(t *testing.T, e *Engine) *harness {
	t.Helper()
	h := &harness{events: make(chan Event, 64), done: make(chan error, 1)}
	h.d = NewDispatcher(e, func(ev Event) { h.events <- ev }, DispatcherOptions{
		ReplyDelay:    5 * time.Millisecond,
		FollowUpDelay: 10 * time.Millisecond,
	})

	ctx, cancel := context.WithCancel(context.Background())
	h.cancel = cancel
	go func() { h.done <- h.d.Run(ctx) }()

	t.Cleanup(h.stop)
	return h
}

func (h *harness) stop() {
	h.cancel()
	<-h.done
}

func (h *harness) next(t *testing.T) Event {
	t.Helper()
	select {
	case ev := <-h.events:
		return ev
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for event")
		return Event{}
	}
}

func TestDispatcherSetupBurst(t *testing.T) {
	e := newTestEngine(t, &memStore{}, fixedNow)
	e.Start(context.Background())
	h := startDispatcher(t, e)

	require.True(t, h.d.Submit("Sam"))

	ev := h.next(t)
	require.Len(t, ev.Messages, 1)
	assert.Equal(t, models.SenderUser, ev.Messages[0].Sender)

	ev = h.next(t)
	assert.Equal(t, models.IntentSetup, ev.Intent)
	assert.Len(t, ev.Messages, 3)

	ev = h.next(t)
	assert.Equal(t, []string{reply.WelcomeFollowUp()[0].Text}, texts(ev.Messages))
}

func TestDispatcherKeepsOrder(t *testing.T) {
	e := setUp(t, &memStore{})
	h := startDispatcher(t, e)

	require.True(t, h.d.Submit("show me my stats"))
	require.True(t, h.d.Submit("1. Buy milk"))

	var users, replies []Event
	for len(replies) < 2 {
		ev := h.next(t)
		if len(ev.Messages) > 0 && ev.Messages[0].Sender == models.SenderUser {
			users = append(users, ev)
			continue
		}
		replies = append(replies, ev)
	}

	assert.Len(t, users, 2)
	assert.Equal(t, models.IntentStats, replies[0].Intent)
	assert.True(t, replies[0].ShowStats)
	assert.Equal(t, models.IntentTask, replies[1].Intent)
}

func TestDispatcherRejectsBlank(t *testing.T) {
	e := setUp(t, &memStore{})
	h := startDispatcher(t, e)

	assert.False(t, h.d.Submit("  "))
	select {
	case ev := <-h.events:
		t.Fatalf("unexpected event %+v", ev)
	case <-time.After(30 * time.Millisecond):
	}
}

func TestDispatcherCompletion(t *testing.T) {
	ctx := context.Background()
	e := setUp(t, &memStore{})
	e.Send(ctx, "1. Buy milk")
	id := e.Snapshot().ActiveTasks[0].ID
	h := startDispatcher(t, e)

	require.True(t, h.d.Complete("missing"))
	ev := h.next(t)
	assert.ErrorIs(t, ev.Err, ErrTaskNotFound)

	require.True(t, h.d.Complete(id))
	ev = h.next(t)
	assert.Equal(t, []string{`🎉 Boom! You crushed: "Buy milk"`}, texts(ev.Messages))

	ev = h.next(t)
	assert.Equal(t, []string{reply.AllDone()[0].Text, reply.AllDone()[1].Text}, texts(ev.Messages))
}

func TestDispatcherCheckIn(t *testing.T) {
	e := setUp(t, &memStore{})
	h := startDispatcher(t, e)

	require.True(t, h.d.CheckIn(reply.CheckInEvening))
	ev := h.next(t)
	require.Len(t, ev.Messages, 1)
	assert.Contains(t, ev.Messages[0].Text, "Evening check-in")
}

func TestDispatcherStopsOnCancel(t *testing.T) {
	e := setUp(t, &memStore{})
	received := make(chan Event, 1)
	d := NewDispatcher(e, func(ev Event) { received <- ev }, DispatcherOptions{ReplyDelay: time.Hour})

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- d.Run(ctx) }()

	require.True(t, d.Submit("hello there"))
	<-received
	cancel()
	assert.ErrorIs(t, <-done, context.Canceled)

	// Loop is gone; submissions are refused
	assert.False(t, d.Submit("anyone?"))
	transcript := e.Snapshot().Transcript
	assert.Equal(t, "hello there", transcript[len(transcript)-1].Text)
}

func TestSubmitDoesNotWaitForConsumer(t *testing.T) {
	e := setUp(t, &memStore{})
	events := make(chan Event) // nobody reads until the end
	h := &harness{events: events, done: make(chan error, 1)}
	h.d = NewDispatcher(e, func(ev Event) { events <- ev }, DispatcherOptions{
		ReplyDelay:    time.Millisecond,
		FollowUpDelay: time.Millisecond,
	})
	ctx, cancel := context.WithCancel(context.Background())
	h.cancel = cancel
	go func() { h.done <- h.d.Run(ctx) }()

	// The loop blocks inside emit on the first message; later submissions
	// must still return right away.
	submitted := make(chan struct{})
	go func() {
		defer close(submitted)
		for range 50 {
			h.d.Submit("x")
		}
		h.d.Complete("missing")
	}()
	select {
	case <-submitted:
	case <-time.After(2 * time.Second):
		t.Fatal("submit blocked on a busy consumer")
	}

	// Drain while stopping so the loop can leave emit
	go func() {
		for range events {
		}
	}()
	h.stop()
	close(events)
}
