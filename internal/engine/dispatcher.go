package engine

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/tgienger/double/internal/models"
	"github.com/tgienger/double/internal/reply"
)

// Default typing delays.
const (
	DefaultReplyDelay    = 800 * time.Millisecond
	DefaultFollowUpDelay = 1500 * time.Millisecond
)

// Event is delivered to the emit callback whenever the transcript grows.
type Event struct {
	Intent    models.Intent
	Messages  []models.Message
	ShowStats bool
	Err       error
}

// DispatcherOptions configures a Dispatcher. Zero delays select defaults.
type DispatcherOptions struct {
	ReplyDelay    time.Duration
	FollowUpDelay time.Duration
	Logger        *zerolog.Logger
}

type requestKind int

const (
	requestMessage requestKind = iota
	requestComplete
	requestCheckIn
)

type request struct {
	kind requestKind
	arg  string
}

// job is deferred work. run may return follow-up jobs which are queued
// ahead of everything else.
type job struct {
	at  time.Time
	run func(ctx context.Context) []job
}

// Dispatcher serializes user input through one goroutine and delays
// assistant replies so they read like typing. Replies come out in the
// order their messages were submitted.
type Dispatcher struct {
	engine        *Engine
	emit          func(Event)
	replyDelay    time.Duration
	followUpDelay time.Duration
	log           zerolog.Logger

	mu      sync.Mutex
	inbox   []request
	stopped bool
	wake    chan struct{}
}

// NewDispatcher creates a dispatcher for e. emit is called from the loop
// goroutine and may block; Submit, Complete and CheckIn never wait on it.
func NewDispatcher(e *Engine, emit func(Event), opts DispatcherOptions) *Dispatcher {
	d := &Dispatcher{
		engine:        e,
		emit:          emit,
		replyDelay:    opts.ReplyDelay,
		followUpDelay: opts.FollowUpDelay,
		log:           zerolog.Nop(),
		wake:          make(chan struct{}, 1),
	}
	if d.replyDelay <= 0 {
		d.replyDelay = DefaultReplyDelay
	}
	if d.followUpDelay <= 0 {
		d.followUpDelay = DefaultFollowUpDelay
	}
	if d.emit == nil {
		d.emit = func(Event) {}
	}
	if opts.Logger != nil {
		d.log = opts.Logger.With().Str("component", "dispatcher").Logger()
	}
	return d
}

// Submit queues a user message. Blank input and submissions after the loop
// stopped are rejected.
func (d *Dispatcher) Submit(text string) bool {
	if strings.TrimSpace(text) == "" {
		return false
	}
	return d.send(request{kind: requestMessage, arg: text})
}

// Complete completes a task right away; the celebration is not delayed.
func (d *Dispatcher) Complete(id string) bool {
	return d.send(request{kind: requestComplete, arg: id})
}

// CheckIn appends a check-in message from the loop.
func (d *Dispatcher) CheckIn(kind string) bool {
	return d.send(request{kind: requestCheckIn, arg: kind})
}

func (d *Dispatcher) send(r request) bool {
	d.mu.Lock()
	if d.stopped {
		d.mu.Unlock()
		return false
	}
	d.inbox = append(d.inbox, r)
	d.mu.Unlock()

	select {
	case d.wake <- struct{}{}:
	default:
	}
	return true
}

// take drains the inbox in arrival order
func (d *Dispatcher) take() []request {
	d.mu.Lock()
	defer d.mu.Unlock()
	reqs := d.inbox
	d.inbox = nil
	return reqs
}

func (d *Dispatcher) stop() {
	d.mu.Lock()
	d.stopped = true
	d.inbox = nil
	d.mu.Unlock()
}

// Run processes requests until ctx is cancelled. Pending replies are
// dropped on cancellation.
func (d *Dispatcher) Run(ctx context.Context) error {
	defer d.stop()

	var (
		queue []job
		timer *time.Timer
	)
	defer func() {
		if timer != nil {
			timer.Stop()
		}
	}()

	for {
		var fire <-chan time.Time
		if len(queue) > 0 {
			wait := time.Until(queue[0].at)
			if timer == nil {
				timer = time.NewTimer(wait)
			} else {
				timer.Reset(wait)
			}
			fire = timer.C
		}

		select {
		case <-ctx.Done():
			if len(queue) > 0 {
				d.log.Debug().Int("pending", len(queue)).Msg("dropping pending replies")
			}
			return ctx.Err()

		case <-d.wake:
			if timer != nil {
				timer.Stop()
			}
			for _, r := range d.take() {
				queue = append(queue, d.handle(ctx, r)...)
			}

		case <-fire:
			head := queue[0]
			queue = queue[1:]
			if next := head.run(ctx); len(next) > 0 {
				queue = append(next, queue...)
			}
		}
	}
}

func (d *Dispatcher) handle(ctx context.Context, r request) []job {
	switch r.kind {
	case requestMessage:
		msg, ok := d.engine.Receive(ctx, r.arg)
		if !ok {
			return nil
		}
		d.emit(Event{Messages: []models.Message{msg}})
		return []job{{at: time.Now().Add(d.replyDelay), run: d.replyJob(r.arg)}}

	case requestComplete:
		res, err := d.engine.CompleteTask(ctx, r.arg)
		if err != nil {
			d.log.Debug().Err(err).Str("task", r.arg).Msg("complete failed")
			d.emit(Event{Err: err})
			return nil
		}
		d.emit(Event{Messages: res.Messages})
		if len(res.FollowUps) == 0 {
			return nil
		}
		return []job{d.followUp(res.FollowUps)}

	case requestCheckIn:
		if msg, ok := d.engine.CheckIn(ctx, r.arg); ok {
			d.emit(Event{Messages: []models.Message{msg}})
		}
	}
	return nil
}

func (d *Dispatcher) replyJob(text string) func(context.Context) []job {
	return func(ctx context.Context) []job {
		res := d.engine.Respond(ctx, text)
		d.emit(Event{Intent: res.Intent, Messages: res.Messages, ShowStats: res.ShowStats})
		if len(res.FollowUps) == 0 {
			return nil
		}
		return []job{d.followUp(res.FollowUps)}
	}
}

func (d *Dispatcher) followUp(lines []reply.Line) job {
	return job{
		at: time.Now().Add(d.followUpDelay),
		run: func(ctx context.Context) []job {
			d.emit(Event{Messages: d.engine.Emit(ctx, lines)})
			return nil
		},
	}
}
