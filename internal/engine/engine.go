// Package engine glues the classifier, task lifecycle, reminder parser and
// reply templates together around one session.
package engine

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/tgienger/double/internal/convo"
	"github.com/tgienger/double/internal/intent"
	"github.com/tgienger/double/internal/models"
	"github.com/tgienger/double/internal/reminder"
	"github.com/tgienger/double/internal/reply"
	"github.com/tgienger/double/internal/tasks"
)

// ErrTaskNotFound is returned when completing a task that is not active.
var ErrTaskNotFound = errors.New("task not found")

// Store is the session persistence boundary. Load returns nil without an
// error when nothing has been saved yet.
type Store interface {
	Load(ctx context.Context) (*models.Session, error)
	Save(ctx context.Context, s *models.Session) error
}

// Options configures an Engine. Zero values select defaults.
type Options struct {
	Clock          func() time.Time
	Picker         reply.Picker
	Classifier     *intent.Classifier
	Logger         *zerolog.Logger
	ReminderOffset time.Duration
	TaskDue        time.Duration
}

// Reply is the outcome of one unit of work.
type Reply struct {
	Intent    models.Intent    `json:"intent,omitempty"`
	Messages  []models.Message `json:"messages"`
	FollowUps []reply.Line     `json:"-"` // not yet in the transcript
	ShowStats bool             `json:"showStats,omitempty"`
	Completed *models.Task     `json:"completed,omitempty"`
}

// Engine owns the session. All methods are safe for concurrent use; every
// mutation is serialized through one mutex and persisted afterwards.
type Engine struct {
	mu sync.Mutex

	store      Store
	now        func() time.Time
	classifier *intent.Classifier
	replies    *reply.Generator
	reminders  *reminder.Parser
	taskDue    time.Duration
	log        zerolog.Logger

	userName   string
	isSetup    bool
	tasks      *tasks.Manager
	mode       *convo.Machine
	transcript []models.Message
	alarms     []models.Alarm
}

// New creates an engine and restores the session from store. A load
// failure is logged and the engine starts from an empty session.
func New(ctx context.Context, store Store, opts Options) *Engine {
	e := &Engine{
		store:      store,
		now:        opts.Clock,
		classifier: opts.Classifier,
		replies:    reply.New(opts.Picker),
		reminders:  reminder.New(opts.ReminderOffset),
		taskDue:    opts.TaskDue,
		log:        zerolog.Nop(),
	}
	if e.now == nil {
		e.now = time.Now
	}
	if e.classifier == nil {
		e.classifier = intent.New(nil)
	}
	if e.taskDue <= 0 {
		e.taskDue = tasks.DefaultDue
	}
	if opts.Logger != nil {
		e.log = opts.Logger.With().Str("component", "engine").Logger()
	}

	var saved *models.Session
	if store != nil {
		s, err := store.Load(ctx)
		if err != nil {
			e.log.Error().Err(err).Msg("failed to load session, starting fresh")
		}
		saved = s
	}
	e.restore(saved)
	return e
}

func (e *Engine) restore(s *models.Session) {
	if s == nil {
		s = &models.Session{}
	}
	s.Normalize()

	e.userName = s.UserName
	e.isSetup = s.IsSetup
	e.tasks = tasks.Restore(s.ActiveTasks, s.CompletedTasks, s.AllTasks)
	e.tasks.SetClock(e.now)
	e.mode = convo.New(s.UserName, s.Mode)
	e.transcript = append([]models.Message{}, s.Transcript...)
	e.alarms = append([]models.Alarm{}, s.Alarms...)
}

// Start emits the greeting for a user who has not finished setup and the
// daily check-in when the engine starts during a check-in hour. The
// check-in is sent at most once per clock hour.
func (e *Engine) Start(ctx context.Context) []models.Message {
	e.mu.Lock()
	defer e.mu.Unlock()

	var out []models.Message
	if e.mode.Current() == models.ModeSetup && len(e.transcript) == 0 {
		out = append(out, e.appendLines(reply.Greeting())...)
	}
	now := e.now()
	if kind, ok := reply.CheckInForHour(now.Hour()); ok {
		text, _ := reply.CheckInText(kind)
		if !e.sentThisHour(text, now) {
			out = append(out, e.appendLines([]reply.Line{{Text: text}})...)
		}
	}
	if len(out) > 0 {
		e.persist(ctx)
	}
	return out
}

// sentThisHour reports whether the assistant already said text during the
// hour containing now.
func (e *Engine) sentThisHour(text string, now time.Time) bool {
	hour := now.Truncate(time.Hour)
	for i := len(e.transcript) - 1; i >= 0; i-- {
		m := e.transcript[i]
		if m.Timestamp.Before(hour) {
			return false
		}
		if m.Sender == models.SenderAssistant && m.Text == text {
			return true
		}
	}
	return false
}

// Receive appends a user message to the transcript. Blank input is ignored
// and reported as false.
func (e *Engine) Receive(ctx context.Context, text string) (models.Message, bool) {
	if strings.TrimSpace(text) == "" {
		return models.Message{}, false
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	msg := e.appendMessage(text, models.SenderUser, false)
	e.persist(ctx)
	return msg, true
}

// Respond classifies text and dispatches it to exactly one handler. Reply
// messages are in the transcript when Respond returns; follow-ups are not.
func (e *Engine) Respond(ctx context.Context, text string) Reply {
	e.mu.Lock()
	defer e.mu.Unlock()

	r := e.respond(text)
	e.persist(ctx)
	return r
}

// Send runs one full turn synchronously, follow-ups included. It returns
// false for blank input, which never reaches the classifier.
func (e *Engine) Send(ctx context.Context, text string) (Reply, bool) {
	if strings.TrimSpace(text) == "" {
		return Reply{}, false
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	e.appendMessage(text, models.SenderUser, false)
	r := e.respond(text)
	r.Messages = append(r.Messages, e.appendLines(r.FollowUps)...)
	r.FollowUps = nil
	e.persist(ctx)
	return r, true
}

func (e *Engine) respond(text string) Reply {
	mode := e.mode.Current()
	kind := e.classifier.Classify(text, mode)
	e.log.Debug().
		Str("intent", string(kind)).
		Str("mode", string(mode)).
		Func(func(ev *zerolog.Event) { ev.Strs("rules", e.classifier.Matching(text)) }).
		Msg("classified message")

	r := Reply{Intent: kind}
	switch kind {
	case models.IntentSetup:
		r.Messages, r.FollowUps = e.handleSetup(text)
	case models.IntentTask:
		r.Messages = e.handleTasks(text)
	default:
		if kind == models.IntentAlarm {
			r.Messages = e.handleReminder(text)
		}
		if kind == models.IntentStats {
			r.ShowStats = true
		}
		if out := e.replies.Generate(kind, text, e.snapshot()); out != "" {
			r.Messages = append(r.Messages, e.appendMessage(out, models.SenderAssistant, false))
		}
	}
	return r
}

func (e *Engine) handleSetup(text string) ([]models.Message, []reply.Line) {
	name := strings.TrimSpace(text)
	if err := e.mode.CompleteSetup(); err != nil {
		e.log.Warn().Err(err).Msg("setup handled outside setup mode")
	}
	e.userName = name
	e.isSetup = true
	e.log.Info().Str("user", name).Msg("setup completed")
	return e.appendLines(reply.Welcome(name)), reply.WelcomeFollowUp()
}

func (e *Engine) handleTasks(text string) []models.Message {
	created := tasks.ExtractDue(text, e.now(), e.taskDue)
	n := e.tasks.AddTasks(created)
	e.mode.Settle()
	e.log.Info().Int("count", n).Msg("tasks added")
	return e.appendLines(reply.TasksAdded(created))
}

func (e *Engine) handleReminder(text string) []models.Message {
	alarm, ok := e.reminders.Parse(text, e.now())
	if !ok {
		return e.appendLines([]reply.Line{{Text: reply.ReminderHelp}})
	}
	e.alarms = append(e.alarms, alarm)
	e.log.Info().Str("alarm", alarm.ID).Time("time", alarm.Time).Msg("reminder set")
	return e.appendLines([]reply.Line{{Text: reply.ReminderSet}})
}

// CompleteTask completes the active task with id and celebrates it. The
// "all done" lines, when the last task was completed, are returned as
// follow-ups. An unknown id changes nothing and returns ErrTaskNotFound.
func (e *Engine) CompleteTask(ctx context.Context, id string) (Reply, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	c, ok := e.tasks.CompleteTask(id)
	if !ok {
		e.log.Debug().Str("task", id).Msg("complete: task not found")
		return Reply{}, ErrTaskNotFound
	}

	task := c.Task
	r := Reply{Completed: &task}
	r.Messages = e.appendLines([]reply.Line{{Text: e.replies.Celebrate(task)}})
	if c.AllDone {
		r.FollowUps = reply.AllDone()
	}
	e.persist(ctx)
	return r, nil
}

// Emit appends assistant lines to the transcript.
func (e *Engine) Emit(ctx context.Context, lines []reply.Line) []models.Message {
	if len(lines) == 0 {
		return nil
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	out := e.appendLines(lines)
	e.persist(ctx)
	return out
}

// ToggleMode switches between normal and task-adding.
func (e *Engine) ToggleMode(ctx context.Context) (models.Mode, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	mode, err := e.mode.Toggle()
	if err != nil {
		return mode, err
	}
	e.persist(ctx)
	return mode, nil
}

// CheckIn appends the morning or evening check-in message.
func (e *Engine) CheckIn(ctx context.Context, kind string) (models.Message, bool) {
	text, ok := reply.CheckInText(kind)
	if !ok {
		return models.Message{}, false
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	msg := e.appendMessage(text, models.SenderAssistant, false)
	e.persist(ctx)
	return msg, true
}

// MatchTask finds the active task best matching query.
func (e *Engine) MatchTask(query string) (models.Task, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.tasks.Match(query)
}

// Stats returns the current task statistics.
func (e *Engine) Stats() models.Stats {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.tasks.Stats()
}

// Mode returns the current conversation mode.
func (e *Engine) Mode() models.Mode {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.mode.Current()
}

// Snapshot returns a copy of the full session.
func (e *Engine) Snapshot() models.Session {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.session()
}

// Close persists the session one last time.
func (e *Engine) Close(ctx context.Context) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.persist(ctx)
}

func (e *Engine) session() models.Session {
	return models.Session{
		UserName:       e.userName,
		IsSetup:        e.isSetup,
		ActiveTasks:    e.tasks.Active(),
		CompletedTasks: e.tasks.Completed(),
		AllTasks:       e.tasks.All(),
		Transcript:     append([]models.Message{}, e.transcript...),
		Alarms:         append([]models.Alarm{}, e.alarms...),
		Mode:           e.mode.Current(),
	}
}

func (e *Engine) snapshot() reply.Snapshot {
	return reply.Snapshot{UserName: e.userName, Stats: e.tasks.Stats()}
}

func (e *Engine) appendMessage(text string, sender models.Sender, isTask bool) models.Message {
	msg := models.Message{
		ID:        uuid.NewString(),
		Text:      text,
		Sender:    sender,
		Timestamp: e.now(),
		IsTask:    isTask,
	}
	e.transcript = append(e.transcript, msg)
	return msg
}

func (e *Engine) appendLines(lines []reply.Line) []models.Message {
	out := make([]models.Message, 0, len(lines))
	for _, l := range lines {
		out = append(out, e.appendMessage(l.Text, models.SenderAssistant, l.IsTask))
	}
	return out
}

// persist saves the session. Failures are logged; the in-memory session
// stays authoritative.
func (e *Engine) persist(ctx context.Context) {
	if e.store == nil {
		return
	}
	s := e.session()
	if err := e.store.Save(ctx, &s); err != nil {
		e.log.Error().Err(err).Msg("failed to save session")
	}
}
