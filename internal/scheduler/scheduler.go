package scheduler

import (
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"

	"github.com/tgienger/double/internal/config"
	"github.com/tgienger/double/internal/reply"
)

// Scheduler runs the daily check-in cron jobs
type Scheduler struct {
	cron    *cron.Cron
	fire    func(kind string)
	log     zerolog.Logger
	entries map[string]cron.EntryID
}

// New creates a scheduler calling fire with the check-in kind whenever a
// check-in is due. Disabled check-ins produce a scheduler with no jobs.
func New(cfg config.CheckInConfig, fire func(kind string), log zerolog.Logger, opts ...cron.Option) (*Scheduler, error) {
	s := &Scheduler{
		cron:    cron.New(opts...),
		fire:    fire,
		log:     log.With().Str("component", "scheduler").Logger(),
		entries: map[string]cron.EntryID{},
	}
	if !cfg.Enabled {
		return s, nil
	}

	jobs := []struct{ kind, spec string }{
		{reply.CheckInMorning, cfg.Morning},
		{reply.CheckInEvening, cfg.Evening},
	}
	for _, j := range jobs {
		if err := s.schedule(j.kind, j.spec); err != nil {
			return nil, err
		}
	}
	return s, nil
}

// schedule adds the check-in job for kind
func (s *Scheduler) schedule(kind, spec string) error {
	id, err := s.cron.AddFunc(spec, func() { s.Trigger(kind) })
	if err != nil {
		return fmt.Errorf("schedule %s check-in %q: %w", kind, spec, err)
	}
	s.entries[kind] = id
	return nil
}

// Trigger runs the check-in for kind immediately
func (s *Scheduler) Trigger(kind string) {
	s.log.Info().Str("kind", kind).Msg("check-in")
	s.fire(kind)
}

// Next returns when the check-in for kind next runs after from
func (s *Scheduler) Next(kind string, from time.Time) (time.Time, bool) {
	id, ok := s.entries[kind]
	if !ok {
		return time.Time{}, false
	}
	return s.cron.Entry(id).Schedule.Next(from), true
}

// NextCheckIn returns the earliest upcoming check-in after from
func (s *Scheduler) NextCheckIn(from time.Time) (kind string, at time.Time, ok bool) {
	for _, k := range []string{reply.CheckInMorning, reply.CheckInEvening} {
		next, scheduled := s.Next(k, from)
		if scheduled && (!ok || next.Before(at)) {
			kind, at, ok = k, next, true
		}
	}
	return kind, at, ok
}

// Start starts the scheduler
func (s *Scheduler) Start() {
	s.cron.Start()
	if kind, at, ok := s.NextCheckIn(time.Now()); ok {
		s.log.Debug().Str("kind", kind).Time("at", at).Msg("next check-in")
	}
}

// Stop stops the scheduler and waits for running jobs
func (s *Scheduler) Stop() {
	ctx := s.cron.Stop()
	<-ctx.Done()
}
