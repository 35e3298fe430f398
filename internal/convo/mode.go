// Package convo tracks the conversation mode: setup, then normal and
// task-adding toggled by the user.
package convo

import (
	"errors"

	"github.com/tgienger/double/internal/models"
)

var (
	// ErrSetupPending is returned when a transition requires setup to be done.
	ErrSetupPending = errors.New("setup not completed")
	// ErrSetupDone is returned when completing setup a second time.
	ErrSetupDone = errors.New("setup already completed")
)

// Machine owns the current conversation mode.
type Machine struct {
	mode models.Mode
}

// New returns the initial machine for a user. Without a user name the
// conversation starts in setup; otherwise the persisted mode is resumed,
// with setup and unknown values coerced to normal.
func New(userName string, persisted models.Mode) *Machine {
	if userName == "" {
		return &Machine{mode: models.ModeSetup}
	}
	switch persisted {
	case models.ModeTaskAdding:
		return &Machine{mode: models.ModeTaskAdding}
	default:
		return &Machine{mode: models.ModeNormal}
	}
}

// Current returns the current mode.
func (m *Machine) Current() models.Mode {
	return m.mode
}

// CompleteSetup leaves setup for normal. Setup is never re-entered.
func (m *Machine) CompleteSetup() error {
	if m.mode != models.ModeSetup {
		return ErrSetupDone
	}
	m.mode = models.ModeNormal
	return nil
}

// Toggle switches between normal and task-adding.
func (m *Machine) Toggle() (models.Mode, error) {
	switch m.mode {
	case models.ModeSetup:
		return m.mode, ErrSetupPending
	case models.ModeTaskAdding:
		m.mode = models.ModeNormal
	default:
		m.mode = models.ModeTaskAdding
	}
	return m.mode, nil
}

// Settle returns to normal after tasks were added.
func (m *Machine) Settle() {
	if m.mode != models.ModeSetup {
		m.mode = models.ModeNormal
	}
}
