package convo

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tgienger/double/internal/models"
)

func TestInitialMode(t *testing.T) {
	tests := []struct {
		name      string
		userName  string
		persisted models.Mode
		want      models.Mode
	}{
		{"no user", "", models.ModeNormal, models.ModeSetup},
		{"no user task mode", "", models.ModeTaskAdding, models.ModeSetup},
		{"user normal", "Sam", models.ModeNormal, models.ModeNormal},
		{"user task-adding", "Sam", models.ModeTaskAdding, models.ModeTaskAdding},
		{"user stale setup", "Sam", models.ModeSetup, models.ModeNormal},
		{"user missing mode", "Sam", "", models.ModeNormal},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, New(tt.userName, tt.persisted).Current())
		})
	}
}

func TestSetupTransitions(t *testing.T) {
	m := New("", "")

	_, err := m.Toggle()
	assert.ErrorIs(t, err, ErrSetupPending)
	m.Settle()
	assert.Equal(t, models.ModeSetup, m.Current())

	require.NoError(t, m.CompleteSetup())
	assert.Equal(t, models.ModeNormal, m.Current())
	assert.ErrorIs(t, m.CompleteSetup(), ErrSetupDone)
}

func TestToggleAndSettle(t *testing.T) {
	m := New("Sam", models.ModeNormal)

	mode, err := m.Toggle()
	require.NoError(t, err)
	assert.Equal(t, models.ModeTaskAdding, mode)

	mode, err = m.Toggle()
	require.NoError(t, err)
	assert.Equal(t, models.ModeNormal, mode)

	_, _ = m.Toggle()
	m.Settle()
	assert.Equal(t, models.ModeNormal, m.Current())
}
