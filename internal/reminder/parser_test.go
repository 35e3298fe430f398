package reminder

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse(t *testing.T) {
	now := time.Date(2024, 5, 2, 15, 0, 0, 0, time.UTC)
	p := New(0)

	tests := []struct {
		message string
		ok      bool
		unit    string
	}{
		{"remind me in 1 hour", true, "hour"},
		{"remind me in 30 minutes", true, "minute"},
		{"Remind me at 3PM", true, "pm"},
		{"alarm for 7 am", true, "am"},
		{"remind me later", false, ""},
		{"remind me in an hour", false, ""},
	}

	for _, tt := range tests {
		t.Run(tt.message, func(t *testing.T) {
			alarm, ok := p.Parse(tt.message, now)
			assert.Equal(t, tt.ok, ok)
			if !tt.ok {
				assert.Empty(t, alarm.ID)
				return
			}
			assert.NotEmpty(t, alarm.ID)
			assert.Equal(t, tt.message, alarm.Message)
			assert.Equal(t, now.Add(DefaultOffset), alarm.Time)
			assert.True(t, alarm.Active)

			expr, found := Find(tt.message)
			require.True(t, found)
			assert.Equal(t, tt.unit, expr.Unit)
		})
	}
}

func TestParseCustomOffset(t *testing.T) {
	now := time.Date(2024, 5, 2, 15, 0, 0, 0, time.UTC)
	alarm, ok := New(10*time.Minute).Parse("remind me in 2 hours", now)
	require.True(t, ok)
	assert.Equal(t, now.Add(10*time.Minute), alarm.Time)
}
