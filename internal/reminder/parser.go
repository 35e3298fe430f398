// Package reminder recognises coarse time expressions in reminder requests
// and materializes alarm records.
package reminder

import (
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/tgienger/double/internal/models"
)

// DefaultOffset is how far in the future a parsed reminder fires. Only the
// presence of a time unit is detected, not the requested duration.
const DefaultOffset = time.Minute

var timePattern = regexp.MustCompile(`(?i)(\d+)\s*(hour|minute|am|pm)`)

// Parser creates alarms from reminder messages.
type Parser struct {
	Offset time.Duration
}

// New creates a parser with the given fire offset. A non-positive offset
// uses DefaultOffset.
func New(offset time.Duration) *Parser {
	if offset <= 0 {
		offset = DefaultOffset
	}
	return &Parser{Offset: offset}
}

// Expression is the matched time expression in a message.
type Expression struct {
	Amount string
	Unit   string
}

// Find returns the first time expression in message.
func Find(message string) (Expression, bool) {
	m := timePattern.FindStringSubmatch(message)
	if m == nil {
		return Expression{}, false
	}
	return Expression{Amount: m[1], Unit: strings.ToLower(m[2])}, true
}

// Parse returns an active alarm for message, or false when the message has
// no recognisable time expression.
func (p *Parser) Parse(message string, now time.Time) (models.Alarm, bool) {
	if _, ok := Find(message); !ok {
		return models.Alarm{}, false
	}
	return models.Alarm{
		ID:      uuid.NewString(),
		Message: message,
		Time:    now.Add(p.Offset),
		Active:  true,
	}, true
}
