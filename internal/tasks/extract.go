package tasks

import (
	"regexp"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"

	"github.com/tgienger/double/internal/models"
)

// DefaultDue is how long after creation a new task is due.
const DefaultDue = 24 * time.Hour

const (
	minTaskLength     = 3 // cleaned lines must be longer than this
	minFallbackLength = 5 // whole-message fallback needs more than this
)

var (
	numberPrefix  = regexp.MustCompile(`^\d+\.\s*`)
	bulletPrefix  = regexp.MustCompile(`^[-•]\s*`)
	keywordPrefix = regexp.MustCompile(`(?i)^(task|todo):\s*`)
)

// Extract turns a message body into tasks using the default due window.
func Extract(text string, now time.Time) []models.Task {
	return ExtractDue(text, now, DefaultDue)
}

// ExtractDue turns a message body into tasks, one per meaningful line, in
// source order. When no line survives cleaning but the message itself has
// some substance, the whole trimmed message becomes a single task.
func ExtractDue(text string, now time.Time, due time.Duration) []models.Task {
	texts := CleanLines(text)

	trimmed := strings.TrimSpace(text)
	if len(texts) == 0 && utf8.RuneCountInString(trimmed) > minFallbackLength {
		texts = []string{trimmed}
	}

	out := make([]models.Task, 0, len(texts))
	for _, t := range texts {
		out = append(out, models.Task{
			ID:        uuid.NewString(),
			Text:      t,
			Completed: false,
			CreatedAt: now,
			DueDate:   now.Add(due),
			Priority:  models.PriorityMedium,
		})
	}
	return out
}

// CleanLines strips list numbering, bullets and task/todo prefixes from
// every non-blank line and keeps the ones long enough to be a task.
func CleanLines(text string) []string {
	var out []string
	for _, line := range strings.Split(text, "\n") {
		if strings.TrimSpace(line) == "" {
			continue
		}
		clean := numberPrefix.ReplaceAllString(line, "")
		clean = bulletPrefix.ReplaceAllString(clean, "")
		clean = keywordPrefix.ReplaceAllString(clean, "")
		clean = strings.TrimSpace(clean)

		if utf8.RuneCountInString(clean) > minTaskLength {
			out = append(out, clean)
		}
	}
	return out
}
