// Package intent maps a raw user message and the current conversation mode
// to exactly one intent label.
package intent

import (
	"strings"
	"unicode/utf8"

	"github.com/tgienger/double/internal/models"
	"github.com/tgienger/double/internal/patterns"
)

// substantialLine is the length above which a line of a multi-line message
// counts as task content on its own.
const substantialLine = 15

// keywordRule maps a set of substrings to an intent. The first rule with a
// contained keyword wins.
type keywordRule struct {
	intent   models.Intent
	keywords []string
}

var (
	explicitTask = []string{"add task", "new task"}

	keywordRules = []keywordRule{
		{models.IntentTaskCompletion, []string{"completed", "finished", "done with"}},
		{models.IntentStats, []string{"progress", "stats", "how many"}},
		{models.IntentAlarm, []string{"remind me", "alarm", "notification"}},
		{models.IntentDistraction, []string{"facebook", "youtube", "instagram", "tiktok", "social media"}},
	}
)

// Classifier classifies messages against a pattern library.
type Classifier struct {
	library *patterns.Library
}

// New creates a classifier. A nil library uses patterns.Default().
func New(library *patterns.Library) *Classifier {
	if library == nil {
		library = patterns.Default()
	}
	return &Classifier{library: library}
}

var defaultClassifier = New(nil)

// Classify uses the default pattern library.
func Classify(message string, mode models.Mode) models.Intent {
	return defaultClassifier.Classify(message, mode)
}

// IsTaskMessage uses the default pattern library.
func IsTaskMessage(message string) bool {
	return defaultClassifier.IsTaskMessage(message)
}

// Classify returns the intent of message given the current mode.
func (c *Classifier) Classify(message string, mode models.Mode) models.Intent {
	if mode == models.ModeSetup {
		return models.IntentSetup
	}

	msg := strings.ToLower(strings.TrimSpace(message))

	if containsAny(msg, explicitTask) || mode == models.ModeTaskAdding {
		return models.IntentTask
	}

	for _, rule := range keywordRules {
		if containsAny(msg, rule.keywords) {
			return rule.intent
		}
	}

	if c.IsTaskMessage(message) {
		return models.IntentTask
	}

	return models.IntentConversation
}

// IsTaskMessage reports whether message looks like a task dump. Multi-line
// input counts when any line matches a rule or carries substantial content;
// a single line needs an explicit pattern.
func (c *Classifier) IsTaskMessage(message string) bool {
	lines := nonBlankLines(message)

	if len(lines) >= 2 {
		for _, line := range lines {
			if c.library.Match(line) || utf8.RuneCountInString(line) > substantialLine {
				return true
			}
		}
		return false
	}

	return c.library.Match(message)
}

// Matching returns the names of the pattern rules message matches.
func (c *Classifier) Matching(message string) []string {
	return c.library.Matching(message)
}

func containsAny(s string, subs []string) bool {
	for _, sub := range subs {
		if strings.Contains(s, sub) {
			return true
		}
	}
	return false
}

// nonBlankLines splits text on newlines and drops whitespace-only lines.
// Lines are returned untrimmed.
func nonBlankLines(text string) []string {
	var lines []string
	for _, line := range strings.Split(text, "\n") {
		if strings.TrimSpace(line) != "" {
			lines = append(lines, line)
		}
	}
	return lines
}
