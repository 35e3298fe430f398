// Package patterns holds the detection rules used to recognise task-like
// lines and messages.
package patterns

import "regexp"

// Rule is a named boolean predicate over a line or a whole message.
type Rule struct {
	Name  string
	regex *regexp.Regexp
}

// Match reports whether text satisfies the rule.
func (r Rule) Match(text string) bool {
	return r.regex.MatchString(text)
}

// String returns the underlying expression.
func (r Rule) String() string {
	return r.regex.String()
}

// NewRule compiles expr into a rule. It panics on an invalid expression,
// like regexp.MustCompile.
func NewRule(name, expr string) Rule {
	return Rule{Name: name, regex: regexp.MustCompile(expr)}
}

// Library is a fixed, ordered set of rules.
type Library struct {
	rules []Rule
}

// Rule names of the default library
const (
	ListMarker   = "list-marker"
	KeywordColon = "keyword-colon"
	IntentPhrase = "intent-phrase"
	TimeTask     = "time-task"
)

var defaultLibrary = New(
	// Numbered or bulleted lists
	NewRule(ListMarker, `(?m)^(\d+\.|•|-)\s*.+`),
	// Task keywords with a colon
	NewRule(KeywordColon, `(?i)(?:task|todo|do|complete|finish|accomplish).*:`),
	// Intent phrases with some substance after them
	NewRule(IntentPhrase, `(?i)(?:need to|have to|must|should|will|gonna)\s+.{10,}`),
	// Time based tasks
	NewRule(TimeTask, `(?i)(?:tomorrow|today|this week).*(?:do|complete|finish)`),
)

// Default returns the built-in rule set.
func Default() *Library {
	return defaultLibrary
}

// New builds a library from rules, keeping their order.
func New(rules ...Rule) *Library {
	l := &Library{rules: make([]Rule, len(rules))}
	copy(l.rules, rules)
	return l
}

// Rules returns a copy of the rules in evaluation order.
func (l *Library) Rules() []Rule {
	out := make([]Rule, len(l.rules))
	copy(out, l.rules)
	return out
}

// Match reports whether any rule matches text.
func (l *Library) Match(text string) bool {
	for _, r := range l.rules {
		if r.Match(text) {
			return true
		}
	}
	return false
}

// Matching returns the names of every rule that matches text.
func (l *Library) Matching(text string) []string {
	var names []string
	for _, r := range l.rules {
		if r.Match(text) {
			names = append(names, r.Name)
		}
	}
	return names
}
