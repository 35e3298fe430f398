package reply

import (
	"fmt"

	"github.com/tgienger/double/internal/models"
)

// Line is one assistant message to emit.
type Line struct {
	Text   string
	IsTask bool
}

func lines(texts ...string) []Line {
	out := make([]Line, len(texts))
	for i, t := range texts {
		out[i] = Line{Text: t}
	}
	return out
}

// Greeting is shown to a user who has not completed setup.
func Greeting() []Line {
	return lines(
		"Hello! I'm Double, your personal AI assistant for growth and productivity! 🚀",
		"What's your name? I'd love to get to know you better!",
	)
}

// Welcome greets a user right after setup.
func Welcome(name string) []Line {
	return lines(
		fmt.Sprintf("Nice to meet you, %s! 🎉", name),
		"I'm here to help you grow every day. My superpowers include:",
		"🎯 Smart task planning & tracking\n⏰ Setting reminders & alarms\n📊 Progress analytics\n💪 Keeping you motivated\n🧠 Understanding when you're adding tasks vs. chatting",
	)
}

// WelcomeFollowUp is sent a little after the welcome burst.
func WelcomeFollowUp() []Line {
	return lines("I'm pretty smart - I can tell the difference between tasks and regular conversation! Try chatting with me or tell me your tasks.")
}

// TasksAdded confirms new tasks: a summary, one numbered line per task in
// order, and a reminder nudge. No tasks means no lines.
func TasksAdded(tasks []models.Task) []Line {
	if len(tasks) == 0 {
		return nil
	}
	plural := ""
	if len(tasks) > 1 {
		plural = "s"
	}
	out := make([]Line, 0, len(tasks)+2)
	out = append(out, Line{Text: fmt.Sprintf("Perfect! I've added %d task%s for you:", len(tasks), plural)})
	for i, t := range tasks {
		out = append(out, Line{Text: fmt.Sprintf("%d. %s", i+1, t.Text), IsTask: true})
	}
	out = append(out, Line{Text: "I'll help you stay on track! Need to set any reminders for these? 🔔"})
	return out
}

// CelebrationVariants is the pool for a completed task.
func CelebrationVariants(task models.Task) []string {
	return []string{
		fmt.Sprintf("🎉 Boom! You crushed: \"%s\"", task.Text),
		fmt.Sprintf("⚡️ Amazing! Task completed: \"%s\"", task.Text),
		fmt.Sprintf("🔥 You're on fire! Finished: \"%s\"", task.Text),
		fmt.Sprintf("🏆 Victory! You completed: \"%s\"", task.Text),
	}
}

// Celebrate picks a celebration for task.
func (g *Generator) Celebrate(task models.Task) string {
	return g.pick(CelebrationVariants(task))
}

// AllDone is sent after the last active task is completed.
func AllDone() []Line {
	return lines(
		"🌟 INCREDIBLE! All tasks completed for today! You're absolutely crushing it!",
		"Ready to plan tomorrow's wins? Or just tell me how you're feeling! 😊",
	)
}

const (
	// ReminderSet confirms a parsed reminder.
	ReminderSet = "⏰ Reminder set! I'll notify you soon."
	// ReminderHelp asks for a time when none was found.
	ReminderHelp = "I'd love to set a reminder! Try saying something like 'remind me in 1 hour' or 'remind me at 3pm'"
)

// CheckIn kinds
const (
	CheckInMorning = "morning"
	CheckInEvening = "evening"
)

// CheckInText returns the check-in message for kind.
func CheckInText(kind string) (string, bool) {
	switch kind {
	case CheckInMorning:
		return "Good morning! Ready to crush today's goals? 🌅", true
	case CheckInEvening:
		return "Evening check-in! How did your tasks go today? 🌙", true
	}
	return "", false
}

// CheckInForHour returns the check-in kind due at hour, if any.
func CheckInForHour(hour int) (string, bool) {
	switch hour {
	case 8:
		return CheckInMorning, true
	case 20:
		return CheckInEvening, true
	}
	return "", false
}
