// Package reply renders assistant replies from fixed template pools.
package reply

import (
	"fmt"

	"github.com/tgienger/double/internal/models"
)

// Snapshot is the read-only state a reply may interpolate.
type Snapshot struct {
	UserName string
	Stats    models.Stats
}

// Generator renders replies. Variant selection goes through the Picker, so
// the chosen phrasing never depends on or affects session state.
type Generator struct {
	picker Picker
}

// New creates a generator. A nil picker picks randomly.
func New(picker Picker) *Generator {
	if picker == nil {
		picker = RandomPicker{}
	}
	return &Generator{picker: picker}
}

func (g *Generator) pick(pool []string) string {
	return pool[g.picker.Pick(len(pool))]
}

// Generate returns the reply for intent. The alarm intent yields an empty
// string because the reminder flow produces its own reply.
func (g *Generator) Generate(intent models.Intent, content string, s Snapshot) string {
	switch intent {
	case models.IntentDistraction:
		return g.pick(DistractionVariants(s))
	case models.IntentStats:
		return Stats(s)
	case models.IntentTaskCompletion:
		return CompletionPrompt
	case models.IntentAlarm:
		return ""
	case models.IntentConversation:
		return g.pick(ConversationVariants(s))
	default:
		return Default(s)
	}
}

// CompletionPrompt asks which task was completed.
const CompletionPrompt = "Awesome! Which task did you complete? You can tap the ✅ button next to it, or just tell me the task name!"

// DistractionVariants is the pool for social media mentions.
func DistractionVariants(s Snapshot) []string {
	return []string{
		fmt.Sprintf("Hey %s! Social media break detected 📱 How about we check your tasks first? You've got %d waiting!", s.UserName, s.Stats.Pending),
		fmt.Sprintf("%s, I see you mentioned social media! Quick question - have you tackled your goals today? 🎯", s.UserName),
		fmt.Sprintf("Pause! Before diving into social feeds, let's celebrate - you have %d tasks completed! What's next? 💪", s.Stats.Completed),
		fmt.Sprintf("%s, social media will still be there after you complete your tasks! Which one should we tackle first? 🚀", s.UserName),
	}
}

// ConversationVariants is the pool for general chat.
func ConversationVariants(s Snapshot) []string {
	return []string{
		fmt.Sprintf("That's interesting, %s! I love our chats. How are your goals coming along? 😊", s.UserName),
		"Thanks for sharing that with me! Speaking of progress, how's your day going? 🌟",
		fmt.Sprintf("I hear you, %s! Life's full of moments like these. What's energizing you today? ⚡️", s.UserName),
		"Absolutely! I'm here for both the big goals and daily conversations. What's on your mind? 💭",
		"I get it! Sometimes we just need to talk. I'm all ears - and ready to help when you need it! 🤗",
	}
}

// Stats renders the progress summary.
func Stats(s Snapshot) string {
	return fmt.Sprintf("📊 Here's your amazing progress, %s!\n\n✅ Completed: %d\n⏳ Pending: %d\n📈 Total: %d\n🏆 Success Rate: %d%%\n\nYou're doing fantastic! Keep it up! 🌟",
		s.UserName, s.Stats.Completed, s.Stats.Pending, s.Stats.Total, s.Stats.SuccessRate)
}

// Default is the fallback reply.
func Default(s Snapshot) string {
	return fmt.Sprintf("I'm here to help, %s! Whether it's tasks, reminders, or just a chat - what do you need? 🚀", s.UserName)
}
