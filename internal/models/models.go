package models

import "time"

// Sender identifies who wrote a message
type Sender string

const (
	SenderUser      Sender = "user"
	SenderAssistant Sender = "assistant"
)

// Mode is the conversation mode that gates how messages are classified
type Mode string

const (
	ModeSetup      Mode = "setup"
	ModeNormal     Mode = "normal"
	ModeTaskAdding Mode = "task-adding"
)

// Intent is the classified purpose of a user message
type Intent string

const (
	IntentSetup          Intent = "setup"
	IntentTask           Intent = "task"
	IntentTaskCompletion Intent = "task-completion"
	IntentStats          Intent = "stats"
	IntentAlarm          Intent = "alarm"
	IntentDistraction    Intent = "distraction"
	IntentConversation   Intent = "conversation"
)

// Priority of a task
type Priority string

const (
	PriorityLow    Priority = "low"
	PriorityMedium Priority = "medium"
	PriorityHigh   Priority = "high"
)

// Message is a single entry in the transcript
type Message struct {
	ID        string    `json:"id"`
	Text      string    `json:"text"`
	Sender    Sender    `json:"sender"`
	Timestamp time.Time `json:"timestamp"`
	IsTask    bool      `json:"isTask"`
}

// Task represents a single tracked task
type Task struct {
	ID          string     `json:"id"`
	Text        string     `json:"text"`
	Completed   bool       `json:"completed"`
	CreatedAt   time.Time  `json:"createdAt"`
	DueDate     time.Time  `json:"dueDate"`
	Priority    Priority   `json:"priority"`
	CompletedAt *time.Time `json:"completedAt,omitempty"`
}

// Alarm is a reminder record created from a user message
type Alarm struct {
	ID      string    `json:"id"`
	Message string    `json:"message"`
	Time    time.Time `json:"time"`
	Active  bool      `json:"active"`
}

// Stats summarizes task progress
type Stats struct {
	Completed   int `json:"completed"`
	Pending     int `json:"pending"`
	Total       int `json:"total"`
	SuccessRate int `json:"successRate"`
}

// Session is the full restorable state of one assistant instance
type Session struct {
	UserName       string    `json:"userName"`
	IsSetup        bool      `json:"isSetup"`
	ActiveTasks    []Task    `json:"currentTasks"`
	CompletedTasks []Task    `json:"completedTasks"`
	AllTasks       []Task    `json:"allTasks"`
	Transcript     []Message `json:"messages"`
	Alarms         []Alarm   `json:"alarms"`
	Mode           Mode      `json:"conversationMode"`
}

// Normalize fills absent collections with empty ones so a partially
// persisted session behaves like a fresh one
func (s *Session) Normalize() {
	if s.ActiveTasks == nil {
		s.ActiveTasks = []Task{}
	}
	if s.CompletedTasks == nil {
		s.CompletedTasks = []Task{}
	}
	if s.AllTasks == nil {
		s.AllTasks = []Task{}
	}
	if s.Transcript == nil {
		s.Transcript = []Message{}
	}
	if s.Alarms == nil {
		s.Alarms = []Alarm{}
	}
	if s.Mode == "" {
		s.Mode = ModeNormal
	}
}
