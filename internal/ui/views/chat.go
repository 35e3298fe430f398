package views

import (
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/tgienger/double/internal/models"
	"github.com/tgienger/double/internal/ui/keys"
	"github.com/tgienger/double/internal/ui/styles"
)

// clamp returns val clamped between minVal and maxVal
func clamp(val, minVal, maxVal int) int {
	if val < minVal {
		return minVal
	}
	if val > maxVal {
		return maxVal
	}
	return val
}

// inputHeight is the number of text rows in the message input
const inputHeight = 3

// ChatView shows the transcript and the message input
type ChatView struct {
	viewport viewport.Model
	input    textarea.Model
	styles   *styles.Styles

	messages []models.Message
	userName string
	typing   bool
	width    int
}

// NewChatView creates a new chat view
func NewChatView() *ChatView {
	km := keys.DefaultKeyMap()

	input := textarea.New()
	input.Placeholder = "Tell me your tasks or just chat..."
	input.CharLimit = 2000
	input.ShowLineNumbers = false
	input.Prompt = ""
	input.SetHeight(inputHeight)
	input.KeyMap.InsertNewline = km.Newline
	input.Focus()

	return &ChatView{
		viewport: viewport.New(0, 0),
		input:    input,
		styles:   styles.NewStyles(),
	}
}

// SetSize lays out the transcript above the input
func (v *ChatView) SetSize(width, height int) {
	v.width = width
	v.input.SetWidth(max(width-4, 10))
	v.viewport.Width = width
	v.viewport.Height = max(height-inputHeight-2, 1)
	v.refresh()
}

// SetMessages replaces the transcript and scrolls to the newest message
func (v *ChatView) SetMessages(msgs []models.Message, userName string) {
	v.messages = msgs
	v.userName = userName
	v.refresh()
}

// SetTyping toggles the typing indicator
func (v *ChatView) SetTyping(typing bool) {
	if v.typing == typing {
		return
	}
	v.typing = typing
	v.refresh()
}

// Value returns the current input
func (v *ChatView) Value() string {
	return v.input.Value()
}

// Reset clears the input
func (v *ChatView) Reset() {
	v.input.Reset()
}

// Focus focuses the input
func (v *ChatView) Focus() tea.Cmd {
	return v.input.Focus()
}

// Blur removes focus from the input
func (v *ChatView) Blur() {
	v.input.Blur()
}

// Focused reports whether the input has focus
func (v *ChatView) Focused() bool {
	return v.input.Focused()
}

func (v *ChatView) refresh() {
	v.viewport.SetContent(v.renderTranscript())
	v.viewport.GotoBottom()
}

// Update routes scrolling keys to the transcript and everything else to
// the input
func (v *ChatView) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	km := keys.DefaultKeyMap()
	if msg, ok := msg.(tea.KeyMsg); ok {
		switch {
		case key.Matches(msg, km.ScrollUp):
			v.viewport.HalfViewUp()
			return v, nil
		case key.Matches(msg, km.ScrollDown):
			v.viewport.HalfViewDown()
			return v, nil
		}
	}

	var cmd tea.Cmd
	v.input, cmd = v.input.Update(msg)
	return v, cmd
}

func (v *ChatView) Init() tea.Cmd {
	return textarea.Blink
}

// View renders the view
func (v *ChatView) View() string {
	inputStyle := v.styles.Input
	if v.input.Focused() {
		inputStyle = v.styles.InputFocused
	}
	return lipgloss.JoinVertical(lipgloss.Left,
		v.viewport.View(),
		inputStyle.Width(max(v.width-2, 10)).Render(v.input.View()),
	)
}

func (v *ChatView) renderTranscript() string {
	s := v.styles
	width := max(v.width, 20)
	bubbleWidth := clamp(width*3/4, 16, width)

	var b strings.Builder
	var prev models.Sender
	for i, m := range v.messages {
		if m.Sender != prev {
			if i > 0 {
				b.WriteString("\n")
			}
			b.WriteString(v.renderSender(m.Sender, width))
			b.WriteString("\n")
			prev = m.Sender
		}

		switch {
		case m.Sender == models.SenderUser:
			w := min(lipgloss.Width(m.Text)+2, bubbleWidth)
			bubble := s.UserBubble.Width(w).Render(m.Text)
			b.WriteString(lipgloss.PlaceHorizontal(width, lipgloss.Right, bubble))
		case m.IsTask:
			b.WriteString(s.TaskLine.Width(bubbleWidth).Render("☐ " + m.Text))
		default:
			b.WriteString(s.AssistantBubble.Width(bubbleWidth).Render(m.Text))
		}
		b.WriteString("\n")
	}

	if v.typing {
		b.WriteString("\n")
		b.WriteString(s.Typing.Render("Double is typing..."))
	}
	return b.String()
}

func (v *ChatView) renderSender(sender models.Sender, width int) string {
	if sender == models.SenderUser {
		name := v.userName
		if name == "" {
			name = "You"
		}
		return lipgloss.PlaceHorizontal(width, lipgloss.Right, v.styles.SenderUser.Render(name))
	}
	return v.styles.SenderAssistant.Render("Double")
}
