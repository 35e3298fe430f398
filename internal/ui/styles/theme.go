package styles

import (
	"github.com/charmbracelet/lipgloss"
)

// Theme represents a color scheme for the application
type Theme struct {
	Name string

	// Base colors
	Background    lipgloss.Color
	Foreground    lipgloss.Color
	ForegroundDim lipgloss.Color

	// Accent colors
	Primary   lipgloss.Color
	Secondary lipgloss.Color
	Accent    lipgloss.Color

	// Semantic colors
	Success lipgloss.Color
	Warning lipgloss.Color
	Error   lipgloss.Color
	Info    lipgloss.Color

	// UI element colors
	Border      lipgloss.Color
	BorderFocus lipgloss.Color
	Selection   lipgloss.Color
	Cursor      lipgloss.Color
}

// TokyoNight is the default color theme
var TokyoNight = Theme{
	Name: "Tokyo Night",

	Background:    lipgloss.Color("#1a1b26"),
	Foreground:    lipgloss.Color("#c0caf5"),
	ForegroundDim: lipgloss.Color("#565f89"),

	Primary:   lipgloss.Color("#7aa2f7"),
	Secondary: lipgloss.Color("#bb9af7"),
	Accent:    lipgloss.Color("#7dcfff"),

	Success: lipgloss.Color("#9ece6a"),
	Warning: lipgloss.Color("#e0af68"),
	Error:   lipgloss.Color("#f7768e"),
	Info:    lipgloss.Color("#7aa2f7"),

	Border:      lipgloss.Color("#3b4261"),
	BorderFocus: lipgloss.Color("#7aa2f7"),
	Selection:   lipgloss.Color("#33467c"),
	Cursor:      lipgloss.Color("#c0caf5"),
}

// Current holds the active theme
var Current = TokyoNight

// MaxWidth is the maximum content width for the app
const MaxWidth = 100

// ContentWidth returns the actual content width to use (min of terminal width and MaxWidth)
func ContentWidth(terminalWidth int) int {
	if terminalWidth > MaxWidth {
		return MaxWidth
	}
	return terminalWidth
}

// CenterView wraps content and centers it horizontally if terminal is wider than MaxWidth
func CenterView(content string, terminalWidth, terminalHeight int) string {
	if terminalWidth <= MaxWidth {
		return content
	}
	return lipgloss.Place(terminalWidth, terminalHeight,
		lipgloss.Center, lipgloss.Top,
		content,
	)
}

// Styles holds all the pre-computed styles for the UI
type Styles struct {
	// Header
	TitleBar   lipgloss.Style
	Title      lipgloss.Style
	TitleMuted lipgloss.Style

	// Mode banner shown while adding tasks
	Banner lipgloss.Style

	// Transcript
	SenderUser      lipgloss.Style
	SenderAssistant lipgloss.Style
	UserBubble      lipgloss.Style
	AssistantBubble lipgloss.Style
	TaskLine        lipgloss.Style
	Typing          lipgloss.Style

	// Panels
	Panel        lipgloss.Style
	PanelFocused lipgloss.Style
	ListItem     lipgloss.Style
	ListSelected lipgloss.Style

	// Stats
	StatLabel lipgloss.Style
	StatValue lipgloss.Style
	BarFilled lipgloss.Style
	BarEmpty  lipgloss.Style

	// Input fields
	Input        lipgloss.Style
	InputFocused lipgloss.Style

	// Help text
	Help     lipgloss.Style
	HelpKey  lipgloss.Style
	HelpDesc lipgloss.Style
	Popup    lipgloss.Style

	// Status bar
	StatusBar   lipgloss.Style
	StatusError lipgloss.Style
}

// NewStyles creates styles based on the current theme
func NewStyles() *Styles {
	t := Current

	return &Styles{
		TitleBar: lipgloss.NewStyle().
			Foreground(t.Foreground).
			Padding(0, 1).
			Bold(true),

		Title: lipgloss.NewStyle().
			Foreground(t.Primary).
			Bold(true),

		TitleMuted: lipgloss.NewStyle().
			Foreground(t.ForegroundDim),

		Banner: lipgloss.NewStyle().
			Foreground(t.Background).
			Background(t.Warning).
			Padding(0, 1).
			Bold(true),

		SenderUser: lipgloss.NewStyle().
			Foreground(t.Secondary).
			Bold(true),

		SenderAssistant: lipgloss.NewStyle().
			Foreground(t.Primary).
			Bold(true),

		UserBubble: lipgloss.NewStyle().
			Foreground(t.Foreground).
			Background(t.Selection).
			Padding(0, 1),

		AssistantBubble: lipgloss.NewStyle().
			Foreground(t.Foreground).
			Padding(0, 1),

		TaskLine: lipgloss.NewStyle().
			Foreground(t.Success).
			Padding(0, 1),

		Typing: lipgloss.NewStyle().
			Foreground(t.ForegroundDim).
			Italic(true).
			Padding(0, 1),

		Panel: lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(t.Border).
			Padding(0, 1),

		PanelFocused: lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(t.BorderFocus).
			Padding(0, 1),

		ListItem: lipgloss.NewStyle().
			Foreground(t.Foreground).
			Padding(0, 1),

		ListSelected: lipgloss.NewStyle().
			Foreground(t.Primary).
			Background(t.Selection).
			Padding(0, 1).
			Bold(true),

		StatLabel: lipgloss.NewStyle().
			Foreground(t.ForegroundDim),

		StatValue: lipgloss.NewStyle().
			Foreground(t.Accent).
			Bold(true),

		BarFilled: lipgloss.NewStyle().
			Foreground(t.Success),

		BarEmpty: lipgloss.NewStyle().
			Foreground(t.Border),

		Input: lipgloss.NewStyle().
			Foreground(t.Foreground).
			Border(lipgloss.RoundedBorder()).
			BorderForeground(t.Border).
			Padding(0, 1),

		InputFocused: lipgloss.NewStyle().
			Foreground(t.Foreground).
			Border(lipgloss.RoundedBorder()).
			BorderForeground(t.BorderFocus).
			Padding(0, 1),

		Help: lipgloss.NewStyle().
			Foreground(t.ForegroundDim).
			Padding(0, 1),

		HelpKey: lipgloss.NewStyle().
			Foreground(t.Primary).
			Bold(true),

		HelpDesc: lipgloss.NewStyle().
			Foreground(t.ForegroundDim),

		Popup: lipgloss.NewStyle().
			Padding(0, 1).
			Border(lipgloss.RoundedBorder()).
			BorderForeground(t.BorderFocus),

		StatusBar: lipgloss.NewStyle().
			Foreground(t.ForegroundDim).
			Padding(0, 1),

		StatusError: lipgloss.NewStyle().
			Foreground(t.Error).
			Padding(0, 1),
	}
}
