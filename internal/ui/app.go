package ui

import (
	"context"
	"errors"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/tgienger/double/internal/convo"
	"github.com/tgienger/double/internal/engine"
	"github.com/tgienger/double/internal/models"
	"github.com/tgienger/double/internal/ui/keys"
	"github.com/tgienger/double/internal/ui/styles"
	"github.com/tgienger/double/internal/ui/views"
)

// Engine is the session surface the UI reads from
type Engine interface {
	Snapshot() models.Session
	Stats() models.Stats
	ToggleMode(ctx context.Context) (models.Mode, error)
}

// Dispatcher queues user actions for delayed replies
type Dispatcher interface {
	Submit(text string) bool
	Complete(id string) bool
}

// EventMsg carries a dispatcher event into the program
type EventMsg engine.Event

// Focus is the part of the UI receiving keys
type Focus int

const (
	FocusInput Focus = iota
	FocusTasks
)

type App struct {
	ctx        context.Context
	engine     Engine
	dispatcher Dispatcher
	styles     *styles.Styles
	keys       keys.KeyMap

	chat  *views.ChatView
	tasks *views.TaskPanel

	session   models.Session
	stats     models.Stats
	focus     Focus
	showStats bool
	showHelp  bool
	pending   int // submitted messages still waiting for a reply
	status    string

	width  int
	height int
}

// NewApp creates the application around an engine and its dispatcher
func NewApp(ctx context.Context, e Engine, d Dispatcher) *App {
	a := &App{
		ctx:        ctx,
		engine:     e,
		dispatcher: d,
		styles:     styles.NewStyles(),
		keys:       keys.DefaultKeyMap(),
		chat:       views.NewChatView(),
		tasks:      views.NewTaskPanel(),
	}
	a.refresh()
	return a
}

func (a *App) Init() tea.Cmd {
	return a.chat.Init()
}

// refresh reloads the session snapshot into the views
func (a *App) refresh() {
	a.session = a.engine.Snapshot()
	a.stats = a.engine.Stats()
	a.chat.SetMessages(a.session.Transcript, a.session.UserName)
	a.chat.SetTyping(a.pending > 0)
	a.tasks.SetTasks(a.session.ActiveTasks)
	if a.focus == FocusTasks && a.tasks.Len() == 0 {
		a.setFocus(FocusInput)
	}
	a.layout()
}

func (a *App) layout() {
	if a.width == 0 {
		return
	}
	contentWidth := styles.ContentWidth(a.width)
	a.tasks.SetWidth(contentWidth)

	used := 2 // header and help line
	if a.session.Mode == models.ModeTaskAdding {
		used++
	}
	if a.status != "" {
		used++
	}
	if a.showStats {
		used += lipgloss.Height(views.RenderStats(a.styles, a.stats, contentWidth))
	}
	if a.session.IsSetup {
		used += lipgloss.Height(a.tasks.View())
	}
	a.chat.SetSize(contentWidth, max(a.height-used, 6))
}

func (a *App) setFocus(f Focus) tea.Cmd {
	a.focus = f
	if f == FocusTasks {
		a.chat.Blur()
		a.tasks.Focus()
		return nil
	}
	a.tasks.Blur()
	return a.chat.Focus()
}

func (a *App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		a.width = msg.Width
		a.height = msg.Height
		a.layout()
		return a, nil

	case EventMsg:
		a.status = ""
		if msg.Err != nil {
			a.status = msg.Err.Error()
		}
		if msg.Intent != "" && a.pending > 0 {
			a.pending--
		}
		if msg.ShowStats {
			a.showStats = true
		}
		a.refresh()
		return a, nil

	case tea.KeyMsg:
		return a.updateKey(msg)
	}

	var cmd tea.Cmd
	if a.focus == FocusInput {
		_, cmd = a.chat.Update(msg)
	}
	return a, cmd
}

func (a *App) updateKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	// Handle help popup first - any key closes it
	if a.showHelp {
		a.showHelp = false
		return a, nil
	}

	switch {
	case key.Matches(msg, a.keys.Quit):
		return a, tea.Quit

	case key.Matches(msg, a.keys.ToggleMode):
		a.toggleMode()
		return a, nil

	case key.Matches(msg, a.keys.ToggleStats):
		a.showStats = !a.showStats
		a.layout()
		return a, nil
	}

	if a.focus == FocusTasks {
		return a.updateTasks(msg)
	}
	return a.updateInput(msg)
}

func (a *App) updateInput(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, a.keys.Enter):
		if a.dispatcher.Submit(a.chat.Value()) {
			a.chat.Reset()
			a.pending++
			a.status = ""
			a.chat.SetTyping(true)
		}
		return a, nil

	case key.Matches(msg, a.keys.Tab):
		if a.tasks.Len() > 0 {
			return a, a.setFocus(FocusTasks)
		}
		return a, nil

	case key.Matches(msg, a.keys.Help) && a.chat.Value() == "":
		a.showHelp = true
		return a, nil
	}

	_, cmd := a.chat.Update(msg)
	return a, cmd
}

func (a *App) updateTasks(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	// The list owns every key while a filter is being typed
	if a.tasks.Filtering() {
		_, cmd := a.tasks.Update(msg)
		return a, cmd
	}

	switch {
	case key.Matches(msg, a.keys.Enter):
		if task, ok := a.tasks.Selected(); ok {
			a.dispatcher.Complete(task.ID)
		}
		return a, nil

	case key.Matches(msg, a.keys.Tab), key.Matches(msg, a.keys.Back):
		return a, a.setFocus(FocusInput)

	case key.Matches(msg, a.keys.Help):
		a.showHelp = true
		return a, nil
	}

	_, cmd := a.tasks.Update(msg)
	return a, cmd
}

func (a *App) toggleMode() {
	_, err := a.engine.ToggleMode(a.ctx)
	switch {
	case errors.Is(err, convo.ErrSetupPending):
		a.status = "Tell me your name first!"
	case err != nil:
		a.status = err.Error()
	default:
		a.status = ""
	}
	a.refresh()
}

func (a *App) View() string {
	if a.showHelp {
		return views.RenderHelpPopup(a.styles, a.width, a.height)
	}

	s := a.styles
	contentWidth := styles.ContentWidth(a.width)
	sections := []string{a.renderHeader()}

	if a.session.Mode == models.ModeTaskAdding {
		sections = append(sections, s.Banner.Width(contentWidth).Render("📝 Task mode: everything you send becomes a task"))
	}
	if a.showStats {
		sections = append(sections, views.RenderStats(s, a.stats, contentWidth))
	}
	if a.session.IsSetup {
		sections = append(sections, a.tasks.View())
	}
	sections = append(sections, a.chat.View())
	if a.status != "" {
		sections = append(sections, s.StatusError.Render(a.status))
	}
	sections = append(sections, views.RenderHelp(s, contentWidth, a.focus == FocusTasks))

	return styles.CenterView(lipgloss.JoinVertical(lipgloss.Left, sections...), a.width, a.height)
}

func (a *App) renderHeader() string {
	s := a.styles
	title := s.Title.Render("Double")
	sub := "your growth companion"
	if a.session.UserName != "" {
		sub = "with " + a.session.UserName
	}
	mode := s.StatusBar.Render(string(a.session.Mode))
	return s.TitleBar.Render(title + " " + s.TitleMuted.Render(sub) + " " + mode)
}
