package views

import (
	"fmt"
	"io"

	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/tgienger/double/internal/models"
	"github.com/tgienger/double/internal/ui/styles"
)

// maxVisibleTasks caps the height of the task panel
const maxVisibleTasks = 5

type taskItem struct {
	task models.Task
}

func (i taskItem) Title() string       { return i.task.Text }
func (i taskItem) Description() string { return "due " + i.task.DueDate.Format("Mon 15:04") }
func (i taskItem) FilterValue() string { return i.task.Text }

type taskDelegate struct {
	styles  *styles.Styles
	width   int
	focused *bool
}

func (d taskDelegate) Height() int                               { return 1 }
func (d taskDelegate) Spacing() int                              { return 0 }
func (d taskDelegate) Update(msg tea.Msg, m *list.Model) tea.Cmd { return nil }

func (d taskDelegate) Render(w io.Writer, m list.Model, index int, item list.Item) {
	t, ok := item.(taskItem)
	if !ok {
		return
	}

	width := max(d.width-4, 20)
	style := d.styles.ListItem.Width(width)
	if *d.focused && index == m.Index() {
		style = d.styles.ListSelected.Width(width)
	}

	due := d.styles.TitleMuted.Render(t.Description())
	text := lipgloss.NewStyle().MaxWidth(max(width-lipgloss.Width(due)-6, 8)).Render(t.Title())
	fmt.Fprint(w, style.Render(fmt.Sprintf("☐ %s  %s", text, due)))
}

// TaskPanel lists the active tasks; enter on a selected task completes it
type TaskPanel struct {
	list     list.Model
	delegate *taskDelegate
	styles   *styles.Styles
	focused  bool
	width    int
}

// NewTaskPanel creates an empty task panel
func NewTaskPanel() *TaskPanel {
	s := styles.NewStyles()
	p := &TaskPanel{styles: s}

	// Setup custom delegate
	p.delegate = &taskDelegate{styles: s, width: 80, focused: &p.focused}

	l := list.New([]list.Item{}, p.delegate, 0, 0)
	l.Title = "Active tasks"
	l.SetShowTitle(false)
	l.SetShowStatusBar(false)
	l.SetShowPagination(false)
	l.SetShowHelp(false)
	l.SetFilteringEnabled(true)
	l.KeyMap.Quit.SetEnabled(false)
	l.Styles.Title = s.Title
	p.list = l
	return p
}

// SetTasks replaces the listed tasks, keeping the cursor in range
func (p *TaskPanel) SetTasks(tasks []models.Task) {
	items := make([]list.Item, len(tasks))
	for i, t := range tasks {
		items[i] = taskItem{task: t}
	}
	idx := p.list.Index()
	p.list.SetItems(items)
	p.list.SetHeight(p.Height())
	if len(items) > 0 {
		p.list.Select(clamp(idx, 0, len(items)-1))
	}
}

// SetWidth sets the panel width
func (p *TaskPanel) SetWidth(width int) {
	p.width = width
	p.delegate.width = width
	p.list.SetWidth(max(width-4, 10))
}

// Height is the number of list rows the panel needs
func (p *TaskPanel) Height() int {
	return clamp(len(p.list.Items()), 1, maxVisibleTasks)
}

// Len returns the number of listed tasks
func (p *TaskPanel) Len() int {
	return len(p.list.Items())
}

// Focus gives the panel keyboard focus
func (p *TaskPanel) Focus() { p.focused = true }

// Blur removes keyboard focus
func (p *TaskPanel) Blur() { p.focused = false }

// Filtering reports whether the user is typing a filter
func (p *TaskPanel) Filtering() bool {
	return p.list.FilterState() == list.Filtering
}

// Selected returns the highlighted task
func (p *TaskPanel) Selected() (models.Task, bool) {
	item, ok := p.list.SelectedItem().(taskItem)
	if !ok {
		return models.Task{}, false
	}
	return item.task, true
}

func (p *TaskPanel) Init() tea.Cmd { return nil }

// Update forwards navigation and filtering keys to the list
func (p *TaskPanel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd
	p.list, cmd = p.list.Update(msg)
	return p, cmd
}

// View renders the view
func (p *TaskPanel) View() string {
	s := p.styles
	panel := s.Panel
	if p.focused {
		panel = s.PanelFocused
	}

	title := s.Title.Render(fmt.Sprintf("Active tasks (%d)", p.Len()))
	body := s.TitleMuted.Render("No active tasks. Tell me what you need to do!")
	if p.Len() > 0 {
		body = p.list.View()
	}
	return panel.Width(max(p.width-2, 10)).Render(lipgloss.JoinVertical(lipgloss.Left, title, body))
}
