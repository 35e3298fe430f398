package views

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/tgienger/double/internal/ui/styles"
)

// RenderHelpPopup renders the keyboard shortcut popup centered in the view
func RenderHelpPopup(s *styles.Styles, width, height int) string {
	contentWidth := styles.ContentWidth(width)

	helpItems := []string{
		s.HelpKey.Render("↵") + "        send message / complete task",
		s.HelpKey.Render("alt+↵") + "    new line",
		s.HelpKey.Render("tab") + "      switch between input and tasks",
		s.HelpKey.Render("/") + "        filter tasks",
		s.HelpKey.Render("ctrl+t") + "   toggle task mode",
		s.HelpKey.Render("ctrl+s") + "   toggle stats",
		s.HelpKey.Render("pgup") + "     scroll transcript",
		s.HelpKey.Render("esc") + "      back to input",
		s.HelpKey.Render("ctrl+c") + "   quit",
		"",
		s.TitleMuted.Render("Press any key to close"),
	}

	content := lipgloss.JoinVertical(lipgloss.Left,
		append([]string{s.Title.Render("Keyboard Shortcuts"), ""}, helpItems...)...,
	)

	centered := lipgloss.Place(contentWidth, height,
		lipgloss.Center, lipgloss.Center,
		s.Popup.Render(content),
	)
	return styles.CenterView(centered, width, height)
}

// RenderHelp renders the one-line shortcut hint
func RenderHelp(s *styles.Styles, width int, tasksFocused bool) string {
	// At narrow widths, show hint to press ? for help
	if width > 0 && width < 60 {
		return s.Help.Render(s.HelpKey.Render("?") + " help")
	}
	if tasksFocused {
		return s.Help.Render(
			s.HelpKey.Render("↵") + " complete • " +
				s.HelpKey.Render("/") + " filter • " +
				s.HelpKey.Render("esc") + " back • " +
				s.HelpKey.Render("?") + " help",
		)
	}
	return s.Help.Render(
		s.HelpKey.Render("↵") + " send • " +
			s.HelpKey.Render("alt+↵") + " newline • " +
			s.HelpKey.Render("tab") + " tasks • " +
			s.HelpKey.Render("ctrl+t") + " task mode • " +
			s.HelpKey.Render("ctrl+s") + " stats • " +
			s.HelpKey.Render("?") + " help",
	)
}
