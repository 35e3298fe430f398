package views

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/tgienger/double/internal/models"
	"github.com/tgienger/double/internal/ui/styles"
)

// RenderStats renders the stats panel with a completion bar
func RenderStats(s *styles.Styles, stats models.Stats, width int) string {
	stat := func(label string, value any) string {
		return s.StatLabel.Render(label+" ") + s.StatValue.Render(fmt.Sprint(value))
	}

	row := strings.Join([]string{
		stat("✅ Completed", stats.Completed),
		stat("⏳ Pending", stats.Pending),
		stat("📈 Total", stats.Total),
		stat("🏆 Success", fmt.Sprintf("%d%%", stats.SuccessRate)),
	}, "   ")

	barWidth := clamp(width-8, 10, 60)
	filled := barWidth * clamp(stats.SuccessRate, 0, 100) / 100
	bar := s.BarFilled.Render(strings.Repeat("█", filled)) +
		s.BarEmpty.Render(strings.Repeat("░", barWidth-filled))

	content := lipgloss.JoinVertical(lipgloss.Left,
		s.Title.Render("📊 Your Progress"),
		row,
		bar,
	)
	return s.Panel.Width(max(width-2, 10)).Render(content)
}
