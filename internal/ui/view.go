package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("230")).
			Background(lipgloss.Color("62")).
			Padding(0, 1)

	zoneStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("42"))

	itemStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("252")).
			PaddingLeft(2)

	dimStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("241"))

	errStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("203"))

	runStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("214"))
)

// View implements tea.Model.
func (m Model) View() string {
	var b strings.Builder

	b.WriteString(m.renderHeader())
	b.WriteString("\n\n")

	if !m.lv.Selected {
		b.WriteString(m.spin.View())
		b.WriteString(dimStyle.Render(" waiting for a drop..."))
		b.WriteString("\n")
	} else {
		b.WriteString(m.renderLevel())
	}

	if m.lastErr != nil {
		b.WriteString("\n")
		b.WriteString(errStyle.Render(fmt.Sprintf("last error: %v", m.lastErr)))
		b.WriteString("\n")
	}

	b.WriteString("\n")
	b.WriteString(dimStyle.Render("q to quit"))
	b.WriteString("\n")
	return b.String()
}

func (m Model) renderHeader() string {
	title := "rundownlog"
	if name := m.lv.Name(); name != "" {
		title = "rundownlog " + name
	}
	header := titleStyle.Render(title)

	if m.running {
		header += " " + runStyle.Render("IN LEVEL")
	}
	if n := len(m.finished); n > 0 {
		header += " " + dimStyle.Render(fmt.Sprintf("(%d completed)", n))
	}
	return header
}

func (m Model) renderLevel() string {
	var b strings.Builder

	if m.lv.HasSeeds {
		b.WriteString(dimStyle.Render(fmt.Sprintf(
			"build %d  host %d  session %d",
			m.lv.Seeds.Build, m.lv.Seeds.HostID, m.lv.Seeds.Session)))
		b.WriteString("\n\n")
	}

	for _, z := range m.lv.Zones {
		b.WriteString(zoneStyle.Render(z.String()))
		b.WriteString("\n")
		for _, item := range m.lv.Items[z.Key()] {
			b.WriteString(itemStyle.Render("- " + item.Label()))
			b.WriteString("\n")
		}
	}

	if len(m.lv.Overflow) > 0 {
		b.WriteString(zoneStyle.Render("unplaced"))
		b.WriteString("\n")
		for _, item := range m.lv.Overflow {
			b.WriteString(itemStyle.Render("- " + item.Label()))
			b.WriteString("\n")
		}
	}

	if len(m.lv.Uncategorized) > 0 {
		b.WriteString(zoneStyle.Render("uncategorized"))
		b.WriteString("\n")
		for _, entry := range m.lv.Uncategorized {
			b.WriteString(itemStyle.Render(fmt.Sprintf("- %s x%d", entry.Item, entry.Count)))
			b.WriteString("\n")
		}
	}

	return b.String()
}
