package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// View renders the progress view.
func (m Model) View() string {
	var sections []string
	sections = append(sections, m.styles.TitleStyle().Render("binclean"))

	if m.done {
		sections = append(sections, m.renderDone())
	} else {
		sections = append(sections, m.renderProgress())
	}

	sections = append(sections, m.renderTally())

	if len(m.skipped) > 0 {
		sections = append(sections, m.renderSkipped())
	}
	if len(m.problems) > 0 {
		sections = append(sections, m.renderProblems())
	}

	if !m.done {
		sections = append(sections, m.renderHelp())
	}
	return lipgloss.JoinVertical(lipgloss.Left, sections...) + "\n"
}

func (m Model) renderProgress() string {
	if m.index == 0 {
		return m.spinner.View() + " " + m.styles.SubtitleStyle().Render("Searching for projects...")
	}
	position := m.styles.SubtitleStyle().Render(fmt.Sprintf("%d/%d:", m.index, m.total))
	return fmt.Sprintf("%s %s %s", m.spinner.View(), position, m.styles.ProjectStyle().Render(m.current))
}

func (m Model) renderDone() string {
	if m.err != nil {
		return m.styles.ErrorStyle().Render("Error: " + m.err.Error())
	}
	summary := m.report.Summary()
	if m.report.OK() {
		return m.styles.SuccessStyle().Render(summary)
	}
	return m.styles.WarnStyle().Render(summary)
}

func (m Model) renderTally() string {
	parts := []string{
		m.styles.SuccessStyle().Render(fmt.Sprintf("%d deleted", m.deleted)),
		m.styles.MutedStyle().Render(fmt.Sprintf("%d absent", m.absent)),
	}
	failed := fmt.Sprintf("%d failed", m.failed)
	if m.failed > 0 {
		parts = append(parts, m.styles.ErrorStyle().Render(failed))
	} else {
		parts = append(parts, m.styles.MutedStyle().Render(failed))
	}
	return strings.Join(parts, m.styles.MutedStyle().Render(" • "))
}

func (m Model) renderSkipped() string {
	lines := []string{m.styles.WarnStyle().Render("Skipped:")}
	for _, s := range m.skipped {
		lines = append(lines, "  "+m.styles.MutedStyle().Render(s))
	}
	return strings.Join(lines, "\n")
}

func (m Model) renderProblems() string {
	var lines []string
	for _, e := range m.problems {
		level := m.styles.LogLevelStyle(e.Level).Render(e.Level)
		line := fmt.Sprintf("%s %s", level, e.Message)
		if path, ok := e.Fields["path"]; ok {
			line += fmt.Sprintf(" %v", path)
		}
		if m.width > 0 {
			line = lipgloss.NewStyle().MaxWidth(m.width).Render(line)
		}
		lines = append(lines, line)
	}
	return strings.Join(lines, "\n")
}

func (m Model) renderHelp() string {
	if m.cancelling {
		return m.styles.HelpStyle().Render("cancelling after the current project...")
	}
	return m.styles.HelpStyle().Render("ctrl+c: cancel")
}
