package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// renderHeader stacks a bold title over an optional muted subtitle, both cut
// to the terminal width.
func renderHeader(title, subtitle string, width int) string {
	rows := []string{HeaderStyle.Render(truncateEnd(title, width-2))}
	if subtitle != "" {
		rows = append(rows, renderMuted(truncateEnd(subtitle, width-2)))
	}
	return lipgloss.JoinVertical(lipgloss.Top, rows...)
}

// renderChips lays out the selected interest tags as chips on one line. Tags
// that do not fit collapse into a "+N" counter.
func renderChips(labels []string, width int) string {
	if len(labels) == 0 {
		return renderMuted("no interests selected")
	}

	var b strings.Builder
	used := 0
	for i, label := range labels {
		chip := SelectedChipStyle.Padding(0, 1).Render(label)
		w := lipgloss.Width(chip) + 1
		rest := len(labels) - i
		if width > 0 && used+w > width-6 {
			b.WriteString(renderMuted(fmt.Sprintf("+%d", rest)))
			break
		}
		b.WriteString(chip)
		b.WriteString(" ")
		used += w
	}
	return strings.TrimRight(b.String(), " ")
}

// renderInputFrame draws a rounded border around an already rendered input.
func renderInputFrame(inputView string, focused bool, contentWidth int) string {
	borderColor := MutedColor
	if focused {
		borderColor = AccentColor
	}
	return lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(borderColor).
		Padding(0, 1).
		Width(contentWidth + 4).
		Render(inputView)
}

func renderCentered(width, height int, content string) string {
	return lipgloss.NewStyle().
		Width(width).
		Height(height).
		Align(lipgloss.Center, lipgloss.Center).
		Render(content)
}

func renderMuted(text string) string {
	return lipgloss.NewStyle().Foreground(MutedColor).Render(text)
}
