package tui

import (
	"strings"

	"github.com/nixlim/tripwatch/internal/events"
)

// renderActivityPanel shows the most recent feed entries, newest at the
// bottom like a log tail.
func (m Model) renderActivityPanel(w, h int) string {
	contentW := max(w-4, 16)
	rows := max(h-3, 1)

	lines := []string{panelTitleStyle.Render("Activity")}
	if m.events == nil {
		lines = append(lines, dimStyle.Render("(feed disabled)"))
		return renderBorderedPanel(strings.Join(lines, "\n"), w, h, false)
	}

	latest := m.events.Latest(rows)
	if len(latest) == 0 {
		lines = append(lines, dimStyle.Render("No activity yet"))
		return renderBorderedPanel(strings.Join(lines, "\n"), w, h, false)
	}

	for i := len(latest) - 1; i >= 0; i-- {
		lines = append(lines, formatActivityLine(latest[i], contentW))
	}
	return renderBorderedPanel(strings.Join(lines, "\n"), w, h, false)
}

func formatActivityLine(e events.FormattedEvent, width int) string {
	ts := dimStyle.Render(e.Timestamp.Format("15:04:05"))
	text := truncateText(e.Text, max(width-9, 8))
	if e.Kind == events.KindRejected {
		text = errorStyle.Render(text)
	}
	return ts + " " + text
}
