package tui

import (
	"fmt"
	"strings"

	"github.com/dustin/go-humanize"

	"github.com/nixlim/tripwatch/internal/alerts"
)

// renderAlertListPanel lists the selected trip's active alerts with ages
// relative to now.
func (m Model) renderAlertListPanel(w, h int) string {
	contentW := max(w-4, 16)
	focused := m.panelFocus == FocusAlerts

	var lines []string
	t := m.selectedTrip()
	if t == nil {
		lines = append(lines, panelTitleStyle.Render("Alerts"))
		lines = append(lines, "", dimStyle.Render("Select a trip"))
		return renderBorderedPanel(strings.Join(lines, "\n"), w, h, focused)
	}

	active := t.ActiveAlerts()
	title := panelTitleStyle.Render("Alerts") + dimStyle.Render(" ["+truncateText(t.DisplayName(), 20)+"]")
	if dismissed := len(t.Alerts) - len(active); dismissed > 0 {
		title += dimStyle.Render(fmt.Sprintf(" %d dismissed", dismissed))
	}
	lines = append(lines, title)

	if len(active) == 0 {
		lines = append(lines, "", dimStyle.Render("No active alerts"))
		return renderBorderedPanel(strings.Join(lines, "\n"), w, h, focused)
	}

	for i, a := range active {
		line := m.formatAlertRow(a, contentW)
		if focused && i == m.alertCursor {
			line = selectedStyle.Render(line)
		}
		lines = append(lines, line)
	}

	return renderBorderedPanel(strings.Join(lines, "\n"), w, h, focused)
}

func (m Model) formatAlertRow(a alerts.Alert, width int) string {
	age := humanize.RelTime(a.RaisedAt, m.now(), "ago", "from now")
	kind := statusStyle(alerts.Implied(a.Type)).Render(fmt.Sprintf("%-9s", a.Type))
	msg := a.Message
	if msg == "" {
		msg = a.ID
	}
	// 9 type + 2 spaces + age column.
	room := width - 9 - 2 - len(age) - 2
	return fmt.Sprintf("%s  %s  %s", kind, truncateText(msg, max(room, 8)), dimStyle.Render(age))
}

func truncateText(s string, maxLen int) string {
	r := []rune(s)
	if len(r) <= maxLen {
		return s
	}
	if maxLen <= 3 {
		return string(r[:maxLen])
	}
	return string(r[:maxLen-3]) + "..."
}
