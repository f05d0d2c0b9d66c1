package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/nixlim/tripwatch/internal/alerts"
	"github.com/nixlim/tripwatch/internal/banner"
	"github.com/nixlim/tripwatch/internal/trip"
)

const (
	tripNameCol   = 18
	tripStatusCol = 11
	tripAlertsCol = 6
)

// renderTripListPanel renders one row per trip: name, monitoring flag,
// coloured status and active alert count.
func (m Model) renderTripListPanel(w, h int) string {
	contentW := max(w-4, 16)

	var lines []string
	title := panelTitleStyle.Render("Trips")
	if monitored := len(trip.MonitoredTrips(m.snapshot)); len(m.snapshot) > 0 {
		title += dimStyle.Render(fmt.Sprintf(" [%d/%d monitored]", monitored, len(m.snapshot)))
	}
	lines = append(lines, title)

	if len(m.snapshot) == 0 {
		lines = append(lines, "", dimStyle.Render("No trips yet. Waiting for OTLP logs..."))
		return renderBorderedPanel(strings.Join(lines, "\n"), w, h, m.panelFocus == FocusTrips)
	}

	header := formatTripHeader()
	lines = append(lines, dimStyle.Render(header))
	lines = append(lines, dimStyle.Render(strings.Repeat("─", min(contentW, lipgloss.Width(header)))))

	for i := range m.snapshot {
		t := &m.snapshot[i]
		line := formatTripRow(t, i == m.tripCursor)
		lines = append(lines, line)
	}

	return renderBorderedPanel(strings.Join(lines, "\n"), w, h, m.panelFocus == FocusTrips)
}

func formatTripHeader() string {
	return fmt.Sprintf("  %-*s %-3s %-*s %*s", tripNameCol, "TRIP", "MON", tripStatusCol, "STATUS", tripAlertsCol, "ALERTS")
}

func formatTripRow(t *trip.Trip, selected bool) string {
	mon := "off"
	if t.Monitoring {
		mon = "on"
	}
	status := t.Status()
	name := fmt.Sprintf("%-*s", tripNameCol, trip.TruncateID(t.DisplayName(), tripNameCol))
	count := fmt.Sprintf("%*d", tripAlertsCol, len(t.ActiveAlerts()))
	statusCell := fmt.Sprintf("%-*s", tripStatusCol, status.String())

	if selected {
		return selectedStyle.Render(fmt.Sprintf("> %s %-3s %s %s", name, mon, statusCell, count))
	}
	return fmt.Sprintf("  %s %-3s %s %s", name, mon, statusStyle(status).Render(statusCell), count)
}

// statusStyle colours a status cell to match the banner for that status.
func statusStyle(s alerts.Status) lipgloss.Style {
	return banner.Lookup(s).IconStyle.UnsetBlink()
}
