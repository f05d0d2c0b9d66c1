package tui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/nixlim/tripwatch/internal/banner"
)

type panelDimensions struct {
	bannerH                int
	tripListW, tripListH   int
	alertListW, alertListH int
	activityW, activityH   int
	headerH                int
}

const (
	minWidth  = 40
	minHeight = 10

	headerHeight = 1
	bannerHeight = 3

	activityMinHeight = 5
	activityMaxHeight = 10
)

// computeDimensions splits the screen into a trip list on the left and the
// selected trip's alerts above the activity feed on the right. When a banner
// is shown, bannerHeight rows below the header are reserved for it.
func computeDimensions(totalW, totalH int, withBanner bool) panelDimensions {
	if totalW < minWidth {
		totalW = minWidth
	}
	if totalH < minHeight {
		totalH = minHeight
	}

	d := panelDimensions{headerH: headerHeight}
	if withBanner {
		d.bannerH = bannerHeight
	}

	usableH := totalH - d.headerH - d.bannerH
	if usableH < 4 {
		usableH = 4
	}

	d.tripListW = totalW * 40 / 100
	if d.tripListW < 20 {
		d.tripListW = 20
	}
	if d.tripListW > totalW-20 {
		d.tripListW = totalW - 20
	}
	d.tripListH = usableH

	rightW := totalW - d.tripListW
	if rightW < 20 {
		rightW = 20
	}

	d.activityW = rightW
	d.activityH = usableH * 40 / 100
	if d.activityH < activityMinHeight {
		d.activityH = activityMinHeight
	}
	if d.activityH > activityMaxHeight {
		d.activityH = activityMaxHeight
	}
	if d.activityH > usableH/2 {
		d.activityH = usableH / 2
	}

	d.alertListW = rightW
	d.alertListH = usableH - d.activityH
	if d.alertListH < 3 {
		d.alertListH = 3
	}

	return d
}

var (
	headerStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("15")).
			Background(lipgloss.Color("62"))

	panelBorderStyle = lipgloss.NewStyle().
				Border(lipgloss.RoundedBorder()).
				BorderForeground(lipgloss.Color("240"))

	focusBorderColor = lipgloss.Color("63")

	panelTitleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("69"))

	selectedStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("15")).
			Background(lipgloss.Color("62"))

	dimStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("240"))

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("196"))
)

func renderBorderedPanel(content string, w, h int, focused bool) string {
	style := panelBorderStyle
	if focused {
		style = style.BorderForeground(focusBorderColor)
	}

	contentH := h - 2
	if contentH < 1 {
		contentH = 1
	}

	lines := strings.Split(content, "\n")
	if len(lines) > contentH {
		lines = lines[:contentH]
		content = strings.Join(lines, "\n")
	}

	return style.
		Width(w - 2).
		Height(contentH).
		Render(content)
}

// currentBanner renders the banner for the selected trip, or "" when the
// trip is not monitored or nothing is selected.
func (m Model) currentBanner() string {
	t := m.selectedTrip()
	if t == nil {
		return ""
	}
	return banner.Render(banner.ForAlerts(t.Alerts, t.Monitoring), max(m.width, minWidth), m.frame)
}

func (m Model) renderDashboard() string {
	bannerStr := m.currentBanner()
	dims := computeDimensions(m.width, m.height, bannerStr != "")

	header := m.renderHeader()

	tripList := m.renderTripListPanel(dims.tripListW, dims.tripListH)
	alertList := m.renderAlertListPanel(dims.alertListW, dims.alertListH)
	activity := m.renderActivityPanel(dims.activityW, dims.activityH)

	rightCol := lipgloss.JoinVertical(lipgloss.Left, alertList, activity)
	mainContent := lipgloss.JoinHorizontal(lipgloss.Top, tripList, rightCol)

	if dims.bannerH > 0 {
		// Reserve blank rows so the banner never hides panel content.
		mainContent = strings.Repeat("\n", dims.bannerH) + mainContent
		mainContent = banner.Overlay(mainContent, bannerStr)
	}

	return lipgloss.JoinVertical(lipgloss.Left, header, mainContent)
}

func (m Model) renderHeader() string {
	title := " tripwatch"
	indicators := m.headerIndicators()
	status := ""
	if m.statusLine != "" {
		status = " " + errorStyle.Render(m.statusLine)
	}
	help := m.keys.helpLine()

	padding := m.width - lipgloss.Width(title) - lipgloss.Width(indicators) - lipgloss.Width(status) - lipgloss.Width(help)
	if padding < 0 {
		padding = 0
	}

	return headerStyle.Width(m.width).Render(title + indicators + status + strings.Repeat(" ", padding) + help)
}
