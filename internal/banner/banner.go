package banner

import (
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/nixlim/tripwatch/internal/alerts"
)

// View is the banner content for a trip, before styling.
type View struct {
	Visible bool
	Status  alerts.Status
	Icon    string
	Message string
	Live    bool
}

var (
	liveOnStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("82"))

	liveOffStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("22"))

	liveLabelStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("82"))
)

// Build derives the banner view for status. Nothing is shown unless the
// trip is being monitored, and only the safe banner carries the live
// indicator.
func Build(status alerts.Status, monitoring bool) View {
	if !monitoring {
		return View{}
	}
	p := Lookup(status)
	return View{
		Visible: true,
		Status:  status,
		Icon:    p.Icon,
		Message: p.Message,
		Live:    status == alerts.StatusSafe,
	}
}

// ForAlerts classifies list and builds the banner view in one step.
func ForAlerts(list []alerts.Alert, monitoring bool) View {
	return Build(alerts.Classify(list), monitoring)
}

// Render styles v into a banner of the given total width. frame drives the
// pulse of the live dot. An invisible view renders as "".
func Render(v View, width, frame int) string {
	if !v.Visible {
		return ""
	}
	p := Lookup(v.Status)

	content := p.IconStyle.Render(v.Icon) + " " + v.Message
	if v.Live {
		content += "  " + liveIndicator(frame)
	}

	style := p.Container
	// Border takes one column each side.
	if width > 2 {
		style = style.Width(width - 2)
	}
	return style.Render(content)
}

// liveIndicator renders the pulsing dot and label; the dot alternates
// between bright and dim on successive frames.
func liveIndicator(frame int) string {
	dot := liveOnStyle.Render("●")
	if frame%2 != 0 {
		dot = liveOffStyle.Render("●")
	}
	return dot + " " + liveLabelStyle.Render("LIVE")
}

// Overlay draws banner over the top rows of base. An empty banner leaves
// base untouched.
func Overlay(base, banner string) string {
	if banner == "" {
		return base
	}
	bannerLines := strings.Split(banner, "\n")
	baseLines := strings.Split(base, "\n")
	if base == "" {
		baseLines = nil
	}

	for i, line := range bannerLines {
		if i < len(baseLines) {
			baseLines[i] = line
		} else {
			baseLines = append(baseLines, line)
		}
	}
	return strings.Join(baseLines, "\n")
}
