// Package banner turns a trip's derived status into the coloured banner
// shown over the dashboard.
package banner

import (
	"fmt"

	"github.com/charmbracelet/lipgloss"

	"github.com/nixlim/tripwatch/internal/alerts"
)

// Presentation is the static look of the banner for one status.
type Presentation struct {
	Icon      string
	Message   string
	Container lipgloss.Style
	IconStyle lipgloss.Style
}

var (
	safeColor      = lipgloss.Color("82")
	deviationColor = lipgloss.Color("214")
	highRiskColor  = lipgloss.Color("196")
)

func containerStyle(c lipgloss.Color) lipgloss.Style {
	return lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(c).
		Foreground(lipgloss.Color("15")).
		Padding(0, 1)
}

// presentations is indexed by alerts.Status and must cover every value.
var presentations = [...]Presentation{
	alerts.StatusSafe: {
		Icon:      "✔",
		Message:   "Trip on track. All clear.",
		Container: containerStyle(safeColor),
		IconStyle: lipgloss.NewStyle().Bold(true).Foreground(safeColor),
	},
	alerts.StatusDeviation: {
		Icon:      "⚠",
		Message:   "Route deviation detected",
		Container: containerStyle(deviationColor),
		IconStyle: lipgloss.NewStyle().Bold(true).Foreground(deviationColor),
	},
	alerts.StatusHighRisk: {
		Icon:      "✖",
		Message:   "High-risk situation detected",
		Container: containerStyle(highRiskColor).Bold(true),
		IconStyle: lipgloss.NewStyle().Bold(true).Foreground(highRiskColor).Blink(true),
	},
}

func init() {
	if len(presentations) != len(alerts.Statuses()) {
		panic(fmt.Sprintf("banner: %d presentations for %d statuses", len(presentations), len(alerts.Statuses())))
	}
}

// Lookup returns the presentation for s. An undefined status is a
// programming error and panics.
func Lookup(s alerts.Status) Presentation {
	if !s.Valid() {
		panic(fmt.Sprintf("banner: no presentation for %s", s))
	}
	return presentations[s]
}
