package tui

import (
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/nixlim/tripwatch/internal/alerts"
	"github.com/nixlim/tripwatch/internal/config"
	"github.com/nixlim/tripwatch/internal/events"
	"github.com/nixlim/tripwatch/internal/trip"
)

type PanelFocus int

const (
	FocusTrips PanelFocus = iota
	FocusAlerts
)

type tickMsg time.Time

// TripProvider is the part of trip.Store the dashboard reads and mutates.
type TripProvider interface {
	ListTrips() []trip.Trip
	StartMonitoring(tripID, name string)
	StopMonitoring(tripID string) error
	DismissAlert(tripID, alertID string) error
	DroppedWrites() int64
}

// EventProvider supplies the activity feed and records dashboard actions.
type EventProvider interface {
	events.Sink
	Latest(n int) []events.FormattedEvent
}

type Model struct {
	width    int
	height   int
	keys     KeyMap
	quitting bool

	cfg config.Config

	trips  TripProvider
	events EventProvider

	snapshot    []trip.Trip
	tripCursor  int
	alertCursor int
	panelFocus  PanelFocus
	frame       int
	statusLine  string

	isPersistent bool

	refreshRate time.Duration
	now         func() time.Time

	onShutdown func()
}

func NewModel(cfg config.Config, opts ...ModelOption) Model {
	m := Model{
		keys:        DefaultKeyMap(),
		cfg:         cfg,
		refreshRate: time.Duration(cfg.Display.RefreshRateMS) * time.Millisecond,
		now:         time.Now,
	}
	if m.refreshRate <= 0 {
		m.refreshRate = 500 * time.Millisecond
	}

	for _, opt := range opts {
		opt(&m)
	}

	m.refresh()
	return m
}

type ModelOption func(*Model)

func WithTripProvider(p TripProvider) ModelOption {
	return func(m *Model) { m.trips = p }
}

func WithEventProvider(e EventProvider) ModelOption {
	return func(m *Model) { m.events = e }
}

func WithOnShutdown(fn func()) ModelOption {
	return func(m *Model) { m.onShutdown = fn }
}

func WithPersistenceFlag(isPersistent bool) ModelOption {
	return func(m *Model) { m.isPersistent = isPersistent }
}

func (m Model) Init() tea.Cmd {
	return m.tickCmd()
}

func (m Model) tickCmd() tea.Cmd {
	return tea.Tick(m.refreshRate, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case tickMsg:
		m.frame++
		m.refresh()
		return m, m.tickCmd()

	case tea.KeyMsg:
		return m.handleKey(msg)
	}

	return m, nil
}

// refresh re-reads trips and keeps both cursors in range.
func (m *Model) refresh() {
	if m.trips == nil {
		m.snapshot = nil
	} else {
		m.snapshot = m.trips.ListTrips()
	}
	m.tripCursor = clamp(m.tripCursor, len(m.snapshot))
	m.alertCursor = clamp(m.alertCursor, len(m.selectedAlerts()))
}

func clamp(i, n int) int {
	if i >= n {
		i = n - 1
	}
	if i < 0 {
		i = 0
	}
	return i
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Quit):
		m.quitting = true
		if m.onShutdown != nil {
			m.onShutdown()
		}
		return m, tea.Quit

	case key.Matches(msg, m.keys.Tab):
		if m.panelFocus == FocusTrips {
			m.panelFocus = FocusAlerts
			m.alertCursor = 0
		} else {
			m.panelFocus = FocusTrips
		}
		return m, nil

	case key.Matches(msg, m.keys.ToggleMonitoring):
		m.toggleMonitoring()
		return m, nil

	case key.Matches(msg, m.keys.Dismiss):
		m.dismissSelected()
		return m, nil

	case key.Matches(msg, m.keys.Up):
		if m.panelFocus == FocusAlerts {
			if m.alertCursor > 0 {
				m.alertCursor--
			}
		} else if m.tripCursor > 0 {
			m.tripCursor--
			m.alertCursor = 0
		}
		return m, nil

	case key.Matches(msg, m.keys.Down):
		if m.panelFocus == FocusAlerts {
			if m.alertCursor < len(m.selectedAlerts())-1 {
				m.alertCursor++
			}
		} else if m.tripCursor < len(m.snapshot)-1 {
			m.tripCursor++
			m.alertCursor = 0
		}
		return m, nil
	}

	return m, nil
}

// selectedTrip returns the trip under the cursor, or nil.
func (m Model) selectedTrip() *trip.Trip {
	if m.tripCursor < 0 || m.tripCursor >= len(m.snapshot) {
		return nil
	}
	return &m.snapshot[m.tripCursor]
}

func (m Model) selectedAlerts() []alerts.Alert {
	t := m.selectedTrip()
	if t == nil {
		return nil
	}
	return t.ActiveAlerts()
}

func (m *Model) toggleMonitoring() {
	t := m.selectedTrip()
	if t == nil || m.trips == nil {
		return
	}
	if t.Monitoring {
		if err := m.trips.StopMonitoring(t.ID); err != nil {
			m.statusLine = "Error: " + err.Error()
			return
		}
		m.record(events.FormatMonitoring(t.ID, false, m.now()))
	} else {
		m.trips.StartMonitoring(t.ID, "")
		m.record(events.FormatMonitoring(t.ID, true, m.now()))
	}
	m.statusLine = ""
	m.refresh()
}

func (m *Model) dismissSelected() {
	if m.panelFocus != FocusAlerts || m.trips == nil {
		return
	}
	t := m.selectedTrip()
	list := m.selectedAlerts()
	if t == nil || m.alertCursor >= len(list) {
		return
	}
	a := list[m.alertCursor]
	if err := m.trips.DismissAlert(t.ID, a.ID); err != nil {
		m.statusLine = "Error: " + err.Error()
		return
	}
	m.record(events.FormatDismiss(t.ID, a.ID, m.now()))
	m.statusLine = ""
	m.refresh()
}

func (m Model) record(e events.FormattedEvent) {
	if m.events != nil {
		m.events.Add(e)
	}
}

func (m Model) headerIndicators() string {
	var parts []string
	if !m.isPersistent {
		parts = append(parts, "[No persistence]")
	}
	if m.trips != nil && m.trips.DroppedWrites() > 0 {
		parts = append(parts, "[!] Writes dropped")
	}
	if len(parts) == 0 {
		return ""
	}
	return " " + dimStyle.Render(strings.Join(parts, " "))
}

func (m Model) View() string {
	if m.quitting {
		return "Shutting down...\n"
	}

	output := m.renderDashboard()

	if m.height > 0 {
		lines := strings.Split(output, "\n")
		if len(lines) > m.height {
			lines = lines[:m.height]
			output = strings.Join(lines, "\n")
		}
	}

	return output
}
