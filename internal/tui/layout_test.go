package tui

import (
	"strings"
	"testing"
	"time"

	"github.com/nixlim/tripwatch/internal/alerts"
	"github.com/nixlim/tripwatch/internal/events"
	"github.com/nixlim/tripwatch/internal/trip"
)

func TestComputeDimensions(t *testing.T) {
	tests := []struct {
		name       string
		w, h       int
		withBanner bool
	}{
		{"standard", 120, 40, false},
		{"with banner", 120, 40, true},
		{"tiny clamps", 10, 5, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := computeDimensions(tt.w, tt.h, tt.withBanner)
			w := max(tt.w, minWidth)
			h := max(tt.h, minHeight)

			if d.tripListW+d.alertListW != w {
				t.Errorf("widths should fill the screen: %d + %d != %d", d.tripListW, d.alertListW, w)
			}
			if d.alertListW != d.activityW {
				t.Errorf("right column panels should share a width: %d vs %d", d.alertListW, d.activityW)
			}
			wantBanner := 0
			if tt.withBanner {
				wantBanner = bannerHeight
			}
			if d.bannerH != wantBanner {
				t.Errorf("bannerH: want %d, got %d", wantBanner, d.bannerH)
			}
			if h >= 20 && d.headerH+d.bannerH+d.tripListH != h {
				t.Errorf("heights should fill the screen: %d+%d+%d != %d", d.headerH, d.bannerH, d.tripListH, h)
			}
			if d.alertListH+d.activityH != d.tripListH {
				t.Errorf("right column should match left height: %d+%d != %d", d.alertListH, d.activityH, d.tripListH)
			}
		})
	}
}

func TestRenderDashboard_BannerFollowsSelectedTrip(t *testing.T) {
	store := seededStore()
	m := newTestModel(t, store, events.NewRingBuffer(10))

	view := m.View()
	if !strings.Contains(view, "High-risk situation detected") {
		t.Error("high-risk trip should show the high-risk banner")
	}
	if strings.Contains(view, "LIVE") {
		t.Error("non-safe banner must not show the live indicator")
	}

	// trip-002 is monitored with no alerts: safe and live.
	m = update(t, m, runeKey("j"))
	view = m.View()
	if !strings.Contains(view, "Trip on track. All clear.") {
		t.Error("safe monitored trip should show the safe banner")
	}
	if !strings.Contains(view, "LIVE") {
		t.Error("safe banner should show the live indicator")
	}
}

func TestRenderDashboard_NoBannerWhenNotMonitoring(t *testing.T) {
	store := trip.NewMemoryStore()
	store.AddAlert(alerts.Alert{ID: "a1", TripID: "trip-009", Type: alerts.TypeHighRisk})
	m := newTestModel(t, store, events.NewRingBuffer(10))

	view := m.View()
	if strings.Contains(view, "High-risk situation detected") {
		t.Error("unmonitored trip must not show a banner")
	}
	if !strings.Contains(view, "high-risk") {
		t.Error("status column should still show the derived status")
	}
}

func TestRenderDashboard_BannerDoesNotHideHeader(t *testing.T) {
	m := newTestModel(t, seededStore(), events.NewRingBuffer(10))
	lines := strings.Split(m.View(), "\n")
	if !strings.Contains(lines[0], "tripwatch") {
		t.Errorf("first line should be the header, got %q", lines[0])
	}
}

func TestRenderTripList(t *testing.T) {
	m := newTestModel(t, seededStore(), events.NewRingBuffer(10))
	panel := m.renderTripListPanel(60, 20)

	for _, want := range []string{"Trips", "[2/2 monitored]", "Morning commute", "School run", "STATUS", "high-risk", "safe"} {
		if !strings.Contains(panel, want) {
			t.Errorf("trip list should contain %q", want)
		}
	}
}

func TestRenderAlertList(t *testing.T) {
	store := seededStore()
	if err := store.DismissAlert("trip-001", "a1"); err != nil {
		t.Fatalf("DismissAlert: %v", err)
	}
	m := newTestModel(t, store, events.NewRingBuffer(10))
	m.now = func() time.Time { return time.Now().Add(3 * time.Minute) }

	panel := m.renderAlertListPanel(70, 15)
	if !strings.Contains(panel, "vehicle stopped") {
		t.Error("active alert should be listed")
	}
	if strings.Contains(panel, "left planned route") {
		t.Error("dismissed alert should not be listed")
	}
	if !strings.Contains(panel, "1 dismissed") {
		t.Error("dismissed count should be shown in the title")
	}
	if !strings.Contains(panel, "minutes ago") {
		t.Error("alert age should be humanized")
	}
}

func TestRenderActivity(t *testing.T) {
	buf := events.NewRingBuffer(10)
	buf.Add(events.FormatChange(alerts.StatusChange{TripID: "trip-001", From: alerts.StatusSafe, To: alerts.StatusDeviation, At: time.Now()}))
	buf.Add(events.FormatRejected("", "missing trip.id", time.Now()))

	m := newTestModel(t, trip.NewMemoryStore(), buf)
	panel := m.renderActivityPanel(70, 10)

	first := strings.Index(panel, "status safe -> deviation")
	second := strings.Index(panel, "rejected: missing trip.id")
	if first < 0 || second < 0 {
		t.Fatalf("expected both feed entries in panel:\n%s", panel)
	}
	if first > second {
		t.Error("feed should list oldest first, newest at the bottom")
	}
}

func TestTruncateText(t *testing.T) {
	tests := []struct {
		in   string
		max  int
		want string
	}{
		{"short", 10, "short"},
		{"exactly10!", 10, "exactly10!"},
		{"this is too long", 10, "this is..."},
		{"abc", 2, "ab"},
		{"ümläüts-here", 6, "üml..."},
	}
	for _, tt := range tests {
		if got := truncateText(tt.in, tt.max); got != tt.want {
			t.Errorf("truncateText(%q, %d) = %q, want %q", tt.in, tt.max, got, tt.want)
		}
	}
}
