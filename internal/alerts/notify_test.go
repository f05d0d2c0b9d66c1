package alerts

import (
	"strings"
	"testing"
)

func TestTruncateTripID(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{
			name:  "long ID is truncated",
			input: "trip-1234567890abcdef",
			want:  "trip-1234567...",
		},
		{
			name:  "short ID unchanged",
			input: "trip-123",
			want:  "trip-123",
		},
		{
			name:  "exactly 12 chars unchanged",
			input: "123456789012",
			want:  "123456789012",
		},
		{
			name:  "13 chars truncated",
			input: "1234567890123",
			want:  "123456789012...",
		},
		{
			name:  "empty string",
			input: "",
			want:  "",
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got := truncateTripID(tc.input)
			if got != tc.want {
				t.Errorf("truncateTripID(%q) = %q, want %q", tc.input, got, tc.want)
			}
		})
	}
}

func TestNotificationText(t *testing.T) {
	title, body := notificationText(StatusChange{TripID: "trip-42", From: StatusSafe, To: StatusDeviation})
	if title != "tripwatch: deviation" {
		t.Errorf("title = %q", title)
	}
	if !strings.Contains(body, "trip-42") || !strings.Contains(body, "from safe to deviation") {
		t.Errorf("body = %q", body)
	}
}
