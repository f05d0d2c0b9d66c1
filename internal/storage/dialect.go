package storage

import (
	"strconv"
	"strings"
	"time"
)

// timeLayout is fixed-width so that lexical order on the stored text matches
// chronological order in both SQLite and Postgres.
const timeLayout = "2006-01-02T15:04:05.000000000Z"

// dialect captures the few places where SQLite and Postgres disagree.
type dialect struct {
	driver string
}

var (
	sqliteDialect   = dialect{driver: "sqlite"}
	postgresDialect = dialect{driver: "postgres"}
)

// rebind rewrites '?' placeholders to '$1', '$2', ... for Postgres. Queries
// in this package never contain a literal '?' inside a string.
func (d dialect) rebind(query string) string {
	if d.driver != "postgres" || !strings.Contains(query, "?") {
		return query
	}
	var b strings.Builder
	b.Grow(len(query) + 8)
	n := 0
	for _, r := range query {
		if r == '?' {
			n++
			b.WriteByte('$')
			b.WriteString(strconv.Itoa(n))
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

func (d dialect) tableExistsQuery() string {
	if d.driver == "postgres" {
		return d.rebind("SELECT table_name FROM information_schema.tables WHERE table_schema = current_schema() AND table_name = ?")
	}
	return "SELECT name FROM sqlite_master WHERE type='table' AND name=?"
}

func formatTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format(timeLayout)
}

func parseTime(s string) time.Time {
	if s == "" {
		return time.Time{}
	}
	t, err := time.Parse(timeLayout, s)
	if err != nil {
		t, err = time.Parse(time.RFC3339Nano, s)
		if err != nil {
			return time.Time{}
		}
	}
	return t
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
