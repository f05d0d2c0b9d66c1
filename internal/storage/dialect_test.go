package storage

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestDialect_Rebind(t *testing.T) {
	tests := []struct {
		name    string
		dialect dialect
		query   string
		want    string
	}{
		{"sqlite untouched", sqliteDialect, "SELECT * FROM trips WHERE trip_id = ?", "SELECT * FROM trips WHERE trip_id = ?"},
		{"postgres single", postgresDialect, "DELETE FROM trips WHERE updated_at < ?", "DELETE FROM trips WHERE updated_at < $1"},
		{"postgres many", postgresDialect, "VALUES (?, ?, ?)", "VALUES ($1, $2, $3)"},
		{"postgres none", postgresDialect, "SELECT 1", "SELECT 1"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.dialect.rebind(tt.query))
		})
	}
}

func TestFormatTime_RoundTripAndOrder(t *testing.T) {
	a := time.Date(2026, 3, 1, 9, 0, 0, 5, time.FixedZone("X", 3600))
	b := a.Add(time.Second)

	assert.True(t, parseTime(formatTime(a)).Equal(a))
	assert.Less(t, formatTime(a), formatTime(b))
	assert.Len(t, formatTime(a), len(timeLayout))

	assert.Equal(t, "", formatTime(time.Time{}))
	assert.True(t, parseTime("").IsZero())
	assert.True(t, parseTime("not a time").IsZero())
}
