package clock

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestStartOfDay_UsesUTC(t *testing.T) {
	tokyo := time.FixedZone("JST", 9*3600)
	// 2024-01-16 03:30 JST is still 2024-01-15 in UTC.
	local := time.Date(2024, 1, 16, 3, 30, 0, 0, tokyo)

	got := StartOfDay(local)

	assert.Equal(t, time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC), got)
	assert.Equal(t, "2024-01-15", DateKey(local))
}

func TestSecondsToReset(t *testing.T) {
	tests := []struct {
		name string
		now  time.Time
		want int64
	}{
		{"midnight", time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC), 86400},
		{"one second before", time.Date(2024, 6, 1, 23, 59, 59, 0, time.UTC), 1},
		{"sub-second truncated", time.Date(2024, 6, 1, 23, 59, 59, 500_000_000, time.UTC), 0},
		{"noon", time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC), 43200},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, SecondsToReset(tt.now))
		})
	}
}

func TestFixed(t *testing.T) {
	at := time.Date(2024, 6, 1, 8, 0, 0, 0, time.UTC)
	c := Fixed(at)
	assert.True(t, at.Equal(c.Now()))
	assert.Equal(t, time.UTC, c.Now().Location())
}
