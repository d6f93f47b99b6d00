package market

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func utcCalendar() *Calendar {
	c := DefaultCalendar()
	c.Location = time.UTC
	return c
}

func TestCalendarIsOpen(t *testing.T) {
	t.Parallel()

	c := utcCalendar()

	// 2026-08-26 is a Wednesday.
	wed := func(h, m int) time.Time {
		return time.Date(2026, 8, 26, h, m, 0, 0, time.UTC)
	}

	tests := []struct {
		name string
		at   time.Time
		want bool
	}{
		{"morning session", wed(10, 0), true},
		{"session open edge", wed(9, 0), true},
		{"session close edge", wed(11, 30), true},
		{"lunch break", wed(12, 0), false},
		{"afternoon session", wed(13, 30), true},
		{"after close", wed(15, 0), false},
		{"before open", wed(8, 0), false},
		{"saturday", time.Date(2026, 8, 29, 10, 0, 0, 0, time.UTC), false},
		{"sunday", time.Date(2026, 8, 30, 10, 0, 0, 0, time.UTC), false},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, c.IsOpen(tt.at))
		})
	}
}

func TestCalendarUntilOpen(t *testing.T) {
	t.Parallel()

	c := utcCalendar()

	// Lunch break: afternoon session opens at 13:00.
	lunch := time.Date(2026, 8, 26, 12, 0, 0, 0, time.UTC)
	assert.Equal(t, time.Hour, c.UntilOpen(lunch))

	// Friday after close: next open is Monday 09:00.
	friday := time.Date(2026, 8, 28, 15, 0, 0, 0, time.UTC)
	assert.Equal(t, 66*time.Hour, c.UntilOpen(friday))

	// Already open.
	assert.Equal(t, time.Duration(0), c.UntilOpen(time.Date(2026, 8, 26, 10, 0, 0, 0, time.UTC)))
}
