package activity

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"tgosint/backend/internal/archive"
)

func at(t *testing.T, value string) *time.Time {
	t.Helper()
	ts, err := time.Parse(time.RFC3339, value)
	if err != nil {
		t.Fatalf("bad timestamp %q: %v", value, err)
	}
	return &ts
}

func TestBuild_CountsHoursAndWeekdays(t *testing.T) {
	msgs := []archive.Message{
		{ID: 1, Date: at(t, "2024-03-04T09:00:00Z")},      // Monday
		{ID: 2, Date: at(t, "2024-03-04T09:59:59Z")},      // Monday
		{ID: 3, Date: at(t, "2024-03-10T23:30:00Z")},      // Sunday
		{ID: 4, Date: at(t, "2024-03-10T23:30:00+03:00")}, // Sunday, local hour kept
		{ID: 5},
	}

	h := Build(msgs)

	assert.Equal(t, 4, h.Total)
	assert.Equal(t, 1, h.Undated)
	assert.Equal(t, 2, h.Hours[9])
	assert.Equal(t, 2, h.Hours[23])
	assert.Equal(t, 2, h.Weekdays[0])
	assert.Equal(t, 2, h.Weekdays[6])

	hour, ok := h.PeakHour()
	assert.True(t, ok)
	assert.Equal(t, 9, hour)

	day, ok := h.PeakWeekday()
	assert.True(t, ok)
	assert.Equal(t, "Monday", day)
}

func TestBuild_Empty(t *testing.T) {
	h := Build(nil)

	assert.Zero(t, h.Total)
	_, ok := h.PeakHour()
	assert.False(t, ok)
	_, ok = h.PeakWeekday()
	assert.False(t, ok)
}
