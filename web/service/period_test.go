package service

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func fixedClock(t *testing.T, tz string, at time.Time) *PeriodClock {
	t.Helper()
	clock := NewPeriodClock(newTestSetting(t, "timezone = \""+tz+"\""))
	clock.now = func() time.Time { return at }
	return clock
}

func TestPeriodCurrentRespectsZone(t *testing.T) {
	// 02:30 UTC on March 1st is still February 29th in Santiago (UTC-3).
	at := time.Date(2024, 3, 1, 2, 30, 0, 0, time.UTC)

	utc := fixedClock(t, "UTC", at).Current()
	assert.Equal(t, "2024-03-01", utc.DayKey)
	assert.Equal(t, "2024-03", utc.MonthKey)
	assert.Equal(t, at.Unix(), utc.Epoch)

	scl := fixedClock(t, "America/Santiago", at).Current()
	assert.Equal(t, "2024-02-29", scl.DayKey)
	assert.Equal(t, "2024-02", scl.MonthKey)
}

func TestPreviousMonthKey(t *testing.T) {
	tests := []struct {
		at   time.Time
		want string
	}{
		{time.Date(2024, 3, 31, 12, 0, 0, 0, time.UTC), "2024-02"},
		{time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC), "2023-12"},
		{time.Date(2024, 7, 15, 12, 0, 0, 0, time.UTC), "2024-06"},
	}
	for _, tc := range tests {
		clock := fixedClock(t, "UTC", tc.at)
		assert.Equal(t, tc.want, clock.PreviousMonthKey())
	}
}

func TestValidMonthKey(t *testing.T) {
	assert.True(t, ValidMonthKey("2024-02"))
	assert.True(t, ValidMonthKey("1999-12"))
	assert.False(t, ValidMonthKey(""))
	assert.False(t, ValidMonthKey("2024-13"))
	assert.False(t, ValidMonthKey("2024-02-01"))
	assert.False(t, ValidMonthKey("february"))
}

func TestMonthBefore(t *testing.T) {
	assert.Equal(t, "2024-01", monthBefore("2024-02"))
	assert.Equal(t, "2023-12", monthBefore("2024-01"))
	assert.Equal(t, "", monthBefore("nope"))
}
