package service

import (
	"time"
)

const (
	dayKeyLayout   = "2006-01-02"
	monthKeyLayout = "2006-01"
)

// PeriodContext identifies the current day and month in the configured
// time zone, plus the epoch second the context was taken at. Day and
// month keys double as storage keys and rollover boundaries.
type PeriodContext struct {
	DayKey   string
	MonthKey string
	Epoch    int64
}

// PeriodClock derives period contexts from wall-clock time and the
// configured zone. It is a pure function of time; the clock field is
// swappable in tests.
type PeriodClock struct {
	settingService *SettingService
	now            func() time.Time
}

func NewPeriodClock(settingService *SettingService) *PeriodClock {
	return &PeriodClock{settingService: settingService, now: time.Now}
}

func (c *PeriodClock) Current() PeriodContext {
	now := c.now().In(c.settingService.Get().Location)
	return PeriodContext{
		DayKey:   now.Format(dayKeyLayout),
		MonthKey: now.Format(monthKeyLayout),
		Epoch:    now.Unix(),
	}
}

// PreviousMonthKey returns the month before the current one in the
// configured zone, the default target of the monthly draw.
func (c *PeriodClock) PreviousMonthKey() string {
	loc := c.settingService.Get().Location
	now := c.now().In(loc)
	first := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, loc)
	return first.AddDate(0, -1, 0).Format(monthKeyLayout)
}

// ValidMonthKey reports whether key parses as YYYY-MM.
func ValidMonthKey(key string) bool {
	_, err := time.Parse(monthKeyLayout, key)
	return err == nil
}

// monthBefore returns the calendar month preceding the given month key.
// Invalid keys return empty.
func monthBefore(monthKey string) string {
	t, err := time.Parse(monthKeyLayout, monthKey)
	if err != nil {
		return ""
	}
	return t.AddDate(0, -1, 0).Format(monthKeyLayout)
}
