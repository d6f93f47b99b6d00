package market

import "time"

// Session is one trading window within a day, in exchange-local time.
type Session struct {
	OpenHour, OpenMin   int
	CloseHour, CloseMin int
}

// Calendar answers "is the market open" and "how long until it opens".
// Defaults model the Vietnam exchange: two weekday sessions with a lunch
// break. The trading loop only consults the calendar; day-rollover
// detection lives in the risk manager.
type Calendar struct {
	Sessions []Session
	Location *time.Location
}

func DefaultCalendar() *Calendar {
	return &Calendar{
		Sessions: []Session{
			{OpenHour: 9, OpenMin: 0, CloseHour: 11, CloseMin: 30},
			{OpenHour: 13, OpenMin: 0, CloseHour: 14, CloseMin: 30},
		},
		Location: time.Local,
	}
}

func (c *Calendar) IsOpen(t time.Time) bool {
	t = t.In(c.loc())
	if wd := t.Weekday(); wd == time.Saturday || wd == time.Sunday {
		return false
	}
	for _, s := range c.Sessions {
		open := time.Date(t.Year(), t.Month(), t.Day(), s.OpenHour, s.OpenMin, 0, 0, c.loc())
		close := time.Date(t.Year(), t.Month(), t.Day(), s.CloseHour, s.CloseMin, 0, 0, c.loc())
		if !t.Before(open) && !t.After(close) {
			return true
		}
	}
	return false
}

// UntilOpen returns the duration until the next session opens, or zero if
// the market is open at t.
func (c *Calendar) UntilOpen(t time.Time) time.Duration {
	if c.IsOpen(t) {
		return 0
	}
	t = t.In(c.loc())
	// Scan forward day by day; the first session open after t wins.
	for day := 0; day < 8; day++ {
		d := t.AddDate(0, 0, day)
		if wd := d.Weekday(); wd == time.Saturday || wd == time.Sunday {
			continue
		}
		for _, s := range c.Sessions {
			open := time.Date(d.Year(), d.Month(), d.Day(), s.OpenHour, s.OpenMin, 0, 0, c.loc())
			if open.After(t) {
				return open.Sub(t)
			}
		}
	}
	return 0
}

func (c *Calendar) loc() *time.Location {
	if c.Location == nil {
		return time.Local
	}
	return c.Location
}
