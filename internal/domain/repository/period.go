package repository

import (
	"strings"
	"time"
)

// Period is a named look-back window ending now.
type Period struct {
	Key   string `json:"key"`
	Label string `json:"label"`
	Days  int    `json:"days"`
}

var periods = []Period{
	{Key: "1w", Label: "Last week", Days: 7},
	{Key: "1m", Label: "Last month", Days: 30},
	{Key: "3m", Label: "Last quarter", Days: 90},
	{Key: "1y", Label: "Last year", Days: 365},
	{Key: "2y", Label: "Last 2 years", Days: 730},
	{Key: "5y", Label: "Last 5 years", Days: 1825},
	{Key: "10y", Label: "Last 10 years", Days: 3650},
}

// Periods returns the selectable periods, shortest first.
func Periods() []Period {
	out := make([]Period, len(periods))
	copy(out, periods)
	return out
}

// DefaultPeriod is one year.
func DefaultPeriod() Period { return periods[3] }

// LookupPeriod matches a key or label, ignoring case and surrounding spaces.
func LookupPeriod(s string) (Period, bool) {
	s = strings.TrimSpace(s)
	for _, p := range periods {
		if strings.EqualFold(s, p.Key) || strings.EqualFold(s, p.Label) {
			return p, true
		}
	}
	return Period{}, false
}

// ResolvePeriod never fails: unrecognized input falls back to DefaultPeriod.
func ResolvePeriod(s string) Period {
	if p, ok := LookupPeriod(s); ok {
		return p
	}
	return DefaultPeriod()
}

// StartDate is now minus the period length in calendar days.
func (p Period) StartDate(now time.Time) time.Time {
	return now.AddDate(0, 0, -p.Days)
}

// StartDate resolves label and returns its start relative to now.
func StartDate(label string, now time.Time) time.Time {
	return ResolvePeriod(label).StartDate(now)
}
