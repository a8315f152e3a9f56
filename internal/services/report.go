package services

import (
	"time"

	"github.com/pomotrack/apiserver/types"
)

// ReportDays is the length of the weekly report window, today included.
const ReportDays = 7

const dayLayout = "2006-01-02"

// dayKey formats t as a calendar day in loc. Grouping and window generation
// both use it.
func dayKey(t time.Time, loc *time.Location) string {
	return t.In(loc).Format(dayLayout)
}

// reportWindowStart returns midnight of the first day of the window ending on
// now's calendar day in loc.
func reportWindowStart(now time.Time, loc *time.Location) time.Time {
	y, m, d := now.In(loc).Date()
	return time.Date(y, m, d-(ReportDays-1), 0, 0, 0, 0, loc)
}

// BuildWeeklyReport groups record timestamps by calendar day in loc and
// returns exactly ReportDays entries in ascending date order, ending with
// now's day. Days without records have a zero count; timestamps outside the
// window are ignored.
func BuildWeeklyReport(now time.Time, loc *time.Location, stamps []time.Time) []types.DailyCount {
	if loc == nil {
		loc = time.UTC
	}

	counts := make(map[string]int, ReportDays)
	for _, ts := range stamps {
		counts[dayKey(ts, loc)]++
	}

	start := reportWindowStart(now, loc)
	report := make([]types.DailyCount, 0, ReportDays)
	for i := 0; i < ReportDays; i++ {
		key := dayKey(start.AddDate(0, 0, i), loc)
		report = append(report, types.DailyCount{Date: key, RecordCount: counts[key]})
	}
	return report
}
