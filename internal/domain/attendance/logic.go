package attendance

import "time"

// DayOf truncates an instant to local midnight. The (employee, day) uniqueness
// key and every "today" check in this package go through here.
func DayOf(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

// MonthRange returns the inclusive first and last day of a calendar month,
// both at local midnight.
func MonthRange(month time.Month, year int) (time.Time, time.Time) {
	start := time.Date(year, month, 1, 0, 0, 0, 0, time.Local)
	end := start.AddDate(0, 1, -1)
	return start, end
}

// DeriveDayStatus is the canonical status derivation for a day's attendance.
// Every report and the dashboard status endpoint derive through this function.
func DeriveDayStatus(hasRecord, clockedOut bool) string {
	switch {
	case !hasRecord:
		return DayAbsent
	case clockedOut:
		return DayCompleted
	default:
		return DayWorking
	}
}
