package leave

import (
	"errors"
	"time"
)

var ErrInvalidRange = errors.New("start date cannot be after end date")

// CalculateDays returns the inclusive day count between start and end:
// (Jan 1, Jan 1) is 1 day, (Jan 1, Jan 3) is 3.
func CalculateDays(start, end time.Time) (int, error) {
	if end.Before(start) {
		return 0, ErrInvalidRange
	}
	hours := end.Sub(start).Hours()
	days := int(hours/24) + 1
	if remainder := hours - float64(days-1)*24; remainder > 0 {
		days++
	}
	return days, nil
}

// balanceColumn maps a leave type onto its employee counter column. Callers
// must validate the type first; the whitelist keeps SQL assembly safe.
func balanceColumn(leaveType string) string {
	switch leaveType {
	case TypeSick:
		return "sick_leave_balance"
	case TypeCasual:
		return "casual_leave_balance"
	case TypeEarned:
		return "earned_leave_balance"
	}
	return ""
}
