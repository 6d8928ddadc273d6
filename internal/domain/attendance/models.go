package attendance

import "time"

type Record struct {
	ID         string     `json:"id"`
	EmployeeID string     `json:"employeeId"`
	Day        time.Time  `json:"day"`
	ClockIn    time.Time  `json:"clockIn"`
	ClockOut   *time.Time `json:"clockOut,omitempty"`
	Status     string     `json:"status"`
}

// TodayStatus is the employee-dashboard view of the current day.
type TodayStatus struct {
	Status   string     `json:"status"`
	PunchIn  *time.Time `json:"punchIn,omitempty"`
	PunchOut *time.Time `json:"punchOut,omitempty"`
}

// DailyEntry is one employee's row in the daily report.
type DailyEntry struct {
	EmployeeID string     `json:"employeeId"`
	Name       string     `json:"name"`
	Department string     `json:"department"`
	PunchIn    *time.Time `json:"punchIn,omitempty"`
	PunchOut   *time.Time `json:"punchOut,omitempty"`
	Status     string     `json:"status"`
}

// MonthlyEntry is one employee's ordered attendance rows for a calendar month.
type MonthlyEntry struct {
	EmployeeID string   `json:"employeeId"`
	Name       string   `json:"name"`
	Department string   `json:"department"`
	Records    []Record `json:"records"`
}
