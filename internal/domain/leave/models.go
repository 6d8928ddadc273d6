package leave

import "time"

type Request struct {
	ID           string    `json:"id"`
	EmployeeID   string    `json:"employeeId"`
	Type         string    `json:"type"`
	StartDate    time.Time `json:"startDate"`
	EndDate      time.Time `json:"endDate"`
	DaysCount    int       `json:"daysCount"`
	Reason       string    `json:"reason,omitempty"`
	Status       string    `json:"status"`
	AdminComment string    `json:"adminComment,omitempty"`
	CreatedAt    time.Time `json:"createdAt"`
}

// PendingRequest is a pending row joined with the requesting employee for the
// admin approval queue.
type PendingRequest struct {
	Request
	EmployeeName string `json:"employeeName"`
	Department   string `json:"department"`
}

type Balances struct {
	Sick   int `json:"sick"`
	Casual int `json:"casual"`
	Earned int `json:"earned"`
}
