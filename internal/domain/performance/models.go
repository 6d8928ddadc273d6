package performance

import "time"

type Cycle struct {
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	StartDate time.Time `json:"startDate"`
	EndDate   time.Time `json:"endDate"`
	IsActive  bool      `json:"isActive"`
	CreatedAt time.Time `json:"createdAt"`
}

type Appraisal struct {
	ID             string    `json:"id"`
	EmployeeID     string    `json:"employeeId"`
	CycleID        string    `json:"cycleId"`
	Status         string    `json:"status"`
	SelfReview     string    `json:"selfReview,omitempty"`
	ManagerReview  string    `json:"managerReview,omitempty"`
	Rating         *int      `json:"rating,omitempty"`
	HikePercent    *float64  `json:"hikePercent,omitempty"`
	HikeAmount     *int64    `json:"hikeAmount,omitempty"`
	ProposedSalary *int64    `json:"proposedSalary,omitempty"`
	IsAccepted     bool      `json:"isAccepted"`
	CreatedAt      time.Time `json:"createdAt"`
}

// CycleReview is an appraisal joined with employee identity for the admin
// cycle dashboard.
type CycleReview struct {
	Appraisal
	EmployeeName string `json:"employeeName"`
	Department   string `json:"department"`
}

// MyReview is the caller's appraisal in the currently active cycle.
type MyReview struct {
	Appraisal
	Cycle Cycle `json:"cycle"`
}
