package core

import "time"

type Employee struct {
	ID                 string    `json:"id"`
	FirstName          string    `json:"firstName"`
	LastName           string    `json:"lastName"`
	Email              string    `json:"email"`
	Phone              string    `json:"phone,omitempty"`
	Designation        string    `json:"designation"`
	JoiningDate        time.Time `json:"joiningDate"`
	BaseSalary         int64     `json:"baseSalary"`
	SickLeaveBalance   int       `json:"sickLeaveBalance"`
	CasualLeaveBalance int       `json:"casualLeaveBalance"`
	EarnedLeaveBalance int       `json:"earnedLeaveBalance"`
	UserID             string    `json:"userId,omitempty"`
	DepartmentID       string    `json:"departmentId,omitempty"`
	DepartmentName     string    `json:"departmentName,omitempty"`
	HasLogin           bool      `json:"hasLogin"`
	CreatedAt          time.Time `json:"createdAt"`
}

type Department struct {
	ID            string    `json:"id"`
	Name          string    `json:"name"`
	EmployeeCount int       `json:"employeeCount"`
	CreatedAt     time.Time `json:"createdAt"`
}

type User struct {
	ID        string    `json:"id"`
	Email     string    `json:"email"`
	Role      string    `json:"role"`
	IsActive  bool      `json:"isActive"`
	CreatedAt time.Time `json:"createdAt"`
}

// Profile is the authenticated caller's user row plus the linked employee, if any.
type Profile struct {
	User     User      `json:"user"`
	Employee *Employee `json:"employee,omitempty"`
}

type RecentAttendance struct {
	ID       string     `json:"id"`
	Day      time.Time  `json:"day"`
	ClockIn  time.Time  `json:"clockIn"`
	ClockOut *time.Time `json:"clockOut,omitempty"`
	Status   string     `json:"status"`
}

type RecentLeave struct {
	ID        string    `json:"id"`
	Type      string    `json:"type"`
	StartDate time.Time `json:"startDate"`
	EndDate   time.Time `json:"endDate"`
	DaysCount int       `json:"daysCount"`
	Status    string    `json:"status"`
	CreatedAt time.Time `json:"createdAt"`
}

type EmployeeDetail struct {
	Employee
	RecentAttendance []RecentAttendance `json:"recentAttendance"`
	RecentLeaves     []RecentLeave      `json:"recentLeaves"`
}

type EmployeeInput struct {
	FirstName    string
	LastName     string
	Email        string
	Phone        string
	Designation  string
	JoiningDate  time.Time
	BaseSalary   int64
	DepartmentID string
}
