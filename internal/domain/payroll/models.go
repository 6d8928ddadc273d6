package payroll

import "time"

type Record struct {
	ID              string     `json:"id"`
	EmployeeID      string     `json:"employeeId"`
	Month           string     `json:"month"`
	Year            int        `json:"year"`
	BaseSalary      int64      `json:"baseSalary"`
	Basic           int64      `json:"basic"`
	HRA             int64      `json:"hra"`
	Medical         int64      `json:"medical"`
	Special         int64      `json:"special"`
	GrossPay        int64      `json:"grossPay"`
	PF              int64      `json:"pf"`
	ProfessionalTax int64      `json:"professionalTax"`
	IncomeTax       int64      `json:"incomeTax"`
	TotalDeductions int64      `json:"totalDeductions"`
	NetPay          int64      `json:"netPay"`
	Status          string     `json:"status"`
	PaymentDate     *time.Time `json:"paymentDate,omitempty"`
	CreatedAt       time.Time  `json:"createdAt"`
}

// AdminRecord is a payroll row joined with employee identity for the admin
// dashboard listing.
type AdminRecord struct {
	Record
	EmployeeName string `json:"employeeName"`
	Department   string `json:"department"`
}

type GenerateResult struct {
	Month     string `json:"month"`
	Year      int    `json:"year"`
	Generated int    `json:"generated"`
}
