package payroll

const (
	StatusGenerated = "GENERATED"
	StatusPaid      = "PAID"
)

// Fixed components of the monthly breakdown, in the smallest currency unit.
const (
	MedicalAllowance   int64 = 1250
	ProfessionalTax    int64 = 200
	IncomeTaxThreshold int64 = 50000
)
