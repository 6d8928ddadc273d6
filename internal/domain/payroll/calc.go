package payroll

// Breakdown is one employee's monthly salary computation. All amounts are in
// the smallest currency unit.
type Breakdown struct {
	MonthlyCTC      int64
	Basic           int64
	HRA             int64
	Medical         int64
	Special         int64
	GrossPay        int64
	PF              int64
	ProfessionalTax int64
	IncomeTax       int64
	TotalDeductions int64
	NetPay          int64
}

// pctOf rounds amount*percent/100 half up. Amounts are never negative here.
func pctOf(amount, percent int64) int64 {
	return (amount*percent + 50) / 100
}

// Compute derives the monthly breakdown from an annual base salary. The
// special allowance absorbs whatever the fixed components leave of the
// monthly CTC, floored at zero. Income tax applies only when gross strictly
// exceeds the threshold; gross of exactly the threshold is untaxed.
func Compute(annualBaseSalary int64) Breakdown {
	b := Breakdown{
		MonthlyCTC:      annualBaseSalary / 12,
		Medical:         MedicalAllowance,
		ProfessionalTax: ProfessionalTax,
	}
	b.Basic = pctOf(b.MonthlyCTC, 50)
	b.HRA = pctOf(b.Basic, 40)
	b.Special = b.MonthlyCTC - (b.Basic + b.HRA + b.Medical)
	if b.Special < 0 {
		b.Special = 0
	}
	b.GrossPay = b.Basic + b.HRA + b.Medical + b.Special
	b.PF = pctOf(b.Basic, 12)
	if b.GrossPay > IncomeTaxThreshold {
		b.IncomeTax = pctOf(b.GrossPay, 10)
	}
	b.TotalDeductions = b.PF + b.ProfessionalTax + b.IncomeTax
	b.NetPay = b.GrossPay - b.TotalDeductions
	return b
}
