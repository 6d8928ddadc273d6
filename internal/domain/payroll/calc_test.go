package payroll

import "testing"

func TestCompute(t *testing.T) {
	tests := []struct {
		name   string
		annual int64
		want   Breakdown
	}{
		{
			name:   "gross exactly at tax threshold stays untaxed",
			annual: 600000,
			want: Breakdown{
				MonthlyCTC:      50000,
				Basic:           25000,
				HRA:             10000,
				Medical:         1250,
				Special:         13750,
				GrossPay:        50000,
				PF:              3000,
				ProfessionalTax: 200,
				IncomeTax:       0,
				TotalDeductions: 3200,
				NetPay:          46800,
			},
		},
		{
			name:   "gross above threshold is taxed",
			annual: 1200000,
			want: Breakdown{
				MonthlyCTC:      100000,
				Basic:           50000,
				HRA:             20000,
				Medical:         1250,
				Special:         28750,
				GrossPay:        100000,
				PF:              6000,
				ProfessionalTax: 200,
				IncomeTax:       10000,
				TotalDeductions: 16200,
				NetPay:          83800,
			},
		},
		{
			name:   "one unit over the threshold",
			annual: 600012,
			want: Breakdown{
				MonthlyCTC:      50001,
				Basic:           25001,
				HRA:             10000,
				Medical:         1250,
				Special:         13750,
				GrossPay:        50001,
				PF:              3000,
				ProfessionalTax: 200,
				IncomeTax:       5000,
				TotalDeductions: 8200,
				NetPay:          41801,
			},
		},
		{
			name:   "small salary clamps special allowance at zero",
			annual: 24000,
			want: Breakdown{
				MonthlyCTC:      2000,
				Basic:           1000,
				HRA:             400,
				Medical:         1250,
				Special:         0,
				GrossPay:        2650,
				PF:              120,
				ProfessionalTax: 200,
				IncomeTax:       0,
				TotalDeductions: 320,
				NetPay:          2330,
			},
		},
	}

	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			got := Compute(tc.annual)
			if got != tc.want {
				t.Fatalf("Compute(%d) = %+v, want %+v", tc.annual, got, tc.want)
			}
		})
	}
}

func TestPctOfRoundsHalfUp(t *testing.T) {
	tests := []struct {
		amount  int64
		percent int64
		want    int64
	}{
		{amount: 100, percent: 50, want: 50},
		{amount: 101, percent: 50, want: 51},
		{amount: 33, percent: 10, want: 3},
		{amount: 35, percent: 10, want: 4},
	}
	for _, tc := range tests {
		if got := pctOf(tc.amount, tc.percent); got != tc.want {
			t.Fatalf("pctOf(%d, %d) = %d, want %d", tc.amount, tc.percent, got, tc.want)
		}
	}
}
