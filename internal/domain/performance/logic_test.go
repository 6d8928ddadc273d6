package performance

import "testing"

func TestComputeHike(t *testing.T) {
	tests := []struct {
		name         string
		salary       int64
		percent      float64
		wantAmount   int64
		wantProposed int64
	}{
		{name: "ten percent", salary: 600000, percent: 10, wantAmount: 60000, wantProposed: 660000},
		{name: "fractional percent rounds half up", salary: 100000, percent: 7.5, wantAmount: 7500, wantProposed: 107500},
		{name: "rounding boundary", salary: 333333, percent: 10, wantAmount: 33333, wantProposed: 366666},
		{name: "zero percent", salary: 500000, percent: 0, wantAmount: 0, wantProposed: 500000},
	}

	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			amount, proposed := ComputeHike(tc.salary, tc.percent)
			if amount != tc.wantAmount || proposed != tc.wantProposed {
				t.Fatalf("ComputeHike(%d, %v) = (%d, %d), want (%d, %d)",
					tc.salary, tc.percent, amount, proposed, tc.wantAmount, tc.wantProposed)
			}
		})
	}
}

func TestValidRating(t *testing.T) {
	for rating, want := range map[int]bool{0: false, 1: true, 3: true, 5: true, 6: false, -1: false} {
		if got := ValidRating(rating); got != want {
			t.Fatalf("ValidRating(%d) = %v, want %v", rating, got, want)
		}
	}
}
