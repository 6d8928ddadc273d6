package leave

import (
	"testing"
	"time"
)

func TestCalculateDaysInclusive(t *testing.T) {
	tests := []struct {
		name  string
		start time.Time
		end   time.Time
		want  int
	}{
		{
			name:  "same day counts one",
			start: time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC),
			end:   time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC),
			want:  1,
		},
		{
			name:  "three day span",
			start: time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC),
			end:   time.Date(2025, 1, 3, 0, 0, 0, 0, time.UTC),
			want:  3,
		},
		{
			name:  "crosses month boundary",
			start: time.Date(2025, 1, 30, 0, 0, 0, 0, time.UTC),
			end:   time.Date(2025, 2, 2, 0, 0, 0, 0, time.UTC),
			want:  4,
		},
		{
			name:  "partial day rounds up",
			start: time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC),
			end:   time.Date(2025, 1, 2, 9, 30, 0, 0, time.UTC),
			want:  3,
		},
	}

	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			got, err := CalculateDays(tc.start, tc.end)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tc.want {
				t.Fatalf("expected %d days, got %d", tc.want, got)
			}
		})
	}
}

func TestCalculateDaysInvalidRange(t *testing.T) {
	start := time.Date(2025, 2, 10, 0, 0, 0, 0, time.UTC)
	end := time.Date(2025, 2, 9, 0, 0, 0, 0, time.UTC)

	if _, err := CalculateDays(start, end); err != ErrInvalidRange {
		t.Fatalf("expected ErrInvalidRange, got %v", err)
	}
}

func TestBalanceColumnWhitelist(t *testing.T) {
	tests := []struct {
		leaveType string
		want      string
	}{
		{leaveType: TypeSick, want: "sick_leave_balance"},
		{leaveType: TypeCasual, want: "casual_leave_balance"},
		{leaveType: TypeEarned, want: "earned_leave_balance"},
		{leaveType: "UNPAID", want: ""},
		{leaveType: "sick; DROP TABLE employees", want: ""},
	}
	for _, tc := range tests {
		if got := balanceColumn(tc.leaveType); got != tc.want {
			t.Fatalf("balanceColumn(%q) = %q, want %q", tc.leaveType, got, tc.want)
		}
	}
}

func TestInsufficientBalanceErrorMessage(t *testing.T) {
	err := &InsufficientBalanceError{Type: TypeCasual, Available: 2}
	want := "insufficient CASUAL leave balance (available: 2)"
	if err.Error() != want {
		t.Fatalf("expected %q, got %q", want, err.Error())
	}
}
