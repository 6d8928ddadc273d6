package attendance

import (
	"testing"
	"time"
)

func TestDayOfTruncatesToMidnight(t *testing.T) {
	loc, err := time.LoadLocation("Asia/Kolkata")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	instant := time.Date(2025, 3, 14, 18, 45, 12, 999, loc)

	day := DayOf(instant)
	if day.Hour() != 0 || day.Minute() != 0 || day.Second() != 0 || day.Nanosecond() != 0 {
		t.Fatalf("expected midnight, got %v", day)
	}
	if day.Location() != loc {
		t.Fatalf("expected location preserved, got %v", day.Location())
	}
	if day.Day() != 14 || day.Month() != time.March {
		t.Fatalf("expected same calendar day, got %v", day)
	}
}

func TestMonthRange(t *testing.T) {
	tests := []struct {
		name      string
		month     time.Month
		year      int
		wantStart string
		wantEnd   string
	}{
		{name: "thirty one days", month: time.January, year: 2025, wantStart: "2025-01-01", wantEnd: "2025-01-31"},
		{name: "february non leap", month: time.February, year: 2025, wantStart: "2025-02-01", wantEnd: "2025-02-28"},
		{name: "february leap", month: time.February, year: 2024, wantStart: "2024-02-01", wantEnd: "2024-02-29"},
		{name: "thirty days", month: time.April, year: 2025, wantStart: "2025-04-01", wantEnd: "2025-04-30"},
	}

	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			start, end := MonthRange(tc.month, tc.year)
			if got := start.Format("2006-01-02"); got != tc.wantStart {
				t.Fatalf("expected start %s, got %s", tc.wantStart, got)
			}
			if got := end.Format("2006-01-02"); got != tc.wantEnd {
				t.Fatalf("expected end %s, got %s", tc.wantEnd, got)
			}
		})
	}
}

func TestDeriveDayStatus(t *testing.T) {
	if got := DeriveDayStatus(false, false); got != DayAbsent {
		t.Fatalf("expected %s, got %s", DayAbsent, got)
	}
	if got := DeriveDayStatus(true, false); got != DayWorking {
		t.Fatalf("expected %s, got %s", DayWorking, got)
	}
	if got := DeriveDayStatus(true, true); got != DayCompleted {
		t.Fatalf("expected %s, got %s", DayCompleted, got)
	}
}
