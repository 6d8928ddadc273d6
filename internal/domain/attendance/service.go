package attendance

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

var (
	ErrAlreadyClockedIn  = errors.New("already clocked in today")
	ErrNoActiveClockIn   = errors.New("no clock-in recorded today")
	ErrAlreadyClockedOut = errors.New("already clocked out today")
)

type Service struct {
	DB *pgxpool.Pool

	// Now is swappable for tests; defaults to time.Now.
	Now func() time.Time
}

func NewService(db *pgxpool.Pool) *Service {
	return &Service{DB: db, Now: time.Now}
}

func (s *Service) ClockIn(ctx context.Context, employeeID string) (Record, error) {
	now := s.Now()
	day := DayOf(now)

	var count int
	if err := s.DB.QueryRow(ctx, `
    SELECT COUNT(1) FROM attendance WHERE employee_id = $1 AND day = $2
  `, employeeID, day).Scan(&count); err != nil {
		return Record{}, err
	}
	if count > 0 {
		return Record{}, ErrAlreadyClockedIn
	}

	var rec Record
	err := s.DB.QueryRow(ctx, `
    INSERT INTO attendance (employee_id, day, clock_in, status)
    VALUES ($1,$2,$3,$4)
    RETURNING id, employee_id, day, clock_in, clock_out, status
  `, employeeID, day, now, StatusPresent).Scan(&rec.ID, &rec.EmployeeID, &rec.Day, &rec.ClockIn, &rec.ClockOut, &rec.Status)
	return rec, err
}

func (s *Service) ClockOut(ctx context.Context, employeeID string) (Record, error) {
	now := s.Now()
	day := DayOf(now)

	var rec Record
	err := s.DB.QueryRow(ctx, `
    SELECT id, employee_id, day, clock_in, clock_out, status
    FROM attendance
    WHERE employee_id = $1 AND day = $2
  `, employeeID, day).Scan(&rec.ID, &rec.EmployeeID, &rec.Day, &rec.ClockIn, &rec.ClockOut, &rec.Status)
	if errors.Is(err, pgx.ErrNoRows) {
		return Record{}, ErrNoActiveClockIn
	}
	if err != nil {
		return Record{}, err
	}
	if rec.ClockOut != nil {
		return Record{}, ErrAlreadyClockedOut
	}

	err = s.DB.QueryRow(ctx, `
    UPDATE attendance
    SET clock_out = $2, status = $3
    WHERE id = $1
    RETURNING id, employee_id, day, clock_in, clock_out, status
  `, rec.ID, now, StatusCompleted).Scan(&rec.ID, &rec.EmployeeID, &rec.Day, &rec.ClockIn, &rec.ClockOut, &rec.Status)
	return rec, err
}

// Status reports the calling employee's day state. An empty employeeID means
// the login has no employee profile.
func (s *Service) Status(ctx context.Context, employeeID string) (TodayStatus, error) {
	if employeeID == "" {
		return TodayStatus{Status: DayNoProfile}, nil
	}

	day := DayOf(s.Now())
	var clockIn time.Time
	var clockOut *time.Time
	err := s.DB.QueryRow(ctx, `
    SELECT clock_in, clock_out
    FROM attendance
    WHERE employee_id = $1 AND day = $2
  `, employeeID, day).Scan(&clockIn, &clockOut)
	if errors.Is(err, pgx.ErrNoRows) {
		return TodayStatus{Status: DayNotStarted}, nil
	}
	if err != nil {
		return TodayStatus{}, err
	}

	status := DeriveDayStatus(true, clockOut != nil)
	return TodayStatus{Status: status, PunchIn: &clockIn, PunchOut: clockOut}, nil
}

// DailyReport lists every employee (optionally one department) with the
// derived status for the given day.
func (s *Service) DailyReport(ctx context.Context, date time.Time, departmentID string) ([]DailyEntry, error) {
	day := DayOf(date)
	rows, err := s.DB.Query(ctx, `
    SELECT e.id, e.first_name || ' ' || e.last_name, COALESCE(d.name, 'N/A'),
           a.clock_in, a.clock_out
    FROM employees e
    LEFT JOIN departments d ON e.department_id = d.id
    LEFT JOIN attendance a ON a.employee_id = e.id AND a.day = $1
    WHERE ($2 = '' OR e.department_id = NULLIF($2,'')::uuid)
    ORDER BY e.last_name, e.first_name
  `, day, departmentID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var entries []DailyEntry
	for rows.Next() {
		var entry DailyEntry
		var clockIn, clockOut *time.Time
		if err := rows.Scan(&entry.EmployeeID, &entry.Name, &entry.Department, &clockIn, &clockOut); err != nil {
			return nil, err
		}
		entry.PunchIn = clockIn
		entry.PunchOut = clockOut
		entry.Status = DeriveDayStatus(clockIn != nil, clockOut != nil)
		entries = append(entries, entry)
	}
	return entries, rows.Err()
}

// MonthlyReport returns, per employee, the ordered attendance rows inside the
// calendar month for grid rendering.
func (s *Service) MonthlyReport(ctx context.Context, month time.Month, year int, departmentID string) ([]MonthlyEntry, error) {
	start, end := MonthRange(month, year)

	empRows, err := s.DB.Query(ctx, `
    SELECT e.id, e.first_name || ' ' || e.last_name, COALESCE(d.name, 'N/A')
    FROM employees e
    LEFT JOIN departments d ON e.department_id = d.id
    WHERE ($1 = '' OR e.department_id = NULLIF($1,'')::uuid)
    ORDER BY e.last_name, e.first_name
  `, departmentID)
	if err != nil {
		return nil, err
	}
	defer empRows.Close()

	var entries []MonthlyEntry
	index := map[string]int{}
	for empRows.Next() {
		var entry MonthlyEntry
		if err := empRows.Scan(&entry.EmployeeID, &entry.Name, &entry.Department); err != nil {
			return nil, err
		}
		index[entry.EmployeeID] = len(entries)
		entries = append(entries, entry)
	}
	if err := empRows.Err(); err != nil {
		return nil, err
	}

	recRows, err := s.DB.Query(ctx, `
    SELECT a.id, a.employee_id, a.day, a.clock_in, a.clock_out, a.status
    FROM attendance a
    JOIN employees e ON a.employee_id = e.id
    WHERE a.day BETWEEN $1 AND $2
      AND ($3 = '' OR e.department_id = NULLIF($3,'')::uuid)
    ORDER BY a.day
  `, start, end, departmentID)
	if err != nil {
		return nil, err
	}
	defer recRows.Close()

	for recRows.Next() {
		var rec Record
		if err := recRows.Scan(&rec.ID, &rec.EmployeeID, &rec.Day, &rec.ClockIn, &rec.ClockOut, &rec.Status); err != nil {
			return nil, err
		}
		if pos, ok := index[rec.EmployeeID]; ok {
			entries[pos].Records = append(entries[pos].Records, rec)
		}
	}
	return entries, recRows.Err()
}
