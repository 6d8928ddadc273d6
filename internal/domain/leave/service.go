package leave

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

var (
	ErrNotFound         = errors.New("leave request not found")
	ErrAlreadyProcessed = errors.New("request is already processed")
)

// InsufficientBalanceError reports which balance was short and what remained
// when the check ran.
type InsufficientBalanceError struct {
	Type      string
	Available int
}

func (e *InsufficientBalanceError) Error() string {
	return fmt.Sprintf("insufficient %s leave balance (available: %d)", e.Type, e.Available)
}

type Service struct {
	DB *pgxpool.Pool
}

func NewService(db *pgxpool.Pool) *Service {
	return &Service{DB: db}
}

// Apply validates the range against the employee's current balance snapshot
// and creates a PENDING request. Balances are not touched until approval.
func (s *Service) Apply(ctx context.Context, employeeID, leaveType, reason string, startDate, endDate time.Time) (Request, error) {
	days, err := CalculateDays(startDate, endDate)
	if err != nil {
		return Request{}, err
	}

	var available int
	column := balanceColumn(leaveType)
	if err := s.DB.QueryRow(ctx,
		"SELECT "+column+" FROM employees WHERE id = $1", employeeID,
	).Scan(&available); err != nil {
		return Request{}, err
	}
	if available < days {
		return Request{}, &InsufficientBalanceError{Type: leaveType, Available: available}
	}

	var req Request
	err = s.DB.QueryRow(ctx, `
    INSERT INTO leave_requests (employee_id, type, start_date, end_date, days_count, reason, status)
    VALUES ($1,$2,$3,$4,$5,$6,$7)
    RETURNING id, employee_id, type, start_date, end_date, days_count, COALESCE(reason,''), status, COALESCE(admin_comment,''), created_at
  `, employeeID, leaveType, startDate, endDate, days, reason, StatusPending).Scan(
		&req.ID, &req.EmployeeID, &req.Type, &req.StartDate, &req.EndDate,
		&req.DaysCount, &req.Reason, &req.Status, &req.AdminComment, &req.CreatedAt)
	return req, err
}

func (s *Service) MyHistory(ctx context.Context, employeeID string) ([]Request, error) {
	rows, err := s.DB.Query(ctx, `
    SELECT id, employee_id, type, start_date, end_date, days_count, COALESCE(reason,''), status, COALESCE(admin_comment,''), created_at
    FROM leave_requests
    WHERE employee_id = $1
    ORDER BY created_at DESC
  `, employeeID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var requests []Request
	for rows.Next() {
		var req Request
		if err := rows.Scan(&req.ID, &req.EmployeeID, &req.Type, &req.StartDate, &req.EndDate,
			&req.DaysCount, &req.Reason, &req.Status, &req.AdminComment, &req.CreatedAt); err != nil {
			return nil, err
		}
		requests = append(requests, req)
	}
	return requests, rows.Err()
}

func (s *Service) Balances(ctx context.Context, employeeID string) (Balances, error) {
	var balances Balances
	err := s.DB.QueryRow(ctx, `
    SELECT sick_leave_balance, casual_leave_balance, earned_leave_balance
    FROM employees
    WHERE id = $1
  `, employeeID).Scan(&balances.Sick, &balances.Casual, &balances.Earned)
	return balances, err
}

func (s *Service) Pending(ctx context.Context) ([]PendingRequest, error) {
	rows, err := s.DB.Query(ctx, `
    SELECT r.id, r.employee_id, r.type, r.start_date, r.end_date, r.days_count,
           COALESCE(r.reason,''), r.status, COALESCE(r.admin_comment,''), r.created_at,
           e.first_name || ' ' || e.last_name, COALESCE(d.name, 'N/A')
    FROM leave_requests r
    JOIN employees e ON r.employee_id = e.id
    LEFT JOIN departments d ON e.department_id = d.id
    WHERE r.status = $1
    ORDER BY r.created_at
  `, StatusPending)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var requests []PendingRequest
	for rows.Next() {
		var req PendingRequest
		if err := rows.Scan(&req.ID, &req.EmployeeID, &req.Type, &req.StartDate, &req.EndDate,
			&req.DaysCount, &req.Reason, &req.Status, &req.AdminComment, &req.CreatedAt,
			&req.EmployeeName, &req.Department); err != nil {
			return nil, err
		}
		requests = append(requests, req)
	}
	return requests, rows.Err()
}

// Process decides a pending request. The status flip and, on approval, the
// balance decrement run in one transaction: the flip is conditional on the row
// still being PENDING, and the decrement is conditional on the balance still
// covering the request, so a decision can neither double-apply nor drive a
// counter negative.
func (s *Service) Process(ctx context.Context, requestID, decision, comment string) (Request, error) {
	var exists int
	if err := s.DB.QueryRow(ctx, "SELECT COUNT(1) FROM leave_requests WHERE id = $1", requestID).Scan(&exists); err != nil {
		return Request{}, err
	}
	if exists == 0 {
		return Request{}, ErrNotFound
	}

	tx, err := s.DB.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return Request{}, err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	var req Request
	err = tx.QueryRow(ctx, `
    UPDATE leave_requests
    SET status = $2, admin_comment = NULLIF($3,'')
    WHERE id = $1 AND status = $4
    RETURNING id, employee_id, type, start_date, end_date, days_count, COALESCE(reason,''), status, COALESCE(admin_comment,''), created_at
  `, requestID, decision, comment, StatusPending).Scan(
		&req.ID, &req.EmployeeID, &req.Type, &req.StartDate, &req.EndDate,
		&req.DaysCount, &req.Reason, &req.Status, &req.AdminComment, &req.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return Request{}, ErrAlreadyProcessed
	}
	if err != nil {
		return Request{}, err
	}

	if decision == StatusApproved {
		column := balanceColumn(req.Type)
		tag, err := tx.Exec(ctx,
			"UPDATE employees SET "+column+" = "+column+" - $1 WHERE id = $2 AND "+column+" >= $1",
			req.DaysCount, req.EmployeeID)
		if err != nil {
			return Request{}, err
		}
		if tag.RowsAffected() == 0 {
			var available int
			if err := tx.QueryRow(ctx,
				"SELECT "+column+" FROM employees WHERE id = $1", req.EmployeeID,
			).Scan(&available); err != nil {
				return Request{}, err
			}
			return Request{}, &InsufficientBalanceError{Type: req.Type, Available: available}
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return Request{}, err
	}
	return req, nil
}
