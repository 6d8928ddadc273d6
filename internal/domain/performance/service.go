package performance

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

var (
	ErrNotFound      = errors.New("appraisal not found")
	ErrCycleNotFound = errors.New("cycle not found")
	ErrUnauthorized  = errors.New("appraisal belongs to another employee")
	ErrInvalidStage  = errors.New("appraisal is not at the required stage")
	ErrInvalidRating = errors.New("rating must be between 1 and 5")
	ErrNoProposal    = errors.New("no hike proposal exists")
)

type Service struct {
	DB *pgxpool.Pool
}

func NewService(db *pgxpool.Pool) *Service {
	return &Service{DB: db}
}

const appraisalColumns = `id, employee_id, cycle_id, status, COALESCE(self_review,''), COALESCE(manager_review,''),
         rating, hike_percent, hike_amount, proposed_salary, is_accepted, created_at`

func scanAppraisal(row pgx.Row, a *Appraisal) error {
	return row.Scan(&a.ID, &a.EmployeeID, &a.CycleID, &a.Status, &a.SelfReview, &a.ManagerReview,
		&a.Rating, &a.HikePercent, &a.HikeAmount, &a.ProposedSalary, &a.IsAccepted, &a.CreatedAt)
}

// CreateCycle creates the cycle and fans out one PENDING_SELF appraisal per
// employee on the current roster, all in one transaction. Employees hired
// later are not added retroactively.
func (s *Service) CreateCycle(ctx context.Context, title string, startDate, endDate time.Time) (Cycle, error) {
	tx, err := s.DB.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return Cycle{}, err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	var cycle Cycle
	err = tx.QueryRow(ctx, `
    INSERT INTO performance_cycles (title, start_date, end_date, is_active)
    VALUES ($1, $2, $3, TRUE)
    RETURNING id, title, start_date, end_date, is_active, created_at
  `, title, startDate, endDate).Scan(
		&cycle.ID, &cycle.Title, &cycle.StartDate, &cycle.EndDate, &cycle.IsActive, &cycle.CreatedAt)
	if err != nil {
		return Cycle{}, err
	}

	if _, err := tx.Exec(ctx, `
    INSERT INTO appraisals (employee_id, cycle_id, status)
    SELECT id, $1, $2 FROM employees
  `, cycle.ID, StatusPendingSelf); err != nil {
		return Cycle{}, err
	}

	if err := tx.Commit(ctx); err != nil {
		return Cycle{}, err
	}
	return cycle, nil
}

func (s *Service) Cycles(ctx context.Context) ([]Cycle, error) {
	rows, err := s.DB.Query(ctx, `
    SELECT id, title, start_date, end_date, is_active, created_at
    FROM performance_cycles
    ORDER BY created_at DESC
  `)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var cycles []Cycle
	for rows.Next() {
		var c Cycle
		if err := rows.Scan(&c.ID, &c.Title, &c.StartDate, &c.EndDate, &c.IsActive, &c.CreatedAt); err != nil {
			return nil, err
		}
		cycles = append(cycles, c)
	}
	return cycles, rows.Err()
}

func (s *Service) CycleReviews(ctx context.Context, cycleID string) ([]CycleReview, error) {
	var exists int
	if err := s.DB.QueryRow(ctx, "SELECT COUNT(1) FROM performance_cycles WHERE id = $1", cycleID).Scan(&exists); err != nil {
		return nil, err
	}
	if exists == 0 {
		return nil, ErrCycleNotFound
	}

	rows, err := s.DB.Query(ctx, `
    SELECT a.id, a.employee_id, a.cycle_id, a.status, COALESCE(a.self_review,''), COALESCE(a.manager_review,''),
           a.rating, a.hike_percent, a.hike_amount, a.proposed_salary, a.is_accepted, a.created_at,
           e.first_name || ' ' || e.last_name, COALESCE(d.name, 'N/A')
    FROM appraisals a
    JOIN employees e ON a.employee_id = e.id
    LEFT JOIN departments d ON e.department_id = d.id
    WHERE a.cycle_id = $1
    ORDER BY e.first_name, e.last_name
  `, cycleID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var reviews []CycleReview
	for rows.Next() {
		var r CycleReview
		if err := rows.Scan(&r.ID, &r.EmployeeID, &r.CycleID, &r.Status, &r.SelfReview, &r.ManagerReview,
			&r.Rating, &r.HikePercent, &r.HikeAmount, &r.ProposedSalary, &r.IsAccepted, &r.CreatedAt,
			&r.EmployeeName, &r.Department); err != nil {
			return nil, err
		}
		reviews = append(reviews, r)
	}
	return reviews, rows.Err()
}

// MyReview returns the caller's appraisal in the currently active cycle.
func (s *Service) MyReview(ctx context.Context, employeeID string) (MyReview, error) {
	var r MyReview
	err := s.DB.QueryRow(ctx, `
    SELECT a.id, a.employee_id, a.cycle_id, a.status, COALESCE(a.self_review,''), COALESCE(a.manager_review,''),
           a.rating, a.hike_percent, a.hike_amount, a.proposed_salary, a.is_accepted, a.created_at,
           c.id, c.title, c.start_date, c.end_date, c.is_active, c.created_at
    FROM appraisals a
    JOIN performance_cycles c ON a.cycle_id = c.id
    WHERE a.employee_id = $1 AND c.is_active
    ORDER BY a.created_at DESC
    LIMIT 1
  `, employeeID).Scan(
		&r.ID, &r.EmployeeID, &r.CycleID, &r.Status, &r.SelfReview, &r.ManagerReview,
		&r.Rating, &r.HikePercent, &r.HikeAmount, &r.ProposedSalary, &r.IsAccepted, &r.CreatedAt,
		&r.Cycle.ID, &r.Cycle.Title, &r.Cycle.StartDate, &r.Cycle.EndDate, &r.Cycle.IsActive, &r.Cycle.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return MyReview{}, ErrNotFound
	}
	return r, err
}

// SubmitSelfReview records the employee's text and advances PENDING_SELF to
// PENDING_MANAGER. Only the owning employee may submit, and only once.
func (s *Service) SubmitSelfReview(ctx context.Context, employeeID, appraisalID, text string) (Appraisal, error) {
	owner, status, err := s.lookup(ctx, appraisalID)
	if err != nil {
		return Appraisal{}, err
	}
	if owner != employeeID {
		return Appraisal{}, ErrUnauthorized
	}
	if status != StatusPendingSelf {
		return Appraisal{}, ErrInvalidStage
	}

	var a Appraisal
	err = scanAppraisal(s.DB.QueryRow(ctx, `
    UPDATE appraisals
    SET self_review = $2, status = $3
    WHERE id = $1 AND status = $4
    RETURNING `+appraisalColumns,
		appraisalID, text, StatusPendingManager, StatusPendingSelf), &a)
	if errors.Is(err, pgx.ErrNoRows) {
		return Appraisal{}, ErrInvalidStage
	}
	return a, err
}

// SubmitManagerReview records the manager's text and rating and advances
// PENDING_MANAGER to COMPLETED. A self review must exist first.
func (s *Service) SubmitManagerReview(ctx context.Context, appraisalID, text string, rating int) (Appraisal, error) {
	if !ValidRating(rating) {
		return Appraisal{}, ErrInvalidRating
	}
	if _, _, err := s.lookup(ctx, appraisalID); err != nil {
		return Appraisal{}, err
	}

	var a Appraisal
	err := scanAppraisal(s.DB.QueryRow(ctx, `
    UPDATE appraisals
    SET manager_review = $2, rating = $3, status = $4
    WHERE id = $1 AND status = $5
    RETURNING `+appraisalColumns,
		appraisalID, text, rating, StatusCompleted, StatusPendingManager), &a)
	if errors.Is(err, pgx.ErrNoRows) {
		return Appraisal{}, ErrInvalidStage
	}
	return a, err
}

// ProposeHike computes the raise from the employee's current base salary and
// stores it on the appraisal. Re-proposing always clears a prior acceptance.
func (s *Service) ProposeHike(ctx context.Context, appraisalID string, percent float64) (Appraisal, error) {
	tx, err := s.DB.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return Appraisal{}, err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	var employeeID string
	var currentSalary int64
	err = tx.QueryRow(ctx, `
    SELECT a.employee_id, e.base_salary
    FROM appraisals a
    JOIN employees e ON a.employee_id = e.id
    WHERE a.id = $1
    FOR UPDATE OF a
  `, appraisalID).Scan(&employeeID, &currentSalary)
	if errors.Is(err, pgx.ErrNoRows) {
		return Appraisal{}, ErrNotFound
	}
	if err != nil {
		return Appraisal{}, err
	}

	amount, proposed := ComputeHike(currentSalary, percent)

	var a Appraisal
	err = scanAppraisal(tx.QueryRow(ctx, `
    UPDATE appraisals
    SET hike_percent = $2, hike_amount = $3, proposed_salary = $4, is_accepted = FALSE
    WHERE id = $1
    RETURNING `+appraisalColumns,
		appraisalID, percent, amount, proposed), &a)
	if err != nil {
		return Appraisal{}, err
	}

	if err := tx.Commit(ctx); err != nil {
		return Appraisal{}, err
	}
	return a, nil
}

// AcceptHike marks the proposal accepted and overwrites the employee's base
// salary with the proposed one. Both writes share a transaction so the salary
// and the acceptance flag cannot diverge.
func (s *Service) AcceptHike(ctx context.Context, employeeID, appraisalID string) (Appraisal, error) {
	tx, err := s.DB.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return Appraisal{}, err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	var owner string
	var proposed *int64
	err = tx.QueryRow(ctx,
		"SELECT employee_id, proposed_salary FROM appraisals WHERE id = $1 FOR UPDATE",
		appraisalID).Scan(&owner, &proposed)
	if errors.Is(err, pgx.ErrNoRows) {
		return Appraisal{}, ErrNotFound
	}
	if err != nil {
		return Appraisal{}, err
	}
	if owner != employeeID {
		return Appraisal{}, ErrUnauthorized
	}
	if proposed == nil {
		return Appraisal{}, ErrNoProposal
	}

	var a Appraisal
	err = scanAppraisal(tx.QueryRow(ctx, `
    UPDATE appraisals
    SET is_accepted = TRUE
    WHERE id = $1
    RETURNING `+appraisalColumns, appraisalID), &a)
	if err != nil {
		return Appraisal{}, err
	}

	if _, err := tx.Exec(ctx,
		"UPDATE employees SET base_salary = $1 WHERE id = $2", *proposed, owner); err != nil {
		return Appraisal{}, err
	}

	if err := tx.Commit(ctx); err != nil {
		return Appraisal{}, err
	}
	return a, nil
}

func (s *Service) lookup(ctx context.Context, appraisalID string) (owner, status string, err error) {
	err = s.DB.QueryRow(ctx,
		"SELECT employee_id, status FROM appraisals WHERE id = $1", appraisalID,
	).Scan(&owner, &status)
	if errors.Is(err, pgx.ErrNoRows) {
		return "", "", ErrNotFound
	}
	return owner, status, err
}
