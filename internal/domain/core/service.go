package core

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"hrms/internal/domain/auth"
)

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}

type Service struct {
	DB *pgxpool.Pool
}

func NewService(db *pgxpool.Pool) *Service {
	return &Service{DB: db}
}

const employeeColumns = `
  e.id, e.first_name, e.last_name, e.email, COALESCE(e.phone, ''), e.designation,
  e.joining_date, e.base_salary,
  e.sick_leave_balance, e.casual_leave_balance, e.earned_leave_balance,
  COALESCE(e.user_id::text, ''), COALESCE(e.department_id::text, ''), COALESCE(d.name, ''),
  e.user_id IS NOT NULL, e.created_at
`

func scanEmployee(row pgx.Row) (Employee, error) {
	var emp Employee
	err := row.Scan(
		&emp.ID, &emp.FirstName, &emp.LastName, &emp.Email, &emp.Phone, &emp.Designation,
		&emp.JoiningDate, &emp.BaseSalary,
		&emp.SickLeaveBalance, &emp.CasualLeaveBalance, &emp.EarnedLeaveBalance,
		&emp.UserID, &emp.DepartmentID, &emp.DepartmentName,
		&emp.HasLogin, &emp.CreatedAt,
	)
	return emp, err
}

func (s *Service) CreateEmployee(ctx context.Context, input EmployeeInput) (Employee, error) {
	row := s.DB.QueryRow(ctx, `
    WITH inserted AS (
      INSERT INTO employees (first_name, last_name, email, phone, designation, joining_date, base_salary, department_id)
      VALUES ($1,$2,$3,$4,$5,$6,$7, NULLIF($8,'')::uuid)
      RETURNING *
    )
    SELECT `+employeeColumns+`
    FROM inserted e
    LEFT JOIN departments d ON e.department_id = d.id
  `, input.FirstName, input.LastName, input.Email, input.Phone, input.Designation,
		input.JoiningDate, input.BaseSalary, input.DepartmentID)
	emp, err := scanEmployee(row)
	if isUniqueViolation(err) {
		return Employee{}, ErrEmailTaken
	}
	return emp, err
}

func (s *Service) ListEmployees(ctx context.Context) ([]Employee, error) {
	rows, err := s.DB.Query(ctx, `
    SELECT `+employeeColumns+`
    FROM employees e
    LEFT JOIN departments d ON e.department_id = d.id
    ORDER BY e.created_at DESC
  `)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var employees []Employee
	for rows.Next() {
		emp, err := scanEmployee(rows)
		if err != nil {
			return nil, err
		}
		employees = append(employees, emp)
	}
	return employees, rows.Err()
}

func (s *Service) GetEmployee(ctx context.Context, id string) (EmployeeDetail, error) {
	row := s.DB.QueryRow(ctx, `
    SELECT `+employeeColumns+`
    FROM employees e
    LEFT JOIN departments d ON e.department_id = d.id
    WHERE e.id = $1
  `, id)
	emp, err := scanEmployee(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return EmployeeDetail{}, ErrNotFound
	}
	if err != nil {
		return EmployeeDetail{}, err
	}
	detail := EmployeeDetail{Employee: emp}

	attRows, err := s.DB.Query(ctx, `
    SELECT id, day, clock_in, clock_out, status
    FROM attendance
    WHERE employee_id = $1
    ORDER BY day DESC
    LIMIT 5
  `, id)
	if err != nil {
		return EmployeeDetail{}, err
	}
	defer attRows.Close()
	for attRows.Next() {
		var rec RecentAttendance
		if err := attRows.Scan(&rec.ID, &rec.Day, &rec.ClockIn, &rec.ClockOut, &rec.Status); err != nil {
			return EmployeeDetail{}, err
		}
		detail.RecentAttendance = append(detail.RecentAttendance, rec)
	}

	leaveRows, err := s.DB.Query(ctx, `
    SELECT id, type, start_date, end_date, days_count, status, created_at
    FROM leave_requests
    WHERE employee_id = $1
    ORDER BY created_at DESC
    LIMIT 5
  `, id)
	if err != nil {
		return EmployeeDetail{}, err
	}
	defer leaveRows.Close()
	for leaveRows.Next() {
		var rec RecentLeave
		if err := leaveRows.Scan(&rec.ID, &rec.Type, &rec.StartDate, &rec.EndDate, &rec.DaysCount, &rec.Status, &rec.CreatedAt); err != nil {
			return EmployeeDetail{}, err
		}
		detail.RecentLeaves = append(detail.RecentLeaves, rec)
	}

	return detail, nil
}

func (s *Service) UpdateEmployee(ctx context.Context, id string, input EmployeeInput) (Employee, error) {
	row := s.DB.QueryRow(ctx, `
    WITH updated AS (
      UPDATE employees
      SET first_name = $2, last_name = $3, email = $4, phone = $5, designation = $6,
          joining_date = $7, base_salary = $8, department_id = NULLIF($9,'')::uuid
      WHERE id = $1
      RETURNING *
    )
    SELECT `+employeeColumns+`
    FROM updated e
    LEFT JOIN departments d ON e.department_id = d.id
  `, id, input.FirstName, input.LastName, input.Email, input.Phone, input.Designation,
		input.JoiningDate, input.BaseSalary, input.DepartmentID)
	emp, err := scanEmployee(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return Employee{}, ErrNotFound
	}
	if isUniqueViolation(err) {
		return Employee{}, ErrEmailTaken
	}
	return emp, err
}

// DeleteEmployee removes the employee row and, when a login is linked, its user
// row in the same transaction. Attendance, leave, payroll and appraisal rows go
// with the employee via cascade.
func (s *Service) DeleteEmployee(ctx context.Context, id string) error {
	var userID *string
	err := s.DB.QueryRow(ctx, "SELECT user_id FROM employees WHERE id = $1", id).Scan(&userID)
	if errors.Is(err, pgx.ErrNoRows) {
		return ErrNotFound
	}
	if err != nil {
		return err
	}

	tx, err := s.DB.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if _, err := tx.Exec(ctx, "DELETE FROM employees WHERE id = $1", id); err != nil {
		return err
	}
	if userID != nil {
		if _, err := tx.Exec(ctx, "DELETE FROM users WHERE id = $1", *userID); err != nil {
			return err
		}
	}
	return tx.Commit(ctx)
}

func (s *Service) EmployeeIDByUserID(ctx context.Context, userID string) (string, error) {
	var id string
	err := s.DB.QueryRow(ctx, "SELECT id FROM employees WHERE user_id = $1", userID).Scan(&id)
	if errors.Is(err, pgx.ErrNoRows) {
		return "", nil
	}
	return id, err
}

func (s *Service) CreateDepartment(ctx context.Context, name string) (Department, error) {
	var count int
	if err := s.DB.QueryRow(ctx, "SELECT COUNT(1) FROM departments WHERE name = $1", name).Scan(&count); err != nil {
		return Department{}, err
	}
	if count > 0 {
		return Department{}, ErrNameTaken
	}

	var dept Department
	err := s.DB.QueryRow(ctx, `
    INSERT INTO departments (name)
    VALUES ($1)
    RETURNING id, name, created_at
  `, name).Scan(&dept.ID, &dept.Name, &dept.CreatedAt)
	return dept, err
}

func (s *Service) ListDepartments(ctx context.Context) ([]Department, error) {
	rows, err := s.DB.Query(ctx, `
    SELECT d.id, d.name, COUNT(e.id), d.created_at
    FROM departments d
    LEFT JOIN employees e ON e.department_id = d.id
    GROUP BY d.id
    ORDER BY d.created_at
  `)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var departments []Department
	for rows.Next() {
		var dept Department
		if err := rows.Scan(&dept.ID, &dept.Name, &dept.EmployeeCount, &dept.CreatedAt); err != nil {
			return nil, err
		}
		departments = append(departments, dept)
	}
	return departments, rows.Err()
}

func (s *Service) UpdateDepartment(ctx context.Context, id, name string) (Department, error) {
	var dept Department
	err := s.DB.QueryRow(ctx, `
    UPDATE departments SET name = $2 WHERE id = $1
    RETURNING id, name, created_at
  `, id, name).Scan(&dept.ID, &dept.Name, &dept.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return Department{}, ErrNotFound
	}
	if isUniqueViolation(err) {
		return Department{}, ErrNameTaken
	}
	return dept, err
}

// DeleteDepartment re-verifies the acting admin's password before the delete.
// Employees referencing the department keep their rows; the FK nulls out.
func (s *Service) DeleteDepartment(ctx context.Context, id, actorUserID, password string) error {
	var hash string
	err := s.DB.QueryRow(ctx, "SELECT password_hash FROM users WHERE id = $1", actorUserID).Scan(&hash)
	if errors.Is(err, pgx.ErrNoRows) {
		return ErrInvalidPassword
	}
	if err != nil {
		return err
	}
	if password == "" || auth.CheckPassword(hash, password) != nil {
		return ErrInvalidPassword
	}

	tag, err := s.DB.Exec(ctx, "DELETE FROM departments WHERE id = $1", id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// CreateUserForEmployee creates the login and links it to the employee in one
// transaction, so a half-linked account is never observable.
func (s *Service) CreateUserForEmployee(ctx context.Context, employeeID, email, password, role string) (User, error) {
	var taken int
	if err := s.DB.QueryRow(ctx, "SELECT COUNT(1) FROM users WHERE email = $1", email).Scan(&taken); err != nil {
		return User{}, err
	}
	if taken > 0 {
		return User{}, ErrEmailTaken
	}

	var linked *string
	err := s.DB.QueryRow(ctx, "SELECT user_id FROM employees WHERE id = $1", employeeID).Scan(&linked)
	if errors.Is(err, pgx.ErrNoRows) {
		return User{}, ErrNotFound
	}
	if err != nil {
		return User{}, err
	}
	if linked != nil {
		return User{}, ErrAlreadyLinked
	}

	hash, err := auth.HashPassword(password)
	if err != nil {
		return User{}, err
	}

	tx, err := s.DB.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return User{}, err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	var user User
	if err := tx.QueryRow(ctx, `
    INSERT INTO users (email, password_hash, role)
    VALUES ($1,$2,$3)
    RETURNING id, email, role, is_active, created_at
  `, email, hash, role).Scan(&user.ID, &user.Email, &user.Role, &user.IsActive, &user.CreatedAt); err != nil {
		return User{}, err
	}

	if _, err := tx.Exec(ctx, "UPDATE employees SET user_id = $1 WHERE id = $2", user.ID, employeeID); err != nil {
		return User{}, err
	}

	if err := tx.Commit(ctx); err != nil {
		return User{}, err
	}
	return user, nil
}

func (s *Service) FindUserByEmail(ctx context.Context, email string) (User, string, error) {
	var user User
	var hash string
	err := s.DB.QueryRow(ctx, `
    SELECT id, email, role, is_active, created_at, password_hash
    FROM users
    WHERE email = $1 AND is_active
  `, email).Scan(&user.ID, &user.Email, &user.Role, &user.IsActive, &user.CreatedAt, &hash)
	if errors.Is(err, pgx.ErrNoRows) {
		return User{}, "", ErrNotFound
	}
	return user, hash, err
}

func (s *Service) GetProfile(ctx context.Context, userID string) (Profile, error) {
	var profile Profile
	err := s.DB.QueryRow(ctx, `
    SELECT id, email, role, is_active, created_at
    FROM users
    WHERE id = $1
  `, userID).Scan(&profile.User.ID, &profile.User.Email, &profile.User.Role, &profile.User.IsActive, &profile.User.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return Profile{}, ErrNotFound
	}
	if err != nil {
		return Profile{}, err
	}

	row := s.DB.QueryRow(ctx, `
    SELECT `+employeeColumns+`
    FROM employees e
    LEFT JOIN departments d ON e.department_id = d.id
    WHERE e.user_id = $1
  `, userID)
	emp, err := scanEmployee(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return profile, nil
	}
	if err != nil {
		return Profile{}, err
	}
	profile.Employee = &emp
	return profile, nil
}
