package payroll

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jung-kurt/gofpdf"
)

var (
	ErrAlreadyGenerated = errors.New("payroll for this period is already generated")
	ErrNoEmployees      = errors.New("no employees to generate payroll for")
	ErrNotFound         = errors.New("payroll record not found")
	ErrAlreadyPaid      = errors.New("payroll record is already paid")
)

type Service struct {
	DB *pgxpool.Pool
}

func NewService(db *pgxpool.Pool) *Service {
	return &Service{DB: db}
}

const recordColumns = `id, employee_id, month, year, base_salary, basic, hra, medical, special,
         gross_pay, pf, professional_tax, income_tax, total_deductions, net_pay,
         status, payment_date, created_at`

func scanRecord(row pgx.Row, rec *Record) error {
	return row.Scan(&rec.ID, &rec.EmployeeID, &rec.Month, &rec.Year, &rec.BaseSalary,
		&rec.Basic, &rec.HRA, &rec.Medical, &rec.Special, &rec.GrossPay,
		&rec.PF, &rec.ProfessionalTax, &rec.IncomeTax, &rec.TotalDeductions, &rec.NetPay,
		&rec.Status, &rec.PaymentDate, &rec.CreatedAt)
}

// Generate computes and inserts one payroll row per employee for the given
// period. The duplicate check and the inserts share a transaction, and the
// unique index on (employee_id, month, year) backs the check up.
func (s *Service) Generate(ctx context.Context, month string, year int) (GenerateResult, error) {
	tx, err := s.DB.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return GenerateResult{}, err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	var existing int
	if err := tx.QueryRow(ctx,
		"SELECT COUNT(1) FROM payroll WHERE month = $1 AND year = $2", month, year,
	).Scan(&existing); err != nil {
		return GenerateResult{}, err
	}
	if existing > 0 {
		return GenerateResult{}, ErrAlreadyGenerated
	}

	rows, err := tx.Query(ctx, "SELECT id, base_salary FROM employees ORDER BY created_at")
	if err != nil {
		return GenerateResult{}, err
	}
	type roster struct {
		id         string
		baseSalary int64
	}
	var employees []roster
	for rows.Next() {
		var e roster
		if err := rows.Scan(&e.id, &e.baseSalary); err != nil {
			rows.Close()
			return GenerateResult{}, err
		}
		employees = append(employees, e)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return GenerateResult{}, err
	}
	if len(employees) == 0 {
		return GenerateResult{}, ErrNoEmployees
	}

	for _, emp := range employees {
		b := Compute(emp.baseSalary)
		_, err := tx.Exec(ctx, `
      INSERT INTO payroll (employee_id, month, year, base_salary, basic, hra, medical, special,
                           gross_pay, pf, professional_tax, income_tax, total_deductions, net_pay, status)
      VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15)
    `, emp.id, month, year, emp.baseSalary, b.Basic, b.HRA, b.Medical, b.Special,
			b.GrossPay, b.PF, b.ProfessionalTax, b.IncomeTax, b.TotalDeductions, b.NetPay, StatusGenerated)
		if err != nil {
			return GenerateResult{}, err
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return GenerateResult{}, err
	}
	return GenerateResult{Month: month, Year: year, Generated: len(employees)}, nil
}

func (s *Service) All(ctx context.Context) ([]AdminRecord, error) {
	rows, err := s.DB.Query(ctx, `
    SELECT p.id, p.employee_id, p.month, p.year, p.base_salary, p.basic, p.hra, p.medical, p.special,
           p.gross_pay, p.pf, p.professional_tax, p.income_tax, p.total_deductions, p.net_pay,
           p.status, p.payment_date, p.created_at,
           e.first_name || ' ' || e.last_name, COALESCE(d.name, 'N/A')
    FROM payroll p
    JOIN employees e ON p.employee_id = e.id
    LEFT JOIN departments d ON e.department_id = d.id
    ORDER BY p.created_at DESC
  `)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var records []AdminRecord
	for rows.Next() {
		var rec AdminRecord
		if err := rows.Scan(&rec.ID, &rec.EmployeeID, &rec.Month, &rec.Year, &rec.BaseSalary,
			&rec.Basic, &rec.HRA, &rec.Medical, &rec.Special, &rec.GrossPay,
			&rec.PF, &rec.ProfessionalTax, &rec.IncomeTax, &rec.TotalDeductions, &rec.NetPay,
			&rec.Status, &rec.PaymentDate, &rec.CreatedAt,
			&rec.EmployeeName, &rec.Department); err != nil {
			return nil, err
		}
		records = append(records, rec)
	}
	return records, rows.Err()
}

func (s *Service) MyHistory(ctx context.Context, employeeID string) ([]Record, error) {
	rows, err := s.DB.Query(ctx,
		"SELECT "+recordColumns+" FROM payroll WHERE employee_id = $1 ORDER BY created_at DESC",
		employeeID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var records []Record
	for rows.Next() {
		var rec Record
		if err := scanRecord(rows, &rec); err != nil {
			return nil, err
		}
		records = append(records, rec)
	}
	return records, rows.Err()
}

// MarkPaid flips GENERATED to PAID and stamps the payment time. The update is
// conditional on the current status, so a replay cannot re-stamp the date.
func (s *Service) MarkPaid(ctx context.Context, id string, paidAt time.Time) (Record, error) {
	var rec Record
	err := scanRecord(s.DB.QueryRow(ctx, `
    UPDATE payroll
    SET status = $2, payment_date = $3
    WHERE id = $1 AND status = $4
    RETURNING `+recordColumns,
		id, StatusPaid, paidAt, StatusGenerated), &rec)
	if errors.Is(err, pgx.ErrNoRows) {
		var exists int
		if err := s.DB.QueryRow(ctx, "SELECT COUNT(1) FROM payroll WHERE id = $1", id).Scan(&exists); err != nil {
			return Record{}, err
		}
		if exists == 0 {
			return Record{}, ErrNotFound
		}
		return Record{}, ErrAlreadyPaid
	}
	if err != nil {
		return Record{}, err
	}
	return rec, nil
}

// PayslipPDF renders the payslip for one payroll row into w. When
// restrictToEmployee is non-empty the row must belong to that employee, which
// keeps one employee from fetching another's slip.
func (s *Service) PayslipPDF(ctx context.Context, id, restrictToEmployee string, w io.Writer) error {
	var rec Record
	var firstName, lastName, department string
	err := s.DB.QueryRow(ctx, `
    SELECT p.month, p.year, p.basic, p.hra, p.medical, p.special, p.gross_pay,
           p.pf, p.professional_tax, p.income_tax, p.total_deductions, p.net_pay, p.status,
           e.first_name, e.last_name, COALESCE(d.name, 'N/A')
    FROM payroll p
    JOIN employees e ON p.employee_id = e.id
    LEFT JOIN departments d ON e.department_id = d.id
    WHERE p.id = $1 AND ($2 = '' OR p.employee_id = NULLIF($2,'')::uuid)
  `, id, restrictToEmployee).Scan(
		&rec.Month, &rec.Year, &rec.Basic, &rec.HRA, &rec.Medical, &rec.Special, &rec.GrossPay,
		&rec.PF, &rec.ProfessionalTax, &rec.IncomeTax, &rec.TotalDeductions, &rec.NetPay, &rec.Status,
		&firstName, &lastName, &department)
	if errors.Is(err, pgx.ErrNoRows) {
		return ErrNotFound
	}
	if err != nil {
		return err
	}

	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.AddPage()
	pdf.SetFont("Helvetica", "B", 16)
	pdf.Cell(40, 10, "Payslip")
	pdf.Ln(12)
	pdf.SetFont("Helvetica", "", 12)
	pdf.Cell(0, 8, fmt.Sprintf("Employee: %s %s", firstName, lastName))
	pdf.Ln(7)
	pdf.Cell(0, 8, fmt.Sprintf("Department: %s", department))
	pdf.Ln(7)
	pdf.Cell(0, 8, fmt.Sprintf("Period: %s %d", rec.Month, rec.Year))
	pdf.Ln(10)

	line := func(label string, amount int64) {
		pdf.Cell(0, 8, fmt.Sprintf("%s: %d", label, amount))
		pdf.Ln(7)
	}
	line("Basic", rec.Basic)
	line("HRA", rec.HRA)
	line("Medical Allowance", rec.Medical)
	line("Special Allowance", rec.Special)
	line("Gross Pay", rec.GrossPay)
	line("Provident Fund", rec.PF)
	line("Professional Tax", rec.ProfessionalTax)
	line("Income Tax", rec.IncomeTax)
	line("Total Deductions", rec.TotalDeductions)
	line("Net Pay", rec.NetPay)
	pdf.Cell(0, 8, fmt.Sprintf("Status: %s", rec.Status))

	return pdf.Output(w)
}
