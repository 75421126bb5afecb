package postgresql

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/cmlabs-hris/hris-payroll-go/internal/domain/payroll"
	"github.com/cmlabs-hris/hris-payroll-go/internal/pkg/database"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

const uniqueViolation = "23505"

type salaryRepository struct {
	db *database.DB
}

func NewSalaryRepository(db *database.DB) payroll.SalaryRepository {
	return &salaryRepository{db: db}
}

const salaryColumns = `
	id, company_id, employee_id, employee_name, period_month, period_year,
	base_salary, allowances, deductions, reimbursements, gross_salary, net_salary,
	pay_day, default_working_days, actual_working_days, status, payment_date,
	paid_on, payment_method, payment_reference, paid_by, paid_at,
	processed_at, processed_by, created_at, updated_at
`

func scanSalaryRecord(row pgx.Row) (payroll.SalaryRecord, error) {
	var (
		r     payroll.SalaryRecord
		month int
	)
	err := row.Scan(
		&r.ID, &r.CompanyID, &r.EmployeeID, &r.EmployeeName, &month, &r.Period.Year,
		&r.BaseSalary, &r.Allowances, &r.Deductions, &r.Reimbursements, &r.GrossSalary, &r.NetSalary,
		&r.PayDay, &r.DefaultWorkingDays, &r.ActualWorkingDays, &r.Status, &r.PaymentDate,
		&r.PaidOn, &r.PaymentMethod, &r.PaymentReference, &r.PaidBy, &r.PaidAt,
		&r.ProcessedAt, &r.ProcessedBy, &r.CreatedAt, &r.UpdatedAt,
	)
	r.Period.Month = time.Month(month)
	return r, err
}

func (r *salaryRepository) getOne(ctx context.Context, query string, args ...interface{}) (payroll.SalaryRecord, error) {
	q := GetQuerier(ctx, r.db)

	rec, err := scanSalaryRecord(q.QueryRow(ctx, query, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return payroll.SalaryRecord{}, payroll.ErrSalaryRecordNotFound
		}
		return payroll.SalaryRecord{}, fmt.Errorf("failed to get salary record: %w", err)
	}
	return rec, nil
}

func (r *salaryRepository) GetByID(ctx context.Context, id string, companyID string) (payroll.SalaryRecord, error) {
	return r.getOne(ctx, `SELECT `+salaryColumns+`
		FROM salary_records
		WHERE id = $1 AND company_id = $2
	`, id, companyID)
}

func (r *salaryRepository) GetByIDForUpdate(ctx context.Context, id string, companyID string) (payroll.SalaryRecord, error) {
	return r.getOne(ctx, `SELECT `+salaryColumns+`
		FROM salary_records
		WHERE id = $1 AND company_id = $2
		FOR UPDATE
	`, id, companyID)
}

func (r *salaryRepository) GetByEmployeePeriodForUpdate(ctx context.Context, companyID, employeeID string, p payroll.Period) (payroll.SalaryRecord, error) {
	return r.getOne(ctx, `SELECT `+salaryColumns+`
		FROM salary_records
		WHERE company_id = $1 AND employee_id = $2 AND period_month = $3 AND period_year = $4
		FOR UPDATE
	`, companyID, employeeID, int(p.Month), p.Year)
}

func (r *salaryRepository) Create(ctx context.Context, record payroll.SalaryRecord) (payroll.SalaryRecord, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		INSERT INTO salary_records (
			id, company_id, employee_id, employee_name, period_month, period_year,
			base_salary, allowances, deductions, reimbursements, gross_salary, net_salary,
			pay_day, default_working_days, actual_working_days, status, payment_date,
			paid_on, payment_method, payment_reference, paid_by, paid_at,
			processed_at, processed_by, created_at, updated_at
		) VALUES (
			$1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13,
			$14, $15, $16, $17, $18, $19, $20, $21, $22, $23, $24, $25, $26
		)
		RETURNING ` + salaryColumns

	created, err := scanSalaryRecord(q.QueryRow(ctx, query,
		record.ID, record.CompanyID, record.EmployeeID, record.EmployeeName, int(record.Period.Month), record.Period.Year,
		record.BaseSalary, record.Allowances, record.Deductions, record.Reimbursements, record.GrossSalary, record.NetSalary,
		record.PayDay, record.DefaultWorkingDays, record.ActualWorkingDays, record.Status, record.PaymentDate,
		record.PaidOn, record.PaymentMethod, record.PaymentReference, record.PaidBy, record.PaidAt,
		record.ProcessedAt, record.ProcessedBy, record.CreatedAt, record.UpdatedAt,
	))
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return payroll.SalaryRecord{}, payroll.ErrSalaryRecordAlreadyExists
		}
		return payroll.SalaryRecord{}, fmt.Errorf("failed to create salary record: %w", err)
	}

	return created, nil
}

func (r *salaryRepository) UpdateUnlessPaid(ctx context.Context, record payroll.SalaryRecord) error {
	q := GetQuerier(ctx, r.db)

	query := `
		UPDATE salary_records SET
			employee_name = $3,
			base_salary = $4,
			allowances = $5,
			deductions = $6,
			reimbursements = $7,
			gross_salary = $8,
			net_salary = $9,
			pay_day = $10,
			default_working_days = $11,
			actual_working_days = $12,
			status = $13,
			payment_date = $14,
			paid_on = $15,
			payment_method = $16,
			payment_reference = $17,
			paid_by = $18,
			paid_at = $19,
			processed_at = $20,
			processed_by = $21,
			updated_at = $22
		WHERE id = $1 AND company_id = $2 AND status <> 'paid'
	`

	tag, err := q.Exec(ctx, query,
		record.ID, record.CompanyID, record.EmployeeName,
		record.BaseSalary, record.Allowances, record.Deductions, record.Reimbursements,
		record.GrossSalary, record.NetSalary, record.PayDay, record.DefaultWorkingDays,
		record.ActualWorkingDays, record.Status, record.PaymentDate, record.PaidOn,
		record.PaymentMethod, record.PaymentReference, record.PaidBy, record.PaidAt,
		record.ProcessedAt, record.ProcessedBy, record.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to update salary record: %w", err)
	}

	if tag.RowsAffected() == 0 {
		var status payroll.SalaryStatus
		err := q.QueryRow(ctx, `SELECT status FROM salary_records WHERE id = $1 AND company_id = $2`,
			record.ID, record.CompanyID).Scan(&status)
		if errors.Is(err, pgx.ErrNoRows) {
			return payroll.ErrSalaryRecordNotFound
		}
		if err != nil {
			return fmt.Errorf("failed to check salary record status: %w", err)
		}
		return payroll.ErrSalaryRecordAlreadyPaid
	}

	return nil
}

// filterClause appends the filter conditions after the mandatory company_id = $1.
func filterClause(companyID string, filter payroll.SalaryFilter) (string, []interface{}) {
	where := " WHERE company_id = $1"
	args := []interface{}{companyID}
	argIdx := 2

	if filter.Period != nil {
		where += fmt.Sprintf(" AND period_month = $%d AND period_year = $%d", argIdx, argIdx+1)
		args = append(args, int(filter.Period.Month), filter.Period.Year)
		argIdx += 2
	}
	if filter.Status != nil {
		where += fmt.Sprintf(" AND status = $%d", argIdx)
		args = append(args, *filter.Status)
		argIdx++
	}
	if filter.UnpaidOnly {
		where += " AND status <> 'paid'"
	}
	if filter.EmployeeID != nil {
		where += fmt.Sprintf(" AND employee_id = $%d", argIdx)
		args = append(args, *filter.EmployeeID)
	}

	return where, args
}

func (r *salaryRepository) List(ctx context.Context, companyID string, filter payroll.SalaryFilter) ([]payroll.SalaryRecord, error) {
	q := GetQuerier(ctx, r.db)

	where, args := filterClause(companyID, filter)
	query := `SELECT ` + salaryColumns + ` FROM salary_records` + where +
		` ORDER BY period_year DESC, period_month DESC, employee_name, id`

	rows, err := q.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list salary records: %w", err)
	}
	defer rows.Close()

	var records []payroll.SalaryRecord
	for rows.Next() {
		rec, err := scanSalaryRecord(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan salary record: %w", err)
		}
		records = append(records, rec)
	}

	return records, rows.Err()
}

func (r *salaryRepository) Totals(ctx context.Context, companyID string, filter payroll.SalaryFilter) (payroll.SalaryTotals, error) {
	q := GetQuerier(ctx, r.db)

	where, args := filterClause(companyID, filter)
	query := `
		SELECT
			COUNT(*),
			COUNT(*) FILTER (WHERE status = 'pending'),
			COUNT(*) FILTER (WHERE status = 'processed'),
			COUNT(*) FILTER (WHERE status = 'paid'),
			COALESCE(SUM(net_salary), 0),
			COALESCE(SUM(net_salary) FILTER (WHERE status = 'paid'), 0)
		FROM salary_records` + where

	var t payroll.SalaryTotals
	err := q.QueryRow(ctx, query, args...).Scan(
		&t.RecordCount, &t.PendingCount, &t.ProcessedCount, &t.PaidCount,
		&t.TotalNetSalary, &t.PaidNetSalary,
	)
	if err != nil {
		return payroll.SalaryTotals{}, fmt.Errorf("failed to total salary records: %w", err)
	}
	return t, nil
}
