package postgresql

import (
	"context"
	"errors"
	"fmt"

	"github.com/cmlabs-hris/hris-payroll-go/internal/domain/payroll"
	"github.com/cmlabs-hris/hris-payroll-go/internal/pkg/database"
	"github.com/jackc/pgx/v5"
)

type workingDaysRepository struct {
	db *database.DB
}

// NewWorkingDaysRepository returns the authoritative working days store.
func NewWorkingDaysRepository(db *database.DB) payroll.WorkingDaysStore {
	return &workingDaysRepository{db: db}
}

func (r *workingDaysRepository) Get(ctx context.Context, key payroll.WorkingDaysKey) (int, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT working_days
		FROM working_days_cache
		WHERE company_id = $1 AND period_year = $2 AND period_month = $3
	`

	var days int
	err := q.QueryRow(ctx, query, key.CompanyID, key.Year, int(key.Month)).Scan(&days)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return 0, payroll.ErrWorkingDaysNotCached
		}
		return 0, fmt.Errorf("failed to get working days: %w", err)
	}
	return days, nil
}

// Put overwrites any stored value for the key.
func (r *workingDaysRepository) Put(ctx context.Context, key payroll.WorkingDaysKey, days int) error {
	q := GetQuerier(ctx, r.db)

	query := `
		INSERT INTO working_days_cache (company_id, period_year, period_month, working_days)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (company_id, period_year, period_month) DO UPDATE SET
			working_days = EXCLUDED.working_days,
			computed_at = NOW()
	`

	if _, err := q.Exec(ctx, query, key.CompanyID, key.Year, int(key.Month), days); err != nil {
		return fmt.Errorf("failed to store working days: %w", err)
	}
	return nil
}

func (r *workingDaysRepository) Delete(ctx context.Context, key payroll.WorkingDaysKey) error {
	q := GetQuerier(ctx, r.db)

	query := `
		DELETE FROM working_days_cache
		WHERE company_id = $1 AND period_year = $2 AND period_month = $3
	`

	if _, err := q.Exec(ctx, query, key.CompanyID, key.Year, int(key.Month)); err != nil {
		return fmt.Errorf("failed to delete working days: %w", err)
	}
	return nil
}
