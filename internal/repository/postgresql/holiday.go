package postgresql

import (
	"context"
	"fmt"
	"time"

	"github.com/cmlabs-hris/hris-payroll-go/internal/domain/payroll"
	"github.com/cmlabs-hris/hris-payroll-go/internal/pkg/database"
)

type holidayRepository struct {
	db *database.DB
}

func NewHolidayRepository(db *database.DB) payroll.HolidayCalendar {
	return &holidayRepository{db: db}
}

func (r *holidayRepository) ListHolidays(ctx context.Context, companyID string, from, to time.Time) ([]time.Time, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT holiday_date
		FROM company_holidays
		WHERE company_id = $1 AND holiday_date BETWEEN $2 AND $3
		ORDER BY holiday_date
	`

	rows, err := q.Query(ctx, query, companyID, from.Format(time.DateOnly), to.Format(time.DateOnly))
	if err != nil {
		return nil, fmt.Errorf("failed to list holidays: %w", err)
	}
	defer rows.Close()

	var holidays []time.Time
	for rows.Next() {
		var d time.Time
		if err := rows.Scan(&d); err != nil {
			return nil, fmt.Errorf("failed to scan holiday: %w", err)
		}
		holidays = append(holidays, d)
	}

	return holidays, rows.Err()
}
