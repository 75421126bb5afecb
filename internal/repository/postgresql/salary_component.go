package postgresql

import (
	"context"
	"fmt"

	"github.com/cmlabs-hris/hris-payroll-go/internal/domain/payroll"
	"github.com/cmlabs-hris/hris-payroll-go/internal/pkg/database"
	"github.com/jackc/pgx/v5"
)

type salaryComponentRepository struct {
	db *database.DB
}

func NewSalaryComponentRepository(db *database.DB) payroll.ComponentRepository {
	return &salaryComponentRepository{db: db}
}

func (r *salaryComponentRepository) Replace(ctx context.Context, recordID string, set payroll.ComponentSet) error {
	groups := []struct {
		category payroll.ComponentCategory
		lines    []payroll.Component
	}{
		{payroll.ComponentCategoryAllowance, set.Allowances},
		{payroll.ComponentCategoryDeduction, set.Deductions},
		{payroll.ComponentCategoryReimbursement, set.Reimbursements},
	}

	batch := &pgx.Batch{}
	for _, g := range groups {
		if g.lines == nil {
			continue
		}
		batch.Queue(`DELETE FROM salary_record_components WHERE record_id = $1 AND category = $2`, recordID, string(g.category))
		for i, c := range g.lines {
			kind := c.Kind
			if kind == "" {
				kind = payroll.ComponentKindFixed
			}
			batch.Queue(`
				INSERT INTO salary_record_components (record_id, category, position, name, amount, kind)
				VALUES ($1, $2, $3, $4, $5, $6)
			`, recordID, string(g.category), i, c.Name, c.Amount, string(kind))
		}
	}
	if batch.Len() == 0 {
		return nil
	}

	q := GetQuerier(ctx, r.db)
	br := q.SendBatch(ctx, batch)
	defer br.Close()
	for i := 0; i < batch.Len(); i++ {
		if _, err := br.Exec(); err != nil {
			return fmt.Errorf("failed to replace salary components: %w", err)
		}
	}
	return nil
}

func (r *salaryComponentRepository) GetByRecordID(ctx context.Context, recordID string) (payroll.ComponentSet, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT category, name, amount, kind
		FROM salary_record_components
		WHERE record_id = $1
		ORDER BY category, position
	`

	rows, err := q.Query(ctx, query, recordID)
	if err != nil {
		return payroll.ComponentSet{}, fmt.Errorf("failed to list salary components: %w", err)
	}
	defer rows.Close()

	var set payroll.ComponentSet
	for rows.Next() {
		var c payroll.Component
		var category, kind string
		if err := rows.Scan(&category, &c.Name, &c.Amount, &kind); err != nil {
			return payroll.ComponentSet{}, fmt.Errorf("failed to scan salary component: %w", err)
		}
		c.Kind = payroll.ComponentKind(kind)

		switch payroll.ComponentCategory(category) {
		case payroll.ComponentCategoryAllowance:
			set.Allowances = append(set.Allowances, c)
		case payroll.ComponentCategoryDeduction:
			set.Deductions = append(set.Deductions, c)
		case payroll.ComponentCategoryReimbursement:
			set.Reimbursements = append(set.Reimbursements, c)
		}
	}

	return set, rows.Err()
}
