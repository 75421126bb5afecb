package postgresql

import (
	"context"
	"fmt"

	"github.com/cmlabs-hris/hris-payroll-go/internal/domain/payroll"
	"github.com/cmlabs-hris/hris-payroll-go/internal/pkg/database"
	"github.com/jackc/pgx/v5"
)

type salaryChangeRepository struct {
	db *database.DB
}

func NewSalaryChangeRepository(db *database.DB) payroll.ChangeLogRepository {
	return &salaryChangeRepository{db: db}
}

func (r *salaryChangeRepository) Append(ctx context.Context, recordID string, changes []payroll.FieldChange) error {
	if len(changes) == 0 {
		return nil
	}
	q := GetQuerier(ctx, r.db)

	query := `
		INSERT INTO salary_record_changes (record_id, attribute, old_value, new_value, changed_at, changed_by)
		VALUES ($1, $2, $3, $4, $5, $6)
	`

	batch := &pgx.Batch{}
	for _, c := range changes {
		batch.Queue(query, recordID, string(c.Field), c.OldValue, c.NewValue, c.ChangedAt, c.ChangedBy)
	}

	br := q.SendBatch(ctx, batch)
	defer br.Close()
	for range changes {
		if _, err := br.Exec(); err != nil {
			return fmt.Errorf("failed to append salary change: %w", err)
		}
	}
	return nil
}

func (r *salaryChangeRepository) ListByRecordID(ctx context.Context, recordID string) ([]payroll.FieldChange, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT attribute, old_value, new_value, changed_at, changed_by
		FROM salary_record_changes
		WHERE record_id = $1
		ORDER BY id
	`

	rows, err := q.Query(ctx, query, recordID)
	if err != nil {
		return nil, fmt.Errorf("failed to list salary changes: %w", err)
	}
	defer rows.Close()

	var changes []payroll.FieldChange
	for rows.Next() {
		var c payroll.FieldChange
		var attribute string
		if err := rows.Scan(&attribute, &c.OldValue, &c.NewValue, &c.ChangedAt, &c.ChangedBy); err != nil {
			return nil, fmt.Errorf("failed to scan salary change: %w", err)
		}
		c.Field = payroll.TrackedField(attribute)
		changes = append(changes, c)
	}

	return changes, rows.Err()
}
