package payroll

import (
	"context"
	"time"
)

// SalaryRepository defines data access methods for salary records.
// All methods include companyID parameter to prevent cross-company data access attacks.
type SalaryRepository interface {
	GetByID(ctx context.Context, id string, companyID string) (SalaryRecord, error)
	// GetByIDForUpdate locks the row until the surrounding transaction ends.
	GetByIDForUpdate(ctx context.Context, id string, companyID string) (SalaryRecord, error)
	GetByEmployeePeriodForUpdate(ctx context.Context, companyID, employeeID string, p Period) (SalaryRecord, error)

	Create(ctx context.Context, record SalaryRecord) (SalaryRecord, error)
	// UpdateUnlessPaid writes every mutable column of record, guarded by status <> 'paid'.
	// It returns ErrSalaryRecordAlreadyPaid when the guard rejects the write.
	UpdateUnlessPaid(ctx context.Context, record SalaryRecord) error

	List(ctx context.Context, companyID string, filter SalaryFilter) ([]SalaryRecord, error)
	Totals(ctx context.Context, companyID string, filter SalaryFilter) (SalaryTotals, error)
}

// ChangeLogRepository stores the append-only change history of salary records.
type ChangeLogRepository interface {
	Append(ctx context.Context, recordID string, changes []FieldChange) error
	ListByRecordID(ctx context.Context, recordID string) ([]FieldChange, error)
}

// ComponentRepository keeps the named lines behind a record's component totals.
type ComponentRepository interface {
	// Replace overwrites the stored lines of every non-nil group in set; nil groups are left alone.
	Replace(ctx context.Context, recordID string, set ComponentSet) error
	GetByRecordID(ctx context.Context, recordID string) (ComponentSet, error)
}

// WorkingDaysStore persists holiday-adjusted working day counts per tenant and period.
type WorkingDaysStore interface {
	// Get returns ErrWorkingDaysNotCached on a miss.
	Get(ctx context.Context, key WorkingDaysKey) (int, error)
	Put(ctx context.Context, key WorkingDaysKey, days int) error
	Delete(ctx context.Context, key WorkingDaysKey) error
}

// HolidayCalendar lists a tenant's public holidays in a date range, both ends inclusive.
type HolidayCalendar interface {
	ListHolidays(ctx context.Context, companyID string, from, to time.Time) ([]time.Time, error)
}

// EventPublisher announces completed payments to downstream systems.
type EventPublisher interface {
	PublishSalaryPaid(ctx context.Context, record SalaryRecord) error
}
