package payroll

import (
	"context"
	"time"
)

// PayrollService defines business logic for salary calculation and reconciliation.
// Tenant and actor come from the JWT claims in ctx unless stated otherwise.
type PayrollService interface {
	// Calculate runs the pipeline for the requested period on demand
	Calculate(ctx context.Context, req CalculateRequest) (RunResult, error)

	// ProcessPeriod runs the pipeline for an explicit tenant, used by the scheduler
	ProcessPeriod(ctx context.Context, req RunRequest) (RunResult, error)

	// CreateSalary creates the record of a single employee for one period
	CreateSalary(ctx context.Context, req CreateSalaryRequest) (SalaryRecordResponse, error)

	// ListSalaries lists salary records with aggregate totals
	ListSalaries(ctx context.Context, filter SalaryFilter) (ListSalaryResponse, error)

	// GetSalary returns one record together with its change history
	GetSalary(ctx context.Context, id string) (SalaryRecordResponse, error)

	// UpdateSalary edits the inputs of a non-paid record and recomputes its totals
	UpdateSalary(ctx context.Context, req UpdateSalaryRequest) (SalaryRecordResponse, error)

	// MarkSalaryAsPaid moves a single record into the paid state
	MarkSalaryAsPaid(ctx context.Context, req MarkPaidRequest) (SalaryRecordResponse, error)

	// BulkMarkAsPaid settles many records, each independently
	BulkMarkAsPaid(ctx context.Context, req BulkMarkPaidRequest) (BulkResult, error)

	// WorkingDays returns the cached or freshly computed working days for the caller's tenant
	WorkingDays(ctx context.Context, p Period) (int, error)

	// ClearWorkingDays drops the cached working days for the caller's tenant
	ClearWorkingDays(ctx context.Context, p Period) error
}

// ToResponse maps a record into its API representation.
func (r SalaryRecord) ToResponse() SalaryRecordResponse {
	resp := SalaryRecordResponse{
		ID:                 r.ID,
		EmployeeID:         r.EmployeeID,
		EmployeeName:       r.EmployeeName,
		Month:              r.Period.MonthName(),
		Year:               r.Period.Year,
		BaseSalary:         r.BaseSalary,
		Allowances:         r.Allowances,
		Deductions:         r.Deductions,
		Reimbursements:     r.Reimbursements,
		GrossSalary:        r.GrossSalary,
		NetSalary:          r.NetSalary,
		PayDay:             r.PayDay,
		DefaultWorkingDays: r.DefaultWorkingDays,
		ActualWorkingDays:  r.ActualWorkingDays,
		Status:             string(r.Status),
		PaymentDate:        r.PaymentDate.Format(time.DateOnly),
		PaymentMethod:      r.PaymentMethod,
		PaymentReference:   r.PaymentReference,
		PaidBy:             r.PaidBy,
		Components:         r.Components,
	}
	if r.PaidOn != nil {
		s := r.PaidOn.Format(time.DateOnly)
		resp.PaidOn = &s
	}
	if r.PaidAt != nil {
		s := r.PaidAt.Format(time.RFC3339)
		resp.PaidAt = &s
	}
	for _, c := range r.Changes {
		resp.UpdateHistory = append(resp.UpdateHistory, FieldChangeResponse{
			Attribute: string(c.Field),
			OldValue:  c.OldValue,
			NewValue:  c.NewValue,
			UpdatedAt: c.ChangedAt.Format(time.RFC3339),
			UpdatedBy: c.ChangedBy,
		})
	}
	return resp
}

func (t SalaryTotals) ToResponse() SalaryTotalsResponse {
	return SalaryTotalsResponse{
		RecordCount:    t.RecordCount,
		PendingCount:   t.PendingCount,
		ProcessedCount: t.ProcessedCount,
		PaidCount:      t.PaidCount,
		TotalNetSalary: t.TotalNetSalary,
		PaidNetSalary:  t.PaidNetSalary,
	}
}
