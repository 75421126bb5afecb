package payroll

import (
	"strconv"
	"time"

	"github.com/shopspring/decimal"
)

// RecalcInput carries the values one pipeline pass computes for an employee.
// Nil totals were not resupplied and leave the stored values untouched.
type RecalcInput struct {
	EmployeeName       string
	BaseSalary         decimal.Decimal
	PayDay             int
	DefaultWorkingDays int
	Allowances         *decimal.Decimal
	Deductions         *decimal.Decimal
	Reimbursements     *decimal.Decimal
}

// PaymentInput carries the payment facts and overrides for the paid transition.
type PaymentInput struct {
	PaidOn            *time.Time
	PaymentMethod     *string
	PaymentReference  *string
	ActualWorkingDays *int
	Deductions        *decimal.Decimal
	Allowances        *decimal.Decimal
	NetSalary         *decimal.Decimal
	PaidBy            string
	PaidAt            time.Time
}

// NewSalaryRecord builds the pending record the create pass inserts.
func NewSalaryRecord(id, companyID, employeeID string, p Period, in RecalcInput, actor string, now time.Time) SalaryRecord {
	rec := SalaryRecord{
		ID:                 id,
		CompanyID:          companyID,
		EmployeeID:         employeeID,
		EmployeeName:       in.EmployeeName,
		Period:             p,
		BaseSalary:         in.BaseSalary,
		Allowances:         valueOrZero(in.Allowances),
		Deductions:         valueOrZero(in.Deductions),
		Reimbursements:     valueOrZero(in.Reimbursements),
		PayDay:             in.PayDay,
		DefaultWorkingDays: in.DefaultWorkingDays,
		Status:             SalaryStatusPending,
		PaymentDate:        PaymentDate(in.PayDay, p),
		ProcessedAt:        &now,
		ProcessedBy:        &actor,
		CreatedAt:          now,
		UpdatedAt:          now,
	}
	rec.Recompute()
	return rec
}

// ApplyRecalculation returns the updated copy of existing plus the change log entries
// for it. Paid records are refused with ErrSalaryRecordAlreadyPaid and never modified.
func ApplyRecalculation(existing SalaryRecord, in RecalcInput, actor string, now time.Time) (SalaryRecord, []FieldChange, error) {
	if existing.Status.IsTerminal() {
		return existing, nil, ErrSalaryRecordAlreadyPaid
	}

	updated := existing
	updated.EmployeeName = in.EmployeeName
	updated.BaseSalary = in.BaseSalary
	updated.PayDay = in.PayDay
	updated.PaymentDate = PaymentDate(in.PayDay, existing.Period)
	updated.DefaultWorkingDays = in.DefaultWorkingDays
	if in.Allowances != nil {
		updated.Allowances = *in.Allowances
	}
	if in.Deductions != nil {
		updated.Deductions = *in.Deductions
	}
	if in.Reimbursements != nil {
		updated.Reimbursements = *in.Reimbursements
	}
	updated.Recompute()

	changes := DiffTracked(existing, updated, actor, now)
	if len(changes) > 0 {
		updated.UpdatedAt = now
		updated.ProcessedAt = &now
		updated.ProcessedBy = &actor
	}
	return updated, changes, nil
}

// ApplyPayment performs the only transition into the paid state.
func ApplyPayment(existing SalaryRecord, in PaymentInput) (SalaryRecord, []FieldChange, error) {
	if existing.Status.IsTerminal() {
		return existing, nil, ErrSalaryRecordAlreadyPaid
	}

	updated := existing
	if in.Allowances != nil {
		updated.Allowances = *in.Allowances
	}
	if in.Deductions != nil {
		updated.Deductions = *in.Deductions
	}
	updated.Recompute()

	if in.NetSalary != nil {
		if in.NetSalary.GreaterThan(updated.AmountOwed()) {
			return existing, nil, ErrPaymentExceedsOwed
		}
		updated.NetSalary = *in.NetSalary
	}

	paidOn := existing.PaymentDate
	if in.PaidOn != nil {
		paidOn = *in.PaidOn
	}
	actual := existing.DefaultWorkingDays
	if in.ActualWorkingDays != nil {
		actual = *in.ActualWorkingDays
	}
	paidBy := in.PaidBy
	paidAt := in.PaidAt

	updated.PaidOn = &paidOn
	updated.ActualWorkingDays = &actual
	if in.PaymentMethod != nil {
		updated.PaymentMethod = in.PaymentMethod
	}
	if in.PaymentReference != nil {
		updated.PaymentReference = in.PaymentReference
	}
	updated.Status = SalaryStatusPaid
	updated.PaidBy = &paidBy
	updated.PaidAt = &paidAt
	updated.UpdatedAt = paidAt

	return updated, DiffTracked(existing, updated, paidBy, paidAt), nil
}

// trackedFields fixes both the set of logged attributes and their order in the log.
var trackedFields = []TrackedField{
	FieldEmployeeName,
	FieldBaseSalary,
	FieldAllowances,
	FieldDeductions,
	FieldReimbursements,
	FieldGrossSalary,
	FieldNetSalary,
	FieldPayDay,
	FieldPaymentDate,
	FieldDefaultWorkingDays,
	FieldActualWorkingDays,
	FieldStatus,
	FieldPaidOn,
	FieldPaymentMethod,
	FieldPaymentReference,
}

// DiffTracked compares the tracked fields of two versions of a record.
func DiffTracked(before, after SalaryRecord, actor string, at time.Time) []FieldChange {
	var changes []FieldChange
	for _, f := range trackedFields {
		oldVal := trackedValue(before, f)
		newVal := trackedValue(after, f)
		if equalPtr(oldVal, newVal) {
			continue
		}
		changes = append(changes, FieldChange{
			Field:     f,
			OldValue:  oldVal,
			NewValue:  newVal,
			ChangedAt: at,
			ChangedBy: actor,
		})
	}
	return changes
}

func trackedValue(r SalaryRecord, f TrackedField) *string {
	switch f {
	case FieldEmployeeName:
		return strPtr(r.EmployeeName)
	case FieldBaseSalary:
		return strPtr(r.BaseSalary.String())
	case FieldAllowances:
		return strPtr(r.Allowances.String())
	case FieldDeductions:
		return strPtr(r.Deductions.String())
	case FieldReimbursements:
		return strPtr(r.Reimbursements.String())
	case FieldGrossSalary:
		return strPtr(r.GrossSalary.String())
	case FieldNetSalary:
		return strPtr(r.NetSalary.String())
	case FieldPayDay:
		return strPtr(strconv.Itoa(r.PayDay))
	case FieldPaymentDate:
		return strPtr(r.PaymentDate.Format(time.DateOnly))
	case FieldDefaultWorkingDays:
		return strPtr(strconv.Itoa(r.DefaultWorkingDays))
	case FieldActualWorkingDays:
		if r.ActualWorkingDays == nil {
			return nil
		}
		return strPtr(strconv.Itoa(*r.ActualWorkingDays))
	case FieldStatus:
		return strPtr(string(r.Status))
	case FieldPaidOn:
		if r.PaidOn == nil {
			return nil
		}
		return strPtr(r.PaidOn.Format(time.DateOnly))
	case FieldPaymentMethod:
		return r.PaymentMethod
	case FieldPaymentReference:
		return r.PaymentReference
	}
	return nil
}

func strPtr(s string) *string {
	return &s
}

func equalPtr(a, b *string) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}

func valueOrZero(d *decimal.Decimal) decimal.Decimal {
	if d == nil {
		return decimal.Zero
	}
	return *d
}
