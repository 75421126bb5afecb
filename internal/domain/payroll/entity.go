package payroll

import (
	"time"

	"github.com/shopspring/decimal"
)

// SalaryStatus enum
type SalaryStatus string

const (
	SalaryStatusPending   SalaryStatus = "pending"
	SalaryStatusProcessed SalaryStatus = "processed"
	SalaryStatusPaid      SalaryStatus = "paid"
)

// IsTerminal reports whether no further computation may touch the record.
func (s SalaryStatus) IsTerminal() bool {
	return s == SalaryStatusPaid
}

// ComponentKind enum
type ComponentKind string

const (
	ComponentKindFixed      ComponentKind = "fixed"
	ComponentKindPercentage ComponentKind = "percentage"
)

// Component - Named allowance, deduction or reimbursement entry
type Component struct {
	Name   string          `json:"name"`
	Amount decimal.Decimal `json:"amount"`
	Kind   ComponentKind   `json:"type"`
}

// ComponentSet - Components supplied for one employee during a run.
// A nil slice means "not supplied" and keeps whatever the record already holds.
type ComponentSet struct {
	Allowances     []Component `json:"allowances,omitempty"`
	Deductions     []Component `json:"deductions,omitempty"`
	Reimbursements []Component `json:"reimbursements,omitempty"`
}

// Supplied reports whether any component group was provided.
func (s ComponentSet) Supplied() bool {
	return s.Allowances != nil || s.Deductions != nil || s.Reimbursements != nil
}

// ComponentCategory names the group a stored component line belongs to.
type ComponentCategory string

const (
	ComponentCategoryAllowance     ComponentCategory = "allowance"
	ComponentCategoryDeduction     ComponentCategory = "deduction"
	ComponentCategoryReimbursement ComponentCategory = "reimbursement"
)

// RunMode enum
type RunMode string

const (
	RunModeCreate      RunMode = "create"
	RunModeRecalculate RunMode = "recalculate"
)

// SystemActor is recorded as the actor of scheduled runs.
const SystemActor = "system"

// SalaryRecord - One per (company, employee, period)
type SalaryRecord struct {
	ID                 string
	CompanyID          string
	EmployeeID         string
	EmployeeName       string
	Period             Period
	BaseSalary         decimal.Decimal
	Allowances         decimal.Decimal
	Deductions         decimal.Decimal
	Reimbursements     decimal.Decimal
	GrossSalary        decimal.Decimal
	NetSalary          decimal.Decimal
	PayDay             int
	DefaultWorkingDays int
	ActualWorkingDays  *int
	Status             SalaryStatus
	PaymentDate        time.Time
	PaidOn             *time.Time
	PaymentMethod      *string
	PaymentReference   *string
	PaidBy             *string
	PaidAt             *time.Time
	ProcessedAt        *time.Time
	ProcessedBy        *string
	CreatedAt          time.Time
	UpdatedAt          time.Time

	// Loaded on demand
	Changes    []FieldChange
	Components *ComponentSet
}

// Recompute derives gross and net salary from the stored inputs.
func (r *SalaryRecord) Recompute() {
	r.GrossSalary = r.BaseSalary.Add(r.Allowances)
	r.NetSalary = r.GrossSalary.Add(r.Reimbursements).Sub(r.Deductions)
}

// AmountOwed is the payable amount implied by the record's components.
func (r SalaryRecord) AmountOwed() decimal.Decimal {
	return r.BaseSalary.Add(r.Allowances).Add(r.Reimbursements).Sub(r.Deductions)
}

// TrackedField names an attribute whose mutations are written to the change log.
type TrackedField string

const (
	FieldEmployeeName       TrackedField = "employee_name"
	FieldBaseSalary         TrackedField = "base_salary"
	FieldAllowances         TrackedField = "allowances"
	FieldDeductions         TrackedField = "deductions"
	FieldReimbursements     TrackedField = "reimbursements"
	FieldGrossSalary        TrackedField = "gross_salary"
	FieldNetSalary          TrackedField = "net_salary"
	FieldPayDay             TrackedField = "pay_day"
	FieldPaymentDate        TrackedField = "payment_date"
	FieldDefaultWorkingDays TrackedField = "default_working_days"
	FieldActualWorkingDays  TrackedField = "actual_working_days"
	FieldStatus             TrackedField = "status"
	FieldPaidOn             TrackedField = "paid_on"
	FieldPaymentMethod      TrackedField = "payment_method"
	FieldPaymentReference   TrackedField = "payment_reference"
)

// FieldChange - Append-only change log entry
type FieldChange struct {
	Field     TrackedField
	OldValue  *string
	NewValue  *string
	ChangedAt time.Time
	ChangedBy string
}

// WorkingDaysKey - Cache key for a tenant's working days in one period
type WorkingDaysKey struct {
	CompanyID string
	Year      int
	Month     time.Month
}

func (k WorkingDaysKey) Period() Period {
	return Period{Month: k.Month, Year: k.Year}
}

// KeyFor builds the working days cache key for a company and period.
func KeyFor(companyID string, p Period) WorkingDaysKey {
	return WorkingDaysKey{CompanyID: companyID, Year: p.Year, Month: p.Month}
}

// SalaryTotals - Aggregates over a filtered set of salary records
type SalaryTotals struct {
	RecordCount    int
	PendingCount   int
	ProcessedCount int
	PaidCount      int
	TotalNetSalary decimal.Decimal
	PaidNetSalary  decimal.Decimal
}
