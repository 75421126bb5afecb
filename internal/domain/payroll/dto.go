package payroll

import (
	"errors"
	"fmt"
	"time"

	"github.com/cmlabs-hris/hris-payroll-go/internal/domain/employee"
	"github.com/cmlabs-hris/hris-payroll-go/internal/pkg/validator"
	"github.com/shopspring/decimal"
)

// ========== CALCULATION DTOs ==========

type CalculateRequest struct {
	Period     string                  `json:"period"`
	Mode       RunMode                 `json:"mode,omitempty"`
	Components map[string]ComponentSet `json:"components,omitempty"` // keyed by employee_id
}

func (r *CalculateRequest) Validate() error {
	var errs validator.ValidationErrors

	if r.Mode == "" {
		r.Mode = RunModeCreate
	}
	if r.Mode != RunModeCreate && r.Mode != RunModeRecalculate {
		errs = append(errs, validator.ValidationError{Field: "mode", Message: "must be 'create' or 'recalculate'"})
	}
	for employeeID, set := range r.Components {
		errs = append(errs, set.validate("components."+employeeID)...)
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

// RunRequest is what the pipeline executes, whether triggered by cron or by an API call.
type RunRequest struct {
	CompanyID  string
	Period     Period
	Mode       RunMode
	Actor      string
	Components map[string]ComponentSet
}

type RunResult struct {
	Period            string  `json:"period"`
	Mode              RunMode `json:"mode"`
	Processed         int     `json:"processed"`
	SkippedPaid       int     `json:"skipped_paid"`
	SkippedMissing    int     `json:"skipped_missing"`
	SkippedIneligible int     `json:"skipped_ineligible"` // active but no base salary
	TotalEmployees    int     `json:"total_employees"`
	WorkingDays       int     `json:"working_days"`
}

func (s ComponentSet) validate(prefix string) validator.ValidationErrors {
	var errs validator.ValidationErrors
	errs = append(errs, validateComponents(prefix+".allowances", s.Allowances)...)
	errs = append(errs, validateComponents(prefix+".deductions", s.Deductions)...)
	errs = append(errs, validateComponents(prefix+".reimbursements", s.Reimbursements)...)
	return errs
}

func validateComponents(field string, comps []Component) validator.ValidationErrors {
	var errs validator.ValidationErrors
	for i := range comps {
		c := &comps[i]
		if c.Kind == "" {
			c.Kind = ComponentKindFixed
		}
		if c.Kind != ComponentKindFixed && c.Kind != ComponentKindPercentage {
			errs = append(errs, validator.ValidationError{Field: fmt.Sprintf("%s[%d].type", field, i), Message: "must be 'fixed' or 'percentage'"})
		}
		if c.Amount.IsNegative() {
			errs = append(errs, validator.ValidationError{Field: fmt.Sprintf("%s[%d].amount", field, i), Message: "must be non-negative"})
		}
	}
	return errs
}

// ========== UPDATE DTOs ==========

type UpdateSalaryRequest struct {
	ID             string           `json:"-"`
	BaseSalary     *decimal.Decimal `json:"base_salary,omitempty"`
	PayDay         *int             `json:"pay_day,omitempty"`
	Allowances     []Component      `json:"allowances,omitempty"`
	Deductions     []Component      `json:"deductions,omitempty"`
	Reimbursements []Component      `json:"reimbursements,omitempty"`
}

func (r *UpdateSalaryRequest) Validate() error {
	var errs validator.ValidationErrors

	if r.BaseSalary != nil && r.BaseSalary.IsNegative() {
		errs = append(errs, validator.ValidationError{Field: "base_salary", Message: "must be non-negative"})
	}
	errs = append(errs, validatePayDay(r.PayDay)...)
	errs = append(errs, r.Components().validate("salary")...)

	if len(errs) > 0 {
		return errs
	}
	return nil
}

func (r UpdateSalaryRequest) Components() ComponentSet {
	return ComponentSet{Allowances: r.Allowances, Deductions: r.Deductions, Reimbursements: r.Reimbursements}
}

// ========== CREATE DTOs ==========

type CreateSalaryRequest struct {
	EmployeeID     string           `json:"employee_id"`
	Period         string           `json:"period"`
	BaseSalary     *decimal.Decimal `json:"base_salary,omitempty"` // defaults to the employee's base salary
	PayDay         *int             `json:"pay_day,omitempty"`     // defaults to the employee's pay day
	Allowances     []Component      `json:"allowances,omitempty"`
	Deductions     []Component      `json:"deductions,omitempty"`
	Reimbursements []Component      `json:"reimbursements,omitempty"`
}

func (r *CreateSalaryRequest) Validate() error {
	var errs validator.ValidationErrors

	if validator.IsEmpty(r.EmployeeID) {
		errs = append(errs, validator.ValidationError{Field: "employee_id", Message: "is required"})
	}
	if _, err := ParsePeriodCode(r.Period); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			errs = append(errs, verrs...)
		}
	}
	if r.BaseSalary != nil && r.BaseSalary.IsNegative() {
		errs = append(errs, validator.ValidationError{Field: "base_salary", Message: "must be non-negative"})
	}
	errs = append(errs, validatePayDay(r.PayDay)...)
	errs = append(errs, r.Components().validate("salary")...)

	if len(errs) > 0 {
		return errs
	}
	return nil
}

func (r CreateSalaryRequest) Components() ComponentSet {
	return ComponentSet{Allowances: r.Allowances, Deductions: r.Deductions, Reimbursements: r.Reimbursements}
}

func validatePayDay(day *int) validator.ValidationErrors {
	if day == nil {
		return nil
	}
	if err := employee.ValidatePayDay(*day); err != nil {
		return validator.ValidationErrors{{Field: "pay_day", Message: err.Error()}}
	}
	return nil
}

// ========== PAYMENT DTOs ==========

type MarkPaidRequest struct {
	ID                string           `json:"-"`
	PaidOn            *string          `json:"paid_on,omitempty"`
	PaymentMethod     *string          `json:"payment_method,omitempty"`
	PaymentReference  *string          `json:"payment_reference,omitempty"`
	ActualWorkingDays *int             `json:"actual_working_days,omitempty"`
	Deductions        *decimal.Decimal `json:"deductions,omitempty"`
	Allowances        *decimal.Decimal `json:"allowances,omitempty"`
	NetSalary         *decimal.Decimal `json:"net_salary,omitempty"`
}

func (r *MarkPaidRequest) Validate() error {
	errs := validatePaymentOverrides(r.PaidOn, r.ActualWorkingDays, r.Deductions, r.Allowances, r.NetSalary)
	if r.ID == "" {
		errs = append(errs, validator.ValidationError{Field: "id", Message: "is required"})
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

// ToPaymentInput converts the request once Validate has passed.
func (r MarkPaidRequest) ToPaymentInput(actor string, now time.Time) PaymentInput {
	return PaymentInput{
		PaidOn:            parseDatePtr(r.PaidOn),
		PaymentMethod:     r.PaymentMethod,
		PaymentReference:  r.PaymentReference,
		ActualWorkingDays: r.ActualWorkingDays,
		Deductions:        r.Deductions,
		Allowances:        r.Allowances,
		NetSalary:         r.NetSalary,
		PaidBy:            actor,
		PaidAt:            now,
	}
}

type BulkMarkPaidItem struct {
	RecordID          string           `json:"record_id"`
	PaymentReference  string           `json:"payment_reference"`
	PaidOn            *string          `json:"paid_on,omitempty"`
	PaymentMethod     *string          `json:"payment_method,omitempty"`
	ActualWorkingDays *int             `json:"actual_working_days,omitempty"`
	Deductions        *decimal.Decimal `json:"deductions,omitempty"`
	Allowances        *decimal.Decimal `json:"allowances,omitempty"`
	NetSalary         *decimal.Decimal `json:"net_salary,omitempty"`
}

func (i *BulkMarkPaidItem) Validate() error {
	errs := validatePaymentOverrides(i.PaidOn, i.ActualWorkingDays, i.Deductions, i.Allowances, i.NetSalary)
	if validator.IsEmpty(i.RecordID) {
		errs = append(errs, validator.ValidationError{Field: "record_id", Message: "is required"})
	}
	if validator.IsEmpty(i.PaymentReference) {
		errs = append(errs, validator.ValidationError{Field: "payment_reference", Message: "is required"})
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

// ToMarkPaidRequest applies the batch default payment method to items without their own.
func (i BulkMarkPaidItem) ToMarkPaidRequest(defaultMethod *string) MarkPaidRequest {
	method := i.PaymentMethod
	if method == nil || validator.IsEmpty(*method) {
		method = defaultMethod
	}
	ref := i.PaymentReference
	return MarkPaidRequest{
		ID:                i.RecordID,
		PaidOn:            i.PaidOn,
		PaymentMethod:     method,
		PaymentReference:  &ref,
		ActualWorkingDays: i.ActualWorkingDays,
		Deductions:        i.Deductions,
		Allowances:        i.Allowances,
		NetSalary:         i.NetSalary,
	}
}

type BulkMarkPaidRequest struct {
	Items                []BulkMarkPaidItem `json:"items"`
	DefaultPaymentMethod *string            `json:"payment_method,omitempty"`
}

func (r *BulkMarkPaidRequest) Validate() error {
	if len(r.Items) == 0 {
		return validator.ValidationErrors{{Field: "items", Message: "at least one item is required"}}
	}
	return nil
}

type BulkSuccess struct {
	Index            int             `json:"index"`
	RecordID         string          `json:"record_id"`
	EmployeeID       string          `json:"employee_id"`
	NetSalary        decimal.Decimal `json:"net_salary"`
	PaidOn           string          `json:"paid_on"`
	PaymentMethod    *string         `json:"payment_method,omitempty"`
	PaymentReference string          `json:"payment_reference"`
	Status           string          `json:"status"`
}

type BulkFailure struct {
	Index    int               `json:"index"`
	RecordID string            `json:"record_id"`
	Code     string            `json:"code"`
	Reason   string            `json:"reason"`
	Details  map[string]string `json:"details,omitempty"`
}

type BulkResult struct {
	Succeeded []BulkSuccess `json:"succeeded"`
	Failed    []BulkFailure `json:"failed"`
}

func validatePaymentOverrides(paidOn *string, actual *int, deductions, allowances, net *decimal.Decimal) validator.ValidationErrors {
	var errs validator.ValidationErrors

	if paidOn != nil {
		if _, ok := validator.IsValidDate(*paidOn); !ok {
			errs = append(errs, validator.ValidationError{Field: "paid_on", Message: "must be a date in YYYY-MM-DD format"})
		}
	}
	if actual != nil && *actual < 0 {
		errs = append(errs, validator.ValidationError{Field: "actual_working_days", Message: "must be non-negative"})
	}
	if deductions != nil && deductions.IsNegative() {
		errs = append(errs, validator.ValidationError{Field: "deductions", Message: "must be non-negative"})
	}
	if allowances != nil && allowances.IsNegative() {
		errs = append(errs, validator.ValidationError{Field: "allowances", Message: "must be non-negative"})
	}
	if net != nil && net.IsNegative() {
		errs = append(errs, validator.ValidationError{Field: "net_salary", Message: "must be non-negative"})
	}
	return errs
}

func parseDatePtr(s *string) *time.Time {
	if s == nil {
		return nil
	}
	t, ok := validator.IsValidDate(*s)
	if !ok {
		return nil
	}
	return &t
}

// ========== QUERY DTOs ==========

type SalaryFilter struct {
	Period     *Period
	Status     *SalaryStatus
	UnpaidOnly bool
	EmployeeID *string
}

type FieldChangeResponse struct {
	Attribute string  `json:"attribute"`
	OldValue  *string `json:"old_value"`
	NewValue  *string `json:"new_value"`
	UpdatedAt string  `json:"updated_at"`
	UpdatedBy string  `json:"updated_by"`
}

type SalaryRecordResponse struct {
	ID                 string                `json:"id"`
	EmployeeID         string                `json:"employee_id"`
	EmployeeName       string                `json:"employee_name"`
	Month              string                `json:"month"`
	Year               int                   `json:"year"`
	BaseSalary         decimal.Decimal       `json:"base_salary"`
	Allowances         decimal.Decimal       `json:"allowances"`
	Deductions         decimal.Decimal       `json:"deductions"`
	Reimbursements     decimal.Decimal       `json:"reimbursements"`
	GrossSalary        decimal.Decimal       `json:"gross_salary"`
	NetSalary          decimal.Decimal       `json:"net_salary"`
	PayDay             int                   `json:"salary_payment_date"`
	DefaultWorkingDays int                   `json:"default_working_days"`
	ActualWorkingDays  *int                  `json:"actual_working_days,omitempty"`
	Status             string                `json:"status"`
	PaymentDate        string                `json:"payment_date"`
	PaidOn             *string               `json:"paid_on,omitempty"`
	PaymentMethod      *string               `json:"payment_method,omitempty"`
	PaymentReference   *string               `json:"payment_reference,omitempty"`
	PaidBy             *string               `json:"paid_by,omitempty"`
	PaidAt             *string               `json:"paid_at,omitempty"`
	Components         *ComponentSet         `json:"components,omitempty"`
	UpdateHistory      []FieldChangeResponse `json:"update_history,omitempty"`
}

type SalaryTotalsResponse struct {
	RecordCount    int             `json:"record_count"`
	PendingCount   int             `json:"pending_count"`
	ProcessedCount int             `json:"processed_count"`
	PaidCount      int             `json:"paid_count"`
	TotalNetSalary decimal.Decimal `json:"total_net_salary"`
	PaidNetSalary  decimal.Decimal `json:"paid_net_salary"`
}

type ListSalaryResponse struct {
	Data   []SalaryRecordResponse `json:"data"`
	Totals SalaryTotalsResponse   `json:"totals"`
}
