package employee

import (
	"time"

	"github.com/shopspring/decimal"
)

// Employee is the payroll view of an employee, read from the HR directory.
type Employee struct {
	ID               string
	CompanyID        string
	FullName         string
	BaseSalary       *decimal.Decimal
	PayDay           int
	EmploymentStatus EmploymentStatus
	HireDate         time.Time
	ResignationDate  *time.Time
}

type EmploymentStatus string

const (
	EmploymentStatusActive     EmploymentStatus = "active"
	EmploymentStatusResigned   EmploymentStatus = "resigned"
	EmploymentStatusTerminated EmploymentStatus = "terminated"
)

const (
	MinPayDay     = 1
	MaxPayDay     = 28
	DefaultPayDay = 1
)

// ValidatePayDay keeps pay days inside every month, February included.
func ValidatePayDay(day int) error {
	if day < MinPayDay || day > MaxPayDay {
		return ErrInvalidPayDay
	}
	return nil
}

// EffectivePayDay falls back to the first of the month for unset or out of range values.
func (e Employee) EffectivePayDay() int {
	if ValidatePayDay(e.PayDay) != nil {
		return DefaultPayDay
	}
	return e.PayDay
}

// Payable reports whether the employee takes part in a payroll run.
func (e Employee) Payable() bool {
	return e.EmploymentStatus == EmploymentStatusActive && e.BaseSalary != nil
}
