package payroll

import "errors"

var (
	ErrSalaryRecordNotFound      = errors.New("salary record not found")
	ErrSalaryRecordAlreadyExists = errors.New("salary record already exists for this period")
	ErrSalaryRecordAlreadyPaid   = errors.New("salary record already paid, cannot modify")
	ErrPaymentExceedsOwed        = errors.New("payment exceeds the amount owed")
	ErrInvalidPeriod             = errors.New("invalid payroll period")
	ErrInvalidRunMode            = errors.New("invalid run mode")
	ErrWorkingDaysNotCached      = errors.New("working days not cached")
	ErrCompanyRequired           = errors.New("company_id claim is missing or invalid")
	ErrActorRequired             = errors.New("user_id claim is missing")
)
