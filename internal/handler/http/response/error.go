package response

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/cmlabs-hris/hris-payroll-go/internal/domain/employee"
	"github.com/cmlabs-hris/hris-payroll-go/internal/domain/payroll"
	"github.com/cmlabs-hris/hris-payroll-go/internal/pkg/validator"
)

// HandleError maps domain errors to HTTP responses
func HandleError(w http.ResponseWriter, err error) {
	// Check if it's a validation error
	var validationErrs validator.ValidationErrors
	if errors.As(err, &validationErrs) {
		ValidationError(w, validationErrs.ToMap())
		return
	}

	switch {
	// Auth errors
	case errors.Is(err, ErrInvalidToken):
		Unauthorized(w, "Invalid or missing access token")
	case errors.Is(err, payroll.ErrActorRequired):
		Unauthorized(w, "Access token does not identify a user")
	case errors.Is(err, payroll.ErrCompanyRequired):
		Forbidden(w, "No company associated with this user")
	case errors.Is(err, ErrInsufficientRole):
		Forbidden(w, "Manager or owner access required")

	// Payroll domain errors
	case errors.Is(err, payroll.ErrSalaryRecordNotFound):
		NotFound(w, "Salary record not found")
	case errors.Is(err, employee.ErrEmployeeNotFound):
		NotFound(w, "Employee not found")
	case errors.Is(err, payroll.ErrSalaryRecordAlreadyPaid):
		Conflict(w, "Salary record already paid, cannot modify")
	case errors.Is(err, payroll.ErrPaymentExceedsOwed):
		Conflict(w, "Net salary exceeds the amount owed")
	case errors.Is(err, payroll.ErrSalaryRecordAlreadyExists):
		Conflict(w, "Salary record already exists for this period")
	case errors.Is(err, payroll.ErrInvalidPeriod):
		BadRequest(w, "Invalid payroll period", nil)
	case errors.Is(err, payroll.ErrInvalidRunMode):
		BadRequest(w, "Invalid run mode", nil)

	// Default
	default:
		slog.Error("unhandled error", "error", err)
		InternalServerError(w, "An unexpected error occurred")
	}
}
