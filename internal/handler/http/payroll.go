package http

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strings"

	"github.com/cmlabs-hris/hris-payroll-go/internal/domain/payroll"
	"github.com/cmlabs-hris/hris-payroll-go/internal/handler/http/response"
	"github.com/cmlabs-hris/hris-payroll-go/internal/pkg/validator"
	"github.com/go-chi/chi/v5"
)

type PayrollHandler interface {
	// Computation
	Calculate(w http.ResponseWriter, r *http.Request)

	// Queries
	List(w http.ResponseWriter, r *http.Request)
	ListUnpaid(w http.ResponseWriter, r *http.Request)
	ListByPeriod(w http.ResponseWriter, r *http.Request)
	Get(w http.ResponseWriter, r *http.Request)

	// Mutations
	Create(w http.ResponseWriter, r *http.Request)
	Update(w http.ResponseWriter, r *http.Request)
	MarkPaid(w http.ResponseWriter, r *http.Request)
	BulkMarkPaid(w http.ResponseWriter, r *http.Request)

	// Working days
	GetWorkingDays(w http.ResponseWriter, r *http.Request)
	ClearWorkingDays(w http.ResponseWriter, r *http.Request)
}

type payrollHandlerImpl struct {
	payrollService payroll.PayrollService
}

func NewPayrollHandler(payrollService payroll.PayrollService) PayrollHandler {
	return &payrollHandlerImpl{payrollService: payrollService}
}

// ========== COMPUTATION ==========

func (h *payrollHandlerImpl) Calculate(w http.ResponseWriter, r *http.Request) {
	var req payroll.CalculateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		slog.Error("Calculate decode error", "error", err)
		response.BadRequest(w, "Invalid request body", nil)
		return
	}

	result, err := h.payrollService.Calculate(r.Context(), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMessage(w, "Salary calculation completed", result)
}

func (h *payrollHandlerImpl) Create(w http.ResponseWriter, r *http.Request) {
	var req payroll.CreateSalaryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		slog.Error("Create decode error", "error", err)
		response.BadRequest(w, "Invalid request body", nil)
		return
	}

	record, err := h.payrollService.CreateSalary(r.Context(), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Created(w, "Salary record created", record)
}

// ========== QUERIES ==========

func (h *payrollHandlerImpl) List(w http.ResponseWriter, r *http.Request) {
	filter, err := parseSalaryFilter(r)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	h.list(w, r, filter)
}

func (h *payrollHandlerImpl) ListUnpaid(w http.ResponseWriter, r *http.Request) {
	filter, err := parseSalaryFilter(r)
	if err != nil {
		response.HandleError(w, err)
		return
	}
	filter.UnpaidOnly = true

	h.list(w, r, filter)
}

func (h *payrollHandlerImpl) ListByPeriod(w http.ResponseWriter, r *http.Request) {
	p, err := payroll.ParsePeriodCode(chi.URLParam(r, "period"))
	if err != nil {
		response.HandleError(w, err)
		return
	}

	filter, err := parseSalaryFilter(r)
	if err != nil {
		response.HandleError(w, err)
		return
	}
	filter.Period = &p

	h.list(w, r, filter)
}

func (h *payrollHandlerImpl) list(w http.ResponseWriter, r *http.Request, filter payroll.SalaryFilter) {
	result, err := h.payrollService.ListSalaries(r.Context(), filter)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, result)
}

func (h *payrollHandlerImpl) Get(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == "" {
		response.BadRequest(w, "Salary record ID is required", nil)
		return
	}

	result, err := h.payrollService.GetSalary(r.Context(), id)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, result)
}

// ========== MUTATIONS ==========

func (h *payrollHandlerImpl) Update(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == "" {
		response.BadRequest(w, "Salary record ID is required", nil)
		return
	}

	var req payroll.UpdateSalaryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		slog.Error("UpdateSalary decode error", "error", err)
		response.BadRequest(w, "Invalid request body", nil)
		return
	}
	req.ID = id

	result, err := h.payrollService.UpdateSalary(r.Context(), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMessage(w, "Salary record updated", result)
}

func (h *payrollHandlerImpl) MarkPaid(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == "" {
		response.BadRequest(w, "Salary record ID is required", nil)
		return
	}

	// An empty body pays the record as computed.
	var req payroll.MarkPaidRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
		slog.Error("MarkPaid decode error", "error", err)
		response.BadRequest(w, "Invalid request body", nil)
		return
	}
	req.ID = id

	result, err := h.payrollService.MarkSalaryAsPaid(r.Context(), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMessage(w, "Salary marked as paid", result)
}

// BulkMarkPaid always answers 200 once the batch ran; per-item failures are part of the result.
func (h *payrollHandlerImpl) BulkMarkPaid(w http.ResponseWriter, r *http.Request) {
	var req payroll.BulkMarkPaidRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		slog.Error("BulkMarkPaid decode error", "error", err)
		response.BadRequest(w, "Invalid request body", nil)
		return
	}

	result, err := h.payrollService.BulkMarkAsPaid(r.Context(), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	message := "All salaries marked as paid"
	if len(result.Failed) > 0 {
		message = "Some salaries could not be marked as paid"
	}
	response.SuccessWithMessage(w, message, result)
}

// ========== WORKING DAYS ==========

func (h *payrollHandlerImpl) GetWorkingDays(w http.ResponseWriter, r *http.Request) {
	p, err := payroll.ParsePeriodCode(chi.URLParam(r, "period"))
	if err != nil {
		response.HandleError(w, err)
		return
	}

	days, err := h.payrollService.WorkingDays(r.Context(), p)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, map[string]interface{}{
		"period":       p.Code(),
		"working_days": days,
	})
}

func (h *payrollHandlerImpl) ClearWorkingDays(w http.ResponseWriter, r *http.Request) {
	p, err := payroll.ParsePeriodCode(chi.URLParam(r, "period"))
	if err != nil {
		response.HandleError(w, err)
		return
	}

	if err := h.payrollService.ClearWorkingDays(r.Context(), p); err != nil {
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMessage(w, "Working days cache cleared", nil)
}

var salaryStatuses = []string{
	string(payroll.SalaryStatusPending),
	string(payroll.SalaryStatusProcessed),
	string(payroll.SalaryStatusPaid),
}

func parseSalaryFilter(r *http.Request) (payroll.SalaryFilter, error) {
	var filter payroll.SalaryFilter
	var errs validator.ValidationErrors

	query := r.URL.Query()
	if status := strings.ToLower(strings.TrimSpace(query.Get("status"))); status != "" {
		if !validator.IsInSlice(status, salaryStatuses) {
			errs = append(errs, validator.ValidationError{Field: "status", Message: "must be one of pending, processed, paid"})
		} else {
			s := payroll.SalaryStatus(status)
			filter.Status = &s
		}
	}
	if employeeID := strings.TrimSpace(query.Get("employee_id")); employeeID != "" {
		filter.EmployeeID = &employeeID
	}

	if len(errs) > 0 {
		return filter, errs
	}
	return filter, nil
}
