package payroll

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/cmlabs-hris/hris-payroll-go/internal/domain/employee"
	"github.com/cmlabs-hris/hris-payroll-go/internal/domain/payroll"
	"github.com/cmlabs-hris/hris-payroll-go/internal/pkg/validator"
)

func (s *PayrollServiceImpl) Calculate(ctx context.Context, req payroll.CalculateRequest) (payroll.RunResult, error) {
	companyID, userID, err := getActorFromContext(ctx)
	if err != nil {
		return payroll.RunResult{}, err
	}

	if err := req.Validate(); err != nil {
		return payroll.RunResult{}, err
	}
	p, err := payroll.ParsePeriodCode(req.Period)
	if err != nil {
		return payroll.RunResult{}, err
	}

	return s.ProcessPeriod(ctx, payroll.RunRequest{
		CompanyID:  companyID,
		Period:     p,
		Mode:       req.Mode,
		Actor:      userID,
		Components: req.Components,
	})
}

// CreateSalary creates one employee's record for a period. Inputs the request
// leaves out come from the employee directory.
func (s *PayrollServiceImpl) CreateSalary(ctx context.Context, req payroll.CreateSalaryRequest) (payroll.SalaryRecordResponse, error) {
	companyID, userID, err := getActorFromContext(ctx)
	if err != nil {
		return payroll.SalaryRecordResponse{}, err
	}

	if err := req.Validate(); err != nil {
		return payroll.SalaryRecordResponse{}, err
	}
	p, err := payroll.ParsePeriodCode(req.Period)
	if err != nil {
		return payroll.SalaryRecordResponse{}, err
	}

	emp, err := s.employeeRepo.GetByID(ctx, req.EmployeeID, companyID)
	if err != nil {
		return payroll.SalaryRecordResponse{}, err
	}
	if req.BaseSalary != nil {
		emp.BaseSalary = req.BaseSalary
	}
	if emp.BaseSalary == nil {
		return payroll.SalaryRecordResponse{}, validator.ValidationErrors{
			{Field: "base_salary", Message: "is required when the employee has no base salary"},
		}
	}
	if req.PayDay != nil {
		emp.PayDay = *req.PayDay
	}

	set := req.Components()
	in := recalcInputFor(emp, s.workingDays.DefaultWorkingDays(ctx, companyID, p), set)

	var created payroll.SalaryRecord
	err = s.tx.WithinTx(ctx, func(txCtx context.Context) error {
		_, err := s.salaryRepo.GetByEmployeePeriodForUpdate(txCtx, companyID, emp.ID, p)
		if err == nil {
			return payroll.ErrSalaryRecordAlreadyExists
		}
		if !errors.Is(err, payroll.ErrSalaryRecordNotFound) {
			return err
		}

		rec := payroll.NewSalaryRecord(s.newID(), companyID, emp.ID, p, in, userID, s.now())
		if created, err = s.salaryRepo.Create(txCtx, rec); err != nil {
			return err
		}
		return s.saveComponents(txCtx, created.ID, set)
	})
	if err != nil {
		return payroll.SalaryRecordResponse{}, err
	}

	if set.Supplied() {
		created.Components = &set
	}
	slog.Info("salary record created",
		"company_id", companyID, "employee_id", emp.ID, "period", p.Code(), "record_id", created.ID)
	return created.ToResponse(), nil
}

// ProcessPeriod writes every record of the run in one transaction. Paid records
// are counted and left untouched.
func (s *PayrollServiceImpl) ProcessPeriod(ctx context.Context, req payroll.RunRequest) (payroll.RunResult, error) {
	if req.CompanyID == "" {
		return payroll.RunResult{}, payroll.ErrCompanyRequired
	}
	if req.Mode != payroll.RunModeCreate && req.Mode != payroll.RunModeRecalculate {
		return payroll.RunResult{}, fmt.Errorf("%w: %q", payroll.ErrInvalidRunMode, req.Mode)
	}
	if !req.Period.Valid() {
		return payroll.RunResult{}, payroll.ErrInvalidPeriod
	}

	employees, err := s.employeeRepo.GetActiveByCompanyID(ctx, req.CompanyID)
	if err != nil {
		return payroll.RunResult{}, fmt.Errorf("load employees: %w", err)
	}

	workingDays := s.workingDays.DefaultWorkingDays(ctx, req.CompanyID, req.Period)

	result := payroll.RunResult{
		Period:         req.Period.Code(),
		Mode:           req.Mode,
		TotalEmployees: len(employees),
		WorkingDays:    workingDays,
	}
	now := s.now()

	err = s.tx.WithinTx(ctx, func(txCtx context.Context) error {
		result.Processed, result.SkippedPaid, result.SkippedMissing, result.SkippedIneligible = 0, 0, 0, 0

		for _, emp := range employees {
			if !emp.Payable() {
				result.SkippedIneligible++
				continue
			}

			set := req.Components[emp.ID]
			in := recalcInputFor(emp, workingDays, set)
			outcome, err := s.processEmployee(txCtx, req, emp, in, set, now)
			if err != nil {
				return fmt.Errorf("employee %s: %w", emp.ID, err)
			}

			switch outcome {
			case outcomeProcessed:
				result.Processed++
			case outcomeSkippedPaid:
				result.SkippedPaid++
			case outcomeSkippedMissing:
				result.SkippedMissing++
			}
		}
		return nil
	})
	if err != nil {
		slog.Error("payroll run failed",
			"company_id", req.CompanyID, "period", req.Period.Code(), "mode", req.Mode, "error", err)
		return payroll.RunResult{}, err
	}

	slog.Info("payroll run completed",
		"company_id", req.CompanyID,
		"period", result.Period,
		"mode", result.Mode,
		"processed", result.Processed,
		"skipped_paid", result.SkippedPaid,
		"skipped_missing", result.SkippedMissing,
		"skipped_ineligible", result.SkippedIneligible,
	)
	return result, nil
}

type runOutcome int

const (
	outcomeProcessed runOutcome = iota
	outcomeSkippedPaid
	outcomeSkippedMissing
)

func (s *PayrollServiceImpl) processEmployee(ctx context.Context, req payroll.RunRequest, emp employee.Employee, in payroll.RecalcInput, set payroll.ComponentSet, now time.Time) (runOutcome, error) {
	existing, err := s.salaryRepo.GetByEmployeePeriodForUpdate(ctx, req.CompanyID, emp.ID, req.Period)
	if errors.Is(err, payroll.ErrSalaryRecordNotFound) {
		if req.Mode == payroll.RunModeRecalculate {
			return outcomeSkippedMissing, nil
		}
		rec := payroll.NewSalaryRecord(s.newID(), req.CompanyID, emp.ID, req.Period, in, req.Actor, now)
		if _, err := s.salaryRepo.Create(ctx, rec); err != nil {
			return 0, err
		}
		if err := s.saveComponents(ctx, rec.ID, set); err != nil {
			return 0, err
		}
		return outcomeProcessed, nil
	}
	if err != nil {
		return 0, err
	}

	updated, changes, err := payroll.ApplyRecalculation(existing, in, req.Actor, now)
	if errors.Is(err, payroll.ErrSalaryRecordAlreadyPaid) {
		return outcomeSkippedPaid, nil
	}
	if err != nil {
		return 0, err
	}
	if len(changes) > 0 {
		if err := s.salaryRepo.UpdateUnlessPaid(ctx, updated); err != nil {
			if errors.Is(err, payroll.ErrSalaryRecordAlreadyPaid) {
				return outcomeSkippedPaid, nil
			}
			return 0, err
		}
		if err := s.changeRepo.Append(ctx, updated.ID, changes); err != nil {
			return 0, err
		}
	}
	// Line items can change without moving a total, so they are written either way.
	if err := s.saveComponents(ctx, updated.ID, set); err != nil {
		return 0, err
	}
	return outcomeProcessed, nil
}

// recalcInputFor aggregates only the component groups that were supplied.
func recalcInputFor(emp employee.Employee, workingDays int, set payroll.ComponentSet) payroll.RecalcInput {
	base := *emp.BaseSalary
	in := payroll.RecalcInput{
		EmployeeName:       emp.FullName,
		BaseSalary:         base,
		PayDay:             emp.EffectivePayDay(),
		DefaultWorkingDays: workingDays,
	}
	if set.Allowances != nil {
		total := payroll.AggregateComponents(base, set.Allowances)
		in.Allowances = &total
	}
	if set.Deductions != nil {
		total := payroll.AggregateComponents(base, set.Deductions)
		in.Deductions = &total
	}
	if set.Reimbursements != nil {
		total := payroll.AggregateComponents(base, set.Reimbursements)
		in.Reimbursements = &total
	}
	return in
}
