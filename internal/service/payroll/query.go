package payroll

import (
	"context"

	"github.com/cmlabs-hris/hris-payroll-go/internal/domain/payroll"
)

func (s *PayrollServiceImpl) ListSalaries(ctx context.Context, filter payroll.SalaryFilter) (payroll.ListSalaryResponse, error) {
	companyID, _, err := getClaimsFromContext(ctx)
	if err != nil {
		return payroll.ListSalaryResponse{}, err
	}

	records, err := s.salaryRepo.List(ctx, companyID, filter)
	if err != nil {
		return payroll.ListSalaryResponse{}, err
	}
	totals, err := s.salaryRepo.Totals(ctx, companyID, filter)
	if err != nil {
		return payroll.ListSalaryResponse{}, err
	}

	data := make([]payroll.SalaryRecordResponse, 0, len(records))
	for _, rec := range records {
		data = append(data, rec.ToResponse())
	}

	return payroll.ListSalaryResponse{Data: data, Totals: totals.ToResponse()}, nil
}

func (s *PayrollServiceImpl) GetSalary(ctx context.Context, id string) (payroll.SalaryRecordResponse, error) {
	companyID, _, err := getClaimsFromContext(ctx)
	if err != nil {
		return payroll.SalaryRecordResponse{}, err
	}

	rec, err := s.salaryRepo.GetByID(ctx, id, companyID)
	if err != nil {
		return payroll.SalaryRecordResponse{}, err
	}
	rec.Changes, err = s.changeRepo.ListByRecordID(ctx, rec.ID)
	if err != nil {
		return payroll.SalaryRecordResponse{}, err
	}
	components, err := s.componentRepo.GetByRecordID(ctx, rec.ID)
	if err != nil {
		return payroll.SalaryRecordResponse{}, err
	}
	if components.Supplied() {
		rec.Components = &components
	}

	return rec.ToResponse(), nil
}

// UpdateSalary applies a manual edit with the same guard as a scheduled recalculation.
func (s *PayrollServiceImpl) UpdateSalary(ctx context.Context, req payroll.UpdateSalaryRequest) (payroll.SalaryRecordResponse, error) {
	companyID, userID, err := getActorFromContext(ctx)
	if err != nil {
		return payroll.SalaryRecordResponse{}, err
	}

	if err := req.Validate(); err != nil {
		return payroll.SalaryRecordResponse{}, err
	}

	var updated payroll.SalaryRecord
	err = s.tx.WithinTx(ctx, func(txCtx context.Context) error {
		existing, err := s.salaryRepo.GetByIDForUpdate(txCtx, req.ID, companyID)
		if err != nil {
			return err
		}

		in := payroll.RecalcInput{
			EmployeeName:       existing.EmployeeName,
			BaseSalary:         existing.BaseSalary,
			PayDay:             existing.PayDay,
			DefaultWorkingDays: existing.DefaultWorkingDays,
		}
		if req.BaseSalary != nil {
			in.BaseSalary = *req.BaseSalary
		}
		if req.PayDay != nil {
			in.PayDay = *req.PayDay
		}
		if req.Allowances != nil {
			total := payroll.AggregateComponents(in.BaseSalary, req.Allowances)
			in.Allowances = &total
		}
		if req.Deductions != nil {
			total := payroll.AggregateComponents(in.BaseSalary, req.Deductions)
			in.Deductions = &total
		}
		if req.Reimbursements != nil {
			total := payroll.AggregateComponents(in.BaseSalary, req.Reimbursements)
			in.Reimbursements = &total
		}

		var changes []payroll.FieldChange
		updated, changes, err = payroll.ApplyRecalculation(existing, in, userID, s.now())
		if err != nil {
			return err
		}
		if len(changes) > 0 {
			if err := s.salaryRepo.UpdateUnlessPaid(txCtx, updated); err != nil {
				return err
			}
			if err := s.changeRepo.Append(txCtx, updated.ID, changes); err != nil {
				return err
			}
		}
		return s.saveComponents(txCtx, updated.ID, req.Components())
	})
	if err != nil {
		return payroll.SalaryRecordResponse{}, err
	}

	return updated.ToResponse(), nil
}

func (s *PayrollServiceImpl) WorkingDays(ctx context.Context, p payroll.Period) (int, error) {
	companyID, _, err := getClaimsFromContext(ctx)
	if err != nil {
		return 0, err
	}
	return s.workingDays.DefaultWorkingDays(ctx, companyID, p), nil
}

func (s *PayrollServiceImpl) ClearWorkingDays(ctx context.Context, p payroll.Period) error {
	companyID, _, err := getClaimsFromContext(ctx)
	if err != nil {
		return err
	}
	return s.workingDays.Clear(ctx, companyID, p)
}
