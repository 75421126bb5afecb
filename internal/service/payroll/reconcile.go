package payroll

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/cmlabs-hris/hris-payroll-go/internal/domain/payroll"
	"github.com/cmlabs-hris/hris-payroll-go/internal/pkg/validator"
)

// Bulk failure codes
const (
	FailureValidation = "VALIDATION_ERROR"
	FailureNotFound   = "NOT_FOUND"
	FailureConflict   = "CONFLICT"
	FailureInternal   = "INTERNAL"
)

func (s *PayrollServiceImpl) MarkSalaryAsPaid(ctx context.Context, req payroll.MarkPaidRequest) (payroll.SalaryRecordResponse, error) {
	companyID, userID, err := getActorFromContext(ctx)
	if err != nil {
		return payroll.SalaryRecordResponse{}, err
	}

	if err := req.Validate(); err != nil {
		return payroll.SalaryRecordResponse{}, err
	}

	rec, err := s.markPaid(ctx, companyID, userID, req)
	if err != nil {
		return payroll.SalaryRecordResponse{}, err
	}
	return rec.ToResponse(), nil
}

// BulkMarkAsPaid processes items in order, each in its own transaction. A failed
// item is reported and never affects the others.
func (s *PayrollServiceImpl) BulkMarkAsPaid(ctx context.Context, req payroll.BulkMarkPaidRequest) (payroll.BulkResult, error) {
	companyID, userID, err := getActorFromContext(ctx)
	if err != nil {
		return payroll.BulkResult{}, err
	}

	if err := req.Validate(); err != nil {
		return payroll.BulkResult{}, err
	}

	result := payroll.BulkResult{
		Succeeded: []payroll.BulkSuccess{},
		Failed:    []payroll.BulkFailure{},
	}

	for i, item := range req.Items {
		if err := item.Validate(); err != nil {
			result.Failed = append(result.Failed, bulkFailure(i, item.RecordID, err))
			continue
		}

		rec, err := s.markPaid(ctx, companyID, userID, item.ToMarkPaidRequest(req.DefaultPaymentMethod))
		if err != nil {
			result.Failed = append(result.Failed, bulkFailure(i, item.RecordID, err))
			continue
		}

		result.Succeeded = append(result.Succeeded, payroll.BulkSuccess{
			Index:            i,
			RecordID:         rec.ID,
			EmployeeID:       rec.EmployeeID,
			NetSalary:        rec.NetSalary,
			PaidOn:           rec.PaidOn.Format(time.DateOnly),
			PaymentMethod:    rec.PaymentMethod,
			PaymentReference: *rec.PaymentReference,
			Status:           string(rec.Status),
		})
	}

	slog.Info("bulk payment processed",
		"company_id", companyID,
		"items", len(req.Items),
		"succeeded", len(result.Succeeded),
		"failed", len(result.Failed),
	)
	return result, nil
}

func (s *PayrollServiceImpl) markPaid(ctx context.Context, companyID, actor string, req payroll.MarkPaidRequest) (payroll.SalaryRecord, error) {
	var paid payroll.SalaryRecord

	err := s.tx.WithinTx(ctx, func(txCtx context.Context) error {
		existing, err := s.salaryRepo.GetByIDForUpdate(txCtx, req.ID, companyID)
		if err != nil {
			return err
		}

		updated, changes, err := payroll.ApplyPayment(existing, req.ToPaymentInput(actor, s.now()))
		if err != nil {
			return err
		}

		if err := s.salaryRepo.UpdateUnlessPaid(txCtx, updated); err != nil {
			return err
		}
		if err := s.changeRepo.Append(txCtx, updated.ID, changes); err != nil {
			return err
		}

		paid = updated
		return nil
	})
	if err != nil {
		return payroll.SalaryRecord{}, err
	}

	s.publishPaid(ctx, paid)
	return paid, nil
}

func bulkFailure(index int, recordID string, err error) payroll.BulkFailure {
	f := payroll.BulkFailure{Index: index, RecordID: recordID, Reason: err.Error()}

	var verrs validator.ValidationErrors
	switch {
	case errors.As(err, &verrs):
		f.Code = FailureValidation
		f.Details = verrs.ToMap()
	case errors.Is(err, payroll.ErrSalaryRecordNotFound):
		f.Code = FailureNotFound
	case errors.Is(err, payroll.ErrSalaryRecordAlreadyPaid), errors.Is(err, payroll.ErrPaymentExceedsOwed):
		f.Code = FailureConflict
	default:
		slog.Error("bulk payment item failed", "record_id", recordID, "error", err)
		f.Code = FailureInternal
		f.Reason = "internal error"
	}
	return f
}
