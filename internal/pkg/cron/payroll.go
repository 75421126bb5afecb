package cron

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/cmlabs-hris/hris-payroll-go/internal/domain/payroll"
)

const (
	JobSalaryInitialRun      = "salary_initial_run"
	JobSalaryMidMonthRecalc  = "salary_mid_month_recalc"
	JobSalaryFinalRecalc     = "salary_final_recalc"
	salaryInitialRunSpec     = "0 0 1 * *"
	salaryMidMonthRecalcSpec = "0 0 15 * *"
	salaryFinalRecalcSpec    = "0 0 27 * *"
)

// PeriodProcessor runs the payroll pipeline for one tenant.
type PeriodProcessor interface {
	ProcessPeriod(ctx context.Context, req payroll.RunRequest) (payroll.RunResult, error)
}

// TenantLister lists the companies that have employees to pay.
type TenantLister interface {
	ListCompanyIDsWithActiveEmployees(ctx context.Context) ([]string, error)
}

// PayrollJobs contains the scheduled salary runs
type PayrollJobs struct {
	processor PeriodProcessor
	tenants   TenantLister
}

// NewPayrollJobs creates a new PayrollJobs instance
func NewPayrollJobs(processor PeriodProcessor, tenants TenantLister) *PayrollJobs {
	return &PayrollJobs{
		processor: processor,
		tenants:   tenants,
	}
}

// RegisterJobs registers all payroll cron jobs
func (j *PayrollJobs) RegisterJobs(scheduler *Scheduler) error {
	return errors.Join(
		scheduler.AddJob(JobSalaryInitialRun, salaryInitialRunSpec, j.runFor(payroll.RunModeCreate)),
		scheduler.AddJob(JobSalaryMidMonthRecalc, salaryMidMonthRecalcSpec, j.runFor(payroll.RunModeRecalculate)),
		scheduler.AddJob(JobSalaryFinalRecalc, salaryFinalRecalcSpec, j.runFor(payroll.RunModeRecalculate)),
	)
}

func (j *PayrollJobs) runFor(mode payroll.RunMode) func(ctx context.Context, now time.Time) error {
	return func(ctx context.Context, now time.Time) error {
		return j.RunAllTenants(ctx, mode, now)
	}
}

// RunAllTenants runs the pipeline for the period containing now, once per tenant.
// A failing tenant does not stop the others.
func (j *PayrollJobs) RunAllTenants(ctx context.Context, mode payroll.RunMode, now time.Time) error {
	period := payroll.PeriodOf(now)
	slog.Info("Cron: Starting salary run", "mode", mode, "period", period.Code())

	companyIDs, err := j.tenants.ListCompanyIDsWithActiveEmployees(ctx)
	if err != nil {
		return fmt.Errorf("list tenants: %w", err)
	}

	var errs []error
	for _, companyID := range companyIDs {
		result, err := j.processor.ProcessPeriod(ctx, payroll.RunRequest{
			CompanyID: companyID,
			Period:    period,
			Mode:      mode,
			Actor:     payroll.SystemActor,
		})
		if err != nil {
			slog.Error("Cron: Salary run failed for company", "company_id", companyID, "period", period.Code(), "error", err)
			errs = append(errs, fmt.Errorf("company %s: %w", companyID, err))
			continue
		}
		slog.Info("Cron: Salary run completed for company",
			"company_id", companyID,
			"period", result.Period,
			"processed", result.Processed,
			"skipped_paid", result.SkippedPaid,
			"skipped_missing", result.SkippedMissing,
			"skipped_ineligible", result.SkippedIneligible,
		)
	}

	slog.Info("Cron: Salary run finished", "mode", mode, "period", period.Code(), "companies", len(companyIDs), "failed", len(errs))
	return errors.Join(errs...)
}
