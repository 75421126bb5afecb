package payroll

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/cmlabs-hris/hris-payroll-go/internal/domain/employee"
	"github.com/cmlabs-hris/hris-payroll-go/internal/domain/payroll"
	"github.com/cmlabs-hris/hris-payroll-go/internal/pkg/database"
	"github.com/go-chi/jwtauth/v5"
	"github.com/google/uuid"
)

const publishTimeout = 5 * time.Second

type PayrollServiceImpl struct {
	tx            database.Transactor
	salaryRepo    payroll.SalaryRepository
	changeRepo    payroll.ChangeLogRepository
	componentRepo payroll.ComponentRepository
	employeeRepo  employee.EmployeeRepository
	workingDays   *WorkingDaysCalculator
	publisher     payroll.EventPublisher

	now   func() time.Time
	newID func() string
}

func NewPayrollService(
	tx database.Transactor,
	salaryRepo payroll.SalaryRepository,
	changeRepo payroll.ChangeLogRepository,
	componentRepo payroll.ComponentRepository,
	employeeRepo employee.EmployeeRepository,
	workingDays *WorkingDaysCalculator,
	publisher payroll.EventPublisher,
) *PayrollServiceImpl {
	return &PayrollServiceImpl{
		tx:            tx,
		salaryRepo:    salaryRepo,
		changeRepo:    changeRepo,
		componentRepo: componentRepo,
		employeeRepo:  employeeRepo,
		workingDays:   workingDays,
		publisher:     publisher,
		now:           func() time.Time { return time.Now().UTC() },
		newID:         func() string { return uuid.Must(uuid.NewV7()).String() },
	}
}

var _ payroll.PayrollService = (*PayrollServiceImpl)(nil)

// Helper to get company_id and user_id from JWT context
func getClaimsFromContext(ctx context.Context) (companyID, userID string, err error) {
	_, claims, err := jwtauth.FromContext(ctx)
	if err != nil {
		return "", "", fmt.Errorf("failed to extract claims from context: %w", err)
	}

	companyID, ok := claims["company_id"].(string)
	if !ok || companyID == "" {
		return "", "", payroll.ErrCompanyRequired
	}

	userID, _ = claims["user_id"].(string)

	return companyID, userID, nil
}

// getActorFromContext is getClaimsFromContext for writes, which are always attributed to a user.
func getActorFromContext(ctx context.Context) (companyID, userID string, err error) {
	companyID, userID, err = getClaimsFromContext(ctx)
	if err != nil {
		return "", "", err
	}
	if userID == "" {
		return "", "", payroll.ErrActorRequired
	}
	return companyID, userID, nil
}

// saveComponents stores the named lines behind the totals of every supplied group.
func (s *PayrollServiceImpl) saveComponents(ctx context.Context, recordID string, set payroll.ComponentSet) error {
	if !set.Supplied() {
		return nil
	}
	return s.componentRepo.Replace(ctx, recordID, set)
}

// publishPaid runs after commit; a failed publish never undoes the payment.
func (s *PayrollServiceImpl) publishPaid(ctx context.Context, rec payroll.SalaryRecord) {
	if s.publisher == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), publishTimeout)
	defer cancel()

	if err := s.publisher.PublishSalaryPaid(ctx, rec); err != nil {
		slog.Warn("failed to publish salary paid event", "record_id", rec.ID, "company_id", rec.CompanyID, "error", err)
	}
}
