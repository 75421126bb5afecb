package employee

import "context"

// EmployeeRepository is the read-only employee directory the payroll run consumes.
type EmployeeRepository interface {
	GetByID(ctx context.Context, id string, companyID string) (Employee, error)
	GetActiveByCompanyID(ctx context.Context, companyID string) ([]Employee, error)
	ListCompanyIDsWithActiveEmployees(ctx context.Context) ([]string, error)
}
