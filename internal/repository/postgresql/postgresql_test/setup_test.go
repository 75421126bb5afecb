package postgresql_test

import (
	"context"
	"fmt"
	"os"
	"testing"
	"time"

	"github.com/cmlabs-hris/hris-payroll-go/internal/pkg/database"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

const migrationPath = "../../../../migrations/0001_payroll.sql"

// TestDatabaseSetup holds the connection used by repository integration tests
type TestDatabaseSetup struct {
	DB *database.DB
}

// NewTestDatabase connects to TEST_DATABASE_URL and applies the schema.
// Tests are skipped when the variable is unset.
func NewTestDatabase(t *testing.T) *TestDatabaseSetup {
	t.Helper()

	dsn := os.Getenv("TEST_DATABASE_URL")
	if dsn == "" {
		t.Skip("TEST_DATABASE_URL not set")
	}

	ctx := context.Background()
	db, err := database.NewPostgreSQLDB(ctx, dsn, 5, 1)
	require.NoError(t, err)

	schema, err := os.ReadFile(migrationPath)
	require.NoError(t, err)
	_, err = db.Exec(ctx, string(schema))
	require.NoError(t, err)

	setup := &TestDatabaseSetup{DB: db}
	require.NoError(t, setup.TruncateAllTables(ctx))
	t.Cleanup(setup.Close)
	return setup
}

// TruncateAllTables removes every row written by the payroll tables
func (s *TestDatabaseSetup) TruncateAllTables(ctx context.Context) error {
	tx, err := s.DB.BeginTx(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	tables := []string{
		"salary_record_changes",
		"salary_record_components",
		"salary_records",
		"working_days_cache",
		"company_holidays",
		"employees",
	}

	for _, table := range tables {
		_, err := tx.Exec(ctx, fmt.Sprintf("TRUNCATE TABLE %s CASCADE", table))
		if err != nil {
			return fmt.Errorf("failed to truncate table %s: %w", table, err)
		}
	}

	return tx.Commit(ctx)
}

func (s *TestDatabaseSetup) Close() {
	s.DB.Close()
}

func (s *TestDatabaseSetup) CreateEmployee(t *testing.T, companyID, name string, baseSalary *string, payDay int) string {
	t.Helper()
	id := uuid.Must(uuid.NewV7()).String()
	_, err := s.DB.Exec(context.Background(), `
		INSERT INTO employees (id, company_id, full_name, base_salary, salary_payment_date, employment_status)
		VALUES ($1, $2, $3, $4, NULLIF($5, 0), 'active')
	`, id, companyID, name, baseSalary, payDay)
	require.NoError(t, err)
	return id
}

func (s *TestDatabaseSetup) CreateHoliday(t *testing.T, companyID string, day time.Time) {
	t.Helper()
	_, err := s.DB.Exec(context.Background(), `
		INSERT INTO company_holidays (id, company_id, holiday_date, name)
		VALUES ($1, $2, $3, 'Holiday')
	`, uuid.Must(uuid.NewV7()).String(), companyID, day.Format(time.DateOnly))
	require.NoError(t, err)
}

func newID() string {
	return uuid.Must(uuid.NewV7()).String()
}
