package payroll

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/cmlabs-hris/hris-payroll-go/internal/domain/employee"
	"github.com/cmlabs-hris/hris-payroll-go/internal/domain/payroll"
	"github.com/go-chi/jwtauth/v5"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

const (
	testCompanyID = "0199a1b2-0000-7000-8000-000000000001"
	testUserID    = "0199a1b2-0000-7000-8000-0000000000aa"
)

var november2025 = payroll.Period{Month: time.November, Year: 2025}

// ---------- salary records + change log ----------

type memoryLedger struct {
	mu         sync.Mutex
	records    map[string]payroll.SalaryRecord
	changes    map[string][]payroll.FieldChange
	components map[string]payroll.ComponentSet
	failOn     func(op string, rec payroll.SalaryRecord) error
	creates    int
	updates    int
}

func newMemoryLedger() *memoryLedger {
	return &memoryLedger{
		records:    map[string]payroll.SalaryRecord{},
		changes:    map[string][]payroll.FieldChange{},
		components: map[string]payroll.ComponentSet{},
	}
}

type ledgerState struct {
	records    map[string]payroll.SalaryRecord
	changes    map[string][]payroll.FieldChange
	components map[string]payroll.ComponentSet
}

func (m *memoryLedger) snapshot() ledgerState {
	st := ledgerState{
		records:    make(map[string]payroll.SalaryRecord, len(m.records)),
		changes:    make(map[string][]payroll.FieldChange, len(m.changes)),
		components: make(map[string]payroll.ComponentSet, len(m.components)),
	}
	for k, v := range m.records {
		st.records[k] = v
	}
	for k, v := range m.changes {
		st.changes[k] = append([]payroll.FieldChange(nil), v...)
	}
	for k, v := range m.components {
		st.components[k] = v
	}
	return st
}

func (m *memoryLedger) restore(st ledgerState) {
	m.records, m.changes, m.components = st.records, st.changes, st.components
}

func (m *memoryLedger) GetByID(_ context.Context, id string, companyID string) (payroll.SalaryRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	rec, ok := m.records[id]
	if !ok || rec.CompanyID != companyID {
		return payroll.SalaryRecord{}, payroll.ErrSalaryRecordNotFound
	}
	return rec, nil
}

func (m *memoryLedger) GetByIDForUpdate(ctx context.Context, id string, companyID string) (payroll.SalaryRecord, error) {
	return m.GetByID(ctx, id, companyID)
}

func (m *memoryLedger) GetByEmployeePeriodForUpdate(_ context.Context, companyID, employeeID string, p payroll.Period) (payroll.SalaryRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, rec := range m.records {
		if rec.CompanyID == companyID && rec.EmployeeID == employeeID && rec.Period == p {
			return rec, nil
		}
	}
	return payroll.SalaryRecord{}, payroll.ErrSalaryRecordNotFound
}

func (m *memoryLedger) Create(_ context.Context, rec payroll.SalaryRecord) (payroll.SalaryRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failOn != nil {
		if err := m.failOn("create", rec); err != nil {
			return payroll.SalaryRecord{}, err
		}
	}
	for _, existing := range m.records {
		if existing.CompanyID == rec.CompanyID && existing.EmployeeID == rec.EmployeeID && existing.Period == rec.Period {
			return payroll.SalaryRecord{}, payroll.ErrSalaryRecordAlreadyExists
		}
	}
	m.records[rec.ID] = rec
	m.creates++
	return rec, nil
}

func (m *memoryLedger) UpdateUnlessPaid(_ context.Context, rec payroll.SalaryRecord) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failOn != nil {
		if err := m.failOn("update", rec); err != nil {
			return err
		}
	}
	existing, ok := m.records[rec.ID]
	if !ok || existing.CompanyID != rec.CompanyID {
		return payroll.ErrSalaryRecordNotFound
	}
	if existing.Status == payroll.SalaryStatusPaid {
		return payroll.ErrSalaryRecordAlreadyPaid
	}
	m.records[rec.ID] = rec
	m.updates++
	return nil
}

func (m *memoryLedger) matching(companyID string, f payroll.SalaryFilter) []payroll.SalaryRecord {
	var out []payroll.SalaryRecord
	for _, rec := range m.records {
		if rec.CompanyID != companyID {
			continue
		}
		if f.Period != nil && rec.Period != *f.Period {
			continue
		}
		if f.Status != nil && rec.Status != *f.Status {
			continue
		}
		if f.UnpaidOnly && rec.Status == payroll.SalaryStatusPaid {
			continue
		}
		if f.EmployeeID != nil && rec.EmployeeID != *f.EmployeeID {
			continue
		}
		out = append(out, rec)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].EmployeeName < out[j].EmployeeName })
	return out
}

func (m *memoryLedger) List(_ context.Context, companyID string, f payroll.SalaryFilter) ([]payroll.SalaryRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.matching(companyID, f), nil
}

func (m *memoryLedger) Totals(_ context.Context, companyID string, f payroll.SalaryFilter) (payroll.SalaryTotals, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	t := payroll.SalaryTotals{TotalNetSalary: decimal.Zero, PaidNetSalary: decimal.Zero}
	for _, rec := range m.matching(companyID, f) {
		t.RecordCount++
		t.TotalNetSalary = t.TotalNetSalary.Add(rec.NetSalary)
		switch rec.Status {
		case payroll.SalaryStatusPending:
			t.PendingCount++
		case payroll.SalaryStatusProcessed:
			t.ProcessedCount++
		case payroll.SalaryStatusPaid:
			t.PaidCount++
			t.PaidNetSalary = t.PaidNetSalary.Add(rec.NetSalary)
		}
	}
	return t, nil
}

func (m *memoryLedger) Append(_ context.Context, recordID string, changes []payroll.FieldChange) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.changes[recordID] = append(m.changes[recordID], changes...)
	return nil
}

func (m *memoryLedger) ListByRecordID(_ context.Context, recordID string) ([]payroll.FieldChange, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]payroll.FieldChange(nil), m.changes[recordID]...), nil
}

func (m *memoryLedger) Replace(_ context.Context, recordID string, set payroll.ComponentSet) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	stored := m.components[recordID]
	if set.Allowances != nil {
		stored.Allowances = set.Allowances
	}
	if set.Deductions != nil {
		stored.Deductions = set.Deductions
	}
	if set.Reimbursements != nil {
		stored.Reimbursements = set.Reimbursements
	}
	m.components[recordID] = stored
	return nil
}

func (m *memoryLedger) GetByRecordID(_ context.Context, recordID string) (payroll.ComponentSet, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.components[recordID], nil
}

func (m *memoryLedger) onlyRecord(t *testing.T, employeeID string) payroll.SalaryRecord {
	t.Helper()
	rec, err := m.GetByEmployeePeriodForUpdate(context.Background(), testCompanyID, employeeID, november2025)
	require.NoError(t, err)
	return rec
}

// ---------- transactor ----------

// memoryTransactor rolls the ledger back when fn fails.
type memoryTransactor struct {
	ledger *memoryLedger
}

func (tx memoryTransactor) WithinTx(ctx context.Context, fn func(ctx context.Context) error) error {
	tx.ledger.mu.Lock()
	st := tx.ledger.snapshot()
	tx.ledger.mu.Unlock()

	if err := fn(ctx); err != nil {
		tx.ledger.mu.Lock()
		tx.ledger.restore(st)
		tx.ledger.mu.Unlock()
		return err
	}
	return nil
}

// ---------- employees ----------

type memoryEmployees struct {
	employees []employee.Employee
	err       error
}

func (m *memoryEmployees) GetByID(_ context.Context, id string, companyID string) (employee.Employee, error) {
	for _, e := range m.employees {
		if e.ID == id && e.CompanyID == companyID {
			return e, nil
		}
	}
	return employee.Employee{}, employee.ErrEmployeeNotFound
}

func (m *memoryEmployees) GetActiveByCompanyID(_ context.Context, companyID string) ([]employee.Employee, error) {
	if m.err != nil {
		return nil, m.err
	}
	var out []employee.Employee
	for _, e := range m.employees {
		if e.CompanyID == companyID && e.EmploymentStatus == employee.EmploymentStatusActive {
			out = append(out, e)
		}
	}
	return out, nil
}

func (m *memoryEmployees) ListCompanyIDsWithActiveEmployees(_ context.Context) ([]string, error) {
	seen := map[string]bool{}
	var out []string
	for _, e := range m.employees {
		if e.EmploymentStatus == employee.EmploymentStatusActive && !seen[e.CompanyID] {
			seen[e.CompanyID] = true
			out = append(out, e.CompanyID)
		}
	}
	return out, nil
}

func newEmployee(id, name string, salary int64, payDay int) employee.Employee {
	e := employee.Employee{
		ID:               id,
		CompanyID:        testCompanyID,
		FullName:         name,
		PayDay:           payDay,
		EmploymentStatus: employee.EmploymentStatusActive,
	}
	if salary > 0 {
		d := decimal.NewFromInt(salary)
		e.BaseSalary = &d
	}
	return e
}

// ---------- working days ----------

type memoryWorkingDays struct {
	mu     sync.Mutex
	values map[payroll.WorkingDaysKey]int
	getErr error
	putErr error
	gets   int
	puts   int
}

func newMemoryWorkingDays() *memoryWorkingDays {
	return &memoryWorkingDays{values: map[payroll.WorkingDaysKey]int{}}
}

func (m *memoryWorkingDays) Get(_ context.Context, key payroll.WorkingDaysKey) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.gets++
	if m.getErr != nil {
		return 0, m.getErr
	}
	days, ok := m.values[key]
	if !ok {
		return 0, payroll.ErrWorkingDaysNotCached
	}
	return days, nil
}

func (m *memoryWorkingDays) Put(_ context.Context, key payroll.WorkingDaysKey, days int) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.puts++
	if m.putErr != nil {
		return m.putErr
	}
	m.values[key] = days
	return nil
}

func (m *memoryWorkingDays) Delete(_ context.Context, key payroll.WorkingDaysKey) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.values, key)
	return nil
}

type memoryHolidays struct {
	mu    sync.Mutex
	days  []time.Time
	err   error
	calls int
}

func (m *memoryHolidays) ListHolidays(_ context.Context, _ string, from, to time.Time) ([]time.Time, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls++
	if m.err != nil {
		return nil, m.err
	}
	var out []time.Time
	for _, d := range m.days {
		if !d.Before(from) && !d.After(to) {
			out = append(out, d)
		}
	}
	return out, nil
}

// ---------- events ----------

type recordingPublisher struct {
	mu        sync.Mutex
	published []payroll.SalaryRecord
	err       error
}

func (p *recordingPublisher) PublishSalaryPaid(_ context.Context, rec payroll.SalaryRecord) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.err != nil {
		return p.err
	}
	p.published = append(p.published, rec)
	return nil
}

// ---------- harness ----------

type harness struct {
	svc       *PayrollServiceImpl
	ledger    *memoryLedger
	employees *memoryEmployees
	store     *memoryWorkingDays
	holidays  *memoryHolidays
	publisher *recordingPublisher
	now       time.Time
}

func newHarness(t *testing.T, employees ...employee.Employee) *harness {
	t.Helper()
	h := &harness{
		ledger:    newMemoryLedger(),
		employees: &memoryEmployees{employees: employees},
		store:     newMemoryWorkingDays(),
		holidays: &memoryHolidays{days: []time.Time{
			time.Date(2025, time.November, 5, 0, 0, 0, 0, time.UTC), // Wednesday
			time.Date(2025, time.November, 2, 0, 0, 0, 0, time.UTC), // Sunday
		}},
		publisher: &recordingPublisher{},
		now:       time.Date(2025, time.November, 1, 0, 0, 0, 0, time.UTC),
	}

	calc := NewWorkingDaysCalculator(h.store, nil, h.holidays)
	h.svc = NewPayrollService(memoryTransactor{ledger: h.ledger}, h.ledger, h.ledger, h.ledger, h.employees, calc, h.publisher)
	h.svc.now = func() time.Time { return h.now }

	var seq int
	h.svc.newID = func() string {
		seq++
		return fmt.Sprintf("rec-%d", seq)
	}
	return h
}

var errBoom = errors.New("boom")

func authContext(t *testing.T, claims map[string]interface{}) context.Context {
	t.Helper()
	auth := jwtauth.New("HS256", []byte("test-secret"), nil)
	token, _, err := auth.Encode(claims)
	require.NoError(t, err)
	return jwtauth.NewContext(context.Background(), token, nil)
}

func userContext(t *testing.T) context.Context {
	return authContext(t, map[string]interface{}{"company_id": testCompanyID, "user_id": testUserID})
}

func dec(v string) *decimal.Decimal {
	d := decimal.RequireFromString(v)
	return &d
}

func strp(s string) *string {
	return &s
}
