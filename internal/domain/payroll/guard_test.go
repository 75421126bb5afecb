package payroll

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	testPeriod = Period{Month: time.November, Year: 2025}
	testNow    = time.Date(2025, time.November, 1, 0, 0, 0, 0, time.UTC)
)

func dec(s string) *decimal.Decimal {
	d := decimal.RequireFromString(s)
	return &d
}

func baseInput() RecalcInput {
	return RecalcInput{
		EmployeeName:       "Alice",
		BaseSalary:         decimal.NewFromInt(5000),
		PayDay:             25,
		DefaultWorkingDays: 20,
		Allowances:         dec("300"),
		Deductions:         dec("100"),
		Reimbursements:     dec("50"),
	}
}

func TestNewSalaryRecord(t *testing.T) {
	rec := NewSalaryRecord("rec-1", "co-1", "emp-1", testPeriod, baseInput(), "system", testNow)

	assert.Equal(t, SalaryStatusPending, rec.Status)
	assert.Equal(t, "5300", rec.GrossSalary.String())
	assert.Equal(t, "5250", rec.NetSalary.String())
	assert.Equal(t, time.Date(2025, time.November, 25, 0, 0, 0, 0, time.UTC), rec.PaymentDate)
	assert.Nil(t, rec.ActualWorkingDays)
	assert.Nil(t, rec.PaidOn)
}

func TestApplyRecalculation(t *testing.T) {
	existing := NewSalaryRecord("rec-1", "co-1", "emp-1", testPeriod, baseInput(), "system", testNow)
	later := testNow.Add(24 * time.Hour)

	t.Run("identical inputs produce no changes", func(t *testing.T) {
		updated, changes, err := ApplyRecalculation(existing, baseInput(), "system", later)
		require.NoError(t, err)
		assert.Empty(t, changes)
		assert.Equal(t, existing.UpdatedAt, updated.UpdatedAt)
	})

	t.Run("omitted components keep stored values", func(t *testing.T) {
		in := baseInput()
		in.BaseSalary = decimal.NewFromInt(6000)
		in.Allowances, in.Deductions, in.Reimbursements = nil, nil, nil

		updated, changes, err := ApplyRecalculation(existing, in, "hr-1", later)
		require.NoError(t, err)
		assert.Equal(t, "300", updated.Allowances.String())
		assert.Equal(t, "6300", updated.GrossSalary.String())
		assert.Equal(t, "6250", updated.NetSalary.String())
		assert.Equal(t, later, updated.UpdatedAt)

		var fields []TrackedField
		for _, c := range changes {
			fields = append(fields, c.Field)
			assert.Equal(t, "hr-1", c.ChangedBy)
			assert.Equal(t, later, c.ChangedAt)
		}
		assert.Equal(t, []TrackedField{FieldBaseSalary, FieldGrossSalary, FieldNetSalary}, fields)
		assert.Equal(t, "5000", *changes[0].OldValue)
		assert.Equal(t, "6000", *changes[0].NewValue)
	})

	t.Run("pay day change moves the payment date", func(t *testing.T) {
		in := baseInput()
		in.PayDay = 10
		updated, changes, err := ApplyRecalculation(existing, in, "system", later)
		require.NoError(t, err)
		assert.Equal(t, 10, updated.PaymentDate.Day())
		assert.Len(t, changes, 2)
	})

	t.Run("paid records are refused", func(t *testing.T) {
		paid := existing
		paid.Status = SalaryStatusPaid
		in := baseInput()
		in.BaseSalary = decimal.NewFromInt(9000)

		updated, changes, err := ApplyRecalculation(paid, in, "system", later)
		assert.ErrorIs(t, err, ErrSalaryRecordAlreadyPaid)
		assert.Nil(t, changes)
		assert.Equal(t, "5000", updated.BaseSalary.String())
	})
}

func TestApplyPayment(t *testing.T) {
	existing := NewSalaryRecord("rec-1", "co-1", "emp-1", testPeriod, baseInput(), "system", testNow)
	paidAt := time.Date(2025, time.November, 25, 9, 0, 0, 0, time.UTC)

	t.Run("defaults paid_on and actual working days", func(t *testing.T) {
		ref := "TRX-1"
		updated, changes, err := ApplyPayment(existing, PaymentInput{PaymentReference: &ref, PaidBy: "hr-1", PaidAt: paidAt})
		require.NoError(t, err)
		assert.Equal(t, SalaryStatusPaid, updated.Status)
		require.NotNil(t, updated.PaidOn)
		assert.Equal(t, existing.PaymentDate, *updated.PaidOn)
		require.NotNil(t, updated.ActualWorkingDays)
		assert.Equal(t, 20, *updated.ActualWorkingDays)
		assert.Equal(t, "hr-1", *updated.PaidBy)

		var fields []TrackedField
		for _, c := range changes {
			fields = append(fields, c.Field)
		}
		assert.Equal(t, []TrackedField{FieldActualWorkingDays, FieldStatus, FieldPaidOn, FieldPaymentReference}, fields)
	})

	t.Run("deduction override recomputes net", func(t *testing.T) {
		updated, _, err := ApplyPayment(existing, PaymentInput{Deductions: dec("250"), PaidBy: "hr-1", PaidAt: paidAt})
		require.NoError(t, err)
		assert.Equal(t, "5100", updated.NetSalary.String())
	})

	t.Run("net override up to the amount owed", func(t *testing.T) {
		updated, _, err := ApplyPayment(existing, PaymentInput{NetSalary: dec("5000"), PaidBy: "hr-1", PaidAt: paidAt})
		require.NoError(t, err)
		assert.Equal(t, "5000", updated.NetSalary.String())
	})

	t.Run("net override above the amount owed is rejected", func(t *testing.T) {
		_, _, err := ApplyPayment(existing, PaymentInput{NetSalary: dec("5250.01"), PaidBy: "hr-1", PaidAt: paidAt})
		assert.ErrorIs(t, err, ErrPaymentExceedsOwed)
	})

	t.Run("second payment is rejected", func(t *testing.T) {
		paid, _, err := ApplyPayment(existing, PaymentInput{PaidBy: "hr-1", PaidAt: paidAt})
		require.NoError(t, err)

		again, changes, err := ApplyPayment(paid, PaymentInput{NetSalary: dec("1"), PaidBy: "hr-2", PaidAt: paidAt.Add(time.Hour)})
		assert.ErrorIs(t, err, ErrSalaryRecordAlreadyPaid)
		assert.Nil(t, changes)
		assert.Equal(t, paid, again)
	})
}
