package employee

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestValidatePayDay(t *testing.T) {
	for _, d := range []int{1, 15, 28} {
		assert.NoError(t, ValidatePayDay(d), "day %d", d)
	}
	for _, d := range []int{0, -1, 29, 31} {
		assert.ErrorIs(t, ValidatePayDay(d), ErrInvalidPayDay, "day %d", d)
	}
}

func TestEffectivePayDay(t *testing.T) {
	assert.Equal(t, 25, Employee{PayDay: 25}.EffectivePayDay())
	assert.Equal(t, DefaultPayDay, Employee{}.EffectivePayDay())
	assert.Equal(t, DefaultPayDay, Employee{PayDay: 31}.EffectivePayDay())
}

func TestPayable(t *testing.T) {
	salary := decimal.NewFromInt(5000)
	assert.True(t, Employee{EmploymentStatus: EmploymentStatusActive, BaseSalary: &salary}.Payable())
	assert.False(t, Employee{EmploymentStatus: EmploymentStatusActive}.Payable())
	assert.False(t, Employee{EmploymentStatus: EmploymentStatusResigned, BaseSalary: &salary}.Payable())
}
