package payroll

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestWeekdaysInMonth(t *testing.T) {
	cases := []struct {
		name   string
		period Period
		want   int
	}{
		{"november 2025 starts on saturday", Period{Month: time.November, Year: 2025}, 20},
		{"january 2025 has 31 days", Period{Month: time.January, Year: 2025}, 23},
		{"february 2024 leap year", Period{Month: time.February, Year: 2024}, 21},
		{"february 2025 exactly four weeks", Period{Month: time.February, Year: 2025}, 20},
		{"september 2024 starts on sunday", Period{Month: time.September, Year: 2024}, 21},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			assert.Equal(t, c.want, WeekdaysInMonth(c.period))
		})
	}
}

func TestHolidayAdjustedWorkingDays(t *testing.T) {
	nov := Period{Month: time.November, Year: 2025}
	day := func(d int) time.Time { return time.Date(2025, time.November, d, 0, 0, 0, 0, time.UTC) }

	t.Run("no holidays", func(t *testing.T) {
		assert.Equal(t, 20, HolidayAdjustedWorkingDays(nov, nil))
	})

	t.Run("weekday holiday is subtracted", func(t *testing.T) {
		assert.Equal(t, 19, HolidayAdjustedWorkingDays(nov, []time.Time{day(5)}))
	})

	t.Run("weekend holiday is ignored", func(t *testing.T) {
		assert.Equal(t, 20, HolidayAdjustedWorkingDays(nov, []time.Time{day(2)}))
	})

	t.Run("duplicate holidays count once", func(t *testing.T) {
		assert.Equal(t, 19, HolidayAdjustedWorkingDays(nov, []time.Time{day(5), day(5).Add(3 * time.Hour)}))
	})

	t.Run("holidays outside the period are ignored", func(t *testing.T) {
		outside := time.Date(2025, time.December, 25, 0, 0, 0, 0, time.UTC)
		assert.Equal(t, 20, HolidayAdjustedWorkingDays(nov, []time.Time{outside}))
	})

	t.Run("holidays are compared by UTC date", func(t *testing.T) {
		// 2025-11-05 23:00 in UTC-5 is Thursday the 6th in UTC.
		est := time.FixedZone("EST", -5*3600)
		h := time.Date(2025, time.November, 5, 23, 0, 0, 0, est)
		assert.Equal(t, 19, HolidayAdjustedWorkingDays(nov, []time.Time{h}))
	})
}

func TestAggregateComponents(t *testing.T) {
	base := decimal.NewFromInt(5000)

	t.Run("empty", func(t *testing.T) {
		assert.True(t, AggregateComponents(base, nil).IsZero())
	})

	t.Run("fixed and percentage entries", func(t *testing.T) {
		entries := []Component{
			{Name: "transport", Amount: decimal.NewFromInt(200), Kind: ComponentKindFixed},
			{Name: "bonus", Amount: decimal.NewFromInt(10), Kind: ComponentKindPercentage},
		}
		assert.Equal(t, "700", AggregateComponents(base, entries).String())
	})

	t.Run("unknown kind is treated as fixed", func(t *testing.T) {
		entries := []Component{{Name: "misc", Amount: decimal.NewFromInt(50)}}
		assert.Equal(t, "50", AggregateComponents(base, entries).String())
	})

	t.Run("fractional percentage", func(t *testing.T) {
		entries := []Component{{Name: "tax", Amount: decimal.RequireFromString("2.5"), Kind: ComponentKindPercentage}}
		assert.Equal(t, "125", AggregateComponents(base, entries).String())
	})
}

func TestPaymentDate(t *testing.T) {
	got := PaymentDate(25, Period{Month: time.November, Year: 2025})
	assert.Equal(t, time.Date(2025, time.November, 25, 0, 0, 0, 0, time.UTC), got)
}

func TestAggregateComponentsMixedEntries(t *testing.T) {
	base := decimal.NewFromInt(50000)
	entries := []Component{
		{Name: "performance", Amount: decimal.NewFromInt(10), Kind: ComponentKindPercentage},
		{Name: "transport", Amount: decimal.NewFromInt(2000), Kind: ComponentKindFixed},
	}
	assert.Equal(t, "7000", AggregateComponents(base, entries).String())

	reversed := []Component{entries[1], entries[0]}
	assert.Equal(t, "7000", AggregateComponents(base, reversed).String())
}

func TestPaymentDateFirstOfMonth(t *testing.T) {
	got := PaymentDate(1, Period{Month: time.December, Year: 2025})
	assert.Equal(t, "2025-12-01", got.Format(time.DateOnly))
}
