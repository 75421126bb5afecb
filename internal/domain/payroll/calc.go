package payroll

import (
	"time"

	"github.com/shopspring/decimal"
)

var hundred = decimal.NewFromInt(100)

// AggregateComponents reduces entries to a single total. Percentage entries are
// taken against base; every entry is evaluated independently.
func AggregateComponents(base decimal.Decimal, entries []Component) decimal.Decimal {
	total := decimal.Zero
	for _, e := range entries {
		switch e.Kind {
		case ComponentKindPercentage:
			total = total.Add(base.Mul(e.Amount).Div(hundred))
		default:
			total = total.Add(e.Amount)
		}
	}
	return total
}

// WeekdaysInMonth counts Monday to Friday days in the period.
func WeekdaysInMonth(p Period) int {
	totalDays := p.DaysIn()
	firstWeekday := int(p.FirstDay().Weekday())

	weekdays := (totalDays / 7) * 5
	for i := 0; i < totalDays%7; i++ {
		if isWeekday(time.Weekday((firstWeekday + i) % 7)) {
			weekdays++
		}
	}
	return weekdays
}

// HolidayAdjustedWorkingDays subtracts holidays that fall on a weekday inside the
// period from the weekday count. Holidays are compared by UTC calendar date.
func HolidayAdjustedWorkingDays(p Period, holidays []time.Time) int {
	days := WeekdaysInMonth(p)

	seen := make(map[int]struct{}, len(holidays))
	for _, h := range holidays {
		u := h.UTC()
		if u.Year() != p.Year || u.Month() != p.Month {
			continue
		}
		if !isWeekday(u.Weekday()) {
			continue
		}
		if _, dup := seen[u.Day()]; dup {
			continue
		}
		seen[u.Day()] = struct{}{}
		days--
	}
	return days
}

// PaymentDate returns the scheduled pay date, which falls in the same month as the period.
func PaymentDate(payDay int, p Period) time.Time {
	return time.Date(p.Year, p.Month, payDay, 0, 0, 0, 0, time.UTC)
}

func isWeekday(d time.Weekday) bool {
	return d >= time.Monday && d <= time.Friday
}
