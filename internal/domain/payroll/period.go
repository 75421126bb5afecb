package payroll

import (
	"fmt"
	"strconv"
	"time"

	"github.com/cmlabs-hris/hris-payroll-go/internal/pkg/validator"
)

// Period identifies one payroll cycle.
type Period struct {
	Month time.Month
	Year  int
}

// ParsePeriodCode decodes a compact "MMYYYY" code, e.g. "112025" for November 2025.
func ParsePeriodCode(code string) (Period, error) {
	if len(code) != 6 || !validator.IsNumeric(code) {
		return Period{}, validator.ValidationErrors{
			{Field: "period", Message: "must be a 6 digit MMYYYY code"},
		}
	}

	month, _ := strconv.Atoi(code[:2])
	year, _ := strconv.Atoi(code[2:])
	if month < 1 || month > 12 {
		return Period{}, validator.ValidationErrors{
			{Field: "period", Message: "month must be between 01 and 12"},
		}
	}

	return Period{Month: time.Month(month), Year: year}, nil
}

// ParseMonthName is the inverse of Period.MonthName.
func ParseMonthName(name string, year int) (Period, error) {
	for m := time.January; m <= time.December; m++ {
		if m.String() == name {
			return Period{Month: m, Year: year}, nil
		}
	}
	return Period{}, fmt.Errorf("%w: unknown month name %q", ErrInvalidPeriod, name)
}

// PeriodOf returns the period t falls in, using the UTC calendar.
func PeriodOf(t time.Time) Period {
	u := t.UTC()
	return Period{Month: u.Month(), Year: u.Year()}
}

func (p Period) MonthName() string {
	return p.Month.String()
}

func (p Period) Code() string {
	return fmt.Sprintf("%02d%04d", int(p.Month), p.Year)
}

func (p Period) String() string {
	return fmt.Sprintf("%s %d", p.MonthName(), p.Year)
}

// FirstDay returns midnight UTC of the first day of the period.
func (p Period) FirstDay() time.Time {
	return time.Date(p.Year, p.Month, 1, 0, 0, 0, 0, time.UTC)
}

// DaysIn returns the number of calendar days in the period.
func (p Period) DaysIn() int {
	return p.FirstDay().AddDate(0, 1, -1).Day()
}

func (p Period) Valid() bool {
	return p.Month >= time.January && p.Month <= time.December && p.Year > 0
}
