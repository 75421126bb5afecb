package payroll

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/cmlabs-hris/hris-payroll-go/internal/domain/payroll"
	"golang.org/x/sync/singleflight"
)

// WorkingDaysCalculator resolves holiday-adjusted working days per tenant and period.
// Lookups go through an optional front cache, then the authoritative store, and only
// compute on a miss in both.
type WorkingDaysCalculator struct {
	store    payroll.WorkingDaysStore
	front    payroll.WorkingDaysStore
	holidays payroll.HolidayCalendar
	group    singleflight.Group
}

// NewWorkingDaysCalculator accepts a nil front when no cache sits ahead of the store.
func NewWorkingDaysCalculator(store, front payroll.WorkingDaysStore, holidays payroll.HolidayCalendar) *WorkingDaysCalculator {
	return &WorkingDaysCalculator{store: store, front: front, holidays: holidays}
}

// DefaultWorkingDays never fails: cache errors are logged and a failed holiday
// lookup falls back to the plain weekday count.
func (c *WorkingDaysCalculator) DefaultWorkingDays(ctx context.Context, companyID string, p payroll.Period) int {
	key := payroll.KeyFor(companyID, p)

	if days, ok := c.lookup(ctx, c.front, key, "front"); ok {
		return days
	}
	if days, ok := c.lookup(ctx, c.store, key, "store"); ok {
		c.put(ctx, c.front, key, days, "front")
		return days
	}

	flightKey := fmt.Sprintf("%s:%d:%d", key.CompanyID, key.Year, int(key.Month))
	v, _, _ := c.group.Do(flightKey, func() (interface{}, error) {
		return c.compute(ctx, key), nil
	})
	return v.(int)
}

func (c *WorkingDaysCalculator) compute(ctx context.Context, key payroll.WorkingDaysKey) int {
	p := key.Period()
	from := p.FirstDay()
	to := from.AddDate(0, 1, -1)

	holidays, err := c.holidays.ListHolidays(ctx, key.CompanyID, from, to)
	if err != nil {
		slog.Warn("holiday lookup failed, using weekday count",
			"company_id", key.CompanyID, "period", p.Code(), "error", err)
		return payroll.WeekdaysInMonth(p)
	}

	days := payroll.HolidayAdjustedWorkingDays(p, holidays)
	c.put(ctx, c.store, key, days, "store")
	c.put(ctx, c.front, key, days, "front")
	return days
}

// Clear removes the cached value from every layer so the next run recomputes it.
func (c *WorkingDaysCalculator) Clear(ctx context.Context, companyID string, p payroll.Period) error {
	key := payroll.KeyFor(companyID, p)

	var errs []error
	if err := c.store.Delete(ctx, key); err != nil {
		errs = append(errs, err)
	}
	if c.front != nil {
		if err := c.front.Delete(ctx, key); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func (c *WorkingDaysCalculator) lookup(ctx context.Context, layer payroll.WorkingDaysStore, key payroll.WorkingDaysKey, name string) (int, bool) {
	if layer == nil {
		return 0, false
	}
	days, err := layer.Get(ctx, key)
	if err != nil {
		if !errors.Is(err, payroll.ErrWorkingDaysNotCached) {
			slog.Warn("working days cache read failed", "layer", name, "company_id", key.CompanyID, "error", err)
		}
		return 0, false
	}
	return days, true
}

func (c *WorkingDaysCalculator) put(ctx context.Context, layer payroll.WorkingDaysStore, key payroll.WorkingDaysKey, days int, name string) {
	if layer == nil {
		return
	}
	if err := layer.Put(ctx, key, days); err != nil {
		slog.Warn("working days cache write failed", "layer", name, "company_id", key.CompanyID, "error", err)
	}
}
