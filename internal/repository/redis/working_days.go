package redis

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/cmlabs-hris/hris-payroll-go/internal/domain/payroll"
	goredis "github.com/redis/go-redis/v9"
)

const workingDaysKeyPrefix = "payroll:working_days:"

// WorkingDaysKey builds the redis key for a tenant and period.
func WorkingDaysKey(key payroll.WorkingDaysKey) string {
	return fmt.Sprintf("%s%s:%04d:%02d", workingDaysKeyPrefix, key.CompanyID, key.Year, int(key.Month))
}

type workingDaysCache struct {
	rdb *goredis.Client
	ttl time.Duration
}

// NewWorkingDaysCache returns a redis front for the working days store.
// A zero ttl keeps entries until they are deleted.
func NewWorkingDaysCache(rdb *goredis.Client, ttl time.Duration) payroll.WorkingDaysStore {
	return &workingDaysCache{rdb: rdb, ttl: ttl}
}

func (c *workingDaysCache) Get(ctx context.Context, key payroll.WorkingDaysKey) (int, error) {
	days, err := c.rdb.Get(ctx, WorkingDaysKey(key)).Int()
	if err != nil {
		if errors.Is(err, goredis.Nil) {
			return 0, payroll.ErrWorkingDaysNotCached
		}
		return 0, fmt.Errorf("redis get working days: %w", err)
	}
	return days, nil
}

func (c *workingDaysCache) Put(ctx context.Context, key payroll.WorkingDaysKey, days int) error {
	if err := c.rdb.Set(ctx, WorkingDaysKey(key), days, c.ttl).Err(); err != nil {
		return fmt.Errorf("redis set working days: %w", err)
	}
	return nil
}

func (c *workingDaysCache) Delete(ctx context.Context, key payroll.WorkingDaysKey) error {
	if err := c.rdb.Del(ctx, WorkingDaysKey(key)).Err(); err != nil {
		return fmt.Errorf("redis delete working days: %w", err)
	}
	return nil
}
