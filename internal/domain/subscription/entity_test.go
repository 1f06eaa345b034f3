package subscription

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestNextRenewalAfterMonthly(t *testing.T) {
	got := CycleMonthly.NextRenewalAfter(date(2024, time.January, 10))
	assert.Equal(t, date(2024, time.February, 10), got)
}

func TestNextRenewalAfterMonthlyOverflow(t *testing.T) {
	// 2024 is a leap year: Jan 31 + 1 month normalizes to Mar 2.
	got := CycleMonthly.NextRenewalAfter(date(2024, time.January, 31))
	assert.Equal(t, date(2024, time.March, 2), got)

	got = CycleMonthly.NextRenewalAfter(date(2023, time.January, 31))
	assert.Equal(t, date(2023, time.March, 3), got)
}

func TestNextRenewalAfterYearly(t *testing.T) {
	got := CycleYearly.NextRenewalAfter(date(2024, time.January, 31))
	assert.Equal(t, date(2025, time.January, 31), got)
}

func TestNextRenewalAfterYearlyLeapDay(t *testing.T) {
	got := CycleYearly.NextRenewalAfter(date(2024, time.February, 29))
	assert.Equal(t, date(2025, time.March, 1), got)
}

func TestRenewable(t *testing.T) {
	now := date(2024, time.January, 15)

	sub := &Subscription{Status: StatusActive, NextRenewalDate: date(2024, time.January, 10)}
	assert.True(t, sub.Renewable(now))

	sub.NextRenewalDate = now
	assert.True(t, sub.Renewable(now), "due exactly at now is renewable")

	sub.NextRenewalDate = date(2024, time.January, 16)
	assert.False(t, sub.Renewable(now))

	sub.NextRenewalDate = date(2024, time.January, 10)
	sub.Status = StatusPaused
	assert.False(t, sub.Renewable(now), "only Active subscriptions renew")

	sub.Status = StatusCancelled
	assert.False(t, sub.Renewable(now))
}

func TestBillingCycleValid(t *testing.T) {
	assert.True(t, CycleMonthly.Valid())
	assert.True(t, CycleYearly.Valid())
	assert.False(t, BillingCycle("Weekly").Valid())
}
