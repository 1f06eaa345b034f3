package scheduler

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func schedulerFixture(t *testing.T) (*RenewalSweeper, *ReminderJob) {
	t.Helper()
	sweeper := newSweeper(t, newFakeSubscriptionStore(), newFakePaymentStore(), &fakePublisher{})
	return sweeper, newReminderFixture(t).job
}

func TestNewSchedulerAppliesDefaults(t *testing.T) {
	sweeper, reminder := schedulerFixture(t)

	s, err := New(sweeper, reminder, Config{}, zap.NewNop())
	require.NoError(t, err)

	assert.Equal(t, "0 0 * * *", s.cfg.RenewalSpec)
	assert.Equal(t, "0 9 * * *", s.cfg.ReminderSpec)
	assert.Equal(t, 5*time.Minute, s.cfg.JobTimeout)
}

func TestNewSchedulerRequiresCollaborators(t *testing.T) {
	sweeper, reminder := schedulerFixture(t)

	_, err := New(nil, reminder, Config{}, zap.NewNop())
	assert.Error(t, err)

	_, err = New(sweeper, nil, Config{}, zap.NewNop())
	assert.Error(t, err)

	_, err = New(sweeper, reminder, Config{}, nil)
	assert.Error(t, err)
}

func TestStartRejectsInvalidSpec(t *testing.T) {
	sweeper, reminder := schedulerFixture(t)

	s, err := New(sweeper, reminder, Config{RenewalSpec: "not-a-cron"}, zap.NewNop())
	require.NoError(t, err)
	err = s.Start()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not-a-cron")

	s, err = New(sweeper, reminder, Config{ReminderSpec: "61 * * * *"}, zap.NewNop())
	require.NoError(t, err)
	err = s.Start()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "reminder")
}

func TestStopReturnsWithNoJobsInFlight(t *testing.T) {
	sweeper, reminder := schedulerFixture(t)

	// Specs that will not fire during the test.
	s, err := New(sweeper, reminder, Config{
		RenewalSpec:  "0 0 1 1 *",
		ReminderSpec: "0 0 1 1 *",
		JobTimeout:   time.Second,
	}, zap.NewNop())
	require.NoError(t, err)
	require.NoError(t, s.Start())

	done := make(chan struct{})
	go func() {
		s.Stop()
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("Stop did not return with no jobs in flight")
	}
}
