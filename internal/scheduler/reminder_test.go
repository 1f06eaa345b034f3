package scheduler

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"spendora-service/internal/domain/subscription"
	"spendora-service/internal/domain/user"
	wstypes "spendora-service/internal/domain/websocket"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type fakeOwnerDirectory struct {
	users map[int64]*user.User
}

func (d *fakeOwnerDirectory) FindByID(_ context.Context, id int64) (*user.User, error) {
	u, ok := d.users[id]
	if !ok {
		return nil, errors.New("user not found")
	}
	return u, nil
}

type sentEmail struct {
	To      string
	Subject string
	Body    string
}

type fakeEmailSender struct {
	mu      sync.Mutex
	sent    []sentEmail
	sendErr error
}

func (s *fakeEmailSender) Send(to, subject, body string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.sendErr != nil {
		return s.sendErr
	}
	s.sent = append(s.sent, sentEmail{To: to, Subject: subject, Body: body})
	return nil
}

type fakeReminderMarks struct {
	mu      sync.Mutex
	claimed map[string]bool
	markErr error
}

func newFakeReminderMarks() *fakeReminderMarks {
	return &fakeReminderMarks{claimed: make(map[string]bool)}
}

func (m *fakeReminderMarks) TryMark(_ context.Context, subID int64, renewalDate time.Time) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.markErr != nil {
		return false, m.markErr
	}
	key := fmt.Sprintf("%d:%s", subID, renewalDate.Format("2006-01-02"))
	if m.claimed[key] {
		return false, nil
	}
	m.claimed[key] = true
	return true, nil
}

type reminderFixture struct {
	subs  *fakeSubscriptionStore
	users *fakeOwnerDirectory
	email *fakeEmailSender
	pub   *fakePublisher
	marks *fakeReminderMarks
	job   *ReminderJob
}

func newReminderFixture(t *testing.T, subs ...*subscription.Subscription) *reminderFixture {
	t.Helper()

	store := newFakeSubscriptionStore(subs...)
	users := &fakeOwnerDirectory{users: map[int64]*user.User{}}
	for _, sub := range subs {
		users.users[sub.UserID] = &user.User{
			ID:    sub.UserID,
			Name:  "Asha",
			Email: fmt.Sprintf("owner%d@example.com", sub.UserID),
		}
	}

	email := &fakeEmailSender{}
	pub := &fakePublisher{}
	marks := newFakeReminderMarks()

	job, err := NewReminderJob(store, users, email, pub, marks, 3*24*time.Hour, zap.NewNop())
	require.NoError(t, err)

	return &reminderFixture{subs: store, users: users, email: email, pub: pub, marks: marks, job: job}
}

// FindRenewingWithin for the fake store: reuse the due scan with a shifted
// horizon.
func (s *fakeSubscriptionStore) FindRenewingWithin(_ context.Context, now time.Time, window time.Duration) ([]subscription.Subscription, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.findErr != nil {
		return nil, s.findErr
	}
	upcoming := []subscription.Subscription{}
	horizon := now.Add(window)
	for _, sub := range s.subs {
		if sub.Status != subscription.StatusActive {
			continue
		}
		if sub.NextRenewalDate.Before(now) || sub.NextRenewalDate.After(horizon) {
			continue
		}
		upcoming = append(upcoming, *sub)
	}
	return upcoming, nil
}

func TestReminderNotifiesOwnersInWindow(t *testing.T) {
	now := date(2024, time.January, 8)
	inWindow := activeSub(1, subscription.CycleMonthly, date(2024, time.January, 10))
	outside := activeSub(2, subscription.CycleMonthly, date(2024, time.February, 20))
	f := newReminderFixture(t, inWindow, outside)

	result, err := f.job.Run(context.Background(), now)
	require.NoError(t, err)
	assert.Equal(t, ReminderResult{Sent: 1}, result)

	require.Len(t, f.email.sent, 1)
	assert.Equal(t, "owner101@example.com", f.email.sent[0].To)
	assert.Contains(t, f.email.sent[0].Subject, "Netflix")

	notifications := f.pub.named(string(wstypes.EventTypeNotification))
	require.Len(t, notifications, 1)
	assert.Equal(t, inWindow.UserID, notifications[0].OwnerID, "notification is targeted, not broadcast")
	data, ok := notifications[0].Payload.(wstypes.NotificationData)
	require.True(t, ok)
	assert.Equal(t, "Upcoming renewal", data.Title)
	assert.Contains(t, data.Message, "Netflix")
}

func TestReminderNeverMutates(t *testing.T) {
	now := date(2024, time.January, 8)
	sub := activeSub(1, subscription.CycleMonthly, date(2024, time.January, 10))
	f := newReminderFixture(t, sub)

	_, err := f.job.Run(context.Background(), now)
	require.NoError(t, err)

	assert.Equal(t, date(2024, time.January, 10), f.subs.get(1).NextRenewalDate)
	assert.Equal(t, subscription.StatusActive, f.subs.get(1).Status)
}

func TestReminderDeduplicatesAcrossRuns(t *testing.T) {
	now := date(2024, time.January, 8)
	f := newReminderFixture(t, activeSub(1, subscription.CycleMonthly, date(2024, time.January, 10)))

	first, err := f.job.Run(context.Background(), now)
	require.NoError(t, err)
	assert.Equal(t, ReminderResult{Sent: 1}, first)

	// Same pending renewal the next day: the mark suppresses a second send.
	second, err := f.job.Run(context.Background(), now.Add(24*time.Hour))
	require.NoError(t, err)
	assert.Equal(t, ReminderResult{Skipped: 1}, second)
	assert.Len(t, f.email.sent, 1)
}

func TestReminderIsolatesEmailFailure(t *testing.T) {
	now := date(2024, time.January, 8)
	a := activeSub(1, subscription.CycleMonthly, date(2024, time.January, 9))
	b := activeSub(2, subscription.CycleMonthly, date(2024, time.January, 10))
	f := newReminderFixture(t, a, b)
	// Drop one owner so its lookup fails; the other still gets notified.
	delete(f.users.users, a.UserID)

	result, err := f.job.Run(context.Background(), now)
	require.NoError(t, err)
	assert.Equal(t, 1, result.Sent)
	assert.Equal(t, 1, result.Failed)
	require.Len(t, f.email.sent, 1)
	assert.Equal(t, "owner102@example.com", f.email.sent[0].To)
}

func TestReminderStoreFailureAbortsRun(t *testing.T) {
	f := newReminderFixture(t)
	f.subs.findErr = errors.New("store unreachable")

	_, err := f.job.Run(context.Background(), time.Now())
	assert.Error(t, err)
	assert.Empty(t, f.email.sent)
}

func TestNewReminderJobRequiresCollaborators(t *testing.T) {
	_, err := NewReminderJob(nil, &fakeOwnerDirectory{}, &fakeEmailSender{}, &fakePublisher{}, newFakeReminderMarks(), 0, zap.NewNop())
	assert.Error(t, err)
}
