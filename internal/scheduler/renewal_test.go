package scheduler

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	"spendora-service/internal/domain/payment"
	"spendora-service/internal/domain/subscription"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type fakeSubscriptionStore struct {
	mu      sync.Mutex
	subs    map[int64]*subscription.Subscription
	findErr error
	saveErr map[int64]error
}

func newFakeSubscriptionStore(subs ...*subscription.Subscription) *fakeSubscriptionStore {
	s := &fakeSubscriptionStore{
		subs:    make(map[int64]*subscription.Subscription),
		saveErr: make(map[int64]error),
	}
	for _, sub := range subs {
		copied := *sub
		s.subs[sub.ID] = &copied
	}
	return s
}

func (s *fakeSubscriptionStore) FindDue(_ context.Context, now time.Time) ([]subscription.Subscription, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.findErr != nil {
		return nil, s.findErr
	}
	due := []subscription.Subscription{}
	for _, sub := range s.subs {
		if sub.Renewable(now) {
			due = append(due, *sub)
		}
	}
	return due, nil
}

func (s *fakeSubscriptionStore) Save(_ context.Context, sub *subscription.Subscription) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.saveErr[sub.ID]; err != nil {
		return err
	}
	copied := *sub
	s.subs[sub.ID] = &copied
	return nil
}

func (s *fakeSubscriptionStore) get(id int64) subscription.Subscription {
	s.mu.Lock()
	defer s.mu.Unlock()
	return *s.subs[id]
}

type fakePaymentStore struct {
	mu        sync.Mutex
	payments  []payment.Payment
	createErr map[int64]error
}

func newFakePaymentStore() *fakePaymentStore {
	return &fakePaymentStore{createErr: make(map[int64]error)}
}

func (s *fakePaymentStore) Create(_ context.Context, p *payment.Payment) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.createErr[p.SubscriptionID]; err != nil {
		return err
	}
	s.payments = append(s.payments, *p)
	return nil
}

func (s *fakePaymentStore) forSubscription(id int64) []payment.Payment {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := []payment.Payment{}
	for _, p := range s.payments {
		if p.SubscriptionID == id {
			out = append(out, p)
		}
	}
	return out
}

type publishedEvent struct {
	Event   string
	OwnerID int64
	Payload interface{}
}

type fakePublisher struct {
	mu         sync.Mutex
	events     []publishedEvent
	publishErr error
}

func (p *fakePublisher) Publish(event string, payload interface{}) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.publishErr != nil {
		return p.publishErr
	}
	p.events = append(p.events, publishedEvent{Event: event, Payload: payload})
	return nil
}

func (p *fakePublisher) PublishToOwner(ownerID int64, event string, payload interface{}) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.publishErr != nil {
		return p.publishErr
	}
	p.events = append(p.events, publishedEvent{Event: event, OwnerID: ownerID, Payload: payload})
	return nil
}

func (p *fakePublisher) named(event string) []publishedEvent {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := []publishedEvent{}
	for _, e := range p.events {
		if e.Event == event {
			out = append(out, e)
		}
	}
	return out
}

func activeSub(id int64, cycle subscription.BillingCycle, next time.Time) *subscription.Subscription {
	return &subscription.Subscription{
		ID:              id,
		UserID:          100 + id,
		Name:            "Netflix",
		Category:        "Entertainment",
		Amount:          649,
		Currency:        "INR",
		BillingCycle:    cycle,
		NextRenewalDate: next,
		Status:          subscription.StatusActive,
	}
}

func newSweeper(t *testing.T, subs *fakeSubscriptionStore, payments *fakePaymentStore, pub *fakePublisher) *RenewalSweeper {
	t.Helper()
	s, err := NewRenewalSweeper(subs, payments, pub, time.Second, zap.NewNop())
	require.NoError(t, err)
	return s
}

func TestRunSweepRenewsDueSubscription(t *testing.T) {
	now := date(2024, time.January, 15)
	subs := newFakeSubscriptionStore(activeSub(1, subscription.CycleMonthly, date(2024, time.January, 10)))
	payments := newFakePaymentStore()
	pub := &fakePublisher{}

	result, err := newSweeper(t, subs, payments, pub).RunSweep(context.Background(), now)
	require.NoError(t, err)
	assert.Equal(t, SweepResult{Processed: 1}, result)

	// Exactly one Completed payment at the subscription's amount.
	ledger := payments.forSubscription(1)
	require.Len(t, ledger, 1)
	assert.Equal(t, 649.0, ledger[0].Amount)
	assert.Equal(t, "INR", ledger[0].Currency)
	assert.Equal(t, payment.StatusCompleted, ledger[0].Status)
	assert.Equal(t, now, ledger[0].Date)
	assert.NotEmpty(t, ledger[0].Reference)

	// Date advanced one month from its own anchor, not from now.
	assert.Equal(t, date(2024, time.February, 10), subs.get(1).NextRenewalDate)
	assert.Equal(t, subscription.StatusActive, subs.get(1).Status)

	// Both events published.
	assert.Len(t, pub.named("payment_processed"), 1)
	assert.Len(t, pub.named("subscription_updated"), 1)
}

func TestRunSweepIsIdempotentForSameNow(t *testing.T) {
	now := date(2024, time.January, 15)
	subs := newFakeSubscriptionStore(activeSub(1, subscription.CycleMonthly, date(2024, time.January, 10)))
	payments := newFakePaymentStore()
	pub := &fakePublisher{}
	sweeper := newSweeper(t, subs, payments, pub)

	_, err := sweeper.RunSweep(context.Background(), now)
	require.NoError(t, err)

	second, err := sweeper.RunSweep(context.Background(), now)
	require.NoError(t, err)
	assert.Equal(t, SweepResult{}, second)
	assert.Len(t, payments.forSubscription(1), 1)
}

func TestRunSweepSkipsNonActive(t *testing.T) {
	now := date(2024, time.January, 15)
	paused := activeSub(1, subscription.CycleMonthly, date(2024, time.January, 1))
	paused.Status = subscription.StatusPaused
	cancelled := activeSub(2, subscription.CycleYearly, date(2023, time.June, 1))
	cancelled.Status = subscription.StatusCancelled

	subs := newFakeSubscriptionStore(paused, cancelled)
	payments := newFakePaymentStore()
	pub := &fakePublisher{}

	result, err := newSweeper(t, subs, payments, pub).RunSweep(context.Background(), now)
	require.NoError(t, err)
	assert.Equal(t, SweepResult{}, result)
	assert.Empty(t, payments.payments)
	assert.Equal(t, date(2024, time.January, 1), subs.get(1).NextRenewalDate)
}

func TestRunSweepAdvancesOneCyclePerSweep(t *testing.T) {
	// Two full months overdue: needs two sweeps to become current.
	now := date(2024, time.March, 15)
	subs := newFakeSubscriptionStore(activeSub(1, subscription.CycleMonthly, date(2024, time.January, 10)))
	payments := newFakePaymentStore()
	pub := &fakePublisher{}
	sweeper := newSweeper(t, subs, payments, pub)

	_, err := sweeper.RunSweep(context.Background(), now)
	require.NoError(t, err)
	assert.Equal(t, date(2024, time.February, 10), subs.get(1).NextRenewalDate)

	_, err = sweeper.RunSweep(context.Background(), now)
	require.NoError(t, err)
	assert.Equal(t, date(2024, time.March, 10), subs.get(1).NextRenewalDate)

	third, err := sweeper.RunSweep(context.Background(), now)
	require.NoError(t, err)
	assert.Equal(t, SweepResult{}, third)
	assert.Len(t, payments.forSubscription(1), 2)
}

func TestRunSweepYearly(t *testing.T) {
	now := date(2024, time.February, 1)
	subs := newFakeSubscriptionStore(activeSub(1, subscription.CycleYearly, date(2024, time.January, 31)))
	payments := newFakePaymentStore()
	pub := &fakePublisher{}

	_, err := newSweeper(t, subs, payments, pub).RunSweep(context.Background(), now)
	require.NoError(t, err)
	assert.Equal(t, date(2025, time.January, 31), subs.get(1).NextRenewalDate)
}

func TestRunSweepIsolatesItemFailure(t *testing.T) {
	now := date(2024, time.January, 15)
	subs := newFakeSubscriptionStore(
		activeSub(1, subscription.CycleMonthly, date(2024, time.January, 10)),
		activeSub(2, subscription.CycleMonthly, date(2024, time.January, 12)),
		activeSub(3, subscription.CycleMonthly, date(2024, time.January, 14)),
	)
	subs.saveErr[2] = errors.New("write refused")
	payments := newFakePaymentStore()
	pub := &fakePublisher{}

	result, err := newSweeper(t, subs, payments, pub).RunSweep(context.Background(), now)
	require.NoError(t, err)
	assert.Equal(t, SweepResult{Processed: 2, Failed: 1}, result)

	// Healthy items renewed.
	assert.Equal(t, date(2024, time.February, 10), subs.get(1).NextRenewalDate)
	assert.Equal(t, date(2024, time.February, 14), subs.get(3).NextRenewalDate)

	// Failed item stays due and is retried on the next sweep.
	assert.Equal(t, date(2024, time.January, 12), subs.get(2).NextRenewalDate)
}

func TestRunSweepPaymentFailureSkipsDateAdvance(t *testing.T) {
	now := date(2024, time.January, 15)
	subs := newFakeSubscriptionStore(activeSub(1, subscription.CycleMonthly, date(2024, time.January, 10)))
	payments := newFakePaymentStore()
	payments.createErr[1] = errors.New("ledger unavailable")
	pub := &fakePublisher{}

	result, err := newSweeper(t, subs, payments, pub).RunSweep(context.Background(), now)
	require.NoError(t, err)
	assert.Equal(t, SweepResult{Failed: 1}, result)
	assert.Equal(t, date(2024, time.January, 10), subs.get(1).NextRenewalDate)
}

func TestRunSweepPublishFailureDoesNotRollBack(t *testing.T) {
	now := date(2024, time.January, 15)
	subs := newFakeSubscriptionStore(activeSub(1, subscription.CycleMonthly, date(2024, time.January, 10)))
	payments := newFakePaymentStore()
	pub := &fakePublisher{publishErr: errors.New("broadcast buffer full")}

	result, err := newSweeper(t, subs, payments, pub).RunSweep(context.Background(), now)
	require.NoError(t, err)

	// Mutation is durable, notification is best-effort.
	assert.Equal(t, SweepResult{Processed: 1}, result)
	assert.Len(t, payments.forSubscription(1), 1)
	assert.Equal(t, date(2024, time.February, 10), subs.get(1).NextRenewalDate)
}

func TestRunSweepStoreReadFailureAbortsCycle(t *testing.T) {
	subs := newFakeSubscriptionStore()
	subs.findErr = errors.New("store unreachable")
	payments := newFakePaymentStore()
	pub := &fakePublisher{}

	_, err := newSweeper(t, subs, payments, pub).RunSweep(context.Background(), time.Now())
	assert.Error(t, err)
}

func TestRunSweepPayloadShapes(t *testing.T) {
	now := date(2024, time.January, 15)
	sub := activeSub(1, subscription.CycleMonthly, date(2024, time.January, 10))
	subs := newFakeSubscriptionStore(sub)
	payments := newFakePaymentStore()
	pub := &fakePublisher{}

	_, err := newSweeper(t, subs, payments, pub).RunSweep(context.Background(), now)
	require.NoError(t, err)

	processed := pub.named("payment_processed")
	require.Len(t, processed, 1)
	data, err := json.Marshal(processed[0].Payload)
	require.NoError(t, err)
	assert.JSONEq(t, `{
		"subscription": "Netflix",
		"amount": 649,
		"date": "2024-01-15T00:00:00Z",
		"user": 101
	}`, string(data))

	updated := pub.named("subscription_updated")
	require.Len(t, updated, 1)
	got, ok := updated[0].Payload.(*subscription.Subscription)
	require.True(t, ok)
	assert.Equal(t, date(2024, time.February, 10), got.NextRenewalDate)
}

func TestNewRenewalSweeperRequiresCollaborators(t *testing.T) {
	_, err := NewRenewalSweeper(nil, newFakePaymentStore(), &fakePublisher{}, time.Second, zap.NewNop())
	assert.Error(t, err)

	_, err = NewRenewalSweeper(newFakeSubscriptionStore(), nil, &fakePublisher{}, time.Second, zap.NewNop())
	assert.Error(t, err)

	_, err = NewRenewalSweeper(newFakeSubscriptionStore(), newFakePaymentStore(), nil, time.Second, zap.NewNop())
	assert.Error(t, err)
}

type blockingStore struct {
	*fakeSubscriptionStore
	entered chan struct{}
	release chan struct{}
	once    sync.Once
}

func (s *blockingStore) FindDue(ctx context.Context, now time.Time) ([]subscription.Subscription, error) {
	s.once.Do(func() {
		close(s.entered)
		<-s.release
	})
	return s.fakeSubscriptionStore.FindDue(ctx, now)
}

func TestRunSweepRejectsOverlap(t *testing.T) {
	store := &blockingStore{
		fakeSubscriptionStore: newFakeSubscriptionStore(),
		entered:               make(chan struct{}),
		release:               make(chan struct{}),
	}
	sweeper, err := NewRenewalSweeper(store, newFakePaymentStore(), &fakePublisher{}, time.Second, zap.NewNop())
	require.NoError(t, err)

	done := make(chan struct{})
	go func() {
		defer close(done)
		_, _ = sweeper.RunSweep(context.Background(), time.Now())
	}()

	<-store.entered
	_, err = sweeper.RunSweep(context.Background(), time.Now())
	assert.ErrorIs(t, err, ErrSweepInProgress)

	close(store.release)
	<-done

	// Guard clears once the sweep finishes.
	_, err = sweeper.RunSweep(context.Background(), time.Now())
	assert.NoError(t, err)
}

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
