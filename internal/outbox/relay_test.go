package outbox

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"wanderly/internal/shared/config"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type mockPublisher struct {
	mock.Mock
}

func (m *mockPublisher) Publish(ctx context.Context, msg Message) error {
	return m.Called(ctx, msg).Error(0)
}

type memStore struct {
	mu     sync.Mutex
	events []*Event
}

func (s *memStore) add(eventType string) *Event {
	s.mu.Lock()
	defer s.mu.Unlock()
	ev := &Event{
		ID:          uuid.New(),
		EventType:   eventType,
		Payload:     `{"k":"v"}`,
		Status:      StatusPending,
		AvailableAt: time.Time{},
	}
	s.events = append(s.events, ev)
	return ev
}

func (s *memStore) Claim(_ context.Context, now time.Time, limit int, fn func(events []*Event)) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var due []*Event
	for _, ev := range s.events {
		if ev.Status == StatusPending && !ev.AvailableAt.After(now) && len(due) < limit {
			due = append(due, ev)
		}
	}
	if len(due) > 0 {
		fn(due)
	}
	return len(due), nil
}

func (s *memStore) CountByStatus(context.Context) (map[Status]int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := map[Status]int64{}
	for _, ev := range s.events {
		out[ev.Status]++
	}
	return out, nil
}

func relayConfig() config.OutboxConfig {
	return config.OutboxConfig{
		PollInterval: 10 * time.Millisecond,
		BatchSize:    10,
		MaxAttempts:  3,
		BaseBackoff:  time.Second,
		MaxBackoff:   time.Minute,
	}
}

func TestBackoff(t *testing.T) {
	base, ceiling := 5*time.Second, 30*time.Second
	assert.Equal(t, 5*time.Second, Backoff(0, base, ceiling))
	assert.Equal(t, 5*time.Second, Backoff(1, base, ceiling))
	assert.Equal(t, 10*time.Second, Backoff(2, base, ceiling))
	assert.Equal(t, 20*time.Second, Backoff(3, base, ceiling))
	assert.Equal(t, 30*time.Second, Backoff(4, base, ceiling))
	assert.Equal(t, 30*time.Second, Backoff(60, base, ceiling))
}

func TestRelay_RunOnce_PublishesAndMarks(t *testing.T) {
	store := &memStore{}
	ev := store.add(EventTicketBooked)

	pub := &mockPublisher{}
	pub.On("Publish", mock.Anything, mock.MatchedBy(func(m Message) bool {
		return m.ID == ev.ID && m.Type == EventTicketBooked && string(m.Payload) == `{"k":"v"}`
	})).Return(nil).Once()

	relay := NewRelay(store, pub, relayConfig())
	n, err := relay.RunOnce(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	assert.Equal(t, StatusPublished, ev.Status)
	assert.Equal(t, 1, ev.Attempts)
	assert.NotNil(t, ev.PublishedAt)
	pub.AssertExpectations(t)

	n, err = relay.RunOnce(context.Background())
	require.NoError(t, err)
	assert.Zero(t, n, "published events are not claimed again")
}

func TestRelay_RunOnce_BacksOffThenFails(t *testing.T) {
	store := &memStore{}
	ev := store.add(EventRegistrationCreated)

	pub := &mockPublisher{}
	pub.On("Publish", mock.Anything, mock.Anything).Return(errors.New("broker down"))

	relay := NewRelay(store, pub, relayConfig())
	now := time.Date(2026, 5, 1, 9, 0, 0, 0, time.UTC)
	relay.now = func() time.Time { return now }

	_, err := relay.RunOnce(context.Background())
	require.NoError(t, err)
	assert.Equal(t, StatusPending, ev.Status)
	assert.Equal(t, 1, ev.Attempts)
	assert.Equal(t, "broker down", ev.LastError)
	assert.Equal(t, now.Add(time.Second), ev.AvailableAt)

	n, _ := relay.RunOnce(context.Background())
	assert.Zero(t, n, "event is not due before its backoff elapses")

	now = now.Add(time.Second)
	_, _ = relay.RunOnce(context.Background())
	assert.Equal(t, 2, ev.Attempts)
	assert.Equal(t, now.Add(2*time.Second), ev.AvailableAt)

	now = now.Add(2 * time.Second)
	_, _ = relay.RunOnce(context.Background())
	assert.Equal(t, 3, ev.Attempts)
	assert.Equal(t, StatusFailed, ev.Status)

	pub.AssertNumberOfCalls(t, "Publish", 3)
}

func TestRelay_StartStop(t *testing.T) {
	store := &memStore{}
	for i := 0; i < 25; i++ {
		store.add(EventTripReminder)
	}

	pub := &mockPublisher{}
	pub.On("Publish", mock.Anything, mock.Anything).Return(nil)

	relay := NewRelay(store, pub, relayConfig())
	relay.Start(context.Background())

	assert.Eventually(t, func() bool {
		counts, _ := store.CountByStatus(context.Background())
		return counts[StatusPublished] == 25
	}, 2*time.Second, 10*time.Millisecond)

	relay.Stop()
	relay.Stop()
}

func TestRelay_StopsOnContextCancel(t *testing.T) {
	relay := NewRelay(&memStore{}, &mockPublisher{}, relayConfig())
	ctx, cancel := context.WithCancel(context.Background())
	relay.Start(ctx)
	cancel()

	stopped := make(chan struct{})
	go func() {
		relay.wg.Wait()
		close(stopped)
	}()

	select {
	case <-stopped:
	case <-time.After(time.Second):
		t.Fatal("relay did not exit after context cancellation")
	}
}

func TestRelay_DefaultsNonPositiveInterval(t *testing.T) {
	for _, interval := range []time.Duration{0, -time.Second} {
		cfg := relayConfig()
		cfg.PollInterval = interval

		relay := NewRelay(&memStore{}, &mockPublisher{}, cfg)
		assert.Equal(t, 2*time.Second, relay.config.PollInterval)

		assert.NotPanics(t, func() {
			relay.Start(context.Background())
			relay.Stop()
		})
	}
}
