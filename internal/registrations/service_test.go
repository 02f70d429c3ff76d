package registrations

import (
	"context"
	"sync"
	"testing"
	"time"

	"wanderly/internal/auth"
	"wanderly/internal/outbox"
	"wanderly/internal/shared/apperrors"
	"wanderly/internal/shared/config"
	"wanderly/internal/trips"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestService(repo *memRepo, policy string, users fakeUsers) *service {
	cfg := &config.Config{Registration: config.RegistrationConfig{Policy: policy}}
	svc := NewService(repo, users, cfg).(*service)

	var mu sync.Mutex
	clock := time.Date(2026, 5, 1, 9, 0, 0, 0, time.UTC)
	svc.now = func() time.Time {
		mu.Lock()
		defer mu.Unlock()
		clock = clock.Add(time.Minute)
		return clock
	}
	return svc
}

func capacityTrip(capacity int) trips.Trip {
	return trips.Trip{
		Title:       "Cappadocia balloons",
		Destination: "Goreme",
		Price:       450,
		Capacity:    capacity,
		StartDate:   time.Date(2026, 9, 10, 0, 0, 0, 0, time.UTC),
		EndDate:     time.Date(2026, 9, 13, 0, 0, 0, 0, time.UTC),
	}
}

func TestRegister_CreatesPendingWithAmount(t *testing.T) {
	repo := newMemRepo()
	trip := repo.addTrip(capacityTrip(5))
	svc := newTestService(repo, config.RegistrationPolicyBlock, nil)
	user := uuid.New()

	reg, err := svc.Register(context.Background(), user, trip.ID, RegisterRequest{NumGuests: 3, Notes: "vegetarian"})
	require.NoError(t, err)

	assert.Equal(t, StatusPending, reg.Status)
	assert.Equal(t, TypeTripRegistration, reg.Type)
	assert.Equal(t, 1350.0, reg.Amount)
	assert.Equal(t, 3, reg.NumGuests)

	events := repo.events()
	require.Len(t, events, 1)
	assert.Equal(t, outbox.EventRegistrationCreated, events[0].Type)
	payload := events[0].Payload.(outbox.RegistrationCreatedPayload)
	assert.Equal(t, "vegetarian", payload.Notes)
	assert.Equal(t, 1350.0, payload.Amount)
	assert.Equal(t, trip.Title, payload.TripTitle)
}

func TestRegister_DefaultsToOneGuest(t *testing.T) {
	repo := newMemRepo()
	trip := repo.addTrip(capacityTrip(5))
	svc := newTestService(repo, config.RegistrationPolicyBlock, nil)

	reg, err := svc.Register(context.Background(), uuid.New(), trip.ID, RegisterRequest{})
	require.NoError(t, err)
	assert.Equal(t, 1, reg.NumGuests)
	assert.Equal(t, 450.0, reg.Amount)
}

func TestRegister_Failures(t *testing.T) {
	ctx := context.Background()

	t.Run("unknown trip", func(t *testing.T) {
		svc := newTestService(newMemRepo(), config.RegistrationPolicyBlock, nil)
		_, err := svc.Register(ctx, uuid.New(), uuid.New(), RegisterRequest{})
		assert.ErrorIs(t, err, apperrors.ErrTripNotFound)
	})

	t.Run("second registration", func(t *testing.T) {
		repo := newMemRepo()
		trip := repo.addTrip(capacityTrip(5))
		svc := newTestService(repo, config.RegistrationPolicyBlock, nil)
		user := uuid.New()

		_, err := svc.Register(ctx, user, trip.ID, RegisterRequest{})
		require.NoError(t, err)
		_, err = svc.Register(ctx, user, trip.ID, RegisterRequest{})
		assert.ErrorIs(t, err, apperrors.ErrAlreadyRegistered)
		assert.Len(t, repo.events(), 1)
	})

	t.Run("trip full", func(t *testing.T) {
		repo := newMemRepo()
		trip := repo.addTrip(capacityTrip(2))
		svc := newTestService(repo, config.RegistrationPolicyBlock, nil)

		for i := 0; i < 2; i++ {
			_, err := svc.Register(ctx, uuid.New(), trip.ID, RegisterRequest{})
			require.NoError(t, err)
		}
		_, err := svc.Register(ctx, uuid.New(), trip.ID, RegisterRequest{})
		assert.ErrorIs(t, err, apperrors.ErrTripFull)
	})

	t.Run("rejected registrations free capacity", func(t *testing.T) {
		repo := newMemRepo()
		trip := repo.addTrip(capacityTrip(1))
		repo.addRegistration(Registration{UserID: uuid.New(), TripID: trip.ID, Status: StatusRejected})
		svc := newTestService(repo, config.RegistrationPolicyBlock, nil)

		_, err := svc.Register(ctx, uuid.New(), trip.ID, RegisterRequest{})
		assert.NoError(t, err)
	})
}

func TestRegister_ReRegistrationPolicy(t *testing.T) {
	ctx := context.Background()
	user := uuid.New()

	repo := newMemRepo()
	trip := repo.addTrip(capacityTrip(5))
	repo.addRegistration(Registration{UserID: user, TripID: trip.ID, Status: StatusRejected})

	_, err := newTestService(repo, config.RegistrationPolicyBlock, nil).Register(ctx, user, trip.ID, RegisterRequest{})
	assert.ErrorIs(t, err, apperrors.ErrAlreadyRegistered)

	svc := newTestService(repo, config.RegistrationPolicyAllowAfterRejection, nil)
	reg, err := svc.Register(ctx, user, trip.ID, RegisterRequest{})
	require.NoError(t, err)
	assert.Equal(t, StatusPending, reg.Status)

	_, err = svc.Register(ctx, user, trip.ID, RegisterRequest{})
	assert.ErrorIs(t, err, apperrors.ErrAlreadyRegistered)
}

func TestRegister_ConcurrentNeverExceedsCapacity(t *testing.T) {
	repo := newMemRepo()
	trip := repo.addTrip(capacityTrip(7))
	svc := newTestService(repo, config.RegistrationPolicyBlock, nil)

	var (
		wg      sync.WaitGroup
		mu      sync.Mutex
		ok      int
		refused int
	)
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := svc.Register(context.Background(), uuid.New(), trip.ID, RegisterRequest{})
			mu.Lock()
			defer mu.Unlock()
			if err == nil {
				ok++
			} else if assert.ErrorIs(t, err, apperrors.ErrTripFull) {
				refused++
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 7, ok)
	assert.Equal(t, 13, refused)
}

func TestUpdateStatus(t *testing.T) {
	ctx := context.Background()
	admin := uuid.New()

	setup := func() (*memRepo, *service, Registration) {
		repo := newMemRepo()
		trip := repo.addTrip(capacityTrip(5))
		reg := repo.addRegistration(Registration{UserID: uuid.New(), TripID: trip.ID, Status: StatusPending})
		return repo, newTestService(repo, config.RegistrationPolicyBlock, nil), reg
	}

	t.Run("invalid status", func(t *testing.T) {
		_, svc, reg := setup()
		_, err := svc.UpdateStatus(ctx, admin, reg.ID, UpdateStatusRequest{Status: StatusPending})
		assert.ErrorIs(t, err, apperrors.ErrInvalidStatus)
		_, err = svc.UpdateStatus(ctx, admin, reg.ID, UpdateStatusRequest{Status: "waitlisted"})
		assert.ErrorIs(t, err, apperrors.ErrInvalidStatus)
	})

	t.Run("unknown registration", func(t *testing.T) {
		_, svc, _ := setup()
		_, err := svc.UpdateStatus(ctx, admin, uuid.New(), UpdateStatusRequest{Status: StatusApproved})
		assert.ErrorIs(t, err, apperrors.ErrRegistrationNotFound)
	})

	t.Run("approve", func(t *testing.T) {
		repo, svc, reg := setup()
		got, err := svc.UpdateStatus(ctx, admin, reg.ID, UpdateStatusRequest{Status: StatusApproved, AdminNote: "welcome"})
		require.NoError(t, err)
		assert.Equal(t, StatusApproved, got.Status)
		require.NotNil(t, got.ApprovedBy)
		assert.Equal(t, admin, *got.ApprovedBy)
		assert.NotNil(t, got.ApprovedAt)
		assert.Equal(t, "welcome", got.AdminNote)

		events := repo.events()
		require.Len(t, events, 1)
		assert.Equal(t, outbox.EventRegistrationApproved, events[0].Type)
	})

	t.Run("reject defaults reason", func(t *testing.T) {
		repo, svc, reg := setup()
		got, err := svc.UpdateStatus(ctx, admin, reg.ID, UpdateStatusRequest{Status: StatusRejected})
		require.NoError(t, err)
		assert.Equal(t, defaultRejectionReason, got.RejectionReason)
		assert.NotNil(t, got.RejectedAt)

		events := repo.events()
		require.Len(t, events, 1)
		assert.Equal(t, outbox.EventRegistrationRejected, events[0].Type)
		assert.Equal(t, defaultRejectionReason, events[0].Payload.(outbox.RegistrationDecisionPayload).Reason)
	})

	t.Run("repeat is a no-op and flip is refused", func(t *testing.T) {
		repo, svc, reg := setup()
		_, err := svc.UpdateStatus(ctx, admin, reg.ID, UpdateStatusRequest{Status: StatusApproved})
		require.NoError(t, err)

		got, err := svc.UpdateStatus(ctx, uuid.New(), reg.ID, UpdateStatusRequest{Status: StatusApproved})
		require.NoError(t, err)
		assert.Equal(t, admin, *got.ApprovedBy)
		assert.Len(t, repo.events(), 1)

		_, err = svc.UpdateStatus(ctx, admin, reg.ID, UpdateStatusRequest{Status: StatusRejected})
		assert.ErrorIs(t, err, apperrors.ErrRegistrationFinalized)
		stored, _ := repo.registration(reg.ID)
		assert.Equal(t, StatusApproved, stored.Status)
	})
}

func TestCancel(t *testing.T) {
	ctx := context.Background()
	repo := newMemRepo()
	trip := repo.addTrip(capacityTrip(5))
	owner := uuid.New()
	pending := repo.addRegistration(Registration{UserID: owner, TripID: trip.ID, Status: StatusPending})
	approved := repo.addRegistration(Registration{UserID: owner, TripID: trip.ID, Status: StatusApproved})
	svc := newTestService(repo, config.RegistrationPolicyBlock, nil)

	assert.ErrorIs(t, svc.Cancel(ctx, uuid.New(), pending.ID), apperrors.ErrRegistrationNotFound)
	assert.ErrorIs(t, svc.Cancel(ctx, owner, approved.ID), apperrors.ErrCannotCancelApproved)
	assert.ErrorIs(t, svc.Cancel(ctx, owner, uuid.New()), apperrors.ErrRegistrationNotFound)

	require.NoError(t, svc.Cancel(ctx, owner, pending.ID))
	_, ok := repo.registration(pending.ID)
	assert.False(t, ok)
}

func TestQueries(t *testing.T) {
	ctx := context.Background()
	repo := newMemRepo()
	trip := repo.addTrip(capacityTrip(10))
	alice, bob := uuid.New(), uuid.New()
	users := fakeUsers{alice: auth.UserSummary{ID: alice, Name: "Alice Moreau", Email: "alice@example.com", Phone: "+33 6 00"}}
	svc := newTestService(repo, config.RegistrationPolicyBlock, users)

	_, err := svc.GetStatus(ctx, alice, trip.ID)
	assert.ErrorIs(t, err, apperrors.ErrRegistrationNotFound)

	aliceReg, err := svc.Register(ctx, alice, trip.ID, RegisterRequest{NumGuests: 2})
	require.NoError(t, err)
	bobReg, err := svc.Register(ctx, bob, trip.ID, RegisterRequest{NumGuests: 4})
	require.NoError(t, err)
	_, err = svc.UpdateStatus(ctx, uuid.New(), bobReg.ID, UpdateStatusRequest{Status: StatusApproved})
	require.NoError(t, err)

	status, err := svc.GetStatus(ctx, alice, trip.ID)
	require.NoError(t, err)
	assert.Equal(t, StatusPending, status.Status)

	mine, err := svc.GetUserRegistrations(ctx, alice)
	require.NoError(t, err)
	require.Len(t, mine, 1)
	require.NotNil(t, mine[0].Trip)
	assert.Equal(t, trip.Title, mine[0].Trip.Title)

	pending, err := svc.GetPending(ctx)
	require.NoError(t, err)
	require.Len(t, pending, 1)
	assert.Equal(t, aliceReg.ID, pending[0].RegistrationID)
	assert.Equal(t, "Alice Moreau", pending[0].User.Name)
	assert.Equal(t, "Goreme", pending[0].Trip.Destination)

	stats, err := svc.GetStats(ctx, trip.ID)
	require.NoError(t, err)
	assert.Equal(t, RegistrationStats{Pending: 1, Approved: 1, TotalGuests: 4, AvailableSpots: 6}, *stats)

	_, err = svc.GetStats(ctx, uuid.New())
	assert.ErrorIs(t, err, apperrors.ErrTripNotFound)
}
