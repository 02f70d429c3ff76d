package notifications

import (
	"context"

	"wanderly/internal/auth"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
)

type mockStore struct {
	mock.Mock
}

func (m *mockStore) Save(ctx context.Context, d Delivery) error {
	return m.Called(ctx, d).Error(0)
}

func (m *mockStore) List(ctx context.Context, audience Audience, userID string, limit, offset int64) ([]Notification, error) {
	args := m.Called(ctx, audience, userID, limit, offset)
	out, _ := args.Get(0).([]Notification)
	return out, args.Error(1)
}

func (m *mockStore) CountUnread(ctx context.Context, audience Audience, userID string) (int64, error) {
	args := m.Called(ctx, audience, userID)
	return args.Get(0).(int64), args.Error(1)
}

func (m *mockStore) MarkRead(ctx context.Context, audience Audience, userID, id string) (bool, error) {
	args := m.Called(ctx, audience, userID, id)
	return args.Bool(0), args.Error(1)
}

func (m *mockStore) MarkAllRead(ctx context.Context, audience Audience, userID string) (int64, error) {
	args := m.Called(ctx, audience, userID)
	return args.Get(0).(int64), args.Error(1)
}

type stubUsers struct {
	users map[uuid.UUID]auth.UserSummary
	err   error
}

func (s stubUsers) LookupUsers(_ context.Context, ids []uuid.UUID) (map[uuid.UUID]auth.UserSummary, error) {
	if s.err != nil {
		return nil, s.err
	}
	out := map[uuid.UUID]auth.UserSummary{}
	for _, id := range ids {
		if u, ok := s.users[id]; ok {
			out[id] = u
		}
	}
	return out, nil
}
