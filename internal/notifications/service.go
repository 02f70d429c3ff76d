package notifications

import (
	"context"

	"wanderly/internal/shared/apperrors"

	"github.com/google/uuid"
)

const defaultListLimit = 50

type Service interface {
	List(ctx context.Context, audience Audience, userID uuid.UUID, query ListQuery) (*ListResponse, error)
	UnreadCount(ctx context.Context, audience Audience, userID uuid.UUID) (int64, error)
	MarkRead(ctx context.Context, audience Audience, userID uuid.UUID, notificationID string) error
	MarkAllRead(ctx context.Context, userID uuid.UUID) (int64, error)
}

type service struct {
	store Store
}

func NewService(store Store) Service {
	return &service{store: store}
}

func (s *service) List(ctx context.Context, audience Audience, userID uuid.UUID, query ListQuery) (*ListResponse, error) {
	if query.Limit <= 0 {
		query.Limit = defaultListLimit
	}
	if query.Offset < 0 {
		query.Offset = 0
	}

	items, err := s.store.List(ctx, audience, userID.String(), query.Limit, query.Offset)
	if err != nil {
		return nil, err
	}
	unread, err := s.store.CountUnread(ctx, audience, userID.String())
	if err != nil {
		return nil, err
	}
	if items == nil {
		items = []Notification{}
	}

	return &ListResponse{
		Notifications: items,
		UnreadCount:   unread,
		Limit:         query.Limit,
		Offset:        query.Offset,
	}, nil
}

func (s *service) UnreadCount(ctx context.Context, audience Audience, userID uuid.UUID) (int64, error) {
	return s.store.CountUnread(ctx, audience, userID.String())
}

// MarkRead only touches the caller's own notification; someone else's id
// reads as not found.
func (s *service) MarkRead(ctx context.Context, audience Audience, userID uuid.UUID, notificationID string) error {
	if _, err := uuid.Parse(notificationID); err != nil {
		return apperrors.ErrInvalidInput.WithMessage("Invalid notification ID format")
	}
	ok, err := s.store.MarkRead(ctx, audience, userID.String(), notificationID)
	if err != nil {
		return err
	}
	if !ok {
		return apperrors.ErrNotificationNotFound
	}
	return nil
}

func (s *service) MarkAllRead(ctx context.Context, userID uuid.UUID) (int64, error) {
	return s.store.MarkAllRead(ctx, AudienceUser, userID.String())
}
