package auth

import (
	"context"

	"github.com/google/uuid"
)

// UserSummary is the contact snapshot attached to notifications
type UserSummary struct {
	ID    uuid.UUID `json:"id"`
	Name  string    `json:"name"`
	Email string    `json:"email"`
	Phone string    `json:"phone,omitempty"`
}

// UserDirectory resolves user contact details for other packages without
// exposing the auth repository.
type UserDirectory struct {
	repo Repository
}

func NewUserDirectory(repo Repository) *UserDirectory {
	return &UserDirectory{repo: repo}
}

// LookupUsers returns summaries keyed by user id. Unknown ids are omitted.
func (d *UserDirectory) LookupUsers(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]UserSummary, error) {
	raw := make([]string, 0, len(ids))
	for _, id := range ids {
		raw = append(raw, id.String())
	}

	found, err := d.repo.GetUsersByIDs(ctx, raw)
	if err != nil {
		return nil, err
	}

	result := make(map[uuid.UUID]UserSummary, len(found))
	for _, u := range found {
		result[u.ID] = UserSummary{
			ID:    u.ID,
			Name:  u.FullName(),
			Email: u.Email,
			Phone: u.Phone,
		}
	}
	return result, nil
}
