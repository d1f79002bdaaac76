package memoryRepo

import (
	"context"

	"prepbook/database/repository"
	userRepo "prepbook/database/repository/user"
	"prepbook/models"
)

type userStore struct{ *Store }

// Users returns the store's read-only identity lookup.
func (s *Store) Users() userRepo.UserRepository { return userStore{s} }

func (r userStore) FindByID(_ context.Context, id string) (*models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &u, nil
}

func (r userStore) FindApprovedProviderByID(ctx context.Context, id string) (*models.User, error) {
	u, err := r.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if u.Role != models.RoleInterviewer || !u.Approved {
		return nil, repository.ErrNotFound
	}
	return u, nil
}

func (r userStore) FindAdminAccount(_ context.Context) (*models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if u.Role == models.RoleAdmin {
			return &u, nil
		}
	}
	return nil, repository.ErrNotFound
}
