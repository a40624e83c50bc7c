// Package memory keeps activities and users in process memory. A Store is
// constructed once and handed to the services by reference.
package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"example.com/fitness/internal/domain"
	"example.com/fitness/internal/identity"
)

// Store implements domain.ActivityStore and identity.CredentialStore.
type Store struct {
	mu         sync.RWMutex
	activities map[int64]domain.Activity
	users      map[string]identity.User
	nextID     int64
	nextUserID int64
}

// NewStore constructs an empty Store.
func NewStore() *Store {
	return &Store{
		activities: make(map[int64]domain.Activity),
		users:      make(map[string]identity.User),
	}
}

// Add implements domain.ActivityStore.
func (s *Store) Add(ctx context.Context, activity domain.Activity) (domain.Activity, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.nextID++
	activity.ID = s.nextID
	s.activities[activity.ID] = activity
	return activity, nil
}

// Get implements domain.ActivityStore.
func (s *Store) Get(ctx context.Context, ownerID, id int64) (*domain.Activity, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	activity, ok := s.activities[id]
	if !ok || activity.OwnerID != ownerID {
		return nil, nil
	}
	return &activity, nil
}

// List implements domain.ActivityStore.
func (s *Store) List(ctx context.Context, ownerID int64, filter domain.ActivityFilter) ([]domain.Activity, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]domain.Activity, 0)
	for _, activity := range s.activities {
		if activity.OwnerID == ownerID && filter.Matches(activity) {
			out = append(out, activity)
		}
	}

	sort.Slice(out, func(i, j int) bool {
		if !out[i].Date.Equal(out[j].Date) {
			return out[i].Date.After(out[j].Date)
		}
		return out[i].ID > out[j].ID
	})
	return out, nil
}

// Update implements domain.ActivityStore.
func (s *Store) Update(ctx context.Context, activity domain.Activity) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	existing, ok := s.activities[activity.ID]
	if !ok || existing.OwnerID != activity.OwnerID {
		return false, nil
	}
	existing.Type = activity.Type
	existing.DurationMinutes = activity.DurationMinutes
	existing.Date = activity.Date
	s.activities[activity.ID] = existing
	return true, nil
}

// Delete implements domain.ActivityStore.
func (s *Store) Delete(ctx context.Context, ownerID, id int64) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	existing, ok := s.activities[id]
	if !ok || existing.OwnerID != ownerID {
		return false, nil
	}
	delete(s.activities, id)
	return true, nil
}

// DistinctTypes implements domain.ActivityStore.
func (s *Store) DistinctTypes(ctx context.Context, ownerID int64) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	seen := make(map[string]struct{})
	types := make([]string, 0)
	for _, activity := range s.activities {
		if activity.OwnerID != ownerID {
			continue
		}
		if _, dup := seen[activity.Type]; dup {
			continue
		}
		seen[activity.Type] = struct{}{}
		types = append(types, activity.Type)
	}
	sort.Strings(types)
	return types, nil
}

// CreateUser implements identity.CredentialStore.
func (s *Store) CreateUser(ctx context.Context, email string, passwordHash []byte) (*identity.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.users[email]; exists {
		return nil, identity.ErrEmailTaken
	}
	s.nextUserID++
	user := identity.User{
		ID:           s.nextUserID,
		Email:        email,
		PasswordHash: append([]byte(nil), passwordHash...),
		CreatedAt:    time.Now().UTC(),
	}
	s.users[email] = user
	return &user, nil
}

// FindByEmail implements identity.CredentialStore.
func (s *Store) FindByEmail(ctx context.Context, email string) (*identity.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	user, ok := s.users[email]
	if !ok {
		return nil, nil
	}
	return &user, nil
}
