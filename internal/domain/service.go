// Package domain defines the business logic for the fitness tracker.
package domain

import (
	"context"
	"slices"
	"strings"

	"example.com/fitness/internal/observability"
)

// ActivityStore captures persistence operations. Every method is scoped by
// owner; records owned by someone else behave exactly like absent records.
type ActivityStore interface {
	Add(ctx context.Context, activity Activity) (Activity, error)
	Get(ctx context.Context, ownerID, id int64) (*Activity, error)
	List(ctx context.Context, ownerID int64, filter ActivityFilter) ([]Activity, error)
	Update(ctx context.Context, activity Activity) (bool, error)
	Delete(ctx context.Context, ownerID, id int64) (bool, error)
	DistinctTypes(ctx context.Context, ownerID int64) ([]string, error)
}

// Service orchestrates activity workflows on top of an ActivityStore.
type Service struct {
	store ActivityStore
}

// NewService constructs a Service.
func NewService(store ActivityStore) *Service {
	return &Service{store: store}
}

// Status reports liveness of the activity service.
func (s *Service) Status() string {
	return "Fitness service is working"
}

// AddActivity validates the input and stores a new activity for the owner.
func (s *Service) AddActivity(ctx context.Context, ownerID int64, input ActivityInput) (*Activity, error) {
	if err := Validate(input); err != nil {
		return nil, err
	}

	created, err := s.store.Add(ctx, Activity{
		OwnerID:         ownerID,
		Type:            input.Type,
		DurationMinutes: input.DurationMinutes,
		Date:            StoredDate(input.Date),
	})
	if err != nil {
		return nil, storageErr("add", err)
	}
	observability.RecordActivityWrite(observability.OperationCreate)
	return &created, nil
}

// GetActivity fetches by ID.
func (s *Service) GetActivity(ctx context.Context, ownerID, id int64) (*Activity, error) {
	activity, err := s.store.Get(ctx, ownerID, id)
	if err != nil {
		return nil, storageErr("get", err)
	}
	if activity == nil {
		return nil, ErrActivityNotFound
	}
	return activity, nil
}

// ListActivities returns the owner's activities newest first.
func (s *Service) ListActivities(ctx context.Context, ownerID int64, filter ActivityFilter) ([]Activity, error) {
	filter.Type = strings.TrimSpace(filter.Type)
	activities, err := s.store.List(ctx, ownerID, filter.Normalized())
	if err != nil {
		return nil, storageErr("list", err)
	}
	return activities, nil
}

// UpdateActivity replaces type, duration and date. It reports false when the
// activity is absent or not owned.
func (s *Service) UpdateActivity(ctx context.Context, ownerID, id int64, input ActivityInput) (bool, error) {
	if err := Validate(input); err != nil {
		return false, err
	}

	updated, err := s.store.Update(ctx, Activity{
		ID:              id,
		OwnerID:         ownerID,
		Type:            input.Type,
		DurationMinutes: input.DurationMinutes,
		Date:            StoredDate(input.Date),
	})
	if err != nil {
		return false, storageErr("update", err)
	}
	if updated {
		observability.RecordActivityWrite(observability.OperationUpdate)
	}
	return updated, nil
}

// DeleteActivity removes an owned activity. A second delete of the same id reports false.
func (s *Service) DeleteActivity(ctx context.Context, ownerID, id int64) (bool, error) {
	deleted, err := s.store.Delete(ctx, ownerID, id)
	if err != nil {
		return false, storageErr("delete", err)
	}
	if deleted {
		observability.RecordActivityWrite(observability.OperationDelete)
	}
	return deleted, nil
}

// DistinctTypes lists the owner's non-blank activity types, sorted and de-duplicated.
func (s *Service) DistinctTypes(ctx context.Context, ownerID int64) ([]string, error) {
	raw, err := s.store.DistinctTypes(ctx, ownerID)
	if err != nil {
		return nil, storageErr("distinct types", err)
	}

	types := make([]string, 0, len(raw))
	for _, t := range raw {
		if strings.TrimSpace(t) != "" {
			types = append(types, t)
		}
	}
	slices.Sort(types)
	return slices.Compact(types), nil
}
