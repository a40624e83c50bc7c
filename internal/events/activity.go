// Package events defines activity event payloads published through the outbox.
package events

import "time"

// Event types recorded in the outbox.
const (
	TypeActivityCreated = "activity.created"
	TypeActivityUpdated = "activity.updated"
	TypeActivityDeleted = "activity.deleted"
)

// ActivityRecorded is emitted when an activity is created or replaced.
type ActivityRecorded struct {
	ActivityID      int64     `json:"activity_id"`
	OwnerID         int64     `json:"owner_id"`
	Type            string    `json:"type"`
	DurationMinutes int       `json:"duration_minutes"`
	Date            time.Time `json:"date"`
	Version         string    `json:"version"`
}

// ActivityDeleted is emitted when an activity is removed.
type ActivityDeleted struct {
	ActivityID int64     `json:"activity_id"`
	OwnerID    int64     `json:"owner_id"`
	DeletedAt  time.Time `json:"deleted_at"`
}
