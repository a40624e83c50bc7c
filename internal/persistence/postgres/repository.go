package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"example.com/fitness/internal/domain"
	"example.com/fitness/internal/events"
)

const activityColumns = `id, user_id, type, duration_minutes, date`

// Repository provides Postgres-backed persistence for activities, users and outbox events.
type Repository struct {
	pool  *pgxpool.Pool
	topic string
}

// NewRepository constructs a Repository that records events for the given topic.
func NewRepository(pool *pgxpool.Pool, topic string) *Repository {
	return &Repository{pool: pool, topic: topic}
}

// Add persists the activity and records an activity.created outbox event inside a single transaction.
func (r *Repository) Add(ctx context.Context, activity domain.Activity) (out domain.Activity, err error) {
	tx, err := r.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return domain.Activity{}, err
	}
	defer func() {
		if err != nil {
			tx.Rollback(ctx)
		}
	}()

	activity.Date = domain.StoredDate(activity.Date)
	err = tx.QueryRow(ctx,
		`INSERT INTO activities (user_id, type, duration_minutes, date) VALUES ($1,$2,$3,$4) RETURNING id`,
		activity.OwnerID, activity.Type, activity.DurationMinutes, activity.Date,
	).Scan(&activity.ID)
	if err != nil {
		return domain.Activity{}, err
	}

	if err = r.insertOutbox(ctx, tx, activity, events.TypeActivityCreated, recordedEvent(activity)); err != nil {
		return domain.Activity{}, err
	}

	if err = tx.Commit(ctx); err != nil {
		return domain.Activity{}, err
	}
	return activity, nil
}

// Update replaces the mutable fields of an owned activity and records activity.updated.
func (r *Repository) Update(ctx context.Context, activity domain.Activity) (updated bool, err error) {
	tx, err := r.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return false, err
	}
	defer func() {
		if err != nil || !updated {
			tx.Rollback(ctx)
		}
	}()

	activity.Date = domain.StoredDate(activity.Date)
	tag, err := tx.Exec(ctx,
		`UPDATE activities SET type=$1, duration_minutes=$2, date=$3 WHERE id=$4 AND user_id=$5`,
		activity.Type, activity.DurationMinutes, activity.Date, activity.ID, activity.OwnerID,
	)
	if err != nil {
		return false, err
	}
	if tag.RowsAffected() == 0 {
		return false, nil
	}

	if err = r.insertOutbox(ctx, tx, activity, events.TypeActivityUpdated, recordedEvent(activity)); err != nil {
		return false, err
	}
	if err = tx.Commit(ctx); err != nil {
		return false, err
	}
	return true, nil
}

// Delete removes an owned activity and records activity.deleted.
func (r *Repository) Delete(ctx context.Context, ownerID, id int64) (deleted bool, err error) {
	tx, err := r.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return false, err
	}
	defer func() {
		if err != nil || !deleted {
			tx.Rollback(ctx)
		}
	}()

	tag, err := tx.Exec(ctx, `DELETE FROM activities WHERE id=$1 AND user_id=$2`, id, ownerID)
	if err != nil {
		return false, err
	}
	if tag.RowsAffected() == 0 {
		return false, nil
	}

	activity := domain.Activity{ID: id, OwnerID: ownerID}
	if err = r.insertOutbox(ctx, tx, activity, events.TypeActivityDeleted, events.ActivityDeleted{
		ActivityID: id,
		OwnerID:    ownerID,
		DeletedAt:  time.Now().UTC(),
	}); err != nil {
		return false, err
	}
	if err = tx.Commit(ctx); err != nil {
		return false, err
	}
	return true, nil
}

func (r *Repository) insertOutbox(ctx context.Context, tx pgx.Tx, activity domain.Activity, eventType string, payload interface{}) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return err
	}

	const stmt = `INSERT INTO outbox (aggregate_type, aggregate_id, event_type, topic, partition_key, payload, dedupe_key)
        VALUES ($1,$2,$3,$4,$5,$6,$7)`

	_, err = tx.Exec(ctx, stmt,
		"activity",
		activity.ID,
		eventType,
		r.topic,
		strconv.FormatInt(activity.OwnerID, 10),
		body,
		fmt.Sprintf("%d:%s:%s", activity.ID, eventType, uuid.NewString()),
	)
	return err
}

func recordedEvent(a domain.Activity) events.ActivityRecorded {
	return events.ActivityRecorded{
		ActivityID:      a.ID,
		OwnerID:         a.OwnerID,
		Type:            a.Type,
		DurationMinutes: a.DurationMinutes,
		Date:            a.Date,
		Version:         "v1",
	}
}

// Get retrieves an activity by ID for its owner.
func (r *Repository) Get(ctx context.Context, ownerID, id int64) (*domain.Activity, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+activityColumns+` FROM activities WHERE id=$1 AND user_id=$2`, id, ownerID)
	activity, err := scanActivity(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &activity, nil
}

// List returns the owner's activities ordered by date, newest first.
func (r *Repository) List(ctx context.Context, ownerID int64, filter domain.ActivityFilter) ([]domain.Activity, error) {
	var b strings.Builder
	b.WriteString(`SELECT ` + activityColumns + ` FROM activities WHERE user_id=$1`)
	args := []interface{}{ownerID}

	if filter.Type != "" {
		args = append(args, filter.Type)
		fmt.Fprintf(&b, ` AND type=$%d`, len(args))
	}
	if filter.From != nil {
		args = append(args, filter.From.UTC())
		fmt.Fprintf(&b, ` AND date >= $%d`, len(args))
	}
	if filter.To != nil {
		args = append(args, filter.To.UTC())
		fmt.Fprintf(&b, ` AND date <= $%d`, len(args))
	}
	b.WriteString(` ORDER BY date DESC, id DESC`)

	rows, err := r.pool.Query(ctx, b.String(), args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	results := make([]domain.Activity, 0)
	for rows.Next() {
		activity, err := scanActivity(rows)
		if err != nil {
			return nil, err
		}
		results = append(results, activity)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return results, nil
}

// DistinctTypes returns the owner's non-blank types.
func (r *Repository) DistinctTypes(ctx context.Context, ownerID int64) ([]string, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT DISTINCT type FROM activities WHERE user_id=$1 AND btrim(type) <> ''`, ownerID)
	if err != nil {
		return nil, err
	}
	return pgx.CollectRows(rows, pgx.RowTo[string])
}

func scanActivity(row pgx.Row) (domain.Activity, error) {
	var a domain.Activity
	if err := row.Scan(&a.ID, &a.OwnerID, &a.Type, &a.DurationMinutes, &a.Date); err != nil {
		return domain.Activity{}, err
	}
	a.Date = a.Date.UTC()
	return a, nil
}
