package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"example.com/fitness/internal/domain"
)

const activityColumns = `id, user_id, type, duration_minutes, date`

// Add implements domain.ActivityStore.
func (s *Store) Add(ctx context.Context, activity domain.Activity) (domain.Activity, error) {
	res, err := s.db.ExecContext(ctx,
		`INSERT INTO activities (user_id, type, duration_minutes, date) VALUES (?, ?, ?, ?)`,
		activity.OwnerID, activity.Type, activity.DurationMinutes, formatTime(activity.Date),
	)
	if err != nil {
		return domain.Activity{}, fmt.Errorf("insert activity: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return domain.Activity{}, fmt.Errorf("insert activity id: %w", err)
	}
	activity.ID = id
	activity.Date = activity.Date.UTC()
	return activity, nil
}

// Get implements domain.ActivityStore.
func (s *Store) Get(ctx context.Context, ownerID, id int64) (*domain.Activity, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+activityColumns+` FROM activities WHERE id = ? AND user_id = ?`, id, ownerID)
	activity, err := scanActivity(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get activity %d: %w", id, err)
	}
	return &activity, nil
}

// List implements domain.ActivityStore.
func (s *Store) List(ctx context.Context, ownerID int64, filter domain.ActivityFilter) ([]domain.Activity, error) {
	var b strings.Builder
	b.WriteString(`SELECT ` + activityColumns + ` FROM activities WHERE user_id = ?`)
	args := []interface{}{ownerID}

	if filter.Type != "" {
		b.WriteString(` AND type = ?`)
		args = append(args, filter.Type)
	}
	if filter.From != nil {
		b.WriteString(` AND date >= ?`)
		args = append(args, formatTime(*filter.From))
	}
	if filter.To != nil {
		b.WriteString(` AND date <= ?`)
		args = append(args, formatTime(*filter.To))
	}
	b.WriteString(` ORDER BY date DESC, id DESC`)

	rows, err := s.db.QueryContext(ctx, b.String(), args...)
	if err != nil {
		return nil, fmt.Errorf("list activities: %w", err)
	}
	defer rows.Close()

	out := make([]domain.Activity, 0)
	for rows.Next() {
		activity, err := scanActivity(rows)
		if err != nil {
			return nil, fmt.Errorf("scan activity: %w", err)
		}
		out = append(out, activity)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate activities: %w", err)
	}
	return out, nil
}

// Update implements domain.ActivityStore.
func (s *Store) Update(ctx context.Context, activity domain.Activity) (bool, error) {
	res, err := s.db.ExecContext(ctx,
		`UPDATE activities SET type = ?, duration_minutes = ?, date = ? WHERE id = ? AND user_id = ?`,
		activity.Type, activity.DurationMinutes, formatTime(activity.Date), activity.ID, activity.OwnerID,
	)
	if err != nil {
		return false, fmt.Errorf("update activity %d: %w", activity.ID, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("update activity %d: %w", activity.ID, err)
	}
	return n > 0, nil
}

// Delete implements domain.ActivityStore.
func (s *Store) Delete(ctx context.Context, ownerID, id int64) (bool, error) {
	res, err := s.db.ExecContext(ctx, `DELETE FROM activities WHERE id = ? AND user_id = ?`, id, ownerID)
	if err != nil {
		return false, fmt.Errorf("delete activity %d: %w", id, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("delete activity %d: %w", id, err)
	}
	return n > 0, nil
}

// DistinctTypes implements domain.ActivityStore.
func (s *Store) DistinctTypes(ctx context.Context, ownerID int64) ([]string, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT DISTINCT type FROM activities WHERE user_id = ? AND trim(type) <> '' ORDER BY type`, ownerID)
	if err != nil {
		return nil, fmt.Errorf("distinct types: %w", err)
	}
	defer rows.Close()

	types := make([]string, 0)
	for rows.Next() {
		var t string
		if err := rows.Scan(&t); err != nil {
			return nil, fmt.Errorf("scan type: %w", err)
		}
		types = append(types, t)
	}
	return types, rows.Err()
}

type scanner interface {
	Scan(dest ...interface{}) error
}

func scanActivity(row scanner) (domain.Activity, error) {
	var a domain.Activity
	var date string
	if err := row.Scan(&a.ID, &a.OwnerID, &a.Type, &a.DurationMinutes, &date); err != nil {
		return domain.Activity{}, err
	}
	parsed, err := parseTime(date)
	if err != nil {
		return domain.Activity{}, fmt.Errorf("parse date %q: %w", date, err)
	}
	a.Date = parsed
	return a, nil
}
