package domain

import "time"

// Activity is a single exercise session owned by exactly one user.
type Activity struct {
	ID              int64
	OwnerID         int64
	Type            string
	DurationMinutes int
	Date            time.Time
}

// ActivityInput carries the replaceable fields of an activity.
type ActivityInput struct {
	Type            string    `validate:"notblank,max=50"`
	DurationMinutes int       `validate:"min=1,max=1440"`
	Date            time.Time `validate:"notzero"`
}

// ActivityFilter narrows a listing. Nil bounds are open.
type ActivityFilter struct {
	Type string
	From *time.Time
	To   *time.Time
}

// Normalized returns a copy whose upper bound covers the whole calendar day of To.
func (f ActivityFilter) Normalized() ActivityFilter {
	if f.To != nil {
		end := EndOfDay(*f.To)
		f.To = &end
	}
	return f
}

// Matches reports whether the activity falls inside the filter. Stores that
// filter in memory use it; SQL stores express the same predicate in the query.
func (f ActivityFilter) Matches(a Activity) bool {
	if f.Type != "" && a.Type != f.Type {
		return false
	}
	if f.From != nil && a.Date.Before(*f.From) {
		return false
	}
	if f.To != nil && a.Date.After(*f.To) {
		return false
	}
	return true
}

// StoredDate converts t to the UTC, microsecond-precision instant every store can hold exactly.
func StoredDate(t time.Time) time.Time {
	return t.UTC().Truncate(time.Microsecond)
}

// EndOfDay returns the last representable instant of t's calendar day in t's location.
func EndOfDay(t time.Time) time.Time {
	return StartOfDay(t).AddDate(0, 0, 1).Add(-time.Nanosecond)
}

// StartOfDay truncates t to midnight in its own location.
func StartOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}
