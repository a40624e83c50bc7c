package domain

import (
	"context"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"example.com/fitness/internal/observability"
)

// UnknownType is the bucket for activities recorded without a type.
const UnknownType = "Unknown"

// StatsQuery selects the window for a summary. EndDate covers its whole calendar day.
type StatsQuery struct {
	StartDate *time.Time
	EndDate   *time.Time
}

// StatsSummary aggregates the activities selected by a StatsQuery. It is
// recomputed on every request and never stored.
type StatsSummary struct {
	TotalMinutes           int
	ActivityCount          int
	AverageDurationMinutes float64
	MinutesByType          map[string]int
	StartDate              *time.Time
	EndDate                *time.Time
}

// Validate rejects an end date that falls on an earlier calendar day than the start date.
func (q StatsQuery) Validate() error {
	if q.StartDate == nil || q.EndDate == nil {
		return nil
	}
	if StartOfDay(*q.EndDate).Before(StartOfDay(*q.StartDate)) {
		return &ValidationError{Field: "endDate", Message: "endDate must be on/after startDate."}
	}
	return nil
}

// GetStats summarises the owner's activities within the query window.
func (s *Service) GetStats(ctx context.Context, ownerID int64, query StatsQuery) (*StatsSummary, error) {
	if err := query.Validate(); err != nil {
		return nil, err
	}

	filter := ActivityFilter{From: query.StartDate, To: query.EndDate}
	activities, err := s.store.List(ctx, ownerID, filter.Normalized())
	if err != nil {
		return nil, storageErr("stats", err)
	}
	observability.ObserveStatsSelection(len(activities))

	summary := Summarize(activities)
	summary.StartDate = query.StartDate
	summary.EndDate = query.EndDate
	return &summary, nil
}

// Summarize computes totals, the rounded average and the per-type breakdown.
func Summarize(activities []Activity) StatsSummary {
	summary := StatsSummary{
		ActivityCount: len(activities),
		MinutesByType: make(map[string]int),
	}

	for _, a := range activities {
		summary.TotalMinutes += a.DurationMinutes
		key := a.Type
		if strings.TrimSpace(key) == "" {
			key = UnknownType
		}
		summary.MinutesByType[key] += a.DurationMinutes
	}

	summary.AverageDurationMinutes = averageMinutes(summary.TotalMinutes, summary.ActivityCount)
	return summary
}

func averageMinutes(total, count int) float64 {
	if count == 0 {
		return 0
	}
	avg := decimal.NewFromInt(int64(total)).DivRound(decimal.NewFromInt(int64(count)), 2)
	return avg.InexactFloat64()
}
