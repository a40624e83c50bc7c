// Package storetest holds the behaviour every store implementation must share.
package storetest

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"example.com/fitness/internal/domain"
	"example.com/fitness/internal/identity"
)

// Day returns midnight UTC of the given date plus an optional hour offset.
func Day(year int, month time.Month, day, hour int) time.Time {
	return time.Date(year, month, day, hour, 0, 0, 0, time.UTC)
}

// SeedScenario adds the three reference activities for owner.
func SeedScenario(t *testing.T, store domain.ActivityStore, owner int64) []domain.Activity {
	t.Helper()
	ctx := context.Background()
	seed := []domain.Activity{
		{OwnerID: owner, Type: "Run", DurationMinutes: 30, Date: Day(2026, time.February, 1, 7)},
		{OwnerID: owner, Type: "Run", DurationMinutes: 20, Date: Day(2026, time.February, 3, 7)},
		{OwnerID: owner, Type: "Swim", DurationMinutes: 45, Date: Day(2026, time.February, 2, 18)},
	}
	out := make([]domain.Activity, 0, len(seed))
	for _, a := range seed {
		created, err := store.Add(ctx, a)
		require.NoError(t, err)
		out = append(out, created)
	}
	return out
}

// RunActivityStore exercises the domain.ActivityStore contract against fresh stores.
func RunActivityStore(t *testing.T, newStore func(t *testing.T) domain.ActivityStore) {
	t.Run("AddThenGetRoundTrips", func(t *testing.T) {
		store := newStore(t)
		ctx := context.Background()
		in := domain.Activity{OwnerID: 1, Type: "Yoga", DurationMinutes: 60, Date: Day(2026, time.March, 4, 6).Add(123456 * time.Microsecond)}

		created, err := store.Add(ctx, in)
		require.NoError(t, err)
		require.NotZero(t, created.ID)

		got, err := store.Get(ctx, 1, created.ID)
		require.NoError(t, err)
		require.NotNil(t, got)
		require.Equal(t, created.ID, got.ID)
		require.Equal(t, in.OwnerID, got.OwnerID)
		require.Equal(t, in.Type, got.Type)
		require.Equal(t, in.DurationMinutes, got.DurationMinutes)
		require.True(t, in.Date.Equal(got.Date), "date %v != %v", got.Date, in.Date)
	})

	t.Run("AssignsUniqueIDs", func(t *testing.T) {
		store := newStore(t)
		seeded := SeedScenario(t, store, 1)
		ids := map[int64]struct{}{}
		for _, a := range seeded {
			ids[a.ID] = struct{}{}
		}
		require.Len(t, ids, len(seeded))
	})

	t.Run("GetHidesForeignRecords", func(t *testing.T) {
		store := newStore(t)
		seeded := SeedScenario(t, store, 1)

		got, err := store.Get(context.Background(), 2, seeded[0].ID)
		require.NoError(t, err)
		require.Nil(t, got)

		missing, err := store.Get(context.Background(), 1, 999999)
		require.NoError(t, err)
		require.Nil(t, missing)
	})

	t.Run("ListFiltersByTypeNewestFirst", func(t *testing.T) {
		store := newStore(t)
		SeedScenario(t, store, 1)
		SeedScenario(t, store, 2)

		runs, err := store.List(context.Background(), 1, domain.ActivityFilter{Type: "Run"})
		require.NoError(t, err)
		require.Len(t, runs, 2)
		require.True(t, runs[0].Date.Equal(Day(2026, time.February, 3, 7)))
		require.True(t, runs[1].Date.Equal(Day(2026, time.February, 1, 7)))
		for _, a := range runs {
			require.Equal(t, int64(1), a.OwnerID)
		}
	})

	t.Run("ListAppliesInclusiveBounds", func(t *testing.T) {
		store := newStore(t)
		SeedScenario(t, store, 1)

		from := Day(2026, time.February, 2, 0)
		to := Day(2026, time.February, 2, 18)
		got, err := store.List(context.Background(), 1, domain.ActivityFilter{From: &from, To: &to})
		require.NoError(t, err)
		require.Len(t, got, 1)
		require.Equal(t, "Swim", got[0].Type)

		all, err := store.List(context.Background(), 1, domain.ActivityFilter{})
		require.NoError(t, err)
		require.Len(t, all, 3)
		require.Equal(t, []string{"Run", "Swim", "Run"}, []string{all[0].Type, all[1].Type, all[2].Type})
	})

	t.Run("ListBreaksDateTiesByIDDescending", func(t *testing.T) {
		store := newStore(t)
		ctx := context.Background()
		same := Day(2026, time.February, 4, 12)

		first, err := store.Add(ctx, domain.Activity{OwnerID: 1, Type: "Run", DurationMinutes: 10, Date: same})
		require.NoError(t, err)
		second, err := store.Add(ctx, domain.Activity{OwnerID: 1, Type: "Swim", DurationMinutes: 20, Date: same})
		require.NoError(t, err)
		third, err := store.Add(ctx, domain.Activity{OwnerID: 1, Type: "Row", DurationMinutes: 30, Date: same})
		require.NoError(t, err)

		got, err := store.List(ctx, 1, domain.ActivityFilter{})
		require.NoError(t, err)
		require.Len(t, got, 3)
		require.Equal(t, []int64{third.ID, second.ID, first.ID}, []int64{got[0].ID, got[1].ID, got[2].ID})
	})

	t.Run("UpdateReplacesOwnedRecordOnly", func(t *testing.T) {
		store := newStore(t)
		ctx := context.Background()
		seeded := SeedScenario(t, store, 1)
		target := seeded[2]

		ok, err := store.Update(ctx, domain.Activity{ID: target.ID, OwnerID: 2, Type: "Hack", DurationMinutes: 1, Date: target.Date})
		require.NoError(t, err)
		require.False(t, ok)

		ok, err = store.Update(ctx, domain.Activity{ID: 999999, OwnerID: 1, Type: "Hack", DurationMinutes: 1, Date: target.Date})
		require.NoError(t, err)
		require.False(t, ok)

		unchanged, err := store.Get(ctx, 1, target.ID)
		require.NoError(t, err)
		require.Equal(t, "Swim", unchanged.Type)

		newDate := Day(2026, time.February, 5, 9)
		ok, err = store.Update(ctx, domain.Activity{ID: target.ID, OwnerID: 1, Type: "Bike", DurationMinutes: 90, Date: newDate})
		require.NoError(t, err)
		require.True(t, ok)

		updated, err := store.Get(ctx, 1, target.ID)
		require.NoError(t, err)
		require.Equal(t, "Bike", updated.Type)
		require.Equal(t, 90, updated.DurationMinutes)
		require.True(t, newDate.Equal(updated.Date))
		require.Equal(t, int64(1), updated.OwnerID)
	})

	t.Run("DeleteIsOwnerScopedAndReportsSecondDelete", func(t *testing.T) {
		store := newStore(t)
		ctx := context.Background()
		seeded := SeedScenario(t, store, 1)

		ok, err := store.Delete(ctx, 2, seeded[0].ID)
		require.NoError(t, err)
		require.False(t, ok)

		ok, err = store.Delete(ctx, 1, seeded[0].ID)
		require.NoError(t, err)
		require.True(t, ok)

		ok, err = store.Delete(ctx, 1, seeded[0].ID)
		require.NoError(t, err)
		require.False(t, ok)

		remaining, err := store.List(ctx, 1, domain.ActivityFilter{})
		require.NoError(t, err)
		require.Len(t, remaining, 2)
	})

	t.Run("DistinctTypesPerOwner", func(t *testing.T) {
		store := newStore(t)
		ctx := context.Background()
		SeedScenario(t, store, 1)
		_, err := store.Add(ctx, domain.Activity{OwnerID: 2, Type: "Row", DurationMinutes: 10, Date: Day(2026, time.February, 1, 0)})
		require.NoError(t, err)

		types, err := store.DistinctTypes(ctx, 1)
		require.NoError(t, err)
		require.ElementsMatch(t, []string{"Run", "Swim"}, types)
	})
}

// RunCredentialStore exercises the identity.CredentialStore contract.
func RunCredentialStore(t *testing.T, newStore func(t *testing.T) identity.CredentialStore) {
	t.Run("CreateThenFind", func(t *testing.T) {
		store := newStore(t)
		ctx := context.Background()

		created, err := store.CreateUser(ctx, "runner@example.com", []byte("hash"))
		require.NoError(t, err)
		require.NotZero(t, created.ID)

		found, err := store.FindByEmail(ctx, "runner@example.com")
		require.NoError(t, err)
		require.NotNil(t, found)
		require.Equal(t, created.ID, found.ID)
		require.Equal(t, []byte("hash"), found.PasswordHash)
	})

	t.Run("DuplicateEmailRejected", func(t *testing.T) {
		store := newStore(t)
		ctx := context.Background()

		_, err := store.CreateUser(ctx, "dup@example.com", []byte("a"))
		require.NoError(t, err)
		_, err = store.CreateUser(ctx, "dup@example.com", []byte("b"))
		require.ErrorIs(t, err, identity.ErrEmailTaken)
	})

	t.Run("UnknownEmailReturnsNil", func(t *testing.T) {
		store := newStore(t)
		found, err := store.FindByEmail(context.Background(), "nobody@example.com")
		require.NoError(t, err)
		require.Nil(t, found)
	})
}
