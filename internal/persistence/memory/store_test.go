package memory

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"example.com/fitness/internal/domain"
	"example.com/fitness/internal/identity"
	"example.com/fitness/internal/persistence/storetest"
)

func TestActivityStoreContract(t *testing.T) {
	storetest.RunActivityStore(t, func(t *testing.T) domain.ActivityStore {
		return NewStore()
	})
}

func TestCredentialStoreContract(t *testing.T) {
	storetest.RunCredentialStore(t, func(t *testing.T) identity.CredentialStore {
		return NewStore()
	})
}

func TestConcurrentAddsGetDistinctIDs(t *testing.T) {
	store := NewStore()
	ctx := context.Background()

	var wg sync.WaitGroup
	ids := make(chan int64, 50)
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			a, err := store.Add(ctx, domain.Activity{OwnerID: 1, Type: "Run", DurationMinutes: 5, Date: time.Now()})
			if err == nil {
				ids <- a.ID
			}
		}()
	}
	wg.Wait()
	close(ids)

	seen := map[int64]struct{}{}
	for id := range ids {
		seen[id] = struct{}{}
	}
	require.Len(t, seen, 50)
}
