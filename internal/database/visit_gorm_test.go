package database

import (
	"context"
	"path/filepath"
	"sync"
	"testing"

	"github.com/MarawanEldeib/portfolio-website-sub000/internal/config"
	"github.com/MarawanEldeib/portfolio-website-sub000/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestGormStore(t *testing.T) *GormVisitStore {
	t.Helper()

	cfg := &config.Config{}
	cfg.Server.Mode = "release"
	cfg.Visits.Driver = "sqlite"
	cfg.Database.SQLitePath = filepath.Join(t.TempDir(), "visits.db")

	db, err := Connect(cfg)
	require.NoError(t, err)

	store := NewGormVisitStore(db)
	t.Cleanup(func() { store.Close() })
	return store
}

func TestGormVisitStore_RecordVisit(t *testing.T) {
	store := newTestGormStore(t)
	ctx := context.Background()

	for range 3 {
		require.NoError(t, store.RecordVisit(ctx, "2024-01-01", "/", models.DirectReferrer))
	}
	require.NoError(t, store.RecordVisit(ctx, "2024-01-01", "/", "https://google.com"))

	all, err := store.GetAll(ctx)
	require.NoError(t, err)

	record := all["2024-01-01"]
	require.NotNil(t, record)
	assert.Equal(t, 4, record.Count)
	hits, _ := record.Paths.Get("/")
	assert.Equal(t, 4, hits)
	assert.Equal(t, 1, record.Referrers.Len())
	google, _ := record.Referrers.Get("https://google.com")
	assert.Equal(t, 1, google)
}

func TestGormVisitStore_KeepsFirstSeenOrder(t *testing.T) {
	store := newTestGormStore(t)
	ctx := context.Background()

	for _, path := range []string{"/c", "/a", "/b", "/a"} {
		require.NoError(t, store.RecordVisit(ctx, "2024-01-01", path, ""))
	}

	all, err := store.GetAll(ctx)
	require.NoError(t, err)

	var keys []string
	for pair := all["2024-01-01"].Paths.Oldest(); pair != nil; pair = pair.Next() {
		keys = append(keys, pair.Key)
	}
	assert.Equal(t, []string{"/c", "/a", "/b"}, keys)
}

func TestGormVisitStore_ConcurrentWrites(t *testing.T) {
	store := newTestGormStore(t)
	ctx := context.Background()

	const writers = 20
	var wg sync.WaitGroup
	for i := 0; i < writers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			assert.NoError(t, store.RecordVisit(ctx, "2024-01-01", "/", ""))
		}()
	}
	wg.Wait()

	all, err := store.GetAll(ctx)
	require.NoError(t, err)
	assert.Equal(t, writers, all["2024-01-01"].Count)
}

func TestGormVisitStore_Prune(t *testing.T) {
	store := newTestGormStore(t)
	ctx := context.Background()

	require.NoError(t, store.RecordVisit(ctx, "2023-12-31", "/", "https://old.example.com"))
	require.NoError(t, store.RecordVisit(ctx, "2024-01-01", "/", ""))

	removed, err := store.Prune(ctx, "2024-01-01")
	require.NoError(t, err)
	assert.Equal(t, 1, removed)

	all, err := store.GetAll(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 1)
	assert.Contains(t, all, "2024-01-01")
}
