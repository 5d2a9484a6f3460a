package tokenstore

import (
	"context"
	"testing"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func newGormStore(t *testing.T) *GormStore {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { sqlDB.Close() })

	s, err := NewGormStore(db)
	require.NoError(t, err)
	return s
}

func TestStores(t *testing.T) {
	t.Parallel()

	stores := map[string]func(t *testing.T) Store{
		"gorm":   func(t *testing.T) Store { return newGormStore(t) },
		"memory": func(*testing.T) Store { return NewMemoryStore() },
	}
	for name, mk := range stores {
		t.Run(name, func(t *testing.T) {
			t.Parallel()
			s := mk(t)
			ctx := context.Background()

			tok, err := s.Load(ctx, "visitor-1")
			require.NoError(t, err)
			assert.Empty(t, tok)

			require.NoError(t, s.Save(ctx, "visitor-1", "t1"))
			require.NoError(t, s.Save(ctx, "visitor-1", "t2"))
			require.NoError(t, s.Save(ctx, "visitor-2", "other"))

			tok, err = s.Load(ctx, "visitor-1")
			require.NoError(t, err)
			assert.Equal(t, "t2", tok)

			require.NoError(t, s.Delete(ctx, "visitor-1"))
			tok, err = s.Load(ctx, "visitor-1")
			require.NoError(t, err)
			assert.Empty(t, tok)

			tok, err = s.Load(ctx, "visitor-2")
			require.NoError(t, err)
			assert.Equal(t, "other", tok)
		})
	}
}

func TestSlot(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	store := NewMemoryStore()
	slot := Scope(store, "default")

	require.NoError(t, slot.Save(ctx, "abc"))
	tok, _ := store.Load(ctx, "default")
	assert.Equal(t, "abc", tok)

	require.NoError(t, slot.Clear(ctx))
	tok, err := slot.Load(ctx)
	require.NoError(t, err)
	assert.Empty(t, tok)
}

func TestPurge(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	s := newGormStore(t)

	require.NoError(t, s.Save(ctx, "old", "t"))
	require.NoError(t, s.DB.Model(&StoredToken{}).Where("owner = ?", "old").
		Update("updated_at", time.Now().UTC().Add(-48*time.Hour)).Error)
	require.NoError(t, s.Save(ctx, "fresh", "t"))

	n, err := s.Purge(ctx, time.Now().UTC().Add(-24*time.Hour))
	require.NoError(t, err)
	assert.EqualValues(t, 1, n)

	tok, _ := s.Load(ctx, "fresh")
	assert.Equal(t, "t", tok)
}
