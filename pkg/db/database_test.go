package db

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIsPostgres(t *testing.T) {
	t.Parallel()

	tests := []struct {
		dsn  string
		want bool
	}{
		{"postgres://u:p@localhost:5432/shop?sslmode=disable", true},
		{"postgresql://localhost/shop", true},
		{"host=localhost user=shop dbname=shop", true},
		{"storefront.db", false},
		{"file::memory:?cache=shared", false},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, IsPostgres(tt.dsn), tt.dsn)
	}
}

func TestOpenSQLite(t *testing.T) {
	t.Parallel()

	gdb, err := Open(context.Background(), filepath.Join(t.TempDir(), "tokens.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = Close(gdb) })

	var one int
	require.NoError(t, gdb.Raw("select 1").Scan(&one).Error)
	assert.Equal(t, 1, one)
}

func TestOpenEmptyDSN(t *testing.T) {
	t.Parallel()

	_, err := Open(context.Background(), "")
	assert.Error(t, err)
}
