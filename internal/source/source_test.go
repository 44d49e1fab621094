package source

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/sidosera/ttl/internal/executor"
)

func testCtx(t *testing.T) context.Context {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	t.Cleanup(cancel)
	return ctx
}

func TestSQLiteFileSourcePersists(t *testing.T) {
	ctx := testCtx(t)
	path := filepath.Join(t.TempDir(), "logs.db")
	cfg := Config{Name: "logs", Driver: DriverSQLite, DSN: path}

	src, err := Open(ctx, cfg, nil)
	require.NoError(t, err)
	require.Equal(t, "logs", src.Schema())
	_, err = src.Query(ctx, "CREATE TABLE logs.events (id INTEGER PRIMARY KEY, msg TEXT); INSERT INTO logs.events (msg) VALUES ('boot')")
	require.NoError(t, err)
	require.NoError(t, src.Close())

	src, err = Open(ctx, cfg, nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = src.Close() })
	df, err := src.Query(ctx, "SELECT id, msg FROM logs.events")
	require.NoError(t, err)
	require.Equal(t, 1, df.Len())
	require.Equal(t, []string{"id", "msg"}, df.Columns)
	require.Equal(t, int64(1), df.Value(0, "id"))
	require.Equal(t, "boot", df.String(0, "msg"))
}

func TestSQLiteSourceRollsBackBatch(t *testing.T) {
	ctx := testCtx(t)
	src, err := Open(ctx, Config{Name: "scratch", Driver: DriverSQLite}, nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = src.Close() })

	_, err = src.Query(ctx, "CREATE TABLE scratch.t (k TEXT PRIMARY KEY)")
	require.NoError(t, err)
	_, err = src.Query(ctx, "INSERT INTO scratch.t VALUES ('a'); INSERT INTO scratch.t VALUES ('a')")
	var ee *executor.EngineError
	require.ErrorAs(t, err, &ee)
	require.Equal(t, "scratch", ee.Schema)

	df, err := src.Query(ctx, "SELECT count(*) AS n FROM scratch.t")
	require.NoError(t, err)
	require.Equal(t, int64(0), df.Value(0, "n"))
}

func TestDuckDBSource(t *testing.T) {
	ctx := testCtx(t)
	src, err := Open(ctx, Config{Name: "duck", Driver: DriverDuckDB}, nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = src.Close() })

	_, err = src.Query(ctx, "CREATE TABLE duck.t (x BIGINT, s VARCHAR); INSERT INTO duck.t VALUES (1, 'one'), (2, 'two')")
	require.NoError(t, err)

	df, err := src.Query(ctx, "SELECT x, s FROM duck.t ORDER BY x")
	require.NoError(t, err)
	require.Equal(t, 2, df.Len())
	require.Equal(t, int64(2), df.Value(1, "x"))
	require.Equal(t, "two", df.String(1, "s"))

	_, err = src.Query(ctx, "SELECT * FROM duck.missing")
	require.Error(t, err)
}

func TestOpenRejectsBadConfig(t *testing.T) {
	ctx := testCtx(t)
	for _, cfg := range []Config{
		{Name: "catalog", Driver: DriverSQLite},
		{Name: "bad name", Driver: DriverSQLite},
		{Name: "ok", Driver: "postgres"},
	} {
		_, err := Open(ctx, cfg, nil)
		require.Error(t, err, cfg)
	}
}

func TestOpenAllClosesOnFailure(t *testing.T) {
	ctx := testCtx(t)
	_, err := OpenAll(ctx, []Config{
		{Name: "a", Driver: DriverSQLite},
		{Name: "b", Driver: "nope"},
	}, nil)
	require.Error(t, err)

	srcs, err := OpenAll(ctx, []Config{{Name: "a", Driver: DriverSQLite}, {Name: "b", Driver: DriverDuckDB}}, nil)
	require.NoError(t, err)
	require.Len(t, srcs, 2)
	for _, s := range srcs {
		require.NoError(t, s.Close())
	}
}
