package engine

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Konsultn-Engineering/pgquery/database"
	"github.com/Konsultn-Engineering/pgquery/params"
	"github.com/Konsultn-Engineering/pgquery/query"
)

func newTestDB(pool *stubPool, opts ...Option) (*DB, *recorder, *recorder) {
	console, fallback := &recorder{}, &recorder{}
	opts = append([]Option{WithConsole(console), WithDefaultLogger(fallback)}, opts...)
	return New(pool, opts...), console, fallback
}

// =========================================================================
// Connection Source Tests
// =========================================================================

func TestQuery_LeasedReleasedOnSuccess(t *testing.T) {
	pool := &stubPool{conn: &stubConn{id: "101", rows: rows("n", 1)}}
	db, _, _ := newTestDB(pool)

	got, err := db.Query(context.Background(), "select 1 as n", params.None)
	require.NoError(t, err)
	assert.Len(t, got, 1)

	acquired, released := pool.counts()
	assert.Equal(t, 1, acquired)
	assert.Equal(t, 1, released)
}

func TestQuery_LeasedReleasedOnFailure(t *testing.T) {
	pool := &stubPool{conn: &stubConn{id: "101", err: errBoom}}
	db, _, _ := newTestDB(pool)

	_, err := db.Query(context.Background(), "select 1", params.None)
	require.Error(t, err)

	acquired, released := pool.counts()
	assert.Equal(t, acquired, released)
	assert.Equal(t, 1, released)
}

func TestQuery_BoundConnectionNeverReleased(t *testing.T) {
	pool := &stubPool{conn: &stubConn{id: "pool"}}
	tx := &stubConn{id: "tx", rows: rows("n", 1)}
	db, _, _ := newTestDB(pool)

	ctx := database.WithConn(context.Background(), tx)
	_, err := db.Query(ctx, "select 1", params.None)
	require.NoError(t, err)

	tx.err = errBoom
	_, err = db.Query(ctx, "select 1", params.None)
	require.Error(t, err)

	acquired, released := pool.counts()
	assert.Equal(t, 0, acquired)
	assert.Equal(t, 0, released)
	assert.Len(t, tx.calls, 2)
}

func TestQuery_ConcurrentLeases(t *testing.T) {
	pool := &stubPool{conn: &stubConn{id: "1", rows: rows("n", 1)}}
	db, _, _ := newTestDB(pool)

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, err := db.Query(context.Background(), "select :i", params.Named(map[string]any{"i": i}))
			assert.NoError(t, err)
		}(i)
	}
	wg.Wait()

	acquired, released := pool.counts()
	assert.Equal(t, 20, acquired)
	assert.Equal(t, 20, released)
}

// =========================================================================
// Rewriting Tests
// =========================================================================

func TestQuery_NamedParamsRoundTrip(t *testing.T) {
	conn := &stubConn{id: "7", echo: true}
	db, _, _ := newTestDB(&stubPool{conn: conn})

	got, err := db.Query(context.Background(),
		"select * from :!tbl where a=:a and b=:b and c::text=:a",
		params.Named(map[string]any{"tbl": "t", "a": 1, "b": "two"}))
	require.NoError(t, err)

	require.Len(t, conn.calls, 1)
	assert.Equal(t, `select * from "t" where a=$1 and b=$2 and c::text=$3`, conn.calls[0].sql)
	assert.Equal(t, []any{1, "two", 1}, conn.calls[0].args)

	require.Len(t, got, 1)
	assert.Equal(t, int64(1), got[0].At(0).Interface())
	assert.Equal(t, "two", got[0].At(1).Interface())
	assert.Equal(t, int64(1), got[0].At(2).Interface())
}

func TestQuery_PositionalPassThrough(t *testing.T) {
	conn := &stubConn{id: "7"}
	db, _, _ := newTestDB(&stubPool{conn: conn})

	_, err := db.Query(context.Background(), "select $1, :notrewritten", params.Positional("x"))
	require.NoError(t, err)
	assert.Equal(t, "select $1, :notrewritten", conn.calls[0].sql)
	assert.Equal(t, []any{"x"}, conn.calls[0].args)
}

func TestQuery_MissingParameterBeforeAcquire(t *testing.T) {
	pool := &stubPool{conn: &stubConn{id: "7"}}
	db, console, fallback := newTestDB(pool)

	_, err := db.Query(context.Background(), "select :a, :b", params.Named(map[string]any{"a": 1}))

	var missing *params.MissingParameterError
	require.ErrorAs(t, err, &missing)
	assert.Equal(t, "b", missing.Name)

	acquired, _ := pool.counts()
	assert.Equal(t, 0, acquired, "no lease for a statement that cannot be bound")
	assert.Equal(t, []string{"error"}, console.levels())
	assert.Equal(t, []any{"select :a, :b", "{a: 1}", ""}, console.records[0].args)
	assert.Empty(t, fallback.records)
}

func TestQuery_MissingParameterUsesScopeLogger(t *testing.T) {
	pool := &stubPool{conn: &stubConn{id: "7"}}
	db, console, _ := newTestDB(pool)
	callLog := &recorder{}

	_, err := db.Query(context.Background(), "select :!col from t where id = :id",
		params.Named(map[string]any{"id": 5}), WithLogger(callLog))

	var missing *params.MissingParameterError
	require.ErrorAs(t, err, &missing)
	assert.Equal(t, []string{"error"}, callLog.levels())
	assert.Equal(t, "select :!col from t where id = :id", callLog.records[0].args[0])
	assert.Equal(t, "{id: 5}", callLog.records[0].args[1])
	assert.Empty(t, console.records)
}

// =========================================================================
// Logging and Error Tests
// =========================================================================

func TestQuery_LogsBeforeExecuting(t *testing.T) {
	log := &recorder{}
	conn := &stubConn{id: "4242"}
	db, _, _ := newTestDB(&stubPool{conn: conn}, WithLoggerDB(log))

	_, err := db.Query(context.Background(), "select :a", params.Named(map[string]any{"a": "x"}))
	require.NoError(t, err)

	require.Len(t, log.records, 1)
	assert.Equal(t, record{level: "log", args: []any{"select $1", "['x']", "4242"}}, log.records[0])
}

func TestQuery_ExecutionError(t *testing.T) {
	log := &recorder{}
	conn := &stubConn{id: "99", err: errBoom}
	db, _, _ := newTestDB(&stubPool{conn: conn}, WithLoggerDB(log))

	_, err := db.Query(context.Background(), "update t set a=:a", params.Named(map[string]any{"a": 5}))
	require.Error(t, err)
	assert.ErrorIs(t, err, errBoom)

	var execErr *ExecutionError
	require.ErrorAs(t, err, &execErr)
	assert.Equal(t, "update t set a=$1", execErr.SQL)
	assert.Equal(t, []any{5}, execErr.Params)
	assert.Equal(t, "99", execErr.SessionID)
	assert.Contains(t, err.Error(), "session 99")

	assert.Equal(t, []string{"log", "error"}, log.levels())
	assert.Equal(t, []any{"update t set a=$1", "[5]", "99"}, log.records[1].args)
}

func TestQuery_AcquireError(t *testing.T) {
	pool := &stubPool{acquireErr: context.DeadlineExceeded}
	db, console, fallback := newTestDB(pool)

	_, err := db.Query(context.Background(), "select 1", params.None)
	assert.ErrorIs(t, err, context.DeadlineExceeded)

	var execErr *ExecutionError
	require.ErrorAs(t, err, &execErr)
	assert.Empty(t, execErr.SessionID)

	assert.Equal(t, []string{"error"}, console.levels(), "errors fall back to the console")
	assert.Empty(t, fallback.records)
}

func TestQuery_ReleaseErrorDoesNotMaskOutcome(t *testing.T) {
	t.Run("Success", func(t *testing.T) {
		pool := &stubPool{conn: &stubConn{id: "5", rows: rows("n", 1)}, releaseErr: errors.New("broken pipe")}
		db, console, fallback := newTestDB(pool)

		got, err := db.Query(context.Background(), "select 1", params.None)
		require.NoError(t, err)
		assert.Len(t, got, 1)

		assert.Equal(t, []string{"log"}, fallback.levels())
		require.Equal(t, []string{"error"}, console.levels())
		assert.Equal(t, "connection error", console.records[0].args[0])
		assert.Contains(t, console.records[0].args[1], "broken pipe")
	})

	t.Run("Failure", func(t *testing.T) {
		pool := &stubPool{conn: &stubConn{id: "5", err: errBoom}, releaseErr: errors.New("broken pipe")}
		db, console, _ := newTestDB(pool)

		_, err := db.Query(context.Background(), "select 1", params.None)
		assert.ErrorIs(t, err, errBoom)
		assert.Equal(t, []string{"error", "error"}, console.levels())

		_, released := pool.counts()
		assert.Equal(t, 1, released)
	})
}

func TestQuery_LoggerResolution(t *testing.T) {
	pool := &stubPool{conn: &stubConn{id: "1"}}
	db, console, fallback := newTestDB(pool)
	schema := db.Schema("app")
	ctx := context.Background()

	_, err := schema.Run(ctx, "select 1")
	require.NoError(t, err)
	assert.Equal(t, []string{"log"}, fallback.levels(), "intent goes to the default logger")
	assert.Empty(t, console.records)

	dbLog := &recorder{}
	db.SetLogger(dbLog)
	_, err = schema.Run(ctx, "select 1")
	require.NoError(t, err)
	assert.Len(t, dbLog.records, 1)

	schemaLog := &recorder{}
	schema.SetLogger(schemaLog)
	_, err = schema.Run(ctx, "select 1")
	require.NoError(t, err)
	assert.Len(t, schemaLog.records, 1)
	assert.Len(t, dbLog.records, 1)

	callLog := &recorder{}
	_, err = schema.Run(ctx, "select 1", WithLogger(callLog))
	require.NoError(t, err)
	assert.Len(t, callLog.records, 1)

	optsLog := &recorder{}
	_, err = schema.Run(ctx, "select 1", WithOptions(query.Options{Logger: optsLog}))
	require.NoError(t, err)
	assert.Len(t, optsLog.records, 1)
	assert.Len(t, schemaLog.records, 1)

	_, err = db.Run(ctx, "select 1")
	require.NoError(t, err)
	assert.Len(t, dbLog.records, 2, "the database scope ignores schema loggers")
}

func TestSchema_SchemaParams(t *testing.T) {
	conn := &stubConn{id: "1"}
	db, _, _ := newTestDB(&stubPool{conn: conn})
	s := db.Schema(`my"app`)
	assert.Equal(t, `my"app`, s.Name())

	_, err := s.Query(context.Background(), "select * from :!schema.:!table where id=:id",
		s.SchemaParams(map[string]any{"table": "users", "id": 3}))
	require.NoError(t, err)
	assert.Equal(t, `select * from "my""app"."users" where id=$1`, conn.calls[0].sql)
	assert.Equal(t, []any{3}, conn.calls[0].args)
}

// =========================================================================
// Metrics Tests
// =========================================================================

func TestMetrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	m, err := NewMetrics(reg)
	require.NoError(t, err)

	pool := &stubPool{conn: &stubConn{id: "1"}, releaseErr: errors.New("lost")}
	db, _, _ := newTestDB(pool, WithMetrics(m))
	ctx := context.Background()

	_, _ = db.Run(ctx, "select 1")
	pool.conn.err = errBoom
	_, _ = db.Run(ctx, "select 1")
	_, _ = db.Run(database.WithConn(ctx, &stubConn{id: "tx"}), "select 1")

	assert.Equal(t, 1.0, testutil.ToFloat64(m.statements.WithLabelValues(sourceLeased, "ok")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.statements.WithLabelValues(sourceLeased, "error")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.statements.WithLabelValues(sourceBound, "ok")))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.releaseFailures))

	_, err = NewMetrics(reg)
	assert.Error(t, err, "collectors are already registered")
}

func TestMetrics_NilIsSafe(t *testing.T) {
	var m *Metrics
	assert.NotPanics(t, func() {
		m.releaseFailed()
		m.observe(sourceBound, timeZero, nil)
	})
}
