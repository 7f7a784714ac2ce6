package engine

import (
	"context"
	"errors"
	"sync"

	"github.com/Konsultn-Engineering/pgquery/database"
)

// stubConn answers every statement with rows, or with err when set. With
// echo it returns one row holding the positional parameters it received.
type stubConn struct {
	id   string
	rows []database.Row
	err  error
	echo bool

	mu    sync.Mutex
	calls []stubCall
}

type stubCall struct {
	sql  string
	args []any
}

func (c *stubConn) SessionID() string { return c.id }

func (c *stubConn) Query(_ context.Context, sql string, args ...any) ([]database.Row, error) {
	c.mu.Lock()
	c.calls = append(c.calls, stubCall{sql: sql, args: args})
	c.mu.Unlock()

	if c.err != nil {
		return nil, c.err
	}
	if c.echo {
		cols := make([]string, len(args))
		for i := range args {
			cols[i] = "p" + string(rune('1'+i))
		}
		return []database.Row{database.NewRow(cols, args)}, nil
	}
	return c.rows, nil
}

type stubLease struct {
	*stubConn
	pool *stubPool
}

func (l *stubLease) Release() error {
	l.pool.mu.Lock()
	defer l.pool.mu.Unlock()
	l.pool.released++
	return l.pool.releaseErr
}

// stubPool counts acquisitions and releases.
type stubPool struct {
	conn       *stubConn
	acquireErr error
	releaseErr error

	mu       sync.Mutex
	acquired int
	released int
}

func (p *stubPool) Acquire(context.Context) (database.Lease, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.acquireErr != nil {
		return nil, p.acquireErr
	}
	p.acquired++
	return &stubLease{stubConn: p.conn, pool: p}, nil
}

func (p *stubPool) counts() (int, int) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.acquired, p.released
}

type record struct {
	level string
	args  []any
}

// recorder is a logging.Logger that keeps every record in order.
type recorder struct {
	mu      sync.Mutex
	records []record
}

func (r *recorder) Log(args ...any)   { r.add("log", args) }
func (r *recorder) Error(args ...any) { r.add("error", args) }

func (r *recorder) add(level string, args []any) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.records = append(r.records, record{level: level, args: args})
}

func (r *recorder) levels() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]string, len(r.records))
	for i, rec := range r.records {
		out[i] = rec.level
	}
	return out
}

var errBoom = errors.New("boom")

func rows(column string, values ...any) []database.Row {
	out := make([]database.Row, len(values))
	for i, v := range values {
		out[i] = database.NewRow([]string{column}, []any{v})
	}
	return out
}
