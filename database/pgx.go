package database

import (
	"context"
	"strconv"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// pgxQuerier is implemented by *pgxpool.Conn, *pgx.Conn and pgx.Tx.
type pgxQuerier interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
}

// PgxPool implements Pool for pgxpool.Pool.
type PgxPool struct {
	pool         *pgxpool.Pool
	queryTimeout time.Duration
}

// NewPgxPool creates a new PgxPool. A positive queryTimeout bounds every
// statement run on a leased connection.
func NewPgxPool(pool *pgxpool.Pool, queryTimeout time.Duration) *PgxPool {
	return &PgxPool{pool: pool, queryTimeout: queryTimeout}
}

// Acquire leases a connection from the pool.
func (p *PgxPool) Acquire(ctx context.Context) (Lease, error) {
	conn, err := p.pool.Acquire(ctx)
	if err != nil {
		return nil, err
	}
	return &pgxLease{conn: conn, sessionID: pid(conn.Conn().PgConn()), timeout: p.queryTimeout}, nil
}

// Pool returns the underlying pgxpool.Pool.
func (p *PgxPool) Pool() *pgxpool.Pool { return p.pool }

// Close closes the pool.
func (p *PgxPool) Close() error {
	p.pool.Close()
	return nil
}

type pgxLease struct {
	conn      *pgxpool.Conn
	sessionID string
	timeout   time.Duration
}

func (l *pgxLease) SessionID() string { return l.sessionID }

func (l *pgxLease) Query(ctx context.Context, sql string, args ...any) ([]Row, error) {
	if l.conn == nil {
		return nil, ErrReleased
	}
	if l.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, l.timeout)
		defer cancel()
	}
	return queryPgx(ctx, l.conn, sql, args...)
}

func (l *pgxLease) Release() error {
	if l.conn == nil {
		return ErrReleased
	}
	l.conn.Release()
	l.conn = nil
	return nil
}

// PgxTx adapts an open pgx transaction as a bound connection. The caller
// owns the transaction and ends it.
type PgxTx struct {
	tx pgx.Tx
}

func NewPgxTx(tx pgx.Tx) *PgxTx {
	return &PgxTx{tx: tx}
}

// BindTx binds tx to ctx; see WithConn.
func BindTx(ctx context.Context, tx pgx.Tx) context.Context {
	return WithConn(ctx, NewPgxTx(tx))
}

func (t *PgxTx) SessionID() string {
	return pid(t.tx.Conn().PgConn())
}

func (t *PgxTx) Query(ctx context.Context, sql string, args ...any) ([]Row, error) {
	return queryPgx(ctx, t.tx, sql, args...)
}

func pid(c *pgconn.PgConn) string {
	if c == nil {
		return ""
	}
	return strconv.FormatUint(uint64(c.PID()), 10)
}

func queryPgx(ctx context.Context, q pgxQuerier, sql string, args ...any) ([]Row, error) {
	rows, err := q.Query(ctx, sql, args...)
	if err != nil {
		return nil, err
	}
	return collectPgxRows(rows)
}

func collectPgxRows(rows pgx.Rows) ([]Row, error) {
	defer rows.Close()

	var columns []string
	var out []Row
	for rows.Next() {
		if columns == nil {
			columns = pgxColumns(rows.FieldDescriptions())
		}
		values, err := rows.Values()
		if err != nil {
			return nil, err
		}
		out = append(out, NewRow(columns, values))
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

func pgxColumns(fds []pgconn.FieldDescription) []string {
	columns := make([]string, len(fds))
	for i, fd := range fds {
		columns[i] = fd.Name
	}
	return columns
}

var (
	_ Pool = (*PgxPool)(nil)
	_ Conn = (*PgxTx)(nil)
)
