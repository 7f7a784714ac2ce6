package database

import (
	"context"
	"database/sql"

	"github.com/oklog/ulid/v2"
)

// SQLPool implements Pool for *sql.DB. database/sql does not expose backend
// session ids, so every lease gets a ULID for log correlation.
type SQLPool struct {
	db *sql.DB
}

func NewSQLPool(db *sql.DB) *SQLPool {
	return &SQLPool{db: db}
}

// Acquire reserves a single connection from the database/sql pool.
func (p *SQLPool) Acquire(ctx context.Context) (Lease, error) {
	conn, err := p.db.Conn(ctx)
	if err != nil {
		return nil, err
	}
	return &sqlLease{conn: conn, sessionID: ulid.Make().String()}, nil
}

// DB returns the wrapped *sql.DB.
func (p *SQLPool) DB() *sql.DB { return p.db }

type sqlLease struct {
	conn      *sql.Conn
	sessionID string
}

func (l *sqlLease) SessionID() string { return l.sessionID }

func (l *sqlLease) Query(ctx context.Context, query string, args ...any) ([]Row, error) {
	if l.conn == nil {
		return nil, ErrReleased
	}
	rows, err := l.conn.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	return collectSQLRows(rows)
}

// Release returns the connection to the database/sql pool. On error the
// connection is dropped either way.
func (l *sqlLease) Release() error {
	if l.conn == nil {
		return ErrReleased
	}
	err := l.conn.Close()
	l.conn = nil
	return err
}

// SQLTx adapts an open *sql.Tx as a bound connection.
type SQLTx struct {
	tx        *sql.Tx
	sessionID string
}

func NewSQLTx(tx *sql.Tx) *SQLTx {
	return &SQLTx{tx: tx, sessionID: ulid.Make().String()}
}

// BindSQLTx binds tx to ctx; see WithConn.
func BindSQLTx(ctx context.Context, tx *sql.Tx) context.Context {
	return WithConn(ctx, NewSQLTx(tx))
}

func (t *SQLTx) SessionID() string { return t.sessionID }

func (t *SQLTx) Query(ctx context.Context, query string, args ...any) ([]Row, error) {
	rows, err := t.tx.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	return collectSQLRows(rows)
}

func collectSQLRows(rows *sql.Rows) ([]Row, error) {
	defer rows.Close()

	columns, err := rows.Columns()
	if err != nil {
		return nil, err
	}

	var out []Row
	for rows.Next() {
		raw := make([]any, len(columns))
		dest := make([]any, len(columns))
		for i := range raw {
			dest[i] = &raw[i]
		}
		if err := rows.Scan(dest...); err != nil {
			return nil, err
		}
		out = append(out, NewRow(columns, raw))
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

var (
	_ Pool = (*SQLPool)(nil)
	_ Conn = (*SQLTx)(nil)
)
