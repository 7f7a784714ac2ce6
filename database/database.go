package database

import (
	"context"
	"errors"
)

// ErrReleased is returned when a lease is released more than once.
var ErrReleased = errors.New("connection already released")

// Conn executes a single statement with positional parameters.
type Conn interface {
	// SessionID identifies the server-side session, for correlating client
	// log records with server logs.
	SessionID() string
	Query(ctx context.Context, sql string, args ...any) ([]Row, error)
}

// Lease is a Conn borrowed from a Pool. Release must be called exactly once.
type Lease interface {
	Conn
	Release() error
}

// Pool hands out leased connections. Implementations must be safe for
// concurrent use.
type Pool interface {
	Acquire(ctx context.Context) (Lease, error)
}

type boundConnKey struct{}

// WithConn binds c to ctx. Statements executed with the returned context use
// c instead of leasing from the pool, and never release it.
func WithConn(ctx context.Context, c Conn) context.Context {
	return context.WithValue(ctx, boundConnKey{}, c)
}

// ConnFrom returns the connection bound to ctx, if any.
func ConnFrom(ctx context.Context) (Conn, bool) {
	c, ok := ctx.Value(boundConnKey{}).(Conn)
	return c, ok && c != nil
}
