package engine

import (
	"context"
	"time"

	"github.com/Konsultn-Engineering/pgquery/database"
	"github.com/Konsultn-Engineering/pgquery/dialect"
	"github.com/Konsultn-Engineering/pgquery/logging"
	"github.com/Konsultn-Engineering/pgquery/params"
	"github.com/Konsultn-Engineering/pgquery/query"
)

const (
	sourceBound  = "bound"
	sourceLeased = "leased"
)

// Queryable runs statements for a scope. The zero value is not usable;
// obtain one through New or DB.Schema.
type Queryable struct {
	db     *DB
	parent *Queryable
	logger logging.Logger
}

// SetLogger sets the logger of this scope.
func (q *Queryable) SetLogger(l logging.Logger) {
	q.logger = l
}

// CallOption configures a single call.
type CallOption func(*call)

type call struct {
	logger logging.Logger
}

// WithLogger sets the logger for one call; it takes precedence over every
// scope logger.
func WithLogger(l logging.Logger) CallOption {
	return func(c *call) { c.logger = l }
}

// WithOptions applies the call-level settings carried by o.
func WithOptions(o query.Options) CallOption {
	return func(c *call) {
		if o.Logger != nil {
			c.logger = o.Logger
		}
	}
}

// chain lists the configured loggers from most to least specific.
func (q *Queryable) chain(c *call) logging.Chain {
	chain := logging.Chain{c.logger}
	for s := q; s != nil; s = s.parent {
		chain = append(chain, s.logger)
	}
	return chain
}

// Run executes sql without parameters.
func (q *Queryable) Run(ctx context.Context, sql string, opts ...CallOption) ([]database.Row, error) {
	return q.Query(ctx, sql, params.None, opts...)
}

// Query executes sql and returns its rows.
//
// Named bags are rewritten to positional form before any connection is
// touched, so a MissingParameterError never costs a lease; it is reported to
// the error logger with the original SQL and the supplied named values. When ctx carries
// a bound connection (database.WithConn) it is used and left open;
// otherwise a connection is leased for this call and released before Query
// returns, whatever the outcome.
func (q *Queryable) Query(ctx context.Context, sql string, bag params.Bag, opts ...CallOption) ([]database.Row, error) {
	c := &call{}
	for _, opt := range opts {
		opt(c)
	}

	db := q.db
	chain := q.chain(c)
	logger := chain.Resolve(false, db.console, db.defaultLogger)
	errLogger := chain.Resolve(true, db.console, db.defaultLogger)

	rewritten, args, err := db.rewriter.Resolve(sql, bag)
	if err != nil {
		errLogger.Error(sql, renderBag(db.dialect, bag), "")
		return nil, err
	}
	sql = rewritten
	rendered := dialect.RenderArgs(db.dialect, args)

	source := sourceBound
	conn, bound := database.ConnFrom(ctx)
	if !bound {
		source = sourceLeased
		lease, err := db.pool.Acquire(ctx)
		if err != nil {
			errLogger.Error(sql, rendered, "")
			return nil, &ExecutionError{SQL: sql, Params: args, Err: err}
		}
		defer q.release(lease, errLogger)
		conn = lease
	}

	sessionID := conn.SessionID()
	logger.Log(sql, rendered, sessionID)

	start := time.Now()
	rows, err := conn.Query(ctx, sql, args...)
	db.metrics.observe(source, start, err)
	if err != nil {
		errLogger.Error(sql, rendered, sessionID)
		return nil, &ExecutionError{SQL: sql, Params: args, SessionID: sessionID, Err: err}
	}
	return rows, nil
}

func renderBag(d dialect.Dialect, bag params.Bag) string {
	if bag.IsNamed() {
		return dialect.RenderNamed(d, bag.Map())
	}
	return dialect.RenderArgs(d, bag.Values())
}

// release returns lease to the pool. A failed release drops the connection
// and is only logged.
func (q *Queryable) release(lease database.Lease, errLogger logging.Logger) {
	if err := lease.Release(); err != nil {
		q.db.metrics.releaseFailed()
		errLogger.Error("connection error", (&ReleaseError{SessionID: lease.SessionID(), Err: err}).Error())
	}
}
