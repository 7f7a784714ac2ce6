// Package engine executes statements written with named placeholders
// against a bound connection or one leased from a pool.
package engine

import (
	"os"

	"github.com/Konsultn-Engineering/pgquery/database"
	"github.com/Konsultn-Engineering/pgquery/dialect"
	"github.com/Konsultn-Engineering/pgquery/logging"
	"github.com/Konsultn-Engineering/pgquery/params"
)

// DB is the database scope: it owns the pool reference, the rewriter and
// the database-level loggers.
type DB struct {
	Queryable

	pool          database.Pool
	rewriter      *params.Rewriter
	dialect       dialect.Dialect
	console       logging.Logger
	defaultLogger logging.Logger
	metrics       *Metrics
}

type Option func(*DB)

// WithDefaultLogger sets the logger used for statement records when no
// call, schema or database logger is set. Defaults to logging.Nop.
func WithDefaultLogger(l logging.Logger) Option {
	return func(db *DB) { db.defaultLogger = l }
}

// WithConsole sets the logger that receives error records when no other
// logger is set. Defaults to a text console on stderr.
func WithConsole(l logging.Logger) Option {
	return func(db *DB) { db.console = l }
}

// WithLoggerDB sets the database-level logger.
func WithLoggerDB(l logging.Logger) Option {
	return func(db *DB) { db.logger = l }
}

func WithMetrics(m *Metrics) Option {
	return func(db *DB) { db.metrics = m }
}

func WithRewriter(r *params.Rewriter) Option {
	return func(db *DB) { db.rewriter = r }
}

func New(pool database.Pool, opts ...Option) *DB {
	db := &DB{
		pool:          pool,
		dialect:       dialect.NewPostgresDialect(),
		defaultLogger: logging.Nop,
	}
	for _, opt := range opts {
		opt(db)
	}
	if db.rewriter == nil {
		db.rewriter = params.NewRewriter(params.WithDialect(db.dialect))
	}
	if db.console == nil {
		db.console = logging.NewConsole(os.Stderr)
	}
	db.Queryable.db = db
	return db
}

// Schema returns a scope for the named schema with its own logger slot.
// The name is available to statements as the :!schema identifier via
// SchemaParams.
func (db *DB) Schema(name string) *Schema {
	s := &Schema{name: name}
	s.Queryable = Queryable{db: db, parent: &db.Queryable}
	return s
}

// Schema is a scope below DB. Its logger takes precedence over the
// database logger.
type Schema struct {
	Queryable
	name string
}

func (s *Schema) Name() string { return s.name }

// SchemaParams returns named params with "schema" set to the scope's name,
// merged with extra. Keys in extra win.
func (s *Schema) SchemaParams(extra map[string]any) params.Bag {
	m := make(map[string]any, len(extra)+1)
	m["schema"] = s.name
	for k, v := range extra {
		m[k] = v
	}
	return params.Named(m)
}
