package params

import (
	"github.com/Konsultn-Engineering/pgquery/cache"
	"github.com/Konsultn-Engineering/pgquery/dialect"
)

// Rewriter turns named-placeholder SQL into positional SQL. Parsed plans are
// cached per query text; binding happens on every call.
type Rewriter struct {
	dialect dialect.Dialect
	plans   *cache.PlanCache[*Plan]
}

type Option func(*Rewriter)

// WithDialect overrides the Postgres dialect.
func WithDialect(d dialect.Dialect) Option {
	return func(r *Rewriter) { r.dialect = d }
}

// WithCacheSize sets how many parsed plans are kept.
func WithCacheSize(n int) Option {
	return func(r *Rewriter) { r.plans = cache.NewPlanCache[*Plan](n) }
}

func NewRewriter(opts ...Option) *Rewriter {
	r := &Rewriter{dialect: dialect.NewPostgresDialect()}
	for _, opt := range opts {
		opt(r)
	}
	if r.plans == nil {
		r.plans = cache.NewPlanCache[*Plan](cache.DefaultPlanCacheSize)
	}
	return r
}

// Rewrite converts sql and named into positional form.
func (r *Rewriter) Rewrite(sql string, named map[string]any) (string, []any, error) {
	return r.plans.GetOrBuild(sql, Parse).Bind(r.dialect, named)
}

// Resolve returns the statement and positional values for bag. Positional
// bags pass through unchanged; named bags are rewritten.
func (r *Rewriter) Resolve(sql string, bag Bag) (string, []any, error) {
	if !bag.IsNamed() {
		return sql, bag.Values(), nil
	}
	return r.Rewrite(sql, bag.Map())
}

// Rewrite converts sql and named into positional form using the Postgres
// dialect, without caching the parse.
func Rewrite(sql string, named map[string]any) (string, []any, error) {
	return Parse(sql).Bind(dialect.NewPostgresDialect(), named)
}
