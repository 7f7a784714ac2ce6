package cache

import (
	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/Konsultn-Engineering/pgquery/utils"
)

// DefaultPlanCacheSize is used when a non-positive size is requested.
const DefaultPlanCacheSize = 1024

// PlanCache keeps parsed query plans keyed by the fingerprint of their SQL
// text. Entries are immutable once stored, so readers may share them.
type PlanCache[V any] struct {
	cache *lru.Cache[uint64, entry[V]]
}

// entry keeps the source text next to the plan so a fingerprint collision
// degrades to a miss instead of returning another query's plan.
type entry[V any] struct {
	sql  string
	plan V
}

func NewPlanCache[V any](size int) *PlanCache[V] {
	if size <= 0 {
		size = DefaultPlanCacheSize
	}
	c, _ := lru.New[uint64, entry[V]](size)
	return &PlanCache[V]{cache: c}
}

func (c *PlanCache[V]) Get(sql string) (V, bool) {
	e, ok := c.cache.Get(utils.FingerprintString(sql))
	if !ok || e.sql != sql {
		var zero V
		return zero, false
	}
	return e.plan, true
}

func (c *PlanCache[V]) Set(sql string, plan V) {
	c.cache.Add(utils.FingerprintString(sql), entry[V]{sql: sql, plan: plan})
}

// GetOrBuild returns the cached plan for sql, building and storing it on a
// miss. Concurrent misses may build twice; the last write wins.
func (c *PlanCache[V]) GetOrBuild(sql string, build func(string) V) V {
	if plan, ok := c.Get(sql); ok {
		return plan
	}
	plan := build(sql)
	c.Set(sql, plan)
	return plan
}

func (c *PlanCache[V]) Len() int {
	return c.cache.Len()
}

func (c *PlanCache[V]) Purge() {
	c.cache.Purge()
}
