package assembler

import (
	"strconv"

	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"golang.org/x/sync/singleflight"

	"github.com/colfab/rasm"
)

// Cache shares compiled assembly plans across read sessions, keyed by the
// structural fingerprint of the automaton.  Cached plans are immutable and
// may be bound concurrently by any number of goroutines; compilation of the
// same fingerprint is deduplicated.
type Cache struct {
	lru    *lru.Cache[uint64, *plan]
	group  singleflight.Group
	hits   prometheus.Counter
	misses prometheus.Counter
}

// NewCache returns a cache holding up to size plans.  A nil registerer
// keeps the hit/miss counters on a private registry.
func NewCache(size int, registerer prometheus.Registerer) (*Cache, error) {
	cache, err := lru.New[uint64, *plan](size)
	if err != nil {
		return nil, err
	}
	if registerer == nil {
		registerer = prometheus.NewRegistry()
	}
	factory := promauto.With(registerer)
	return &Cache{
		lru: cache,
		hits: factory.NewCounter(prometheus.CounterOpts{
			Name: "rasm_plan_cache_hits_total",
			Help: "Number of assembly plans served from the cache.",
		}),
		misses: factory.NewCounter(prometheus.CounterOpts{
			Name: "rasm_plan_cache_misses_total",
			Help: "Number of assembly plans compiled on a cache miss.",
		}),
	}, nil
}

// Compile behaves like the package-level Compile but reuses the plan for
// any automaton structurally identical to one compiled before.
func (c *Cache) Compile(a *rasm.Automaton, b Bindings, opts ...Option) (*CompiledReader, error) {
	p, err := c.plan(a)
	if err != nil {
		return nil, err
	}
	return p.bind(a, b, newOptions(opts))
}

func (c *Cache) plan(a *rasm.Automaton) (*plan, error) {
	fingerprint := a.Fingerprint()
	if p, ok := c.lru.Get(fingerprint); ok {
		c.hits.Inc()
		return p, nil
	}
	v, err, _ := c.group.Do(strconv.FormatUint(fingerprint, 16), func() (any, error) {
		p, err := newPlan(a)
		if err != nil {
			return nil, err
		}
		c.lru.Add(fingerprint, p)
		return p, nil
	})
	if err != nil {
		return nil, err
	}
	c.misses.Inc()
	return v.(*plan), nil
}
