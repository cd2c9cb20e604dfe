package liftplan

import "sync/atomic"

// EventHooks is the capability interface LAAG (C8) and SAE (C9) invoke for
// observational events: cache hits/misses, invalid bindings, and the
// per-state generation lifecycle. None of these are errors (spec §7,
// "Cache hit/miss and invalid binding are observational events, not
// errors"); they exist purely for instrumentation and reproducibility
// checks. A nil EventHooks or a zero-value NoopHooks is always safe to
// pass — every method has a working no-op default via embedding.
//
// A plain interface with few methods, rather than a monitor class
// hierarchy, keeps a no-op caller (NoopHooks) free and an instrumented
// one (Counters) a small, additive override.
type EventHooks interface {
	// OnStartGeneratingApplicableActions fires once per LAAG.Generate call.
	OnStartGeneratingApplicableActions()
	// OnEndGeneratingApplicableActions fires once per LAAG.Generate call,
	// after every ground action has been emitted.
	OnEndGeneratingApplicableActions()
	// OnGroundAction fires for every ground action LAAG emits.
	OnGroundAction(a *GroundAction)
	// OnGroundAxiom fires for every ground axiom SAE applies.
	OnGroundAxiom(a *GroundAxiom)
	// OnCacheHit fires when the grounder (C7) returns a memoised record.
	OnCacheHit(schemaIndex uint32)
	// OnCacheMiss fires when the grounder builds a new record.
	OnCacheMiss(schemaIndex uint32)
	// OnInvalidBinding fires when a candidate binding fails full
	// validation (spec §4.4) or grounding raises an ArithmeticError
	// (spec §7): the binding is swallowed, not propagated.
	OnInvalidBinding(err error)
	// OnFinishSearchLayer and OnEndSearch are notification-only hooks
	// forwarded from the search layer with no semantics of their own
	// (spec §6).
	OnFinishSearchLayer()
	OnEndSearch()
}

// NoopHooks implements EventHooks with empty bodies. Embed it to pick up
// defaults for the methods a caller doesn't care about.
type NoopHooks struct{}

func (NoopHooks) OnStartGeneratingApplicableActions() {}
func (NoopHooks) OnEndGeneratingApplicableActions()   {}
func (NoopHooks) OnGroundAction(*GroundAction)        {}
func (NoopHooks) OnGroundAxiom(*GroundAxiom)          {}
func (NoopHooks) OnCacheHit(uint32)                   {}
func (NoopHooks) OnCacheMiss(uint32)                  {}
func (NoopHooks) OnInvalidBinding(error)               {}
func (NoopHooks) OnFinishSearchLayer()                {}
func (NoopHooks) OnEndSearch()                        {}

// Counters is a lock-free, atomic-counter EventHooks implementation that
// tallies the observational events. Useful for reproducibility checks
// (e.g. asserting an expected number of cache hits across two identical
// runs).
type Counters struct {
	NoopHooks

	groundActions    int64
	groundAxioms     int64
	cacheHits        int64
	cacheMisses      int64
	invalidBindings  int64
	generationRounds int64
}

// NewCounters returns a zeroed Counters.
func NewCounters() *Counters { return &Counters{} }

func (c *Counters) OnStartGeneratingApplicableActions() {
	atomic.AddInt64(&c.generationRounds, 1)
}
func (c *Counters) OnGroundAction(*GroundAction) { atomic.AddInt64(&c.groundActions, 1) }
func (c *Counters) OnGroundAxiom(*GroundAxiom)   { atomic.AddInt64(&c.groundAxioms, 1) }
func (c *Counters) OnCacheHit(uint32)            { atomic.AddInt64(&c.cacheHits, 1) }
func (c *Counters) OnCacheMiss(uint32)           { atomic.AddInt64(&c.cacheMisses, 1) }
func (c *Counters) OnInvalidBinding(error)       { atomic.AddInt64(&c.invalidBindings, 1) }

// Snapshot is a point-in-time copy of the counters, safe to read without
// racing further updates.
type Snapshot struct {
	GroundActions    int64
	GroundAxioms     int64
	CacheHits        int64
	CacheMisses      int64
	InvalidBindings  int64
	GenerationRounds int64
}

// Snapshot returns the current counter values.
func (c *Counters) Snapshot() Snapshot {
	return Snapshot{
		GroundActions:    atomic.LoadInt64(&c.groundActions),
		GroundAxioms:     atomic.LoadInt64(&c.groundAxioms),
		CacheHits:        atomic.LoadInt64(&c.cacheHits),
		CacheMisses:      atomic.LoadInt64(&c.cacheMisses),
		InvalidBindings:  atomic.LoadInt64(&c.invalidBindings),
		GenerationRounds: atomic.LoadInt64(&c.generationRounds),
	}
}
