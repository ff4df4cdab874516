package arrange

import "github.com/wbrown/flowbase/plan"

// entry is a (plan, keys) -> Arrangement binding, with the time this
// arrangement's frontier has already been advanced past.
type entry struct {
	arr     *Arrangement
	advance int64 // latest AdvanceTime duration nanoseconds applied
}

// TraceManager owns every long-lived, cross-query arrangement the system
// maintains: one per (plan, key-columns) pair that has ever been produced
// by CreateInput or a query's AddPublish. It mirrors the Rust
// TraceManager (manager.rs) one-for-one, substituting our ref-counted
// Arrangement for a cloned TraceAgent handle, since Go has no equivalent
// of differential-dataflow's trace-sharing clone semantics.
type TraceManager struct {
	engine       *Engine
	arrangements map[string]map[string]*entry
	now          int64
}

// NewTraceManager constructs an empty trace manager backed by engine.
func NewTraceManager(engine *Engine) *TraceManager {
	return &TraceManager{
		engine:       engine,
		arrangements: make(map[string]map[string]*entry),
	}
}

// CurrentTime returns the latest time any AdvanceTime call has reached,
// the "as of" time a Query reads every imported trace at and publishes
// its results under, absent some other time explicitly supplied (spec
// §4.6, §4.8).
func (tm *TraceManager) CurrentTime() int64 { return tm.now }

func keysToString(keys []int) string {
	buf := make([]byte, 0, len(keys)*4)
	for _, k := range keys {
		buf = append(buf, byte(k>>24), byte(k>>16), byte(k>>8), byte(k))
	}
	return string(buf)
}

func normalizeKeys(p *plan.Plan, keys []int) []int {
	if keys != nil {
		return keys
	}
	return plan.DefaultKeys(p.Arity)
}

// Get recovers the arrangement cached for plan at keys, if any. A nil keys
// slice is normalized to the plan's identity key set [0..arity), matching
// the Rust `get(plan, None)` behavior.
func (tm *TraceManager) Get(p *plan.Plan, keys []int) (*Arrangement, bool) {
	keys = normalizeKeys(p, keys)
	byKeys, ok := tm.arrangements[p.Key()]
	if !ok {
		return nil, false
	}
	e, ok := byKeys[keysToString(keys)]
	if !ok {
		return nil, false
	}
	return e.arr, true
}

// Set installs (or replaces) the arrangement cached for plan at keys.
func (tm *TraceManager) Set(p *plan.Plan, keys []int, arr *Arrangement) {
	keys = normalizeKeys(p, keys)
	byKeys, ok := tm.arrangements[p.Key()]
	if !ok {
		byKeys = make(map[string]*entry)
		tm.arrangements[p.Key()] = byKeys
	}
	byKeys[keysToString(keys)] = &entry{arr: arr}
}

// GetOrCreate recovers the arrangement cached for plan at keys, creating
// and installing a fresh empty one if none exists yet.
func (tm *TraceManager) GetOrCreate(p *plan.Plan, keys []int) *Arrangement {
	if arr, ok := tm.Get(p, keys); ok {
		return arr
	}
	keys = normalizeKeys(p, keys)
	arr := newArrangement(tm.engine, p.Key(), keys)
	tm.Set(p, keys, arr)
	return arr
}

// AdvanceTime records that every maintained arrangement's frontier may now
// be considered advanced past time (spec §4.4, "advance_time moves every
// maintained trace's frontier forward").
func (tm *TraceManager) AdvanceTime(timeNanos int64) {
	if timeNanos > tm.now {
		tm.now = timeNanos
	}
	for _, byKeys := range tm.arrangements {
		for _, e := range byKeys {
			if timeNanos > e.advance {
				e.advance = timeNanos
			}
		}
	}
}

// LessThan reports whether any maintained arrangement's frontier has not
// yet advanced past time: the command dispatcher's AdvanceTime handler
// steps the worker loop until this returns false (spec §4.8, mirroring
// Manager::less_than in manager.rs).
func (tm *TraceManager) LessThan(timeNanos int64) bool {
	for _, byKeys := range tm.arrangements {
		for _, e := range byKeys {
			if e.advance < timeNanos {
				return true
			}
		}
	}
	return false
}

// Clear releases every maintained arrangement, used by Shutdown.
func (tm *TraceManager) Clear() {
	for _, byKeys := range tm.arrangements {
		for _, e := range byKeys {
			e.arr.Release()
		}
	}
	tm.arrangements = make(map[string]map[string]*entry)
	tm.now = 0
}
