// Package nae implements the new-artwork-event pool: a bounded,
// priority-decay structure that gives recently-published artwork
// opportunistic exposure ahead of the regular SWRR rotation (§4.7).
package nae

import (
	"sync"
	"time"

	"github.com/prxssh/playsetsched/internal/artwork"
	"github.com/prxssh/playsetsched/internal/prng"
)

const (
	// Capacity bounds the pool to 32 concurrent entries.
	Capacity = 32

	initialPriority  = 0.50
	decayFloor       = 0.02
	selectionCeiling = 1.0
)

type entry struct {
	ref        artwork.Reference
	priority   float64
	insertedAt time.Time
}

// Pool is a bounded, priority-decay insertion pool guarded by its own
// mutex: insert() and try_select() are called from different scheduler
// paths (the public NAEInsert entry point versus next()).
type Pool struct {
	mu      sync.Mutex
	entries []entry
	rng     *prng.State
}

// New builds an empty pool drawing its coin-flip draws from rng.
func New(rng *prng.State) *Pool {
	return &Pool{rng: rng}
}

// Insert adds a, keyed by ArtworkID: an existing entry has its priority
// reset to 0.50 and its insertion time refreshed; otherwise, if the pool
// is full, the minimum-priority entry (oldest insertion time breaks ties)
// is evicted before appending.
func (p *Pool) Insert(a artwork.Reference, now time.Time) {
	p.mu.Lock()
	defer p.mu.Unlock()

	for i := range p.entries {
		if p.entries[i].ref.ArtworkID == a.ArtworkID {
			p.entries[i].priority = initialPriority
			p.entries[i].insertedAt = now
			p.entries[i].ref = a
			return
		}
	}

	if len(p.entries) >= Capacity {
		p.evictMinLocked()
	}
	p.entries = append(p.entries, entry{ref: a, priority: initialPriority, insertedAt: now})
}

func (p *Pool) evictMinLocked() {
	min := 0
	for i := 1; i < len(p.entries); i++ {
		if p.entries[i].priority < p.entries[min].priority ||
			(p.entries[i].priority == p.entries[min].priority && p.entries[i].insertedAt.Before(p.entries[min].insertedAt)) {
			min = i
		}
	}
	p.entries = append(p.entries[:min], p.entries[min+1:]...)
}

// TrySelect draws a coin flip against the pool's total priority (capped at
// 1.0); on a hit it returns the maximum-priority entry (oldest insertion
// time breaks ties), halves its priority, and drops it from the pool if
// the new priority falls below the decay floor.
func (p *Pool) TrySelect() (artwork.Reference, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if len(p.entries) == 0 {
		return artwork.Reference{}, false
	}

	var total float64
	for _, e := range p.entries {
		total += e.priority
	}
	if total > selectionCeiling {
		total = selectionCeiling
	}

	r := p.rng.Float64()
	if r >= total {
		return artwork.Reference{}, false
	}

	max := 0
	for i := 1; i < len(p.entries); i++ {
		if p.entries[i].priority > p.entries[max].priority ||
			(p.entries[i].priority == p.entries[max].priority && p.entries[i].insertedAt.Before(p.entries[max].insertedAt)) {
			max = i
		}
	}

	ref := p.entries[max].ref
	p.entries[max].priority /= 2
	if p.entries[max].priority < decayFloor {
		p.entries = append(p.entries[:max], p.entries[max+1:]...)
	}
	return ref, true
}

// Clone returns an independent copy of the pool, used by peek_next to run
// selection logic without mutating the real pool's priorities.
func (p *Pool) Clone() *Pool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return &Pool{
		rng:     p.rng.Clone(),
		entries: append([]entry(nil), p.entries...),
	}
}

// Clear empties the pool. Performed on playset execution; history is
// preserved across this call.
func (p *Pool) Clear() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.entries = nil
}

// Len reports the number of entries currently pending.
func (p *Pool) Len() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.entries)
}
