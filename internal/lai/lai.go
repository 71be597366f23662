// Package lai implements the Locally-Available Index: a dense set of
// catalogue indices whose backing files are known to exist on disk for one
// channel (§4.3). Membership in the LAi is the single source of truth for
// "this entry is playable right now".
package lai

import (
	"math/rand"
	"sync"
)

// Index is a dense, swap-and-pop index set, grounded on the teacher's
// pkg/availabilitybucket dense-array technique collapsed to a single
// bucket (LAi membership is binary, not graduated by a count).
type Index struct {
	mu sync.RWMutex

	// items is the dense, order-unstable array of catalogue indices
	// currently available locally.
	items []uint32

	// pos maps a catalogue index to its slot in items, for O(1)
	// contains-test and O(1) swap-and-pop removal.
	pos map[uint32]int

	onMutate func()
}

// New returns an empty index. onMutate, if non-nil, is invoked after every
// structural mutation (add, remove, reset) to drive the Channel Cache's debounced
// save scheduler; it is called with the lock released.
func New(onMutate func()) *Index {
	return &Index{
		pos:      make(map[uint32]int),
		onMutate: onMutate,
	}
}

// Len returns the number of locally-available indices.
func (idx *Index) Len() int {
	idx.mu.RLock()
	defer idx.mu.RUnlock()
	return len(idx.items)
}

// Contains reports whether catalogue index i is present.
func (idx *Index) Contains(i uint32) bool {
	idx.mu.RLock()
	defer idx.mu.RUnlock()
	_, ok := idx.pos[i]
	return ok
}

// Add appends i if not already present. Returns true if it was newly added.
func (idx *Index) Add(i uint32) bool {
	idx.mu.Lock()
	if _, exists := idx.pos[i]; exists {
		idx.mu.Unlock()
		return false
	}

	idx.pos[i] = len(idx.items)
	idx.items = append(idx.items, i)
	idx.mu.Unlock()

	idx.notify()
	return true
}

// Remove swaps i with the last element and pops it. Returns true if i was
// present.
func (idx *Index) Remove(i uint32) bool {
	idx.mu.Lock()
	p, exists := idx.pos[i]
	if !exists {
		idx.mu.Unlock()
		return false
	}

	last := len(idx.items) - 1
	idx.items[p] = idx.items[last]
	idx.pos[idx.items[p]] = p
	idx.items = idx.items[:last]
	delete(idx.pos, i)
	idx.mu.Unlock()

	idx.notify()
	return true
}

// At returns the catalogue index stored at dense slot n, used by uniform
// random draws: At(rng.Intn(Len())).
func (idx *Index) At(n int) (uint32, bool) {
	idx.mu.RLock()
	defer idx.mu.RUnlock()
	if n < 0 || n >= len(idx.items) {
		return 0, false
	}
	return idx.items[n], true
}

// Random draws a uniformly random catalogue index from the set using the
// supplied random source. Returns false if the set is empty.
func (idx *Index) Random(rng *rand.Rand) (uint32, bool) {
	idx.mu.RLock()
	defer idx.mu.RUnlock()
	if len(idx.items) == 0 {
		return 0, false
	}
	return idx.items[rng.Intn(len(idx.items))], true
}

// Snapshot returns a copy of the current dense array, safe for the caller
// to iterate without holding any lock.
func (idx *Index) Snapshot() []uint32 {
	idx.mu.RLock()
	defer idx.mu.RUnlock()
	out := make([]uint32, len(idx.items))
	copy(out, idx.items)
	return out
}

// Reset replaces the set's contents wholesale, used when loading a cache
// from disk.
func (idx *Index) Reset(items []uint32) {
	idx.mu.Lock()
	idx.items = append([]uint32(nil), items...)
	idx.pos = make(map[uint32]int, len(idx.items))
	for i, v := range idx.items {
		idx.pos[v] = i
	}
	idx.mu.Unlock()

	idx.notify()
}

func (idx *Index) notify() {
	if idx.onMutate != nil {
		idx.onMutate()
	}
}
