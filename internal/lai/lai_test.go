package lai

import (
	"math/rand"
	"testing"
)

func checkInvariants(t *testing.T, idx *Index) {
	t.Helper()

	idx.mu.RLock()
	defer idx.mu.RUnlock()

	if len(idx.items) != len(idx.pos) {
		t.Fatalf("items/pos length mismatch: %d vs %d", len(idx.items), len(idx.pos))
	}

	seen := make(map[uint32]bool, len(idx.items))
	for i, v := range idx.items {
		if seen[v] {
			t.Fatalf("duplicate item %d in dense array", v)
		}
		seen[v] = true

		p, ok := idx.pos[v]
		if !ok || p != i {
			t.Fatalf("pos[%d] = %d, want %d", v, p, i)
		}
	}
}

func TestIndex_AddRemoveContains(t *testing.T) {
	idx := New(nil)

	if idx.Add(5) != true {
		t.Fatal("Add(5) = false, want true")
	}
	if idx.Add(5) != false {
		t.Fatal("Add(5) again = true, want false (already present)")
	}
	if !idx.Contains(5) {
		t.Fatal("Contains(5) = false, want true")
	}
	checkInvariants(t, idx)

	idx.Add(7)
	idx.Add(9)
	checkInvariants(t, idx)

	if !idx.Remove(7) {
		t.Fatal("Remove(7) = false, want true")
	}
	if idx.Contains(7) {
		t.Fatal("Contains(7) = true after Remove, want false")
	}
	checkInvariants(t, idx)

	if idx.Len() != 2 {
		t.Fatalf("Len() = %d, want 2", idx.Len())
	}
}

func TestIndex_RemoveMissing(t *testing.T) {
	idx := New(nil)
	idx.Add(1)

	if idx.Remove(99) {
		t.Fatal("Remove(99) = true, want false for absent index")
	}
	checkInvariants(t, idx)
}

func TestIndex_OnMutateCalledOnAddAndRemove(t *testing.T) {
	calls := 0
	idx := New(func() { calls++ })

	idx.Add(1)
	idx.Add(1) // no-op, should not notify
	idx.Remove(1)
	idx.Remove(1) // no-op, should not notify

	if calls != 2 {
		t.Fatalf("onMutate called %d times, want 2", calls)
	}
}

func TestIndex_RandomOnlyReturnsMembers(t *testing.T) {
	idx := New(nil)
	members := map[uint32]bool{2: true, 4: true, 6: true}
	for m := range members {
		idx.Add(m)
	}

	rng := rand.New(rand.NewSource(1))
	for i := 0; i < 100; i++ {
		v, ok := idx.Random(rng)
		if !ok {
			t.Fatal("Random() ok=false on non-empty index")
		}
		if !members[v] {
			t.Fatalf("Random() = %d, not a member of %v", v, members)
		}
	}
}

func TestIndex_RandomEmpty(t *testing.T) {
	idx := New(nil)
	if _, ok := idx.Random(rand.New(rand.NewSource(1))); ok {
		t.Fatal("Random() ok=true on empty index")
	}
}

func TestIndex_Reset(t *testing.T) {
	idx := New(nil)
	idx.Add(1)
	idx.Add(2)

	idx.Reset([]uint32{10, 20, 30})
	checkInvariants(t, idx)

	if idx.Len() != 3 || !idx.Contains(10) || idx.Contains(1) {
		t.Fatalf("Reset did not replace contents: len=%d", idx.Len())
	}
}
