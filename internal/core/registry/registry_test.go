package registry

import (
	"fmt"
	"math/rand"
	"testing"

	"obscount/internal/core/model"
)

func sequentialIDs() IDFunc {
	next := 0
	return func() string {
		next++
		return fmt.Sprintf("counter-%d", next)
	}
}

func TestAddRejectsBlankNames(t *testing.T) {
	tests := []struct {
		name  string
		input string
		added bool
	}{
		{name: "empty", input: "", added: false},
		{name: "spaces", input: "   ", added: false},
		{name: "tab and newline", input: "\t\n", added: false},
		{name: "plain", input: "Bird", added: true},
		{name: "padded kept verbatim", input: " Bird ", added: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			registry := New(sequentialIDs())
			counter, ok := registry.Add(tt.input)
			if ok != tt.added {
				t.Fatalf("Add(%q) ok = %v want %v", tt.input, ok, tt.added)
			}
			if !tt.added {
				if registry.Len() != 0 {
					t.Fatalf("registry length = %d want 0", registry.Len())
				}
				return
			}
			if counter.Name != tt.input || counter.Count != 0 {
				t.Fatalf("counter = %+v want name %q count 0", counter, tt.input)
			}
		})
	}
}

func TestAddAssignsUniqueIDs(t *testing.T) {
	registry := New(nil)
	first, _ := registry.Add("A")
	second, _ := registry.Add("A")
	if first.ID == "" || first.ID == second.ID {
		t.Fatalf("ids not unique: %q %q", first.ID, second.ID)
	}
	if registry.Len() != 2 {
		t.Fatalf("duplicate names should be allowed, len = %d", registry.Len())
	}
}

func TestDecrementFloorsAtZero(t *testing.T) {
	registry := New(sequentialIDs())
	counter, _ := registry.Add("A")

	if registry.Decrement(counter.ID) {
		t.Fatalf("Decrement at zero reported a change")
	}
	got, _ := registry.Get(counter.ID)
	if got.Count != 0 {
		t.Fatalf("count = %d want 0", got.Count)
	}

	registry.Increment(counter.ID)
	registry.Increment(counter.ID)
	registry.Decrement(counter.ID)
	got, _ = registry.Get(counter.ID)
	if got.Count != 1 {
		t.Fatalf("count = %d want 1", got.Count)
	}
}

func TestCountsNeverNegative(t *testing.T) {
	r := rand.New(rand.NewSource(7))
	registry := New(sequentialIDs())
	a, _ := registry.Add("A")
	b, _ := registry.Add("B")
	ids := []string{a.ID, b.ID}

	for i := 0; i < 2000; i++ {
		id := ids[r.Intn(len(ids))]
		if r.Intn(3) == 0 {
			registry.Increment(id)
		} else {
			registry.Decrement(id)
		}
		for _, counter := range registry.Counters() {
			if counter.Count < 0 {
				t.Fatalf("step %d: counter %s went negative: %d", i, counter.Name, counter.Count)
			}
		}
	}
}

func TestUnknownIDIsNoop(t *testing.T) {
	registry := New(sequentialIDs())
	registry.Add("A")
	before := registry.Counters()

	if registry.Increment("missing") || registry.Decrement("missing") || registry.Remove("missing") {
		t.Fatalf("operation on unknown id reported a change")
	}
	after := registry.Counters()
	if len(after) != len(before) || after[0] != before[0] {
		t.Fatalf("registry changed: %+v -> %+v", before, after)
	}
}

func TestRemoveKeepsOrder(t *testing.T) {
	registry := New(sequentialIDs())
	registry.Add("A")
	b, _ := registry.Add("B")
	registry.Add("C")

	if !registry.Remove(b.ID) {
		t.Fatalf("Remove(%s) = false", b.ID)
	}
	counters := registry.Counters()
	if len(counters) != 2 || counters[0].Name != "A" || counters[1].Name != "C" {
		t.Fatalf("counters after remove = %+v", counters)
	}
}

func TestResetCountsKeepsIdentity(t *testing.T) {
	registry := New(sequentialIDs())
	a, _ := registry.Add("A")
	registry.Increment(a.ID)
	registry.Increment(a.ID)
	if !registry.HasObservations() {
		t.Fatalf("HasObservations() = false with a non-zero count")
	}

	registry.ResetCounts()
	counters := registry.Counters()
	if counters[0] != (model.Counter{ID: a.ID, Name: "A", Count: 0}) {
		t.Fatalf("counter after reset = %+v", counters[0])
	}
	if registry.HasObservations() {
		t.Fatalf("HasObservations() = true after reset")
	}
}

func TestCountersReturnsCopy(t *testing.T) {
	registry := New(sequentialIDs())
	a, _ := registry.Add("A")
	snapshot := registry.Counters()
	snapshot[0].Count = 42

	got, _ := registry.Get(a.ID)
	if got.Count != 0 {
		t.Fatalf("mutating the snapshot changed the registry: %d", got.Count)
	}
}

func TestReplaceFloorsNegativeCounts(t *testing.T) {
	registry := New(sequentialIDs())
	registry.Replace([]model.Counter{{ID: "x", Name: "X", Count: -4}, {ID: "y", Name: "Y", Count: 2}})
	counters := registry.Counters()
	if counters[0].Count != 0 || counters[1].Count != 2 {
		t.Fatalf("counters after Replace = %+v", counters)
	}
}
