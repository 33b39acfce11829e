package orchestrator

import "testing"

func TestCacheInsertKeepsOrder(t *testing.T) {
	c := newEventCache()

	c.insert([]*entry{
		{identity: "a", event: "ev", priority: 10, seq: 1},
		{identity: "b", event: "ev", priority: 30, seq: 2},
	})
	c.insert([]*entry{
		{identity: "c", event: "ev", priority: 20, seq: 3},
		{identity: "d", event: "other", priority: 5, seq: 4},
	})

	got := c.snapshot("ev")
	want := []string{"b", "c", "a"}
	if len(got) != len(want) {
		t.Fatalf("expected %d entries, got %d", len(want), len(got))
	}
	for i := range want {
		if got[i].identity != want[i] {
			t.Errorf("position %d: expected %s, got %s", i, want[i], got[i].identity)
		}
	}

	if c.count("other") != 1 {
		t.Errorf("expected 1 entry for other, got %d", c.count("other"))
	}
}

func TestCacheEqualPrioritySeqOrder(t *testing.T) {
	c := newEventCache()

	// Later insert, lower seq never happens in practice; equal
	// priorities within one event must come out in seq order anyway.
	c.insert([]*entry{{identity: "second", event: "ev", priority: 10, seq: 7}})
	c.insert([]*entry{{identity: "third", event: "ev", priority: 10, seq: 9}})
	c.insert([]*entry{{identity: "first", event: "ev", priority: 10, seq: 3}})

	got := c.snapshot("ev")
	want := []string{"first", "second", "third"}
	for i := range want {
		if got[i].identity != want[i] {
			t.Fatalf("expected %v, got %s at %d", want, got[i].identity, i)
		}
	}
}

func TestCacheSnapshotIsCopy(t *testing.T) {
	c := newEventCache()
	c.insert([]*entry{
		{identity: "a", event: "ev", priority: 1, seq: 1},
		{identity: "b", event: "ev", priority: 2, seq: 2},
	})

	snap := c.snapshot("ev")
	snap[0] = nil

	if c.snapshot("ev")[0] == nil {
		t.Error("mutating a snapshot must not touch the cache")
	}
}

func TestCacheEvents(t *testing.T) {
	c := newEventCache()
	if len(c.events()) != 0 {
		t.Error("expected no events in an empty cache")
	}
	c.insert([]*entry{
		{identity: "a", event: "zeta", priority: 1, seq: 1},
		{identity: "a", event: "alpha", priority: 1, seq: 2},
	})

	names := c.events()
	if len(names) != 2 || names[0] != "alpha" || names[1] != "zeta" {
		t.Errorf("expected sorted event names, got %v", names)
	}
}
