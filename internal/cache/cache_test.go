package cache

import (
	"testing"
	"time"
)

func TestLRUCacheEvictsLeastRecentlyUsed(t *testing.T) {
	c := NewLRUCache[string](2, time.Minute)
	c.Set("a", "1")
	c.Set("b", "2")
	c.Get("a")
	c.Set("c", "3")

	if _, ok := c.Get("b"); ok {
		t.Error("b should have been evicted")
	}
	if v, ok := c.Get("a"); !ok || v != "1" {
		t.Errorf("a = %q, %v", v, ok)
	}
	if c.Size() != 2 {
		t.Errorf("size = %d, want 2", c.Size())
	}
}

func TestLRUCacheTTL(t *testing.T) {
	now := time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC)
	c := NewLRUCache[int](10, time.Minute)
	c.now = func() time.Time { return now }

	c.Set("x", 1)
	c.Set("y", 2)
	now = now.Add(2 * time.Minute)
	c.Set("z", 3)

	if _, ok := c.Get("x"); ok {
		t.Error("x should have expired")
	}
	if removed := c.CleanExpired(); removed != 1 {
		t.Errorf("CleanExpired() = %d, want 1", removed)
	}
	if v, ok := c.Get("z"); !ok || v != 3 {
		t.Errorf("z = %d, %v", v, ok)
	}

	st := c.Stats()
	if st.Hits != 1 || st.Misses != 1 || st.Size != 1 {
		t.Errorf("unexpected stats %+v", st)
	}
}

func TestLRUCachePurgeAndDelete(t *testing.T) {
	c := NewLRUCache[int](0, time.Minute)
	c.Set("a", 1)
	c.Set("b", 2)
	if c.Size() != 1 {
		t.Errorf("size below one should clamp to one, got %d", c.Size())
	}
	c.Delete("b")
	c.Delete("missing")
	c.Set("c", 3)
	c.Purge()
	if c.Size() != 0 {
		t.Errorf("size after purge = %d", c.Size())
	}
}

func TestRevisionKey(t *testing.T) {
	if got := RevisionKey(4, "settle", "A", "B"); got != `4|"settle"|"A"|"B"` {
		t.Errorf("RevisionKey = %q", got)
	}
	if RevisionKey(1, "X|A100", "U200") == RevisionKey(1, "X", "A100|U200") {
		t.Error("separators inside parts must not collide")
	}
	if RevisionKey(1, "a", "") == RevisionKey(1, "a") {
		t.Error("an empty part must still count")
	}
	if RevisionKey(4, "x") == RevisionKey(5, "x") {
		t.Error("keys must differ across revisions")
	}
}

func TestManager(t *testing.T) {
	m := NewManager()
	c := NewLRUCache[int](5, time.Nanosecond)
	m.Register(c)
	c.Set("a", 1)
	time.Sleep(time.Millisecond)

	if n := m.CleanNow(); n != 1 {
		t.Errorf("CleanNow() = %d, want 1", n)
	}

	m.StartCleanup(time.Hour)
	m.StartCleanup(time.Hour)
	m.Stop()
	m.Stop()

	NewManager().Stop()
}
