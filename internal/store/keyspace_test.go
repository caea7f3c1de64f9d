package store

import (
	"sort"
	"testing"

	"github.com/yndnr/tachikv-go/internal/arena"
)

func newTestKeyspace(capacity int) (*Keyspace, *arena.Arena) {
	mem := arena.New(capacity)
	return New(mem), mem
}

// ============================================================
// Set / Get Tests
// ============================================================

func TestSetGet(t *testing.T) {
	k, _ := newTestKeyspace(1024)

	if err := k.Set([]byte("key"), []byte("val")); err != nil {
		t.Fatalf("Set: %v", err)
	}

	got, ok := k.Get([]byte("key"))
	if !ok {
		t.Fatal("Get: key missing")
	}
	if string(got) != "val" {
		t.Errorf("Get = %q, want val", got)
	}
}

func TestGet_Missing(t *testing.T) {
	k, _ := newTestKeyspace(1024)
	if _, ok := k.Get([]byte("nope")); ok {
		t.Error("Get of missing key reported present")
	}
}

func TestSet_Overwrite(t *testing.T) {
	k, mem := newTestKeyspace(1024)

	_ = k.Set([]byte("k"), []byte("a"))
	_ = k.Set([]byte("k"), []byte("bb"))

	got, _ := k.Get([]byte("k"))
	if string(got) != "bb" {
		t.Errorf("Get = %q, want bb", got)
	}
	if k.Len() != 1 {
		t.Errorf("Len = %d, want 1", k.Len())
	}
	// Both value copies occupy the arena; the old one is merely
	// unreferenced.
	if mem.Used() != 3 {
		t.Errorf("arena used = %d, want 3", mem.Used())
	}
}

func TestSet_KeyIsOwned(t *testing.T) {
	k, _ := newTestKeyspace(1024)

	key := []byte("mykey")
	_ = k.Set(key, []byte("v"))

	// Simulate the receive buffer being overwritten by the next read.
	copy(key, "XXXXX")

	if _, ok := k.Get([]byte("mykey")); !ok {
		t.Error("keyspace does not own its key bytes")
	}
}

func TestSet_ValueIsCopied(t *testing.T) {
	k, _ := newTestKeyspace(1024)

	val := []byte("val")
	_ = k.Set([]byte("k"), val)
	copy(val, "XXX")

	got, _ := k.Get([]byte("k"))
	if string(got) != "val" {
		t.Errorf("value aliases the caller's buffer: %q", got)
	}
}

func TestSet_OutOfMemory(t *testing.T) {
	k, _ := newTestKeyspace(4)

	if err := k.Set([]byte("k"), []byte("toolarge")); err != ErrOutOfMemory {
		t.Fatalf("err = %v, want ErrOutOfMemory", err)
	}
	if k.Has([]byte("k")) {
		t.Error("failed Set left a binding behind")
	}
}

func TestSet_FillsArenaExactly(t *testing.T) {
	k, mem := newTestKeyspace(8)

	if err := k.Set([]byte("a"), []byte("12345678")); err != nil {
		t.Fatalf("Set: %v", err)
	}
	if mem.Remaining() != 0 {
		t.Fatalf("Remaining = %d", mem.Remaining())
	}
	if err := k.Set([]byte("b"), []byte("x")); err != ErrOutOfMemory {
		t.Fatalf("err = %v, want ErrOutOfMemory", err)
	}
	// The first binding is still intact.
	if v, _ := k.Get([]byte("a")); string(v) != "12345678" {
		t.Errorf("existing binding disturbed: %q", v)
	}
}

// ============================================================
// Delete / Has / Len Tests
// ============================================================

func TestDelete(t *testing.T) {
	k, _ := newTestKeyspace(1024)

	_ = k.Set([]byte("k"), []byte("v"))
	if !k.Delete([]byte("k")) {
		t.Error("Delete of bound key reported false")
	}
	if k.Delete([]byte("k")) {
		t.Error("Delete of unbound key reported true")
	}
	if k.Has([]byte("k")) {
		t.Error("key still bound after Delete")
	}
}

func TestLen(t *testing.T) {
	k, _ := newTestKeyspace(1024)

	_ = k.Set([]byte("a"), []byte("1"))
	_ = k.Set([]byte("b"), []byte("2"))
	_ = k.Set([]byte("a"), []byte("3"))

	if k.Len() != 2 {
		t.Errorf("Len = %d, want 2", k.Len())
	}
}

// ============================================================
// Keys / Flush Tests
// ============================================================

func TestKeys(t *testing.T) {
	k, _ := newTestKeyspace(1024)

	_ = k.Set([]byte("sess-1"), []byte("a"))
	_ = k.Set([]byte("sess-2"), []byte("b"))
	_ = k.Set([]byte("other"), []byte("c"))

	got := k.Keys("sess-*")
	sort.Strings(got)
	if len(got) != 2 || got[0] != "sess-1" || got[1] != "sess-2" {
		t.Errorf("Keys = %v", got)
	}

	if all := k.Keys("*"); len(all) != 3 {
		t.Errorf("Keys(*) = %v", all)
	}
}

func TestFlush(t *testing.T) {
	k, mem := newTestKeyspace(64)

	_ = k.Set([]byte("a"), []byte("hello"))
	_ = k.Set([]byte("b"), []byte("world"))
	k.Flush()

	if k.Len() != 0 {
		t.Errorf("Len after Flush = %d", k.Len())
	}
	if mem.Used() != 0 {
		t.Errorf("arena used after Flush = %d", mem.Used())
	}

	// The keyspace is usable again and allocations restart at zero.
	if err := k.Set([]byte("a"), []byte("again")); err != nil {
		t.Fatalf("Set after Flush: %v", err)
	}
	if v, _ := k.Get([]byte("a")); string(v) != "again" {
		t.Errorf("Get after Flush = %q", v)
	}
}

// ============================================================
// MatchGlob Tests
// ============================================================

func TestMatchGlob(t *testing.T) {
	tests := []struct {
		pattern string
		s       string
		want    bool
	}{
		{"*", "anything", true},
		{"*", "", true},

		{"hello", "hello", true},
		{"hello", "world", false},

		{"sess-*", "sess-abc123", true},
		{"sess-*", "sess-", true},
		{"sess-*", "other-abc", false},

		{"*-user1", "sess-user1", true},
		{"*-user1", "user1-sess", false},

		{"*abc*", "xyzabcdef", true},
		{"*abc*", "xyz", false},

		{"*-*-*", "a-b-c", true},
		{"*-*-*", "a-b", false},

		{"", "", true},
		{"", "nonempty", false},
	}

	for _, tt := range tests {
		t.Run(tt.pattern+"/"+tt.s, func(t *testing.T) {
			if got := MatchGlob(tt.pattern, tt.s); got != tt.want {
				t.Errorf("MatchGlob(%q, %q) = %v, want %v", tt.pattern, tt.s, got, tt.want)
			}
		})
	}
}
