package store

import (
	"errors"

	"github.com/yndnr/tachikv-go/internal/arena"
)

// ErrOutOfMemory is returned by Set when the arena cannot hold the
// value bytes.
var ErrOutOfMemory = errors.New("store: arena exhausted")

// Keyspace maps owned keys to arena-backed value views.
//
// Keys are copied into strings on insert: the incoming key bytes
// point into a receive buffer that is overwritten by the next read.
// Values are copied into the arena and referenced by view; an
// overwrite or delete leaves the old value bytes unreferenced in the
// arena until the next Flush.
type Keyspace struct {
	mem   *arena.Arena
	items map[string][]byte
}

// New creates an empty keyspace over the given arena.
func New(mem *arena.Arena) *Keyspace {
	return &Keyspace{
		mem:   mem,
		items: make(map[string][]byte),
	}
}

// Set copies value into the arena and binds key to the new view,
// replacing any previous binding. Returns ErrOutOfMemory when the
// arena is exhausted; the keyspace is unchanged in that case.
func (k *Keyspace) Set(key, value []byte) error {
	view, ok := k.mem.Copy(value)
	if !ok {
		return ErrOutOfMemory
	}
	k.items[string(key)] = view
	return nil
}

// Get returns the current value view for key.
func (k *Keyspace) Get(key []byte) ([]byte, bool) {
	v, ok := k.items[string(key)]
	return v, ok
}

// Has reports whether key is bound.
func (k *Keyspace) Has(key []byte) bool {
	_, ok := k.items[string(key)]
	return ok
}

// Delete unbinds key, reporting whether it was bound. The value bytes
// stay in the arena unreferenced.
func (k *Keyspace) Delete(key []byte) bool {
	s := string(key)
	if _, ok := k.items[s]; !ok {
		return false
	}
	delete(k.items, s)
	return true
}

// Len reports the number of bound keys.
func (k *Keyspace) Len() int {
	return len(k.items)
}

// Keys returns the keys matching pattern. Iteration order is
// unspecified.
func (k *Keyspace) Keys(pattern string) []string {
	out := make([]string, 0, len(k.items))
	for key := range k.items {
		if MatchGlob(pattern, key) {
			out = append(out, key)
		}
	}
	return out
}

// Flush unbinds every key and resets the arena in one step. Clearing
// both together is what keeps the invariant that no live view ever
// outlasts an arena reset.
func (k *Keyspace) Flush() {
	clear(k.items)
	k.mem.Reset()
}
