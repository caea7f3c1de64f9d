// Package store provides the tachikv keyspace: a mapping from owned
// string keys to value views backed by the arena.
//
// The keyspace belongs to the event loop and is never touched from
// another goroutine, so it needs no locking. Value bytes are copied
// into the arena on write; the map holds only the resulting view.
package store
