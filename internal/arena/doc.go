// Package arena provides a fixed-capacity linear bump allocator.
//
// All stored values in tachikv live in a single pre-reserved byte
// region. Allocation is a cursor advance; there is no per-object free
// and no allocation metadata. The whole region is reclaimed at once
// with Reset.
package arena
