// Package resp implements the subset of the Redis serialization
// protocol spoken by tachikv.
//
// The request side is an incremental, restartable decoder for the
// array-of-bulk-strings form. It never copies: decoded tokens are
// subslices of the caller's buffer, valid only until that buffer is
// overwritten or compacted.
//
// The reply side is a family of append-style encoders that build
// frames into a caller-owned pending buffer, so a whole pipeline of
// replies can be flushed with a single write.
package resp
