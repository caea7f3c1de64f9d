// Package respserver implements the tachikv request pipeline: a
// single-threaded event loop that accepts TCP connections, drains
// them into per-connection receive buffers, decodes commands with the
// zero-copy RESP parser, executes them against the keyspace, and
// flushes each connection's accumulated replies with one write per
// readiness cycle.
//
// The loop uses epoll in edge-triggered mode with non-blocking
// descriptors throughout, so both the accept and read paths drain
// until EAGAIN. Scale across cores comes from running several
// independent processes with SO_REUSEPORT, not from threads.
package respserver
