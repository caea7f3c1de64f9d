package respserver

import (
	"errors"
	"fmt"
	"strings"

	"github.com/yndnr/tachikv-go/internal/infra/buildinfo"
	"github.com/yndnr/tachikv-go/internal/resp"
	"github.com/yndnr/tachikv-go/internal/store"
)

// Canonical per-command error replies.
const (
	errWrongArgs   = "ERR wrong number of arguments"
	errUnknownCmd  = "ERR unknown command"
	errOutOfMemory = "ERR out of memory"
)

// dispatch executes one command against the keyspace and appends its
// encoded reply to the connection's pending buffer. args is non-empty
// and its views stay valid for the duration of the call.
func (s *Server) dispatch(c *conn, args [][]byte) {
	verb := resp.NormalizeVerb(args[0])

	switch verb {
	case "PING":
		s.handlePing(c, args)
	case "ECHO":
		s.handleEcho(c, args)
	case "SET":
		s.handleSet(c, args)
	case "GET":
		s.handleGet(c, args)
	case "DEL":
		s.handleDel(c, args)
	case "EXISTS":
		s.handleExists(c, args)
	case "KEYS":
		s.handleKeys(c, args)
	case "DBSIZE":
		s.handleDBSize(c, args)
	case "FLUSHDB":
		s.handleFlushDB(c, args)
	case "INFO":
		s.handleInfo(c, args)
	case "COMMAND":
		// Stub for client handshakes.
		c.tx = resp.AppendArrayHeader(c.tx, 0)
	case "QUIT":
		c.tx = resp.AppendSimpleString(c.tx, "OK")
		c.closeAfterFlush = true
	default:
		c.tx = resp.AppendError(c.tx, errUnknownCmd)
		s.metrics.CommandsTotal.WithLabelValues("UNKNOWN").Inc()
		return
	}

	s.metrics.CommandsTotal.WithLabelValues(verb).Inc()
}

// PING [msg]
func (s *Server) handlePing(c *conn, args [][]byte) {
	switch len(args) {
	case 1:
		c.tx = resp.AppendSimpleString(c.tx, "PONG")
	case 2:
		c.tx = resp.AppendBulk(c.tx, args[1])
	default:
		c.tx = resp.AppendError(c.tx, errWrongArgs)
	}
}

// ECHO msg
func (s *Server) handleEcho(c *conn, args [][]byte) {
	if len(args) != 2 {
		c.tx = resp.AppendError(c.tx, errWrongArgs)
		return
	}
	c.tx = resp.AppendBulk(c.tx, args[1])
}

// SET key value
//
// The value bytes are copied out of the receive buffer into the
// arena; the keyspace binds the key to the arena-backed view.
func (s *Server) handleSet(c *conn, args [][]byte) {
	if len(args) != 3 {
		c.tx = resp.AppendError(c.tx, errWrongArgs)
		return
	}
	if err := s.keys.Set(args[1], args[2]); errors.Is(err, store.ErrOutOfMemory) {
		// Exhaustion is a per-command failure; the connection lives on.
		c.tx = resp.AppendError(c.tx, errOutOfMemory)
		return
	}
	s.metrics.ArenaUsedBytes.Set(float64(s.mem.Used()))
	c.tx = resp.AppendSimpleString(c.tx, "OK")
}

// GET key
func (s *Server) handleGet(c *conn, args [][]byte) {
	if len(args) != 2 {
		c.tx = resp.AppendError(c.tx, errWrongArgs)
		return
	}
	v, ok := s.keys.Get(args[1])
	if !ok {
		c.tx = resp.AppendNullBulk(c.tx)
		return
	}
	c.tx = resp.AppendBulk(c.tx, v)
}

// DEL key [key ...]
func (s *Server) handleDel(c *conn, args [][]byte) {
	if len(args) < 2 {
		c.tx = resp.AppendError(c.tx, errWrongArgs)
		return
	}
	deleted := 0
	for _, key := range args[1:] {
		if s.keys.Delete(key) {
			deleted++
		}
	}
	c.tx = resp.AppendInteger(c.tx, int64(deleted))
}

// EXISTS key [key ...]
func (s *Server) handleExists(c *conn, args [][]byte) {
	if len(args) < 2 {
		c.tx = resp.AppendError(c.tx, errWrongArgs)
		return
	}
	found := 0
	for _, key := range args[1:] {
		if s.keys.Has(key) {
			found++
		}
	}
	c.tx = resp.AppendInteger(c.tx, int64(found))
}

// KEYS pattern
func (s *Server) handleKeys(c *conn, args [][]byte) {
	if len(args) != 2 {
		c.tx = resp.AppendError(c.tx, errWrongArgs)
		return
	}
	names := s.keys.Keys(string(args[1]))
	c.tx = resp.AppendArrayHeader(c.tx, len(names))
	for _, name := range names {
		c.tx = resp.AppendBulkString(c.tx, name)
	}
}

// DBSIZE
func (s *Server) handleDBSize(c *conn, args [][]byte) {
	if len(args) != 1 {
		c.tx = resp.AppendError(c.tx, errWrongArgs)
		return
	}
	c.tx = resp.AppendInteger(c.tx, int64(s.keys.Len()))
}

// FLUSHDB
//
// Clears the keyspace and resets the arena together; the pairing is
// what keeps every surviving view valid (there are none).
func (s *Server) handleFlushDB(c *conn, args [][]byte) {
	if len(args) != 1 {
		c.tx = resp.AppendError(c.tx, errWrongArgs)
		return
	}
	s.keys.Flush()
	s.metrics.ArenaUsedBytes.Set(0)
	c.tx = resp.AppendSimpleString(c.tx, "OK")
}

// INFO
func (s *Server) handleInfo(c *conn, args [][]byte) {
	if len(args) != 1 {
		c.tx = resp.AppendError(c.tx, errWrongArgs)
		return
	}

	var b strings.Builder
	fmt.Fprintf(&b, "server:tachikv\r\n")
	fmt.Fprintf(&b, "version:%s\r\n", buildinfo.Version)
	fmt.Fprintf(&b, "run_id:%s\r\n", s.cfg.RunID)
	fmt.Fprintf(&b, "keys:%d\r\n", s.keys.Len())
	fmt.Fprintf(&b, "arena_capacity_bytes:%d\r\n", s.mem.Cap())
	fmt.Fprintf(&b, "arena_used_bytes:%d\r\n", s.mem.Used())
	fmt.Fprintf(&b, "arena_remaining_bytes:%d\r\n", s.mem.Remaining())
	fmt.Fprintf(&b, "connections_active:%d\r\n", len(s.conns))
	fmt.Fprintf(&b, "connections_total:%d\r\n", s.connsServed)
	c.tx = resp.AppendBulkString(c.tx, b.String())
}
