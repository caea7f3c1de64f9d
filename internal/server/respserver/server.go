package respserver

import (
	"encoding/binary"
	"fmt"
	"log/slog"
	"runtime"

	"golang.org/x/sys/unix"
	"golang.org/x/time/rate"

	"github.com/yndnr/tachikv-go/internal/arena"
	"github.com/yndnr/tachikv-go/internal/resp"
	"github.com/yndnr/tachikv-go/internal/store"
	"github.com/yndnr/tachikv-go/internal/telemetry/metric"
)

// Config holds the event loop configuration.
type Config struct {
	// Bind is the listen address; empty means the wildcard address.
	Bind string
	// Port is the listen port (0 picks an ephemeral port).
	Port int
	// Backlog is the listen queue depth.
	Backlog int
	// ReusePort sets SO_REUSEPORT so independent instances can share
	// the port for multi-core scale-out.
	ReusePort bool
	// AcceptRate caps accepted connections per second (0 disables).
	AcceptRate int
	// RunID identifies this process instance in INFO output.
	RunID string
}

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	return &Config{
		Bind:    "0.0.0.0",
		Port:    6379,
		Backlog: 512,
	}
}

// Server is the single-threaded event loop. All of its state (the
// arena, the keyspace, every connection buffer) is owned by the
// goroutine running Serve; nothing here takes a lock.
type Server struct {
	cfg     *Config
	logger  *slog.Logger
	metrics *metric.Metrics
	mem     *arena.Arena
	keys    *store.Keyspace

	poller   *poller
	listener *Socket
	wake     *Socket
	port     int

	conns   map[int]*conn
	tokens  [][]byte // dispatcher scratch, reused across commands
	limiter *rate.Limiter

	connsServed uint64
	closing     bool
	done        chan struct{}
}

// New creates a server over an existing arena and keyspace. Listen
// must be called before Serve.
func New(cfg *Config, mem *arena.Arena, keys *store.Keyspace, m *metric.Metrics, logger *slog.Logger) *Server {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	if m == nil {
		m = metric.New()
	}
	if logger == nil {
		logger = slog.Default()
	}

	s := &Server{
		cfg:     cfg,
		logger:  logger,
		metrics: m,
		mem:     mem,
		keys:    keys,
		conns:   make(map[int]*conn),
	}
	if cfg.AcceptRate > 0 {
		s.limiter = rate.NewLimiter(rate.Limit(cfg.AcceptRate), cfg.AcceptRate)
	}
	return s
}

// Listen opens the listening socket, the epoll instance, and the
// shutdown eventfd, and registers both descriptors.
func (s *Server) Listen() error {
	ln, err := listenTCP(s.cfg.Bind, s.cfg.Port, s.cfg.Backlog, s.cfg.ReusePort)
	if err != nil {
		return err
	}

	port, err := boundPort(ln)
	if err != nil {
		_ = ln.Close()
		return fmt.Errorf("getsockname: %w", err)
	}

	p, err := newPoller()
	if err != nil {
		_ = ln.Close()
		return fmt.Errorf("epoll: %w", err)
	}

	wfd, err := unix.Eventfd(0, unix.EFD_NONBLOCK|unix.EFD_CLOEXEC)
	if err != nil {
		_ = p.close()
		_ = ln.Close()
		return fmt.Errorf("eventfd: %w", err)
	}
	wake := newSocket(wfd)

	if err := p.add(ln.FD(), readEvents); err != nil {
		_ = wake.Close()
		_ = p.close()
		_ = ln.Close()
		return fmt.Errorf("register listener: %w", err)
	}
	if err := p.add(wake.FD(), unix.EPOLLIN); err != nil {
		_ = wake.Close()
		_ = p.close()
		_ = ln.Close()
		return fmt.Errorf("register wakeup: %w", err)
	}

	s.listener = ln
	s.poller = p
	s.wake = wake
	s.port = port
	s.done = make(chan struct{})
	s.metrics.ArenaCapacityBytes.Set(float64(s.mem.Cap()))

	s.logger.Info("listening",
		"bind", s.cfg.Bind,
		"port", port,
		"backlog", s.cfg.Backlog,
		"reuse_port", s.cfg.ReusePort,
		"arena_capacity", s.mem.Cap())
	return nil
}

// Port reports the bound port after Listen.
func (s *Server) Port() int {
	return s.port
}

// Serve runs the event loop until Shutdown is called, the readiness
// facility fails, or accepting on the listener fails. It locks its goroutine to an OS thread: the loop is
// the only executor of the arena and keyspace.
func (s *Server) Serve() error {
	runtime.LockOSThread()
	defer runtime.UnlockOSThread()
	defer close(s.done)

	for {
		events, err := s.poller.wait()
		if err != nil {
			s.closeAll()
			return fmt.Errorf("epoll wait: %w", err)
		}

		for i := range events {
			ev := &events[i]
			switch int(ev.Fd) {
			case s.wake.FD():
				s.drainWake()
				s.closing = true
			case s.listener.FD():
				if err := s.acceptReady(); err != nil {
					s.closeAll()
					return err
				}
			default:
				s.connReady(int(ev.Fd), ev.Events)
			}
		}

		if s.closing {
			s.closeAll()
			return nil
		}
	}
}

// Shutdown wakes the loop and makes it exit its next cycle, closing
// the listener first and then every connection. Safe to call from any
// goroutine; Done unblocks when the loop has finished.
func (s *Server) Shutdown() error {
	var one [8]byte
	binary.LittleEndian.PutUint64(one[:], 1)
	_, err := unix.Write(s.wake.FD(), one[:])
	return err
}

// Done is closed once Serve has returned.
func (s *Server) Done() <-chan struct{} {
	return s.done
}

func (s *Server) drainWake() {
	var buf [8]byte
	for {
		if _, err := unix.Read(s.wake.FD(), buf[:]); err != nil {
			return
		}
	}
}

// acceptReady drains the accept queue. Edge-triggered registration
// means stopping before EAGAIN could strand queued connections.
func (s *Server) acceptReady() error {
	for {
		nfd, _, err := unix.Accept4(s.listener.FD(), unix.SOCK_NONBLOCK|unix.SOCK_CLOEXEC)
		if err != nil {
			switch err {
			case unix.EAGAIN:
				return nil
			case unix.EINTR, unix.ECONNABORTED:
				continue
			case unix.EMFILE, unix.ENFILE:
				s.logger.Warn("accept: descriptor limit reached", "error", err)
				return nil
			default:
				return fmt.Errorf("accept: %w", err)
			}
		}

		if s.limiter != nil && !s.limiter.Allow() {
			_ = unix.Close(nfd)
			s.logger.Debug("accept rate exceeded, dropping connection")
			continue
		}

		sock := newSocket(nfd)
		if err := s.poller.add(nfd, readEvents); err != nil {
			s.logger.Warn("register connection failed", "fd", nfd, "error", err)
			_ = sock.Close()
			continue
		}

		s.conns[nfd] = newConn(sock)
		s.connsServed++
		s.metrics.ConnectionsTotal.Inc()
		s.metrics.ConnectionsActive.Inc()
		s.logger.Debug("accepted connection", "fd", nfd)
	}
}

// connReady services one connection: drain reads until EAGAIN,
// running the parser loop after every successful read, then flush the
// accumulated replies with a single write.
func (s *Server) connReady(fd int, events uint32) {
	c, ok := s.conns[fd]
	if !ok {
		return
	}

	if events&(unix.EPOLLHUP|unix.EPOLLERR) != 0 {
		s.closeConn(fd, c)
		return
	}

	for {
		n, err := unix.Read(fd, c.rx[c.lrx:])
		if n > 0 {
			c.lrx += n
			s.metrics.BytesReadTotal.Add(float64(n))
			if !s.consume(c) {
				s.metrics.ProtocolErrors.Inc()
				s.logger.Warn("protocol violation, closing connection", "fd", fd)
				s.closeConn(fd, c)
				return
			}
			continue
		}
		if err == nil {
			// n == 0: peer closed.
			s.closeConn(fd, c)
			return
		}
		if err == unix.EAGAIN {
			break
		}
		if err == unix.EINTR {
			continue
		}
		s.logger.Debug("read failed", "fd", fd, "error", err)
		s.closeConn(fd, c)
		return
	}

	if !s.flushPending(c) {
		s.closeConn(fd, c)
		return
	}
	if c.closeAfterFlush && len(c.tx) == 0 {
		s.closeConn(fd, c)
	}
}

// consume runs the parser loop over the unconsumed region, dispatches
// every complete command, and compacts the buffer. It reports false
// when the buffer is full with no parsable command, which is a
// protocol violation.
func (s *Server) consume(c *conn) bool {
	p := resp.NewParserAt(c.rx[:c.lrx], c.prx)
	for {
		tokens, n := p.TryParseCommand(s.tokens)
		s.tokens = tokens[:0]
		if n == 0 {
			break
		}
		c.prx = p.Pos()
		if len(tokens) > 0 {
			s.dispatch(c, tokens)
		}
	}

	c.compact()
	return c.lrx < RxBufferSize
}

// flushPending writes the pending buffer, keeping whatever the kernel
// would not take for the next cycle. It reports false on a fatal
// write error.
func (s *Server) flushPending(c *conn) bool {
	for len(c.tx) > 0 {
		n, err := unix.Write(c.sock.FD(), c.tx)
		if n > 0 {
			s.metrics.BytesWrittenTotal.Add(float64(n))
			c.consumed(n)
			continue
		}
		if err == unix.EAGAIN {
			return true
		}
		if err == unix.EINTR {
			continue
		}
		s.logger.Debug("write failed", "fd", c.sock.FD(), "error", err)
		return false
	}
	return true
}

func (s *Server) closeConn(fd int, c *conn) {
	_ = s.poller.remove(fd)
	delete(s.conns, fd)
	_ = c.sock.Close()
	s.metrics.ConnectionsActive.Dec()
	s.logger.Debug("connection closed", "fd", fd)
}

// closeAll tears the listener down first, then every connection, then
// the readiness facility.
func (s *Server) closeAll() {
	if s.listener != nil {
		_ = s.listener.Close()
	}
	for fd, c := range s.conns {
		delete(s.conns, fd)
		_ = c.sock.Close()
		s.metrics.ConnectionsActive.Dec()
	}
	if s.wake != nil {
		_ = s.wake.Close()
	}
	if s.poller != nil {
		_ = s.poller.close()
	}
	s.logger.Info("event loop stopped", "connections_served", s.connsServed)
}
