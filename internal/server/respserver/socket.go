package respserver

import (
	"fmt"
	"net"

	"golang.org/x/sys/unix"
)

// Socket owns a raw non-blocking descriptor. Close is idempotent, so
// every exit path can release unconditionally.
type Socket struct {
	fd     int
	closed bool
}

func newSocket(fd int) *Socket {
	return &Socket{fd: fd}
}

// FD returns the underlying descriptor number. It doubles as the
// connection identifier.
func (s *Socket) FD() int {
	return s.fd
}

// Close releases the descriptor. Subsequent calls are no-ops.
func (s *Socket) Close() error {
	if s.closed {
		return nil
	}
	s.closed = true
	return unix.Close(s.fd)
}

// listenTCP opens a non-blocking IPv4 listening socket. An empty bind
// address means the wildcard address. With reusePort set, several
// independent processes can bind the same port and let the kernel
// spread connections across them.
func listenTCP(bind string, port, backlog int, reusePort bool) (*Socket, error) {
	fd, err := unix.Socket(unix.AF_INET, unix.SOCK_STREAM|unix.SOCK_NONBLOCK|unix.SOCK_CLOEXEC, 0)
	if err != nil {
		return nil, fmt.Errorf("socket: %w", err)
	}
	sock := newSocket(fd)

	if err := unix.SetsockoptInt(fd, unix.SOL_SOCKET, unix.SO_REUSEADDR, 1); err != nil {
		_ = sock.Close()
		return nil, fmt.Errorf("setsockopt SO_REUSEADDR: %w", err)
	}
	if reusePort {
		if err := unix.SetsockoptInt(fd, unix.SOL_SOCKET, unix.SO_REUSEPORT, 1); err != nil {
			_ = sock.Close()
			return nil, fmt.Errorf("setsockopt SO_REUSEPORT: %w", err)
		}
	}

	sa := &unix.SockaddrInet4{Port: port}
	if bind != "" {
		ip := net.ParseIP(bind)
		if ip == nil {
			_ = sock.Close()
			return nil, fmt.Errorf("invalid bind address %q", bind)
		}
		ip4 := ip.To4()
		if ip4 == nil {
			_ = sock.Close()
			return nil, fmt.Errorf("bind address %q is not IPv4", bind)
		}
		copy(sa.Addr[:], ip4)
	}

	if err := unix.Bind(fd, sa); err != nil {
		_ = sock.Close()
		return nil, fmt.Errorf("bind %s:%d: %w", bind, port, err)
	}
	if err := unix.Listen(fd, backlog); err != nil {
		_ = sock.Close()
		return nil, fmt.Errorf("listen: %w", err)
	}

	return sock, nil
}

// boundPort reports the local port of a listening socket, needed when
// the configured port was 0.
func boundPort(s *Socket) (int, error) {
	sa, err := unix.Getsockname(s.fd)
	if err != nil {
		return 0, err
	}
	in4, ok := sa.(*unix.SockaddrInet4)
	if !ok {
		return 0, fmt.Errorf("unexpected sockaddr %T", sa)
	}
	return in4.Port, nil
}
