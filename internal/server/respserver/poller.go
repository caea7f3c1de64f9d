package respserver

import (
	"golang.org/x/sys/unix"
)

// maxEvents caps the number of readiness events drained per wait.
const maxEvents = 128

// readEvents is the registration mask for the listener and every
// connection: input readiness, edge-triggered, with peer-close
// notification. The shutdown eventfd is registered with EPOLLIN alone.
const readEvents = unix.EPOLLIN | unix.EPOLLRDHUP | unix.EPOLLET

// poller wraps an epoll instance. The loop blocks in wait; everything
// else is non-blocking.
type poller struct {
	epfd   int
	events []unix.EpollEvent
}

func newPoller() (*poller, error) {
	epfd, err := unix.EpollCreate1(unix.EPOLL_CLOEXEC)
	if err != nil {
		return nil, err
	}
	return &poller{
		epfd:   epfd,
		events: make([]unix.EpollEvent, maxEvents),
	}, nil
}

func (p *poller) add(fd int, events uint32) error {
	ev := unix.EpollEvent{Events: events, Fd: int32(fd)}
	return unix.EpollCtl(p.epfd, unix.EPOLL_CTL_ADD, fd, &ev)
}

func (p *poller) remove(fd int) error {
	return unix.EpollCtl(p.epfd, unix.EPOLL_CTL_DEL, fd, nil)
}

// wait blocks until at least one descriptor is ready, retrying
// through signal interrupts.
func (p *poller) wait() ([]unix.EpollEvent, error) {
	for {
		n, err := unix.EpollWait(p.epfd, p.events, -1)
		if err == unix.EINTR {
			continue
		}
		if err != nil {
			return nil, err
		}
		return p.events[:n], nil
	}
}

func (p *poller) close() error {
	return unix.Close(p.epfd)
}
