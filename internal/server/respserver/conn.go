package respserver

// RxBufferSize is the fixed per-connection receive buffer size. A
// single command must fit within it; a connection whose buffer fills
// without the parser making progress is protocol-violating and is
// torn down.
const RxBufferSize = 4096

// conn holds the per-connection state: the owned socket, the receive
// accumulator with its parser cursor, and the pending reply buffer.
// Connections are only ever touched by the event loop.
type conn struct {
	sock *Socket

	rx  [RxBufferSize]byte
	lrx int // rx[:lrx] holds received bytes
	prx int // rx[:prx] has been consumed by the parser

	tx []byte // replies waiting for the cycle's single flush

	closeAfterFlush bool
}

func newConn(sock *Socket) *conn {
	return &conn{sock: sock}
}

// compact moves the unconsumed tail of the receive buffer to offset
// zero, making room for the next read. Any parser views into rx are
// invalid afterwards.
func (c *conn) compact() {
	if c.prx == 0 {
		return
	}
	copy(c.rx[:], c.rx[c.prx:c.lrx])
	c.lrx -= c.prx
	c.prx = 0
}

// consumed drops n flushed bytes from the front of the pending
// buffer, keeping the backing array for reuse.
func (c *conn) consumed(n int) {
	if n == len(c.tx) {
		c.tx = c.tx[:0]
		return
	}
	c.tx = append(c.tx[:0], c.tx[n:]...)
}
