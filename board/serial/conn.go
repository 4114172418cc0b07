package serial

import (
	"bufio"
	"io"
	"sync"
	"sync/atomic"

	"github.com/mastercactapus/monitorman/board"
)

// Conn represents a direct connection to a board.
//
// Writes are serialized by one mutex and reads by another, so a command
// issued from a UI goroutine never interleaves with a query in flight.
type Conn struct {
	rw io.ReadWriter
	r  *bufio.Reader

	rMx sync.Mutex
	wMx sync.Mutex

	// retryEOF is set for ports opened with a read timeout, where an
	// expired timeout surfaces as io.EOF.
	retryEOF bool

	buffered  int64
	closeCh   chan struct{}
	closeOnce sync.Once
}

var _ board.Transport = &Conn{}

// NewConn creates a new Conn using the provided ReadWriter for data.
func NewConn(rw io.ReadWriter) *Conn {
	return &Conn{
		rw:      rw,
		r:       bufio.NewReader(rw),
		closeCh: make(chan struct{}),
	}
}

func (c *Conn) isClosed() bool {
	select {
	case <-c.closeCh:
		return true
	default:
		return false
	}
}

// Close will abort any pending reads and close the underlying
// ReadWriter, if it implements io.Closer.
func (c *Conn) Close() (err error) {
	c.closeOnce.Do(func() {
		close(c.closeCh)
		if closer, ok := c.rw.(io.Closer); ok {
			err = closer.Close()
		}
	})
	return err
}

func (c *Conn) writeByte(b byte) error {
	if c.isClosed() {
		return io.ErrClosedPipe
	}
	c.wMx.Lock()
	n, err := c.rw.Write([]byte{b})
	c.wMx.Unlock()
	if err != nil {
		return err
	}
	if n != 1 {
		return io.ErrShortWrite
	}
	return nil
}

// WriteCommand writes exactly one command byte.
func (c *Conn) WriteCommand(cmd board.Command) error {
	return c.writeByte(byte(cmd))
}

// readByte must be called with rMx held.
func (c *Conn) readByte() (board.State, error) {
	if c.isClosed() {
		return 0, io.ErrClosedPipe
	}
	b, err := c.r.ReadByte()
	for err == io.EOF && c.retryEOF && !c.isClosed() {
		b, err = c.r.ReadByte()
	}
	atomic.StoreInt64(&c.buffered, int64(c.r.Buffered()))
	if err != nil {
		if c.isClosed() {
			return 0, io.ErrClosedPipe
		}
		return 0, err
	}
	return board.State(b), nil
}

// ReadState blocks until the next state byte arrives.
func (c *Conn) ReadState() (board.State, error) {
	c.rMx.Lock()
	defer c.rMx.Unlock()
	return c.readByte()
}

// Query sends the query command and reads exactly one reply byte.
func (c *Conn) Query() (board.State, error) {
	c.rMx.Lock()
	defer c.rMx.Unlock()
	if err := c.writeByte(byte(board.Query)); err != nil {
		return 0, err
	}
	return c.readByte()
}

// Buffered returns the number of bytes already received but not yet
// consumed. It never blocks.
func (c *Conn) Buffered() int {
	return int(atomic.LoadInt64(&c.buffered))
}
