// Package sim provides an in-process board running the MSP432 firmware's
// four state LED program.
package sim

import (
	"errors"
	"io"
	"net"
	"sync"

	"github.com/mastercactapus/monitorman/board"
)

// States is the number of states the firmware cycles through.
const States = 4

// Board simulates the firmware. Commands written to Host are handled in
// order; N and P step the state and reply with it, C replies with it.
type Board struct {
	host net.Conn
	dev  net.Conn

	mx    sync.Mutex
	state board.State

	out  chan byte
	done chan struct{}
	once sync.Once
	wg   sync.WaitGroup
}

// New starts a simulated board in the given state.
func New(initial board.State) *Board {
	host, dev := net.Pipe()
	b := &Board{
		host:  host,
		dev:   dev,
		state: initial,
		out:   make(chan byte, 64),
		done:  make(chan struct{}),
	}
	b.wg.Add(2)
	go b.readLoop()
	go b.writeLoop()
	return b
}

// Host returns the end a client reads states from and writes commands to.
func (b *Board) Host() io.ReadWriteCloser { return b.host }

// State returns the board's current state.
func (b *Board) State() board.State {
	b.mx.Lock()
	defer b.mx.Unlock()
	return b.state
}

// Press simulates one of the physical buttons. The new state is pushed
// to the host unsolicited.
func (b *Board) Press(cmd board.Command) error {
	if cmd != board.Next && cmd != board.Previous {
		return errors.New("board has no " + cmd.String() + " button")
	}
	b.handle(byte(cmd))
	return nil
}

// Close stops the board and closes both ends of the pipe.
func (b *Board) Close() error {
	b.once.Do(func() {
		close(b.done)
		b.dev.Close()
		b.host.Close()
	})
	b.wg.Wait()
	return nil
}

func (b *Board) step(delta int) board.State {
	b.mx.Lock()
	defer b.mx.Unlock()
	b.state = board.State((int(b.state) + delta + States) % States)
	return b.state
}

func (b *Board) handle(c byte) {
	var s board.State
	switch board.Command(c) {
	case board.Next:
		s = b.step(1)
	case board.Previous:
		s = b.step(-1)
	case board.Query:
		s = b.State()
	default:
		return
	}
	select {
	case b.out <- byte(s):
	case <-b.done:
	}
}

func (b *Board) readLoop() {
	defer b.wg.Done()
	buf := make([]byte, 1)
	for {
		_, err := b.dev.Read(buf)
		if err != nil {
			return
		}
		b.handle(buf[0])
	}
}

func (b *Board) writeLoop() {
	defer b.wg.Done()
	for {
		select {
		case <-b.done:
			return
		case c := <-b.out:
			if _, err := b.dev.Write([]byte{c}); err != nil {
				return
			}
		}
	}
}
