package board

import (
	"io"
	"sync"
)

// fakeTransport replays scripted state bytes, then blocks until closed.
type fakeTransport struct {
	mx      sync.Mutex
	query   State
	states  []State
	written []Command
	reads   int
	eof     bool

	closed chan struct{}
	once   sync.Once
}

func newFakeTransport(query State, states ...State) *fakeTransport {
	return &fakeTransport{query: query, states: states, closed: make(chan struct{})}
}

func (f *fakeTransport) WriteCommand(c Command) error {
	f.mx.Lock()
	defer f.mx.Unlock()
	f.written = append(f.written, c)
	return nil
}

func (f *fakeTransport) Query() (State, error) {
	f.mx.Lock()
	defer f.mx.Unlock()
	f.written = append(f.written, Query)
	f.reads++
	return f.query, nil
}

func (f *fakeTransport) ReadState() (State, error) {
	f.mx.Lock()
	f.reads++
	if len(f.states) > 0 {
		s := f.states[0]
		f.states = f.states[1:]
		f.mx.Unlock()
		return s, nil
	}
	eof := f.eof
	f.mx.Unlock()
	if eof {
		return 0, io.EOF
	}
	<-f.closed
	return 0, io.ErrClosedPipe
}

func (f *fakeTransport) Close() error {
	f.once.Do(func() { close(f.closed) })
	return nil
}

type recordingDisplay struct {
	mx    sync.Mutex
	shown []State
}

func (d *recordingDisplay) Show(s State) {
	d.mx.Lock()
	d.shown = append(d.shown, s)
	d.mx.Unlock()
}

func (d *recordingDisplay) Shown() []State {
	d.mx.Lock()
	defer d.mx.Unlock()
	return append([]State(nil), d.shown...)
}
