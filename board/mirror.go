package board

import "sync"

// Mirror holds the last state observed on the transport and notifies
// subscribers. It has no model of its own; it only reflects what the
// board reports.
type Mirror struct {
	mx    sync.Mutex
	state State
	known bool
	subs  map[chan State]struct{}
}

var _ Display = &Mirror{}

func NewMirror() *Mirror {
	return &Mirror{subs: make(map[chan State]struct{})}
}

// Current returns the last observed state. ok is false until the first
// state has been shown.
func (m *Mirror) Current() (s State, ok bool) {
	m.mx.Lock()
	defer m.mx.Unlock()
	return m.state, m.known
}

// Label returns the text for the display label.
func (m *Mirror) Label() string {
	s, ok := m.Current()
	if !ok {
		return InitialLabel
	}
	return s.String()
}

// Show records s and pushes it to every subscriber. A subscriber that
// has not consumed its previous value gets it replaced by s.
func (m *Mirror) Show(s State) {
	m.mx.Lock()
	defer m.mx.Unlock()
	m.state = s
	m.known = true
	for ch := range m.subs {
		select {
		case ch <- s:
		default:
			select {
			case <-ch:
			default:
			}
			ch <- s
		}
	}
}

// Subscribe returns a channel receiving every shown state and a func
// that ends the subscription and closes the channel.
func (m *Mirror) Subscribe() (<-chan State, func()) {
	ch := make(chan State, 1)
	m.mx.Lock()
	m.subs[ch] = struct{}{}
	m.mx.Unlock()

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			m.mx.Lock()
			delete(m.subs, ch)
			close(ch)
			m.mx.Unlock()
		})
	}
}
