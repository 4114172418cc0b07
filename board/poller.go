package board

import (
	"context"
	"fmt"
	"log"
)

// Poller mirrors the board's state onto a Display.
type Poller struct {
	t       Transport
	display Display

	last State
}

func NewPoller(t Transport, d Display) *Poller {
	return &Poller{t: t, display: d}
}

// Run queries the current state once, then reads state bytes until the
// transport fails or ctx is canceled. Only changes are forwarded.
//
// Canceling ctx closes the transport to unblock the pending read.
func (p *Poller) Run(ctx context.Context) error {
	return runWithContextCancel(ctx, func() { p.t.Close() }, p.loop)
}

func (p *Poller) loop() error {
	s, err := p.t.Query()
	if err != nil {
		return fmt.Errorf("query state: %w", err)
	}
	log.Printf("initial state: %s", s)
	p.last = s
	p.display.Show(s)

	for {
		s, err := p.t.ReadState()
		if err != nil {
			return fmt.Errorf("read state: %w", err)
		}
		if s == p.last {
			continue
		}
		p.last = s
		p.display.Show(s)
	}
}
