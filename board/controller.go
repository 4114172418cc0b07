package board

import "fmt"

// CommandWriter is the write half of a Transport.
type CommandWriter interface {
	WriteCommand(Command) error
}

// Controller issues step commands. It never reads; resulting state
// changes are picked up by the Poller.
type Controller struct {
	w CommandWriter
}

func NewController(w CommandWriter) *Controller {
	return &Controller{w: w}
}

// Advance asks the board to move to the next state.
func (c *Controller) Advance() error { return c.w.WriteCommand(Next) }

// Retreat asks the board to move to the previous state.
func (c *Controller) Retreat() error { return c.w.WriteCommand(Previous) }

// Do runs a step command by name, as received from the web, websocket
// and MQTT surfaces.
func (c *Controller) Do(name string) error {
	switch name {
	case "next", "advance":
		return c.Advance()
	case "prev", "previous", "retreat":
		return c.Retreat()
	}
	return fmt.Errorf("unknown command %q", name)
}
