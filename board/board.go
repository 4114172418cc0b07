package board

import (
	"fmt"
	"strconv"
)

// InitialLabel is shown before the first state has been observed.
const InitialLabel = "10"

// State is the board's current discrete position as reported on the wire.
type State uint8

// String returns the 1-based decimal form shown to the user.
func (s State) String() string { return strconv.Itoa(int(s) + 1) }

// A Command is a single byte instruction sent to the board.
type Command byte

const (
	Next     Command = 'N'
	Previous Command = 'P'
	Query    Command = 'C'
)

func (c Command) String() string {
	switch c {
	case Next:
		return "next"
	case Previous:
		return "previous"
	case Query:
		return "query"
	}
	return fmt.Sprintf("Command(%#02x)", byte(c))
}

// A Transport represents the minimal byte-level board interface.
type Transport interface {
	WriteCommand(Command) error

	// ReadState blocks until the next state byte arrives.
	ReadState() (State, error)

	// Query requests the current state and returns the reply.
	Query() (State, error)

	Close() error
}

// A Display shows states forwarded by the Poller.
type Display interface {
	Show(State)
}
