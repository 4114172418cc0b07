package sim

import (
	"context"
	"testing"
	"time"

	"github.com/mastercactapus/monitorman/board"
	"github.com/mastercactapus/monitorman/board/serial"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBoard_QueryIdempotent(t *testing.T) {
	b := New(2)
	defer b.Close()
	c := serial.NewConn(b.Host())

	s1, err := c.Query()
	require.NoError(t, err)
	s2, err := c.Query()
	require.NoError(t, err)
	assert.Equal(t, board.State(2), s1)
	assert.Equal(t, s1, s2)
}

func TestBoard_Wraps(t *testing.T) {
	b := New(3)
	defer b.Close()
	c := serial.NewConn(b.Host())

	require.NoError(t, c.WriteCommand(board.Next))
	s, err := c.ReadState()
	require.NoError(t, err)
	assert.Equal(t, board.State(0), s)

	require.NoError(t, c.WriteCommand(board.Previous))
	s, err = c.ReadState()
	require.NoError(t, err)
	assert.Equal(t, board.State(3), s)
}

func TestBoard_Press(t *testing.T) {
	b := New(0)
	defer b.Close()
	c := serial.NewConn(b.Host())

	require.NoError(t, b.Press(board.Next))
	s, err := c.ReadState()
	require.NoError(t, err)
	assert.Equal(t, board.State(1), s)
	assert.Error(t, b.Press(board.Query))
}

func waitFor(t *testing.T, m *board.Mirror, want board.State) {
	t.Helper()
	require.Eventually(t, func() bool {
		s, ok := m.Current()
		return ok && s == want
	}, 2*time.Second, time.Millisecond)
}

func TestBoard_AdvanceRetreatRestores(t *testing.T) {
	b := New(1)
	defer b.Close()
	c := serial.NewConn(b.Host())
	m := board.NewMirror()
	ctl := board.NewController(c)

	ctx, cancel := context.WithCancel(context.Background())
	errCh := make(chan error, 1)
	go func() { errCh <- board.NewPoller(c, m).Run(ctx) }()

	waitFor(t, m, 1)
	require.NoError(t, ctl.Advance())
	waitFor(t, m, 2)
	assert.Equal(t, "3", m.Label())
	require.NoError(t, ctl.Retreat())
	waitFor(t, m, 1)

	require.NoError(t, b.Press(board.Previous))
	waitFor(t, m, 0)
	assert.Equal(t, "1", m.Label())

	cancel()
	assert.Equal(t, context.Canceled, <-errCh)
}
