package board

import (
	"context"
	"io"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPoller_InitialQuery(t *testing.T) {
	ft := newFakeTransport(9)
	ft.eof = true
	m := NewMirror()
	assert.Equal(t, InitialLabel, m.Label())

	err := NewPoller(ft, m).Run(context.Background())
	assert.ErrorIs(t, err, io.EOF)

	s, ok := m.Current()
	assert.True(t, ok)
	assert.Equal(t, State(9), s)
	assert.Equal(t, "10", m.Label())
	assert.Equal(t, []Command{Query}, ft.written)
}

func TestPoller_OnlyChanges(t *testing.T) {
	ft := newFakeTransport(9, 9, 9, 12)
	ft.eof = true
	d := &recordingDisplay{}

	err := NewPoller(ft, d).Run(context.Background())
	assert.ErrorIs(t, err, io.EOF)
	assert.Equal(t, []State{9, 12}, d.Shown())
	assert.Equal(t, "13", d.Shown()[1].String())
}

func TestPoller_Boundary(t *testing.T) {
	ft := newFakeTransport(0, 255)
	ft.eof = true
	m := NewMirror()

	err := NewPoller(ft, m).Run(context.Background())
	assert.ErrorIs(t, err, io.EOF)
	assert.Equal(t, "256", m.Label())
}

func TestPoller_Cancel(t *testing.T) {
	ft := newFakeTransport(3, 1)
	m := NewMirror()
	updates, unsubscribe := m.Subscribe()
	defer unsubscribe()

	ctx, cancel := context.WithCancel(context.Background())
	errCh := make(chan error, 1)
	go func() { errCh <- NewPoller(ft, m).Run(ctx) }()

	require.Eventually(t, func() bool {
		s, _ := m.Current()
		return s == 1
	}, time.Second, time.Millisecond)

	cancel()
	select {
	case err := <-errCh:
		assert.Equal(t, context.Canceled, err)
	case <-time.After(time.Second):
		t.Fatal("poller did not stop")
	}

	select {
	case s := <-updates:
		assert.Equal(t, State(1), s)
	default:
		t.Fatal("no update delivered")
	}
}
