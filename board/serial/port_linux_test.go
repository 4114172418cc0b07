//go:build linux

package serial

import (
	"context"
	"os"
	"strconv"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/sys/unix"

	"github.com/mastercactapus/monitorman/board"
)

// openPTY returns the master side of a new pseudo terminal and the
// path of its slave.
func openPTY(t *testing.T) (*os.File, string) {
	t.Helper()
	master, err := os.OpenFile("/dev/ptmx", os.O_RDWR|unix.O_NOCTTY, 0)
	if err != nil {
		t.Skipf("no pty available: %v", err)
	}
	t.Cleanup(func() { master.Close() })

	fd := int(master.Fd())
	require.NoError(t, unix.IoctlSetPointerInt(fd, unix.TIOCSPTLCK, 0))
	n, err := unix.IoctlGetInt(fd, unix.TIOCGPTN)
	require.NoError(t, err)
	return master, "/dev/pts/" + strconv.Itoa(n)
}

func TestOpen_PollerStopsOnSilentPort(t *testing.T) {
	master, slave := openPTY(t)

	conn, err := Open(Config{Name: slave, Baud: DefaultBaud})
	require.NoError(t, err)
	defer conn.Close()

	// answer the initial query, then stay silent
	go func() {
		buf := make([]byte, 1)
		if _, err := master.Read(buf); err != nil || buf[0] != byte(board.Query) {
			return
		}
		master.Write([]byte{2})
	}()

	m := board.NewMirror()
	ctx, cancel := context.WithCancel(context.Background())
	errCh := make(chan error, 1)
	go func() { errCh <- board.NewPoller(conn, m).Run(ctx) }()

	require.Eventually(t, func() bool {
		s, ok := m.Current()
		return ok && s == 2
	}, 3*time.Second, time.Millisecond)

	cancel()
	select {
	case err := <-errCh:
		assert.Equal(t, context.Canceled, err)
	case <-time.After(3 * time.Second):
		t.Fatal("poller did not stop after cancel")
	}
}
