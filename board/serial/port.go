package serial

import (
	"fmt"
	"time"

	tarm "github.com/tarm/serial"
)

const (
	DefaultPort = "/dev/ttyACM0"
	DefaultBaud = 9600

	// readTimeout bounds each read(2) on the port so a pending read
	// notices Close. Conn retries until a byte arrives.
	readTimeout = 100 * time.Millisecond
)

// Config selects the serial device. Framing is 8N1.
type Config struct {
	Name string
	Baud int
}

// Open opens the serial device and wraps it in a Conn.
func Open(cfg Config) (*Conn, error) {
	if cfg.Name == "" {
		cfg.Name = DefaultPort
	}
	if cfg.Baud == 0 {
		cfg.Baud = DefaultBaud
	}
	port, err := tarm.OpenPort(&tarm.Config{Name: cfg.Name, Baud: cfg.Baud, ReadTimeout: readTimeout})
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", cfg.Name, err)
	}
	c := NewConn(port)
	c.retryEOF = true
	return c, nil
}
