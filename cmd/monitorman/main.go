package main

import (
	"context"
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/mastercactapus/monitorman/board"
	"github.com/mastercactapus/monitorman/board/serial"
	"github.com/mastercactapus/monitorman/board/sim"
)

func openConn(cfg appConfig) (*serial.Conn, func(), error) {
	if cfg.Sim {
		log.Println("using simulated board")
		b := sim.New(0)
		return serial.NewConn(b.Host()), func() { b.Close() }, nil
	}
	log.Printf("opening serial port %s at %d baud", cfg.Port, cfg.Baud)
	conn, err := serial.Open(serial.Config{Name: cfg.Port, Baud: cfg.Baud})
	if err != nil {
		return nil, nil, err
	}
	return conn, func() {}, nil
}

func main() {
	log.SetFlags(log.Lshortfile)

	cfg, err := parseArgs(os.Args[1:])
	if err == flag.ErrHelp {
		return
	}
	if err != nil {
		log.Fatalf("ERROR: %v", err)
	}

	if cfg.UI == "tui" {
		f, err := os.OpenFile(cfg.Log, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0644)
		if err != nil {
			log.Fatalf("ERROR: open log: %v", err)
		}
		defer f.Close()
		log.SetOutput(f)
	}

	conn, cleanup, err := openConn(cfg)
	if err != nil {
		log.Fatalf("ERROR: %v", err)
	}
	defer cleanup()
	defer conn.Close()

	mirror := board.NewMirror()
	ctl := board.NewController(conn)

	var mq *bridge
	if cfg.MQTT != "" {
		mq, err = newBridge(cfg.MQTT, mirror, ctl)
		if err != nil {
			log.Fatalf("ERROR: mqtt: %v", err)
		}
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	r := newRunner(ctx)
	r.Go("poller", board.NewPoller(conn, mirror).Run)

	switch cfg.UI {
	case "web":
		a := newAPI(mirror, ctl)
		r.Go("events", a.Run)
		r.Go("http", serveHTTP(cfg.Addr, logRequests(a)))
	case "tui":
		r.Go("tui", runTUI(mirror, ctl))
	}

	if mq != nil {
		r.Go("mqtt", mq.Run)
	}

	if err := r.Wait(); err != nil {
		log.Printf("ERROR: %v", err)
		conn.Close()
		cleanup()
		os.Exit(1)
	}
}
