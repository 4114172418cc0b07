package main

import (
	"context"
	_ "embed"
	"encoding/json"
	"io/ioutil"
	"log"
	"net/http"
	"strings"

	sse "github.com/alexandrevicenzi/go-sse"
	"github.com/gorilla/mux"
	"github.com/gorilla/websocket"

	"github.com/mastercactapus/monitorman/board"
)

//go:embed index.html
var indexHTML []byte

type stepper interface {
	Advance() error
	Retreat() error
	Do(name string) error
}

type api struct {
	http.Handler
	mirror *board.Mirror
	ctl    stepper
	sse    *sse.Server

	upgrader websocket.Upgrader
}

type status struct {
	State int    `json:"state"`
	Label string `json:"label"`
	Known bool   `json:"known"`
}

func currentStatus(m *board.Mirror) status {
	s, ok := m.Current()
	return status{State: int(s), Label: m.Label(), Known: ok}
}

func newStatus(s board.State) status {
	return status{State: int(s), Label: s.String(), Known: true}
}

func newAPI(m *board.Mirror, ctl stepper) *api {
	r := mux.NewRouter()

	a := &api{
		Handler: r,
		mirror:  m,
		ctl:     ctl,
		sse: sse.NewServer(&sse.Options{
			Logger: log.New(ioutil.Discard, "", 0),
		}),
	}

	r.HandleFunc("/", a.index).Methods("GET")
	r.HandleFunc("/api/state", a.state).Methods("GET")
	r.HandleFunc("/api/next", a.step(ctl.Advance)).Methods("POST")
	r.HandleFunc("/api/prev", a.step(ctl.Retreat)).Methods("POST")
	r.HandleFunc("/ws", a.ws)
	r.PathPrefix("/events/").Handler(a.sse)

	return a
}

// Run forwards state changes to SSE clients until ctx is done.
func (a *api) Run(ctx context.Context) error {
	updates, unsubscribe := a.mirror.Subscribe()
	defer unsubscribe()
	defer a.sse.Shutdown()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case s := <-updates:
			data, err := json.Marshal(newStatus(s))
			if err != nil {
				log.Printf("ERROR: marshal json: %+v", err)
				continue
			}
			a.sse.SendMessage("/events/state", sse.SimpleMessage(string(data)))
		}
	}
}

func (a *api) index(w http.ResponseWriter, req *http.Request) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Write(indexHTML)
}

func (a *api) state(w http.ResponseWriter, req *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	err := json.NewEncoder(w).Encode(currentStatus(a.mirror))
	if err != nil {
		log.Println("ERROR: encode:", err)
	}
}

func (a *api) step(fn func() error) http.HandlerFunc {
	return func(w http.ResponseWriter, req *http.Request) {
		if err := fn(); err != nil {
			log.Printf("ERROR: step: %+v", err)
			http.Error(w, err.Error(), http.StatusBadGateway)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

func (a *api) ws(w http.ResponseWriter, req *http.Request) {
	c, err := a.upgrader.Upgrade(w, req, nil)
	if err != nil {
		log.Printf("ERROR: websocket upgrade: %v", err)
		return
	}
	defer c.Close()

	updates, unsubscribe := a.mirror.Subscribe()
	defer unsubscribe()

	done := make(chan struct{})
	go func() {
		defer close(done)
		for {
			_, msg, err := c.ReadMessage()
			if err != nil {
				return
			}
			if err := a.ctl.Do(strings.TrimSpace(string(msg))); err != nil {
				log.Printf("ERROR: websocket command: %v", err)
			}
		}
	}()

	if err := c.WriteJSON(currentStatus(a.mirror)); err != nil {
		log.Printf("ERROR: websocket write: %v", err)
		return
	}
	for {
		select {
		case <-done:
			return
		case s, ok := <-updates:
			if !ok {
				return
			}
			if err := c.WriteJSON(newStatus(s)); err != nil {
				log.Printf("ERROR: websocket write: %v", err)
				return
			}
		}
	}
}

func logRequests(h http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		log.Printf("%s %s - %s", req.Method, req.URL.Path, req.RemoteAddr)
		h.ServeHTTP(w, req)
	})
}

func serveHTTP(addr string, h http.Handler) func(context.Context) error {
	return func(ctx context.Context) error {
		srv := &http.Server{Addr: addr, Handler: h}
		errCh := make(chan error, 1)
		go func() {
			log.Printf("listening on %s", addr)
			errCh <- srv.ListenAndServe()
		}()
		select {
		case err := <-errCh:
			return err
		case <-ctx.Done():
			srv.Close()
			<-errCh
			return ctx.Err()
		}
	}
}
