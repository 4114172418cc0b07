package main

import (
	"context"
	"log"
)

// runner starts tasks under one context and joins them. The first task
// to return cancels the others.
type runner struct {
	ctx    context.Context
	cancel context.CancelFunc

	n     int
	errCh chan namedErr
}

type namedErr struct {
	name string
	err  error
}

func newRunner(ctx context.Context) *runner {
	ctx, cancel := context.WithCancel(ctx)
	return &runner{
		ctx:    ctx,
		cancel: cancel,
		errCh:  make(chan namedErr),
	}
}

func (r *runner) Go(name string, fn func(context.Context) error) {
	r.n++
	go func() {
		err := fn(r.ctx)
		r.cancel()
		r.errCh <- namedErr{name: name, err: err}
	}()
}

// Wait blocks until every task has returned. It returns the first error
// other than a cancellation.
func (r *runner) Wait() error {
	defer r.cancel()
	var first error
	for i := 0; i < r.n; i++ {
		res := <-r.errCh
		if res.err == nil || res.err == context.Canceled {
			log.Printf("%s stopped", res.name)
			continue
		}
		log.Printf("ERROR: %s: %v", res.name, res.err)
		if first == nil {
			first = res.err
		}
	}
	return first
}
