package main

import (
	"sync"

	"github.com/mastercactapus/monitorman/board"
)

type recordingWriter struct {
	mx   sync.Mutex
	cmds []board.Command
}

func (w *recordingWriter) WriteCommand(c board.Command) error {
	w.mx.Lock()
	w.cmds = append(w.cmds, c)
	w.mx.Unlock()
	return nil
}

func (w *recordingWriter) Commands() []board.Command {
	w.mx.Lock()
	defer w.mx.Unlock()
	return append([]board.Command(nil), w.cmds...)
}
