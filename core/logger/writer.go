package logger

import (
	"bufio"
	"errors"
	"io"
	"sync"
)

var errWriterClosed = errors.New("logger: writer closed")

// op is either a log line or a flush request.
type op struct {
	line  []byte
	flush chan error
}

// asyncWriter fans lines out to several sinks from one goroutine so callers
// never wait on disk or terminal I/O unless the queue is full.
type asyncWriter struct {
	ops  chan op
	done chan struct{}
	out  *bufio.Writer

	// gate guards ops against sends after close.
	gate   sync.RWMutex
	closed bool

	mu  sync.Mutex
	err error
}

func newAsyncWriter(sinks []io.Writer, bufSize int) *asyncWriter {
	if bufSize <= 0 {
		bufSize = 64 * 1024
	}
	live := sinks[:0:0]
	for _, s := range sinks {
		if s != nil {
			live = append(live, s)
		}
	}
	w := &asyncWriter{
		ops:  make(chan op, 256),
		done: make(chan struct{}),
		out:  bufio.NewWriterSize(io.MultiWriter(live...), bufSize),
	}
	go w.run()
	return w
}

func (w *asyncWriter) run() {
	defer close(w.done)
	for o := range w.ops {
		if o.flush != nil {
			o.flush <- w.out.Flush()
			continue
		}
		if _, err := w.out.Write(o.line); err != nil {
			w.setErr(err)
			continue
		}
		// Flush eagerly when idle so tail -f stays current.
		if len(w.ops) == 0 {
			if err := w.out.Flush(); err != nil {
				w.setErr(err)
			}
		}
	}
	w.setErr(w.out.Flush())
}

// Write queues a copy of p; it blocks only when the queue is full.
func (w *asyncWriter) Write(p []byte) error {
	if err := w.getErr(); err != nil {
		return err
	}
	if len(p) == 0 {
		return nil
	}
	w.gate.RLock()
	defer w.gate.RUnlock()
	if w.closed {
		return errWriterClosed
	}
	w.ops <- op{line: append([]byte(nil), p...)}
	return nil
}

// Flush waits until every queued line reached the sinks.
func (w *asyncWriter) Flush() error {
	ack := make(chan error, 1)
	w.gate.RLock()
	if w.closed {
		w.gate.RUnlock()
		return w.getErr()
	}
	w.ops <- op{flush: ack}
	w.gate.RUnlock()
	if err := <-ack; err != nil {
		return err
	}
	return w.getErr()
}

// Close drains the queue; later writes fail with errWriterClosed.
func (w *asyncWriter) Close() error {
	w.gate.Lock()
	if !w.closed {
		w.closed = true
		close(w.ops)
	}
	w.gate.Unlock()
	<-w.done
	return w.getErr()
}

func (w *asyncWriter) getErr() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.err
}

func (w *asyncWriter) setErr(err error) {
	if err == nil {
		return
	}
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.err == nil {
		w.err = err
	}
}
