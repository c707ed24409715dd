package io

import (
	"bufio"
	"io"
	"sync"
	"time"
)

// TimedWriter is a buffered writer for small frames. Buffered data is
// flushed when maxQueue bytes are pending or after the deadline, whichever
// comes first. A zero deadline flushes on every write.
type TimedWriter struct {
	mutex    sync.Mutex
	w        *bufio.Writer
	deadline time.Duration
	maxQueue int

	queued  int
	timer   *time.Timer
	prevErr error
}

func NewTimedWriter(w io.Writer, bufsize int) *TimedWriter {
	return &TimedWriter{
		w:        bufio.NewWriterSize(w, bufsize),
		deadline: 1 * time.Millisecond,
		maxQueue: bufsize / 2,
	}
}

func (w *TimedWriter) SetDeadline(d time.Duration) {
	w.mutex.Lock()
	defer w.mutex.Unlock()
	w.deadline = d
}

func (w *TimedWriter) SetMaxQueue(bytes int) {
	w.mutex.Lock()
	defer w.mutex.Unlock()
	w.maxQueue = bytes
}

// Write writes one frame. An error from a timed flush is returned by the
// next call.
func (w *TimedWriter) Write(p []byte) (n int, err error) {
	w.mutex.Lock()
	defer w.mutex.Unlock()

	if err := w.prevErr; err != nil {
		w.prevErr = nil
		return 0, err
	}

	n, err = w.w.Write(p)
	if err != nil {
		return n, err
	}

	w.queued += n
	if w.deadline == 0 || w.queued >= w.maxQueue {
		return n, w.flush()
	}
	if w.timer == nil {
		w.timer = time.AfterFunc(w.deadline, func() { w.Flush() })
	}
	return n, nil
}

func (w *TimedWriter) Flush() error {
	w.mutex.Lock()
	defer w.mutex.Unlock()
	return w.flush()
}

func (w *TimedWriter) flush() error {
	if w.timer != nil {
		w.timer.Stop()
		w.timer = nil
	}
	w.queued = 0

	if err := w.w.Flush(); err != nil {
		w.prevErr = err
		return err
	}
	return nil
}
