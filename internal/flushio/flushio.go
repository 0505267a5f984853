// Package flushio provides buffered output that may be shared between
// goroutines.
package flushio

import (
	"bufio"
	"io"
	"sync"
)

// WriteFlusher is an io.Writer whose output may be held until Flush.
type WriteFlusher interface {
	io.Writer
	Flush() error
}

// Discard swallows all writes.
var Discard WriteFlusher = nopFlusher{io.Discard}

// NewWriteFlusher adapts w: in-memory buffers and io.Discard gain a no-op
// Flush, existing WriteFlushers pass through, anything else is buffered.
func NewWriteFlusher(w io.Writer) WriteFlusher {
	if w == nil || w == io.Discard {
		return Discard
	}
	if wf, ok := w.(WriteFlusher); ok {
		return wf
	}
	type buffer interface {
		io.Writer
		Len() int
		Reset()
	}
	if _, ok := w.(buffer); ok {
		return nopFlusher{w}
	}
	return bufio.NewWriter(w)
}

type nopFlusher struct{ io.Writer }

func (nopFlusher) Flush() error { return nil }

// Tee writes into, and flushes, all of wfs in order. Nil entries are skipped
// and nested Tees are flattened.
func Tee(wfs ...WriteFlusher) WriteFlusher {
	var all tee
	for _, wf := range wfs {
		switch wf := wf.(type) {
		case nil:
		case tee:
			all = append(all, wf...)
		default:
			all = append(all, wf)
		}
	}
	switch len(all) {
	case 0:
		return Discard
	case 1:
		return all[0]
	}
	return all
}

type tee []WriteFlusher

func (t tee) Write(p []byte) (int, error) {
	for _, wf := range t {
		n, err := wf.Write(p)
		if err != nil {
			return n, err
		}
		if n != len(p) {
			return n, io.ErrShortWrite
		}
	}
	return len(p), nil
}

func (t tee) Flush() (err error) {
	for _, wf := range t {
		if ferr := wf.Flush(); err == nil {
			err = ferr
		}
	}
	return err
}

// Locked serializes Write and Flush calls on the wrapped WriteFlusher.
type Locked struct {
	mu sync.Mutex
	wf WriteFlusher
}

// NewLocked wraps wf.
func NewLocked(wf WriteFlusher) *Locked { return &Locked{wf: wf} }

func (l *Locked) Write(p []byte) (int, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.wf.Write(p)
}

// Flush flushes the wrapped writer.
func (l *Locked) Flush() error {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.wf.Flush()
}

// Swap replaces the wrapped writer, flushing the old one first.
func (l *Locked) Swap(f func(WriteFlusher) WriteFlusher) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	var err error
	if l.wf != nil {
		err = l.wf.Flush()
	}
	l.wf = f(l.wf)
	return err
}
