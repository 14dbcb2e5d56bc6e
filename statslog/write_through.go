package statslog

import (
	"bufio"
	"io"
	"log"
	"sync"
)

/*
This file implements the "write-through" sink.

Whenever a request finishes, its line is written and flushed immediately,
under a mutex so lines from concurrent requests never interleave.

So the flow is: send response → append line → flush (synchronous)
*/
type WriteThroughSink struct {
	mu sync.Mutex
	w  *bufio.Writer
	c  io.Closer
}

/*
NewWriteThroughSink creates a write-through sink over w.
If w is also an io.Closer it is closed by Close.
*/
func NewWriteThroughSink(w io.Writer) *WriteThroughSink {
	s := &WriteThroughSink{w: bufio.NewWriter(w)}
	if c, ok := w.(io.Closer); ok {
		s.c = c
	}
	return s
}

/*
Log writes one record and flushes it.
Write errors are logged and otherwise ignored: losing a stats line must never fail a request.
*/
func (s *WriteThroughSink) Log(r Record) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := writeRecord(s.w, r); err != nil {
		log.Printf("stats: write %s: %v", r.Key, err)
		return
	}
	if err := s.w.Flush(); err != nil {
		log.Printf("stats: flush: %v", err)
	}
}

// Close flushes and closes the underlying writer.
func (s *WriteThroughSink) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.w.Flush(); err != nil {
		return err
	}
	if s.c != nil {
		return s.c.Close()
	}
	return nil
}
