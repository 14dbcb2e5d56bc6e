package statslog

import (
	"bufio"
	"io"
	"log"
	"sync"
	"sync/atomic"
)

// This file implements the "write-back" sink.

/*
WriteBackSink queues records and writes them from one background worker.
*/
type WriteBackSink struct {
	w *bufio.Writer
	c io.Closer

	// ch is a buffered channel that holds pending records.
	ch chan Record

	// dropped counts records discarded because the queue was full.
	dropped atomic.Int64

	closeOnce sync.Once
	closeErr  error

	// wg is used to wait for the worker to finish during shutdown.
	wg sync.WaitGroup
}

// NewWriteBackSink creates a write-back sink over w with room for buffer queued records.
func NewWriteBackSink(w io.Writer, buffer int) *WriteBackSink {
	if buffer <= 0 {
		buffer = 1
	}
	s := &WriteBackSink{
		w:  bufio.NewWriter(w),
		ch: make(chan Record, buffer),
	}
	if c, ok := w.(io.Closer); ok {
		s.c = c
	}

	// Start one background worker
	s.wg.Add(1)
	go s.worker()

	return s
}

// Log queues r. If the queue is full the record is DROPPED so that the request path never blocks on the log.
func (s *WriteBackSink) Log(r Record) {
	select {
	case s.ch <- r:
	default:
		s.dropped.Add(1)
	}
}

// Dropped returns how many records were discarded under pressure.
func (s *WriteBackSink) Dropped() int64 {
	return s.dropped.Load()
}

/*
worker drains the queue. It flushes whenever the queue runs empty so lines
reach the file promptly without a flush per record under load.
*/
func (s *WriteBackSink) worker() {
	defer s.wg.Done()

	for r := range s.ch {
		if err := writeRecord(s.w, r); err != nil {
			log.Printf("stats: write %s: %v", r.Key, err)
			continue
		}
		if len(s.ch) == 0 {
			if err := s.w.Flush(); err != nil {
				log.Printf("stats: flush: %v", err)
			}
		}
	}
}

/*
Close shuts down the sink gracefully.
1. Close the channel (no more records accepted)
2. Wait for the worker to finish processing queued records
3. Flush and close the underlying writer

Log must not be called after Close.
*/
func (s *WriteBackSink) Close() error {
	s.closeOnce.Do(func() {
		close(s.ch)
		s.wg.Wait()

		s.closeErr = s.w.Flush()
		if s.c != nil {
			if err := s.c.Close(); err != nil && s.closeErr == nil {
				s.closeErr = err
			}
		}
	})
	return s.closeErr
}
