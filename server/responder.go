// Package server is the file-serving front end: one goroutine per connection,
// each asking the cache for the requested file.
package server

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"net"
	"net/http"
	"time"

	"github.com/krisalay/file-cache-server/api"
	"github.com/krisalay/file-cache-server/statslog"
	"github.com/krisalay/file-cache-server/types"
	"golang.org/x/sync/errgroup"
)

// maxRequestLine bounds how much of a request line is read.
const maxRequestLine = 8 << 10

// Config controls the responder.
//
// Cache is required. Stats defaults to statslog.Discard, Logger to
// log.Default(), and a ReadTimeout <= 0 means no deadline for reading the
// request line.
type Config struct {
	Cache       api.Cache
	Stats       statslog.Sink
	Logger      *log.Logger
	ReadTimeout time.Duration
}

// Responder answers GET requests from the cache.
type Responder struct {
	cache       api.Cache
	stats       statslog.Sink
	logger      *log.Logger
	readTimeout time.Duration
	now         func() time.Time
}

// New never returns a nil Responder. It panics if cfg.Cache is nil.
func New(cfg Config) *Responder {
	if cfg.Cache == nil {
		panic("server: nil cache")
	}
	r := &Responder{
		cache:       cfg.Cache,
		stats:       cfg.Stats,
		logger:      cfg.Logger,
		readTimeout: cfg.ReadTimeout,
		now:         time.Now,
	}
	if r.stats == nil {
		r.stats = statslog.Discard{}
	}
	if r.logger == nil {
		r.logger = log.Default()
	}
	return r
}

/*
Serve accepts connections on ln until ctx is canceled or Accept fails, handling
each connection on its own goroutine. It closes ln and waits for in-flight
connections before returning. Cancellation is a clean shutdown and returns nil.
*/
func (r *Responder) Serve(ctx context.Context, ln net.Listener) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		<-gctx.Done()
		ln.Close()
		return nil
	})

	var acceptErr error
	for {
		conn, err := ln.Accept()
		if err != nil {
			if ctx.Err() == nil {
				acceptErr = fmt.Errorf("accept: %w", err)
			}
			break
		}
		g.Go(func() error {
			r.ServeConn(ctx, conn)
			return nil
		})
	}

	cancel()
	g.Wait()
	return acceptErr
}

/*
ServeConn handles exactly one request on conn and closes it.

The borrow returned by the cache is released by defer on every path, after
the body has been written.
*/
func (r *Responder) ServeConn(ctx context.Context, conn net.Conn) {
	defer conn.Close()

	if r.readTimeout > 0 {
		conn.SetReadDeadline(r.now().Add(r.readTimeout))
	}

	line, err := bufio.NewReaderSize(conn, maxRequestLine).ReadSlice('\n')
	switch {
	case err == nil, errors.Is(err, io.EOF) && len(line) > 0:
	case errors.Is(err, bufio.ErrBufferFull):
		r.logger.Printf("%s: request line too long", conn.RemoteAddr())
		writeStatus(conn, http.StatusBadRequest)
		return
	default:
		r.logger.Printf("read request from %s: %v", conn.RemoteAddr(), err)
		return
	}

	key, err := parseRequestLine(string(line))
	if err != nil {
		r.logger.Printf("%s: %v", conn.RemoteAddr(), err)
		writeStatus(conn, http.StatusBadRequest)
		return
	}

	start := r.now()

	b, err := r.cache.Get(ctx, key)
	if err != nil {
		r.writeError(conn, key, err)
		return
	}
	defer b.Release()

	n, err := writeOK(conn, key, b.Payload(), start)
	if err != nil {
		r.logger.Printf("send %s to %s: %v", key, conn.RemoteAddr(), err)
	}

	r.stats.Log(statslog.Record{Key: key, Bytes: n, Elapsed: r.now().Sub(start)})
}

func (r *Responder) writeError(conn net.Conn, key string, err error) {
	switch {
	case errors.Is(err, types.ErrNotFound), errors.Is(err, types.ErrInvalidKey):
		writeStatus(conn, http.StatusNotFound)
	case errors.Is(err, types.ErrClosed):
		writeStatus(conn, http.StatusServiceUnavailable)
	default:
		r.logger.Printf("get %s: %v", key, err)
		writeStatus(conn, http.StatusInternalServerError)
	}
}
