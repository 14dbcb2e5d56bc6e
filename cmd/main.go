package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log"
	"net"
	"os"
	"os/signal"
	"syscall"
	"time"

	cache "github.com/krisalay/file-cache-server"
	"github.com/krisalay/file-cache-server/engine"
	"github.com/krisalay/file-cache-server/eviction"
	"github.com/krisalay/file-cache-server/fileloader"
	"github.com/krisalay/file-cache-server/server"
	"github.com/krisalay/file-cache-server/statslog"
	"github.com/krisalay/file-cache-server/types"
)

type options struct {
	addr          string
	root          string
	capacity      int
	shards        int
	store         string
	maxEntryBytes int64
	statsPath     string
	statsAsync    bool
	statsBuffer   int
	readTimeout   time.Duration
}

func parseFlags() options {
	var o options
	flag.StringVar(&o.addr, "addr", ":8080", "listen address")
	flag.StringVar(&o.root, "root", ".", "directory to serve")
	flag.IntVar(&o.capacity, "capacity", 5, "maximum number of cached files")
	flag.IntVar(&o.shards, "shards", 1, "number of independent cache stores")
	flag.StringVar(&o.store, "store", "refcount", "cache store: refcount or heap")
	flag.Int64Var(&o.maxEntryBytes, "max-entry-bytes", 64<<20, "largest file kept in the cache (0 = no limit)")
	flag.StringVar(&o.statsPath, "stats", "stats_cached.txt", "stats log file (empty disables it)")
	flag.BoolVar(&o.statsAsync, "stats-async", false, "write stats from a background worker")
	flag.IntVar(&o.statsBuffer, "stats-buffer", 1024, "queued stats records before dropping (with -stats-async)")
	flag.DurationVar(&o.readTimeout, "read-timeout", 10*time.Second, "deadline for reading a request line")
	flag.Parse()
	return o
}

// ================= MAIN =================

func main() {
	o := parseFlags()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, o); err != nil {
		log.Fatal(err)
	}
}

func run(ctx context.Context, o options) error {
	storeType, err := eviction.ParseStoreType(o.store)
	if err != nil {
		return err
	}

	// ---------------- Disk ----------------
	loader, err := fileloader.New(o.root)
	if err != nil {
		return err
	}
	defer loader.Close()

	// ---------------- Stats log ----------------
	stats, err := openStats(o)
	if err != nil {
		return err
	}
	defer func() {
		if err := stats.Close(); err != nil {
			log.Printf("stats close: %v", err)
		}
	}()

	// ---------------- Cache ----------------
	metrics := &types.Counters{}
	c := cache.NewShardedCache(
		o.shards,
		o.capacity,
		storeType,
		engine.NewCacheEngine(loader, metrics),
		eviction.WithMaxEntryBytes(o.maxEntryBytes),
	)
	defer c.Close()

	ln, err := net.Listen("tcp", o.addr)
	if err != nil {
		return fmt.Errorf("listen %s: %w", o.addr, err)
	}

	log.Printf("serving %s on %s (store=%s capacity=%d shards=%d)",
		o.root, ln.Addr(), storeType, c.Capacity(), o.shards)

	r := server.New(server.Config{
		Cache:       c,
		Stats:       stats,
		ReadTimeout: o.readTimeout,
	})
	err = r.Serve(ctx, ln)

	printMetrics(metrics.Snapshot(), c)
	return err
}

func openStats(o options) (statslog.Sink, error) {
	if o.statsPath == "" {
		return statslog.Discard{}, nil
	}

	f, err := os.OpenFile(o.statsPath, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0644)
	if err != nil {
		return nil, fmt.Errorf("open stats log: %w", err)
	}

	var w io.Writer = f
	if o.statsAsync {
		return statslog.NewWriteBackSink(w, o.statsBuffer), nil
	}
	return statslog.NewWriteThroughSink(w), nil
}

// ================= METRICS =================

func printMetrics(s types.Snapshot, c *cache.ShardedCache) {
	log.Println("==================== METRICS ====================")
	log.Printf("HITS      : %d", s.Hits)
	log.Printf("MISSES    : %d", s.Misses)
	log.Printf("HIT RATE  : %.2f", s.HitRate())
	log.Printf("EVICTIONS : %d", s.Evictions)
	log.Printf("DESTROYED : %d", s.Destroys)
	log.Printf("UNCACHED  : %d", s.Uncached)
	log.Printf("CACHED    : %v", c.Keys())
}
