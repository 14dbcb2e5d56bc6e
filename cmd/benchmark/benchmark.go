package main

import (
	"flag"
	"fmt"
	"sync"
	"time"

	"github.com/krisalay/file-cache-server/eviction"
	"github.com/krisalay/file-cache-server/types"
)

/*
This program compares the two store strategies under concurrent cache hits.

Every goroutine repeatedly looks up a cached file, "sends" it by copying the
payload to a slow writer, and releases it. With the heap store the send happens
under the store lock, so goroutines take turns; with the refcounted store the
sends overlap.
*/

// slowWriter imitates a client link: every Write costs a fixed delay.
type slowWriter struct {
	delay time.Duration
}

func (w slowWriter) Write(p []byte) (int, error) {
	time.Sleep(w.delay)
	return len(p), nil
}

type result struct {
	store    eviction.StoreType
	ops      int
	duration time.Duration
	metrics  types.Snapshot
}

func run(t eviction.StoreType, capacity, goroutines, opsPerG, payloadSize int, delay time.Duration) result {
	metrics := &types.Counters{}
	store := eviction.NewStore(t, capacity, eviction.WithMetrics(metrics))

	// ---------------- Preload ----------------
	keys := make([]string, capacity+capacity/2)
	for i := range keys {
		keys[i] = fmt.Sprintf("file-%d.html", i)
	}
	for _, k := range keys[:capacity] {
		store.Insert(types.NewCacheEntry(k, make([]byte, payloadSize)))
	}

	w := slowWriter{delay: delay}

	start := time.Now()

	wg := sync.WaitGroup{}
	wg.Add(goroutines)
	for g := 0; g < goroutines; g++ {
		go func(id int) {
			defer wg.Done()
			for j := 0; j < opsPerG; j++ {
				key := keys[(id+j)%len(keys)]
				b, ok := store.Lookup(key)
				if !ok {
					metrics.Miss()
					store.Insert(types.NewCacheEntry(key, make([]byte, payloadSize)))
					continue
				}
				metrics.Hit()
				w.Write(b.Payload())
				b.Release()
			}
		}(g)
	}
	wg.Wait()

	return result{
		store:    t,
		ops:      goroutines * opsPerG,
		duration: time.Since(start),
		metrics:  metrics.Snapshot(),
	}
}

// ================= BENCHMARK =================

func main() {
	var (
		capacity    = flag.Int("capacity", 5, "store capacity")
		goroutines  = flag.Int("goroutines", 32, "concurrent readers")
		opsPerG     = flag.Int("ops", 200, "lookups per reader")
		payloadSize = flag.Int("payload", 64<<10, "bytes per cached file")
		delay       = flag.Duration("send-delay", 200*time.Microsecond, "simulated cost of one send")
	)
	flag.Parse()

	fmt.Println("\n================ STORE CONTENTION BENCHMARK =================")
	fmt.Println("Capacity      :", *capacity)
	fmt.Println("Goroutines    :", *goroutines)
	fmt.Println("Ops/Goroutine :", *opsPerG)
	fmt.Println("Payload bytes :", *payloadSize)
	fmt.Println("Send delay    :", *delay)

	for _, t := range []eviction.StoreType{eviction.Heap, eviction.RefcountedList} {
		r := run(t, *capacity, *goroutines, *opsPerG, *payloadSize, *delay)

		fmt.Printf("\n---------------- %s ----------------\n", r.store)
		fmt.Printf("Total Operations : %d\n", r.ops)
		fmt.Printf("Total Time       : %v\n", r.duration)
		fmt.Printf("Throughput       : %.2f ops/sec\n", float64(r.ops)/r.duration.Seconds())
		fmt.Printf("Hit Rate         : %.2f\n", r.metrics.HitRate())
		fmt.Printf("Evictions        : %d\n", r.metrics.Evictions)
	}
	fmt.Println("=============================================================")
}
