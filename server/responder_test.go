package server_test

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"log"
	"net"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	cache "github.com/krisalay/file-cache-server"
	"github.com/krisalay/file-cache-server/engine"
	"github.com/krisalay/file-cache-server/eviction"
	"github.com/krisalay/file-cache-server/fileloader"
	"github.com/krisalay/file-cache-server/server"
	"github.com/krisalay/file-cache-server/statslog"
	"github.com/krisalay/file-cache-server/types"
	"github.com/stretchr/testify/suite"
)

// ── Test helpers ─────────────────────────────────────────────────────────────

// recordingSink keeps every stats record in memory.
type recordingSink struct {
	mu      sync.Mutex
	records []statslog.Record
}

func (s *recordingSink) Log(r statslog.Record) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.records = append(s.records, r)
}

func (s *recordingSink) Close() error { return nil }

func (s *recordingSink) snapshot() []statslog.Record {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]statslog.Record(nil), s.records...)
}

type ResponderSuite struct {
	suite.Suite

	storeType eviction.StoreType
	dir       string
	metrics   *types.Counters
	cache     *cache.ShardedCache
	stats     *recordingSink
	addr      string
	cancel    context.CancelFunc
	done      chan error
}

func TestResponderRefcounted(t *testing.T) {
	suite.Run(t, &ResponderSuite{storeType: eviction.RefcountedList})
}

func TestResponderHeap(t *testing.T) {
	suite.Run(t, &ResponderSuite{storeType: eviction.Heap})
}

func (s *ResponderSuite) SetupTest() {
	s.dir = s.T().TempDir()
	s.writeFile("index.html", "<h1>home</h1>")
	s.writeFile("about.html", strings.Repeat("about ", 1000))
	s.writeFile("big.bin", strings.Repeat("x", 4096))

	loader, err := fileloader.New(s.dir)
	s.Require().NoError(err)
	s.T().Cleanup(func() { loader.Close() })

	s.metrics = &types.Counters{}
	s.cache = cache.NewShardedCache(1, 2, s.storeType,
		engine.NewCacheEngine(loader, s.metrics),
		eviction.WithMaxEntryBytes(1024*8),
	)
	s.stats = &recordingSink{}

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	s.Require().NoError(err)
	s.addr = ln.Addr().String()

	r := server.New(server.Config{
		Cache:       s.cache,
		Stats:       s.stats,
		Logger:      log.New(io.Discard, "", 0),
		ReadTimeout: time.Second,
	})

	ctx, cancel := context.WithCancel(context.Background())
	s.cancel = cancel
	s.done = make(chan error, 1)
	go func() { s.done <- r.Serve(ctx, ln) }()
}

func (s *ResponderSuite) TearDownTest() {
	s.cancel()
	select {
	case err := <-s.done:
		s.NoError(err)
	case <-time.After(2 * time.Second):
		s.Fail("Serve did not return after cancel")
	}
	s.cache.Close()
}

func (s *ResponderSuite) writeFile(name, body string) {
	s.Require().NoError(os.WriteFile(filepath.Join(s.dir, name), []byte(body), 0o644))
}

// request sends one raw request line and parses the response.
func (s *ResponderSuite) request(line string) (int, string) {
	conn, err := net.Dial("tcp", s.addr)
	s.Require().NoError(err)
	defer conn.Close()

	_, err = fmt.Fprintf(conn, "%s\r\n", line)
	s.Require().NoError(err)

	resp, err := http.ReadResponse(bufio.NewReader(conn), nil)
	s.Require().NoError(err)
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	s.Require().NoError(err)
	return resp.StatusCode, string(body)
}

func (s *ResponderSuite) get(path string) (int, string) {
	return s.request("GET " + path + " HTTP/1.1")
}

// ── Tests ───────────────────────────────────────────────────────────────────

func (s *ResponderSuite) TestMissThenHit() {
	code, body := s.get("/index.html")
	s.Equal(http.StatusOK, code)
	s.Equal("<h1>home</h1>", body)

	code, body = s.get("/index.html")
	s.Equal(http.StatusOK, code)
	s.Equal("<h1>home</h1>", body)

	m := s.metrics.Snapshot()
	s.Equal(int64(1), m.Hits)
	s.Equal(int64(1), m.Misses)

	s.Eventually(func() bool { return len(s.stats.snapshot()) == 2 }, time.Second, 5*time.Millisecond)
	for _, r := range s.stats.snapshot() {
		s.Equal("index.html", r.Key)
		s.Equal(int64(len("<h1>home</h1>")), r.Bytes)
		s.GreaterOrEqual(r.Elapsed, time.Duration(0))
	}
}

func (s *ResponderSuite) TestRootServesIndex() {
	code, body := s.get("/")
	s.Equal(http.StatusOK, code)
	s.Equal("<h1>home</h1>", body)
}

func (s *ResponderSuite) TestServedFromMemoryAfterDelete() {
	s.writeFile("gone.html", "still cached")
	code, _ := s.get("/gone.html")
	s.Require().Equal(http.StatusOK, code)

	s.Require().NoError(os.Remove(filepath.Join(s.dir, "gone.html")))

	code, body := s.get("/gone.html")
	s.Equal(http.StatusOK, code)
	s.Equal("still cached", body)
}

func (s *ResponderSuite) TestEvictionSendsBackToDisk() {
	s.get("/index.html")
	s.get("/about.html")
	s.get("/big.bin") // capacity 2: one of the first two goes

	s.Equal(2, s.cache.Len())
	s.Equal(int64(1), s.metrics.Snapshot().Evictions)
}

func (s *ResponderSuite) TestTooLargeIsServedUncached() {
	s.writeFile("huge.bin", strings.Repeat("h", 10000))

	code, body := s.get("/huge.bin")
	s.Equal(http.StatusOK, code)
	s.Len(body, 10000)

	s.Equal(int64(1), s.metrics.Snapshot().Uncached)
	s.NotContains(s.cache.Keys(), "huge.bin")
}

func (s *ResponderSuite) TestNotFound() {
	code, _ := s.get("/missing.html")
	s.Equal(http.StatusNotFound, code)

	code, _ = s.get("/../etc/passwd")
	s.Equal(http.StatusNotFound, code)

	s.Empty(s.stats.snapshot())
}

func (s *ResponderSuite) TestBadRequest() {
	code, _ := s.request("POST /index.html HTTP/1.1")
	s.Equal(http.StatusBadRequest, code)

	code, _ = s.request("GET index.html HTTP/1.1")
	s.Equal(http.StatusBadRequest, code)
}

func (s *ResponderSuite) TestConcurrentClients() {
	paths := []string{"/index.html", "/about.html", "/big.bin"}
	want := map[string]int{"/index.html": 13, "/about.html": 6000, "/big.bin": 4096}

	wg := sync.WaitGroup{}
	for i := 0; i < 30; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			p := paths[i%len(paths)]
			code, body := s.get(p)
			s.Equal(http.StatusOK, code)
			s.Len(body, want[p])
		}(i)
	}
	wg.Wait()

	s.LessOrEqual(s.cache.Len(), 2)
	s.Equal(0, s.cache.Zombies())
}
