package atlas

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"

	// The atlas image contract format is PNG.
	_ "image/png"
)

// Fetcher retrieves the raw bytes of an atlas file. The default
// implementation reads from a directory; callers can substitute an
// HTTP- or fs.FS-backed fetcher without touching the cache.
type Fetcher interface {
	Fetch(ctx context.Context, path string) ([]byte, error)
}

// FileFetcher reads atlas files from the local filesystem.
type FileFetcher struct{}

// Fetch reads the file at path, honoring context cancellation between
// the check and the read (os.ReadFile itself is not cancellable).
func (FileFetcher) Fetch(ctx context.Context, path string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return os.ReadFile(path)
}

// CacheConfig holds cache configuration.
type CacheConfig struct {
	// Fetcher retrieves atlas files. Default: FileFetcher.
	Fetcher Fetcher

	// ImageExt is the atlas image file extension. Default: ".png"
	ImageExt string

	// DescriptorExts lists metrics document extensions, tried in order.
	// Default: [".json", ".fnt"]
	DescriptorExts []string
}

// DefaultCacheConfig returns default configuration.
func DefaultCacheConfig() CacheConfig {
	return CacheConfig{
		Fetcher:        FileFetcher{},
		ImageExt:       ".png",
		DescriptorExts: []string{".json", ".fnt"},
	}
}

// Cache is the atlas cache service: an explicit object with a defined
// lifecycle (Load, Get, Evict, Clear) injected into or referenced by
// Text objects, never ambient global state.
//
// Concurrent Load calls for the same name are deduplicated to at most
// one in-flight fetch; every caller receives the same result. This is
// a contract of the service, not an optimization.
//
// Cache is safe for concurrent use.
type Cache struct {
	mu       sync.Mutex
	entries  map[string]*Atlas
	inflight map[string]*inflightLoad
	config   CacheConfig

	logger atomic.Pointer[slog.Logger]

	// Statistics (atomic for lock-free reads)
	hits   atomic.Uint64
	misses atomic.Uint64
}

// inflightLoad tracks a single in-flight fetch shared by every
// concurrent Load call for the same name.
type inflightLoad struct {
	done  chan struct{}
	atlas *Atlas
	err   error
}

// NewCache creates a new atlas cache. Zero-value config fields are
// replaced with defaults.
func NewCache(config CacheConfig) *Cache {
	if config.Fetcher == nil {
		config.Fetcher = FileFetcher{}
	}
	if config.ImageExt == "" {
		config.ImageExt = ".png"
	}
	if len(config.DescriptorExts) == 0 {
		config.DescriptorExts = []string{".json", ".fnt"}
	}
	c := &Cache{
		entries:  make(map[string]*Atlas),
		inflight: make(map[string]*inflightLoad),
		config:   config,
	}
	c.logger.Store(slog.New(discardHandler{}))
	return c
}

// SetLogger configures the logger used for load lifecycle events.
// Pass nil to silence the cache.
func (c *Cache) SetLogger(l *slog.Logger) {
	if l == nil {
		l = slog.New(discardHandler{})
	}
	c.logger.Store(l)
}

// discardHandler silently drops all records.
type discardHandler struct{}

func (discardHandler) Enabled(context.Context, slog.Level) bool  { return false }
func (discardHandler) Handle(context.Context, slog.Record) error { return nil }
func (discardHandler) WithAttrs([]slog.Attr) slog.Handler        { return discardHandler{} }
func (discardHandler) WithGroup(string) slog.Handler             { return discardHandler{} }

// Load fetches and caches the atlas pair for name under basePath:
// the image at name+ImageExt and the metrics document at the first
// DescriptorExts entry that fetches successfully. The two files are
// fetched concurrently.
//
// If an atlas for name is already cached it is returned immediately.
// If a load for name is already in flight, Load waits for it instead
// of fetching again. A canceled context abandons the wait but does not
// cancel the shared fetch.
//
// Failures are reported as a *LoadError; there is no automatic retry.
func (c *Cache) Load(ctx context.Context, name, basePath string) (*Atlas, error) {
	c.mu.Lock()
	if a, ok := c.entries[name]; ok {
		c.mu.Unlock()
		c.hits.Add(1)
		return a, nil
	}
	if fl, ok := c.inflight[name]; ok {
		c.mu.Unlock()
		select {
		case <-fl.done:
			return fl.atlas, fl.err
		case <-ctx.Done():
			return nil, &LoadError{Name: name, Err: ctx.Err()}
		}
	}
	fl := &inflightLoad{done: make(chan struct{})}
	c.inflight[name] = fl
	c.mu.Unlock()

	c.misses.Add(1)
	a, err := c.fetchPair(ctx, name, basePath)

	c.mu.Lock()
	delete(c.inflight, name)
	if err == nil {
		c.entries[name] = a
	}
	c.mu.Unlock()

	fl.atlas = a
	fl.err = err
	close(fl.done)

	if err != nil {
		c.logger.Load().Info("atlas load failed", "name", name, "error", err)
		return nil, err
	}
	c.logger.Load().Info("atlas loaded",
		"name", name, "glyphs", a.GlyphCount(), "mips", a.MipLevels())
	return a, nil
}

// fetchPair fetches and decodes the image and metrics document
// concurrently. The first error wins.
func (c *Cache) fetchPair(ctx context.Context, name, basePath string) (*Atlas, error) {
	var (
		wg      sync.WaitGroup
		img     *image.RGBA
		imgErr  error
		desc    *Descriptor
		descErr error
	)

	wg.Add(2)
	go func() {
		defer wg.Done()
		img, imgErr = c.fetchImage(ctx, filepath.Join(basePath, name+c.config.ImageExt))
	}()
	go func() {
		defer wg.Done()
		desc, descErr = c.fetchDescriptor(ctx, name, basePath)
	}()
	wg.Wait()

	if imgErr != nil {
		return nil, &LoadError{Name: name, Err: imgErr}
	}
	if descErr != nil {
		return nil, &LoadError{Name: name, Err: descErr}
	}

	a := New(img, desc)
	a.Name = name
	return a, nil
}

// fetchImage fetches and decodes the atlas image. No color-space
// transform is applied; the channels are distance data.
func (c *Cache) fetchImage(ctx context.Context, path string) (*image.RGBA, error) {
	data, err := c.config.Fetcher.Fetch(ctx, path)
	if err != nil {
		return nil, fmt.Errorf("fetch image: %w", err)
	}
	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("decode image: %w", err)
	}
	return ToRGBA(img), nil
}

// fetchDescriptor fetches and parses the metrics document, trying each
// configured extension in order.
func (c *Cache) fetchDescriptor(ctx context.Context, name, basePath string) (*Descriptor, error) {
	var lastErr error
	for _, ext := range c.config.DescriptorExts {
		data, err := c.config.Fetcher.Fetch(ctx, filepath.Join(basePath, name+ext))
		if err != nil {
			lastErr = err
			continue
		}
		return ParseDescriptor(data)
	}
	return nil, fmt.Errorf("fetch descriptor: %w", lastErr)
}

// Get returns the cached atlas for name, or (nil, false) if it has not
// completed loading. Get never performs I/O.
func (c *Cache) Get(name string) (*Atlas, bool) {
	c.mu.Lock()
	a, ok := c.entries[name]
	c.mu.Unlock()
	if ok {
		c.hits.Add(1)
	}
	return a, ok
}

// Evict releases the atlas image memory for name and removes the cache
// entry. Returns false if name was not cached.
func (c *Cache) Evict(name string) bool {
	c.mu.Lock()
	a, ok := c.entries[name]
	if ok {
		delete(c.entries, name)
	}
	c.mu.Unlock()

	if ok {
		a.release()
		c.logger.Load().Info("atlas evicted", "name", name)
	}
	return ok
}

// Clear releases every cached atlas and removes all entries.
func (c *Cache) Clear() {
	c.mu.Lock()
	entries := c.entries
	c.entries = make(map[string]*Atlas)
	c.mu.Unlock()

	for _, a := range entries {
		a.release()
	}
}

// Len returns the number of cached atlases.
func (c *Cache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

// Stats returns cache hit/miss counters. A miss is counted once per
// actual fetch, not once per deduplicated caller.
func (c *Cache) Stats() (hits, misses uint64) {
	return c.hits.Load(), c.misses.Load()
}

// MemoryUsage returns the total bytes held by all cached atlases.
func (c *Cache) MemoryUsage() int64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	var total int64
	for _, a := range c.entries {
		total += a.MemoryUsage()
	}
	return total
}
