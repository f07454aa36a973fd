// Package images fetches remote card images and keeps a bounded on-disk
// cache of them. Concurrent fetches of the same URL are collapsed into one
// request, and the cache is evicted in the background on a best-effort basis.
package images

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"log/slog"

	"github.com/cardbinder/cardbinder/internal/utils"
)

// Defaults applied when a Cache is created with zero limits.
const (
	DefaultMaxImages = 200
	DefaultMaxAge    = 24 * time.Hour
)

type entry struct {
	path       string
	fetchedAt  time.Time
	lastAccess time.Time
}

type fetchResult struct {
	data []byte
	err  error
}

// Cache is a bounded URL-keyed image cache. Safe for concurrent use.
type Cache struct {
	dir       string
	maxImages int
	maxAge    time.Duration
	client    *http.Client

	mu      sync.Mutex
	entries map[string]*entry
	loading map[string][]chan fetchResult
}

// NewCache creates the cache directory if needed. Zero limits fall back to
// the package defaults.
func NewCache(dir string, maxImages int, maxAge time.Duration) (*Cache, error) {
	if maxImages <= 0 {
		maxImages = DefaultMaxImages
	}
	if maxAge <= 0 {
		maxAge = DefaultMaxAge
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create cache directory: %w", err)
	}
	return &Cache{
		dir:       dir,
		maxImages: maxImages,
		maxAge:    maxAge,
		client: &http.Client{
			Timeout: 30 * time.Second,
		},
		entries: make(map[string]*entry),
		loading: make(map[string][]chan fetchResult),
	}, nil
}

// Len returns the number of cached entries.
func (c *Cache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

// Get returns the image bytes for url, fetching and caching on a miss.
// Concurrent callers for the same url share a single fetch.
func (c *Cache) Get(ctx context.Context, url string) ([]byte, error) {
	key := utils.CalculateDataMD5([]byte(url))

	c.mu.Lock()
	if e, ok := c.entries[key]; ok && time.Since(e.fetchedAt) <= c.maxAge {
		e.lastAccess = time.Now()
		path := e.path
		c.mu.Unlock()
		data, err := os.ReadFile(path)
		if err == nil {
			return data, nil
		}
		// Cache file vanished underneath us; fall through to refetch.
		slog.Warn("Cached image unreadable, refetching", "url", url, "error", err)
		c.mu.Lock()
		delete(c.entries, key)
	}

	if waiters, inflight := c.loading[key]; inflight {
		ch := make(chan fetchResult, 1)
		c.loading[key] = append(waiters, ch)
		c.mu.Unlock()
		select {
		case res := <-ch:
			return res.data, res.err
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	c.loading[key] = []chan fetchResult{}
	c.mu.Unlock()

	data, err := c.fetch(ctx, url)
	if err == nil {
		path := filepath.Join(c.dir, key)
		if werr := os.WriteFile(path, data, 0644); werr != nil {
			// Cache write failure degrades to uncached fetches.
			slog.Warn("Failed to write image cache file", "url", url, "error", werr)
		} else {
			now := time.Now()
			c.mu.Lock()
			c.entries[key] = &entry{path: path, fetchedAt: now, lastAccess: now}
			c.mu.Unlock()
			go c.evict()
		}
	}

	c.mu.Lock()
	waiters := c.loading[key]
	delete(c.loading, key)
	c.mu.Unlock()
	for _, ch := range waiters {
		ch <- fetchResult{data: data, err: err}
	}

	return data, err
}

func (c *Cache) fetch(ctx context.Context, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, "GET", url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to download image: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("failed to download image: HTTP %d", resp.StatusCode)
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read image data: %w", err)
	}
	return data, nil
}

// evict drops entries beyond maxImages (least recently used first) and
// entries older than maxAge. Failures are logged and swallowed.
func (c *Cache) evict() {
	c.mu.Lock()
	var victims []string
	now := time.Now()
	for key, e := range c.entries {
		if now.Sub(e.fetchedAt) > c.maxAge {
			victims = append(victims, key)
		}
	}
	if excess := len(c.entries) - len(victims) - c.maxImages; excess > 0 {
		type aged struct {
			key        string
			lastAccess time.Time
		}
		var live []aged
		for key, e := range c.entries {
			if now.Sub(e.fetchedAt) <= c.maxAge {
				live = append(live, aged{key, e.lastAccess})
			}
		}
		sort.Slice(live, func(i, j int) bool { return live[i].lastAccess.Before(live[j].lastAccess) })
		for i := 0; i < excess && i < len(live); i++ {
			victims = append(victims, live[i].key)
		}
	}
	paths := make([]string, 0, len(victims))
	for _, key := range victims {
		if e, ok := c.entries[key]; ok {
			paths = append(paths, e.path)
			delete(c.entries, key)
		}
	}
	c.mu.Unlock()

	for _, path := range paths {
		if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
			slog.Warn("Failed to remove cached image", "path", path, "error", err)
		}
	}
}
