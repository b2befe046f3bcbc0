package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"log/slog"
	"sync"

	"github.com/dustin/go-humanize"
	"github.com/hashicorp/golang-lru/v2/simplelru"

	"github.com/sonroyaalmerol/tilawa/internal/stream"
)

// maxEntries bounds the entry count; the byte budget is what normally evicts.
const maxEntries = 4096

// ClipCache keeps decoded clips in memory, evicting least recently used
// clips once their total size exceeds the limit.
type ClipCache struct {
	limit int64

	mu    sync.Mutex
	lru   *simplelru.LRU[string, *stream.Clip]
	total int64
}

func NewClipCache(limitBytes int64) (*ClipCache, error) {
	c := &ClipCache{limit: limitBytes}
	l, err := simplelru.NewLRU[string, *stream.Clip](maxEntries, c.onEvict)
	if err != nil {
		return nil, err
	}
	c.lru = l
	return c, nil
}

// onEvict runs with c.mu held.
func (c *ClipCache) onEvict(key string, clip *stream.Clip) {
	c.total -= clip.Size()
	slog.Debug("clip evicted", "key", key[:12], "size", humanize.Bytes(uint64(clip.Size())), "total", humanize.Bytes(uint64(c.total)))
}

func (c *ClipCache) HashKey(s string) string {
	sum := sha256.Sum256([]byte(s))
	return hex.EncodeToString(sum[:])
}

func (c *ClipCache) Get(url string) (*stream.Clip, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.lru.Get(c.HashKey(url))
}

// Put stores clip under url. Clips larger than the whole budget are not kept.
func (c *ClipCache) Put(url string, clip *stream.Clip) {
	if clip == nil {
		return
	}
	size := clip.Size()
	if size > c.limit {
		slog.Debug("clip exceeds cache limit", "url", url, "size", humanize.Bytes(uint64(size)))
		return
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	key := c.HashKey(url)
	if c.lru.Contains(key) {
		c.lru.Remove(key)
	}
	c.lru.Add(key, clip)
	c.total += size
	c.evictIfNeeded()
}

func (c *ClipCache) evictIfNeeded() {
	for c.total > c.limit {
		if _, _, ok := c.lru.RemoveOldest(); !ok {
			return
		}
	}
}

// Bytes is the total size of the cached clips.
func (c *ClipCache) Bytes() int64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.total
}

func (c *ClipCache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.lru.Len()
}
