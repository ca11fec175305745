package thumbnail

import (
	"image"
	"runtime"
	"sync"
	"weak"

	"github.com/justyntemme/fmthumb/internal/debug"
)

// ImageRef is a strong handle to a cached image. Callers (typically a
// RequestHandle, and in turn whatever UI widget holds that handle) must
// keep ImageRef reachable for as long as they want the cached entry to
// survive; once it becomes unreachable, the cache entry self-evicts.
type ImageRef struct {
	img image.Image
}

// Image returns the underlying decoded image.
func (r *ImageRef) Image() image.Image { return r.img }

type bucket struct {
	mu      sync.Mutex
	entries map[int]weak.Pointer[ImageRef]
}

// Cache is the process-wide in-memory thumbnail cache: Path -> bucket of
// (size, weakly-held image) entries. There is no dedicated eviction
// policy; entries vanish when nothing strong references them anymore,
// same as the C original's GObject weak-ref design.
type Cache struct {
	mu      sync.Mutex
	buckets map[string]*bucket
}

// NewCache returns an empty Cache.
func NewCache() *Cache {
	return &Cache{buckets: make(map[string]*bucket)}
}

// Get returns the cached image for (path, size) if it's still live.
func (c *Cache) Get(path string, size int) (*ImageRef, bool) {
	c.mu.Lock()
	b, ok := c.buckets[path]
	c.mu.Unlock()
	if !ok {
		return nil, false
	}

	b.mu.Lock()
	wp, ok := b.entries[size]
	b.mu.Unlock()
	if !ok {
		return nil, false
	}

	ref := wp.Value()
	if ref == nil {
		return nil, false
	}
	return ref, true
}

// Put inserts img as the cached entry for (path, size) and returns the
// strong ImageRef the caller must keep alive to retain the entry.
func (c *Cache) Put(path string, size int, img image.Image) *ImageRef {
	ref := &ImageRef{img: img}

	c.mu.Lock()
	b, ok := c.buckets[path]
	if !ok {
		b = &bucket{entries: make(map[int]weak.Pointer[ImageRef])}
		c.buckets[path] = b
	}
	c.mu.Unlock()

	b.mu.Lock()
	b.entries[size] = weak.Make(ref)
	b.mu.Unlock()

	runtime.AddCleanup(ref, c.evict, cleanupArg{path: path, size: size})
	debug.Log(debug.THUMB_CACHE, "cached %s @%d", path, size)
	return ref
}

// Invalidate drops every cached size for path, regardless of whether the
// underlying ImageRef is still strongly held elsewhere. Used when a
// caller knows the source file changed on disk and a stale in-memory
// thumbnail must not be served on the next Get.
func (c *Cache) Invalidate(path string) {
	c.mu.Lock()
	delete(c.buckets, path)
	c.mu.Unlock()
	debug.Log(debug.THUMB_CACHE, "invalidated %s", path)
}

type cleanupArg struct {
	path string
	size int
}

func (c *Cache) evict(arg cleanupArg) {
	c.mu.Lock()
	b, ok := c.buckets[arg.path]
	c.mu.Unlock()
	if !ok {
		return
	}

	b.mu.Lock()
	// A later Put for the same size may have replaced the collected entry
	// with a live one; only a dead weak pointer is removed.
	if wp, ok := b.entries[arg.size]; ok && wp.Value() == nil {
		delete(b.entries, arg.size)
	}
	empty := len(b.entries) == 0
	b.mu.Unlock()

	if !empty {
		return
	}
	c.mu.Lock()
	if cur, ok := c.buckets[arg.path]; ok && cur == b {
		delete(c.buckets, arg.path)
	}
	c.mu.Unlock()
	debug.Log(debug.THUMB_CACHE, "evicted bucket %s", arg.path)
}
