package thumbnail

import (
	"image"
	"runtime"
	"testing"
	"time"
)

func testImage() image.Image {
	return image.NewGray(image.Rect(0, 0, 4, 4))
}

func TestCacheGetMiss(t *testing.T) {
	c := NewCache()
	if _, ok := c.Get("/no/such/path", 128); ok {
		t.Fatal("Get() on an empty cache reported a hit")
	}
}

func TestCachePutThenGet(t *testing.T) {
	c := NewCache()
	ref := c.Put("/tmp/a.png", 128, testImage())
	defer runtime.KeepAlive(ref)

	got, ok := c.Get("/tmp/a.png", 128)
	if !ok {
		t.Fatal("Get() missed an entry that was just Put")
	}
	if got != ref {
		t.Error("Get() returned a different ImageRef than Put produced")
	}
}

func TestCacheDistinctSizesDoNotCollide(t *testing.T) {
	c := NewCache()
	small := c.Put("/tmp/a.png", 128, testImage())
	large := c.Put("/tmp/a.png", 256, testImage())
	defer runtime.KeepAlive(small)
	defer runtime.KeepAlive(large)

	if got, _ := c.Get("/tmp/a.png", 128); got != small {
		t.Error("Get(128) did not return the size-128 entry")
	}
	if got, _ := c.Get("/tmp/a.png", 256); got != large {
		t.Error("Get(256) did not return the size-256 entry")
	}
}

// TestCacheEvictsOnUnreachable exercises the weak-reference self-eviction
// path: once nothing keeps the ImageRef alive, the entry disappears on its
// own, without any explicit eviction call.
func TestCacheEvictsOnUnreachable(t *testing.T) {
	c := NewCache()
	func() {
		ref := c.Put("/tmp/gone.png", 128, testImage())
		runtime.KeepAlive(ref)
	}()

	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		runtime.GC()
		if _, ok := c.Get("/tmp/gone.png", 128); !ok {
			return
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Fatal("cache entry was never evicted after its ImageRef became unreachable")
}
