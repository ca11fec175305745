package thumbnail

import (
	"bytes"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"runtime"
	"testing"
	"time"

	"github.com/justyntemme/fmthumb/internal/vpath"
)

func writeTestPNG(t *testing.T, dir, name string, w, h int) string {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, color.RGBA{R: uint8(x), G: uint8(y), B: 0, A: 255})
		}
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatalf("encode test png: %v", err)
	}
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, buf.Bytes(), 0o644); err != nil {
		t.Fatalf("write test png: %v", err)
	}
	return path
}

func sourceRefForFile(t *testing.T, path string) SourceRef {
	t.Helper()
	info, err := os.Stat(path)
	if err != nil {
		t.Fatalf("stat %s: %v", path, err)
	}
	return SourceRef{
		Path:    vpath.NewNative(path),
		Mtime:   info.ModTime(),
		Size:    info.Size(),
		Mime:    "image/png",
		IsImage: true,
	}
}

func newTestEngine(t *testing.T) *Engine {
	t.Helper()
	e, err := NewEngine(EngineConfig{ThumbnailDir: t.TempDir()})
	if err != nil {
		t.Fatalf("NewEngine: %v", err)
	}
	t.Cleanup(e.Close)
	return e
}

func TestEngineLoadGeneratesThumbnail(t *testing.T) {
	e := newTestEngine(t)
	dir := t.TempDir()
	path := writeTestPNG(t, dir, "source.png", 300, 300)
	source := sourceRefForFile(t, path)

	done := make(chan *RequestHandle, 1)
	e.Load(source, 128, func(h *RequestHandle) { done <- h }, nil)

	select {
	case h := <-done:
		img, ok := h.GetData()
		if !ok {
			t.Fatal("GetData() ok=false for a generated thumbnail")
		}
		b := img.Bounds()
		if b.Dx() > 128 || b.Dy() > 128 {
			t.Errorf("thumbnail bounds %v exceed the requested 128px box", b)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("Load callback never fired")
	}

	normalPath, _ := e.store.Paths(source.Path.URI())
	if _, err := os.Stat(normalPath); err != nil {
		t.Errorf("expected on-disk thumbnail at %s: %v", normalPath, err)
	}
}

func TestEngineLoadCacheHitSkipsRegeneration(t *testing.T) {
	e := newTestEngine(t)
	dir := t.TempDir()
	path := writeTestPNG(t, dir, "source.png", 200, 200)
	source := sourceRefForFile(t, path)

	first := make(chan *RequestHandle, 1)
	e.Load(source, 64, func(h *RequestHandle) { first <- h }, nil)
	h1 := <-first
	defer runtime.KeepAlive(h1) // keeps the cached size-64 image live

	second := make(chan *RequestHandle, 1)
	h2 := e.Load(source, 64, func(h *RequestHandle) { second <- h }, nil)
	// A cache hit completes inside Load: the default ImmediatePoster runs
	// the callback before Load returns, with no trip through the worker.
	select {
	case got := <-second:
		if got != h2 {
			t.Error("callback received a different handle than Load returned")
		}
		if _, ok := got.GetData(); !ok {
			t.Fatal("second Load for an already-cached size failed")
		}
	default:
		t.Fatal("second Load for an already-cached size was not served from the cache")
	}
}

func TestEngineLoadDedupesInFlightRequests(t *testing.T) {
	e := newTestEngine(t)
	dir := t.TempDir()
	path := writeTestPNG(t, dir, "source.png", 200, 200)
	source := sourceRefForFile(t, path)

	results := make(chan *RequestHandle, 2)
	e.Load(source, 96, func(h *RequestHandle) { results <- h }, nil)
	e.Load(source, 160, func(h *RequestHandle) { results <- h }, nil)

	for i := 0; i < 2; i++ {
		select {
		case h := <-results:
			if _, ok := h.GetData(); !ok {
				t.Error("a deduped request failed to produce a thumbnail")
			}
		case <-time.After(5 * time.Second):
			t.Fatal("not all deduped requests completed")
		}
	}
}

func TestEngineCancelIsIdempotent(t *testing.T) {
	e := newTestEngine(t)
	dir := t.TempDir()
	path := writeTestPNG(t, dir, "source.png", 50, 50)
	source := sourceRefForFile(t, path)

	h := e.Load(source, 64, func(*RequestHandle) {}, nil)
	e.Cancel(h)
	e.Cancel(h)
	if !h.Cancelled() {
		t.Fatal("Cancelled() = false after Cancel")
	}
}

func TestEngineSetBackendOnlyOnce(t *testing.T) {
	e := newTestEngine(t)
	if !e.SetBackend(NewBuiltinBackend()) {
		t.Fatal("first SetBackend call should succeed")
	}
	if e.SetBackend(NewBuiltinBackend()) {
		t.Fatal("second SetBackend call should be rejected")
	}
}
