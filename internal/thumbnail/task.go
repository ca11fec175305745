package thumbnail

import (
	"image"
	"sync"
	"sync/atomic"

	"github.com/google/uuid"
)

// sizeClass is the on-disk bucket a requested pixel size maps to: a
// request for size <= 128 is Normal class, anything larger is Large
// class. There is no third class: requests above 256 still reuse the
// 256px Large-class PNG, scaled down further in finalize.
type sizeClass int

const (
	normalClass sizeClass = iota
	largeClass
)

const (
	normalClassPixels = 128
	largeClassPixels  = 256
)

func classForSize(size uint16) sizeClass {
	if size <= normalClassPixels {
		return normalClass
	}
	return largeClass
}

// RequestHandle is a per-caller ticket for one (path, size) pair.
type RequestHandle struct {
	id       uuid.UUID
	source   SourceRef
	size     uint16
	callback func(*RequestHandle)
	userData any

	cancelled atomic.Bool
	done      atomic.Bool

	resultMu sync.Mutex
	result   *ImageRef

	task *Task
}

// ID returns the handle's correlation id, mainly useful for debug logging.
func (h *RequestHandle) ID() uuid.UUID { return h.id }

// Cancelled reports whether Cancel has been called on this handle.
func (h *RequestHandle) Cancelled() bool { return h.cancelled.Load() }

func (h *RequestHandle) setResult(ref *ImageRef) {
	h.resultMu.Lock()
	h.result = ref
	h.resultMu.Unlock()
	h.done.Store(true)
}

// GetData returns the delivered image, or ok=false if the handle hasn't
// completed yet or generation failed.
func (h *RequestHandle) GetData() (img image.Image, ok bool) {
	if !h.done.Load() {
		return nil, false
	}
	h.resultMu.Lock()
	ref := h.result
	h.resultMu.Unlock()
	if ref == nil {
		return nil, false
	}
	return ref.Image(), true
}

// GetSource returns the SourceRef the handle was created against.
func (h *RequestHandle) GetSource() SourceRef { return h.source }

// GetSize returns the requested pixel size.
func (h *RequestHandle) GetSize() uint16 { return h.size }

// Task is the deduplicated unit of work for one source path: at most one
// Task per source path exists across the loader queue and the
// currently-processing slot.
type Task struct {
	source SourceRef

	needNormal, needLarge   bool
	makeNormal, makeLarge   bool
	normalImage, largeImage *ImageRef

	uri        string
	normalPath string
	largePath  string

	cancelled atomic.Bool
	locked    atomic.Bool
	loaded    bool // true once the load cycle has run once

	mu       sync.Mutex
	requests []*RequestHandle
}

func (t *Task) path() string { return t.source.Path.String() }

func (t *Task) attach(h *RequestHandle) {
	t.mu.Lock()
	t.requests = append(t.requests, h)
	switch classForSize(h.size) {
	case normalClass:
		t.needNormal = true
	default:
		t.needLarge = true
	}
	t.mu.Unlock()
	h.task = t
}

// allCancelled reports whether every attached request has been cancelled.
func (t *Task) allCancelled() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	for _, h := range t.requests {
		if !h.cancelled.Load() {
			return false
		}
	}
	return len(t.requests) > 0
}

// isOpen reports whether new requesters may still attach to t: not
// cancelled and not yet locked by the worker.
func (t *Task) isOpen() bool {
	return !t.cancelled.Load() && !t.locked.Load()
}
