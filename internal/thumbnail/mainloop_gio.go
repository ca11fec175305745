package thumbnail

import (
	"sync"

	"gioui.org/app"
)

// GioPoster implements Poster on top of a Gio *app.Window: Post queues fn
// and calls window.Invalidate() to request a frame; the window's event
// loop must call RunPending once per frame event so queued callbacks
// actually execute on the goroutine driving that loop (Gio's own
// convention for all UI-affecting work, mirrored from how the renderer
// calls window.Invalidate() after mutating state elsewhere in this
// codebase).
type GioPoster struct {
	window *app.Window

	mu      sync.Mutex
	pending []func()
}

// NewGioPoster returns a Poster backed by w.
func NewGioPoster(w *app.Window) *GioPoster {
	return &GioPoster{window: w}
}

func (p *GioPoster) Post(fn func()) {
	p.mu.Lock()
	p.pending = append(p.pending, fn)
	p.mu.Unlock()
	p.window.Invalidate()
}

// RunPending executes and clears all queued callbacks. Call this once per
// FrameEvent, before building the next frame's widget tree.
func (p *GioPoster) RunPending() {
	p.mu.Lock()
	batch := p.pending
	p.pending = nil
	p.mu.Unlock()

	for _, fn := range batch {
		fn()
	}
}
