package thumbnail

import (
	"sync"

	"github.com/justyntemme/fmthumb/internal/debug"
)

// Poster is the "post to main" primitive the engine requires from its
// host UI event loop: Post schedules fn to run on whatever thread the
// host considers its main thread. The engine never assumes anything about
// timing beyond "eventually, on that thread".
type Poster interface {
	Post(fn func())
}

// maxReadyPerTick bounds how many callbacks a single idle-drain
// invocation fires, so a burst of completions can't starve the UI thread.
const maxReadyPerTick = 200

// readyQueue is the main-thread-drained FIFO of completed handles
// awaiting callback, plus the low-priority idle-hook bookkeeping.
type readyQueue struct {
	poster Poster

	mu     sync.Mutex
	items  []*RequestHandle
	armed  bool
}

func newReadyQueue(poster Poster) *readyQueue {
	return &readyQueue{poster: poster}
}

// push enqueues h and arms the idle drain if it isn't already armed.
func (q *readyQueue) push(h *RequestHandle) {
	q.mu.Lock()
	q.items = append(q.items, h)
	armNow := !q.armed
	if armNow {
		q.armed = true
	}
	q.mu.Unlock()

	if armNow {
		q.poster.Post(q.drain)
	}
}

// drain fires at most maxReadyPerTick callbacks, re-arming if the queue is
// still non-empty afterward.
func (q *readyQueue) drain() {
	q.mu.Lock()
	n := len(q.items)
	if n > maxReadyPerTick {
		n = maxReadyPerTick
	}
	batch := q.items[:n]
	q.items = q.items[n:]
	remaining := len(q.items) > 0
	if !remaining {
		q.armed = false
	}
	q.mu.Unlock()

	for _, h := range batch {
		if h.cancelled.Load() {
			debug.Log(debug.THUMB, "drain: dropping cancelled handle %s", h.id)
			continue
		}
		if h.callback != nil {
			h.callback(h)
		}
	}

	if remaining {
		q.poster.Post(q.drain)
	}
}

// ImmediatePoster runs fn synchronously on whatever goroutine calls Post.
// Suitable for headless/CLI use where there's no real UI thread to hop to;
// callers that do have one (e.g. a Gio event loop) should use GioPoster
// instead so callbacks run where widgets expect them.
type ImmediatePoster struct{}

func (ImmediatePoster) Post(fn func()) { fn() }
