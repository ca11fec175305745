// Package thumbnail implements the thumbnail caching and generation
// engine: it mediates between callers that want a scaled preview image
// for a file and the on-disk XDG thumbnail cache, built-in image decoder,
// and out-of-process per-MIME thumbnailer programs that produce one.
package thumbnail

import (
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/justyntemme/fmthumb/internal/debug"
)

// Engine is the process-wide thumbnail engine. Its shared state mirrors
// the six items the original single-recursive-mutex design protected
// together (cache map, loader queue, ready queue, current-task slot,
// external-thumbnailer slot, idle-armed flag) but splits them across
// independently-locked components, since Go mutexes aren't reentrant and
// nesting them would risk deadlock. The only nesting is a Task's own
// request-list mutex, taken under queueMu when Load attaches a handle; no
// other lock here is held while acquiring another. See DESIGN.md.
type Engine struct {
	cfg EngineConfig

	cache *Cache
	store *Store
	ready *readyQueue

	backendMu  sync.Mutex
	backend    Backend
	backendSet bool // true once SetBackend has been called explicitly; the built-in default doesn't count

	thumbnailers ThumbnailerLookup
	external     externalSupervisor

	queueMu       sync.Mutex
	loaderQueue   []*Task
	tasksByPath   map[string]*Task // open tasks only: queued or currently processing
	currentTask   *Task
	workerRunning bool

	maxSourceKB int // thumbnail_max_kb; 0 means unlimited
}

// EngineConfig configures an Engine at construction time.
type EngineConfig struct {
	ThumbnailDir   string
	ThumbnailMaxKB int
	Thumbnailers   ThumbnailerLookup // may be nil: external generation then always fails
	Poster         Poster            // may be nil: defaults to ImmediatePoster
}

// NewEngine constructs an Engine with the built-in image backend
// installed, and ensures its on-disk cache directories exist.
func NewEngine(cfg EngineConfig) (*Engine, error) {
	poster := cfg.Poster
	if poster == nil {
		poster = ImmediatePoster{}
	}
	store := NewStore(cfg.ThumbnailDir)
	if err := store.EnsureDirs(); err != nil {
		return nil, fmt.Errorf("thumbnail: init store: %w", err)
	}

	e := &Engine{
		cfg:          cfg,
		cache:        NewCache(),
		store:        store,
		ready:        newReadyQueue(poster),
		thumbnailers: cfg.Thumbnailers,
		tasksByPath:  make(map[string]*Task),
		maxSourceKB:  cfg.ThumbnailMaxKB,
		backend:      NewBuiltinBackend(),
	}
	return e, nil
}

// SetBackend installs a custom image backend, replacing the built-in one.
// Returns false if a custom backend has already been installed once.
func (e *Engine) SetBackend(b Backend) bool {
	e.backendMu.Lock()
	defer e.backendMu.Unlock()
	if e.backendSet {
		return false
	}
	e.backend = b
	e.backendSet = true
	return true
}

func (e *Engine) currentBackend() Backend {
	e.backendMu.Lock()
	defer e.backendMu.Unlock()
	return e.backend
}

// Load requests a size x size (or smaller, aspect-preserved) thumbnail for
// source. callback fires exactly once, on the Poster's thread, whether or
// not generation succeeded.
func (e *Engine) Load(source SourceRef, size uint16, callback func(*RequestHandle), userData any) *RequestHandle {
	h := &RequestHandle{
		id:       uuid.New(),
		source:   source,
		size:     size,
		callback: callback,
		userData: userData,
	}

	path := source.Path.String()
	if ref, ok := e.cache.Get(path, int(size)); ok {
		h.setResult(ref)
		e.ready.push(h)
		debug.Log(debug.THUMB, "load %s@%d: cache hit", path, size)
		return h
	}

	e.queueMu.Lock()
	task, ok := e.tasksByPath[path]
	if !ok || !task.isOpen() {
		task = &Task{source: source}
		task.uri = source.Path.URI()
		task.normalPath, task.largePath = e.store.Paths(task.uri)
		e.tasksByPath[path] = task
		e.loaderQueue = append(e.loaderQueue, task)
		debug.Log(debug.THUMB, "load %s@%d: new task", path, size)
	} else {
		debug.Log(debug.THUMB, "load %s@%d: attaching to open task", path, size)
	}
	task.attach(h)
	e.startWorkerLocked()
	e.queueMu.Unlock()

	return h
}

// Cancel marks h cancelled. If every request on h's task is now cancelled,
// the task itself is marked cancelled; if it is the task currently
// executing, the external-thumbnailer supervisor is told to terminate its
// child immediately. Safe to call more than once on the same handle.
func (e *Engine) Cancel(h *RequestHandle) {
	h.cancelled.Store(true)

	task := h.task
	if task == nil || !task.allCancelled() {
		return
	}
	task.cancelled.Store(true)

	e.queueMu.Lock()
	isCurrent := e.currentTask == task
	e.queueMu.Unlock()
	if isCurrent {
		e.external.terminate()
	}
}

// Invalidate drops any in-memory thumbnail cached for path. The on-disk
// cache is left alone: the next Load re-checks the source's mtime against
// the stored PNG and regenerates it if it's now stale. Meant to be driven
// by an external file-change notifier such as watchhelper.Watcher, since
// the engine itself does no filesystem watching.
func (e *Engine) Invalidate(path string) {
	e.cache.Invalidate(path)
}

// Close cancels every queued and in-flight task. The worker observes
// cancellation as it drains the queue and exits once it empties.
func (e *Engine) Close() {
	e.queueMu.Lock()
	for _, t := range e.loaderQueue {
		t.cancelled.Store(true)
	}
	if e.currentTask != nil {
		e.currentTask.cancelled.Store(true)
	}
	e.queueMu.Unlock()
	e.external.terminate()
}

func (e *Engine) startWorkerLocked() {
	if e.workerRunning {
		return
	}
	e.workerRunning = true
	go e.runWorker()
}

// done reports whether t needs no further processing: a load-only task
// whose on-disk files were all fresh, a task whose generate cycle has run,
// or a cancelled task.
func (t *Task) done() bool {
	return t.cancelled.Load() || (t.loaded && !t.makeNormal && !t.makeLarge)
}

// runWorker is the single background loader: it pops tasks one at a time,
// resolves each in up to two cycles (load-from-disk, then
// generate-if-stale), scales to every attached requester's size, and
// publishes results. It exits once the queue empties and is respawned by
// the next Load call that finds it not running.
func (e *Engine) runWorker() {
	for {
		e.queueMu.Lock()
		if len(e.loaderQueue) == 0 {
			e.workerRunning = false
			e.queueMu.Unlock()
			return
		}
		task := e.loaderQueue[0]
		e.loaderQueue = e.loaderQueue[1:]
		task.locked.Store(true)
		e.currentTask = task
		e.queueMu.Unlock()

		e.processTask(task)

		e.queueMu.Lock()
		e.currentTask = nil
		if task.done() {
			if cur, ok := e.tasksByPath[task.path()]; ok && cur == task {
				delete(e.tasksByPath, task.path())
			}
		}
		e.queueMu.Unlock()
	}
}

func (e *Engine) processTask(task *Task) {
	if task.cancelled.Load() {
		e.finalize(task)
		return
	}

	if !task.loaded {
		e.loadCycle(task)
		task.loaded = true
		if task.makeNormal || task.makeLarge {
			// Re-enqueue at the tail for the generate cycle; a burst of
			// load-only hits behind it gets served first.
			task.locked.Store(false)
			e.queueMu.Lock()
			e.loaderQueue = append(e.loaderQueue, task)
			e.queueMu.Unlock()
			return
		}
		e.finalize(task)
		return
	}

	e.generateCycle(task)
	// Generation is attempted once; nothing is left to make after it.
	task.makeNormal, task.makeLarge = false, false
	e.finalize(task)
}

// loadCycle attempts to satisfy each requested size class from the
// on-disk cache, per the freshness rule in Store.Load. A class that is
// stale or missing is flagged for the generate cycle.
func (e *Engine) loadCycle(task *Task) {
	backend := e.currentBackend()
	if task.needNormal {
		img, fresh, err := e.store.Load(task.normalPath, task.source.Mtime, backend)
		if err == nil && fresh {
			task.normalImage = e.cache.Put(task.path(), normalClassPixels, img)
		} else {
			task.makeNormal = true
		}
	}
	if task.needLarge {
		img, fresh, err := e.store.Load(task.largePath, task.source.Mtime, backend)
		if err == nil && fresh {
			task.largeImage = e.cache.Put(task.path(), largeClassPixels, img)
		} else {
			task.makeLarge = true
		}
	}
}

func (e *Engine) generateCycle(task *Task) {
	if task.cancelled.Load() {
		return
	}
	if task.source.IsImage {
		e.generateBuiltin(task)
	} else {
		e.generateExternal(task)
	}
}

// generateBuiltin decodes the source once, takes the JPEG EXIF fast path
// when available, and scales/rotates/saves each flagged size class.
func (e *Engine) generateBuiltin(task *Task) {
	backend := e.currentBackend()

	if e.maxSourceKB > 0 && task.source.Size > int64(e.maxSourceKB)*1024 {
		debug.Log(debug.THUMB_WORKER, "skip generation for %s: exceeds thumbnail_max_kb", task.path())
		return
	}

	img, err := backend.DecodeFile(task.path())
	if err != nil {
		debug.Log(debug.THUMB_WORKER, "decode failed for %s: %v", task.path(), err)
		return
	}

	degrees := 0
	normalSrc, largeSrc := img, img
	if task.source.Mime == "image/jpeg" {
		if thumb, deg, ok := jpegEXIFFastPath(task.path()); ok {
			degrees = deg
			if thumb != nil {
				// The embedded EXIF thumbnail is typically ~160px, too
				// small to use as the source for the large (256px) class
				// without visible upscaling; it only substitutes for the
				// normal-class source.
				normalSrc = thumb
			}
		}
	}

	if task.makeNormal {
		scaled := backend.Scale(normalSrc, normalClassPixels, normalClassPixels)
		if degrees != 0 {
			scaled = backend.Rotate(scaled, degrees)
		}
		if err := e.store.Save(task.normalPath, scaled, task.source.Mtime, backend); err == nil {
			task.normalImage = e.cache.Put(task.path(), normalClassPixels, scaled)
		} else {
			debug.Log(debug.THUMB_WORKER, "save normal thumbnail for %s: %v", task.path(), err)
		}
	}
	if task.makeLarge {
		scaled := backend.Scale(largeSrc, largeClassPixels, largeClassPixels)
		if degrees != 0 {
			scaled = backend.Rotate(scaled, degrees)
		}
		if err := e.store.Save(task.largePath, scaled, task.source.Mtime, backend); err == nil {
			task.largeImage = e.cache.Put(task.path(), largeClassPixels, scaled)
		} else {
			debug.Log(debug.THUMB_WORKER, "save large thumbnail for %s: %v", task.path(), err)
		}
	}
}

// generateExternal iterates the MIME type's registered thumbnailer
// helpers, launching each for every still-unsatisfied size class in turn,
// stopping early once both classes are satisfied.
func (e *Engine) generateExternal(task *Task) {
	if e.thumbnailers == nil {
		debug.Log(debug.THUMB_EXTERN, "no thumbnailers registered for %s", task.source.Mime)
		return
	}
	helpers := e.thumbnailers(task.source.Mime)
	if len(helpers) == 0 {
		return
	}

	stop := make(chan struct{})
	defer close(stop)
	cancelCh := taskCancelChan(task, stop)

	backend := e.currentBackend()
	for _, helper := range helpers {
		if task.makeNormal {
			if err := e.external.run(helper, task.uri, task.normalPath, normalClassPixels, cancelCh); err == nil {
				if img, err := backend.DecodeFile(task.normalPath); err == nil {
					task.normalImage = e.cache.Put(task.path(), normalClassPixels, img)
					task.makeNormal = false
				}
			}
		}
		if task.makeLarge {
			// The large success path reads back from large_path; the
			// original C implementation read from normal_path there
			// instead, see DESIGN.md.
			if err := e.external.run(helper, task.uri, task.largePath, largeClassPixels, cancelCh); err == nil {
				if img, err := backend.DecodeFile(task.largePath); err == nil {
					task.largeImage = e.cache.Put(task.path(), largeClassPixels, img)
					task.makeLarge = false
				}
			}
		}
		if !task.makeNormal && !task.makeLarge {
			break
		}
		if task.cancelled.Load() {
			break
		}
	}
}

// taskCancelChan returns a channel that closes once task is cancelled, so
// externalSupervisor.run can abort its wait promptly. The polling
// goroutine exits as soon as either the task is cancelled or stop closes,
// whichever comes first.
func taskCancelChan(task *Task, stop <-chan struct{}) <-chan struct{} {
	ch := make(chan struct{})
	go func() {
		ticker := time.NewTicker(50 * time.Millisecond)
		defer ticker.Stop()
		for {
			select {
			case <-stop:
				return
			case <-ticker.C:
				if task.cancelled.Load() {
					close(ch)
					return
				}
			}
		}
	}()
	return ch
}

// finalize sorts the task's requests by ascending size, scales the
// appropriate class image down to each handle's exact requested size
// (reusing the last produced scaled image across consecutive equal
// sizes), inserts freshly produced images into the cache, and publishes
// every non-cancelled handle to the ready queue.
func (e *Engine) finalize(task *Task) {
	backend := e.currentBackend()

	task.mu.Lock()
	requests := append([]*RequestHandle(nil), task.requests...)
	task.mu.Unlock()

	sort.SliceStable(requests, func(i, j int) bool {
		return requests[i].size < requests[j].size
	})

	var lastSize uint16
	var lastRef *ImageRef
	haveLast := false

	for _, h := range requests {
		if h.cancelled.Load() || h.done.Load() {
			continue
		}

		if haveLast && h.size == lastSize {
			h.setResult(lastRef)
			e.ready.push(h)
			continue
		}

		var master *ImageRef
		if classForSize(h.size) == normalClass {
			master = task.normalImage
		} else {
			master = task.largeImage
		}
		if master == nil {
			h.setResult(nil)
			e.ready.push(h)
			continue
		}

		scaled := backend.Scale(master.Image(), int(h.size), int(h.size))
		ref := e.cache.Put(task.path(), int(h.size), scaled)
		h.setResult(ref)
		e.ready.push(h)

		lastSize, lastRef, haveLast = h.size, ref, true
	}
}
