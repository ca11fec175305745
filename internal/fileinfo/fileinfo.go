// Package fileinfo implements the reference-counted, lazily populated file
// metadata record the thumbnail engine and other consumers key off.
package fileinfo

import (
	"io/fs"
	"sync"
	"sync/atomic"
	"time"

	"github.com/justyntemme/fmthumb/internal/debug"
	"github.com/justyntemme/fmthumb/internal/vicon"
	"github.com/justyntemme/fmthumb/internal/vpath"
)

// lazyField holds a single deferred value behind a per-field mutex, with
// the double-checked-locking pattern every derived field on FileInfo uses:
// callers probe loaded without taking the lock, and only synchronize when
// a fill is actually required.
type lazyField[T any] struct {
	mu     sync.Mutex
	loaded atomic.Bool
	value  T
}

// get returns the cached value and true, or the zero value and false if the
// field hasn't been filled yet.
func (f *lazyField[T]) get() (T, bool) {
	if f.loaded.Load() {
		return f.value, true
	}
	var zero T
	return zero, false
}

// fill populates the field by calling compute, unless another goroutine won
// the race first. Returns the settled value.
func (f *lazyField[T]) fill(compute func() T) T {
	if f.loaded.Load() {
		return f.value
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.loaded.Load() {
		return f.value
	}
	f.value = compute()
	f.loaded.Store(true)
	return f.value
}

func (f *lazyField[T]) reset() {
	f.mu.Lock()
	f.loaded.Store(false)
	var zero T
	f.value = zero
	f.mu.Unlock()
}

// collateKeySentinel marks a collate key field that is byte-identical to
// the display name, so the descriptor doesn't carry a duplicate string.
const collateKeySentinel = "\x00REUSE_DISP_NAME\x00"

// FileInfo is a reference-counted file metadata record. All exported
// methods are safe for concurrent use.
type FileInfo struct {
	refcount atomic.Int32

	path    vpath.Path
	mode    fs.FileMode
	fromNative bool
	devOrFsID  devOrFsID
	uid, gid   uint32
	size       int64
	mtime      time.Time
	atime      time.Time
	blocks     int64

	target string // symlink target, empty if not a symlink

	shortcut   bool
	mountable  bool
	accessible bool

	dispNameMu sync.Mutex
	dispName   string // empty means "equals basename of path"

	mime  lazyField[string]
	icon  lazyField[vicon.Icon]
	dispSize  lazyField[string]
	dispMtime lazyField[string]
	color     lazyField[string]

	collateKeyMu       sync.Mutex
	collateKeyLoaded   atomic.Bool
	collateKey         string
	collateKeyCase     string

	deferredMimeLoad bool
	backupAsHidden   bool
	siUnit           bool

	deps Deps
}

// devOrFsID holds either a numeric device id (native files) or an interned
// filesystem-id string (non-native files), matching the "from_native=false
// carries fs_id instead of dev" invariant.
type devOrFsID struct {
	dev   uint64
	fsID  string
	isDev bool
}

// Deps bundles the collaborators FileInfo needs to resolve its lazy
// fields: a MIME sniffer, an icon resolver and a highlighting policy. All
// are optional; a nil Deps still yields a usable (if minimally populated)
// FileInfo.
type Deps struct {
	SniffMime   func(p vpath.Path, mode fs.FileMode) string
	ResolveIcon func(fi *FileInfo) vicon.Icon
	ColorFor    func(name, mime string) string
}

// New creates a FileInfo with an initial refcount of 1.
func New(path vpath.Path, deps Deps) *FileInfo {
	fi := &FileInfo{path: path, deps: deps}
	fi.refcount.Store(1)
	return fi
}

// Ref increments the reference count and returns fi, matching the
// C original's ref-and-return idiom.
func (fi *FileInfo) Ref() *FileInfo {
	fi.refcount.Add(1)
	return fi
}

// Unref decrements the reference count. Go's garbage collector owns actual
// deallocation; this only tracks logical ownership for callers ported from
// reference-counted code and to catch double-unref bugs in debug builds.
func (fi *FileInfo) Unref() {
	n := fi.refcount.Add(-1)
	if n < 0 {
		debug.Log(debug.FILEINFO, "Unref: refcount went negative for %s", fi.path.String())
	}
}

// RefCount returns the current reference count, mainly for tests.
func (fi *FileInfo) RefCount() int32 {
	return fi.refcount.Load()
}

// Path returns the file's path.
func (fi *FileInfo) Path() vpath.Path { return fi.path }

// Size returns the file size in bytes.
func (fi *FileInfo) Size() int64 { return fi.size }

// Mtime returns the modification time.
func (fi *FileInfo) Mtime() time.Time { return fi.mtime }

// Atime returns the access time.
func (fi *FileInfo) Atime() time.Time { return fi.atime }

// Target returns the symlink target, or "" if fi is not a symlink.
func (fi *FileInfo) Target() string { return fi.target }

// DispName returns the display name, falling back to the path's basename.
func (fi *FileInfo) DispName() string {
	fi.dispNameMu.Lock()
	defer fi.dispNameMu.Unlock()
	if fi.dispName == "" {
		return fi.path.Basename()
	}
	return fi.dispName
}

// SetDispName sets an override display name. Per the "disp_name is empty
// exactly when it equals the base name" invariant, a value equal to the
// basename is stored as empty.
func (fi *FileInfo) SetDispName(name string) {
	fi.dispNameMu.Lock()
	if name == fi.path.Basename() {
		fi.dispName = ""
	} else {
		fi.dispName = name
	}
	fi.dispNameMu.Unlock()
}
