package fileinfo

import (
	"fmt"
	"os"
	"time"

	"github.com/justyntemme/fmthumb/internal/debug"
	"github.com/justyntemme/fmthumb/internal/vmime"
	"github.com/justyntemme/fmthumb/internal/vpath"
)

// Options configure a construction call.
type Options struct {
	Deps                 Deps
	DeferMimeTypeLoading bool
	BackupAsHidden       bool
	SIUnit               bool
}

// FromNative builds a FileInfo from a native filesystem path via lstat
// (and readlink, for symlinks). Returns an error translating the errno
// when lstat fails, matching the "boolean plus out-parameter error"
// construction contract.
func FromNative(path string, opts Options) (*FileInfo, error) {
	info, err := os.Lstat(path)
	if err != nil {
		return nil, fmt.Errorf("fileinfo: lstat %s: %w", path, err)
	}

	p := vpath.NewNative(path)
	fi := New(p, opts.Deps)
	fi.fromNative = true
	fi.mode = info.Mode()
	fi.size = info.Size()
	fi.mtime = info.ModTime()
	fi.atime = statAtime(info)
	fi.blocks = statBlocks(info)
	fi.uid, fi.gid = statOwner(info)
	fi.devOrFsID = devOrFsID{dev: statDev(info), isDev: true}
	fi.backupAsHidden = opts.BackupAsHidden
	fi.siUnit = opts.SIUnit
	fi.deferredMimeLoad = opts.DeferMimeTypeLoading

	if fi.mode&os.ModeSymlink != 0 {
		if target, err := os.Readlink(path); err == nil {
			fi.target = target
		}
		// A symlink's effective directory-ness depends on what it points
		// at; stat (not lstat) resolves that without disturbing fi.mode,
		// which must keep reporting the link itself.
		if real, err := os.Stat(path); err == nil && real.IsDir() {
			fi.mime.fill(vmime.DirectoryMime)
		}
	}

	fi.accessible = probeAccessible(path, fi.mode)

	if !opts.DeferMimeTypeLoading {
		fi.Mime() // populate eagerly, off the construction critical path only if deferred
	} else {
		debug.Log(debug.FILEINFO, "deferred mime load for %s", path)
	}

	return fi, nil
}

func probeAccessible(path string, mode os.FileMode) bool {
	if mode.IsDir() {
		f, err := os.Open(path)
		if err != nil {
			return false
		}
		defer f.Close()
		_, err = f.Readdirnames(1)
		return err == nil
	}
	f, err := os.Open(path)
	if err != nil {
		return false
	}
	f.Close()
	return true
}

// VFSInfo is the minimal surface a generic VFS file-info object must
// expose to build a FileInfo from it (construction source (b) in the
// original design).
type VFSInfo interface {
	Path() vpath.Path
	Mode() os.FileMode
	Size() int64
	ModTime() time.Time
	FilesystemID() string
}

// FromVFSInfo builds a FileInfo from a generic VFS layer's file-info
// object. Unlike FromNative, the resulting descriptor carries an interned
// filesystem-id string instead of a numeric device id.
func FromVFSInfo(v VFSInfo, opts Options) *FileInfo {
	fi := New(v.Path(), opts.Deps)
	fi.fromNative = false
	fi.mode = v.Mode()
	fi.size = v.Size()
	fi.mtime = v.ModTime()
	fi.devOrFsID = devOrFsID{fsID: v.FilesystemID(), isDev: false}
	fi.accessible = true
	fi.backupAsHidden = opts.BackupAsHidden
	fi.siUnit = opts.SIUnit
	fi.deferredMimeLoad = opts.DeferMimeTypeLoading
	if !opts.DeferMimeTypeLoading {
		fi.Mime()
	}
	return fi
}

// MenuItem is the minimal surface a menu-cache entry must expose to build
// a FileInfo from it (construction source (c)).
type MenuItem interface {
	Path() vpath.Path
	DisplayName() string
	IsShortcut() bool
}

// FromMenuItem builds a FileInfo from a menu-cache item: a desktop
// launcher entry with no backing regular file semantics (size/mtime are
// left zero-valued).
func FromMenuItem(item MenuItem, opts Options) *FileInfo {
	fi := New(item.Path(), opts.Deps)
	fi.fromNative = false
	fi.shortcut = item.IsShortcut()
	fi.accessible = true
	fi.SetDispName(item.DisplayName())
	fi.backupAsHidden = opts.BackupAsHidden
	fi.siUnit = opts.SIUnit
	return fi
}
