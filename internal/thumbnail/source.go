package thumbnail

import (
	"time"

	"github.com/justyntemme/fmthumb/internal/vpath"
)

// SourceRef is an immutable snapshot of the file a thumbnailing job works
// against, obtained from a FileInfo (or anything exposing the same
// surface).
type SourceRef struct {
	Path    vpath.Path
	Mtime   time.Time
	Size    int64
	Mime    string
	IsImage bool
}

// SourceProvider is the minimal surface a file descriptor must expose to
// be snapshotted into a SourceRef. internal/fileinfo.FileInfo already
// satisfies this.
type SourceProvider interface {
	Path() vpath.Path
	Mtime() time.Time
	Size() int64
	Mime() string
	IsImage() bool
}

// SourceRefFrom snapshots a SourceProvider into an immutable SourceRef.
func SourceRefFrom(p SourceProvider) SourceRef {
	return SourceRef{
		Path:    p.Path(),
		Mtime:   p.Mtime(),
		Size:    p.Size(),
		Mime:    p.Mime(),
		IsImage: p.IsImage(),
	}
}
