package fileinfo

import (
	"bytes"
	"io/fs"
	"os"
	"strings"

	"github.com/justyntemme/fmthumb/internal/vmime"
)

// IsDirectory reports whether fi names a directory, either directly or via
// a symlink whose MIME type resolves to inode/directory.
func (fi *FileInfo) IsDirectory() bool {
	if fi.mode&fs.ModeDir != 0 {
		return true
	}
	if fi.IsSymlink() {
		return fi.Mime() == vmime.DirectoryMime()
	}
	return false
}

// IsSymlink reports whether fi names a symbolic link.
func (fi *FileInfo) IsSymlink() bool {
	return fi.mode&fs.ModeSymlink != 0
}

// IsShortcut reports whether fi is a desktop shortcut (a .desktop entry
// whose Type is Link, as opposed to Application). The engine only needs
// the MIME-level classification; shortcut-vs-application distinction is
// resolved by the menu-cache layer that supplies FromMenuItem.
func (fi *FileInfo) IsShortcut() bool {
	return fi.shortcut
}

// IsMountable reports whether fi names a mount point placeholder.
func (fi *FileInfo) IsMountable() bool {
	return fi.mountable
}

// IsImage reports whether fi's MIME type begins with "image/".
func (fi *FileInfo) IsImage() bool {
	return vmime.IsImage(fi.Mime())
}

// IsText reports whether fi's MIME type is textual.
func (fi *FileInfo) IsText() bool {
	return vmime.IsText(fi.Mime())
}

// IsDesktopEntry reports whether fi is a .desktop launcher file: its MIME
// type is application/x-desktop, and for native files the path itself
// must end in ".desktop".
func (fi *FileInfo) IsDesktopEntry() bool {
	if fi.Mime() != "application/x-desktop" {
		return false
	}
	if fi.fromNative {
		return strings.HasSuffix(fi.path.String(), ".desktop")
	}
	return true
}

// IsUnknownType reports whether fi's MIME type could not be determined.
func (fi *FileInfo) IsUnknownType() bool {
	return fi.Mime() == "application/octet-stream"
}

// IsExecutableType reports whether fi's content type can be executed:
// anything whose MIME type is one of the well-known executable types, or
// a text/* file that is natively backed, has an execute bit set, and
// begins with a "#!" shebang.
func (fi *FileInfo) IsExecutableType() bool {
	mime := fi.Mime()
	switch mime {
	case "application/x-executable", "application/x-sharedlib", "application/x-shellscript":
		return true
	}
	if !vmime.IsText(mime) {
		return false
	}
	if !fi.fromNative || fi.mode&0o111 == 0 {
		return false
	}
	data, err := os.ReadFile(fi.path.String())
	if err != nil || len(data) < 2 {
		return false
	}
	return bytes.Equal(data[:2], []byte("#!"))
}

// IsAccessible reports whether the file (if a directory) can be listed, or
// (if a regular file) can be opened for reading.
func (fi *FileInfo) IsAccessible() bool {
	return fi.accessible
}

// IsHidden reports whether fi should be hidden from a normal directory
// listing: base name starts with ".", or backup_as_hidden is configured
// and the name ends with "~".
func (fi *FileInfo) IsHidden() bool {
	name := fi.path.Basename()
	if strings.HasPrefix(name, ".") {
		return true
	}
	return fi.backupAsHidden && strings.HasSuffix(name, "~")
}

// CanThumbnail reports whether fi is eligible for thumbnail generation: a
// regular file, nonzero size, not a desktop entry, with a known MIME type.
func (fi *FileInfo) CanThumbnail() bool {
	if fi.mode&fs.ModeType != 0 {
		return false
	}
	if fi.size == 0 {
		return false
	}
	if fi.IsDesktopEntry() {
		return false
	}
	return !fi.IsUnknownType()
}
