package thumbnail

import (
	"crypto/md5"
	"encoding/hex"
	"fmt"
	"image"
	"os"
	"path/filepath"
	"strconv"
	"time"
)

// Store implements the on-disk XDG-style thumbnail layout:
// <root>/{normal,large}/<md5-hex-of-uri>.png, directories at 0700, PNGs at
// 0600, freshness tracked via a Thumb::MTime tEXt chunk.
type Store struct {
	root string
}

// NewStore returns a Store rooted at dir (typically $HOME/.thumbnails).
func NewStore(dir string) *Store {
	return &Store{root: dir}
}

// Paths returns the normal- and large-class on-disk paths for a source
// identified by uri.
func (s *Store) Paths(uri string) (normalPath, largePath string) {
	sum := md5.Sum([]byte(uri))
	hexDigest := hex.EncodeToString(sum[:])
	return filepath.Join(s.root, "normal", hexDigest+".png"),
		filepath.Join(s.root, "large", hexDigest+".png")
}

// EnsureDirs creates the normal/ and large/ subdirectories, mode 0700.
func (s *Store) EnsureDirs() error {
	for _, sub := range []string{"normal", "large"} {
		if err := os.MkdirAll(filepath.Join(s.root, sub), 0o700); err != nil {
			return fmt.Errorf("thumbnail: create %s dir: %w", sub, err)
		}
	}
	return nil
}

// Load reads and decodes the thumbnail at path if it is fresh relative to
// wantMtime, per the freshness rule: the Thumb::MTime tag, if present,
// must equal wantMtime exactly; if absent, the PNG file's own mtime must
// be at least as new. A stale file is unlinked and (nil, false, nil) is
// returned — this is not an error, it's the normal "needs regeneration"
// signal.
func (s *Store) Load(path string, wantMtime time.Time, backend Backend) (image.Image, bool, error) {
	info, err := os.Stat(path)
	if os.IsNotExist(err) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("%w: %v", ErrSourceUnreadable, err)
	}

	fresh := false
	if tag, ok := backend.TextTag(path, "Thumb::MTime"); ok {
		if sec, err := strconv.ParseInt(tag, 10, 64); err == nil {
			fresh = sec == wantMtime.Unix()
		}
	} else {
		fresh = !info.ModTime().Before(wantMtime)
	}

	if !fresh {
		os.Remove(path)
		return nil, false, nil
	}

	img, err := backend.DecodeFile(path)
	if err != nil {
		return nil, false, err
	}
	return img, true, nil
}

// Save atomically writes img as the thumbnail for path: a temp file next
// to the target, chmod 0600, embedded Thumb::MTime tag, then rename over
// the target.
func (s *Store) Save(path string, img image.Image, mtime time.Time, backend Backend) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return fmt.Errorf("thumbnail: create thumbnail dir: %w", err)
	}
	return backend.WritePNG(img, path, mtime.Unix())
}
