package thumbnail

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestStorePaths(t *testing.T) {
	s := NewStore(t.TempDir())
	normal, large := s.Paths("file:///home/user/photo.jpg")
	if filepath.Base(filepath.Dir(normal)) != "normal" {
		t.Errorf("normal path %q not under a normal/ directory", normal)
	}
	if filepath.Base(filepath.Dir(large)) != "large" {
		t.Errorf("large path %q not under a large/ directory", large)
	}
	if normal == large {
		t.Error("normal and large paths must differ")
	}
}

func TestStoreSaveThenLoadFresh(t *testing.T) {
	s := NewStore(t.TempDir())
	if err := s.EnsureDirs(); err != nil {
		t.Fatal(err)
	}
	backend := NewBuiltinBackend()
	normal, _ := s.Paths("file:///a/b.jpg")
	mtime := time.Unix(1700000000, 0)

	if err := s.Save(normal, testImage(), mtime, backend); err != nil {
		t.Fatalf("Save: %v", err)
	}
	info, err := os.Stat(normal)
	if err != nil {
		t.Fatalf("saved thumbnail missing: %v", err)
	}
	if info.Mode().Perm() != 0o600 {
		t.Errorf("saved thumbnail mode = %v, want 0600", info.Mode().Perm())
	}

	img, fresh, err := s.Load(normal, mtime, backend)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if !fresh {
		t.Fatal("Load() reported stale immediately after Save() with matching mtime")
	}
	if img == nil {
		t.Fatal("Load() returned a nil image for a fresh thumbnail")
	}
}

func TestStoreLoadStaleUnlinksFile(t *testing.T) {
	s := NewStore(t.TempDir())
	if err := s.EnsureDirs(); err != nil {
		t.Fatal(err)
	}
	backend := NewBuiltinBackend()
	normal, _ := s.Paths("file:///a/c.jpg")
	savedMtime := time.Unix(1700000000, 0)
	if err := s.Save(normal, testImage(), savedMtime, backend); err != nil {
		t.Fatal(err)
	}

	newerMtime := savedMtime.Add(time.Hour)
	_, fresh, err := s.Load(normal, newerMtime, backend)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if fresh {
		t.Fatal("Load() reported fresh for a thumbnail older than the source mtime")
	}
	if _, err := os.Stat(normal); !os.IsNotExist(err) {
		t.Error("a stale thumbnail should be unlinked by Load()")
	}
}

func TestStoreLoadMissingIsNotAnError(t *testing.T) {
	s := NewStore(t.TempDir())
	backend := NewBuiltinBackend()
	img, fresh, err := s.Load(filepath.Join(s.root, "normal", "nope.png"), time.Now(), backend)
	if err != nil {
		t.Fatalf("Load() on a missing file returned an error: %v", err)
	}
	if fresh || img != nil {
		t.Fatal("Load() on a missing file should report (nil, false, nil)")
	}
}
