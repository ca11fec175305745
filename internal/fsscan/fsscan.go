// Package fsscan lists a single directory level into FileInfo descriptors
// using a worker goroutine driven by request/response channels, so a UI
// can fire off a scan and keep rendering while it runs.
package fsscan

import (
	"io/fs"
	"path/filepath"
	"strings"
	"sync"

	"github.com/charlievieth/fastwalk"

	"github.com/justyntemme/fmthumb/internal/debug"
	"github.com/justyntemme/fmthumb/internal/fileinfo"
)

// Request asks the scanner to list Path. Gen lets a caller discard a
// response that arrived after a newer request superseded it.
type Request struct {
	Path string
	Gen  int64
}

// Response carries the listing for the Path/Gen a Request named, or Err
// if the walk failed outright.
type Response struct {
	Path    string
	Gen     int64
	Entries []*fileinfo.FileInfo
	Err     error
}

// Scanner runs one background goroutine draining Requests and producing
// Responses; callers send on RequestChan and receive on ResponseChan.
type Scanner struct {
	RequestChan  chan Request
	ResponseChan chan Response

	opts fileinfo.Options

	mu         sync.Mutex
	currentGen int64
}

// New returns a Scanner that builds FileInfo entries with opts.
func New(opts fileinfo.Options) *Scanner {
	return &Scanner{
		RequestChan:  make(chan Request, 4),
		ResponseChan: make(chan Response, 4),
		opts:         opts,
	}
}

// Run drains RequestChan until it is closed. Call it in its own
// goroutine.
func (s *Scanner) Run() {
	for req := range s.RequestChan {
		s.mu.Lock()
		s.currentGen = req.Gen
		s.mu.Unlock()

		resp := s.scanOne(req.Path)
		resp.Gen = req.Gen

		s.mu.Lock()
		stale := s.currentGen != req.Gen
		s.mu.Unlock()
		if stale {
			debug.Log(debug.FILEINFO, "fsscan: dropping stale response for %q (gen %d superseded)", req.Path, req.Gen)
			continue
		}
		s.ResponseChan <- resp
	}
}

// scanOne lists the direct children of path, one level deep, following
// symlinks to classify their targets.
func (s *Scanner) scanOne(path string) Response {
	var (
		mu      sync.Mutex
		entries []*fileinfo.FileInfo
	)

	conf := &fastwalk.Config{Follow: true}
	pathLen := len(path)

	err := fastwalk.Walk(conf, path, func(fullPath string, d fs.DirEntry, err error) error {
		if err != nil {
			debug.Log(debug.FILEINFO, "fsscan: walk error at %q: %v", fullPath, err)
			return nil
		}
		if fullPath == path {
			return nil
		}

		relStart := pathLen
		if relStart < len(fullPath) && (fullPath[relStart] == '/' || fullPath[relStart] == '\\') {
			relStart++
		}
		if strings.ContainsAny(fullPath[relStart:], "/\\") {
			if d.IsDir() {
				return fastwalk.SkipDir
			}
			return nil
		}

		fi, err := fileinfo.FromNative(fullPath, s.opts)
		if err != nil {
			debug.Log(debug.FILEINFO, "fsscan: skipping %q: %v", fullPath, err)
			return nil
		}

		mu.Lock()
		entries = append(entries, fi)
		mu.Unlock()

		if d.IsDir() {
			return fastwalk.SkipDir
		}
		return nil
	})
	if err != nil {
		return Response{Path: path, Err: err}
	}

	debug.Log(debug.FILEINFO, "fsscan: %q -> %d entries", path, len(entries))
	return Response{Path: path, Entries: entries}
}

// ScanSync lists path synchronously, without going through the
// request/response channels. Useful for CLI callers that don't need the
// cancel/supersede machinery.
func ScanSync(path string, opts fileinfo.Options) ([]*fileinfo.FileInfo, error) {
	s := New(opts)
	resp := s.scanOne(filepath.Clean(path))
	return resp.Entries, resp.Err
}
