// Command fmthumbd lists a directory and generates thumbnails for its
// image entries, exercising the full engine (on-disk cache, built-in
// decoder, cache/XDG layout) from the command line.
package main

import (
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/justyntemme/fmthumb/internal/config"
	"github.com/justyntemme/fmthumb/internal/fileinfo"
	"github.com/justyntemme/fmthumb/internal/fsscan"
	"github.com/justyntemme/fmthumb/internal/highlight"
	"github.com/justyntemme/fmthumb/internal/thumbnail"
	"github.com/justyntemme/fmthumb/internal/watchhelper"
)

func main() {
	path := flag.String("path", "", "directory to list (defaults to the current directory)")
	size := flag.Int("size", 128, "thumbnail pixel size to request")
	generateConfig := flag.Bool("generate-config", false, "write a fresh config.json and exit")
	watch := flag.Bool("watch", false, "keep running and invalidate cached thumbnails on file changes")
	flag.Parse()

	if *generateConfig {
		mgr := config.NewManager()
		if err := mgr.Save(); err != nil {
			fmt.Fprintf(os.Stderr, "error: %v\n", err)
			os.Exit(1)
		}
		fmt.Printf("wrote default config to %s\n", config.ConfigPath())
		return
	}

	mgr := config.NewManager()
	if err := mgr.Load(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
	cfg := mgr.Get()

	dir := *path
	if dir == "" {
		if wd, err := os.Getwd(); err == nil {
			dir = wd
		} else {
			dir = "."
		}
	}
	dir = filepath.Clean(dir)

	var colorFor func(string, string) string
	if cfg.HighlightDBPath != "" {
		store, err := highlight.Open(cfg.HighlightDBPath)
		if err != nil {
			fmt.Fprintf(os.Stderr, "warning: highlight db unavailable: %v\n", err)
		} else {
			defer store.Close()
			colorFor = store.ColorFor
		}
	}

	opts := fileinfo.Options{
		Deps: fileinfo.Deps{
			ColorFor: colorFor,
		},
		DeferMimeTypeLoading: cfg.DeferMimeTypeLoading,
		BackupAsHidden:       cfg.BackupAsHidden,
		SIUnit:               cfg.SIUnit,
	}

	entries, err := fsscan.ScanSync(dir, opts)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: scan %s: %v\n", dir, err)
		os.Exit(1)
	}

	thumbDir, err := mgr.ThumbnailDir()
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}

	engine, err := thumbnail.NewEngine(thumbnail.EngineConfig{
		ThumbnailDir:   thumbDir,
		ThumbnailMaxKB: cfg.ThumbnailMaxKB,
		Thumbnailers:   builtinThumbnailerTable,
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
	defer engine.Close()

	var wg sync.WaitGroup
	for _, fi := range entries {
		fmt.Printf("%-40s %10s  %s\n", fi.DispName(), fi.DispSize(), fi.Mime())

		if !fi.CanThumbnail() {
			continue
		}
		wg.Add(1)
		source := thumbnail.SourceRefFrom(fi)
		engine.Load(source, uint16(*size), func(h *thumbnail.RequestHandle) {
			defer wg.Done()
			if img, ok := h.GetData(); ok {
				b := img.Bounds()
				fmt.Printf("  thumbnail ready: %dx%d\n", b.Dx(), b.Dy())
			} else {
				fmt.Printf("  thumbnail failed\n")
			}
		}, nil)
	}
	wg.Wait()

	if *watch {
		watchAndInvalidate(dir, opts, engine)
	}
}

// watchAndInvalidate re-lists dir whenever watchhelper reports a change and
// invalidates the engine's in-memory cache for every entry found, so a
// later Load re-checks the on-disk thumbnail's freshness against the
// file's new mtime instead of serving a stale cached image.
func watchAndInvalidate(dir string, opts fileinfo.Options, engine *thumbnail.Engine) {
	w, err := watchhelper.New(0)
	if err != nil {
		fmt.Fprintf(os.Stderr, "warning: watch unavailable: %v\n", err)
		return
	}
	defer w.Close()
	if err := w.Watch(dir); err != nil {
		fmt.Fprintf(os.Stderr, "warning: watch %s: %v\n", dir, err)
		return
	}

	for changedDir := range w.Notify() {
		entries, err := fsscan.ScanSync(changedDir, opts)
		if err != nil {
			fmt.Fprintf(os.Stderr, "warning: rescan %s: %v\n", changedDir, err)
			continue
		}
		for _, fi := range entries {
			engine.Invalidate(fi.Path().String())
		}
		fmt.Printf("invalidated cache for %s (%d entries)\n", changedDir, len(entries))
	}
}

// builtinThumbnailerTable returns no external helpers: image entries are
// handled by the built-in decoder, and any other entry that passes
// CanThumbnail is still requested but reports "thumbnail failed".
func builtinThumbnailerTable(mime string) []thumbnail.Helper {
	return nil
}
