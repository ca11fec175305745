//go:build windows

package thumbnail

import "os"

// Windows has no SIGTERM; Kill is the closest equivalent for tearing down
// a runaway external thumbnailer.
func sigterm(pid int) {
	if p, err := os.FindProcess(pid); err == nil {
		p.Kill()
	}
}
