//go:build !windows

package thumbnail

import "golang.org/x/sys/unix"

func sigterm(pid int) {
	unix.Kill(pid, unix.SIGTERM)
}
