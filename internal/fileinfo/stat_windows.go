//go:build windows

package fileinfo

import (
	"os"
	"time"
)

// Windows' os.FileInfo carries no atime/blocks/uid/gid through a portable
// syscall.Stat_t the way unix does; ownership doesn't apply, so these fall
// back to ModTime/zero.
func statAtime(info os.FileInfo) time.Time { return info.ModTime() }

func statBlocks(info os.FileInfo) int64 { return 0 }

func statOwner(info os.FileInfo) (uid, gid uint32) { return 0, 0 }

func statDev(info os.FileInfo) uint64 { return 0 }
