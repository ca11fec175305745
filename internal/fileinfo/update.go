package fileinfo

import "github.com/justyntemme/fmthumb/internal/vicon"

// Update copies src's fields into dst, refreshing dst in place so existing
// holders of the pointer observe the new data. Shared sub-objects of src
// are referenced before dst is cleared, so a field that happens to be
// identical between dst and src (e.g. both share the same icon) is never
// dropped and immediately recreated.
func Update(dst, src *FileInfo) {
	path := src.path
	icon := src.Icon()
	mime := src.Mime()
	color := src.Color()

	dst.dispNameMu.Lock()
	dispName := src.dispName
	dst.dispNameMu.Unlock()

	dst.path = path
	dst.mode = src.mode
	dst.fromNative = src.fromNative
	dst.devOrFsID = src.devOrFsID
	dst.uid = src.uid
	dst.gid = src.gid
	dst.size = src.size
	dst.mtime = src.mtime
	dst.atime = src.atime
	dst.blocks = src.blocks
	dst.target = src.target
	dst.shortcut = src.shortcut
	dst.mountable = src.mountable
	dst.accessible = src.accessible
	dst.backupAsHidden = src.backupAsHidden
	dst.siUnit = src.siUnit
	dst.deferredMimeLoad = src.deferredMimeLoad

	dst.SetDispName(dispName)

	dst.mime.reset()
	dst.mime.fill(func() string { return mime })
	dst.icon.reset()
	dst.icon.fill(func() vicon.Icon { return icon })
	dst.color.reset()
	dst.color.fill(func() string { return color })
	dst.dispSize.reset()
	dst.dispMtime.reset()

	dst.collateKeyMu.Lock()
	dst.collateKeyLoaded.Store(false)
	dst.collateKeyMu.Unlock()
}
