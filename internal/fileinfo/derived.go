package fileinfo

import (
	"os"

	"github.com/dustin/go-humanize"
	"github.com/ncruces/go-strftime"
	"golang.org/x/text/collate"
	"golang.org/x/text/language"

	"github.com/justyntemme/fmthumb/internal/debug"
	"github.com/justyntemme/fmthumb/internal/vicon"
	"github.com/justyntemme/fmthumb/internal/vmime"
)

// Mime returns the file's MIME type, sniffing it on first access unless it
// was already supplied at construction time (e.g. config.defer_mime_type_loading
// is honored by the caller choosing whether to pre-populate it).
func (fi *FileInfo) Mime() string {
	return fi.mime.fill(func() string {
		debug.Log(debug.FILEINFO, "sniffing mime for %s", fi.path.String())
		if fi.deps.SniffMime != nil {
			return fi.deps.SniffMime(fi.path, fi.mode)
		}
		if fi.mode.IsDir() {
			return vmime.DirectoryMime()
		}
		data, err := os.ReadFile(fi.path.String())
		if err != nil {
			return vmime.FromExtension(fi.path.String())
		}
		if len(data) > 512 {
			data = data[:512]
		}
		return vmime.Sniff(data)
	})
}

// Icon resolves the display icon, special-casing well-known directories,
// locked folders, and desktop-entry overrides before falling back to the
// MIME type's icon.
func (fi *FileInfo) Icon() vicon.Icon {
	return fi.icon.fill(func() vicon.Icon {
		if fi.deps.ResolveIcon != nil {
			return fi.deps.ResolveIcon(fi)
		}
		return defaultIconFor(fi)
	})
}

// defaultIconFor resolves the fallback icon: well-known home/desktop/
// xdg-user-dir folders, a locked-folder icon for inaccessible directories,
// desktop-entry overrides, and otherwise the type's generic icon.
func defaultIconFor(fi *FileInfo) vicon.Icon {
	if fi.IsDesktopEntry() {
		if ic, ok := desktopEntryIcon(fi.path.String()); ok {
			return ic
		}
	}
	if fi.IsDirectory() {
		if ic, ok := wellKnownDirIcon(fi.path.String()); ok {
			return ic
		}
		if !fi.IsAccessible() {
			return vicon.FolderLocked
		}
		return vicon.Folder
	}
	if fi.IsSymlink() {
		return vicon.Shortcut
	}
	if fi.IsMountable() {
		return vicon.Mountable
	}
	if fi.IsUnknownType() {
		return vicon.UnknownType
	}
	return vicon.Named(fi.Mime())
}

// CollateKey returns the case-folded, locale-correct sort key for the
// display name. If the key is byte-identical to the name itself, the
// descriptor reuses the display name instead of storing a duplicate.
func (fi *FileInfo) CollateKey() string {
	fi.ensureCollateKeys()
	if fi.collateKey == collateKeySentinel {
		return fi.DispName()
	}
	return fi.collateKey
}

// CollateKeyCase is like CollateKey but case-sensitive.
func (fi *FileInfo) CollateKeyCase() string {
	fi.ensureCollateKeys()
	if fi.collateKeyCase == collateKeySentinel {
		return fi.DispName()
	}
	return fi.collateKeyCase
}

var (
	caseFoldCollator = collate.New(language.Und, collate.Loose)
	caseExactCollator = collate.New(language.Und, collate.Force)
)

func (fi *FileInfo) ensureCollateKeys() {
	if fi.collateKeyLoaded.Load() {
		return
	}
	fi.collateKeyMu.Lock()
	defer fi.collateKeyMu.Unlock()
	if fi.collateKeyLoaded.Load() {
		return
	}

	name := fi.DispName()
	var bufFold, bufExact collate.Buffer
	keyFold := string(caseFoldCollator.KeyFromString(&bufFold, name))
	keyExact := string(caseExactCollator.KeyFromString(&bufExact, name))

	if keyFold == name {
		fi.collateKey = collateKeySentinel
	} else {
		fi.collateKey = keyFold
	}
	if keyExact == name {
		fi.collateKeyCase = collateKeySentinel
	} else {
		fi.collateKeyCase = keyExact
	}
	fi.collateKeyLoaded.Store(true)
}

// DispSize returns a human-readable size string, honoring the si_unit
// config knob. Only meaningful for regular files.
func (fi *FileInfo) DispSize() string {
	return fi.dispSize.fill(func() string {
		if fi.mode.IsDir() || !fi.mode.IsRegular() {
			return ""
		}
		if fi.siUnit {
			return humanize.Bytes(uint64(fi.size))
		}
		return humanize.IBytes(uint64(fi.size))
	})
}

// DispMtime returns the modification time formatted as strftime("%x %R")
// in local time.
func (fi *FileInfo) DispMtime() string {
	return fi.dispMtime.fill(func() string {
		return strftime.Format("%x %R", fi.mtime.Local())
	})
}

// Color returns the highlight color assigned by the highlighting policy,
// or "" if none applies. Filled on first read.
func (fi *FileInfo) Color() string {
	return fi.color.fill(func() string {
		if fi.deps.ColorFor == nil {
			return ""
		}
		return fi.deps.ColorFor(fi.DispName(), fi.Mime())
	})
}
