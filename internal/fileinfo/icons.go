package fileinfo

import (
	"bufio"
	"os"
	"path/filepath"
	"strings"

	"github.com/justyntemme/fmthumb/internal/vicon"
)

// wellKnownDirIcon special-cases the home, desktop, documents, downloads,
// music, pictures, publicshare, templates, videos and root directories.
func wellKnownDirIcon(path string) (vicon.Icon, bool) {
	if path == "/" {
		return vicon.FilesystemRoot, true
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return vicon.Icon{}, false
	}
	if filepath.Clean(path) == filepath.Clean(home) {
		return vicon.FolderHome, true
	}
	named := map[string]vicon.Icon{
		"Desktop":     vicon.FolderDesktop,
		"Documents":   vicon.FolderDocs,
		"Downloads":   vicon.FolderDownload,
		"Music":       vicon.FolderMusic,
		"Pictures":    vicon.FolderPictures,
		"Public":      vicon.FolderPublic,
		"Templates":   vicon.FolderTemplate,
		"Videos":      vicon.FolderVideos,
	}
	for name, icon := range named {
		if filepath.Clean(path) == filepath.Join(home, name) {
			return icon, true
		}
	}
	return vicon.Icon{}, false
}

// desktopEntryIcon reads the Icon= key from a .desktop file's [Desktop
// Entry] group, stripping a trailing .png/.svg/.xpm extension unless the
// value is an absolute path.
func desktopEntryIcon(path string) (vicon.Icon, bool) {
	f, err := os.Open(path)
	if err != nil {
		return vicon.Icon{}, false
	}
	defer f.Close()

	inGroup := false
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		if strings.HasPrefix(line, "[") {
			inGroup = line == "[Desktop Entry]"
			continue
		}
		if !inGroup {
			continue
		}
		if val, ok := strings.CutPrefix(line, "Icon="); ok {
			val = strings.TrimSpace(val)
			if !filepath.IsAbs(val) {
				switch filepath.Ext(val) {
				case ".png", ".svg", ".xpm":
					val = strings.TrimSuffix(val, filepath.Ext(val))
				}
			}
			return vicon.Named(val), true
		}
	}
	return vicon.Icon{}, false
}
