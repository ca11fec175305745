// Package vmime is a minimal stand-in for the shared-mime-info database a
// full desktop environment would supply. It only implements what the
// thumbnail engine and FileInfo descriptor need: sniffing a MIME type from
// content or extension, and reporting which types the built-in image
// backend decodes. It holds no table of external thumbnailers.
package vmime

import (
	"bytes"
	"net/http"
	"path/filepath"
	"strings"
)

type prefixEntry struct {
	prefix []byte
	mtype  string
}

// prefixTable covers the formats the built-in image backend and the
// thumbnail engine care about. Anything else falls through to
// net/http.DetectContentType.
var prefixTable = []prefixEntry{
	{[]byte("GIF87a"), "image/gif"},
	{[]byte("GIF89a"), "image/gif"},
	{[]byte{0xff, 0xd8, 0xff}, "image/jpeg"},
	{[]byte{137, 'P', 'N', 'G', '\r', '\n', 26, 10}, "image/png"},
	{[]byte{0x49, 0x49, 0x2A, 0}, "image/tiff"},
	{[]byte{0x4D, 0x4D, 0, 0x2A}, "image/tiff"},
	{[]byte("BM"), "image/bmp"},
	{[]byte{0, 0, 0, 0x14, 0x66, 0x74, 0x79, 0x70}, "video/mp4"},
	{[]byte("ftyp"), "video/mp4"}, // offset-agnostic fallback, checked below
}

// heicBoxTypes are the ftyp major brands libheif/ISOBMFF readers recognize
// for HEIC/HEIF content; the box header itself starts with a 4-byte size
// field so the magic bytes begin at offset 4, not 0.
var heicBoxTypes = [][]byte{
	[]byte("heic"), []byte("heix"), []byte("hevc"), []byte("heim"),
	[]byte("heis"), []byte("hevm"), []byte("hevs"), []byte("mif1"),
}

// Sniff returns the best-guess MIME type for data, which should contain at
// least the first 512 bytes of the file.
func Sniff(data []byte) string {
	for _, e := range prefixTable {
		if bytes.HasPrefix(data, e.prefix) {
			return e.mtype
		}
	}
	if len(data) >= 12 && bytes.Equal(data[4:8], []byte("ftyp")) {
		brand := data[8:12]
		for _, b := range heicBoxTypes {
			if bytes.Equal(brand, b) {
				return "image/heic"
			}
		}
		return "video/mp4"
	}
	if t := http.DetectContentType(data); t != "application/octet-stream" {
		return strings.SplitN(t, ";", 2)[0]
	}
	return FromExtension("")
}

// extensionTable is consulted by FromExtension, which FileInfo falls back
// to when a file's content cannot be read. Sniff itself does not consult
// it: inconclusive content yields application/octet-stream.
var extensionTable = map[string]string{
	".jpg": "image/jpeg", ".jpeg": "image/jpeg",
	".png": "image/png", ".gif": "image/gif",
	".bmp": "image/bmp", ".tif": "image/tiff", ".tiff": "image/tiff",
	".heic": "image/heic", ".heif": "image/heic",
	".webp": "image/webp",
	".txt":  "text/plain", ".md": "text/plain",
	".desktop": "application/x-desktop",
}

// FromExtension guesses a MIME type purely from the file name, falling back
// to application/octet-stream.
func FromExtension(name string) string {
	ext := strings.ToLower(filepath.Ext(name))
	if t, ok := extensionTable[ext]; ok {
		return t
	}
	return "application/octet-stream"
}

// directoryMime is the type fm_file_info_set_from_native_file assigns to
// directories, matching the well-known inode/directory convention.
const directoryMime = "inode/directory"

// DirectoryMime returns the MIME type assigned to directories.
func DirectoryMime() string { return directoryMime }

// builtinThumbnailable lists the MIME types the built-in image backend can
// decode without shelling out to an external thumbnailer.
var builtinThumbnailable = map[string]bool{
	"image/jpeg": true, "image/png": true, "image/gif": true,
	"image/bmp": true, "image/tiff": true, "image/heic": true,
	"image/webp": true,
}

// CanThumbnailBuiltin reports whether the built-in backend handles mtype.
func CanThumbnailBuiltin(mtype string) bool {
	return builtinThumbnailable[mtype]
}

// IsImage reports whether mtype is one of the image/* family.
func IsImage(mtype string) bool {
	return strings.HasPrefix(mtype, "image/")
}

// IsText reports whether mtype is text/* or a known text-like application
// type (e.g. application/x-desktop, which is textual key=value content).
func IsText(mtype string) bool {
	return strings.HasPrefix(mtype, "text/") || mtype == "application/x-desktop"
}

// IsDesktopEntry reports whether mtype identifies a .desktop launcher file.
func IsDesktopEntry(mtype string) bool {
	return mtype == "application/x-desktop"
}
