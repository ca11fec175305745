//go:build linux

package thumbnail

import (
	"image"
	"os"

	"github.com/jdeng/goheif"
)

// decodeHEIC decodes a HEIC/HEIF image file. ok is false if path isn't a
// HEIC file or decoding failed, letting the caller fall back to the
// stdlib image.Decode dispatch.
func decodeHEIC(path string) (image.Image, bool) {
	f, err := os.Open(path)
	if err != nil {
		return nil, false
	}
	defer f.Close()
	img, err := goheif.Decode(f)
	if err != nil {
		return nil, false
	}
	return img, true
}
