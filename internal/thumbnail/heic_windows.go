//go:build windows

package thumbnail

import "image"

// decodeHEIC is a stub on Windows, where goheif is not supported; the
// caller falls back to the stdlib image.Decode dispatch, which will fail
// to recognize HEIC content and report DecodeFailed.
func decodeHEIC(path string) (image.Image, bool) {
	return nil, false
}
