package thumbnail

import (
	"image"
	"io"
)

// Backend is the pluggable image-codec vtable the engine calls into. It
// is injected once at startup via Engine.SetBackend; a second install is
// rejected.
type Backend interface {
	// DecodeFile decodes the image at path.
	DecodeFile(path string) (image.Image, error)
	// DecodeStream decodes an image from r. size is a hint (0 if
	// unknown); cancel, if non-nil and closed, aborts the read.
	DecodeStream(r io.Reader, size int64, cancel <-chan struct{}) (image.Image, error)
	// Scale fits img within a w x h box, preserving aspect ratio.
	Scale(img image.Image, w, h int) image.Image
	// Rotate rotates img by degrees (0, 90, 180, 270), clockwise.
	Rotate(img image.Image, degrees int) image.Image
	// WritePNG atomically writes img as a PNG to targetPath, embedding a
	// Thumb::MTime tEXt chunk set to mtimeSeconds.
	WritePNG(img image.Image, targetPath string, mtimeSeconds int64) error
	// TextTag reads a PNG tEXt chunk's value by key, without fully
	// decoding the image.
	TextTag(path, key string) (string, bool)
}
