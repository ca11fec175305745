package thumbnail

import (
	"bufio"
	"bytes"
	"fmt"
	"image"
	_ "image/gif"
	"image/jpeg"
	_ "image/png"
	"io"
	"os"
	"strconv"

	"github.com/disintegration/imaging"
	"github.com/rwcarlsen/goexif/exif"
	"golang.org/x/image/bmp"
	"golang.org/x/image/tiff"
)

func init() {
	image.RegisterFormat("bmp", "BM", bmp.Decode, bmp.DecodeConfig)
	image.RegisterFormat("tiff", "II*\x00", tiff.Decode, tiff.DecodeConfig)
	image.RegisterFormat("tiff", "MM\x00*", tiff.Decode, tiff.DecodeConfig)
}

// BuiltinBackend is the default Backend: stdlib image codecs plus bmp,
// tiff and heic decoders, imaging for scale/rotate, and goexif for
// orientation and embedded-thumbnail extraction.
type BuiltinBackend struct{}

// NewBuiltinBackend returns the default backend.
func NewBuiltinBackend() *BuiltinBackend {
	return &BuiltinBackend{}
}

func (b *BuiltinBackend) DecodeFile(path string) (image.Image, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrSourceUnreadable, err)
	}
	defer f.Close()
	if img, ok := decodeHEIC(path); ok {
		return img, nil
	}
	img, _, err := image.Decode(bufio.NewReader(f))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrDecodeFailed, err)
	}
	return img, nil
}

func (b *BuiltinBackend) DecodeStream(r io.Reader, size int64, cancel <-chan struct{}) (image.Image, error) {
	br := bufio.NewReader(r)
	type result struct {
		img image.Image
		err error
	}
	done := make(chan result, 1)
	go func() {
		img, _, err := image.Decode(br)
		done <- result{img, err}
	}()
	select {
	case res := <-done:
		if res.err != nil {
			return nil, fmt.Errorf("%w: %v", ErrDecodeFailed, res.err)
		}
		return res.img, nil
	case <-cancel:
		return nil, fmt.Errorf("%w: cancelled", ErrDecodeFailed)
	}
}

func (b *BuiltinBackend) Scale(img image.Image, w, h int) image.Image {
	bounds := img.Bounds()
	if bounds.Dx() <= w && bounds.Dy() <= h {
		return img
	}
	return imaging.Fit(img, w, h, imaging.Lanczos)
}

func (b *BuiltinBackend) Rotate(img image.Image, degrees int) image.Image {
	switch ((degrees % 360) + 360) % 360 {
	case 90: // imaging's RotateN turns counter-clockwise
		return imaging.Rotate270(img)
	case 180:
		return imaging.Rotate180(img)
	case 270:
		return imaging.Rotate90(img)
	default:
		return img
	}
}

func (b *BuiltinBackend) WritePNG(img image.Image, targetPath string, mtimeSeconds int64) error {
	tmp, err := os.CreateTemp(dirOf(targetPath), ".tmp-thumb-*")
	if err != nil {
		return fmt.Errorf("thumbnail: create temp file: %w", err)
	}
	tmpPath := tmp.Name()
	defer os.Remove(tmpPath) // no-op once renamed

	if err := writePNGWithText(tmp, img, "Thumb::MTime", strconv.FormatInt(mtimeSeconds, 10)); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	if err := os.Chmod(tmpPath, 0o600); err != nil {
		return err
	}
	return os.Rename(tmpPath, targetPath)
}

func (b *BuiltinBackend) TextTag(path, key string) (string, bool) {
	return readTextTag(path, key)
}

func dirOf(path string) string {
	for i := len(path) - 1; i >= 0; i-- {
		if path[i] == '/' {
			return path[:i]
		}
	}
	return "."
}

// exifOrientationDegrees maps EXIF orientation tag values to clockwise
// rotation degrees, per spec: 1->0, 3->180, 6->90, 8->270. Orientations
// involving a mirror flip (2,4,5,7) are treated as no rotation; the engine
// doesn't model flips.
func exifOrientationDegrees(orientation int) int {
	switch orientation {
	case 3:
		return 180
	case 6:
		return 90
	case 8:
		return 270
	default:
		return 0
	}
}

// jpegEXIFFastPath extracts the EXIF orientation and an embedded
// thumbnail image from a JPEG file, if present. ok is false if the file
// has no usable EXIF data at all (not an error: the caller falls back to
// decoding the full image).
func jpegEXIFFastPath(path string) (thumb image.Image, degrees int, ok bool) {
	f, err := os.Open(path)
	if err != nil {
		return nil, 0, false
	}
	defer f.Close()

	x, err := exif.Decode(f)
	if err != nil {
		return nil, 0, false
	}

	degrees = 0
	if tag, err := x.Get(exif.Orientation); err == nil {
		if v, err := tag.Int(0); err == nil {
			degrees = exifOrientationDegrees(v)
		}
	}

	data, err := x.JpegThumbnail()
	if err != nil || len(data) == 0 {
		return nil, degrees, true
	}
	img, err := jpeg.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, degrees, true
	}
	return img, degrees, true
}
