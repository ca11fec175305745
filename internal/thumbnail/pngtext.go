package thumbnail

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"hash/crc32"
	"image"
	"image/png"
	"io"
	"os"
)

var pngSignature = []byte{0x89, 'P', 'N', 'G', '\r', '\n', 0x1a, '\n'}

// writePNGWithText encodes img as a PNG and splices in a tEXt chunk
// (key=value) immediately before IEND, matching the on-disk freshness tag
// format XDG thumbnail caches use. No library in the retrieval pack writes
// PNG ancillary chunks, so this is built directly on image/png plus manual
// chunk framing (see DESIGN.md).
func writePNGWithText(w io.Writer, img image.Image, key, value string) error {
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return fmt.Errorf("thumbnail: encode png: %w", err)
	}
	data := buf.Bytes()
	if !bytes.HasPrefix(data, pngSignature) {
		return fmt.Errorf("thumbnail: encoded data is not a PNG")
	}

	if _, err := w.Write(pngSignature); err != nil {
		return err
	}

	pos := len(pngSignature)
	textChunk := encodeTextChunk(key, value)
	wrote := false
	for pos < len(data) {
		length := binary.BigEndian.Uint32(data[pos : pos+4])
		typ := string(data[pos+4 : pos+8])
		chunkEnd := pos + 12 + int(length)

		if typ == "IEND" && !wrote {
			if _, err := w.Write(textChunk); err != nil {
				return err
			}
			wrote = true
		}
		if _, err := w.Write(data[pos:chunkEnd]); err != nil {
			return err
		}
		pos = chunkEnd
	}
	return nil
}

func encodeTextChunk(key, value string) []byte {
	payload := append([]byte(key), 0)
	payload = append(payload, []byte(value)...)

	chunk := make([]byte, 0, 12+len(payload))
	var lenBuf [4]byte
	binary.BigEndian.PutUint32(lenBuf[:], uint32(len(payload)))
	chunk = append(chunk, lenBuf[:]...)
	chunk = append(chunk, []byte("tEXt")...)
	chunk = append(chunk, payload...)

	crc := crc32.ChecksumIEEE(append([]byte("tEXt"), payload...))
	var crcBuf [4]byte
	binary.BigEndian.PutUint32(crcBuf[:], crc)
	chunk = append(chunk, crcBuf[:]...)
	return chunk
}

// readTextTag scans a PNG file's chunks for a tEXt (or iTXt/zTXt, treated
// as absent since the engine never writes those) entry with the given key,
// without decoding pixel data.
func readTextTag(path, key string) (string, bool) {
	f, err := os.Open(path)
	if err != nil {
		return "", false
	}
	defer f.Close()

	sig := make([]byte, len(pngSignature))
	if _, err := io.ReadFull(f, sig); err != nil || !bytes.Equal(sig, pngSignature) {
		return "", false
	}

	var header [8]byte
	for {
		if _, err := io.ReadFull(f, header[:]); err != nil {
			return "", false
		}
		length := binary.BigEndian.Uint32(header[0:4])
		typ := string(header[4:8])
		if typ == "IEND" {
			return "", false
		}
		if typ != "tEXt" {
			if _, err := f.Seek(int64(length)+4, io.SeekCurrent); err != nil {
				return "", false
			}
			continue
		}

		payload := make([]byte, length)
		if _, err := io.ReadFull(f, payload); err != nil {
			return "", false
		}
		if _, err := f.Seek(4, io.SeekCurrent); err != nil { // skip CRC
			return "", false
		}
		sep := bytes.IndexByte(payload, 0)
		if sep < 0 {
			continue
		}
		if string(payload[:sep]) == key {
			return string(payload[sep+1:]), true
		}
	}
}
