/*
Package container implements a decoder and encoder for the two uncompressed
image containers that can carry a hidden message, the Windows bitmap (.bmp)
and the binary portable pixmap (.ppm).

A bitmap starts with a 14 byte file header followed by a 40 byte DIB header.
All fields are little-endian. The pixel data begins at the offset declared in
the file header which is not necessarily directly after the 54 bytes of
header, any extra bytes in between are preserved when a header is copied.

A pixmap starts with the line "P6", optionally followed by lines starting with
"#", then the width, height and maximum color value as ASCII decimal numbers
separated by whitespace and finally exactly one whitespace byte before the raw
RGB pixel data.

Neither container is validated beyond what is needed to find and size the
pixel data, row padding and compression fields are ignored.
*/
package container

import (
	"errors"
	"path/filepath"
)

const (
	fileHeaderLen = 14
	infoHeaderLen = 40
	headerLen     = fileHeaderLen + infoHeaderLen

	// Bitmap header field offsets
	offsetSignature    = 0
	offsetFileSize     = 2
	offsetPixelData    = 10
	offsetInfoSize     = 14
	offsetWidth        = 18
	offsetHeight       = 22
	offsetPlanes       = 26
	offsetBitsPerPixel = 28

	pixmapMagic    = "P6"
	pixmapChannels = 3

	defaultMaxValue = 255
)

var (
	// ErrUnsupportedFormat is returned for anything other than a bitmap
	// or pixmap.
	ErrUnsupportedFormat = errors.New("container: unsupported format")
	// ErrTruncatedHeader is returned when a bitmap is shorter than its
	// header.
	ErrTruncatedHeader = errors.New("container: truncated header")
	// ErrInvalidMagic is returned when a pixmap does not start with "P6".
	ErrInvalidMagic = errors.New("container: invalid magic")
	// ErrMalformedHeader is returned when the pixmap dimensions or
	// maximum color value cannot be parsed.
	ErrMalformedHeader = errors.New("container: malformed header")
	// ErrInvalidPixelOffset is returned when a bitmap declares its pixel
	// data inside the file header.
	ErrInvalidPixelOffset = errors.New("container: invalid pixel data offset")
	// ErrTruncatedPixelData is returned when there are fewer pixel bytes
	// than the dimensions require.
	ErrTruncatedPixelData = errors.New("container: truncated pixel data")
	// ErrWrite wraps any failure to write an encoded container.
	ErrWrite = errors.New("container: write error")
)

// Format identifies an image container.
type Format int

// Supported formats
const (
	Bitmap Format = iota + 1
	Pixmap
)

var extensions = map[string]Format{
	".bmp": Bitmap,
	".ppm": Pixmap,
}

// FormatFromPath returns the Format matching the extension of path.
func FormatFromPath(path string) (Format, error) {
	if f, ok := extensions[filepath.Ext(path)]; ok {
		return f, nil
	}
	return 0, ErrUnsupportedFormat
}

func (f Format) String() string {
	switch f {
	case Bitmap:
		return "bitmap"
	case Pixmap:
		return "pixmap"
	default:
		return "unknown"
	}
}

// Metadata describes the pixel data of a decoded container.
type Metadata struct {
	Width    int32
	Height   int32
	Channels int32
	MaxValue int32

	// PixelOffset is the declared start of the pixel data, bitmap only
	PixelOffset int32
}

// DefaultMetadata returns the metadata used when a header has to be
// synthesized without knowing anything about the image.
func DefaultMetadata() Metadata {
	return Metadata{
		MaxValue: defaultMaxValue,
	}
}

// BitsPerPixel returns the number of bits used by each pixel.
func (m Metadata) BitsPerPixel() int {
	return int(m.Channels) * 8
}

// PixelBytes returns the number of pixel data bytes described by m. A
// negative height marks a top-down bitmap and is counted by magnitude.
func (m Metadata) PixelBytes() int64 {
	h := int64(m.Height)
	if h < 0 {
		h = -h
	}
	n := int64(m.Width) * h * int64(m.Channels)
	if n < 0 {
		return 0
	}
	return n
}
