package container

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"io"
	"math"
)

type encoder struct {
	w io.Writer
}

func (e *encoder) encode(header, pix []byte) error {
	for _, b := range [][]byte{header, pix} {
		if _, err := e.w.Write(b); err != nil {
			return fmt.Errorf("%w: %w", ErrWrite, err)
		}
	}
	return nil
}

func bitmapHeader(m Metadata, size int) []byte {
	h := make([]byte, headerLen)
	copy(h[offsetSignature:], "BM")
	binary.LittleEndian.PutUint32(h[offsetFileSize:], uint32(headerLen+size))
	binary.LittleEndian.PutUint32(h[offsetPixelData:], headerLen)
	binary.LittleEndian.PutUint32(h[offsetInfoSize:], infoHeaderLen)
	binary.LittleEndian.PutUint32(h[offsetWidth:], uint32(m.Width))
	binary.LittleEndian.PutUint32(h[offsetHeight:], uint32(m.Height))
	binary.LittleEndian.PutUint16(h[offsetPlanes:], 1)
	binary.LittleEndian.PutUint16(h[offsetBitsPerPixel:], uint16(m.BitsPerPixel()))
	return h
}

func pixmapHeader(m Metadata) []byte {
	return []byte(fmt.Sprintf("%s\n%d %d\n%d\n", pixmapMagic, m.Width, m.Height, m.MaxValue))
}

// Encode writes pix to w as a container of format f with a freshly
// synthesized header. A bitmap header is always 54 bytes long.
func Encode(w io.Writer, f Format, pix []byte, m Metadata) error {
	var header []byte
	switch f {
	case Bitmap:
		header = bitmapHeader(m, len(pix))
	case Pixmap:
		header = pixmapHeader(m)
	default:
		return ErrUnsupportedFormat
	}

	e := encoder{w: w}

	return e.encode(header, pix)
}

// ReadHeader reads everything up to the pixel data offset of a bitmap from
// r, ready to be passed to EncodeWithHeader.
func ReadHeader(r io.Reader) ([]byte, error) {
	header := make([]byte, fileHeaderLen)
	if err := readFull(r, header); err != nil {
		if err != io.ErrUnexpectedEOF {
			return nil, err
		}
		return nil, ErrTruncatedHeader
	}

	offset := binary.LittleEndian.Uint32(header[offsetPixelData:])
	if offset == 0 || offset > math.MaxInt32 {
		return nil, ErrInvalidPixelOffset
	}
	if offset <= fileHeaderLen {
		return header[:offset], nil
	}

	b := bytes.NewBuffer(header)
	if _, err := io.CopyN(b, r, int64(offset)-fileHeaderLen); err != nil {
		if err != io.EOF {
			return nil, err
		}
		return nil, ErrTruncatedHeader
	}

	return b.Bytes(), nil
}

// EncodeWithHeader writes pix to w as a container of format f reusing a
// bitmap header previously returned by ReadHeader. Only the file size field
// of the header is changed.
//
// A nil header means the source header could not be read, a default header
// describing an empty image is synthesized instead. Pixmap headers are never
// copied, they are synthesized from m.
func EncodeWithHeader(w io.Writer, f Format, header, pix []byte, m Metadata) error {
	switch f {
	case Bitmap:
		if header == nil {
			return Encode(w, f, pix, DefaultMetadata())
		}
	case Pixmap:
		return Encode(w, f, pix, m)
	default:
		return ErrUnsupportedFormat
	}

	h := append([]byte(nil), header...)
	if len(h) >= offsetFileSize+4 {
		binary.LittleEndian.PutUint32(h[offsetFileSize:], uint32(len(h)+len(pix)))
	}

	e := encoder{w: w}

	return e.encode(h, pix)
}
