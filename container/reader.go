package container

import (
	"bufio"
	"bytes"
	"encoding/binary"
	"io"
	"math"
	"strconv"
	"strings"
)

// Longest decimal token accepted in a pixmap header
const maxTokenLen = 32

func readFull(r io.Reader, b []byte) error {
	_, err := io.ReadFull(r, b)
	if err == io.EOF {
		err = io.ErrUnexpectedEOF
	}
	return err
}

func isSpace(c byte) bool {
	switch c {
	case ' ', '\t', '\n', '\v', '\f', '\r':
		return true
	}
	return false
}

type decoder struct {
	r io.Reader

	m   Metadata
	pix []byte

	// Enough to hold the bitmap file and DIB headers
	tmp [headerLen]byte
}

func (d *decoder) readBitmapHeader() error {
	if err := readFull(d.r, d.tmp[:]); err != nil {
		if err != io.ErrUnexpectedEOF {
			return err
		}
		return ErrTruncatedHeader
	}

	offset := binary.LittleEndian.Uint32(d.tmp[offsetPixelData:])
	if offset < fileHeaderLen || offset > math.MaxInt32 {
		return ErrInvalidPixelOffset
	}

	d.m = Metadata{
		Width:       int32(binary.LittleEndian.Uint32(d.tmp[offsetWidth:])),
		Height:      int32(binary.LittleEndian.Uint32(d.tmp[offsetHeight:])),
		Channels:    int32(binary.LittleEndian.Uint16(d.tmp[offsetBitsPerPixel:]) / 8),
		MaxValue:    defaultMaxValue,
		PixelOffset: int32(offset),
	}

	return nil
}

func (d *decoder) readBitmapPixels() error {
	offset := int64(d.m.PixelOffset)
	if offset < headerLen {
		// Pixel data starts inside what was read as the DIB header
		return d.readPixels(io.MultiReader(bytes.NewReader(d.tmp[offset:]), d.r))
	}

	if _, err := io.CopyN(io.Discard, d.r, offset-headerLen); err != nil {
		if err != io.EOF {
			return err
		}
		return ErrTruncatedPixelData
	}

	return d.readPixels(d.r)
}

// Grow the buffer as the data arrives rather than trusting the dimensions
// for a single allocation
func (d *decoder) readPixels(r io.Reader) error {
	var b bytes.Buffer
	if _, err := io.CopyN(&b, r, d.m.PixelBytes()); err != nil {
		if err != io.EOF {
			return err
		}
		return ErrTruncatedPixelData
	}
	d.pix = b.Bytes()
	return nil
}

func readToken(br *bufio.Reader) (string, error) {
	var tok []byte
	for {
		c, err := br.ReadByte()
		if err != nil {
			if err != io.EOF {
				return "", err
			}
			break
		}
		if isSpace(c) {
			if len(tok) == 0 {
				continue
			}
			return string(tok), br.UnreadByte()
		}
		if tok = append(tok, c); len(tok) > maxTokenLen {
			return "", ErrMalformedHeader
		}
	}
	if len(tok) == 0 {
		return "", ErrMalformedHeader
	}
	return string(tok), nil
}

func (d *decoder) readPixmapHeader() error {
	br := bufio.NewReader(d.r)
	d.r = br

	line, err := br.ReadString('\n')
	if err != nil && err != io.EOF {
		return err
	}
	if strings.TrimSuffix(line, "\n") != pixmapMagic {
		return ErrInvalidMagic
	}

	for {
		if b, err := br.Peek(1); err != nil || b[0] != '#' {
			break
		}
		if _, err := br.ReadString('\n'); err != nil && err != io.EOF {
			return err
		}
	}

	// Width, height and maximum color value in that order
	var v [3]int32
	for i := range v {
		tok, err := readToken(br)
		if err != nil {
			return err
		}
		n, err := strconv.ParseInt(tok, 10, 32)
		if err != nil {
			return ErrMalformedHeader
		}
		v[i] = int32(n)
	}

	// Exactly one whitespace byte separates the header from the pixels,
	// anything after it is pixel data even if it looks like whitespace
	if _, err := br.ReadByte(); err != nil && err != io.EOF {
		return err
	}

	d.m = Metadata{
		Width:    v[0],
		Height:   v[1],
		Channels: pixmapChannels,
		MaxValue: v[2],
	}

	return nil
}

func (d *decoder) decode(r io.Reader, f Format, configOnly bool) error {
	d.r = r

	switch f {
	case Bitmap:
		if err := d.readBitmapHeader(); err != nil {
			return err
		}
		if configOnly {
			return nil
		}
		return d.readBitmapPixels()
	case Pixmap:
		if err := d.readPixmapHeader(); err != nil {
			return err
		}
		if configOnly {
			return nil
		}
		return d.readPixels(d.r)
	default:
		return ErrUnsupportedFormat
	}
}

// Decode reads a container of format f from r and returns the raw pixel
// data along with its metadata. The returned slice is owned by the caller.
func Decode(r io.Reader, f Format) ([]byte, Metadata, error) {
	var d decoder
	if err := d.decode(r, f, false); err != nil {
		return nil, Metadata{}, err
	}
	return d.pix, d.m, nil
}

// DecodeConfig returns the metadata of a container without reading the
// pixel data.
func DecodeConfig(r io.Reader, f Format) (Metadata, error) {
	var d decoder
	if err := d.decode(r, f, true); err != nil {
		return Metadata{}, err
	}
	return d.m, nil
}
