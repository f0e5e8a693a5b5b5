package container

import (
	"bytes"
	"encoding/binary"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testPixels(n int) []byte {
	b := make([]byte, n)
	for i := range b {
		b[i] = byte(i*37 + 11)
	}
	return b
}

// Builds a bitmap by hand with an optional gap between the 54 byte header
// and the pixel data
func testBitmap(width, height int32, bpp uint16, offset uint32, gap, pix []byte) []byte {
	h := make([]byte, headerLen)
	h[0], h[1] = 'B', 'M'
	binary.LittleEndian.PutUint32(h[2:], uint32(headerLen+len(gap)+len(pix)))
	binary.LittleEndian.PutUint32(h[10:], offset)
	binary.LittleEndian.PutUint32(h[14:], 40)
	binary.LittleEndian.PutUint32(h[18:], uint32(width))
	binary.LittleEndian.PutUint32(h[22:], uint32(height))
	binary.LittleEndian.PutUint16(h[26:], 1)
	binary.LittleEndian.PutUint16(h[28:], bpp)
	return append(append(h, gap...), pix...)
}

func TestFormatFromPath(t *testing.T) {
	tables := []struct {
		path   string
		format Format
		err    error
	}{
		{"image.bmp", Bitmap, nil},
		{"dir/image.ppm", Pixmap, nil},
		{"image.png", 0, ErrUnsupportedFormat},
		{"image.BMP", 0, ErrUnsupportedFormat},
		{"bmp", 0, ErrUnsupportedFormat},
	}

	for _, table := range tables {
		t.Run(table.path, func(t *testing.T) {
			f, err := FormatFromPath(table.path)
			assert.Equal(t, table.err, err)
			assert.Equal(t, table.format, f)
		})
	}
}

func TestDecodeBitmap(t *testing.T) {
	pix := testPixels(2 * 2 * 3)

	b, m, err := Decode(bytes.NewReader(testBitmap(2, 2, 24, headerLen, nil, pix)), Bitmap)
	require.NoError(t, err)
	assert.Equal(t, pix, b)
	assert.Equal(t, Metadata{Width: 2, Height: 2, Channels: 3, MaxValue: 255, PixelOffset: headerLen}, m)
}

func TestDecodeBitmapOffset(t *testing.T) {
	pix := testPixels(3 * 1 * 4)
	gap := []byte("extra header bytes")

	b, m, err := Decode(bytes.NewReader(testBitmap(3, 1, 32, uint32(headerLen+len(gap)), gap, pix)), Bitmap)
	require.NoError(t, err)
	assert.Equal(t, pix, b)
	assert.Equal(t, int32(4), m.Channels)
	assert.Equal(t, int32(headerLen+len(gap)), m.PixelOffset)
}

func TestDecodeBitmapOffsetInsideHeader(t *testing.T) {
	file := testBitmap(2, 1, 24, 50, nil, testPixels(2))

	b, _, err := Decode(bytes.NewReader(file), Bitmap)
	require.NoError(t, err)
	assert.Equal(t, file[50:56], b)
}

func TestDecodeBitmapTopDown(t *testing.T) {
	pix := testPixels(2 * 3 * 3)

	b, m, err := Decode(bytes.NewReader(testBitmap(2, -3, 24, headerLen, nil, pix)), Bitmap)
	require.NoError(t, err)
	assert.Equal(t, pix, b)
	assert.Equal(t, int32(-3), m.Height)
}

func TestDecodeBitmapErrors(t *testing.T) {
	valid := testBitmap(2, 2, 24, headerLen, nil, testPixels(12))

	tables := []struct {
		name string
		file []byte
		err  error
	}{
		{"empty", nil, ErrTruncatedHeader},
		{"short header", valid[:headerLen-1], ErrTruncatedHeader},
		{"offset 10", testBitmap(2, 2, 24, 10, nil, testPixels(12)), ErrInvalidPixelOffset},
		{"negative offset", testBitmap(2, 2, 24, 0xffffffff, nil, testPixels(12)), ErrInvalidPixelOffset},
		{"short pixels", valid[:len(valid)-1], ErrTruncatedPixelData},
		{"offset past end", testBitmap(2, 2, 24, 1000, nil, testPixels(12)), ErrTruncatedPixelData},
	}

	for _, table := range tables {
		t.Run(table.name, func(t *testing.T) {
			_, _, err := Decode(bytes.NewReader(table.file), Bitmap)
			assert.Equal(t, table.err, err)
		})
	}
}

func TestDecodePixmap(t *testing.T) {
	pix := testPixels(2 * 1 * 3)

	tables := []struct {
		name   string
		header string
	}{
		{"plain", "P6\n2 1\n255\n"},
		{"comments", "P6\n# one\n# two\n2 1\n255\n"},
		{"single line", "P6\n2 1 255 "},
		{"mixed whitespace", "P6\n2\t\n1\r\n255\t"},
		{"leading zeros", "P6\n00000000000000002 0000000000000000001\n00000000000000000000255\n"},
	}

	for _, table := range tables {
		t.Run(table.name, func(t *testing.T) {
			b, m, err := Decode(bytes.NewReader(append([]byte(table.header), pix...)), Pixmap)
			require.NoError(t, err)
			assert.Equal(t, pix, b)
			assert.Equal(t, Metadata{Width: 2, Height: 1, Channels: 3, MaxValue: 255}, m)
		})
	}
}

func TestDecodePixmapWhitespacePixels(t *testing.T) {
	// Only one byte after the maximum value belongs to the header
	pix := []byte{'\n', ' ', '\t'}

	b, _, err := Decode(bytes.NewReader(append([]byte("P6\n1 1\n255\n"), pix...)), Pixmap)
	require.NoError(t, err)
	assert.Equal(t, pix, b)
}

func TestDecodePixmapErrors(t *testing.T) {
	tables := []struct {
		name string
		file string
		err  error
	}{
		{"empty", "", ErrInvalidMagic},
		{"P5", "P5\n1 1\n255\n\x00", ErrInvalidMagic},
		{"magic on header line", "P6 1 1 255\n\x00\x00\x00", ErrInvalidMagic},
		{"not a number", "P6\n1 x\n255\n\x00\x00\x00", ErrMalformedHeader},
		{"missing max", "P6\n1 1\n", ErrMalformedHeader},
		{"overflow", "P6\n99999999999 1\n255\n", ErrMalformedHeader},
		{"short pixels", "P6\n2 1\n255\n\x00\x00\x00", ErrTruncatedPixelData},
	}

	for _, table := range tables {
		t.Run(table.name, func(t *testing.T) {
			_, _, err := Decode(bytes.NewReader([]byte(table.file)), Pixmap)
			assert.Equal(t, table.err, err)
		})
	}
}

func TestDecodeConfig(t *testing.T) {
	tables := []struct {
		name   string
		format Format
		file   []byte
	}{
		{"bitmap", Bitmap, testBitmap(4, 2, 24, headerLen, nil, testPixels(24))},
		{"pixmap", Pixmap, append([]byte("P6\n# c\n4 2\n255\n"), testPixels(24)...)},
	}

	for _, table := range tables {
		t.Run(table.name, func(t *testing.T) {
			_, want, err := Decode(bytes.NewReader(table.file), table.format)
			require.NoError(t, err)

			// Header alone is enough
			got, err := DecodeConfig(bytes.NewReader(table.file[:len(table.file)-24]), table.format)
			require.NoError(t, err)
			assert.Equal(t, want, got)
		})
	}
}

func TestDecodeUnsupported(t *testing.T) {
	_, _, err := Decode(bytes.NewReader(nil), Format(0))
	assert.Equal(t, ErrUnsupportedFormat, err)
}
