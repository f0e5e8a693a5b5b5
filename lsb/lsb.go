/*
Package lsb hides a text message in a byte buffer by overwriting the least
significant bit of each byte, one payload bit per byte.

The payload is a marker, the message and a terminating zero byte. Each payload
byte is spread over eight buffer bytes, most significant bit first. The marker
lets Extract tell a hidden message apart from whatever the low bits of an
untouched image happen to contain.
*/
package lsb

import "errors"

// DefaultMarker is prefixed to every message unless another is chosen.
const DefaultMarker = "MSG:"

// ErrInsufficientCapacity is returned when the payload has more bits than
// the buffer has bytes.
var ErrInsufficientCapacity = errors.New("lsb: insufficient capacity")

func lowBit(b byte) byte {
	return b & 0x01
}

func setLowBit(b, bit byte) byte {
	return b&0xfe | bit
}

// An Engine embeds and extracts messages using a fixed marker.
type Engine struct {
	marker string
}

// New returns an Engine using marker, an empty marker selects
// DefaultMarker.
func New(marker string) *Engine {
	if marker == "" {
		marker = DefaultMarker
	}
	return &Engine{
		marker: marker,
	}
}

// Marker returns the marker used by e.
func (e *Engine) Marker() string {
	return e.marker
}

// Bits returns the number of buffer bytes needed to embed message,
// including the marker and terminator.
func (e *Engine) Bits(message string) int {
	return (len(e.marker) + len(message) + 1) * 8
}

// Capacity reports whether message can be embedded in b.
func (e *Engine) Capacity(b []byte, message string) bool {
	return e.Bits(message) <= len(b)
}

// Embed hides message in the low bits of b. Only the least significant bit
// of the first Bits(message) bytes is changed; b is left untouched if the
// message does not fit.
func (e *Engine) Embed(b []byte, message string) error {
	if !e.Capacity(b, message) {
		return ErrInsufficientCapacity
	}

	payload := make([]byte, 0, len(e.marker)+len(message)+1)
	payload = append(payload, e.marker...)
	payload = append(payload, message...)
	payload = append(payload, 0)

	i := 0
	for _, c := range payload {
		for j := 7; j >= 0; j-- {
			b[i] = setLowBit(b[i], c>>uint(j)&0x01)
			i++
		}
	}

	return nil
}

// Extract returns the message hidden in b, or an empty string if b does not
// start with the marker.
func (e *Engine) Extract(b []byte) string {
	var text []byte
	for i := 0; i+8 <= len(b); i += 8 {
		var c byte
		for _, x := range b[i : i+8] {
			c = c<<1 | lowBit(x)
		}
		if c == 0 {
			break
		}
		// Give up as soon as the marker can no longer match
		if n := len(text); n < len(e.marker) && c != e.marker[n] {
			return ""
		}
		text = append(text, c)
	}

	if len(text) < len(e.marker) {
		return ""
	}

	return string(text[len(e.marker):])
}
