/*
Package lsbsteg hides text messages in the least significant bits of
uncompressed bitmap and pixmap images.
*/
package lsbsteg

import (
	"io"
	"log"

	"github.com/bodgit/lsbsteg/lsb"
)

// Steg hides and recovers messages in image files.
type Steg struct {
	engine *lsb.Engine
	logger *log.Logger
}

// New returns a Steg using marker to tag hidden messages, an empty marker
// selects lsb.DefaultMarker. A nil logger discards all output.
func New(marker string, logger *log.Logger) *Steg {
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}
	return &Steg{
		engine: lsb.New(marker),
		logger: logger,
	}
}
