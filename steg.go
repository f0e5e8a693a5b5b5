package lsbsteg

import (
	"bufio"
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"text/tabwriter"

	"github.com/bodgit/lsbsteg/container"
)

// ErrHeaderFallback is matched by any FallbackError.
var ErrHeaderFallback = errors.New("lsbsteg: falling back to default header")

// FallbackError is returned as a warning when the header of a source bitmap
// could not be copied and a default header was written instead. The pixel
// data was still written in full.
type FallbackError struct {
	Path string
	Err  error
}

func (e *FallbackError) Error() string {
	return fmt.Sprintf("%s: %v: %v", e.Path, e.Err, ErrHeaderFallback)
}

// Unwrap allows errors.Is to match both ErrHeaderFallback and the cause.
func (e *FallbackError) Unwrap() []error {
	return []error{ErrHeaderFallback, e.Err}
}

func (s *Steg) decodeFile(path string) ([]byte, container.Metadata, container.Format, error) {
	f, err := container.FormatFromPath(path)
	if err != nil {
		return nil, container.Metadata{}, 0, err
	}

	file, err := os.Open(path)
	if err != nil {
		return nil, container.Metadata{}, 0, err
	}
	defer file.Close()

	pix, m, err := container.Decode(bufio.NewReader(file), f)
	if err != nil {
		return nil, container.Metadata{}, 0, fmt.Errorf("%s: %w", path, err)
	}

	s.logger.Printf("Decoded %s \"%s\": %dx%d, %d channels, %d pixel bytes\n", f, path, m.Width, m.Height, m.Channels, len(pix))

	return pix, m, f, nil
}

func readHeader(path string) ([]byte, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	return container.ReadHeader(f)
}

func writeFile(path string, fn func(io.Writer) error) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("%w: %w", container.ErrWrite, err)
	}
	defer f.Close()

	w := bufio.NewWriter(f)
	if err := fn(w); err != nil {
		return err
	}
	if err := w.Flush(); err != nil {
		return fmt.Errorf("%w: %w", container.ErrWrite, err)
	}

	if err := f.Close(); err != nil {
		return fmt.Errorf("%w: %w", container.ErrWrite, err)
	}

	return nil
}

// Info returns a human readable summary of the image at path.
func (s *Steg) Info(path string) (string, error) {
	f, err := container.FormatFromPath(path)
	if err != nil {
		return "", err
	}

	file, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer file.Close()

	info, err := file.Stat()
	if err != nil {
		return "", err
	}

	m, err := container.DecodeConfig(bufio.NewReader(file), f)
	if err != nil {
		return "", fmt.Errorf("%s: %w", path, err)
	}

	b := new(bytes.Buffer)
	tw := tabwriter.NewWriter(b, 0, 0, 1, ' ', 0)
	fmt.Fprintf(tw, "File:\t%s\n", path)
	fmt.Fprintf(tw, "Size:\t%d bytes\n", info.Size())
	fmt.Fprintf(tw, "Dimensions:\t%dx%d\n", m.Width, m.Height)
	switch f {
	case container.Bitmap:
		fmt.Fprintf(tw, "Bits per pixel:\t%d\n", m.BitsPerPixel())
	case container.Pixmap:
		fmt.Fprintf(tw, "Max color value:\t%d\n", m.MaxValue)
	}
	if err := tw.Flush(); err != nil {
		return "", err
	}

	return b.String(), nil
}

// WriteWithHeader writes pix to outPath copying the bitmap header from
// headerPath. If that header cannot be read a default header is written
// and the reason is returned as a *FallbackError warning; err is only
// non-nil if outPath could not be written.
func (s *Steg) WriteWithHeader(outPath, headerPath string, pix []byte, m container.Metadata) (warning, err error) {
	f, err := container.FormatFromPath(outPath)
	if err != nil {
		return nil, err
	}

	var header []byte
	if f == container.Bitmap {
		if header, err = readHeader(headerPath); err != nil {
			warning = &FallbackError{Path: headerPath, Err: err}
			s.logger.Printf("warning: %v\n", warning)
			header = nil
		}
	}

	if err := writeFile(outPath, func(w io.Writer) error {
		return container.EncodeWithHeader(w, f, header, pix, m)
	}); err != nil {
		return warning, fmt.Errorf("%s: %w", outPath, err)
	}

	return warning, nil
}

// Encrypt hides message in the image at path, rewriting it in place. A
// non-nil warning reports a degraded but complete write, see
// WriteWithHeader.
func (s *Steg) Encrypt(path, message string) (warning, err error) {
	pix, m, _, err := s.decodeFile(path)
	if err != nil {
		return nil, err
	}

	if err := s.engine.Embed(pix, message); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}

	s.logger.Printf("Embedded %d bits into \"%s\"\n", s.engine.Bits(message), path)

	return s.WriteWithHeader(path, path, pix, m)
}

// Decrypt returns the message hidden in the image at path. An empty string
// with a nil error means the image holds no message.
func (s *Steg) Decrypt(path string) (string, error) {
	pix, _, _, err := s.decodeFile(path)
	if err != nil {
		return "", err
	}

	message := s.engine.Extract(pix)
	if message == "" {
		s.logger.Printf("No \"%s\" marker found in \"%s\"\n", s.engine.Marker(), path)
	}

	return message, nil
}

// Check reports whether message would fit in the image at path. The image
// is not modified.
func (s *Steg) Check(path, message string) (bool, error) {
	pix, _, _, err := s.decodeFile(path)
	if err != nil {
		return false, err
	}

	s.logger.Printf("Message needs %d bits, \"%s\" has %d\n", s.engine.Bits(message), path, len(pix))

	return s.engine.Capacity(pix, message), nil
}
