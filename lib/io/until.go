package iolib

import (
	"bytes"
	"io"

	"github.com/pkg/errors"
)

// readChunkSize is how much is requested from the underlying reader per
// read. The internal buffer itself grows geometrically via append.
const readChunkSize = 8192

var ErrZeroLenDelim = errors.New("delim has zero length")

// UntilReader reads from an underlying stream while keeping every byte it
// has pulled in but not handed out. ReadUntil consumes through a delimiter
// and leaves trailing bytes buffered, so a following message on the same
// connection is never lost.
type UntilReader struct {
	r io.Reader

	buf []byte // received but unconsumed bytes.
	tmp []byte
}

func NewUntilReader(r io.Reader) *UntilReader {
	return &UntilReader{r: r, tmp: make([]byte, readChunkSize)}
}

// Buffered reports how many unconsumed bytes are held.
func (ur *UntilReader) Buffered() int { return len(ur.buf) }

func (ur *UntilReader) Read(p []byte) (n int, err error) {
	if len(ur.buf) > 0 {
		n = copy(p, ur.buf)
		ur.buf = ur.buf[n:]
		return n, nil
	}

	return ur.r.Read(p)
}

// ReadUntil reads until delim and returns everything up to and including
// it. Bytes received after the delimiter stay buffered. If the underlying
// reader fails before the delimiter is seen, all bytes received so far are
// returned alongside the error.
func (ur *UntilReader) ReadUntil(delim []byte) ([]byte, error) {
	if len(delim) == 0 {
		return nil, ErrZeroLenDelim
	}

	from := 0
	for {
		if idx := bytes.Index(ur.buf[from:], delim); idx >= 0 {
			end := from + idx + len(delim)
			out := bytes.Clone(ur.buf[:end])
			ur.buf = ur.buf[end:]
			return out, nil
		}

		// Scanned bytes need not be revisited, except for a partial
		// delimiter possibly sitting at the tail.
		from = len(ur.buf) - len(delim) + 1
		if from < 0 {
			from = 0
		}

		n, err := ur.r.Read(ur.tmp)
		ur.buf = append(ur.buf, ur.tmp[:n]...)
		if err != nil {
			out := ur.buf
			ur.buf = nil
			return out, err
		}
	}
}
