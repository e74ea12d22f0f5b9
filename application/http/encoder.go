package http

import (
	"bytes"
	"io"
	"strconv"
	"strings"

	"httpstack/application/http/semantic/status"
	iolib "httpstack/lib/io"

	"github.com/pkg/errors"
)

// Precomputed wire bytes for the hot paths of response serialization.
var (
	statusLineCache = buildStatusLineCache()

	contentTypeJSON     = []byte("Content-Type: application/json\r\n")
	contentTypeText     = []byte("Content-Type: text/plain\r\n")
	connectionKeepAlive = []byte("Connection: keep-alive\r\n")
	connectionClose     = []byte("Connection: close\r\n")
	contentLengthPrefix = []byte("Content-Length: ")
	crlf                = []byte("\r\n")
)

func buildStatusLineCache() map[uint][]byte {
	cache := make(map[uint][]byte)
	for _, s := range status.Known() {
		cache[s.Code] = []byte("HTTP/1.1 " + strconv.FormatUint(uint64(s.Code), 10) + " " + s.Reason + "\r\n")
	}
	return cache
}

// ResponseEncoder serializes responses into HTTP/1.1 wire bytes.
type ResponseEncoder struct {
	w io.Writer
}

func NewResponseEncoder(w io.Writer) *ResponseEncoder {
	return &ResponseEncoder{w: w}
}

// Encode writes the whole response: status line, recomputed
// Content-Length, remaining headers verbatim (common Content-Type and
// Connection values fast-pathed), blank line, body.
func (e *ResponseEncoder) Encode(res Response) error {
	buf := bytes.NewBuffer(nil)

	if line, ok := statusLineCache[res.StatusCode]; ok {
		buf.Write(line)
	} else {
		s := status.FromCode(res.StatusCode)
		buf.WriteString("HTTP/1.1 ")
		buf.WriteString(strconv.FormatUint(uint64(s.Code), 10))
		buf.WriteByte(' ')
		buf.WriteString(s.Reason)
		buf.Write(crlf)
	}

	// Content-Length is always recomputed from the body on hand.
	buf.Write(contentLengthPrefix)
	buf.WriteString(strconv.Itoa(len(res.Body)))
	buf.Write(crlf)

	for _, f := range res.Headers {
		if e.writeField(buf, f) {
			continue
		}
		buf.WriteString(f.Name)
		buf.WriteString(": ")
		buf.WriteString(f.Value)
		buf.Write(crlf)
	}

	buf.Write(crlf)
	buf.Write(res.Body)

	if _, err := iolib.WriteFull(e.w, buf.Bytes()); err != nil {
		return errors.Wrap(err, "writing response")
	}

	return nil
}

// writeField handles the skipped and fast-pathed headers, reporting
// whether it consumed the field.
func (e *ResponseEncoder) writeField(buf *bytes.Buffer, f Field) bool {
	switch {
	case strings.EqualFold(f.Name, "Content-Length"):
		// Already written.
		return true
	case strings.EqualFold(f.Name, "Content-Type"):
		switch strings.ToLower(f.Value) {
		case "application/json":
			buf.Write(contentTypeJSON)
			return true
		case "text/plain":
			buf.Write(contentTypeText)
			return true
		}
	case strings.EqualFold(f.Name, "Connection"):
		switch strings.ToLower(f.Value) {
		case "keep-alive":
			buf.Write(connectionKeepAlive)
			return true
		case "close":
			buf.Write(connectionClose)
			return true
		}
	}
	return false
}
