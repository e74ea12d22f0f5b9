package http

import (
	"io"
	"strconv"
	"time"

	iolib "httpstack/lib/io"
	"httpstack/transport"

	"github.com/benbjohnson/clock"
	"github.com/pkg/errors"
)

// HeadTerminator separates the header block from the body.
var HeadTerminator = []byte("\r\n\r\n")

type DecodeOptions struct {
	// BodyReadTimeout bounds how long a POST/PUT body read may take.
	// On expiry the partial body is used; the request is not failed.
	BodyReadTimeout time.Duration
}

var DefaultDecodeOptions = DecodeOptions{
	BodyReadTimeout: 5 * time.Second,
}

var ErrMalformedContentLength = errors.New("content length is malformed")

// RequestDecoder reads raw requests off a connection. The underlying
// [iolib.UntilReader] keeps any bytes past the current message buffered,
// so pipelined or keep-alive traffic is never lost between requests.
type RequestDecoder struct {
	r   *iolib.UntilReader
	con transport.Conn
	clk clock.Clock

	opts DecodeOptions
}

func NewRequestDecoder(
	r *iolib.UntilReader, con transport.Conn, clk clock.Clock, opts DecodeOptions,
) *RequestDecoder {
	return &RequestDecoder{r: r, con: con, clk: clk, opts: opts}
}

// Decode reads one full request. If the peer closed the connection before
// sending anything, the underlying error is returned with no bytes
// consumed elsewhere.
func (d *RequestDecoder) Decode(req *Request) error {
	head, err := d.r.ReadUntil(HeadTerminator)
	if err != nil {
		if len(head) == 0 {
			return err
		}
		return errors.Wrap(err, "reading header block")
	}

	return d.DecodeHead(head, req)
}

// DecodeHead parses an already-read header block and then reads the body
// from the stream. It exists so the connection dispatcher can sniff the
// first header block before committing to a protocol.
func (d *RequestDecoder) DecodeHead(head []byte, req *Request) error {
	reqLine, fields, err := ParseRequestHead(head)
	if err != nil {
		return err
	}

	contentLength, err := extractContentLength(fields)
	if err != nil {
		return err
	}

	body, err := d.readBody(reqLine.Method, contentLength)
	if err != nil {
		return errors.Wrap(err, "reading body")
	}

	req.RequestLine = reqLine
	req.Headers = fields
	req.Body = body

	return nil
}

// extractContentLength returns the declared body length, defaulting to 0.
// A non-numeric value is a fatal parse error rather than a silent 0.
func extractContentLength(fields []Field) (uint, error) {
	v := LastFieldValue(fields, "Content-Length")
	if v == "" {
		return 0, nil
	}

	n, err := strconv.ParseUint(v, 10, 64)
	if err != nil {
		return 0, errors.Wrapf(ErrMalformedContentLength, "%q", v)
	}

	return uint(n), nil
}

func (d *RequestDecoder) readBody(method string, contentLength uint) ([]byte, error) {
	if contentLength == 0 {
		return nil, nil
	}

	buf := make([]byte, contentLength)

	if method == "POST" || method == "PUT" {
		// The full declared body is awaited, bounded by the timeout.
		if d.opts.BodyReadTimeout > 0 && d.con != nil {
			d.con.SetReadDeadLine(d.clk.Now().Add(d.opts.BodyReadTimeout))
			defer d.con.SetReadDeadLine(time.Time{})
		}

		n, err := io.ReadFull(d.r, buf)
		if err != nil {
			switch {
			case errors.Is(err, transport.ErrDeadLineExceeded),
				errors.Is(err, transport.ErrConnClosed),
				errors.Is(err, io.EOF),
				errors.Is(err, io.ErrUnexpectedEOF):
				// Proceed with whatever arrived.
				return buf[:n], nil
			}
			return nil, err
		}
		return buf, nil
	}

	// Other methods read best-effort until the declared end or EOF.
	n, _ := io.ReadFull(d.r, buf)
	return buf[:n], nil
}
