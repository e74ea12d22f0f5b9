package http2

import (
	"context"
	"encoding/binary"
	"io"
	"log/slog"

	iolib "httpstack/lib/io"
	"httpstack/transport"

	"github.com/pkg/errors"
)

// Preface is the fixed client connection preface.
var Preface = []byte("PRI * HTTP/2.0\r\n\r\nSM\r\n\r\n")

var ErrBadPreface = errors.New("bad connection preface")

const readChunkSize = 8192

// Conn drives the connection-level protocol on an accepted socket.
// It absorbs SETTINGS, answers PING and shuts down on GOAWAY.
type Conn struct {
	con transport.Conn
	r   io.Reader

	local  Settings
	remote Settings

	lastStreamID uint32
	closed       bool

	logger *slog.Logger
}

// NewConn wraps con. r carries the inbound byte stream, which may be
// the socket itself or a reader replaying already-buffered bytes.
func NewConn(con transport.Conn, r io.Reader, logger *slog.Logger) *Conn {
	return &Conn{
		con:    con,
		r:      r,
		local:  DefaultSettings(),
		remote: make(Settings),
		logger: logger,
	}
}

// Serve consumes the preface, advertises the server settings and runs
// the frame loop until the peer goes away or the connection drops.
func (c *Conn) Serve(ctx context.Context) error {
	preface := make([]byte, len(Preface))
	if _, err := io.ReadFull(c.r, preface); err != nil || string(preface) != string(Preface) {
		c.goAway(ErrCodeProtocol, "bad preface")
		return ErrBadPreface
	}

	if err := c.writeFrame(Frame{Type: FrameSettings, Payload: c.local.Bytes()}); err != nil {
		return errors.Wrap(err, "writing initial settings")
	}

	var buf []byte
	chunk := make([]byte, readChunkSize)

	for !c.closed {
		if err := ctx.Err(); err != nil {
			return err
		}

		n, err := c.r.Read(chunk)
		buf = append(buf, chunk[:n]...)

		for {
			frame, rest, ok := ParseFrame(buf)
			if !ok {
				break
			}
			buf = rest

			if herr := c.handleFrame(frame); herr != nil {
				c.goAway(ErrCodeInternal, herr.Error())
				return herr
			}
			if c.closed {
				return nil
			}
		}

		if err != nil {
			if errors.Is(err, io.EOF) || errors.Is(err, transport.ErrConnClosed) {
				return nil
			}
			return errors.Wrap(err, "reading frames")
		}
	}

	return nil
}

func (c *Conn) handleFrame(frame Frame) error {
	c.logger.Debug("frame received",
		slog.String("type", frame.Type.String()),
		slog.Any("stream", frame.StreamID),
	)

	if frame.StreamID > c.lastStreamID {
		c.lastStreamID = frame.StreamID
	}

	switch frame.Type {
	case FrameSettings:
		if frame.Flags.Has(FlagAck) {
			return nil
		}
		c.remote.Apply(ParseSettings(frame.Payload))
		return c.writeFrame(Frame{Type: FrameSettings, Flags: FlagAck})

	case FramePing:
		if frame.Flags.Has(FlagAck) {
			return nil
		}
		// The ack mirrors the peer's payload byte for byte.
		return c.writeFrame(Frame{Type: FramePing, Flags: FlagAck, Payload: frame.Payload})

	case FrameGoAway:
		c.closed = true
		return c.con.Close()

	default:
		// Stream-level frames are accepted and dropped.
		return nil
	}
}

// Ping sends a PING frame. The payload is padded or truncated to the
// fixed 8 bytes the frame requires.
func (c *Conn) Ping(flags Flags, payload []byte) error {
	fixed := make([]byte, 8)
	copy(fixed, payload)
	return c.writeFrame(Frame{Type: FramePing, Flags: flags, Payload: fixed})
}

func (c *Conn) goAway(code ErrCode, debug string) {
	payload := binary.BigEndian.AppendUint32(nil, c.lastStreamID)
	payload = binary.BigEndian.AppendUint32(payload, uint32(code))
	payload = append(payload, debug...)

	if err := c.writeFrame(Frame{Type: FrameGoAway, Payload: payload}); err != nil {
		c.logger.Warn("writing goaway failed", slog.Any("error", err))
	}

	c.closed = true
	if err := c.con.Close(); err != nil && !errors.Is(err, transport.ErrConnClosed) {
		c.logger.Warn("closing connection failed", slog.Any("error", err))
	}
}

func (c *Conn) writeFrame(frame Frame) error {
	_, err := iolib.WriteFull(c.con, frame.Serialize())
	return err
}
