package websocket

import (
	"encoding/binary"

	"httpstack/application/http/semantic"
	iolib "httpstack/lib/io"
	"httpstack/transport"

	"github.com/pkg/errors"
)

var ErrClosed = errors.New("websocket connection closed")

// CloseCodeNormal is sent when the peer's close frame carries no code.
const CloseCodeNormal uint16 = 1000

// Conn is an established websocket connection. It is not safe for
// concurrent use.
type Conn struct {
	con transport.Conn
	r   *iolib.UntilReader

	Path       string
	Headers    *semantic.Headers
	PathParams map[string]string

	closed bool
}

// Send writes a single frame with the given opcode.
func (c *Conn) Send(opcode Opcode, payload []byte) error {
	if c.closed {
		return ErrClosed
	}
	_, err := iolib.WriteFull(c.con, EncodeFrame(opcode, payload))
	return errors.Wrap(err, "writing frame")
}

func (c *Conn) SendText(s string) error    { return c.Send(OpcodeText, []byte(s)) }
func (c *Conn) SendBinary(b []byte) error  { return c.Send(OpcodeBinary, b) }
func (c *Conn) Ping(payload []byte) error  { return c.Send(OpcodePing, payload) }
func (c *Conn) Pong(payload []byte) error  { return c.Send(OpcodePong, payload) }

// Close sends a close frame and closes the socket. Subsequent calls
// are no-ops.
func (c *Conn) Close(code uint16, reason string) error {
	if c.closed {
		return nil
	}
	c.closed = true

	payload := binary.BigEndian.AppendUint16(nil, code)
	payload = append(payload, reason...)

	_, err := iolib.WriteFull(c.con, EncodeFrame(OpcodeClose, payload))
	if cerr := c.con.Close(); err == nil {
		err = cerr
	}
	return errors.Wrap(err, "closing connection")
}

// Receive reads the next frame. Pings are answered with a pong before
// being returned. A close frame is echoed back, the connection marked
// closed, and the frame returned so the caller can inspect it.
func (c *Conn) Receive() (Message, error) {
	if c.closed {
		return Message{}, ErrClosed
	}

	msg, err := ReadFrame(c.r)
	if err != nil {
		return Message{}, err
	}

	switch msg.Opcode {
	case OpcodePing:
		if err := c.Pong(msg.Payload); err != nil {
			return Message{}, err
		}
	case OpcodeClose:
		code := CloseCodeNormal
		var reason string
		if len(msg.Payload) >= 2 {
			code = binary.BigEndian.Uint16(msg.Payload[:2])
			reason = string(msg.Payload[2:])
		}
		if err := c.Close(code, reason); err != nil {
			return Message{}, err
		}
	}

	return msg, nil
}
