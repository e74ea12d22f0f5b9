package websocket

import (
	"encoding/binary"
	"io"

	"github.com/pkg/errors"
)

const finBit = 0x80

// EncodeFrame serializes a single final, unmasked frame.
// Server frames are never masked.
func EncodeFrame(opcode Opcode, payload []byte) []byte {
	n := len(payload)

	var buf []byte
	switch {
	case n < 126:
		buf = make([]byte, 0, 2+n)
		buf = append(buf, finBit|uint8(opcode), uint8(n))
	case n < 1<<16:
		buf = make([]byte, 0, 4+n)
		buf = append(buf, finBit|uint8(opcode), 126)
		buf = binary.BigEndian.AppendUint16(buf, uint16(n))
	default:
		buf = make([]byte, 0, 10+n)
		buf = append(buf, finBit|uint8(opcode), 127)
		buf = binary.BigEndian.AppendUint64(buf, uint64(n))
	}

	return append(buf, payload...)
}

// ReadFrame reads one frame from r and unmasks its payload.
func ReadFrame(r io.Reader) (Message, error) {
	var head [2]byte
	if _, err := io.ReadFull(r, head[:]); err != nil {
		return Message{}, errors.Wrap(err, "reading frame header")
	}

	opcode := Opcode(head[0] & 0x0f)
	masked := head[1]&0x80 != 0
	length := uint64(head[1] & 0x7f)

	switch length {
	case 126:
		var ext [2]byte
		if _, err := io.ReadFull(r, ext[:]); err != nil {
			return Message{}, errors.Wrap(err, "reading extended length")
		}
		length = uint64(binary.BigEndian.Uint16(ext[:]))
	case 127:
		var ext [8]byte
		if _, err := io.ReadFull(r, ext[:]); err != nil {
			return Message{}, errors.Wrap(err, "reading extended length")
		}
		length = binary.BigEndian.Uint64(ext[:])
	}

	var mask [4]byte
	if masked {
		if _, err := io.ReadFull(r, mask[:]); err != nil {
			return Message{}, errors.Wrap(err, "reading mask key")
		}
	}

	payload := make([]byte, length)
	if _, err := io.ReadFull(r, payload); err != nil {
		return Message{}, errors.Wrap(err, "reading payload")
	}

	if masked {
		for i := range payload {
			payload[i] ^= mask[i%4]
		}
	}

	return Message{Opcode: opcode, Payload: payload}, nil
}
