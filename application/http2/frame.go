// Package http2 implements the binary frame codec and a minimal
// connection-level state machine: SETTINGS, PING and GOAWAY. Streams
// are not served.
package http2

import (
	"encoding/binary"
	"fmt"

	"httpstack/lib/types"
)

type FrameType uint8

const (
	FrameData         FrameType = 0x0
	FrameHeaders      FrameType = 0x1
	FramePriority     FrameType = 0x2
	FrameRSTStream    FrameType = 0x3
	FrameSettings     FrameType = 0x4
	FramePushPromise  FrameType = 0x5
	FramePing         FrameType = 0x6
	FrameGoAway       FrameType = 0x7
	FrameWindowUpdate FrameType = 0x8
	FrameContinuation FrameType = 0x9
)

func (t FrameType) String() string {
	switch t {
	case FrameData:
		return "DATA"
	case FrameHeaders:
		return "HEADERS"
	case FramePriority:
		return "PRIORITY"
	case FrameRSTStream:
		return "RST_STREAM"
	case FrameSettings:
		return "SETTINGS"
	case FramePushPromise:
		return "PUSH_PROMISE"
	case FramePing:
		return "PING"
	case FrameGoAway:
		return "GOAWAY"
	case FrameWindowUpdate:
		return "WINDOW_UPDATE"
	case FrameContinuation:
		return "CONTINUATION"
	default:
		return fmt.Sprintf("UNKNOWN(%#x)", uint8(t))
	}
}

type Flags uint8

const (
	FlagAck        Flags = 0x1
	FlagEndStream  Flags = 0x1
	FlagEndHeaders Flags = 0x4
	FlagPadded     Flags = 0x8
	FlagPriority   Flags = 0x20
)

func (f Flags) Has(flag Flags) bool { return f&flag != 0 }

type ErrCode uint32

const (
	ErrCodeNone               ErrCode = 0x0
	ErrCodeProtocol           ErrCode = 0x1
	ErrCodeInternal           ErrCode = 0x2
	ErrCodeFlowControl        ErrCode = 0x3
	ErrCodeSettingsTimeout    ErrCode = 0x4
	ErrCodeStreamClosed       ErrCode = 0x5
	ErrCodeFrameSize          ErrCode = 0x6
	ErrCodeRefusedStream      ErrCode = 0x7
	ErrCodeCancel             ErrCode = 0x8
	ErrCodeCompression        ErrCode = 0x9
	ErrCodeConnect            ErrCode = 0xa
	ErrCodeEnhanceYourCalm    ErrCode = 0xb
	ErrCodeInadequateSecurity ErrCode = 0xc
	ErrCodeHTTP11Required     ErrCode = 0xd
)

// FrameHeaderLen is the fixed size of the frame header on the wire.
const FrameHeaderLen = 9

// Frame is a single frame with its payload. The length field is
// derived from the payload on serialization.
type Frame struct {
	Type     FrameType
	Flags    Flags
	StreamID uint32
	Payload  []byte
}

// Serialize writes the frame in wire format.
func (f Frame) Serialize() []byte {
	buf := make([]byte, 0, FrameHeaderLen+len(f.Payload))

	length := types.NewUint24(uint32(len(f.Payload))).Bytes()
	buf = append(buf, length[:]...)
	buf = append(buf, uint8(f.Type), uint8(f.Flags))
	buf = binary.BigEndian.AppendUint32(buf, f.StreamID&0x7fffffff)

	return append(buf, f.Payload...)
}

// ParseFrame decodes one frame from the front of buf. When buf does
// not yet hold a complete frame it returns ok = false and buf
// untouched, so the caller can retry after reading more.
func ParseFrame(buf []byte) (f Frame, rest []byte, ok bool) {
	if len(buf) < FrameHeaderLen {
		return Frame{}, buf, false
	}

	length := types.Uint24FromBytes([3]uint8(buf[:3])).Uint32()
	if uint32(len(buf)-FrameHeaderLen) < length {
		return Frame{}, buf, false
	}

	end := FrameHeaderLen + int(length)
	f = Frame{
		Type:     FrameType(buf[3]),
		Flags:    Flags(buf[4]),
		StreamID: binary.BigEndian.Uint32(buf[5:9]) & 0x7fffffff,
		Payload:  buf[FrameHeaderLen:end],
	}
	return f, buf[end:], true
}
