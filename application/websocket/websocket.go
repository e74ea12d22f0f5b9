// Package websocket implements the server side of the websocket
// protocol: the upgrade handshake and data framing.
package websocket

import "fmt"

type Opcode uint8

const (
	OpcodeContinuation Opcode = 0x0
	OpcodeText         Opcode = 0x1
	OpcodeBinary       Opcode = 0x2
	OpcodeClose        Opcode = 0x8
	OpcodePing         Opcode = 0x9
	OpcodePong         Opcode = 0xA
)

// IsControl reports whether the opcode is a control frame opcode.
func (o Opcode) IsControl() bool { return o >= OpcodeClose }

func (o Opcode) String() string {
	switch o {
	case OpcodeContinuation:
		return "CONTINUATION"
	case OpcodeText:
		return "TEXT"
	case OpcodeBinary:
		return "BINARY"
	case OpcodeClose:
		return "CLOSE"
	case OpcodePing:
		return "PING"
	case OpcodePong:
		return "PONG"
	default:
		return fmt.Sprintf("UNKNOWN(%#x)", uint8(o))
	}
}

// Message is a single unmasked frame payload with its opcode.
type Message struct {
	Opcode  Opcode
	Payload []byte
}

func (m Message) IsText() bool   { return m.Opcode == OpcodeText }
func (m Message) IsBinary() bool { return m.Opcode == OpcodeBinary }
func (m Message) IsClose() bool  { return m.Opcode == OpcodeClose }
func (m Message) IsPing() bool   { return m.Opcode == OpcodePing }
func (m Message) IsPong() bool   { return m.Opcode == OpcodePong }

// Text interprets the payload as a string.
func (m Message) Text() string { return string(m.Payload) }
