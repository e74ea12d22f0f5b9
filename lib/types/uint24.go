package types

import (
	"encoding/binary"
	"strconv"
)

// Uint24 is a big-endian 3-byte unsigned integer, as used by length fields
// of binary frame formats.
type Uint24 struct{ data [3]uint8 }

// NewUint24 truncates the most significant byte of u32.
func NewUint24(u32 uint32) Uint24 {
	return Uint24{data: [3]uint8{
		uint8(u32 >> 16),
		uint8(u32 >> 8),
		uint8(u32),
	}}
}

// Uint24FromBytes interprets b as big-endian.
func Uint24FromBytes(b [3]uint8) Uint24 { return Uint24{data: b} }

// Bytes returns the big-endian representation.
func (u24 Uint24) Bytes() [3]uint8 { return u24.data }

func (u24 Uint24) Uint32() uint32 {
	b := []byte{0, u24.data[0], u24.data[1], u24.data[2]}
	return binary.BigEndian.Uint32(b)
}

func (u24 Uint24) String() string {
	return strconv.FormatUint(uint64(u24.Uint32()), 10)
}
