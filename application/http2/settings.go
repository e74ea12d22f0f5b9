package http2

import (
	"encoding/binary"
	"slices"
)

type SettingID uint16

const (
	SettingHeaderTableSize      SettingID = 0x1
	SettingEnablePush           SettingID = 0x2
	SettingMaxConcurrentStreams SettingID = 0x3
	SettingInitialWindowSize    SettingID = 0x4
	SettingMaxFrameSize         SettingID = 0x5
	SettingMaxHeaderListSize    SettingID = 0x6
)

type Settings map[SettingID]uint32

// DefaultSettings are advertised in the server's initial SETTINGS frame.
func DefaultSettings() Settings {
	return Settings{
		SettingHeaderTableSize:      4096,
		SettingEnablePush:           1,
		SettingMaxConcurrentStreams: 100,
		SettingInitialWindowSize:    65535,
		SettingMaxFrameSize:         16384,
		SettingMaxHeaderListSize:    8192,
	}
}

// Bytes serializes the settings as id/value pairs, ordered by id so
// the output is deterministic.
func (s Settings) Bytes() []byte {
	ids := make([]SettingID, 0, len(s))
	for id := range s {
		ids = append(ids, id)
	}
	slices.Sort(ids)

	buf := make([]byte, 0, len(s)*6)
	for _, id := range ids {
		buf = binary.BigEndian.AppendUint16(buf, uint16(id))
		buf = binary.BigEndian.AppendUint32(buf, s[id])
	}
	return buf
}

// ParseSettings decodes id/value pairs, ignoring a trailing partial pair.
func ParseSettings(payload []byte) Settings {
	s := make(Settings, len(payload)/6)
	for len(payload) >= 6 {
		id := SettingID(binary.BigEndian.Uint16(payload[:2]))
		s[id] = binary.BigEndian.Uint32(payload[2:6])
		payload = payload[6:]
	}
	return s
}

// Apply overwrites s with the values from other.
func (s Settings) Apply(other Settings) {
	for id, val := range other {
		s[id] = val
	}
}
