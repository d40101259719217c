package zcl

import (
	"encoding/binary"
	"fmt"
)

// FrameHeader is the ZCL frame header. ManufacturerCode is present on the
// wire only when FrameControl carries FrameManufacturerSpecific.
type FrameHeader struct {
	FrameControl     uint8
	ManufacturerCode uint16
	Seq              uint8
	CommandID        uint8
}

// ManufacturerSpecific reports whether the frame carries a manufacturer code.
func (h FrameHeader) ManufacturerSpecific() bool {
	return h.FrameControl&FrameManufacturerSpecific != 0
}

// IsClusterCommand reports whether the frame is a cluster-specific command.
func (h FrameHeader) IsClusterCommand() bool {
	return h.FrameControl&0x03 == FrameTypeCluster
}

// Encode returns the wire form of the header.
func (h FrameHeader) Encode() []byte {
	if h.ManufacturerSpecific() {
		buf := []byte{h.FrameControl, 0, 0, h.Seq, h.CommandID}
		binary.LittleEndian.PutUint16(buf[1:3], h.ManufacturerCode)
		return buf
	}
	return []byte{h.FrameControl, h.Seq, h.CommandID}
}

// ParseFrameHeader decodes a ZCL header and returns the remaining payload.
func ParseFrameHeader(data []byte) (FrameHeader, []byte, error) {
	if len(data) < 3 {
		return FrameHeader{}, nil, fmt.Errorf("zcl: frame too short: %d bytes", len(data))
	}
	h := FrameHeader{FrameControl: data[0]}
	pos := 1
	if h.ManufacturerSpecific() {
		if len(data) < 5 {
			return FrameHeader{}, nil, fmt.Errorf("zcl: manufacturer-specific frame too short: %d bytes", len(data))
		}
		h.ManufacturerCode = binary.LittleEndian.Uint16(data[1:3])
		pos = 3
	}
	h.Seq = data[pos]
	h.CommandID = data[pos+1]
	return h, data[pos+2:], nil
}

// ValueLength returns how many bytes the encoded value of typeID occupies at
// the start of data, including any length prefix.
func ValueLength(typeID uint8, data []byte) (int, bool) {
	info, ok := typeTable[typeID]
	if !ok {
		return 0, false
	}
	switch info.size {
	case -1:
		if len(data) < 1 {
			return 0, false
		}
		if data[0] == 0xFF {
			return 1, true
		}
		return 1 + int(data[0]), len(data) >= 1+int(data[0])
	case -2:
		if len(data) < 2 {
			return 0, false
		}
		n := int(binary.LittleEndian.Uint16(data[:2]))
		if n == 0xFFFF {
			return 2, true
		}
		return 2 + n, len(data) >= 2+n
	case -3:
		return 0, false
	}
	return info.size, len(data) >= info.size
}
