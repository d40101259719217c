package zcl

import (
	"encoding/binary"
	"fmt"
	"math"
)

// ZCL data type IDs
const (
	TypeNoData     uint8 = 0x00
	TypeData8      uint8 = 0x08
	TypeData16     uint8 = 0x09
	TypeData24     uint8 = 0x0A
	TypeData32     uint8 = 0x0B
	TypeBool       uint8 = 0x10
	TypeBitmap8    uint8 = 0x18
	TypeBitmap16   uint8 = 0x19
	TypeBitmap24   uint8 = 0x1A
	TypeBitmap32   uint8 = 0x1B
	TypeUint8      uint8 = 0x20
	TypeUint16     uint8 = 0x21
	TypeUint24     uint8 = 0x22
	TypeUint32     uint8 = 0x23
	TypeUint40     uint8 = 0x24
	TypeUint48     uint8 = 0x25
	TypeUint56     uint8 = 0x26
	TypeUint64     uint8 = 0x27
	TypeInt8       uint8 = 0x28
	TypeInt16      uint8 = 0x29
	TypeInt24      uint8 = 0x2A
	TypeInt32      uint8 = 0x2B
	TypeInt40      uint8 = 0x2C
	TypeInt48      uint8 = 0x2D
	TypeInt56      uint8 = 0x2E
	TypeInt64      uint8 = 0x2F
	TypeEnum8      uint8 = 0x30
	TypeEnum16     uint8 = 0x31
	TypeFloat16    uint8 = 0x38
	TypeFloat32    uint8 = 0x39
	TypeFloat64    uint8 = 0x3A
	TypeOctetStr   uint8 = 0x41
	TypeCharStr    uint8 = 0x42
	TypeOctetStr16 uint8 = 0x43
	TypeCharStr16  uint8 = 0x44
	TypeArray      uint8 = 0x48
	TypeStruct     uint8 = 0x4C
	TypeToD        uint8 = 0xE0 // Time of Day
	TypeDate       uint8 = 0xE1
	TypeUTC        uint8 = 0xE2
	TypeClusterID  uint8 = 0xE8
	TypeAttrID     uint8 = 0xE9
	TypeEUI64      uint8 = 0xF0
)

// TypeClass groups wire types by the Go values they carry.
type TypeClass uint8

const (
	ClassNone TypeClass = iota
	ClassBool
	ClassUnsigned // uintN, dataN, ids, time
	ClassSigned
	ClassEnum
	ClassBitmap
	ClassFloat
	ClassString
	ClassOctets
	ClassEUI64
	ClassComposite
)

type typeInfo struct {
	name  string
	size  int // bytes; -1 = 1-byte length prefix, -2 = 2-byte length prefix, -3 = unsized
	class TypeClass
}

var typeTable = map[uint8]typeInfo{
	TypeNoData:     {"nodata", 0, ClassNone},
	TypeData8:      {"data8", 1, ClassUnsigned},
	TypeData16:     {"data16", 2, ClassUnsigned},
	TypeData24:     {"data24", 3, ClassUnsigned},
	TypeData32:     {"data32", 4, ClassUnsigned},
	TypeBool:       {"bool", 1, ClassBool},
	TypeBitmap8:    {"map8", 1, ClassBitmap},
	TypeBitmap16:   {"map16", 2, ClassBitmap},
	TypeBitmap24:   {"map24", 3, ClassBitmap},
	TypeBitmap32:   {"map32", 4, ClassBitmap},
	TypeUint8:      {"uint8", 1, ClassUnsigned},
	TypeUint16:     {"uint16", 2, ClassUnsigned},
	TypeUint24:     {"uint24", 3, ClassUnsigned},
	TypeUint32:     {"uint32", 4, ClassUnsigned},
	TypeUint40:     {"uint40", 5, ClassUnsigned},
	TypeUint48:     {"uint48", 6, ClassUnsigned},
	TypeUint56:     {"uint56", 7, ClassUnsigned},
	TypeUint64:     {"uint64", 8, ClassUnsigned},
	TypeInt8:       {"int8", 1, ClassSigned},
	TypeInt16:      {"int16", 2, ClassSigned},
	TypeInt24:      {"int24", 3, ClassSigned},
	TypeInt32:      {"int32", 4, ClassSigned},
	TypeInt40:      {"int40", 5, ClassSigned},
	TypeInt48:      {"int48", 6, ClassSigned},
	TypeInt56:      {"int56", 7, ClassSigned},
	TypeInt64:      {"int64", 8, ClassSigned},
	TypeEnum8:      {"enum8", 1, ClassEnum},
	TypeEnum16:     {"enum16", 2, ClassEnum},
	TypeFloat16:    {"float16", 2, ClassFloat},
	TypeFloat32:    {"float32", 4, ClassFloat},
	TypeFloat64:    {"float64", 8, ClassFloat},
	TypeOctetStr:   {"octstr", -1, ClassOctets},
	TypeCharStr:    {"string", -1, ClassString},
	TypeOctetStr16: {"octstr16", -2, ClassOctets},
	TypeCharStr16:  {"string16", -2, ClassString},
	TypeArray:      {"array", -3, ClassComposite},
	TypeStruct:     {"struct", -3, ClassComposite},
	TypeToD:        {"ToD", 4, ClassUnsigned},
	TypeDate:       {"date", 4, ClassUnsigned},
	TypeUTC:        {"UTC", 4, ClassUnsigned},
	TypeClusterID:  {"clusterId", 2, ClassUnsigned},
	TypeAttrID:     {"attribId", 2, ClassUnsigned},
	TypeEUI64:      {"EUI64", 8, ClassEUI64},
}

// KnownType reports whether typeID is in the wire-type table.
func KnownType(typeID uint8) bool {
	_, ok := typeTable[typeID]
	return ok
}

// TypeSize returns the fixed size in bytes of a ZCL type, or -1 for variable-length types.
func TypeSize(typeID uint8) int {
	info, ok := typeTable[typeID]
	if !ok || info.size < 0 {
		return -1
	}
	return info.size
}

// TypeBits returns the width in bits of a fixed-size type, 0 otherwise.
func TypeBits(typeID uint8) int {
	if n := TypeSize(typeID); n > 0 {
		return n * 8
	}
	return 0
}

// TypeClassOf returns the class of a ZCL type.
func TypeClassOf(typeID uint8) TypeClass {
	return typeTable[typeID].class
}

// IsIntegerType reports whether values of typeID are plain integers on the wire.
func IsIntegerType(typeID uint8) bool {
	switch TypeClassOf(typeID) {
	case ClassUnsigned, ClassSigned, ClassEnum, ClassBitmap:
		return true
	}
	return false
}

// IsFloatType reports whether typeID is a floating point type.
func IsFloatType(typeID uint8) bool {
	return TypeClassOf(typeID) == ClassFloat
}

// IsStringType reports whether typeID is a character or octet string.
func IsStringType(typeID uint8) bool {
	c := TypeClassOf(typeID)
	return c == ClassString || c == ClassOctets
}

// TypeName returns a human-readable name for a ZCL type.
func TypeName(typeID uint8) string {
	if info, ok := typeTable[typeID]; ok {
		return info.name
	}
	return fmt.Sprintf("0x%02X", typeID)
}

// TypeByName resolves a type name as printed by TypeName.
func TypeByName(name string) (uint8, bool) {
	for id, info := range typeTable {
		if info.name == name {
			return id, true
		}
	}
	return 0, false
}

// DecodeValue decodes a ZCL typed value from raw bytes, returning the Go value and bytes consumed.
func DecodeValue(typeID uint8, data []byte) (interface{}, int, error) {
	info, ok := typeTable[typeID]
	if !ok {
		return nil, 0, fmt.Errorf("zcl: unknown type 0x%02X", typeID)
	}
	switch info.size {
	case 0:
		return nil, 0, nil
	case -1, -2:
		return decodeVariableValue(typeID, info, data)
	case -3:
		return nil, 0, fmt.Errorf("zcl: decode not implemented for type %s", info.name)
	}
	if len(data) < info.size {
		return nil, 0, fmt.Errorf("zcl: not enough data for type 0x%02X: need %d, have %d", typeID, info.size, len(data))
	}
	raw := data[:info.size]

	switch info.class {
	case ClassBool:
		return raw[0] != 0, 1, nil
	case ClassFloat:
		switch info.size {
		case 2:
			// semi-precision floats are kept raw
			return binary.LittleEndian.Uint16(raw), 2, nil
		case 4:
			return math.Float32frombits(binary.LittleEndian.Uint32(raw)), 4, nil
		default:
			return math.Float64frombits(binary.LittleEndian.Uint64(raw)), 8, nil
		}
	case ClassEUI64:
		var addr [8]byte
		copy(addr[:], raw)
		return addr, 8, nil
	case ClassSigned:
		v := readUint(raw)
		shift := 64 - uint(info.size)*8
		s := int64(v<<shift) >> shift
		switch info.size {
		case 1:
			return int8(s), 1, nil
		case 2:
			return int16(s), 2, nil
		case 3, 4:
			return int32(s), info.size, nil
		default:
			return s, info.size, nil
		}
	}

	v := readUint(raw)
	switch info.size {
	case 1:
		return uint8(v), 1, nil
	case 2:
		return uint16(v), 2, nil
	case 3, 4:
		return uint32(v), info.size, nil
	default:
		return v, info.size, nil
	}
}

func readUint(b []byte) uint64 {
	var v uint64
	for i := len(b) - 1; i >= 0; i-- {
		v = v<<8 | uint64(b[i])
	}
	return v
}

func putUint(v uint64, size int) []byte {
	buf := make([]byte, size)
	for i := 0; i < size; i++ {
		buf[i] = byte(v >> (8 * i))
	}
	return buf
}

func decodeVariableValue(typeID uint8, info typeInfo, data []byte) (interface{}, int, error) {
	prefix := 1
	if info.size == -2 {
		prefix = 2
	}
	if len(data) < prefix {
		return nil, 0, fmt.Errorf("zcl: no length prefix for %s", info.name)
	}
	length := int(data[0])
	invalid := length == 0xFF
	if prefix == 2 {
		length = int(binary.LittleEndian.Uint16(data[:2]))
		invalid = length == 0xFFFF
	}
	if invalid {
		return nil, prefix, nil
	}
	if len(data) < prefix+length {
		return nil, 0, fmt.Errorf("zcl: %s truncated: need %d, have %d", info.name, length, len(data)-prefix)
	}
	payload := data[prefix : prefix+length]
	if info.class == ClassString {
		return string(payload), prefix + length, nil
	}
	b := make([]byte, length)
	copy(b, payload)
	return b, prefix + length, nil
}

// EncodeValue encodes a Go value into ZCL wire format.
func EncodeValue(typeID uint8, val interface{}) ([]byte, error) {
	info, ok := typeTable[typeID]
	if !ok {
		return nil, fmt.Errorf("zcl: encode not implemented for type 0x%02X", typeID)
	}

	switch info.class {
	case ClassBool:
		v, ok := toBool(val)
		if !ok {
			return nil, fmt.Errorf("zcl: cannot convert %T to bool", val)
		}
		if v {
			return []byte{1}, nil
		}
		return []byte{0}, nil

	case ClassUnsigned, ClassEnum, ClassBitmap:
		v, ok := toUint64(val)
		if !ok {
			return nil, fmt.Errorf("zcl: cannot convert %T to %s", val, info.name)
		}
		if info.size < 8 {
			if max := uint64(1)<<(8*uint(info.size)) - 1; v > max {
				return nil, fmt.Errorf("zcl: value %d overflows %s (max %d)", v, info.name, max)
			}
		}
		return putUint(v, info.size), nil

	case ClassSigned:
		v, ok := toInt64(val)
		if !ok {
			return nil, fmt.Errorf("zcl: cannot convert %T to %s", val, info.name)
		}
		if info.size < 8 {
			bits := 8 * uint(info.size)
			min, max := -(int64(1) << (bits - 1)), int64(1)<<(bits-1)-1
			if v < min || v > max {
				return nil, fmt.Errorf("zcl: value %d overflows %s (range %d..%d)", v, info.name, min, max)
			}
		}
		return putUint(uint64(v), info.size), nil

	case ClassFloat:
		if info.size == 2 {
			v, ok := toUint64(val)
			if !ok || v > math.MaxUint16 {
				return nil, fmt.Errorf("zcl: cannot convert %T to float16 (raw uint16)", val)
			}
			return putUint(v, 2), nil
		}
		v, ok := toFloat64(val)
		if !ok {
			return nil, fmt.Errorf("zcl: cannot convert %T to %s", val, info.name)
		}
		if info.size == 4 {
			return putUint(uint64(math.Float32bits(float32(v))), 4), nil
		}
		return putUint(math.Float64bits(v), 8), nil

	case ClassEUI64:
		switch a := val.(type) {
		case [8]byte:
			b := make([]byte, 8)
			copy(b, a[:])
			return b, nil
		case []byte:
			if len(a) != 8 {
				return nil, fmt.Errorf("zcl: EUI64 requires 8 bytes, got %d", len(a))
			}
			b := make([]byte, 8)
			copy(b, a)
			return b, nil
		default:
			return nil, fmt.Errorf("zcl: cannot convert %T to EUI64", val)
		}

	case ClassString, ClassOctets:
		var payload []byte
		switch v := val.(type) {
		case string:
			if info.class != ClassString {
				return nil, fmt.Errorf("zcl: cannot convert %T to %s", val, info.name)
			}
			payload = []byte(v)
		case []byte:
			if info.class != ClassOctets {
				return nil, fmt.Errorf("zcl: cannot convert %T to %s", val, info.name)
			}
			payload = v
		default:
			return nil, fmt.Errorf("zcl: cannot convert %T to %s", val, info.name)
		}
		if info.size == -1 {
			if len(payload) > 254 {
				return nil, fmt.Errorf("zcl: data too long for %s: %d (max 254)", info.name, len(payload))
			}
			return append([]byte{uint8(len(payload))}, payload...), nil
		}
		if len(payload) > 65534 {
			return nil, fmt.Errorf("zcl: data too long for %s: %d (max 65534)", info.name, len(payload))
		}
		buf := make([]byte, 2, 2+len(payload))
		binary.LittleEndian.PutUint16(buf, uint16(len(payload)))
		return append(buf, payload...), nil
	}

	return nil, fmt.Errorf("zcl: encode not implemented for type %s", info.name)
}

func toBool(v interface{}) (bool, bool) {
	switch val := v.(type) {
	case bool:
		return val, true
	case float64:
		return val != 0, true
	case int:
		return val != 0, true
	case uint8:
		return val != 0, true
	}
	return false, false
}

func toUint64(v interface{}) (uint64, bool) {
	switch val := v.(type) {
	case uint8:
		return uint64(val), true
	case uint16:
		return uint64(val), true
	case uint32:
		return uint64(val), true
	case uint64:
		return val, true
	case uint:
		return uint64(val), true
	case int:
		if val < 0 {
			return 0, false
		}
		return uint64(val), true
	case int8:
		if val < 0 {
			return 0, false
		}
		return uint64(val), true
	case int16:
		if val < 0 {
			return 0, false
		}
		return uint64(val), true
	case int32:
		if val < 0 {
			return 0, false
		}
		return uint64(val), true
	case int64:
		if val < 0 {
			return 0, false
		}
		return uint64(val), true
	case float64:
		if val < 0 || val != math.Trunc(val) {
			return 0, false
		}
		return uint64(val), true
	case EnumMember:
		return val.Value, true
	}
	return 0, false
}

func toFloat64(v interface{}) (float64, bool) {
	switch val := v.(type) {
	case float32:
		return float64(val), true
	case float64:
		return val, true
	case int:
		return float64(val), true
	case int64:
		return float64(val), true
	case uint64:
		return float64(val), true
	case uint8:
		return float64(val), true
	case uint16:
		return float64(val), true
	case uint32:
		return float64(val), true
	case int8:
		return float64(val), true
	case int16:
		return float64(val), true
	case int32:
		return float64(val), true
	}
	return 0, false
}

func toInt64(v interface{}) (int64, bool) {
	switch val := v.(type) {
	case int8:
		return int64(val), true
	case int16:
		return int64(val), true
	case int32:
		return int64(val), true
	case int64:
		return val, true
	case int:
		return int64(val), true
	case uint8:
		return int64(val), true
	case uint16:
		return int64(val), true
	case uint32:
		return int64(val), true
	case uint64:
		if val > math.MaxInt64 {
			return 0, false
		}
		return int64(val), true
	case float64:
		if val > math.MaxInt64 || val < math.MinInt64 || val != math.Trunc(val) {
			return 0, false
		}
		return int64(val), true
	}
	return 0, false
}

// ToFloat64 converts a decoded or user-supplied numeric value to float64.
func ToFloat64(v interface{}) (float64, bool) {
	if m, ok := v.(EnumMember); ok {
		return float64(m.Value), true
	}
	return toFloat64(v)
}

// ToUint64 converts a decoded or user-supplied non-negative integer to uint64.
func ToUint64(v interface{}) (uint64, bool) {
	return toUint64(v)
}
