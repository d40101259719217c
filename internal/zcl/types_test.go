package zcl

import (
	"bytes"
	"math"
	"reflect"
	"strings"
	"testing"
)

func TestDecodeValue(t *testing.T) {
	tests := []struct {
		name   string
		typeID uint8
		data   []byte
		want   interface{}
		n      int
	}{
		{"uint8", TypeUint8, []byte{0x42}, uint8(0x42), 1},
		{"uint16", TypeUint16, []byte{0x34, 0x12}, uint16(0x1234), 2},
		{"uint24", TypeUint24, []byte{0x56, 0x34, 0x12}, uint32(0x123456), 3},
		{"uint32", TypeUint32, []byte{0x78, 0x56, 0x34, 0x12}, uint32(0x12345678), 4},
		{"uint48", TypeUint48, []byte{1, 2, 3, 4, 5, 6}, uint64(0x060504030201), 6},
		{"int8 negative", TypeInt8, []byte{0xFE}, int8(-2), 1},
		{"int16 negative", TypeInt16, []byte{0x0C, 0xFE}, int16(-500), 2},
		{"int24 sign extends", TypeInt24, []byte{0xFF, 0xFF, 0xFF}, int32(-1), 3},
		{"int24 positive", TypeInt24, []byte{0xFF, 0xFF, 0x7F}, int32(0x7FFFFF), 3},
		{"int40", TypeInt40, []byte{0xFF, 0xFF, 0xFF, 0xFF, 0xFF}, int64(-1), 5},
		{"bool true", TypeBool, []byte{0x01}, true, 1},
		{"bool false", TypeBool, []byte{0x00}, false, 1},
		{"enum8", TypeEnum8, []byte{0x03}, uint8(3), 1},
		{"enum16", TypeEnum16, []byte{0x01, 0x02}, uint16(0x0201), 2},
		{"map8", TypeBitmap8, []byte{0xA5}, uint8(0xA5), 1},
		{"map24", TypeBitmap24, []byte{1, 2, 3}, uint32(0x030201), 3},
		{"float16 raw", TypeFloat16, []byte{0x00, 0x3C}, uint16(0x3C00), 2},
		{"float32", TypeFloat32, []byte{0x00, 0x00, 0x20, 0x41}, float32(10), 4},
		{"UTC", TypeUTC, []byte{0x10, 0x00, 0x00, 0x00}, uint32(16), 4},
		{"EUI64", TypeEUI64, []byte{1, 2, 3, 4, 5, 6, 7, 8}, [8]byte{1, 2, 3, 4, 5, 6, 7, 8}, 8},
		{"string", TypeCharStr, []byte{0x05, 'N', 'o', 'd', 'O', 'n'}, "NodOn", 6},
		{"string invalid", TypeCharStr, []byte{0xFF}, nil, 1},
		{"octstr", TypeOctetStr, []byte{0x02, 0xDE, 0xAD}, []byte{0xDE, 0xAD}, 3},
		{"string16", TypeCharStr16, []byte{0x03, 0x00, 'a', 'b', 'c'}, "abc", 5},
		{"octstr16 invalid", TypeOctetStr16, []byte{0xFF, 0xFF}, nil, 2},
		{"nodata", TypeNoData, nil, nil, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, n, err := DecodeValue(tt.typeID, tt.data)
			if err != nil {
				t.Fatal(err)
			}
			if n != tt.n {
				t.Errorf("consumed %d, want %d", n, tt.n)
			}
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("got %#v, want %#v", got, tt.want)
			}
		})
	}
}

func TestDecodeValueErrors(t *testing.T) {
	tests := []struct {
		name   string
		typeID uint8
		data   []byte
	}{
		{"short uint16", TypeUint16, []byte{0x01}},
		{"short float64", TypeFloat64, []byte{0, 0, 0, 0}},
		{"no length prefix", TypeCharStr, nil},
		{"truncated string", TypeCharStr, []byte{0x05, 'a', 'b'}},
		{"unknown type", 0xFE, []byte{0x00}},
		{"composite", TypeArray, []byte{0x20, 0x00, 0x00}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, _, err := DecodeValue(tt.typeID, tt.data); err == nil {
				t.Error("expected error")
			}
		})
	}
}

func TestEncodeValue(t *testing.T) {
	tests := []struct {
		name   string
		typeID uint8
		val    interface{}
		want   []byte
	}{
		{"uint8 from float64", TypeUint8, float64(3), []byte{0x03}},
		{"uint16", TypeUint16, uint16(10000), []byte{0x10, 0x27}},
		{"uint24 max", TypeUint24, 0xFFFFFF, []byte{0xFF, 0xFF, 0xFF}},
		{"int8 min", TypeInt8, -128, []byte{0x80}},
		{"int24 negative", TypeInt24, int32(-2), []byte{0xFE, 0xFF, 0xFF}},
		{"bool from float64", TypeBool, float64(1), []byte{0x01}},
		{"enum8 member", TypeEnum8, EnumMember{Name: "Eco", Value: 2}, []byte{0x02}},
		{"enum16 member", TypeEnum16, EnumMember{Name: "Eco", Value: 2}, []byte{0x02, 0x00}},
		{"float32", TypeFloat32, 10, []byte{0x00, 0x00, 0x20, 0x41}},
		{"float64", TypeFloat64, 1.5, []byte{0, 0, 0, 0, 0, 0, 0xF8, 0x3F}},
		{"EUI64 slice", TypeEUI64, []byte{1, 2, 3, 4, 5, 6, 7, 8}, []byte{1, 2, 3, 4, 5, 6, 7, 8}},
		{"string", TypeCharStr, "SIN-4-FP-21", append([]byte{11}, "SIN-4-FP-21"...)},
		{"octstr", TypeOctetStr, []byte{0xAB}, []byte{0x01, 0xAB}},
		{"string16", TypeCharStr16, "ab", []byte{0x02, 0x00, 'a', 'b'}},
		{"octstr16", TypeOctetStr16, []byte{0xAB, 0xCD}, []byte{0x02, 0x00, 0xAB, 0xCD}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := EncodeValue(tt.typeID, tt.val)
			if err != nil {
				t.Fatal(err)
			}
			if !bytes.Equal(got, tt.want) {
				t.Errorf("got % X, want % X", got, tt.want)
			}
		})
	}
}

func TestEncodeValueRejects(t *testing.T) {
	tests := []struct {
		name   string
		typeID uint8
		val    interface{}
		errMsg string
	}{
		{"uint8 overflow", TypeUint8, 256, "overflows"},
		{"uint24 overflow", TypeUint24, 0x1000000, "overflows"},
		{"int8 overflow", TypeInt8, 128, "overflows"},
		{"int24 underflow", TypeInt24, -8388609, "overflows"},
		{"negative unsigned", TypeUint8, -1, "cannot convert"},
		{"negative float unsigned", TypeUint16, float64(-3), "cannot convert"},
		{"fractional unsigned", TypeUint16, 2.5, "cannot convert"},
		{"string to uint", TypeUint8, "Comfort", "cannot convert"},
		{"bytes to string", TypeCharStr, []byte("x"), "cannot convert"},
		{"string to octstr", TypeOctetStr, "x", "cannot convert"},
		{"short EUI64", TypeEUI64, []byte{1, 2}, "8 bytes"},
		{"long string", TypeCharStr, strings.Repeat("x", 255), "too long"},
		{"composite", TypeStruct, 1, "not implemented"},
		{"unknown", 0xFE, 1, "not implemented"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := EncodeValue(tt.typeID, tt.val)
			if err == nil || !strings.Contains(err.Error(), tt.errMsg) {
				t.Errorf("err = %v, want %q", err, tt.errMsg)
			}
		})
	}
}

// Values decoded from the wire must encode back to the same bytes, so a
// read-modify-write never changes what the device stored.
func TestDecodedValuesReencode(t *testing.T) {
	frames := map[uint8][]byte{
		TypeUint8:   {0x7F},
		TypeUint40:  {1, 2, 3, 4, 5},
		TypeInt16:   {0x0C, 0xFE},
		TypeInt24:   {0x00, 0x00, 0x80},
		TypeEnum16:  {0x05, 0x00},
		TypeFloat32: {0x00, 0x00, 0xC0, 0x3F},
		TypeFloat16: {0x00, 0x3C},
		TypeCharStr: {0x03, 'V', 'O', 'C'},
		TypeEUI64:   {8, 7, 6, 5, 4, 3, 2, 1},
	}
	for typeID, data := range frames {
		v, _, err := DecodeValue(typeID, data)
		if err != nil {
			t.Fatalf("%s: %v", TypeName(typeID), err)
		}
		got, err := EncodeValue(typeID, v)
		if err != nil {
			t.Fatalf("%s: encode %#v: %v", TypeName(typeID), v, err)
		}
		if !bytes.Equal(got, data) {
			t.Errorf("%s: % X re-encoded as % X", TypeName(typeID), data, got)
		}
	}
}

func TestNumericConversions(t *testing.T) {
	if v, ok := ToUint64(float64(4747)); !ok || v != 4747 {
		t.Errorf("ToUint64(4747.0) = %d, %v", v, ok)
	}
	if _, ok := ToUint64(int64(-1)); ok {
		t.Error("ToUint64 accepted a negative int64")
	}
	if v, ok := ToUint64(EnumMember{Value: 4}); !ok || v != 4 {
		t.Errorf("ToUint64(member) = %d, %v", v, ok)
	}
	if v, ok := ToFloat64(EnumMember{Value: 2}); !ok || v != 2 {
		t.Errorf("ToFloat64(member) = %v, %v", v, ok)
	}
	if v, ok := ToFloat64(float32(0.5)); !ok || v != 0.5 {
		t.Errorf("ToFloat64(float32) = %v, %v", v, ok)
	}
	if _, ok := toInt64(uint64(math.MaxUint64)); ok {
		t.Error("toInt64 accepted MaxUint64")
	}
	if v, ok := toInt64(float64(-7)); !ok || v != -7 {
		t.Errorf("toInt64(-7.0) = %d, %v", v, ok)
	}
	if _, ok := ToFloat64("10"); ok {
		t.Error("ToFloat64 accepted a string")
	}
}

func TestTypeMetadata(t *testing.T) {
	tests := []struct {
		typeID  uint8
		size    int
		class   TypeClass
		integer bool
	}{
		{TypeBool, 1, ClassBool, false},
		{TypeUint24, 3, ClassUnsigned, true},
		{TypeInt56, 7, ClassSigned, true},
		{TypeEnum16, 2, ClassEnum, true},
		{TypeBitmap32, 4, ClassBitmap, true},
		{TypeFloat32, 4, ClassFloat, false},
		{TypeCharStr, -1, ClassString, false},
		{TypeOctetStr16, -1, ClassOctets, false},
		{TypeArray, -1, ClassComposite, false},
		{TypeAttrID, 2, ClassUnsigned, true},
	}
	for _, tt := range tests {
		t.Run(TypeName(tt.typeID), func(t *testing.T) {
			if got := TypeSize(tt.typeID); got != tt.size {
				t.Errorf("TypeSize = %d, want %d", got, tt.size)
			}
			if got := TypeClassOf(tt.typeID); got != tt.class {
				t.Errorf("TypeClassOf = %d, want %d", got, tt.class)
			}
			if got := IsIntegerType(tt.typeID); got != tt.integer {
				t.Errorf("IsIntegerType = %v", got)
			}
		})
	}
	if TypeBits(TypeUint16) != 16 || TypeBits(TypeCharStr) != 0 {
		t.Error("TypeBits")
	}
	if !IsFloatType(TypeFloat64) || !IsStringType(TypeOctetStr) || IsStringType(TypeUint8) {
		t.Error("type predicates")
	}
	if KnownType(0xFE) || TypeName(0xFE) != "0xFE" {
		t.Error("unknown type reported as known")
	}
}

func TestTypeByNameRoundTrip(t *testing.T) {
	for id := range typeTable {
		got, ok := TypeByName(TypeName(id))
		if !ok || got != id {
			t.Errorf("TypeByName(%q) = 0x%02X, %v; want 0x%02X", TypeName(id), got, ok, id)
		}
	}
	if _, ok := TypeByName("enum32"); ok {
		t.Error("resolved an undefined type name")
	}
}
