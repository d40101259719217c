package zcl

import (
	"bytes"
	"errors"
	"testing"
)

func pilotWireEnum(typeID uint8) *EnumDef {
	return &EnumDef{
		Name: "PilotWireMode",
		Type: typeID,
		Members: []EnumMember{
			{Name: "Off", Value: 0x00},
			{Name: "Comfort", Value: 0x01},
			{Name: "Eco", Value: 0x02},
			{Name: "FrostProtection", Value: 0x03},
			{Name: "ComfortMinus1", Value: 0x04},
			{Name: "ComfortMinus2", Value: 0x05},
		},
	}
}

func TestEnum16OverUint8RoundTrip(t *testing.T) {
	attr := &AttributeDef{
		ID:       0x0000,
		Name:     "pilot_wire_mode",
		Type:     TypeEnum16,
		WireType: TypeUint8,
		Access:   AccessRead | AccessWrite,
		Enum:     pilotWireEnum(TypeEnum16),
	}
	if err := CheckWireType(attr); err != nil {
		t.Fatalf("CheckWireType: %v", err)
	}

	for _, m := range attr.Enum.Members {
		encoded, err := EncodeAttribute(attr, m)
		if err != nil {
			t.Fatalf("encode %s: %v", m.Name, err)
		}
		if len(encoded) != 1 || encoded[0] != byte(m.Value) {
			t.Errorf("encode %s = %X, want single byte %02X", m.Name, encoded, m.Value)
		}
		got, n, err := DecodeAttribute(attr, attr.EncodingType(), encoded)
		if err != nil {
			t.Fatalf("decode %s: %v", m.Name, err)
		}
		if n != 1 {
			t.Errorf("decode %s consumed %d, want 1", m.Name, n)
		}
		if got != m {
			t.Errorf("decode %s = %v, want %v", m.Name, got, m)
		}
	}
}

func TestEncodeAttributeAcceptsNames(t *testing.T) {
	attr := &AttributeDef{Name: "mode", Type: TypeEnum8, WireType: TypeUint8, Enum: pilotWireEnum(TypeEnum8)}
	encoded, err := EncodeAttribute(attr, "FrostProtection")
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(encoded, []byte{0x03}) {
		t.Errorf("encoded %X, want 03", encoded)
	}
	if _, err := EncodeAttribute(attr, "Boost"); err == nil {
		t.Error("expected error for unknown member name")
	}
	if _, err := EncodeAttribute(attr, 9); err == nil {
		t.Error("expected error for undefined member value")
	}
}

func TestDecodeAttributeUnknownMember(t *testing.T) {
	attr := &AttributeDef{Name: "mode", Type: TypeEnum8, Enum: pilotWireEnum(TypeEnum8)}
	got, _, err := DecodeAttribute(attr, TypeEnum8, []byte{0x42})
	if err != nil {
		t.Fatal(err)
	}
	if got != uint8(0x42) {
		t.Errorf("got %v (%T), want raw uint8 0x42", got, got)
	}
}

func TestCheckWireTypeMismatch(t *testing.T) {
	wide := pilotWireEnum(TypeEnum16)
	wide.Members = append(wide.Members, EnumMember{Name: "Wide", Value: 0x0100})

	tests := []struct {
		name string
		attr AttributeDef
	}{
		{"enum on integer type", AttributeDef{Name: "a", Type: TypeUint8, Enum: pilotWireEnum(TypeEnum8)}},
		{"member overflows wire", AttributeDef{Name: "b", Type: TypeEnum16, WireType: TypeUint8, Enum: wide}},
		{"float sent as integer", AttributeDef{Name: "c", Type: TypeFloat32, WireType: TypeUint32}},
		{"string sent as integer", AttributeDef{Name: "d", Type: TypeCharStr, WireType: TypeUint8}},
		{"unknown wire type", AttributeDef{Name: "e", Type: TypeUint8, WireType: 0x77}},
		{"unknown type", AttributeDef{Name: "f", Type: 0x77}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := CheckWireType(&tt.attr)
			if !errors.Is(err, ErrWireTypeMismatch) {
				t.Errorf("CheckWireType = %v, want ErrWireTypeMismatch", err)
			}
		})
	}
}

func TestCheckWireTypeCompatible(t *testing.T) {
	for _, a := range []AttributeDef{
		{Name: "plain", Type: TypeUint16},
		{Name: "same", Type: TypeUint16, WireType: TypeUint16},
		{Name: "bitmap as uint", Type: TypeBitmap8, WireType: TypeUint8},
		{Name: "enum8", Type: TypeEnum8, Enum: pilotWireEnum(TypeEnum8)},
		{Name: "octets as string", Type: TypeOctetStr, WireType: TypeCharStr},
	} {
		if err := CheckWireType(&a); err != nil {
			t.Errorf("%s: %v", a.Name, err)
		}
	}
}

func TestEncodeCommand(t *testing.T) {
	cmd := &CommandDef{
		ID:        0x00,
		Name:      "set_pilot_wire_mode",
		Direction: DirectionToServer,
		Params:    []ParamDef{{Name: "mode", Type: TypeUint8, Enum: pilotWireEnum(TypeEnum8)}},
	}
	if err := CheckParamType(&cmd.Params[0]); err != nil {
		t.Fatal(err)
	}
	payload, err := EncodeCommand(cmd, "Eco")
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(payload, []byte{0x02}) {
		t.Errorf("payload %X, want 02", payload)
	}
	if _, err := EncodeCommand(cmd); err == nil {
		t.Error("expected error for missing argument")
	}
	if _, err := EncodeCommand(cmd, "Turbo"); err == nil {
		t.Error("expected error for unknown member")
	}
}

func TestParseAccess(t *testing.T) {
	got, err := ParseAccess("rwp")
	if err != nil {
		t.Fatal(err)
	}
	if got != AccessRead|AccessWrite|AccessReport {
		t.Errorf("ParseAccess(rwp) = %d", got)
	}
	if _, err := ParseAccess("rx"); err == nil {
		t.Error("expected error for invalid flag")
	}
}

func TestClusterConflicts(t *testing.T) {
	std := &ClusterDef{
		ID:         0x0006,
		Attributes: []AttributeDef{{ID: 0x0000, Name: "on_off", Type: TypeBool}},
		Commands:   []CommandDef{{ID: 0x01, Name: "on", Direction: DirectionToServer}},
	}
	ext := &ClusterDef{
		ID: 0x0006,
		Attributes: []AttributeDef{
			{ID: 0x0000, Name: "shadow", Type: TypeBool},
			{ID: 0x0001, Name: "impulse_mode_duration", Type: TypeUint16},
		},
		Commands: []CommandDef{{ID: 0x01, Name: "on", Direction: DirectionToClient}},
	}
	attrs, cmds := std.Conflicts(ext)
	if len(attrs) != 1 || attrs[0] != 0x0000 {
		t.Errorf("attr conflicts = %v, want [0]", attrs)
	}
	if len(cmds) != 0 {
		t.Errorf("command conflicts = %v, want none (different direction)", cmds)
	}
}
