package zcl

import (
	"bytes"
	"testing"
)

func TestFrameHeaderManufacturerSpecific(t *testing.T) {
	h := FrameHeader{
		FrameControl:     FrameTypeCluster | FrameManufacturerSpecific | FrameDisableDefaultResp,
		ManufacturerCode: 4747,
		Seq:              7,
		CommandID:        0x00,
	}
	encoded := h.Encode()
	want := []byte{0x15, 0x8B, 0x12, 0x07, 0x00}
	if !bytes.Equal(encoded, want) {
		t.Fatalf("Encode = % X, want % X", encoded, want)
	}

	got, rest, err := ParseFrameHeader(append(encoded, 0x03))
	if err != nil {
		t.Fatal(err)
	}
	if got != h {
		t.Errorf("parsed %+v, want %+v", got, h)
	}
	if !bytes.Equal(rest, []byte{0x03}) {
		t.Errorf("payload = % X, want 03", rest)
	}
	if !got.IsClusterCommand() {
		t.Error("cluster frame type not detected")
	}
}

func TestFrameHeaderStandard(t *testing.T) {
	h := FrameHeader{FrameControl: FrameTypeGlobal, ManufacturerCode: 4747, Seq: 1, CommandID: FoundationReadAttributes}
	if encoded := h.Encode(); !bytes.Equal(encoded, []byte{0x00, 0x01, 0x00}) {
		t.Errorf("Encode = % X, manufacturer code must not be sent without the frame control bit", encoded)
	}
	if _, _, err := ParseFrameHeader([]byte{0x04, 0x8B}); err == nil {
		t.Error("expected error for truncated manufacturer-specific header")
	}
}

func TestValueLength(t *testing.T) {
	tests := []struct {
		name   string
		typeID uint8
		data   []byte
		want   int
		ok     bool
	}{
		{"uint16", TypeUint16, []byte{1, 2, 3}, 2, true},
		{"float32 short", TypeFloat32, []byte{1, 2}, 4, false},
		{"string", TypeCharStr, []byte{2, 'H', 'i', 0}, 3, true},
		{"string invalid", TypeCharStr, []byte{0xFF}, 1, true},
		{"octstr16", TypeOctetStr16, []byte{1, 0, 0xAA}, 3, true},
		{"array", TypeArray, []byte{0x20, 1, 0}, 0, false},
		{"unknown", 0x50, []byte{0}, 0, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			n, ok := ValueLength(tt.typeID, tt.data)
			if n != tt.want || ok != tt.ok {
				t.Errorf("ValueLength = %d, %v; want %d, %v", n, ok, tt.want, tt.ok)
			}
		})
	}
}
