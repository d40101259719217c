package quirk

import (
	"log/slog"
	"os"
	"testing"

	"zigbee-quirks/internal/zcl"
	"zigbee-quirks/internal/zcl/clusters"
	"zigbee-quirks/internal/zdo"
)

func newTestLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))
}

func newStandard(t *testing.T) *zcl.Registry {
	t.Helper()
	std := zcl.NewRegistry(newTestLogger())
	clusters.RegisterStandard(std)
	return std
}

func newTestRegistry(t *testing.T) *Registry {
	t.Helper()
	return NewRegistry(newStandard(t), newTestLogger())
}

var testPilotWireMode = &zcl.EnumDef{
	Name: "PilotWireMode",
	Type: zcl.TypeEnum8,
	Members: []zcl.EnumMember{
		{Name: "Off", Value: 0x00},
		{Name: "Comfort", Value: 0x01},
		{Name: "Eco", Value: 0x02},
		{Name: "FrostProtection", Value: 0x03},
		{Name: "ComfortMinus1", Value: 0x04},
		{Name: "ComfortMinus2", Value: 0x05},
	},
}

func testPilotWireCluster() zcl.ClusterDef {
	return zcl.ClusterDef{
		ID:   0xFC00,
		Name: "PilotWireCluster",
		Attributes: []zcl.AttributeDef{{
			ID:                   0x0000,
			Name:                 "pilot_wire_mode",
			Type:                 zcl.TypeEnum8,
			WireType:             zcl.TypeUint8,
			Access:               zcl.AccessRead | zcl.AccessWrite,
			ManufacturerSpecific: true,
			Enum:                 testPilotWireMode,
		}},
		Commands: []zcl.CommandDef{{
			ID:                   0x00,
			Name:                 "set_pilot_wire_mode",
			Direction:            zcl.DirectionToServer,
			Params:               []zcl.ParamDef{{Name: "mode", Type: zcl.TypeEnum8, Enum: testPilotWireMode}},
			ManufacturerSpecific: true,
		}},
	}
}

func testImpulseExtension() zcl.ClusterDef {
	return zcl.ClusterDef{
		ID: 0x0006,
		Attributes: []zcl.AttributeDef{{
			ID:                   0x0001,
			Name:                 "impulse_mode_duration",
			Type:                 zcl.TypeUint16,
			Access:               zcl.AccessRead | zcl.AccessWrite,
			ManufacturerSpecific: true,
		}},
	}
}

var testAdeoDescriptor = zdo.NodeDescriptor{
	LogicalType:             zdo.Router,
	FrequencyBand:           zdo.Band2400MHz,
	MACCapabilityFlags:      142,
	ManufacturerCode:        4747,
	MaximumBufferSize:       82,
	MaximumIncomingTransfer: 500,
	ServerMask:              11264,
	MaximumOutgoingTransfer: 500,
}

func nodOnPilotWire() *Builder {
	return NewBuilder("NodOn", "SIN-4-FP-21").
		Replaces(testPilotWireCluster()).
		Enum("pilot_wire_mode", testPilotWireMode, 0xFC00, TranslationKey("pilot_wire", "Pilot Wire"))
}
