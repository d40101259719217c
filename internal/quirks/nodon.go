package quirks

import (
	"zigbee-quirks/internal/quirk"
	"zigbee-quirks/internal/zcl"
	"zigbee-quirks/internal/zdo"
)

const (
	NodOn = "NodOn"
	Adeo  = "Adeo"

	// NodOnManufacturerID is the manufacturer code NodOn firmware expects in
	// manufacturer-specific frames.
	NodOnManufacturerID uint16 = 4747

	// PilotWireClusterID is NodOn's manufacturer pilot wire cluster.
	PilotWireClusterID uint16 = 0xFC00
)

// NodOnPilotWireMode is the heating order sent over the pilot wire.
// Codes follow zigbee-herdsman-converters.
var NodOnPilotWireMode = &zcl.EnumDef{
	Name: "NodOnPilotWireMode",
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

// PilotWireCluster returns the pilot wire cluster schema. The device answers
// INVALID_DATA_TYPE to enum8 writes, so the mode goes out as uint8.
func PilotWireCluster() zcl.ClusterDef {
	return zcl.ClusterDef{
		ID:   PilotWireClusterID,
		Name: "PilotWireCluster",
		Attributes: []zcl.AttributeDef{{
			ID:                   0x0000,
			Name:                 "pilot_wire_mode",
			Type:                 zcl.TypeEnum8,
			WireType:             zcl.TypeUint8,
			Access:               zcl.AccessRead | zcl.AccessWrite,
			ManufacturerSpecific: true,
			Enum:                 NodOnPilotWireMode,
		}},
		Commands: []zcl.CommandDef{{
			ID:                   0x00,
			Name:                 "set_pilot_wire_mode",
			Direction:            zcl.DirectionToServer,
			Params:               []zcl.ParamDef{{Name: "mode", Type: zcl.TypeEnum8, Enum: NodOnPilotWireMode}},
			ManufacturerSpecific: true,
		}},
	}
}

// AdeoNodeDescriptor is the descriptor of a real Adeo SIN-4-FP-21_EQU with
// the manufacturer code corrected from 4727 to NodOn's.
var AdeoNodeDescriptor = zdo.NodeDescriptor{
	LogicalType:             zdo.Router,
	FrequencyBand:           zdo.Band2400MHz,
	MACCapabilityFlags:      142,
	ManufacturerCode:        NodOnManufacturerID,
	MaximumBufferSize:       82,
	MaximumIncomingTransfer: 500,
	ServerMask:              11264,
	MaximumOutgoingTransfer: 500,
}

// NodOnPilotWire builds the SIN-4-FP-21 pilot wire heating module quirk.
func NodOnPilotWire() *quirk.Builder {
	return quirk.NewBuilder(NodOn, "SIN-4-FP-21").
		Replaces(PilotWireCluster()).
		Enum("pilot_wire_mode", NodOnPilotWireMode, PilotWireClusterID,
			quirk.TranslationKey("pilot_wire", "Pilot Wire"))
}

// AdeoPilotWire derives the Adeo rebrand from nodon. Adeo reports 4727 in its
// node descriptor but only accepts frames tagged with 4747. The cluster-level
// override alone was not enough on real hardware; the descriptor override
// is what makes it work.
func AdeoPilotWire(nodon *quirk.Builder) *quirk.Builder {
	return nodon.Clone(true).
		AppliesTo(Adeo, "SIN-4-FP-21_EQU").
		Replaces(PilotWireCluster(), quirk.WithManufacturerID(NodOnManufacturerID)).
		NodeDescriptor(AdeoNodeDescriptor)
}

// NodOnImpulseSwitch builds the SIN-4-1-20 quirk: On/Off gains a
// manufacturer attribute holding the impulse duration in milliseconds, 0
// disabling impulse mode.
func NodOnImpulseSwitch() *quirk.Builder {
	return quirk.NewBuilder(NodOn, "SIN-4-1-20").
		Extends(zcl.ClusterDef{
			ID:   0x0006,
			Name: "NodOnOnOff",
			Attributes: []zcl.AttributeDef{{
				ID:                   0x0001,
				Name:                 "impulse_mode_duration",
				Type:                 zcl.TypeUint16,
				Access:               zcl.AccessRead | zcl.AccessWrite,
				ManufacturerSpecific: true,
			}},
		}).
		Number("impulse_mode_duration", 0x0006, 0, 10000, 1,
			quirk.Unit("ms"),
			quirk.DeviceClass("duration"),
			quirk.InitiallyDisabled(),
			quirk.TranslationKey("impulse_mode_duration", "Impulse mode duration"))
}

// NodOnDualSwitch builds the SIN-4-2-20 quirk, which hides the Level Control
// clusters the relay advertises but does not implement.
func NodOnDualSwitch() *quirk.Builder {
	return quirk.NewBuilder(NodOn, "SIN-4-2-20").
		Removes(0x0008, quirk.OnEndpoint(1)).
		Removes(0x0008, quirk.OnEndpoint(2))
}
