package quirks

import (
	"zigbee-quirks/internal/quirk"
	"zigbee-quirks/internal/zcl"
)

const (
	IKEA = "IKEA of Sweden"

	// VOCIndexClusterID is the VINDSTYRKA manufacturer cluster carrying the VOC index.
	VOCIndexClusterID uint16 = 0xFC7E
)

// VOCIndexCluster returns the VINDSTYRKA VOC index cluster schema.
func VOCIndexCluster() zcl.ClusterDef {
	attr := func(id uint16, name string, access uint8) zcl.AttributeDef {
		return zcl.AttributeDef{
			ID:                   id,
			Name:                 name,
			Type:                 zcl.TypeFloat32,
			Access:               access,
			Mandatory:            true,
			ManufacturerSpecific: true,
		}
	}
	return zcl.ClusterDef{
		ID:   VOCIndexClusterID,
		Name: "VOCIndex",
		Attributes: []zcl.AttributeDef{
			attr(0x0000, "measured_value", zcl.AccessRead|zcl.AccessReport),
			attr(0x0001, "measured_min_value", zcl.AccessRead),
			attr(0x0002, "measured_max_value", zcl.AccessRead),
		},
	}
}

// IKEAVindstyrka builds the VINDSTYRKA air quality sensor quirk.
func IKEAVindstyrka() *quirk.Builder {
	return quirk.NewBuilder(IKEA, "VINDSTYRKA").
		Replaces(VOCIndexCluster()).
		Sensor("measured_value", VOCIndexClusterID,
			quirk.DeviceClass("aqi"),
			quirk.StateClass("measurement"),
			quirk.Reporting(60, 120, 1),
			quirk.TranslationKey("voc_index", "VOC index"))
}
