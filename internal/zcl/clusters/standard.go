// Package clusters holds the standard ZCL cluster definitions that quirks
// extend and that exposed entities may reference.
package clusters

import "zigbee-quirks/internal/zcl"

// Standard returns the standard cluster catalog in cluster ID order.
func Standard() []zcl.ClusterDef {
	return []zcl.ClusterDef{
		Basic,                  // 0x0000
		PowerConfiguration,     // 0x0001
		Identify,               // 0x0003
		Groups,                 // 0x0004
		OnOff,                  // 0x0006
		LevelControl,           // 0x0008
		IlluminanceMeasurement, // 0x0400
		TemperatureMeasurement, // 0x0402
		PressureMeasurement,    // 0x0403
		RelativeHumidity,       // 0x0405
		OccupancySensing,       // 0x0406
		PM25Measurement,        // 0x042A
	}
}

// RegisterStandard adds the standard catalog to r.
func RegisterStandard(r *zcl.Registry) {
	for _, c := range Standard() {
		r.Register(c)
	}
}
