package clusters

import "zigbee-quirks/internal/zcl"

// measured builds the common MeasuredValue/Min/Max/Tolerance layout shared by
// the measurement and sensing clusters.
func measured(id uint16, name string, typeID uint8, extra ...zcl.AttributeDef) zcl.ClusterDef {
	attrs := []zcl.AttributeDef{
		{ID: 0x0000, Name: "measured_value", Type: typeID, Access: zcl.AccessRead | zcl.AccessReport, Mandatory: true},
		{ID: 0x0001, Name: "min_measured_value", Type: typeID, Access: zcl.AccessRead, Mandatory: true},
		{ID: 0x0002, Name: "max_measured_value", Type: typeID, Access: zcl.AccessRead, Mandatory: true},
		{ID: 0x0003, Name: "tolerance", Type: zcl.TypeUint16, Access: zcl.AccessRead},
	}
	return zcl.ClusterDef{ID: id, Name: name, Attributes: append(attrs, extra...)}
}

var IlluminanceMeasurement = measured(0x0400, "Illuminance Measurement", zcl.TypeUint16,
	zcl.AttributeDef{ID: 0x0004, Name: "light_sensor_type", Type: zcl.TypeEnum8, Access: zcl.AccessRead},
)

var TemperatureMeasurement = measured(0x0402, "Temperature Measurement", zcl.TypeInt16)

var PressureMeasurement = measured(0x0403, "Pressure Measurement", zcl.TypeInt16,
	zcl.AttributeDef{ID: 0x0010, Name: "scaled_value", Type: zcl.TypeInt16, Access: zcl.AccessRead | zcl.AccessReport},
	zcl.AttributeDef{ID: 0x0014, Name: "scale", Type: zcl.TypeInt8, Access: zcl.AccessRead},
)

var RelativeHumidity = measured(0x0405, "Relative Humidity", zcl.TypeUint16)

var OccupancySensing = zcl.ClusterDef{
	ID:   0x0406,
	Name: "Occupancy Sensing",
	Attributes: []zcl.AttributeDef{
		{ID: 0x0000, Name: "occupancy", Type: zcl.TypeBitmap8, Access: zcl.AccessRead | zcl.AccessReport, Mandatory: true},
		{ID: 0x0001, Name: "occupancy_sensor_type", Type: zcl.TypeEnum8, Access: zcl.AccessRead, Mandatory: true},
		{ID: 0x0010, Name: "pir_o_to_u_delay", Type: zcl.TypeUint16, Access: zcl.AccessRead | zcl.AccessWrite},
	},
}

// PM25Measurement is the particulate matter cluster; values are float32 like
// the manufacturer VOC index cluster that accompanies it on air sensors.
var PM25Measurement = measured(0x042A, "PM2.5 Measurement", zcl.TypeFloat32)
