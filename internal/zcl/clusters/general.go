package clusters

import "zigbee-quirks/internal/zcl"

var powerSource = &zcl.EnumDef{
	Name: "PowerSource",
	Type: zcl.TypeEnum8,
	Members: []zcl.EnumMember{
		{Name: "Unknown", Value: 0x00},
		{Name: "Mains_single_phase", Value: 0x01},
		{Name: "Mains_three_phase", Value: 0x02},
		{Name: "Battery", Value: 0x03},
		{Name: "DC_source", Value: 0x04},
		{Name: "Emergency_mains_constantly_powered", Value: 0x05},
		{Name: "Emergency_mains_and_transfer_switch", Value: 0x06},
	},
}

var Basic = zcl.ClusterDef{
	ID:   0x0000,
	Name: "Basic",
	Attributes: []zcl.AttributeDef{
		{ID: 0x0000, Name: "zcl_version", Type: zcl.TypeUint8, Access: zcl.AccessRead, Mandatory: true},
		{ID: 0x0001, Name: "app_version", Type: zcl.TypeUint8, Access: zcl.AccessRead},
		{ID: 0x0002, Name: "stack_version", Type: zcl.TypeUint8, Access: zcl.AccessRead},
		{ID: 0x0003, Name: "hw_version", Type: zcl.TypeUint8, Access: zcl.AccessRead},
		{ID: 0x0004, Name: "manufacturer", Type: zcl.TypeCharStr, Access: zcl.AccessRead},
		{ID: 0x0005, Name: "model", Type: zcl.TypeCharStr, Access: zcl.AccessRead},
		{ID: 0x0006, Name: "date_code", Type: zcl.TypeCharStr, Access: zcl.AccessRead},
		{ID: 0x0007, Name: "power_source", Type: zcl.TypeEnum8, Access: zcl.AccessRead, Mandatory: true, Enum: powerSource},
		{ID: 0x4000, Name: "sw_build_id", Type: zcl.TypeCharStr, Access: zcl.AccessRead},
	},
	Commands: []zcl.CommandDef{
		{ID: 0x00, Name: "reset_fact_default", Direction: zcl.DirectionToServer},
	},
}

var PowerConfiguration = zcl.ClusterDef{
	ID:   0x0001,
	Name: "Power Configuration",
	Attributes: []zcl.AttributeDef{
		{ID: 0x0000, Name: "mains_voltage", Type: zcl.TypeUint16, Access: zcl.AccessRead},
		{ID: 0x0001, Name: "mains_frequency", Type: zcl.TypeUint8, Access: zcl.AccessRead},
		{ID: 0x0020, Name: "battery_voltage", Type: zcl.TypeUint8, Access: zcl.AccessRead | zcl.AccessReport},
		{ID: 0x0021, Name: "battery_percentage_remaining", Type: zcl.TypeUint8, Access: zcl.AccessRead | zcl.AccessReport},
		{ID: 0x0031, Name: "battery_size", Type: zcl.TypeEnum8, Access: zcl.AccessRead | zcl.AccessWrite},
		{ID: 0x0033, Name: "battery_quantity", Type: zcl.TypeUint8, Access: zcl.AccessRead | zcl.AccessWrite},
		{ID: 0x0036, Name: "battery_voltage_min_threshold", Type: zcl.TypeUint8, Access: zcl.AccessRead | zcl.AccessWrite},
	},
}

var Identify = zcl.ClusterDef{
	ID:   0x0003,
	Name: "Identify",
	Attributes: []zcl.AttributeDef{
		{ID: 0x0000, Name: "identify_time", Type: zcl.TypeUint16, Access: zcl.AccessRead | zcl.AccessWrite, Mandatory: true},
	},
	Commands: []zcl.CommandDef{
		{ID: 0x00, Name: "identify", Direction: zcl.DirectionToServer, Params: []zcl.ParamDef{{Name: "identify_time", Type: zcl.TypeUint16}}},
		{ID: 0x01, Name: "identify_query", Direction: zcl.DirectionToServer},
		{ID: 0x40, Name: "trigger_effect", Direction: zcl.DirectionToServer, Params: []zcl.ParamDef{
			{Name: "effect_id", Type: zcl.TypeEnum8},
			{Name: "effect_variant", Type: zcl.TypeEnum8},
		}},
	},
}

var Groups = zcl.ClusterDef{
	ID:   0x0004,
	Name: "Groups",
	Attributes: []zcl.AttributeDef{
		{ID: 0x0000, Name: "name_support", Type: zcl.TypeBitmap8, Access: zcl.AccessRead, Mandatory: true},
	},
	Commands: []zcl.CommandDef{
		{ID: 0x00, Name: "add", Direction: zcl.DirectionToServer, Params: []zcl.ParamDef{
			{Name: "group_id", Type: zcl.TypeUint16},
			{Name: "group_name", Type: zcl.TypeCharStr},
		}},
		{ID: 0x01, Name: "view", Direction: zcl.DirectionToServer, Params: []zcl.ParamDef{{Name: "group_id", Type: zcl.TypeUint16}}},
		{ID: 0x03, Name: "remove", Direction: zcl.DirectionToServer, Params: []zcl.ParamDef{{Name: "group_id", Type: zcl.TypeUint16}}},
		{ID: 0x04, Name: "remove_all", Direction: zcl.DirectionToServer},
	},
}

var startUpOnOff = &zcl.EnumDef{
	Name: "StartUpOnOff",
	Type: zcl.TypeEnum8,
	Members: []zcl.EnumMember{
		{Name: "Off", Value: 0x00},
		{Name: "On", Value: 0x01},
		{Name: "Toggle", Value: 0x02},
		{Name: "PreviousValue", Value: 0xFF},
	},
}

var OnOff = zcl.ClusterDef{
	ID:   0x0006,
	Name: "On/Off",
	Attributes: []zcl.AttributeDef{
		{ID: 0x0000, Name: "on_off", Type: zcl.TypeBool, Access: zcl.AccessRead | zcl.AccessReport, Mandatory: true},
		{ID: 0x4000, Name: "global_scene_control", Type: zcl.TypeBool, Access: zcl.AccessRead},
		{ID: 0x4001, Name: "on_time", Type: zcl.TypeUint16, Access: zcl.AccessRead | zcl.AccessWrite},
		{ID: 0x4002, Name: "off_wait_time", Type: zcl.TypeUint16, Access: zcl.AccessRead | zcl.AccessWrite},
		{ID: 0x4003, Name: "start_up_on_off", Type: zcl.TypeEnum8, Access: zcl.AccessRead | zcl.AccessWrite, Enum: startUpOnOff},
	},
	Commands: []zcl.CommandDef{
		{ID: 0x00, Name: "off", Direction: zcl.DirectionToServer},
		{ID: 0x01, Name: "on", Direction: zcl.DirectionToServer},
		{ID: 0x02, Name: "toggle", Direction: zcl.DirectionToServer},
		{ID: 0x42, Name: "on_with_timed_off", Direction: zcl.DirectionToServer, Params: []zcl.ParamDef{
			{Name: "on_off_control", Type: zcl.TypeBitmap8},
			{Name: "on_time", Type: zcl.TypeUint16},
			{Name: "off_wait_time", Type: zcl.TypeUint16},
		}},
	},
}

var LevelControl = zcl.ClusterDef{
	ID:   0x0008,
	Name: "Level Control",
	Attributes: []zcl.AttributeDef{
		{ID: 0x0000, Name: "current_level", Type: zcl.TypeUint8, Access: zcl.AccessRead | zcl.AccessReport, Mandatory: true},
		{ID: 0x0001, Name: "remaining_time", Type: zcl.TypeUint16, Access: zcl.AccessRead},
		{ID: 0x000F, Name: "options", Type: zcl.TypeBitmap8, Access: zcl.AccessRead | zcl.AccessWrite},
		{ID: 0x0010, Name: "on_off_transition_time", Type: zcl.TypeUint16, Access: zcl.AccessRead | zcl.AccessWrite},
		{ID: 0x0011, Name: "on_level", Type: zcl.TypeUint8, Access: zcl.AccessRead | zcl.AccessWrite},
		{ID: 0x4000, Name: "start_up_current_level", Type: zcl.TypeUint8, Access: zcl.AccessRead | zcl.AccessWrite},
	},
	Commands: []zcl.CommandDef{
		{ID: 0x00, Name: "move_to_level", Direction: zcl.DirectionToServer, Params: []zcl.ParamDef{
			{Name: "level", Type: zcl.TypeUint8},
			{Name: "transition_time", Type: zcl.TypeUint16},
		}},
		{ID: 0x03, Name: "stop", Direction: zcl.DirectionToServer},
		{ID: 0x04, Name: "move_to_level_with_on_off", Direction: zcl.DirectionToServer, Params: []zcl.ParamDef{
			{Name: "level", Type: zcl.TypeUint8},
			{Name: "transition_time", Type: zcl.TypeUint16},
		}},
	},
}
