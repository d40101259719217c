// Package zdo implements the parts of the Zigbee Device Object layer the
// quirk engine needs to correct: the node descriptor.
package zdo

import (
	"encoding/binary"
	"fmt"
)

// LogicalType is the node's role in the network.
type LogicalType uint8

const (
	Coordinator LogicalType = 0
	Router      LogicalType = 1
	EndDevice   LogicalType = 2
)

func (t LogicalType) String() string {
	switch t {
	case Coordinator:
		return "Coordinator"
	case Router:
		return "Router"
	case EndDevice:
		return "EndDevice"
	}
	return fmt.Sprintf("LogicalType(%d)", uint8(t))
}

// Frequency band bits (stored in the upper five bits of byte 1).
const (
	Band868MHz  uint8 = 0x01
	Band902MHz  uint8 = 0x04
	Band2400MHz uint8 = 0x08
)

// MAC capability flags.
const (
	MACAlternatePANCoordinator uint8 = 0x01
	MACFullFunctionDevice      uint8 = 0x02
	MACMainsPowered            uint8 = 0x04
	MACRxOnWhenIdle            uint8 = 0x08
	MACSecurityCapable         uint8 = 0x40
	MACAllocateAddress         uint8 = 0x80
)

// NodeDescriptorSize is the encoded length of a node descriptor.
const NodeDescriptorSize = 13

// NodeDescriptor is the device-wide capability record reported during
// discovery.
type NodeDescriptor struct {
	LogicalType                LogicalType `json:"logical_type" yaml:"logical_type"`
	ComplexDescriptorAvailable bool        `json:"complex_descriptor_available" yaml:"complex_descriptor_available"`
	UserDescriptorAvailable    bool        `json:"user_descriptor_available" yaml:"user_descriptor_available"`
	Reserved                   uint8       `json:"reserved" yaml:"reserved"`
	APSFlags                   uint8       `json:"aps_flags" yaml:"aps_flags"`
	FrequencyBand              uint8       `json:"frequency_band" yaml:"frequency_band"`
	MACCapabilityFlags         uint8       `json:"mac_capability_flags" yaml:"mac_capability_flags"`
	ManufacturerCode           uint16      `json:"manufacturer_code" yaml:"manufacturer_code"`
	MaximumBufferSize          uint8       `json:"maximum_buffer_size" yaml:"maximum_buffer_size"`
	MaximumIncomingTransfer    uint16      `json:"maximum_incoming_transfer_size" yaml:"maximum_incoming_transfer_size"`
	ServerMask                 uint16      `json:"server_mask" yaml:"server_mask"`
	MaximumOutgoingTransfer    uint16      `json:"maximum_outgoing_transfer_size" yaml:"maximum_outgoing_transfer_size"`
	DescriptorCapabilityField  uint8       `json:"descriptor_capability_field" yaml:"descriptor_capability_field"`
}

// ParseNodeDescriptor decodes a node descriptor from its ZDO wire form.
func ParseNodeDescriptor(data []byte) (NodeDescriptor, error) {
	if len(data) < NodeDescriptorSize {
		return NodeDescriptor{}, fmt.Errorf("zdo: node descriptor too short: %d bytes, need %d", len(data), NodeDescriptorSize)
	}
	return NodeDescriptor{
		LogicalType:                LogicalType(data[0] & 0x07),
		ComplexDescriptorAvailable: data[0]&0x08 != 0,
		UserDescriptorAvailable:    data[0]&0x10 != 0,
		Reserved:                   data[0] >> 5,
		APSFlags:                   data[1] & 0x07,
		FrequencyBand:              data[1] >> 3,
		MACCapabilityFlags:         data[2],
		ManufacturerCode:           binary.LittleEndian.Uint16(data[3:5]),
		MaximumBufferSize:          data[5],
		MaximumIncomingTransfer:    binary.LittleEndian.Uint16(data[6:8]),
		ServerMask:                 binary.LittleEndian.Uint16(data[8:10]),
		MaximumOutgoingTransfer:    binary.LittleEndian.Uint16(data[10:12]),
		DescriptorCapabilityField:  data[12],
	}, nil
}

// Encode returns the ZDO wire form of the descriptor.
func (n NodeDescriptor) Encode() []byte {
	buf := make([]byte, NodeDescriptorSize)
	buf[0] = uint8(n.LogicalType)&0x07 | n.Reserved<<5
	if n.ComplexDescriptorAvailable {
		buf[0] |= 0x08
	}
	if n.UserDescriptorAvailable {
		buf[0] |= 0x10
	}
	buf[1] = n.APSFlags&0x07 | n.FrequencyBand<<3
	buf[2] = n.MACCapabilityFlags
	binary.LittleEndian.PutUint16(buf[3:5], n.ManufacturerCode)
	buf[5] = n.MaximumBufferSize
	binary.LittleEndian.PutUint16(buf[6:8], n.MaximumIncomingTransfer)
	binary.LittleEndian.PutUint16(buf[8:10], n.ServerMask)
	binary.LittleEndian.PutUint16(buf[10:12], n.MaximumOutgoingTransfer)
	buf[12] = n.DescriptorCapabilityField
	return buf
}

// IsMainsPowered reports whether the MAC capability flags declare mains power.
func (n NodeDescriptor) IsMainsPowered() bool {
	return n.MACCapabilityFlags&MACMainsPowered != 0
}

// RxOnWhenIdle reports whether the node keeps its receiver on; sleepy end
// devices clear this bit.
func (n NodeDescriptor) RxOnWhenIdle() bool {
	return n.MACCapabilityFlags&MACRxOnWhenIdle != 0
}

// IsRouter reports whether the node routes traffic.
func (n NodeDescriptor) IsRouter() bool {
	return n.LogicalType == Router
}
