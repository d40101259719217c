package zcl

import (
	"fmt"
	"strings"
)

// Access flags
const (
	AccessRead   uint8 = 0x01
	AccessWrite  uint8 = 0x02
	AccessReport uint8 = 0x04
)

// ParseAccess converts a compact access string ("r", "rw", "rp", "rwp") into flags.
func ParseAccess(s string) (uint8, error) {
	var access uint8
	for _, c := range strings.ToLower(s) {
		switch c {
		case 'r':
			access |= AccessRead
		case 'w':
			access |= AccessWrite
		case 'p':
			access |= AccessReport
		default:
			return 0, fmt.Errorf("zcl: invalid access flag %q in %q", c, s)
		}
	}
	return access, nil
}

// AttributeDef defines a ZCL attribute.
//
// Type is the semantic type of the attribute. WireType, when non-zero, is the
// encoding actually used in frames; it must be declared whenever the device
// expects a different wire type than the semantic one (for example an enum8
// sent as uint8).
type AttributeDef struct {
	ID                   uint16   `json:"id"`
	Name                 string   `json:"name"`
	Type                 uint8    `json:"type"`
	WireType             uint8    `json:"wire_type,omitempty"`
	Access               uint8    `json:"access"` // bitmask: 1=read, 2=write, 4=reportable
	Mandatory            bool     `json:"mandatory,omitempty"`
	ManufacturerSpecific bool     `json:"manufacturer_specific,omitempty"`
	Enum                 *EnumDef `json:"enum,omitempty"`
}

// IsReadable returns true if the attribute can be read.
func (a *AttributeDef) IsReadable() bool {
	return a.Access&AccessRead != 0
}

// IsWritable returns true if the attribute can be written.
func (a *AttributeDef) IsWritable() bool {
	return a.Access&AccessWrite != 0
}

// IsReportable returns true if the attribute supports reporting.
func (a *AttributeDef) IsReportable() bool {
	return a.Access&AccessReport != 0
}

// EncodingType returns the ZCL type used on the wire.
func (a *AttributeDef) EncodingType() uint8 {
	if a.WireType != 0 {
		return a.WireType
	}
	return a.Type
}

// CommandDirection indicates the direction of a cluster command.
type CommandDirection string

const (
	DirectionToServer CommandDirection = "toServer"
	DirectionToClient CommandDirection = "toClient"
)

// ParamDef is one field of a command payload. Fields are encoded in order.
type ParamDef struct {
	Name string   `json:"name"`
	Type uint8    `json:"type"`
	Enum *EnumDef `json:"enum,omitempty"`
}

// CommandDef defines a cluster-specific command.
type CommandDef struct {
	ID                   uint8            `json:"id"`
	Name                 string           `json:"name"`
	Direction            CommandDirection `json:"direction"`
	Params               []ParamDef       `json:"params,omitempty"`
	ManufacturerSpecific bool             `json:"manufacturer_specific,omitempty"`
}

// ClusterDef defines a ZCL cluster with its attributes and commands.
type ClusterDef struct {
	ID         uint16         `json:"id"`
	Name       string         `json:"name"`
	Attributes []AttributeDef `json:"attributes,omitempty"`
	Commands   []CommandDef   `json:"commands,omitempty"`
}

// IsManufacturerCluster reports whether id lies in the manufacturer-specific range.
func IsManufacturerCluster(id uint16) bool {
	return id >= 0xFC00
}

// FindAttribute looks up an attribute by ID.
func (c *ClusterDef) FindAttribute(id uint16) *AttributeDef {
	for i := range c.Attributes {
		if c.Attributes[i].ID == id {
			return &c.Attributes[i]
		}
	}
	return nil
}

// FindAttributeByName looks up an attribute by name.
func (c *ClusterDef) FindAttributeByName(name string) *AttributeDef {
	for i := range c.Attributes {
		if c.Attributes[i].Name == name {
			return &c.Attributes[i]
		}
	}
	return nil
}

// FindCommand looks up a command by ID and direction.
func (c *ClusterDef) FindCommand(id uint8, dir CommandDirection) *CommandDef {
	for i := range c.Commands {
		if c.Commands[i].ID == id && c.Commands[i].Direction == dir {
			return &c.Commands[i]
		}
	}
	return nil
}

// FindCommandByName looks up a command by name.
func (c *ClusterDef) FindCommandByName(name string) *CommandDef {
	for i := range c.Commands {
		if c.Commands[i].Name == name {
			return &c.Commands[i]
		}
	}
	return nil
}

// DeepCopy returns a deep copy of the cluster definition.
// Enum definitions are shared; they are immutable once declared.
func (c *ClusterDef) DeepCopy() *ClusterDef {
	cp := *c
	if c.Attributes != nil {
		cp.Attributes = make([]AttributeDef, len(c.Attributes))
		copy(cp.Attributes, c.Attributes)
	}
	if c.Commands != nil {
		cp.Commands = make([]CommandDef, len(c.Commands))
		for i, cmd := range c.Commands {
			cp.Commands[i] = cmd
			if cmd.Params != nil {
				cp.Commands[i].Params = append([]ParamDef(nil), cmd.Params...)
			}
		}
	}
	return &cp
}

// Merge adds attributes and commands from another definition that are not
// already present. Existing entries are never modified.
func (c *ClusterDef) Merge(other *ClusterDef) {
	for _, attr := range other.Attributes {
		if c.FindAttribute(attr.ID) == nil {
			c.Attributes = append(c.Attributes, attr)
		}
	}
	for _, cmd := range other.Commands {
		if c.FindCommand(cmd.ID, cmd.Direction) == nil {
			c.Commands = append(c.Commands, cmd)
		}
	}
}

// Conflicts returns the attribute IDs and command IDs of other that already
// exist in c.
func (c *ClusterDef) Conflicts(other *ClusterDef) (attrs []uint16, cmds []uint8) {
	for _, attr := range other.Attributes {
		if c.FindAttribute(attr.ID) != nil {
			attrs = append(attrs, attr.ID)
		}
	}
	for _, cmd := range other.Commands {
		if c.FindCommand(cmd.ID, cmd.Direction) != nil {
			cmds = append(cmds, cmd.ID)
		}
	}
	return attrs, cmds
}
