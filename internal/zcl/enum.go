package zcl

import (
	"errors"
	"fmt"
)

// ErrWireTypeMismatch is returned when an attribute's semantic type and its
// declared wire encoding cannot represent the same values.
var ErrWireTypeMismatch = errors.New("wire type mismatch")

// EnumMember is one named value of an enumeration.
type EnumMember struct {
	Name  string `json:"name" yaml:"name"`
	Value uint64 `json:"value" yaml:"value"`
}

func (m EnumMember) String() string {
	return m.Name
}

// EnumDef is a named enumeration backed by an explicit integer width.
type EnumDef struct {
	Name    string       `json:"name"`
	Type    uint8        `json:"type"` // TypeEnum8 or TypeEnum16
	Members []EnumMember `json:"members"`
}

// Member returns the member with the given value.
func (e *EnumDef) Member(v uint64) (EnumMember, bool) {
	for _, m := range e.Members {
		if m.Value == v {
			return m, true
		}
	}
	return EnumMember{}, false
}

// MemberByName returns the member with the given name.
func (e *EnumDef) MemberByName(name string) (EnumMember, bool) {
	for _, m := range e.Members {
		if m.Name == name {
			return m, true
		}
	}
	return EnumMember{}, false
}

// Names returns member names in declaration order.
func (e *EnumDef) Names() []string {
	names := make([]string, len(e.Members))
	for i, m := range e.Members {
		names[i] = m.Name
	}
	return names
}

// Resolve maps a member name, EnumMember or integer to a defined member.
func (e *EnumDef) Resolve(v interface{}) (EnumMember, error) {
	switch val := v.(type) {
	case string:
		if m, ok := e.MemberByName(val); ok {
			return m, nil
		}
		return EnumMember{}, fmt.Errorf("zcl: %q is not a member of %s", val, e.Name)
	case EnumMember:
		v = val.Value
	}
	n, ok := toUint64(v)
	if !ok {
		return EnumMember{}, fmt.Errorf("zcl: cannot convert %T to %s", v, e.Name)
	}
	m, ok := e.Member(n)
	if !ok {
		return EnumMember{}, fmt.Errorf("zcl: 0x%02X is not a member of %s", n, e.Name)
	}
	return m, nil
}

// validate checks the enum against its own width.
func (e *EnumDef) validate() error {
	if TypeClassOf(e.Type) != ClassEnum {
		return fmt.Errorf("enum %s: backing type %s is not an enumeration: %w", e.Name, TypeName(e.Type), ErrWireTypeMismatch)
	}
	if len(e.Members) == 0 {
		return fmt.Errorf("enum %s has no members", e.Name)
	}
	if err := e.fits(e.Type); err != nil {
		return fmt.Errorf("enum %s: %w", e.Name, err)
	}
	return nil
}

func (e *EnumDef) fits(typeID uint8) error {
	max := uint64(1)<<uint(TypeBits(typeID)) - 1
	for _, m := range e.Members {
		if m.Value > max {
			return fmt.Errorf("member %s=0x%X does not fit %s: %w", m.Name, m.Value, TypeName(typeID), ErrWireTypeMismatch)
		}
	}
	return nil
}

// CheckWireType validates that an attribute's semantic type and wire encoding
// agree. Enumerations must declare an enum semantic type; a differing wire
// encoding must be declared through WireType and be able to carry every member.
func CheckWireType(a *AttributeDef) error {
	if !KnownType(a.Type) {
		return fmt.Errorf("attribute %s (0x%04X): unknown type 0x%02X: %w", a.Name, a.ID, a.Type, ErrWireTypeMismatch)
	}
	if a.Enum != nil {
		if TypeClassOf(a.Type) != ClassEnum {
			return fmt.Errorf("attribute %s (0x%04X): enum %s declared with non-enum type %s: %w",
				a.Name, a.ID, a.Enum.Name, TypeName(a.Type), ErrWireTypeMismatch)
		}
		if err := a.Enum.validate(); err != nil {
			return fmt.Errorf("attribute %s (0x%04X): %w", a.Name, a.ID, err)
		}
		if TypeBits(a.Enum.Type) > TypeBits(a.Type) {
			if err := a.Enum.fits(a.Type); err != nil {
				return fmt.Errorf("attribute %s (0x%04X): %w", a.Name, a.ID, err)
			}
		}
	}
	if a.WireType == 0 || a.WireType == a.Type {
		return nil
	}
	if !KnownType(a.WireType) {
		return fmt.Errorf("attribute %s (0x%04X): unknown wire type 0x%02X: %w", a.Name, a.ID, a.WireType, ErrWireTypeMismatch)
	}
	if !compatibleClasses(TypeClassOf(a.Type), TypeClassOf(a.WireType)) {
		return fmt.Errorf("attribute %s (0x%04X): %s cannot be sent as %s: %w",
			a.Name, a.ID, TypeName(a.Type), TypeName(a.WireType), ErrWireTypeMismatch)
	}
	if a.Enum != nil {
		if err := a.Enum.fits(a.WireType); err != nil {
			return fmt.Errorf("attribute %s (0x%04X): %w", a.Name, a.ID, err)
		}
	}
	return nil
}

// CheckParamType validates a command parameter the same way as an attribute.
func CheckParamType(p *ParamDef) error {
	if !KnownType(p.Type) {
		return fmt.Errorf("param %s: unknown type 0x%02X: %w", p.Name, p.Type, ErrWireTypeMismatch)
	}
	if p.Enum == nil {
		return nil
	}
	if !IsIntegerType(p.Type) {
		return fmt.Errorf("param %s: enum %s sent as %s: %w", p.Name, p.Enum.Name, TypeName(p.Type), ErrWireTypeMismatch)
	}
	if err := p.Enum.validate(); err != nil {
		return fmt.Errorf("param %s: %w", p.Name, err)
	}
	return p.Enum.fits(p.Type)
}

func compatibleClasses(semantic, wire TypeClass) bool {
	integer := func(c TypeClass) bool {
		return c == ClassUnsigned || c == ClassSigned || c == ClassEnum || c == ClassBitmap
	}
	switch {
	case integer(semantic):
		return integer(wire)
	case semantic == ClassString || semantic == ClassOctets:
		return wire == ClassString || wire == ClassOctets
	}
	return semantic == wire
}

// EncodeAttribute encodes v for attribute a using its wire encoding. Enum
// attributes accept member names, EnumMember values or integers, and reject
// values that are not defined members.
func EncodeAttribute(a *AttributeDef, v interface{}) ([]byte, error) {
	if a.Enum != nil {
		m, err := a.Enum.Resolve(v)
		if err != nil {
			return nil, fmt.Errorf("attribute %s: %w", a.Name, err)
		}
		v = m.Value
	}
	return EncodeValue(a.EncodingType(), v)
}

// DecodeAttribute decodes data received with the given ZCL type for attribute a.
// Integer values of enum attributes are mapped back to their EnumMember; values
// outside the enumeration are returned as plain integers.
func DecodeAttribute(a *AttributeDef, typeID uint8, data []byte) (interface{}, int, error) {
	val, n, err := DecodeValue(typeID, data)
	if err != nil || a == nil || a.Enum == nil {
		return val, n, err
	}
	if raw, ok := toUint64(val); ok {
		if m, ok := a.Enum.Member(raw); ok {
			return m, n, nil
		}
	}
	return val, n, nil
}

// EncodeCommand encodes a command payload from ordered arguments.
func EncodeCommand(c *CommandDef, args ...interface{}) ([]byte, error) {
	if len(args) != len(c.Params) {
		return nil, fmt.Errorf("zcl: command %s takes %d arguments, got %d", c.Name, len(c.Params), len(args))
	}
	var payload []byte
	for i, p := range c.Params {
		v := args[i]
		if p.Enum != nil {
			m, err := p.Enum.Resolve(v)
			if err != nil {
				return nil, fmt.Errorf("command %s param %s: %w", c.Name, p.Name, err)
			}
			v = m.Value
		}
		b, err := EncodeValue(p.Type, v)
		if err != nil {
			return nil, fmt.Errorf("command %s param %s: %w", c.Name, p.Name, err)
		}
		payload = append(payload, b...)
	}
	return payload, nil
}
