package quirk

import (
	"fmt"
	"math"
	"strings"

	"zigbee-quirks/internal/zcl"
)

// Platform is the presentation kind of an exposed entity.
type Platform string

const (
	PlatformSensor       Platform = "sensor"
	PlatformBinarySensor Platform = "binary_sensor"
	PlatformNumber       Platform = "number"
	PlatformSelect       Platform = "select"
	PlatformSwitch       Platform = "switch"
)

// Writable reports whether entities of this platform accept values.
func (p Platform) Writable() bool {
	return p == PlatformNumber || p == PlatformSelect || p == PlatformSwitch
}

// EntityCategory groups entities in the consumer's UI.
type EntityCategory string

const (
	CategoryStandard   EntityCategory = ""
	CategoryConfig     EntityCategory = "config"
	CategoryDiagnostic EntityCategory = "diagnostic"
)

// NumberMode is the preferred input control for number entities.
type NumberMode string

const (
	NumberModeAuto   NumberMode = "auto"
	NumberModeBox    NumberMode = "box"
	NumberModeSlider NumberMode = "slider"
)

// NumberConstraints bound the values a number entity accepts.
type NumberConstraints struct {
	Min  float64    `json:"min" yaml:"min"`
	Max  float64    `json:"max" yaml:"max"`
	Step float64    `json:"step" yaml:"step"`
	Mode NumberMode `json:"mode,omitempty" yaml:"mode,omitempty"`
}

// ReportingConfig is the attribute reporting requested from the device.
type ReportingConfig struct {
	MinInterval      uint16  `json:"min_interval" yaml:"min_interval"`
	MaxInterval      uint16  `json:"max_interval" yaml:"max_interval"`
	ReportableChange float64 `json:"reportable_change" yaml:"reportable_change"`
}

// Entity is one attribute exposed to the home automation consumer.
type Entity struct {
	Endpoint          uint8              `json:"endpoint"`
	ClusterID         uint16             `json:"cluster_id"`
	AttributeName     string             `json:"attribute"`
	AttributeID       uint16             `json:"attribute_id"`
	Platform          Platform           `json:"platform"`
	Category          EntityCategory     `json:"category,omitempty"`
	Number            *NumberConstraints `json:"number,omitempty"`
	Enum              *zcl.EnumDef       `json:"enum,omitempty"`
	Unit              string             `json:"unit,omitempty"`
	DeviceClass       string             `json:"device_class,omitempty"`
	StateClass        string             `json:"state_class,omitempty"`
	Reporting         *ReportingConfig   `json:"reporting,omitempty"`
	TranslationKey    string             `json:"translation_key,omitempty"`
	FallbackName      string             `json:"fallback_name,omitempty"`
	InitiallyDisabled bool               `json:"initially_disabled,omitempty"`

	// Attribute is the resolved definition, filled in when the quirk is built.
	Attribute zcl.AttributeDef `json:"-"`
}

// ID returns the entity's stable identifier within its device.
func (e *Entity) ID() string {
	key := e.TranslationKey
	if key == "" {
		key = e.AttributeName
	}
	return fmt.Sprintf("%s_%d", key, e.Endpoint)
}

// Name returns the human readable name.
func (e *Entity) Name() string {
	if e.FallbackName != "" {
		return e.FallbackName
	}
	return strings.ReplaceAll(e.AttributeName, "_", " ")
}

// Validate checks v against the entity's constraints. Values are rejected,
// never clamped.
func (e *Entity) Validate(v interface{}) error {
	_, err := e.Coerce(v)
	return err
}

// Coerce validates v and returns the value to encode for the attribute.
func (e *Entity) Coerce(v interface{}) (interface{}, error) {
	switch e.Platform {
	case PlatformNumber:
		f, ok := zcl.ToFloat64(v)
		if !ok || math.IsNaN(f) || math.IsInf(f, 0) {
			return nil, fmt.Errorf("%s: %v is not a number: %w", e.ID(), v, ErrValueRejected)
		}
		c := e.Number
		if f < c.Min || f > c.Max {
			return nil, fmt.Errorf("%s: %v outside %v..%v: %w", e.ID(), f, c.Min, c.Max, ErrValueRejected)
		}
		if c.Step > 0 {
			n := (f - c.Min) / c.Step
			if math.Abs(n-math.Round(n)) > 1e-9 {
				return nil, fmt.Errorf("%s: %v is not a multiple of step %v from %v: %w", e.ID(), f, c.Step, c.Min, ErrValueRejected)
			}
		}
		return f, nil
	case PlatformSelect:
		m, err := e.Enum.Resolve(v)
		if err != nil {
			return nil, fmt.Errorf("%s: %v: %w", e.ID(), err, ErrValueRejected)
		}
		return m, nil
	case PlatformSwitch:
		b, ok := v.(bool)
		if !ok {
			return nil, fmt.Errorf("%s: %v is not a boolean: %w", e.ID(), v, ErrValueRejected)
		}
		return b, nil
	}
	return nil, fmt.Errorf("%s: %s entity is read-only: %w", e.ID(), e.Platform, ErrValueRejected)
}

// State converts a decoded attribute value into the value reported to the
// consumer: member names for selects, numbers as float64.
func (e *Entity) State(v interface{}) interface{} {
	switch val := v.(type) {
	case zcl.EnumMember:
		return val.Name
	case bool, string:
		return val
	}
	if e.Platform == PlatformSelect && e.Enum != nil {
		if n, ok := zcl.ToUint64(v); ok {
			if m, ok := e.Enum.Member(n); ok {
				return m.Name
			}
		}
	}
	if e.Platform == PlatformBinarySensor {
		if n, ok := zcl.ToUint64(v); ok {
			return n != 0
		}
	}
	if f, ok := zcl.ToFloat64(v); ok {
		return f
	}
	return v
}

func (e Entity) clone() Entity {
	cp := e
	if e.Number != nil {
		n := *e.Number
		cp.Number = &n
	}
	if e.Reporting != nil {
		r := *e.Reporting
		cp.Reporting = &r
	}
	return cp
}

// check validates the entity declaration against the resolved attribute.
func (e *Entity) check() error {
	switch e.Platform {
	case PlatformNumber:
		if e.Number == nil {
			return fmt.Errorf("number %s: no constraints: %w", e.ID(), ErrIncompleteBuild)
		}
		if e.Number.Min > e.Number.Max || e.Number.Step <= 0 {
			return fmt.Errorf("number %s: invalid range %v..%v step %v: %w",
				e.ID(), e.Number.Min, e.Number.Max, e.Number.Step, ErrIncompleteBuild)
		}
		if zcl.IsIntegerType(e.Attribute.EncodingType()) {
			for _, f := range []float64{e.Number.Min, e.Number.Max, e.Number.Step} {
				if f != math.Trunc(f) {
					return fmt.Errorf("number %s: %v on integer attribute %s: %w", e.ID(), f, e.AttributeName, ErrIncompleteBuild)
				}
			}
		}
	case PlatformSelect:
		if e.Enum == nil {
			return fmt.Errorf("select %s: no enumeration: %w", e.ID(), ErrIncompleteBuild)
		}
	case PlatformSensor, PlatformBinarySensor, PlatformSwitch:
	default:
		return fmt.Errorf("entity %s: unknown platform %q: %w", e.ID(), e.Platform, ErrIncompleteBuild)
	}
	if e.Platform.Writable() && !e.Attribute.IsWritable() {
		return fmt.Errorf("%s %s: attribute %s is not writable: %w", e.Platform, e.ID(), e.AttributeName, ErrIncompleteBuild)
	}
	if r := e.Reporting; r != nil && r.MaxInterval != 0 && r.MinInterval > r.MaxInterval {
		return fmt.Errorf("entity %s: reporting interval %d > %d: %w", e.ID(), r.MinInterval, r.MaxInterval, ErrIncompleteBuild)
	}
	return nil
}

// EntityOption configures an exposed entity.
type EntityOption func(*Entity)

// EntityOnEndpoint places the entity on endpoint ep instead of DefaultEndpoint.
func EntityOnEndpoint(ep uint8) EntityOption {
	return func(e *Entity) { e.Endpoint = ep }
}

// Unit sets the unit of measurement.
func Unit(u string) EntityOption {
	return func(e *Entity) { e.Unit = u }
}

// DeviceClass sets the consumer's device classification.
func DeviceClass(dc string) EntityOption {
	return func(e *Entity) { e.DeviceClass = dc }
}

// StateClass sets the consumer's state classification.
func StateClass(sc string) EntityOption {
	return func(e *Entity) { e.StateClass = sc }
}

// Reporting requests attribute reporting when the quirk is applied.
func Reporting(minInterval, maxInterval uint16, reportableChange float64) EntityOption {
	return func(e *Entity) {
		e.Reporting = &ReportingConfig{MinInterval: minInterval, MaxInterval: maxInterval, ReportableChange: reportableChange}
	}
}

// TranslationKey sets the translation key and the fallback display name.
func TranslationKey(key, fallbackName string) EntityOption {
	return func(e *Entity) {
		e.TranslationKey = key
		e.FallbackName = fallbackName
	}
}

// WithCategory sets the entity category.
func WithCategory(c EntityCategory) EntityOption {
	return func(e *Entity) { e.Category = c }
}

// InitiallyDisabled hides the entity until the user enables it.
func InitiallyDisabled() EntityOption {
	return func(e *Entity) { e.InitiallyDisabled = true }
}

// DisplayMode sets the number entity's input control.
func DisplayMode(m NumberMode) EntityOption {
	return func(e *Entity) {
		if e.Number != nil {
			e.Number.Mode = m
		}
	}
}
