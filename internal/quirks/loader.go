package quirks

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"zigbee-quirks/internal/quirk"
	"zigbee-quirks/internal/zcl"
	"zigbee-quirks/internal/zdo"
)

// quirkFile is the YAML structure of a declarative quirk file.
type quirkFile struct {
	Enums  []enumSpec  `yaml:"enums"`
	Quirks []quirkSpec `yaml:"quirks"`
}

type enumSpec struct {
	Name    string `yaml:"name"`
	Type    string `yaml:"type"`
	Members []struct {
		Name  string `yaml:"name"`
		Value uint64 `yaml:"value"`
	} `yaml:"members"`
}

type quirkSpec struct {
	Manufacturer   string              `yaml:"manufacturer"`
	Model          string              `yaml:"model"`
	Replaces       []overlaySpec       `yaml:"replaces"`
	Extends        []overlaySpec       `yaml:"extends"`
	Removes        []removeSpec        `yaml:"removes"`
	NodeDescriptor *zdo.NodeDescriptor `yaml:"node_descriptor"`
	ManufacturerID *uint16             `yaml:"manufacturer_id"`
	Entities       []entitySpec        `yaml:"entities"`
	Clones         []cloneSpec         `yaml:"clones"`
}

type cloneSpec struct {
	Manufacturer   string              `yaml:"manufacturer"`
	Model          string              `yaml:"model"`
	Replaces       []overlaySpec       `yaml:"replaces"`
	NodeDescriptor *zdo.NodeDescriptor `yaml:"node_descriptor"`
	ManufacturerID *uint16             `yaml:"manufacturer_id"`
}

type overlaySpec struct {
	Endpoint       uint8           `yaml:"endpoint"`
	Side           string          `yaml:"side"`
	ManufacturerID *uint16         `yaml:"manufacturer_id"`
	ID             uint16          `yaml:"id"`
	Name           string          `yaml:"name"`
	Attributes     []attributeSpec `yaml:"attributes"`
	Commands       []commandSpec   `yaml:"commands"`
}

type removeSpec struct {
	Cluster  uint16 `yaml:"cluster"`
	Endpoint uint8  `yaml:"endpoint"`
	Side     string `yaml:"side"`
}

type attributeSpec struct {
	ID                   uint16 `yaml:"id"`
	Name                 string `yaml:"name"`
	Type                 string `yaml:"type"`
	WireType             string `yaml:"wire_type"`
	Access               string `yaml:"access"`
	Mandatory            bool   `yaml:"mandatory"`
	ManufacturerSpecific bool   `yaml:"manufacturer_specific"`
	Enum                 string `yaml:"enum"`
}

type commandSpec struct {
	ID                   uint8  `yaml:"id"`
	Name                 string `yaml:"name"`
	Direction            string `yaml:"direction"`
	ManufacturerSpecific bool   `yaml:"manufacturer_specific"`
	Params               []struct {
		Name string `yaml:"name"`
		Type string `yaml:"type"`
		Enum string `yaml:"enum"`
	} `yaml:"params"`
}

type entitySpec struct {
	Platform          string                 `yaml:"platform"`
	Attribute         string                 `yaml:"attribute"`
	Cluster           uint16                 `yaml:"cluster"`
	Endpoint          uint8                  `yaml:"endpoint"`
	Min               float64                `yaml:"min"`
	Max               float64                `yaml:"max"`
	Step              float64                `yaml:"step"`
	Mode              string                 `yaml:"mode"`
	Enum              string                 `yaml:"enum"`
	Unit              string                 `yaml:"unit"`
	DeviceClass       string                 `yaml:"device_class"`
	StateClass        string                 `yaml:"state_class"`
	Category          string                 `yaml:"category"`
	TranslationKey    string                 `yaml:"translation_key"`
	Name              string                 `yaml:"name"`
	InitiallyDisabled bool                   `yaml:"initially_disabled"`
	Reporting         *quirk.ReportingConfig `yaml:"reporting"`
}

// LoadDir reads every *.yaml file in dir and commits the quirks it declares
// into reg. A missing or empty directory is not an error. A broken file or
// quirk is logged and its error joined into the result; the rest still
// register. It returns the number of quirks committed.
func LoadDir(dir string, reg *quirk.Registry, logger *slog.Logger) (int, error) {
	matches, err := filepath.Glob(filepath.Join(dir, "*.yaml"))
	if err != nil {
		return 0, fmt.Errorf("glob quirks dir: %w", err)
	}
	if len(matches) == 0 {
		logger.Info("no quirk files found", "dir", dir)
		return 0, nil
	}

	var errs []error
	total := 0
	for _, path := range matches {
		n, err := loadFile(path, reg, logger)
		total += n
		if err != nil {
			logger.Error("quirk file", "path", filepath.Base(path), "err", err)
			errs = append(errs, err)
			continue
		}
		logger.Info("loaded quirk file", "path", filepath.Base(path), "quirks", n)
	}
	logger.Info("quirk files loaded", "files", len(matches), "quirks", total)
	return total, errors.Join(errs...)
}

func loadFile(path string, reg *quirk.Registry, logger *slog.Logger) (int, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return 0, fmt.Errorf("read %s: %w", path, err)
	}
	var qf quirkFile
	if err := yaml.Unmarshal(data, &qf); err != nil {
		return 0, fmt.Errorf("parse %s: %w", path, err)
	}

	enums := make(map[string]*zcl.EnumDef, len(qf.Enums))
	for _, es := range qf.Enums {
		e, err := es.build()
		if err != nil {
			return 0, fmt.Errorf("%s: %w", path, err)
		}
		enums[e.Name] = e
	}

	var errs []error
	n := 0
	for _, qs := range qf.Quirks {
		builders, err := qs.builders(enums)
		if err != nil {
			errs = append(errs, fmt.Errorf("%s: quirk %s/%s: %w", path, qs.Manufacturer, qs.Model, err))
			continue
		}
		for _, b := range builders {
			q, err := b.Commit(reg)
			if err != nil {
				errs = append(errs, fmt.Errorf("%s: %w", path, err))
				continue
			}
			logger.Debug("declarative quirk committed", "quirk", q.ID())
			n++
		}
	}
	return n, errors.Join(errs...)
}

func (es enumSpec) build() (*zcl.EnumDef, error) {
	typ := zcl.TypeEnum8
	if es.Type != "" {
		t, ok := zcl.TypeByName(es.Type)
		if !ok {
			return nil, fmt.Errorf("enum %s: unknown type %q", es.Name, es.Type)
		}
		typ = t
	}
	e := &zcl.EnumDef{Name: es.Name, Type: typ}
	for _, m := range es.Members {
		e.Members = append(e.Members, zcl.EnumMember{Name: m.Name, Value: m.Value})
	}
	return e, nil
}

// builders returns the quirk's builder followed by one per clone. Clones
// are taken before anything is committed.
func (qs quirkSpec) builders(enums map[string]*zcl.EnumDef) ([]*quirk.Builder, error) {
	b := quirk.NewBuilder(qs.Manufacturer, qs.Model)
	for _, ovs := range qs.Replaces {
		def, opts, err := ovs.build(enums)
		if err != nil {
			return nil, err
		}
		b.Replaces(def, opts...)
	}
	for _, ovs := range qs.Extends {
		def, opts, err := ovs.build(enums)
		if err != nil {
			return nil, err
		}
		b.Extends(def, opts...)
	}
	for _, rs := range qs.Removes {
		opts := []quirk.OverlayOption{}
		if rs.Endpoint != 0 {
			opts = append(opts, quirk.OnEndpoint(rs.Endpoint))
		}
		if rs.Side == "client" {
			opts = append(opts, quirk.AsClient())
		}
		b.Removes(rs.Cluster, opts...)
	}
	if qs.NodeDescriptor != nil {
		b.NodeDescriptor(*qs.NodeDescriptor)
	}
	if qs.ManufacturerID != nil {
		b.ManufacturerIDOverride(*qs.ManufacturerID)
	}
	for _, es := range qs.Entities {
		if err := es.add(b, enums); err != nil {
			return nil, err
		}
	}

	out := []*quirk.Builder{b}
	for _, cs := range qs.Clones {
		c := b.Clone(true).AppliesTo(cs.Manufacturer, cs.Model)
		for _, ovs := range cs.Replaces {
			def, opts, err := ovs.build(enums)
			if err != nil {
				return nil, fmt.Errorf("clone %s/%s: %w", cs.Manufacturer, cs.Model, err)
			}
			c.Replaces(def, opts...)
		}
		if cs.NodeDescriptor != nil {
			c.NodeDescriptor(*cs.NodeDescriptor)
		}
		if cs.ManufacturerID != nil {
			c.ManufacturerIDOverride(*cs.ManufacturerID)
		}
		out = append(out, c)
	}
	return out, nil
}

func (ovs overlaySpec) build(enums map[string]*zcl.EnumDef) (zcl.ClusterDef, []quirk.OverlayOption, error) {
	def := zcl.ClusterDef{ID: ovs.ID, Name: ovs.Name}
	for _, as := range ovs.Attributes {
		a, err := as.build(enums)
		if err != nil {
			return def, nil, fmt.Errorf("cluster 0x%04X: %w", ovs.ID, err)
		}
		def.Attributes = append(def.Attributes, a)
	}
	for _, cs := range ovs.Commands {
		c := zcl.CommandDef{ID: cs.ID, Name: cs.Name, ManufacturerSpecific: cs.ManufacturerSpecific}
		switch cs.Direction {
		case "", "to_server":
			c.Direction = zcl.DirectionToServer
		case "to_client":
			c.Direction = zcl.DirectionToClient
		default:
			return def, nil, fmt.Errorf("cluster 0x%04X command %s: unknown direction %q", ovs.ID, cs.Name, cs.Direction)
		}
		for _, ps := range cs.Params {
			typ, ok := zcl.TypeByName(ps.Type)
			if !ok {
				return def, nil, fmt.Errorf("cluster 0x%04X command %s param %s: unknown type %q", ovs.ID, cs.Name, ps.Name, ps.Type)
			}
			p := zcl.ParamDef{Name: ps.Name, Type: typ}
			if ps.Enum != "" {
				if p.Enum = enums[ps.Enum]; p.Enum == nil {
					return def, nil, fmt.Errorf("command %s param %s: undeclared enum %q", cs.Name, ps.Name, ps.Enum)
				}
			}
			c.Params = append(c.Params, p)
		}
		def.Commands = append(def.Commands, c)
	}

	var opts []quirk.OverlayOption
	if ovs.Endpoint != 0 {
		opts = append(opts, quirk.OnEndpoint(ovs.Endpoint))
	}
	if ovs.Side == "client" {
		opts = append(opts, quirk.AsClient())
	}
	if ovs.ManufacturerID != nil {
		opts = append(opts, quirk.WithManufacturerID(*ovs.ManufacturerID))
	}
	return def, opts, nil
}

func (as attributeSpec) build(enums map[string]*zcl.EnumDef) (zcl.AttributeDef, error) {
	a := zcl.AttributeDef{
		ID:                   as.ID,
		Name:                 as.Name,
		Mandatory:            as.Mandatory,
		ManufacturerSpecific: as.ManufacturerSpecific,
	}
	typ, ok := zcl.TypeByName(as.Type)
	if !ok {
		return a, fmt.Errorf("attribute %s: unknown type %q", as.Name, as.Type)
	}
	a.Type = typ
	if as.WireType != "" {
		if a.WireType, ok = zcl.TypeByName(as.WireType); !ok {
			return a, fmt.Errorf("attribute %s: unknown wire type %q", as.Name, as.WireType)
		}
	}
	access := as.Access
	if access == "" {
		access = "rw"
	}
	acc, err := zcl.ParseAccess(access)
	if err != nil {
		return a, fmt.Errorf("attribute %s: %w", as.Name, err)
	}
	a.Access = acc
	if as.Enum != "" {
		if a.Enum = enums[as.Enum]; a.Enum == nil {
			return a, fmt.Errorf("attribute %s: undeclared enum %q", as.Name, as.Enum)
		}
	}
	return a, nil
}

func (es entitySpec) add(b *quirk.Builder, enums map[string]*zcl.EnumDef) error {
	var opts []quirk.EntityOption
	if es.Endpoint != 0 {
		opts = append(opts, quirk.EntityOnEndpoint(es.Endpoint))
	}
	if es.Unit != "" {
		opts = append(opts, quirk.Unit(es.Unit))
	}
	if es.DeviceClass != "" {
		opts = append(opts, quirk.DeviceClass(es.DeviceClass))
	}
	if es.StateClass != "" {
		opts = append(opts, quirk.StateClass(es.StateClass))
	}
	if es.Category != "" {
		opts = append(opts, quirk.WithCategory(quirk.EntityCategory(es.Category)))
	}
	if es.TranslationKey != "" || es.Name != "" {
		opts = append(opts, quirk.TranslationKey(es.TranslationKey, es.Name))
	}
	if es.InitiallyDisabled {
		opts = append(opts, quirk.InitiallyDisabled())
	}
	if r := es.Reporting; r != nil {
		opts = append(opts, quirk.Reporting(r.MinInterval, r.MaxInterval, r.ReportableChange))
	}
	if es.Mode != "" {
		opts = append(opts, quirk.DisplayMode(quirk.NumberMode(es.Mode)))
	}

	switch quirk.Platform(es.Platform) {
	case quirk.PlatformSensor:
		b.Sensor(es.Attribute, es.Cluster, opts...)
	case quirk.PlatformBinarySensor:
		b.BinarySensor(es.Attribute, es.Cluster, opts...)
	case quirk.PlatformSwitch:
		b.Switch(es.Attribute, es.Cluster, opts...)
	case quirk.PlatformNumber:
		b.Number(es.Attribute, es.Cluster, es.Min, es.Max, es.Step, opts...)
	case quirk.PlatformSelect:
		var e *zcl.EnumDef
		if es.Enum != "" {
			if e = enums[es.Enum]; e == nil {
				return fmt.Errorf("entity %s: undeclared enum %q", es.Attribute, es.Enum)
			}
		}
		b.Enum(es.Attribute, e, es.Cluster, opts...)
	default:
		return fmt.Errorf("entity %s: unknown platform %q", es.Attribute, es.Platform)
	}
	return nil
}
