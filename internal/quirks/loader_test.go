package quirks

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"zigbee-quirks/internal/quirk"
	"zigbee-quirks/internal/zcl"
)

const thermostatQuirks = `
enums:
  - name: ValveMode
    type: enum8
    members:
      - {name: manual, value: 0}
      - {name: schedule, value: 1}
      - {name: away, value: 2}
quirks:
  - manufacturer: Acme
    model: TRV-1
    replaces:
      - id: 0xFC10
        name: AcmeValve
        manufacturer_id: 0x1234
        attributes:
          - {id: 0x0000, name: valve_mode, type: enum8, wire_type: uint8, access: rw, manufacturer_specific: true, enum: ValveMode}
          - {id: 0x0001, name: valve_position, type: uint8, access: rp, manufacturer_specific: true}
        commands:
          - id: 0x01
            name: calibrate
            manufacturer_specific: true
            params:
              - {name: mode, type: enum8, enum: ValveMode}
    removes:
      - {cluster: 0x0008, endpoint: 1}
    manufacturer_id: 0x1234
    entities:
      - {platform: select, attribute: valve_mode, cluster: 0xFC10, translation_key: valve_mode, name: Valve mode, category: config}
      - {platform: sensor, attribute: valve_position, cluster: 0xFC10, unit: "%", reporting: {min_interval: 30, max_interval: 600, reportable_change: 5}}
    clones:
      - manufacturer: Rebrand
        model: TRV-1B
        node_descriptor:
          logical_type: 2
          frequency_band: 8
          manufacturer_code: 0x1234
          maximum_buffer_size: 82
`

func writeFile(t *testing.T, dir, name, content string) {
	t.Helper()
	if err := os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
}

func TestLoadDir(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "acme.yaml", thermostatQuirks)
	writeFile(t, dir, "ignored.json", `{"quirks": []}`)

	reg := newTestRegistry(t)
	n, err := LoadDir(dir, reg, newTestLogger())
	if err != nil {
		t.Fatalf("LoadDir: %v", err)
	}
	if n != 2 {
		t.Errorf("loaded %d quirks, want 2", n)
	}

	q, ok := reg.Match("Acme", "TRV-1", nil)
	if !ok {
		t.Fatal("Acme/TRV-1 not registered")
	}
	o := q.Overlay(1, 0xFC10, quirk.Server)
	if o == nil || o.ManufacturerID == nil || *o.ManufacturerID != 0x1234 {
		t.Fatalf("overlay = %+v", o)
	}
	a := o.Def.FindAttributeByName("valve_mode")
	if a == nil || a.EncodingType() != zcl.TypeUint8 || a.Enum == nil || !a.IsWritable() {
		t.Errorf("valve_mode = %+v", a)
	}
	if c := o.Def.FindCommandByName("calibrate"); c == nil || c.Params[0].Enum == nil {
		t.Errorf("calibrate = %+v", c)
	}
	if r := q.Overlay(1, 0x0008, quirk.Server); r == nil || r.Mode != quirk.Remove {
		t.Errorf("level control removal = %+v", r)
	}

	sel := q.Entity("valve_mode_1")
	if sel == nil || sel.Category != quirk.CategoryConfig || sel.Name() != "Valve mode" {
		t.Errorf("select = %+v", sel)
	}
	if err := sel.Validate("away"); err != nil {
		t.Errorf("Validate(away) = %v", err)
	}
	pos := q.Entity("valve_position_1")
	if pos == nil || pos.Reporting == nil || pos.Reporting.MaxInterval != 600 {
		t.Errorf("sensor = %+v", pos)
	}

	clone, ok := reg.Match("Rebrand", "TRV-1B", nil)
	if !ok {
		t.Fatal("clone not registered")
	}
	if clone.NodeDescriptor == nil || clone.NodeDescriptor.ManufacturerCode != 0x1234 {
		t.Errorf("clone node descriptor = %+v", clone.NodeDescriptor)
	}
	if clone.ManufacturerID == nil || *clone.ManufacturerID != 0x1234 {
		t.Error("clone lost the manufacturer id override")
	}
}

func TestLoadDirMissing(t *testing.T) {
	n, err := LoadDir(filepath.Join(t.TempDir(), "nope"), newTestRegistry(t), newTestLogger())
	if err != nil || n != 0 {
		t.Errorf("LoadDir(missing) = %d, %v", n, err)
	}
}

func TestLoadDirBrokenQuirkDoesNotBlockOthers(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "a.yaml", `
quirks:
  - manufacturer: Acme
    model: Broken
    entities:
      - {platform: sensor, attribute: does_not_exist, cluster: 0x0402}
  - manufacturer: Acme
    model: Plug
    entities:
      - {platform: binary_sensor, attribute: on_off, cluster: 0x0006}
`)
	writeFile(t, dir, "b.yaml", "quirks: [not, a, mapping")
	writeFile(t, dir, "c.yaml", `
quirks:
  - manufacturer: NodOn
    model: SIN-4-FP-21
`)

	reg := newTestRegistry(t)
	if err := RegisterBuiltin(reg); err != nil {
		t.Fatal(err)
	}
	n, err := LoadDir(dir, reg, newTestLogger())
	if err == nil {
		t.Fatal("expected errors")
	}
	if !errors.Is(err, quirk.ErrIncompleteBuild) {
		t.Errorf("err = %v, want ErrIncompleteBuild among the failures", err)
	}
	if !errors.Is(err, quirk.ErrDuplicateRegistration) {
		t.Errorf("err = %v, want ErrDuplicateRegistration among the failures", err)
	}
	if n != 1 {
		t.Errorf("loaded %d, want 1", n)
	}
	if _, ok := reg.Get("Acme", "Plug"); !ok {
		t.Error("valid quirk next to a broken one was not registered")
	}
	if q, _ := reg.Get(NodOn, "SIN-4-FP-21"); len(q.Overlays) != 1 {
		t.Error("declarative duplicate replaced the built-in quirk")
	}
}

func TestLoadDirUnknownNames(t *testing.T) {
	tests := []struct {
		name, yaml string
	}{
		{"unknown type", `
quirks:
  - manufacturer: A
    model: B
    replaces:
      - id: 0xFC00
        attributes: [{id: 0, name: x, type: uint7}]
`},
		{"undeclared enum", `
quirks:
  - manufacturer: A
    model: B
    replaces:
      - id: 0xFC00
        attributes: [{id: 0, name: x, type: enum8, enum: Nope}]
`},
		{"unknown platform", `
quirks:
  - manufacturer: A
    model: B
    entities: [{platform: light, attribute: on_off, cluster: 6}]
`},
		{"bad access", `
quirks:
  - manufacturer: A
    model: B
    replaces:
      - id: 0xFC00
        attributes: [{id: 0, name: x, type: uint8, access: rx}]
`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := t.TempDir()
			writeFile(t, dir, "q.yaml", tt.yaml)
			reg := newTestRegistry(t)
			if _, err := LoadDir(dir, reg, newTestLogger()); err == nil {
				t.Error("expected error")
			}
			if reg.Len() != 0 {
				t.Errorf("registered %d quirks from a broken file", reg.Len())
			}
		})
	}
}
