package quirks

import (
	"log/slog"
	"os"
	"testing"

	"zigbee-quirks/internal/quirk"
	"zigbee-quirks/internal/zcl"
	"zigbee-quirks/internal/zcl/clusters"
)

func newTestLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))
}

func newTestRegistry(t *testing.T) *quirk.Registry {
	t.Helper()
	std := zcl.NewRegistry(newTestLogger())
	clusters.RegisterStandard(std)
	return quirk.NewRegistry(std, newTestLogger())
}

func builtinRegistry(t *testing.T) *quirk.Registry {
	t.Helper()
	reg := newTestRegistry(t)
	if err := RegisterBuiltin(reg); err != nil {
		t.Fatalf("RegisterBuiltin: %v", err)
	}
	return reg
}

func TestRegisterBuiltin(t *testing.T) {
	reg := builtinRegistry(t)
	if reg.Len() != 5 {
		t.Errorf("Len = %d, want 5", reg.Len())
	}
	for _, key := range [][2]string{
		{NodOn, "SIN-4-FP-21"},
		{Adeo, "SIN-4-FP-21_EQU"},
		{NodOn, "SIN-4-1-20"},
		{NodOn, "SIN-4-2-20"},
		{IKEA, "VINDSTYRKA"},
	} {
		if _, ok := reg.Get(key[0], key[1]); !ok {
			t.Errorf("%s/%s not registered", key[0], key[1])
		}
	}
	if _, ok := reg.Match(Adeo, "SIN-4-FP-21", nil); ok {
		t.Error("Adeo matched the NodOn model")
	}
}

func TestRegisterBuiltinTwiceFails(t *testing.T) {
	reg := builtinRegistry(t)
	if err := RegisterBuiltin(reg); err == nil {
		t.Fatal("second RegisterBuiltin succeeded")
	}
	if reg.Len() != 5 {
		t.Errorf("Len = %d after duplicate registration, want 5", reg.Len())
	}
}

func TestNodOnPilotWireQuirk(t *testing.T) {
	reg := builtinRegistry(t)
	q, _ := reg.Get(NodOn, "SIN-4-FP-21")

	e := q.Entity("pilot_wire_1")
	if e == nil {
		t.Fatalf("pilot_wire entity missing: %+v", q.Entities)
	}
	if e.Platform != quirk.PlatformSelect || e.Name() != "Pilot Wire" {
		t.Errorf("entity = %+v", e)
	}
	if got := e.Enum.Names(); len(got) != 6 || got[3] != "FrostProtection" {
		t.Errorf("options = %v", got)
	}
	if q.NodeDescriptor != nil || q.ManufacturerID != nil {
		t.Error("NodOn quirk carries identity overrides")
	}
}

func TestAdeoQuirk(t *testing.T) {
	reg := builtinRegistry(t)
	q, _ := reg.Get(Adeo, "SIN-4-FP-21_EQU")

	if q.NodeDescriptor == nil || q.NodeDescriptor.ManufacturerCode != NodOnManufacturerID {
		t.Errorf("node descriptor = %+v", q.NodeDescriptor)
	}
	o := q.Overlay(1, PilotWireClusterID, quirk.Server)
	if o == nil || o.ManufacturerID == nil || *o.ManufacturerID != NodOnManufacturerID {
		t.Errorf("cluster override = %+v", o)
	}
	if q.Entity("pilot_wire_1") == nil {
		t.Error("clone lost the pilot_wire entity")
	}
	if len(q.Signatures) != 1 {
		t.Errorf("signatures = %v, want only the Adeo key", q.Signatures)
	}
}

func TestImpulseSwitchQuirk(t *testing.T) {
	reg := builtinRegistry(t)
	q, _ := reg.Get(NodOn, "SIN-4-1-20")

	def, err := q.Overlays[0].Effective(reg.Standard())
	if err != nil {
		t.Fatal(err)
	}
	if def.FindAttributeByName("on_off") == nil || def.FindAttributeByName("impulse_mode_duration") == nil {
		t.Errorf("extended On/Off = %+v", def.Attributes)
	}
	e := q.Entity("impulse_mode_duration_1")
	if e == nil || e.Number == nil || e.Number.Max != 10000 || !e.InitiallyDisabled || e.Unit != "ms" {
		t.Fatalf("entity = %+v", e)
	}
}

func TestDualSwitchQuirk(t *testing.T) {
	reg := builtinRegistry(t)
	q, _ := reg.Get(NodOn, "SIN-4-2-20")
	for _, ep := range []uint8{1, 2} {
		o := q.Overlay(ep, 0x0008, quirk.Server)
		if o == nil || o.Mode != quirk.Remove {
			t.Errorf("ep %d: overlay = %+v, want remove", ep, o)
		}
	}
}

func TestVindstyrkaQuirk(t *testing.T) {
	reg := builtinRegistry(t)
	q, _ := reg.Get(IKEA, "VINDSTYRKA")

	e := q.Entity("voc_index_1")
	if e == nil {
		t.Fatalf("voc_index entity missing: %+v", q.Entities)
	}
	if e.DeviceClass != "aqi" || e.StateClass != "measurement" || e.Name() != "VOC index" {
		t.Errorf("entity = %+v", e)
	}
	if r := e.Reporting; r == nil || r.MinInterval != 60 || r.MaxInterval != 120 || r.ReportableChange != 1 {
		t.Errorf("reporting = %+v", e.Reporting)
	}
	if e.Attribute.Type != zcl.TypeFloat32 || !e.Attribute.ManufacturerSpecific {
		t.Errorf("attribute = %+v", e.Attribute)
	}
}
