package zcl

import (
	"log/slog"
	"os"
	"testing"
)

func newTestLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))
}

func TestRegistryRegisterAndGet(t *testing.T) {
	r := NewRegistry(newTestLogger())

	r.Register(ClusterDef{
		ID:   0x0006,
		Name: "On/Off",
		Attributes: []AttributeDef{
			{ID: 0, Name: "OnOff", Type: TypeBool, Access: AccessRead, Mandatory: true},
		},
	})

	got := r.Get(0x0006)
	if got == nil {
		t.Fatal("cluster not found")
	}
	if got.Name != "On/Off" {
		t.Errorf("name = %q, want %q", got.Name, "On/Off")
	}
	if len(got.Attributes) != 1 || !got.Attributes[0].Mandatory {
		t.Errorf("attrs = %+v, want one mandatory attribute", got.Attributes)
	}
	if !r.Has(0x0006) || r.Has(0x0008) {
		t.Error("Has reports wrong membership")
	}
}

func TestRegistryGetReturnsCopy(t *testing.T) {
	r := NewRegistry(newTestLogger())
	r.Register(ClusterDef{ID: 0x0006, Name: "On/Off", Attributes: []AttributeDef{{ID: 0, Name: "OnOff", Type: TypeBool}}})

	got := r.Get(0x0006)
	got.Attributes[0].Name = "mutated"
	got.Attributes = append(got.Attributes, AttributeDef{ID: 1, Name: "extra"})

	again := r.Get(0x0006)
	if again.Attributes[0].Name != "OnOff" || len(again.Attributes) != 1 {
		t.Errorf("registry definition was modified through a returned copy: %+v", again.Attributes)
	}
}

func TestRegistryMergeKeepsExisting(t *testing.T) {
	r := NewRegistry(newTestLogger())

	r.Register(ClusterDef{
		ID:   0x0006,
		Name: "On/Off",
		Attributes: []AttributeDef{
			{ID: 0, Name: "OnOff", Type: TypeBool, Access: AccessRead},
		},
	})
	r.Register(ClusterDef{
		ID: 0x0006,
		Attributes: []AttributeDef{
			{ID: 0, Name: "Shadow", Type: TypeUint8, Access: AccessRead},
			{ID: 0x4003, Name: "StartUpOnOff", Type: TypeEnum8, Access: AccessRead | AccessWrite},
		},
	})

	got := r.Get(0x0006)
	if len(got.Attributes) != 2 {
		t.Fatalf("after merge: attrs = %d, want 2", len(got.Attributes))
	}
	if got.FindAttribute(0).Name != "OnOff" {
		t.Errorf("existing attribute replaced by merge: %q", got.FindAttribute(0).Name)
	}
	if got.FindAttributeByName("StartUpOnOff") == nil {
		t.Fatal("merged attribute not found")
	}
}

func TestRegistryAllSorted(t *testing.T) {
	r := NewRegistry(newTestLogger())

	r.Register(ClusterDef{ID: 3, Name: "C"})
	r.Register(ClusterDef{ID: 1, Name: "A"})
	r.Register(ClusterDef{ID: 2, Name: "B"})

	all := r.All()
	if len(all) != 3 {
		t.Fatalf("got %d clusters, want 3", len(all))
	}
	for i, want := range []uint16{1, 2, 3} {
		if all[i].ID != want {
			t.Errorf("all[%d].ID = %d, want %d", i, all[i].ID, want)
		}
	}
}
