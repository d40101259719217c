package quirk

import (
	"errors"
	"sync"
	"testing"
)

func TestMatchExactKeyOnly(t *testing.T) {
	reg := newTestRegistry(t)
	q, err := nodOnPilotWire().Commit(reg)
	if err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		manufacturer, model string
		want                bool
	}{
		{"NodOn", "SIN-4-FP-21", true},
		{"NodOn", "SIN-4-FP-21_EQU", false},
		{"nodon", "SIN-4-FP-21", false},
		{"Adeo", "SIN-4-FP-21", false},
		{"", "", false},
	}
	for _, tt := range tests {
		got, ok := reg.Match(tt.manufacturer, tt.model, map[uint8][]uint16{1: {0x0000, 0xFC00}})
		if ok != tt.want {
			t.Errorf("Match(%q, %q) ok = %v, want %v", tt.manufacturer, tt.model, ok, tt.want)
		}
		if ok && got != q {
			t.Errorf("Match(%q, %q) returned a different quirk", tt.manufacturer, tt.model)
		}
	}
}

func TestMatchClonedAlias(t *testing.T) {
	reg := newTestRegistry(t)
	nodon := nodOnPilotWire()
	adeo := nodon.Clone(true).AppliesTo("Adeo", "SIN-4-FP-21_EQU")

	qn, err := nodon.Commit(reg)
	if err != nil {
		t.Fatal(err)
	}
	qa, err := adeo.Commit(reg)
	if err != nil {
		t.Fatal(err)
	}

	if got, ok := reg.Match("Adeo", "SIN-4-FP-21_EQU", nil); !ok || got != qa {
		t.Error("cloned alias key did not match the clone")
	}
	if got, ok := reg.Match("NodOn", "SIN-4-FP-21", nil); !ok || got != qn {
		t.Error("original key no longer matches the original")
	}
	if _, ok := reg.Match("Adeo", "SIN-4-FP-21", nil); ok {
		t.Error("clone with omitted match data must not inherit the original key")
	}
	if len(qa.Entities) != 1 || qa.Entities[0].ID() != "pilot_wire_1" {
		t.Errorf("clone entities = %+v, want the shared pilot_wire entity", qa.Entities)
	}
}

func TestDuplicateRegistrationFails(t *testing.T) {
	reg := newTestRegistry(t)
	first, err := nodOnPilotWire().Commit(reg)
	if err != nil {
		t.Fatal(err)
	}

	second := NewBuilder("NodOn", "SIN-4-FP-21").Removes(0xFC00)
	if _, err := second.Commit(reg); !errors.Is(err, ErrDuplicateRegistration) {
		t.Fatalf("second commit err = %v, want ErrDuplicateRegistration", err)
	}
	if second.Committed() {
		t.Error("failed commit left the builder committed")
	}

	got, ok := reg.Match("NodOn", "SIN-4-FP-21", nil)
	if !ok || got != first {
		t.Error("first registration is no longer authoritative")
	}
	if reg.Len() != 1 {
		t.Errorf("Len = %d, want 1", reg.Len())
	}
}

func TestDuplicateKeyIsAtomic(t *testing.T) {
	reg := newTestRegistry(t)
	if _, err := NewBuilder("IKEA of Sweden", "VINDSTYRKA").Commit(reg); err != nil {
		t.Fatal(err)
	}
	b := NewBuilder("IKEA of Sweden", "STARKVIND").AppliesTo("IKEA of Sweden", "VINDSTYRKA")
	if _, err := b.Commit(reg); !errors.Is(err, ErrDuplicateRegistration) {
		t.Fatalf("err = %v, want ErrDuplicateRegistration", err)
	}
	if _, ok := reg.Get("IKEA of Sweden", "STARKVIND"); ok {
		t.Error("non-conflicting key of a rejected quirk was registered")
	}
}

func TestWildcardMatchesShape(t *testing.T) {
	reg := newTestRegistry(t)
	q, err := nodOnPilotWire().Clone(true).MatchesEndpoint(1, 0x0000, 0xFC00).Commit(reg)
	if err != nil {
		t.Fatal(err)
	}
	if !q.Signatures[0].IsWildcard() {
		t.Fatalf("signature = %v, want wildcard", q.Signatures[0])
	}

	if got, ok := reg.Match("Whoever", "Anything", map[uint8][]uint16{1: {0x0000, 0x0003, 0xFC00}}); !ok || got != q {
		t.Error("wildcard did not match a device with the required shape")
	}
	if _, ok := reg.Match("Whoever", "Anything", map[uint8][]uint16{1: {0x0000}}); ok {
		t.Error("wildcard matched a device missing a required cluster")
	}
	if _, ok := reg.Match("Whoever", "Anything", map[uint8][]uint16{2: {0x0000, 0xFC00}}); ok {
		t.Error("wildcard matched a device on the wrong endpoint")
	}

	_, err = NewBuilder("", "").MatchesEndpoint(1, 0xFC00, 0x0000).Commit(reg)
	if !errors.Is(err, ErrDuplicateRegistration) {
		t.Errorf("duplicate wildcard shape err = %v, want ErrDuplicateRegistration", err)
	}
}

func TestFreeze(t *testing.T) {
	reg := newTestRegistry(t)
	if _, err := nodOnPilotWire().Commit(reg); err != nil {
		t.Fatal(err)
	}
	reg.Freeze()
	if !reg.Frozen() {
		t.Fatal("registry not frozen")
	}
	if _, err := NewBuilder("NodOn", "SIN-4-1-20").Commit(reg); !errors.Is(err, ErrRegistryFrozen) {
		t.Errorf("err = %v, want ErrRegistryFrozen", err)
	}

	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, ok := reg.Match("NodOn", "SIN-4-FP-21", nil); !ok {
				t.Error("concurrent match failed")
			}
		}()
	}
	wg.Wait()
}

func TestLookupByID(t *testing.T) {
	reg := newTestRegistry(t)
	q, err := nodOnPilotWire().Commit(reg)
	if err != nil {
		t.Fatal(err)
	}
	if q.ID() != "NodOn/SIN-4-FP-21" {
		t.Errorf("ID = %q", q.ID())
	}
	if got, ok := reg.Lookup(q.ID()); !ok || got != q {
		t.Error("Lookup by persisted id failed")
	}
	if _, ok := reg.Lookup("Nobody/Nothing"); ok {
		t.Error("Lookup found an unknown id")
	}
}
