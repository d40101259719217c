package store

import (
	"errors"
	"path/filepath"
	"testing"
	"time"

	"zigbee-quirks/internal/zdo"
)

func newTestStore(t *testing.T) *BoltStore {
	t.Helper()
	path := filepath.Join(t.TempDir(), "test.db")
	s, err := NewBoltStore(path)
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func TestSaveAndGetDevice(t *testing.T) {
	s := newTestStore(t)

	dev := &Device{
		IEEEAddress:  "00158D00012A3B4C",
		ShortAddress: 0x1234,
		Manufacturer: "NodOn",
		Model:        "SIN-4-FP-21",
		Interviewed:  true,
		QuirkID:      "NodOn/SIN-4-FP-21",
		NodeDescriptor: &zdo.NodeDescriptor{
			LogicalType:      zdo.Router,
			FrequencyBand:    zdo.Band2400MHz,
			ManufacturerCode: 4747,
		},
		JoinedAt: time.Now().Truncate(time.Millisecond),
		LastSeen: time.Now().Truncate(time.Millisecond),
		Endpoints: []Endpoint{
			{ID: 1, ProfileID: 0x0104, DeviceID: 0x0015, InClusters: []uint16{0, 6}, OutClusters: []uint16{6}},
		},
	}

	if err := s.SaveDevice(dev); err != nil {
		t.Fatal(err)
	}

	got, err := s.GetDevice(dev.IEEEAddress)
	if err != nil {
		t.Fatal(err)
	}

	if got.IEEEAddress != dev.IEEEAddress {
		t.Errorf("ieee = %q, want %q", got.IEEEAddress, dev.IEEEAddress)
	}
	if got.ShortAddress != dev.ShortAddress {
		t.Errorf("short = 0x%04X, want 0x%04X", got.ShortAddress, dev.ShortAddress)
	}
	if got.Manufacturer != dev.Manufacturer {
		t.Errorf("manufacturer = %q, want %q", got.Manufacturer, dev.Manufacturer)
	}
	if got.Model != dev.Model {
		t.Errorf("model = %q, want %q", got.Model, dev.Model)
	}
	if !got.Interviewed {
		t.Error("interviewed = false, want true")
	}
	if len(got.Endpoints) != 1 {
		t.Fatalf("endpoints = %d, want 1", len(got.Endpoints))
	}
	if got.Endpoints[0].ID != 1 {
		t.Errorf("ep id = %d, want 1", got.Endpoints[0].ID)
	}
	if got.QuirkID != dev.QuirkID {
		t.Errorf("quirk_id = %q, want %q", got.QuirkID, dev.QuirkID)
	}
	if got.NodeDescriptor == nil || *got.NodeDescriptor != *dev.NodeDescriptor {
		t.Errorf("node descriptor = %+v, want %+v", got.NodeDescriptor, dev.NodeDescriptor)
	}
}

func TestDeleteDevice(t *testing.T) {
	s := newTestStore(t)

	dev := &Device{IEEEAddress: "00158D00012A3B4C", ShortAddress: 0x1234}
	if err := s.SaveDevice(dev); err != nil {
		t.Fatal(err)
	}

	if err := s.DeleteDevice(dev.IEEEAddress); err != nil {
		t.Fatal(err)
	}

	_, err := s.GetDevice(dev.IEEEAddress)
	if err == nil {
		t.Fatal("expected error after delete, got nil")
	}
}

func TestListDevices(t *testing.T) {
	s := newTestStore(t)

	devs := []*Device{
		{IEEEAddress: "0000000000000001", ShortAddress: 0x0001},
		{IEEEAddress: "0000000000000002", ShortAddress: 0x0002},
		{IEEEAddress: "0000000000000003", ShortAddress: 0x0003},
	}
	for _, d := range devs {
		if err := s.SaveDevice(d); err != nil {
			t.Fatal(err)
		}
	}

	list, err := s.ListDevices()
	if err != nil {
		t.Fatal(err)
	}
	if len(list) != 3 {
		t.Fatalf("list count = %d, want 3", len(list))
	}

	// Verify all devices present.
	found := make(map[string]bool)
	for _, d := range list {
		found[d.IEEEAddress] = true
	}
	for _, d := range devs {
		if !found[d.IEEEAddress] {
			t.Errorf("device %s not in list", d.IEEEAddress)
		}
	}
}

func TestGetDeviceNotFound(t *testing.T) {
	s := newTestStore(t)

	_, err := s.GetDevice("FFFFFFFFFFFFFFFF")
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("err = %v, want ErrNotFound", err)
	}
}

func TestUpdateDevice(t *testing.T) {
	s := newTestStore(t)

	if err := s.SaveDevice(&Device{IEEEAddress: "0000000000000001", Manufacturer: "Adeo", Model: "SIN-4-FP-21_EQU"}); err != nil {
		t.Fatal(err)
	}
	err := s.UpdateDevice("0000000000000001", func(d *Device) error {
		d.QuirkID = "Adeo/SIN-4-FP-21_EQU"
		if d.State == nil {
			d.State = make(map[string]any)
		}
		d.State["pilot_wire_1"] = "Eco"
		return nil
	})
	if err != nil {
		t.Fatal(err)
	}
	got, err := s.GetDevice("0000000000000001")
	if err != nil {
		t.Fatal(err)
	}
	if got.QuirkID != "Adeo/SIN-4-FP-21_EQU" || got.State["pilot_wire_1"] != "Eco" {
		t.Errorf("device = %+v", got)
	}

	if err := s.UpdateDevice("FFFFFFFFFFFFFFFF", func(*Device) error { return nil }); !errors.Is(err, ErrNotFound) {
		t.Errorf("update missing device err = %v, want ErrNotFound", err)
	}

	boom := errors.New("boom")
	err = s.UpdateDevice("0000000000000001", func(d *Device) error {
		d.QuirkID = ""
		return boom
	})
	if !errors.Is(err, boom) {
		t.Errorf("err = %v, want fn error", err)
	}
	if got, _ := s.GetDevice("0000000000000001"); got.QuirkID == "" {
		t.Error("failed update was persisted")
	}
}

func TestDeviceName(t *testing.T) {
	tests := []struct {
		dev  *Device
		want string
	}{
		{nil, ""},
		{&Device{FriendlyName: "Bathroom heater", Manufacturer: "NodOn", Model: "SIN-4-FP-21"}, "Bathroom heater"},
		{&Device{Manufacturer: "NodOn", Model: "SIN-4-FP-21"}, "NodOn SIN-4-FP-21"},
		{&Device{Model: "VINDSTYRKA"}, "VINDSTYRKA"},
		{&Device{Manufacturer: "IKEA of Sweden"}, "IKEA of Sweden"},
	}
	for _, tt := range tests {
		if got := tt.dev.Name(); got != tt.want {
			t.Errorf("Name() = %q, want %q", got, tt.want)
		}
	}
}

func TestListDevicesWithQuirk(t *testing.T) {
	s := newTestStore(t)
	for _, d := range []*Device{
		{IEEEAddress: "0000000000000003", QuirkID: "NodOn/SIN-4-FP-21"},
		{IEEEAddress: "0000000000000001", QuirkID: "NodOn/SIN-4-FP-21"},
		{IEEEAddress: "0000000000000002", QuirkID: "Adeo/SIN-4-FP-21_EQU"},
		{IEEEAddress: "0000000000000004"},
	} {
		if err := s.SaveDevice(d); err != nil {
			t.Fatal(err)
		}
	}

	got, err := s.ListDevicesWithQuirk("NodOn/SIN-4-FP-21")
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 2 || got[0].IEEEAddress != "0000000000000001" || got[1].IEEEAddress != "0000000000000003" {
		t.Errorf("NodOn devices = %+v", got)
	}

	none, err := s.ListDevicesWithQuirk("")
	if err != nil {
		t.Fatal(err)
	}
	if len(none) != 1 || none[0].IEEEAddress != "0000000000000004" {
		t.Errorf("unquirked devices = %+v", none)
	}
}

func TestUpdateDeviceKeepsKey(t *testing.T) {
	s := newTestStore(t)
	if err := s.SaveDevice(&Device{IEEEAddress: "0000000000000001"}); err != nil {
		t.Fatal(err)
	}
	err := s.UpdateDevice("0000000000000001", func(d *Device) error {
		d.IEEEAddress = "FFFFFFFFFFFFFFFF"
		d.LQI = 200
		return nil
	})
	if err != nil {
		t.Fatal(err)
	}
	list, _ := s.ListDevices()
	if len(list) != 1 || list[0].IEEEAddress != "0000000000000001" || list[0].LQI != 200 {
		t.Errorf("devices = %+v", list)
	}
}
