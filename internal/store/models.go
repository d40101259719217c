package store

import (
	"time"

	"zigbee-quirks/internal/zdo"
)

// Device is the persisted record of a Zigbee device.
type Device struct {
	IEEEAddress  string     `json:"ieee_address"`
	ShortAddress uint16     `json:"short_address"`
	Manufacturer string     `json:"manufacturer,omitempty"`
	Model        string     `json:"model,omitempty"`
	FriendlyName string     `json:"friendly_name,omitempty"`
	Endpoints    []Endpoint `json:"endpoints,omitempty"`
	Interviewed  bool       `json:"interviewed"`
	JoinedAt     time.Time  `json:"joined_at"`
	LastSeen     time.Time  `json:"last_seen"`
	LQI          uint8      `json:"lqi,omitempty"`
	RSSI         int8       `json:"rssi,omitempty"`

	// NodeDescriptor is the descriptor as the device reported it. The
	// corrected one is recomputed from the quirk on load.
	NodeDescriptor *zdo.NodeDescriptor `json:"node_descriptor,omitempty"`
	// QuirkID identifies the applied quirk ("Manufacturer/Model"), empty
	// when none matched.
	QuirkID string `json:"quirk_id,omitempty"`
	// State holds the last reported value of each exposed entity, by entity id.
	State map[string]any `json:"state,omitempty"`
}

// Endpoint represents a device endpoint.
type Endpoint struct {
	ID          uint8    `json:"id"`
	ProfileID   uint16   `json:"profile_id"`
	DeviceID    uint16   `json:"device_id"`
	InClusters  []uint16 `json:"in_clusters"`
	OutClusters []uint16 `json:"out_clusters"`
}

// Name returns a display name: the friendly name, else "Manufacturer Model".
func (d *Device) Name() string {
	if d == nil {
		return ""
	}
	if d.FriendlyName != "" {
		return d.FriendlyName
	}
	switch {
	case d.Manufacturer != "" && d.Model != "":
		return d.Manufacturer + " " + d.Model
	case d.Model != "":
		return d.Model
	}
	return d.Manufacturer
}
