package quirk

import (
	"fmt"

	"zigbee-quirks/internal/zcl"
)

// OverlayMode selects how an overlay treats the endpoint's existing cluster.
type OverlayMode uint8

const (
	// Replace installs a cluster exposing exactly the overlay schema.
	Replace OverlayMode = iota
	// Extend keeps the standard cluster and adds the overlay schema to it.
	Extend
	// Remove deletes the cluster from the endpoint.
	Remove
)

func (m OverlayMode) String() string {
	switch m {
	case Replace:
		return "replace"
	case Extend:
		return "extend"
	case Remove:
		return "remove"
	}
	return fmt.Sprintf("OverlayMode(%d)", uint8(m))
}

// Side selects the input (server) or output (client) cluster list.
type Side uint8

const (
	Server Side = iota
	Client
)

func (s Side) String() string {
	if s == Client {
		return "client"
	}
	return "server"
}

// DefaultEndpoint is used when an overlay or entity names no endpoint.
const DefaultEndpoint uint8 = 1

// ClusterOverlay rewrites one cluster on one endpoint of a matched device.
type ClusterOverlay struct {
	Mode      OverlayMode
	Endpoint  uint8
	ClusterID uint16
	Side      Side
	// Def is the full schema for Replace and the additional schema for Extend.
	Def zcl.ClusterDef
	// ManufacturerID, when set, tags this cluster's manufacturer-specific
	// frames instead of the device-wide manufacturer id.
	ManufacturerID *uint16
}

// Effective returns the cluster definition the overlay installs, or nil for
// Remove. Extend merges the additional schema into a copy of the standard
// definition from std; redefining an inherited id is an error.
func (o *ClusterOverlay) Effective(std *zcl.Registry) (*zcl.ClusterDef, error) {
	switch o.Mode {
	case Replace:
		return o.Def.DeepCopy(), nil
	case Remove:
		return nil, nil
	case Extend:
		var base *zcl.ClusterDef
		if std != nil {
			base = std.Get(o.ClusterID)
		}
		if base == nil {
			return nil, fmt.Errorf("extend cluster 0x%04X: no standard definition: %w", o.ClusterID, ErrIncompleteBuild)
		}
		attrs, cmds := base.Conflicts(&o.Def)
		if len(attrs) > 0 || len(cmds) > 0 {
			return nil, fmt.Errorf("extend %s (0x%04X): attributes %v commands %v: %w",
				base.Name, o.ClusterID, attrs, cmds, ErrAttributeConflict)
		}
		base.Merge(&o.Def)
		if o.Def.Name != "" {
			base.Name = o.Def.Name
		}
		return base, nil
	}
	return nil, fmt.Errorf("cluster 0x%04X: unknown overlay mode %v", o.ClusterID, o.Mode)
}

func (o *ClusterOverlay) sameSlot(other *ClusterOverlay) bool {
	return o.Endpoint == other.Endpoint && o.ClusterID == other.ClusterID && o.Side == other.Side
}

func (o ClusterOverlay) clone() ClusterOverlay {
	cp := o
	cp.Def = *o.Def.DeepCopy()
	if o.ManufacturerID != nil {
		id := *o.ManufacturerID
		cp.ManufacturerID = &id
	}
	return cp
}

// check validates the overlay schema on its own.
func (o *ClusterOverlay) check() error {
	if o.Mode == Remove {
		return nil
	}
	seen := make(map[uint16]bool, len(o.Def.Attributes))
	for i := range o.Def.Attributes {
		a := &o.Def.Attributes[i]
		if seen[a.ID] {
			return fmt.Errorf("cluster 0x%04X: attribute 0x%04X declared twice: %w", o.ClusterID, a.ID, ErrIncompleteBuild)
		}
		seen[a.ID] = true
		if err := zcl.CheckWireType(a); err != nil {
			return fmt.Errorf("cluster 0x%04X: %w", o.ClusterID, err)
		}
	}
	for _, c := range o.Def.Commands {
		for i := range c.Params {
			if err := zcl.CheckParamType(&c.Params[i]); err != nil {
				return fmt.Errorf("cluster 0x%04X command %s: %w", o.ClusterID, c.Name, err)
			}
		}
	}
	return nil
}

// OverlayOption configures a cluster overlay.
type OverlayOption func(*ClusterOverlay)

// OnEndpoint places the overlay on endpoint ep instead of DefaultEndpoint.
func OnEndpoint(ep uint8) OverlayOption {
	return func(o *ClusterOverlay) { o.Endpoint = ep }
}

// AsClient applies the overlay to the endpoint's output cluster list.
func AsClient() OverlayOption {
	return func(o *ClusterOverlay) { o.Side = Client }
}

// WithManufacturerID sets a cluster-level manufacturer id override.
func WithManufacturerID(id uint16) OverlayOption {
	return func(o *ClusterOverlay) { o.ManufacturerID = &id }
}
