package quirk

import "zigbee-quirks/internal/zdo"

// Quirk is a committed registration: the signatures it answers to, the
// cluster overlays it installs, its identity corrections and the entities it
// exposes. A Quirk is immutable once registered.
type Quirk struct {
	Signatures     []Signature         `json:"signatures"`
	Overlays       []ClusterOverlay    `json:"overlays,omitempty"`
	NodeDescriptor *zdo.NodeDescriptor `json:"node_descriptor,omitempty"`
	ManufacturerID *uint16             `json:"manufacturer_id,omitempty"`
	Entities       []Entity            `json:"entities,omitempty"`
}

// ID returns the identifier persisted for devices the quirk was applied to:
// the first signature's manufacturer/model.
func (q *Quirk) ID() string {
	if len(q.Signatures) == 0 {
		return ""
	}
	return q.Signatures[0].String()
}

// Overlay returns the overlay installed at (ep, clusterID, side), or nil.
func (q *Quirk) Overlay(ep uint8, clusterID uint16, side Side) *ClusterOverlay {
	for i := range q.Overlays {
		o := &q.Overlays[i]
		if o.Endpoint == ep && o.ClusterID == clusterID && o.Side == side {
			return o
		}
	}
	return nil
}

// Entity returns the entity with the given ID, or nil.
func (q *Quirk) Entity(id string) *Entity {
	for i := range q.Entities {
		if q.Entities[i].ID() == id {
			return &q.Entities[i]
		}
	}
	return nil
}

// EntityFor returns the entity exposing the given attribute, or nil.
func (q *Quirk) EntityFor(ep uint8, clusterID, attrID uint16) *Entity {
	for i := range q.Entities {
		e := &q.Entities[i]
		if e.Endpoint == ep && e.ClusterID == clusterID && e.AttributeID == attrID {
			return e
		}
	}
	return nil
}
