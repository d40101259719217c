package quirk

import "zigbee-quirks/internal/zdo"

// CorrectedNodeDescriptor returns the quirk's node descriptor override, or
// reported unchanged when there is no quirk or no override.
func CorrectedNodeDescriptor(q *Quirk, reported zdo.NodeDescriptor) zdo.NodeDescriptor {
	if q == nil || q.NodeDescriptor == nil {
		return reported
	}
	return *q.NodeDescriptor
}

// ManufacturerIDForCommands returns the manufacturer id that tags
// manufacturer-specific frames sent to the device: the quirk's override if
// it has one, else the manufacturer code of desc, which callers pass already
// corrected.
func ManufacturerIDForCommands(q *Quirk, desc zdo.NodeDescriptor) uint16 {
	if q != nil && q.ManufacturerID != nil {
		return *q.ManufacturerID
	}
	return desc.ManufacturerCode
}

// ManufacturerIDForCluster is ManufacturerIDForCommands with a cluster-level
// override taking precedence for the overlay installed at (ep, clusterID).
func ManufacturerIDForCluster(q *Quirk, ep uint8, clusterID uint16, side Side, desc zdo.NodeDescriptor) uint16 {
	if q != nil {
		if o := q.Overlay(ep, clusterID, side); o != nil && o.ManufacturerID != nil {
			return *o.ManufacturerID
		}
	}
	return ManufacturerIDForCommands(q, desc)
}
