// Package device holds the live model of a discovered Zigbee device: its
// endpoints, the cluster instances on each endpoint, and the identity the
// rest of the stack sees after a quirk has been applied.
package device

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"sync"

	"zigbee-quirks/internal/ncp"
	"zigbee-quirks/internal/quirk"
	"zigbee-quirks/internal/zcl"
	"zigbee-quirks/internal/zdo"
)

var (
	// ErrNoCluster is returned when an endpoint does not carry the cluster.
	ErrNoCluster = errors.New("cluster not present on endpoint")
	// ErrUnsupportedAttribute is returned for attributes the cluster schema
	// does not declare, or does not allow the requested access to.
	ErrUnsupportedAttribute = errors.New("unsupported attribute")
	// ErrUnknownCommand is returned for commands the cluster schema does not declare.
	ErrUnknownCommand = errors.New("unknown command")
)

// Transport is the part of the NCP a device needs to reach the radio.
type Transport interface {
	ReadAttributes(ctx context.Context, req ncp.ReadAttributesRequest) ([]ncp.AttributeResponse, error)
	WriteAttributes(ctx context.Context, req ncp.WriteAttributesRequest) error
	SendCommand(ctx context.Context, req ncp.ClusterCommandRequest) error
	ConfigureReporting(ctx context.Context, req ncp.ConfigureReportingRequest) error
}

// Endpoint is one application endpoint and its cluster instances.
type Endpoint struct {
	ID        uint8
	ProfileID uint16
	DeviceID  uint16

	in  map[uint16]*Cluster
	out map[uint16]*Cluster
}

// InCluster returns the server (input) cluster instance, or nil.
func (ep *Endpoint) InCluster(id uint16) *Cluster { return ep.in[id] }

// OutCluster returns the client (output) cluster instance, or nil.
func (ep *Endpoint) OutCluster(id uint16) *Cluster { return ep.out[id] }

// InClusters returns the ids of the input clusters, sorted.
func (ep *Endpoint) InClusters() []uint16 { return sortedIDs(ep.in) }

// OutClusters returns the ids of the output clusters, sorted.
func (ep *Endpoint) OutClusters() []uint16 { return sortedIDs(ep.out) }

func (ep *Endpoint) table(side quirk.Side) map[uint16]*Cluster {
	if side == quirk.Client {
		return ep.out
	}
	return ep.in
}

func sortedIDs(m map[uint16]*Cluster) []uint16 {
	ids := make([]uint16, 0, len(m))
	for id := range m {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

// Device is a live device. Endpoint tables are replaced as a whole when a
// quirk is applied, so a Cluster obtained before ApplyQuirk keeps its old
// schema.
type Device struct {
	IEEE         string
	ShortAddr    uint16
	Manufacturer string
	Model        string

	transport Transport
	logger    *slog.Logger

	mu        sync.RWMutex
	reported  zdo.NodeDescriptor
	described map[uint8]ncp.SimpleDescriptor
	endpoints map[uint8]*Endpoint
	quirk     *quirk.Quirk
}

// New creates a device with no endpoints. nd is the node descriptor the
// device reported.
func New(ieee string, shortAddr uint16, manufacturer, model string, nd zdo.NodeDescriptor, t Transport, logger *slog.Logger) *Device {
	return &Device{
		IEEE:         ieee,
		ShortAddr:    shortAddr,
		Manufacturer: manufacturer,
		Model:        model,
		transport:    t,
		logger:       logger.With("ieee", ieee),
		reported:     nd,
		described:    make(map[uint8]ncp.SimpleDescriptor),
		endpoints:    make(map[uint8]*Endpoint),
	}
}

// AddEndpoint installs the base cluster instances described by sd. Clusters
// missing from std get an empty schema: they exist but expose nothing.
func (d *Device) AddEndpoint(sd ncp.SimpleDescriptor, std *zcl.Registry) {
	ep := &Endpoint{
		ID:        sd.Endpoint,
		ProfileID: sd.ProfileID,
		DeviceID:  sd.DeviceID,
		in:        make(map[uint16]*Cluster, len(sd.InClusters)),
		out:       make(map[uint16]*Cluster, len(sd.OutClusters)),
	}
	for _, id := range sd.InClusters {
		ep.in[id] = d.newCluster(sd.Endpoint, quirk.Server, baseDef(std, id), false)
	}
	for _, id := range sd.OutClusters {
		ep.out[id] = d.newCluster(sd.Endpoint, quirk.Client, baseDef(std, id), false)
	}
	sd.InClusters = append([]uint16(nil), sd.InClusters...)
	sd.OutClusters = append([]uint16(nil), sd.OutClusters...)
	d.mu.Lock()
	d.described[sd.Endpoint] = sd
	d.endpoints[sd.Endpoint] = ep
	d.mu.Unlock()
}

// ReportedEndpoints returns the simple descriptors as the device reported
// them, ordered by endpoint. Overlays never change them.
func (d *Device) ReportedEndpoints() []ncp.SimpleDescriptor {
	d.mu.RLock()
	defer d.mu.RUnlock()
	out := make([]ncp.SimpleDescriptor, 0, len(d.described))
	for _, sd := range d.described {
		sd.InClusters = append([]uint16(nil), sd.InClusters...)
		sd.OutClusters = append([]uint16(nil), sd.OutClusters...)
		out = append(out, sd)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Endpoint < out[j].Endpoint })
	return out
}

func baseDef(std *zcl.Registry, id uint16) *zcl.ClusterDef {
	if std != nil {
		if def := std.Get(id); def != nil {
			return def
		}
	}
	return &zcl.ClusterDef{ID: id, Name: fmt.Sprintf("0x%04X", id)}
}

func (d *Device) newCluster(ep uint8, side quirk.Side, def *zcl.ClusterDef, overlaid bool) *Cluster {
	return &Cluster{dev: d, endpoint: ep, side: side, def: def, overlaid: overlaid}
}

// Endpoint returns the endpoint with the given id, or nil.
func (d *Device) Endpoint(id uint8) *Endpoint {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.endpoints[id]
}

// Endpoints returns the endpoint ids, sorted.
func (d *Device) Endpoints() []uint8 {
	d.mu.RLock()
	defer d.mu.RUnlock()
	ids := make([]uint8, 0, len(d.endpoints))
	for id := range d.endpoints {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

// Shape returns the input clusters of every endpoint, as used for matching.
func (d *Device) Shape() map[uint8][]uint16 {
	d.mu.RLock()
	defer d.mu.RUnlock()
	shape := make(map[uint8][]uint16, len(d.endpoints))
	for id, ep := range d.endpoints {
		shape[id] = ep.InClusters()
	}
	return shape
}

// Cluster returns the server cluster instance on endpoint ep.
func (d *Device) Cluster(ep uint8, clusterID uint16) (*Cluster, error) {
	return d.clusterOn(ep, clusterID, quirk.Server)
}

// ClientCluster returns the client cluster instance on endpoint ep.
func (d *Device) ClientCluster(ep uint8, clusterID uint16) (*Cluster, error) {
	return d.clusterOn(ep, clusterID, quirk.Client)
}

func (d *Device) clusterOn(ep uint8, clusterID uint16, side quirk.Side) (*Cluster, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	e, ok := d.endpoints[ep]
	if !ok {
		return nil, fmt.Errorf("endpoint %d: %w", ep, ErrNoCluster)
	}
	c, ok := e.table(side)[clusterID]
	if !ok {
		return nil, fmt.Errorf("endpoint %d %s cluster 0x%04X: %w", ep, side, clusterID, ErrNoCluster)
	}
	return c, nil
}

// Quirk returns the applied quirk, or nil.
func (d *Device) Quirk() *quirk.Quirk {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.quirk
}

// ReportedNodeDescriptor returns the node descriptor as the device reported it.
func (d *Device) ReportedNodeDescriptor() zdo.NodeDescriptor {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.reported
}

// NodeDescriptor returns the node descriptor the rest of the stack should
// use: the quirk's override when one is applied.
func (d *Device) NodeDescriptor() zdo.NodeDescriptor {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return quirk.CorrectedNodeDescriptor(d.quirk, d.reported)
}

// ManufacturerID returns the manufacturer id that tags manufacturer-specific
// frames sent to the device.
func (d *Device) ManufacturerID() uint16 {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return quirk.ManufacturerIDForCommands(d.quirk, quirk.CorrectedNodeDescriptor(d.quirk, d.reported))
}

func (d *Device) manufacturerIDFor(ep uint8, clusterID uint16, side quirk.Side) uint16 {
	d.mu.RLock()
	defer d.mu.RUnlock()
	desc := quirk.CorrectedNodeDescriptor(d.quirk, d.reported)
	return quirk.ManufacturerIDForCluster(d.quirk, ep, clusterID, side, desc)
}

// ApplyQuirk installs q's overlays. Every effective cluster definition is
// computed before any endpoint table changes; if one fails the device is
// left exactly as it was. Overlays on endpoints the device does not have
// are skipped.
func (d *Device) ApplyQuirk(q *quirk.Quirk, std *zcl.Registry) error {
	if q == nil {
		return nil
	}

	d.mu.Lock()
	next := make(map[uint8]*Endpoint, len(d.endpoints))
	for id, ep := range d.endpoints {
		next[id] = &Endpoint{
			ID:        ep.ID,
			ProfileID: ep.ProfileID,
			DeviceID:  ep.DeviceID,
			in:        copyTable(ep.in),
			out:       copyTable(ep.out),
		}
	}

	var applied, skipped int
	for i := range q.Overlays {
		o := &q.Overlays[i]
		ep, ok := next[o.Endpoint]
		if !ok {
			skipped++
			d.logger.Debug("overlay for missing endpoint", "quirk", q.ID(), "ep", o.Endpoint,
				"cluster", fmt.Sprintf("0x%04X", o.ClusterID))
			continue
		}
		def, err := o.Effective(std)
		if err != nil {
			d.mu.Unlock()
			return fmt.Errorf("apply %s to %s: %w", q.ID(), d.IEEE, err)
		}
		table := ep.table(o.Side)
		if o.Mode == quirk.Remove {
			delete(table, o.ClusterID)
		} else {
			table[o.ClusterID] = d.newCluster(o.Endpoint, o.Side, def, true)
		}
		applied++
	}

	d.endpoints = next
	d.quirk = q
	d.mu.Unlock()

	d.logger.Info("quirk applied", "quirk", q.ID(), "overlays", applied, "skipped", skipped,
		"manufacturer_id", fmt.Sprintf("0x%04X", d.ManufacturerID()))
	return nil
}

func copyTable(m map[uint16]*Cluster) map[uint16]*Cluster {
	cp := make(map[uint16]*Cluster, len(m))
	for k, v := range m {
		cp[k] = v
	}
	return cp
}
