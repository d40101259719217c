package coordinator

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math/rand/v2"
	"sync"
	"sync/atomic"
	"time"

	"golang.org/x/sync/errgroup"

	"zigbee-quirks/internal/device"
	"zigbee-quirks/internal/ncp"
	"zigbee-quirks/internal/quirk"
	"zigbee-quirks/internal/store"
	"zigbee-quirks/internal/zcl"
	"zigbee-quirks/internal/zdo"
)

// restoreParallelism bounds how many stored devices are rebuilt at once.
const restoreParallelism = 8

type interviewEntry struct {
	cancel context.CancelFunc
	gen    uint64
}

// DeviceManager handles device lifecycle (announce, interview, leave) and
// keeps the live, quirk-corrected model of every known device.
type DeviceManager struct {
	coord  *Coordinator
	logger *slog.Logger

	// Interview cancellation: tracks active interview cancel funcs by IEEE.
	interviewMu      sync.Mutex
	interviewCancels map[string]interviewEntry
	interviewGen     atomic.Uint64
	interviewWg      sync.WaitGroup

	// Debounce duplicate announce events.
	lastAnnounceMu sync.Mutex
	lastAnnounce   map[string]time.Time

	// In-memory short address -> IEEE index for fast lookup.
	addrMu    sync.RWMutex
	addrIndex map[uint16]string

	liveMu sync.RWMutex
	live   map[string]*device.Device
}

// NewDeviceManager creates a new device manager.
func NewDeviceManager(coord *Coordinator) *DeviceManager {
	return &DeviceManager{
		coord:            coord,
		logger:           coord.logger.With("component", "device_manager"),
		interviewCancels: make(map[string]interviewEntry),
		lastAnnounce:     make(map[string]time.Time),
		addrIndex:        make(map[uint16]string),
		live:             make(map[string]*device.Device),
	}
}

// CancelAllInterviews cancels all running interview goroutines and waits for them.
func (dm *DeviceManager) CancelAllInterviews() {
	dm.interviewMu.Lock()
	for ieee, entry := range dm.interviewCancels {
		entry.cancel()
		delete(dm.interviewCancels, ieee)
	}
	dm.interviewMu.Unlock()
	dm.interviewWg.Wait()
}

// updateAddrIndex updates the short address -> IEEE mapping.
func (dm *DeviceManager) updateAddrIndex(ieee string, shortAddr uint16) {
	dm.addrMu.Lock()
	dm.addrIndex[shortAddr] = ieee
	dm.addrMu.Unlock()
}

// removeFromAddrIndex drops every short address mapped to ieee.
func (dm *DeviceManager) removeFromAddrIndex(ieee string) {
	dm.addrMu.Lock()
	for addr, storedIEEE := range dm.addrIndex {
		if storedIEEE == ieee {
			delete(dm.addrIndex, addr)
		}
	}
	dm.addrMu.Unlock()
}

// lookupIEEE finds IEEE address by short address from in-memory index.
func (dm *DeviceManager) lookupIEEE(shortAddr uint16) string {
	dm.addrMu.RLock()
	defer dm.addrMu.RUnlock()
	return dm.addrIndex[shortAddr]
}

// RebuildAddrIndex loads all devices from store and populates the index.
func (dm *DeviceManager) RebuildAddrIndex() {
	devices, err := dm.coord.Store().ListDevices()
	if err != nil {
		dm.logger.Error("rebuild addr index", "err", err)
		return
	}
	dm.addrMu.Lock()
	clear(dm.addrIndex)
	for _, d := range devices {
		dm.addrIndex[d.ShortAddress] = d.IEEEAddress
	}
	dm.addrMu.Unlock()
}

// lookupOrRebuild looks up an IEEE address by short address from the in-memory
// index. If not found, rebuilds the index from the store under a write lock
// with a double-check to avoid redundant rebuilds.
func (dm *DeviceManager) lookupOrRebuild(shortAddr uint16) string {
	if ieee := dm.lookupIEEE(shortAddr); ieee != "" {
		return ieee
	}

	dm.addrMu.Lock()
	defer dm.addrMu.Unlock()

	if ieee := dm.addrIndex[shortAddr]; ieee != "" {
		return ieee
	}

	devices, err := dm.coord.Store().ListDevices()
	if err != nil {
		dm.logger.Error("rebuild addr index for lookup", "err", err)
		return ""
	}
	var ieee string
	clear(dm.addrIndex)
	for _, d := range devices {
		dm.addrIndex[d.ShortAddress] = d.IEEEAddress
		if d.ShortAddress == shortAddr {
			ieee = d.IEEEAddress
		}
	}
	return ieee
}

// Live returns the live model of a device, or nil if it is not known or
// not yet interviewed.
func (dm *DeviceManager) Live(ieee string) *device.Device {
	dm.liveMu.RLock()
	defer dm.liveMu.RUnlock()
	return dm.live[ieee]
}

func (dm *DeviceManager) setLive(d *device.Device) {
	dm.liveMu.Lock()
	dm.live[d.IEEE] = d
	dm.liveMu.Unlock()
}

func (dm *DeviceManager) dropLive(ieee string) {
	dm.liveMu.Lock()
	delete(dm.live, ieee)
	dm.liveMu.Unlock()
}

// HandleLeave processes a device leave event: cancels interview, drops the
// live model and address index entry, deletes from store, and emits
// EventDeviceLeft.
func (dm *DeviceManager) HandleLeave(evt ncp.DeviceLeftEvent) {
	ieee := fmt.Sprintf("%016X", evt.IEEEAddr)
	dev, _ := dm.coord.Store().GetDevice(ieee)
	name := dev.Name()
	dm.logger.Info("device left", "ieee", ieee, "name", name)

	dm.interviewMu.Lock()
	if entry, ok := dm.interviewCancels[ieee]; ok {
		entry.cancel()
		delete(dm.interviewCancels, ieee)
	}
	dm.interviewMu.Unlock()

	dm.lastAnnounceMu.Lock()
	delete(dm.lastAnnounce, ieee)
	dm.lastAnnounceMu.Unlock()

	// ShortAddr may be 0 for NwkLeaveInd, so remove by IEEE.
	dm.removeFromAddrIndex(ieee)
	dm.dropLive(ieee)

	if err := dm.coord.Store().DeleteDevice(ieee); err != nil {
		dm.logger.Error("delete device on leave", "err", err, "ieee", ieee)
	} else {
		dm.logger.Info("device removed from store", "ieee", ieee, "name", name)
	}

	dm.coord.Events().Emit(Event{
		Type: EventDeviceLeft,
		Data: map[string]interface{}{"ieee": ieee},
	})
}

// HandleAnnounce processes a device announce event and starts an interview.
func (dm *DeviceManager) HandleAnnounce(evt ncp.DeviceAnnounceEvent) {
	ieee := fmt.Sprintf("%016X", evt.IEEEAddr)
	dm.updateAddrIndex(ieee, evt.ShortAddr)

	dev, err := dm.coord.Store().GetDevice(ieee)
	if err != nil {
		if !errors.Is(err, store.ErrNotFound) {
			dm.logger.Error("get device on announce", "err", err, "ieee", ieee)
			return
		}
		dev = &store.Device{
			IEEEAddress: ieee,
			JoinedAt:    time.Now(),
		}
	}
	dm.logger.Info("device announce", "ieee", ieee, "short", fmt.Sprintf("0x%04X", evt.ShortAddr), "name", dev.Name())
	dev.ShortAddress = evt.ShortAddr
	dev.LastSeen = time.Now()

	if err := dm.coord.Store().SaveDevice(dev); err != nil {
		dm.logger.Error("save device on announce", "err", err)
	}

	dm.coord.Events().Emit(Event{
		Type: EventDeviceAnnounce,
		Data: map[string]interface{}{
			"ieee":       ieee,
			"short_addr": evt.ShortAddr,
		},
	})

	dm.interviewMu.Lock()
	_, interviewing := dm.interviewCancels[ieee]
	dm.interviewMu.Unlock()
	if interviewing {
		dm.logger.Info("announce during interview, address updated", "ieee", ieee,
			"short", fmt.Sprintf("0x%04X", evt.ShortAddr))
		return
	}

	dm.lastAnnounceMu.Lock()
	if last, ok := dm.lastAnnounce[ieee]; ok && time.Since(last) < 3*time.Second {
		dm.lastAnnounceMu.Unlock()
		dm.logger.Debug("duplicate announce, interview already started", "ieee", ieee)
		return
	}
	dm.lastAnnounce[ieee] = time.Now()
	if len(dm.lastAnnounce) > 50 {
		for k, t := range dm.lastAnnounce {
			if time.Since(t) > time.Minute {
				delete(dm.lastAnnounce, k)
			}
		}
	}
	dm.lastAnnounceMu.Unlock()

	dm.interviewWg.Add(1)
	go dm.Interview(ieee)
}

// Interview queries a device for its descriptors and Basic identity, then
// attaches the matching quirk. Retries up to 3 times, re-reading the device
// from store each time to pick up any short address changes from re-joins.
func (dm *DeviceManager) Interview(ieee string) {
	gen := dm.interviewGen.Add(1)

	defer func() {
		dm.interviewMu.Lock()
		if entry, ok := dm.interviewCancels[ieee]; ok && entry.gen == gen {
			delete(dm.interviewCancels, ieee)
		}
		dm.interviewMu.Unlock()
		dm.interviewWg.Done()
	}()

	ctx, cancel := context.WithTimeout(dm.coord.Context(), 3*time.Minute)
	defer cancel()

	dm.interviewMu.Lock()
	if prev, ok := dm.interviewCancels[ieee]; ok {
		prev.cancel()
	}
	dm.interviewCancels[ieee] = interviewEntry{cancel: cancel, gen: gen}
	dm.interviewMu.Unlock()

	const maxRetries = 3
	for attempt := 1; attempt <= maxRetries; attempt++ {
		rec, err := dm.coord.Store().GetDevice(ieee)
		if err != nil {
			dm.logger.Error("interview: device not found", "ieee", ieee)
			return
		}

		dm.logger.Info("starting interview", "ieee", ieee, "name", rec.Name(),
			"short", fmt.Sprintf("0x%04X", rec.ShortAddress), "attempt", attempt)

		live, err := dm.interview(ctx, rec)
		if err != nil {
			dm.logger.Warn("interview failed", "err", err, "ieee", ieee, "attempt", attempt)
			if ctx.Err() != nil {
				return
			}
			if attempt < maxRetries {
				jitter := time.Duration(rand.IntN(3001)) * time.Millisecond
				delay := 5*time.Second + jitter
				dm.logger.Info("interview: will retry", "ieee", ieee, "delay", delay)
				select {
				case <-time.After(delay):
				case <-ctx.Done():
					return
				}
			}
			continue
		}

		q := dm.attachQuirk(live)
		// Configure right away while a sleepy device is still awake.
		dm.configureReporting(ctx, live, q)
		dm.persist(rec, live, q)
		dm.setLive(live)
		dm.emitInterviewed(live, q)
		return
	}

	dm.logger.Error("interview failed after retries", "ieee", ieee, "attempts", maxRetries)
}

// interview builds the live model of rec from what the device reports.
func (dm *DeviceManager) interview(ctx context.Context, rec *store.Device) (*device.Device, error) {
	raw, err := dm.coord.NCP().NodeDescriptor(ctx, rec.ShortAddress)
	if err != nil {
		return nil, fmt.Errorf("node descriptor: %w", err)
	}
	nd, err := zdo.ParseNodeDescriptor(raw)
	if err != nil {
		return nil, err
	}

	endpoints, err := dm.coord.NCP().ActiveEndpoints(ctx, rec.ShortAddress)
	if err != nil {
		return nil, fmt.Errorf("active endpoints: %w", err)
	}

	live := device.New(rec.IEEEAddress, rec.ShortAddress, rec.Manufacturer, rec.Model, nd, dm.coord.NCP(), dm.logger)
	for _, ep := range endpoints {
		sd, err := dm.coord.NCP().SimpleDescriptor(ctx, rec.ShortAddress, ep)
		if err != nil {
			dm.logger.Warn("interview: simple desc", "err", err, "ieee", rec.IEEEAddress, "ep", ep)
			continue
		}
		sd.Endpoint = ep
		live.AddEndpoint(*sd, dm.coord.Registry())
		dm.logger.Info("endpoint discovered",
			"ieee", rec.IEEEAddress, "ep", ep,
			"profile", fmt.Sprintf("0x%04X", sd.ProfileID),
			"device", fmt.Sprintf("0x%04X", sd.DeviceID),
			"in_clusters", len(sd.InClusters),
			"out_clusters", len(sd.OutClusters),
		)
	}
	if len(live.Endpoints()) == 0 {
		return nil, fmt.Errorf("no endpoint described")
	}

	if err := dm.readBasicAttributes(ctx, live); err != nil {
		return nil, err
	}
	return live, nil
}

// readBasicAttributes fills in manufacturer and model from the Basic cluster
// of the first endpoint that has one.
func (dm *DeviceManager) readBasicAttributes(ctx context.Context, live *device.Device) error {
	for _, ep := range live.Endpoints() {
		basic, err := live.Cluster(ep, 0x0000)
		if err != nil {
			continue
		}
		values, err := basic.ReadAttributesByName(ctx, "manufacturer", "model")
		if err != nil {
			return fmt.Errorf("read basic attributes: %w", err)
		}
		for _, v := range values {
			s, ok := v.Value.(string)
			if !ok {
				continue
			}
			switch v.Name {
			case "manufacturer":
				live.Manufacturer = s
			case "model":
				live.Model = s
			}
		}
		return nil
	}
	dm.logger.Warn("no basic cluster, identity unknown", "ieee", live.IEEE)
	return nil
}

// attachQuirk matches live against the quirk registry and applies the
// result. A failed application leaves the device on its standard schema.
func (dm *DeviceManager) attachQuirk(live *device.Device) *quirk.Quirk {
	q, ok := dm.coord.Quirks().Match(live.Manufacturer, live.Model, live.Shape())
	if !ok {
		dm.logger.Info("no quirk for device", "ieee", live.IEEE,
			"manufacturer", live.Manufacturer, "model", live.Model)
		return nil
	}
	if err := live.ApplyQuirk(q, dm.coord.Registry()); err != nil {
		dm.logger.Error("apply quirk", "err", err, "ieee", live.IEEE, "quirk", q.ID())
		return nil
	}
	return q
}

// configureReporting binds and configures reporting for every entity of q
// that asks for it.
func (dm *DeviceManager) configureReporting(ctx context.Context, live *device.Device, q *quirk.Quirk) {
	if q == nil {
		return
	}
	for i := range q.Entities {
		e := &q.Entities[i]
		if e.Reporting == nil {
			continue
		}
		cl, err := live.Cluster(e.Endpoint, e.ClusterID)
		if err != nil {
			dm.logger.Warn("configure: entity cluster", "err", err, "entity", e.ID())
			continue
		}
		if err := dm.coord.Bind(ctx, live, e.Endpoint, e.ClusterID); err != nil {
			dm.logger.Warn("configure: bind", "err", err, "ieee", live.IEEE,
				"ep", e.Endpoint, "cluster", fmt.Sprintf("0x%04X", e.ClusterID))
		}
		if err := cl.ConfigureReporting(ctx, e.AttributeID, *e.Reporting); err != nil {
			dm.logger.Warn("configure: reporting", "err", err, "ieee", live.IEEE, "entity", e.ID())
			continue
		}
		dm.logger.Info("configured reporting", "ieee", live.IEEE, "entity", e.ID(),
			"min", e.Reporting.MinInterval, "max", e.Reporting.MaxInterval)
	}
}

func (dm *DeviceManager) persist(rec *store.Device, live *device.Device, q *quirk.Quirk) {
	nd := live.ReportedNodeDescriptor()
	rec.Manufacturer = live.Manufacturer
	rec.Model = live.Model
	if rec.FriendlyName == "" {
		rec.FriendlyName = live.Model
	}
	rec.NodeDescriptor = &nd
	rec.QuirkID = ""
	if q != nil {
		rec.QuirkID = q.ID()
	}
	// The stored layout is the reported one; overlays are re-applied on load.
	rec.Endpoints = rec.Endpoints[:0]
	for _, sd := range live.ReportedEndpoints() {
		rec.Endpoints = append(rec.Endpoints, store.Endpoint{
			ID:          sd.Endpoint,
			ProfileID:   sd.ProfileID,
			DeviceID:    sd.DeviceID,
			InClusters:  sd.InClusters,
			OutClusters: sd.OutClusters,
		})
	}
	rec.Interviewed = true
	if err := dm.coord.Store().SaveDevice(rec); err != nil {
		dm.logger.Error("interview: save", "err", err, "ieee", rec.IEEEAddress)
		return
	}
	dm.logger.Info("interview complete", "ieee", rec.IEEEAddress, "name", rec.Name(),
		"endpoints", len(rec.Endpoints), "quirk", rec.QuirkID)
}

func (dm *DeviceManager) emitInterviewed(live *device.Device, q *quirk.Quirk) {
	data := map[string]interface{}{
		"ieee":         live.IEEE,
		"manufacturer": live.Manufacturer,
		"model":        live.Model,
	}
	if q == nil {
		dm.coord.Events().Emit(Event{Type: EventDeviceInterviewed, Data: data})
		return
	}
	data["quirk"] = q.ID()
	data["manufacturer_id"] = live.ManufacturerID()
	data["entities"] = len(q.Entities)
	dm.coord.Events().Emit(Event{Type: EventQuirkApplied, Data: data})
}

// Restore rebuilds the live model of every interviewed device in the store
// and re-applies its quirk. Devices are rebuilt in parallel. It returns the
// number of devices restored.
func (dm *DeviceManager) Restore(ctx context.Context) (int, error) {
	recs, err := dm.coord.Store().ListDevices()
	if err != nil {
		return 0, err
	}

	var restored atomic.Int32
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(restoreParallelism)
	for _, rec := range recs {
		if !rec.Interviewed {
			continue
		}
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			dm.setLive(dm.restore(rec))
			restored.Add(1)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return int(restored.Load()), err
	}
	return int(restored.Load()), nil
}

func (dm *DeviceManager) restore(rec *store.Device) *device.Device {
	var nd zdo.NodeDescriptor
	if rec.NodeDescriptor != nil {
		nd = *rec.NodeDescriptor
	}
	live := device.New(rec.IEEEAddress, rec.ShortAddress, rec.Manufacturer, rec.Model, nd, dm.coord.NCP(), dm.logger)
	for _, ep := range rec.Endpoints {
		live.AddEndpoint(ncp.SimpleDescriptor{
			Endpoint:    ep.ID,
			ProfileID:   ep.ProfileID,
			DeviceID:    ep.DeviceID,
			InClusters:  ep.InClusters,
			OutClusters: ep.OutClusters,
		}, dm.coord.Registry())
	}

	q, ok := dm.coord.Quirks().Lookup(rec.QuirkID)
	if !ok || rec.QuirkID == "" {
		// The registry may have gained a quirk since the interview.
		q, ok = dm.coord.Quirks().Match(rec.Manufacturer, rec.Model, live.Shape())
	}
	if !ok {
		return live
	}
	if err := live.ApplyQuirk(q, dm.coord.Registry()); err != nil {
		dm.logger.Error("re-apply quirk", "err", err, "ieee", rec.IEEEAddress, "quirk", q.ID())
		return live
	}
	if q.ID() != rec.QuirkID {
		err := dm.coord.Store().UpdateDevice(rec.IEEEAddress, func(d *store.Device) error {
			d.QuirkID = q.ID()
			return nil
		})
		if err != nil {
			dm.logger.Error("update quirk id", "err", err, "ieee", rec.IEEEAddress)
		}
	}
	return live
}

// HandleAttributeReport decodes a report through the device's live schema,
// records the state of the exposed entity and emits the events.
func (dm *DeviceManager) HandleAttributeReport(evt ncp.AttributeReportEvent) {
	ieee := dm.lookupOrRebuild(evt.SrcAddr)
	live := dm.Live(ieee)

	def := dm.schemaFor(live, evt.SrcEP, evt.ClusterID)
	attrName := fmt.Sprintf("0x%04X", evt.AttrID)
	attr := def.FindAttribute(evt.AttrID)
	if attr != nil {
		attrName = attr.Name
	}

	var decoded interface{}
	if len(evt.Value) > 0 {
		val, _, err := zcl.DecodeAttribute(attr, evt.DataType, evt.Value)
		if err == nil {
			decoded = val
		} else {
			decoded = fmt.Sprintf("%X", evt.Value)
		}
	}

	var entity *quirk.Entity
	if live != nil {
		if q := live.Quirk(); q != nil {
			entity = q.EntityFor(evt.SrcEP, evt.ClusterID, evt.AttrID)
		}
	}
	var state interface{}
	if entity != nil && decoded != nil {
		state = entity.State(decoded)
	}

	var name string
	if ieee != "" {
		err := dm.coord.Store().UpdateDevice(ieee, func(d *store.Device) error {
			d.LastSeen = time.Now()
			if evt.LQI > 0 {
				d.LQI = evt.LQI
				d.RSSI = evt.RSSI
			}
			if entity != nil && state != nil {
				if d.State == nil {
					d.State = make(map[string]any)
				}
				d.State[entity.ID()] = state
			}
			name = d.Name()
			return nil
		})
		if err != nil {
			dm.logger.Error("save report", "err", err, "ieee", ieee)
		}
	}

	dm.logger.Info("attribute report",
		"ieee", ieee,
		"name", name,
		"cluster", def.Name,
		"attr", attrName,
		"value", decoded,
	)

	dm.coord.Events().Emit(Event{
		Type: EventAttributeReport,
		Data: map[string]interface{}{
			"ieee":         ieee,
			"short_addr":   evt.SrcAddr,
			"endpoint":     evt.SrcEP,
			"cluster_id":   evt.ClusterID,
			"cluster_name": def.Name,
			"attr_id":      evt.AttrID,
			"attr_name":    attrName,
			"value":        decoded,
		},
	})

	if entity == nil || state == nil {
		return
	}
	dm.coord.Events().Emit(Event{
		Type: EventEntityState,
		Data: map[string]interface{}{
			"ieee":      ieee,
			"entity_id": entity.ID(),
			"platform":  string(entity.Platform),
			"state":     state,
		},
	})
}

// schemaFor returns the cluster schema reports from (ep, clusterID) are
// decoded with: the live one when the device is known, else the standard one.
func (dm *DeviceManager) schemaFor(live *device.Device, ep uint8, clusterID uint16) *zcl.ClusterDef {
	if live != nil {
		if cl, err := live.Cluster(ep, clusterID); err == nil {
			return cl.Def()
		}
	}
	if def := dm.coord.Registry().Get(clusterID); def != nil {
		return def
	}
	return &zcl.ClusterDef{ID: clusterID, Name: fmt.Sprintf("0x%04X", clusterID)}
}

// HandleClusterCommand names an incoming cluster command through the live
// schema and emits it.
func (dm *DeviceManager) HandleClusterCommand(evt ncp.ClusterCommandEvent) {
	ieee := dm.lookupOrRebuild(evt.SrcAddr)
	clusterName := fmt.Sprintf("0x%04X", evt.ClusterID)
	cmdName := fmt.Sprintf("0x%02X", evt.CommandID)

	if live := dm.Live(ieee); live != nil {
		// Commands come from the device's client side, responses from its server side.
		if cl, err := live.ClientCluster(evt.SrcEP, evt.ClusterID); err == nil {
			clusterName = cl.Name()
			if cmd := cl.Def().FindCommand(evt.CommandID, zcl.DirectionToServer); cmd != nil {
				cmdName = cmd.Name
			}
		} else if cl, err := live.Cluster(evt.SrcEP, evt.ClusterID); err == nil {
			clusterName = cl.Name()
			if cmd := cl.Def().FindCommand(evt.CommandID, zcl.DirectionToClient); cmd != nil {
				cmdName = cmd.Name
			}
		}
	}

	dm.logger.Info("cluster command", "ieee", ieee, "cluster", clusterName, "command", cmdName)
	dm.coord.Events().Emit(Event{
		Type: EventClusterCommand,
		Data: map[string]interface{}{
			"ieee":         ieee,
			"endpoint":     evt.SrcEP,
			"cluster_id":   evt.ClusterID,
			"cluster_name": clusterName,
			"command_id":   evt.CommandID,
			"command_name": cmdName,
			"payload":      fmt.Sprintf("%X", evt.Payload),
		},
	})
}

// ListDevices returns all known devices.
func (dm *DeviceManager) ListDevices() ([]*store.Device, error) {
	return dm.coord.Store().ListDevices()
}

// GetDevice returns a device by IEEE address.
func (dm *DeviceManager) GetDevice(ieee string) (*store.Device, error) {
	return dm.coord.Store().GetDevice(ieee)
}
