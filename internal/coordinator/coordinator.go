package coordinator

import (
	"context"
	"encoding/hex"
	"fmt"
	"log/slog"
	"strings"

	"zigbee-quirks/internal/ncp"
	"zigbee-quirks/internal/quirk"
	"zigbee-quirks/internal/store"
	"zigbee-quirks/internal/zcl"
)

// ParseIEEE parses "DD:DD:DD:DD:DD:DD:DD:DD" or "DDDDDDDDDDDDDDDD" into [8]byte.
func ParseIEEE(s string) ([8]byte, error) {
	var result [8]byte
	s = strings.ReplaceAll(s, ":", "")
	b, err := hex.DecodeString(s)
	if err != nil {
		return result, fmt.Errorf("parse ieee address: %w", err)
	}
	if len(b) != 8 {
		return result, fmt.Errorf("ieee address must be 8 bytes, got %d", len(b))
	}
	copy(result[:], b)
	return result, nil
}

// Coordinator connects the NCP backend to the quirk engine: it interviews
// devices, applies the matching quirk and routes traffic through the
// corrected device model.
type Coordinator struct {
	ncp       ncp.NCP
	store     store.Store
	registry  *zcl.Registry
	quirks    *quirk.Registry
	events    *EventBus
	devices   *DeviceManager
	logger    *slog.Logger
	localIEEE [8]byte // coordinator's own IEEE address, cached at Start
	ctx       context.Context
	cancel    context.CancelFunc
}

// New creates a new Coordinator. quirks should be frozen before traffic
// starts flowing.
func New(backend ncp.NCP, st store.Store, registry *zcl.Registry, quirks *quirk.Registry, events *EventBus, logger *slog.Logger) *Coordinator {
	ctx, cancel := context.WithCancel(context.Background())
	c := &Coordinator{
		ncp:      backend,
		store:    st,
		registry: registry,
		quirks:   quirks,
		events:   events,
		logger:   logger,
		ctx:      ctx,
		cancel:   cancel,
	}
	c.devices = NewDeviceManager(c)
	c.devices.RebuildAddrIndex()
	c.registerIndicationHandlers()
	return c
}

// Context returns the coordinator's context, which is cancelled on Stop().
func (c *Coordinator) Context() context.Context {
	return c.ctx
}

// Start caches the coordinator address and rebuilds the live model of every
// stored device, re-applying its quirk.
func (c *Coordinator) Start(ctx context.Context) error {
	if !c.quirks.Frozen() {
		c.logger.Warn("quirk registry not frozen, freezing now")
		c.quirks.Freeze()
	}
	c.cacheLocalIEEE(ctx)
	n, err := c.devices.Restore(ctx)
	if err != nil {
		return fmt.Errorf("restore devices: %w", err)
	}
	c.logger.Info("coordinator started", "devices", n, "quirks", c.quirks.Len())
	return nil
}

func (c *Coordinator) cacheLocalIEEE(ctx context.Context) {
	ieee, err := c.ncp.GetLocalIEEE(ctx)
	if err != nil {
		c.logger.Warn("get coordinator IEEE", "err", err)
		return
	}
	c.localIEEE = ieee
	c.logger.Info("coordinator IEEE", "ieee", fmt.Sprintf("%016X", ieee))
}

// LocalIEEE returns the coordinator's own IEEE address.
func (c *Coordinator) LocalIEEE() [8]byte {
	return c.localIEEE
}

// Stop cancels the coordinator context and waits for in-progress interviews.
func (c *Coordinator) Stop() {
	c.cancel()
	c.devices.CancelAllInterviews()
}

// NCP returns the underlying NCP backend.
func (c *Coordinator) NCP() ncp.NCP {
	return c.ncp
}

// Store returns the store.
func (c *Coordinator) Store() store.Store {
	return c.store
}

// Registry returns the standard ZCL registry.
func (c *Coordinator) Registry() *zcl.Registry {
	return c.registry
}

// Quirks returns the quirk registry.
func (c *Coordinator) Quirks() *quirk.Registry {
	return c.quirks
}

// Events returns the event bus.
func (c *Coordinator) Events() *EventBus {
	return c.events
}

// Devices returns the device manager.
func (c *Coordinator) Devices() *DeviceManager {
	return c.devices
}

func (c *Coordinator) registerIndicationHandlers() {
	c.ncp.OnDeviceLeft(func(evt ncp.DeviceLeftEvent) {
		c.devices.HandleLeave(evt)
	})
	c.ncp.OnDeviceAnnounce(func(evt ncp.DeviceAnnounceEvent) {
		c.devices.HandleAnnounce(evt)
	})
	c.ncp.OnAttributeReport(func(evt ncp.AttributeReportEvent) {
		c.devices.HandleAttributeReport(evt)
	})
	c.ncp.OnClusterCommand(func(evt ncp.ClusterCommandEvent) {
		c.devices.HandleClusterCommand(evt)
	})
}
