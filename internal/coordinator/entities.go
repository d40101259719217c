package coordinator

import (
	"context"
	"errors"
	"fmt"

	"zigbee-quirks/internal/device"
	"zigbee-quirks/internal/quirk"
	"zigbee-quirks/internal/store"
	"zigbee-quirks/internal/zcl"
)

var (
	// ErrUnknownDevice is returned for devices with no live model.
	ErrUnknownDevice = errors.New("unknown device")
	// ErrUnknownEntity is returned for entity ids the device's quirk does not expose.
	ErrUnknownEntity = errors.New("unknown entity")
)

func (c *Coordinator) liveDevice(ieee string) (*device.Device, error) {
	live := c.devices.Live(ieee)
	if live == nil {
		return nil, fmt.Errorf("%s: %w", ieee, ErrUnknownDevice)
	}
	return live, nil
}

func (c *Coordinator) entity(ieee, entityID string) (*device.Device, *quirk.Entity, error) {
	live, err := c.liveDevice(ieee)
	if err != nil {
		return nil, nil, err
	}
	q := live.Quirk()
	if q == nil {
		return nil, nil, fmt.Errorf("%s has no quirk, entity %q: %w", ieee, entityID, ErrUnknownEntity)
	}
	e := q.Entity(entityID)
	if e == nil {
		return nil, nil, fmt.Errorf("%s entity %q: %w", ieee, entityID, ErrUnknownEntity)
	}
	return live, e, nil
}

// Entities returns the entities the device's quirk exposes, or nil when no
// quirk is applied.
func (c *Coordinator) Entities(ieee string) ([]quirk.Entity, error) {
	live, err := c.liveDevice(ieee)
	if err != nil {
		return nil, err
	}
	q := live.Quirk()
	if q == nil {
		return nil, nil
	}
	return q.Entities, nil
}

// WriteEntity validates value against the entity's constraints and writes
// it to the backing attribute. Rejected values never reach the device.
func (c *Coordinator) WriteEntity(ctx context.Context, ieee, entityID string, value interface{}) error {
	live, e, err := c.entity(ieee, entityID)
	if err != nil {
		return err
	}
	v, err := e.Coerce(value)
	if err != nil {
		return err
	}
	cl, err := live.Cluster(e.Endpoint, e.ClusterID)
	if err != nil {
		return err
	}
	if err := cl.WriteAttribute(ctx, e.AttributeID, v); err != nil {
		return fmt.Errorf("write entity %s: %w", entityID, err)
	}
	c.logger.Info("entity written", "ieee", ieee, "entity", entityID, "value", v)
	c.recordState(ieee, e, e.State(v))
	return nil
}

// ReadEntity reads the entity's attribute from the device and returns its
// state as reported to the consumer.
func (c *Coordinator) ReadEntity(ctx context.Context, ieee, entityID string) (interface{}, error) {
	live, e, err := c.entity(ieee, entityID)
	if err != nil {
		return nil, err
	}
	cl, err := live.Cluster(e.Endpoint, e.ClusterID)
	if err != nil {
		return nil, err
	}
	values, err := cl.ReadAttributes(ctx, e.AttributeID)
	if err != nil {
		return nil, err
	}
	for _, v := range values {
		if v.ID != e.AttributeID {
			continue
		}
		if v.Status != zcl.ZCLStatusSuccess || v.Error != "" {
			return nil, fmt.Errorf("read entity %s: %s", entityID, v.Error)
		}
		state := e.State(v.Value)
		c.recordState(ieee, e, state)
		return state, nil
	}
	return nil, fmt.Errorf("read entity %s: no value in response", entityID)
}

func (c *Coordinator) recordState(ieee string, e *quirk.Entity, state interface{}) {
	err := c.store.UpdateDevice(ieee, func(d *store.Device) error {
		if d.State == nil {
			d.State = make(map[string]any)
		}
		d.State[e.ID()] = state
		return nil
	})
	if err != nil {
		c.logger.Warn("record entity state", "err", err, "ieee", ieee, "entity", e.ID())
	}
	c.events.Emit(Event{
		Type: EventEntityState,
		Data: map[string]interface{}{
			"ieee":      ieee,
			"entity_id": e.ID(),
			"platform":  string(e.Platform),
			"state":     state,
		},
	})
}

// ReadAttributes reads attributes of a device cluster through its live,
// quirk-corrected schema.
func (c *Coordinator) ReadAttributes(ctx context.Context, ieee string, ep uint8, clusterID uint16, attrIDs ...uint16) ([]device.AttributeValue, error) {
	live, err := c.liveDevice(ieee)
	if err != nil {
		return nil, err
	}
	cl, err := live.Cluster(ep, clusterID)
	if err != nil {
		return nil, err
	}
	return cl.ReadAttributes(ctx, attrIDs...)
}

// SendCommand sends the named command of a device's server cluster.
func (c *Coordinator) SendCommand(ctx context.Context, ieee string, ep uint8, clusterID uint16, name string, args ...interface{}) error {
	live, err := c.liveDevice(ieee)
	if err != nil {
		return err
	}
	cl, err := live.Cluster(ep, clusterID)
	if err != nil {
		return err
	}
	return cl.Command(ctx, name, args...)
}
