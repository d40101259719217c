package device

import (
	"context"
	"fmt"
	"sort"

	"zigbee-quirks/internal/ncp"
	"zigbee-quirks/internal/quirk"
	"zigbee-quirks/internal/zcl"
)

// Cluster is a cluster instance on one endpoint of a live device. Its schema
// is the standard definition, or the effective definition of the overlay
// installed by a quirk.
type Cluster struct {
	dev      *Device
	endpoint uint8
	side     quirk.Side
	def      *zcl.ClusterDef
	overlaid bool
}

// AttributeValue is one decoded attribute read result.
type AttributeValue struct {
	ID     uint16      `json:"attr_id"`
	Name   string      `json:"attr_name"`
	Status uint8       `json:"status"`
	Value  interface{} `json:"value,omitempty"`
	Error  string      `json:"error,omitempty"`
}

// ID returns the cluster id.
func (c *Cluster) ID() uint16 { return c.def.ID }

// Name returns the schema name.
func (c *Cluster) Name() string { return c.def.Name }

// Endpoint returns the endpoint the cluster lives on.
func (c *Cluster) Endpoint() uint8 { return c.endpoint }

// Side reports whether this is a server or client instance.
func (c *Cluster) Side() quirk.Side { return c.side }

// Overlaid reports whether the schema was installed by a quirk.
func (c *Cluster) Overlaid() bool { return c.overlaid }

// Def returns the cluster schema. Callers must not modify it.
func (c *Cluster) Def() *zcl.ClusterDef { return c.def }

// Attribute returns the schema of attribute id, or nil.
func (c *Cluster) Attribute(id uint16) *zcl.AttributeDef { return c.def.FindAttribute(id) }

func (c *Cluster) manufacturerSpecific(specific bool) bool {
	return specific || zcl.IsManufacturerCluster(c.def.ID)
}

// tag returns the manufacturer tagging for a frame. Standard frames are
// never tagged.
func (c *Cluster) tag(specific bool) ncp.Manufacturer {
	if !c.manufacturerSpecific(specific) {
		return ncp.Manufacturer{}
	}
	return ncp.Manufacturer{Specific: true, Code: c.dev.manufacturerIDFor(c.endpoint, c.def.ID, c.side)}
}

func (c *Cluster) attr(id uint16) (*zcl.AttributeDef, error) {
	a := c.def.FindAttribute(id)
	if a == nil {
		return nil, fmt.Errorf("%s attribute 0x%04X: %w", c.def.Name, id, ErrUnsupportedAttribute)
	}
	return a, nil
}

func (c *Cluster) attrByName(name string) (*zcl.AttributeDef, error) {
	a := c.def.FindAttributeByName(name)
	if a == nil {
		return nil, fmt.Errorf("%s attribute %q: %w", c.def.Name, name, ErrUnsupportedAttribute)
	}
	return a, nil
}

// ReadAttributes reads the given attributes. Standard and
// manufacturer-specific attributes go out in separate frames.
func (c *Cluster) ReadAttributes(ctx context.Context, ids ...uint16) ([]AttributeValue, error) {
	var std, mfr []uint16
	for _, id := range ids {
		a, err := c.attr(id)
		if err != nil {
			return nil, err
		}
		if !a.IsReadable() {
			return nil, fmt.Errorf("%s attribute %s is not readable: %w", c.def.Name, a.Name, ErrUnsupportedAttribute)
		}
		if c.manufacturerSpecific(a.ManufacturerSpecific) {
			mfr = append(mfr, id)
		} else {
			std = append(std, id)
		}
	}

	var out []AttributeValue
	for _, group := range []struct {
		ids      []uint16
		specific bool
	}{{std, false}, {mfr, true}} {
		if len(group.ids) == 0 {
			continue
		}
		resp, err := c.dev.transport.ReadAttributes(ctx, ncp.ReadAttributesRequest{
			DstAddr:      c.dev.ShortAddr,
			DstEP:        c.endpoint,
			ClusterID:    c.def.ID,
			AttrIDs:      group.ids,
			Manufacturer: c.tag(group.specific),
		})
		if err != nil {
			return nil, fmt.Errorf("read %s: %w", c.def.Name, err)
		}
		for _, r := range resp {
			out = append(out, c.decodeResponse(r))
		}
	}
	return out, nil
}

func (c *Cluster) decodeResponse(r ncp.AttributeResponse) AttributeValue {
	v := AttributeValue{ID: r.AttrID, Status: r.Status, Name: fmt.Sprintf("0x%04X", r.AttrID)}
	a := c.def.FindAttribute(r.AttrID)
	if a != nil {
		v.Name = a.Name
	}
	if r.Status != zcl.ZCLStatusSuccess {
		v.Error = zcl.StatusName(r.Status)
		return v
	}
	val, _, err := zcl.DecodeAttribute(a, r.DataType, r.Value)
	if err != nil {
		v.Error = err.Error()
		return v
	}
	v.Value = val
	return v
}

// ReadAttributesByName is ReadAttributes with attributes named by schema name.
func (c *Cluster) ReadAttributesByName(ctx context.Context, names ...string) ([]AttributeValue, error) {
	ids := make([]uint16, 0, len(names))
	for _, n := range names {
		a, err := c.attrByName(n)
		if err != nil {
			return nil, err
		}
		ids = append(ids, a.ID)
	}
	return c.ReadAttributes(ctx, ids...)
}

// Decode decodes a reported value of attribute id through the schema.
func (c *Cluster) Decode(id uint16, typeID uint8, data []byte) (interface{}, error) {
	val, _, err := zcl.DecodeAttribute(c.def.FindAttribute(id), typeID, data)
	return val, err
}

// WriteAttribute encodes value with the attribute's wire type and writes it.
func (c *Cluster) WriteAttribute(ctx context.Context, id uint16, value interface{}) error {
	a, err := c.attr(id)
	if err != nil {
		return err
	}
	return c.WriteAttributes(ctx, map[uint16]interface{}{a.ID: value})
}

// WriteAttributeByName is WriteAttribute with the attribute named by schema name.
func (c *Cluster) WriteAttributeByName(ctx context.Context, name string, value interface{}) error {
	a, err := c.attrByName(name)
	if err != nil {
		return err
	}
	return c.WriteAttributes(ctx, map[uint16]interface{}{a.ID: value})
}

// WriteAttributes writes several attributes. Every value is validated and
// encoded before anything is sent.
func (c *Cluster) WriteAttributes(ctx context.Context, values map[uint16]interface{}) error {
	ids := make([]uint16, 0, len(values))
	for id := range values {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })

	var std, mfr []ncp.WriteRecord
	for _, id := range ids {
		a, err := c.attr(id)
		if err != nil {
			return err
		}
		if !a.IsWritable() {
			return fmt.Errorf("%s attribute %s is read-only: %w", c.def.Name, a.Name, ErrUnsupportedAttribute)
		}
		data, err := zcl.EncodeAttribute(a, values[id])
		if err != nil {
			return fmt.Errorf("write %s.%s: %w", c.def.Name, a.Name, err)
		}
		rec := ncp.WriteRecord{AttrID: a.ID, DataType: a.EncodingType(), Value: data}
		if c.manufacturerSpecific(a.ManufacturerSpecific) {
			mfr = append(mfr, rec)
		} else {
			std = append(std, rec)
		}
	}

	for _, group := range []struct {
		records  []ncp.WriteRecord
		specific bool
	}{{std, false}, {mfr, true}} {
		if len(group.records) == 0 {
			continue
		}
		err := c.dev.transport.WriteAttributes(ctx, ncp.WriteAttributesRequest{
			DstAddr:      c.dev.ShortAddr,
			DstEP:        c.endpoint,
			ClusterID:    c.def.ID,
			Records:      group.records,
			Manufacturer: c.tag(group.specific),
		})
		if err != nil {
			return fmt.Errorf("write %s: %w", c.def.Name, err)
		}
	}
	return nil
}

// ConfigureReporting asks the device to report attribute id. The reportable
// change is only sent for analog types.
func (c *Cluster) ConfigureReporting(ctx context.Context, id uint16, rc quirk.ReportingConfig) error {
	a, err := c.attr(id)
	if err != nil {
		return err
	}
	typ := a.EncodingType()
	var change []byte
	switch zcl.TypeClassOf(typ) {
	case zcl.ClassUnsigned, zcl.ClassSigned, zcl.ClassFloat:
		change, err = zcl.EncodeValue(typ, rc.ReportableChange)
		if err != nil {
			return fmt.Errorf("reporting %s.%s: reportable change: %w", c.def.Name, a.Name, err)
		}
	}
	err = c.dev.transport.ConfigureReporting(ctx, ncp.ConfigureReportingRequest{
		DstAddr:      c.dev.ShortAddr,
		DstEP:        c.endpoint,
		ClusterID:    c.def.ID,
		AttrID:       a.ID,
		DataType:     typ,
		MinInterval:  rc.MinInterval,
		MaxInterval:  rc.MaxInterval,
		ReportChange: change,
		Manufacturer: c.tag(a.ManufacturerSpecific),
	})
	if err != nil {
		return fmt.Errorf("configure reporting %s.%s: %w", c.def.Name, a.Name, err)
	}
	return nil
}

// Command sends the named command with ordered arguments. Client instances
// send server-to-client commands.
func (c *Cluster) Command(ctx context.Context, name string, args ...interface{}) error {
	cmd := c.def.FindCommandByName(name)
	if cmd == nil {
		return fmt.Errorf("%s command %q: %w", c.def.Name, name, ErrUnknownCommand)
	}
	return c.send(ctx, cmd, args)
}

// CommandByID is Command with the command given by id.
func (c *Cluster) CommandByID(ctx context.Context, id uint8, args ...interface{}) error {
	dir := zcl.DirectionToServer
	if c.side == quirk.Client {
		dir = zcl.DirectionToClient
	}
	cmd := c.def.FindCommand(id, dir)
	if cmd == nil {
		return fmt.Errorf("%s command 0x%02X: %w", c.def.Name, id, ErrUnknownCommand)
	}
	return c.send(ctx, cmd, args)
}

func (c *Cluster) send(ctx context.Context, cmd *zcl.CommandDef, args []interface{}) error {
	payload, err := zcl.EncodeCommand(cmd, args...)
	if err != nil {
		return fmt.Errorf("%s: %w", c.def.Name, err)
	}
	err = c.dev.transport.SendCommand(ctx, ncp.ClusterCommandRequest{
		DstAddr:        c.dev.ShortAddr,
		DstEP:          c.endpoint,
		ClusterID:      c.def.ID,
		CommandID:      cmd.ID,
		Payload:        payload,
		ServerToClient: cmd.Direction == zcl.DirectionToClient,
		Manufacturer:   c.tag(cmd.ManufacturerSpecific),
	})
	if err != nil {
		return fmt.Errorf("%s.%s: %w", c.def.Name, cmd.Name, err)
	}
	return nil
}
