package quirk

import (
	"errors"
	"fmt"

	"zigbee-quirks/internal/zcl"
	"zigbee-quirks/internal/zdo"
)

// Builder accumulates a quirk declaration. Operations record errors instead
// of returning them; Build and Commit report everything that went wrong.
// Once committed, every further operation fails with ErrCommitted.
type Builder struct {
	signatures     []Signature
	shape          map[uint8][]uint16
	overlays       []ClusterOverlay
	nodeDescriptor *zdo.NodeDescriptor
	manufacturerID *uint16
	entities       []Entity
	errs           []error
	committed      bool
}

// NewBuilder starts a quirk for the given manufacturer and model.
func NewBuilder(manufacturer, model string) *Builder {
	b := &Builder{}
	if manufacturer != "" || model != "" {
		b.signatures = append(b.signatures, Signature{Manufacturer: manufacturer, Model: model})
	}
	return b
}

func (b *Builder) do(fn func()) *Builder {
	if b.committed {
		b.errs = append(b.errs, ErrCommitted)
		return b
	}
	fn()
	return b
}

// AppliesTo adds another (manufacturer, model) key the quirk answers to.
func (b *Builder) AppliesTo(manufacturer, model string) *Builder {
	return b.do(func() {
		if manufacturer == "" || model == "" {
			b.errs = append(b.errs, fmt.Errorf("applies to %q/%q: manufacturer and model required: %w", manufacturer, model, ErrIncompleteBuild))
			return
		}
		b.signatures = append(b.signatures, Signature{Manufacturer: manufacturer, Model: model})
	})
}

// MatchesEndpoint adds an endpoint shape requirement. Wildcard quirks, built
// without any manufacturer/model, match on this shape alone.
func (b *Builder) MatchesEndpoint(ep uint8, clusters ...uint16) *Builder {
	return b.do(func() {
		if b.shape == nil {
			b.shape = make(map[uint8][]uint16)
		}
		b.shape[ep] = append(b.shape[ep], clusters...)
	})
}

func (b *Builder) putOverlay(o ClusterOverlay, opts []OverlayOption) {
	for _, opt := range opts {
		opt(&o)
	}
	for i := range b.overlays {
		if b.overlays[i].sameSlot(&o) {
			b.overlays[i] = o
			return
		}
	}
	b.overlays = append(b.overlays, o)
}

// Replaces installs def in place of the endpoint's cluster with the same id.
// A later overlay for the same endpoint and cluster replaces an earlier one.
func (b *Builder) Replaces(def zcl.ClusterDef, opts ...OverlayOption) *Builder {
	return b.do(func() {
		b.putOverlay(ClusterOverlay{Mode: Replace, Endpoint: DefaultEndpoint, ClusterID: def.ID, Def: *def.DeepCopy()}, opts)
	})
}

// Extends adds the attributes and commands of def to the standard cluster
// with the same id. Inherited attributes keep their standard behaviour.
func (b *Builder) Extends(def zcl.ClusterDef, opts ...OverlayOption) *Builder {
	return b.do(func() {
		b.putOverlay(ClusterOverlay{Mode: Extend, Endpoint: DefaultEndpoint, ClusterID: def.ID, Def: *def.DeepCopy()}, opts)
	})
}

// Removes deletes a cluster from the endpoint.
func (b *Builder) Removes(clusterID uint16, opts ...OverlayOption) *Builder {
	return b.do(func() {
		b.putOverlay(ClusterOverlay{Mode: Remove, Endpoint: DefaultEndpoint, ClusterID: clusterID, Def: zcl.ClusterDef{ID: clusterID}}, opts)
	})
}

// NodeDescriptor replaces the device's self-reported node descriptor. It
// does not change the manufacturer id override.
func (b *Builder) NodeDescriptor(nd zdo.NodeDescriptor) *Builder {
	return b.do(func() { b.nodeDescriptor = &nd })
}

// ManufacturerIDOverride sets the manufacturer id used on manufacturer-specific
// frames. It does not change the node descriptor.
func (b *Builder) ManufacturerIDOverride(id uint16) *Builder {
	return b.do(func() { b.manufacturerID = &id })
}

func (b *Builder) addEntity(e Entity, opts []EntityOption) *Builder {
	return b.do(func() {
		e.Endpoint = DefaultEndpoint
		for _, opt := range opts {
			opt(&e)
		}
		b.entities = append(b.entities, e)
	})
}

// Sensor exposes a read-only numeric or textual attribute.
func (b *Builder) Sensor(attribute string, clusterID uint16, opts ...EntityOption) *Builder {
	return b.addEntity(Entity{AttributeName: attribute, ClusterID: clusterID, Platform: PlatformSensor}, opts)
}

// BinarySensor exposes a read-only on/off attribute.
func (b *Builder) BinarySensor(attribute string, clusterID uint16, opts ...EntityOption) *Builder {
	return b.addEntity(Entity{AttributeName: attribute, ClusterID: clusterID, Platform: PlatformBinarySensor}, opts)
}

// Number exposes a writable numeric attribute bounded by min, max and step.
func (b *Builder) Number(attribute string, clusterID uint16, min, max, step float64, opts ...EntityOption) *Builder {
	return b.addEntity(Entity{
		AttributeName: attribute,
		ClusterID:     clusterID,
		Platform:      PlatformNumber,
		Number:        &NumberConstraints{Min: min, Max: max, Step: step},
	}, opts)
}

// Enum exposes a writable enumeration as a single select.
func (b *Builder) Enum(attribute string, enum *zcl.EnumDef, clusterID uint16, opts ...EntityOption) *Builder {
	return b.addEntity(Entity{AttributeName: attribute, ClusterID: clusterID, Platform: PlatformSelect, Enum: enum}, opts)
}

// Switch exposes a writable boolean attribute.
func (b *Builder) Switch(attribute string, clusterID uint16, opts ...EntityOption) *Builder {
	return b.addEntity(Entity{AttributeName: attribute, ClusterID: clusterID, Platform: PlatformSwitch}, opts)
}

// Clone returns a new builder in the Building state sharing every overlay,
// entity and identity correction of b. With omitMatchData the clone starts
// without b's manufacturer/model keys, ready for AppliesTo. Clone does not
// modify b. Cloning a committed builder yields a builder whose Build and
// Commit fail with ErrCommitted, so clones are taken before Commit.
func (b *Builder) Clone(omitMatchData bool) *Builder {
	if b.committed {
		return &Builder{errs: []error{ErrCommitted}}
	}
	c := &Builder{errs: append([]error(nil), b.errs...)}
	if !omitMatchData {
		for _, s := range b.signatures {
			c.signatures = append(c.signatures, s.clone())
		}
	}
	if b.shape != nil {
		c.shape = Signature{Endpoints: b.shape}.clone().Endpoints
	}
	for _, o := range b.overlays {
		c.overlays = append(c.overlays, o.clone())
	}
	for _, e := range b.entities {
		c.entities = append(c.entities, e.clone())
	}
	if b.nodeDescriptor != nil {
		nd := *b.nodeDescriptor
		c.nodeDescriptor = &nd
	}
	if b.manufacturerID != nil {
		id := *b.manufacturerID
		c.manufacturerID = &id
	}
	return c
}

// Committed reports whether the builder reached its terminal state.
func (b *Builder) Committed() bool {
	return b.committed
}

// Build validates the declaration and returns the quirk without registering
// it. std supplies the standard clusters that Extend overlays and entities
// may refer to.
func (b *Builder) Build(std *zcl.Registry) (*Quirk, error) {
	if b.committed {
		return nil, ErrCommitted
	}
	if len(b.errs) > 0 {
		return nil, errors.Join(b.errs...)
	}

	q := &Quirk{}
	for _, s := range b.signatures {
		s = s.clone()
		s.Endpoints = Signature{Endpoints: b.shape}.clone().Endpoints
		q.Signatures = append(q.Signatures, s)
	}
	if len(q.Signatures) == 0 {
		if len(b.shape) == 0 {
			return nil, fmt.Errorf("no manufacturer/model and no endpoint shape: %w", ErrIncompleteBuild)
		}
		q.Signatures = []Signature{{Endpoints: Signature{Endpoints: b.shape}.clone().Endpoints}}
	}

	var errs []error
	effective := make(map[*ClusterOverlay]*zcl.ClusterDef, len(b.overlays))
	for _, o := range b.overlays {
		o = o.clone()
		if err := o.check(); err != nil {
			errs = append(errs, err)
			continue
		}
		q.Overlays = append(q.Overlays, o)
	}
	for i := range q.Overlays {
		o := &q.Overlays[i]
		def, err := o.Effective(std)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		effective[o] = def
	}

	seen := make(map[string]bool, len(b.entities))
	for _, e := range b.entities {
		e = e.clone()
		if err := resolveEntity(&e, q, effective, std); err != nil {
			errs = append(errs, err)
			continue
		}
		if seen[e.ID()] {
			errs = append(errs, fmt.Errorf("entity %s declared twice: %w", e.ID(), ErrIncompleteBuild))
			continue
		}
		seen[e.ID()] = true
		q.Entities = append(q.Entities, e)
	}
	if len(errs) > 0 {
		return nil, fmt.Errorf("quirk %s: %w", q.ID(), errors.Join(errs...))
	}

	if b.nodeDescriptor != nil {
		nd := *b.nodeDescriptor
		q.NodeDescriptor = &nd
	}
	if b.manufacturerID != nil {
		id := *b.manufacturerID
		q.ManufacturerID = &id
	}
	return q, nil
}

func resolveEntity(e *Entity, q *Quirk, effective map[*ClusterOverlay]*zcl.ClusterDef, std *zcl.Registry) error {
	var def *zcl.ClusterDef
	if o := q.Overlay(e.Endpoint, e.ClusterID, Server); o != nil {
		if o.Mode == Remove {
			return fmt.Errorf("entity %s: cluster 0x%04X is removed on endpoint %d: %w", e.ID(), e.ClusterID, e.Endpoint, ErrIncompleteBuild)
		}
		def = effective[o]
		if def == nil {
			// The overlay itself failed; its error is already reported.
			return fmt.Errorf("entity %s: cluster 0x%04X overlay is invalid: %w", e.ID(), e.ClusterID, ErrIncompleteBuild)
		}
	} else if std != nil {
		def = std.Get(e.ClusterID)
	}
	if def == nil {
		return fmt.Errorf("entity %s: cluster 0x%04X is not declared by any overlay or standard cluster: %w", e.ID(), e.ClusterID, ErrIncompleteBuild)
	}
	attr := def.FindAttributeByName(e.AttributeName)
	if attr == nil {
		return fmt.Errorf("entity %s: attribute %q not declared on %s (0x%04X): %w", e.ID(), e.AttributeName, def.Name, e.ClusterID, ErrIncompleteBuild)
	}
	e.AttributeID = attr.ID
	e.Attribute = *attr
	if e.Platform == PlatformSelect && e.Enum == nil {
		e.Enum = attr.Enum
	}
	return e.check()
}

// Commit builds the quirk and inserts it into reg. Committing is terminal:
// a second Commit fails with ErrCommitted, and a duplicate key fails with
// ErrDuplicateRegistration leaving the earlier registration in place.
func (b *Builder) Commit(reg *Registry) (*Quirk, error) {
	q, err := b.Build(reg.Standard())
	if err != nil {
		return nil, err
	}
	if err := reg.Register(q); err != nil {
		return nil, err
	}
	b.committed = true
	return q, nil
}
