package quirk

import (
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"

	"zigbee-quirks/internal/zcl"
)

// Registry maps (manufacturer, model) keys to committed quirks. It is filled
// by a single writer at startup and frozen before devices are matched; after
// Freeze lookups take no lock.
type Registry struct {
	mu        sync.Mutex
	frozen    atomic.Bool
	std       *zcl.Registry
	byKey     map[string]*Quirk
	wildcards []*Quirk
	all       []*Quirk
	logger    *slog.Logger
}

// NewRegistry creates an empty quirk registry. std holds the standard
// clusters that quirks extend or reference.
func NewRegistry(std *zcl.Registry, logger *slog.Logger) *Registry {
	return &Registry{
		std:    std,
		byKey:  make(map[string]*Quirk),
		logger: logger,
	}
}

// Standard returns the standard cluster registry.
func (r *Registry) Standard() *zcl.Registry {
	return r.std
}

// Register inserts q under every key it declares. Either all keys are
// inserted or none: a key already present fails with
// ErrDuplicateRegistration and leaves the existing registration in place.
func (r *Registry) Register(q *Quirk) error {
	if q == nil || len(q.Signatures) == 0 {
		return fmt.Errorf("register: quirk has no signature: %w", ErrIncompleteBuild)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.frozen.Load() {
		return fmt.Errorf("register %s: %w", q.ID(), ErrRegistryFrozen)
	}

	keys := make(map[string]bool, len(q.Signatures))
	for _, s := range q.Signatures {
		if s.IsWildcard() {
			for _, w := range r.wildcards {
				if sameShape(w.Signatures[0].Endpoints, s.Endpoints) {
					return fmt.Errorf("register wildcard %v: %w", s.Endpoints, ErrDuplicateRegistration)
				}
			}
			continue
		}
		k := s.key()
		if _, exists := r.byKey[k]; exists || keys[k] {
			return fmt.Errorf("register %s: %w", s, ErrDuplicateRegistration)
		}
		keys[k] = true
	}

	for _, s := range q.Signatures {
		if s.IsWildcard() {
			r.wildcards = append(r.wildcards, q)
			continue
		}
		r.byKey[s.key()] = q
	}
	r.all = append(r.all, q)
	r.logger.Debug("quirk registered", "quirk", q.ID(), "signatures", len(q.Signatures),
		"overlays", len(q.Overlays), "entities", len(q.Entities))
	return nil
}

func sameShape(a, b map[uint8][]uint16) bool {
	return Signature{Endpoints: a}.MatchesShape(b) && Signature{Endpoints: b}.MatchesShape(a)
}

// Freeze ends registration. Later Register calls fail with ErrRegistryFrozen.
func (r *Registry) Freeze() {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.frozen.Load() {
		return
	}
	r.frozen.Store(true)
	r.logger.Info("quirk registry frozen", "quirks", len(r.all), "keys", len(r.byKey), "wildcards", len(r.wildcards))
}

// Frozen reports whether Freeze was called.
func (r *Registry) Frozen() bool {
	return r.frozen.Load()
}

func (r *Registry) rlock() func() {
	if r.frozen.Load() {
		return func() {}
	}
	r.mu.Lock()
	return r.mu.Unlock
}

// Match returns the quirk for a discovered device. Exact (manufacturer,
// model) keys win; otherwise wildcard quirks are tried against the endpoint
// shape in registration order. No match is not an error.
func (r *Registry) Match(manufacturer, model string, endpoints map[uint8][]uint16) (*Quirk, bool) {
	defer r.rlock()()
	if q, ok := r.byKey[Signature{Manufacturer: manufacturer, Model: model}.key()]; ok {
		return q, true
	}
	for _, q := range r.wildcards {
		for _, s := range q.Signatures {
			if s.IsWildcard() && s.MatchesShape(endpoints) {
				return q, true
			}
		}
	}
	return nil, false
}

// Get returns the quirk registered under an exact key.
func (r *Registry) Get(manufacturer, model string) (*Quirk, bool) {
	defer r.rlock()()
	q, ok := r.byKey[Signature{Manufacturer: manufacturer, Model: model}.key()]
	return q, ok
}

// Lookup returns the quirk whose ID is id, as persisted for a device.
func (r *Registry) Lookup(id string) (*Quirk, bool) {
	defer r.rlock()()
	for _, q := range r.all {
		if q.ID() == id {
			return q, true
		}
	}
	return nil, false
}

// All returns registered quirks in registration order.
func (r *Registry) All() []*Quirk {
	defer r.rlock()()
	return append([]*Quirk(nil), r.all...)
}

// Len returns the number of registered quirks.
func (r *Registry) Len() int {
	defer r.rlock()()
	return len(r.all)
}
