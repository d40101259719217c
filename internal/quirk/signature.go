// Package quirk implements the device quirk overlay engine: signatures that
// identify a device, cluster overlays that rewrite its schema, identity
// corrections and the entities exposed to a home automation consumer.
package quirk

import "fmt"

// Signature identifies the devices a quirk applies to. A signature with an
// empty manufacturer and model is a wildcard that matches on endpoint shape
// only.
type Signature struct {
	Manufacturer string             `json:"manufacturer,omitempty"`
	Model        string             `json:"model,omitempty"`
	Endpoints    map[uint8][]uint16 `json:"endpoints,omitempty"` // endpoint -> input clusters
}

func (s Signature) key() string {
	return s.Manufacturer + "\x00" + s.Model
}

// IsWildcard reports whether the signature carries no match data.
func (s Signature) IsWildcard() bool {
	return s.Manufacturer == "" && s.Model == ""
}

func (s Signature) String() string {
	if s.IsWildcard() {
		return fmt.Sprintf("*/* %v", s.Endpoints)
	}
	return s.Manufacturer + "/" + s.Model
}

// MatchesShape reports whether every endpoint in the signature is present in
// endpoints with at least the listed clusters. An empty shape never matches.
func (s Signature) MatchesShape(endpoints map[uint8][]uint16) bool {
	if len(s.Endpoints) == 0 {
		return false
	}
	for ep, want := range s.Endpoints {
		have, ok := endpoints[ep]
		if !ok {
			return false
		}
		present := make(map[uint16]bool, len(have))
		for _, c := range have {
			present[c] = true
		}
		for _, c := range want {
			if !present[c] {
				return false
			}
		}
	}
	return true
}

func (s Signature) clone() Signature {
	cp := Signature{Manufacturer: s.Manufacturer, Model: s.Model}
	if s.Endpoints != nil {
		cp.Endpoints = make(map[uint8][]uint16, len(s.Endpoints))
		for ep, clusters := range s.Endpoints {
			cp.Endpoints[ep] = append([]uint16(nil), clusters...)
		}
	}
	return cp
}
