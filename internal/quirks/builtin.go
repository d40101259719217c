// Package quirks holds the built-in device quirks and the loader for
// declarative quirk files.
package quirks

import (
	"errors"
	"fmt"

	"zigbee-quirks/internal/quirk"
)

// Builtin returns the builders of every built-in quirk, in registration order.
func Builtin() []*quirk.Builder {
	nodon := NodOnPilotWire()
	return []*quirk.Builder{
		nodon,
		AdeoPilotWire(nodon),
		NodOnImpulseSwitch(),
		NodOnDualSwitch(),
		IKEAVindstyrka(),
	}
}

// RegisterBuiltin commits every built-in quirk into reg. A quirk that fails
// does not stop the others; all failures are returned joined.
func RegisterBuiltin(reg *quirk.Registry) error {
	var errs []error
	for _, b := range Builtin() {
		if _, err := b.Commit(reg); err != nil {
			errs = append(errs, fmt.Errorf("builtin quirk: %w", err))
		}
	}
	return errors.Join(errs...)
}
