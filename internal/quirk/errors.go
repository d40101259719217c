package quirk

import (
	"errors"

	"zigbee-quirks/internal/zcl"
)

var (
	// ErrDuplicateRegistration is returned when a (manufacturer, model) key is
	// committed twice. The first registration stays authoritative.
	ErrDuplicateRegistration = errors.New("duplicate quirk registration")

	// ErrIncompleteBuild is returned when a quirk under construction is not
	// internally consistent, for example an entity referencing an attribute no
	// overlay or standard cluster declares.
	ErrIncompleteBuild = errors.New("incomplete quirk build")

	// ErrWireTypeMismatch is returned when an attribute's semantic type and its
	// declared wire encoding conflict.
	ErrWireTypeMismatch = zcl.ErrWireTypeMismatch

	// ErrAttributeConflict is returned when an extension redefines an
	// attribute or command of the cluster it extends.
	ErrAttributeConflict = errors.New("attribute redefined by extension")

	// ErrCommitted is returned for any builder operation after commit.
	ErrCommitted = errors.New("quirk already committed")

	// ErrRegistryFrozen is returned when registering after Freeze.
	ErrRegistryFrozen = errors.New("quirk registry is frozen")

	// ErrValueRejected is returned when an entity refuses a value before it
	// reaches the wire.
	ErrValueRejected = errors.New("value rejected")
)
