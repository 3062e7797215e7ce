package model

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound is returned when an id or a unique value has no current mapping.
	ErrNotFound = errors.New("arbor: object not found")

	// ErrDuplicateValue is matched (via errors.Is) by every ConstraintError.
	ErrDuplicateValue = errors.New("arbor: duplicate value for unique property")

	// ErrNotUnique is returned when looking an object up by a property that is
	// not declared unique.
	ErrNotUnique = errors.New("arbor: property is not declared unique")

	// ErrUnsaved is returned when deleting an object that has never been saved
	// or has already been deleted.
	ErrUnsaved = errors.New("arbor: object has not been saved")

	// ErrInvalidModelName is returned by Define for a malformed model or
	// storage name.
	ErrInvalidModelName = errors.New("arbor: invalid model name")

	// ErrInvalidProperty is returned for a malformed property name, declared
	// or dynamic.
	ErrInvalidProperty = errors.New("arbor: invalid property name")

	// ErrInvalidValue is returned when a property value falls outside the
	// storable primitive set (string, bool, number, nil).
	ErrInvalidValue = errors.New("arbor: unsupported property value type")

	// ErrNoResolver is returned by Define when no store resolver is configured.
	ErrNoResolver = errors.New("arbor: store resolver is required")
)

// ConstraintError reports a unique value already claimed by another object.
// It carries the offending property, the canonical form of the value, and the
// id of the current holder (0 if the holder could not be read).
type ConstraintError struct {
	Property string
	Value    string
	HolderID int64
}

func (e *ConstraintError) Error() string {
	return fmt.Sprintf("arbor: duplicate value %q for unique property %q (held by id %d)",
		e.Value, e.Property, e.HolderID)
}

// Is makes errors.Is(err, ErrDuplicateValue) match any ConstraintError.
func (e *ConstraintError) Is(target error) bool {
	return target == ErrDuplicateValue
}
