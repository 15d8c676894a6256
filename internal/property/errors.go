package property

import "errors"

var (
	// ErrNotPrimitive is returned when a value operation targets a struct
	// or array property.
	ErrNotPrimitive = errors.New("property is not primitive")

	// ErrTypeMismatch is returned when a value's type differs from the
	// property's declared type.
	ErrTypeMismatch = errors.New("type mismatch")

	// ErrLinkedInput is returned when setting an input that has an
	// incoming link. Its value is owned by the link until unlinked.
	ErrLinkedInput = errors.New("property is linked")

	// ErrOutputNotSettable is returned when setting an output property
	// from outside its node.
	ErrOutputNotSettable = errors.New("output properties cannot be set")
)
