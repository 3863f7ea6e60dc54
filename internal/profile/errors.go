package profile

import "errors"

var (
	// ErrInvalidDistance indicates a negative or non-finite travel distance.
	ErrInvalidDistance = errors.New("profile: invalid distance")

	// ErrInvalidParams indicates non-positive ramp times or cruise velocity.
	ErrInvalidParams = errors.New("profile: invalid motion parameters")

	// ErrNotImplemented is returned by profile shapes that are declared but
	// have no generator yet.
	ErrNotImplemented = errors.New("profile: shape not implemented")

	// ErrUnknownGenerator is returned by Registry.Get for unregistered names.
	ErrUnknownGenerator = errors.New("profile: unknown generator")
)
