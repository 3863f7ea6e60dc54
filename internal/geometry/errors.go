package geometry

import "errors"

// ErrInvalidArgument is returned (wrapped) for non-positive dimensions and
// negative lengths or rotations.
var ErrInvalidArgument = errors.New("geometry: invalid argument")
