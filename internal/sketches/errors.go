package sketches

import "errors"

// ErrSketchMergeMismatch is returned when two sketches built with different
// parameters are merged. It signals inconsistent configuration, not bad data.
var ErrSketchMergeMismatch = errors.New("sketch merge mismatch")
