package planning

import "errors"

// ErrEmptyObstacleSet is returned when a grid build is attempted with
// no obstacles: the bounding extent is undefined in that case.
var ErrEmptyObstacleSet = errors.New("planning: empty obstacle set")

// InvalidInputError marks input that is rejected outright rather than
// sanitised (negative half-extents, malformed source rows).
type InvalidInputError struct {
	Reason string
}

func (e *InvalidInputError) Error() string {
	return "planning: invalid input: " + e.Reason
}

// IsInvalidInput reports whether err is an input-rejection error from
// this package, including the empty-set sentinel.
func IsInvalidInput(err error) bool {
	var ie *InvalidInputError
	return errors.As(err, &ie) || errors.Is(err, ErrEmptyObstacleSet)
}
