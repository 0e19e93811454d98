package planning

import "fmt"

// Obstacle is an axis-aligned box in local NED-style coordinates: a
// centre position plus half-extents along each axis. Positions and
// extents are in the same linear unit (metres for colliders data).
// Obstacles are value types and never mutated after loading.
type Obstacle struct {
	North float64 `json:"north"`
	East  float64 `json:"east"`
	Alt   float64 `json:"alt"`

	HalfNorth float64 `json:"half_north"`
	HalfEast  float64 `json:"half_east"`
	HalfAlt   float64 `json:"half_alt"`
}

// Validate reports whether the obstacle's half-extents are usable.
func (o Obstacle) Validate() error {
	if o.HalfNorth < 0 || o.HalfEast < 0 || o.HalfAlt < 0 {
		return &InvalidInputError{
			Reason: fmt.Sprintf("negative half-extent (%g, %g, %g)", o.HalfNorth, o.HalfEast, o.HalfAlt),
		}
	}
	return nil
}

// ObstacleSet is an ordered collection of obstacles. Ordering is kept
// for traceability back to the source file but has no effect on any
// grid built from the set.
type ObstacleSet []Obstacle

// Validate checks every obstacle in the set and reports the index of
// the first invalid one.
func (s ObstacleSet) Validate() error {
	if len(s) == 0 {
		return ErrEmptyObstacleSet
	}
	for i, o := range s {
		if err := o.Validate(); err != nil {
			return fmt.Errorf("obstacle %d: %w", i, err)
		}
	}
	return nil
}
