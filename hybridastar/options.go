package hybridastar

import "github.com/pkg/errors"

// Config holds every tunable of the Hybrid A* search and its Reed-Shepp
// heuristic. There is no implicit default: callers either build one field
// by field or start from DefaultConfig() and override, matching spec.md
// §5's requirement that all tunables be explicit inputs to Plan.
type Config struct {
	// NextNodeNum is the number of motion primitives sampled per expansion,
	// spanning [-MaxSteerAngle, MaxSteerAngle] and both gears.
	NextNodeNum int
	// StepSize is the arc length, in meters, of one integration step along
	// a primitive and of one Reed-Shepp densification step.
	StepSize float64
	// XYGridResolution and PhiGridResolution discretize the (x, y, heading)
	// configuration space for the open and closed sets.
	XYGridResolution  float64
	PhiGridResolution float64

	// BackPenalty scales the cost of any reverse-gear segment.
	BackPenalty float64
	// GearSwitchPenalty is added once per gear reversal along a path.
	GearSwitchPenalty float64
	// SteerPenalty scales the absolute steering angle used at a node.
	SteerPenalty float64
	// SteerChangePenalty scales the absolute change in steering angle
	// between two consecutive primitives.
	SteerChangePenalty float64

	// DeltaT is the fixed time step the partitioner assumes between
	// consecutive densified samples within one gear segment.
	DeltaT float64

	// MaxIterations bounds the number of open-set pops before giving up
	// with ErrSearchExhausted, guarding against unbounded search time on
	// an infeasible or pathological instance.
	MaxIterations int
}

// DefaultConfig returns a reasonable starting point for a passenger-car
// scale open-space maneuver. Callers with different vehicle scale or grid
// density are expected to override fields, not rely on this shape holding.
func DefaultConfig() Config {
	return Config{
		NextNodeNum:        10,
		StepSize:           0.5,
		XYGridResolution:   0.3,
		PhiGridResolution:  0.1,
		BackPenalty:        1.5,
		GearSwitchPenalty:  3.0,
		SteerPenalty:       0.5,
		SteerChangePenalty: 0.5,
		DeltaT:             0.1,
		MaxIterations:      200000,
	}
}

// Validate checks the fields Plan cannot safely default or recover from.
func (c Config) Validate() error {
	switch {
	case c.NextNodeNum < 2:
		return errors.New("NextNodeNum must be at least 2 to cover both gears")
	case c.StepSize <= 0:
		return errors.New("StepSize must be positive")
	case c.XYGridResolution <= 0 || c.PhiGridResolution <= 0:
		return errors.New("grid resolutions must be positive")
	case c.DeltaT <= 0:
		return errors.New("DeltaT must be positive")
	case c.MaxIterations < 1:
		return errors.New("MaxIterations must be at least 1")
	}
	return nil
}
