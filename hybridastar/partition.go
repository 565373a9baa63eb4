package hybridastar

import "math"

// Gear identifies the drive direction of a partitioned trajectory segment.
type Gear int

const (
	GearDrive Gear = iota
	GearReverse
)

func (g Gear) String() string {
	if g == GearReverse {
		return "reverse"
	}
	return "drive"
}

// gearEpsilon is the hysteresis band spec.md §4.5's gear state machine
// applies around zero velocity, so floating-point noise around a cusp
// never flips the gear on its own.
const gearEpsilon = 1e-6

// TrajectoryPoint is one sample of a partitioned segment: pose plus the
// kinematic quantities derived from it, mirroring the teacher's
// tpspace.TrajNode{Pose, Time, Dist, K, V, W} shape (motionplan/tpspace/
// ptg.go) narrowed to what an open-space trajectory tracker consumes.
type TrajectoryPoint struct {
	RelativeTime float64 // seconds since the start of this segment
	Pose         Pose
	ArcLength    float64 // signed, accumulated within this segment only
	V            float64 // linear velocity, signed by gear
	A            float64 // linear acceleration, back-differenced
	Steer        float64 // bicycle-model steering angle implied by the step into this point
	Curvature    float64 // signed, positive for left turns; derived from Steer
}

// TrajectorySegment is a maximal run of a raw path with constant gear.
type TrajectorySegment struct {
	Gear   Gear
	Points []TrajectoryPoint
}

// TrajectoryPartitioner splits a raw Hybrid A* pose sequence into
// constant-gear segments and fills in per-sample velocity, steer,
// curvature, and acceleration, per spec.md §4.5.
type TrajectoryPartitioner struct {
	DeltaT   float64
	StepSize float64
}

// NewTrajectoryPartitioner builds a partitioner ticking samples deltaT
// seconds apart within a segment, treating stepSize as the nominal arc
// length of one raw-path step (spec.md §4.5's steering formula divides by
// this, not by each step's actual measured length).
func NewTrajectoryPartitioner(deltaT, stepSize float64) *TrajectoryPartitioner {
	return &TrajectoryPartitioner{DeltaT: deltaT, StepSize: stepSize}
}

// Partition splits poses into constant-gear segments and computes
// velocity, steer, curvature, and acceleration within each. Per spec.md
// §4.5, gear is derived from the sign of the heading-projected velocity
// v_i = cos(phi_i)*dx/dt + sin(phi_i)*dy/dt at each step, run through an
// epsilon-tolerant hysteresis state machine rather than a hard per-step
// sign test, so a step that is nearly stationary relative to heading does
// not spuriously open a new segment. Fewer than 3 poses cannot establish
// an initial gear and yields ErrInvalidHorizon, as does an ambiguous
// opening run of steps that disagree on direction.
func (p *TrajectoryPartitioner) Partition(poses []Pose, wheelBase float64) ([]TrajectorySegment, error) {
	if len(poses) < 3 {
		return nil, newPlanError(ErrInvalidHorizon, "at least 3 poses are required to classify gear and curvature")
	}

	n := len(poses)
	v := make([]float64, n-1)
	steer := make([]float64, n-1)
	curvature := make([]float64, n-1)
	for i := 0; i < n-1; i++ {
		dx := poses[i+1].X() - poses[i].X()
		dy := poses[i+1].Y() - poses[i].Y()
		phi := poses[i].Heading
		v[i] = math.Cos(phi)*dx/p.DeltaT + math.Sin(phi)*dy/p.DeltaT

		dphi := NormalizeAngle(poses[i+1].Heading - phi)
		steer[i] = math.Atan(dphi * wheelBase / p.StepSize)
		curvature[i] = SteerToCurvature(steer[i], wheelBase)
	}

	forward, err := initialGear(v)
	if err != nil {
		return nil, err
	}

	gears := make([]bool, n-1) // true == forward, one per pose-to-pose step
	cur := forward
	for i, vi := range v {
		switch {
		case cur && vi < -gearEpsilon:
			cur = false
		case !cur && vi > gearEpsilon:
			cur = true
		}
		gears[i] = cur
	}

	var segments []TrajectorySegment
	segStart := 0
	for i := 1; i < len(gears); i++ {
		if gears[i] != gears[i-1] {
			segments = append(segments, p.buildSegment(poses[segStart:i+1], v[segStart:i], steer[segStart:i], curvature[segStart:i], gears[i-1]))
			segStart = i
		}
	}
	segments = append(segments, p.buildSegment(poses[segStart:], v[segStart:], steer[segStart:], curvature[segStart:], gears[len(gears)-1]))
	return segments, nil
}

// initialGear reads the first up-to-3 step velocities to seed the
// hysteresis state machine, per spec.md §4.5 ("start in GEAR_DRIVE if
// v_0, v_1, v_2 are all >= -eps ... otherwise fail" and symmetrically for
// GEAR_REVERSE). A run that disagrees on sign beyond the hysteresis band
// leaves the initial gear ambiguous.
func initialGear(v []float64) (forward bool, err error) {
	k := len(v)
	if k > 3 {
		k = 3
	}
	allForward, allReverse := true, true
	for i := 0; i < k; i++ {
		if v[i] < -gearEpsilon {
			allForward = false
		}
		if v[i] > gearEpsilon {
			allReverse = false
		}
	}
	switch {
	case allForward:
		return true, nil
	case allReverse:
		return false, nil
	default:
		return false, newPlanError(ErrInvalidHorizon, "initial gear is ambiguous: leading steps disagree on direction")
	}
}

func (p *TrajectoryPartitioner) buildSegment(poses []Pose, v, steer, curvature []float64, forward bool) TrajectorySegment {
	gear := GearDrive
	if !forward {
		gear = GearReverse
	}

	points := make([]TrajectoryPoint, len(poses))
	arc := 0.0
	prevV := 0.0
	for i, pose := range poses {
		t := float64(i) * p.DeltaT
		var pv, ps, pc float64
		if i > 0 {
			pv, ps, pc = v[i-1], steer[i-1], curvature[i-1]
			arc += pv * p.DeltaT
		}
		a := 0.0
		if i > 0 {
			a = (pv - prevV) / p.DeltaT
		}
		prevV = pv

		points[i] = TrajectoryPoint{
			RelativeTime: t,
			Pose:         pose,
			ArcLength:    arc,
			V:            pv,
			A:            a,
			Steer:        ps,
			Curvature:    pc,
		}
	}
	return TrajectorySegment{Gear: gear, Points: points}
}

// SteerToCurvature converts a bicycle-model steering angle to path
// curvature, kappa = tan(delta) / L: an odd, monotone function of delta so
// left and right steer map to opposite-signed curvature symmetrically.
func SteerToCurvature(steer, wheelBase float64) float64 {
	return math.Tan(steer) / wheelBase
}

// CurvatureToSteer is the inverse of SteerToCurvature.
func CurvatureToSteer(curvature, wheelBase float64) float64 {
	return math.Atan(curvature * wheelBase)
}
