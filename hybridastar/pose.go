// Package hybridastar implements the open-space motion-planning core: a
// Hybrid A* search over a discretized (x, y, heading) configuration space,
// warm-started and heuristically guided by Reed-Shepp curves, followed by
// a partitioner that splits the resulting path on gear reversals and fills
// in velocity, acceleration, steering, and curvature.
package hybridastar

import (
	"math"

	"github.com/golang/geo/r3"
)

// Pose is a planar vehicle pose (x, y, heading) in whatever frame the
// caller establishes. Heading is normalized to (-pi, pi].
type Pose struct {
	Point   r3.Vector
	Heading float64
}

// NewPose builds a Pose with its heading normalized.
func NewPose(x, y, heading float64) Pose {
	return Pose{Point: r3.Vector{X: x, Y: y, Z: 0}, Heading: NormalizeAngle(heading)}
}

// X returns the pose's x coordinate.
func (p Pose) X() float64 { return p.Point.X }

// Y returns the pose's y coordinate.
func (p Pose) Y() float64 { return p.Point.Y }

// NormalizeAngle wraps an angle into (-pi, pi].
func NormalizeAngle(theta float64) float64 {
	theta = math.Mod(theta, 2*math.Pi)
	if theta <= -math.Pi {
		theta += 2 * math.Pi
	} else if theta > math.Pi {
		theta -= 2 * math.Pi
	}
	return theta
}

// VehicleParams holds the kinematic and geometric constants of the vehicle
// being planned for.
type VehicleParams struct {
	WheelBase       float64 // L
	MaxSteerAngle   float64 // delta_max, radians
	SteeringRatio   float64
	FrontEdge       float64 // offset from reference point to front bumper
	BackEdge        float64 // offset from reference point to rear bumper (positive, behind RP)
	LeftEdge        float64
	RightEdge       float64
	MaxLinearVel    float64 // downstream-only convenience, not enforced here
	MaxAcceleration float64 // downstream-only convenience, not enforced here
}

// MinTurningRadius returns R = L / tan(delta_max), the unit turning radius
// Reed-Shepp curves are generated under.
func (v VehicleParams) MinTurningRadius() float64 {
	return v.WheelBase / math.Tan(v.MaxSteerAngle)
}

// MaxCurvature returns the curvature bound implied by MaxSteerAngle,
// carried as a convenience for a downstream NLP warm start. This core
// never enforces it as a hard constraint (see spec's non-goals).
func (v VehicleParams) MaxCurvature() float64 {
	return math.Tan(v.MaxSteerAngle) / v.WheelBase
}

// Length returns the vehicle's total length along its longitudinal axis.
func (v VehicleParams) Length() float64 {
	return v.FrontEdge + v.BackEdge
}

// Width returns the vehicle's total width.
func (v VehicleParams) Width() float64 {
	return v.LeftEdge + v.RightEdge
}

// CenterOffset returns the signed distance from the reference point to the
// geometric center of the bounding box, along the vehicle's heading.
func (v VehicleParams) CenterOffset() float64 {
	return (v.FrontEdge - v.BackEdge) / 2
}

// XYBounds is the axis-aligned planning envelope [xmin, xmax, ymin, ymax]
// in the local planar frame.
type XYBounds struct {
	XMin, XMax, YMin, YMax float64
}

// Contains reports whether a point lies within the bounds, inclusive.
func (b XYBounds) Contains(x, y float64) bool {
	return x >= b.XMin && x <= b.XMax && y >= b.YMin && y <= b.YMax
}

// FrameTransform captures the caller-established local planning frame, per
// the coordinate convention: translate_origin then rotate by -rotate_angle
// to go world -> local, and the inverse to go local -> world.
type FrameTransform struct {
	RotateAngle    float64
	TranslateOrigin r3.Vector
}

// ToLocal transforms a world-frame pose into the local planning frame.
func (t FrameTransform) ToLocal(p Pose) Pose {
	dx := p.Point.X - t.TranslateOrigin.X
	dy := p.Point.Y - t.TranslateOrigin.Y
	cs, sn := math.Cos(-t.RotateAngle), math.Sin(-t.RotateAngle)
	return NewPose(
		cs*dx-sn*dy,
		sn*dx+cs*dy,
		p.Heading-t.RotateAngle,
	)
}

// ToWorld is the inverse of ToLocal: rotate by +rotate_angle then
// translate by +translate_origin, and add rotate_angle back to heading.
func (t FrameTransform) ToWorld(p Pose) Pose {
	cs, sn := math.Cos(t.RotateAngle), math.Sin(t.RotateAngle)
	x := cs*p.Point.X - sn*p.Point.Y
	y := sn*p.Point.X + cs*p.Point.Y
	return NewPose(
		x+t.TranslateOrigin.X,
		y+t.TranslateOrigin.Y,
		p.Heading+t.RotateAngle,
	)
}
