package hybridastar

import "math"

// ObstacleBox is an oriented rectangle obstacle in the local planar frame,
// used for the collision decisions this core actually makes (spec.md
// §4.2).
type ObstacleBox struct {
	Center Pose
	Length float64 // extent along the obstacle's own heading axis
	Width  float64 // extent perpendicular to it
}

// ObstaclePolytope is the (A, b) half-plane representation named in
// spec.md §6 alongside ObstacleBox. Request.Polytopes carries it through
// to Result.Debug for the downstream obstacle-distance NLP; this core's
// own collision decisions are made against ObstacleBox exclusively and
// never evaluate A or B.
type ObstaclePolytope struct {
	A [][2]float64
	B []float64
}

// obb is an oriented bounding box reduced to what the 2-D separating-axis
// test needs: a center, half-extents along two orthogonal axes, and those
// axes themselves. This is the 2-D collapse of the technique in the
// teacher's spatialmath/sat_generic.go (3 face axes per box, projected
// half-extents compared against center-to-center distance) — that file's
// 15-axis, 3-D formulation degenerates to 4 face axes (2 per box) once the
// z extent is dropped, since there are no edge-cross-product axes left in
// the plane.
type obb struct {
	cx, cy         float64
	axisX, axisY   [2]float64 // unit vectors along the box's length/width
	halfL, halfW   float64
}

func boxFromPose(p Pose, length, width float64) obb {
	c, s := math.Cos(p.Heading), math.Sin(p.Heading)
	return obb{
		cx: p.X(), cy: p.Y(),
		axisX: [2]float64{c, s},
		axisY: [2]float64{-s, c},
		halfL: length / 2,
		halfW: width / 2,
	}
}

// vehicleBox builds the oriented bounding box of the vehicle at the given
// reference-point pose, offset to the box's geometric center per
// VehicleParams' front/back/left/right edges.
func vehicleBox(p Pose, v VehicleParams) obb {
	offset := v.CenterOffset()
	c, s := math.Cos(p.Heading), math.Sin(p.Heading)
	center := NewPose(p.X()+c*offset, p.Y()+s*offset, p.Heading)
	return boxFromPose(center, v.Length(), v.Width())
}

// obbOverlap runs the separating-axis test between two oriented boxes,
// testing the 4 face-normal axes (2 per box); in 2D these are the only
// candidate separating axes for a pair of rectangles.
func obbOverlap(a, b obb) bool {
	dx, dy := b.cx-a.cx, b.cy-a.cy

	axes := [][2]float64{a.axisX, a.axisY, b.axisX, b.axisY}
	for _, axis := range axes {
		projA := math.Abs(a.axisX[0]*axis[0]+a.axisX[1]*axis[1])*a.halfL +
			math.Abs(a.axisY[0]*axis[0]+a.axisY[1]*axis[1])*a.halfW
		projB := math.Abs(b.axisX[0]*axis[0]+b.axisX[1]*axis[1])*b.halfL +
			math.Abs(b.axisY[0]*axis[0]+b.axisY[1]*axis[1])*b.halfW
		centerDist := math.Abs(dx*axis[0] + dy*axis[1])
		if centerDist > projA+projB {
			return false // separating axis found
		}
	}
	return true
}

// CollisionChecker tests a vehicle pose (or a sequence of poses) for
// overlap against a fixed set of obstacle boxes.
type CollisionChecker struct {
	Vehicle   VehicleParams
	Obstacles []ObstacleBox
}

// NewCollisionChecker builds a checker for the given vehicle against a
// fixed obstacle set. An empty obstacle list always passes, per spec.md
// §4.2.
func NewCollisionChecker(vehicle VehicleParams, obstacles []ObstacleBox) *CollisionChecker {
	return &CollisionChecker{Vehicle: vehicle, Obstacles: obstacles}
}

// Check reports whether the vehicle's oriented bounding box at pose does
// not overlap any obstacle.
func (c *CollisionChecker) Check(pose Pose) bool {
	vb := vehicleBox(pose, c.Vehicle)
	for _, o := range c.Obstacles {
		ob := boxFromPose(o.Center, o.Length, o.Width)
		if obbOverlap(vb, ob) {
			return false
		}
	}
	return true
}

// CheckPath reports whether every pose in the sequence is individually
// collision-free.
func (c *CollisionChecker) CheckPath(poses []Pose) bool {
	for _, p := range poses {
		if !c.Check(p) {
			return false
		}
	}
	return true
}
