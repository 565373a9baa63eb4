package hybridastar

import (
	"math"
	"testing"

	"github.com/golang/geo/r3"
	"go.viam.com/test"
)

func TestNormalizeAngle(t *testing.T) {
	test.That(t, NormalizeAngle(0), test.ShouldAlmostEqual, 0.0, 1e-9)
	test.That(t, NormalizeAngle(2*math.Pi), test.ShouldAlmostEqual, 0.0, 1e-9)
	test.That(t, NormalizeAngle(3*math.Pi), test.ShouldAlmostEqual, math.Pi, 1e-9)
	test.That(t, NormalizeAngle(-3*math.Pi), test.ShouldAlmostEqual, math.Pi, 1e-9)
}

func TestVehicleParamsDerived(t *testing.T) {
	v := VehicleParams{
		WheelBase:     2.8,
		MaxSteerAngle: 0.6,
		FrontEdge:     3.0,
		BackEdge:      1.0,
		LeftEdge:      1.0,
		RightEdge:     1.0,
	}
	test.That(t, v.Length(), test.ShouldAlmostEqual, 4.0, 1e-9)
	test.That(t, v.Width(), test.ShouldAlmostEqual, 2.0, 1e-9)
	test.That(t, v.CenterOffset(), test.ShouldAlmostEqual, 1.0, 1e-9)
	test.That(t, v.MinTurningRadius(), test.ShouldAlmostEqual, v.WheelBase/math.Tan(v.MaxSteerAngle), 1e-9)
}

func TestFrameTransformRoundTrip(t *testing.T) {
	transform := FrameTransform{
		RotateAngle:     0.7,
		TranslateOrigin: r3.Vector{X: 5, Y: -3},
	}
	world := NewPose(12, 8, 1.1)
	local := transform.ToLocal(world)
	back := transform.ToWorld(local)

	test.That(t, back.X(), test.ShouldAlmostEqual, world.X(), 1e-9)
	test.That(t, back.Y(), test.ShouldAlmostEqual, world.Y(), 1e-9)
	test.That(t, back.Heading, test.ShouldAlmostEqual, world.Heading, 1e-9)
}

func TestXYBoundsContains(t *testing.T) {
	b := XYBounds{XMin: -1, XMax: 1, YMin: -1, YMax: 1}
	test.That(t, b.Contains(0, 0), test.ShouldBeTrue)
	test.That(t, b.Contains(1, 1), test.ShouldBeTrue)
	test.That(t, b.Contains(1.01, 0), test.ShouldBeFalse)
}
