package hybridastar

import (
	"math"
	"testing"

	"go.viam.com/test"
)

func straightPath(n int, dx float64) []Pose {
	poses := make([]Pose, n)
	for i := 0; i < n; i++ {
		poses[i] = NewPose(float64(i)*dx, 0, 0)
	}
	return poses
}

func TestPartitionAllForwardIsOneSegment(t *testing.T) {
	p := NewTrajectoryPartitioner(0.1, 1.0)
	segs, err := p.Partition(straightPath(6, 1.0), 2.85)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, len(segs), test.ShouldEqual, 1)
	test.That(t, segs[0].Gear, test.ShouldEqual, GearDrive)
	for _, pt := range segs[0].Points {
		test.That(t, pt.V, test.ShouldBeGreaterThanOrEqualTo, 0.0)
	}
}

func TestPartitionSplitsOnGearReversal(t *testing.T) {
	forward := straightPath(4, 1.0) // x: 0,1,2,3
	var reverse []Pose
	for i := 3; i >= 0; i-- {
		reverse = append(reverse, NewPose(float64(i), 0, 0))
	}
	poses := append(forward, reverse[1:]...)

	p := NewTrajectoryPartitioner(0.1, 1.0)
	segs, err := p.Partition(poses, 2.85)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, len(segs), test.ShouldEqual, 2)
	test.That(t, segs[0].Gear, test.ShouldEqual, GearDrive)
	test.That(t, segs[1].Gear, test.ShouldEqual, GearReverse)

	for _, pt := range segs[1].Points[1:] {
		test.That(t, pt.V, test.ShouldBeLessThanOrEqualTo, 0.0)
	}
}

func TestPartitionTooShortIsInvalidHorizon(t *testing.T) {
	p := NewTrajectoryPartitioner(0.1, 1.0)
	_, err := p.Partition([]Pose{NewPose(0, 0, 0), NewPose(1, 0, 0)}, 2.85)
	test.That(t, err, test.ShouldNotBeNil)
	planErr, ok := err.(*PlanError)
	test.That(t, ok, test.ShouldBeTrue)
	test.That(t, planErr.Kind, test.ShouldEqual, ErrInvalidHorizon)
}

func TestPartitionIsIdempotentPerSegment(t *testing.T) {
	p := NewTrajectoryPartitioner(0.1, 1.0)
	poses := straightPath(6, 1.0)
	first, err := p.Partition(poses, 2.85)
	test.That(t, err, test.ShouldBeNil)

	var recombined []Pose
	for _, pt := range first[0].Points {
		recombined = append(recombined, pt.Pose)
	}
	second, err := p.Partition(recombined, 2.85)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, len(second), test.ShouldEqual, len(first))
	test.That(t, len(second[0].Points), test.ShouldEqual, len(first[0].Points))
}

func TestSteerCurvatureRoundTrip(t *testing.T) {
	wheelBase := 2.85
	for _, steer := range []float64{-0.4, -0.1, 0, 0.1, 0.4} {
		k := SteerToCurvature(steer, wheelBase)
		back := CurvatureToSteer(k, wheelBase)
		test.That(t, back, test.ShouldAlmostEqual, steer, 1e-9)
	}
	// odd, monotone
	test.That(t, SteerToCurvature(0.2, wheelBase), test.ShouldAlmostEqual, -SteerToCurvature(-0.2, wheelBase), 1e-9)
	test.That(t, SteerToCurvature(0.3, wheelBase), test.ShouldBeGreaterThan, SteerToCurvature(0.1, wheelBase))
}

var _ = math.Pi
