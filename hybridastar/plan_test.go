package hybridastar

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/golang/geo/r3"
	"go.viam.com/test"
)

func TestPlannerPlanStraightThrough(t *testing.T) {
	planner := NewPlanner(nil)
	req := Request{
		Start:   NewPose(0, 0, 0),
		Goal:    NewPose(10, 0, 0),
		Vehicle: seedVehicle(),
		Bounds:  seedBounds(),
		Config:  seedConfig(),
		Frame:   FrameTransform{},
	}

	result, err := planner.Plan(context.Background(), req)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, len(result.Segments), test.ShouldBeGreaterThanOrEqualTo, 1)
	test.That(t, result.Debug, test.ShouldNotBeNil)
	test.That(t, len(result.Debug.RawPath), test.ShouldBeGreaterThan, 1)
}

func TestPlannerToWorldFrameInvertsLocalFrame(t *testing.T) {
	frame := FrameTransform{
		RotateAngle:     0.3,
		TranslateOrigin: r3.Vector{X: 100, Y: 50},
	}
	planner := NewPlanner(nil)
	req := Request{
		Start:   frame.ToWorld(NewPose(0, 0, 0)),
		Goal:    frame.ToWorld(NewPose(10, 0, 0)),
		Vehicle: seedVehicle(),
		Bounds:  seedBounds(),
		Config:  seedConfig(),
		Frame:   frame,
	}

	result, err := planner.Plan(context.Background(), req)
	test.That(t, err, test.ShouldBeNil)

	worldResult := result.ToWorldFrame()
	test.That(t, len(worldResult.Segments), test.ShouldEqual, len(result.Segments))

	firstLocal := result.Segments[0].Points[0].Pose
	firstWorld := worldResult.Segments[0].Points[0].Pose
	expected := frame.ToWorld(firstLocal)
	test.That(t, firstWorld.X(), test.ShouldAlmostEqual, expected.X(), 1e-6)
	test.That(t, firstWorld.Y(), test.ShouldAlmostEqual, expected.Y(), 1e-6)
}

func TestDebugArtifactWriteJSON(t *testing.T) {
	artifact := &DebugArtifact{
		RawPath:      []Pose{NewPose(0, 0, 0), NewPose(1, 0, 0)},
		SegmentCount: 1,
		TotalCost:    1.0,
	}
	var buf bytes.Buffer
	err := artifact.WriteJSON(&buf)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, strings.Contains(buf.String(), "raw_path"), test.ShouldBeTrue)
	test.That(t, strings.Contains(buf.String(), "segment_count"), test.ShouldBeTrue)
}

func TestPlannerRejectsInvalidConfig(t *testing.T) {
	planner := NewPlanner(nil)
	badConfig := seedConfig()
	badConfig.StepSize = 0
	req := Request{
		Start:   NewPose(0, 0, 0),
		Goal:    NewPose(10, 0, 0),
		Vehicle: seedVehicle(),
		Bounds:  seedBounds(),
		Config:  badConfig,
	}
	_, err := planner.Plan(context.Background(), req)
	test.That(t, err, test.ShouldNotBeNil)
	planErr, ok := err.(*PlanError)
	test.That(t, ok, test.ShouldBeTrue)
	test.That(t, planErr.Kind, test.ShouldEqual, ErrInvalidInput)
}
