package hybridastar

import (
	"context"
	"math"
	"testing"
	"time"

	"go.viam.com/test"
)

func seedVehicle() VehicleParams {
	return VehicleParams{
		WheelBase:     2.85,
		MaxSteerAngle: 0.5,
		FrontEdge:     3.7,
		BackEdge:      1.0,
		LeftEdge:      1.0,
		RightEdge:     1.0,
	}
}

func seedBounds() XYBounds {
	return XYBounds{XMin: -50, XMax: 50, YMin: -50, YMax: 50}
}

func seedConfig() Config {
	return Config{
		NextNodeNum:        10,
		StepSize:           0.5,
		XYGridResolution:   1.0,
		PhiGridResolution:  math.Pi / 12,
		BackPenalty:        5,
		GearSwitchPenalty:  10,
		SteerPenalty:       0.5,
		SteerChangePenalty: 0.5,
		DeltaT:             0.1,
		MaxIterations:      50000,
	}
}

// Scenario 1: straight-through, no obstacles. The very first analytic
// expansion from the start should reach the goal via a single forward
// segment.
func TestPlanStraightThrough(t *testing.T) {
	checker := NewCollisionChecker(seedVehicle(), nil)
	search := NewHybridAStar(seedVehicle(), seedBounds(), checker, seedConfig(), nil)

	start := NewPose(0, 0, 0)
	goal := NewPose(10, 0, 0)
	path, err := search.Plan(context.Background(), start, goal)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, len(path), test.ShouldBeGreaterThan, 1)

	test.That(t, path[0].X(), test.ShouldAlmostEqual, 0.0, 1e-2)
	test.That(t, path[len(path)-1].X(), test.ShouldAlmostEqual, 10.0, 1e-2)
	for _, p := range path {
		test.That(t, p.Heading, test.ShouldAlmostEqual, 0.0, 1e-2)
	}
}

// Scenario 2: parallel parking. The straight-line displacement is
// perpendicular to both headings, forcing at least one gear reversal.
func TestPlanParallelParkingHasGearReversal(t *testing.T) {
	checker := NewCollisionChecker(seedVehicle(), nil)
	search := NewHybridAStar(seedVehicle(), seedBounds(), checker, seedConfig(), nil)

	start := NewPose(0, 3, 0)
	goal := NewPose(0, 0, 0)
	path, err := search.Plan(context.Background(), start, goal)
	test.That(t, err, test.ShouldBeNil)

	partitioner := NewTrajectoryPartitioner(seedConfig().DeltaT, seedConfig().StepSize)
	segments, perr := partitioner.Partition(path, seedVehicle().WheelBase)
	test.That(t, perr, test.ShouldBeNil)
	test.That(t, len(segments), test.ShouldBeGreaterThanOrEqualTo, 2)
}

// Scenario 3: obstructed straight. The path must deviate around a small
// box centered on the straight-line route.
func TestPlanObstructedStraightDeviates(t *testing.T) {
	obstacles := []ObstacleBox{{Center: NewPose(5, 0, 0), Length: 1, Width: 1}}
	checker := NewCollisionChecker(seedVehicle(), obstacles)
	search := NewHybridAStar(seedVehicle(), seedBounds(), checker, seedConfig(), nil)

	start := NewPose(0, 0, 0)
	goal := NewPose(10, 0, 0)
	path, err := search.Plan(context.Background(), start, goal)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, checker.CheckPath(path), test.ShouldBeTrue)

	sawLateralDeviation := false
	for _, p := range path {
		if math.Abs(p.Y()) > 1e-2 {
			sawLateralDeviation = true
			break
		}
	}
	test.That(t, sawLateralDeviation, test.ShouldBeTrue)
}

// Scenario 4: infeasible. An obstacle spanning the full width of the
// bounds at x=5 leaves no free corridor, so search exhausts.
func TestPlanInfeasibleReturnsSearchExhausted(t *testing.T) {
	obstacles := []ObstacleBox{{Center: NewPose(5, 0, 0), Length: 1, Width: 200}}
	checker := NewCollisionChecker(seedVehicle(), obstacles)
	cfg := seedConfig()
	cfg.MaxIterations = 5000
	search := NewHybridAStar(seedVehicle(), seedBounds(), checker, cfg, nil)

	start := NewPose(0, 0, 0)
	goal := NewPose(10, 0, 0)
	_, err := search.Plan(context.Background(), start, goal)
	test.That(t, err, test.ShouldNotBeNil)

	planErr, ok := err.(*PlanError)
	test.That(t, ok, test.ShouldBeTrue)
	test.That(t, planErr.Kind, test.ShouldEqual, ErrSearchExhausted)
}

// Scenario 5: start in collision.
func TestPlanStartInCollision(t *testing.T) {
	obstacles := []ObstacleBox{{Center: NewPose(0, 0, 0), Length: 2, Width: 2}}
	checker := NewCollisionChecker(seedVehicle(), obstacles)
	search := NewHybridAStar(seedVehicle(), seedBounds(), checker, seedConfig(), nil)

	_, err := search.Plan(context.Background(), NewPose(0, 0, 0), NewPose(10, 0, 0))
	test.That(t, err, test.ShouldNotBeNil)
	planErr, ok := err.(*PlanError)
	test.That(t, ok, test.ShouldBeTrue)
	test.That(t, planErr.Kind, test.ShouldEqual, ErrStartCollision)
}

// Scenario 6: cancellation. A context cancelled almost immediately should
// abort the search with ErrCancelled rather than run to completion.
func TestPlanCancellation(t *testing.T) {
	obstacles := []ObstacleBox{{Center: NewPose(5, 0, 0), Length: 1, Width: 200}}
	checker := NewCollisionChecker(seedVehicle(), obstacles)
	cfg := seedConfig()
	cfg.MaxIterations = 10000000
	search := NewHybridAStar(seedVehicle(), seedBounds(), checker, cfg, nil)

	ctx, cancel := context.WithTimeout(context.Background(), time.Millisecond)
	defer cancel()

	_, err := search.Plan(ctx, NewPose(0, 0, 0), NewPose(10, 0, 0))
	test.That(t, err, test.ShouldNotBeNil)
	planErr, ok := err.(*PlanError)
	test.That(t, ok, test.ShouldBeTrue)
	test.That(t, planErr.Kind, test.ShouldEqual, ErrCancelled)
}

func TestPlanInvalidInputOutsideBounds(t *testing.T) {
	checker := NewCollisionChecker(seedVehicle(), nil)
	search := NewHybridAStar(seedVehicle(), seedBounds(), checker, seedConfig(), nil)

	_, err := search.Plan(context.Background(), NewPose(0, 0, 0), NewPose(1000, 0, 0))
	test.That(t, err, test.ShouldNotBeNil)
	planErr, ok := err.(*PlanError)
	test.That(t, ok, test.ShouldBeTrue)
	test.That(t, planErr.Kind, test.ShouldEqual, ErrInvalidInput)
}
