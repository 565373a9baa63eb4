package hybridastar

import (
	"context"
	"math"

	"go.uber.org/zap"
)


// HybridAStar is the open-space search engine: motion-primitive expansion
// over a discretized configuration space, guided by a Reed-Shepp heuristic
// and periodically shortcut by an analytic Reed-Shepp goal shot. It holds
// no per-Plan-call mutable state; each Plan call builds its own arena,
// open set, and closed set, matching spec.md §3 and §5 (no internal
// parallelism, state cleared between calls).
type HybridAStar struct {
	Vehicle   VehicleParams
	Bounds    XYBounds
	Collision *CollisionChecker
	Config    Config
	Logger    *zap.SugaredLogger
}

// NewHybridAStar builds a search engine for a fixed vehicle, bounds, and
// obstacle set. A nil logger is replaced with a no-op sugared logger, per
// spec.md §7's "logging is advisory, never load-bearing."
func NewHybridAStar(vehicle VehicleParams, bounds XYBounds, collision *CollisionChecker, cfg Config, logger *zap.SugaredLogger) *HybridAStar {
	if logger == nil {
		logger = zap.NewNop().Sugar()
	}
	return &HybridAStar{Vehicle: vehicle, Bounds: bounds, Collision: collision, Config: cfg, Logger: logger}
}

// Plan searches from start to goal and returns the raw, densified pose
// sequence (before partitioning into gear segments). It checks ctx once
// per open-set pop, the search loop's natural cooperative-cancellation
// point (spec.md §7 substitutes context.Context for the spec's
// implementer-neutral stop flag).
func (h *HybridAStar) Plan(ctx context.Context, start, goal Pose) ([]Pose, error) {
	if err := h.Config.Validate(); err != nil {
		return nil, &PlanError{Kind: ErrInvalidInput, Err: err}
	}
	if !h.Bounds.Contains(start.X(), start.Y()) || !h.Bounds.Contains(goal.X(), goal.Y()) {
		return nil, newPlanError(ErrInvalidInput, "start or goal pose lies outside XYBounds")
	}
	if !h.Collision.Check(start) {
		return nil, newPlanError(ErrStartCollision, "start pose collides with an obstacle")
	}
	if !h.Collision.Check(goal) {
		return nil, newPlanError(ErrEndCollision, "goal pose collides with an obstacle")
	}

	radius := h.Vehicle.MinTurningRadius()
	if _, ok := ShortestRSP(start, goal, radius, h.Config.StepSize); !ok {
		return nil, newPlanError(ErrRSGeneratorFailed, "no Reed-Shepp word admits a solution between start and goal")
	}

	arena := newNodeArena()
	open := newOpenSet()
	closed := newClosedSet()

	startIdx := ComputeGridIndex(start, h.Config.XYGridResolution, h.Config.PhiGridResolution)
	startNode := arena.newNode(start, startIdx, []Pose{start}, nil, true, 0)
	startNode.HeuCost = h.heuristic(start, goal, radius)
	open.Push(startNode)

	iterations := 0
	for {
		select {
		case <-ctx.Done():
			return nil, newPlanError(ErrCancelled, ctx.Err().Error())
		default:
		}

		if iterations >= h.Config.MaxIterations {
			return nil, newPlanError(ErrSearchExhausted, "iteration budget exhausted")
		}

		node := open.Pop()
		if node == nil {
			return nil, newPlanError(ErrSearchExhausted, "open set emptied without reaching the goal")
		}
		if closed.Contains(node.Index) {
			continue
		}
		closed.Add(node.Index)
		iterations++

		if final, ok := h.tryAnalyticExpansion(arena, node, goal, radius); ok {
			h.Logger.Debugw("analytic expansion reached goal", "iterations", iterations)
			return ExtractPath(final), nil
		}

		for _, cand := range h.expand(arena, node) {
			if closed.Contains(cand.Index) {
				continue
			}
			cand.HeuCost = h.heuristic(cand.Pose, goal, radius)
			open.Push(cand)
		}
	}
}

// heuristic returns the Reed-Shepp penalized cost from from to to, used as
// an admissible-in-practice estimate for the remaining search cost. If the
// curve generator fails to produce any word (should not happen for finite
// poses), it falls back to straight-line distance so the search can still
// make progress rather than treating every state as equally far away.
func (h *HybridAStar) heuristic(from, to Pose, radius float64) float64 {
	rsPath, ok := ShortestRSP(from, to, radius, h.Config.StepSize)
	if !ok {
		return math.Hypot(to.X()-from.X(), to.Y()-from.Y())
	}
	return RSCost(rsPath, h.Vehicle.MaxSteerAngle, h.Config.BackPenalty, h.Config.GearSwitchPenalty, h.Config.SteerPenalty, h.Config.SteerChangePenalty)
}

// tryAnalyticExpansion attempts a single Reed-Shepp shot from node's pose
// straight to goal. If the shot's densified path is entirely
// collision-free, it is grafted on as node's sole child and returned as
// the finishing node.
func (h *HybridAStar) tryAnalyticExpansion(arena *nodeArena, node *Node3d, goal Pose, radius float64) (*Node3d, bool) {
	rsPath, ok := ShortestRSP(node.Pose, goal, radius, h.Config.StepSize)
	if !ok {
		return nil, false
	}
	if !h.Collision.CheckPath(rsPath.Poses) {
		return nil, false
	}
	cost := RSCost(rsPath, h.Vehicle.MaxSteerAngle, h.Config.BackPenalty, h.Config.GearSwitchPenalty, h.Config.SteerPenalty, h.Config.SteerChangePenalty)
	finalPose := rsPath.Poses[len(rsPath.Poses)-1]
	finalIdx := ComputeGridIndex(finalPose, h.Config.XYGridResolution, h.Config.PhiGridResolution)
	final := arena.newNode(finalPose, finalIdx, rsPath.Poses, node, true, 0)
	final.TrajCost = node.TrajCost + cost
	return final, true
}

// expand generates the motion primitives reachable from node:
// NextNodeNum/2 steering samples spanning [-MaxSteerAngle, MaxSteerAngle]
// (a single sample is straight ahead), each simulated in both gears, so
// NextNodeNum primitives in all (an odd NextNodeNum is rounded down),
// integrated with the bicycle model in Config.StepSize increments. Primitives that leave XYBounds or collide anywhere
// along their arc are discarded.
func (h *HybridAStar) expand(arena *nodeArena, node *Node3d) []*Node3d {
	var out []*Node3d
	n := h.Config.NextNodeNum
	if n < 2 {
		n = 2
	}
	maxSteer := h.Vehicle.MaxSteerAngle

	half := n / 2
	for i := 0; i < half; i++ {
		var steer float64
		if half == 1 {
			steer = 0
		} else {
			steer = -maxSteer + 2*maxSteer*float64(i)/float64(half-1)
		}
		for _, forward := range []bool{true, false} {
			traj, ok := h.integratePrimitive(node.Pose, steer, forward)
			if !ok {
				continue
			}
			if !h.Collision.CheckPath(traj) {
				continue
			}
			last := traj[len(traj)-1]
			idx := ComputeGridIndex(last, h.Config.XYGridResolution, h.Config.PhiGridResolution)
			child := arena.newNode(last, idx, traj, node, forward, steer)
			child.TrajCost = node.TrajCost + h.segmentCost(node, child)
			out = append(out, child)
		}
	}
	return out
}

// integratePrimitive advances the bicycle model from start along the given
// steering angle and gear, per spec.md §4.3's integration formula: the
// primitive's total arc is sqrt(2) * XYGridResolution (long enough to
// guarantee it exits the parent's own grid cell, matching Apollo's
// hybrid_a_star.cc Next_node_generator), covered in ceil(arc/StepSize)
// increments of StepSize each. Returns ok=false if any intermediate pose
// leaves XYBounds.
func (h *HybridAStar) integratePrimitive(start Pose, steer float64, forward bool) ([]Pose, bool) {
	dir := 1.0
	if !forward {
		dir = -1.0
	}
	arc := math.Sqrt2 * h.Config.XYGridResolution
	steps := int(math.Ceil(arc / h.Config.StepSize))
	if steps < 1 {
		steps = 1
	}
	ds := h.Config.StepSize
	wheelBase := h.Vehicle.WheelBase

	traj := make([]Pose, 0, steps+1)
	traj = append(traj, start)
	x, y, phi := start.X(), start.Y(), start.Heading
	for s := 0; s < steps; s++ {
		x += dir * ds * math.Cos(phi)
		y += dir * ds * math.Sin(phi)
		phi = NormalizeAngle(phi + dir*ds/wheelBase*math.Tan(steer))
		if !h.Bounds.Contains(x, y) {
			return nil, false
		}
		traj = append(traj, NewPose(x, y, phi))
	}
	return traj, true
}

// segmentCost prices one primitive edge from node to child: the base cost
// (xy_grid_resolution, scaled by BackPenalty if reverse, per spec.md
// §4.3's piecewise cost table), a GearSwitchPenalty if the gear differs
// from the parent's (never for children of the start node, which has no
// arriving gear), a SteerPenalty proportional to the steering
// magnitude, and a SteerChangePenalty proportional to how much the
// steering angle changed from the parent's.
func (h *HybridAStar) segmentCost(node, child *Node3d) float64 {
	cost := h.Config.XYGridResolution
	if !child.Forward {
		cost *= h.Config.BackPenalty
	}
	if node.Predecessor != nil && node.Forward != child.Forward {
		cost += h.Config.GearSwitchPenalty
	}
	cost += h.Config.SteerPenalty * math.Abs(child.Steer)
	cost += h.Config.SteerChangePenalty * math.Abs(child.Steer-node.Steer)
	return cost
}
