package hybridastar

import (
	"context"
	"encoding/json"
	"io"

	"go.uber.org/zap"
)

// Request bundles a single planning query: the start and goal poses in the
// caller-established local planning frame, the vehicle being planned for,
// the planning envelope, and the obstacle set.
type Request struct {
	Start     Pose
	Goal      Pose
	Vehicle   VehicleParams
	Bounds    XYBounds
	Obstacles []ObstacleBox
	// Polytopes is the (A, b) half-plane obstacle representation spec.md
	// §6 requires alongside Obstacles, for the downstream obstacle-distance
	// NLP this core does not itself run. It plays no part in the collision
	// decisions Plan makes; it is carried through to Result.Debug unread.
	Polytopes []ObstaclePolytope
	Config    Config
	Frame     FrameTransform
}

// Result is the outcome of a successful Plan call: the partitioned
// trajectory in the local planning frame, plus an optional debug artifact.
type Result struct {
	Segments []TrajectorySegment
	Debug    *DebugArtifact
	frame    FrameTransform
}

// ToWorldFrame returns a copy of the result with every pose transformed
// back into the world frame via the inverse of the FrameTransform the
// originating Request supplied, per the coordinate convention of §6: this
// is the exact inverse of the local-frame transform Plan applies to the
// input poses before searching.
func (r *Result) ToWorldFrame() *Result {
	out := &Result{Debug: r.Debug, frame: r.frame}
	out.Segments = make([]TrajectorySegment, len(r.Segments))
	for i, seg := range r.Segments {
		points := make([]TrajectoryPoint, len(seg.Points))
		for j, pt := range seg.Points {
			pt.Pose = r.frame.ToWorld(pt.Pose)
			points[j] = pt
		}
		out.Segments[i] = TrajectorySegment{Gear: seg.Gear, Points: points}
	}
	return out
}

// DebugArtifact carries the intermediate poses and metadata a caller may
// want to persist for offline inspection. spec.md names a protobuf sink
// for this; no .proto/protoc toolchain is available here, so this
// substitutes a plain struct with a WriteJSON method rather than
// fabricating a protobuf dependency that could never actually be
// generated from within this module.
type DebugArtifact struct {
	RawPath      []Pose             `json:"raw_path"`
	SegmentCount int                `json:"segment_count"`
	TotalCost    float64            `json:"total_cost"`
	Polytopes    []ObstaclePolytope `json:"polytopes,omitempty"`
}

// WriteJSON serializes the artifact as indented JSON.
func (d *DebugArtifact) WriteJSON(w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(d)
}

// Planner ties the collision checker, Hybrid A* search, and trajectory
// partitioner into the single entry point external callers use.
type Planner struct {
	Logger *zap.SugaredLogger
}

// NewPlanner builds a Planner. A nil logger is replaced with a no-op
// sugared logger.
func NewPlanner(logger *zap.SugaredLogger) *Planner {
	if logger == nil {
		logger = zap.NewNop().Sugar()
	}
	return &Planner{Logger: logger}
}

// Plan runs the full open-space pipeline for req: transform start/goal
// into the local frame, search, partition, and return the result still
// expressed in the local frame (callers wanting world-frame output call
// Result.ToWorldFrame). ctx is checked cooperatively inside the search
// loop; there is no internal parallelism to cancel elsewhere.
func (p *Planner) Plan(ctx context.Context, req Request) (*Result, error) {
	if err := req.Config.Validate(); err != nil {
		return nil, &PlanError{Kind: ErrInvalidInput, Err: err}
	}

	localStart := req.Frame.ToLocal(req.Start)
	localGoal := req.Frame.ToLocal(req.Goal)

	checker := NewCollisionChecker(req.Vehicle, req.Obstacles)
	search := NewHybridAStar(req.Vehicle, req.Bounds, checker, req.Config, p.Logger)

	rawPath, err := search.Plan(ctx, localStart, localGoal)
	if err != nil {
		return nil, err
	}

	partitioner := NewTrajectoryPartitioner(req.Config.DeltaT, req.Config.StepSize)
	segments, err := partitioner.Partition(rawPath, req.Vehicle.WheelBase)
	if err != nil {
		return nil, err
	}

	totalCost := 0.0
	for i := 1; i < len(rawPath); i++ {
		totalCost += rawPath[i].Point.Sub(rawPath[i-1].Point).Norm()
	}

	p.Logger.Infow("plan succeeded", "raw_samples", len(rawPath), "segments", len(segments))

	return &Result{
		Segments: segments,
		Debug: &DebugArtifact{
			RawPath:      rawPath,
			SegmentCount: len(segments),
			TotalCost:    totalCost,
			Polytopes:    req.Polytopes,
		},
		frame: req.Frame,
	}, nil
}
