package hybridastar

import "math"

// GridIndex is an integer (ix, iy, iphi) triple identifying a cell of the
// discretized configuration space. Two poses collapse to the same cell iff
// they produce equal GridIndex values.
type GridIndex struct {
	IX, IY, IPhi int64
}

// gridKey is a GridIndex packed (by GridIndex.key) into a single 64-bit value suitable for map
// lookups, per the corpus's convention of keying spatial hash maps by
// packed integers rather than floating point (spatialmath's box code and
// the teacher's octree/index packing follow the same idea). 21 bits per
// axis gives +-1,048,575 cells per axis, comfortably beyond any realistic
// XYbounds/resolution combination.
type gridKey int64

const gridBits = 21
const gridMask = (int64(1) << gridBits) - 1

func (g GridIndex) key() gridKey {
	return gridKey(((g.IX & gridMask) << (2 * gridBits)) | ((g.IY & gridMask) << gridBits) | (g.IPhi & gridMask))
}

// ComputeGridIndex floor-divides a pose by the configured resolutions.
// Heading is normalized before quantization so pi and -pi land in the
// same angular cell.
func ComputeGridIndex(p Pose, xyRes, phiRes float64) GridIndex {
	phi := NormalizeAngle(p.Heading)
	return GridIndex{
		IX:   int64(math.Floor(p.X() / xyRes)),
		IY:   int64(math.Floor(p.Y() / xyRes)),
		IPhi: int64(math.Floor(phi / phiRes)),
	}
}

// Node3d is a single state in the Hybrid A* search: a final pose, its
// cached GridIndex, the arc of intermediate poses connecting it to its
// predecessor, cost accounting, and a predecessor link. The search owns
// node storage in an arena (nodeArena, below) so that predecessors are
// guaranteed to outlive successors without needing shared ownership.
type Node3d struct {
	Pose        Pose
	Index       GridIndex
	Traj        []Pose // predecessor's final pose .. this node's final pose, inclusive
	Predecessor *Node3d
	Forward     bool
	Steer       float64

	TrajCost float64 // g
	HeuCost  float64 // h

	arenaIdx int
}

// TotalCost returns f = g + h.
func (n *Node3d) TotalCost() float64 {
	return n.TrajCost + n.HeuCost
}

// nodeArena owns all Node3d allocations for one Plan call so that Plan can
// discard them in bulk on return, matching the lifecycle spec.md §3
// describes ("Plan() clears all state ... Nodes are reclaimed when Plan
// exits").
type nodeArena struct {
	nodes []*Node3d
}

func newNodeArena() *nodeArena {
	return &nodeArena{}
}

func (a *nodeArena) newNode(pose Pose, index GridIndex, traj []Pose, pred *Node3d, forward bool, steer float64) *Node3d {
	n := &Node3d{
		Pose:        pose,
		Index:       index,
		Traj:        traj,
		Predecessor: pred,
		Forward:     forward,
		Steer:       steer,
		arenaIdx:    len(a.nodes),
	}
	a.nodes = append(a.nodes, n)
	return n
}

// ExtractPath walks predecessor links from the final node back to the
// start node, reversing each node's intermediate pose sequence and
// dropping its final element (the predecessor's final pose, which the
// predecessor's own contribution already covers), and finally appends the
// start pose. That walk naturally produces poses in goal-to-start order,
// so the assembled slice is reversed once at the end to read start-to-goal
// (matching Apollo's LoadRSPStepsInGear + final std::reverse).
func ExtractPath(final *Node3d) []Pose {
	var reverseOrder []Pose
	for n := final; n != nil && n.Predecessor != nil; n = n.Predecessor {
		seg := make([]Pose, len(n.Traj))
		for i, p := range n.Traj {
			seg[len(n.Traj)-1-i] = p
		}
		reverseOrder = append(reverseOrder, seg[:len(seg)-1]...)
	}

	start := final
	for start.Predecessor != nil {
		start = start.Predecessor
	}
	reverseOrder = append(reverseOrder, start.Pose)

	path := make([]Pose, len(reverseOrder))
	for i, p := range reverseOrder {
		path[len(reverseOrder)-1-i] = p
	}
	return path
}
