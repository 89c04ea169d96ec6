package octree

import (
	"github.com/go-gl/mathgl/mgl32"
	"github.com/google/uuid"
	"github.com/murgesku/yggdrasil/geom"
)

// NodeFlag is a bitmask describing a node's category and state.
type NodeFlag uint32

const (
	FlagEnabled NodeFlag = 1 << iota
	FlagGeometry
	FlagLight

	// Set while the node waits in the update queue. Keeps QueueUpdate
	// idempotent.
	flagUpdateQueued
)

// AnyFlags matches every node category in queries.
const AnyFlags = ^NodeFlag(0)

// RaycastResult is a single hit produced by a node ray test.
type RaycastResult struct {
	// Hit world position.
	Position mgl32.Vec3
	// Hit world normal.
	Normal mgl32.Vec3
	// Hit distance along the ray.
	Distance float32
	// Hit node.
	Node *Node
	// Node specific hit details.
	ExtraData any
}

// Node is a movable object tracked by the octree. The octree is the sole
// writer of the octant back-reference.
type Node struct {
	ID uuid.UUID

	// Optional node specific ray test. When nil, raycasts fall back to the
	// node's world bounding box.
	RaycastFunc func(n *Node, ray geom.Ray, maxDistance float32) []RaycastResult

	flags            NodeFlag
	worldBoundingBox geom.BoundingBox
	octant           *Octant
}

// NewNode returns a tracked node with the given category flags and world
// bounding box.
func NewNode(flags NodeFlag, box geom.BoundingBox) *Node {
	return &Node{
		ID:               uuid.New(),
		flags:            flags,
		worldBoundingBox: box,
	}
}

func (n *Node) Flags() NodeFlag {
	return n.flags
}

func (n *Node) TestFlag(flag NodeFlag) bool {
	return n.flags&flag != 0
}

func (n *Node) SetFlag(flag NodeFlag, on bool) {
	if on {
		n.flags |= flag
	} else {
		n.flags &^= flag
	}
}

func (n *Node) IsEnabled() bool {
	return n.flags&FlagEnabled != 0
}

func (n *Node) SetEnabled(v bool) {
	n.SetFlag(FlagEnabled, v)
}

func (n *Node) WorldBoundingBox() geom.BoundingBox {
	return n.worldBoundingBox
}

// SetWorldBoundingBox moves or resizes the node. The caller is expected to
// queue an update so the octree relocates the node on the next drain.
func (n *Node) SetWorldBoundingBox(box geom.BoundingBox) {
	n.worldBoundingBox = box
}

// Octant returns the octant currently holding the node, nil when untracked.
func (n *Node) Octant() *Octant {
	return n.octant
}

// onRaycast runs the node ray test and appends hits within maxDistance.
func (n *Node) onRaycast(dest *[]RaycastResult, ray geom.Ray, maxDistance float32) {
	if n.RaycastFunc != nil {
		for _, res := range n.RaycastFunc(n, ray, maxDistance) {
			if res.Distance < maxDistance {
				*dest = append(*dest, res)
			}
		}
		return
	}

	distance := ray.HitDistance(n.worldBoundingBox)
	if distance < maxDistance {
		*dest = append(*dest, RaycastResult{
			Position: ray.Point(distance),
			Normal:   ray.Direction.Mul(-1),
			Distance: distance,
			Node:     n,
		})
	}
}
