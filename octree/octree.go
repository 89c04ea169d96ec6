package octree

import (
	"sync"
	"time"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/murgesku/yggdrasil/geom"
)

const (
	// DefaultWorldSize is the half extent of the default root bounds.
	DefaultWorldSize = 1000
	// DefaultNumLevels is the default subdivision depth.
	DefaultNumLevels = 8

	maxNumLevels = 256
)

// Octree is a dynamic loose octree tracking movable nodes. It is not safe for
// concurrent use; callers drive it from a single goroutine, typically once per
// frame.
type Octree struct {
	root        Octant
	updateQueue []*Node
	allocator   sync.Pool

	numLevels  int
	numOctants int
	validate   bool
}

// New returns an octree covering the given world bounds with the given
// subdivision depth. numLevels is clamped to [1, 256].
func New(bounds geom.BoundingBox, numLevels int) *Octree {
	t := &Octree{
		allocator: sync.Pool{New: func() any { return &Octant{} }},
	}
	t.Resize(bounds, numLevels)
	return t
}

// NewDefault returns an octree with the default world bounds and depth.
func NewDefault() *Octree {
	return New(geom.NewBoundingBox(
		mgl32.Vec3{-DefaultWorldSize, -DefaultWorldSize, -DefaultWorldSize},
		mgl32.Vec3{DefaultWorldSize, DefaultWorldSize, DefaultWorldSize},
	), DefaultNumLevels)
}

// SetValidation toggles aggregate count verification after every mutation.
// Violations panic, they are programming errors.
func (t *Octree) SetValidation(v bool) {
	t.validate = v
}

// NumLevels returns the configured subdivision depth.
func (t *Octree) NumLevels() int {
	return t.numLevels
}

// NumNodes returns the number of tracked nodes.
func (t *Octree) NumNodes() int {
	return t.root.numNodes
}

// Root returns the root octant. It exists for the octree's whole lifetime.
func (t *Octree) Root() *Octant {
	return &t.root
}

// InsertNode places a node into the deepest octant whose loose bounds still
// fit it, lazily creating child octants on the way down. A node whose box lies
// outside the root bounds stays in the root. Reinserting a node that already
// sits in the right octant is a no-op.
func (t *Octree) InsertNode(n *Node) {
	if n == nil {
		return
	}

	box := n.worldBoundingBox
	boxCenter := box.Center()
	boxSize := box.Size()

	octant := &t.root
	for {
		var insertHere bool
		if octant == &t.root {
			// A node that does not fit fully inside the root must stay in it.
			insertHere = octant.cullingBox.IsInside(box) != geom.Inside ||
				octant.FitBoundingBox(box, boxSize)
		} else {
			insertHere = octant.FitBoundingBox(box, boxSize)
		}

		if insertHere {
			old := n.octant
			if old != octant {
				// Add first, then remove, in case the node moves between
				// octants on the same branch.
				t.addNode(n, octant)
				if old != nil {
					t.removeNode(n, old)
				}
				instrumentNodeInsert()
				instrumentTrackedNodes(t.root.numNodes)
			}
			break
		}

		octant = t.createChildOctant(octant, octant.ChildIndex(boxCenter))
	}

	if t.validate {
		t.mustValidate()
	}
}

// RemoveNode removes a node from the octree and clears its back-reference.
// Removing an untracked node is a no-op.
func (t *Octree) RemoveNode(n *Node) {
	if n == nil || n.octant == nil {
		return
	}

	t.removeNode(n, n.octant)
	if n.TestFlag(flagUpdateQueued) {
		t.CancelUpdate(n)
	}
	n.octant = nil

	instrumentNodeRemove()
	instrumentTrackedNodes(t.root.numNodes)

	if t.validate {
		t.mustValidate()
	}
}

// QueueUpdate marks a node for reinsertion on the next Update. Queuing an
// already queued node is a no-op.
func (t *Octree) QueueUpdate(n *Node) {
	if n == nil || n.TestFlag(flagUpdateQueued) {
		return
	}
	t.updateQueue = append(t.updateQueue, n)
	n.SetFlag(flagUpdateQueued, true)
	instrumentQueueLength(len(t.updateQueue))
}

// CancelUpdate unmarks a pending reinsertion. Canceling a node that is not
// queued is a no-op.
func (t *Octree) CancelUpdate(n *Node) {
	if n == nil || !n.TestFlag(flagUpdateQueued) {
		return
	}
	for i, queued := range t.updateQueue {
		if queued == n {
			t.updateQueue = append(t.updateQueue[:i], t.updateQueue[i+1:]...)
			break
		}
	}
	n.SetFlag(flagUpdateQueued, false)
	instrumentQueueLength(len(t.updateQueue))
}

// Update drains the reinsertion queue once. Nodes whose octant still fits them
// stay put; the others are relocated with a single root-down descent each.
func (t *Octree) Update() {
	start := time.Now()

	for _, n := range t.updateQueue {
		if n == nil || !n.TestFlag(flagUpdateQueued) {
			continue
		}
		n.SetFlag(flagUpdateQueued, false)
		t.InsertNode(n)
		instrumentNodeReinsert()
	}
	t.updateQueue = t.updateQueue[:0]

	instrumentQueueLength(0)
	instrumentUpdateDuration(time.Since(start))
}

// Resize tears down the octant hierarchy, reinitializes the root with the new
// bounds and depth, and reinserts every tracked node. A degenerate box still
// produces a usable root; everything then accumulates in it.
func (t *Octree) Resize(bounds geom.BoundingBox, numLevels int) {
	var nodes []*Node
	collectAllNodes(&nodes, &t.root)

	t.updateQueue = t.updateQueue[:0]
	t.deleteChildOctants(&t.root, false)

	if !bounds.IsDefined() {
		bounds = geom.NewBoundingBox(bounds.Min, bounds.Min)
	}
	if numLevels < 1 {
		numLevels = 1
	}
	if numLevels > maxNumLevels {
		numLevels = maxNumLevels
	}

	t.numLevels = numLevels
	t.root.initialize(nil, bounds, numLevels)

	for _, n := range nodes {
		t.InsertNode(n)
	}

	instrumentQueueLength(0)
	instrumentLiveOctants(t.numOctants + 1)

	if t.validate {
		t.mustValidate()
	}
}

// Close tears down the whole hierarchy and detaches every tracked node.
func (t *Octree) Close() {
	t.deleteChildOctants(&t.root, true)
	t.updateQueue = nil
	instrumentTrackedNodes(0)
	instrumentLiveOctants(0)
}

// addNode appends the node to an octant and bumps the aggregate counts on the
// path to the root.
func (t *Octree) addNode(n *Node, octant *Octant) {
	octant.nodes = append(octant.nodes, n)
	n.octant = octant

	for o := octant; o != nil; o = o.parent {
		o.numNodes++
	}
}

// removeNode erases the node from an octant, decrements the aggregate counts
// on the path to the root, and prunes octants left empty. The node's
// back-reference is left alone, it may already point at its next octant.
func (t *Octree) removeNode(n *Node, octant *Octant) {
	found := false
	for i, held := range octant.nodes {
		if held == n {
			octant.nodes = append(octant.nodes[:i], octant.nodes[i+1:]...)
			found = true
			break
		}
	}
	if !found {
		panic("octree: node not found in its recorded octant")
	}

	o := octant
	for o != nil {
		o.numNodes--
		parent := o.parent
		if o.numNodes == 0 && parent != nil && !o.hasChildren() {
			t.deleteChildOctant(parent, parent.indexOf(o))
		}
		o = parent
	}
}

// createChildOctant returns the child at the given index, allocating it from
// the pool when absent.
func (t *Octree) createChildOctant(octant *Octant, index int) *Octant {
	if child := octant.children[index]; child != nil {
		return child
	}

	child := t.allocator.Get().(*Octant)
	child.initialize(octant, octant.childBox(index), octant.level-1)
	octant.children[index] = child
	t.numOctants++

	instrumentLiveOctants(t.numOctants + 1)
	return child
}

// deleteChildOctant returns a single empty child to the pool.
func (t *Octree) deleteChildOctant(octant *Octant, index int) {
	if index < 0 || octant.children[index] == nil {
		panic("octree: asked to delete an absent child octant")
	}

	child := octant.children[index]
	octant.children[index] = nil
	t.numOctants--
	t.allocator.Put(child)

	instrumentLiveOctants(t.numOctants + 1)
}

// deleteChildOctants tears down a subtree, detaching any nodes it still holds.
// Resize reinserts the survivors afterwards; on a full teardown they stay
// detached.
func (t *Octree) deleteChildOctants(octant *Octant, deletingOctree bool) {
	for _, n := range octant.nodes {
		n.octant = nil
		n.SetFlag(flagUpdateQueued, false)
	}
	octant.nodes = octant.nodes[:0]
	octant.numNodes = 0

	for i, child := range octant.children {
		if child != nil {
			t.deleteChildOctants(child, deletingOctree)
			octant.children[i] = nil
		}
	}

	if octant != &t.root {
		t.numOctants--
		if !deletingOctree {
			t.allocator.Put(octant)
		}
	}
}

// collectAllNodes gathers every node of a subtree regardless of flags.
func collectAllNodes(dest *[]*Node, octant *Octant) {
	*dest = append(*dest, octant.nodes...)
	for _, child := range octant.children {
		if child != nil {
			collectAllNodes(dest, child)
		}
	}
}

// mustValidate panics when an octant's aggregate count disagrees with its
// contents.
func (t *Octree) mustValidate() {
	validateOctant(&t.root)
}

func validateOctant(o *Octant) int {
	total := len(o.nodes)
	for _, child := range o.children {
		if child != nil {
			total += validateOctant(child)
		}
	}
	if total != o.numNodes {
		panic("octree: aggregate node count out of sync")
	}
	return total
}
