package octree

import (
	"github.com/go-gl/mathgl/mgl32"
	"github.com/murgesku/yggdrasil/geom"
)

const numOctants = 8

// Octant is a single octree cell. Its culling box is the world box expanded by
// the octant's half size on every axis, so nodes sitting on a boundary do not
// thrash between neighboring cells.
type Octant struct {
	cullingBox       geom.BoundingBox
	worldBoundingBox geom.BoundingBox
	center           mgl32.Vec3
	halfSize         mgl32.Vec3

	// Subdivision budget left below this octant. The root starts at the
	// configured level count and children count down to 1.
	level int

	nodes    []*Node
	children [numOctants]*Octant
	parent   *Octant

	// Number of nodes in this octant and all its descendants.
	numNodes int
}

// initialize sets the octant bounds and resets its contents. Octants are pool
// allocated and reused, so every field is written.
func (o *Octant) initialize(parent *Octant, box geom.BoundingBox, level int) {
	o.worldBoundingBox = box
	o.center = box.Center()
	o.halfSize = box.HalfSize()
	o.cullingBox = box.Expanded(o.halfSize)
	o.level = level
	o.nodes = o.nodes[:0]
	o.children = [numOctants]*Octant{}
	o.parent = parent
	o.numNodes = 0
}

// FitBoundingBox reports whether a node with the given box must stay at this
// level instead of descending into a child octant.
func (o *Octant) FitBoundingBox(box geom.BoundingBox, boxSize mgl32.Vec3) bool {
	// At the last level everything fits. Otherwise a box at least half the
	// octant's size stays here.
	if o.level <= 1 ||
		boxSize.X() >= o.halfSize.X() ||
		boxSize.Y() >= o.halfSize.Y() ||
		boxSize.Z() >= o.halfSize.Z() {
		return true
	}

	// A box poking out further than a child's loose bounds could not be
	// contained by any child, so it stays here as well.
	quarterSize := o.halfSize.Mul(0.5)
	if box.Min.X() <= o.worldBoundingBox.Min.X()-quarterSize.X() ||
		box.Max.X() >= o.worldBoundingBox.Max.X()+quarterSize.X() ||
		box.Min.Y() <= o.worldBoundingBox.Min.Y()-quarterSize.Y() ||
		box.Max.Y() >= o.worldBoundingBox.Max.Y()+quarterSize.Y() ||
		box.Min.Z() <= o.worldBoundingBox.Min.Z()-quarterSize.Z() ||
		box.Max.Z() >= o.worldBoundingBox.Max.Z()+quarterSize.Z() {
		return true
	}

	return false
}

// ChildIndex returns the child octant code for a position: bit 0 for the
// positive x half, bit 1 for y, bit 2 for z.
func (o *Octant) ChildIndex(position mgl32.Vec3) int {
	index := 0
	if position.X() >= o.center.X() {
		index = 1
	}
	if position.Y() >= o.center.Y() {
		index += 2
	}
	if position.Z() >= o.center.Z() {
		index += 4
	}
	return index
}

// childBox returns the world bounds a child at the given index would cover.
func (o *Octant) childBox(index int) geom.BoundingBox {
	var min, max mgl32.Vec3
	for axis, bit := 0, 1; axis < 3; axis, bit = axis+1, bit<<1 {
		if index&bit != 0 {
			min[axis] = o.center[axis]
			max[axis] = o.worldBoundingBox.Max[axis]
		} else {
			min[axis] = o.worldBoundingBox.Min[axis]
			max[axis] = o.center[axis]
		}
	}
	return geom.NewBoundingBox(min, max)
}

func (o *Octant) hasChildren() bool {
	for _, child := range o.children {
		if child != nil {
			return true
		}
	}
	return false
}

// indexOf returns the child slot holding the given octant, -1 when absent.
func (o *Octant) indexOf(child *Octant) int {
	for i, c := range o.children {
		if c == child {
			return i
		}
	}
	return -1
}

func (o *Octant) WorldBoundingBox() geom.BoundingBox {
	return o.worldBoundingBox
}

func (o *Octant) CullingBox() geom.BoundingBox {
	return o.cullingBox
}

func (o *Octant) Center() mgl32.Vec3 {
	return o.center
}

func (o *Octant) HalfSize() mgl32.Vec3 {
	return o.halfSize
}

func (o *Octant) Level() int {
	return o.level
}

func (o *Octant) Parent() *Octant {
	return o.parent
}

func (o *Octant) Child(index int) *Octant {
	return o.children[index]
}

// NumNodes returns the number of nodes held by this octant and all its
// descendants.
func (o *Octant) NumNodes() int {
	return o.numNodes
}
