package octree

import "github.com/murgesku/yggdrasil/geom"

// Volume is the capability a query volume must provide: an exact three-way
// classification against a box and a cheaper test that only rules boxes out.
// geom.BoundingBox, geom.Sphere and geom.Frustum all satisfy it.
type Volume interface {
	IsInside(geom.BoundingBox) geom.Intersection
	IsInsideFast(geom.BoundingBox) geom.Intersection
}

// FindNodes returns the enabled nodes matching nodeFlags whose bounds touch
// the volume. Subtrees whose culling box lies fully inside the volume are
// collected without any per-node geometric test.
func (t *Octree) FindNodes(volume Volume, nodeFlags NodeFlag) []*Node {
	var dest []*Node
	collectNodesInVolume(&dest, &t.root, volume, nodeFlags)
	instrumentVolumeQuery()
	return dest
}

func collectNodesInVolume(dest *[]*Node, octant *Octant, volume Volume, nodeFlags NodeFlag) {
	switch volume.IsInside(octant.cullingBox) {
	case geom.Outside:
		return

	case geom.Inside:
		// The whole subtree is in, no further geometric tests needed.
		collectNodes(dest, octant, nodeFlags)

	default:
		for _, n := range octant.nodes {
			if n.flags&FlagEnabled != 0 && n.flags&nodeFlags != 0 &&
				volume.IsInsideFast(n.worldBoundingBox) != geom.Outside {
				*dest = append(*dest, n)
			}
		}
		for _, child := range octant.children {
			if child != nil {
				collectNodesInVolume(dest, child, volume, nodeFlags)
			}
		}
	}
}

// collectNodes gathers every enabled node matching nodeFlags from a subtree.
func collectNodes(dest *[]*Node, octant *Octant, nodeFlags NodeFlag) {
	for _, n := range octant.nodes {
		if n.flags&FlagEnabled != 0 && n.flags&nodeFlags != 0 {
			*dest = append(*dest, n)
		}
	}
	for _, child := range octant.children {
		if child != nil {
			collectNodes(dest, child, nodeFlags)
		}
	}
}
