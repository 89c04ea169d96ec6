package octree

import (
	"sort"

	"github.com/murgesku/yggdrasil/geom"
)

// Raycast returns every hit within maxDistance for enabled nodes matching
// nodeFlags, sorted by ascending distance. Pass geom.Unbounded for an
// unlimited ray.
func (t *Octree) Raycast(ray geom.Ray, nodeFlags NodeFlag, maxDistance float32) []RaycastResult {
	var dest []RaycastResult
	collectRaycastHits(&dest, &t.root, ray, nodeFlags, maxDistance)

	sort.Slice(dest, func(i, j int) bool {
		return dest[i].Distance < dest[j].Distance
	})

	instrumentRaycast()
	return dest
}

func collectRaycastHits(dest *[]RaycastResult, octant *Octant, ray geom.Ray, nodeFlags NodeFlag, maxDistance float32) {
	if ray.HitDistance(octant.cullingBox) >= maxDistance {
		return
	}

	for _, n := range octant.nodes {
		if n.flags&FlagEnabled != 0 && n.flags&nodeFlags != 0 {
			n.onRaycast(dest, ray, maxDistance)
		}
	}
	for _, child := range octant.children {
		if child != nil {
			collectRaycastHits(dest, child, ray, nodeFlags, maxDistance)
		}
	}
}

// RaycastSingle returns the nearest hit within maxDistance. It first gathers
// candidate nodes with the distance at which the ray enters their octant's
// culling box, then runs the node ray tests in that order so it can stop as
// soon as no remaining candidate can beat the closest confirmed hit.
func (t *Octree) RaycastSingle(ray geom.Ray, nodeFlags NodeFlag, maxDistance float32) (RaycastResult, bool) {
	var candidates []raycastCandidate
	collectRaycastCandidates(&candidates, &t.root, ray, nodeFlags, maxDistance)

	sort.Slice(candidates, func(i, j int) bool {
		return candidates[i].octantDistance < candidates[j].octantDistance
	})

	closest := geom.Unbounded
	var results []RaycastResult
	for _, candidate := range candidates {
		limit := closest
		if maxDistance < limit {
			limit = maxDistance
		}
		if candidate.octantDistance >= limit {
			break
		}

		before := len(results)
		candidate.node.onRaycast(&results, ray, maxDistance)
		for _, res := range results[before:] {
			if res.Distance < closest {
				closest = res.Distance
			}
		}
	}

	instrumentRaycast()

	if len(results) == 0 {
		return RaycastResult{}, false
	}

	best := results[0]
	for _, res := range results[1:] {
		if res.Distance < best.Distance {
			best = res
		}
	}
	return best, true
}

type raycastCandidate struct {
	node           *Node
	octantDistance float32
}

func collectRaycastCandidates(dest *[]raycastCandidate, octant *Octant, ray geom.Ray, nodeFlags NodeFlag, maxDistance float32) {
	octantDistance := ray.HitDistance(octant.cullingBox)
	if octantDistance >= maxDistance {
		return
	}

	for _, n := range octant.nodes {
		if n.flags&FlagEnabled != 0 && n.flags&nodeFlags != 0 {
			*dest = append(*dest, raycastCandidate{node: n, octantDistance: octantDistance})
		}
	}
	for _, child := range octant.children {
		if child != nil {
			collectRaycastCandidates(dest, child, ray, nodeFlags, maxDistance)
		}
	}
}
