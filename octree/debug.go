package octree

// DebugInfo is a snapshot of the tree shape, exposed over the service debug
// endpoint.
type DebugInfo struct {
	WorldMin    [3]float32 `json:"world_min"`
	WorldMax    [3]float32 `json:"world_max"`
	NumLevels   int        `json:"num_levels"`
	OctantCount int        `json:"octant_count"`
	NodeCount   int        `json:"node_count"`
	QueueLength int        `json:"queue_length"`

	// Nodes held per depth, root first.
	Occupancy []int `json:"occupancy"`
}

// DebugInfo walks the tree and reports its current shape.
func (t *Octree) DebugInfo() DebugInfo {
	info := DebugInfo{
		WorldMin:    t.root.worldBoundingBox.Min,
		WorldMax:    t.root.worldBoundingBox.Max,
		NumLevels:   t.numLevels,
		OctantCount: t.numOctants + 1,
		NodeCount:   t.root.numNodes,
		QueueLength: len(t.updateQueue),
		Occupancy:   make([]int, t.numLevels),
	}
	collectOccupancy(&info, &t.root, 0)
	return info
}

func collectOccupancy(info *DebugInfo, octant *Octant, depth int) {
	if depth < len(info.Occupancy) {
		info.Occupancy[depth] += len(octant.nodes)
	}
	for _, child := range octant.children {
		if child != nil {
			collectOccupancy(info, child, depth+1)
		}
	}
}
