package octree

import (
	"sort"
	"testing"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/murgesku/yggdrasil/geom"
	"github.com/stretchr/testify/require"
)

func TestRaycastReturnsSortedHits(t *testing.T) {
	tree := newTestTree(t, 4)

	for _, x := range []float32{20, 50, 80} {
		tree.InsertNode(NewNode(FlagEnabled|FlagGeometry, boxAt(mgl32.Vec3{x, 10, 10}, 2)))
	}

	ray := geom.NewRay(mgl32.Vec3{-10, 10, 10}, mgl32.Vec3{1, 0, 0})
	hits := tree.Raycast(ray, AnyFlags, geom.Unbounded)

	require.Equal(t, 3, len(hits))
	require.True(t, sort.SliceIsSorted(hits, func(i, j int) bool {
		return hits[i].Distance < hits[j].Distance
	}))
	require.InDelta(t, 28, hits[0].Distance, 1e-4)
	require.InDelta(t, 58, hits[1].Distance, 1e-4)
	require.InDelta(t, 88, hits[2].Distance, 1e-4)

	// Default node ray test: hit on the world box, normal facing the ray.
	require.InDelta(t, 18, hits[0].Position.X(), 1e-4)
	require.Equal(t, mgl32.Vec3{-1, 0, 0}, hits[0].Normal)
}

func TestRaycastSingleMatchesNearestHit(t *testing.T) {
	tree := newTestTree(t, 4)

	for _, x := range []float32{20, 50, 80} {
		tree.InsertNode(NewNode(FlagEnabled|FlagGeometry, boxAt(mgl32.Vec3{x, 10, 10}, 2)))
	}

	ray := geom.NewRay(mgl32.Vec3{-10, 10, 10}, mgl32.Vec3{1, 0, 0})

	all := tree.Raycast(ray, AnyFlags, geom.Unbounded)
	single, ok := tree.RaycastSingle(ray, AnyFlags, geom.Unbounded)

	require.True(t, ok)
	require.Equal(t, all[0].Distance, single.Distance)
	require.Equal(t, all[0].Node, single.Node)
}

func TestRaycastMiss(t *testing.T) {
	tree := newTestTree(t, 4)
	tree.InsertNode(NewNode(FlagEnabled|FlagGeometry, boxAt(mgl32.Vec3{50, 50, 50}, 2)))

	ray := geom.NewRay(mgl32.Vec3{-10, 10, 10}, mgl32.Vec3{-1, 0, 0})

	require.Equal(t, 0, len(tree.Raycast(ray, AnyFlags, geom.Unbounded)))

	_, ok := tree.RaycastSingle(ray, AnyFlags, geom.Unbounded)
	require.False(t, ok)
}

func TestRaycastMaxDistance(t *testing.T) {
	tree := newTestTree(t, 4)

	near := NewNode(FlagEnabled|FlagGeometry, boxAt(mgl32.Vec3{20, 10, 10}, 2))
	far := NewNode(FlagEnabled|FlagGeometry, boxAt(mgl32.Vec3{80, 10, 10}, 2))
	tree.InsertNode(near)
	tree.InsertNode(far)

	ray := geom.NewRay(mgl32.Vec3{-10, 10, 10}, mgl32.Vec3{1, 0, 0})
	hits := tree.Raycast(ray, AnyFlags, 50)

	require.Equal(t, 1, len(hits))
	require.Equal(t, near, hits[0].Node)
}

func TestRaycastSkipsDisabledAndMismatched(t *testing.T) {
	tree := newTestTree(t, 4)

	disabled := NewNode(FlagGeometry, boxAt(mgl32.Vec3{20, 10, 10}, 2))
	light := NewNode(FlagEnabled|FlagLight, boxAt(mgl32.Vec3{50, 10, 10}, 2))
	tree.InsertNode(disabled)
	tree.InsertNode(light)

	ray := geom.NewRay(mgl32.Vec3{-10, 10, 10}, mgl32.Vec3{1, 0, 0})

	hits := tree.Raycast(ray, FlagGeometry, geom.Unbounded)
	require.Equal(t, 0, len(hits))

	hits = tree.Raycast(ray, FlagLight, geom.Unbounded)
	require.Equal(t, 1, len(hits))
	require.Equal(t, light, hits[0].Node)
}

func TestRaycastCustomNodeTest(t *testing.T) {
	tree := newTestTree(t, 4)

	node := NewNode(FlagEnabled|FlagGeometry, boxAt(mgl32.Vec3{20, 10, 10}, 2))
	node.RaycastFunc = func(n *Node, ray geom.Ray, maxDistance float32) []RaycastResult {
		return []RaycastResult{
			{Distance: 42, Node: n, ExtraData: "triangle 7"},
			{Distance: 77, Node: n},
		}
	}
	tree.InsertNode(node)

	ray := geom.NewRay(mgl32.Vec3{-10, 10, 10}, mgl32.Vec3{1, 0, 0})

	hits := tree.Raycast(ray, AnyFlags, geom.Unbounded)
	require.Equal(t, 2, len(hits))
	require.Equal(t, "triangle 7", hits[0].ExtraData)

	// Hits past maxDistance are filtered even from custom tests.
	hits = tree.Raycast(ray, AnyFlags, 50)
	require.Equal(t, 1, len(hits))
}

func TestRaycastPrunesUntouchedOctants(t *testing.T) {
	// Two levels: the eight root children hold one node each.
	tree := newTestTree(t, 2)

	tested := make(map[int]int)
	for i := 0; i < 8; i++ {
		center := mgl32.Vec3{25, 25, 25}
		if i&1 != 0 {
			center[0] = 75
		}
		if i&2 != 0 {
			center[1] = 75
		}
		if i&4 != 0 {
			center[2] = 75
		}

		index := i
		node := NewNode(FlagEnabled|FlagGeometry, boxAt(center, 5))
		node.RaycastFunc = func(n *Node, ray geom.Ray, maxDistance float32) []RaycastResult {
			tested[index]++
			return nil
		}
		tree.InsertNode(node)
		require.Equal(t, tree.Root(), node.Octant().Parent())
	}

	// Reaches only the low corner child's culling box: the x-high twin is
	// beyond the distance cap and the y/z-high ones are off the ray.
	ray := geom.NewRay(mgl32.Vec3{-30, 10, 10}, mgl32.Vec3{1, 0, 0})
	tree.Raycast(ray, AnyFlags, 30)

	require.Equal(t, map[int]int{0: 1}, tested)
}
