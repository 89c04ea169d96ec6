package geom

import (
	"testing"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/require"
)

func TestRayHitDistance(t *testing.T) {
	box := NewBoundingBox(mgl32.Vec3{-1, -1, -1}, mgl32.Vec3{1, 1, 1})

	t.Run("hit from outside", func(t *testing.T) {
		ray := NewRay(mgl32.Vec3{-5, 0, 0}, mgl32.Vec3{1, 0, 0})
		require.Equal(t, float32(4), ray.HitDistance(box))
	})

	t.Run("origin inside", func(t *testing.T) {
		ray := NewRay(mgl32.Vec3{0, 0, 0}, mgl32.Vec3{0, 1, 0})
		require.Equal(t, float32(0), ray.HitDistance(box))
	})

	t.Run("miss", func(t *testing.T) {
		ray := NewRay(mgl32.Vec3{-5, 5, 0}, mgl32.Vec3{1, 0, 0})
		require.Equal(t, Unbounded, ray.HitDistance(box))
	})

	t.Run("pointing away", func(t *testing.T) {
		ray := NewRay(mgl32.Vec3{-5, 0, 0}, mgl32.Vec3{-1, 0, 0})
		require.Equal(t, Unbounded, ray.HitDistance(box))
	})

	t.Run("parallel slab outside", func(t *testing.T) {
		ray := NewRay(mgl32.Vec3{-5, 2, 0}, mgl32.Vec3{1, 0, 0})
		require.Equal(t, Unbounded, ray.HitDistance(box))
	})

	t.Run("diagonal", func(t *testing.T) {
		ray := NewRay(mgl32.Vec3{-2, -2, -2}, mgl32.Vec3{1, 1, 1})
		dist := ray.HitDistance(box)
		hit := ray.Point(dist)
		require.InDelta(t, -1, hit.X(), 1e-5)
		require.InDelta(t, -1, hit.Y(), 1e-5)
		require.InDelta(t, -1, hit.Z(), 1e-5)
	})
}

func TestRayPoint(t *testing.T) {
	ray := NewRay(mgl32.Vec3{1, 2, 3}, mgl32.Vec3{0, 0, 2})
	require.Equal(t, mgl32.Vec3{1, 2, 8}, ray.Point(5))
}
