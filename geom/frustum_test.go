package geom

import (
	"testing"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/require"
)

func TestFrustumFromOrtho(t *testing.T) {
	// Orthographic camera at the origin looking down -Z.
	frustum := NewFrustumFromMatrix(mgl32.Ortho(-10, 10, -10, 10, 1, 100))

	t.Run("inside", func(t *testing.T) {
		box := NewBoundingBox(mgl32.Vec3{-1, -1, -50}, mgl32.Vec3{1, 1, -40})
		require.Equal(t, Inside, frustum.IsInside(box))
		require.Equal(t, Inside, frustum.IsInsideFast(box))
	})

	t.Run("outside laterally", func(t *testing.T) {
		box := NewBoundingBox(mgl32.Vec3{20, -1, -50}, mgl32.Vec3{30, 1, -40})
		require.Equal(t, Outside, frustum.IsInside(box))
		require.Equal(t, Outside, frustum.IsInsideFast(box))
	})

	t.Run("outside behind camera", func(t *testing.T) {
		box := NewBoundingBox(mgl32.Vec3{-1, -1, 10}, mgl32.Vec3{1, 1, 20})
		require.Equal(t, Outside, frustum.IsInside(box))
	})

	t.Run("straddling a side plane", func(t *testing.T) {
		box := NewBoundingBox(mgl32.Vec3{5, -1, -50}, mgl32.Vec3{15, 1, -40})
		require.Equal(t, Intersects, frustum.IsInside(box))
		require.Equal(t, Inside, frustum.IsInsideFast(box))
	})
}

func TestPlaneDistance(t *testing.T) {
	plane := Plane{Normal: mgl32.Vec3{0, 1, 0}, D: -5}

	require.Equal(t, float32(5), plane.Distance(mgl32.Vec3{0, 10, 0}))
	require.Equal(t, float32(-5), plane.Distance(mgl32.Vec3{0, 0, 0}))
}
