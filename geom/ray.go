package geom

import (
	"math"

	"github.com/go-gl/mathgl/mgl32"
)

// Unbounded is the hit distance reported on a miss, and the default maximum
// distance for raycasts.
var Unbounded = float32(math.Inf(1))

// Ray is an infinite line starting at Origin, pointing along the normalized
// Direction.
type Ray struct {
	Origin    mgl32.Vec3
	Direction mgl32.Vec3
}

// NewRay returns a ray through origin with the given direction, normalized.
func NewRay(origin, direction mgl32.Vec3) Ray {
	return Ray{Origin: origin, Direction: direction.Normalize()}
}

// Point returns the position at distance t along the ray.
func (r Ray) Point(t float32) mgl32.Vec3 {
	return r.Origin.Add(r.Direction.Mul(t))
}

// HitDistance returns the distance at which the ray enters the box, 0 when the
// origin is already inside, or Unbounded on a miss. Slab test per axis.
func (r Ray) HitDistance(box BoundingBox) float32 {
	if box.ContainsPoint(r.Origin) {
		return 0
	}

	tmin := float32(math.Inf(-1))
	tmax := Unbounded

	for axis := 0; axis < 3; axis++ {
		origin := r.Origin[axis]
		dir := r.Direction[axis]
		lo := box.Min[axis]
		hi := box.Max[axis]

		if dir == 0 {
			if origin < lo || origin > hi {
				return Unbounded
			}
			continue
		}

		t1 := (lo - origin) / dir
		t2 := (hi - origin) / dir
		if t1 > t2 {
			t1, t2 = t2, t1
		}
		if t1 > tmin {
			tmin = t1
		}
		if t2 < tmax {
			tmax = t2
		}
		if tmin > tmax {
			return Unbounded
		}
	}

	if tmax < 0 {
		return Unbounded
	}
	if tmin < 0 {
		return 0
	}
	return tmin
}
