package geom

import "github.com/go-gl/mathgl/mgl32"

// Plane is defined by its normal and the signed distance from the origin.
type Plane struct {
	Normal mgl32.Vec3
	D      float32
}

// Distance returns the signed distance from the plane to the point. Positive
// values are on the side the normal points to.
func (p Plane) Distance(point mgl32.Vec3) float32 {
	return p.Normal.Dot(point) + p.D
}

func (p Plane) normalized() Plane {
	length := p.Normal.Len()
	if length == 0 {
		return p
	}
	return Plane{Normal: p.Normal.Mul(1 / length), D: p.D / length}
}

// Frustum is a convex volume bounded by six inward-facing planes, typically
// extracted from a camera's view-projection matrix.
type Frustum struct {
	Planes [6]Plane
}

// NewFrustumFromMatrix extracts the six clip planes from a view-projection
// matrix (Gribb-Hartmann).
func NewFrustumFromMatrix(m mgl32.Mat4) Frustum {
	row := func(i int) mgl32.Vec4 {
		return mgl32.Vec4{m.At(i, 0), m.At(i, 1), m.At(i, 2), m.At(i, 3)}
	}
	r0, r1, r2, r3 := row(0), row(1), row(2), row(3)

	plane := func(v mgl32.Vec4) Plane {
		return Plane{
			Normal: mgl32.Vec3{v.X(), v.Y(), v.Z()},
			D:      v.W(),
		}.normalized()
	}

	var f Frustum
	f.Planes[0] = plane(r3.Add(r0))  // left
	f.Planes[1] = plane(r3.Sub(r0))  // right
	f.Planes[2] = plane(r3.Add(r1))  // bottom
	f.Planes[3] = plane(r3.Sub(r1))  // top
	f.Planes[4] = plane(r3.Add(r2))  // near
	f.Planes[5] = plane(r3.Sub(r2))  // far
	return f
}

// IsInside classifies a box against the frustum by testing the box corner
// nearest and farthest along each plane normal.
func (f Frustum) IsInside(box BoundingBox) Intersection {
	result := Inside
	for _, p := range f.Planes {
		positive, negative := box.extremeCorners(p.Normal)
		if p.Distance(positive) < 0 {
			return Outside
		}
		if p.Distance(negative) < 0 {
			result = Intersects
		}
	}
	return result
}

// IsInsideFast only separates Outside from not-Outside.
func (f Frustum) IsInsideFast(box BoundingBox) Intersection {
	for _, p := range f.Planes {
		positive, _ := box.extremeCorners(p.Normal)
		if p.Distance(positive) < 0 {
			return Outside
		}
	}
	return Inside
}

// extremeCorners returns the box corners farthest along and against the given
// direction.
func (b BoundingBox) extremeCorners(dir mgl32.Vec3) (positive, negative mgl32.Vec3) {
	positive = b.Min
	negative = b.Max
	for axis := 0; axis < 3; axis++ {
		if dir[axis] >= 0 {
			positive[axis] = b.Max[axis]
			negative[axis] = b.Min[axis]
		}
	}
	return positive, negative
}
