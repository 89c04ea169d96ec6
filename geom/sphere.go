package geom

import "github.com/go-gl/mathgl/mgl32"

// Sphere is a center point and a radius.
type Sphere struct {
	Center mgl32.Vec3
	Radius float32
}

// IsInside classifies a box against the sphere. A box is Inside only when all
// of its corners are within the radius.
func (s Sphere) IsInside(box BoundingBox) Intersection {
	radiusSq := s.Radius * s.Radius

	var distSq float32
	for axis := 0; axis < 3; axis++ {
		c := s.Center[axis]
		if c < box.Min[axis] {
			d := c - box.Min[axis]
			distSq += d * d
		} else if c > box.Max[axis] {
			d := c - box.Max[axis]
			distSq += d * d
		}
	}
	if distSq > radiusSq {
		return Outside
	}

	min := box.Min.Sub(s.Center)
	max := box.Max.Sub(s.Center)
	corners := [8]mgl32.Vec3{
		{min.X(), min.Y(), min.Z()},
		{max.X(), min.Y(), min.Z()},
		{min.X(), max.Y(), min.Z()},
		{max.X(), max.Y(), min.Z()},
		{min.X(), min.Y(), max.Z()},
		{max.X(), min.Y(), max.Z()},
		{min.X(), max.Y(), max.Z()},
		{max.X(), max.Y(), max.Z()},
	}
	for _, corner := range corners {
		if corner.Dot(corner) > radiusSq {
			return Intersects
		}
	}
	return Inside
}

// IsInsideFast only separates Outside from not-Outside, skipping the corner
// containment tests.
func (s Sphere) IsInsideFast(box BoundingBox) Intersection {
	radiusSq := s.Radius * s.Radius

	var distSq float32
	for axis := 0; axis < 3; axis++ {
		c := s.Center[axis]
		if c < box.Min[axis] {
			d := c - box.Min[axis]
			distSq += d * d
		} else if c > box.Max[axis] {
			d := c - box.Max[axis]
			distSq += d * d
		}
	}
	if distSq > radiusSq {
		return Outside
	}
	return Inside
}
