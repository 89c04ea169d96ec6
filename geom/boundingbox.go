package geom

import (
	"math"

	"github.com/go-gl/mathgl/mgl32"
)

// BoundingBox is an axis-aligned box delimited by its minimum and maximum
// corners.
type BoundingBox struct {
	Min mgl32.Vec3
	Max mgl32.Vec3
}

// NewBoundingBox returns a box spanning the given corners.
func NewBoundingBox(min, max mgl32.Vec3) BoundingBox {
	return BoundingBox{Min: min, Max: max}
}

// UndefinedBoundingBox returns an inverted box that merges into any point or
// box it is combined with.
func UndefinedBoundingBox() BoundingBox {
	inf := float32(math.Inf(1))
	return BoundingBox{
		Min: mgl32.Vec3{inf, inf, inf},
		Max: mgl32.Vec3{-inf, -inf, -inf},
	}
}

// IsDefined reports whether the box spans a non-inverted region.
func (b BoundingBox) IsDefined() bool {
	return b.Min.X() <= b.Max.X() &&
		b.Min.Y() <= b.Max.Y() &&
		b.Min.Z() <= b.Max.Z()
}

func (b BoundingBox) Center() mgl32.Vec3 {
	return b.Min.Add(b.Max).Mul(0.5)
}

func (b BoundingBox) Size() mgl32.Vec3 {
	return b.Max.Sub(b.Min)
}

func (b BoundingBox) HalfSize() mgl32.Vec3 {
	return b.Max.Sub(b.Min).Mul(0.5)
}

// Expanded returns the box grown by the given amount on every axis, in both
// directions.
func (b BoundingBox) Expanded(amount mgl32.Vec3) BoundingBox {
	return BoundingBox{
		Min: b.Min.Sub(amount),
		Max: b.Max.Add(amount),
	}
}

// Merge returns the smallest box containing both boxes.
func (b BoundingBox) Merge(other BoundingBox) BoundingBox {
	return BoundingBox{
		Min: mgl32.Vec3{
			minf(b.Min.X(), other.Min.X()),
			minf(b.Min.Y(), other.Min.Y()),
			minf(b.Min.Z(), other.Min.Z()),
		},
		Max: mgl32.Vec3{
			maxf(b.Max.X(), other.Max.X()),
			maxf(b.Max.Y(), other.Max.Y()),
			maxf(b.Max.Z(), other.Max.Z()),
		},
	}
}

// ContainsPoint reports whether the point lies inside the box, borders
// included.
func (b BoundingBox) ContainsPoint(p mgl32.Vec3) bool {
	return p.X() >= b.Min.X() && p.X() <= b.Max.X() &&
		p.Y() >= b.Min.Y() && p.Y() <= b.Max.Y() &&
		p.Z() >= b.Min.Z() && p.Z() <= b.Max.Z()
}

// IsInside classifies another box against this one.
func (b BoundingBox) IsInside(box BoundingBox) Intersection {
	if box.Max.X() < b.Min.X() || box.Min.X() > b.Max.X() ||
		box.Max.Y() < b.Min.Y() || box.Min.Y() > b.Max.Y() ||
		box.Max.Z() < b.Min.Z() || box.Min.Z() > b.Max.Z() {
		return Outside
	}
	if box.Min.X() < b.Min.X() || box.Max.X() > b.Max.X() ||
		box.Min.Y() < b.Min.Y() || box.Max.Y() > b.Max.Y() ||
		box.Min.Z() < b.Min.Z() || box.Max.Z() > b.Max.Z() {
		return Intersects
	}
	return Inside
}

// IsInsideFast only separates Outside from not-Outside. Cheaper than IsInside
// when the caller does not care about full containment.
func (b BoundingBox) IsInsideFast(box BoundingBox) Intersection {
	if box.Max.X() < b.Min.X() || box.Min.X() > b.Max.X() ||
		box.Max.Y() < b.Min.Y() || box.Min.Y() > b.Max.Y() ||
		box.Max.Z() < b.Min.Z() || box.Min.Z() > b.Max.Z() {
		return Outside
	}
	return Inside
}

func minf(a, b float32) float32 {
	if a < b {
		return a
	}
	return b
}

func maxf(a, b float32) float32 {
	if a > b {
		return a
	}
	return b
}
