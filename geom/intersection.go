package geom

// Intersection describes how a volume and a bounding box relate to each other.
type Intersection int

const (
	Outside Intersection = iota
	Intersects
	Inside
)

func (i Intersection) String() string {
	switch i {
	case Outside:
		return "outside"
	case Intersects:
		return "intersects"
	case Inside:
		return "inside"
	default:
		return "unknown"
	}
}
