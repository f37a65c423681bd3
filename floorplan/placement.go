// Package floorplan decides whether a table can be dropped at a position on a floor plan.
package floorplan

// Shape of a table as drawn on the floor plan.
type Shape string

const (
	ShapeRound     Shape = "round"
	ShapeSquare    Shape = "square"
	ShapeRectangle Shape = "rectangle"
)

const (
	// DefaultSize is used for any width or height that was never set.
	DefaultSize = 80.0
	// Padding is the spacing kept between two tables.
	Padding = 8.0
)

// Valid reports whether s is one of the known shapes.
func (s Shape) Valid() bool {
	switch s {
	case ShapeRound, ShapeSquare, ShapeRectangle:
		return true
	}
	return false
}

// Placement is the part of a table the validator looks at.
type Placement struct {
	ID       uint
	Label    string
	Shape    Shape
	Width    float64
	Height   float64
	X        float64
	Y        float64
	IsActive bool
}

// Footprint returns the bounding box size of a table.
// Round and square tables use width for both sides; stored height is ignored.
func Footprint(shape Shape, width, height float64) (float64, float64) {
	w := width
	if w <= 0 {
		w = DefaultSize
	}

	switch shape {
	case ShapeRectangle:
		h := height
		if h <= 0 {
			h = DefaultSize
		}
		return w, h
	case ShapeRound, ShapeSquare:
		return w, w
	default:
		// unknown shapes are treated like a square of the same width
		return w, w
	}
}

// FindConflict returns the first table in others that the moved table would
// overlap if placed at (newX, newY). The moved table itself is skipped by ID.
//
// Padding is applied the way the floor plan editor has always done it: the gap
// on each axis must be at least Padding, so two boxes exactly Padding apart do
// not conflict. Inactive tables are not filtered here; callers that want them
// ignored must leave them out of others.
func FindConflict(moved Placement, newX, newY float64, others []Placement) (Placement, bool) {
	w1, h1 := Footprint(moved.Shape, moved.Width, moved.Height)

	for _, other := range others {
		if other.ID == moved.ID {
			continue
		}
		w2, h2 := Footprint(other.Shape, other.Width, other.Height)

		overlapX := newX < other.X+w2+Padding && newX+w1+Padding > other.X
		overlapY := newY < other.Y+h2+Padding && newY+h1+Padding > other.Y

		if overlapX && overlapY {
			return other, true
		}
	}
	return Placement{}, false
}

// HasOverlap reports whether placing moved at (newX, newY) hits any of others.
func HasOverlap(moved Placement, newX, newY float64, others []Placement) bool {
	_, found := FindConflict(moved, newX, newY, others)
	return found
}

// Clamp keeps a dropped position inside the canvas.
func Clamp(x, y float64) (float64, float64) {
	if x < 0 {
		x = 0
	}
	if y < 0 {
		y = 0
	}
	return x, y
}

// ActiveOnly drops inactive placements.
func ActiveOnly(placements []Placement) []Placement {
	out := make([]Placement, 0, len(placements))
	for _, p := range placements {
		if p.IsActive {
			out = append(out, p)
		}
	}
	return out
}
