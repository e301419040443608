package score

// Point is a position on a drawing surface, in pixels.
type Point struct {
	X, Y float64
}

// Add returns p translated by (dx, dy).
func (p Point) Add(dx, dy float64) Point { return Point{X: p.X + dx, Y: p.Y + dy} }

// Rect is an axis-aligned rectangle with its origin at the top-left corner.
type Rect struct {
	X, Y, W, H float64
}

// Contains reports whether p lies inside r. The right and bottom edges are
// exclusive.
func (r Rect) Contains(p Point) bool {
	return r.X <= p.X && p.X < r.X+r.W && r.Y <= p.Y && p.Y < r.Y+r.H
}

// Intersects reports whether r and o overlap.
func (r Rect) Intersects(o Rect) bool {
	return r.X < o.X+o.W && o.X < r.X+r.W && r.Y < o.Y+o.H && o.Y < r.Y+r.H
}

// Color is a straight (non-premultiplied) RGBA color.
type Color struct {
	R, G, B, A uint8
}

// Palette used by measure and lane painting.
var (
	ColorBackground = Color{0, 0, 0, 255}
	ColorLaneMain   = Color{255, 255, 255, 180}
	ColorLaneSub    = Color{255, 255, 255, 80}
	ColorBarStart   = Color{255, 255, 0, 255}
	ColorText       = Color{255, 255, 255, 255}
)

// Surface is the drawing boundary used by [Measure.Paint] and lane painting.
// Implementations decide how primitives are rasterized or serialized.
type Surface interface {
	Line(from, to Point, c Color, width float64)
	Rect(r Rect, fill Color)
	Text(at Point, s string, size float64, c Color)
}
