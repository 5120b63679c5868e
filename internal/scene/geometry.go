// Package scene executes animation choreographies as ordered stages and hands
// the resulting visual state to pluggable renderers.
package scene

import "math"

// Frame size in scene units. The origin is the centre of the frame and y points up.
const (
	FrameWidth  = 14.222
	FrameHeight = 8.0
)

// Point is a position or offset in scene units.
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Unit directions.
var (
	Origin = Point{}
	Up     = Point{0, 1}
	Down   = Point{0, -1}
	Left   = Point{-1, 0}
	Right  = Point{1, 0}
)

// Pt is shorthand for Point{x, y}.
func Pt(x, y float64) Point { return Point{x, y} }

func (p Point) Add(q Point) Point { return Point{p.X + q.X, p.Y + q.Y} }
func (p Point) Sub(q Point) Point { return Point{p.X - q.X, p.Y - q.Y} }
func (p Point) Mul(f float64) Point { return Point{p.X * f, p.Y * f} }
func (p Point) Len() float64 { return math.Hypot(p.X, p.Y) }
func (p Point) Eq(q Point, eps float64) bool {
	return math.Abs(p.X-q.X) <= eps && math.Abs(p.Y-q.Y) <= eps
}

// rotateAbout turns p by angle radians counter-clockwise around c.
func (p Point) rotateAbout(angle float64, c Point) Point {
	d := p.Sub(c)
	sin, cos := math.Sincos(angle)
	return Point{c.X + d.X*cos - d.Y*sin, c.Y + d.X*sin + d.Y*cos}
}

// scaleAbout moves p away from (f > 1) or towards (f < 1) c.
func (p Point) scaleAbout(f float64, c Point) Point {
	return c.Add(p.Sub(c).Mul(f))
}

// Box is an axis-aligned bounding box.
type Box struct {
	Min, Max Point
}

func (b Box) Width() float64  { return b.Max.X - b.Min.X }
func (b Box) Height() float64 { return b.Max.Y - b.Min.Y }
func (b Box) Center() Point   { return b.Min.Add(b.Max).Mul(0.5) }

func (b Box) union(o Box) Box {
	return Box{
		Min: Point{math.Min(b.Min.X, o.Min.X), math.Min(b.Min.Y, o.Min.Y)},
		Max: Point{math.Max(b.Max.X, o.Max.X), math.Max(b.Max.Y, o.Max.Y)},
	}
}

func boxAround(c Point, w, h float64) Box {
	return Box{Min: Point{c.X - w/2, c.Y - h/2}, Max: Point{c.X + w/2, c.Y + h/2}}
}

func boxOf(points []Point) Box {
	if len(points) == 0 {
		return Box{}
	}
	b := Box{Min: points[0], Max: points[0]}
	for _, p := range points[1:] {
		b = b.union(Box{Min: p, Max: p})
	}
	return b
}
