package scene

import (
	"math"
	"strconv"
	"unicode/utf8"
)

// ShapeKind names a visual primitive.
type ShapeKind string

const (
	KindCircle      ShapeKind = "circle"
	KindArc         ShapeKind = "arc"
	KindRect        ShapeKind = "rect"
	KindRoundedRect ShapeKind = "rounded_rect"
	KindDot         ShapeKind = "dot"
	KindLine        ShapeKind = "line"
	KindPolygon     ShapeKind = "polygon"
	KindStar        ShapeKind = "star"
	KindText        ShapeKind = "text"
	KindCounter     ShapeKind = "counter"
	KindPath        ShapeKind = "path"
	KindImage       ShapeKind = "image"
	KindGroup       ShapeKind = "group"
)

// Edge and neighbour spacing in scene units.
const (
	DefaultEdgeBuff   = 0.5
	DefaultNextToBuff = 0.25
)

// Shape is one visual primitive with a stable ID. Point-based kinds (line,
// polygon, star, path) store absolute vertices; the rest are placed by Center.
type Shape struct {
	ID         string    `json:"id"`
	Kind       ShapeKind `json:"kind"`
	Center     Point     `json:"center"`
	Width      float64   `json:"width,omitempty"`
	Height     float64   `json:"height,omitempty"`
	Radius     float64   `json:"radius,omitempty"`
	StartAngle float64   `json:"start_angle,omitempty"`
	Angle      float64   `json:"angle,omitempty"`
	Points     []Point   `json:"points,omitempty"`
	Smooth     bool      `json:"smooth,omitempty"`
	Text       string    `json:"text,omitempty"`
	Value      float64   `json:"value,omitempty"`
	Asset      string    `json:"asset,omitempty"`
	Children   []*Shape  `json:"children,omitempty"`
	Rotation   float64   `json:"rotation,omitempty"`
	Opacity    float64   `json:"opacity"`
	Style      Style     `json:"style"`
}

func Circle(id string, c Point, r float64, st Style) *Shape {
	return &Shape{ID: id, Kind: KindCircle, Center: c, Radius: r, Opacity: 1, Style: st}
}

// Arc sweeps angle radians counter-clockwise from start around c.
func Arc(id string, c Point, r, start, angle float64, st Style) *Shape {
	return &Shape{ID: id, Kind: KindArc, Center: c, Radius: r, StartAngle: start, Angle: angle, Opacity: 1, Style: st}
}

// ArcBetween sweeps angle radians counter-clockwise from a to b. A negative
// angle bends the other way.
func ArcBetween(id string, a, b Point, angle float64, st Style) *Shape {
	d := b.Sub(a)
	chord := d.Len()
	if chord == 0 || angle == 0 {
		return Line(id, a, b, st)
	}
	normal := Point{-d.Y / chord, d.X / chord}
	c := a.Add(b).Mul(0.5).Add(normal.Mul(chord / (2 * math.Tan(angle/2))))
	r := chord / (2 * math.Abs(math.Sin(angle/2)))
	start := math.Atan2(a.Y-c.Y, a.X-c.X)
	return Arc(id, c, r, start, angle, st)
}

func Rect(id string, c Point, w, h float64, st Style) *Shape {
	return &Shape{ID: id, Kind: KindRect, Center: c, Width: w, Height: h, Opacity: 1, Style: st}
}

func Square(id string, c Point, side float64, st Style) *Shape {
	return Rect(id, c, side, side, st)
}

// RoundedRect is a rectangle whose corners have radius corner.
func RoundedRect(id string, c Point, w, h, corner float64, st Style) *Shape {
	return &Shape{ID: id, Kind: KindRoundedRect, Center: c, Width: w, Height: h, Radius: corner, Opacity: 1, Style: st}
}

func Dot(id string, c Point, r float64, color Color) *Shape {
	return &Shape{ID: id, Kind: KindDot, Center: c, Radius: r, Opacity: 1, Style: Style{Fill: color, FillOpacity: 1}}
}

func Line(id string, a, b Point, st Style) *Shape {
	return &Shape{ID: id, Kind: KindLine, Center: a.Add(b).Mul(0.5), Points: []Point{a, b}, Opacity: 1, Style: st}
}

func Polygon(id string, pts []Point, st Style) *Shape {
	return &Shape{ID: id, Kind: KindPolygon, Center: boxOf(pts).Center(), Points: pts, Opacity: 1, Style: st}
}

// RegularPolygon has n vertices on a circle of radius r. Odd polygons point up.
func RegularPolygon(id string, c Point, n int, r float64, st Style) *Shape {
	start := 0.0
	if n%2 == 1 {
		start = math.Pi / 2
	}
	pts := make([]Point, n)
	for i := range pts {
		a := start + float64(i)*2*math.Pi/float64(n)
		pts[i] = Point{c.X + r*math.Cos(a), c.Y + r*math.Sin(a)}
	}
	s := Polygon(id, pts, st)
	s.Center = c
	return s
}

// Star alternates n outer and n inner vertices, first point up.
func Star(id string, c Point, n int, outer, inner float64, st Style) *Shape {
	pts := make([]Point, 0, 2*n)
	for i := 0; i < 2*n; i++ {
		r := outer
		if i%2 == 1 {
			r = inner
		}
		a := math.Pi/2 + float64(i)*math.Pi/float64(n)
		pts = append(pts, Point{c.X + r*math.Cos(a), c.Y + r*math.Sin(a)})
	}
	return &Shape{ID: id, Kind: KindStar, Center: c, Radius: outer, Points: pts, Opacity: 1, Style: st}
}

func Text(id string, c Point, text string, fontSize float64, color Color) *Shape {
	return &Shape{ID: id, Kind: KindText, Center: c, Text: text, Opacity: 1,
		Style: Style{Fill: color, FillOpacity: 1, FontSize: fontSize}}
}

// Counter is an integer display whose value animates with SetValue.
func Counter(id string, c Point, value, fontSize float64, color Color) *Shape {
	return &Shape{ID: id, Kind: KindCounter, Center: c, Value: value, Opacity: 1,
		Style: Style{Fill: color, FillOpacity: 1, FontSize: fontSize}}
}

// Path is an open stroke through pts, drawn as a smooth curve when smooth is set.
func Path(id string, pts []Point, smooth bool, st Style) *Shape {
	return &Shape{ID: id, Kind: KindPath, Center: boxOf(pts).Center(), Points: pts, Smooth: smooth, Opacity: 1, Style: st}
}

// Image places an SVG asset, given relative to the asset root, in a w×h box.
func Image(id, asset string, c Point, w, h float64) *Shape {
	return &Shape{ID: id, Kind: KindImage, Asset: asset, Center: c, Width: w, Height: h, Opacity: 1}
}

// Group bundles children so they move, scale and fade together.
func Group(id string, children ...*Shape) *Shape {
	g := &Shape{ID: id, Kind: KindGroup, Children: children, Opacity: 1}
	g.Center = g.Bounds().Center()
	return g
}

// Add appends children to a group.
func (s *Shape) Add(children ...*Shape) *Shape {
	s.Children = append(s.Children, children...)
	s.Center = s.Bounds().Center()
	return s
}

// Bounds is the axis-aligned extent of the shape.
func (s *Shape) Bounds() Box {
	switch s.Kind {
	case KindCircle, KindDot, KindArc:
		return boxAround(s.Center, 2*s.Radius, 2*s.Radius)
	case KindRect, KindRoundedRect, KindImage:
		if s.Rotation == 0 {
			return boxAround(s.Center, s.Width, s.Height)
		}
		corners := boxAround(s.Center, s.Width, s.Height)
		pts := []Point{corners.Min, corners.Max, {corners.Min.X, corners.Max.Y}, {corners.Max.X, corners.Min.Y}}
		for i := range pts {
			pts[i] = pts[i].rotateAbout(s.Rotation, s.Center)
		}
		return boxOf(pts)
	case KindLine, KindPolygon, KindStar, KindPath:
		return boxOf(s.Points)
	case KindText, KindCounter:
		w, h := s.textExtent()
		return boxAround(s.Center, w, h)
	case KindGroup:
		if len(s.Children) == 0 {
			return Box{Min: s.Center, Max: s.Center}
		}
		b := s.Children[0].Bounds()
		for _, c := range s.Children[1:] {
			b = b.union(c.Bounds())
		}
		return b
	}
	return Box{Min: s.Center, Max: s.Center}
}

// textExtent estimates rendered text size from the font size.
func (s *Shape) textExtent() (w, h float64) {
	n := utf8.RuneCountInString(s.Label())
	return float64(n) * s.Style.FontSize * 0.011, s.Style.FontSize * 0.018
}

// Label is the text a text or counter shape displays.
func (s *Shape) Label() string {
	if s.Kind == KindCounter {
		return formatCounter(s.Value)
	}
	return s.Text
}

// MoveTo places the shape's centre at p.
func (s *Shape) MoveTo(p Point) *Shape {
	s.shift(p.Sub(s.Center))
	return s
}

// Shift moves the shape by d.
func (s *Shape) Shift(d Point) *Shape {
	s.shift(d)
	return s
}

// Scale resizes the shape around its centre.
func (s *Shape) Scale(f float64) *Shape {
	s.scaleAbout(f, s.Center)
	return s
}

// Rotate turns the shape around its centre.
func (s *Shape) Rotate(angle float64) *Shape {
	s.rotateAbout(angle, s.Center)
	return s
}

// ToEdge pushes the shape against the frame edge in dir, leaving buff units.
// A diagonal dir places it in a corner.
func (s *Shape) ToEdge(dir Point, buff float64) *Shape {
	b := s.Bounds()
	var d Point
	switch {
	case dir.X > 0:
		d.X = FrameWidth/2 - buff - b.Max.X
	case dir.X < 0:
		d.X = -FrameWidth/2 + buff - b.Min.X
	}
	switch {
	case dir.Y > 0:
		d.Y = FrameHeight/2 - buff - b.Max.Y
	case dir.Y < 0:
		d.Y = -FrameHeight/2 + buff - b.Min.Y
	}
	s.shift(d)
	return s
}

// NextTo places the shape beside ref in dir with buff units between them,
// aligned on ref's centre along the other axis.
func (s *Shape) NextTo(ref *Shape, dir Point, buff float64) *Shape {
	rb, b := ref.Bounds(), s.Bounds()
	c := b.Center()
	target := c
	switch {
	case dir.X > 0:
		target.X = rb.Max.X + buff + b.Width()/2
	case dir.X < 0:
		target.X = rb.Min.X - buff - b.Width()/2
	default:
		target.X = rb.Center().X
	}
	switch {
	case dir.Y > 0:
		target.Y = rb.Max.Y + buff + b.Height()/2
	case dir.Y < 0:
		target.Y = rb.Min.Y - buff - b.Height()/2
	default:
		target.Y = rb.Center().Y
	}
	s.shift(target.Sub(c))
	return s
}

// SetWidth scales the shape uniformly to the given width.
func (s *Shape) SetWidth(w float64) *Shape {
	if cur := s.Bounds().Width(); cur > 0 {
		s.Scale(w / cur)
	}
	return s
}

func (s *Shape) shift(d Point) {
	s.Center = s.Center.Add(d)
	for i := range s.Points {
		s.Points[i] = s.Points[i].Add(d)
	}
	for _, c := range s.Children {
		c.shift(d)
	}
}

func (s *Shape) scaleAbout(f float64, o Point) {
	s.Center = s.Center.scaleAbout(f, o)
	s.Width *= f
	s.Height *= f
	s.Radius *= f
	s.Style.FontSize *= f
	for i := range s.Points {
		s.Points[i] = s.Points[i].scaleAbout(f, o)
	}
	for _, c := range s.Children {
		c.scaleAbout(f, o)
	}
}

func (s *Shape) rotateAbout(angle float64, o Point) {
	s.Center = s.Center.rotateAbout(angle, o)
	s.Rotation += angle
	if s.Kind == KindArc {
		s.StartAngle += angle
	}
	for i := range s.Points {
		s.Points[i] = s.Points[i].rotateAbout(angle, o)
	}
	for _, c := range s.Children {
		c.rotateAbout(angle, o)
	}
}

// setOpacity sets o on s and every descendant; leaves hold the effective value.
func (s *Shape) setOpacity(o float64) {
	s.Opacity = o
	for _, c := range s.Children {
		c.setOpacity(o)
	}
}

// Clone deep-copies the shape and its children.
func (s *Shape) Clone() *Shape {
	c := *s
	if s.Points != nil {
		c.Points = append([]Point(nil), s.Points...)
	}
	if s.Children != nil {
		c.Children = make([]*Shape, len(s.Children))
		for i, ch := range s.Children {
			c.Children[i] = ch.Clone()
		}
	}
	return &c
}

// walk visits s and every descendant, depth first.
func (s *Shape) walk(fn func(*Shape)) {
	fn(s)
	for _, c := range s.Children {
		c.walk(fn)
	}
}

func formatCounter(v float64) string {
	return strconv.FormatInt(int64(math.Round(v)), 10)
}
