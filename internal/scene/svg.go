package scene

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/xml"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strconv"

	"github.com/rcliao/scratchpad/internal/atomicfile"
)

// Pixels per scene unit in SVG output.
const svgScale = 100.0

// SVGRenderer writes one SVG keyframe per stage into Dir.
type SVGRenderer struct {
	Dir        string
	Assets     *Assets
	Background Color
}

// Begin creates Dir and removes keyframes left by an earlier run.
func (r *SVGRenderer) Begin(ctx context.Context, meta Meta) error {
	if err := os.MkdirAll(r.Dir, 0o755); err != nil {
		return err
	}
	stale, err := filepath.Glob(filepath.Join(r.Dir, "[0-9][0-9]-*.svg"))
	if err != nil {
		return err
	}
	for _, p := range stale {
		if err := os.Remove(p); err != nil {
			return fmt.Errorf("remove stale keyframe: %w", err)
		}
	}
	return nil
}

func (r *SVGRenderer) Frame(ctx context.Context, f Frame) error {
	data, err := r.Render(f)
	if err != nil {
		return err
	}
	return atomicfile.Write(filepath.Join(r.Dir, KeyframeName(f.Index, f.Label)), data, 0o644)
}

func (r *SVGRenderer) End(ctx context.Context, tl *Timeline) error { return nil }

// Render draws one frame as a standalone SVG document.
func (r *SVGRenderer) Render(f Frame) ([]byte, error) {
	bg := r.Background
	if bg == "" {
		bg = Black
	}
	w, h := FrameWidth*svgScale, FrameHeight*svgScale

	var buf bytes.Buffer
	fmt.Fprintf(&buf, `<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 %s %s" width="%s" height="%s">`+"\n",
		num(w), num(h), num(w), num(h))
	buf.WriteString("<title>")
	xml.EscapeText(&buf, []byte(f.Label))
	buf.WriteString("</title>\n")
	fmt.Fprintf(&buf, `<rect x="0" y="0" width="%s" height="%s" fill="%s"/>`+"\n", num(w), num(h), bg)
	for _, s := range f.Shapes {
		if err := r.drawShape(&buf, s); err != nil {
			return nil, err
		}
	}
	buf.WriteString("</svg>\n")
	return buf.Bytes(), nil
}

func (r *SVGRenderer) drawShape(buf *bytes.Buffer, s *Shape) error {
	if s.Opacity <= 0 {
		return nil
	}
	c := toPx(s.Center)
	switch s.Kind {
	case KindCircle, KindDot:
		fmt.Fprintf(buf, `<circle id="%s" cx="%s" cy="%s" r="%s"%s/>`+"\n",
			attr(s.ID), num(c.X), num(c.Y), num(s.Radius*svgScale), paint(s))

	case KindArc:
		if math.Abs(s.Angle) >= 2*math.Pi-1e-9 {
			fmt.Fprintf(buf, `<circle id="%s" cx="%s" cy="%s" r="%s"%s/>`+"\n",
				attr(s.ID), num(c.X), num(c.Y), num(s.Radius*svgScale), paint(s))
			return nil
		}
		from := toPx(s.Center.Add(Point{s.Radius * math.Cos(s.StartAngle), s.Radius * math.Sin(s.StartAngle)}))
		end := s.StartAngle + s.Angle
		to := toPx(s.Center.Add(Point{s.Radius * math.Cos(end), s.Radius * math.Sin(end)}))
		large, sweep := 0, 0
		if math.Abs(s.Angle) > math.Pi {
			large = 1
		}
		if s.Angle < 0 {
			sweep = 1
		}
		rp := num(s.Radius * svgScale)
		fmt.Fprintf(buf, `<path id="%s" d="M %s %s A %s %s 0 %d %d %s %s"%s/>`+"\n",
			attr(s.ID), num(from.X), num(from.Y), rp, rp, large, sweep, num(to.X), num(to.Y), paint(s))

	case KindRect, KindRoundedRect:
		rx := ""
		if s.Kind == KindRoundedRect {
			rx = fmt.Sprintf(` rx="%s"`, num(s.Radius*svgScale))
		}
		fmt.Fprintf(buf, `<rect id="%s" x="%s" y="%s" width="%s" height="%s"%s%s%s/>`+"\n",
			attr(s.ID), num(c.X-s.Width*svgScale/2), num(c.Y-s.Height*svgScale/2),
			num(s.Width*svgScale), num(s.Height*svgScale), rx, rotation(s, c), paint(s))

	case KindLine:
		if len(s.Points) != 2 {
			return fmt.Errorf("line %q has %d points", s.ID, len(s.Points))
		}
		a, b := toPx(s.Points[0]), toPx(s.Points[1])
		fmt.Fprintf(buf, `<line id="%s" x1="%s" y1="%s" x2="%s" y2="%s"%s/>`+"\n",
			attr(s.ID), num(a.X), num(a.Y), num(b.X), num(b.Y), paint(s))

	case KindPolygon, KindStar:
		fmt.Fprintf(buf, `<polygon id="%s" points="%s"%s/>`+"\n", attr(s.ID), pointList(s.Points), paint(s))

	case KindPath:
		d := linePath(s.Points)
		if s.Smooth {
			d = smoothPath(s.Points)
		}
		fmt.Fprintf(buf, `<path id="%s" d="%s"%s/>`+"\n", attr(s.ID), d, paint(s))

	case KindText, KindCounter:
		fmt.Fprintf(buf, `<text id="%s" x="%s" y="%s" font-family="sans-serif" font-size="%s" text-anchor="middle" dominant-baseline="central"%s%s>`,
			attr(s.ID), num(c.X), num(c.Y), num(s.Style.FontSize*1.4), rotation(s, c), paint(s))
		xml.EscapeText(buf, []byte(s.Label()))
		buf.WriteString("</text>\n")

	case KindImage:
		if r.Assets == nil {
			return fmt.Errorf("image %q: no asset root configured", s.ID)
		}
		data, err := r.Assets.Load(s.Asset)
		if err != nil {
			return fmt.Errorf("image %q: %w", s.ID, err)
		}
		fmt.Fprintf(buf, `<image id="%s" x="%s" y="%s" width="%s" height="%s" href="data:image/svg+xml;base64,%s"%s%s/>`+"\n",
			attr(s.ID), num(c.X-s.Width*svgScale/2), num(c.Y-s.Height*svgScale/2),
			num(s.Width*svgScale), num(s.Height*svgScale),
			base64.StdEncoding.EncodeToString(data), rotation(s, c), opacity(s.Opacity))

	case KindGroup:
		// Group opacity is already cascaded to the leaves.
		fmt.Fprintf(buf, `<g id="%s">`+"\n", attr(s.ID))
		for _, ch := range s.Children {
			if err := r.drawShape(buf, ch); err != nil {
				return err
			}
		}
		buf.WriteString("</g>\n")

	default:
		return fmt.Errorf("shape %q: unknown kind %q", s.ID, s.Kind)
	}
	return nil
}

// toPx maps scene coordinates (origin centre, y up) to SVG pixels (origin
// top-left, y down).
func toPx(p Point) Point {
	return Point{(p.X + FrameWidth/2) * svgScale, (FrameHeight/2 - p.Y) * svgScale}
}

func paint(s *Shape) string {
	var b bytes.Buffer
	st := s.Style
	if st.Fill != "" {
		fmt.Fprintf(&b, ` fill="%s"`, st.Fill)
		if st.FillOpacity < 1 {
			fmt.Fprintf(&b, ` fill-opacity="%s"`, num(st.FillOpacity))
		}
	} else {
		b.WriteString(` fill="none"`)
	}
	if st.Stroke != "" && st.StrokeWidth > 0 {
		fmt.Fprintf(&b, ` stroke="%s" stroke-width="%s"`, st.Stroke, num(st.StrokeWidth))
	}
	b.WriteString(opacity(s.Opacity))
	return b.String()
}

func opacity(o float64) string {
	if o >= 1 {
		return ""
	}
	return fmt.Sprintf(` opacity="%s"`, num(o))
}

// rotation renders counter-clockwise scene rotation as an SVG transform.
func rotation(s *Shape, c Point) string {
	if s.Rotation == 0 {
		return ""
	}
	deg := -s.Rotation * 180 / math.Pi
	return fmt.Sprintf(` transform="rotate(%s %s %s)"`, num(deg), num(c.X), num(c.Y))
}

func pointList(pts []Point) string {
	var b bytes.Buffer
	for i, p := range pts {
		if i > 0 {
			b.WriteByte(' ')
		}
		q := toPx(p)
		b.WriteString(num(q.X) + "," + num(q.Y))
	}
	return b.String()
}

func linePath(pts []Point) string {
	var b bytes.Buffer
	for i, p := range pts {
		q := toPx(p)
		cmd := "L"
		if i == 0 {
			cmd = "M"
		}
		fmt.Fprintf(&b, "%s %s %s ", cmd, num(q.X), num(q.Y))
	}
	return string(bytes.TrimSpace(b.Bytes()))
}

// smoothPath converts a Catmull-Rom spline through pts into cubic Béziers.
func smoothPath(pts []Point) string {
	if len(pts) < 3 {
		return linePath(pts)
	}
	px := make([]Point, len(pts))
	for i, p := range pts {
		px[i] = toPx(p)
	}
	var b bytes.Buffer
	fmt.Fprintf(&b, "M %s %s", num(px[0].X), num(px[0].Y))
	for i := 0; i < len(px)-1; i++ {
		p0 := px[max(i-1, 0)]
		p1, p2 := px[i], px[i+1]
		p3 := px[min(i+2, len(px)-1)]
		c1 := p1.Add(p2.Sub(p0).Mul(1.0 / 6))
		c2 := p2.Sub(p3.Sub(p1).Mul(1.0 / 6))
		fmt.Fprintf(&b, " C %s %s %s %s %s %s",
			num(c1.X), num(c1.Y), num(c2.X), num(c2.Y), num(p2.X), num(p2.Y))
	}
	return b.String()
}

func num(f float64) string {
	return strconv.FormatFloat(math.Round(f*100)/100, 'f', -1, 64)
}

func attr(s string) string {
	var b bytes.Buffer
	xml.EscapeText(&b, []byte(s))
	return b.String()
}
