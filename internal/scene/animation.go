package scene

import "fmt"

// AnimKind names a timed transition.
type AnimKind string

const (
	AnimFadeIn             AnimKind = "fade_in"
	AnimFadeOut            AnimKind = "fade_out"
	AnimWrite              AnimKind = "write"
	AnimCreate             AnimKind = "create"
	AnimDrawBorderThenFill AnimKind = "draw_border_then_fill"
	AnimTransform          AnimKind = "transform"
	AnimMoveTo             AnimKind = "move_to"
	AnimShift              AnimKind = "shift"
	AnimScale              AnimKind = "scale"
	AnimRotate             AnimKind = "rotate"
	AnimSetValue           AnimKind = "set_value"
	AnimSetOpacity         AnimKind = "set_opacity"
)

// DefaultRunTime applies when an animation does not set one.
const DefaultRunTime = 1.0

// Animation is one transition over its targets. Introducing kinds (fade_in,
// write, create, draw_border_then_fill) carry the shapes they bring on stage;
// transform carries the shape its single target becomes.
type Animation struct {
	Kind     AnimKind
	Targets  []string
	Shapes   []*Shape
	RunTime  float64
	LagRatio float64

	To     Point   // move_to
	By     Point   // shift
	Factor float64 // scale
	About  *Point  // scale pivot shared by all targets
	Angle  float64 // rotate
	Value  float64 // set_value, set_opacity
}

func introduce(kind AnimKind, shapes []*Shape) Animation {
	ids := make([]string, len(shapes))
	for i, s := range shapes {
		ids[i] = s.ID
	}
	return Animation{Kind: kind, Targets: ids, Shapes: shapes}
}

func FadeIn(shapes ...*Shape) Animation { return introduce(AnimFadeIn, shapes) }
func Write(shapes ...*Shape) Animation { return introduce(AnimWrite, shapes) }
func Create(shapes ...*Shape) Animation { return introduce(AnimCreate, shapes) }
func DrawBorderThenFill(shapes ...*Shape) Animation {
	return introduce(AnimDrawBorderThenFill, shapes)
}

func FadeOut(ids ...string) Animation {
	return Animation{Kind: AnimFadeOut, Targets: ids}
}

// Transform morphs the shape with id into target. The source leaves the stage
// and target takes its draw position.
func Transform(id string, target *Shape) Animation {
	return Animation{Kind: AnimTransform, Targets: []string{id}, Shapes: []*Shape{target}}
}

func MoveTo(id string, p Point) Animation {
	return Animation{Kind: AnimMoveTo, Targets: []string{id}, To: p}
}

func Shift(d Point, ids ...string) Animation {
	return Animation{Kind: AnimShift, Targets: ids, By: d}
}

func Scale(f float64, ids ...string) Animation {
	return Animation{Kind: AnimScale, Targets: ids, Factor: f}
}

// ScaleAbout scales every target around one shared pivot so they keep their
// arrangement.
func ScaleAbout(f float64, pivot Point, ids ...string) Animation {
	return Animation{Kind: AnimScale, Targets: ids, Factor: f, About: &pivot}
}

func Rotate(angle float64, ids ...string) Animation {
	return Animation{Kind: AnimRotate, Targets: ids, Angle: angle}
}

// SetValue animates a counter to v.
func SetValue(id string, v float64) Animation {
	return Animation{Kind: AnimSetValue, Targets: []string{id}, Value: v}
}

func SetOpacity(o float64, ids ...string) Animation {
	return Animation{Kind: AnimSetOpacity, Targets: ids, Value: o}
}

// Run sets the run time in seconds.
func (a Animation) Run(seconds float64) Animation {
	a.RunTime = seconds
	return a
}

// Lag staggers target start times by ratio of each target's duration.
func (a Animation) Lag(ratio float64) Animation {
	a.LagRatio = ratio
	return a
}

// Duration is the run time with the default applied.
func (a Animation) Duration() float64 {
	if a.RunTime <= 0 {
		return DefaultRunTime
	}
	return a.RunTime
}

// Offsets returns each target's start and end relative to the animation start.
// With n targets and lag ratio r, each target runs for T/(1+(n-1)r) and
// target k starts k*r of that later, so the last one ends at T.
func (a Animation) Offsets() [][2]float64 {
	n := len(a.Targets)
	total := a.Duration()
	out := make([][2]float64, n)
	if n == 0 {
		return out
	}
	each := total / (1 + float64(n-1)*a.LagRatio)
	for k := range out {
		start := float64(k) * a.LagRatio * each
		out[k] = [2]float64{start, start + each}
	}
	return out
}

// Spans places each target's offsets at start. It is nil unless the
// animation staggers more than one target.
func (a Animation) Spans(start float64) []Span {
	if a.LagRatio <= 0 || len(a.Targets) < 2 {
		return nil
	}
	spans := make([]Span, len(a.Targets))
	for k, off := range a.Offsets() {
		spans[k] = Span{Target: a.Targets[k], Start: start + off[0], End: start + off[1]}
	}
	return spans
}

// Apply moves st to the animation's end state.
func (a Animation) Apply(st *State) error {
	switch a.Kind {
	case AnimFadeIn, AnimWrite, AnimCreate, AnimDrawBorderThenFill:
		for _, s := range a.Shapes {
			if existing := st.Find(s.ID); existing != nil {
				existing.setOpacity(1)
				continue
			}
			if err := st.Add(s); err != nil {
				return fmt.Errorf("%s: %w", a.Kind, err)
			}
		}
		return nil

	case AnimTransform:
		if len(a.Targets) != 1 || len(a.Shapes) != 1 {
			return fmt.Errorf("transform needs one source and one target")
		}
		if err := st.Replace(a.Targets[0], a.Shapes[0]); err != nil {
			return fmt.Errorf("transform: %w", err)
		}
		return nil

	case AnimFadeOut:
		for _, id := range a.Targets {
			if err := st.Remove(id); err != nil {
				return fmt.Errorf("fade_out: %w", err)
			}
		}
		return nil
	}

	for _, id := range a.Targets {
		s := st.Find(id)
		if s == nil {
			return fmt.Errorf("%s: unknown shape %q", a.Kind, id)
		}
		switch a.Kind {
		case AnimMoveTo:
			s.MoveTo(a.To)
		case AnimShift:
			s.Shift(a.By)
		case AnimScale:
			if a.About != nil {
				s.scaleAbout(a.Factor, *a.About)
			} else {
				s.Scale(a.Factor)
			}
		case AnimRotate:
			s.Rotate(a.Angle)
		case AnimSetValue:
			if s.Kind != KindCounter {
				return fmt.Errorf("set_value: shape %q is a %s, not a counter", id, s.Kind)
			}
			s.Value = a.Value
		case AnimSetOpacity:
			s.setOpacity(a.Value)
		default:
			return fmt.Errorf("unknown animation kind %q", a.Kind)
		}
	}
	return nil
}

// Params lists the kind-specific arguments for the timeline.
func (a Animation) Params() map[string]any {
	p := map[string]any{}
	switch a.Kind {
	case AnimMoveTo:
		p["to"] = a.To
	case AnimShift:
		p["by"] = a.By
	case AnimScale:
		p["factor"] = a.Factor
		if a.About != nil {
			p["about"] = *a.About
		}
	case AnimRotate:
		p["angle"] = a.Angle
	case AnimSetValue:
		p["value"] = a.Value
	case AnimSetOpacity:
		p["opacity"] = a.Value
	case AnimTransform:
		if len(a.Shapes) == 1 {
			p["into"] = a.Shapes[0].ID
		}
	}
	if a.LagRatio > 0 {
		p["lag_ratio"] = a.LagRatio
	}
	if len(p) == 0 {
		return nil
	}
	return p
}
