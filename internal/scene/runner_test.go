package scene

import (
	"context"
	"errors"
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSVG = `<?xml version="1.0"?>
<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 200 100"><circle cx="50" cy="50" r="40"/></svg>`

func writeAsset(t *testing.T, dir, rel, content string) {
	t.Helper()
	path := filepath.Join(dir, filepath.FromSlash(rel))
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

func twoStage() Choreography {
	return Choreography{
		Name:  "two-stage",
		Title: "Two Stage",
		Seed:  Seeded(7),
		Build: func(b *Builder) ([]Stage, error) {
			return []Stage{
				{
					Label: "intro",
					Add:   []*Shape{Circle("c1", Origin, 1, Stroked(Blue))},
					Plays: []Play{Together(
						FadeIn(Text("t", Up, "hello", 36, White)).Run(0.5),
						Shift(Right, "c1").Run(2),
					)},
					Wait: 1,
				},
				{
					Label: "out",
					Plays: []Play{{FadeOut("t")}},
				},
			}, nil
		},
	}
}

func TestRunner_Timeline(t *testing.T) {
	rec := &Recorder{}
	r := NewRunner(NewAssets(t.TempDir()), nil)

	tl, err := r.Run(context.Background(), twoStage(), rec)
	require.NoError(t, err)

	want := &Timeline{
		Choreography: "two-stage",
		Title:        "Two Stage",
		Seed:         7,
		Seeded:       true,
		Duration:     4,
		Stages: []StageMark{
			{Index: 0, Label: "intro", Start: 0, End: 3, Visible: 2},
			{Index: 1, Label: "out", Start: 3, End: 4, Visible: 1},
		},
		Events: []Event{
			{Stage: 0, Start: 0, End: 0, Kind: EventAdd, Targets: []string{"c1"}},
			{Stage: 0, Start: 0, End: 0.5, Kind: "fade_in", Targets: []string{"t"}},
			{Stage: 0, Start: 0, End: 2, Kind: "shift", Targets: []string{"c1"}, Params: map[string]any{"by": Right}},
			{Stage: 0, Start: 2, End: 3, Kind: EventWait},
			{Stage: 1, Start: 3, End: 4, Kind: "fade_out", Targets: []string{"t"}},
		},
	}
	if diff := cmp.Diff(want, tl); diff != "" {
		t.Errorf("timeline mismatch (-want +got):\n%s", diff)
	}

	require.Len(t, rec.Frames, 2)
	assert.Equal(t, "intro", rec.Frames[0].Label)
	assert.InDelta(t, 3, rec.Frames[0].Time, 1e-9)
	assert.True(t, rec.Frames[0].Shapes[0].Center.Eq(Right, 1e-9))
	assert.Len(t, rec.Frames[1].Shapes, 1)
	assert.Same(t, tl, rec.Timeline)
	assert.Equal(t, "two-stage", rec.Meta.Name)
}

func TestRunner_TimelineStaggersLaggedTargets(t *testing.T) {
	ch := Choreography{
		Name: "lagged",
		Seed: Seeded(1),
		Build: func(b *Builder) ([]Stage, error) {
			return []Stage{
				{Label: "wait", Add: []*Shape{Dot("a", Origin, 0.1, White)}, Wait: 1},
				{
					Label: "row",
					Add:   []*Shape{Dot("b", Up, 0.1, White), Dot("c", Down, 0.1, White)},
					Plays: []Play{{Shift(Right, "a", "b", "c").Run(2).Lag(0.5)}},
				},
			}, nil
		},
	}
	tl, err := NewRunner(NewAssets(t.TempDir()), nil).Run(context.Background(), ch, &Recorder{})
	require.NoError(t, err)

	var shift Event
	for _, e := range tl.Events {
		if e.Kind == string(AnimShift) {
			shift = e
		}
	}
	want := []Span{
		{Target: "a", Start: 1, End: 2},
		{Target: "b", Start: 1.5, End: 2.5},
		{Target: "c", Start: 2, End: 3},
	}
	if diff := cmp.Diff(want, shift.Spans); diff != "" {
		t.Errorf("spans mismatch (-want +got):\n%s", diff)
	}
	assert.Equal(t, 1.0, shift.Start)
	assert.Equal(t, 3.0, shift.End)
	assert.Equal(t, 0.5, shift.Params["lag_ratio"])
}

func TestRunner_ClockNeverGoesBackwards(t *testing.T) {
	rec := &Recorder{}
	tl, err := NewRunner(NewAssets(t.TempDir()), nil).Run(context.Background(), twoStage(), rec)
	require.NoError(t, err)

	prev := 0.0
	for _, f := range rec.Frames {
		assert.GreaterOrEqual(t, f.Time, prev)
		prev = f.Time
	}
	for i, s := range tl.Stages {
		assert.LessOrEqual(t, s.Start, s.End)
		if i > 0 {
			assert.Equal(t, tl.Stages[i-1].End, s.Start)
		}
	}
}

func TestRunner_MissingAssetFailsBeforeBuild(t *testing.T) {
	root := t.TempDir()
	writeAsset(t, root, "present.svg", testSVG)
	writeAsset(t, root, "broken.svg", "<html></html>")

	built := false
	ch := Choreography{
		Name:   "needs-assets",
		Assets: []string{"present.svg", "absent.svg", "broken.svg"},
		Build: func(b *Builder) ([]Stage, error) {
			built = true
			return nil, nil
		},
	}
	rec := &Recorder{}
	_, err := NewRunner(NewAssets(root), nil).Run(context.Background(), ch, rec)

	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrMissingAsset))
	assert.Contains(t, err.Error(), "absent.svg")
	assert.Contains(t, err.Error(), "broken.svg")
	assert.NotContains(t, err.Error(), "present.svg (")
	assert.False(t, built)
	assert.Empty(t, rec.Meta.Name, "renderer must not start")
}

func TestRunner_SeedReproducible(t *testing.T) {
	ch := Choreography{
		Name: "random-dots",
		Build: func(b *Builder) ([]Stage, error) {
			var dots []*Shape
			for _, id := range []string{"a", "b", "c"} {
				dots = append(dots, Dot(id, Pt(b.Uniform(-3, 3), b.Uniform(-2, 2)), 0.1, Gold))
			}
			return []Stage{{Label: "dots", Add: dots}}, nil
		},
	}

	run := func(seed int64) []*Shape {
		r := NewRunner(NewAssets(t.TempDir()), nil)
		r.Seed = &seed
		rec := &Recorder{}
		_, err := r.Run(context.Background(), ch, rec)
		require.NoError(t, err)
		return rec.Frames[0].Shapes
	}

	first, second := run(99), run(99)
	if diff := cmp.Diff(first, second); diff != "" {
		t.Errorf("same seed produced different frames:\n%s", diff)
	}
	assert.NotEqual(t, first[0].Center, run(100)[0].Center)
}

func TestRunner_SeedResolution(t *testing.T) {
	fixed := time.Unix(0, 123456789)
	unseeded := twoStage()
	unseeded.Seed = nil

	r := NewRunner(NewAssets(t.TempDir()), nil)
	r.now = func() time.Time { return fixed }

	tl, err := r.Run(context.Background(), unseeded, &Recorder{})
	require.NoError(t, err)
	assert.False(t, tl.Seeded)
	assert.Equal(t, int64(123456789), tl.Seed)

	tl, err = r.Run(context.Background(), twoStage(), &Recorder{})
	require.NoError(t, err)
	assert.Equal(t, int64(7), tl.Seed)

	override := int64(5)
	r.Seed = &override
	tl, err = r.Run(context.Background(), twoStage(), &Recorder{})
	require.NoError(t, err)
	assert.True(t, tl.Seeded)
	assert.Equal(t, int64(5), tl.Seed)
}

func TestRunner_StageErrorAborts(t *testing.T) {
	ch := Choreography{
		Name: "bad",
		Build: func(b *Builder) ([]Stage, error) {
			return []Stage{
				{Label: "ok", Add: []*Shape{Dot("d", Origin, 0.1, Red)}},
				{Label: "broken", Plays: []Play{{MoveTo("missing", Up)}}},
				{Label: "never"},
			}, nil
		},
	}
	rec := &Recorder{}
	_, err := NewRunner(NewAssets(t.TempDir()), nil).Run(context.Background(), ch, rec)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "stage 2 (broken)")
	assert.Len(t, rec.Frames, 1)
	assert.Nil(t, rec.Timeline)
}

func TestRunner_CancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := NewRunner(NewAssets(t.TempDir()), nil).Run(ctx, twoStage(), &Recorder{})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestBuilder_Image(t *testing.T) {
	root := t.TempDir()
	writeAsset(t, root, "icons/wide.svg", testSVG)

	b := newBuilder(1, NewAssets(root), []string{"icons/wide.svg"})
	img, err := b.Image("wide", "icons/wide.svg", 2)
	require.NoError(t, err)
	assert.InDelta(t, 1, img.Height, 1e-9)

	_, err = b.Image("other", "icons/undeclared.svg", 2)
	assert.Error(t, err)
}

func TestSVGRenderer_WritesKeyframes(t *testing.T) {
	root := t.TempDir()
	writeAsset(t, root, "bubble.svg", testSVG)
	out := t.TempDir()
	stale := filepath.Join(out, "09-old.svg")
	require.NoError(t, os.WriteFile(stale, []byte("<svg/>"), 0o644))

	assets := NewAssets(root)
	ch := Choreography{
		Name:   "pictures",
		Assets: []string{"bubble.svg"},
		Build: func(b *Builder) ([]Stage, error) {
			img, err := b.Image("bubble", "bubble.svg", 2)
			if err != nil {
				return nil, err
			}
			return []Stage{
				{Label: "Bubble", Plays: []Play{{FadeIn(img)}}},
				{Label: "Shapes & Text", Add: []*Shape{
					Arc("arc", Origin, 1, 0, math.Pi/2, Stroked(Blue)),
					Path("wave", []Point{{-2, 0}, {-1, 1}, {0, 0}, {1, -1}}, true, Stroked(Yellow)),
					Text("label", Down, "a < b", 36, White),
				}},
			}, nil
		},
	}
	rend := MultiRenderer{
		&SVGRenderer{Dir: out, Assets: assets},
		&TimelineRenderer{Dir: out},
	}
	_, err := NewRunner(assets, nil).Run(context.Background(), ch, rend)
	require.NoError(t, err)

	_, err = os.Stat(stale)
	assert.True(t, os.IsNotExist(err), "stale keyframe should be removed")

	first, err := os.ReadFile(filepath.Join(out, "01-bubble.svg"))
	require.NoError(t, err)
	assert.Contains(t, string(first), `viewBox="0 0 1422.2 800"`)
	assert.Contains(t, string(first), "data:image/svg+xml;base64,")

	second, err := os.ReadFile(filepath.Join(out, "02-shapes-text.svg"))
	require.NoError(t, err)
	s := string(second)
	assert.Contains(t, s, " A 100 100 ")
	assert.Contains(t, s, " C ")
	assert.Contains(t, s, "a &lt; b")
	assert.True(t, strings.HasSuffix(s, "</svg>\n"))

	_, err = os.Stat(filepath.Join(out, TimelineFile))
	assert.NoError(t, err)
}

func TestToPx(t *testing.T) {
	assert.True(t, toPx(Origin).Eq(Pt(711.1, 400), 1e-9))
	assert.True(t, toPx(Pt(-FrameWidth/2, FrameHeight/2)).Eq(Origin, 1e-9))
}

func TestSVGRenderer_GroupOpacityAppliedOnce(t *testing.T) {
	st := NewState()
	require.NoError(t, st.Add(Group("pair",
		Dot("a", Pt(-1, 0), 0.1, White),
		Dot("b", Pt(1, 0), 0.1, White),
	)))
	require.NoError(t, SetOpacity(0.5, "pair").Apply(st))

	out, err := (&SVGRenderer{}).Render(Frame{Label: "faded", Shapes: st.Snapshot()})
	require.NoError(t, err)
	svg := string(out)

	assert.Contains(t, svg, `<g id="pair">`)
	assert.Equal(t, 2, strings.Count(svg, `opacity="0.5"`), "one per leaf, none on the group")
}
