package scenes

import (
	"fmt"
	"math"

	"github.com/rcliao/scratchpad/internal/scene"
)

// MCPPuzzle assembles scattered tool, resource and prompt pieces around a
// central protocol core.
func MCPPuzzle() scene.Choreography {
	return scene.Choreography{
		Name:  "mcp-puzzle",
		Title: "The Model Context Protocol Revolution",
		Build: buildMCPPuzzle,
	}
}

type piece struct {
	id     string
	target scene.Point
	shape  *scene.Shape
}

func pieceStyle(fill scene.Color) scene.Style {
	return scene.Style{Stroke: scene.White, StrokeWidth: 2, Fill: fill, FillOpacity: 0.8}
}

func buildMCPPuzzle(b *scene.Builder) ([]scene.Stage, error) {
	title := scene.Text("title", scene.Origin, "The Model Context Protocol Revolution", 36, scene.White).
		ToEdge(scene.Up, scene.DefaultEdgeBuff)
	subtitle := func(text string, c scene.Color) *scene.Shape {
		return scene.Text("subtitle", scene.Origin, text, 24, c).NextTo(title, scene.Down, 0.5)
	}

	var tools, resources, prompts []piece
	for i := 0; i < 4; i++ {
		verts := make([]scene.Point, 5)
		for j := range verts {
			a := float64(j)*2*math.Pi/5 + b.Uniform(-0.3, 0.3)
			r := 0.4 + b.Uniform(-0.1, 0.1)
			verts[j] = scene.Pt(r*math.Cos(a), r*math.Sin(a))
		}
		id := fmt.Sprintf("tool-%d", i)
		body := scene.Polygon(id+"-piece", verts, pieceStyle(scene.Blue)).
			MoveTo(scene.Pt(b.Uniform(-5, -2), b.Uniform(-2, 2)))
		gear := scene.Star(id+"-icon", body.Center, 6, 0.15, 0.08, scene.Filled(scene.White, 1))
		tools = append(tools, piece{id, scene.Pt(-2.5, (float64(i)-1.5)*0.8), scene.Group(id, body, gear)})
	}
	for i := 0; i < 4; i++ {
		id := fmt.Sprintf("resource-%d", i)
		body := scene.RegularPolygon(id+"-piece", scene.Origin, 6, 0.4, pieceStyle(scene.Green)).
			MoveTo(scene.Pt(b.Uniform(2, 5), b.Uniform(-2, 2)))
		db := scene.Rect(id+"-icon", body.Center, 0.2, 0.15, scene.Filled(scene.White, 1))
		resources = append(resources, piece{id, scene.Pt(2.5, (float64(i)-1.5)*0.8), scene.Group(id, body, db)})
	}
	for i := 0; i < 3; i++ {
		id := fmt.Sprintf("prompt-%d", i)
		body := scene.RoundedRect(id+"-piece", scene.Origin, 0.8, 0.5, 0.1, pieceStyle(scene.Orange)).
			MoveTo(scene.Pt(b.Uniform(-1, 1), b.Uniform(-3, -1)))
		chat := scene.Circle(id+"-icon", body.Center, 0.08, scene.Filled(scene.White, 1))
		prompts = append(prompts, piece{id, scene.Pt((float64(i)-1)*1.2, -2.5), scene.Group(id, body, chat)})
	}

	all := append(append(append([]piece(nil), tools...), resources...), prompts...)
	shapes := make([]*scene.Shape, len(all))
	ids := make([]string, len(all))
	var drift, attract scene.Play
	for i, p := range all {
		p.shape.Rotate(b.Uniform(-math.Pi/4, math.Pi/4))
		shapes[i] = p.shape
		ids[i] = p.id
		drift = append(drift,
			scene.Shift(scene.Pt(b.Uniform(-0.3, 0.3), b.Uniform(-0.3, 0.3)), p.id).Run(2),
			scene.Rotate(b.Uniform(-math.Pi/8, math.Pi/8), p.id).Run(2),
		)
		attract = append(attract, scene.MoveTo(p.id, p.target).Run(2.5))
	}

	core := scene.RegularPolygon("core", scene.Origin, 6, 1.0,
		scene.Style{Stroke: scene.Yellow, StrokeWidth: 4, Fill: scene.Gold, FillOpacity: 0.9})
	coreLabel := scene.Text("core-label", core.Center, "MCP", 24, scene.Black)
	pulse := []scene.Play{{scene.DrawBorderThenFill(core).Run(1.5)}, {scene.Write(coreLabel)}}
	for n := 0; n < 3; n++ {
		pulse = append(pulse,
			scene.Play{scene.Scale(1.1, "core").Run(0.3)},
			scene.Play{scene.Scale(1/1.1, "core").Run(0.3)},
		)
	}

	var links []*scene.Shape
	for _, p := range all {
		links = append(links, scene.Line("link-"+p.id, p.target, core.Center,
			scene.Style{Stroke: scene.Yellow, StrokeWidth: 3}))
	}
	var arcs []*scene.Shape
	bridge := func(from, to []piece, angle float64, c scene.Color) {
		for _, a := range from {
			for _, z := range to {
				arc := scene.ArcBetween(fmt.Sprintf("arc-%s-%s", a.id, z.id), a.target, z.target, angle,
					scene.Style{Stroke: c, StrokeWidth: 2})
				arc.Opacity = 0.6
				arcs = append(arcs, arc)
			}
		}
	}
	bridge(tools, resources, math.Pi/4, scene.Green)
	bridge(resources, prompts, -math.Pi/4, scene.Blue)

	unified := append([]string{"core", "core-label"}, ids...)
	for _, s := range links {
		unified = append(unified, s.ID)
	}
	for _, s := range arcs {
		unified = append(unified, s.ID)
	}
	var together []scene.Play
	for n := 0; n < 2; n++ {
		together = append(together,
			scene.Play{scene.ScaleAbout(1.05, core.Center, unified...).Run(0.4)},
			scene.Play{scene.ScaleAbout(1/1.05, core.Center, unified...).Run(0.4)},
		)
	}

	particles := make([]*scene.Shape, 20)
	var burst scene.Play
	for i := range particles {
		id := fmt.Sprintf("particle-%d", i)
		particles[i] = scene.Dot(id, core.Center, 0.05, scene.Yellow)
		dir := scene.Pt(b.Uniform(-1, 1), b.Uniform(-1, 1))
		if dir.Len() == 0 {
			dir = scene.Up
		}
		dir = dir.Mul(b.Uniform(2, 4) / dir.Len())
		burst = append(burst, scene.Shift(dir, id).Run(1.5), scene.SetOpacity(0, id).Run(1.5))
	}
	final := scene.Text("final", scene.Origin, "One Protocol, Infinite Possibilities", 32, scene.Gold).
		ToEdge(scene.Down, scene.DefaultEdgeBuff)

	return []scene.Stage{
		{Label: "title", Plays: []scene.Play{{scene.Write(title)}}, Wait: 1},
		{
			Label: "scattered components",
			Plays: []scene.Play{
				{scene.Write(subtitle("Before MCP: Scattered Components", scene.Red))},
				{scene.FadeIn(shapes...).Lag(0.2)},
				drift,
			},
			Wait: 1,
		},
		{
			Label: "organizing force",
			Plays: append(append([]scene.Play{
				{scene.FadeOut("subtitle")},
				{scene.Write(subtitle("MCP: The Organizing Force", scene.Gold))},
			}, pulse...), attract),
			Wait: 1,
		},
		{
			Label: "unified platform",
			Plays: append([]scene.Play{
				{scene.FadeOut("subtitle")},
				{scene.Write(subtitle("After MCP: Unified AI Platform", scene.Green))},
				{scene.Create(links...).Lag(0.1)},
				{scene.Create(arcs...).Lag(0.05).Run(2)},
			}, together...),
		},
		{
			Label: "infinite possibilities",
			Add:   particles,
			Plays: []scene.Play{
				burst,
				{scene.Write(final)},
				{scene.ScaleAbout(0.8, core.Center, unified...).Run(1.5)},
			},
			Wait: 3,
		},
	}, nil
}
