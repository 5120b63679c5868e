package scenes

import (
	"fmt"
	"math"
	"strings"

	"github.com/rcliao/scratchpad/internal/scene"
)

// Network sizes and edge probabilities.
const (
	tangledNodes   = 18
	tangledEdgeP   = 0.25
	growthNodes    = 8
	growthEdgeP    = 0.2
	nodeRadius     = 0.18
	edgeWidth      = 2
	typedPrompt    = "Download NASA images in a 4x4 grid"
	typingStepTime = 0.04
)

// ComplexityToSimplicity contrasts a tangled, growing codebase with a single
// prompt that produces a working script.
func ComplexityToSimplicity() scene.Choreography {
	return scene.Choreography{
		Name:   "complexity-to-simplicity",
		Title:  "Coding Complexity to Simplicity",
		Assets: []string{AssetPythonIcon},
		Seed:   scene.Seeded(42),
		Build:  buildComplexityToSimplicity,
	}
}

func nodeColor(i int) scene.Color {
	if i%2 == 0 {
		return scene.Red
	}
	return scene.Yellow
}

func edgeStyle(c scene.Color) scene.Style {
	return scene.Style{Stroke: c, StrokeWidth: edgeWidth}
}

func buildComplexityToSimplicity(b *scene.Builder) ([]scene.Stage, error) {
	rng := b.Rand()

	// Tangled network.
	nodes := make([]*scene.Shape, tangledNodes)
	for i := range nodes {
		p := scene.Pt(b.Uniform(-4, 4), b.Uniform(-4, 4))
		nodes[i] = scene.Dot(fmt.Sprintf("node-%d", i), p, nodeRadius, nodeColor(i))
	}
	var edges []*scene.Shape
	for i := 0; i < tangledNodes; i++ {
		for j := i + 1; j < tangledNodes; j++ {
			if rng.Float64() < tangledEdgeP {
				edges = append(edges, scene.Line(fmt.Sprintf("edge-%d-%d", i, j),
					nodes[i].Center, nodes[j].Center, edgeStyle(nodeColor(i))))
			}
		}
	}
	network := scene.Group("network", scene.Group("edges", edges...), scene.Group("nodes", nodes...))

	timer := scene.Counter("timer", scene.Origin, 0, 48, scene.White).ToEdge(scene.Up.Add(scene.Right), scene.DefaultEdgeBuff)
	timerLabel := scene.Text("timer-label", scene.Origin, "hours wasted", 28, scene.White).NextTo(timer, scene.Down, 0.1)

	var slow, fast []scene.Play
	for v := 0; v < 7; v++ {
		slow = append(slow, scene.Play{scene.SetValue("timer", float64(v)).Run(0.3)})
	}
	for v := 7; v < 24; v += 2 {
		fast = append(fast, scene.Play{scene.SetValue("timer", float64(v)).Run(0.15)})
	}

	// Growth: each new node draws its position, then its edges back into the
	// original network.
	var newNodes, newEdges []*scene.Shape
	for i := tangledNodes; i < tangledNodes+growthNodes; i++ {
		p := scene.Pt(b.Uniform(-5, 5), b.Uniform(-5, 5))
		node := scene.Dot(fmt.Sprintf("node-%d", i), p, nodeRadius, nodeColor(i))
		newNodes = append(newNodes, node)
		for j := range nodes {
			if rng.Float64() < growthEdgeP {
				newEdges = append(newEdges, scene.Line(fmt.Sprintf("edge-%d-%d", i, j),
					node.Center, nodes[j].Center, edgeStyle(nodeColor(i))))
			}
		}
	}

	textbox := scene.RoundedRect("textbox", scene.Origin, 5.5, 0.8, 0.2, scene.Stroked(scene.Blue)).ToEdge(scene.Down, 1)
	prompt := scene.Text("prompt", textbox.Center, "", 32, scene.White)
	typing := []scene.Play{{scene.FadeIn(textbox)}}
	runes := []rune(typedPrompt)
	for i := 1; i <= len(runes); i++ {
		next := scene.Text("prompt", textbox.Center, string(runes[:i]), 32, scene.White)
		typing = append(typing, scene.Play{scene.Transform("prompt", next).Run(typingStepTime)})
	}

	golden := scene.Path("golden", []scene.Point{{X: -4, Y: 0}, {X: -2, Y: 1}, {X: 0, Y: 0}, {X: 2, Y: -1}, {X: 4, Y: 0}},
		true, scene.Style{Stroke: scene.Orange, StrokeWidth: 10})

	pyFile, err := b.Image("python", AssetPythonIcon, 2.5)
	if err != nil {
		return nil, err
	}
	pyFile.MoveTo(golden.Center)

	var deps []scene.Play
	for i, dep := range []string{"requests", "Pillow", "manim"} {
		id := "dep-" + strings.ToLower(dep)
		piece := scene.Square(id+"-piece", scene.Origin, 0.6, scene.Filled(scene.Blue, 0.7)).
			NextTo(pyFile, scene.Down, 0.2+float64(i)*0.1)
		label := scene.Text(id+"-label", piece.Center, dep, 22, scene.White)
		deps = append(deps,
			scene.Play{scene.FadeIn(scene.Group(id, piece, label)).Run(0.3)},
			scene.Play{scene.Shift(scene.Up.Mul(0.7), id).Run(0.2)},
		)
	}

	var wavePts []scene.Point
	for x := -1.2; x <= 1.2+1e-9; x += 0.1 {
		wavePts = append(wavePts, scene.Pt(x, 0.3*math.Sin(2*x)))
	}
	wave := scene.Path("wave", wavePts, true, scene.Stroked(scene.BlueB)).MoveTo(pyFile.Center)

	var tiles []*scene.Shape
	for i := 0; i < 4; i++ {
		for j := 0; j < 4; j++ {
			at := pyFile.Center.Add(scene.Pt(float64(i)-1.5, float64(j)-1.5).Mul(1.1))
			tiles = append(tiles, scene.Square(fmt.Sprintf("tile-%d-%d", i, j), at, 0.7, scene.Filled(scene.White, 1)))
		}
	}

	seconds := []scene.Play{
		{scene.SetValue("timer", 0).Run(0.2)},
		{scene.Transform("timer-label",
			scene.Text("timer-label", scene.Origin, "seconds", 28, scene.White).NextTo(timer, scene.Down, 0.1)).Run(0.3)},
	}
	for v := 0; v < 5; v++ {
		seconds = append(seconds, scene.Play{scene.SetValue("timer", float64(v)).Run(0.12)})
	}

	dot := scene.Dot("dot", scene.Pt(-5, 3), 0.12, scene.Grey)
	caption := scene.Text("caption", scene.Origin, "From complexity to simplicity", 38, scene.BlueB).
		ToEdge(scene.Down, scene.DefaultEdgeBuff)

	return []scene.Stage{
		{Label: "tangled network", Plays: []scene.Play{{scene.FadeIn(network)}}, Wait: 0.5},
		{Label: "hours wasted", Add: []*scene.Shape{timer, timerLabel}, Plays: slow, Wait: 0.3},
		{Label: "hours pile up", Plays: fast, Wait: 0.2},
		{
			Label: "network grows",
			Plays: []scene.Play{scene.Together(
				scene.FadeIn(scene.Group("growth-nodes", newNodes...)).Run(1),
				scene.FadeIn(scene.Group("growth-edges", newEdges...)).Run(1),
			)},
			Wait: 0.5,
		},
		{Label: "prompt", Add: []*scene.Shape{prompt}, Plays: typing, Wait: 0.5},
		{
			Label: "golden pathway",
			Plays: []scene.Play{scene.Together(
				scene.FadeOut("network", "growth-nodes", "growth-edges").Run(1.2),
				scene.Create(golden).Run(1.2),
			)},
			Wait: 0.3,
		},
		{Label: "python file", Plays: []scene.Play{{scene.Transform("golden", pyFile).Run(1)}}, Wait: 0.3},
		{Label: "dependencies", Plays: deps, Wait: 0.3},
		{Label: "script runs", Plays: []scene.Play{{scene.Create(wave).Run(0.7)}}, Wait: 0.2},
		{Label: "script done", Plays: []scene.Play{{scene.FadeOut("wave").Run(0.3)}}},
		{Label: "image grid", Plays: []scene.Play{{scene.FadeIn(tiles...).Lag(0.08).Run(1.2)}}, Wait: 0.5},
		{Label: "seconds", Plays: seconds, Wait: 0.3},
		{
			Label: "shrink to dot",
			Plays: []scene.Play{{scene.FadeIn(dot).Run(0.2)}, {scene.Scale(0.1, "dot").Run(0.5)}},
			Wait:  0.5,
		},
		{Label: "simplicity", Plays: []scene.Play{{scene.Write(caption).Run(1)}}, Wait: 1},
	}, nil
}
