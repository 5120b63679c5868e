package scenes

import (
	"math"

	"github.com/rcliao/scratchpad/internal/scene"
)

// SpeechToPython shows spoken words turning into a Python file that is
// uploaded into a computer.
func SpeechToPython() scene.Choreography {
	return scene.Choreography{
		Name:   "speech-to-python",
		Title:  "Minimal Speech to Python",
		Assets: []string{AssetSpeechBubble, AssetPythonIcon},
		Build:  buildSpeechToPython,
	}
}

func buildSpeechToPython(b *scene.Builder) ([]scene.Stage, error) {
	face := scene.Circle("face", scene.Pt(-3, 0), 0.7, scene.Stroked(scene.White))
	mouth := scene.Arc("mouth", face.Center.Add(scene.Pt(0.05, -0.2)), 0.25, math.Pi, math.Pi, scene.Stroked(scene.White))
	faceGroup := scene.Group("face-group", face, mouth)

	bubble, err := b.Image("bubble", AssetSpeechBubble, 2.5)
	if err != nil {
		return nil, err
	}
	bubble.NextTo(face, scene.Right, 0.5)
	speech := scene.Text("speech", bubble.Center.Add(scene.Pt(0, 0.1)), "print('Hello!')", 32, scene.White)

	python, err := b.Image("python", AssetPythonIcon, 1.5)
	if err != nil {
		return nil, err
	}
	python.MoveTo(speech.Center)

	computer := scene.Rect("computer", scene.Origin, 2.5, 1.5, scene.Stroked(scene.BlueB)).ToEdge(scene.Right, 1.5)
	screen := scene.Rect("screen", computer.Center, 2, 1, scene.Stroked(scene.White))
	check := scene.Text("check", screen.Center, "✓", 80, scene.Green)

	return []scene.Stage{
		{
			Label: "face",
			Plays: []scene.Play{{scene.FadeIn(faceGroup)}},
			Wait:  0.3,
		},
		{
			Label: "speech",
			Plays: []scene.Play{scene.Together(scene.FadeIn(bubble), scene.Write(speech))},
			Wait:  0.5,
		},
		{
			Label: "speech becomes python",
			Plays: []scene.Play{{scene.Transform("speech", python).Run(1)}},
			Wait:  1,
		},
		{
			Label: "computer",
			Plays: []scene.Play{{scene.FadeIn(scene.Group("computer-group", computer, screen))}},
			Wait:  0.3,
		},
		{
			Label: "upload",
			Plays: []scene.Play{
				scene.Together(
					scene.MoveTo("python", screen.Center).Run(1),
					scene.Scale(0.5, "python").Run(1),
					scene.FadeOut("bubble").Run(1),
				),
				{scene.FadeOut("python").Run(0.5)},
			},
			Wait: 0.5,
		},
		{
			Label: "done",
			Plays: []scene.Play{{scene.FadeIn(check).Run(0.7)}},
			Wait:  1,
		},
	}, nil
}
