// Package scenes holds the built-in choreographies.
package scenes

import (
	"errors"
	"fmt"

	"github.com/rcliao/scratchpad/internal/scene"
)

// Asset paths relative to the configured asset root.
const (
	AssetSpeechBubble = "speech_bubble.svg"
	AssetPythonIcon   = "python_file_icon.svg"
)

// ErrUnknown is returned by Get for a name that is not registered.
var ErrUnknown = errors.New("unknown choreography")

// All returns every built-in choreography in display order.
func All() []scene.Choreography {
	return []scene.Choreography{
		SpeechToPython(),
		ComplexityToSimplicity(),
		MCPPuzzle(),
	}
}

// Get looks a choreography up by name.
func Get(name string) (scene.Choreography, error) {
	for _, ch := range All() {
		if ch.Name == name {
			return ch, nil
		}
	}
	return scene.Choreography{}, fmt.Errorf("%w: %s", ErrUnknown, name)
}

// Names lists the registered choreography names.
func Names() []string {
	all := All()
	names := make([]string, len(all))
	for i, ch := range all {
		names[i] = ch.Name
	}
	return names
}
