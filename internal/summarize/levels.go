// Package summarize produces one summary of an article per fixed verbosity level.
package summarize

import (
	"errors"

	"github.com/rcliao/scratchpad/internal/config"
)

// ErrUnknownLevel is returned when a level name is not part of the configured list.
var ErrUnknownLevel = errors.New("unknown level")

// systemPrefix starts every per-level system instruction.
const systemPrefix = "You are a summarization engine. "

// Level is one named verbosity tier and the instruction that produces it.
type Level struct {
	Name        string
	Instruction string
}

// SystemPrompt is the system message sent for this level.
func (l Level) SystemPrompt() string {
	return systemPrefix + l.Instruction
}

// DefaultLevels returns the ten levels, shortest to longest.
func DefaultLevels() []Level {
	return LevelsFromConfig(config.DefaultLevels())
}

// LevelsFromConfig converts configured levels, keeping their order.
func LevelsFromConfig(in []config.Level) []Level {
	out := make([]Level, len(in))
	for i, l := range in {
		out[i] = Level{Name: l.Name, Instruction: l.Instruction}
	}
	return out
}

// LevelNames lists level names in order.
func LevelNames(levels []Level) []string {
	names := make([]string, len(levels))
	for i, l := range levels {
		names[i] = l.Name
	}
	return names
}
