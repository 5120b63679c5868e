package scene

import (
	"fmt"
	"math/rand"
)

// Play is a set of animations that run concurrently. It lasts as long as its
// longest animation.
type Play []Animation

// Together groups animations into one play.
func Together(anims ...Animation) Play { return Play(anims) }

// Duration is the longest animation in the play.
func (p Play) Duration() float64 {
	longest := 0.0
	for _, a := range p {
		if d := a.Duration(); d > longest {
			longest = d
		}
	}
	return longest
}

// Stage is one labelled step. Add shapes appear without animation, then each
// play runs in order, then the stage holds for Wait seconds.
type Stage struct {
	Label string
	Add   []*Shape
	Plays []Play
	Wait  float64
}

// Choreography is a named, ordered build of stages.
type Choreography struct {
	Name  string
	Title string
	// Assets are the relative SVG paths the choreography places. They are
	// validated before anything is built.
	Assets []string
	// Seed is the default seed. Nil means each run draws one.
	Seed  *int64
	Build func(b *Builder) ([]Stage, error)
}

// Seeded returns a pointer to n for Choreography.Seed.
func Seeded(n int64) *int64 { return &n }

// Builder gives a choreography its random source and asset access.
type Builder struct {
	rng      *rand.Rand
	seed     int64
	assets   *Assets
	declared map[string]bool
}

func newBuilder(seed int64, assets *Assets, declared []string) *Builder {
	b := &Builder{
		rng:      rand.New(rand.NewSource(seed)),
		seed:     seed,
		assets:   assets,
		declared: make(map[string]bool, len(declared)),
	}
	for _, d := range declared {
		b.declared[d] = true
	}
	return b
}

// Seed is the seed this run uses.
func (b *Builder) Seed() int64 { return b.seed }

// Rand is the run's random source.
func (b *Builder) Rand() *rand.Rand { return b.rng }

// Uniform draws from [lo, hi).
func (b *Builder) Uniform(lo, hi float64) float64 {
	return lo + b.rng.Float64()*(hi-lo)
}

// Image places a declared SVG asset at the origin, width units wide, keeping
// the asset's aspect ratio.
func (b *Builder) Image(id, asset string, width float64) (*Shape, error) {
	if !b.declared[asset] {
		return nil, fmt.Errorf("asset %s is not declared by the choreography", asset)
	}
	ratio, err := b.assets.AspectRatio(asset)
	if err != nil {
		return nil, fmt.Errorf("%w: %s (%v)", ErrMissingAsset, asset, err)
	}
	return Image(id, asset, Origin, width, width*ratio), nil
}
