package scene

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/rcliao/scratchpad/internal/logging"
)

// Runner executes choreographies against a renderer.
type Runner struct {
	Assets *Assets
	// Seed overrides every choreography's default seed when set.
	Seed *int64

	now func() time.Time
	log *zap.Logger
}

// NewRunner returns a runner that resolves assets under assets.Root.
func NewRunner(assets *Assets, log *zap.Logger) *Runner {
	return &Runner{Assets: assets, now: time.Now, log: logging.OrNop(log)}
}

// Run validates assets, builds the stages and plays them in order. Each stage
// ends with a frame handed to rend. Any failure aborts the run.
func (r *Runner) Run(ctx context.Context, ch Choreography, rend Renderer) (*Timeline, error) {
	if ch.Build == nil {
		return nil, fmt.Errorf("%s: no build function", ch.Name)
	}
	log := logging.OrNop(r.log).With(zap.String("choreography", ch.Name))

	seed, seeded := r.resolveSeed(ch)
	if seeded {
		log.Debug("using seed", zap.Int64("seed", seed))
	} else {
		log.Info("no seed configured, drew one from the clock", zap.Int64("seed", seed))
	}

	assets := r.Assets
	if assets == nil {
		assets = NewAssets(".")
	}
	if err := assets.Validate(ch.Assets); err != nil {
		return nil, fmt.Errorf("%s: %w", ch.Name, err)
	}

	stages, err := ch.Build(newBuilder(seed, assets, ch.Assets))
	if err != nil {
		return nil, fmt.Errorf("build %s: %w", ch.Name, err)
	}
	if len(stages) == 0 {
		return nil, fmt.Errorf("build %s: no stages", ch.Name)
	}

	tl := &Timeline{
		Choreography: ch.Name,
		Title:        ch.Title,
		Seed:         seed,
		Seeded:       seeded,
		Stages:       make([]StageMark, 0, len(stages)),
	}
	if err := rend.Begin(ctx, Meta{Name: ch.Name, Title: ch.Title, Seed: seed, Seeded: seeded}); err != nil {
		return nil, fmt.Errorf("begin render: %w", err)
	}

	state := NewState()
	clock := 0.0
	for i, stg := range stages {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		start := clock
		if err := playStage(i, stg, state, &clock, tl); err != nil {
			return nil, fmt.Errorf("stage %d (%s): %w", i+1, stg.Label, err)
		}

		frame := Frame{Index: i, Label: stg.Label, Time: clock, Shapes: state.Snapshot()}
		tl.Stages = append(tl.Stages, StageMark{
			Index:   i,
			Label:   stg.Label,
			Start:   start,
			End:     clock,
			Visible: len(frame.Shapes),
		})
		if err := rend.Frame(ctx, frame); err != nil {
			return nil, fmt.Errorf("render stage %d (%s): %w", i+1, stg.Label, err)
		}
		log.Debug("stage done",
			zap.Int("stage", i+1),
			zap.String("label", stg.Label),
			zap.Float64("end", clock),
		)
	}
	tl.Duration = clock

	if err := rend.End(ctx, tl); err != nil {
		return nil, fmt.Errorf("end render: %w", err)
	}
	log.Info("choreography rendered",
		zap.Int("stages", len(tl.Stages)),
		zap.Float64("duration", tl.Duration),
	)
	return tl, nil
}

func playStage(index int, stg Stage, state *State, clock *float64, tl *Timeline) error {
	for _, s := range stg.Add {
		if s == nil {
			return errors.New("nil shape")
		}
		if err := state.Add(s); err != nil {
			return err
		}
		tl.Events = append(tl.Events, Event{
			Stage: index, Start: *clock, End: *clock,
			Kind: EventAdd, Targets: []string{s.ID},
		})
	}

	for _, play := range stg.Plays {
		if len(play) == 0 {
			continue
		}
		for _, a := range play {
			if err := a.Apply(state); err != nil {
				return err
			}
			tl.Events = append(tl.Events, Event{
				Stage:   index,
				Start:   *clock,
				End:     *clock + a.Duration(),
				Kind:    string(a.Kind),
				Targets: append([]string(nil), a.Targets...),
				Params:  a.Params(),
				Spans:   a.Spans(*clock),
			})
		}
		*clock += play.Duration()
	}

	if stg.Wait > 0 {
		tl.Events = append(tl.Events, Event{
			Stage: index, Start: *clock, End: *clock + stg.Wait, Kind: EventWait,
		})
		*clock += stg.Wait
	}
	return nil
}

func (r *Runner) resolveSeed(ch Choreography) (int64, bool) {
	switch {
	case r.Seed != nil:
		return *r.Seed, true
	case ch.Seed != nil:
		return *ch.Seed, true
	}
	now := time.Now
	if r.now != nil {
		now = r.now
	}
	return now().UnixNano(), false
}
