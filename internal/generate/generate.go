package generate

import (
	"fmt"
	"log/slog"
	"math/rand"
	"time"

	"gridrender/internal/grid"
	"gridrender/internal/materials"
	"gridrender/internal/packets"
	"gridrender/internal/rig"
	"gridrender/internal/scene"
)

// Options describes one generation run. FPS and Duration fix the timeline the scene is
// generated against (end frame = FPS * Duration); Seed == 0 uses a time-based seed.
type Options struct {
	Grid     grid.Options    `yaml:"grid" mapstructure:"grid"`
	Packets  packets.Options `yaml:"packets" mapstructure:"packets"`
	FPS      int             `yaml:"fps" mapstructure:"fps"`
	Duration int             `yaml:"duration" mapstructure:"duration"`
	Width    int             `yaml:"width" mapstructure:"width"`
	Height   int             `yaml:"height" mapstructure:"height"`
	Seed     int64           `yaml:"seed" mapstructure:"seed"`
}

// DefaultOptions is the 16^3 grid with 30 packets over 60 s at 60 fps in 4K.
func DefaultOptions() Options {
	return Options{
		Grid:     grid.DefaultOptions(),
		Packets:  packets.DefaultOptions(),
		FPS:      60,
		Duration: 60,
		Width:    3840,
		Height:   2160,
	}
}

// TotalFrames is FPS * Duration.
func (o Options) TotalFrames() int {
	return o.FPS * o.Duration
}

// Result is everything a generation pass produced.
type Result struct {
	Builder  *scene.Builder
	Palette  *materials.Palette
	Layout   *grid.Layout
	Traffic  *packets.Traffic
	Rig      *rig.Rig
	Seed     int64
	EndFrame int
}

// Run resets b and builds the whole scene top to bottom. It stops at the first error; the
// builder is then incomplete and must not be exported.
func Run(b *scene.Builder, opts Options, log *slog.Logger) (*Result, error) {
	if opts.FPS <= 0 || opts.Duration <= 0 {
		return nil, fmt.Errorf("generate: fps and duration must be positive, got %d and %d", opts.FPS, opts.Duration)
	}
	if log == nil {
		log = slog.New(slog.DiscardHandler)
	}
	seed := opts.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	rng := rand.New(rand.NewSource(seed))

	log.Info("starting scene generation", "seed", seed)
	b.Reset()
	b.Render.FPS = opts.FPS
	b.Render.FrameStart = 0
	b.Render.FrameEnd = opts.TotalFrames()
	if opts.Width > 0 && opts.Height > 0 {
		b.Render.ResolutionX = opts.Width
		b.Render.ResolutionY = opts.Height
	}
	res := &Result{Builder: b, Seed: seed, EndFrame: b.EndFrame()}

	pal, err := materials.NewPalette(b)
	if err != nil {
		return nil, err
	}
	res.Palette = pal

	log.Info("creating base models, core grid, chiplet casing and cooling grid",
		"cells", opts.Grid.Cells())
	if res.Layout, err = grid.Build(b, opts.Grid, pal); err != nil {
		return nil, err
	}

	log.Info("generating packet animations", "packets", opts.Packets.Count)
	if res.Traffic, err = packets.Build(b, rng, opts.Grid, opts.Packets, pal); err != nil {
		return nil, err
	}

	log.Info("setting up orbiting camera")
	if res.Rig, err = rig.BuildCamera(b, opts.Grid); err != nil {
		return nil, err
	}

	log.Info("setting up lighting and render settings")
	if err := rig.BuildEnvironment(b, opts.Grid, res.Rig); err != nil {
		return nil, err
	}
	log.Info("scene generation finished", "objects", len(b.Objects()), "end_frame", res.EndFrame)
	return res, nil
}
