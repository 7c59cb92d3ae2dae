package generate

import (
	"testing"

	"github.com/chewxy/math32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"gridrender/internal/logger"
	"gridrender/internal/packets"
	"gridrender/internal/scene"
)

func smallOptions() Options {
	o := DefaultOptions()
	o.Grid.SizeX, o.Grid.SizeY, o.Grid.SizeZ = 3, 3, 3
	o.Packets.Count = 5
	o.Seed = 11
	return o
}

func TestTotalFrames(t *testing.T) {
	for _, c := range []struct{ fps, dur int }{{60, 60}, {30, 2}, {24, 1}, {1, 1}} {
		o := Options{FPS: c.fps, Duration: c.dur}
		assert.Equal(t, c.fps*c.dur, o.TotalFrames())
	}
}

func TestRunEndToEnd(t *testing.T) {
	o := smallOptions()
	o.FPS, o.Duration = 30, 2
	log := logger.Discard()
	b := scene.New()
	res, err := Run(b, o, log.Slog())
	require.NoError(t, err)

	assert.Equal(t, 60, res.EndFrame)
	assert.Equal(t, 0, b.Render.FrameStart)
	assert.Equal(t, 60, b.Render.FrameEnd)

	tr := b.Object(res.Rig.Pivot).Track(scene.Rotation)
	require.NotNil(t, tr)
	assert.Equal(t, []int{0, 60}, tr.Frames())
	assert.Equal(t, float32(0), tr.Keys[0].Value[2])
	assert.Equal(t, 2*math32.Pi, tr.Keys[1].Value[2])
	assert.Equal(t, scene.InterpLinear, tr.Interpolation)

	assert.Equal(t, 27, b.Count("Core_"))
	assert.Equal(t, 27, b.Count("Router_"))
	assert.Equal(t, 6, b.Count("Plate_"))
	assert.Equal(t, 5, b.Count("Packet_"))
	assert.Equal(t, res.Rig.Camera, b.Camera)
	assert.NotEmpty(t, log.Lines())

	for _, r := range res.Traffic.Routes {
		assert.Equal(t, 0, r.StartFrame, "60 frames leaves no room before the 500 frame lead-out")
	}
}

func TestRunTimelineSpansWholeAnimation(t *testing.T) {
	o := smallOptions()
	b := scene.New()
	res, err := Run(b, o, nil)
	require.NoError(t, err)
	assert.Equal(t, 3600, res.EndFrame)
	for _, r := range res.Traffic.Routes {
		assert.LessOrEqual(t, r.StartFrame, 3600-o.Packets.LeadOut)
	}
}

func TestRunIsReproducibleWithSeed(t *testing.T) {
	o := smallOptions()
	a, err := Run(scene.New(), o, nil)
	require.NoError(t, err)
	b, err := Run(scene.New(), o, nil)
	require.NoError(t, err)
	assert.Equal(t, a.Traffic.Routes, b.Traffic.Routes)
	assert.Equal(t, int64(11), a.Seed)
}

func TestRunResetsPreviousState(t *testing.T) {
	o := smallOptions()
	b := scene.New()
	_, err := Run(b, o, nil)
	require.NoError(t, err)
	n := len(b.Objects())
	_, err = Run(b, o, nil)
	require.NoError(t, err, "rerunning on the same builder must not collide on names")
	assert.Len(t, b.Objects(), n)
}

func TestRunRejects(t *testing.T) {
	o := smallOptions()
	o.FPS = 0
	_, err := Run(scene.New(), o, nil)
	assert.Error(t, err)

	o = smallOptions()
	o.Grid.SizeX, o.Grid.SizeY, o.Grid.SizeZ = 1, 1, 1
	_, err = Run(scene.New(), o, nil)
	assert.Error(t, err)

	o = smallOptions()
	o.Packets = packets.Options{Count: 1, TravelTime: 10, LeadOut: 500, Radius: 0}
	_, err = Run(scene.New(), o, nil)
	assert.Error(t, err, "invalid packet primitive aborts generation")
}
