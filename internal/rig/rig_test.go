package rig

import (
	"testing"

	"github.com/chewxy/math32"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"gridrender/internal/grid"
	"gridrender/internal/scene"
)

func TestCameraOrbit(t *testing.T) {
	b := scene.New()
	b.Render.FrameEnd = 30 * 2
	g := grid.DefaultOptions()
	r, err := BuildCamera(b, g)
	require.NoError(t, err)

	pivot := b.Object(r.Pivot)
	assert.Equal(t, g.Centroid(), pivot.Location)
	tr := pivot.Track(scene.Rotation)
	require.NotNil(t, tr)
	assert.Equal(t, scene.InterpLinear, tr.Interpolation)
	require.Len(t, tr.Keys, 2)
	assert.Equal(t, scene.Keyframe{Frame: 0, Value: []float32{0, 0, 0}}, tr.Keys[0])
	assert.Equal(t, scene.Keyframe{Frame: 60, Value: []float32{0, 0, 2 * math32.Pi}}, tr.Keys[1])
	assert.InDelta(t, math32.Pi, tr.Sample(30)[2], 1e-5, "constant angular velocity")
}

func TestCameraConstraints(t *testing.T) {
	b := scene.New()
	g := grid.DefaultOptions()
	r, err := BuildCamera(b, g)
	require.NoError(t, err)

	assert.Equal(t, r.Camera, b.Camera)
	assert.Equal(t, r.Pivot, b.Object(r.Arm).Parent)
	assert.Equal(t, []scene.Constraint{
		{Kind: scene.CopyLocation, Target: r.Arm},
		{Kind: scene.TrackTo, Target: r.Pivot},
	}, b.Object(r.Camera).Constraints)
	assert.Nil(t, b.Object(r.Camera).Track(scene.Location), "camera is constraint driven, not keyed")
	arm := b.Object(r.Arm).Location
	assert.InDeltaSlice(t, []float32{84, -84, 19.2}, arm[:], 1e-4)
}

func TestArmWorldLocation(t *testing.T) {
	b := scene.New()
	b.Render.FrameEnd = 100
	g := grid.DefaultOptions()
	g.SizeX, g.SizeY, g.SizeZ = 2, 2, 2
	g.Spacing = 1
	r, err := BuildCamera(b, g)
	require.NoError(t, err)

	start := ArmWorldLocation(b, r, 0)
	assert.InDeltaSlice(t, []float32{7.5, -6.5, 2.1}, start[:], 1e-4)
	half := ArmWorldLocation(b, r, 50)
	assert.InDeltaSlice(t, []float32{-6.5, 7.5, 2.1}, half[:], 1e-4)
}

func TestEnvironment(t *testing.T) {
	b := scene.New()
	g := grid.DefaultOptions()
	r := &Rig{}
	require.NoError(t, BuildEnvironment(b, g, r))
	sun := b.Object(r.Sun)
	require.NotNil(t, sun.Light)
	assert.Equal(t, scene.LightSun, sun.Light.Type)
	assert.Equal(t, float32(50), sun.Light.Energy)
	assert.Equal(t, mgl32.Vec3{24, -24, 48}, sun.Location)
	assert.Equal(t, float32(0.5), b.World.Strength)
	assert.Equal(t, RenderEngine, b.Render.Engine)
	assert.True(t, b.Render.Bloom.Enabled)
	assert.Equal(t, float32(7), b.Render.Bloom.Radius)
}
