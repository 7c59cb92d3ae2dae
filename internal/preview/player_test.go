package preview

import (
	"testing"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"gridrender/internal/generate"
	"gridrender/internal/rig"
	"gridrender/internal/scene"
)

func generated(t *testing.T) *generate.Result {
	t.Helper()
	o := generate.DefaultOptions()
	o.Grid.SizeX, o.Grid.SizeY, o.Grid.SizeZ = 2, 2, 2
	o.Packets.Count = 2
	o.FPS, o.Duration = 30, 2
	o.Seed = 5
	res, err := generate.Run(scene.New(), o, nil)
	require.NoError(t, err)
	return res
}

func TestPlayerLoops(t *testing.T) {
	res := generated(t)
	p := NewPlayer(res.Builder, res.Rig)
	start, end := p.Range()
	assert.Equal(t, float32(0), start)
	assert.Equal(t, float32(60), end)

	p.Advance(1)
	assert.InDelta(t, 30, p.Frame(), 1e-4)
	p.Advance(1.5)
	assert.InDelta(t, 14, p.Frame(), 1e-4, "75 wraps over the 61 frame range")

	p.Paused = true
	p.Advance(1)
	assert.InDelta(t, 14, p.Frame(), 1e-4)

	p.Seek(-1)
	assert.InDelta(t, 60, p.Frame(), 1e-4)
}

func TestSampleSkipsHiddenObjects(t *testing.T) {
	res := generated(t)
	at0 := Sample(res.Builder, res.Rig, 0)
	// 8 cores, 8 routers, one chiplet, 3 plates and both packets; base models are hidden.
	assert.Len(t, at0.Instances, 22)

	at60 := Sample(res.Builder, res.Rig, 60)
	assert.Len(t, at60.Instances, 20, "packets finish their trip well before the last frame")

	for _, inst := range at0.Instances {
		name := res.Builder.Object(inst.Object).Name
		assert.NotContains(t, name, "Base_")
	}
}

func TestSampleCamera(t *testing.T) {
	res := generated(t)
	f := Sample(res.Builder, res.Rig, 15)
	want := rig.ArmWorldLocation(res.Builder, res.Rig, 15)
	assert.InDeltaSlice(t, []float32{want[0], want[2], -want[1]}, f.Eye[:], 1e-4)
	assert.Equal(t, ToYUp(res.Builder.Object(res.Rig.Pivot).Location), f.Target)

	arm := WorldLocation(res.Builder, res.Rig.Arm, 15)
	assert.InDeltaSlice(t, want[:], arm[:], 1e-4)
}

func TestSamplePacketFollowsTrack(t *testing.T) {
	res := generated(t)
	id := res.Traffic.Packets[0]
	route := res.Traffic.Routes[0]
	f := Sample(res.Builder, res.Rig, float32(route.StartFrame))
	var got *Instance
	for i := range f.Instances {
		if f.Instances[i].Object == id {
			got = &f.Instances[i]
		}
	}
	require.NotNil(t, got)
	want := ToYUp(generate.DefaultOptions().Grid.Position(route.Start))
	assert.InDeltaSlice(t, want[:], got.Position[:], 1e-4)
	assert.Equal(t, uint8(255), got.Color[3])
}

func TestMeshColor(t *testing.T) {
	res := generated(t)
	plate := res.Builder.Mesh(res.Layout.PlateMesh)
	c := MeshColor(res.Builder, plate)
	assert.Equal(t, uint8(102), c[0])
	assert.Equal(t, uint8(255), c[2])
	assert.Equal(t, uint8(13), c[3], "plates are nearly transparent")

	b := scene.New()
	m, err := b.NewMesh("Bare", scene.Shape{Kind: scene.ShapeCube, Size: 1})
	require.NoError(t, err)
	assert.Equal(t, [4]uint8{128, 128, 128, 255}, MeshColor(b, b.Mesh(m)))
}

func TestToYUp(t *testing.T) {
	assert.Equal(t, mgl32.Vec3{1, 3, -2}, ToYUp(mgl32.Vec3{1, 2, 3}))
}
