package scene

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newObject(t *testing.T) *Object {
	t.Helper()
	b := New()
	id, err := b.AddObject("Obj", b.Root(), KindEmpty, NoMesh)
	require.NoError(t, err)
	return b.Object(id)
}

func TestInsertKeyframeChannels(t *testing.T) {
	o := newObject(t)
	assert.Error(t, o.InsertKeyframe(Location, 0, 1, 2))
	assert.Error(t, o.InsertKeyframe(Hidden, 0, 1, 0))
	require.NoError(t, o.InsertKeyframe(Location, 0, 1, 2, 3))
	require.Len(t, o.Tracks(), 1)
	assert.Equal(t, []float32{1, 2, 3}, o.Track(Location).Keys[0].Value)
}

func TestKeysKeepInsertionOrder(t *testing.T) {
	o := newObject(t)
	o.Location[0] = 1
	require.NoError(t, o.KeyLocation(10))
	require.NoError(t, o.KeyLocation(10))
	require.NoError(t, o.KeyLocation(5))
	assert.Equal(t, []int{10, 10, 5}, o.Track(Location).Frames())
}

func TestKeyHiddenSetsFlags(t *testing.T) {
	o := newObject(t)
	require.NoError(t, o.KeyHidden(4, true))
	assert.True(t, o.HideRender)
	assert.True(t, o.HideViewport)
	require.NoError(t, o.KeyHidden(5, false))
	assert.False(t, o.HideRender)

	tr := o.Track(Hidden)
	assert.Equal(t, InterpConstant, tr.Interpolation)
	assert.Equal(t, []float32{1}, tr.Sample(4.5))
	assert.Equal(t, []float32{0}, tr.Sample(5))
}

func TestSampleLinear(t *testing.T) {
	tr := &Track{Property: Rotation, Interpolation: InterpLinear}
	tr.Keys = []Keyframe{{0, []float32{0, 0, 0}}, {60, []float32{0, 0, 6}}}
	assert.InDelta(t, 3, tr.Sample(30)[2], 1e-5)
	assert.InDelta(t, 1, tr.Sample(10)[2], 1e-5)
	assert.Equal(t, float32(0), tr.Sample(-5)[2])
	assert.Equal(t, float32(6), tr.Sample(100)[2])
}

func TestSampleDefaultEases(t *testing.T) {
	tr := &Track{Property: Location}
	tr.Keys = []Keyframe{{0, []float32{0, 0, 0}}, {10, []float32{10, 0, 0}}}
	assert.InDelta(t, 5, tr.Sample(5)[0], 1e-5)
	assert.Less(t, tr.Sample(1)[0], float32(1))
}

func TestSampleSharedFrame(t *testing.T) {
	tr := &Track{Property: Location}
	tr.Keys = []Keyframe{
		{0, []float32{0, 0, 0}},
		{0, []float32{0, 0, 0}},
		{20, []float32{0, 4, 0}},
	}
	assert.InDelta(t, 2, tr.Sample(10)[1], 1e-5)
}
