package materials

import (
	"testing"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"gridrender/internal/scene"
)

func TestBuildDefaults(t *testing.T) {
	m := Build("Core_Mat", mgl32.Vec4{0.2, 0.5, 0.8, 1})
	assert.Equal(t, float32(1), m.Alpha)
	assert.Equal(t, float32(0), m.Metallic)
	assert.Equal(t, float32(0.5), m.Roughness)
	assert.Nil(t, m.Emission, "black emission stays at the host default")
	assert.Equal(t, scene.BlendOpaque, m.Blend)
	assert.Equal(t, scene.ShadowOpaque, m.Shadow)
}

func TestBuildTranslucent(t *testing.T) {
	m := Build("Chiplet_Casing", mgl32.Vec4{0.7, 0.8, 1, 1}, WithAlpha(0.7))
	assert.Equal(t, scene.BlendAlpha, m.Blend)
	assert.Equal(t, scene.ShadowNone, m.Shadow)
}

func TestBuildEmission(t *testing.T) {
	m := Build("Glow", mgl32.Vec4{1, 1, 1, 1}, WithEmission(mgl32.Vec4{0.1, 0, 0, 1}, 50), WithMetallic(0.3), WithRoughness(0.1))
	require.NotNil(t, m.Emission)
	assert.Equal(t, float32(50), m.Emission.Strength)
	assert.Equal(t, float32(0.3), m.Metallic)
	assert.Equal(t, float32(0.1), m.Roughness)

	m = Build("Dark", mgl32.Vec4{1, 1, 1, 1}, WithEmission(mgl32.Vec4{0, 0, 0, 1}, 50))
	assert.Nil(t, m.Emission)
}

func TestCreateUniqueNames(t *testing.T) {
	b := scene.New()
	_, err := Create(b, "Mat", mgl32.Vec4{1, 1, 1, 1})
	require.NoError(t, err)
	_, err = Create(b, "Mat", mgl32.Vec4{1, 1, 1, 1})
	assert.ErrorIs(t, err, scene.ErrDuplicateName)
}

func TestNewPalette(t *testing.T) {
	b := scene.New()
	p, err := NewPalette(b)
	require.NoError(t, err)
	assert.Len(t, p.Packets, len(PacketColors))
	assert.Len(t, b.Materials(), 4+len(PacketColors))
	assert.Equal(t, "Cooling_Plate", b.Material(p.CoolingPlate).Name)
	assert.Equal(t, float32(0.05), b.Material(p.CoolingPlate).Alpha)
	assert.Equal(t, "Packet_Mat_4", b.Material(p.Packets[4]).Name)
	assert.NotNil(t, b.Material(p.Packets[0]).Emission)

	_, err = NewPalette(b)
	assert.ErrorIs(t, err, scene.ErrDuplicateName)
}
