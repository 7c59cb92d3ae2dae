package materials

import (
	"fmt"

	"github.com/go-gl/mathgl/mgl32"

	"gridrender/internal/scene"
)

// Option adjusts a material definition before it is registered.
type Option func(*def)

type def struct {
	alpha            float32
	emission         mgl32.Vec4
	emissionStrength float32
	metallic         float32
	roughness        float32
}

// WithAlpha sets opacity. Values below 1 switch the material to alpha blending with no shadows.
func WithAlpha(a float32) Option {
	return func(d *def) { d.alpha = a }
}

// WithEmission sets the emissive colour and strength. An all-black colour leaves emission unset.
func WithEmission(color mgl32.Vec4, strength float32) Option {
	return func(d *def) {
		d.emission = color
		d.emissionStrength = strength
	}
}

// WithMetallic sets the metallic factor.
func WithMetallic(m float32) Option {
	return func(d *def) { d.metallic = m }
}

// WithRoughness sets the roughness factor.
func WithRoughness(r float32) Option {
	return func(d *def) { d.roughness = r }
}

// Build returns the material definition for name without registering it.
// Defaults: alpha 1, emission (0,0,0) at strength 1, metallic 0, roughness 0.5.
func Build(name string, base mgl32.Vec4, opts ...Option) scene.Material {
	d := def{alpha: 1, emission: mgl32.Vec4{0, 0, 0, 1}, emissionStrength: 1, roughness: 0.5}
	for _, o := range opts {
		o(&d)
	}
	m := scene.Material{
		Name:      name,
		BaseColor: base,
		Alpha:     d.alpha,
		Metallic:  d.metallic,
		Roughness: d.roughness,
	}
	if d.emission[0]+d.emission[1]+d.emission[2] > 0 {
		m.Emission = &scene.Emission{Color: d.emission, Strength: d.emissionStrength}
	}
	if d.alpha < 1 {
		m.Blend = scene.BlendAlpha
		m.Shadow = scene.ShadowNone
	}
	return m
}

// Create builds a material and registers it with b. Names must be unique per run.
func Create(b *scene.Builder, name string, base mgl32.Vec4, opts ...Option) (scene.MaterialID, error) {
	id, err := b.AddMaterial(Build(name, base, opts...))
	if err != nil {
		return 0, fmt.Errorf("materials: %w", err)
	}
	return id, nil
}

// PacketColors are the emissive colours packets are drawn from.
var PacketColors = []mgl32.Vec4{
	{1, 0.1, 0.1, 1},
	{0.1, 1, 0.1, 1},
	{0.1, 0.5, 1, 1},
	{1, 1, 0.1, 1},
	{1, 0.1, 1, 1},
}

// PacketEmissionStrength makes packets bright enough to bloom.
const PacketEmissionStrength = 50

// Palette is the set of materials the processor grid is built from.
type Palette struct {
	Core         scene.MaterialID
	Router       scene.MaterialID
	Chiplet      scene.MaterialID
	CoolingPlate scene.MaterialID
	Packets      []scene.MaterialID
}

// NewPalette registers every grid material with b.
func NewPalette(b *scene.Builder) (*Palette, error) {
	p := &Palette{}
	var err error
	if p.Core, err = Create(b, "Core_Mat", mgl32.Vec4{0.2, 0.5, 0.8, 1}); err != nil {
		return nil, err
	}
	if p.Router, err = Create(b, "Router_Mat", mgl32.Vec4{0.8, 0.8, 0.1, 1}); err != nil {
		return nil, err
	}
	if p.Chiplet, err = Create(b, "Chiplet_Casing", mgl32.Vec4{0.7, 0.8, 1, 1}, WithAlpha(0.7)); err != nil {
		return nil, err
	}
	if p.CoolingPlate, err = Create(b, "Cooling_Plate", mgl32.Vec4{0.4, 0.9, 1, 1}, WithAlpha(0.05)); err != nil {
		return nil, err
	}
	for i, c := range PacketColors {
		id, err := Create(b, fmt.Sprintf("Packet_Mat_%d", i), mgl32.Vec4{1, 1, 1, 1}, WithEmission(c, PacketEmissionStrength))
		if err != nil {
			return nil, err
		}
		p.Packets = append(p.Packets, id)
	}
	return p, nil
}
