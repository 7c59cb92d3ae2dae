package rig

import (
	"fmt"

	"github.com/chewxy/math32"
	"github.com/go-gl/mathgl/mgl32"

	"gridrender/internal/grid"
	"gridrender/internal/scene"
)

// Fixed look of the scene. None of these are exposed to the launcher.
const (
	armDistance = 3.5
	armHeight   = 0.8
	sunEnergy   = 50
	sunHeight   = 2

	worldStrength = 0.5

	RenderEngine   = "BLENDER_EEVEE"
	bloomThreshold = 1.0
	bloomIntensity = 0.08
	bloomRadius    = 7
)

var worldColor = mgl32.Vec4{0.01, 0.01, 0.015, 1}

// Rig records the camera rig objects.
type Rig struct {
	Pivot  scene.ObjectID
	Arm    scene.ObjectID
	Camera scene.ObjectID
	Sun    scene.ObjectID
}

// BuildCamera creates the orbiting camera: a pivot empty at the grid centroid, an arm empty
// parented to it and a camera that copies the arm's location and tracks the pivot. The pivot
// turns once about Z over [0, end frame] with linear interpolation.
func BuildCamera(b *scene.Builder, g grid.Options) (*Rig, error) {
	root := b.Root()
	r := &Rig{}
	var err error
	if r.Pivot, err = b.AddObject("CameraPivot", root, scene.KindEmpty, scene.NoMesh); err != nil {
		return nil, fmt.Errorf("rig: %w", err)
	}
	pivot := b.Object(r.Pivot)
	pivot.Location = g.Centroid()

	if r.Arm, err = b.AddObject("CameraArm", root, scene.KindEmpty, scene.NoMesh); err != nil {
		return nil, fmt.Errorf("rig: %w", err)
	}
	s := g.Spacing
	b.Object(r.Arm).Location = mgl32.Vec3{
		float32(g.SizeX) * s * armDistance,
		-float32(g.SizeY) * s * armDistance,
		float32(g.SizeZ) * s * armHeight,
	}
	if err := b.SetParent(r.Arm, r.Pivot); err != nil {
		return nil, err
	}

	if r.Camera, err = b.AddObject("Camera", root, scene.KindCamera, scene.NoMesh); err != nil {
		return nil, fmt.Errorf("rig: %w", err)
	}
	if err := b.SetCamera(r.Camera); err != nil {
		return nil, err
	}
	if err := b.AddConstraint(r.Camera, scene.CopyLocation, r.Arm); err != nil {
		return nil, err
	}
	if err := b.AddConstraint(r.Camera, scene.TrackTo, r.Pivot); err != nil {
		return nil, err
	}

	pivot.Rotation = mgl32.Vec3{}
	if err := pivot.KeyRotation(0); err != nil {
		return nil, err
	}
	pivot.Rotation = mgl32.Vec3{0, 0, 2 * math32.Pi}
	if err := pivot.KeyRotation(b.EndFrame()); err != nil {
		return nil, err
	}
	pivot.Track(scene.Rotation).Interpolation = scene.InterpLinear
	return r, nil
}

// BuildEnvironment adds the sun, the world background and the render engine with bloom.
func BuildEnvironment(b *scene.Builder, g grid.Options, r *Rig) error {
	id, err := b.AddObject("Sun", b.Root(), scene.KindLight, scene.NoMesh)
	if err != nil {
		return fmt.Errorf("rig: %w", err)
	}
	sun := b.Object(id)
	sun.Light = &scene.Light{Type: scene.LightSun, Energy: sunEnergy}
	s := g.Spacing
	sun.Location = mgl32.Vec3{
		float32(g.SizeX) * s,
		-float32(g.SizeY) * s,
		float32(g.SizeZ) * s * sunHeight,
	}
	if r != nil {
		r.Sun = id
	}

	b.World = scene.World{Color: worldColor, Strength: worldStrength}
	b.Render.Engine = RenderEngine
	b.Render.Bloom = scene.Bloom{
		Enabled:   true,
		Threshold: bloomThreshold,
		Intensity: bloomIntensity,
		Radius:    bloomRadius,
	}
	return nil
}

// ArmWorldLocation is where the camera sits at frame: the arm offset rotated by the pivot's
// sampled Z rotation, relative to the pivot.
func ArmWorldLocation(b *scene.Builder, r *Rig, frame float32) mgl32.Vec3 {
	pivot := b.Object(r.Pivot)
	arm := b.Object(r.Arm)
	angle := pivot.Rotation[2]
	if t := pivot.Track(scene.Rotation); t != nil {
		angle = t.Sample(frame)[2]
	}
	rot := mgl32.Rotate3DZ(angle)
	return pivot.Location.Add(rot.Mul3x1(arm.Location))
}
