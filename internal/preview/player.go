// Package preview turns a built scene into per-frame draw lists. It has no graphics
// dependency; internal/graphics consumes the Frames it produces.
package preview

import (
	"github.com/chewxy/math32"
	"github.com/go-gl/mathgl/mgl32"

	"gridrender/internal/rig"
	"gridrender/internal/scene"
)

// Instance is one visible mesh object at a frame, in Y-up preview space.
type Instance struct {
	Object   scene.ObjectID
	Mesh     scene.MeshID
	Shape    scene.Shape
	Position mgl32.Vec3
	Rotation mgl32.Vec3
	Scale    mgl32.Vec3
	Color    [4]uint8
}

// Frame is everything needed to draw one frame.
type Frame struct {
	Number    float32
	Instances []Instance
	Eye       mgl32.Vec3
	Target    mgl32.Vec3
}

// Player advances a playhead over the scene's frame range at the render fps and loops.
type Player struct {
	Paused bool

	b     *scene.Builder
	rig   *rig.Rig
	fps   float32
	start float32
	end   float32
	frame float32
}

// NewPlayer starts at the scene's first frame. r may be nil, in which case the camera stays
// at the origin looking down -Z.
func NewPlayer(b *scene.Builder, r *rig.Rig) *Player {
	fps := float32(b.Render.FPS)
	if fps <= 0 {
		fps = 24
	}
	start := float32(b.Render.FrameStart)
	return &Player{b: b, rig: r, fps: fps, start: start, end: float32(b.EndFrame()), frame: start}
}

// Frame is the current playhead position.
func (p *Player) Frame() float32 { return p.frame }

// Range is the inclusive frame range the player loops over.
func (p *Player) Range() (start, end float32) { return p.start, p.end }

// Seek moves the playhead, wrapping into the frame range.
func (p *Player) Seek(frame float32) {
	p.frame = p.wrap(frame)
}

// Advance moves the playhead by dt seconds unless paused.
func (p *Player) Advance(dt float32) {
	if p.Paused {
		return
	}
	p.frame = p.wrap(p.frame + dt*p.fps)
}

func (p *Player) wrap(f float32) float32 {
	span := p.end - p.start + 1
	if span <= 0 {
		return p.start
	}
	f = math32.Mod(f-p.start, span)
	if f < 0 {
		f += span
	}
	return p.start + f
}

// Snapshot samples the scene at the current frame.
func (p *Player) Snapshot() Frame {
	return Sample(p.b, p.rig, p.frame)
}

// Sample builds the draw list at frame. Objects in a viewport-hidden collection, hidden
// objects and non-mesh objects are skipped.
func Sample(b *scene.Builder, r *rig.Rig, frame float32) Frame {
	f := Frame{Number: frame, Target: mgl32.Vec3{0, 0, -1}}
	for i, o := range b.Objects() {
		if o.Kind != scene.KindMesh || o.Mesh == scene.NoMesh {
			continue
		}
		if b.Collection(o.Collection).HideViewport || Hidden(o, frame) {
			continue
		}
		m := b.Mesh(o.Mesh)
		id := scene.ObjectID(i)
		f.Instances = append(f.Instances, Instance{
			Object:   id,
			Mesh:     o.Mesh,
			Shape:    m.Shape,
			Position: ToYUp(WorldLocation(b, id, frame)),
			Rotation: ToYUp(rotation(o, frame)),
			Scale:    mgl32.Vec3{o.Scale[0], o.Scale[2], o.Scale[1]},
			Color:    MeshColor(b, m),
		})
	}
	if r != nil {
		f.Eye = ToYUp(rig.ArmWorldLocation(b, r, frame))
		f.Target = ToYUp(b.Object(r.Pivot).Location)
	}
	return f
}

// Hidden reports whether o is hidden in the viewport at frame.
func Hidden(o *scene.Object, frame float32) bool {
	if t := o.Track(scene.Hidden); t != nil {
		return t.Sample(frame)[0] >= 0.5
	}
	return o.HideViewport
}

func location(o *scene.Object, frame float32) mgl32.Vec3 {
	if t := o.Track(scene.Location); t != nil {
		v := t.Sample(frame)
		return mgl32.Vec3{v[0], v[1], v[2]}
	}
	return o.Location
}

func rotation(o *scene.Object, frame float32) mgl32.Vec3 {
	if t := o.Track(scene.Rotation); t != nil {
		v := t.Sample(frame)
		return mgl32.Vec3{v[0], v[1], v[2]}
	}
	return o.Rotation
}

// WorldLocation resolves an object's animated location through its parent chain. Parents
// contribute their location and Z rotation, which is all the rig uses.
func WorldLocation(b *scene.Builder, id scene.ObjectID, frame float32) mgl32.Vec3 {
	o := b.Object(id)
	loc := location(o, frame)
	for o.Parent != scene.NoObject {
		parent := b.Object(o.Parent)
		rot := mgl32.Rotate3DZ(rotation(parent, frame)[2])
		loc = location(parent, frame).Add(rot.Mul3x1(loc))
		o = parent
	}
	return loc
}

// ToYUp converts a Z-up vector to the Y-up convention used by the preview window.
func ToYUp(v mgl32.Vec3) mgl32.Vec3 {
	return mgl32.Vec3{v[0], v[2], -v[1]}
}

// MeshColor is the RGBA the preview draws a mesh with: the first material's emission
// colour when it glows, otherwise its base colour, with the material alpha. Meshes without
// a material are grey.
func MeshColor(b *scene.Builder, m *scene.Mesh) [4]uint8 {
	if len(m.Materials) == 0 {
		return [4]uint8{128, 128, 128, 255}
	}
	mat := b.Material(m.Materials[0])
	c := mat.BaseColor
	if mat.Emission != nil {
		c = mat.Emission.Color
	}
	return [4]uint8{channel(c[0]), channel(c[1]), channel(c[2]), channel(mat.Alpha)}
}

func channel(v float32) uint8 {
	return uint8(math32.Round(mgl32.Clamp(v, 0, 1) * 255))
}
