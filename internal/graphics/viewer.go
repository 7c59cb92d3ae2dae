package graphics

import (
	"github.com/go-gl/mathgl/mgl32"
	rl "github.com/gen2brain/raylib-go/raylib"

	"gridrender/internal/debug"
	"gridrender/internal/preview"
)

// Viewer plays a preview.Player in a window. Space pauses, left/right step one frame.
type Viewer struct {
	Player  *preview.Player
	Overlay *debug.Debug

	registry *Registry
	camera   rl.Camera3D
}

// NewViewer returns a viewer with a 45 degree perspective camera and the frame overlay on.
func NewViewer(p *preview.Player) *Viewer {
	v := &Viewer{Player: p, Overlay: debug.New(), registry: NewRegistry()}
	v.Overlay.SetShowFPS(true)
	v.Overlay.SetShowFrame(true)
	v.camera.Up = rl.NewVector3(0, 1, 0)
	v.camera.Fovy = 45
	v.camera.Projection = rl.CameraPerspective
	return v
}

// Update handles input and advances the playhead.
func (v *Viewer) Update(dt float32) {
	if rl.IsKeyPressed(rl.KeySpace) {
		v.Player.Paused = !v.Player.Paused
	}
	if rl.IsKeyPressed(rl.KeyRight) {
		v.Player.Seek(v.Player.Frame() + 1)
	}
	if rl.IsKeyPressed(rl.KeyLeft) {
		v.Player.Seek(v.Player.Frame() - 1)
	}
	v.Player.Advance(dt)
}

// Draw renders the current frame and the overlay.
func (v *Viewer) Draw() {
	f := v.Player.Snapshot()
	v.camera.Position = vec(f.Eye)
	v.camera.Target = vec(f.Target)
	v.registry.SetView(f.Eye, f.Eye.Sub(f.Target).Normalize())

	rl.BeginMode3D(v.camera)
	// Transparent instances (casing, plates) draw after everything opaque.
	for _, inst := range f.Instances {
		if inst.Color[3] == 255 {
			v.registry.Draw(inst)
		}
	}
	for _, inst := range f.Instances {
		if inst.Color[3] < 255 {
			v.registry.Draw(inst)
		}
	}
	rl.EndMode3D()

	_, end := v.Player.Range()
	v.Overlay.Draw(f.Number, end)
}

// Close releases GPU resources. Call before the window closes.
func (v *Viewer) Close() {
	v.registry.Unload()
}

func vec(v mgl32.Vec3) rl.Vector3 {
	return rl.NewVector3(v[0], v[1], v[2])
}
