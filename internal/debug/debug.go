package debug

import (
	"fmt"

	rl "github.com/gen2brain/raylib-go/raylib"
)

const (
	fontSize   = 20
	padding    = 12
	lineHeight = fontSize + 4
	// updateInterval: only refresh the FPS text every N draws to reduce allocations.
	updateInterval = 30
)

// Debug draws the preview overlays: window FPS and the scene frame counter, top-right.
// All overlays are off by default.
type Debug struct {
	ShowFPS   bool
	ShowFrame bool

	draws       uint32
	lastFPSText string
}

// New returns a Debug with all overlays hidden.
func New() *Debug {
	return &Debug{}
}

// SetShowFPS sets whether the FPS counter is drawn (green).
func (d *Debug) SetShowFPS(show bool) {
	d.ShowFPS = show
}

// SetShowFrame sets whether the current scene frame is drawn under the FPS counter.
func (d *Debug) SetShowFrame(show bool) {
	d.ShowFrame = show
}

// FrameText is the frame counter label, e.g. "Frame 12 / 3600".
func FrameText(frame, end float32) string {
	return fmt.Sprintf("Frame %d / %d", int(frame), int(end))
}

// Draw renders the enabled overlays. Call after EndMode3D.
func (d *Debug) Draw(frame, end float32) {
	d.draws++
	screenW := int32(rl.GetScreenWidth())
	y := int32(padding)

	if d.ShowFPS {
		if d.lastFPSText == "" || d.draws%updateInterval == 0 {
			d.lastFPSText = fmt.Sprintf("FPS: %d", rl.GetFPS())
		}
		drawRight(d.lastFPSText, screenW, y, rl.Green)
		y += lineHeight
	}
	if d.ShowFrame {
		drawRight(FrameText(frame, end), screenW, y, rl.RayWhite)
	}
}

func drawRight(text string, screenW, y int32, c rl.Color) {
	w := rl.MeasureText(text, fontSize)
	rl.DrawText(text, screenW-w-padding, y, fontSize, c)
}
