package graphics

import rl "github.com/gen2brain/raylib-go/raylib"

// Window describes the preview window.
type Window struct {
	Title     string
	Width     int
	Height    int
	TargetFPS int
	// Close, if set, runs after the loop exits while the GL context still exists.
	Close func()
}

// Run opens the window and runs the main loop until it is closed. Each frame it calls
// update with the frame time in seconds, then clears the screen and calls draw.
func Run(w Window, update func(dt float32), draw func()) {
	rl.SetConfigFlags(rl.FlagWindowResizable | rl.FlagMsaa4xHint)
	rl.InitWindow(int32(w.Width), int32(w.Height), w.Title)
	defer rl.CloseWindow()
	if w.Close != nil {
		defer w.Close()
	}

	if w.TargetFPS > 0 {
		rl.SetTargetFPS(int32(w.TargetFPS))
	}

	for !rl.WindowShouldClose() {
		update(rl.GetFrameTime())

		rl.BeginDrawing()
		rl.ClearBackground(rl.NewColor(3, 3, 4, 255))
		draw()
		rl.EndDrawing()
	}
}
