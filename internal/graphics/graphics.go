package graphics

import rl "github.com/gen2brain/raylib-go/raylib"

// Window describes the window Run opens.
type Window struct {
	Width, Height int32
	Title         string
	Fullscreen    bool
	TargetFPS     int32
}

// Run starts the window and main loop. Each frame it calls update with the frame time in seconds
// (input and simulation), then clears the screen and calls draw.
// ESC is left to the terminal; close via window button.
func Run(w Window, update func(dt float32), draw func()) {
	width, height := w.Width, w.Height
	if w.Fullscreen {
		rl.SetConfigFlags(rl.FlagFullscreenMode)
		width, height = int32(rl.GetMonitorWidth(0)), int32(rl.GetMonitorHeight(0))
	}
	rl.InitWindow(width, height, w.Title)
	defer rl.CloseWindow()

	rl.SetExitKey(rl.KeyNull) // ESC is used to toggle terminal, not to quit; close via window button
	rl.SetTargetFPS(w.TargetFPS)

	for !rl.WindowShouldClose() {
		update(rl.GetFrameTime())

		rl.BeginDrawing()
		rl.ClearBackground(rl.Black)
		draw()
		rl.EndDrawing()
	}
}
