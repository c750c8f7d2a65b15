package graphics

import rl "github.com/gen2brain/raylib-go/raylib"

// Window describes the window Run opens.
type Window struct {
	Title      string
	Width      int
	Height     int
	Fullscreen bool
	TargetFPS  int
	MSAA       bool
}

// Background is the clear color behind the scene.
var Background = rl.NewColor(18, 22, 32, 255)

// Hooks are the callbacks Run drives. Init and Close may be nil.
type Hooks struct {
	// Init runs once after the window/OpenGL context exists.
	Init func()
	// Update gets the frame time in seconds; returning false ends the loop.
	Update func(dt float32) bool
	Draw   func()
	// Close runs after the loop while the context still exists, so GPU resources can
	// be freed there.
	Close func()
}

// Run opens the window and runs the main loop until the window is closed or Update
// returns false. Each frame it calls Update, then clears the screen and calls Draw.
// ESC is left to the caller (it closes the inspector), so the exit key is disabled.
func Run(w Window, h Hooks) {
	flags := uint32(rl.FlagWindowResizable)
	if w.MSAA {
		flags |= rl.FlagMsaa4xHint
	}
	if w.Fullscreen {
		flags |= rl.FlagFullscreenMode
	}
	rl.SetConfigFlags(flags)

	width, height := int32(w.Width), int32(w.Height)
	if w.Fullscreen {
		width, height = int32(rl.GetMonitorWidth(0)), int32(rl.GetMonitorHeight(0))
	}
	rl.InitWindow(width, height, w.Title)
	defer rl.CloseWindow()

	rl.SetExitKey(rl.KeyNull)
	if w.TargetFPS > 0 {
		rl.SetTargetFPS(int32(w.TargetFPS))
	}
	if h.Init != nil {
		h.Init()
	}
	if h.Close != nil {
		defer h.Close()
	}

	for !rl.WindowShouldClose() {
		if !h.Update(rl.GetFrameTime()) {
			return
		}
		rl.BeginDrawing()
		rl.ClearBackground(Background)
		h.Draw()
		rl.EndDrawing()
	}
}
