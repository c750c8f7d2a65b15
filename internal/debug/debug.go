package debug

import (
	"fmt"
	"runtime"

	"property-explorer/internal/scene"

	rl "github.com/gen2brain/raylib-go/raylib"
)

const (
	fontSize   = 20
	padding    = 12
	lineHeight = fontSize + 4
	// updateInterval: only refresh overlay text every N frames to reduce allocations.
	updateInterval = 30
	logLines       = 8
	logFontSize    = 16
)

// Debug holds the runtime overlays. All overlays are off by default.
type Debug struct {
	ShowFPS      bool
	ShowMemAlloc bool
	ShowStats    bool
	// ShowLog draws the newest log lines at the bottom-left; toggled with F3.
	ShowLog bool

	font         rl.Font // optional; when set, Draw uses DrawTextEx instead of default font
	frameCount   uint32
	lastFpsText  string
	lastMemText  string
	lastMemStats runtime.MemStats
	statsText    []string
	logText      []string
}

// New returns a Debug system with all overlays hidden.
func New() *Debug {
	return &Debug{}
}

// SetFont sets the font used for overlay text. Zero texture ID = use raylib default.
func (d *Debug) SetFont(font rl.Font) {
	d.font = font
}

// HandleInput toggles overlays: F1 FPS/memory, F2 scene stats, F3 log.
func (d *Debug) HandleInput() {
	if rl.IsKeyPressed(rl.KeyF1) {
		d.ShowFPS = !d.ShowFPS
		d.ShowMemAlloc = d.ShowFPS
	}
	if rl.IsKeyPressed(rl.KeyF2) {
		d.ShowStats = !d.ShowStats
	}
	if rl.IsKeyPressed(rl.KeyF3) {
		d.ShowLog = !d.ShowLog
	}
}

// Update refreshes the scene stats and log text. recent is read only when the log
// overlay is on, so callers can pass a method value.
func (d *Debug) Update(stats scene.Stats, recent func() []string) {
	d.frameCount++
	if d.frameCount%updateInterval != 0 && d.statsText != nil {
		return
	}
	d.statsText = StatsLines(stats)
	if d.ShowLog && recent != nil {
		lines := recent()
		if len(lines) > logLines {
			lines = lines[len(lines)-logLines:]
		}
		d.logText = lines
	}
}

// StatsLines formats scene counters for the overlay.
func StatsLines(s scene.Stats) []string {
	return []string{
		fmt.Sprintf("Visuals: %d", s.Visuals),
		fmt.Sprintf("Imagery: %d ready, %d failed, %d in flight", s.Ready, s.Failed, s.InFlight),
		fmt.Sprintf("Requested: %d  Stale: %d", s.Requested, s.Stale),
		fmt.Sprintf("Showing: %s", s.Displayed),
		fmt.Sprintf("Elapsed: %.1fs", s.ElapsedSecs),
	}
}

// Draw renders enabled overlays: FPS and memory top-right in green, scene stats under
// them, recent log lines bottom-left.
func (d *Debug) Draw() {
	update := d.frameCount%updateInterval == 0
	if d.ShowFPS && d.lastFpsText == "" {
		update = true
	}
	if d.ShowMemAlloc && d.lastMemText == "" {
		update = true
	}

	y := int32(padding)
	if d.ShowFPS {
		if update {
			d.lastFpsText = fmt.Sprintf("FPS: %d", rl.GetFPS())
		}
		d.drawRight(d.lastFpsText, y, rl.Green)
		y += lineHeight
	}
	if d.ShowMemAlloc {
		if update {
			runtime.ReadMemStats(&d.lastMemStats)
			d.lastMemText = fmt.Sprintf("Mem: %.2f MiB", float64(d.lastMemStats.Alloc)/(1024*1024))
		}
		d.drawRight(d.lastMemText, y, rl.Green)
		y += lineHeight
	}
	if d.ShowStats {
		for _, line := range d.statsText {
			d.drawRight(line, y, rl.SkyBlue)
			y += lineHeight
		}
	}
	if d.ShowLog {
		ly := int32(rl.GetScreenHeight()) - padding - int32(len(d.logText))*(logFontSize+4)
		for _, line := range d.logText {
			rl.DrawText(line, padding, ly, logFontSize, rl.LightGray)
			ly += logFontSize + 4
		}
	}
}

func (d *Debug) drawRight(text string, y int32, c rl.Color) {
	if text == "" {
		return
	}
	screenW := float32(rl.GetScreenWidth())
	if d.font.Texture.ID != 0 {
		sz := float32(fontSize)
		pos := rl.NewVector2(screenW-rl.MeasureTextEx(d.font, text, sz, 1).X-padding, float32(y))
		rl.DrawTextEx(d.font, text, pos, sz, 1, c)
		return
	}
	w := rl.MeasureText(text, fontSize)
	rl.DrawText(text, int32(screenW)-w-padding, y, fontSize, c)
}
