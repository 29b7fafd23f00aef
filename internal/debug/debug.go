package debug

import (
	"fmt"
	"runtime"

	"crystal-engine/internal/game"

	rl "github.com/gen2brain/raylib-go/raylib"
)

const (
	fontSize   = 20
	padding    = 12
	lineHeight = fontSize + 4
	// updateInterval: only refresh overlay text every N frames to reduce allocations.
	updateInterval = 30
)

// Debug holds runtime debugging overlays drawn at the top-right. All overlays are off by default.
type Debug struct {
	ShowFPS      bool
	ShowMemAlloc bool
	ShowStats    bool

	frameCount   uint32
	lastFpsText  string
	lastMemText  string
	lastStats    []string
	lastMemStats runtime.MemStats
}

// New returns a Debug system with all overlays hidden.
func New() *Debug {
	return &Debug{}
}

// StatsLines formats game statistics for the overlay.
func StatsLines(s game.Stats) []string {
	lines := []string{
		fmt.Sprintf("Bodies: %d/%d", s.Active, s.Bodies),
		fmt.Sprintf("Contacts: %d (%d it)", s.Contacts, s.Iterations),
		fmt.Sprintf("Effects: %d (%d particles)", s.Effects, s.Particles),
	}
	if s.Paused {
		lines = append(lines, "PAUSED")
	}
	return lines
}

// Draw renders any enabled debug overlays. Call after scene and terminal in the draw loop.
// Text is only recomputed every updateInterval frames to limit allocations.
func (d *Debug) Draw(stats func() game.Stats) {
	d.frameCount++
	update := d.frameCount%updateInterval == 0
	if (d.ShowFPS && d.lastFpsText == "") || (d.ShowMemAlloc && d.lastMemText == "") || (d.ShowStats && d.lastStats == nil) {
		update = true
	}

	var lines []string
	if d.ShowFPS {
		if update {
			d.lastFpsText = fmt.Sprintf("FPS: %d", rl.GetFPS())
		}
		lines = append(lines, d.lastFpsText)
	}
	if d.ShowMemAlloc {
		if update {
			runtime.ReadMemStats(&d.lastMemStats)
			d.lastMemText = fmt.Sprintf("Mem: %.2f MiB", float64(d.lastMemStats.Alloc)/(1024*1024))
		}
		lines = append(lines, d.lastMemText)
	}
	if d.ShowStats && stats != nil {
		if update {
			d.lastStats = StatsLines(stats())
		}
		lines = append(lines, d.lastStats...)
	}

	screenW := int32(rl.GetScreenWidth())
	y := int32(padding)
	for _, text := range lines {
		w := rl.MeasureText(text, fontSize)
		rl.DrawText(text, screenW-w-padding, y, fontSize, rl.Green)
		y += lineHeight
	}
}
