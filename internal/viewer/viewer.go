// Package viewer is the interactive ebiten front end for a sim.World.
package viewer

import (
	"github.com/atotto/clipboard"
	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/text/v2"
	"golang.org/x/image/font/basicfont"

	"github.com/Garsondee/Pursuit-Sense/internal/config"
	"github.com/Garsondee/Pursuit-Sense/internal/logging"
	"github.com/Garsondee/Pursuit-Sense/internal/sim"
)

const (
	panelWidth   = 420
	lineHeight   = 14
	statusFrames = 120
	maxSpeedUp   = 8
)

// Viewer implements ebiten.Game over a World. The world is stepped once per
// frame at the configured tick rate.
type Viewer struct {
	world *sim.World
	log   logging.Logger
	face  text.Face

	scale         float64
	arenaW        int
	width, height int

	paused   bool
	speedUp  int
	showPath bool
	prevKeys map[ebiten.Key]bool

	tunings chan config.Tuning

	status      string
	statusUntil int
	frame       int

	copy func(string) error
}

// New builds a viewer that fits the world's arena into a window of at most
// maxW by maxH pixels, plus the side panel.
func New(w *sim.World, maxW, maxH int, log logging.Logger) *Viewer {
	sc := w.Scenario()
	scale := 1.0
	if sc.Width > 0 && sc.Height > 0 {
		scale = min(float64(maxW-panelWidth)/sc.Width, float64(maxH)/sc.Height)
	}
	if scale <= 0 {
		scale = 1
	}
	arenaW := int(sc.Width * scale)
	return &Viewer{
		world:    w,
		log:      logging.OrNop(log),
		face:     text.NewGoXFace(basicfont.Face7x13),
		scale:    scale,
		arenaW:   arenaW,
		width:    arenaW + panelWidth,
		height:   max(int(sc.Height*scale), 480),
		speedUp:  1,
		showPath: true,
		prevKeys: make(map[ebiten.Key]bool),
		tunings:  make(chan config.Tuning, 1),
		copy:     clipboard.WriteAll,
	}
}

// Size returns the window size the viewer lays out to.
func (v *Viewer) Size() (int, int) { return v.width, v.height }

// ReloadTuning queues a tuning change for the next frame. Safe to call from
// any goroutine; only the latest queued tuning is kept.
func (v *Viewer) ReloadTuning(t config.Tuning) {
	for {
		select {
		case v.tunings <- t:
			return
		default:
		}
		select {
		case <-v.tunings:
		default:
		}
	}
}

// Update applies queued tuning, handles input and steps the world.
func (v *Viewer) Update() error {
	v.frame++
	v.applyTuning()
	v.handleInput()
	if v.paused {
		return nil
	}
	dt := 1 / float64(v.world.Tuning().World.TickRate)
	for i := 0; i < v.speedUp; i++ {
		v.world.Step(dt)
	}
	return nil
}

func (v *Viewer) applyTuning() {
	select {
	case t := <-v.tunings:
		v.world.ApplyTuning(t)
		v.setStatus("tuning reloaded")
	default:
	}
}

// handleInput processes keypresses (edge-triggered).
func (v *Viewer) handleInput() {
	keys := []ebiten.Key{ebiten.KeySpace, ebiten.KeyPeriod, ebiten.KeyC, ebiten.KeyP, ebiten.KeyEqual, ebiten.KeyMinus}
	current := make(map[ebiten.Key]bool, len(keys))
	for _, k := range keys {
		current[k] = ebiten.IsKeyPressed(k)
	}
	pressed := func(k ebiten.Key) bool { return current[k] && !v.prevKeys[k] }

	if pressed(ebiten.KeySpace) {
		v.paused = !v.paused
	}
	if pressed(ebiten.KeyPeriod) && v.paused {
		v.world.Step(1 / float64(v.world.Tuning().World.TickRate))
	}
	if pressed(ebiten.KeyP) {
		v.showPath = !v.showPath
	}
	if pressed(ebiten.KeyEqual) {
		v.speedUp = min(v.speedUp*2, maxSpeedUp)
	}
	if pressed(ebiten.KeyMinus) {
		v.speedUp = max(v.speedUp/2, 1)
	}
	if pressed(ebiten.KeyC) {
		v.copyReport()
	}
	v.prevKeys = current
}

func (v *Viewer) copyReport() {
	if err := v.copy(Report(v.world.Snapshot())); err != nil {
		v.log.Warn("clipboard copy failed", "err", err)
		v.setStatus("clipboard unavailable")
		return
	}
	v.setStatus("report copied")
}

func (v *Viewer) setStatus(s string) {
	v.status = s
	v.statusUntil = v.frame + statusFrames
}

// Layout returns the fixed logical screen size.
func (v *Viewer) Layout(_, _ int) (int, int) {
	return v.width, v.height
}
