package viewer

import (
	"fmt"
	"image/color"
	"math"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/text/v2"
	"github.com/hajimehoshi/ebiten/v2/vector"

	"github.com/Garsondee/Pursuit-Sense/internal/config"
	"github.com/Garsondee/Pursuit-Sense/internal/nav"
	"github.com/Garsondee/Pursuit-Sense/internal/sim"
)

var (
	colBackground  = color.RGBA{R: 18, G: 22, B: 18, A: 255}
	colWall        = color.RGBA{R: 90, G: 90, B: 96, A: 255}
	colChasm       = color.RGBA{R: 5, G: 5, B: 12, A: 255}
	colChasmEdge   = color.RGBA{R: 60, G: 50, B: 90, A: 255}
	colLink        = color.RGBA{R: 200, G: 160, B: 255, A: 140}
	colFlee        = color.RGBA{R: 80, G: 200, B: 200, A: 180}
	colCollect     = color.RGBA{R: 240, G: 210, B: 60, A: 255}
	colCollectCool = color.RGBA{R: 100, G: 90, B: 40, A: 255}
	colBridgeUp    = color.RGBA{R: 200, G: 70, B: 50, A: 200}
	colBridgeDown  = color.RGBA{R: 120, G: 90, B: 60, A: 200}
	colBoat        = color.RGBA{R: 170, G: 120, B: 70, A: 255}
	colTarget      = color.RGBA{R: 240, G: 240, B: 240, A: 255}
	colThreat      = color.RGBA{R: 255, G: 60, B: 60, A: 255}
	colMember      = color.RGBA{R: 255, G: 255, B: 255, A: 200}
	colLOS         = color.RGBA{R: 255, G: 240, B: 60, A: 90}
	colPath        = color.RGBA{R: 120, G: 180, B: 255, A: 140}
	colJumpEdge    = color.RGBA{R: 200, G: 160, B: 255, A: 220}
	colLKP         = color.RGBA{R: 255, G: 150, B: 40, A: 220}
	colPanel       = color.RGBA{R: 10, G: 12, B: 10, A: 248}
	colPanelEdge   = color.RGBA{R: 50, G: 70, B: 50, A: 255}
	colText        = color.RGBA{R: 210, G: 220, B: 210, A: 255}
	colTextDim     = color.RGBA{R: 130, G: 140, B: 130, A: 255}
)

var modeColors = map[string]color.RGBA{
	"none":    {R: 140, G: 140, B: 140, A: 255},
	"flee":    {R: 60, G: 200, B: 200, A: 255},
	"chase":   {R: 220, G: 80, B: 60, A: 255},
	"collect": {R: 90, G: 200, B: 90, A: 255},
}

// Draw renders the arena, the entities and the side panel.
func (v *Viewer) Draw(screen *ebiten.Image) {
	screen.Fill(colBackground)
	snap := v.world.Snapshot()
	sc := v.world.Scenario()

	v.drawArena(screen, sc, snap.Ferry)
	v.drawCollectibles(screen, snap)
	v.drawFerry(screen, snap.Ferry)
	v.drawAgents(screen, snap)
	v.drawTarget(screen, snap.Target)
	v.drawPanel(screen, snap)
}

func (v *Viewer) sx(x float64) float32 { return float32(x * v.scale) }
func (v *Viewer) sy(y float64) float32 { return float32(y * v.scale) }

func (v *Viewer) fillRect(screen *ebiten.Image, r config.Rect, c color.Color) {
	vector.FillRect(screen, v.sx(r[0]), v.sy(r[1]), v.sx(r[2]-r[0]), v.sy(r[3]-r[1]), c, false)
}

func (v *Viewer) line(screen *ebiten.Image, x1, y1, x2, y2 float64, w float32, c color.Color) {
	vector.StrokeLine(screen, v.sx(x1), v.sy(y1), v.sx(x2), v.sy(y2), w, c, false)
}

func (v *Viewer) drawArena(screen *ebiten.Image, sc config.Scenario, fs *sim.FerrySnapshot) {
	vector.StrokeRect(screen, 0, 0, v.sx(sc.Width), v.sy(sc.Height), 1, colPanelEdge, false)
	for _, r := range sc.Chasms {
		v.fillRect(screen, r, colChasm)
		vector.StrokeRect(screen, v.sx(r[0]), v.sy(r[1]), v.sx(r[2]-r[0]), v.sy(r[3]-r[1]), 1, colChasmEdge, false)
	}
	for _, r := range sc.Walls {
		v.fillRect(screen, r, colWall)
	}
	for _, l := range sc.Links {
		v.line(screen, l.A[0], l.A[1], l.B[0], l.B[1], 1, colLink)
	}
	for _, p := range sc.FleePoints {
		vector.StrokeCircle(screen, v.sx(p[0]), v.sy(p[1]), 5, 1, colFlee, false)
	}
	if sc.Ferry != nil && fs != nil {
		v.fillRect(screen, sc.Ferry.StartBridge, bridgeColor(fs.StartBridge))
		v.fillRect(screen, sc.Ferry.EndBridge, bridgeColor(fs.EndBridge))
	}
}

func bridgeColor(raised bool) color.Color {
	if raised {
		return colBridgeUp
	}
	return colBridgeDown
}

func (v *Viewer) drawCollectibles(screen *ebiten.Image, snap sim.Snapshot) {
	for _, c := range snap.Collectibles {
		col := colCollect
		if c.Cooldown {
			col = colCollectCool
		}
		vector.FillRect(screen, v.sx(c.X)-3, v.sy(c.Y)-3, 6, 6, col, false)
	}
}

func (v *Viewer) drawFerry(screen *ebiten.Image, fs *sim.FerrySnapshot) {
	if fs == nil || !fs.Active {
		return
	}
	x, y := v.sx(fs.X), v.sy(fs.Y)
	vector.FillRect(screen, x-8, y-5, 16, 10, colBoat, false)
	v.label(screen, fs.State, float64(x)+10, float64(y)-6, colTextDim)
}

func (v *Viewer) drawTarget(screen *ebiten.Image, t *sim.TargetSnapshot) {
	if t == nil || !t.Alive {
		return
	}
	col := colTarget
	if t.Threatened {
		col = colThreat
	}
	r := float32(7 + t.Z*0.02)
	vector.FillCircle(screen, v.sx(t.X), v.sy(t.Y), r, col, false)
}

func (v *Viewer) drawAgents(screen *ebiten.Image, snap sim.Snapshot) {
	for _, a := range snap.Agents {
		if !a.Alive {
			continue
		}
		if v.showPath && len(a.Path) > 1 {
			for i := max(a.Segment, 0); i+1 < len(a.Path); i++ {
				p, q := a.Path[i], a.Path[i+1]
				c, w := colPath, float32(1)
				if nav.LinkType(p[2]) == nav.LinkJump {
					c, w = colJumpEdge, 2
				}
				v.line(screen, p[0], p[1], q[0], q[1], w, c)
			}
		}
		if a.HasLOS && snap.Target != nil && snap.Target.Alive {
			v.line(screen, a.X, a.Y, snap.Target.X, snap.Target.Y, 1, colLOS)
		}
		if a.LKP != nil {
			x, y := v.sx(a.LKP[0]), v.sy(a.LKP[1])
			vector.StrokeLine(screen, x-4, y-4, x+4, y+4, 1, colLKP, false)
			vector.StrokeLine(screen, x-4, y+4, x+4, y-4, 1, colLKP, false)
		}

		col, ok := modeColors[a.Mode]
		if !ok {
			col = modeColors["none"]
		}
		x, y := v.sx(a.X), v.sy(a.Y)
		r := float32(5 + a.Z*0.02)
		vector.FillCircle(screen, x, y, r, col, false)
		if a.Member {
			vector.StrokeCircle(screen, x, y, r+3, 1, colMember, false)
		}
		hx := x + float32(math.Cos(a.Yaw))*(r+4)
		hy := y + float32(math.Sin(a.Yaw))*(r+4)
		vector.StrokeLine(screen, x, y, hx, hy, 1, col, false)
		v.label(screen, a.Label, float64(x)+8, float64(y)-14, colTextDim)
	}
}

func (v *Viewer) label(screen *ebiten.Image, s string, x, y float64, c color.Color) {
	op := &text.DrawOptions{}
	op.GeoM.Translate(x, y)
	op.ColorScale.ScaleWithColor(c)
	text.Draw(screen, s, v.face, op)
}

func (v *Viewer) drawPanel(screen *ebiten.Image, snap sim.Snapshot) {
	px := v.arenaW
	vector.FillRect(screen, float32(px), 0, panelWidth, float32(v.height), colPanel, false)
	vector.StrokeLine(screen, float32(px), 0, float32(px), float32(v.height), 1, colPanelEdge, false)

	x := float64(px + 8)
	y := 4.0
	state := "running"
	if v.paused {
		state = "paused"
	}
	v.label(screen, fmt.Sprintf("%s x%d   [space] pause  [.] step  [c] copy  [p] paths", state, v.speedUp), x, y, colText)
	y += lineHeight
	if v.status != "" && v.frame < v.statusUntil {
		v.label(screen, v.status, x, y, colLKP)
	}
	y += lineHeight + 4

	for _, l := range summaryLines(snap) {
		v.label(screen, l, x, y, colText)
		y += lineHeight
	}
	y += 4
	vector.StrokeLine(screen, float32(px), float32(y), float32(px+panelWidth), float32(y), 1, colPanelEdge, false)
	y += 4

	entries := v.world.Recent()
	maxVisible := int((float64(v.height) - y) / lineHeight)
	if len(entries) > maxVisible {
		entries = entries[len(entries)-max(maxVisible, 0):]
	}
	for i, e := range entries {
		c := colTextDim
		if i >= len(entries)-3 {
			c = colText
		}
		v.label(screen, e.String(), x, y, c)
		y += lineHeight
	}
}
