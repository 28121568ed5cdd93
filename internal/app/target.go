//go:build ebiten

package app

import (
	"image/color"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/vector"

	"shipbreaker/internal/render"
)

// ebitenTarget implements render.Target, buffering the latest upload of
// each kind and painting all of them in draw. Point/spring rendering uses
// vector.DrawFilledCircle/StrokeLine rather than a pixel buffer, the same
// per-primitive drawing olivierh59500-particle-life-go uses for its own
// variable-count particle cloud.
type ebitenTarget struct {
	points   render.ShipPoints
	elements render.ShipElements
	flames   []render.Flame
	ephems   []render.EphemeralInstance
	ocean    []float64
}

func newEbitenTarget() *ebitenTarget { return &ebitenTarget{} }

func (t *ebitenTarget) UploadOcean(samples []float64)              { t.ocean = samples }
func (t *ebitenTarget) UploadShipPoints(p render.ShipPoints)        { t.points = p }
func (t *ebitenTarget) UploadShipElements(e render.ShipElements)    { t.elements = e }
func (t *ebitenTarget) UploadShipFlames(f []render.Flame)           { t.flames = f }
func (t *ebitenTarget) UploadEphemeral(e []render.EphemeralInstance) { t.ephems = e }
func (t *ebitenTarget) UploadVectors(v []render.Vector)             {}

func (t *ebitenTarget) draw(screen *ebiten.Image, scale float64) {
	stressed := make(map[int32]bool, len(t.elements.StressedSprings))
	for _, idx := range t.elements.StressedSprings {
		stressed[idx] = true
	}

	springColor := func(i int, rope bool) (r, g, b uint8) {
		switch {
		case stressed[int32(i)]:
			return 230, 60, 50
		case rope:
			return 150, 110, 70
		default:
			return 90, 95, 105
		}
	}

	screenXY := func(i int32) (float32, float32) {
		return float32(t.points.PosX[i] * scale), float32(t.points.PosY[i] * scale)
	}

	for i, sp := range t.elements.Springs {
		rope := i < len(t.elements.Ropes) && t.elements.Ropes[i]
		r, g, b := springColor(i, rope)
		x1, y1 := screenXY(sp[0])
		x2, y2 := screenXY(sp[1])
		vector.StrokeLine(screen, x1, y1, x2, y2, 1, ebitenColor(r, g, b, 255), true)
	}

	for i := range t.points.PosX {
		x := float32(t.points.PosX[i] * scale)
		y := float32(t.points.PosY[i] * scale)
		c := t.points.Color[i]
		vector.DrawFilledCircle(screen, x, y, float32(1.5*scale), c, true)
	}

	for _, fl := range t.flames {
		x := float32(fl.X * scale)
		y := float32(fl.Y * scale)
		radius := float32((1 + fl.Development) * scale)
		vector.DrawFilledCircle(screen, x, y, radius, ebitenColor(255, 140, 30, 200), true)
	}

	for _, e := range t.ephems {
		x := float32(e.X * scale)
		y := float32(e.Y * scale)
		vector.DrawFilledCircle(screen, x, y, float32(0.75*scale), ebitenColor(120, 170, 220, 180), true)
	}

	drawOceanLine(screen, t.ocean, scale)
}

func drawOceanLine(screen *ebiten.Image, samples []float64, scale float64) {
	if len(samples) < 2 {
		return
	}
	width := screen.Bounds().Dx()
	step := float64(width) / float64(len(samples)-1)
	col := ebitenColor(40, 90, 160, 255)
	for i := 0; i < len(samples)-1; i++ {
		x1 := float32(float64(i) * step)
		x2 := float32(float64(i+1) * step)
		y1 := float32(samples[i] * scale)
		y2 := float32(samples[i+1] * scale)
		vector.StrokeLine(screen, x1, y1, x2, y2, 2, col, true)
	}
}

func ebitenColor(r, g, b, a uint8) color.RGBA {
	return color.RGBA{R: r, G: g, B: b, A: a}
}
