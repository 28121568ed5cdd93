//go:build ebiten

// Package app adapts a world.World + controller.Controller pair to the
// ebiten.Game interface, grounded on the teacher's internal/app/app.go
// (the same Update/Draw/Layout shape, tick-vs-pause keys, ebiten.Termination
// on quit) generalized from a cellular-automaton grid blit to a
// render.Producer-driven particle/spring point cloud, drawn with
// github.com/hajimehoshi/ebiten/v2/vector the way the pack's
// olivierh59500-particle-life-go draws its own particle cloud (filled
// circles for points, stroked lines for connections) rather than a
// pixel-buffer blit, since particle count and position vary every tick
// instead of being a fixed grid.
package app

import (
	"context"
	"fmt"
	"image/color"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
	"github.com/hajimehoshi/ebiten/v2/text"
	"github.com/hajimehoshi/ebiten/v2/vector"
	"golang.org/x/image/font/basicfont"

	"shipbreaker/internal/controller"
	"shipbreaker/internal/render"
	"shipbreaker/internal/world"
)

// Game drives a world.World one fixed tick per Update call and draws its
// current state through a render.Producer into an ebiten screen.
type Game struct {
	w *world.World
	c *controller.Controller
	p *render.Producer

	target *ebitenTarget

	scale        float64
	paused       bool
	tickOnce     bool
	dt           float64
	activeTool   toolKind
	dragAnchorX  float64
	dragAnchorY  float64
	dragging     bool
}

// toolKind selects which controller tool the mouse drives, cycled with the
// number keys the same way the teacher cycles its own keybound actions.
type toolKind int

const (
	toolMove toolKind = iota
	toolDestroy
	toolSaw
	toolHeat
	toolCool
	toolExtinguish
	toolDrawTo
	toolSwirl
	toolPin
	toolBubbles
	toolFlood
)

var toolNames = map[toolKind]string{
	toolMove:       "move",
	toolDestroy:    "destroy",
	toolSaw:        "saw",
	toolHeat:       "heat blaster",
	toolCool:       "cool blaster",
	toolExtinguish: "extinguish",
	toolDrawTo:     "draw to",
	toolSwirl:      "swirl",
	toolPin:        "pin",
	toolBubbles:    "bubbles",
	toolFlood:      "flood",
}

// New builds a Game over w and c, stepping at dt seconds per tick and
// scaling world-space units to screen pixels by scale.
func New(w *world.World, c *controller.Controller, scale, dt float64) *Game {
	return &Game{
		w:      w,
		c:      c,
		p:      render.NewProducer(w),
		target: newEbitenTarget(),
		scale:  scale,
		dt:     dt,
	}
}

// Update advances the simulation one tick (unless paused) and dispatches
// mouse input to whichever tool is currently active.
func (g *Game) Update() error {
	if inpututil.IsKeyJustPressed(ebiten.KeyQ) || inpututil.IsKeyJustPressed(ebiten.KeyEscape) {
		return ebiten.Termination
	}
	if inpututil.IsKeyJustPressed(ebiten.KeySpace) {
		g.paused = !g.paused
		g.w.SetPaused(g.paused)
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyN) {
		g.tickOnce = true
	}
	g.handleToolSelection()
	g.handleMouse()

	if !g.paused || g.tickOnce {
		if err := g.w.Step(context.Background(), g.dt); err != nil {
			return err
		}
		g.tickOnce = false
	}
	return nil
}

func (g *Game) handleToolSelection() {
	keys := []struct {
		key  ebiten.Key
		tool toolKind
	}{
		{ebiten.Key1, toolMove}, {ebiten.Key2, toolDestroy}, {ebiten.Key3, toolSaw},
		{ebiten.Key4, toolHeat}, {ebiten.Key5, toolCool}, {ebiten.Key6, toolExtinguish},
		{ebiten.Key7, toolDrawTo}, {ebiten.Key8, toolSwirl}, {ebiten.Key9, toolPin},
		{ebiten.Key0, toolBubbles},
	}
	for _, k := range keys {
		if inpututil.IsKeyJustPressed(k.key) {
			g.activeTool = k.tool
		}
	}
}

const toolRadius = 2.0

func (g *Game) handleMouse() {
	mx, my := ebiten.CursorPosition()
	sx, sy := float64(mx)/g.scale, float64(my)/g.scale

	switch g.activeTool {
	case toolMove:
		if inpututil.IsMouseButtonJustPressed(ebiten.MouseButtonLeft) {
			if _, ok := g.c.PickToMove(sx, sy); ok {
				g.dragAnchorX, g.dragAnchorY = sx, sy
				g.dragging = true
			}
		}
		if g.dragging && ebiten.IsMouseButtonPressed(ebiten.MouseButtonLeft) {
			if idx, ok := g.c.PickToMove(g.dragAnchorX, g.dragAnchorY); ok {
				g.c.MoveBy(idx, controller.MoveElement, sx-g.dragAnchorX, sy-g.dragAnchorY, 1)
			}
		}
		if inpututil.IsMouseButtonJustReleased(ebiten.MouseButtonLeft) {
			g.dragging = false
		}
	case toolDestroy:
		if ebiten.IsMouseButtonPressed(ebiten.MouseButtonLeft) {
			g.c.DestroyAt(sx, sy, toolRadius)
		}
	case toolSaw:
		if inpututil.IsMouseButtonJustPressed(ebiten.MouseButtonLeft) {
			g.dragAnchorX, g.dragAnchorY = sx, sy
			g.dragging = true
		}
		if inpututil.IsMouseButtonJustReleased(ebiten.MouseButtonLeft) && g.dragging {
			g.c.SawThrough(g.dragAnchorX, g.dragAnchorY, sx, sy)
			g.dragging = false
		}
	case toolHeat:
		if ebiten.IsMouseButtonPressed(ebiten.MouseButtonLeft) {
			g.c.ApplyHeatBlasterAt(sx, sy, toolRadius, controller.HeatBlasterHeat)
		}
	case toolCool:
		if ebiten.IsMouseButtonPressed(ebiten.MouseButtonLeft) {
			g.c.ApplyHeatBlasterAt(sx, sy, toolRadius, controller.HeatBlasterCool)
		}
	case toolExtinguish:
		if ebiten.IsMouseButtonPressed(ebiten.MouseButtonLeft) {
			g.c.ExtinguishFireAt(sx, sy, toolRadius)
		}
	case toolDrawTo:
		if ebiten.IsMouseButtonPressed(ebiten.MouseButtonLeft) {
			g.c.DrawTo(sx, sy, 50)
		}
	case toolSwirl:
		if ebiten.IsMouseButtonPressed(ebiten.MouseButtonLeft) {
			g.c.SwirlAt(sx, sy, 5)
		}
	case toolPin:
		if inpututil.IsMouseButtonJustPressed(ebiten.MouseButtonLeft) {
			g.c.TogglePinAt(sx, sy)
		}
	case toolBubbles:
		if inpututil.IsMouseButtonJustPressed(ebiten.MouseButtonLeft) {
			g.c.InjectBubblesAt(sx, sy)
		}
	case toolFlood:
		if inpututil.IsMouseButtonJustPressed(ebiten.MouseButtonLeft) {
			g.c.FloodAt(sx, sy, 1)
		}
	}
}

// Draw pulls the current render snapshot and paints it to screen.
func (g *Game) Draw(screen *ebiten.Image) {
	g.p.Sync(g.target)
	g.target.draw(screen, g.scale)

	label := fmt.Sprintf("tool: %s  [space] pause  [1-0] tools  [q] quit", toolNames[g.activeTool])
	text.Draw(screen, label, basicfont.Face7x13, 8, 16, color.RGBA{R: 220, G: 220, B: 230, A: 255})
}

// Layout uses the window's outside size as the logical screen size, so the
// logical screen follows window resizes; callers set the initial window size
// separately via ebiten.SetWindowSize.
func (g *Game) Layout(outsideWidth, outsideHeight int) (int, int) {
	return outsideWidth, outsideHeight
}
