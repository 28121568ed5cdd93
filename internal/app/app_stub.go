//go:build !ebiten

package app

import (
	"fmt"

	"shipbreaker/internal/controller"
	"shipbreaker/internal/world"
)

// Game is a placeholder satisfying the API the GUI build exposes.
type Game struct{}

// New panics to indicate the ebiten build tag is required for GUI support.
func New(*world.World, *controller.Controller, float64, float64) *Game {
	panic("app.New requires building with the 'ebiten' tag")
}

// Update always reports that the GUI build tag is missing.
func (g *Game) Update() error {
	return fmt.Errorf("app.Game.Update requires building with the 'ebiten' tag")
}

// Draw is a no-op placeholder to satisfy the interface shape.
func (g *Game) Draw(any) {}

// Layout returns zeros in the headless build.
func (g *Game) Layout(int, int) (int, int) { return 0, 0 }
