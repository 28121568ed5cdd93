// Command combustion-tuner runs a coordinate-descent parameter sweep over
// combustion.Params against a deterministic synthetic-ship burn scenario,
// grounded on internal/sims/ecology/volcano_tuning.go's
// VolcanoParameterSweep (a pack repo's own tuning tool), retuned from lava
// spread on a cellular grid to flame spread across a mesh.Build ship.
package main

import (
	"flag"
	"fmt"
	"math"
	"strconv"
	"sync"

	"shipbreaker/internal/combustion"
	"shipbreaker/internal/core"
	"shipbreaker/internal/material"
	"shipbreaker/internal/mesh"
	"shipbreaker/internal/particle"
)

// burnResult mirrors ecology's LavaFlowResult: the telemetry a sweep
// candidate is scored on.
type burnResult struct {
	MaxBurningAtOnce int
	TotalEverBurned  int
	LastActiveStep   int
	StepsSimulated   int
}

func betterBurnResult(a, b burnResult) bool {
	if a.TotalEverBurned != b.TotalEverBurned {
		return a.TotalEverBurned > b.TotalEverBurned
	}
	return a.LastActiveStep > b.LastActiveStep
}

// gridSize is the synthetic ship's side length; ignition always starts at
// the center particle.
const gridSize = 24

func buildGridShip(ignitionTemp, combustionHeat, mass float64) (*particle.Store, *mesh.Mesh) {
	db := material.NewDatabase()
	mat := &material.Material{
		Structural: material.Structural{
			Name:                "hull",
			Mass:                mass,
			Stiffness:           1,
			Strength:            1,
			HeatCapacity:        2000,
			IgnitionTemperature: ignitionTemp,
			CombustionHeat:      combustionHeat,
		},
	}

	cells := make([]*material.Material, gridSize*gridSize)
	for i := range cells {
		cells[i] = mat
	}
	img := &mesh.ShipImage{Width: gridSize, Height: gridSize, Cell: cells, IsLeaking: make([]bool, len(cells))}

	rng := core.NewRNG(1)
	store, m, err := mesh.Build(img, db, mesh.BuildParams{
		PixelSpacing: 1,
		Coeff:        mesh.CoefficientParams{StiffnessAdjust: 1, StrengthAdjust: 1, Step: 1},
	}, 0, rng, mesh.IdentityReorder{})
	if err != nil {
		panic(fmt.Sprintf("buildGridShip: %v", err))
	}
	return store, m
}

// runBurn ignites the grid's center particle and steps combustion alone
// (no mechanics/water/ocean — an isolated test of the decay/ignition
// constants, the same "just the subsystem under tuning" scope
// VolcanoFlowResult gives lava) for up to maxSteps ticks.
func runBurn(p combustion.Params, maxSteps int) burnResult {
	store, m := buildGridShip(p.HighWatermark+p.AmbientTemperature, 4000, p.ReferenceMass)
	rng := core.NewRNG(7)
	sub := combustion.New(store, m, rng)

	center := core.ParticleIndex((gridSize/2)*gridSize + gridSize/2)
	store.Temperature[center] = p.HighWatermark + p.AmbientTemperature + 500
	sub.Ignite(center)

	var result burnResult
	ignited := make([]bool, store.NShip())
	inactive := 0
	const dt = 1.0 / 8

	for step := 0; step < maxSteps; step++ {
		sub.HighFrequencyStep(p)
		if step%4 == 0 {
			sub.LowFrequencyStep(p)
		}
		for _, idx := range sub.BurningList() {
			ignited[idx] = true
		}
		burning := sub.LiveBurning()
		if burning > result.MaxBurningAtOnce {
			result.MaxBurningAtOnce = burning
		}
		if burning > 0 {
			result.LastActiveStep = step
			inactive = 0
		} else {
			inactive++
			if inactive >= 32 {
				break
			}
		}
		result.StepsSimulated = step
		_ = dt
	}
	result.TotalEverBurned = countEverIgnited(ignited)
	return result
}

func countEverIgnited(ignited []bool) int {
	n := 0
	for _, v := range ignited {
		if v {
			n++
		}
	}
	return n
}

type floatSpec struct {
	name   string
	values []float64
	get    func(combustion.Params) float64
	set    func(*combustion.Params, float64)
}

var specs = []floatSpec{
	{"base_decay_rate", []float64{0.05, 0.1, 0.15, 0.2, 0.3},
		func(p combustion.Params) float64 { return p.BaseDecayRate },
		func(p *combustion.Params, v float64) { p.BaseDecayRate = v }},
	{"high_watermark", []float64{50, 100, 150, 200, 300},
		func(p combustion.Params) float64 { return p.HighWatermark },
		func(p *combustion.Params, v float64) { p.HighWatermark = v }},
	{"low_watermark", []float64{10, 25, 50, 75},
		func(p combustion.Params) float64 { return p.LowWatermark },
		func(p *combustion.Params, v float64) { p.LowWatermark = v }},
	{"smothering_decay_low_watermark", []float64{0.05, 0.1, 0.2, 0.3},
		func(p combustion.Params) float64 { return p.SmotheringDecayLowWatermark },
		func(p *combustion.Params, v float64) { p.SmotheringDecayLowWatermark = v }},
}

// sweep performs a coordinate-descent search across combustion.Params
// fields, evaluating each candidate value concurrently the way
// evaluateFloatSpec fans sweep candidates out across workers.
func sweep(base combustion.Params, steps, passes, workers int) (combustion.Params, burnResult) {
	current := base
	best := runBurn(current, steps)

	for pass := 0; pass < passes; pass++ {
		improved := false
		for _, spec := range specs {
			type candidate struct {
				value    float64
				result   burnResult
				evaluated bool
			}
			candidates := make([]candidate, len(spec.values))
			var wg sync.WaitGroup
			sem := make(chan struct{}, workers)
			for i, v := range spec.values {
				if math.Abs(v-spec.get(current)) < 1e-9 {
					continue
				}
				wg.Add(1)
				sem <- struct{}{}
				go func(i int, v float64) {
					defer wg.Done()
					p := current
					spec.set(&p, v)
					candidates[i] = candidate{value: v, result: runBurn(p, steps), evaluated: true}
					<-sem
				}(i, v)
			}
			wg.Wait()

			for _, c := range candidates {
				if !c.evaluated {
					continue
				}
				if betterBurnResult(c.result, best) {
					spec.set(&current, c.value)
					best = c.result
					improved = true
					fmt.Printf("pass %d: %s -> %s (burned=%d, last_active=%d)\n",
						pass+1, spec.name, strconv.FormatFloat(c.value, 'f', -1, 64),
						best.TotalEverBurned, best.LastActiveStep)
				}
			}
		}
		if !improved {
			break
		}
	}
	return current, best
}

func main() {
	steps := flag.Int("steps", 300, "max ticks to simulate per candidate")
	passes := flag.Int("passes", 3, "coordinate-descent passes over every parameter")
	workers := flag.Int("workers", 4, "concurrent candidate evaluations per parameter")
	flag.Parse()

	base := combustion.Params{
		MaxBurning:                  1 << 16,
		HighWatermark:               150,
		LowWatermark:                50,
		SmotheringDecayLowWatermark: 0.1,
		SmotheringWaterHighWatermark: 0.3,
		BaseDecayRate:               0.1,
		ReferenceMass:               1,
		TemperatureAdjust:           1,
		AmbientTemperature:          293.15,
		Gravity:                     [2]float64{0, -9.8},
	}

	best, result := sweep(base, *steps, *passes, *workers)

	fmt.Println("\nbest parameters found:")
	fmt.Printf("  high_watermark                 = %.3f\n", best.HighWatermark)
	fmt.Printf("  low_watermark                  = %.3f\n", best.LowWatermark)
	fmt.Printf("  base_decay_rate                = %.3f\n", best.BaseDecayRate)
	fmt.Printf("  smothering_decay_low_watermark = %.3f\n", best.SmotheringDecayLowWatermark)
	fmt.Printf("result: total_burned=%d max_concurrent=%d last_active_step=%d steps_simulated=%d\n",
		result.TotalEverBurned, result.MaxBurningAtOnce, result.LastActiveStep, result.StepsSimulated)
}
