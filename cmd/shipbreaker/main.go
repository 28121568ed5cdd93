//go:build ebiten

// Command shipbreaker is the interactive GUI demo harness: it loads a
// material database and a ship definition, builds a world.World +
// controller.Controller pair, and drives them through internal/app the
// same way the teacher's cmd/ca wires a core.Sim into its own app.Game.
package main

import (
	"errors"
	"flag"
	"io"
	"log"
	"net/http"
	"os"

	"github.com/hajimehoshi/ebiten/v2"

	"shipbreaker/internal/app"
	"shipbreaker/internal/combustion"
	"shipbreaker/internal/controller"
	"shipbreaker/internal/core"
	"shipbreaker/internal/material"
	"shipbreaker/internal/mesh"
	"shipbreaker/internal/ocean"
	"shipbreaker/internal/shipfile"
	"shipbreaker/internal/telemetry"
	"shipbreaker/internal/world"
)

func main() {
	structuralPath := flag.String("materials", "", "path to a structural materials text file")
	electricalPath := flag.String("electricals", "", "path to an electrical materials text file (optional)")
	shipPath := flag.String("ship", "", "path to a ship manifest or bare structural PNG")
	scale := flag.Float64("scale", 4, "pixels per world unit")
	windowWidth := flag.Int("width", 1024, "window width in pixels")
	windowHeight := flag.Int("height", 768, "window height in pixels")
	tps := flag.Int("tps", 64, "simulation ticks per second")
	seed := flag.Int64("seed", 1, "deterministic RNG seed")
	telemetryAddr := flag.String("telemetry", "", "if set, serve a websocket event feed at this address (e.g. :8081)")
	flag.Parse()

	if *structuralPath == "" || *shipPath == "" {
		log.Fatal("usage: shipbreaker -materials <file> -ship <file> [-electricals <file>]")
	}

	db, err := loadDatabase(*structuralPath, *electricalPath)
	if err != nil {
		log.Fatalf("loading materials: %v", err)
	}

	rng := core.NewRNG(*seed)
	buildParams := mesh.BuildParams{
		PixelSpacing: 1,
		Coeff:        mesh.CoefficientParams{StiffnessAdjust: 1, StrengthAdjust: 1, Step: 1},
	}

	ship, err := shipfile.Load(osOpen, *shipPath, db, buildParams, 256, rng, mesh.ForsythReorder{})
	if err != nil {
		log.Fatalf("loading ship %q: %v", *shipPath, err)
	}

	dt := 1.0 / float64(*tps)
	cfg := world.Config{
		NShip:                  ship.Store.NShip(),
		NEphemeral:             256,
		MaxSprings:             ship.Mesh.NSprings(),
		MaxTriangles:           ship.Mesh.NTriangles(),
		Gravity:                [2]float64{0, -9.8},
		Wind:                   [2]float64{0, 0},
		NMech:                  3,
		NRelax:                 8,
		GlobalDamping:          0.015,
		BreakThresholdRelative: 1,
		WaterDensity:           1000,
		WaterRestitution:       0.5,
		EphemeralMaxLifetime:   8,
		VortexAmplitude:        1,
		VortexFrequency:        1,
		Combustion: combustionDefaults(),
		OceanInteriorCells:     256,
		OceanGhostCells:        4,
		OceanRestHeight:        0,
		Ocean: ocean.Params{
			DX:                     1,
			Gravity:                9.8,
			VerticalAmplification: 1,
			WindMagnitude:          0,
			GustIncisiveness:       0.5,
			RippleSpatialFrequency: 0.1,
			RippleTimeFrequency:    0.5,
			RippleSmoothing:        0.2,
		},
		CombustionStride:       8,
		CombustionOffset:       0,
		Workers:                4,
		Seed:                   *seed,
	}

	w := world.New(cfg, ship.Store, ship.Mesh)
	for _, e := range ship.Electrical {
		w.RegisterElectricalElement(e.Index, e.Kind)
	}

	if *telemetryAddr != "" {
		hub := telemetry.NewHub()
		w.Dispatcher = hub
		go func() {
			log.Printf("telemetry: serving event feed on %s", *telemetryAddr)
			if err := http.ListenAndServe(*telemetryAddr, hub); err != nil {
				log.Printf("telemetry: server stopped: %v", err)
			}
		}()
	}

	ctrl := controller.New(w, controller.Config{
		InitialZoom:          1,
		CameraTrajectoryTime: 0.5,
		ZoomTrajectoryTime:   0.3,
		ParamTrajectoryTime:  0.3,
	})

	game := app.New(w, ctrl, *scale, dt)

	ebiten.SetWindowTitle("shipbreaker — " + ship.Metadata.Name)
	ebiten.SetTPS(*tps)
	ebiten.SetWindowSize(*windowWidth, *windowHeight)

	if err := ebiten.RunGame(game); err != nil && !errors.Is(err, ebiten.Termination) {
		log.Fatal(err)
	}
}

func osOpen(name string) (io.Reader, error) {
	return os.Open(name)
}

func loadDatabase(structuralPath, electricalPath string) (*material.Database, error) {
	f, err := os.Open(structuralPath)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	db, err := material.LoadStructuralText(f)
	if err != nil {
		return nil, err
	}

	if electricalPath != "" {
		ef, err := os.Open(electricalPath)
		if err != nil {
			return nil, err
		}
		defer ef.Close()
		if err := material.LoadElectricalText(ef, db); err != nil {
			return nil, err
		}
	}

	return db, db.Validate()
}

func combustionDefaults() (p combustion.Params) {
	p.MaxBurning = 1 << 16
	p.HighWatermark = 150
	p.LowWatermark = 50
	p.SmotheringDecayLowWatermark = 0.1
	p.SmotheringWaterHighWatermark = 0.3
	p.BaseDecayRate = 0.1
	p.ReferenceMass = 1
	p.TemperatureAdjust = 1
	p.AmbientTemperature = 293.15
	p.Gravity = [2]float64{0, -9.8}
	return
}
