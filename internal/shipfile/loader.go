package shipfile

import (
	"shipbreaker/internal/core"
	"shipbreaker/internal/material"
	"shipbreaker/internal/mesh"
	"shipbreaker/internal/particle"
)

// Metadata carries the ship identity/placement fields a loaded definition
// names, whether from a manifest or synthesized from a bare image's
// filename.
type Metadata struct {
	Name             string
	Author           string
	OffsetX, OffsetY float64
}

// Ship is the fully constructed result of loading a ship definition: the
// particle store and mesh mesh.Build produced, plus the electrical pixels
// still needing registration against a world (shipfile has no dependency
// on internal/world, so registration is the caller's job).
type Ship struct {
	Store      *particle.Store
	Mesh       *mesh.Mesh
	Metadata   Metadata
	Electrical []ElectricalPixel
}

// Load resolves path through open, decodes its layers, and builds a
// complete ship: Decode + BuildShipImage + mesh.Build + electrical-pixel
// resolution in one call, the path every real ship load takes.
func Load(open Open, path string, db *material.Database, params mesh.BuildParams, extraEphemeralCapacity int, rng *core.RNG, reorder mesh.ReorderStrategy) (Ship, error) {
	layers, err := Decode(open, path)
	if err != nil {
		return Ship{}, err
	}

	img, cells, err := BuildShipImage(layers, db)
	if err != nil {
		return Ship{}, err
	}

	electricals := Resolve(img, cells)

	store, m, err := mesh.Build(img, db, params, extraEphemeralCapacity, rng, reorder)
	if err != nil {
		return Ship{}, err
	}

	// BuildShipImage already overwrote img.Cell at each electrical pixel
	// with the decorated material, so the store's StructuralMaterial (set
	// from the same img.Cell by AddShipParticle) already carries it; record
	// it under ElectricalMaterial too since that is the field render/world
	// code looks at for electrical-only attributes.
	for _, e := range electricals {
		store.ElectricalMaterial[e.Index] = store.StructuralMaterial[e.Index]
	}

	return Ship{
		Store: store,
		Mesh:  m,
		Metadata: Metadata{
			Name:    layers.Name,
			Author:  layers.Author,
			OffsetX: layers.OffsetX,
			OffsetY: layers.OffsetY,
		},
		Electrical: electricals,
	}, nil
}
