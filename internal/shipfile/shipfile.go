// Package shipfile decodes a ship definition — a small textual manifest
// plus one or more PNG layers — into the mesh.ShipImage mesh.Build
// consumes. It is a thin edge adapter at the external-interface boundary
// (spec.md §6): nothing downstream of BuildShipImage knows a PNG was ever
// involved, and tests exercise it by constructing Layers directly from
// in-memory images.
package shipfile

import (
	"bufio"
	"errors"
	"fmt"
	"image"
	_ "image/png"
	"io"
	"path/filepath"
	"strings"

	"shipbreaker/internal/core"
	"shipbreaker/internal/material"
	"shipbreaker/internal/mesh"
)

// ErrTextureTooLarge is returned when a texture layer's dimensions exceed
// MaxTextureDimension in either axis.
var ErrTextureTooLarge = errors.New("shipfile: texture layer too large")

// ErrLayerSizeMismatch is returned when an optional layer's dimensions
// don't match the structural layer's.
var ErrLayerSizeMismatch = errors.New("shipfile: layer size mismatch")

// MaxTextureDimension bounds a texture layer's width/height; the renderer
// is the only consumer and has no need for anything larger than a ship
// image is ever drawn at.
const MaxTextureDimension = 8192

// Open resolves a layer path (as written in the manifest, relative to the
// manifest's own directory) to a readable stream. Callers supply this
// rather than shipfile touching the filesystem directly, so tests can
// serve layers from memory.
type Open func(name string) (io.Reader, error)

// Layers holds the decoded images a Manifest points to. Ropes, Electrical,
// and Texture are nil when the manifest didn't name them.
type Layers struct {
	Structural image.Image
	Ropes      image.Image
	Electrical image.Image
	Texture    image.Image

	Name             string
	Author           string
	OffsetX, OffsetY float64
}

// pngSignature is the magic prefix every PNG stream starts with, used to
// tell a bare structural image apart from a manifest text file without
// requiring a distinct file extension convention.
var pngSignature = []byte{0x89, 'P', 'N', 'G', '\r', '\n', 0x1a, '\n'}

// Decode resolves path through open and decodes it into Layers. If path's
// contents start with a PNG signature, it is treated as a bare structural
// image per spec.md §6 and the ship's name is synthesized from path's
// basename; otherwise it is parsed as a Manifest and every layer path it
// names is resolved relative to path's directory.
func Decode(open Open, path string) (Layers, error) {
	r, err := open(path)
	if err != nil {
		return Layers{}, fmt.Errorf("shipfile: open %q: %w", path, err)
	}
	buf := bufio.NewReader(r)
	head, err := buf.Peek(len(pngSignature))
	if err == nil && string(head) == string(pngSignature) {
		img, _, err := image.Decode(buf)
		if err != nil {
			return Layers{}, fmt.Errorf("shipfile: decode %q: %w", path, err)
		}
		base := filepath.Base(path)
		name := strings.TrimSuffix(base, filepath.Ext(base))
		return Layers{Structural: img, Name: name}, nil
	}

	manifest, err := ParseManifest(buf)
	if err != nil {
		return Layers{}, fmt.Errorf("shipfile: parse manifest %q: %w", path, err)
	}
	if manifest.StructuralLayer == "" {
		return Layers{}, fmt.Errorf("shipfile: manifest %q names no structural_layer", path)
	}

	dir := filepath.Dir(path)
	out := Layers{
		Name:    manifest.Name,
		Author:  manifest.Author,
		OffsetX: manifest.OffsetX,
		OffsetY: manifest.OffsetY,
	}
	if out.Name == "" {
		base := filepath.Base(path)
		out.Name = strings.TrimSuffix(base, filepath.Ext(base))
	}

	out.Structural, err = decodeLayer(open, filepath.Join(dir, manifest.StructuralLayer))
	if err != nil {
		return Layers{}, err
	}
	if manifest.RopesLayer != "" {
		out.Ropes, err = decodeLayer(open, filepath.Join(dir, manifest.RopesLayer))
		if err != nil {
			return Layers{}, err
		}
	}
	if manifest.ElectricalLayer != "" {
		out.Electrical, err = decodeLayer(open, filepath.Join(dir, manifest.ElectricalLayer))
		if err != nil {
			return Layers{}, err
		}
	}
	if manifest.TextureLayer != "" {
		out.Texture, err = decodeLayer(open, filepath.Join(dir, manifest.TextureLayer))
		if err != nil {
			return Layers{}, err
		}
		b := out.Texture.Bounds()
		if b.Dx() > MaxTextureDimension || b.Dy() > MaxTextureDimension {
			return Layers{}, fmt.Errorf("%w: %dx%d", ErrTextureTooLarge, b.Dx(), b.Dy())
		}
	}
	return out, nil
}

func decodeLayer(open Open, path string) (image.Image, error) {
	r, err := open(path)
	if err != nil {
		return nil, fmt.Errorf("shipfile: open %q: %w", path, err)
	}
	img, _, err := image.Decode(r)
	if err != nil {
		return nil, fmt.Errorf("shipfile: decode %q: %w", path, err)
	}
	return img, nil
}

// ElectricalPixel records one electrical_layer pixel's resolved particle
// index and material, for the caller to register with a world.World once
// mesh.Build has assigned particle indices (shipfile does not import
// world: registration is the loader's job, not the decoder's).
type ElectricalPixel struct {
	Index core.ParticleIndex
	Kind  material.ElectricalKind
}

// BuildShipImage rasterizes Layers into a mesh.ShipImage against db,
// inserting rope chains and decorating electrical pixels. The returned
// ElectricalPixel slice is only meaningful once paired with the
// core.ParticleIndex assignment mesh.Build (or mesh.ParticleIndexGrid)
// produces for the same image.
func BuildShipImage(layers Layers, db *material.Database) (*mesh.ShipImage, []electricalCell, error) {
	bounds := layers.Structural.Bounds()
	w, h := bounds.Dx(), bounds.Dy()

	img := &mesh.ShipImage{
		Width:     w,
		Height:    h,
		Cell:      make([]*material.Material, w*h),
		IsLeaking: make([]bool, w*h),
	}

	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			key := material.KeyFromColor(layers.Structural.At(bounds.Min.X+x, bounds.Min.Y+y))
			if db.IsBackground(key) {
				continue
			}
			mat, ok := db.Lookup(key)
			if !ok {
				return nil, nil, fmt.Errorf("%w: structural pixel (%d,%d) color %v", material.ErrMaterialNotFound, x, y, key)
			}
			img.Cell[y*w+x] = mat
		}
	}

	if layers.Ropes != nil {
		if err := insertRopes(img, layers.Ropes, db); err != nil {
			return nil, nil, err
		}
	}

	var electricals []electricalCell
	if layers.Electrical != nil {
		ec, err := decorateElectrical(img, layers.Electrical, db)
		if err != nil {
			return nil, nil, err
		}
		electricals = ec
	}

	return img, electricals, nil
}

// electricalCell is BuildShipImage's pixel-space intermediate; Resolve
// converts a slice of these plus the image's particle-index assignment
// into caller-facing ElectricalPixel values.
type electricalCell struct {
	X, Y int
	Mat  *material.Material
}

// Resolve converts pixel-space electrical decorations into particle
// indices, using the same row-major assignment mesh.Build used to
// construct idx's underlying store.
func Resolve(img *mesh.ShipImage, cells []electricalCell) []ElectricalPixel {
	grid := mesh.ParticleIndexGrid(img)
	out := make([]ElectricalPixel, 0, len(cells))
	for _, c := range cells {
		idx := grid[c.Y*img.Width+c.X]
		if idx == core.NoParticle || c.Mat.Electrical == nil {
			continue
		}
		out = append(out, ElectricalPixel{Index: idx, Kind: c.Mat.Electrical.Kind})
	}
	return out
}

func insertRopes(img *mesh.ShipImage, ropes image.Image, db *material.Database) error {
	bounds := ropes.Bounds()
	if bounds.Dx() != img.Width || bounds.Dy() != img.Height {
		return fmt.Errorf("%w: ropes layer %dx%d vs structural %dx%d", ErrLayerSizeMismatch, bounds.Dx(), bounds.Dy(), img.Width, img.Height)
	}
	ropeMat := db.Rope()
	if ropeMat == nil {
		return fmt.Errorf("%w: no rope material registered", material.ErrInvalidDatabase)
	}

	endpoints := make(map[material.ColorKey][]image.Point)
	for y := 0; y < bounds.Dy(); y++ {
		for x := 0; x < bounds.Dx(); x++ {
			_, _, _, a := ropes.At(bounds.Min.X+x, bounds.Min.Y+y).RGBA()
			if a == 0 {
				continue
			}
			key := material.KeyFromColor(ropes.At(bounds.Min.X+x, bounds.Min.Y+y))
			endpoints[key] = append(endpoints[key], image.Point{X: x, Y: y})
		}
	}

	for _, pts := range endpoints {
		if len(pts) != 2 {
			continue // malformed rope color group (not exactly two endpoints): skip
		}
		for _, p := range bresenham(pts[0], pts[1]) {
			i := p.Y*img.Width + p.X
			img.Cell[i] = ropeMat
			img.IsLeaking[i] = true
		}
	}
	return nil
}

func decorateElectrical(img *mesh.ShipImage, layer image.Image, db *material.Database) ([]electricalCell, error) {
	bounds := layer.Bounds()
	if bounds.Dx() != img.Width || bounds.Dy() != img.Height {
		return nil, fmt.Errorf("%w: electrical layer %dx%d vs structural %dx%d", ErrLayerSizeMismatch, bounds.Dx(), bounds.Dy(), img.Width, img.Height)
	}

	var cells []electricalCell
	for y := 0; y < bounds.Dy(); y++ {
		for x := 0; x < bounds.Dx(); x++ {
			_, _, _, a := layer.At(bounds.Min.X+x, bounds.Min.Y+y).RGBA()
			if a == 0 {
				continue
			}
			if img.Cell[y*img.Width+x] == nil {
				return nil, fmt.Errorf("%w: electrical pixel (%d,%d) sits on a background particle", material.ErrMaterialNotFound, x, y)
			}
			key := material.KeyFromColor(layer.At(bounds.Min.X+x, bounds.Min.Y+y))
			mat, ok := db.Lookup(key)
			if !ok || !mat.HasElectrical() {
				return nil, fmt.Errorf("%w: electrical pixel (%d,%d) color %v", material.ErrMaterialNotFound, x, y, key)
			}
			img.Cell[y*img.Width+x] = mat
			cells = append(cells, electricalCell{X: x, Y: y, Mat: mat})
		}
	}
	return cells, nil
}

// bresenham returns every integer grid point on the line from a to b
// inclusive, the standard integer-only line-rasterization algorithm.
func bresenham(a, b image.Point) []image.Point {
	dx, dy := abs(b.X-a.X), -abs(b.Y-a.Y)
	sx, sy := sign(b.X-a.X), sign(b.Y-a.Y)
	err := dx + dy

	var out []image.Point
	x, y := a.X, a.Y
	for {
		out = append(out, image.Point{X: x, Y: y})
		if x == b.X && y == b.Y {
			break
		}
		e2 := 2 * err
		if e2 >= dy {
			err += dy
			x += sx
		}
		if e2 <= dx {
			err += dx
			y += sy
		}
	}
	return out
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}

func sign(v int) int {
	switch {
	case v > 0:
		return 1
	case v < 0:
		return -1
	default:
		return 0
	}
}
