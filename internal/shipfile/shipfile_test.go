package shipfile

import (
	"bytes"
	"image"
	"image/color"
	"image/png"
	"io"
	"strings"
	"testing"

	"shipbreaker/internal/material"
)

func encodePNG(t *testing.T, img image.Image) []byte {
	t.Helper()
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatalf("encode: %v", err)
	}
	return buf.Bytes()
}

// memOpen serves named byte blobs without touching a real filesystem.
func memOpen(files map[string][]byte) Open {
	return func(name string) (io.Reader, error) {
		b, ok := files[name]
		if !ok {
			return nil, &notFoundError{name}
		}
		return bytes.NewReader(b), nil
	}
}

type notFoundError struct{ name string }

func (e *notFoundError) Error() string { return "not found: " + e.name }

func testDB() *material.Database {
	db := material.NewDatabase()
	db.SetBackground(material.ColorKey{R: 0, G: 0, B: 0})
	db.AddStructural(&material.Material{
		Color:      material.ColorKey{R: 200, G: 0, B: 0},
		Structural: material.Structural{Name: "hull", Mass: 10, Stiffness: 1, Strength: 1},
	})
	db.AddStructural(&material.Material{
		Color:      material.ColorKey{R: 0, G: 200, B: 0},
		Structural: material.Structural{Name: "rope", IsRope: true, Mass: 1, Stiffness: 1, Strength: 1},
	})
	db.AddStructural(&material.Material{
		Color:      material.ColorKey{R: 0, G: 0, B: 200},
		Structural: material.Structural{Name: "switch", Mass: 5, Stiffness: 1, Strength: 1},
	})
	if err := db.AddElectrical(material.ColorKey{R: 0, G: 0, B: 200}, &material.Electrical{Kind: material.ElectricalSwitchPush}); err != nil {
		panic(err)
	}
	return db
}

func TestParseManifestReadsKnownKeys(t *testing.T) {
	src := "structural_layer=hull.png\nname=Tug\nauthor=Ada\noffset_x=1.5\n# comment\nropes_layer=ropes.png\n"
	m, err := ParseManifest(strings.NewReader(src))
	if err != nil {
		t.Fatalf("ParseManifest: %v", err)
	}
	if m.StructuralLayer != "hull.png" || m.Name != "Tug" || m.Author != "Ada" || m.OffsetX != 1.5 || m.RopesLayer != "ropes.png" {
		t.Fatalf("unexpected manifest: %+v", m)
	}
}

func TestDecodeBareStructuralImageSynthesizesName(t *testing.T) {
	img := image.NewRGBA(image.Rect(0, 0, 2, 2))
	files := map[string][]byte{"tug.png": encodePNG(t, img)}

	layers, err := Decode(memOpen(files), "tug.png")
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if layers.Name != "tug" {
		t.Fatalf("expected synthesized name %q, got %q", "tug", layers.Name)
	}
	if layers.Ropes != nil || layers.Electrical != nil {
		t.Fatal("expected no optional layers for a bare structural image")
	}
}

func TestDecodeManifestResolvesLayers(t *testing.T) {
	img := image.NewRGBA(image.Rect(0, 0, 2, 2))
	manifest := "structural_layer=hull.png\nname=Tug\n"
	files := map[string][]byte{
		"ship.manifest": []byte(manifest),
		"hull.png":      encodePNG(t, img),
	}
	layers, err := Decode(memOpen(files), "ship.manifest")
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if layers.Name != "Tug" || layers.Structural == nil {
		t.Fatalf("unexpected layers: %+v", layers)
	}
}

func TestBuildShipImageLooksUpMaterialsAndRejectsUnknownColor(t *testing.T) {
	db := testDB()
	img := image.NewRGBA(image.Rect(0, 0, 2, 1))
	img.Set(0, 0, color.RGBA{R: 200, A: 255})
	img.Set(1, 0, color.RGBA{R: 0, G: 0, B: 0, A: 255}) // background

	shipImg, cells, err := BuildShipImage(Layers{Structural: img}, db)
	if err != nil {
		t.Fatalf("BuildShipImage: %v", err)
	}
	if shipImg.Cell[0] == nil || shipImg.Cell[0].Structural.Name != "hull" {
		t.Fatalf("expected pixel 0 to resolve to hull, got %+v", shipImg.Cell[0])
	}
	if shipImg.Cell[1] != nil {
		t.Fatal("expected background pixel to stay nil")
	}
	if len(cells) != 0 {
		t.Fatalf("expected no electrical cells, got %d", len(cells))
	}

	img.Set(0, 0, color.RGBA{R: 9, G: 9, B: 9, A: 255})
	if _, _, err := BuildShipImage(Layers{Structural: img}, db); err == nil {
		t.Fatal("expected unknown structural color to error")
	}
}

func TestInsertRopesChainsBetweenEndpoints(t *testing.T) {
	db := testDB()
	structural := image.NewRGBA(image.Rect(0, 0, 4, 1))
	structural.Set(0, 0, color.RGBA{R: 200, A: 255})
	structural.Set(3, 0, color.RGBA{R: 200, A: 255})

	ropes := image.NewRGBA(image.Rect(0, 0, 4, 1))
	ropes.Set(0, 0, color.RGBA{R: 0, G: 200, B: 0, A: 255})
	ropes.Set(3, 0, color.RGBA{R: 0, G: 200, B: 0, A: 255})

	shipImg, _, err := BuildShipImage(Layers{Structural: structural, Ropes: ropes}, db)
	if err != nil {
		t.Fatalf("BuildShipImage: %v", err)
	}
	for x := 0; x < 4; x++ {
		if shipImg.Cell[x] == nil || !shipImg.Cell[x].Structural.IsRope {
			t.Fatalf("expected pixel %d to be rope material, got %+v", x, shipImg.Cell[x])
		}
		if !shipImg.IsLeaking[x] {
			t.Fatalf("expected pixel %d marked leaking", x)
		}
	}
}

func TestElectricalLayerDecoratesAndResolvesToIndex(t *testing.T) {
	db := testDB()
	structural := image.NewRGBA(image.Rect(0, 0, 2, 1))
	structural.Set(0, 0, color.RGBA{R: 0, G: 0, B: 200, A: 255}) // switch material
	structural.Set(1, 0, color.RGBA{R: 200, A: 255})             // hull

	electrical := image.NewRGBA(image.Rect(0, 0, 2, 1))
	electrical.Set(0, 0, color.RGBA{R: 0, G: 0, B: 200, A: 255})

	shipImg, cells, err := BuildShipImage(Layers{Structural: structural, Electrical: electrical}, db)
	if err != nil {
		t.Fatalf("BuildShipImage: %v", err)
	}
	if len(cells) != 1 {
		t.Fatalf("expected one electrical cell, got %d", len(cells))
	}

	pixels := Resolve(shipImg, cells)
	if len(pixels) != 1 {
		t.Fatalf("expected one resolved electrical pixel, got %d", len(pixels))
	}
	if pixels[0].Index != 0 {
		t.Fatalf("expected particle index 0 (first non-background pixel), got %d", pixels[0].Index)
	}
	if pixels[0].Kind != material.ElectricalSwitchPush {
		t.Fatalf("expected switch_push kind, got %v", pixels[0].Kind)
	}
}

func TestElectricalLayerOnBackgroundParticleErrors(t *testing.T) {
	db := testDB()
	structural := image.NewRGBA(image.Rect(0, 0, 1, 1)) // all background
	electrical := image.NewRGBA(image.Rect(0, 0, 1, 1))
	electrical.Set(0, 0, color.RGBA{R: 0, G: 0, B: 200, A: 255})

	if _, _, err := BuildShipImage(Layers{Structural: structural, Electrical: electrical}, db); err == nil {
		t.Fatal("expected error for electrical pixel over background particle")
	}
}
