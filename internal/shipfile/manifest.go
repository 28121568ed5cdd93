package shipfile

import (
	"bufio"
	"io"
	"strconv"
	"strings"
)

// Manifest is a ship definition's textual key/value pointer file: layer
// paths plus the metadata named in spec.md §6. Every field is optional
// except StructuralLayer; Decode returns an error for a manifest missing it
// (the bare-structural-image path applies only to PNG content).
type Manifest struct {
	StructuralLayer string
	RopesLayer      string
	ElectricalLayer string
	TextureLayer    string

	Name    string
	Author  string
	OffsetX float64
	OffsetY float64
}

// ParseManifest reads "key=value" lines, tolerant of blank lines and "#"
// comments, the same style as internal/material's text database loader.
// Unknown keys are ignored.
func ParseManifest(r io.Reader) (Manifest, error) {
	var m Manifest
	sc := bufio.NewScanner(r)
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		key, value, ok := strings.Cut(line, "=")
		if !ok {
			continue
		}
		key, value = strings.TrimSpace(key), strings.TrimSpace(value)
		switch key {
		case "structural_layer":
			m.StructuralLayer = value
		case "ropes_layer":
			m.RopesLayer = value
		case "electrical_layer":
			m.ElectricalLayer = value
		case "texture_layer":
			m.TextureLayer = value
		case "name":
			m.Name = value
		case "author":
			m.Author = value
		case "offset_x":
			m.OffsetX, _ = strconv.ParseFloat(value, 64)
		case "offset_y":
			m.OffsetY, _ = strconv.ParseFloat(value, 64)
		}
	}
	if err := sc.Err(); err != nil {
		return Manifest{}, err
	}
	return m, nil
}
