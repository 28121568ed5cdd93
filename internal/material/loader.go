package material

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"
)

// LoadStructuralText parses a structural material database: a sequence of
// "[#RRGGBB]" headers each followed by "key=value" lines, until the next
// header or EOF. Unknown keys are ignored and malformed values fall back to
// their zero value: a tolerant key/value parse rather than a strict one,
// since the format is plain text with no schema to validate against.
func LoadStructuralText(r io.Reader) (*Database, error) {
	db := NewDatabase()
	sc := bufio.NewScanner(r)

	var cur *Structural
	var curColor ColorKey
	var haveCur bool

	flush := func() {
		if haveCur {
			db.AddStructural(&Material{Color: curColor, Structural: *cur})
		}
	}

	lineNo := 0
	for sc.Scan() {
		lineNo++
		line := strings.TrimSpace(sc.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		if strings.HasPrefix(line, "[") {
			flush()
			color, name, err := parseHeader(line)
			if err != nil {
				return nil, fmt.Errorf("line %d: %w", lineNo, err)
			}
			curColor = color
			cur = &Structural{Name: name}
			haveCur = true
			continue
		}
		if !haveCur {
			return nil, fmt.Errorf("line %d: %w: record before any [#color] header", lineNo, ErrMalformedRecord)
		}
		key, value, ok := strings.Cut(line, "=")
		if !ok {
			continue
		}
		applyStructuralField(cur, strings.TrimSpace(key), strings.TrimSpace(value))
		if key == "is_background" && strings.EqualFold(value, "true") {
			db.SetBackground(curColor)
		}
	}
	flush()
	if err := sc.Err(); err != nil {
		return nil, err
	}
	return db, nil
}

// LoadElectricalText parses an electrical database with the same "[#color]"
// + "key=value" shape, decorating materials already present in db.
func LoadElectricalText(r io.Reader, db *Database) error {
	sc := bufio.NewScanner(r)

	var cur *Electrical
	var curColor ColorKey
	var haveCur bool

	flush := func() error {
		if haveCur {
			return db.AddElectrical(curColor, cur)
		}
		return nil
	}

	lineNo := 0
	for sc.Scan() {
		lineNo++
		line := strings.TrimSpace(sc.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		if strings.HasPrefix(line, "[") {
			if err := flush(); err != nil {
				return fmt.Errorf("line %d: %w", lineNo, err)
			}
			color, _, err := parseHeader(line)
			if err != nil {
				return fmt.Errorf("line %d: %w", lineNo, err)
			}
			curColor = color
			cur = &Electrical{}
			haveCur = true
			continue
		}
		if !haveCur {
			return fmt.Errorf("line %d: %w: record before any [#color] header", lineNo, ErrMalformedRecord)
		}
		key, value, ok := strings.Cut(line, "=")
		if !ok {
			continue
		}
		applyElectricalField(cur, strings.TrimSpace(key), strings.TrimSpace(value))
	}
	if err := flush(); err != nil {
		return err
	}
	return sc.Err()
}

func parseHeader(line string) (ColorKey, string, error) {
	line = strings.TrimSuffix(strings.TrimPrefix(line, "["), "]")
	hex, name, _ := strings.Cut(line, " ")
	hex = strings.TrimPrefix(hex, "#")
	if len(hex) != 6 {
		return ColorKey{}, "", fmt.Errorf("%w: bad color header %q", ErrMalformedRecord, line)
	}
	v, err := strconv.ParseUint(hex, 16, 32)
	if err != nil {
		return ColorKey{}, "", fmt.Errorf("%w: bad color header %q: %v", ErrMalformedRecord, line, err)
	}
	return ColorKey{R: uint8(v >> 16), G: uint8(v >> 8), B: uint8(v)}, strings.TrimSpace(name), nil
}

func applyStructuralField(s *Structural, key, value string) {
	switch key {
	case "mass":
		s.Mass = parseFloatOr(value, s.Mass)
	case "stiffness":
		s.Stiffness = parseFloatOr(value, s.Stiffness)
	case "strength":
		s.Strength = parseFloatOr(value, s.Strength)
	case "is_hull":
		s.IsHull = parseBoolOr(value, s.IsHull)
	case "is_rope":
		s.IsRope = parseBoolOr(value, s.IsRope)
	case "water_volume_fill":
		s.WaterVolumeFill = parseFloatOr(value, s.WaterVolumeFill)
	case "water_intake":
		s.WaterIntake = parseFloatOr(value, s.WaterIntake)
	case "water_retention":
		s.WaterRetention = parseFloatOr(value, s.WaterRetention)
	case "water_diffusion_speed":
		s.WaterDiffusionSpeed = parseFloatOr(value, s.WaterDiffusionSpeed)
	case "wind_receptivity":
		s.WindReceptivity = parseFloatOr(value, s.WindReceptivity)
	case "rust_receptivity":
		s.RustReceptivity = parseFloatOr(value, s.RustReceptivity)
	case "heat_capacity":
		s.HeatCapacity = parseFloatOr(value, s.HeatCapacity)
	case "ignition_temperature":
		s.IgnitionTemperature = parseFloatOr(value, s.IgnitionTemperature)
	case "combustion_heat":
		s.CombustionHeat = parseFloatOr(value, s.CombustionHeat)
	}
}

func applyElectricalField(e *Electrical, key, value string) {
	switch key {
	case "kind":
		switch value {
		case "switch_push":
			e.Kind = ElectricalSwitchPush
		case "switch_toggle":
			e.Kind = ElectricalSwitchToggle
		case "switch_automatic":
			e.Kind = ElectricalSwitchAutomatic
		case "probe_engine":
			e.Kind = ElectricalProbeEngine
		case "probe_generator":
			e.Kind = ElectricalProbeGenerator
			e.IsSelfPowered = true
		case "probe_monitor":
			e.Kind = ElectricalProbeMonitor
		case "lamp":
			e.Kind = ElectricalLamp
		}
	case "luminiscence_zero":
		e.LuminiscenceAtZeroPower = parseFloatOr(value, e.LuminiscenceAtZeroPower)
	case "luminiscence_full":
		e.LuminiscenceAtFullPower = parseFloatOr(value, e.LuminiscenceAtFullPower)
	}
}

func parseFloatOr(s string, fallback float64) float64 {
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return fallback
	}
	return v
}

func parseBoolOr(s string, fallback bool) bool {
	v, err := strconv.ParseBool(s)
	if err != nil {
		return fallback
	}
	return v
}
