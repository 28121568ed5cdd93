// Package material holds the immutable, process-wide catalog of structural
// and electrical material kinds. A Database is built once at
// ship-load time and shared freely across goroutines without locking, since
// nothing mutates it afterward.
package material

import "image/color"

// ColorKey is the opaque color-like identifier materials and ship layers are
// keyed by. Alpha is ignored: two pixels that differ only in alpha refer to
// the same material.
type ColorKey struct {
	R, G, B uint8
}

// KeyFromColor extracts the ColorKey of an arbitrary color.Color.
func KeyFromColor(c color.Color) ColorKey {
	r, g, b, _ := c.RGBA()
	return ColorKey{R: uint8(r >> 8), G: uint8(g >> 8), B: uint8(b >> 8)}
}

// ElectricalKind enumerates the electrical element kinds a material can
// decorate a particle with. Dispatch goes by tag switch rather than
// per-kind interface implementations.
type ElectricalKind uint8

const (
	// ElectricalNone means the material carries no electrical behavior.
	ElectricalNone ElectricalKind = iota
	ElectricalSwitchPush
	ElectricalSwitchToggle
	ElectricalSwitchAutomatic
	ElectricalProbeEngine
	ElectricalProbeGenerator
	ElectricalProbeMonitor
	ElectricalLamp
)

// Electrical holds the parameters of an electrical material. Only the fields
// relevant to Kind are meaningful; unused fields are zero.
type Electrical struct {
	Kind ElectricalKind

	// LuminiscenceAtZeroPower/LuminiscenceAtFullPower describe a lamp's glow
	// as a function of local power availability: the enabled-switch
	// reachability of the element's connected component, not a solved
	// circuit.
	LuminiscenceAtZeroPower float64
	LuminiscenceAtFullPower float64

	// IsSelfPowered marks generator-kind probes, which are always "powered".
	IsSelfPowered bool
}

// Structural holds the mechanical/thermal/fluid attributes of a structural
// material.
type Structural struct {
	Name string

	Mass      float64
	Stiffness float64
	Strength  float64
	IsHull    bool

	WaterVolumeFill     float64
	WaterIntake         float64
	WaterRetention      float64
	WaterDiffusionSpeed float64

	WindReceptivity float64
	RustReceptivity float64

	HeatCapacity       float64
	IgnitionTemperature float64
	// CombustionHeat is the heat (in joules) a burning particle of this
	// material deposits into each neighbor per tick.
	CombustionHeat float64

	RenderColor color.RGBA

	// IsRope marks the rope material; the database must contain at least one.
	IsRope bool
}

// Material pairs a color key with the structural attributes it always
// carries and the electrical attributes it may optionally carry.
type Material struct {
	Color      ColorKey
	Structural Structural
	Electrical *Electrical // nil when the material has no electrical kind
}

// HasElectrical reports whether m carries electrical behavior.
func (m *Material) HasElectrical() bool {
	return m.Electrical != nil && m.Electrical.Kind != ElectricalNone
}
