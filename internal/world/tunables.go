package world

// The accessors below expose the Config fields the controller façade's
// parameter smoothers drive as live getter/setter pairs, since Config itself
// is unexported: a Smoother closes over a plain float64 get/set pair and
// controller lives in a different package.

// EphemeralMaxLifetime is the default lifetime new controller-spawned
// ephemerals (debris, bubbles) should use, matching whatever the ship's
// Config was built with.
func (w *World) EphemeralMaxLifetime() float64 { return w.cfg.EphemeralMaxLifetime }

func (w *World) OceanRestHeight() float64     { return w.cfg.OceanRestHeight }
func (w *World) SetOceanRestHeight(v float64) { w.cfg.OceanRestHeight = v }

// OceanFloorBumpiness/OceanFloorDetailAmplification are rendered as wind-
// ripple amplitude and spatial frequency respectively, this engine having no
// separate floor-depth field distinct from the surface height Surface
// already tracks.
func (w *World) OceanFloorBumpiness() float64     { return w.cfg.Ocean.WindMagnitude }
func (w *World) SetOceanFloorBumpiness(v float64) { w.cfg.Ocean.WindMagnitude = v }

func (w *World) OceanFloorDetailAmplification() float64     { return w.cfg.Ocean.RippleSpatialFrequency }
func (w *World) SetOceanFloorDetailAmplification(v float64) { w.cfg.Ocean.RippleSpatialFrequency = v }

func (w *World) FlameSizeAdjust() float64     { return w.cfg.Combustion.TemperatureAdjust }
func (w *World) SetFlameSizeAdjust(v float64) { w.cfg.Combustion.TemperatureAdjust = v }

// SpringStiffnessAdjust/SpringStrengthAdjust read/write through to the mesh's
// live coefficient constants, recomputing every spring's derived
// coefficients on write the same way mass augmentation does.
func (w *World) SpringStiffnessAdjust() float64 { return w.mesh.CoefficientParams().StiffnessAdjust }

func (w *World) SetSpringStiffnessAdjust(v float64) {
	c := w.mesh.CoefficientParams()
	c.StiffnessAdjust = v
	w.mesh.SetCoefficientParams(c)
}

func (w *World) SpringStrengthAdjust() float64 { return w.mesh.CoefficientParams().StrengthAdjust }

func (w *World) SetSpringStrengthAdjust(v float64) {
	c := w.mesh.CoefficientParams()
	c.StrengthAdjust = v
	w.mesh.SetCoefficientParams(c)
}
