package core

// Smoother moves an observed value toward the user's latest target along a
// sin^2 trajectory of a fixed duration. It holds no reference to
// the thing it tunes; World/controller code supplies getter/setter closures
// and threads the smoother through explicitly rather than having it own a
// reference, turning a simple get-set pair into a continuously-interpolated
// one.
type Smoother struct {
	getter func() float64
	setter func(float64)

	trajectoryTime float64

	startValue  float64
	targetValue float64
	elapsed     float64
	active      bool
}

// NewSmoother constructs a Smoother with the given trajectory duration in
// seconds. getter/setter must not be nil.
func NewSmoother(trajectoryTime float64, getter func() float64, setter func(float64)) *Smoother {
	if trajectoryTime <= 0 {
		trajectoryTime = 1
	}
	return &Smoother{
		getter:         getter,
		setter:         setter,
		trajectoryTime: trajectoryTime,
	}
}

// SetTarget starts (or re-roots) a smoothing trajectory toward target,
// starting from whatever the getter currently reports.
func (s *Smoother) SetTarget(target float64) {
	s.startValue = s.getter()
	s.targetValue = target
	s.elapsed = 0
	s.active = true
}

// SetImmediate snaps the underlying value to v without a trajectory and
// cancels any in-flight smoothing.
func (s *Smoother) SetImmediate(v float64) {
	s.active = false
	s.setter(v)
}

// Update advances the smoother by dt seconds, writing the interpolated value
// through the setter. It is a no-op once the trajectory completes.
func (s *Smoother) Update(dt float64) {
	if !s.active {
		return
	}
	s.elapsed += dt
	t := s.elapsed / s.trajectoryTime
	if t >= 1 {
		s.setter(s.targetValue)
		s.active = false
		return
	}
	s.setter(Lerp(s.startValue, s.targetValue, SmoothStep2(t)))
}

// Active reports whether a trajectory is still in flight.
func (s *Smoother) Active() bool { return s.active }

// ParamType enumerates the kinds of tunables a controller façade exposes to
// a host HUD; kept distinct from Go's own reflection so the host never needs
// to import this package's value types.
type ParamType string

const (
	// ParamTypeInt denotes integer-valued parameters.
	ParamTypeInt ParamType = "int"
	// ParamTypeFloat denotes floating-point parameters.
	ParamTypeFloat ParamType = "float"
	// ParamTypeBool denotes boolean parameters.
	ParamTypeBool ParamType = "bool"
)

// Parameter describes a single tunable value exposed by the controller
// façade for host-side display (e.g. an adjustment panel).
type Parameter struct {
	Key         string
	Label       string
	Type        ParamType
	Value       string
	Description string
}

// ParameterGroup clusters related parameters for presentation purposes.
type ParameterGroup struct {
	Name   string
	Params []Parameter
}

// ParameterSnapshot captures the current set of tunables exposed by the
// controller façade.
type ParameterSnapshot struct {
	Groups []ParameterGroup
}
