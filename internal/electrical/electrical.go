// Package electrical models switches, power probes, and lamps as tagged
// variants decorating ship particles, with connectivity-component-based
// power availability.
package electrical

import (
	"shipbreaker/internal/core"
	"shipbreaker/internal/event"
	"shipbreaker/internal/material"
)

// Kind mirrors material.ElectricalKind but as the element-instance tag
// (dispatch on kind rather than per-object virtual calls).
type Kind = material.ElectricalKind

const (
	KindNone           = material.ElectricalNone
	KindSwitchPush     = material.ElectricalSwitchPush
	KindSwitchToggle   = material.ElectricalSwitchToggle
	KindSwitchAutomatic = material.ElectricalSwitchAutomatic
	KindProbeEngine    = material.ElectricalProbeEngine
	KindProbeGenerator = material.ElectricalProbeGenerator
	KindProbeMonitor   = material.ElectricalProbeMonitor
	KindLamp           = material.ElectricalLamp
)

// Element is one electrical decoration on a ship particle.
type Element struct {
	ID       int
	Particle core.ParticleIndex
	Kind     Kind
	State    bool // on/off for switches; powered for probes and lamps
	Enabled  bool // switches can be individually disabled by the host
}

// Network owns every registered Element and the connectivity-component
// power-availability simplification: a component is powered iff it contains
// at least one enabled, on switch or an always-on generator probe.
type Network struct {
	elements []Element
	queue    *event.Queue
	nextID   int

	// componentOf maps a particle to its connected-component id, supplied
	// by the caller (mesh/world track components; electrical only consumes
	// the mapping).
	componentOf func(core.ParticleIndex) int32
}

// New builds an electrical Network. componentOf resolves a particle to its
// connected-component id for power propagation.
func New(queue *event.Queue, componentOf func(core.ParticleIndex) int32) *Network {
	return &Network{queue: queue, componentOf: componentOf}
}

// Register adds a new electrical element for idx, firing the matching
// SwitchCreated/PowerProbeCreated event, and returns its id. The returned id
// is the stable handle; callers that need live state must go through Get,
// Toggle, or SetEnabled rather than holding a pointer, since the backing
// slice can reallocate or compact as elements are added or removed.
func (n *Network) Register(idx core.ParticleIndex, kind Kind) int {
	el := Element{ID: n.nextID, Particle: idx, Kind: kind, Enabled: true}
	n.nextID++
	if kind == material.ElectricalProbeGenerator {
		el.State = true
	}
	n.elements = append(n.elements, el)

	switch {
	case isSwitch(kind):
		n.emit(event.SwitchCreated(el.ID, kindLabel(kind), el.State))
	case isProbe(kind):
		n.emit(event.PowerProbeCreated(el.ID, kindLabel(kind), el.State))
	}
	return el.ID
}

// Get returns a snapshot of the element with the given id.
func (n *Network) Get(id int) (Element, bool) {
	if el := n.find(id); el != nil {
		return *el, true
	}
	return Element{}, false
}

// Unregister removes the element for idx, if any (ship detachment tears
// down its electrical decoration).
func (n *Network) Unregister(idx core.ParticleIndex) {
	for i := range n.elements {
		if n.elements[i].Particle == idx {
			n.elements = append(n.elements[:i], n.elements[i+1:]...)
			return
		}
	}
}

// Toggle flips a switch's on/off state and fires SwitchToggled. No-op for
// non-switch kinds.
func (n *Network) Toggle(id int) {
	el := n.find(id)
	if el == nil || !isSwitch(el.Kind) {
		return
	}
	el.State = !el.State
	n.emit(event.SwitchToggled(id, el.State))
}

// SetEnabled enables or disables a switch without changing its on/off
// state, firing SwitchEnabled.
func (n *Network) SetEnabled(id int, enabled bool) {
	el := n.find(id)
	if el == nil || !isSwitch(el.Kind) {
		return
	}
	el.Enabled = enabled
	n.emit(event.SwitchEnabled(id, enabled))
}

// Update recomputes every probe's and lamp's powered state from its
// connected component's switch/generator state, firing PowerProbeToggled
// when a probe changes (lamps change state without an event).
// Run as part of World's combustion/electrical phase.
func (n *Network) Update() {
	poweredComponents := make(map[int32]bool)
	for _, el := range n.elements {
		if n.componentOf == nil {
			continue
		}
		comp := n.componentOf(el.Particle)
		if isSwitch(el.Kind) && el.Enabled && el.State {
			poweredComponents[comp] = true
		}
		if el.Kind == material.ElectricalProbeGenerator && el.State {
			poweredComponents[comp] = true
		}
	}

	for i := range n.elements {
		el := &n.elements[i]
		isLamp := el.Kind == material.ElectricalLamp
		if !isLamp && (!isProbe(el.Kind) || el.Kind == material.ElectricalProbeGenerator) {
			continue
		}
		comp := int32(0)
		if n.componentOf != nil {
			comp = n.componentOf(el.Particle)
		}
		powered := poweredComponents[comp]
		if powered != el.State {
			el.State = powered
			if !isLamp {
				n.emit(event.PowerProbeToggled(el.ID, powered))
			}
		}
	}
}

// Elements returns the live element list, for rendering and tests.
func (n *Network) Elements() []Element { return n.elements }

func (n *Network) find(id int) *Element {
	for i := range n.elements {
		if n.elements[i].ID == id {
			return &n.elements[i]
		}
	}
	return nil
}

func (n *Network) emit(e event.Event) {
	if n.queue != nil {
		n.queue.Push(e)
	}
}

func isSwitch(k Kind) bool {
	return k == material.ElectricalSwitchPush || k == material.ElectricalSwitchToggle || k == material.ElectricalSwitchAutomatic
}

func isProbe(k Kind) bool {
	return k == material.ElectricalProbeEngine || k == material.ElectricalProbeGenerator || k == material.ElectricalProbeMonitor
}

func kindLabel(k Kind) string {
	switch k {
	case material.ElectricalSwitchPush:
		return "switch_push"
	case material.ElectricalSwitchToggle:
		return "switch_toggle"
	case material.ElectricalSwitchAutomatic:
		return "switch_automatic"
	case material.ElectricalProbeEngine:
		return "probe_engine"
	case material.ElectricalProbeGenerator:
		return "probe_generator"
	case material.ElectricalProbeMonitor:
		return "probe_monitor"
	case material.ElectricalLamp:
		return "lamp"
	default:
		return "none"
	}
}
