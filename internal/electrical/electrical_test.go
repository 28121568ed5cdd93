package electrical

import (
	"testing"

	"shipbreaker/internal/core"
	"shipbreaker/internal/event"
	"shipbreaker/internal/material"
)

func TestToggleSwitchFiresEvent(t *testing.T) {
	var q event.Queue
	n := New(&q, func(core.ParticleIndex) int32 { return 0 })
	id := n.Register(0, material.ElectricalSwitchToggle)

	n.Toggle(id)
	sw, ok := n.Get(id)
	if !ok || !sw.State {
		t.Fatal("expected switch to turn on after toggle")
	}
}

func TestProbePowersWhenComponentHasEnabledSwitch(t *testing.T) {
	var q event.Queue
	comp := map[core.ParticleIndex]int32{0: 1, 1: 1}
	n := New(&q, func(idx core.ParticleIndex) int32 { return comp[idx] })
	swID := n.Register(0, material.ElectricalSwitchToggle)
	probeID := n.Register(1, material.ElectricalProbeMonitor)

	n.Update()
	if probe, _ := n.Get(probeID); probe.State {
		t.Fatal("expected probe unpowered before switch is on")
	}

	n.Toggle(swID)
	n.Update()
	if probe, _ := n.Get(probeID); !probe.State {
		t.Fatal("expected probe powered once its component has an enabled switch")
	}
}

func TestDisablingSwitchRemovesPower(t *testing.T) {
	var q event.Queue
	n := New(&q, func(core.ParticleIndex) int32 { return 1 })
	swID := n.Register(0, material.ElectricalSwitchToggle)
	probeID := n.Register(1, material.ElectricalProbeMonitor)

	n.Toggle(swID)
	n.Update()
	if probe, _ := n.Get(probeID); !probe.State {
		t.Fatal("expected probe powered")
	}

	n.SetEnabled(swID, false)
	n.Update()
	if probe, _ := n.Get(probeID); probe.State {
		t.Fatal("expected probe unpowered once switch is disabled")
	}
}
