package material

import "strings"

func exampleStructuralText() string {
	return strings.Join([]string{
		"[#000000 background]",
		"is_background=true",
		"",
		"[#8A8A8A hull]",
		"mass=100",
		"stiffness=0.6",
		"strength=30",
		"is_hull=true",
		"heat_capacity=1500",
		"ignition_temperature=473",
		"",
		"[#A85C32 rope]",
		"mass=10",
		"stiffness=0.1",
		"strength=10",
		"is_rope=true",
		"water_intake=0.05",
	}, "\n")
}
