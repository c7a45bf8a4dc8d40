package analysis

import (
	"regexp"
	"strings"
)

// Field identifies one of the measurement columns every dataset must carry.
type Field int

const (
	Velocity Field = iota
	FlowRate
	PressureDrop
	PipeDiameter
	FluidDensity
)

// RequiredFields lists the measurement columns in header order of the lab template.
var RequiredFields = []Field{Velocity, FlowRate, PressureDrop, PipeDiameter, FluidDensity}

type fieldInfo struct {
	label     string
	canonical string
	names     []string
}

var fieldTable = map[Field]fieldInfo{
	Velocity:     {label: "velocity", canonical: "Fluid Velocity (v) [m/s]", names: []string{"fluid velocity", "velocity"}},
	FlowRate:     {label: "flow rate", canonical: "Flow Rate (Q) [m^3/s]", names: []string{"flow rate"}},
	PressureDrop: {label: "pressure drop", canonical: "Pressure Drop (ΔP) [Pa]", names: []string{"pressure drop"}},
	PipeDiameter: {label: "pipe diameter", canonical: "Pipe Diameter (D) [m]", names: []string{"pipe diameter"}},
	FluidDensity: {label: "fluid density", canonical: "Fluid Density (ρ) [kg/m^3]", names: []string{"fluid density", "density"}},
}

// String returns the lower-case measurement name, e.g. "flow rate".
func (f Field) String() string {
	if fi, ok := fieldTable[f]; ok {
		return fi.label
	}
	return "unknown"
}

// Header returns the header text used by the lab's CSV template.
func (f Field) Header() string { return fieldTable[f].canonical }

// matches reports whether a parsed header names this field. The canonical
// header wins outright; otherwise the unit-stripped base name is compared.
func (f Field) matches(header, base string) bool {
	fi, ok := fieldTable[f]
	if !ok {
		return false
	}
	if header == fi.canonical {
		return true
	}
	b := strings.ToLower(strings.TrimSpace(base))
	for _, n := range fi.names {
		if b == n {
			return true
		}
	}
	return false
}

var unitPatterns = []*regexp.Regexp{
	regexp.MustCompile(`^(.*)\s*\(([^)]+)\)\s*$`),  // e.g., Fluid Velocity (v)
	regexp.MustCompile(`^(.*)\s*\[([^\]]+)\]\s*$`), // e.g., Pipe Diameter [m]
}

func splitSuffix(name string) (clean string, suffix string) {
	s := strings.TrimSpace(name)
	for _, re := range unitPatterns {
		if m := re.FindStringSubmatch(s); len(m) >= 3 {
			base := strings.TrimSpace(m[1])
			u := strings.TrimSpace(m[2])
			if base != "" && u != "" {
				return base, u
			}
		}
	}
	return s, ""
}

// splitHeader breaks "Fluid Velocity (v) [m/s]" into base "Fluid Velocity",
// symbol "v" and unit "m/s". Either suffix may be missing.
func splitHeader(header string) (base, symbol, unit string) {
	base, unit = splitSuffix(header)
	if unit == "" {
		return base, "", ""
	}
	if strings.HasSuffix(strings.TrimSpace(header), ")") {
		// only a parenthesised suffix: treat it as the unit
		return base, "", unit
	}
	base, symbol = splitSuffix(base)
	return base, symbol, unit
}
