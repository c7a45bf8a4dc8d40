package report

import (
	"github.com/KaramelBytes/fluidreport/internal/analysis"
	"github.com/KaramelBytes/fluidreport/internal/chart"
)

// Relationship pairs two measurements with the chart and text that describe
// their scatter relationship in the report.
type Relationship struct {
	Key       string // also the chart image base name
	Heading   string
	Chart     chart.Spec
	Narrative Narrative
	// PageBreakBefore starts the section on a new page.
	PageBreakBefore bool
}

// Image is the file name of the relationship's chart.
func (r Relationship) Image() string { return r.Key + ".png" }

// axis labels
const (
	labelVelocity     = "Fluid Velocity (m/s)"
	labelFlowRate     = "Flow Rate (m³/s)"
	labelPressureDrop = "Pressure Drop (Pa)"
	labelPipeDiameter = "Pipe Diameter (m)"
	labelFluidDensity = "Fluid Density (kg/m³)"
)

var relationships = []Relationship{
	{
		Key:     "flow_rate_vs_velocity",
		Heading: "Flow Rate vs. Fluid Velocity",
		Chart: chart.Spec{
			Title: "Flow Rate vs. Fluid Velocity", XLabel: labelVelocity, YLabel: labelFlowRate,
			X: analysis.Velocity, Y: analysis.FlowRate,
		},
		Narrative: velocityNarrative,
	},
	{
		Key:     "flow_rate_vs_pressure_drop",
		Heading: "Flow Rate vs. Pressure Drop",
		Chart: chart.Spec{
			Title: "Flow Rate vs. Pressure Drop", XLabel: labelPressureDrop, YLabel: labelFlowRate,
			X: analysis.PressureDrop, Y: analysis.FlowRate,
		},
		Narrative: pressureDropNarrative,
	},
	{
		Key:     "pressure_drop_vs_pipe_diam",
		Heading: "Pressure Drop vs. Pipe Diameter",
		Chart: chart.Spec{
			Title: "Pipe Diameter vs. Pressure Drop", XLabel: labelPressureDrop, YLabel: labelPipeDiameter,
			X: analysis.PressureDrop, Y: analysis.PipeDiameter,
		},
		Narrative: pipeDiameterPressureNarrative,
	},
	{
		Key:     "flow_rate_vs_pipe_diam",
		Heading: "Flow Rate vs. Pipe Diameter",
		Chart: chart.Spec{
			Title: "Pipe Diameter vs. Flow Rate", XLabel: labelFlowRate, YLabel: labelPipeDiameter,
			X: analysis.FlowRate, Y: analysis.PipeDiameter,
		},
		Narrative: pipeDiameterFlowNarrative,
	},
	{
		Key:     "pressure_drop_vs_fluid_dens",
		Heading: "Pressure Drop vs. Fluid Density",
		Chart: chart.Spec{
			Title: "Fluid Density vs. Pressure Drop", XLabel: labelPressureDrop, YLabel: labelFluidDensity,
			X: analysis.PressureDrop, Y: analysis.FluidDensity,
		},
		Narrative:       densityNarrative,
		PageBreakBefore: true,
	},
}

// Relationships returns the report's relationships in section order.
func Relationships() []Relationship {
	out := make([]Relationship, len(relationships))
	copy(out, relationships)
	return out
}

// SectionCount is the number of top-level sections every composed report has.
func SectionCount() int {
	// metadata, then title and introduction, then statistics heading and table
	n := 4
	n += 2 + len(introduction)
	n += 2
	for _, r := range relationships {
		// heading, "Plot:", image, law, equation, derivation
		n += 6 + len(r.Narrative.Discussion)
		if r.PageBreakBefore {
			n++
		}
	}
	n += 2 * len(closing)
	return n
}
