package report

// Narrative is the fixed explanatory text of one relationship section.
type Narrative struct {
	Law        string // lead-in naming the governing relation
	Equation   string // rendered centered on its own line
	Derivation string
	Discussion []string
}

const (
	ReportTitle = "Fluid Dynamics Experiment Report"

	headingIntroduction    = "Introduction"
	headingSummary         = "Summary Statistics"
	headingAnalysis        = "Analysis"
	headingConclusion      = "Conclusion"
	headingRecommendations = "Recommendations"

	plotLabel = "Plot:"
)

var introduction = []string{
	"In fluid dynamics, understanding the behavior of fluids in motion is essential for designing and optimizing systems such as pipelines, pumps, and valves in various engineering applications. Collecting data on key parameters enables engineers to predict fluid behavior, optimize system performance, and troubleshoot inefficiencies.",
	"Flow rate (Q), the volume of fluid passing through a pipe per unit of time, is crucial for determining system capacity and efficiency, as it directly influences parameters like pressure drop and velocity. Pipe diameter (D), the internal width of the pipe, significantly affects both flow rate and fluid velocity, with larger diameters reducing resistance and enabling higher flow rates. Fluid velocity (v), the speed at which the fluid moves, is important for maintaining desired flow regimes and preventing issues like erosion or blockages. Pressure drop (ΔP), the difference in pressure between two points in a pipe, reflects the resistance to fluid flow and helps identify energy losses, ensuring efficient system performance. Finally, fluid density (ρ), the mass of fluid per unit volume, influences how fluids behave under various conditions, with denser fluids generating higher pressure drops and requiring more energy to pump. Collecting data on these variables allows engineers to design more efficient, reliable, and safe fluid transport systems while minimizing energy consumption and operational costs.",
}

var (
	velocityNarrative = Narrative{
		Law:        "For a given flow pipe diameter, flow rate (Q) is related to velocity (v) by the equation:",
		Equation:   "Q = v * π * D^2 / 4",
		Derivation: "where A is the cross-sectional area of the pipe and D is the pipe diameter. The expected behavior is that flow rate increases linearly with fluid velocity. As the diameter changes, this linear relationship still holds and the slope will vary depending on the pipe's size.",
		Discussion: []string{
			"This relationship implies that, for a given pipe diameter, the flow rate will increase linearly with velocity. However, real-world factors such as turbulence, flow regime changes, and pipe roughness can affect this proportionality. For instance, at higher velocities, turbulence could disrupt the smooth flow, leading to non-linear increases in flow rate. Thus, deviations from this expected relationship might occur, especially in systems operating at high Reynolds numbers (indicative of turbulent flow).",
			"During experimentation, it’s important to monitor the Reynolds number and flow regime (laminar or turbulent), as this can influence the linearity of the flow rate-velocity relationship. In turbulent flow, additional losses and irregularities in the velocity profile may cause the flow rate to increase more slowly than expected as velocity increases.",
		},
	}

	pressureDropNarrative = Narrative{
		Law:        "The pressure drop along a pipe is governed by the Darcy-Weisbach equation:",
		Equation:   "ΔP = f * L/D * ρv^2/2",
		Derivation: "where f is the fanning friction factor which depends on flow regime and pipe roughness, L is the pipe length, ρ is fluid density, and v is fluid velocity. For turbulent flow (Re > 4000), pressure drop should increase quadratically with velocity and hence with flow rate. For laminar flow (Re < 2000), the relationship is linear.",
		Discussion: []string{
			"Since velocity (v) and flow rate (Q) are related, the pressure drop is expected to increase quadratically with flow rate in turbulent conditions (due to the v^2 term). In laminar flow, the relationship between pressure drop and flow rate is linear. However, real systems may experience variations in pipe friction factor (f), influenced by factors such as roughness, fouling, or changes in flow regime, which can cause deviations from the predicted relationship.",
			"Observing the pressure drop across different flow rates helps identify whether the system is operating in laminar or turbulent flow regimes. If the pressure drop does not follow the expected quadratic relationship in turbulent flow, it may indicate additional frictional losses or changes in pipe surface conditions that should be investigated.",
		},
	}

	pipeDiameterPressureNarrative = Narrative{
		Law:        "From the Darcy-Weisbach equation, pressure drop ΔP is inversely proportional to the pipe diameter:",
		Equation:   "ΔP ∝ 1/D^5",
		Derivation: "The expected behavior from this relationship is that as the pipe diameter increases, the pressure drop decreases significantly. This is due to the larger cross-sectional area reducing the resistance to flow.",
		Discussion: []string{
			"Accurate measurements of pipe diameter are critical, as small errors can disproportionately affect the pressure drop data. Additionally, bends or elbows in the piping system can introduce pressure losses that are not accounted for by simple diameter changes. These factors should be considered in experiments to align the results more closely with theoretical expectations.",
		},
	}

	pipeDiameterFlowNarrative = Narrative{
		Law:        "For a given velocity, flow rate is proportional to the square of the diameter:",
		Equation:   "Q ∝ D^2",
		Derivation: "A larger pipe diameter allows more fluid to pass through, increasing the flow rate. This is a strong dependency, so even a small increase in diameter can significantly raise flow rate. In real systems, this relationship may be affected by factors such as the flow regime, pipe fittings, and changes in fluid properties (such as density or viscosity) that could alter the velocity profile within the pipe.",
		Discussion: []string{
			"In experimentation, deviations from the expected relationship could indicate changes in flow velocity that are not proportional to diameter or the presence of turbulent effects that disrupt the smooth relationship. Additionally, care should be taken to ensure that measurements of diameter are accurate, as even slight errors can lead to significant changes in flow rate predictions.",
		},
	}

	densityNarrative = Narrative{
		Law:        "In the Darcy-Weisbach equation, pressure drop is directly proportional to fluid density:",
		Equation:   "ΔP ∝ ρ",
		Derivation: "This implies that denser fluids experience greater resistance to flow, resulting in a higher pressure drop for the same velocity. In real-world systems, fluctuations in temperature or the composition of the fluid can alter its density, leading to variations in pressure drop that may not be predicted by simple models.",
		Discussion: []string{
			"In experiments, changes in temperature or composition (e.g., the introduction of impurities) can affect fluid density, causing the actual pressure drop to deviate from theoretical predictions. Monitoring and controlling fluid properties, such as temperature, can help ensure that the relationship between density and pressure drop remains consistent and predictable.",
		},
	}
)

const analysisText = "Discrepancies between the expected and actual results in fluid dynamics experiments can arise due to several factors. One common source of deviation is the assumption of ideal conditions, such as smooth pipe surfaces and fully developed flow, which may not hold true in real-world systems. Pipe roughness or fouling can increase resistance, leading to a higher-than-expected pressure drop for a given flow rate. Similarly, turbulence and other flow irregularities, especially at higher velocities, can cause deviations from theoretical relationships, as ideal models often assume laminar or steady flow. Inaccuracies in measuring variables like pipe diameter or fluid velocity can also introduce errors, particularly in calculating flow rates and pressure drops. Variations in fluid properties, such as non-constant density due to temperature changes, can further skew the results. Additionally, real systems may experience leaks or energy losses that are not accounted for in theoretical models, resulting in discrepancies between expected and measured outcomes. These factors highlight the importance of accounting for practical considerations and measurement errors when interpreting experimental data in fluid dynamics."

const conclusionText = "Based on the expected relationships between the collected variables in this fluid dynamics experiment, several conclusions can be drawn. The data is likely to show that flow rate (Q) increases with fluid velocity (v), especially for a constant pipe diameter, due to the direct relationship between these two variables. As pipe diameter increases, both flow rate and velocity are expected to increase, reflecting the greater cross-sectional area available for fluid flow. The pressure drop (ΔP) is expected to decrease with increasing pipe diameter, as larger diameters reduce flow resistance, while it should increase with higher flow rates and velocities due to greater frictional losses within the pipe. Additionally, denser fluids will likely produce higher pressure drops under the same flow conditions, indicating the influence of fluid density (ρ) on system resistance. These relationships will validate fluid dynamic principles like the Darcy-Weisbach equation and allow for system optimization by carefully balancing flow rate, pipe diameter, and pressure drop. Understanding these interdependencies is critical for designing fluid transport systems that operate efficiently, safely, and cost-effectively."

const recommendationsText = "To improve data collection and reduce discrepancies in the experiment, several recommendations can be implemented. First, ensuring precise measurement instruments for flow rate, velocity, pressure drop, and pipe diameter is crucial for minimizing errors. Using calibrated sensors and regularly maintaining equipment will help achieve more accurate results. Minimizing pipe roughness and ensuring that the fluid flows through clean, well-maintained pipes can reduce resistance variations, leading to more consistent pressure drop measurements. Another recommendation is to control environmental factors, such as temperature, which can affect fluid density and viscosity, introducing variability into the results. Employing more frequent sampling and using automated data logging systems can capture more detailed variations over time, helping to identify outliers and patterns more effectively. Finally, conducting multiple trials under the same conditions and averaging the results can reduce the impact of random measurement errors and improve the reliability of the data. For future steps, further experimentation could explore how flow regime transitions, such as from laminar to turbulent flow, affect the relationships between variables. Introducing controlled variations in fluid properties, such as changing the fluid's temperature or composition, could help refine the understanding of how fluid density influences pressure drop and flow rate. Additionally, future experiments could investigate the impact of pipe length and roughness on system performance to better model real-world applications. Incorporating computational fluid dynamics (CFD) simulations alongside physical experiments could also provide deeper insights by allowing for virtual exploration of complex flow conditions that are difficult to replicate in the lab. By combining these approaches, future work can improve the accuracy of predictions and further optimize fluid transport system design."

// closing holds the fixed sections that end every report.
var closing = []struct{ Heading, Text string }{
	{headingAnalysis, analysisText},
	{headingConclusion, conclusionText},
	{headingRecommendations, recommendationsText},
}
