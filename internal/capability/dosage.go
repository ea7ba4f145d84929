package capability

import "fmt"

// Per-kilogram serving factors in milligrams. Conservative on purpose: the
// hint is a starting range, never a recommendation.
var severityFactors = map[string]float64{
	"mild":     0.2,
	"moderate": 0.35,
	"strong":   0.5,
}

const consultNote = "This is general information, not medical advice. Please consult a qualified health professional before starting any CBD routine."

// DosageHint returns a conservative CBD serving range for the given body
// weight and effect strength. Unknown severities fall back to mild.
func DosageHint(weightKg float64, severity string) string {
	if weightKg <= 0 || weightKg > 400 {
		return "A dosage hint needs a body weight between 1 and 400 kg. " + consultNote
	}

	factor, ok := severityFactors[severity]
	if !ok {
		factor = severityFactors["mild"]
		severity = "mild"
	}

	low := weightKg * factor
	high := low * 1.5

	return fmt.Sprintf(
		"For a body weight of %.0f kg and a %s effect, a common starting range is %.0f-%.0f mg of CBD per day, beginning at the low end. %s",
		weightKg, severity, low, high, consultNote,
	)
}
