package ai

import (
	"fmt"
	"math"
	"strings"
	"time"
)

const gravity = 9.81

// maxPromptReadings caps how many context readings go into the prompt
const maxPromptReadings = 10

// GForce converts a raw acceleration vector into G units
func GForce(ax, ay, az float64) float64 {
	return math.Sqrt(ax*ax+ay*ay+az*az) / gravity
}

// buildPrompt formats the sensor context, crash history and instructions
// into the classification prompt. The model is asked for strict JSON.
func buildPrompt(in AnalysisInput) string {
	var b strings.Builder

	b.WriteString("You are analyzing sensor data from a motorcycle helmet crash detection system.\n")
	b.WriteString("A threshold alert was triggered (G-force or tilt exceeded limits).\n\n")

	b.WriteString("=== SENSOR DATA CONTEXT ===\n")
	if len(in.Readings) > 0 {
		readings := in.Readings
		if len(readings) > maxPromptReadings {
			readings = readings[len(readings)-maxPromptReadings:]
		}
		fmt.Fprintf(&b, "\nRecent sensor readings (last %d of %d, covering up to %d seconds):\n",
			len(readings), len(in.Readings), in.ContextSeconds)
		for _, r := range readings {
			fmt.Fprintf(&b, "  - Time: %s, Accel: (%.2f, %.2f, %.2f), Tilt: roll=%.1f°, pitch=%.1f°\n",
				r.Timestamp.Format(time.RFC3339), r.AX, r.AY, r.AZ, r.Roll, r.Pitch)
		}
	} else {
		b.WriteString("\nNo recent sensor readings available.\n")
	}

	if len(in.History) > 0 {
		fmt.Fprintf(&b, "\nRecent crash events for this device (%d):\n", len(in.History))
		for _, h := range in.History {
			fmt.Fprintf(&b, "  - Time: %s, confirmed=%t, severity=%s, type=%s, confidence=%.2f, max_g=%.2f\n",
				h.CrashTimestamp.Format(time.RFC3339), h.IsConfirmedCrash, h.Severity,
				h.CrashType, h.ConfidenceScore, h.MaxGForce)
		}
	}

	cur := in.Current
	b.WriteString("\n=== CURRENT READING (ALERT TRIGGER) ===\n")
	fmt.Fprintf(&b, "Acceleration: (%.2f, %.2f, %.2f)\n", cur.AX, cur.AY, cur.AZ)
	fmt.Fprintf(&b, "Tilt: roll=%.1f°, pitch=%.1f°\n", cur.Roll, cur.Pitch)
	fmt.Fprintf(&b, "Tilt detected: %t\n", cur.TiltDetected)
	fmt.Fprintf(&b, "Calculated G-force: %.2fg\n", GForce(cur.AX, cur.AY, cur.AZ))

	b.WriteString(`
Analyze this data and determine if this represents an actual crash event or a false positive (e.g., sudden braking, helmet removal, normal riding).

Respond with a JSON object containing:
{
    "is_crash": boolean,
    "confidence": float (0.0 to 1.0),
    "severity": "low" | "medium" | "high",
    "crash_type": string (e.g., "frontal_impact", "side_impact", "fall", "false_positive"),
    "reasoning": string (brief explanation),
    "key_indicators": array of strings (e.g., ["high_g_force", "sudden_tilt", "sustained_acceleration"]),
    "false_positive_risk": float (0.0 to 1.0)
}

Important considerations:
- High G-force alone might be sudden braking (false positive)
- Sustained tilt might indicate actual crash or helmet removal
- A device that just produced a confirmed crash may still be mid-incident
- Look at the pattern over time, not just the current reading
- Consider motorcycle riding context (acceleration, braking, cornering)

Respond with ONLY the JSON object, no additional text.`)

	return b.String()
}
