package ai

import (
	"encoding/json"
	"fmt"
	"strings"
)

// parseVerdict turns raw model output into a Verdict. Code fences are
// stripped and each field is coerced individually so one malformed field
// does not invalidate the rest of the response.
func parseVerdict(text string) (*Verdict, error) {
	text = stripCodeFences(text)

	var raw map[string]interface{}
	if err := json.Unmarshal([]byte(text), &raw); err != nil {
		return nil, fmt.Errorf("response is not valid JSON: %w", err)
	}

	return &Verdict{
		IsCrash:           asBool(raw["is_crash"], false),
		Confidence:        asFloat(raw["confidence"], 0.5),
		Severity:          asString(raw["severity"], "low"),
		CrashType:         asString(raw["crash_type"], "unknown"),
		Reasoning:         asString(raw["reasoning"], "Analysis completed"),
		KeyIndicators:     asStringSlice(raw["key_indicators"]),
		FalsePositiveRisk: asFloat(raw["false_positive_risk"], 0.5),
	}, nil
}

func stripCodeFences(text string) string {
	text = strings.TrimSpace(text)
	if strings.Contains(text, "```json") {
		parts := strings.SplitN(text, "```json", 2)
		text = strings.SplitN(parts[1], "```", 2)[0]
	} else if strings.Contains(text, "```") {
		parts := strings.SplitN(text, "```", 3)
		if len(parts) >= 2 {
			text = parts[1]
		}
	}
	return strings.TrimSpace(text)
}

func asBool(v interface{}, def bool) bool {
	if b, ok := v.(bool); ok {
		return b
	}
	return def
}

func asFloat(v interface{}, def float64) float64 {
	if f, ok := v.(float64); ok {
		return f
	}
	return def
}

func asString(v interface{}, def string) string {
	if s, ok := v.(string); ok && s != "" {
		return s
	}
	return def
}

func asStringSlice(v interface{}) []string {
	items, ok := v.([]interface{})
	if !ok {
		return []string{}
	}
	out := make([]string, 0, len(items))
	for _, item := range items {
		if s, ok := item.(string); ok {
			out = append(out, s)
		}
	}
	return out
}
