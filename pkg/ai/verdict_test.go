package ai

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseVerdictFullResponse(t *testing.T) {
	text := `{
		"is_crash": true,
		"confidence": 0.92,
		"severity": "high",
		"crash_type": "frontal_impact",
		"reasoning": "Sustained high G-force with tilt",
		"key_indicators": ["high_g_force", "sudden_tilt"],
		"false_positive_risk": 0.05
	}`

	verdict, err := parseVerdict(text)
	require.NoError(t, err)
	assert.True(t, verdict.IsCrash)
	assert.Equal(t, 0.92, verdict.Confidence)
	assert.Equal(t, "high", verdict.Severity)
	assert.Equal(t, "frontal_impact", verdict.CrashType)
	assert.Equal(t, []string{"high_g_force", "sudden_tilt"}, verdict.KeyIndicators)
	assert.Equal(t, 0.05, verdict.FalsePositiveRisk)
}

func TestParseVerdictStripsJSONCodeFence(t *testing.T) {
	text := "```json\n{\"is_crash\": true, \"confidence\": 0.8, \"severity\": \"medium\"}\n```"

	verdict, err := parseVerdict(text)
	require.NoError(t, err)
	assert.True(t, verdict.IsCrash)
	assert.Equal(t, 0.8, verdict.Confidence)
	assert.Equal(t, "medium", verdict.Severity)
}

func TestParseVerdictStripsBareCodeFence(t *testing.T) {
	text := "```\n{\"is_crash\": false}\n```"

	verdict, err := parseVerdict(text)
	require.NoError(t, err)
	assert.False(t, verdict.IsCrash)
}

func TestParseVerdictCoercesMissingFields(t *testing.T) {
	verdict, err := parseVerdict(`{"is_crash": true}`)
	require.NoError(t, err)

	assert.True(t, verdict.IsCrash)
	assert.Equal(t, 0.5, verdict.Confidence)
	assert.Equal(t, "low", verdict.Severity)
	assert.Equal(t, "unknown", verdict.CrashType)
	assert.Equal(t, "Analysis completed", verdict.Reasoning)
	assert.Equal(t, []string{}, verdict.KeyIndicators)
	assert.Equal(t, 0.5, verdict.FalsePositiveRisk)
}

func TestParseVerdictCoercesWrongTypes(t *testing.T) {
	text := `{
		"is_crash": "yes",
		"confidence": "high",
		"severity": 3,
		"key_indicators": ["valid", 42, "also_valid"]
	}`

	verdict, err := parseVerdict(text)
	require.NoError(t, err)
	assert.False(t, verdict.IsCrash)
	assert.Equal(t, 0.5, verdict.Confidence)
	assert.Equal(t, "low", verdict.Severity)
	assert.Equal(t, []string{"valid", "also_valid"}, verdict.KeyIndicators)
}

func TestParseVerdictRejectsNonJSON(t *testing.T) {
	_, err := parseVerdict("the helmet probably crashed")
	assert.Error(t, err)
}

func TestFallbackVerdict(t *testing.T) {
	verdict := FallbackVerdict()

	assert.False(t, verdict.IsCrash)
	assert.Equal(t, 0.5, verdict.Confidence)
	assert.Equal(t, "low", verdict.Severity)
	assert.Equal(t, "unknown", verdict.CrashType)
	assert.Equal(t, "AI analysis unavailable - defaulting to false positive", verdict.Reasoning)
	assert.Equal(t, []string{}, verdict.KeyIndicators)
	assert.Equal(t, 0.8, verdict.FalsePositiveRisk)
}
