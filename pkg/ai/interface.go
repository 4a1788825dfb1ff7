package ai

import (
	"context"
	"time"
)

// Verdict is the structured crash classification returned by the analysis
// tier (shared type across providers)
type Verdict struct {
	IsCrash           bool     `json:"is_crash"`
	Confidence        float64  `json:"confidence"` // 0..1
	Severity          string   `json:"severity"`   // low, medium, high
	CrashType         string   `json:"crash_type"`
	Reasoning         string   `json:"reasoning"`
	KeyIndicators     []string `json:"key_indicators"`
	FalsePositiveRisk float64  `json:"false_positive_risk"` // 0..1
}

// SensorSample is one reading given to the analyzer as context
type SensorSample struct {
	AX           float64
	AY           float64
	AZ           float64
	Roll         float64
	Pitch        float64
	TiltDetected bool
	Timestamp    time.Time
}

// CrashSummary is one prior confirmed crash given to the analyzer as context
type CrashSummary struct {
	IsConfirmedCrash bool
	ConfidenceScore  float64
	Severity         string
	CrashType        string
	MaxGForce        float64
	CrashTimestamp   time.Time
}

// AnalysisInput bundles everything the analyzer sees for one alert
type AnalysisInput struct {
	Readings       []SensorSample // recent window, ascending by timestamp
	Current        SensorSample   // the reading that tripped the threshold
	History        []CrashSummary // recent confirmed crashes, newest first
	ContextSeconds int
}

// CrashAnalyzer classifies a threshold-triggered alert. Implementations
// never fail the caller: any provider error yields the fail-safe verdict
// from FallbackVerdict, which biases toward "no confirmed crash".
type CrashAnalyzer interface {
	AnalyzeCrash(ctx context.Context, in AnalysisInput) *Verdict
}

// TextGenerator is a raw text-generation call on an LLM provider.
// Implement this to add new providers (Gemini, Ollama, etc.).
type TextGenerator interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

// ProviderType represents the AI provider type
type ProviderType string

const (
	ProviderGemini ProviderType = "gemini"
	ProviderOllama ProviderType = "ollama"
)
