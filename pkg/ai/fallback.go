package ai

import (
	"context"
	"log"
)

// FallbackVerdict is the fixed fail-safe verdict used when the analysis
// provider is unreachable or returns garbage. It deliberately biases
// toward "no confirmed crash": an inconclusive AI call must never
// synthesize a crash confirmation.
func FallbackVerdict() *Verdict {
	return &Verdict{
		IsCrash:           false,
		Confidence:        0.5,
		Severity:          "low",
		CrashType:         "unknown",
		Reasoning:         "AI analysis unavailable - defaulting to false positive",
		KeyIndicators:     []string{},
		FalsePositiveRisk: 0.8,
	}
}

// generativeAnalyzer classifies alerts through any TextGenerator provider
// and absorbs every provider failure into the fallback verdict
type generativeAnalyzer struct {
	gen TextGenerator
}

// NewGenerativeAnalyzer wraps a text-generation provider in the
// prompt-build / parse / fail-safe pipeline
func NewGenerativeAnalyzer(gen TextGenerator) CrashAnalyzer {
	return &generativeAnalyzer{gen: gen}
}

func (a *generativeAnalyzer) AnalyzeCrash(ctx context.Context, in AnalysisInput) *Verdict {
	verdict, err := a.analyze(ctx, in)
	if err != nil {
		log.Printf("[AI] Analysis failed, using fallback verdict: %v", err)
		return FallbackVerdict()
	}
	return verdict
}

func (a *generativeAnalyzer) analyze(ctx context.Context, in AnalysisInput) (*Verdict, error) {
	prompt := buildPrompt(in)

	log.Printf("[AI] Requesting crash analysis | readings=%d | history=%d | context_seconds=%d | prompt_length=%d",
		len(in.Readings), len(in.History), in.ContextSeconds, len(prompt))

	text, err := a.gen.Generate(ctx, prompt)
	if err != nil {
		return nil, err
	}

	verdict, err := parseVerdict(text)
	if err != nil {
		return nil, err
	}

	log.Printf("[AI] Analysis complete | is_crash=%t | confidence=%.2f | severity=%s | crash_type=%s | false_positive_risk=%.2f",
		verdict.IsCrash, verdict.Confidence, verdict.Severity, verdict.CrashType, verdict.FalsePositiveRisk)
	return verdict, nil
}
