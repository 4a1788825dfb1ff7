package gemini

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
)

const defaultBaseURL = "https://generativelanguage.googleapis.com/v1beta"

type Service struct {
	APIKey  string
	Model   string
	BaseURL string // Overridable for tests
}

func NewService(apiKey, model string) *Service {
	if model == "" {
		model = "gemini-2.5-flash"
	}
	return &Service{APIKey: apiKey, Model: model, BaseURL: defaultBaseURL}
}

// Generate sends one text-generation call and returns the response text
func (g *Service) Generate(ctx context.Context, prompt string) (string, error) {
	url := fmt.Sprintf("%s/models/%s:generateContent?key=%s", g.BaseURL, g.Model, g.APIKey)

	payload := map[string]interface{}{
		"contents": []map[string]interface{}{
			{"parts": []map[string]string{{"text": prompt}}},
		},
	}

	body, _ := json.Marshal(payload)
	req, err := http.NewRequestWithContext(ctx, "POST", url, bytes.NewBuffer(body))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")

	client := &http.Client{}
	resp, err := client.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	respBody, _ := io.ReadAll(resp.Body)

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("Gemini API error: %s", string(respBody))
	}

	var result map[string]interface{}
	if err := json.Unmarshal(respBody, &result); err != nil {
		return "", err
	}

	text, ok := extractText(result)
	if !ok {
		return "", fmt.Errorf("no text in Gemini response")
	}
	return text, nil
}

// textExtractors are the known response shapes, tried in order. The API
// has shipped more than one over time; each extractor either finds the
// text or reports not-applicable.
var textExtractors = []func(map[string]interface{}) (string, bool){
	candidatePartsText, // candidates[0].content.parts[0].text
	candidateText,      // candidates[0].content.text
	contentText,        // content.text
	topLevelText,       // text
}

func extractText(result map[string]interface{}) (string, bool) {
	for _, extract := range textExtractors {
		if text, ok := extract(result); ok && text != "" {
			return text, true
		}
	}
	return "", false
}

func candidatePartsText(result map[string]interface{}) (string, bool) {
	content, ok := firstCandidateContent(result)
	if !ok {
		return "", false
	}
	parts, ok := content["parts"].([]interface{})
	if !ok || len(parts) == 0 {
		return "", false
	}
	part, ok := parts[0].(map[string]interface{})
	if !ok {
		return "", false
	}
	text, ok := part["text"].(string)
	return text, ok
}

func candidateText(result map[string]interface{}) (string, bool) {
	content, ok := firstCandidateContent(result)
	if !ok {
		return "", false
	}
	text, ok := content["text"].(string)
	return text, ok
}

func contentText(result map[string]interface{}) (string, bool) {
	content, ok := result["content"].(map[string]interface{})
	if !ok {
		return "", false
	}
	text, ok := content["text"].(string)
	return text, ok
}

func topLevelText(result map[string]interface{}) (string, bool) {
	text, ok := result["text"].(string)
	return text, ok
}

func firstCandidateContent(result map[string]interface{}) (map[string]interface{}, bool) {
	candidates, ok := result["candidates"].([]interface{})
	if !ok || len(candidates) == 0 {
		return nil, false
	}
	candidate, ok := candidates[0].(map[string]interface{})
	if !ok {
		return nil, false
	}
	content, ok := candidate["content"].(map[string]interface{})
	return content, ok
}
