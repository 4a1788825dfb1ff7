package gemini

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestService(t *testing.T, handler http.HandlerFunc) *Service {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	svc := NewService("test-key", "gemini-2.5-flash")
	svc.BaseURL = server.URL
	return svc
}

func TestGenerateCandidatePartsShape(t *testing.T) {
	var gotBody map[string]interface{}
	svc := newTestService(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "POST", r.Method)
		assert.Contains(t, r.URL.RawQuery, "key=test-key")
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotBody))

		json.NewEncoder(w).Encode(map[string]interface{}{
			"candidates": []map[string]interface{}{
				{"content": map[string]interface{}{
					"parts": []map[string]string{{"text": "generated reply"}},
				}},
			},
		})
	})

	text, err := svc.Generate(context.Background(), "hello")
	require.NoError(t, err)
	assert.Equal(t, "generated reply", text)

	contents := gotBody["contents"].([]interface{})
	require.Len(t, contents, 1)
}

func TestGenerateTopLevelTextShape(t *testing.T) {
	svc := newTestService(t, func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]string{"text": "flat reply"})
	})

	text, err := svc.Generate(context.Background(), "hello")
	require.NoError(t, err)
	assert.Equal(t, "flat reply", text)
}

func TestGenerateContentTextShape(t *testing.T) {
	svc := newTestService(t, func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]interface{}{
			"content": map[string]string{"text": "nested reply"},
		})
	})

	text, err := svc.Generate(context.Background(), "hello")
	require.NoError(t, err)
	assert.Equal(t, "nested reply", text)
}

func TestGenerateAPIError(t *testing.T) {
	svc := newTestService(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"error": "quota exceeded"}`, http.StatusTooManyRequests)
	})

	_, err := svc.Generate(context.Background(), "hello")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Gemini API error")
}

func TestGenerateNoTextInResponse(t *testing.T) {
	svc := newTestService(t, func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]interface{}{"candidates": []interface{}{}})
	})

	_, err := svc.Generate(context.Background(), "hello")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no text in Gemini response")
}
