package triage

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestHandler(t *testing.T) *Handler {
	t.Helper()
	return NewHandler(NewEngine(nil), nil, nil)
}

func TestCheckSymptomsOK(t *testing.T) {
	h := newTestHandler(t)

	body := `{"symptoms": ["fever", "cough"], "language": "en"}`
	req := httptest.NewRequest(http.MethodPost, "/api/chatbot/check-symptoms", strings.NewReader(body))
	rec := httptest.NewRecorder()

	h.CheckSymptoms(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))

	var result Result
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &result))
	assert.Equal(t, LanguageEnglish, result.Language)
	require.Len(t, result.Responses, 2)
	assert.Equal(t, UrgencyMedium, result.OverallUrgency)
	assert.True(t, result.ShouldConsultDoctor)
	assert.NotEmpty(t, result.Disclaimer)
}

func TestCheckSymptomsMissingSymptoms(t *testing.T) {
	h := newTestHandler(t)

	tests := []struct {
		name string
		body string
	}{
		{"empty array", `{"symptoms": [], "language": "en"}`},
		{"absent field", `{"language": "en"}`},
		{"invalid json", `{`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/api/chatbot/check-symptoms", strings.NewReader(tt.body))
			rec := httptest.NewRecorder()

			h.CheckSymptoms(rec, req)

			assert.Equal(t, http.StatusBadRequest, rec.Code)
			assert.Contains(t, rec.Body.String(), "Symptoms array is required")
		})
	}
}

func TestCheckSymptomsDefaultsToEnglish(t *testing.T) {
	h := newTestHandler(t)

	req := httptest.NewRequest(http.MethodPost, "/api/chatbot/check-symptoms", strings.NewReader(`{"symptoms": ["fever"]}`))
	rec := httptest.NewRecorder()

	h.CheckSymptoms(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	var result Result
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &result))
	assert.Equal(t, LanguageEnglish, result.Language)
}

func TestLanguagesEndpoint(t *testing.T) {
	h := newTestHandler(t)

	req := httptest.NewRequest(http.MethodGet, "/api/chatbot/languages", nil)
	rec := httptest.NewRecorder()

	h.Languages(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	var resp map[string][]LanguageInfo
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Len(t, resp["languages"], 2)
	assert.Equal(t, "en", resp["languages"][0].Code)
	assert.Equal(t, "pa", resp["languages"][1].Code)
	assert.Equal(t, "ਪੰਜਾਬੀ", resp["languages"][1].NativeName)
}

func TestSymptomsEndpoint(t *testing.T) {
	h := newTestHandler(t)

	req := httptest.NewRequest(http.MethodGet, "/api/chatbot/symptoms?language=pa", nil)
	rec := httptest.NewRecorder()

	h.Symptoms(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	var resp map[string][]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Contains(t, resp["symptoms"], "ਬੁਖਾਰ")
}
