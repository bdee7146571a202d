package llm

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/openai/openai-go/v2/option"

	"github.com/blaisecz/smart-wake/internal/domain"
)

func completionServer(t *testing.T, content string, gotBody *string) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !strings.HasSuffix(r.URL.Path, "/chat/completions") {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		body, _ := io.ReadAll(r.Body)
		if gotBody != nil {
			*gotBody = string(body)
		}

		msg, _ := json.Marshal(content)
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"id":"chatcmpl-1","object":"chat.completion","created":1,"model":"test-model",` +
			`"choices":[{"index":0,"finish_reason":"stop","message":{"role":"assistant","content":` + string(msg) + `}}]}`))
	}))
}

func testReport() *domain.WakeReport {
	return &domain.WakeReport{
		From: time.Date(2026, 1, 13, 0, 0, 0, 0, time.UTC),
		To:   time.Date(2026, 1, 20, 0, 0, 0, 0, time.UTC),
		Stats: domain.WakeReportStats{
			Sessions:                4,
			SmartCount:              3,
			ForcedCount:             1,
			SmartRate:               0.75,
			MeanScoreAtFire:         0.7,
			MeanMinutesBeforeTarget: 9.5,
		},
	}
}

func TestNewOpenAIClient_EmptyKey(t *testing.T) {
	if c := NewOpenAIClient("", ""); c != nil {
		t.Fatalf("expected nil client without API key")
	}
}

func TestNarrate_NilClient(t *testing.T) {
	var c *OpenAIClient
	if _, err := c.Narrate(context.Background(), testReport()); !errors.Is(err, ErrOpenAIUnavailable) {
		t.Fatalf("expected ErrOpenAIUnavailable, got %v", err)
	}
}

func TestNarrate(t *testing.T) {
	var body string
	server := completionServer(t, `{"summary":"Mostly smart wake-ups.","observations":["3 of 4 sessions fired early."]}`, &body)
	defer server.Close()

	c := NewOpenAIClient("test-key", "test-model", option.WithBaseURL(server.URL+"/"), option.WithMaxRetries(0))
	got, err := c.Narrate(context.Background(), testReport())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.Summary != "Mostly smart wake-ups." || len(got.Observations) != 1 {
		t.Fatalf("unexpected narrative: %+v", got)
	}
	if !strings.Contains(body, "test-model") || !strings.Contains(body, "smart_count") {
		t.Fatalf("request body missing model or stats: %s", body)
	}
}

func TestNarrate_InvalidJSON(t *testing.T) {
	server := completionServer(t, "not json", nil)
	defer server.Close()

	c := NewOpenAIClient("test-key", "test-model", option.WithBaseURL(server.URL+"/"), option.WithMaxRetries(0))
	if _, err := c.Narrate(context.Background(), testReport()); !errors.Is(err, ErrOpenAIResponse) {
		t.Fatalf("expected ErrOpenAIResponse, got %v", err)
	}
}
