package ai

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/rs/zerolog"
)

func modelResponse(text string) string {
	body, _ := json.Marshal(map[string]any{
		"candidates": []map[string]any{
			{"content": map[string]any{"parts": []map[string]string{{"text": text}}}},
		},
	})
	return string(body)
}

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return NewClient(ClientConfig{BaseURL: srv.URL, APIKey: "test-key", Model: "test-model"}, zerolog.Nop())
}

func TestClient_ExtractLabResults(t *testing.T) {
	var gotPath, gotKey string
	var gotReq generateRequest
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotKey = r.Header.Get("x-goog-api-key")
		json.NewDecoder(r.Body).Decode(&gotReq)
		fmt.Fprint(w, modelResponse(`[{"testName":"Glucose","value":"95","unit":"mg/dL","status":"Normal"}]`))
	})

	got, err := c.ExtractLabResults(context.Background(), ExtractionInput{Text: "Glucose: 95 mg/dL"})
	if err != nil {
		t.Fatalf("extract failed: %v", err)
	}
	if len(got) != 1 || got[0].TestName != "Glucose" || got[0].Value != "95" {
		t.Errorf("unexpected candidates: %+v", got)
	}

	if gotPath != "/models/test-model:generateContent" {
		t.Errorf("unexpected path %s", gotPath)
	}
	if gotKey != "test-key" {
		t.Errorf("expected api key header, got %q", gotKey)
	}
	parts := gotReq.Contents[0].Parts
	if len(parts) != 2 || !strings.Contains(parts[0].Text, "lab test result") || parts[1].Text != "Glucose: 95 mg/dL" {
		t.Errorf("unexpected request parts: %+v", parts)
	}
}

func TestClient_ExtractLabResults_FencedJSON(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, modelResponse("```json\n[{\"testName\":\"TSH\",\"value\":\"2.1\"}]\n```"))
	})

	got, err := c.ExtractLabResults(context.Background(), ExtractionInput{Text: "report"})
	if err != nil {
		t.Fatalf("extract failed: %v", err)
	}
	if len(got) != 1 || got[0].TestName != "TSH" {
		t.Errorf("unexpected candidates: %+v", got)
	}
}

func TestClient_ExtractLabResults_ImagePart(t *testing.T) {
	var gotReq generateRequest
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		json.NewDecoder(r.Body).Decode(&gotReq)
		fmt.Fprint(w, modelResponse("[]"))
	})

	_, err := c.ExtractLabResults(context.Background(), ExtractionInput{ImageData: "AAAA"})
	if err != nil {
		t.Fatalf("extract failed: %v", err)
	}
	parts := gotReq.Contents[0].Parts
	if len(parts) != 2 || parts[1].InlineData == nil {
		t.Fatalf("expected inline image part, got %+v", parts)
	}
	if parts[1].InlineData.MIMEType != "image/png" {
		t.Errorf("expected default mime type, got %s", parts[1].InlineData.MIMEType)
	}
}

func TestClient_ExtractLabResults_EmptyInput(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		t.Error("no request expected for empty input")
	})
	got, err := c.ExtractLabResults(context.Background(), ExtractionInput{})
	if err != nil || got != nil {
		t.Errorf("expected nil, nil for empty input, got %+v, %v", got, err)
	}
}

func TestClient_ExtractLabResults_Errors(t *testing.T) {
	t.Run("http status", func(t *testing.T) {
		c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			http.Error(w, "quota exceeded", http.StatusTooManyRequests)
		})
		if _, err := c.ExtractLabResults(context.Background(), ExtractionInput{Text: "x"}); err == nil {
			t.Error("expected error for non-200 status")
		}
	})

	t.Run("api error body", func(t *testing.T) {
		c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			fmt.Fprint(w, `{"error":{"message":"invalid key"}}`)
		})
		if _, err := c.ExtractLabResults(context.Background(), ExtractionInput{Text: "x"}); err == nil {
			t.Error("expected error for api error body")
		}
	})

	t.Run("no candidates", func(t *testing.T) {
		c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			fmt.Fprint(w, `{"candidates":[]}`)
		})
		if _, err := c.ExtractLabResults(context.Background(), ExtractionInput{Text: "x"}); err == nil {
			t.Error("expected error for empty candidates")
		}
	})

	t.Run("non-json payload", func(t *testing.T) {
		c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			fmt.Fprint(w, modelResponse("Sorry, I cannot help with that."))
		})
		if _, err := c.ExtractLabResults(context.Background(), ExtractionInput{Text: "x"}); err == nil {
			t.Error("expected error for prose payload")
		}
	})
}

func TestClient_Summarize(t *testing.T) {
	var gotReq generateRequest
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		json.NewDecoder(r.Body).Decode(&gotReq)
		fmt.Fprint(w, modelResponse("  A stable patient.\n"))
	})

	text, err := c.Summarize(context.Background(), "Patient: Eleanor Vance")
	if err != nil {
		t.Fatalf("summarize failed: %v", err)
	}
	if text != "A stable patient." {
		t.Errorf("expected trimmed text, got %q", text)
	}
	parts := gotReq.Contents[0].Parts
	if len(parts) != 2 || parts[1].Text != "Patient: Eleanor Vance" {
		t.Errorf("expected snapshot forwarded, got %+v", parts)
	}
}

func TestStripFences(t *testing.T) {
	cases := map[string]string{
		"[]":                        "[]",
		"```json\n[1]\n```":         "[1]",
		"```\n[1]\n```":             "[1]",
		"  ```json\n{\"a\":1}\n```": `{"a":1}`,
		"plain text":                "plain text",
	}
	for in, want := range cases {
		if got := stripFences(in); got != want {
			t.Errorf("stripFences(%q) = %q, want %q", in, got, want)
		}
	}
}
