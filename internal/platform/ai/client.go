package ai

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

const extractionPrompt = `You are a clinical data entry assistant. Extract every lab test result ` +
	`from the following report. Respond with ONLY a JSON array, no prose, where each element is ` +
	`{"testName": string, "value": string, "unit": string, "date": "YYYY-MM-DD", "status": "Normal"|"Abnormal"|"Critical"}. ` +
	`Omit fields you cannot determine. Respond with [] if no results are present.`

const summaryPrompt = `You are a clinical assistant. Write a concise narrative summary (3-5 sentences) ` +
	`of the following patient record for a physician. Mention notable lab results, recent visits, ` +
	`and active medications. Do not invent data.`

// Client calls a Gemini-style generateContent endpoint and implements both
// Extractor and Summarizer.
type Client struct {
	baseURL string
	apiKey  string
	model   string
	http    *http.Client
	logger  zerolog.Logger
}

type ClientConfig struct {
	BaseURL string
	APIKey  string
	Model   string
	Timeout time.Duration
}

func NewClient(cfg ClientConfig, logger zerolog.Logger) *Client {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &Client{
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		apiKey:  cfg.APIKey,
		model:   cfg.Model,
		http:    &http.Client{Timeout: timeout},
		logger:  logger,
	}
}

// -- wire types --

type generatePart struct {
	Text       string          `json:"text,omitempty"`
	InlineData *generateInline `json:"inline_data,omitempty"`
}

type generateInline struct {
	MIMEType string `json:"mime_type"`
	Data     string `json:"data"`
}

type generateContent struct {
	Parts []generatePart `json:"parts"`
}

type generateRequest struct {
	Contents []generateContent `json:"contents"`
}

type generateResponse struct {
	Candidates []struct {
		Content struct {
			Parts []struct {
				Text string `json:"text"`
			} `json:"parts"`
		} `json:"content"`
	} `json:"candidates"`
	Error *struct {
		Message string `json:"message"`
	} `json:"error,omitempty"`
}

func (c *Client) generate(ctx context.Context, parts []generatePart) (string, error) {
	body, err := json.Marshal(generateRequest{Contents: []generateContent{{Parts: parts}}})
	if err != nil {
		return "", fmt.Errorf("encode request: %w", err)
	}

	url := fmt.Sprintf("%s/models/%s:generateContent", c.baseURL, c.model)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("x-goog-api-key", c.apiKey)

	resp, err := c.http.Do(req)
	if err != nil {
		return "", fmt.Errorf("call model: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return "", fmt.Errorf("read response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("model returned status %d: %s", resp.StatusCode, strings.TrimSpace(string(raw)))
	}

	var out generateResponse
	if err := json.Unmarshal(raw, &out); err != nil {
		return "", fmt.Errorf("decode response: %w", err)
	}
	if out.Error != nil {
		return "", fmt.Errorf("model error: %s", out.Error.Message)
	}
	if len(out.Candidates) == 0 || len(out.Candidates[0].Content.Parts) == 0 {
		return "", fmt.Errorf("model returned no candidates")
	}
	return out.Candidates[0].Content.Parts[0].Text, nil
}

// ExtractLabResults implements Extractor against the generative API. The
// model is asked for a bare JSON array; code fences around it are tolerated.
func (c *Client) ExtractLabResults(ctx context.Context, in ExtractionInput) ([]LabCandidate, error) {
	if in.Empty() {
		return nil, nil
	}

	parts := []generatePart{{Text: extractionPrompt}}
	if in.Text != "" {
		parts = append(parts, generatePart{Text: in.Text})
	}
	if in.ImageData != "" {
		mime := in.ImageMIME
		if mime == "" {
			mime = "image/png"
		}
		parts = append(parts, generatePart{InlineData: &generateInline{MIMEType: mime, Data: in.ImageData}})
	}

	text, err := c.generate(ctx, parts)
	if err != nil {
		return nil, err
	}

	var candidates []LabCandidate
	if err := json.Unmarshal([]byte(stripFences(text)), &candidates); err != nil {
		c.logger.Warn().Str("payload", text).Msg("extractor returned non-JSON payload")
		return nil, fmt.Errorf("decode candidates: %w", err)
	}
	return candidates, nil
}

// Summarize implements Summarizer against the generative API.
func (c *Client) Summarize(ctx context.Context, snapshot string) (string, error) {
	text, err := c.generate(ctx, []generatePart{{Text: summaryPrompt}, {Text: snapshot}})
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(text), nil
}

// stripFences removes a markdown code fence wrapper, which models add even
// when told not to.
func stripFences(s string) string {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```json")
	s = strings.TrimPrefix(s, "```")
	s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	return strings.TrimSpace(s)
}
