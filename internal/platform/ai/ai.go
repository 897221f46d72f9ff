// Package ai holds the contracts for the external generative-AI
// collaborators: lab-result extraction from raw text or images, and
// free-text patient summaries. Both are best-effort. Callers are expected to
// degrade (empty candidate list, fixed fallback summary) rather than surface
// collaborator failures as store errors.
package ai

import "context"

// ExtractionInput carries either pasted report text or an image payload.
type ExtractionInput struct {
	Text      string `json:"text,omitempty"`
	ImageData string `json:"image_data,omitempty"` // base64, no data-URL prefix
	ImageMIME string `json:"image_mime,omitempty"`
}

// Empty reports whether there is nothing to extract from.
func (in ExtractionInput) Empty() bool {
	return in.Text == "" && in.ImageData == ""
}

// LabCandidate is one structured lab-result guess from the extractor. Only
// TestName and Value are reliably present.
type LabCandidate struct {
	TestName string `json:"testName"`
	Value    string `json:"value"`
	Unit     string `json:"unit,omitempty"`
	Date     string `json:"date,omitempty"`
	Status   string `json:"status,omitempty"`
}

// Extractor turns raw input into lab-result candidates. May return an empty
// slice; errors mean the collaborator itself failed.
type Extractor interface {
	ExtractLabResults(ctx context.Context, in ExtractionInput) ([]LabCandidate, error)
}

// Summarizer turns a patient snapshot into narrative text.
type Summarizer interface {
	Summarize(ctx context.Context, snapshot string) (string, error)
}

// FallbackSummary is returned to the UI whenever the summarizer fails.
const FallbackSummary = "Summary unavailable. Please try again later."
