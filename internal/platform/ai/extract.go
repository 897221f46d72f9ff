package ai

import (
	"context"
	"regexp"
	"strings"
)

// TextExtractor is the offline Extractor used when no API key is configured.
// It scans pasted report text line by line for "NAME : value unit" shapes and
// a handful of qualitative results. Image input is unsupported.
type TextExtractor struct{}

// lineRe matches "Hemoglobin: 13.5 g/dL", "GLUCOSE 95 mg/dL", etc.
var lineRe = regexp.MustCompile(`^\s*([A-Za-z][A-Za-z0-9 ()/%.-]*?)\s*[:\-]?\s+(-?\d+(?:\.\d+)?)\s*([A-Za-z/%µ^0-9]*)\s*$`)

// qualRe matches qualitative results like "Widal Test: Positive".
var qualRe = regexp.MustCompile(`(?i)^\s*([A-Za-z][A-Za-z0-9 ()/.-]*?)\s*[:\-]\s*(positive|negative|reactive|non-reactive|detected|not detected)\s*$`)

func (TextExtractor) ExtractLabResults(_ context.Context, in ExtractionInput) ([]LabCandidate, error) {
	if in.Text == "" {
		return nil, nil
	}

	var candidates []LabCandidate
	for _, line := range strings.Split(in.Text, "\n") {
		if m := lineRe.FindStringSubmatch(line); m != nil {
			candidates = append(candidates, LabCandidate{
				TestName: strings.TrimSpace(m[1]),
				Value:    m[2],
				Unit:     m[3],
			})
			continue
		}
		if m := qualRe.FindStringSubmatch(line); m != nil {
			candidates = append(candidates, LabCandidate{
				TestName: strings.TrimSpace(m[1]),
				Value:    capitalize(m[2]),
			})
		}
	}
	return candidates, nil
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + strings.ToLower(s[1:])
}
