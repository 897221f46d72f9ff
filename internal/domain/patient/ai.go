package patient

import (
	"context"
	"errors"

	"github.com/medrec/medrec/internal/platform/ai"
)

// ErrStaleResponse means an extraction response arrived after the id it was
// requested for stopped naming the same patient (rename or re-enrollment
// while the call was outstanding). The response is discarded, not applied.
var ErrStaleResponse = errors.New("extraction response no longer matches the originating patient")

// ImportLabResults runs the extraction collaborator over raw text or an
// image and merges the candidates into the patient's lab collection as one
// atomic mutation. Collaborator failure degrades to an empty result with a
// logged diagnostic; it is never surfaced as a store error.
func (s *Service) ImportLabResults(ctx context.Context, patientID string, in ai.ExtractionInput) ([]LabResult, error) {
	if _, err := s.repo.Get(ctx, patientID); err != nil {
		return nil, err
	}
	if in.Empty() {
		return []LabResult{}, nil
	}

	epoch := s.epoch(patientID)

	candidates, err := s.extractor.ExtractLabResults(ctx, in)
	if err != nil {
		s.logger.Error().Err(err).Str("patient_id", patientID).Msg("lab extraction failed")
		return []LabResult{}, nil
	}

	// The call may have suspended; only apply if the id still names the
	// patient the extraction was requested for.
	if s.epoch(patientID) != epoch {
		s.logger.Warn().Str("patient_id", patientID).Msg("discarding stale extraction response")
		return nil, ErrStaleResponse
	}

	p, err := s.repo.Get(ctx, patientID)
	if err != nil {
		return nil, ErrStaleResponse
	}

	today := s.now().Format(DateLayout)
	var added []LabResult
	for _, c := range candidates {
		if c.TestName == "" || c.Value == "" {
			continue
		}
		result := LabResult{
			ID:             newEntityID("lab"),
			Date:           c.Date,
			TestName:       c.TestName,
			Value:          c.Value,
			Unit:           c.Unit,
			Status:         LabStatus(c.Status),
			ReferenceRange: "",
		}
		if result.Date == "" {
			result.Date = today
		}
		switch result.Status {
		case LabStatusNormal, LabStatusAbnormal, LabStatusCritical:
		default:
			result.Status = LabStatusNormal
		}
		added = append(added, result)
	}
	if len(added) == 0 {
		return []LabResult{}, nil
	}

	p.LabResults = append(append([]LabResult(nil), added...), p.LabResults...)
	if err := s.repo.Replace(ctx, patientID, p); err != nil {
		return nil, err
	}
	return added, nil
}

// SummarizePatient renders the patient snapshot and asks the summarization
// collaborator for narrative text. Any failure, including the collaborator
// being unconfigured, yields the fixed fallback string.
func (s *Service) SummarizePatient(ctx context.Context, patientID string) (string, error) {
	p, err := s.repo.Get(ctx, patientID)
	if err != nil {
		return "", err
	}
	if s.summarizer == nil {
		return ai.FallbackSummary, nil
	}

	text, err := s.summarizer.Summarize(ctx, p.Snapshot(s.now()))
	if err != nil {
		s.logger.Error().Err(err).Str("patient_id", patientID).Msg("summarization failed")
		return ai.FallbackSummary, nil
	}
	if text == "" {
		return ai.FallbackSummary, nil
	}
	return text, nil
}
