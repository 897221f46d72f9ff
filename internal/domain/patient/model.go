package patient

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// DateLayout is the wire format for all clinical dates. Vitals and lab
// values stay free text; only medication windows are ever parsed.
const DateLayout = "2006-01-02"

// Gender is the administrative gender recorded at enrollment.
type Gender string

const (
	GenderMale   Gender = "Male"
	GenderFemale Gender = "Female"
	GenderOther  Gender = "Other"
)

// LabStatus is the caller-supplied flag on a lab result. It is never derived
// from the reference range.
type LabStatus string

const (
	LabStatusNormal   LabStatus = "Normal"
	LabStatusAbnormal LabStatus = "Abnormal"
	LabStatusCritical LabStatus = "Critical"
)

// Patient is the root clinical record. Nested collections keep insertion
// order: labs, visits and radiology links are most-recent-first, medications
// oldest-first.
type Patient struct {
	ID             string          `json:"id"`
	Name           string          `json:"name"`
	DOB            string          `json:"dob"`
	Gender         Gender          `json:"gender"`
	Contact        string          `json:"contact,omitempty"`
	Email          string          `json:"email,omitempty"`
	BloodType      string          `json:"blood_type,omitempty"`
	Avatar         string          `json:"avatar,omitempty"`
	LabResults     []LabResult     `json:"lab_results"`
	RadiologyLinks []RadiologyLink `json:"radiology_links"`
	VisitNotes     []VisitNote     `json:"visit_notes"`
	Medications    []Medication    `json:"medications"`
}

// LabResult is a single test entry. Value is free text — results like
// "Positive" are valid.
type LabResult struct {
	ID             string    `json:"id"`
	Date           string    `json:"date"`
	TestName       string    `json:"test_name"`
	Value          string    `json:"value"`
	Unit           string    `json:"unit,omitempty"`
	ReferenceRange string    `json:"reference_range,omitempty"`
	Status         LabStatus `json:"status"`
}

// RadiologyLink points at an externally hosted imaging study. The URL is
// opaque and never validated.
type RadiologyLink struct {
	ID          string `json:"id"`
	Date        string `json:"date"`
	StudyType   string `json:"study_type"`
	Description string `json:"description,omitempty"`
	URL         string `json:"url"`
}

// Vitals captured during a visit, all unvalidated free text.
type Vitals struct {
	BloodPressure string `json:"blood_pressure,omitempty"`
	HeartRate     string `json:"heart_rate,omitempty"`
	Temperature   string `json:"temperature,omitempty"`
}

// VisitNote records one encounter.
type VisitNote struct {
	ID        string `json:"id"`
	Date      string `json:"date"`
	Reason    string `json:"reason"`
	Diagnosis string `json:"diagnosis"`
	Notes     string `json:"notes,omitempty"`
	Vitals    Vitals `json:"vitals"`
}

// Medication is a prescription window. An empty EndDate means open-ended.
type Medication struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Dose      string `json:"dose,omitempty"`
	StartDate string `json:"start_date"`
	EndDate   string `json:"end_date,omitempty"`
}

// ActiveOn reports whether t falls inside the medication's [start, end]
// window, inclusive at both ends. Comparison is date-only. A start date that
// does not parse makes the medication inactive; an end date is unbounded only
// when empty.
func (m Medication) ActiveOn(t time.Time) bool {
	start, err := time.Parse(DateLayout, m.StartDate)
	if err != nil {
		return false
	}
	day := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
	if day.Before(start) {
		return false
	}
	if m.EndDate == "" {
		return true
	}
	end, err := time.Parse(DateLayout, m.EndDate)
	if err != nil {
		return false
	}
	return !day.After(end)
}

// MedicationsByActivity returns the patient's medications stably partitioned
// so that all medications active at now precede the inactive ones, relative
// order preserved within each partition.
func (p *Patient) MedicationsByActivity(now time.Time) []Medication {
	result := make([]Medication, 0, len(p.Medications))
	for _, m := range p.Medications {
		if m.ActiveOn(now) {
			result = append(result, m)
		}
	}
	for _, m := range p.Medications {
		if !m.ActiveOn(now) {
			result = append(result, m)
		}
	}
	return result
}

// Matches reports whether the lowercased term is a substring of the
// patient's name or id. The empty term matches.
func (p *Patient) Matches(term string) bool {
	if term == "" {
		return true
	}
	return strings.Contains(strings.ToLower(p.Name), term) ||
		strings.Contains(strings.ToLower(p.ID), term)
}

// Clone returns a deep copy. Repositories hand out clones so callers cannot
// reach stored state except through the operation set. Collections stay
// non-nil so empty ones serialize as [] rather than null.
func (p *Patient) Clone() *Patient {
	cp := *p
	cp.LabResults = append(make([]LabResult, 0, len(p.LabResults)), p.LabResults...)
	cp.RadiologyLinks = append(make([]RadiologyLink, 0, len(p.RadiologyLinks)), p.RadiologyLinks...)
	cp.VisitNotes = append(make([]VisitNote, 0, len(p.VisitNotes)), p.VisitNotes...)
	cp.Medications = append(make([]Medication, 0, len(p.Medications)), p.Medications...)
	return &cp
}

// Snapshot renders the record as plain text for the summarization
// collaborator: demographics, recent labs and visits, active medications.
func (p *Patient) Snapshot(now time.Time) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Patient %s (id %s), born %s, gender %s.\n", p.Name, p.ID, p.DOB, p.Gender)
	if p.BloodType != "" {
		fmt.Fprintf(&b, "Blood type: %s.\n", p.BloodType)
	}
	if len(p.LabResults) > 0 {
		b.WriteString("Recent lab results:\n")
		for i, r := range p.LabResults {
			if i == 5 {
				break
			}
			fmt.Fprintf(&b, "- %s %s: %s %s (%s, ref %s)\n", r.Date, r.TestName, r.Value, r.Unit, r.Status, r.ReferenceRange)
		}
	}
	if len(p.VisitNotes) > 0 {
		b.WriteString("Recent visits:\n")
		for i, v := range p.VisitNotes {
			if i == 3 {
				break
			}
			fmt.Fprintf(&b, "- %s: %s, diagnosis %s\n", v.Date, v.Reason, v.Diagnosis)
		}
	}
	var active []Medication
	for _, m := range p.Medications {
		if m.ActiveOn(now) {
			active = append(active, m)
		}
	}
	if len(active) > 0 {
		b.WriteString("Active medications:\n")
		for _, m := range active {
			fmt.Fprintf(&b, "- %s %s since %s\n", m.Name, m.Dose, m.StartDate)
		}
	}
	return b.String()
}

// newEntityID mints a fresh nested-entity id. UUIDs keep the id-collision
// invariant without tracking per-collection counters.
func newEntityID(prefix string) string {
	return prefix + "-" + uuid.NewString()
}
