package patient

import (
	"context"
	"sync"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/rs/zerolog"

	"github.com/medrec/medrec/internal/platform/ai"
)

// Service exposes the record-store operation set. It is the only mutation
// surface; handlers and the AI import path all go through it.
type Service struct {
	repo       Repository
	extractor  ai.Extractor
	summarizer ai.Summarizer
	logger     zerolog.Logger
	now        func() time.Time

	// epochs tracks, per patient id, how many times that id has been bound
	// to a record (create, rename-in, rename-out). An outstanding AI call
	// captures the epoch before suspending; a changed epoch on return means
	// the id no longer names the same patient and the response is discarded.
	mu     sync.Mutex
	epochs map[string]uint64
}

func NewService(repo Repository, extractor ai.Extractor, summarizer ai.Summarizer, logger zerolog.Logger) *Service {
	return &Service{
		repo:       repo,
		extractor:  extractor,
		summarizer: summarizer,
		logger:     logger,
		now:        time.Now,
		epochs:     make(map[string]uint64),
	}
}

// SetClock overrides the service clock. Used by tests to pin "today" for
// medication-activity checks.
func (s *Service) SetClock(now func() time.Time) {
	s.now = now
}

func (s *Service) bumpEpoch(id string) {
	s.mu.Lock()
	s.epochs[id]++
	s.mu.Unlock()
}

func (s *Service) epoch(id string) uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.epochs[id]
}

// -- Patients --

type CreatePatientInput struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	DOB       string `json:"dob"`
	Gender    Gender `json:"gender"`
	Contact   string `json:"contact"`
	Email     string `json:"email"`
	BloodType string `json:"blood_type"`
}

// CreatePatient enrolls a new patient with empty nested collections.
func (s *Service) CreatePatient(ctx context.Context, in CreatePatientInput) (*Patient, error) {
	err := validation.ValidateStruct(&in,
		validation.Field(&in.ID, validation.Required),
		validation.Field(&in.Name, validation.Required),
		validation.Field(&in.DOB, validation.Required),
		validation.Field(&in.Gender, validation.In(GenderMale, GenderFemale, GenderOther)),
	)
	if err != nil {
		return nil, &ValidationError{Err: err}
	}

	gender := in.Gender
	if gender == "" {
		gender = GenderOther
	}
	p := &Patient{
		ID:             in.ID,
		Name:           in.Name,
		DOB:            in.DOB,
		Gender:         gender,
		Contact:        in.Contact,
		Email:          in.Email,
		BloodType:      in.BloodType,
		LabResults:     []LabResult{},
		RadiologyLinks: []RadiologyLink{},
		VisitNotes:     []VisitNote{},
		Medications:    []Medication{},
	}
	if err := s.repo.Insert(ctx, p); err != nil {
		return nil, err
	}
	s.bumpEpoch(p.ID)
	return p, nil
}

type UpdatePatientInput struct {
	ID        *string `json:"id"`
	Name      *string `json:"name"`
	DOB       *string `json:"dob"`
	Gender    *Gender `json:"gender"`
	Contact   *string `json:"contact"`
	Email     *string `json:"email"`
	BloodType *string `json:"blood_type"`
}

// UpdatePatient applies partial field updates, including an id rename. A
// rename is atomic with respect to lookups and preserves every nested
// collection.
func (s *Service) UpdatePatient(ctx context.Context, currentID string, in UpdatePatientInput) (*Patient, error) {
	err := validation.Errors{
		"id":   validation.Validate(in.ID, validation.NilOrNotEmpty),
		"name": validation.Validate(in.Name, validation.NilOrNotEmpty),
		"dob":  validation.Validate(in.DOB, validation.NilOrNotEmpty),
	}.Filter()
	if err != nil {
		return nil, &ValidationError{Err: err}
	}
	if in.Gender != nil {
		if err := validation.Validate(*in.Gender, validation.In(GenderMale, GenderFemale, GenderOther)); err != nil {
			return nil, &ValidationError{Err: err}
		}
	}

	p, err := s.repo.Get(ctx, currentID)
	if err != nil {
		return nil, err
	}

	if in.ID != nil {
		p.ID = *in.ID
	}
	if in.Name != nil {
		p.Name = *in.Name
	}
	if in.DOB != nil {
		p.DOB = *in.DOB
	}
	if in.Gender != nil {
		p.Gender = *in.Gender
	}
	if in.Contact != nil {
		p.Contact = *in.Contact
	}
	if in.Email != nil {
		p.Email = *in.Email
	}
	if in.BloodType != nil {
		p.BloodType = *in.BloodType
	}

	if err := s.repo.Replace(ctx, currentID, p); err != nil {
		return nil, err
	}
	if p.ID != currentID {
		s.bumpEpoch(currentID)
		s.bumpEpoch(p.ID)
	}
	return p, nil
}

// FindPatient returns the patient or NotFoundError.
func (s *Service) FindPatient(ctx context.Context, id string) (*Patient, error) {
	return s.repo.Get(ctx, id)
}

// SearchPatients matches the term against name or id, case-insensitively,
// preserving store order. An empty term matches all patients.
func (s *Service) SearchPatients(ctx context.Context, term string) ([]*Patient, error) {
	return s.repo.Search(ctx, term)
}

// SetAvatar replaces the patient's avatar reference. The image data is an
// opaque string and is never decoded.
func (s *Service) SetAvatar(ctx context.Context, patientID, imageData string) error {
	p, err := s.repo.Get(ctx, patientID)
	if err != nil {
		return err
	}
	p.Avatar = imageData
	return s.repo.Replace(ctx, patientID, p)
}

// -- Lab results --

type LabResultInput struct {
	Date           string    `json:"date"`
	TestName       string    `json:"test_name"`
	Value          string    `json:"value"`
	Unit           string    `json:"unit"`
	ReferenceRange string    `json:"reference_range"`
	Status         LabStatus `json:"status"`
}

// AddLabResult prepends a new result to the patient's lab collection. Status
// defaults to Normal when empty; it is never derived from the range.
func (s *Service) AddLabResult(ctx context.Context, patientID string, in LabResultInput) (*LabResult, error) {
	err := validation.ValidateStruct(&in,
		validation.Field(&in.TestName, validation.Required),
		validation.Field(&in.Value, validation.Required),
		validation.Field(&in.Status, validation.In(LabStatusNormal, LabStatusAbnormal, LabStatusCritical)),
	)
	if err != nil {
		return nil, &ValidationError{Err: err}
	}

	p, err := s.repo.Get(ctx, patientID)
	if err != nil {
		return nil, err
	}

	result := LabResult{
		ID:             newEntityID("lab"),
		Date:           in.Date,
		TestName:       in.TestName,
		Value:          in.Value,
		Unit:           in.Unit,
		ReferenceRange: in.ReferenceRange,
		Status:         in.Status,
	}
	if result.Date == "" {
		result.Date = s.now().Format(DateLayout)
	}
	if result.Status == "" {
		result.Status = LabStatusNormal
	}

	p.LabResults = append([]LabResult{result}, p.LabResults...)
	if err := s.repo.Replace(ctx, patientID, p); err != nil {
		return nil, err
	}
	return &result, nil
}

type UpdateLabResultInput struct {
	Date           *string    `json:"date"`
	TestName       *string    `json:"test_name"`
	Value          *string    `json:"value"`
	Unit           *string    `json:"unit"`
	ReferenceRange *string    `json:"reference_range"`
	Status         *LabStatus `json:"status"`
}

// UpdateLabResult edits the targeted fields of one result, leaving every
// other entry untouched.
func (s *Service) UpdateLabResult(ctx context.Context, patientID, resultID string, in UpdateLabResultInput) (*LabResult, error) {
	err := validation.Errors{
		"test_name": validation.Validate(in.TestName, validation.NilOrNotEmpty),
		"value":     validation.Validate(in.Value, validation.NilOrNotEmpty),
	}.Filter()
	if err != nil {
		return nil, &ValidationError{Err: err}
	}
	if in.Status != nil {
		if err := validation.Validate(*in.Status, validation.In(LabStatusNormal, LabStatusAbnormal, LabStatusCritical)); err != nil {
			return nil, &ValidationError{Err: err}
		}
	}

	p, err := s.repo.Get(ctx, patientID)
	if err != nil {
		return nil, err
	}

	for i := range p.LabResults {
		if p.LabResults[i].ID != resultID {
			continue
		}
		r := &p.LabResults[i]
		if in.Date != nil {
			r.Date = *in.Date
		}
		if in.TestName != nil {
			r.TestName = *in.TestName
		}
		if in.Value != nil {
			r.Value = *in.Value
		}
		if in.Unit != nil {
			r.Unit = *in.Unit
		}
		if in.ReferenceRange != nil {
			r.ReferenceRange = *in.ReferenceRange
		}
		if in.Status != nil {
			r.Status = *in.Status
		}
		updated := *r
		if err := s.repo.Replace(ctx, patientID, p); err != nil {
			return nil, err
		}
		return &updated, nil
	}
	return nil, &NotFoundError{Kind: "lab result", ID: resultID}
}

// DeleteLabResult removes exactly one entry from the patient's lab
// collection.
func (s *Service) DeleteLabResult(ctx context.Context, patientID, resultID string) error {
	p, err := s.repo.Get(ctx, patientID)
	if err != nil {
		return err
	}

	for i := range p.LabResults {
		if p.LabResults[i].ID == resultID {
			p.LabResults = append(p.LabResults[:i], p.LabResults[i+1:]...)
			return s.repo.Replace(ctx, patientID, p)
		}
	}
	return &NotFoundError{Kind: "lab result", ID: resultID}
}

// -- Visit notes --

type VisitNoteInput struct {
	Date      string `json:"date"`
	Reason    string `json:"reason"`
	Diagnosis string `json:"diagnosis"`
	Notes     string `json:"notes"`
	Vitals    Vitals `json:"vitals"`
}

// AddVisitNote prepends a visit note. Visit notes are append-only: no edit
// or delete in this scope.
func (s *Service) AddVisitNote(ctx context.Context, patientID string, in VisitNoteInput) (*VisitNote, error) {
	err := validation.ValidateStruct(&in,
		validation.Field(&in.Reason, validation.Required),
		validation.Field(&in.Diagnosis, validation.Required),
	)
	if err != nil {
		return nil, &ValidationError{Err: err}
	}

	p, err := s.repo.Get(ctx, patientID)
	if err != nil {
		return nil, err
	}

	note := VisitNote{
		ID:        newEntityID("visit"),
		Date:      in.Date,
		Reason:    in.Reason,
		Diagnosis: in.Diagnosis,
		Notes:     in.Notes,
		Vitals:    in.Vitals,
	}
	if note.Date == "" {
		note.Date = s.now().Format(DateLayout)
	}

	p.VisitNotes = append([]VisitNote{note}, p.VisitNotes...)
	if err := s.repo.Replace(ctx, patientID, p); err != nil {
		return nil, err
	}
	return &note, nil
}

// -- Medications --

type MedicationInput struct {
	Name      string `json:"name"`
	Dose      string `json:"dose"`
	StartDate string `json:"start_date"`
	EndDate   string `json:"end_date"`
}

// AddMedication appends a medication to the patient's list.
func (s *Service) AddMedication(ctx context.Context, patientID string, in MedicationInput) (*Medication, error) {
	err := validation.ValidateStruct(&in,
		validation.Field(&in.Name, validation.Required),
		validation.Field(&in.StartDate, validation.Required, validation.Date(DateLayout)),
		validation.Field(&in.EndDate, validation.Date(DateLayout)),
	)
	if err != nil {
		return nil, &ValidationError{Err: err}
	}

	p, err := s.repo.Get(ctx, patientID)
	if err != nil {
		return nil, err
	}

	med := Medication{
		ID:        newEntityID("med"),
		Name:      in.Name,
		Dose:      in.Dose,
		StartDate: in.StartDate,
		EndDate:   in.EndDate,
	}
	p.Medications = append(p.Medications, med)
	if err := s.repo.Replace(ctx, patientID, p); err != nil {
		return nil, err
	}
	return &med, nil
}

// ListMedications returns the patient's medications. With prioritizeActive
// set, currently-active medications come first, stably; otherwise the stored
// order is returned unchanged.
func (s *Service) ListMedications(ctx context.Context, patientID string, prioritizeActive bool) ([]Medication, error) {
	p, err := s.repo.Get(ctx, patientID)
	if err != nil {
		return nil, err
	}
	if !prioritizeActive {
		return p.Medications, nil
	}
	return p.MedicationsByActivity(s.now()), nil
}

// -- Radiology links --

type RadiologyLinkInput struct {
	Date        string `json:"date"`
	StudyType   string `json:"study_type"`
	Description string `json:"description"`
	URL         string `json:"url"`
}

// AddRadiologyLink prepends an imaging study link.
func (s *Service) AddRadiologyLink(ctx context.Context, patientID string, in RadiologyLinkInput) (*RadiologyLink, error) {
	err := validation.ValidateStruct(&in,
		validation.Field(&in.StudyType, validation.Required),
		validation.Field(&in.URL, validation.Required),
	)
	if err != nil {
		return nil, &ValidationError{Err: err}
	}

	p, err := s.repo.Get(ctx, patientID)
	if err != nil {
		return nil, err
	}

	link := RadiologyLink{
		ID:          newEntityID("rad"),
		Date:        in.Date,
		StudyType:   in.StudyType,
		Description: in.Description,
		URL:         in.URL,
	}
	if link.Date == "" {
		link.Date = s.now().Format(DateLayout)
	}

	p.RadiologyLinks = append([]RadiologyLink{link}, p.RadiologyLinks...)
	if err := s.repo.Replace(ctx, patientID, p); err != nil {
		return nil, err
	}
	return &link, nil
}
