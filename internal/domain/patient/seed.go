package patient

import "context"

// SeedDemo loads a small demo cohort so the UI has something to render on a
// fresh start. Safe to call more than once; existing ids are skipped.
func SeedDemo(ctx context.Context, s *Service) error {
	demo := []struct {
		create CreatePatientInput
		labs   []LabResultInput
		visits []VisitNoteInput
		meds   []MedicationInput
		rads   []RadiologyLinkInput
	}{
		{
			create: CreatePatientInput{
				ID: "pt-1001", Name: "Eleanor Vance", DOB: "1968-03-14",
				Gender: GenderFemale, Contact: "555-0142", Email: "e.vance@example.com", BloodType: "A+",
			},
			labs: []LabResultInput{
				{Date: "2024-02-10", TestName: "Glucose", Value: "95", Unit: "mg/dL", ReferenceRange: "70-100", Status: LabStatusNormal},
				{Date: "2024-02-10", TestName: "Hemoglobin", Value: "11.2", Unit: "g/dL", ReferenceRange: "12.0-15.5", Status: LabStatusAbnormal},
			},
			visits: []VisitNoteInput{
				{Date: "2024-02-10", Reason: "Annual physical", Diagnosis: "Mild anemia",
					Notes:  "Recommended iron supplementation, recheck in 3 months.",
					Vitals: Vitals{BloodPressure: "128/82", HeartRate: "74", Temperature: "36.7"}},
			},
			meds: []MedicationInput{
				{Name: "Ferrous sulfate", Dose: "325 mg daily", StartDate: "2024-02-10"},
				{Name: "Lisinopril", Dose: "10 mg daily", StartDate: "2022-06-01"},
			},
			rads: []RadiologyLinkInput{
				{Date: "2023-11-02", StudyType: "Chest X-Ray", Description: "Screening, no acute findings",
					URL: "https://pacs.example.com/studies/cx-80541"},
			},
		},
		{
			create: CreatePatientInput{
				ID: "pt-1002", Name: "Marcus Webb", DOB: "1985-09-22",
				Gender: GenderMale, Contact: "555-0178", BloodType: "O-",
			},
			labs: []LabResultInput{
				{Date: "2024-01-18", TestName: "TSH", Value: "2.1", Unit: "mIU/L", ReferenceRange: "0.4-4.0", Status: LabStatusNormal},
			},
			meds: []MedicationInput{
				{Name: "Amoxicillin", Dose: "500 mg TID", StartDate: "2024-01-10", EndDate: "2024-01-20"},
			},
		},
	}

	for _, d := range demo {
		if _, err := s.FindPatient(ctx, d.create.ID); err == nil {
			continue
		}
		if _, err := s.CreatePatient(ctx, d.create); err != nil {
			return err
		}
		// Labs are prepended; add oldest-first so display order matches.
		for i := len(d.labs) - 1; i >= 0; i-- {
			if _, err := s.AddLabResult(ctx, d.create.ID, d.labs[i]); err != nil {
				return err
			}
		}
		for i := len(d.visits) - 1; i >= 0; i-- {
			if _, err := s.AddVisitNote(ctx, d.create.ID, d.visits[i]); err != nil {
				return err
			}
		}
		for _, m := range d.meds {
			if _, err := s.AddMedication(ctx, d.create.ID, m); err != nil {
				return err
			}
		}
		for i := len(d.rads) - 1; i >= 0; i-- {
			if _, err := s.AddRadiologyLink(ctx, d.create.ID, d.rads[i]); err != nil {
				return err
			}
		}
	}
	return nil
}
