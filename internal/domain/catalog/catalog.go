// Package catalog serves the read-only lab test catalog used to pre-fill
// lab-result forms. Entries are built in; nothing here is patient-owned or
// mutable at runtime.
package catalog

import "strings"

// LabDefinition is one catalog entry: a test name with its default unit and
// reference range.
type LabDefinition struct {
	Name           string `json:"name"`
	ReferenceRange string `json:"reference_range"`
	Unit           string `json:"unit"`
}

// Catalog holds the built-in lab definitions in a fixed display order.
type Catalog struct {
	defs []LabDefinition
}

// New returns a Catalog pre-loaded with the built-in definitions.
func New() *Catalog {
	return &Catalog{defs: builtIn()}
}

func builtIn() []LabDefinition {
	return []LabDefinition{
		{Name: "Hemoglobin", ReferenceRange: "13.5-17.5", Unit: "g/dL"},
		{Name: "Hematocrit", ReferenceRange: "41-53", Unit: "%"},
		{Name: "WBC Count", ReferenceRange: "4.5-11.0", Unit: "x10^9/L"},
		{Name: "Platelet Count", ReferenceRange: "150-400", Unit: "x10^9/L"},
		{Name: "Glucose", ReferenceRange: "70-100", Unit: "mg/dL"},
		{Name: "HbA1c", ReferenceRange: "4.0-5.6", Unit: "%"},
		{Name: "Creatinine", ReferenceRange: "0.7-1.3", Unit: "mg/dL"},
		{Name: "BUN", ReferenceRange: "7-20", Unit: "mg/dL"},
		{Name: "Sodium", ReferenceRange: "135-145", Unit: "mmol/L"},
		{Name: "Potassium", ReferenceRange: "3.5-5.0", Unit: "mmol/L"},
		{Name: "Total Cholesterol", ReferenceRange: "<200", Unit: "mg/dL"},
		{Name: "LDL Cholesterol", ReferenceRange: "<100", Unit: "mg/dL"},
		{Name: "HDL Cholesterol", ReferenceRange: ">40", Unit: "mg/dL"},
		{Name: "Triglycerides", ReferenceRange: "<150", Unit: "mg/dL"},
		{Name: "TSH", ReferenceRange: "0.4-4.0", Unit: "mIU/L"},
		{Name: "ALT", ReferenceRange: "7-56", Unit: "U/L"},
		{Name: "AST", ReferenceRange: "10-40", Unit: "U/L"},
		{Name: "ESR", ReferenceRange: "0-22", Unit: "mm/hr"},
		{Name: "CRP", ReferenceRange: "<3.0", Unit: "mg/L"},
	}
}

// List returns all definitions in display order. Callers get a copy.
func (c *Catalog) List() []LabDefinition {
	return append([]LabDefinition(nil), c.defs...)
}

// Lookup finds a definition by name, case-insensitively.
func (c *Catalog) Lookup(name string) (LabDefinition, bool) {
	for _, d := range c.defs {
		if strings.EqualFold(d.Name, name) {
			return d, true
		}
	}
	return LabDefinition{}, false
}
