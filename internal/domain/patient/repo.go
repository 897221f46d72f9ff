package patient

import "context"

// Repository holds the authoritative patient collection. Implementations
// return deep copies; stored records change only through Insert and Replace,
// each swapping exactly one patient.
type Repository interface {
	// Insert adds a new patient. Returns DuplicateIDError if the id is taken.
	Insert(ctx context.Context, p *Patient) error
	// Get returns the patient or NotFoundError.
	Get(ctx context.Context, id string) (*Patient, error)
	// Replace swaps the patient stored under currentID with p, atomically
	// with respect to lookups. p.ID may differ from currentID (a rename);
	// the patient keeps its position in store order. Returns NotFoundError
	// if currentID is absent and DuplicateIDError if p.ID belongs to a
	// different patient.
	Replace(ctx context.Context, currentID string, p *Patient) error
	// Search returns patients whose name or id contains the term,
	// case-insensitively, in store order. The empty term matches all.
	Search(ctx context.Context, term string) ([]*Patient, error)
}
