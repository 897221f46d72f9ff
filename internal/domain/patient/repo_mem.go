package patient

import (
	"context"
	"strings"
	"sync"
)

// MemRepo is the in-memory Repository. The store is process-lifetime: built
// once at startup, gone at exit. A single RWMutex gives every operation one
// observable transition; rename in particular is one lock acquisition, so
// there is no window where a patient is findable under neither id.
type MemRepo struct {
	mu    sync.RWMutex
	order []*Patient
	index map[string]int
}

func NewMemRepo() *MemRepo {
	return &MemRepo{index: make(map[string]int)}
}

func (r *MemRepo) Insert(_ context.Context, p *Patient) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.index[p.ID]; ok {
		return &DuplicateIDError{ID: p.ID}
	}
	r.index[p.ID] = len(r.order)
	r.order = append(r.order, p.Clone())
	return nil
}

func (r *MemRepo) Get(_ context.Context, id string) (*Patient, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	i, ok := r.index[id]
	if !ok {
		return nil, &NotFoundError{Kind: "patient", ID: id}
	}
	return r.order[i].Clone(), nil
}

func (r *MemRepo) Replace(_ context.Context, currentID string, p *Patient) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	i, ok := r.index[currentID]
	if !ok {
		return &NotFoundError{Kind: "patient", ID: currentID}
	}
	if p.ID != currentID {
		if _, taken := r.index[p.ID]; taken {
			return &DuplicateIDError{ID: p.ID}
		}
		delete(r.index, currentID)
		r.index[p.ID] = i
	}
	r.order[i] = p.Clone()
	return nil
}

func (r *MemRepo) Search(_ context.Context, term string) ([]*Patient, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	term = strings.ToLower(strings.TrimSpace(term))
	var result []*Patient
	for _, p := range r.order {
		if p.Matches(term) {
			result = append(result, p.Clone())
		}
	}
	return result, nil
}

// Len reports the number of stored patients.
func (r *MemRepo) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.order)
}
