package catalog

import (
	"context"
	"fmt"
	"sync"

	"github.com/diabetes-prediction-engine/internal/domain"
)

// MemoryStore serves the built-in reference data from memory.
type MemoryStore struct {
	mu     sync.RWMutex
	types  map[string]*domain.DiabetesTypeInfo
	order  []string
	guides map[string]*domain.FieldGuide
	fields []string
}

// NewMemoryStore returns a store loaded with the built-in records.
func NewMemoryStore() *MemoryStore {
	s := &MemoryStore{
		types:  make(map[string]*domain.DiabetesTypeInfo),
		guides: make(map[string]*domain.FieldGuide),
	}
	for i, t := range DiabetesTypes() {
		t.ID = int64(i + 1)
		s.types[t.NameEn] = t
		s.order = append(s.order, t.NameEn)
	}
	for i, g := range FieldGuides() {
		g.ID = int64(i + 1)
		s.guides[g.FieldName] = g
		s.fields = append(s.fields, g.FieldName)
	}
	return s
}

// FindByCanonicalName returns the type with the given English name.
func (s *MemoryStore) FindByCanonicalName(_ context.Context, name string) (*domain.DiabetesTypeInfo, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	t, ok := s.types[name]
	if !ok {
		return nil, fmt.Errorf("diabetes type %q not found: %w", name, domain.ErrNotFound)
	}
	cp := *t
	return &cp, nil
}

// LookupDiabetesInfo implements domain.DiabetesInfoLookup.
func (s *MemoryStore) LookupDiabetesInfo(ctx context.Context, name string) (*domain.DiabetesTypeInfo, error) {
	return s.FindByCanonicalName(ctx, name)
}

// List returns every type in seed order.
func (s *MemoryStore) List(_ context.Context) ([]*domain.DiabetesTypeInfo, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]*domain.DiabetesTypeInfo, 0, len(s.order))
	for _, name := range s.order {
		cp := *s.types[name]
		out = append(out, &cp)
	}
	return out, nil
}

// Guides exposes the field guides through domain.FieldGuideRepository.
func (s *MemoryStore) Guides() domain.FieldGuideRepository {
	return guideView{s}
}

type guideView struct {
	s *MemoryStore
}

func (g guideView) FindByField(_ context.Context, field string) (*domain.FieldGuide, error) {
	g.s.mu.RLock()
	defer g.s.mu.RUnlock()

	guide, ok := g.s.guides[field]
	if !ok {
		return nil, fmt.Errorf("field guide %q not found: %w", field, domain.ErrNotFound)
	}
	cp := *guide
	return &cp, nil
}

func (g guideView) List(_ context.Context) ([]*domain.FieldGuide, error) {
	g.s.mu.RLock()
	defer g.s.mu.RUnlock()

	out := make([]*domain.FieldGuide, 0, len(g.s.fields))
	for _, name := range g.s.fields {
		cp := *g.s.guides[name]
		out = append(out, &cp)
	}
	return out, nil
}
