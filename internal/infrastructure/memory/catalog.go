package memory

import (
	"context"
	"strings"
	"sync"

	"github.com/herbal-remedy-api/internal/domain"
)

// CatalogRepo keeps catalog documents in insertion order.
type CatalogRepo struct {
	mu   sync.RWMutex
	docs []domain.CatalogDocument
}

func NewCatalogRepo() *CatalogRepo {
	return &CatalogRepo{}
}

// Put appends documents, preserving their order for tie-breaking.
func (r *CatalogRepo) Put(_ context.Context, docs ...domain.CatalogDocument) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, d := range docs {
		r.docs = append(r.docs, cloneDoc(d))
	}
	return nil
}

// FindByUse mirrors DynamoDB's contains(): element match on lists, substring match on strings.
func (r *CatalogRepo) FindByUse(_ context.Context, use string) ([]domain.CatalogDocument, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var out []domain.CatalogDocument
	for _, d := range r.docs {
		if containsUse(d[domain.CatalogUses], use) {
			out = append(out, cloneDoc(d))
		}
	}
	return out, nil
}

func containsUse(v any, use string) bool {
	switch t := v.(type) {
	case string:
		return strings.Contains(t, use)
	case []string:
		for _, s := range t {
			if s == use {
				return true
			}
		}
	case []any:
		for _, s := range t {
			if s == use {
				return true
			}
		}
	}
	return false
}

func cloneDoc(d domain.CatalogDocument) domain.CatalogDocument {
	out := make(domain.CatalogDocument, len(d))
	for k, v := range d {
		out[k] = v
	}
	return out
}

func (r *CatalogRepo) PutBatch(ctx context.Context, docs []domain.CatalogDocument) error {
	return r.Put(ctx, docs...)
}
