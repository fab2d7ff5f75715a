package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/herbal-remedy-api/internal/domain"
)

// RecipeRepo stores saved recipes keyed by recipe ID.
type RecipeRepo struct {
	mu    sync.Mutex
	items map[string]domain.SavedRecipe
}

func NewRecipeRepo() *RecipeRepo {
	return &RecipeRepo{items: make(map[string]domain.SavedRecipe)}
}

func (r *RecipeRepo) Put(_ context.Context, rec *domain.SavedRecipe) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.items[rec.RecipeID] = cloneRecipe(*rec)
	return nil
}

// Get returns the stored record regardless of owner or state. Test helper.
func (r *RecipeRepo) Get(recipeID string) (domain.SavedRecipe, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	rec, ok := r.items[recipeID]
	return cloneRecipe(rec), ok
}

func (r *RecipeRepo) ListActive(_ context.Context, owner string) ([]domain.SavedRecipe, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []domain.SavedRecipe
	for _, rec := range r.items {
		if rec.Owner == owner && rec.DeletedAt == nil {
			out = append(out, cloneRecipe(rec))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (r *RecipeRepo) SoftDelete(_ context.Context, owner, recipeID string, at, purgeAt time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	rec, ok := r.items[recipeID]
	if !ok || rec.Owner != owner || rec.DeletedAt != nil {
		return fmt.Errorf("recipe not found: %w", domain.ErrNotFound)
	}
	deleted := at
	rec.DeletedAt = &deleted
	rec.PurgeAt = purgeAt.Unix()
	r.items[recipeID] = rec
	return nil
}

func (r *RecipeRepo) ListDeleted(_ context.Context, owner string, since time.Time) ([]domain.SavedRecipe, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []domain.SavedRecipe
	for _, rec := range r.items {
		if rec.Owner == owner && rec.DeletedAt != nil && rec.DeletedAt.After(since) {
			out = append(out, cloneRecipe(rec))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].DeletedAt.After(*out[j].DeletedAt) })
	return out, nil
}

func (r *RecipeRepo) Recover(_ context.Context, owner, recipeID string, since time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	rec, ok := r.items[recipeID]
	if !ok || rec.Owner != owner || rec.DeletedAt == nil || !rec.DeletedAt.After(since) {
		return fmt.Errorf("recipe not found: %w", domain.ErrNotFound)
	}
	rec.DeletedAt = nil
	rec.PurgeAt = 0
	r.items[recipeID] = rec
	return nil
}

// Sweep removes soft-deleted recipes whose purge time has been reached.
func (r *RecipeRepo) Sweep(now time.Time) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := 0
	for k, rec := range r.items {
		if rec.PurgeAt != 0 && rec.PurgeAt <= now.Unix() {
			delete(r.items, k)
			n++
		}
	}
	return n
}

func cloneRecipe(rec domain.SavedRecipe) domain.SavedRecipe {
	rec.Recipe.Ingredients = append([]string(nil), rec.Recipe.Ingredients...)
	if rec.DeletedAt != nil {
		d := *rec.DeletedAt
		rec.DeletedAt = &d
	}
	return rec
}
