// Package memory provides in-process implementations of the repositories used for local
// development and tests. They honour the same conditional-update contracts as the DynamoDB
// repositories, and a janitor goroutine stands in for store-level TTL.
package memory

import (
	"context"
	"log/slog"
	"time"
)

// Store bundles the in-memory repositories.
type Store struct {
	Catalog  *CatalogRepo
	Recipes  *RecipeRepo
	Pending  *PendingRepo
	Accounts *AccountRepo
}

func NewStore() *Store {
	return &Store{
		Catalog:  NewCatalogRepo(),
		Recipes:  NewRecipeRepo(),
		Pending:  NewPendingRepo(),
		Accounts: NewAccountRepo(),
	}
}

// Sweep physically removes every record whose TTL attribute is at or before now.
func (s *Store) Sweep(now time.Time) int {
	return s.Recipes.Sweep(now) + s.Pending.Sweep(now)
}

// RunJanitor sweeps on every tick until ctx is cancelled.
func (s *Store) RunJanitor(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case now := <-ticker.C:
			if n := s.Sweep(now); n > 0 {
				slog.Info("memory store TTL sweep", "purged", n)
			}
		}
	}
}
