package recipe

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/herbal-remedy-api/internal/domain"
	"github.com/herbal-remedy-api/internal/pkg/id"
	"github.com/herbal-remedy-api/internal/pkg/validate"
)

// RecoveryWindow is how long a soft-deleted recipe stays recoverable.
const RecoveryWindow = 10 * 24 * time.Hour

type Service interface {
	Generate(ctx context.Context, plant domain.PlantRef) (*domain.Recipe, error)
	Save(ctx context.Context, owner string, req domain.SaveRecipeRequest) (*domain.SavedRecipe, error)
	List(ctx context.Context, owner string) ([]domain.SavedRecipe, error)
	SoftDelete(ctx context.Context, owner, recipeID string) error
	ListRecentlyDeleted(ctx context.Context, owner string) ([]domain.SavedRecipe, error)
	Recover(ctx context.Context, owner, recipeID string) error
}

// recipeStore persists saved recipes. SoftDelete and Recover must be single conditional
// updates that fail with domain.ErrNotFound when the record is missing, owned by someone
// else, or not in the source state.
type recipeStore interface {
	Put(ctx context.Context, r *domain.SavedRecipe) error
	ListActive(ctx context.Context, owner string) ([]domain.SavedRecipe, error)
	SoftDelete(ctx context.Context, owner, recipeID string, at, purgeAt time.Time) error
	ListDeleted(ctx context.Context, owner string, since time.Time) ([]domain.SavedRecipe, error)
	Recover(ctx context.Context, owner, recipeID string, since time.Time) error
}

type generator interface {
	Generate(ctx context.Context, plant domain.PlantRef) (*domain.Recipe, error)
}

type ServiceDeps struct {
	Store     recipeStore
	Generator generator
	// Window defaults to RecoveryWindow. The store TTL must be configured with the same value.
	Window  time.Duration
	Timeout time.Duration
	Now     func() time.Time
}

type service struct {
	store     recipeStore
	generator generator
	window    time.Duration
	timeout   time.Duration
	now       func() time.Time
}

func NewService(deps ServiceDeps) Service {
	s := &service{
		store:     deps.Store,
		generator: deps.Generator,
		window:    deps.Window,
		timeout:   deps.Timeout,
		now:       deps.Now,
	}
	if s.window <= 0 {
		s.window = RecoveryWindow
	}
	if s.timeout <= 0 {
		s.timeout = 20 * time.Second
	}
	if s.now == nil {
		s.now = time.Now
	}
	return s
}

func (s *service) Generate(ctx context.Context, plant domain.PlantRef) (*domain.Recipe, error) {
	if err := validate.Struct(plant); err != nil {
		return nil, fmt.Errorf("%s: %w", err.Error(), domain.ErrValidation)
	}
	cctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()
	r, err := s.generator.Generate(cctx, plant)
	if err != nil {
		return nil, fmt.Errorf("generate recipe: %w: %w", domain.ErrUpstream, err)
	}
	if r == nil || strings.TrimSpace(r.Name) == "" || len(r.Ingredients) == 0 {
		return nil, fmt.Errorf("recipe service returned an incomplete recipe: %w", domain.ErrUpstream)
	}
	return r, nil
}

func (s *service) Save(ctx context.Context, owner string, req domain.SaveRecipeRequest) (*domain.SavedRecipe, error) {
	if err := validate.Struct(req); err != nil {
		return nil, fmt.Errorf("%s: %w", err.Error(), domain.ErrValidation)
	}
	now := s.now().UTC()
	r := &domain.SavedRecipe{
		RecipeID:  id.NewAt(now),
		Owner:     owner,
		Symptom:   req.Symptom,
		Recipe:    req.Recipe,
		CreatedAt: now,
	}
	if err := s.store.Put(ctx, r); err != nil {
		return nil, fmt.Errorf("save recipe: %w: %w", domain.ErrPersistence, err)
	}
	return r, nil
}

func (s *service) List(ctx context.Context, owner string) ([]domain.SavedRecipe, error) {
	items, err := s.store.ListActive(ctx, owner)
	if err != nil {
		return nil, fmt.Errorf("list recipes: %w: %w", domain.ErrPersistence, err)
	}
	active := items[:0]
	for _, it := range items {
		if it.DeletedAt == nil && it.Owner == owner {
			active = append(active, it)
		}
	}
	sort.SliceStable(active, func(i, j int) bool { return active[i].CreatedAt.After(active[j].CreatedAt) })
	return active, nil
}

func (s *service) SoftDelete(ctx context.Context, owner, recipeID string) error {
	at := s.now().UTC().Truncate(time.Second)
	if err := s.store.SoftDelete(ctx, owner, recipeID, at, at.Add(s.window)); err != nil {
		return storeErr("delete recipe", err)
	}
	return nil
}

// ListRecentlyDeleted filters by age here as well as in the store query: the store's
// TTL sweep lags, so expired rows may still be physically present.
func (s *service) ListRecentlyDeleted(ctx context.Context, owner string) ([]domain.SavedRecipe, error) {
	since := s.since()
	items, err := s.store.ListDeleted(ctx, owner, since)
	if err != nil {
		return nil, fmt.Errorf("list deleted recipes: %w: %w", domain.ErrPersistence, err)
	}
	recent := items[:0]
	for _, it := range items {
		if it.DeletedAt != nil && it.DeletedAt.After(since) && it.Owner == owner {
			recent = append(recent, it)
		}
	}
	sort.SliceStable(recent, func(i, j int) bool { return recent[i].DeletedAt.After(*recent[j].DeletedAt) })
	return recent, nil
}

func (s *service) Recover(ctx context.Context, owner, recipeID string) error {
	if err := s.store.Recover(ctx, owner, recipeID, s.since()); err != nil {
		return storeErr("recover recipe", err)
	}
	return nil
}

// since is the oldest deletion time still inside the recovery window (exclusive).
func (s *service) since() time.Time {
	return s.now().UTC().Add(-s.window)
}

func storeErr(op string, err error) error {
	if errors.Is(err, domain.ErrNotFound) {
		return fmt.Errorf("%s: %w", op, domain.ErrNotFound)
	}
	return fmt.Errorf("%s: %w: %w", op, domain.ErrPersistence, err)
}
