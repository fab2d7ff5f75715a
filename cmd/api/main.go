package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/herbal-remedy-api/internal/application/account"
	"github.com/herbal-remedy-api/internal/application/ranking"
	"github.com/herbal-remedy-api/internal/application/recipe"
	"github.com/herbal-remedy-api/internal/application/recommend"
	"github.com/herbal-remedy-api/internal/config"
	"github.com/herbal-remedy-api/internal/domain"
	"github.com/herbal-remedy-api/internal/infrastructure/dynamo"
	genaiinfra "github.com/herbal-remedy-api/internal/infrastructure/genai"
	jwtinfra "github.com/herbal-remedy-api/internal/infrastructure/jwt"
	"github.com/herbal-remedy-api/internal/infrastructure/memory"
	s3infra "github.com/herbal-remedy-api/internal/infrastructure/s3"
	"github.com/herbal-remedy-api/internal/infrastructure/smtp"
	"github.com/herbal-remedy-api/internal/ingest"
	"github.com/herbal-remedy-api/internal/logging"
	transporthttp "github.com/herbal-remedy-api/internal/transport/http"
	"github.com/joho/godotenv"
)

type recipeStore interface {
	Put(ctx context.Context, r *domain.SavedRecipe) error
	ListActive(ctx context.Context, owner string) ([]domain.SavedRecipe, error)
	SoftDelete(ctx context.Context, owner, recipeID string, at, purgeAt time.Time) error
	ListDeleted(ctx context.Context, owner string, since time.Time) ([]domain.SavedRecipe, error)
	Recover(ctx context.Context, owner, recipeID string, since time.Time) error
}

type pendingStore interface {
	Create(ctx context.Context, p *domain.PendingAccount, now time.Time) error
	GetByEmail(ctx context.Context, email string) (*domain.PendingAccount, error)
	GetByUsername(ctx context.Context, username string) (*domain.PendingAccount, error)
	GetByToken(ctx context.Context, token string) (*domain.PendingAccount, error)
	RotateToken(ctx context.Context, email, token string, expiresAt int64, now time.Time) error
	Delete(ctx context.Context, email string) error
}

type accountStore interface {
	Create(ctx context.Context, a *domain.Account) error
	GetByUsername(ctx context.Context, username string) (*domain.Account, error)
	GetByEmail(ctx context.Context, email string) (*domain.Account, error)
}

// stores groups the persistence adapters selected by STORE_BACKEND.
type stores struct {
	catalog  ranking.CatalogStore
	recipes  recipeStore
	pending  pendingStore
	accounts accountStore
}

func main() {
	if err := godotenv.Load(); err != nil {
		fmt.Fprintln(os.Stderr, "no .env file found, reading from environment")
	}

	cfg := config.Load()
	logging.New(cfg)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg); err != nil {
		slog.Error("server exited", "err", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg *config.Config) error {
	st, err := openStores(ctx, cfg)
	if err != nil {
		return err
	}

	jwtProvider, err := jwtinfra.NewProvider(cfg)
	if err != nil {
		return fmt.Errorf("jwt provider: %w", err)
	}

	genaiClient, err := genaiinfra.NewClient(ctx, cfg.GenAI)
	if err != nil {
		return fmt.Errorf("genai client: %w", err)
	}

	recommendSvc := recommend.NewService(recommend.ServiceDeps{
		Extractor:  genaiinfra.NewExtractor(genaiClient.Models, cfg.GenAI.ExtractModel),
		Classifier: genaiinfra.NewClassifier(genaiClient.Models, cfg.GenAI.ClassifyModel),
		Ranker:     ranking.NewEngine(st.catalog),
		Timeout:    cfg.UpstreamTimeout,
	})
	recipeSvc := recipe.NewService(recipe.ServiceDeps{
		Store:     st.recipes,
		Generator: genaiinfra.NewRecipeGenerator(genaiClient.Models, cfg.GenAI.RecipeModel),
		Window:    cfg.RecoveryWindow,
		Timeout:   cfg.UpstreamTimeout,
	})
	accountSvc := account.NewService(account.ServiceDeps{
		Pending:         st.pending,
		Accounts:        st.accounts,
		Mailer:          smtp.NewMailer(cfg),
		Tokens:          jwtProvider,
		VerifyURLBase:   cfg.VerifyURLBase,
		VerificationTTL: cfg.VerificationTTL,
		MailTimeout:     cfg.MailTimeout,
	})

	router := transporthttp.NewRouter(ctx, cfg, &transporthttp.Deps{
		Recommend: recommendSvc,
		Recipes:   recipeSvc,
		Accounts:  accountSvc,
		Tokens:    jwtProvider,
	})

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%s", cfg.AppPort),
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		slog.Info("server starting", "port", cfg.AppPort, "env", cfg.AppEnv, "store", cfg.StoreBackend)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	slog.Info("shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("forced shutdown: %w", err)
	}
	slog.Info("server stopped")
	return nil
}

func openStores(ctx context.Context, cfg *config.Config) (*stores, error) {
	switch cfg.StoreBackend {
	case "memory":
		mem := memory.NewStore()
		go mem.RunJanitor(ctx, cfg.MemorySweepInterval)
		if cfg.CatalogSeed != "" {
			if err := seedCatalog(ctx, cfg, mem.Catalog); err != nil {
				return nil, err
			}
		}
		return &stores{catalog: mem.Catalog, recipes: mem.Recipes, pending: mem.Pending, accounts: mem.Accounts}, nil
	case "dynamo":
		client, err := dynamo.NewClient(ctx, cfg)
		if err != nil {
			return nil, fmt.Errorf("dynamo client: %w", err)
		}
		dynamo.Bootstrap(ctx, client, cfg.DynamoTables)
		return &stores{
			catalog:  dynamo.NewCatalogRepo(client, cfg.DynamoTables.Plants),
			recipes:  dynamo.NewSavedRecipeRepo(client, cfg.DynamoTables.SavedRecipes),
			pending:  dynamo.NewPendingAccountRepo(client, cfg.DynamoTables.PendingAccounts),
			accounts: dynamo.NewAccountRepo(client, cfg.DynamoTables.Accounts),
		}, nil
	default:
		return nil, fmt.Errorf("unknown STORE_BACKEND %q", cfg.StoreBackend)
	}
}

func seedCatalog(ctx context.Context, cfg *config.Config, sink ingest.Sink) error {
	var fetch ingest.FetchFunc
	if s3Client, err := s3infra.NewClient(ctx, cfg); err == nil {
		fetch = s3infra.Fetcher(s3Client)
	} else {
		slog.Warn("object store unavailable, only local catalog seeds will load", "err", err)
	}
	rc, err := ingest.Open(ctx, cfg.CatalogSeed, fetch)
	if err != nil {
		return err
	}
	defer rc.Close()
	res, err := ingest.Load(ctx, rc, sink, 0)
	if err != nil {
		return fmt.Errorf("seed catalog: %w", err)
	}
	slog.Info("catalog seeded", "source", cfg.CatalogSeed, "plants", len(res.Docs), "rows", res.Rows, "skipped", res.Skipped)
	return nil
}
