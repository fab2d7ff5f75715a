package http

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/herbal-remedy-api/internal/config"
	"github.com/herbal-remedy-api/internal/transport/http/handler"
	appmiddleware "github.com/herbal-remedy-api/internal/transport/http/middleware"
	"golang.org/x/time/rate"
)

// NewRouter builds and returns the application router. ctx bounds the rate limiter's
// background cleanup.
func NewRouter(ctx context.Context, cfg *config.Config, deps *Deps) http.Handler {
	r := chi.NewRouter()
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(chimiddleware.Logger)
	r.Use(chimiddleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	// 5 requests/second, burst of 10, per client IP.
	sensitiveRL := appmiddleware.NewRateLimiter(ctx, rate.Limit(5), 10)

	healthH := handler.NewHealthHandler()
	recommendH := handler.NewRecommendationHandler(deps.Recommend)
	recipeH := handler.NewRecipeHandler(deps.Recipes)
	accountH := handler.NewAccountHandler(deps.Accounts)

	r.Route("/v1", func(r chi.Router) {
		r.Get("/health-check/{action}", healthH.Ping)

		r.Post("/recommendations", recommendH.Recommend)
		r.Post("/recipes/generate", recipeH.Generate)

		r.Route("/accounts", func(r chi.Router) {
			r.With(sensitiveRL.Limit).Post("/register", accountH.Register)
			r.Get("/verify", accountH.Verify)
			r.With(sensitiveRL.Limit).Post("/resend-verification", accountH.ResendVerification)
			r.With(sensitiveRL.Limit).Post("/login", accountH.Login)
			r.Get("/{username}/masked-email", accountH.MaskedEmail)
		})

		r.Route("/saved-recipes", func(r chi.Router) {
			r.Use(appmiddleware.Auth(deps.Tokens))

			r.Post("/", recipeH.Save)
			r.Get("/", recipeH.List)
			r.Get("/deleted", recipeH.ListDeleted)
			r.Delete("/{id}", recipeH.Delete)
			r.Post("/{id}/recover", recipeH.Recover)
		})
	})

	return r
}
