package http

import (
	"github.com/herbal-remedy-api/internal/application/account"
	"github.com/herbal-remedy-api/internal/application/recipe"
	"github.com/herbal-remedy-api/internal/application/recommend"
	appmiddleware "github.com/herbal-remedy-api/internal/transport/http/middleware"
)

// Deps holds the services and token verifier the router wires into handlers.
type Deps struct {
	Recommend recommend.Service
	Recipes   recipe.Service
	Accounts  account.Service
	Tokens    appmiddleware.TokenVerifier
}
