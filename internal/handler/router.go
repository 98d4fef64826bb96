package handler

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/GoArmGo/Foodgram/internal/domain"
	"github.com/GoArmGo/Foodgram/internal/metrics"
	"github.com/GoArmGo/Foodgram/internal/usecase"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

// Pinger проверяет доступность базы данных для /healthz.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Dependencies собирает всё, что нужно роутеру.
type Dependencies struct {
	Recipes      usecase.RecipeUseCase
	Memberships  usecase.MembershipUseCase
	Follows      usecase.FollowUseCase
	ShoppingList usecase.ShoppingListUseCase
	Catalog      usecase.CatalogUseCase
	Users        usecase.UserUseCase
	Tokens       TokenParser
	Metrics      *metrics.Metrics
	DB           Pinger

	PageSize       int
	RequestTimeout time.Duration
	Logger         *slog.Logger
}

// NewRouter собирает маршруты API.
func NewRouter(deps Dependencies) http.Handler {
	logger := deps.Logger
	validate := NewValidator()

	recipeHandler := NewRecipeHandler(deps.Recipes, deps.Memberships, deps.ShoppingList, validate, deps.Metrics, deps.PageSize, logger)
	userHandler := NewUserHandler(deps.Users, deps.Follows, validate, deps.Metrics, deps.PageSize, logger)
	catalogHandler := NewCatalogHandler(deps.Catalog, validate, logger)
	requireAuth := RequireAuth(logger)

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(RequestLogger(logger))
	r.Use(middleware.Recoverer)
	r.Use(deps.Metrics.Middleware)
	if deps.RequestTimeout > 0 {
		r.Use(middleware.Timeout(deps.RequestTimeout))
	}

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		respondWithDomainError(w, r, domain.NewNotFoundError("not found"), logger)
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		err := &domain.Error{Kind: domain.ErrMethodNotAllowed, Message: fmt.Sprintf("Method %s not allowed.", r.Method)}
		respondWithDomainError(w, r, err, logger)
	})

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		if err := deps.DB.Ping(r.Context()); err != nil {
			logger.Error("health check failed", "error", err)
			respondWithJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "unavailable"}, logger)
			return
		}
		respondWithJSON(w, http.StatusOK, map[string]string{"status": "ok"}, logger)
	})
	r.Handle("/metrics", deps.Metrics.Handler())

	r.Route("/api", func(r chi.Router) {
		r.Use(Authenticate(deps.Tokens, logger))

		r.Post("/auth/token/login", userHandler.Login)
		r.With(requireAuth).Post("/auth/token/logout", userHandler.Logout)

		r.Route("/users", func(r chi.Router) {
			r.Get("/", userHandler.ListUsers)
			r.Post("/", userHandler.Register)
			r.With(requireAuth).Get("/me", userHandler.Me)
			r.With(requireAuth).Post("/set_password", userHandler.SetPassword)
			r.With(requireAuth).Get("/subscriptions", userHandler.ListSubscriptions)
			r.Get("/{id}", userHandler.GetUser)
			r.With(requireAuth).Post("/{id}/subscribe", userHandler.Subscribe)
			r.With(requireAuth).Delete("/{id}/subscribe", userHandler.Unsubscribe)
		})

		r.Route("/tags", func(r chi.Router) {
			r.Get("/", catalogHandler.ListTags)
			r.With(requireAuth).Post("/", catalogHandler.CreateTag)
			r.Get("/{id}", catalogHandler.GetTag)
		})

		r.Route("/ingredients", func(r chi.Router) {
			r.Get("/", catalogHandler.ListIngredients)
			r.With(requireAuth).Post("/", catalogHandler.CreateIngredient)
			r.Get("/{id}", catalogHandler.GetIngredient)
		})

		r.Route("/recipes", func(r chi.Router) {
			r.Get("/", recipeHandler.ListRecipes)
			r.With(requireAuth).Post("/", recipeHandler.CreateRecipe)
			r.With(requireAuth).Get("/download_shopping_cart", recipeHandler.DownloadShoppingCart)
			r.Get("/{id}", recipeHandler.GetRecipe)
			r.With(requireAuth).Patch("/{id}", recipeHandler.UpdateRecipe)
			r.With(requireAuth).Delete("/{id}", recipeHandler.DeleteRecipe)

			for _, rel := range domain.Relations() {
				path := "/{id}/favorite"
				if rel == domain.RelationShoppingCart {
					path = "/{id}/shopping_cart"
				}
				r.With(requireAuth).Post(path, recipeHandler.AddToRelation(rel))
				r.With(requireAuth).Delete(path, recipeHandler.RemoveFromRelation(rel))
			}
		})
	})

	return r
}
