package handler

import (
	"fmt"
	"log/slog"
	"net/http"

	"github.com/GoArmGo/Foodgram/internal/domain"
	"github.com/GoArmGo/Foodgram/internal/metrics"
	"github.com/GoArmGo/Foodgram/internal/usecase"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
)

// RecipeHandler — обработчик HTTP-запросов для рецептов, избранного и корзины.
type RecipeHandler struct {
	recipes      usecase.RecipeUseCase
	memberships  usecase.MembershipUseCase
	shoppingList usecase.ShoppingListUseCase
	validate     *validator.Validate
	metrics      *metrics.Metrics
	pageSize     int
	logger       *slog.Logger
}

func NewRecipeHandler(
	recipes usecase.RecipeUseCase,
	memberships usecase.MembershipUseCase,
	shoppingList usecase.ShoppingListUseCase,
	validate *validator.Validate,
	m *metrics.Metrics,
	pageSize int,
	logger *slog.Logger,
) *RecipeHandler {
	return &RecipeHandler{
		recipes:      recipes,
		memberships:  memberships,
		shoppingList: shoppingList,
		validate:     validate,
		metrics:      m,
		pageSize:     pageSize,
		logger:       logger,
	}
}

type ingredientAmountRequest struct {
	ID     uuid.UUID `json:"id" validate:"required"`
	Amount int       `json:"amount"`
}

type recipeRequest struct {
	Ingredients []ingredientAmountRequest `json:"ingredients" validate:"required,dive"`
	Tags        []uuid.UUID               `json:"tags" validate:"required"`
	Image       string                    `json:"image"`
	Name        string                    `json:"name" validate:"required,max=200"`
	Text        string                    `json:"text" validate:"required"`
	CookingTime int                       `json:"cooking_time"`
}

func (req recipeRequest) toInput() domain.RecipeInput {
	in := domain.RecipeInput{
		Name:        req.Name,
		Text:        req.Text,
		Image:       req.Image,
		CookingTime: req.CookingTime,
		TagIDs:      req.Tags,
		Ingredients: make([]domain.IngredientAmount, 0, len(req.Ingredients)),
	}
	for _, item := range req.Ingredients {
		in.Ingredients = append(in.Ingredients, domain.IngredientAmount{IngredientID: item.ID, Amount: item.Amount})
	}
	return in
}

func (h *RecipeHandler) decodeRecipe(w http.ResponseWriter, r *http.Request) (domain.RecipeInput, error) {
	var req recipeRequest
	if err := decodeJSON(w, r, &req); err != nil {
		return domain.RecipeInput{}, err
	}
	if err := validateRequest(h.validate, req); err != nil {
		return domain.RecipeInput{}, err
	}
	return req.toInput(), nil
}

// ListRecipes — GET /recipes с фильтрами author, tags, is_favorited, is_in_shopping_cart.
func (h *RecipeHandler) ListRecipes(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	filter := domain.RecipeFilter{
		TagSlugs: q["tags"],
		Page:     parsePage(r, h.pageSize),
	}

	if raw := q.Get("author"); raw != "" {
		authorID, err := uuid.Parse(raw)
		if err != nil {
			respondWithDomainError(w, r, domain.NewValidationError("author", "select a valid choice"), h.logger)
			return
		}
		filter.AuthorID = &authorID
	}

	var err error
	if filter.IsFavorited, err = domain.ParseBinaryFlag("is_favorited", q.Get("is_favorited")); err != nil {
		respondWithDomainError(w, r, err, h.logger)
		return
	}
	if filter.IsInShoppingCart, err = domain.ParseBinaryFlag("is_in_shopping_cart", q.Get("is_in_shopping_cart")); err != nil {
		respondWithDomainError(w, r, err, h.logger)
		return
	}

	page, err := h.recipes.ListRecipes(r.Context(), viewer(r), filter)
	if err != nil {
		respondWithDomainError(w, r, err, h.logger)
		return
	}
	respondWithJSON(w, http.StatusOK, newPageResponse(r, page), h.logger)
}

func (h *RecipeHandler) GetRecipe(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id", "recipe not found")
	if err != nil {
		respondWithDomainError(w, r, err, h.logger)
		return
	}
	view, err := h.recipes.GetRecipe(r.Context(), viewer(r), id)
	if err != nil {
		respondWithDomainError(w, r, err, h.logger)
		return
	}
	respondWithJSON(w, http.StatusOK, view, h.logger)
}

func (h *RecipeHandler) CreateRecipe(w http.ResponseWriter, r *http.Request) {
	in, err := h.decodeRecipe(w, r)
	if err != nil {
		respondWithDomainError(w, r, err, h.logger)
		return
	}
	view, err := h.recipes.CreateRecipe(r.Context(), viewer(r), in)
	if err != nil {
		respondWithDomainError(w, r, err, h.logger)
		return
	}
	h.metrics.RecipesCreated.Inc()
	respondWithJSON(w, http.StatusCreated, view, h.logger)
}

func (h *RecipeHandler) UpdateRecipe(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id", "recipe not found")
	if err != nil {
		respondWithDomainError(w, r, err, h.logger)
		return
	}
	in, err := h.decodeRecipe(w, r)
	if err != nil {
		respondWithDomainError(w, r, err, h.logger)
		return
	}
	view, err := h.recipes.UpdateRecipe(r.Context(), viewer(r), id, in)
	if err != nil {
		respondWithDomainError(w, r, err, h.logger)
		return
	}
	respondWithJSON(w, http.StatusOK, view, h.logger)
}

func (h *RecipeHandler) DeleteRecipe(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id", "recipe not found")
	if err != nil {
		respondWithDomainError(w, r, err, h.logger)
		return
	}
	if err := h.recipes.DeleteRecipe(r.Context(), viewer(r), id); err != nil {
		respondWithDomainError(w, r, err, h.logger)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// AddToRelation и RemoveFromRelation обслуживают /favorite и /shopping_cart одинаково.
func (h *RecipeHandler) AddToRelation(rel domain.Relation) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := pathID(r, "id", "recipe not found")
		if err != nil {
			respondWithDomainError(w, r, err, h.logger)
			return
		}
		snippet, err := h.memberships.AddRecipe(r.Context(), viewer(r), rel, id)
		if err != nil {
			respondWithDomainError(w, r, err, h.logger)
			return
		}
		h.metrics.MembershipChanges.WithLabelValues(string(rel), "add").Inc()
		respondWithJSON(w, http.StatusCreated, snippet, h.logger)
	}
}

func (h *RecipeHandler) RemoveFromRelation(rel domain.Relation) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := pathID(r, "id", "recipe not found")
		if err != nil {
			respondWithDomainError(w, r, err, h.logger)
			return
		}
		if err := h.memberships.RemoveRecipe(r.Context(), viewer(r), rel, id); err != nil {
			respondWithDomainError(w, r, err, h.logger)
			return
		}
		h.metrics.MembershipChanges.WithLabelValues(string(rel), "remove").Inc()
		w.WriteHeader(http.StatusNoContent)
	}
}

// DownloadShoppingCart отдаёт список покупок текстовым файлом.
func (h *RecipeHandler) DownloadShoppingCart(w http.ResponseWriter, r *http.Request) {
	file, err := h.shoppingList.BuildShoppingList(r.Context(), viewer(r))
	if err != nil {
		respondWithDomainError(w, r, err, h.logger)
		return
	}
	h.metrics.ShoppingListDownloads.Inc()

	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", file.Filename))
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write([]byte(file.Content)); err != nil {
		h.logger.Error("failed to write shopping list", "error", err)
	}
}
