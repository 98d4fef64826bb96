package handler

import (
	"log/slog"
	"net/http"

	"github.com/GoArmGo/Foodgram/internal/domain"
	"github.com/GoArmGo/Foodgram/internal/usecase"
	"github.com/go-playground/validator/v10"
)

// CatalogHandler обслуживает теги и ингредиенты.
type CatalogHandler struct {
	catalog  usecase.CatalogUseCase
	validate *validator.Validate
	logger   *slog.Logger
}

func NewCatalogHandler(catalog usecase.CatalogUseCase, validate *validator.Validate, logger *slog.Logger) *CatalogHandler {
	return &CatalogHandler{catalog: catalog, validate: validate, logger: logger}
}

type tagRequest struct {
	Name  string `json:"name" validate:"required,max=200"`
	Color string `json:"color" validate:"required,hexcolor,len=7"`
	Slug  string `json:"slug" validate:"required,max=200"`
}

type ingredientRequest struct {
	Name            string `json:"name" validate:"required,max=200"`
	MeasurementUnit string `json:"measurement_unit" validate:"required,max=200"`
}

func (h *CatalogHandler) ListTags(w http.ResponseWriter, r *http.Request) {
	tags, err := h.catalog.ListTags(r.Context())
	if err != nil {
		respondWithDomainError(w, r, err, h.logger)
		return
	}
	if tags == nil {
		tags = []domain.Tag{}
	}
	respondWithJSON(w, http.StatusOK, tags, h.logger)
}

func (h *CatalogHandler) GetTag(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id", "tag not found")
	if err != nil {
		respondWithDomainError(w, r, err, h.logger)
		return
	}
	tag, err := h.catalog.GetTag(r.Context(), id)
	if err != nil {
		respondWithDomainError(w, r, err, h.logger)
		return
	}
	respondWithJSON(w, http.StatusOK, tag, h.logger)
}

func (h *CatalogHandler) CreateTag(w http.ResponseWriter, r *http.Request) {
	var req tagRequest
	if err := decodeJSON(w, r, &req); err != nil {
		respondWithDomainError(w, r, err, h.logger)
		return
	}
	if err := validateRequest(h.validate, req); err != nil {
		respondWithDomainError(w, r, err, h.logger)
		return
	}
	tag, err := h.catalog.CreateTag(r.Context(), viewer(r), domain.Tag{Name: req.Name, Color: req.Color, Slug: req.Slug})
	if err != nil {
		respondWithDomainError(w, r, err, h.logger)
		return
	}
	respondWithJSON(w, http.StatusCreated, tag, h.logger)
}

// ListIngredients: GET /ingredients?name=<префикс>.
func (h *CatalogHandler) ListIngredients(w http.ResponseWriter, r *http.Request) {
	ingredients, err := h.catalog.SearchIngredients(r.Context(), r.URL.Query().Get("name"))
	if err != nil {
		respondWithDomainError(w, r, err, h.logger)
		return
	}
	if ingredients == nil {
		ingredients = []domain.Ingredient{}
	}
	respondWithJSON(w, http.StatusOK, ingredients, h.logger)
}

func (h *CatalogHandler) GetIngredient(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id", "ingredient not found")
	if err != nil {
		respondWithDomainError(w, r, err, h.logger)
		return
	}
	ingredient, err := h.catalog.GetIngredient(r.Context(), id)
	if err != nil {
		respondWithDomainError(w, r, err, h.logger)
		return
	}
	respondWithJSON(w, http.StatusOK, ingredient, h.logger)
}

func (h *CatalogHandler) CreateIngredient(w http.ResponseWriter, r *http.Request) {
	var req ingredientRequest
	if err := decodeJSON(w, r, &req); err != nil {
		respondWithDomainError(w, r, err, h.logger)
		return
	}
	if err := validateRequest(h.validate, req); err != nil {
		respondWithDomainError(w, r, err, h.logger)
		return
	}
	ingredient, err := h.catalog.CreateIngredient(r.Context(), viewer(r), domain.Ingredient{
		Name:            req.Name,
		MeasurementUnit: req.MeasurementUnit,
	})
	if err != nil {
		respondWithDomainError(w, r, err, h.logger)
		return
	}
	respondWithJSON(w, http.StatusCreated, ingredient, h.logger)
}
