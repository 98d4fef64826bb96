package domain

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Ограничения рецепта.
const (
	MaxRecipeNameLength = 200
	MinCookingTime      = 1
	MaxCookingTime      = 2880
	MinAmount           = 1
	MaxAmount           = 10000
)

// Recipe представляет модель рецепта, соответствует таблице recipes в бд.
// Пара (author_id, name) уникальна.
type Recipe struct {
	ID          uuid.UUID          `gorm:"type:uuid;primaryKey"`
	AuthorID    uuid.UUID          `gorm:"type:uuid;not null;uniqueIndex:idx_recipe_author_name"`
	Name        string             `gorm:"size:200;not null;uniqueIndex:idx_recipe_author_name"`
	Text        string             `gorm:"not null"`
	ImageKey    string             `gorm:"size:255;not null"`
	ImageURL    string             `gorm:"size:500;not null"`
	CookingTime int                `gorm:"not null"`
	PubDate     time.Time          `gorm:"not null;index"`
	Author      *User              `gorm:"foreignKey:AuthorID"`
	Tags        []RecipeTag        `gorm:"foreignKey:RecipeID;constraint:OnDelete:CASCADE"`
	Ingredients []RecipeIngredient `gorm:"foreignKey:RecipeID;constraint:OnDelete:CASCADE"`
}

func (Recipe) TableName() string {
	return "recipes"
}

// RecipeTag связывает рецепт с тегом.
type RecipeTag struct {
	RecipeID uuid.UUID `gorm:"type:uuid;primaryKey"`
	TagID    uuid.UUID `gorm:"type:uuid;primaryKey"`
	Tag      *Tag      `gorm:"foreignKey:TagID"`
}

func (RecipeTag) TableName() string {
	return "recipe_tags"
}

// RecipeIngredient хранит количество ингредиента в рецепте.
// Position сохраняет порядок, в котором ингредиенты были переданы.
type RecipeIngredient struct {
	RecipeID     uuid.UUID   `gorm:"type:uuid;primaryKey"`
	IngredientID uuid.UUID   `gorm:"type:uuid;primaryKey"`
	Amount       int         `gorm:"not null"`
	Position     int         `gorm:"not null;default:0"`
	Ingredient   *Ingredient `gorm:"foreignKey:IngredientID"`
}

func (RecipeIngredient) TableName() string {
	return "recipe_ingredients"
}

// IngredientAmount описывает строку ингредиента во входных данных рецепта.
type IngredientAmount struct {
	IngredientID uuid.UUID
	Amount       int
}

// RecipeInput — данные для создания и обновления рецепта.
// Image содержит data URI; при обновлении пустая строка оставляет прежнее изображение.
type RecipeInput struct {
	Name        string
	Text        string
	Image       string
	CookingTime int
	TagIDs      []uuid.UUID
	Ingredients []IngredientAmount
}

// Validate проверяет входные данные до любых изменений в хранилище.
func (in RecipeInput) Validate(requireImage bool) error {
	switch {
	case strings.TrimSpace(in.Name) == "":
		return NewValidationError("name", "name field is required")
	case len([]rune(in.Name)) > MaxRecipeNameLength:
		return NewValidationError("name", fmt.Sprintf("name must be at most %d characters", MaxRecipeNameLength))
	case strings.TrimSpace(in.Text) == "":
		return NewValidationError("text", "text field is required")
	case requireImage && in.Image == "":
		return NewValidationError("image", "image field is required")
	case in.CookingTime < MinCookingTime || in.CookingTime > MaxCookingTime:
		return NewValidationError("cooking_time",
			fmt.Sprintf("cooking_time must be between %d and %d", MinCookingTime, MaxCookingTime))
	}

	if len(in.TagIDs) == 0 {
		return NewValidationError("tags", "tags field is required")
	}
	seenTags := make(map[uuid.UUID]struct{}, len(in.TagIDs))
	for _, id := range in.TagIDs {
		if _, ok := seenTags[id]; ok {
			return NewValidationError("tags", "tags repeat")
		}
		seenTags[id] = struct{}{}
	}

	if len(in.Ingredients) == 0 {
		return NewValidationError("ingredients", "ingredients field is required")
	}
	seenIngredients := make(map[uuid.UUID]struct{}, len(in.Ingredients))
	for _, item := range in.Ingredients {
		if _, ok := seenIngredients[item.IngredientID]; ok {
			return NewValidationError("ingredients", "ingredients repeat")
		}
		seenIngredients[item.IngredientID] = struct{}{}
		if item.Amount < MinAmount || item.Amount > MaxAmount {
			return NewValidationError("amount",
				fmt.Sprintf("amount must be between %d and %d", MinAmount, MaxAmount))
		}
	}
	return nil
}

// IngredientIDs возвращает идентификаторы ингредиентов в исходном порядке.
func (in RecipeInput) IngredientIDs() []uuid.UUID {
	ids := make([]uuid.UUID, 0, len(in.Ingredients))
	for _, item := range in.Ingredients {
		ids = append(ids, item.IngredientID)
	}
	return ids
}

// ApplyComponents заменяет теги и ингредиенты рецепта на переданные во входных данных.
func (r *Recipe) ApplyComponents(in RecipeInput) {
	r.Tags = make([]RecipeTag, 0, len(in.TagIDs))
	for _, id := range in.TagIDs {
		r.Tags = append(r.Tags, RecipeTag{RecipeID: r.ID, TagID: id})
	}
	r.Ingredients = make([]RecipeIngredient, 0, len(in.Ingredients))
	for i, item := range in.Ingredients {
		r.Ingredients = append(r.Ingredients, RecipeIngredient{
			RecipeID:     r.ID,
			IngredientID: item.IngredientID,
			Amount:       item.Amount,
			Position:     i,
		})
	}
}

// RecipeIngredientView описывает ингредиент в составе рецепта.
type RecipeIngredientView struct {
	ID              uuid.UUID `json:"id"`
	Name            string    `json:"name"`
	MeasurementUnit string    `json:"measurement_unit"`
	Amount          int       `json:"amount"`
}

// RecipeView — полное представление рецепта для чтения.
type RecipeView struct {
	ID               uuid.UUID              `json:"id"`
	Tags             []Tag                  `json:"tags"`
	Author           UserProfile            `json:"author"`
	Ingredients      []RecipeIngredientView `json:"ingredients"`
	IsFavorited      bool                   `json:"is_favorited"`
	IsInShoppingCart bool                   `json:"is_in_shopping_cart"`
	Name             string                 `json:"name"`
	Image            string                 `json:"image"`
	Text             string                 `json:"text"`
	CookingTime      int                    `json:"cooking_time"`
}

// RecipeSnippet используется в подписках и ответах избранного.
type RecipeSnippet struct {
	ID          uuid.UUID `json:"id"`
	Name        string    `json:"name"`
	Image       string    `json:"image"`
	CookingTime int       `json:"cooking_time"`
}

func NewRecipeSnippet(r *Recipe) RecipeSnippet {
	return RecipeSnippet{
		ID:          r.ID,
		Name:        r.Name,
		Image:       r.ImageURL,
		CookingTime: r.CookingTime,
	}
}
