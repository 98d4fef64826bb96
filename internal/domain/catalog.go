package domain

import (
	"regexp"
	"strings"

	"github.com/google/uuid"
)

const (
	MaxTagLength        = 200
	MaxIngredientLength = 200
	ColorLength         = 7
)

var hexColorPattern = regexp.MustCompile(`^#[0-9a-fA-F]{6}$`)

// Tag представляет модель тега, соответствует таблице tags в бд.
type Tag struct {
	ID    uuid.UUID `json:"id" gorm:"type:uuid;primaryKey"`
	Name  string    `json:"name" gorm:"size:200;not null;uniqueIndex"`
	Color string    `json:"color" gorm:"size:7;not null;uniqueIndex"`
	Slug  string    `json:"slug" gorm:"size:200;not null;uniqueIndex"`
}

func (Tag) TableName() string {
	return "tags"
}

func (t Tag) Validate() error {
	switch {
	case strings.TrimSpace(t.Name) == "":
		return NewValidationError("name", "name field is required")
	case len(t.Name) > MaxTagLength:
		return NewValidationError("name", "name must be at most 200 characters")
	case !hexColorPattern.MatchString(t.Color):
		return NewValidationError("color", "color must be a hex string like #49B64E")
	case strings.TrimSpace(t.Slug) == "":
		return NewValidationError("slug", "slug field is required")
	case len(t.Slug) > MaxTagLength:
		return NewValidationError("slug", "slug must be at most 200 characters")
	}
	return nil
}

// Ingredient представляет модель ингредиента.
// Пара (name, measurement_unit) уникальна.
type Ingredient struct {
	ID              uuid.UUID `json:"id" gorm:"type:uuid;primaryKey"`
	Name            string    `json:"name" gorm:"size:200;not null;uniqueIndex:idx_ingredient_name_unit"`
	MeasurementUnit string    `json:"measurement_unit" gorm:"size:200;not null;uniqueIndex:idx_ingredient_name_unit"`
}

func (Ingredient) TableName() string {
	return "ingredients"
}

func (i Ingredient) Validate() error {
	switch {
	case strings.TrimSpace(i.Name) == "":
		return NewValidationError("name", "name field is required")
	case len(i.Name) > MaxIngredientLength:
		return NewValidationError("name", "name must be at most 200 characters")
	case strings.TrimSpace(i.MeasurementUnit) == "":
		return NewValidationError("measurement_unit", "measurement_unit field is required")
	case len(i.MeasurementUnit) > MaxIngredientLength:
		return NewValidationError("measurement_unit", "measurement_unit must be at most 200 characters")
	}
	return nil
}
