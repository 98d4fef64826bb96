package domain

import (
	"time"

	"github.com/google/uuid"
)

// Relation определяет связь пользователя с рецептом.
// Избранное и корзина устроены одинаково и отличаются только таблицей.
type Relation string

const (
	RelationFavorites    Relation = "favorites"
	RelationShoppingCart Relation = "shopping_cart"
)

// Table возвращает таблицу, в которой хранится отношение.
func (r Relation) Table() string {
	switch r {
	case RelationFavorites:
		return "favorites"
	case RelationShoppingCart:
		return "shopping_cart_items"
	}
	return ""
}

func (r Relation) Valid() bool {
	return r.Table() != ""
}

// Title используется в сообщениях об ошибках.
func (r Relation) Title() string {
	if r == RelationShoppingCart {
		return "shopping cart"
	}
	return "favorites"
}

// Relations перечисляет все такие связи.
func Relations() []Relation {
	return []Relation{RelationFavorites, RelationShoppingCart}
}

// RecipeMembership соответствует строке favorites или shopping_cart_items.
type RecipeMembership struct {
	UserID    uuid.UUID `gorm:"type:uuid;primaryKey"`
	RecipeID  uuid.UUID `gorm:"type:uuid;primaryKey"`
	AddedDate time.Time `gorm:"not null"`
}
