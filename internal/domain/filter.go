package domain

import (
	"strconv"

	"github.com/google/uuid"
)

const (
	DefaultPageSize = 6
	MaxPageSize     = 100
)

// Page задаёт номер и размер страницы.
type Page struct {
	Number int
	Size   int
}

func NewPage(number, size, defaultSize int) Page {
	if number < 1 {
		number = 1
	}
	if defaultSize < 1 {
		defaultSize = DefaultPageSize
	}
	if size < 1 {
		size = defaultSize
	}
	if size > MaxPageSize {
		size = MaxPageSize
	}
	return Page{Number: number, Size: size}
}

func (p Page) Offset() int {
	return (p.Number - 1) * p.Size
}

// Paginated хранит страницу результатов и общее число записей.
type Paginated[T any] struct {
	Count   int64
	Page    Page
	Results []T
}

// RecipeFilter — фильтры списка рецептов, объединяются по AND.
// Теги объединяются по OR; неизвестные слаги просто ничего не находят.
type RecipeFilter struct {
	AuthorID         *uuid.UUID
	TagSlugs         []string
	IsFavorited      bool
	IsInShoppingCart bool
	// ViewerID задаётся юзкейсом; uuid.Nil для анонимного запроса.
	ViewerID uuid.UUID
	Page     Page
}

// ParseBinaryFlag разбирает параметры вида is_favorited=0|1.
func ParseBinaryFlag(field, raw string) (bool, error) {
	switch raw {
	case "", "0":
		return false, nil
	case "1":
		return true, nil
	}
	return false, NewValidationError(field, "select a valid choice: 0 or 1")
}

// ParseRecipesLimit возвращает лимит рецептов в подписках.
// Значение учитывается только если состоит из цифр, иначе 0 (без ограничения).
func ParseRecipesLimit(raw string) int {
	if raw == "" {
		return 0
	}
	for _, r := range raw {
		if r < '0' || r > '9' {
			return 0
		}
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0
	}
	return n
}
