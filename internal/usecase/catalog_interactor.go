package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/GoArmGo/Foodgram/internal/core/ports"
	"github.com/GoArmGo/Foodgram/internal/domain"
	"github.com/google/uuid"
	lru "github.com/hashicorp/golang-lru"
)

// catalogUseCase кэширует в LRU только поиск по id: теги и ингредиенты не изменяются и не удаляются.
// Списки и поиск по префиксу всегда читаются из базы, так как загрузчик и другие реплики
// пишут в неё в обход этого процесса.
type catalogUseCase struct {
	catalog ports.CatalogStorage
	cache   *lru.Cache
	logger  *slog.Logger
}

func NewCatalogUseCase(catalog ports.CatalogStorage, cacheSize int, logger *slog.Logger) (CatalogUseCase, error) {
	if cacheSize < 1 {
		cacheSize = 1
	}
	cache, err := lru.New(cacheSize)
	if err != nil {
		return nil, fmt.Errorf("usecase: не удалось создать кэш справочников: %w", err)
	}
	return &catalogUseCase{catalog: catalog, cache: cache, logger: logger}, nil
}

func (uc *catalogUseCase) ListTags(ctx context.Context) ([]domain.Tag, error) {
	tags, err := uc.catalog.ListTags(ctx)
	if err != nil {
		return nil, fmt.Errorf("usecase: ошибка при получении тегов: %w", err)
	}
	return tags, nil
}

func (uc *catalogUseCase) GetTag(ctx context.Context, id uuid.UUID) (*domain.Tag, error) {
	key := "tag:" + id.String()
	if v, ok := uc.cache.Get(key); ok {
		tag := v.(domain.Tag)
		return &tag, nil
	}
	tag, err := uc.catalog.GetTagByID(ctx, id)
	if err != nil {
		if errors.Is(err, ports.ErrRecordNotFound) {
			return nil, domain.NewNotFoundError("tag not found")
		}
		return nil, fmt.Errorf("usecase: ошибка при получении тега: %w", err)
	}
	uc.cache.Add(key, *tag)
	return tag, nil
}

func (uc *catalogUseCase) CreateTag(ctx context.Context, viewer *domain.Principal, tag domain.Tag) (*domain.Tag, error) {
	if viewer == nil {
		return nil, domain.ErrAuthRequired
	}
	if !viewer.IsAdmin() {
		return nil, domain.NewForbiddenError("only administrators can manage tags")
	}
	tag.Color = strings.ToUpper(tag.Color)
	if err := tag.Validate(); err != nil {
		return nil, err
	}
	tag.ID = uuid.New()
	if err := uc.catalog.CreateTag(ctx, &tag); err != nil {
		if errors.Is(err, ports.ErrDuplicate) {
			return nil, domain.NewValidationError("slug", "tag with this name, color or slug already exists")
		}
		return nil, fmt.Errorf("usecase: ошибка при создании тега: %w", err)
	}
	uc.cache.Add("tag:"+tag.ID.String(), tag)
	uc.logger.Info("tag created", "tag_id", tag.ID, "slug", tag.Slug)
	return &tag, nil
}

func (uc *catalogUseCase) SearchIngredients(ctx context.Context, prefix string) ([]domain.Ingredient, error) {
	ingredients, err := uc.catalog.SearchIngredients(ctx, prefix)
	if err != nil {
		return nil, fmt.Errorf("usecase: ошибка при поиске ингредиентов: %w", err)
	}
	return ingredients, nil
}

func (uc *catalogUseCase) GetIngredient(ctx context.Context, id uuid.UUID) (*domain.Ingredient, error) {
	key := "ingredient:" + id.String()
	if v, ok := uc.cache.Get(key); ok {
		ingredient := v.(domain.Ingredient)
		return &ingredient, nil
	}
	ingredient, err := uc.catalog.GetIngredientByID(ctx, id)
	if err != nil {
		if errors.Is(err, ports.ErrRecordNotFound) {
			return nil, domain.NewNotFoundError("ingredient not found")
		}
		return nil, fmt.Errorf("usecase: ошибка при получении ингредиента: %w", err)
	}
	uc.cache.Add(key, *ingredient)
	return ingredient, nil
}

func (uc *catalogUseCase) CreateIngredient(ctx context.Context, viewer *domain.Principal, ingredient domain.Ingredient) (*domain.Ingredient, error) {
	if viewer == nil {
		return nil, domain.ErrAuthRequired
	}
	if !viewer.IsAdmin() {
		return nil, domain.NewForbiddenError("only administrators can manage ingredients")
	}
	if err := ingredient.Validate(); err != nil {
		return nil, err
	}
	ingredient.ID = uuid.New()
	if err := uc.catalog.CreateIngredient(ctx, &ingredient); err != nil {
		if errors.Is(err, ports.ErrDuplicate) {
			return nil, domain.NewValidationError("name", "ingredient with this name and measurement unit already exists")
		}
		return nil, fmt.Errorf("usecase: ошибка при создании ингредиента: %w", err)
	}
	uc.cache.Add("ingredient:"+ingredient.ID.String(), ingredient)
	uc.logger.Info("ingredient created", "ingredient_id", ingredient.ID, "name", ingredient.Name)
	return &ingredient, nil
}

func (uc *catalogUseCase) LoadTags(ctx context.Context, tags []domain.Tag) (int64, error) {
	for i := range tags {
		tags[i].Color = strings.ToUpper(tags[i].Color)
		if err := tags[i].Validate(); err != nil {
			return 0, fmt.Errorf("тег %d: %w", i+1, err)
		}
		if tags[i].ID == uuid.Nil {
			tags[i].ID = uuid.New()
		}
	}
	n, err := uc.catalog.SeedTags(ctx, tags)
	if err != nil {
		return 0, fmt.Errorf("usecase: ошибка при загрузке тегов: %w", err)
	}
	return n, nil
}

func (uc *catalogUseCase) LoadIngredients(ctx context.Context, ingredients []domain.Ingredient) (int64, error) {
	for i := range ingredients {
		if err := ingredients[i].Validate(); err != nil {
			return 0, fmt.Errorf("ингредиент %d: %w", i+1, err)
		}
		if ingredients[i].ID == uuid.Nil {
			ingredients[i].ID = uuid.New()
		}
	}
	n, err := uc.catalog.SeedIngredients(ctx, ingredients)
	if err != nil {
		return 0, fmt.Errorf("usecase: ошибка при загрузке ингредиентов: %w", err)
	}
	return n, nil
}
