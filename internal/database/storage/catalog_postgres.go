package storage

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/GoArmGo/Foodgram/internal/core/ports"
	"github.com/GoArmGo/Foodgram/internal/domain"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// CatalogStorage хранит теги и ингредиенты
type CatalogStorage struct {
	db     *gorm.DB
	logger *slog.Logger
}

func NewCatalogStorage(db *gorm.DB, logger *slog.Logger) *CatalogStorage {
	return &CatalogStorage{db: db, logger: logger}
}

func (s *CatalogStorage) CreateTag(ctx context.Context, tag *domain.Tag) error {
	if tag.ID == uuid.Nil {
		tag.ID = uuid.New()
	}
	if err := s.db.WithContext(ctx).Create(tag).Error; err != nil {
		err = translateError(err)
		if errors.Is(err, ports.ErrDuplicate) {
			return err
		}
		s.logger.Error("failed to create tag", "slug", tag.Slug, "error", err)
		return fmt.Errorf("ошибка при создании тега: %w", err)
	}
	s.logger.Info("tag created", "tag_id", tag.ID, "slug", tag.Slug)
	return nil
}

func (s *CatalogStorage) GetTagByID(ctx context.Context, id uuid.UUID) (*domain.Tag, error) {
	var tag domain.Tag
	if err := s.db.WithContext(ctx).First(&tag, "id = ?", id).Error; err != nil {
		err = translateError(err)
		if errors.Is(err, ports.ErrRecordNotFound) {
			return nil, err
		}
		s.logger.Error("failed to get tag", "tag_id", id, "error", err)
		return nil, fmt.Errorf("ошибка при получении тега: %w", err)
	}
	return &tag, nil
}

func (s *CatalogStorage) ListTags(ctx context.Context) ([]domain.Tag, error) {
	var tags []domain.Tag
	if err := s.db.WithContext(ctx).Order("name ASC").Find(&tags).Error; err != nil {
		s.logger.Error("failed to list tags", "error", err)
		return nil, fmt.Errorf("ошибка при получении тегов: %w", err)
	}
	return tags, nil
}

// CountTags считает, сколько из переданных идентификаторов существует
func (s *CatalogStorage) CountTags(ctx context.Context, ids []uuid.UUID) (int64, error) {
	if len(ids) == 0 {
		return 0, nil
	}
	var n int64
	if err := s.db.WithContext(ctx).Model(&domain.Tag{}).Where("id IN ?", ids).Count(&n).Error; err != nil {
		s.logger.Error("failed to count tags", "error", err)
		return 0, fmt.Errorf("ошибка при проверке тегов: %w", err)
	}
	return n, nil
}

func (s *CatalogStorage) SeedTags(ctx context.Context, tags []domain.Tag) (int64, error) {
	if len(tags) == 0 {
		return 0, nil
	}
	start := time.Now()
	for i := range tags {
		if tags[i].ID == uuid.Nil {
			tags[i].ID = uuid.New()
		}
	}
	res := s.db.WithContext(ctx).Clauses(clause.OnConflict{DoNothing: true}).CreateInBatches(&tags, 500)
	if res.Error != nil {
		s.logger.Error("failed to seed tags", "error", res.Error)
		return 0, fmt.Errorf("ошибка загрузки тегов: %w", res.Error)
	}
	s.logger.Info("tags seeded",
		"inserted", res.RowsAffected,
		"total", len(tags),
		"duration_ms", time.Since(start).Milliseconds(),
	)
	return res.RowsAffected, nil
}

func (s *CatalogStorage) CreateIngredient(ctx context.Context, ingredient *domain.Ingredient) error {
	if ingredient.ID == uuid.Nil {
		ingredient.ID = uuid.New()
	}
	if err := s.db.WithContext(ctx).Create(ingredient).Error; err != nil {
		err = translateError(err)
		if errors.Is(err, ports.ErrDuplicate) {
			return err
		}
		s.logger.Error("failed to create ingredient", "name", ingredient.Name, "error", err)
		return fmt.Errorf("ошибка при создании ингредиента: %w", err)
	}
	s.logger.Info("ingredient created", "ingredient_id", ingredient.ID, "name", ingredient.Name)
	return nil
}

func (s *CatalogStorage) GetIngredientByID(ctx context.Context, id uuid.UUID) (*domain.Ingredient, error) {
	var ingredient domain.Ingredient
	if err := s.db.WithContext(ctx).First(&ingredient, "id = ?", id).Error; err != nil {
		err = translateError(err)
		if errors.Is(err, ports.ErrRecordNotFound) {
			return nil, err
		}
		s.logger.Error("failed to get ingredient", "ingredient_id", id, "error", err)
		return nil, fmt.Errorf("ошибка при получении ингредиента: %w", err)
	}
	return &ingredient, nil
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// SearchIngredients ищет по началу названия без учёта регистра
func (s *CatalogStorage) SearchIngredients(ctx context.Context, prefix string) ([]domain.Ingredient, error) {
	start := time.Now()

	q := s.db.WithContext(ctx).Order("name ASC")
	if prefix != "" {
		pattern := likeEscaper.Replace(strings.ToLower(prefix)) + "%"
		q = q.Where(`LOWER(name) LIKE ? ESCAPE '\'`, pattern)
	}

	var ingredients []domain.Ingredient
	if err := q.Find(&ingredients).Error; err != nil {
		s.logger.Error("failed to search ingredients", "prefix", prefix, "error", err)
		return nil, fmt.Errorf("ошибка при поиске ингредиентов: %w", err)
	}

	s.logger.Debug("ingredients search completed",
		"prefix", prefix,
		"found", len(ingredients),
		"duration_ms", time.Since(start).Milliseconds(),
	)
	return ingredients, nil
}

func (s *CatalogStorage) CountIngredients(ctx context.Context, ids []uuid.UUID) (int64, error) {
	if len(ids) == 0 {
		return 0, nil
	}
	var n int64
	if err := s.db.WithContext(ctx).Model(&domain.Ingredient{}).Where("id IN ?", ids).Count(&n).Error; err != nil {
		s.logger.Error("failed to count ingredients", "error", err)
		return 0, fmt.Errorf("ошибка при проверке ингредиентов: %w", err)
	}
	return n, nil
}

func (s *CatalogStorage) SeedIngredients(ctx context.Context, ingredients []domain.Ingredient) (int64, error) {
	if len(ingredients) == 0 {
		return 0, nil
	}
	start := time.Now()
	for i := range ingredients {
		if ingredients[i].ID == uuid.Nil {
			ingredients[i].ID = uuid.New()
		}
	}
	res := s.db.WithContext(ctx).Clauses(clause.OnConflict{DoNothing: true}).CreateInBatches(&ingredients, 500)
	if res.Error != nil {
		s.logger.Error("failed to seed ingredients", "error", res.Error)
		return 0, fmt.Errorf("ошибка загрузки ингредиентов: %w", res.Error)
	}
	s.logger.Info("ingredients seeded",
		"inserted", res.RowsAffected,
		"total", len(ingredients),
		"duration_ms", time.Since(start).Milliseconds(),
	)
	return res.RowsAffected, nil
}
