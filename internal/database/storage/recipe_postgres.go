package storage

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/GoArmGo/Foodgram/internal/core/ports"
	"github.com/GoArmGo/Foodgram/internal/domain"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// RecipeStorage реализует ports.RecipeStorage на GORM
type RecipeStorage struct {
	db     *gorm.DB
	logger *slog.Logger
}

func NewRecipeStorage(db *gorm.DB, logger *slog.Logger) *RecipeStorage {
	return &RecipeStorage{db: db, logger: logger}
}

// withComponents подгружает автора, теги и ингредиенты (в порядке добавления)
func withComponents(db *gorm.DB) *gorm.DB {
	return db.
		Preload("Author").
		Preload("Tags.Tag").
		Preload("Ingredients", func(db *gorm.DB) *gorm.DB {
			return db.Order("recipe_ingredients.position ASC")
		}).
		Preload("Ingredients.Ingredient")
}

// CreateRecipe сохраняет рецепт, его теги и ингредиенты одной транзакцией
func (s *RecipeStorage) CreateRecipe(ctx context.Context, recipe *domain.Recipe) error {
	start := time.Now()

	if recipe.ID == uuid.Nil {
		recipe.ID = uuid.New()
	}
	if recipe.PubDate.IsZero() {
		recipe.PubDate = time.Now()
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit(clause.Associations).Create(recipe).Error; err != nil {
			return err
		}
		return insertComponents(tx, recipe)
	})
	if err != nil {
		err = translateError(err)
		if errors.Is(err, ports.ErrDuplicate) {
			s.logger.Warn("recipe name already used by author", "author_id", recipe.AuthorID, "name", recipe.Name)
			return err
		}
		s.logger.Error("failed to create recipe", "name", recipe.Name, "error", err)
		return fmt.Errorf("ошибка при сохранении рецепта: %w", err)
	}

	s.logger.Info("recipe saved successfully",
		"recipe_id", recipe.ID,
		"tags", len(recipe.Tags),
		"ingredients", len(recipe.Ingredients),
		"duration_ms", time.Since(start).Milliseconds(),
	)
	return nil
}

// UpdateRecipe обновляет заголовок рецепта и полностью заменяет теги и ингредиенты
func (s *RecipeStorage) UpdateRecipe(ctx context.Context, recipe *domain.Recipe) error {
	start := time.Now()

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&domain.Recipe{}).
			Where("id = ?", recipe.ID).
			Updates(map[string]interface{}{
				"name":         recipe.Name,
				"text":         recipe.Text,
				"cooking_time": recipe.CookingTime,
				"image_key":    recipe.ImageKey,
				"image_url":    recipe.ImageURL,
			})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}
		if err := deleteComponents(tx, recipe.ID); err != nil {
			return err
		}
		return insertComponents(tx, recipe)
	})
	if err != nil {
		err = translateError(err)
		if errors.Is(err, ports.ErrDuplicate) || errors.Is(err, ports.ErrRecordNotFound) {
			return err
		}
		s.logger.Error("failed to update recipe", "recipe_id", recipe.ID, "error", err)
		return fmt.Errorf("ошибка при обновлении рецепта: %w", err)
	}

	s.logger.Info("recipe updated",
		"recipe_id", recipe.ID,
		"duration_ms", time.Since(start).Milliseconds(),
	)
	return nil
}

// DeleteRecipe удаляет рецепт вместе со всеми связями
func (s *RecipeStorage) DeleteRecipe(ctx context.Context, id uuid.UUID) error {
	start := time.Now()

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := deleteComponents(tx, id); err != nil {
			return err
		}
		for _, rel := range domain.Relations() {
			if err := tx.Table(rel.Table()).Where("recipe_id = ?", id).Delete(&domain.RecipeMembership{}).Error; err != nil {
				return err
			}
		}
		res := tx.Where("id = ?", id).Delete(&domain.Recipe{})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}
		return nil
	})
	if err != nil {
		err = translateError(err)
		if errors.Is(err, ports.ErrRecordNotFound) {
			return err
		}
		s.logger.Error("failed to delete recipe", "recipe_id", id, "error", err)
		return fmt.Errorf("ошибка при удалении рецепта: %w", err)
	}

	s.logger.Info("recipe deleted",
		"recipe_id", id,
		"duration_ms", time.Since(start).Milliseconds(),
	)
	return nil
}

func deleteComponents(tx *gorm.DB, recipeID uuid.UUID) error {
	if err := tx.Where("recipe_id = ?", recipeID).Delete(&domain.RecipeTag{}).Error; err != nil {
		return err
	}
	return tx.Where("recipe_id = ?", recipeID).Delete(&domain.RecipeIngredient{}).Error
}

func insertComponents(tx *gorm.DB, recipe *domain.Recipe) error {
	for i := range recipe.Tags {
		recipe.Tags[i].RecipeID = recipe.ID
	}
	for i := range recipe.Ingredients {
		recipe.Ingredients[i].RecipeID = recipe.ID
	}
	if len(recipe.Tags) > 0 {
		if err := tx.Omit(clause.Associations).Create(&recipe.Tags).Error; err != nil {
			return err
		}
	}
	if len(recipe.Ingredients) > 0 {
		if err := tx.Omit(clause.Associations).Create(&recipe.Ingredients).Error; err != nil {
			return err
		}
	}
	return nil
}

// GetRecipeByID возвращает рецепт со всеми связями
func (s *RecipeStorage) GetRecipeByID(ctx context.Context, id uuid.UUID) (*domain.Recipe, error) {
	var recipe domain.Recipe
	err := withComponents(s.db.WithContext(ctx)).First(&recipe, "recipes.id = ?", id).Error
	if err != nil {
		err = translateError(err)
		if errors.Is(err, ports.ErrRecordNotFound) {
			return nil, err
		}
		s.logger.Error("failed to get recipe", "recipe_id", id, "error", err)
		return nil, fmt.Errorf("ошибка при получении рецепта по ID: %w", err)
	}
	return &recipe, nil
}

// NameTaken проверяет, есть ли у автора другой рецепт с таким названием
func (s *RecipeStorage) NameTaken(ctx context.Context, authorID uuid.UUID, name string, exceptID uuid.UUID) (bool, error) {
	var n int64
	q := s.db.WithContext(ctx).Model(&domain.Recipe{}).Where("author_id = ? AND name = ?", authorID, name)
	if exceptID != uuid.Nil {
		q = q.Where("id <> ?", exceptID)
	}
	if err := q.Count(&n).Error; err != nil {
		s.logger.Error("failed to check recipe name", "author_id", authorID, "error", err)
		return false, fmt.Errorf("ошибка при проверке названия рецепта: %w", err)
	}
	return n > 0, nil
}

// filterScope собирает условия фильтра; условия объединяются по AND
func (s *RecipeStorage) filterScope(ctx context.Context, f domain.RecipeFilter) func(*gorm.DB) *gorm.DB {
	return func(q *gorm.DB) *gorm.DB {
		if f.AuthorID != nil {
			q = q.Where("recipes.author_id = ?", *f.AuthorID)
		}
		if len(f.TagSlugs) > 0 {
			byTags := s.db.WithContext(ctx).
				Table("recipe_tags").
				Select("recipe_tags.recipe_id").
				Joins("JOIN tags ON tags.id = recipe_tags.tag_id").
				Where("tags.slug IN ?", f.TagSlugs)
			q = q.Where("recipes.id IN (?)", byTags)
		}
		if f.ViewerID != uuid.Nil {
			if f.IsFavorited {
				q = q.Where("recipes.id IN (?)", s.membersOf(ctx, domain.RelationFavorites, f.ViewerID))
			}
			if f.IsInShoppingCart {
				q = q.Where("recipes.id IN (?)", s.membersOf(ctx, domain.RelationShoppingCart, f.ViewerID))
			}
		}
		return q
	}
}

func (s *RecipeStorage) membersOf(ctx context.Context, rel domain.Relation, userID uuid.UUID) *gorm.DB {
	return s.db.WithContext(ctx).Table(rel.Table()).Select("recipe_id").Where("user_id = ?", userID)
}

// ListRecipes возвращает страницу рецептов по фильтру, свежие первыми
func (s *RecipeStorage) ListRecipes(ctx context.Context, f domain.RecipeFilter) ([]domain.Recipe, int64, error) {
	start := time.Now()

	var total int64
	err := s.db.WithContext(ctx).
		Model(&domain.Recipe{}).
		Scopes(s.filterScope(ctx, f)).
		Count(&total).Error
	if err != nil {
		s.logger.Error("failed to count recipes", "error", err)
		return nil, 0, fmt.Errorf("ошибка при подсчёте рецептов: %w", err)
	}

	var recipes []domain.Recipe
	err = withComponents(s.db.WithContext(ctx)).
		Scopes(s.filterScope(ctx, f)).
		Order("recipes.pub_date DESC").
		Order("recipes.id ASC").
		Limit(f.Page.Size).
		Offset(f.Page.Offset()).
		Find(&recipes).Error
	if err != nil {
		s.logger.Error("failed to list recipes",
			"page", f.Page.Number,
			"tags", f.TagSlugs,
			"error", err,
		)
		return nil, 0, fmt.Errorf("ошибка при получении списка рецептов: %w", err)
	}

	s.logger.Info("recipes listed",
		"found", len(recipes),
		"total", total,
		"duration_ms", time.Since(start).Milliseconds(),
	)
	return recipes, total, nil
}

func (s *RecipeStorage) ListRecipesByAuthor(ctx context.Context, authorID uuid.UUID, limit int) ([]domain.Recipe, error) {
	q := s.db.WithContext(ctx).
		Where("author_id = ?", authorID).
		Order("pub_date DESC")
	if limit > 0 {
		q = q.Limit(limit)
	}
	var recipes []domain.Recipe
	if err := q.Find(&recipes).Error; err != nil {
		s.logger.Error("failed to list author recipes", "author_id", authorID, "error", err)
		return nil, fmt.Errorf("ошибка при получении рецептов автора: %w", err)
	}
	return recipes, nil
}

func (s *RecipeStorage) CountRecipesByAuthors(ctx context.Context, authorIDs []uuid.UUID) (map[uuid.UUID]int64, error) {
	counts := make(map[uuid.UUID]int64, len(authorIDs))
	if len(authorIDs) == 0 {
		return counts, nil
	}

	var rows []struct {
		AuthorID uuid.UUID
		Total    int64
	}
	err := s.db.WithContext(ctx).
		Model(&domain.Recipe{}).
		Select("author_id, COUNT(*) AS total").
		Where("author_id IN ?", authorIDs).
		Group("author_id").
		Scan(&rows).Error
	if err != nil {
		s.logger.Error("failed to count recipes by authors", "error", err)
		return nil, fmt.Errorf("ошибка при подсчёте рецептов авторов: %w", err)
	}
	for _, row := range rows {
		counts[row.AuthorID] = row.Total
	}
	return counts, nil
}
