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
)

// MembershipStorage обслуживает и избранное, и корзину.
// Отношение выбирает таблицу, схема строк одинакова.
type MembershipStorage struct {
	db     *gorm.DB
	logger *slog.Logger
}

func NewMembershipStorage(db *gorm.DB, logger *slog.Logger) *MembershipStorage {
	return &MembershipStorage{db: db, logger: logger}
}

func (s *MembershipStorage) table(ctx context.Context, rel domain.Relation) (*gorm.DB, error) {
	if !rel.Valid() {
		return nil, fmt.Errorf("неизвестное отношение %q", rel)
	}
	return s.db.WithContext(ctx).Table(rel.Table()), nil
}

// AddMembership вставляет пару (user, recipe); уникальность гарантирует первичный ключ
func (s *MembershipStorage) AddMembership(ctx context.Context, rel domain.Relation, userID, recipeID uuid.UUID) error {
	q, err := s.table(ctx, rel)
	if err != nil {
		return err
	}

	row := domain.RecipeMembership{UserID: userID, RecipeID: recipeID, AddedDate: time.Now()}
	if err := q.Create(&row).Error; err != nil {
		err = translateError(err)
		if errors.Is(err, ports.ErrDuplicate) {
			s.logger.Warn("membership already exists", "relation", rel, "user_id", userID, "recipe_id", recipeID)
			return err
		}
		if errors.Is(err, ports.ErrReferenceMissing) {
			s.logger.Warn("recipe removed before membership insert", "relation", rel, "recipe_id", recipeID)
			return err
		}
		s.logger.Error("failed to add membership", "relation", rel, "recipe_id", recipeID, "error", err)
		return fmt.Errorf("ошибка при добавлении в %s: %w", rel, err)
	}

	s.logger.Info("membership added", "relation", rel, "user_id", userID, "recipe_id", recipeID)
	return nil
}

func (s *MembershipStorage) RemoveMembership(ctx context.Context, rel domain.Relation, userID, recipeID uuid.UUID) error {
	q, err := s.table(ctx, rel)
	if err != nil {
		return err
	}

	res := q.Where("user_id = ? AND recipe_id = ?", userID, recipeID).Delete(&domain.RecipeMembership{})
	if res.Error != nil {
		s.logger.Error("failed to remove membership", "relation", rel, "recipe_id", recipeID, "error", res.Error)
		return fmt.Errorf("ошибка при удалении из %s: %w", rel, res.Error)
	}
	if res.RowsAffected == 0 {
		return ports.ErrRecordNotFound
	}

	s.logger.Info("membership removed", "relation", rel, "user_id", userID, "recipe_id", recipeID)
	return nil
}

func (s *MembershipStorage) HasMembership(ctx context.Context, rel domain.Relation, userID, recipeID uuid.UUID) (bool, error) {
	q, err := s.table(ctx, rel)
	if err != nil {
		return false, err
	}
	var n int64
	if err := q.Where("user_id = ? AND recipe_id = ?", userID, recipeID).Count(&n).Error; err != nil {
		s.logger.Error("failed to check membership", "relation", rel, "error", err)
		return false, fmt.Errorf("ошибка при проверке %s: %w", rel, err)
	}
	return n > 0, nil
}

// MemberRecipeIDs возвращает те рецепты из recipeIDs, которые состоят в отношении
func (s *MembershipStorage) MemberRecipeIDs(ctx context.Context, rel domain.Relation, userID uuid.UUID, recipeIDs []uuid.UUID) (map[uuid.UUID]bool, error) {
	found := make(map[uuid.UUID]bool, len(recipeIDs))
	if len(recipeIDs) == 0 {
		return found, nil
	}
	q, err := s.table(ctx, rel)
	if err != nil {
		return nil, err
	}

	var ids []uuid.UUID
	if err := q.Where("user_id = ? AND recipe_id IN ?", userID, recipeIDs).Pluck("recipe_id", &ids).Error; err != nil {
		s.logger.Error("failed to load memberships", "relation", rel, "error", err)
		return nil, fmt.Errorf("ошибка при получении %s: %w", rel, err)
	}
	for _, id := range ids {
		found[id] = true
	}
	return found, nil
}

func (s *MembershipStorage) CountMemberships(ctx context.Context, rel domain.Relation, userID uuid.UUID) (int64, error) {
	q, err := s.table(ctx, rel)
	if err != nil {
		return 0, err
	}
	var n int64
	if err := q.Where("user_id = ?", userID).Count(&n).Error; err != nil {
		s.logger.Error("failed to count memberships", "relation", rel, "error", err)
		return 0, fmt.Errorf("ошибка при подсчёте %s: %w", rel, err)
	}
	return n, nil
}
