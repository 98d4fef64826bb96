package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/GoArmGo/Foodgram/internal/core/ports"
	"github.com/GoArmGo/Foodgram/internal/domain"
	"github.com/google/uuid"
)

// membershipUseCase обслуживает избранное и корзину одним кодом
type membershipUseCase struct {
	recipes     ports.RecipeStorage
	memberships ports.MembershipStorage
	logger      *slog.Logger
}

func NewMembershipUseCase(recipes ports.RecipeStorage, memberships ports.MembershipStorage, logger *slog.Logger) MembershipUseCase {
	return &membershipUseCase{recipes: recipes, memberships: memberships, logger: logger}
}

func (uc *membershipUseCase) AddRecipe(ctx context.Context, viewer *domain.Principal, rel domain.Relation, recipeID uuid.UUID) (*domain.RecipeSnippet, error) {
	if viewer == nil {
		return nil, domain.ErrAuthRequired
	}
	if !rel.Valid() {
		return nil, fmt.Errorf("usecase: неизвестное отношение %q", rel)
	}

	recipe, err := uc.recipes.GetRecipeByID(ctx, recipeID)
	if err != nil {
		if errors.Is(err, ports.ErrRecordNotFound) {
			return nil, errRecipeNotFound
		}
		return nil, fmt.Errorf("usecase: ошибка при получении рецепта: %w", err)
	}

	if err := uc.memberships.AddMembership(ctx, rel, viewer.UserID, recipeID); err != nil {
		if errors.Is(err, ports.ErrDuplicate) {
			return nil, domain.NewConflictError(fmt.Sprintf("recipe already in %s", rel.Title()))
		}
		if errors.Is(err, ports.ErrReferenceMissing) {
			return nil, errRecipeNotFound
		}
		return nil, fmt.Errorf("usecase: ошибка при добавлении рецепта: %w", err)
	}

	uc.logger.Info("recipe added", "relation", rel, "user_id", viewer.UserID, "recipe_id", recipeID)
	snippet := domain.NewRecipeSnippet(recipe)
	return &snippet, nil
}

func (uc *membershipUseCase) RemoveRecipe(ctx context.Context, viewer *domain.Principal, rel domain.Relation, recipeID uuid.UUID) error {
	if viewer == nil {
		return domain.ErrAuthRequired
	}
	if !rel.Valid() {
		return fmt.Errorf("usecase: неизвестное отношение %q", rel)
	}

	if _, err := uc.recipes.GetRecipeByID(ctx, recipeID); err != nil {
		if errors.Is(err, ports.ErrRecordNotFound) {
			return errRecipeNotFound
		}
		return fmt.Errorf("usecase: ошибка при получении рецепта: %w", err)
	}

	if err := uc.memberships.RemoveMembership(ctx, rel, viewer.UserID, recipeID); err != nil {
		if errors.Is(err, ports.ErrRecordNotFound) {
			return domain.NewConflictError(fmt.Sprintf("recipe is not in %s", rel.Title()))
		}
		return fmt.Errorf("usecase: ошибка при удалении рецепта: %w", err)
	}

	uc.logger.Info("recipe removed", "relation", rel, "user_id", viewer.UserID, "recipe_id", recipeID)
	return nil
}
