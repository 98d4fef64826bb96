package usecase

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/GoArmGo/Foodgram/internal/core/ports"
	"github.com/GoArmGo/Foodgram/internal/domain"
)

type shoppingListUseCase struct {
	users       ports.UserStorage
	memberships ports.MembershipStorage
	lists       ports.ShoppingListStorage
	logger      *slog.Logger
}

func NewShoppingListUseCase(users ports.UserStorage, memberships ports.MembershipStorage, lists ports.ShoppingListStorage, logger *slog.Logger) ShoppingListUseCase {
	return &shoppingListUseCase{users: users, memberships: memberships, lists: lists, logger: logger}
}

// BuildShoppingList суммирует ингредиенты корзины по паре (название, единица)
func (uc *shoppingListUseCase) BuildShoppingList(ctx context.Context, viewer *domain.Principal) (*domain.ShoppingListFile, error) {
	if viewer == nil {
		return nil, domain.ErrAuthRequired
	}

	n, err := uc.memberships.CountMemberships(ctx, domain.RelationShoppingCart, viewer.UserID)
	if err != nil {
		return nil, fmt.Errorf("usecase: ошибка при проверке корзины: %w", err)
	}
	if n == 0 {
		return nil, domain.ErrEmptyShoppingList
	}

	user, err := uc.users.GetUserByID(ctx, viewer.UserID)
	if err != nil {
		return nil, fmt.Errorf("usecase: ошибка при получении пользователя: %w", err)
	}

	items, err := uc.lists.AggregateShoppingList(ctx, viewer.UserID)
	if err != nil {
		return nil, fmt.Errorf("usecase: ошибка при формировании списка покупок: %w", err)
	}

	uc.logger.Info("shopping list built", "user_id", viewer.UserID, "recipes", n, "lines", len(items))
	return &domain.ShoppingListFile{
		Filename: domain.ShoppingListFilename(user.Username),
		Content:  domain.RenderShoppingList(items),
	}, nil
}
