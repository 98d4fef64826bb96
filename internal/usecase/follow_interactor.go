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

var errUserNotFound = domain.NewNotFoundError("user not found")

type followUseCase struct {
	users   ports.UserStorage
	follows ports.FollowStorage
	recipes ports.RecipeStorage
	logger  *slog.Logger
}

func NewFollowUseCase(users ports.UserStorage, follows ports.FollowStorage, recipes ports.RecipeStorage, logger *slog.Logger) FollowUseCase {
	return &followUseCase{users: users, follows: follows, recipes: recipes, logger: logger}
}

func (uc *followUseCase) Subscribe(ctx context.Context, viewer *domain.Principal, targetID uuid.UUID, recipesLimit int) (*domain.Subscription, error) {
	if viewer == nil {
		return nil, domain.ErrAuthRequired
	}

	target, err := uc.users.GetUserByID(ctx, targetID)
	if err != nil {
		if errors.Is(err, ports.ErrRecordNotFound) {
			return nil, errUserNotFound
		}
		return nil, fmt.Errorf("usecase: ошибка при получении автора: %w", err)
	}
	if target.ID == viewer.UserID {
		return nil, domain.NewValidationError("user", "you cannot subscribe to yourself")
	}

	if err := uc.follows.Follow(ctx, viewer.UserID, target.ID); err != nil {
		if errors.Is(err, ports.ErrDuplicate) {
			return nil, domain.NewConflictError(fmt.Sprintf("you are already subscribed to %s", target.Username))
		}
		if errors.Is(err, ports.ErrReferenceMissing) {
			return nil, errUserNotFound
		}
		return nil, fmt.Errorf("usecase: ошибка при создании подписки: %w", err)
	}
	uc.logger.Info("subscribed", "user_id", viewer.UserID, "author_id", target.ID)

	subs, err := uc.subscriptions(ctx, []domain.User{*target}, recipesLimit)
	if err != nil {
		return nil, err
	}
	return &subs[0], nil
}

func (uc *followUseCase) Unsubscribe(ctx context.Context, viewer *domain.Principal, targetID uuid.UUID) error {
	if viewer == nil {
		return domain.ErrAuthRequired
	}
	if _, err := uc.users.GetUserByID(ctx, targetID); err != nil {
		if errors.Is(err, ports.ErrRecordNotFound) {
			return errUserNotFound
		}
		return fmt.Errorf("usecase: ошибка при получении автора: %w", err)
	}

	if err := uc.follows.Unfollow(ctx, viewer.UserID, targetID); err != nil {
		if errors.Is(err, ports.ErrRecordNotFound) {
			return domain.NewConflictError("you are not subscribed to this user")
		}
		return fmt.Errorf("usecase: ошибка при удалении подписки: %w", err)
	}
	uc.logger.Info("unsubscribed", "user_id", viewer.UserID, "author_id", targetID)
	return nil
}

func (uc *followUseCase) ListSubscriptions(ctx context.Context, viewer *domain.Principal, page domain.Page, recipesLimit int) (*domain.Paginated[domain.Subscription], error) {
	if viewer == nil {
		return nil, domain.ErrAuthRequired
	}

	authors, total, err := uc.follows.ListFollowing(ctx, viewer.UserID, page)
	if err != nil {
		return nil, fmt.Errorf("usecase: ошибка при получении подписок: %w", err)
	}
	subs, err := uc.subscriptions(ctx, authors, recipesLimit)
	if err != nil {
		return nil, err
	}
	return &domain.Paginated[domain.Subscription]{Count: total, Page: page, Results: subs}, nil
}

// subscriptions собирает карточки авторов, на которых подписан запрашивающий
func (uc *followUseCase) subscriptions(ctx context.Context, authors []domain.User, recipesLimit int) ([]domain.Subscription, error) {
	ids := make([]uuid.UUID, 0, len(authors))
	for _, a := range authors {
		ids = append(ids, a.ID)
	}
	counts, err := uc.recipes.CountRecipesByAuthors(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("usecase: ошибка при подсчёте рецептов: %w", err)
	}

	subs := make([]domain.Subscription, 0, len(authors))
	for i := range authors {
		recipes, err := uc.recipes.ListRecipesByAuthor(ctx, authors[i].ID, recipesLimit)
		if err != nil {
			return nil, fmt.Errorf("usecase: ошибка при получении рецептов автора: %w", err)
		}
		snippets := make([]domain.RecipeSnippet, 0, len(recipes))
		for j := range recipes {
			snippets = append(snippets, domain.NewRecipeSnippet(&recipes[j]))
		}
		subs = append(subs, domain.Subscription{
			// в списке только авторы, на которых подписан сам запрашивающий
			UserProfile:  domain.NewUserProfile(&authors[i], true),
			Recipes:      snippets,
			RecipesCount: counts[authors[i].ID],
		})
	}
	return subs, nil
}
