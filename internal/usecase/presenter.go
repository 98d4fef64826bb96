package usecase

import (
	"context"
	"fmt"
	"sort"

	"github.com/GoArmGo/Foodgram/internal/core/ports"
	"github.com/GoArmGo/Foodgram/internal/domain"
	"github.com/google/uuid"
)

// recipePresenter собирает RecipeView: флаги избранного, корзины и подписки
// вычисляются пачкой для всей страницы.
type recipePresenter struct {
	memberships ports.MembershipStorage
	follows     ports.FollowStorage
}

func (p *recipePresenter) present(ctx context.Context, viewer *domain.Principal, recipes []domain.Recipe) ([]domain.RecipeView, error) {
	views := make([]domain.RecipeView, 0, len(recipes))
	if len(recipes) == 0 {
		return views, nil
	}

	favorited := map[uuid.UUID]bool{}
	inCart := map[uuid.UUID]bool{}
	subscribed := map[uuid.UUID]bool{}

	if viewer != nil {
		recipeIDs := make([]uuid.UUID, 0, len(recipes))
		authorIDs := make([]uuid.UUID, 0, len(recipes))
		for _, r := range recipes {
			recipeIDs = append(recipeIDs, r.ID)
			authorIDs = append(authorIDs, r.AuthorID)
		}

		var err error
		if favorited, err = p.memberships.MemberRecipeIDs(ctx, domain.RelationFavorites, viewer.UserID, recipeIDs); err != nil {
			return nil, fmt.Errorf("usecase: избранное: %w", err)
		}
		if inCart, err = p.memberships.MemberRecipeIDs(ctx, domain.RelationShoppingCart, viewer.UserID, recipeIDs); err != nil {
			return nil, fmt.Errorf("usecase: корзина: %w", err)
		}
		if subscribed, err = p.follows.FollowedIDs(ctx, viewer.UserID, authorIDs); err != nil {
			return nil, fmt.Errorf("usecase: подписки: %w", err)
		}
	}

	for i := range recipes {
		r := &recipes[i]
		view := domain.RecipeView{
			ID:               r.ID,
			Tags:             make([]domain.Tag, 0, len(r.Tags)),
			Ingredients:      make([]domain.RecipeIngredientView, 0, len(r.Ingredients)),
			IsFavorited:      favorited[r.ID],
			IsInShoppingCart: inCart[r.ID],
			Name:             r.Name,
			Image:            r.ImageURL,
			Text:             r.Text,
			CookingTime:      r.CookingTime,
		}
		if r.Author != nil {
			view.Author = domain.NewUserProfile(r.Author, subscribed[r.AuthorID])
		} else {
			view.Author = domain.UserProfile{ID: r.AuthorID, IsSubscribed: subscribed[r.AuthorID]}
		}
		for _, link := range r.Tags {
			if link.Tag != nil {
				view.Tags = append(view.Tags, *link.Tag)
			}
		}
		sort.Slice(view.Tags, func(a, b int) bool { return view.Tags[a].Name < view.Tags[b].Name })
		for _, item := range r.Ingredients {
			if item.Ingredient == nil {
				continue
			}
			view.Ingredients = append(view.Ingredients, domain.RecipeIngredientView{
				ID:              item.IngredientID,
				Name:            item.Ingredient.Name,
				MeasurementUnit: item.Ingredient.MeasurementUnit,
				Amount:          item.Amount,
			})
		}
		views = append(views, view)
	}
	return views, nil
}
