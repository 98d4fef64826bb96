package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/GoArmGo/Foodgram/internal/core/ports"
	"github.com/GoArmGo/Foodgram/internal/domain"
	"github.com/google/uuid"
)

var (
	errRecipeNotFound = domain.NewNotFoundError("recipe not found")
	errRecipeForeign  = domain.NewForbiddenError("you do not have permission to modify this recipe")
)

func errNameTaken() error {
	return domain.NewValidationError("name", "you already have a recipe with this name")
}

// recipeUseCase implements RecipeUseCase
type recipeUseCase struct {
	recipes   ports.RecipeStorage
	catalog   ports.CatalogStorage
	presenter *recipePresenter
	images    *imageStore
	logger    *slog.Logger
}

// NewRecipeUseCase создает новый экземпляр RecipeUseCase.
// publisher может быть nil, тогда изображения удаляются синхронно;
// uploadLimiter ограничивает число параллельных загрузок в хранилище.
func NewRecipeUseCase(
	recipes ports.RecipeStorage,
	catalog ports.CatalogStorage,
	memberships ports.MembershipStorage,
	follows ports.FollowStorage,
	files ports.FileStorage,
	publisher ports.ImageCleanupPublisher,
	uploadLimiter chan struct{},
	logger *slog.Logger,
) RecipeUseCase {
	return &recipeUseCase{
		recipes:   recipes,
		catalog:   catalog,
		presenter: &recipePresenter{memberships: memberships, follows: follows},
		images: &imageStore{
			files:     files,
			publisher: publisher,
			limiter:   uploadLimiter,
			logger:    logger,
		},
		logger: logger,
	}
}

// checkReferences проверяет, что все теги и ингредиенты существуют
func (uc *recipeUseCase) checkReferences(ctx context.Context, in domain.RecipeInput) error {
	tags, err := uc.catalog.CountTags(ctx, in.TagIDs)
	if err != nil {
		return fmt.Errorf("usecase: ошибка при проверке тегов: %w", err)
	}
	if tags != int64(len(in.TagIDs)) {
		return domain.NewValidationError("tags", "one or more tags do not exist")
	}

	ingredients, err := uc.catalog.CountIngredients(ctx, in.IngredientIDs())
	if err != nil {
		return fmt.Errorf("usecase: ошибка при проверке ингредиентов: %w", err)
	}
	if ingredients != int64(len(in.Ingredients)) {
		return domain.NewValidationError("ingredients", "one or more ingredients do not exist")
	}
	return nil
}

func (uc *recipeUseCase) CreateRecipe(ctx context.Context, viewer *domain.Principal, in domain.RecipeInput) (*domain.RecipeView, error) {
	if viewer == nil {
		return nil, domain.ErrAuthRequired
	}
	if err := in.Validate(true); err != nil {
		return nil, err
	}
	if err := uc.checkReferences(ctx, in); err != nil {
		return nil, err
	}

	taken, err := uc.recipes.NameTaken(ctx, viewer.UserID, in.Name, uuid.Nil)
	if err != nil {
		return nil, fmt.Errorf("usecase: ошибка при проверке названия: %w", err)
	}
	if taken {
		return nil, errNameTaken()
	}

	key, url, err := uc.images.upload(ctx, in.Image)
	if err != nil {
		return nil, err
	}

	recipe := &domain.Recipe{
		ID:          uuid.New(),
		AuthorID:    viewer.UserID,
		Name:        in.Name,
		Text:        in.Text,
		ImageKey:    key,
		ImageURL:    url,
		CookingTime: in.CookingTime,
		PubDate:     time.Now(),
	}
	recipe.ApplyComponents(in)

	if err := uc.recipes.CreateRecipe(ctx, recipe); err != nil {
		uc.images.discard(ctx, key)
		if errors.Is(err, ports.ErrDuplicate) {
			return nil, errNameTaken()
		}
		return nil, fmt.Errorf("usecase: ошибка при создании рецепта: %w", err)
	}

	uc.logger.Info("recipe created", "recipe_id", recipe.ID, "author_id", viewer.UserID)
	return uc.GetRecipe(ctx, viewer, recipe.ID)
}

func (uc *recipeUseCase) UpdateRecipe(ctx context.Context, viewer *domain.Principal, id uuid.UUID, in domain.RecipeInput) (*domain.RecipeView, error) {
	if viewer == nil {
		return nil, domain.ErrAuthRequired
	}
	existing, err := uc.loadRecipe(ctx, id)
	if err != nil {
		return nil, err
	}
	if !viewer.CanModify(existing.AuthorID) {
		return nil, errRecipeForeign
	}
	if err := in.Validate(false); err != nil {
		return nil, err
	}
	if err := uc.checkReferences(ctx, in); err != nil {
		return nil, err
	}

	taken, err := uc.recipes.NameTaken(ctx, existing.AuthorID, in.Name, existing.ID)
	if err != nil {
		return nil, fmt.Errorf("usecase: ошибка при проверке названия: %w", err)
	}
	if taken {
		return nil, errNameTaken()
	}

	recipe := &domain.Recipe{
		ID:          existing.ID,
		AuthorID:    existing.AuthorID,
		Name:        in.Name,
		Text:        in.Text,
		ImageKey:    existing.ImageKey,
		ImageURL:    existing.ImageURL,
		CookingTime: in.CookingTime,
		PubDate:     existing.PubDate,
	}
	newKey := ""
	if in.Image != "" {
		key, url, err := uc.images.upload(ctx, in.Image)
		if err != nil {
			return nil, err
		}
		newKey = key
		recipe.ImageKey, recipe.ImageURL = key, url
	}
	recipe.ApplyComponents(in)

	if err := uc.recipes.UpdateRecipe(ctx, recipe); err != nil {
		uc.images.discard(ctx, newKey)
		switch {
		case errors.Is(err, ports.ErrDuplicate):
			return nil, errNameTaken()
		case errors.Is(err, ports.ErrRecordNotFound):
			return nil, errRecipeNotFound
		}
		return nil, fmt.Errorf("usecase: ошибка при обновлении рецепта: %w", err)
	}

	if newKey != "" {
		uc.images.release(ctx, existing.ImageKey, existing.ID)
	}

	uc.logger.Info("recipe updated", "recipe_id", id, "by", viewer.UserID)
	return uc.GetRecipe(ctx, viewer, id)
}

func (uc *recipeUseCase) DeleteRecipe(ctx context.Context, viewer *domain.Principal, id uuid.UUID) error {
	if viewer == nil {
		return domain.ErrAuthRequired
	}
	existing, err := uc.loadRecipe(ctx, id)
	if err != nil {
		return err
	}
	if !viewer.CanModify(existing.AuthorID) {
		return errRecipeForeign
	}

	if err := uc.recipes.DeleteRecipe(ctx, id); err != nil {
		if errors.Is(err, ports.ErrRecordNotFound) {
			return errRecipeNotFound
		}
		return fmt.Errorf("usecase: ошибка при удалении рецепта: %w", err)
	}

	uc.images.release(ctx, existing.ImageKey, existing.ID)
	uc.logger.Info("recipe deleted", "recipe_id", id, "by", viewer.UserID)
	return nil
}

func (uc *recipeUseCase) loadRecipe(ctx context.Context, id uuid.UUID) (*domain.Recipe, error) {
	recipe, err := uc.recipes.GetRecipeByID(ctx, id)
	if err != nil {
		if errors.Is(err, ports.ErrRecordNotFound) {
			return nil, errRecipeNotFound
		}
		return nil, fmt.Errorf("usecase: ошибка при получении рецепта: %w", err)
	}
	return recipe, nil
}

func (uc *recipeUseCase) GetRecipe(ctx context.Context, viewer *domain.Principal, id uuid.UUID) (*domain.RecipeView, error) {
	recipe, err := uc.loadRecipe(ctx, id)
	if err != nil {
		return nil, err
	}
	views, err := uc.presenter.present(ctx, viewer, []domain.Recipe{*recipe})
	if err != nil {
		return nil, err
	}
	return &views[0], nil
}

func (uc *recipeUseCase) ListRecipes(ctx context.Context, viewer *domain.Principal, filter domain.RecipeFilter) (*domain.Paginated[domain.RecipeView], error) {
	if viewer == nil {
		filter.ViewerID = uuid.Nil
		filter.IsFavorited = false
		filter.IsInShoppingCart = false
	} else {
		filter.ViewerID = viewer.UserID
	}

	recipes, total, err := uc.recipes.ListRecipes(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("usecase: ошибка при получении рецептов: %w", err)
	}
	views, err := uc.presenter.present(ctx, viewer, recipes)
	if err != nil {
		return nil, err
	}
	return &domain.Paginated[domain.RecipeView]{Count: total, Page: filter.Page, Results: views}, nil
}

func (uc *recipeUseCase) PurgeImage(ctx context.Context, objectKey string) error {
	if objectKey == "" {
		return nil
	}
	if err := uc.images.files.DeleteFile(ctx, objectKey); err != nil {
		return fmt.Errorf("usecase: ошибка при удалении изображения %s: %w", objectKey, err)
	}
	uc.logger.Info("image purged", "key", objectKey)
	return nil
}
