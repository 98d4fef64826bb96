package usecase

import (
	"context"

	"github.com/GoArmGo/Foodgram/internal/domain"
	"github.com/google/uuid"
)

// Во всех методах viewer это аутентифицированный автор запроса, nil для анонимного.

// RecipeUseCase определяет бизнес-логику работы с рецептами
type RecipeUseCase interface {
	// CreateRecipe проверяет входные данные, загружает изображение и сохраняет рецепт.
	// При ошибке сохранения загруженное изображение удаляется.
	CreateRecipe(ctx context.Context, viewer *domain.Principal, in domain.RecipeInput) (*domain.RecipeView, error)

	// UpdateRecipe полностью заменяет теги и ингредиенты рецепта. Доступно автору и администратору.
	UpdateRecipe(ctx context.Context, viewer *domain.Principal, id uuid.UUID, in domain.RecipeInput) (*domain.RecipeView, error)

	// DeleteRecipe удаляет рецепт со всеми связями и освобождает его изображение.
	DeleteRecipe(ctx context.Context, viewer *domain.Principal, id uuid.UUID) error

	GetRecipe(ctx context.Context, viewer *domain.Principal, id uuid.UUID) (*domain.RecipeView, error)

	// ListRecipes применяет фильтры; is_favorited и is_in_shopping_cart игнорируются для анонимов.
	ListRecipes(ctx context.Context, viewer *domain.Principal, filter domain.RecipeFilter) (*domain.Paginated[domain.RecipeView], error)

	// PurgeImage удаляет объект из файлового хранилища. Вызывается воркером.
	PurgeImage(ctx context.Context, objectKey string) error
}

// MembershipUseCase — добавление и удаление рецептов в избранном и корзине.
type MembershipUseCase interface {
	AddRecipe(ctx context.Context, viewer *domain.Principal, rel domain.Relation, recipeID uuid.UUID) (*domain.RecipeSnippet, error)
	RemoveRecipe(ctx context.Context, viewer *domain.Principal, rel domain.Relation, recipeID uuid.UUID) error
}

// FollowUseCase управляет подписками на авторов.
type FollowUseCase interface {
	// Subscribe возвращает профиль автора и до recipesLimit его рецептов (0 без ограничения).
	Subscribe(ctx context.Context, viewer *domain.Principal, targetID uuid.UUID, recipesLimit int) (*domain.Subscription, error)
	Unsubscribe(ctx context.Context, viewer *domain.Principal, targetID uuid.UUID) error
	ListSubscriptions(ctx context.Context, viewer *domain.Principal, page domain.Page, recipesLimit int) (*domain.Paginated[domain.Subscription], error)
}

// ShoppingListUseCase формирует файл со списком покупок.
type ShoppingListUseCase interface {
	BuildShoppingList(ctx context.Context, viewer *domain.Principal) (*domain.ShoppingListFile, error)
}

// CatalogUseCase — справочники тегов и ингредиентов.
type CatalogUseCase interface {
	ListTags(ctx context.Context) ([]domain.Tag, error)
	GetTag(ctx context.Context, id uuid.UUID) (*domain.Tag, error)
	CreateTag(ctx context.Context, viewer *domain.Principal, tag domain.Tag) (*domain.Tag, error)

	SearchIngredients(ctx context.Context, prefix string) ([]domain.Ingredient, error)
	GetIngredient(ctx context.Context, id uuid.UUID) (*domain.Ingredient, error)
	CreateIngredient(ctx context.Context, viewer *domain.Principal, ingredient domain.Ingredient) (*domain.Ingredient, error)

	// LoadTags и LoadIngredients используются загрузчиком CSV; существующие записи пропускаются.
	LoadTags(ctx context.Context, tags []domain.Tag) (int64, error)
	LoadIngredients(ctx context.Context, ingredients []domain.Ingredient) (int64, error)
}

// UserUseCase — регистрация, вход и профили пользователей.
type UserUseCase interface {
	Register(ctx context.Context, in domain.RegisterInput) (*domain.UserProfile, error)
	Login(ctx context.Context, email, password string) (string, error)
	GetUser(ctx context.Context, viewer *domain.Principal, id uuid.UUID) (*domain.UserProfile, error)
	Me(ctx context.Context, viewer *domain.Principal) (*domain.UserProfile, error)
	ListUsers(ctx context.Context, viewer *domain.Principal, page domain.Page) (*domain.Paginated[domain.UserProfile], error)
	SetPassword(ctx context.Context, viewer *domain.Principal, currentPassword, newPassword string) error
}

// TokenIssuer выпускает токены доступа.
type TokenIssuer interface {
	GenerateToken(userID uuid.UUID, role string) (string, error)
}

// PasswordHasher хеширует и сверяет пароли.
type PasswordHasher interface {
	Hash(password string) (string, error)
	Compare(hash, password string) bool
}
