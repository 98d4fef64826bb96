package ports

import (
	"context"
	"errors"
	"io"

	"github.com/GoArmGo/Foodgram/internal/domain"
	"github.com/google/uuid"
)

// Ошибки хранилища, не зависящие от конкретной СУБД.
var (
	ErrRecordNotFound = errors.New("record not found")
	ErrDuplicate      = errors.New("duplicate record")

	// ErrReferenceMissing: запись ссылается на строку, удалённую параллельным запросом.
	ErrReferenceMissing = errors.New("referenced record not found")
)

// UserStorage определяет методы для взаимодействия с хранилищем пользователей
type UserStorage interface {
	CreateUser(ctx context.Context, user *domain.User) error
	GetUserByID(ctx context.Context, id uuid.UUID) (*domain.User, error)
	GetUserByEmail(ctx context.Context, email string) (*domain.User, error)
	UsernameOrEmailTaken(ctx context.Context, username, email string) (string, error)
	ListUsers(ctx context.Context, page domain.Page) ([]domain.User, int64, error)
	UpdatePassword(ctx context.Context, id uuid.UUID, passwordHash string) error
}

// CatalogStorage хранит справочники тегов и ингредиентов.
type CatalogStorage interface {
	CreateTag(ctx context.Context, tag *domain.Tag) error
	GetTagByID(ctx context.Context, id uuid.UUID) (*domain.Tag, error)
	ListTags(ctx context.Context) ([]domain.Tag, error)
	CountTags(ctx context.Context, ids []uuid.UUID) (int64, error)
	// SeedTags вставляет теги, пропуская уже существующие, и возвращает число добавленных.
	SeedTags(ctx context.Context, tags []domain.Tag) (int64, error)

	CreateIngredient(ctx context.Context, ingredient *domain.Ingredient) error
	GetIngredientByID(ctx context.Context, id uuid.UUID) (*domain.Ingredient, error)
	// SearchIngredients ищет ингредиенты по началу названия без учёта регистра.
	SearchIngredients(ctx context.Context, prefix string) ([]domain.Ingredient, error)
	CountIngredients(ctx context.Context, ids []uuid.UUID) (int64, error)
	SeedIngredients(ctx context.Context, ingredients []domain.Ingredient) (int64, error)
}

// RecipeStorage хранит рецепты вместе с их тегами и ингредиентами.
// Create, Update и Delete выполняются в одной транзакции.
type RecipeStorage interface {
	CreateRecipe(ctx context.Context, recipe *domain.Recipe) error
	UpdateRecipe(ctx context.Context, recipe *domain.Recipe) error
	DeleteRecipe(ctx context.Context, id uuid.UUID) error
	GetRecipeByID(ctx context.Context, id uuid.UUID) (*domain.Recipe, error)
	NameTaken(ctx context.Context, authorID uuid.UUID, name string, exceptID uuid.UUID) (bool, error)
	ListRecipes(ctx context.Context, filter domain.RecipeFilter) ([]domain.Recipe, int64, error)
	// ListRecipesByAuthor возвращает свежие рецепты автора; limit <= 0 снимает ограничение.
	ListRecipesByAuthor(ctx context.Context, authorID uuid.UUID, limit int) ([]domain.Recipe, error)
	CountRecipesByAuthors(ctx context.Context, authorIDs []uuid.UUID) (map[uuid.UUID]int64, error)
}

// MembershipStorage обслуживает отношения "пользователь — рецепт" (избранное, корзина).
type MembershipStorage interface {
	// AddMembership возвращает ErrDuplicate, если пара уже существует.
	AddMembership(ctx context.Context, rel domain.Relation, userID, recipeID uuid.UUID) error
	// RemoveMembership возвращает ErrRecordNotFound, если пары нет.
	RemoveMembership(ctx context.Context, rel domain.Relation, userID, recipeID uuid.UUID) error
	HasMembership(ctx context.Context, rel domain.Relation, userID, recipeID uuid.UUID) (bool, error)
	MemberRecipeIDs(ctx context.Context, rel domain.Relation, userID uuid.UUID, recipeIDs []uuid.UUID) (map[uuid.UUID]bool, error)
	CountMemberships(ctx context.Context, rel domain.Relation, userID uuid.UUID) (int64, error)
}

// FollowStorage хранит подписки на авторов.
type FollowStorage interface {
	// Follow возвращает ErrDuplicate, если подписка уже есть.
	Follow(ctx context.Context, userID, followingID uuid.UUID) error
	// Unfollow возвращает ErrRecordNotFound, если подписки нет.
	Unfollow(ctx context.Context, userID, followingID uuid.UUID) error
	FollowedIDs(ctx context.Context, userID uuid.UUID, candidateIDs []uuid.UUID) (map[uuid.UUID]bool, error)
	ListFollowing(ctx context.Context, userID uuid.UUID, page domain.Page) ([]domain.User, int64, error)
}

// ShoppingListStorage агрегирует ингредиенты рецептов из корзины пользователя.
type ShoppingListStorage interface {
	AggregateShoppingList(ctx context.Context, userID uuid.UUID) ([]domain.ShoppingListItem, error)
}

// FileStorage определяет интерфейс для работы с файловым хранилищем (AWS S3, MinIO)
// порт для хранения бинарных данных (изображений рецептов)
type FileStorage interface {
	// UploadFile загружает файл в хранилище и возвращает его публичный URL.
	UploadFile(ctx context.Context, key string, reader io.Reader, contentType string) (string, error)
	DeleteFile(ctx context.Context, key string) error
}
