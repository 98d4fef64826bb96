package usecase

import (
	"context"
	"errors"
	"io"
	"sync"
	"testing"

	"github.com/GoArmGo/Foodgram/internal/core/ports"
	"github.com/GoArmGo/Foodgram/internal/database/dbtest"
	"github.com/GoArmGo/Foodgram/internal/database/storage"
	"github.com/GoArmGo/Foodgram/internal/domain"
	"github.com/GoArmGo/Foodgram/internal/logger"
	"github.com/GoArmGo/Foodgram/internal/messaging/payloads"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

const pngDataURI = "data:image/png;base64,iVBORw0KGgoAAAANSUhEUgAAAAEAAAABCAYAAAAfFcSJAAAADUlEQVR42mNkYPhfDwAChwGA60e6kgAAAABJRU5ErkJggg=="

type fakeFiles struct {
	mu      sync.Mutex
	objects map[string][]byte
	deleted []string
	failPut bool
}

func newFakeFiles() *fakeFiles {
	return &fakeFiles{objects: map[string][]byte{}}
}

func (f *fakeFiles) UploadFile(_ context.Context, key string, r io.Reader, _ string) (string, error) {
	if f.failPut {
		return "", errors.New("storage unavailable")
	}
	data, err := io.ReadAll(r)
	if err != nil {
		return "", err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.objects[key] = data
	return "http://files.test/" + key, nil
}

func (f *fakeFiles) DeleteFile(_ context.Context, key string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.objects, key)
	f.deleted = append(f.deleted, key)
	return nil
}

func (f *fakeFiles) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.objects)
}

type fakePublisher struct {
	published []payloads.ImageCleanupPayload
	err       error
}

func (p *fakePublisher) PublishImageCleanup(_ context.Context, payload payloads.ImageCleanupPayload) error {
	if p.err != nil {
		return p.err
	}
	p.published = append(p.published, payload)
	return nil
}

type plainHasher struct{}

func (plainHasher) Hash(password string) (string, error) { return "hashed:" + password, nil }

func (plainHasher) Compare(hash, password string) bool { return hash == "hashed:"+password }

type fakeTokens struct{}

func (fakeTokens) GenerateToken(userID uuid.UUID, role string) (string, error) {
	return role + ":" + userID.String(), nil
}

type env struct {
	db           *gorm.DB
	files        *fakeFiles
	recipes      RecipeUseCase
	memberships  MembershipUseCase
	follows      FollowUseCase
	shoppingList ShoppingListUseCase
	catalog      CatalogUseCase
	users        UserUseCase
}

// publisher может быть nil: тогда изображения удаляются сразу.
func newEnv(t *testing.T, publisher ports.ImageCleanupPublisher) *env {
	t.Helper()

	db, sqlxDB := dbtest.Open(t)
	log := logger.Discard()

	userStorage := storage.NewUserStorage(db, log)
	catalogStorage := storage.NewCatalogStorage(db, log)
	recipeStorage := storage.NewRecipeStorage(db, log)
	membershipStorage := storage.NewMembershipStorage(db, log)
	followStorage := storage.NewFollowStorage(db, log)
	listStorage := storage.NewShoppingListStorage(sqlxDB, log)

	files := newFakeFiles()

	e := &env{db: db, files: files}
	e.recipes = NewRecipeUseCase(recipeStorage, catalogStorage, membershipStorage, followStorage, files, publisher, make(chan struct{}, 2), log)
	e.memberships = NewMembershipUseCase(recipeStorage, membershipStorage, log)
	e.follows = NewFollowUseCase(userStorage, followStorage, recipeStorage, log)
	e.shoppingList = NewShoppingListUseCase(userStorage, membershipStorage, listStorage, log)

	catalog, err := NewCatalogUseCase(catalogStorage, 16, log)
	if err != nil {
		t.Fatalf("catalog usecase: %v", err)
	}
	e.catalog = catalog
	e.users = NewUserUseCase(userStorage, followStorage, fakeTokens{}, plainHasher{}, log)
	return e
}

func principal(u *domain.User) *domain.Principal {
	return &domain.Principal{UserID: u.ID, Role: u.Role}
}

func assertKind(t *testing.T, err error, kind error) *domain.Error {
	t.Helper()
	if !errors.Is(err, kind) {
		t.Fatalf("expected %v, got %v", kind, err)
	}
	var de *domain.Error
	if !errors.As(err, &de) {
		t.Fatalf("expected *domain.Error, got %T", err)
	}
	return de
}
