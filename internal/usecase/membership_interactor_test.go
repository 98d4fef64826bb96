package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/GoArmGo/Foodgram/internal/core/ports"
	"github.com/GoArmGo/Foodgram/internal/database/dbtest"
	"github.com/GoArmGo/Foodgram/internal/database/storage"
	"github.com/GoArmGo/Foodgram/internal/domain"
	"github.com/GoArmGo/Foodgram/internal/logger"
	"github.com/google/uuid"
)

func TestMembership_AddRemove(t *testing.T) {
	for _, rel := range domain.Relations() {
		t.Run(string(rel), func(t *testing.T) {
			e := newEnv(t, nil)
			f := seedRecipeFixture(t, e)
			ctx := context.Background()
			recipe := dbtest.CreateRecipe(t, e.db, f.author, "soup", []*domain.Tag{f.lunch}, map[*domain.Ingredient]int{f.beet: 1})
			viewer := principal(f.other)

			snippet, err := e.memberships.AddRecipe(ctx, viewer, rel, recipe.ID)
			if err != nil {
				t.Fatalf("AddRecipe: %v", err)
			}
			if snippet.ID != recipe.ID || snippet.Name != "soup" || snippet.Image != recipe.ImageURL || snippet.CookingTime != 10 {
				t.Errorf("unexpected snippet: %+v", snippet)
			}

			_, err = e.memberships.AddRecipe(ctx, viewer, rel, recipe.ID)
			de := assertKind(t, err, domain.ErrConflict)
			if !strings.HasPrefix(de.Message, "recipe already in ") {
				t.Errorf("unexpected message %q", de.Message)
			}

			if err := e.memberships.RemoveRecipe(ctx, viewer, rel, recipe.ID); err != nil {
				t.Fatalf("RemoveRecipe: %v", err)
			}
			err = e.memberships.RemoveRecipe(ctx, viewer, rel, recipe.ID)
			de = assertKind(t, err, domain.ErrConflict)
			if !strings.HasPrefix(de.Message, "recipe is not in ") {
				t.Errorf("unexpected message %q", de.Message)
			}

			_, err = e.memberships.AddRecipe(ctx, viewer, rel, uuid.New())
			assertKind(t, err, domain.ErrNotFound)
			err = e.memberships.RemoveRecipe(ctx, viewer, rel, uuid.New())
			assertKind(t, err, domain.ErrNotFound)

			_, err = e.memberships.AddRecipe(ctx, nil, rel, recipe.ID)
			assertKind(t, err, domain.ErrUnauthorized)
		})
	}
}

func TestMembership_RelationsAreIndependent(t *testing.T) {
	e := newEnv(t, nil)
	f := seedRecipeFixture(t, e)
	ctx := context.Background()
	recipe := dbtest.CreateRecipe(t, e.db, f.author, "soup", nil, nil)

	if _, err := e.memberships.AddRecipe(ctx, principal(f.other), domain.RelationFavorites, recipe.ID); err != nil {
		t.Fatalf("AddRecipe: %v", err)
	}
	if _, err := e.memberships.AddRecipe(ctx, principal(f.other), domain.RelationShoppingCart, recipe.ID); err != nil {
		t.Fatalf("favorite must not block cart: %v", err)
	}
	if err := e.memberships.RemoveRecipe(ctx, principal(f.author), domain.RelationFavorites, recipe.ID); !errors.Is(err, domain.ErrConflict) {
		t.Fatalf("other user's favorite must not be removable, got %v", err)
	}
}

func TestFollow_Subscribe(t *testing.T) {
	e := newEnv(t, nil)
	f := seedRecipeFixture(t, e)
	ctx := context.Background()

	dbtest.CreateRecipe(t, e.db, f.author, "soup", nil, nil)
	dbtest.CreateRecipe(t, e.db, f.author, "porridge", nil, nil)

	_, err := e.follows.Subscribe(ctx, principal(f.author), f.author.ID, 0)
	de := assertKind(t, err, domain.ErrValidation)
	if de.Message != "you cannot subscribe to yourself" {
		t.Errorf("unexpected message %q", de.Message)
	}

	_, err = e.follows.Subscribe(ctx, principal(f.other), uuid.New(), 0)
	assertKind(t, err, domain.ErrNotFound)

	sub, err := e.follows.Subscribe(ctx, principal(f.other), f.author.ID, 1)
	if err != nil {
		t.Fatalf("Subscribe: %v", err)
	}
	if !sub.IsSubscribed || sub.ID != f.author.ID {
		t.Errorf("unexpected subscription: %+v", sub.UserProfile)
	}
	if len(sub.Recipes) != 1 || sub.RecipesCount != 2 {
		t.Errorf("expected 1 of 2 recipes, got %d of %d", len(sub.Recipes), sub.RecipesCount)
	}

	_, err = e.follows.Subscribe(ctx, principal(f.other), f.author.ID, 0)
	assertKind(t, err, domain.ErrConflict)

	// подписка не взаимна
	if err := e.follows.Unsubscribe(ctx, principal(f.author), f.other.ID); !errors.Is(err, domain.ErrConflict) {
		t.Fatalf("expected conflict for reverse unsubscribe, got %v", err)
	}
}

func TestFollow_ListSubscriptions(t *testing.T) {
	e := newEnv(t, nil)
	f := seedRecipeFixture(t, e)
	ctx := context.Background()
	third := dbtest.CreateUser(t, e.db, "third")

	dbtest.CreateRecipe(t, e.db, f.author, "soup", nil, nil)
	dbtest.CreateRecipe(t, e.db, f.author, "porridge", nil, nil)
	dbtest.CreateRecipe(t, e.db, third, "salad", nil, nil)

	for _, target := range []*domain.User{f.author, third} {
		if _, err := e.follows.Subscribe(ctx, principal(f.other), target.ID, 0); err != nil {
			t.Fatalf("Subscribe %s: %v", target.Username, err)
		}
	}

	page := domain.NewPage(1, 10, domain.DefaultPageSize)
	subs, err := e.follows.ListSubscriptions(ctx, principal(f.other), page, 0)
	if err != nil {
		t.Fatalf("ListSubscriptions: %v", err)
	}
	if subs.Count != 2 || len(subs.Results) != 2 {
		t.Fatalf("expected 2 subscriptions, got %d", subs.Count)
	}
	counts := map[string]int{}
	for _, s := range subs.Results {
		counts[s.Username] = len(s.Recipes)
		if !s.IsSubscribed || s.RecipesCount != int64(len(s.Recipes)) {
			t.Errorf("unexpected subscription %+v", s)
		}
	}
	if counts["author"] != 2 || counts["third"] != 1 {
		t.Errorf("unexpected recipe counts: %v", counts)
	}

	if err := e.follows.Unsubscribe(ctx, principal(f.other), third.ID); err != nil {
		t.Fatalf("Unsubscribe: %v", err)
	}
	subs, err = e.follows.ListSubscriptions(ctx, principal(f.other), page, 0)
	if err != nil {
		t.Fatalf("ListSubscriptions: %v", err)
	}
	if subs.Count != 1 || subs.Results[0].ID != f.author.ID {
		t.Errorf("expected only author left, got %+v", subs.Results)
	}

	_, err = e.follows.ListSubscriptions(ctx, nil, page, 0)
	assertKind(t, err, domain.ErrUnauthorized)
}

func TestShoppingList_Build(t *testing.T) {
	e := newEnv(t, nil)
	f := seedRecipeFixture(t, e)
	ctx := context.Background()
	salt := dbtest.CreateIngredient(t, e.db, "salt", "g")

	_, err := e.shoppingList.BuildShoppingList(ctx, principal(f.other))
	if !errors.Is(err, domain.ErrEmptyShoppingList) {
		t.Fatalf("expected empty shopping list error, got %v", err)
	}

	soup := dbtest.CreateRecipe(t, e.db, f.author, "soup", nil, map[*domain.Ingredient]int{f.potato: 2, salt: 3})
	stew := dbtest.CreateRecipe(t, e.db, f.author, "stew", nil, map[*domain.Ingredient]int{f.potato: 1, salt: 2})
	for _, r := range []*domain.Recipe{soup, stew} {
		if _, err := e.memberships.AddRecipe(ctx, principal(f.other), domain.RelationShoppingCart, r.ID); err != nil {
			t.Fatalf("AddRecipe: %v", err)
		}
	}

	file, err := e.shoppingList.BuildShoppingList(ctx, principal(f.other))
	if err != nil {
		t.Fatalf("BuildShoppingList: %v", err)
	}
	if file.Filename != "other_shopping_list.txt" {
		t.Errorf("unexpected filename %q", file.Filename)
	}
	want := "potato --> 3 kg\nsalt --> 5 g\n"
	if file.Content != want {
		t.Errorf("unexpected content:\n%s\nwant:\n%s", file.Content, want)
	}

	_, err = e.shoppingList.BuildShoppingList(ctx, nil)
	assertKind(t, err, domain.ErrUnauthorized)
}

// vanishingMemberships имитирует удаление рецепта между проверкой и вставкой.
type vanishingMemberships struct {
	ports.MembershipStorage
}

func (vanishingMemberships) AddMembership(context.Context, domain.Relation, uuid.UUID, uuid.UUID) error {
	return fmt.Errorf("ошибка при добавлении: %w", ports.ErrReferenceMissing)
}

type vanishingFollows struct {
	ports.FollowStorage
}

func (vanishingFollows) Follow(context.Context, uuid.UUID, uuid.UUID) error {
	return ports.ErrReferenceMissing
}

func TestMembership_RecipeDeletedConcurrently(t *testing.T) {
	db, _ := dbtest.Open(t)
	log := logger.Discard()
	ctx := context.Background()

	author := dbtest.CreateUser(t, db, "author")
	reader := dbtest.CreateUser(t, db, "reader")
	recipe := dbtest.CreateRecipe(t, db, author, "Borscht", nil, nil)

	recipes := storage.NewRecipeStorage(db, log)
	memberships := NewMembershipUseCase(recipes, vanishingMemberships{storage.NewMembershipStorage(db, log)}, log)
	_, err := memberships.AddRecipe(ctx, principal(reader), domain.RelationFavorites, recipe.ID)
	assertKind(t, err, domain.ErrNotFound)

	users := storage.NewUserStorage(db, log)
	follows := NewFollowUseCase(users, vanishingFollows{storage.NewFollowStorage(db, log)}, recipes, log)
	_, err = follows.Subscribe(ctx, principal(reader), author.ID, 0)
	assertKind(t, err, domain.ErrNotFound)
}
