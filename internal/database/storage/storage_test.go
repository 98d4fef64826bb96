package storage

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/GoArmGo/Foodgram/internal/core/ports"
	"github.com/GoArmGo/Foodgram/internal/database/dbtest"
	"github.com/GoArmGo/Foodgram/internal/domain"
	"github.com/GoArmGo/Foodgram/internal/logger"
	"github.com/google/uuid"
)

func TestMembershipAddRemoveTranslatesErrors(t *testing.T) {
	db, _ := dbtest.Open(t)
	ctx := context.Background()
	s := NewMembershipStorage(db, logger.Discard())

	user := dbtest.CreateUser(t, db, "alice")
	recipe := dbtest.CreateRecipe(t, db, user, "borscht", nil, nil)

	for _, rel := range domain.Relations() {
		if err := s.AddMembership(ctx, rel, user.ID, recipe.ID); err != nil {
			t.Fatalf("%s: first add: %v", rel, err)
		}
		if err := s.AddMembership(ctx, rel, user.ID, recipe.ID); !errors.Is(err, ports.ErrDuplicate) {
			t.Fatalf("%s: expected ErrDuplicate on second add, got %v", rel, err)
		}
		ok, err := s.HasMembership(ctx, rel, user.ID, recipe.ID)
		if err != nil || !ok {
			t.Fatalf("%s: expected membership, got %v %v", rel, ok, err)
		}
		if err := s.RemoveMembership(ctx, rel, user.ID, recipe.ID); err != nil {
			t.Fatalf("%s: remove: %v", rel, err)
		}
		if err := s.RemoveMembership(ctx, rel, user.ID, recipe.ID); !errors.Is(err, ports.ErrRecordNotFound) {
			t.Fatalf("%s: expected ErrRecordNotFound on second remove, got %v", rel, err)
		}
	}
}

func TestMembershipRelationsAreIndependent(t *testing.T) {
	db, _ := dbtest.Open(t)
	ctx := context.Background()
	s := NewMembershipStorage(db, logger.Discard())

	user := dbtest.CreateUser(t, db, "alice")
	first := dbtest.CreateRecipe(t, db, user, "first", nil, nil)
	second := dbtest.CreateRecipe(t, db, user, "second", nil, nil)

	if err := s.AddMembership(ctx, domain.RelationFavorites, user.ID, first.ID); err != nil {
		t.Fatalf("add: %v", err)
	}
	inCart, err := s.MemberRecipeIDs(ctx, domain.RelationShoppingCart, user.ID, []uuid.UUID{first.ID, second.ID})
	if err != nil {
		t.Fatalf("cart ids: %v", err)
	}
	if len(inCart) != 0 {
		t.Fatalf("favorite leaked into cart: %v", inCart)
	}
	favs, err := s.MemberRecipeIDs(ctx, domain.RelationFavorites, user.ID, []uuid.UUID{first.ID, second.ID})
	if err != nil {
		t.Fatalf("favorite ids: %v", err)
	}
	if !favs[first.ID] || favs[second.ID] {
		t.Fatalf("unexpected favorites %v", favs)
	}
}

func TestCreateRecipeDuplicateNameIsDuplicate(t *testing.T) {
	db, _ := dbtest.Open(t)
	ctx := context.Background()
	s := NewRecipeStorage(db, logger.Discard())

	author := dbtest.CreateUser(t, db, "alice")
	other := dbtest.CreateUser(t, db, "bob")
	tag := dbtest.CreateTag(t, db, "lunch", "#E26C2D")
	potato := dbtest.CreateIngredient(t, db, "potato", "kg")

	newRecipe := func(authorID uuid.UUID) *domain.Recipe {
		r := &domain.Recipe{AuthorID: authorID, Name: "soup", Text: "boil", ImageKey: "k", ImageURL: "u", CookingTime: 5}
		r.ApplyComponents(domain.RecipeInput{
			TagIDs:      []uuid.UUID{tag.ID},
			Ingredients: []domain.IngredientAmount{{IngredientID: potato.ID, Amount: 2}},
		})
		return r
	}

	if err := s.CreateRecipe(ctx, newRecipe(author.ID)); err != nil {
		t.Fatalf("create: %v", err)
	}
	if err := s.CreateRecipe(ctx, newRecipe(author.ID)); !errors.Is(err, ports.ErrDuplicate) {
		t.Fatalf("expected ErrDuplicate, got %v", err)
	}
	if err := s.CreateRecipe(ctx, newRecipe(other.ID)); err != nil {
		t.Fatalf("other author must reuse the name: %v", err)
	}

	var count int64
	db.Model(&domain.RecipeIngredient{}).Count(&count)
	if count != 2 {
		t.Fatalf("failed transaction left ingredient rows behind: %d", count)
	}
}

func TestUpdateRecipeReplacesComponentsInOrder(t *testing.T) {
	db, _ := dbtest.Open(t)
	ctx := context.Background()
	s := NewRecipeStorage(db, logger.Discard())

	author := dbtest.CreateUser(t, db, "alice")
	lunch := dbtest.CreateTag(t, db, "lunch", "#E26C2D")
	dinner := dbtest.CreateTag(t, db, "dinner", "#8775D2")
	potato := dbtest.CreateIngredient(t, db, "potato", "kg")
	salt := dbtest.CreateIngredient(t, db, "salt", "g")
	onion := dbtest.CreateIngredient(t, db, "onion", "pcs")

	r := &domain.Recipe{AuthorID: author.ID, Name: "soup", Text: "boil", ImageKey: "k", ImageURL: "u", CookingTime: 5}
	r.ApplyComponents(domain.RecipeInput{
		TagIDs:      []uuid.UUID{lunch.ID},
		Ingredients: []domain.IngredientAmount{{IngredientID: potato.ID, Amount: 2}},
	})
	if err := s.CreateRecipe(ctx, r); err != nil {
		t.Fatalf("create: %v", err)
	}

	r.Name = "stew"
	r.ApplyComponents(domain.RecipeInput{
		TagIDs: []uuid.UUID{dinner.ID},
		Ingredients: []domain.IngredientAmount{
			{IngredientID: salt.ID, Amount: 5},
			{IngredientID: onion.ID, Amount: 1},
		},
	})
	if err := s.UpdateRecipe(ctx, r); err != nil {
		t.Fatalf("update: %v", err)
	}

	got, err := s.GetRecipeByID(ctx, r.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.Name != "stew" {
		t.Fatalf("name not updated: %q", got.Name)
	}
	if len(got.Tags) != 1 || got.Tags[0].Tag == nil || got.Tags[0].Tag.Slug != "dinner" {
		t.Fatalf("unexpected tags %+v", got.Tags)
	}
	if len(got.Ingredients) != 2 ||
		got.Ingredients[0].Ingredient.Name != "salt" ||
		got.Ingredients[1].Ingredient.Name != "onion" {
		t.Fatalf("unexpected ingredients %+v", got.Ingredients)
	}
	if got.Author == nil || got.Author.Username != "alice" {
		t.Fatalf("author not preloaded: %+v", got.Author)
	}
}

func TestDeleteRecipeRemovesRelations(t *testing.T) {
	db, _ := dbtest.Open(t)
	ctx := context.Background()
	recipes := NewRecipeStorage(db, logger.Discard())
	memberships := NewMembershipStorage(db, logger.Discard())

	author := dbtest.CreateUser(t, db, "alice")
	tag := dbtest.CreateTag(t, db, "lunch", "#E26C2D")
	potato := dbtest.CreateIngredient(t, db, "potato", "kg")
	r := dbtest.CreateRecipe(t, db, author, "soup", []*domain.Tag{tag}, map[*domain.Ingredient]int{potato: 2})

	for _, rel := range domain.Relations() {
		if err := memberships.AddMembership(ctx, rel, author.ID, r.ID); err != nil {
			t.Fatalf("add %s: %v", rel, err)
		}
	}

	if err := recipes.DeleteRecipe(ctx, r.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, err := recipes.GetRecipeByID(ctx, r.ID); !errors.Is(err, ports.ErrRecordNotFound) {
		t.Fatalf("expected not found after delete, got %v", err)
	}
	for _, rel := range domain.Relations() {
		n, err := memberships.CountMemberships(ctx, rel, author.ID)
		if err != nil || n != 0 {
			t.Fatalf("%s rows left: %d %v", rel, n, err)
		}
	}
	var links int64
	db.Model(&domain.RecipeTag{}).Count(&links)
	if links != 0 {
		t.Fatalf("tag links left: %d", links)
	}
	if err := recipes.DeleteRecipe(ctx, r.ID); !errors.Is(err, ports.ErrRecordNotFound) {
		t.Fatalf("expected not found on second delete, got %v", err)
	}
}

func TestListRecipesByTagsUsesOr(t *testing.T) {
	db, _ := dbtest.Open(t)
	ctx := context.Background()
	s := NewRecipeStorage(db, logger.Discard())

	author := dbtest.CreateUser(t, db, "alice")
	lunch := dbtest.CreateTag(t, db, "lunch", "#E26C2D")
	breakfast := dbtest.CreateTag(t, db, "breakfast", "#49B64E")

	first := dbtest.CreateRecipe(t, db, author, "first", []*domain.Tag{lunch}, nil)
	dbtest.CreateRecipe(t, db, author, "second", []*domain.Tag{breakfast}, nil)
	third := dbtest.CreateRecipe(t, db, author, "third", []*domain.Tag{lunch, breakfast}, nil)

	page := domain.NewPage(1, 10, 10)

	got, total, err := s.ListRecipes(ctx, domain.RecipeFilter{TagSlugs: []string{"lunch"}, Page: page})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if total != 2 || !sameIDs(got, first.ID, third.ID) {
		t.Fatalf("tags=lunch: expected first and third, got %d %v", total, names(got))
	}

	got, total, err = s.ListRecipes(ctx, domain.RecipeFilter{TagSlugs: []string{"lunch", "breakfast"}, Page: page})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if total != 3 || len(got) != 3 {
		t.Fatalf("tags=lunch&tags=breakfast: expected all three, got %d %v", total, names(got))
	}

	got, total, err = s.ListRecipes(ctx, domain.RecipeFilter{TagSlugs: []string{"unknown"}, Page: page})
	if err != nil {
		t.Fatalf("unknown slug must not fail: %v", err)
	}
	if total != 0 || len(got) != 0 {
		t.Fatalf("unknown slug must filter to nothing, got %v", names(got))
	}
}

func TestListRecipesByAuthorAndMembership(t *testing.T) {
	db, _ := dbtest.Open(t)
	ctx := context.Background()
	s := NewRecipeStorage(db, logger.Discard())
	memberships := NewMembershipStorage(db, logger.Discard())

	alice := dbtest.CreateUser(t, db, "alice")
	bob := dbtest.CreateUser(t, db, "bob")
	soup := dbtest.CreateRecipe(t, db, alice, "soup", nil, nil)
	pie := dbtest.CreateRecipe(t, db, bob, "pie", nil, nil)
	if err := memberships.AddMembership(ctx, domain.RelationFavorites, alice.ID, pie.ID); err != nil {
		t.Fatalf("favorite: %v", err)
	}

	page := domain.NewPage(1, 10, 10)

	got, _, err := s.ListRecipes(ctx, domain.RecipeFilter{AuthorID: &alice.ID, Page: page})
	if err != nil || !sameIDs(got, soup.ID) {
		t.Fatalf("author filter: %v %v", names(got), err)
	}

	got, _, err = s.ListRecipes(ctx, domain.RecipeFilter{IsFavorited: true, ViewerID: alice.ID, Page: page})
	if err != nil || !sameIDs(got, pie.ID) {
		t.Fatalf("favorited filter: %v %v", names(got), err)
	}

	got, _, err = s.ListRecipes(ctx, domain.RecipeFilter{IsInShoppingCart: true, ViewerID: alice.ID, Page: page})
	if err != nil || len(got) != 0 {
		t.Fatalf("cart filter: %v %v", names(got), err)
	}

	got, _, err = s.ListRecipes(ctx, domain.RecipeFilter{IsFavorited: true, AuthorID: &alice.ID, ViewerID: alice.ID, Page: page})
	if err != nil || len(got) != 0 {
		t.Fatalf("filters must combine with AND: %v %v", names(got), err)
	}
}

func TestListRecipesNewestFirstAndPaged(t *testing.T) {
	db, _ := dbtest.Open(t)
	ctx := context.Background()
	s := NewRecipeStorage(db, logger.Discard())

	author := dbtest.CreateUser(t, db, "alice")
	old := dbtest.CreateRecipe(t, db, author, "old", nil, nil)
	fresh := dbtest.CreateRecipe(t, db, author, "fresh", nil, nil)
	db.Model(&domain.Recipe{}).Where("id = ?", old.ID).Update("pub_date", time.Now().Add(-time.Hour))

	got, total, err := s.ListRecipes(ctx, domain.RecipeFilter{Page: domain.NewPage(1, 1, 1)})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if total != 2 || len(got) != 1 || got[0].ID != fresh.ID {
		t.Fatalf("expected fresh recipe first, got %d %v", total, names(got))
	}
	got, _, err = s.ListRecipes(ctx, domain.RecipeFilter{Page: domain.NewPage(2, 1, 1)})
	if err != nil || len(got) != 1 || got[0].ID != old.ID {
		t.Fatalf("expected old recipe on page 2, got %v %v", names(got), err)
	}
}

func TestAggregateShoppingListGroupsByNameAndUnit(t *testing.T) {
	db, sqlxDB := dbtest.Open(t)
	ctx := context.Background()
	memberships := NewMembershipStorage(db, logger.Discard())
	shopping := NewShoppingListStorage(sqlxDB, logger.Discard())

	user := dbtest.CreateUser(t, db, "alice")
	potato := dbtest.CreateIngredient(t, db, "potato", "kg")
	potatoPcs := dbtest.CreateIngredient(t, db, "potato", "pcs")
	salt := dbtest.CreateIngredient(t, db, "salt", "g")

	a := dbtest.CreateRecipe(t, db, user, "a", nil, map[*domain.Ingredient]int{potato: 2, salt: 5})
	b := dbtest.CreateRecipe(t, db, user, "b", nil, map[*domain.Ingredient]int{potato: 3, potatoPcs: 4})
	dbtest.CreateRecipe(t, db, user, "not-in-cart", nil, map[*domain.Ingredient]int{potato: 100})

	for _, r := range []*domain.Recipe{b, a} {
		if err := memberships.AddMembership(ctx, domain.RelationShoppingCart, user.ID, r.ID); err != nil {
			t.Fatalf("cart: %v", err)
		}
	}

	items, err := shopping.AggregateShoppingList(ctx, user.ID)
	if err != nil {
		t.Fatalf("aggregate: %v", err)
	}
	want := []domain.ShoppingListItem{
		{Name: "potato", MeasurementUnit: "kg", Amount: 5},
		{Name: "potato", MeasurementUnit: "pcs", Amount: 4},
		{Name: "salt", MeasurementUnit: "g", Amount: 5},
	}
	if len(items) != len(want) {
		t.Fatalf("expected %d lines got %+v", len(want), items)
	}
	for i := range want {
		if items[i] != want[i] {
			t.Fatalf("line %d: expected %+v got %+v", i, want[i], items[i])
		}
	}

	other := dbtest.CreateUser(t, db, "bob")
	empty, err := shopping.AggregateShoppingList(ctx, other.ID)
	if err != nil || len(empty) != 0 {
		t.Fatalf("expected empty list for bob, got %+v %v", empty, err)
	}
}

func TestSearchIngredientsByPrefix(t *testing.T) {
	db, _ := dbtest.Open(t)
	ctx := context.Background()
	s := NewCatalogStorage(db, logger.Discard())

	dbtest.CreateIngredient(t, db, "Potato", "kg")
	dbtest.CreateIngredient(t, db, "potato starch", "g")
	dbtest.CreateIngredient(t, db, "sweet potato", "kg")
	dbtest.CreateIngredient(t, db, "po_lenta", "g")

	got, err := s.SearchIngredients(ctx, "POT")
	if err != nil {
		t.Fatalf("search: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("expected 2 prefix matches, got %+v", got)
	}
	for _, ing := range got {
		if ing.Name == "sweet potato" {
			t.Fatal("prefix search must not match in the middle of the name")
		}
	}

	got, err = s.SearchIngredients(ctx, "po_")
	if err != nil {
		t.Fatalf("search: %v", err)
	}
	if len(got) != 1 || got[0].Name != "po_lenta" {
		t.Fatalf("underscore must be literal, got %+v", got)
	}
}

func TestSeedSkipsExisting(t *testing.T) {
	db, _ := dbtest.Open(t)
	ctx := context.Background()
	s := NewCatalogStorage(db, logger.Discard())

	dbtest.CreateIngredient(t, db, "salt", "g")

	n, err := s.SeedIngredients(ctx, []domain.Ingredient{
		{Name: "salt", MeasurementUnit: "g"},
		{Name: "sugar", MeasurementUnit: "g"},
	})
	if err != nil {
		t.Fatalf("seed: %v", err)
	}
	if n != 1 {
		t.Fatalf("expected 1 inserted row, got %d", n)
	}

	if err := s.CreateTag(ctx, &domain.Tag{Name: "Lunch", Color: "#E26C2D", Slug: "lunch"}); err != nil {
		t.Fatalf("create tag: %v", err)
	}
	err = s.CreateTag(ctx, &domain.Tag{Name: "Other", Color: "#000000", Slug: "lunch"})
	if !errors.Is(err, ports.ErrDuplicate) {
		t.Fatalf("expected duplicate slug error, got %v", err)
	}
}

func TestFollowStorage(t *testing.T) {
	db, _ := dbtest.Open(t)
	ctx := context.Background()
	s := NewFollowStorage(db, logger.Discard())

	alice := dbtest.CreateUser(t, db, "alice")
	bob := dbtest.CreateUser(t, db, "bob")
	carol := dbtest.CreateUser(t, db, "carol")

	if err := s.Follow(ctx, alice.ID, bob.ID); err != nil {
		t.Fatalf("follow: %v", err)
	}
	if err := s.Follow(ctx, alice.ID, bob.ID); !errors.Is(err, ports.ErrDuplicate) {
		t.Fatalf("expected duplicate, got %v", err)
	}
	if err := s.Follow(ctx, alice.ID, carol.ID); err != nil {
		t.Fatalf("follow: %v", err)
	}

	users, total, err := s.ListFollowing(ctx, alice.ID, domain.NewPage(1, 10, 10))
	if err != nil || total != 2 || users[0].Username != "bob" || users[1].Username != "carol" {
		t.Fatalf("unexpected following list %v %d %v", users, total, err)
	}

	followed, err := s.FollowedIDs(ctx, bob.ID, []uuid.UUID{alice.ID})
	if err != nil || followed[alice.ID] {
		t.Fatalf("follow must not be symmetric: %v %v", followed, err)
	}

	if err := s.Unfollow(ctx, alice.ID, bob.ID); err != nil {
		t.Fatalf("unfollow: %v", err)
	}
	if err := s.Unfollow(ctx, alice.ID, bob.ID); !errors.Is(err, ports.ErrRecordNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
}

func sameIDs(recipes []domain.Recipe, ids ...uuid.UUID) bool {
	if len(recipes) != len(ids) {
		return false
	}
	want := make(map[uuid.UUID]bool, len(ids))
	for _, id := range ids {
		want[id] = true
	}
	for _, r := range recipes {
		if !want[r.ID] {
			return false
		}
	}
	return true
}

func names(recipes []domain.Recipe) []string {
	out := make([]string, 0, len(recipes))
	for _, r := range recipes {
		out = append(out, r.Name)
	}
	return out
}
