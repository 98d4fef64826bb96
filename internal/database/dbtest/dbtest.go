// Package dbtest поднимает in-memory SQLite с той же схемой, что и PostgreSQL,
// для тестов хранилищ, юзкейсов и хендлеров.
package dbtest

import (
	"strings"
	"testing"
	"time"

	"github.com/GoArmGo/Foodgram/internal/domain"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// Open создаёт отдельную базу на каждый тест.
func Open(t testing.TB) (*gorm.DB, *sqlx.DB) {
	t.Helper()

	name := strings.NewReplacer("/", "_", " ", "_", "#", "_").Replace(t.Name())
	dsn := "file:" + name + "?mode=memory&cache=shared&_foreign_keys=on"
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		TranslateError: true,
		Logger:         gormlogger.Discard,
	})
	if err != nil {
		t.Fatalf("open db: %v", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("sql db: %v", err)
	}
	// одно соединение: shared cache SQLite не любит параллельные транзакции
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	if err := Migrate(db); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return db, sqlx.NewDb(sqlDB, "sqlite3")
}

// Migrate создаёт таблицы по gorm-моделям.
func Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(
		&domain.User{},
		&domain.Tag{},
		&domain.Ingredient{},
		&domain.Recipe{},
		&domain.RecipeTag{},
		&domain.RecipeIngredient{},
		&domain.Follow{},
	); err != nil {
		return err
	}
	for _, rel := range domain.Relations() {
		if err := db.Table(rel.Table()).AutoMigrate(&domain.RecipeMembership{}); err != nil {
			return err
		}
	}
	return nil
}

func CreateUser(t testing.TB, db *gorm.DB, username string) *domain.User {
	t.Helper()
	u := &domain.User{
		ID:           uuid.New(),
		Email:        username + "@foodgram.test",
		Username:     username,
		FirstName:    strings.ToUpper(username[:1]) + username[1:],
		LastName:     "Test",
		PasswordHash: "x",
		Role:         domain.RoleUser,
	}
	if err := db.Create(u).Error; err != nil {
		t.Fatalf("create user %s: %v", username, err)
	}
	return u
}

func CreateTag(t testing.TB, db *gorm.DB, slug, color string) *domain.Tag {
	t.Helper()
	tag := &domain.Tag{ID: uuid.New(), Name: "Tag " + slug, Color: color, Slug: slug}
	if err := db.Create(tag).Error; err != nil {
		t.Fatalf("create tag %s: %v", slug, err)
	}
	return tag
}

func CreateIngredient(t testing.TB, db *gorm.DB, name, unit string) *domain.Ingredient {
	t.Helper()
	ing := &domain.Ingredient{ID: uuid.New(), Name: name, MeasurementUnit: unit}
	if err := db.Create(ing).Error; err != nil {
		t.Fatalf("create ingredient %s: %v", name, err)
	}
	return ing
}

// CreateRecipe сохраняет рецепт напрямую, минуя юзкейс и файловое хранилище.
func CreateRecipe(t testing.TB, db *gorm.DB, author *domain.User, name string, tags []*domain.Tag, ingredients map[*domain.Ingredient]int) *domain.Recipe {
	t.Helper()
	r := &domain.Recipe{
		ID:          uuid.New(),
		AuthorID:    author.ID,
		Name:        name,
		Text:        "text of " + name,
		ImageKey:    "recipes/images/" + name + ".png",
		ImageURL:    "http://files.test/recipes/images/" + name + ".png",
		CookingTime: 10,
		PubDate:     time.Now(),
	}
	if err := db.Omit("Author", "Tags", "Ingredients").Create(r).Error; err != nil {
		t.Fatalf("create recipe %s: %v", name, err)
	}
	for _, tag := range tags {
		if err := db.Create(&domain.RecipeTag{RecipeID: r.ID, TagID: tag.ID}).Error; err != nil {
			t.Fatalf("link tag: %v", err)
		}
	}
	pos := 0
	for ing, amount := range ingredients {
		if err := db.Create(&domain.RecipeIngredient{RecipeID: r.ID, IngredientID: ing.ID, Amount: amount, Position: pos}).Error; err != nil {
			t.Fatalf("link ingredient: %v", err)
		}
		pos++
	}
	return r
}
