package storage

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/GoArmGo/Foodgram/internal/domain"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

// ShoppingListStorage считает список покупок одним GROUP BY запросом через sqlx
type ShoppingListStorage struct {
	db     *sqlx.DB
	logger *slog.Logger
}

func NewShoppingListStorage(db *sqlx.DB, logger *slog.Logger) *ShoppingListStorage {
	return &ShoppingListStorage{db: db, logger: logger}
}

const aggregateShoppingListQuery = `
	SELECT i.name AS name, i.measurement_unit AS measurement_unit, SUM(ri.amount) AS amount
	FROM shopping_cart_items sc
	JOIN recipe_ingredients ri ON ri.recipe_id = sc.recipe_id
	JOIN ingredients i ON i.id = ri.ingredient_id
	WHERE sc.user_id = ?
	GROUP BY i.name, i.measurement_unit
	ORDER BY i.name, i.measurement_unit
`

// AggregateShoppingList суммирует количество по паре (название, единица измерения)
func (s *ShoppingListStorage) AggregateShoppingList(ctx context.Context, userID uuid.UUID) ([]domain.ShoppingListItem, error) {
	start := time.Now()

	var items []domain.ShoppingListItem
	if err := s.db.SelectContext(ctx, &items, s.db.Rebind(aggregateShoppingListQuery), userID); err != nil {
		s.logger.Error("failed to aggregate shopping list", "user_id", userID, "error", err)
		return nil, fmt.Errorf("ошибка при формировании списка покупок: %w", err)
	}

	s.logger.Info("shopping list aggregated",
		"user_id", userID,
		"lines", len(items),
		"duration_ms", time.Since(start).Milliseconds(),
	)
	return items, nil
}
