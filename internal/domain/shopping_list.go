package domain

import (
	"fmt"
	"sort"
	"strings"
)

// ShoppingListItem — сумма одного ингредиента по всем рецептам корзины.
type ShoppingListItem struct {
	Name            string `db:"name"`
	MeasurementUnit string `db:"measurement_unit"`
	Amount          int64  `db:"amount"`
}

// ShoppingListFile готов к выгрузке.
type ShoppingListFile struct {
	Filename string
	Content  string
}

func ShoppingListFilename(username string) string {
	return username + "_shopping_list.txt"
}

// RenderShoppingList формирует текст списка: по строке "{name} --> {amount} {unit}"
// на каждую пару (название, единица), отсортировано по названию.
func RenderShoppingList(items []ShoppingListItem) string {
	sorted := make([]ShoppingListItem, len(items))
	copy(sorted, items)
	sort.SliceStable(sorted, func(i, j int) bool {
		if sorted[i].Name != sorted[j].Name {
			return sorted[i].Name < sorted[j].Name
		}
		return sorted[i].MeasurementUnit < sorted[j].MeasurementUnit
	})

	var b strings.Builder
	for _, item := range sorted {
		fmt.Fprintf(&b, "%s --> %d %s\n", item.Name, item.Amount, item.MeasurementUnit)
	}
	return b.String()
}
