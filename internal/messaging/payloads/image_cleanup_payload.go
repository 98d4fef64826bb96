package payloads

import "time"

// ImageCleanupPayload — задача на удаление объекта из файлового хранилища.
type ImageCleanupPayload struct {
	ObjectKey   string    `json:"object_key"`
	RecipeID    string    `json:"recipe_id"`
	RequestedAt time.Time `json:"requested_at"`
}
