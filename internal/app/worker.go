package app

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/GoArmGo/Foodgram/internal/core/ports"
	"github.com/GoArmGo/Foodgram/internal/messaging/payloads"
	"github.com/GoArmGo/Foodgram/internal/usecase"
)

// runWorker удаляет изображения удалённых и обновлённых рецептов по сообщениям из очереди.
func runWorker(ctx context.Context, recipes usecase.RecipeUseCase, consumer ports.ImageCleanupConsumer, logger *slog.Logger) error {
	handler := func(ctx context.Context, payload payloads.ImageCleanupPayload) error {
		logger.Info("processing image cleanup",
			"key", payload.ObjectKey,
			"recipe_id", payload.RecipeID,
			"requested_at", payload.RequestedAt,
		)
		return recipes.PurgeImage(ctx, payload.ObjectKey)
	}

	if err := consumer.StartConsumingImageCleanup(ctx, handler); err != nil {
		return fmt.Errorf("ошибка при запуске потребителя RabbitMQ: %w", err)
	}
	logger.Info("worker started, waiting for messages")

	<-ctx.Done()
	logger.Info("worker stopped")
	return nil
}
