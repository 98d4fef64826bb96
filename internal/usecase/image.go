package usecase

import (
	"bytes"
	"context"
	"encoding/base64"
	"log/slog"
	"strings"
	"time"

	"github.com/GoArmGo/Foodgram/internal/core/ports"
	"github.com/GoArmGo/Foodgram/internal/domain"
	"github.com/GoArmGo/Foodgram/internal/messaging/payloads"
	"github.com/gabriel-vasile/mimetype"
	"github.com/google/uuid"
)

const (
	imageKeyPrefix  = "recipes/images/"
	base64Separator = ";base64,"
)

// decodeImage разбирает data URI вида "data:image/png;base64,...".
// Тип определяется по содержимому, а не по заголовку.
func decodeImage(raw string) ([]byte, string, string, error) {
	idx := strings.Index(raw, base64Separator)
	if !strings.HasPrefix(raw, "data:image/") || idx < 0 {
		return nil, "", "", domain.NewValidationError("image", "image must be a base64 encoded data URI")
	}

	data, err := base64.StdEncoding.DecodeString(raw[idx+len(base64Separator):])
	if err != nil || len(data) == 0 {
		return nil, "", "", domain.NewValidationError("image", "image is not valid base64")
	}

	mt := mimetype.Detect(data)
	if !strings.HasPrefix(mt.String(), "image/") {
		return nil, "", "", domain.NewValidationError("image", "unsupported image format")
	}
	return data, mt.String(), mt.Extension(), nil
}

// imageStore загружает изображения рецептов и освобождает их.
// Без publisher объекты удаляются синхронно.
type imageStore struct {
	files     ports.FileStorage
	publisher ports.ImageCleanupPublisher
	limiter   chan struct{}
	logger    *slog.Logger
}

func (s *imageStore) upload(ctx context.Context, raw string) (string, string, error) {
	data, contentType, ext, err := decodeImage(raw)
	if err != nil {
		return "", "", err
	}

	if s.limiter != nil {
		select {
		case s.limiter <- struct{}{}:
			defer func() { <-s.limiter }()
		case <-ctx.Done():
			return "", "", ctx.Err()
		}
	}

	start := time.Now()
	key := imageKeyPrefix + uuid.NewString() + ext
	url, err := s.files.UploadFile(ctx, key, bytes.NewReader(data), contentType)
	if err != nil {
		s.logger.Error("failed to upload image", "key", key, "error", err)
		return "", "", err
	}

	s.logger.Info("image uploaded",
		"key", key,
		"content_type", contentType,
		"bytes", len(data),
		"duration_ms", time.Since(start).Milliseconds(),
	)
	return key, url, nil
}

// release освобождает изображение после коммита: через очередь, если она настроена.
func (s *imageStore) release(ctx context.Context, key string, recipeID uuid.UUID) {
	if key == "" {
		return
	}
	if s.publisher != nil {
		err := s.publisher.PublishImageCleanup(ctx, payloads.ImageCleanupPayload{
			ObjectKey:   key,
			RecipeID:    recipeID.String(),
			RequestedAt: time.Now(),
		})
		if err == nil {
			return
		}
		s.logger.Warn("failed to publish image cleanup, deleting inline", "key", key, "error", err)
	}
	s.discard(ctx, key)
}

// discard удаляет объект сразу; ошибка только логируется.
func (s *imageStore) discard(ctx context.Context, key string) {
	if key == "" {
		return
	}
	if err := s.files.DeleteFile(ctx, key); err != nil {
		s.logger.Error("failed to delete image", "key", key, "error", err)
		return
	}
	s.logger.Info("image deleted", "key", key)
}
