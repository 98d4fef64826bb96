package storage

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/GoArmGo/Foodgram/internal/core/ports"
	"github.com/GoArmGo/Foodgram/internal/domain"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// FollowStorage хранит подписки пользователей на авторов
type FollowStorage struct {
	db     *gorm.DB
	logger *slog.Logger
}

func NewFollowStorage(db *gorm.DB, logger *slog.Logger) *FollowStorage {
	return &FollowStorage{db: db, logger: logger}
}

func (s *FollowStorage) Follow(ctx context.Context, userID, followingID uuid.UUID) error {
	row := domain.Follow{UserID: userID, FollowingID: followingID, CreatedAt: time.Now()}
	if err := s.db.WithContext(ctx).Create(&row).Error; err != nil {
		err = translateError(err)
		if errors.Is(err, ports.ErrDuplicate) {
			s.logger.Warn("follow already exists", "user_id", userID, "following_id", followingID)
			return err
		}
		if errors.Is(err, ports.ErrReferenceMissing) {
			s.logger.Warn("user removed before follow insert", "following_id", followingID)
			return err
		}
		s.logger.Error("failed to create follow", "following_id", followingID, "error", err)
		return fmt.Errorf("ошибка при создании подписки: %w", err)
	}
	s.logger.Info("follow created", "user_id", userID, "following_id", followingID)
	return nil
}

func (s *FollowStorage) Unfollow(ctx context.Context, userID, followingID uuid.UUID) error {
	res := s.db.WithContext(ctx).
		Where("user_id = ? AND following_id = ?", userID, followingID).
		Delete(&domain.Follow{})
	if res.Error != nil {
		s.logger.Error("failed to delete follow", "following_id", followingID, "error", res.Error)
		return fmt.Errorf("ошибка при удалении подписки: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return ports.ErrRecordNotFound
	}
	s.logger.Info("follow deleted", "user_id", userID, "following_id", followingID)
	return nil
}

// FollowedIDs возвращает тех из candidateIDs, на кого подписан userID
func (s *FollowStorage) FollowedIDs(ctx context.Context, userID uuid.UUID, candidateIDs []uuid.UUID) (map[uuid.UUID]bool, error) {
	found := make(map[uuid.UUID]bool, len(candidateIDs))
	if len(candidateIDs) == 0 {
		return found, nil
	}
	var ids []uuid.UUID
	err := s.db.WithContext(ctx).
		Model(&domain.Follow{}).
		Where("user_id = ? AND following_id IN ?", userID, candidateIDs).
		Pluck("following_id", &ids).Error
	if err != nil {
		s.logger.Error("failed to load follows", "user_id", userID, "error", err)
		return nil, fmt.Errorf("ошибка при получении подписок: %w", err)
	}
	for _, id := range ids {
		found[id] = true
	}
	return found, nil
}

// ListFollowing возвращает страницу авторов, на которых подписан userID
func (s *FollowStorage) ListFollowing(ctx context.Context, userID uuid.UUID, page domain.Page) ([]domain.User, int64, error) {
	start := time.Now()

	base := func() *gorm.DB {
		return s.db.WithContext(ctx).
			Model(&domain.User{}).
			Joins("JOIN follows ON follows.following_id = users.id").
			Where("follows.user_id = ?", userID)
	}

	var total int64
	if err := base().Count(&total).Error; err != nil {
		s.logger.Error("failed to count subscriptions", "user_id", userID, "error", err)
		return nil, 0, fmt.Errorf("ошибка при подсчёте подписок: %w", err)
	}

	var users []domain.User
	err := base().
		Order("users.username ASC").
		Limit(page.Size).
		Offset(page.Offset()).
		Find(&users).Error
	if err != nil {
		s.logger.Error("failed to list subscriptions", "user_id", userID, "error", err)
		return nil, 0, fmt.Errorf("ошибка при получении подписок: %w", err)
	}

	s.logger.Debug("subscriptions listed",
		"user_id", userID,
		"found", len(users),
		"duration_ms", time.Since(start).Milliseconds(),
	)
	return users, total, nil
}
