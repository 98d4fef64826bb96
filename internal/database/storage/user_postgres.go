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

// UserStorage реализует интерфейс ports.UserStorage с использованием GORM
type UserStorage struct {
	db     *gorm.DB
	logger *slog.Logger
}

func NewUserStorage(db *gorm.DB, logger *slog.Logger) *UserStorage {
	return &UserStorage{db: db, logger: logger}
}

// CreateUser сохраняет нового пользователя
func (s *UserStorage) CreateUser(ctx context.Context, user *domain.User) error {
	start := time.Now()

	if user.ID == uuid.Nil {
		user.ID = uuid.New()
	}
	if user.Role == "" {
		user.Role = domain.RoleUser
	}

	if err := s.db.WithContext(ctx).Create(user).Error; err != nil {
		err = translateError(err)
		if errors.Is(err, ports.ErrDuplicate) {
			s.logger.Warn("user already exists", "username", user.Username, "email", user.Email)
			return err
		}
		s.logger.Error("failed to create user", "username", user.Username, "error", err)
		return fmt.Errorf("ошибка при создании пользователя: %w", err)
	}

	s.logger.Info("user created",
		"user_id", user.ID,
		"duration_ms", time.Since(start).Milliseconds(),
	)
	return nil
}

func (s *UserStorage) GetUserByID(ctx context.Context, id uuid.UUID) (*domain.User, error) {
	var user domain.User
	if err := s.db.WithContext(ctx).First(&user, "id = ?", id).Error; err != nil {
		err = translateError(err)
		if errors.Is(err, ports.ErrRecordNotFound) {
			return nil, err
		}
		s.logger.Error("failed to get user by id", "user_id", id, "error", err)
		return nil, fmt.Errorf("ошибка при получении пользователя по ID: %w", err)
	}
	return &user, nil
}

func (s *UserStorage) GetUserByEmail(ctx context.Context, email string) (*domain.User, error) {
	var user domain.User
	if err := s.db.WithContext(ctx).Where("email = ?", email).First(&user).Error; err != nil {
		err = translateError(err)
		if errors.Is(err, ports.ErrRecordNotFound) {
			return nil, err
		}
		s.logger.Error("failed to get user by email", "error", err)
		return nil, fmt.Errorf("ошибка при получении пользователя по email: %w", err)
	}
	return &user, nil
}

// UsernameOrEmailTaken возвращает имя занятого поля ("username" или "email") или пустую строку.
func (s *UserStorage) UsernameOrEmailTaken(ctx context.Context, username, email string) (string, error) {
	var taken []domain.User
	err := s.db.WithContext(ctx).
		Select("username", "email").
		Where("username = ? OR email = ?", username, email).
		Limit(2).
		Find(&taken).Error
	if err != nil {
		s.logger.Error("failed to check username and email", "error", err)
		return "", fmt.Errorf("ошибка проверки уникальности пользователя: %w", err)
	}
	for _, u := range taken {
		if u.Username == username {
			return "username", nil
		}
	}
	if len(taken) > 0 {
		return "email", nil
	}
	return "", nil
}

// ListUsers возвращает страницу пользователей, упорядоченных по username
func (s *UserStorage) ListUsers(ctx context.Context, page domain.Page) ([]domain.User, int64, error) {
	start := time.Now()

	var total int64
	if err := s.db.WithContext(ctx).Model(&domain.User{}).Count(&total).Error; err != nil {
		s.logger.Error("failed to count users", "error", err)
		return nil, 0, fmt.Errorf("ошибка подсчёта пользователей: %w", err)
	}

	var users []domain.User
	err := s.db.WithContext(ctx).
		Order("username ASC").
		Limit(page.Size).
		Offset(page.Offset()).
		Find(&users).Error
	if err != nil {
		s.logger.Error("failed to list users", "page", page.Number, "error", err)
		return nil, 0, fmt.Errorf("ошибка получения списка пользователей: %w", err)
	}

	s.logger.Debug("users listed",
		"count", len(users),
		"duration_ms", time.Since(start).Milliseconds(),
	)
	return users, total, nil
}

func (s *UserStorage) UpdatePassword(ctx context.Context, id uuid.UUID, passwordHash string) error {
	res := s.db.WithContext(ctx).
		Model(&domain.User{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{"password_hash": passwordHash, "updated_at": time.Now()})
	if res.Error != nil {
		s.logger.Error("failed to update password", "user_id", id, "error", res.Error)
		return fmt.Errorf("ошибка обновления пароля: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return ports.ErrRecordNotFound
	}
	s.logger.Info("password updated", "user_id", id)
	return nil
}
