package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/GoArmGo/Foodgram/internal/core/ports"
	"github.com/GoArmGo/Foodgram/internal/domain"
	"github.com/google/uuid"
)

var errBadCredentials = domain.NewValidationError("non_field_errors", "unable to log in with provided credentials")

type userUseCase struct {
	users   ports.UserStorage
	follows ports.FollowStorage
	tokens  TokenIssuer
	hasher  PasswordHasher
	logger  *slog.Logger
}

func NewUserUseCase(users ports.UserStorage, follows ports.FollowStorage, tokens TokenIssuer, hasher PasswordHasher, logger *slog.Logger) UserUseCase {
	return &userUseCase{users: users, follows: follows, tokens: tokens, hasher: hasher, logger: logger}
}

func (uc *userUseCase) Register(ctx context.Context, in domain.RegisterInput) (*domain.UserProfile, error) {
	in.Email = strings.ToLower(strings.TrimSpace(in.Email))
	if err := in.Validate(); err != nil {
		return nil, err
	}

	field, err := uc.users.UsernameOrEmailTaken(ctx, in.Username, in.Email)
	if err != nil {
		return nil, fmt.Errorf("usecase: ошибка при проверке пользователя: %w", err)
	}
	if field != "" {
		return nil, domain.NewValidationError(field, fmt.Sprintf("user with this %s already exists", field))
	}

	hash, err := uc.hasher.Hash(in.Password)
	if err != nil {
		return nil, fmt.Errorf("usecase: ошибка при хешировании пароля: %w", err)
	}

	user := &domain.User{
		ID:           uuid.New(),
		Email:        in.Email,
		Username:     in.Username,
		FirstName:    in.FirstName,
		LastName:     in.LastName,
		PasswordHash: hash,
		Role:         domain.RoleUser,
	}
	if err := uc.users.CreateUser(ctx, user); err != nil {
		if errors.Is(err, ports.ErrDuplicate) {
			return nil, domain.NewValidationError("username", "user with this username or email already exists")
		}
		return nil, fmt.Errorf("usecase: ошибка при регистрации: %w", err)
	}

	uc.logger.Info("user registered", "user_id", user.ID, "username", user.Username)
	profile := domain.NewUserProfile(user, false)
	return &profile, nil
}

// Login проверяет email и пароль и выпускает токен доступа
func (uc *userUseCase) Login(ctx context.Context, email, password string) (string, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" || password == "" {
		return "", errBadCredentials
	}

	user, err := uc.users.GetUserByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, ports.ErrRecordNotFound) {
			return "", errBadCredentials
		}
		return "", fmt.Errorf("usecase: ошибка при получении пользователя: %w", err)
	}
	if !uc.hasher.Compare(user.PasswordHash, password) {
		uc.logger.Warn("login failed", "user_id", user.ID)
		return "", errBadCredentials
	}

	token, err := uc.tokens.GenerateToken(user.ID, user.Role)
	if err != nil {
		return "", fmt.Errorf("usecase: ошибка при выпуске токена: %w", err)
	}
	uc.logger.Info("user logged in", "user_id", user.ID)
	return token, nil
}

func (uc *userUseCase) GetUser(ctx context.Context, viewer *domain.Principal, id uuid.UUID) (*domain.UserProfile, error) {
	user, err := uc.users.GetUserByID(ctx, id)
	if err != nil {
		if errors.Is(err, ports.ErrRecordNotFound) {
			return nil, errUserNotFound
		}
		return nil, fmt.Errorf("usecase: ошибка при получении пользователя: %w", err)
	}
	subscribed, err := uc.subscribedTo(ctx, viewer, []uuid.UUID{user.ID})
	if err != nil {
		return nil, err
	}
	profile := domain.NewUserProfile(user, subscribed[user.ID])
	return &profile, nil
}

func (uc *userUseCase) Me(ctx context.Context, viewer *domain.Principal) (*domain.UserProfile, error) {
	if viewer == nil {
		return nil, domain.ErrAuthRequired
	}
	return uc.GetUser(ctx, viewer, viewer.UserID)
}

func (uc *userUseCase) ListUsers(ctx context.Context, viewer *domain.Principal, page domain.Page) (*domain.Paginated[domain.UserProfile], error) {
	users, total, err := uc.users.ListUsers(ctx, page)
	if err != nil {
		return nil, fmt.Errorf("usecase: ошибка при получении пользователей: %w", err)
	}

	ids := make([]uuid.UUID, 0, len(users))
	for _, u := range users {
		ids = append(ids, u.ID)
	}
	subscribed, err := uc.subscribedTo(ctx, viewer, ids)
	if err != nil {
		return nil, err
	}

	profiles := make([]domain.UserProfile, 0, len(users))
	for i := range users {
		profiles = append(profiles, domain.NewUserProfile(&users[i], subscribed[users[i].ID]))
	}
	return &domain.Paginated[domain.UserProfile]{Count: total, Page: page, Results: profiles}, nil
}

func (uc *userUseCase) SetPassword(ctx context.Context, viewer *domain.Principal, currentPassword, newPassword string) error {
	if viewer == nil {
		return domain.ErrAuthRequired
	}
	if newPassword == "" {
		return domain.NewValidationError("new_password", "new_password field is required")
	}

	user, err := uc.users.GetUserByID(ctx, viewer.UserID)
	if err != nil {
		if errors.Is(err, ports.ErrRecordNotFound) {
			return errUserNotFound
		}
		return fmt.Errorf("usecase: ошибка при получении пользователя: %w", err)
	}
	if !uc.hasher.Compare(user.PasswordHash, currentPassword) {
		return domain.NewValidationError("current_password", "wrong password")
	}

	hash, err := uc.hasher.Hash(newPassword)
	if err != nil {
		return fmt.Errorf("usecase: ошибка при хешировании пароля: %w", err)
	}
	if err := uc.users.UpdatePassword(ctx, user.ID, hash); err != nil {
		return fmt.Errorf("usecase: ошибка при смене пароля: %w", err)
	}
	uc.logger.Info("password changed", "user_id", user.ID)
	return nil
}

func (uc *userUseCase) subscribedTo(ctx context.Context, viewer *domain.Principal, ids []uuid.UUID) (map[uuid.UUID]bool, error) {
	if viewer == nil {
		return map[uuid.UUID]bool{}, nil
	}
	subscribed, err := uc.follows.FollowedIDs(ctx, viewer.UserID, ids)
	if err != nil {
		return nil, fmt.Errorf("usecase: ошибка при проверке подписок: %w", err)
	}
	return subscribed, nil
}
