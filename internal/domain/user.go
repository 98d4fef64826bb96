// internal/domain/user.go
package domain

import (
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Роли пользователей.
const (
	RoleUser  = "user"
	RoleAdmin = "admin"
)

const (
	MaxEmailLength    = 254
	MaxUserNameLength = 150
	// ForbiddenUsername занят под эндпоинт /users/me.
	ForbiddenUsername = "me"
)

var usernamePattern = regexp.MustCompile(`^[\w.@+-]+$`)

// User представляет модель пользователя в системе.
// Соответствует таблице 'users' в базе данных.
type User struct {
	ID           uuid.UUID `json:"id" gorm:"type:uuid;primaryKey"`
	Email        string    `json:"email" gorm:"size:254;not null;uniqueIndex"`
	Username     string    `json:"username" gorm:"size:150;not null;uniqueIndex"`
	FirstName    string    `json:"first_name" gorm:"size:150;not null"`
	LastName     string    `json:"last_name" gorm:"size:150;not null"`
	PasswordHash string    `json:"-" gorm:"size:255;not null"`
	Role         string    `json:"role" gorm:"size:8;not null;default:user"`
	CreatedAt    time.Time `json:"-"`
	UpdatedAt    time.Time `json:"-"`
}

func (User) TableName() string {
	return "users"
}

// Principal — аутентифицированный автор запроса.
// nil означает анонимного пользователя.
type Principal struct {
	UserID uuid.UUID
	Role   string
}

func (p *Principal) IsAdmin() bool {
	return p != nil && p.Role == RoleAdmin
}

// CanModify сообщает, может ли пользователь менять объект автора authorID.
func (p *Principal) CanModify(authorID uuid.UUID) bool {
	if p == nil {
		return false
	}
	return p.UserID == authorID || p.IsAdmin()
}

// Follow: пользователь UserID подписан на автора FollowingID.
type Follow struct {
	UserID      uuid.UUID `gorm:"type:uuid;primaryKey"`
	FollowingID uuid.UUID `gorm:"type:uuid;primaryKey"`
	CreatedAt   time.Time `gorm:"not null"`
}

func (Follow) TableName() string {
	return "follows"
}

// RegisterInput содержит данные регистрации.
type RegisterInput struct {
	Email     string
	Username  string
	FirstName string
	LastName  string
	Password  string
}

func (in RegisterInput) Validate() error {
	switch {
	case strings.TrimSpace(in.Email) == "":
		return NewValidationError("email", "email field is required")
	case len(in.Email) > MaxEmailLength:
		return NewValidationError("email", "email must be at most 254 characters")
	case in.Username == "":
		return NewValidationError("username", "username field is required")
	case len(in.Username) > MaxUserNameLength:
		return NewValidationError("username", "username must be at most 150 characters")
	case strings.EqualFold(in.Username, ForbiddenUsername):
		return NewValidationError("username", `username "me" is not allowed`)
	case !usernamePattern.MatchString(in.Username):
		return NewValidationError("username", "username may contain only letters, digits and @/./+/-/_")
	case strings.TrimSpace(in.FirstName) == "":
		return NewValidationError("first_name", "first_name field is required")
	case strings.TrimSpace(in.LastName) == "":
		return NewValidationError("last_name", "last_name field is required")
	case in.Password == "":
		return NewValidationError("password", "password field is required")
	}
	return nil
}

// UserProfile — публичное представление пользователя.
type UserProfile struct {
	Email        string    `json:"email"`
	ID           uuid.UUID `json:"id"`
	Username     string    `json:"username"`
	FirstName    string    `json:"first_name"`
	LastName     string    `json:"last_name"`
	IsSubscribed bool      `json:"is_subscribed"`
}

func NewUserProfile(u *User, isSubscribed bool) UserProfile {
	return UserProfile{
		Email:        u.Email,
		ID:           u.ID,
		Username:     u.Username,
		FirstName:    u.FirstName,
		LastName:     u.LastName,
		IsSubscribed: isSubscribed,
	}
}

// Subscription — автор из списка подписок вместе с его рецептами.
type Subscription struct {
	UserProfile
	Recipes      []RecipeSnippet `json:"recipes"`
	RecipesCount int64           `json:"recipes_count"`
}
