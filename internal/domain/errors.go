package domain

import "errors"

// Категории ошибок бизнес-логики. Хендлеры сопоставляют их с HTTP-статусами.
var (
	ErrValidation       = errors.New("validation error")
	ErrNotFound         = errors.New("not found")
	ErrConflict         = errors.New("conflict")
	ErrUnauthorized     = errors.New("unauthorized")
	ErrForbidden        = errors.New("forbidden")
	ErrMethodNotAllowed = errors.New("method not allowed")
)

// ErrEmptyShoppingList возвращается при выгрузке пустой корзины.
var ErrEmptyShoppingList = &Error{Kind: ErrValidation, Message: "Shopping list is empty"}

// Error — ошибка с понятным пользователю сообщением.
type Error struct {
	Kind    error
	Field   string
	Message string
}

func (e *Error) Error() string {
	if e.Field != "" {
		return e.Field + ": " + e.Message
	}
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Kind
}

func NewValidationError(field, message string) *Error {
	return &Error{Kind: ErrValidation, Field: field, Message: message}
}

func NewNotFoundError(message string) *Error {
	return &Error{Kind: ErrNotFound, Message: message}
}

func NewConflictError(message string) *Error {
	return &Error{Kind: ErrConflict, Message: message}
}

func NewUnauthorizedError(message string) *Error {
	return &Error{Kind: ErrUnauthorized, Message: message}
}

func NewForbiddenError(message string) *Error {
	return &Error{Kind: ErrForbidden, Message: message}
}

// ErrAuthRequired — стандартная ошибка для анонимного запроса к защищённому действию.
var ErrAuthRequired = NewUnauthorizedError("authentication credentials were not provided")
