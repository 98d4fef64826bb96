package auth

import (
	"context"

	"github.com/GoArmGo/Foodgram/internal/domain"
)

type ctxKey int

const principalKey ctxKey = iota

// WithPrincipal кладёт аутентифицированного пользователя в контекст запроса.
func WithPrincipal(ctx context.Context, p *domain.Principal) context.Context {
	return context.WithValue(ctx, principalKey, p)
}

// PrincipalFromContext возвращает nil для анонимного запроса.
func PrincipalFromContext(ctx context.Context) *domain.Principal {
	p, _ := ctx.Value(principalKey).(*domain.Principal)
	return p
}
