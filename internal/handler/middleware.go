package handler

import (
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/GoArmGo/Foodgram/internal/auth"
	"github.com/GoArmGo/Foodgram/internal/domain"
	"github.com/go-chi/chi/v5/middleware"
)

// TokenParser проверяет токен доступа и возвращает автора запроса.
type TokenParser interface {
	ParseToken(raw string) (*domain.Principal, error)
}

// RequestLogger — middleware для логирования HTTP-запросов.
func RequestLogger(logger *slog.Logger) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()

			// Оборачиваем ResponseWriter, чтобы знать статус
			ww := &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}
			next.ServeHTTP(ww, r)

			attrs := []any{
				"method", r.Method,
				"path", r.URL.Path,
				"status", ww.statusCode,
				"duration_ms", time.Since(start).Milliseconds(),
			}
			if reqID := middleware.GetReqID(r.Context()); reqID != "" {
				attrs = append(attrs, "request_id", reqID)
			}
			if p := auth.PrincipalFromContext(r.Context()); p != nil {
				attrs = append(attrs, "user_id", p.UserID)
			}
			logger.Info("http request", attrs...)
		})
	}
}

// responseWriter нужен, чтобы перехватывать код ответа
type responseWriter struct {
	http.ResponseWriter
	statusCode int
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}

// Authenticate разбирает заголовок "Authorization: Token <jwt>" (или Bearer).
// Запрос без заголовка проходит как анонимный, с неверным токеном получает 401.
func Authenticate(tokens TokenParser, logger *slog.Logger) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			header := r.Header.Get("Authorization")
			if header == "" {
				next.ServeHTTP(w, r)
				return
			}

			scheme, raw, ok := strings.Cut(header, " ")
			if !ok || (scheme != "Token" && scheme != "Bearer") || raw == "" {
				respondWithError(w, http.StatusUnauthorized, "invalid authorization header", logger)
				return
			}

			principal, err := tokens.ParseToken(strings.TrimSpace(raw))
			if err != nil {
				logger.Warn("rejected token", "path", r.URL.Path, "error", err)
				respondWithError(w, http.StatusUnauthorized, "invalid token", logger)
				return
			}
			next.ServeHTTP(w, r.WithContext(auth.WithPrincipal(r.Context(), principal)))
		})
	}
}

// RequireAuth отклоняет анонимные запросы.
func RequireAuth(logger *slog.Logger) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if auth.PrincipalFromContext(r.Context()) == nil {
				respondWithDomainError(w, r, domain.ErrAuthRequired, logger)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
