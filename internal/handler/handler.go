package handler

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"

	"github.com/GoArmGo/Foodgram/internal/auth"
	"github.com/GoArmGo/Foodgram/internal/domain"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
)

// maxBodyBytes ограничивает тело запроса: изображение приходит в base64 внутри JSON.
const maxBodyBytes = 10 << 20

// respondWithJSON — отправляет JSON-ответ клиенту.
func respondWithJSON(w http.ResponseWriter, code int, payload interface{}, logger *slog.Logger) {
	response, err := json.Marshal(payload)
	if err != nil {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusInternalServerError)
		logger.Error("failed to marshal JSON response", "error", err)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if _, err = w.Write(response); err != nil {
		logger.Error("failed to write HTTP response", "error", err)
	}
}

// respondWithError — отправляет JSON-ответ с ошибкой.
func respondWithError(w http.ResponseWriter, code int, message string, logger *slog.Logger) {
	respondWithJSON(w, code, map[string]string{"error": message}, logger)
}

// respondWithDomainError сопоставляет ошибку бизнес-логики с HTTP-статусом.
// Всё, что не является *domain.Error, считается внутренней ошибкой.
func respondWithDomainError(w http.ResponseWriter, r *http.Request, err error, logger *slog.Logger) {
	if errors.Is(err, domain.ErrEmptyShoppingList) {
		respondWithJSON(w, http.StatusBadRequest, map[string]string{"errors": "Shopping list is empty"}, logger)
		return
	}

	var de *domain.Error
	if !errors.As(err, &de) {
		logger.Error("request failed", "method", r.Method, "path", r.URL.Path, "error", err)
		respondWithError(w, http.StatusInternalServerError, "internal server error", logger)
		return
	}

	var code int
	switch {
	case errors.Is(de, domain.ErrValidation), errors.Is(de, domain.ErrConflict):
		code = http.StatusBadRequest
	case errors.Is(de, domain.ErrUnauthorized):
		code = http.StatusUnauthorized
	case errors.Is(de, domain.ErrForbidden):
		code = http.StatusForbidden
	case errors.Is(de, domain.ErrNotFound):
		code = http.StatusNotFound
	case errors.Is(de, domain.ErrMethodNotAllowed):
		respondWithJSON(w, http.StatusMethodNotAllowed, map[string]string{"detail": de.Message}, logger)
		return
	default:
		code = http.StatusBadRequest
	}

	body := map[string]string{"error": de.Message}
	if de.Field != "" {
		body["field"] = de.Field
	}
	logger.Debug("request rejected", "path", r.URL.Path, "status", code, "reason", de.Error())
	respondWithJSON(w, code, body, logger)
}

// decodeJSON читает тело запроса в dst.
func decodeJSON(w http.ResponseWriter, r *http.Request, dst interface{}) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	dec := json.NewDecoder(r.Body)
	if err := dec.Decode(dst); err != nil {
		if errors.Is(err, io.EOF) {
			return domain.NewValidationError("", "request body is empty")
		}
		var typeErr *json.UnmarshalTypeError
		if errors.As(err, &typeErr) && typeErr.Field != "" {
			return domain.NewValidationError(typeErr.Field, fmt.Sprintf("%s has invalid type", typeErr.Field))
		}
		return domain.NewValidationError("", "invalid JSON body")
	}
	return nil
}

// pathID разбирает идентификатор из пути; некорректный id означает отсутствующий объект.
func pathID(r *http.Request, name, notFound string) (uuid.UUID, error) {
	id, err := uuid.Parse(chi.URLParam(r, name))
	if err != nil {
		return uuid.Nil, domain.NewNotFoundError(notFound)
	}
	return id, nil
}

func viewer(r *http.Request) *domain.Principal {
	return auth.PrincipalFromContext(r.Context())
}

func parsePage(r *http.Request, defaultSize int) domain.Page {
	q := r.URL.Query()
	number, _ := strconv.Atoi(q.Get("page"))
	size, _ := strconv.Atoi(q.Get("limit"))
	return domain.NewPage(number, size, defaultSize)
}

// pageResponse — постраничный ответ {"count","next","previous","results"}.
type pageResponse[T any] struct {
	Count    int64   `json:"count"`
	Next     *string `json:"next"`
	Previous *string `json:"previous"`
	Results  []T     `json:"results"`
}

func newPageResponse[T any](r *http.Request, p *domain.Paginated[T]) pageResponse[T] {
	resp := pageResponse[T]{Count: p.Count, Results: p.Results}
	if resp.Results == nil {
		resp.Results = []T{}
	}
	if int64(p.Page.Number*p.Page.Size) < p.Count {
		next := pageURL(r, p.Page.Number+1)
		resp.Next = &next
	}
	if p.Page.Number > 1 {
		prev := pageURL(r, p.Page.Number-1)
		resp.Previous = &prev
	}
	return resp
}

// pageURL строит абсолютную ссылку на соседнюю страницу с теми же параметрами.
func pageURL(r *http.Request, page int) string {
	scheme := "http"
	if r.TLS != nil {
		scheme = "https"
	}
	if proto := r.Header.Get("X-Forwarded-Proto"); proto != "" {
		scheme = proto
	}

	q := r.URL.Query()
	if page <= 1 {
		q.Del("page")
	} else {
		q.Set("page", strconv.Itoa(page))
	}
	u := url.URL{Scheme: scheme, Host: r.Host, Path: r.URL.Path, RawQuery: q.Encode()}
	return u.String()
}
