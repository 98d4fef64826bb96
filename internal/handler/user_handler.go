package handler

import (
	"log/slog"
	"net/http"

	"github.com/GoArmGo/Foodgram/internal/domain"
	"github.com/GoArmGo/Foodgram/internal/metrics"
	"github.com/GoArmGo/Foodgram/internal/usecase"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
)

// UserHandler — регистрация, токены, профили и подписки.
type UserHandler struct {
	users    usecase.UserUseCase
	follows  usecase.FollowUseCase
	validate *validator.Validate
	metrics  *metrics.Metrics
	pageSize int
	logger   *slog.Logger
}

func NewUserHandler(
	users usecase.UserUseCase,
	follows usecase.FollowUseCase,
	validate *validator.Validate,
	m *metrics.Metrics,
	pageSize int,
	logger *slog.Logger,
) *UserHandler {
	return &UserHandler{
		users:    users,
		follows:  follows,
		validate: validate,
		metrics:  m,
		pageSize: pageSize,
		logger:   logger,
	}
}

type registerRequest struct {
	Email     string `json:"email" validate:"required,email,max=254"`
	Username  string `json:"username" validate:"required,max=150"`
	FirstName string `json:"first_name" validate:"required,max=150"`
	LastName  string `json:"last_name" validate:"required,max=150"`
	Password  string `json:"password" validate:"required,max=150"`
}

type registerResponse struct {
	Email     string    `json:"email"`
	ID        uuid.UUID `json:"id"`
	Username  string    `json:"username"`
	FirstName string    `json:"first_name"`
	LastName  string    `json:"last_name"`
}

type loginRequest struct {
	Email    string `json:"email" validate:"required"`
	Password string `json:"password" validate:"required"`
}

type setPasswordRequest struct {
	NewPassword     string `json:"new_password" validate:"required,max=150"`
	CurrentPassword string `json:"current_password" validate:"required"`
}

func (h *UserHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := decodeJSON(w, r, &req); err != nil {
		respondWithDomainError(w, r, err, h.logger)
		return
	}
	if err := validateRequest(h.validate, req); err != nil {
		respondWithDomainError(w, r, err, h.logger)
		return
	}

	profile, err := h.users.Register(r.Context(), domain.RegisterInput{
		Email:     req.Email,
		Username:  req.Username,
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Password:  req.Password,
	})
	if err != nil {
		respondWithDomainError(w, r, err, h.logger)
		return
	}
	respondWithJSON(w, http.StatusCreated, registerResponse{
		Email:     profile.Email,
		ID:        profile.ID,
		Username:  profile.Username,
		FirstName: profile.FirstName,
		LastName:  profile.LastName,
	}, h.logger)
}

func (h *UserHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := decodeJSON(w, r, &req); err != nil {
		respondWithDomainError(w, r, err, h.logger)
		return
	}
	if err := validateRequest(h.validate, req); err != nil {
		respondWithDomainError(w, r, err, h.logger)
		return
	}
	token, err := h.users.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		respondWithDomainError(w, r, err, h.logger)
		return
	}
	respondWithJSON(w, http.StatusOK, map[string]string{"auth_token": token}, h.logger)
}

// Logout ничего не хранит: токены без состояния истекают сами.
func (h *UserHandler) Logout(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusNoContent)
}

func (h *UserHandler) ListUsers(w http.ResponseWriter, r *http.Request) {
	page, err := h.users.ListUsers(r.Context(), viewer(r), parsePage(r, h.pageSize))
	if err != nil {
		respondWithDomainError(w, r, err, h.logger)
		return
	}
	respondWithJSON(w, http.StatusOK, newPageResponse(r, page), h.logger)
}

func (h *UserHandler) GetUser(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id", "user not found")
	if err != nil {
		respondWithDomainError(w, r, err, h.logger)
		return
	}
	profile, err := h.users.GetUser(r.Context(), viewer(r), id)
	if err != nil {
		respondWithDomainError(w, r, err, h.logger)
		return
	}
	respondWithJSON(w, http.StatusOK, profile, h.logger)
}

func (h *UserHandler) Me(w http.ResponseWriter, r *http.Request) {
	profile, err := h.users.Me(r.Context(), viewer(r))
	if err != nil {
		respondWithDomainError(w, r, err, h.logger)
		return
	}
	respondWithJSON(w, http.StatusOK, profile, h.logger)
}

func (h *UserHandler) SetPassword(w http.ResponseWriter, r *http.Request) {
	var req setPasswordRequest
	if err := decodeJSON(w, r, &req); err != nil {
		respondWithDomainError(w, r, err, h.logger)
		return
	}
	if err := validateRequest(h.validate, req); err != nil {
		respondWithDomainError(w, r, err, h.logger)
		return
	}
	if err := h.users.SetPassword(r.Context(), viewer(r), req.CurrentPassword, req.NewPassword); err != nil {
		respondWithDomainError(w, r, err, h.logger)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *UserHandler) Subscribe(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id", "user not found")
	if err != nil {
		respondWithDomainError(w, r, err, h.logger)
		return
	}
	limit := domain.ParseRecipesLimit(r.URL.Query().Get("recipes_limit"))
	sub, err := h.follows.Subscribe(r.Context(), viewer(r), id, limit)
	if err != nil {
		respondWithDomainError(w, r, err, h.logger)
		return
	}
	h.metrics.FollowChanges.WithLabelValues("subscribe").Inc()
	respondWithJSON(w, http.StatusCreated, sub, h.logger)
}

func (h *UserHandler) Unsubscribe(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id", "user not found")
	if err != nil {
		respondWithDomainError(w, r, err, h.logger)
		return
	}
	if err := h.follows.Unsubscribe(r.Context(), viewer(r), id); err != nil {
		respondWithDomainError(w, r, err, h.logger)
		return
	}
	h.metrics.FollowChanges.WithLabelValues("unsubscribe").Inc()
	w.WriteHeader(http.StatusNoContent)
}

func (h *UserHandler) ListSubscriptions(w http.ResponseWriter, r *http.Request) {
	limit := domain.ParseRecipesLimit(r.URL.Query().Get("recipes_limit"))
	page, err := h.follows.ListSubscriptions(r.Context(), viewer(r), parsePage(r, h.pageSize), limit)
	if err != nil {
		respondWithDomainError(w, r, err, h.logger)
		return
	}
	respondWithJSON(w, http.StatusOK, newPageResponse(r, page), h.logger)
}
