package users

import (
	"errors"
	"net/http"

	"github.com/m04kA/SMC-CourtBooking/internal/api/handlers"
	"github.com/m04kA/SMC-CourtBooking/internal/api/middleware"
	"github.com/m04kA/SMC-CourtBooking/internal/service/users"
	"github.com/m04kA/SMC-CourtBooking/internal/service/users/models"
)

const (
	msgInvalidRequestBody = "некорректное тело запроса"
	msgMissingUserID      = "отсутствует ID пользователя"
	msgInvalidInput       = "некорректные данные пользователя"
	msgEmailTaken         = "пользователь с таким email уже зарегистрирован"
	msgInvalidCredentials = "неверный email или пароль"
	msgInvalidMagicLink   = "ссылка недействительна или уже использована"
	msgUserNotFound       = "пользователь не найден"
	msgMagicLinkSent      = "если адрес корректен, ссылка для входа отправлена на почту"
)

// Handler обработчики аутентификации и профиля
type Handler struct {
	service UserService
	logger  Logger
}

func NewHandler(service UserService, logger Logger) *Handler {
	return &Handler{
		service: service,
		logger:  logger,
	}
}

// Register POST /api/v1/auth/register
func (h *Handler) Register(w http.ResponseWriter, r *http.Request) {
	var req models.RegisterRequest
	if err := handlers.DecodeJSON(r, &req); err != nil {
		h.logger.Warn("POST /auth/register - Invalid request body: %v", err)
		handlers.RespondBadRequest(w, msgInvalidRequestBody)
		return
	}

	resp, err := h.service.Register(r.Context(), &req)
	if err != nil {
		switch {
		case errors.Is(err, users.ErrInvalidInput):
			h.logger.Warn("POST /auth/register - Invalid input: %v", err)
			handlers.RespondBadRequest(w, msgInvalidInput)

		case errors.Is(err, users.ErrEmailTaken):
			h.logger.Warn("POST /auth/register - Email already taken")
			handlers.RespondConflict(w, msgEmailTaken)

		default:
			h.logger.Error("POST /auth/register - Failed to register: %v", err)
			handlers.RespondInternalError(w)
		}
		return
	}

	h.logger.Info("POST /auth/register - User registered: user_id=%d", resp.User.ID)
	handlers.RespondJSON(w, http.StatusCreated, resp)
}

// Login POST /api/v1/auth/login
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var req models.LoginRequest
	if err := handlers.DecodeJSON(r, &req); err != nil {
		h.logger.Warn("POST /auth/login - Invalid request body: %v", err)
		handlers.RespondBadRequest(w, msgInvalidRequestBody)
		return
	}

	resp, err := h.service.Login(r.Context(), &req)
	if err != nil {
		switch {
		case errors.Is(err, users.ErrInvalidCredentials), errors.Is(err, users.ErrInvalidInput):
			h.logger.Warn("POST /auth/login - Invalid credentials")
			handlers.RespondUnauthorized(w, msgInvalidCredentials)

		default:
			h.logger.Error("POST /auth/login - Failed to login: %v", err)
			handlers.RespondInternalError(w)
		}
		return
	}

	h.logger.Info("POST /auth/login - User logged in: user_id=%d", resp.User.ID)
	handlers.RespondJSON(w, http.StatusOK, resp)
}

// RequestMagicLink POST /api/v1/auth/magic-link
// Ответ не раскрывает, зарегистрирован ли email
func (h *Handler) RequestMagicLink(w http.ResponseWriter, r *http.Request) {
	var req MagicLinkRequest
	if err := handlers.DecodeJSON(r, &req); err != nil {
		h.logger.Warn("POST /auth/magic-link - Invalid request body: %v", err)
		handlers.RespondBadRequest(w, msgInvalidRequestBody)
		return
	}

	if err := h.service.RequestMagicLink(r.Context(), req.Email); err != nil {
		switch {
		case errors.Is(err, users.ErrInvalidInput):
			h.logger.Warn("POST /auth/magic-link - Invalid email: %v", err)
			handlers.RespondBadRequest(w, msgInvalidInput)

		default:
			h.logger.Error("POST /auth/magic-link - Failed to issue link: %v", err)
			handlers.RespondInternalError(w)
		}
		return
	}

	handlers.RespondMessage(w, http.StatusAccepted, msgMagicLinkSent)
}

// VerifyMagicLink POST /api/v1/auth/magic-link/verify
func (h *Handler) VerifyMagicLink(w http.ResponseWriter, r *http.Request) {
	var req VerifyMagicLinkRequest
	if err := handlers.DecodeJSON(r, &req); err != nil {
		h.logger.Warn("POST /auth/magic-link/verify - Invalid request body: %v", err)
		handlers.RespondBadRequest(w, msgInvalidRequestBody)
		return
	}

	resp, err := h.service.VerifyMagicLink(r.Context(), req.Token)
	if err != nil {
		switch {
		case errors.Is(err, users.ErrInvalidMagicLink):
			h.logger.Warn("POST /auth/magic-link/verify - Invalid link")
			handlers.RespondUnauthorized(w, msgInvalidMagicLink)

		default:
			h.logger.Error("POST /auth/magic-link/verify - Failed to verify link: %v", err)
			handlers.RespondInternalError(w)
		}
		return
	}

	h.logger.Info("POST /auth/magic-link/verify - User logged in: user_id=%d", resp.User.ID)
	handlers.RespondJSON(w, http.StatusOK, resp)
}

// GetProfile GET /api/v1/users/me
func (h *Handler) GetProfile(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserID(r.Context())
	if !ok {
		h.logger.Warn("GET /users/me - Missing user ID")
		handlers.RespondUnauthorized(w, msgMissingUserID)
		return
	}

	profile, err := h.service.GetProfile(r.Context(), userID)
	if err != nil {
		h.respondProfileError(w, "GET /users/me", userID, err)
		return
	}

	handlers.RespondJSON(w, http.StatusOK, profile)
}

// UpdateProfile PUT /api/v1/users/me
func (h *Handler) UpdateProfile(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserID(r.Context())
	if !ok {
		h.logger.Warn("PUT /users/me - Missing user ID")
		handlers.RespondUnauthorized(w, msgMissingUserID)
		return
	}

	var req models.UpdateProfileRequest
	if err := handlers.DecodeJSON(r, &req); err != nil {
		h.logger.Warn("PUT /users/me - Invalid request body: %v", err)
		handlers.RespondBadRequest(w, msgInvalidRequestBody)
		return
	}

	profile, err := h.service.UpdateProfile(r.Context(), userID, &req)
	if err != nil {
		h.respondProfileError(w, "PUT /users/me", userID, err)
		return
	}

	h.logger.Info("PUT /users/me - Profile updated: user_id=%d", userID)
	handlers.RespondJSON(w, http.StatusOK, profile)
}

func (h *Handler) respondProfileError(w http.ResponseWriter, route string, userID int64, err error) {
	switch {
	case errors.Is(err, users.ErrUserNotFound):
		h.logger.Warn("%s - User not found: user_id=%d", route, userID)
		handlers.RespondNotFound(w, msgUserNotFound)

	case errors.Is(err, users.ErrInvalidInput):
		h.logger.Warn("%s - Invalid input: user_id=%d, error=%v", route, userID, err)
		handlers.RespondBadRequest(w, msgInvalidInput)

	default:
		h.logger.Error("%s - Failed: user_id=%d, error=%v", route, userID, err)
		handlers.RespondInternalError(w)
	}
}
