package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/m04kA/SMC-CourtBooking/internal/api/handlers"
	"github.com/m04kA/SMC-CourtBooking/internal/domain"
	"github.com/m04kA/SMC-CourtBooking/pkg/auth"
)

const (
	msgMissingToken = "требуется авторизация"
	msgInvalidToken = "недействительный или просроченный токен"
)

type contextKey string

const (
	userIDKey contextKey = "user_id"
	roleKey   contextKey = "role"
)

// TokenParser проверяет access токен
type TokenParser interface {
	Parse(token string) (*auth.Claims, error)
}

// Logger интерфейс для логирования
type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}

// Auth проверяет заголовок Authorization: Bearer и кладёт пользователя в контекст
type Auth struct {
	tokens TokenParser
	logger Logger
}

// NewAuth создает middleware авторизации
func NewAuth(tokens TokenParser, logger Logger) *Auth {
	return &Auth{tokens: tokens, logger: logger}
}

// Handler возвращает middleware
func (a *Auth) Handler(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		header := r.Header.Get("Authorization")
		token, found := strings.CutPrefix(header, "Bearer ")
		if !found || strings.TrimSpace(token) == "" {
			a.logger.Warn("%s %s - Missing bearer token", r.Method, r.URL.Path)
			handlers.RespondUnauthorized(w, msgMissingToken)
			return
		}

		claims, err := a.tokens.Parse(strings.TrimSpace(token))
		if err != nil {
			a.logger.Warn("%s %s - Invalid token: %v", r.Method, r.URL.Path, err)
			handlers.RespondUnauthorized(w, msgInvalidToken)
			return
		}

		userID, err := claims.UserID()
		if err != nil {
			a.logger.Warn("%s %s - Invalid token subject: %v", r.Method, r.URL.Path, err)
			handlers.RespondUnauthorized(w, msgInvalidToken)
			return
		}

		next.ServeHTTP(w, r.WithContext(WithUser(r.Context(), userID, domain.Role(claims.Role))))
	})
}

// WithUser кладёт пользователя в контекст
func WithUser(ctx context.Context, userID int64, role domain.Role) context.Context {
	ctx = context.WithValue(ctx, userIDKey, userID)
	return context.WithValue(ctx, roleKey, role)
}

// GetUserID возвращает ID авторизованного пользователя
func GetUserID(ctx context.Context) (int64, bool) {
	userID, ok := ctx.Value(userIDKey).(int64)
	return userID, ok && userID > 0
}

// GetRole возвращает роль авторизованного пользователя
func GetRole(ctx context.Context) (domain.Role, bool) {
	role, ok := ctx.Value(roleKey).(domain.Role)
	return role, ok
}
