package models

import (
	"time"

	"github.com/m04kA/SMC-CourtBooking/internal/domain"
)

// Request модели

// RegisterRequest запрос на регистрацию по паролю
type RegisterRequest struct {
	Email    string  `json:"email"`
	Password string  `json:"password"`
	FullName string  `json:"fullName"`
	Phone    *string `json:"phone,omitempty"`
}

// LoginRequest запрос на вход по паролю
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// UpdateProfileRequest частичное обновление профиля
type UpdateProfileRequest struct {
	FullName  *string `json:"fullName,omitempty"`
	Phone     *string `json:"phone,omitempty"`
	AvatarURL *string `json:"avatarUrl,omitempty"`
}

// Response модели

// UserResponse данные пользователя
type UserResponse struct {
	ID    int64  `json:"id"`
	Email string `json:"email"`
	Role  string `json:"role"`
}

// AuthResponse выданный токен
type AuthResponse struct {
	Token     string       `json:"token"`
	ExpiresAt time.Time    `json:"expiresAt"`
	User      UserResponse `json:"user"`
}

// ProfileResponse профиль пользователя
type ProfileResponse struct {
	UserID    int64     `json:"userId"`
	Email     string    `json:"email"`
	Role      string    `json:"role"`
	FullName  string    `json:"fullName"`
	Phone     *string   `json:"phone,omitempty"`
	AvatarURL *string   `json:"avatarUrl,omitempty"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// FromDomainUser конвертирует domain модель в DTO
func FromDomainUser(u *domain.User) UserResponse {
	return UserResponse{ID: u.ID, Email: u.Email, Role: string(u.Role)}
}

// FromDomainProfile собирает профиль из пользователя и его персональных данных
func FromDomainProfile(u *domain.User, p *domain.Profile) *ProfileResponse {
	return &ProfileResponse{
		UserID:    u.ID,
		Email:     u.Email,
		Role:      string(u.Role),
		FullName:  p.FullName,
		Phone:     p.Phone,
		AvatarURL: p.AvatarURL,
		UpdatedAt: p.UpdatedAt,
	}
}
