package users

import (
	"context"

	"github.com/m04kA/SMC-CourtBooking/internal/service/users/models"
)

type UserService interface {
	Register(ctx context.Context, req *models.RegisterRequest) (*models.AuthResponse, error)
	Login(ctx context.Context, req *models.LoginRequest) (*models.AuthResponse, error)
	RequestMagicLink(ctx context.Context, email string) error
	VerifyMagicLink(ctx context.Context, token string) (*models.AuthResponse, error)
	GetProfile(ctx context.Context, userID int64) (*models.ProfileResponse, error)
	UpdateProfile(ctx context.Context, userID int64, req *models.UpdateProfileRequest) (*models.ProfileResponse, error)
}

type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
