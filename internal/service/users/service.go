package users

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/m04kA/SMC-CourtBooking/internal/domain"
	userRepo "github.com/m04kA/SMC-CourtBooking/internal/infra/storage/user"
	"github.com/m04kA/SMC-CourtBooking/internal/integrations/mailer"
	"github.com/m04kA/SMC-CourtBooking/internal/service/users/models"
)

// Settings параметры входа по ссылке
type Settings struct {
	PublicURL    string
	MagicLinkTTL time.Duration
}

// Service сервис пользователей и аутентификации
type Service struct {
	userRepo     UserRepository
	tokens       TokenIssuer
	mailer       Mailer
	txManager    TransactionManager
	timeProvider TimeProvider
	settings     Settings
	logger       Logger
}

// NewService создает новый экземпляр сервиса пользователей
func NewService(
	userRepo UserRepository,
	tokens TokenIssuer,
	mailer Mailer,
	txManager TransactionManager,
	settings Settings,
	logger Logger,
) *Service {
	return &Service{
		userRepo:     userRepo,
		tokens:       tokens,
		mailer:       mailer,
		txManager:    txManager,
		timeProvider: &RealTimeProvider{},
		settings:     settings,
		logger:       logger,
	}
}

// Register регистрирует пользователя по email и паролю
func (s *Service) Register(ctx context.Context, req *models.RegisterRequest) (*models.AuthResponse, error) {
	s.logger.Info("Register: email=%s", req.Email)

	if err := validateRegister(req); err != nil {
		s.logger.Warn("Register: validation failed: %v", err)
		return nil, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("%w: Register - hash password: %v", ErrInternal, err)
	}
	hashStr := string(hash)

	var created *domain.User
	err = s.txManager.Do(ctx, func(txCtx context.Context) error {
		user, err := s.userRepo.Create(txCtx, &domain.User{
			Email:        req.Email,
			PasswordHash: &hashStr,
			Role:         domain.RoleUser,
		}, strings.TrimSpace(req.FullName))
		if err != nil {
			return err
		}

		if req.Phone != nil {
			profile := &domain.Profile{UserID: user.ID, FullName: strings.TrimSpace(req.FullName), Phone: req.Phone}
			if err := s.userRepo.UpdateProfile(txCtx, profile); err != nil {
				return err
			}
		}

		created = user
		return nil
	})
	if err != nil {
		if errors.Is(err, userRepo.ErrEmailTaken) {
			s.logger.Warn("Register: email=%s already registered", req.Email)
			return nil, ErrEmailTaken
		}
		s.logger.Error("Register: repository error for email=%s: %v", req.Email, err)
		return nil, fmt.Errorf("%w: Register - repository error: %v", ErrInternal, err)
	}

	s.logger.Info("Register: user id=%d registered", created.ID)
	return s.issue(created)
}

// Login проверяет пароль и выдает токен
// Неизвестный email и неверный пароль неразличимы для клиента
func (s *Service) Login(ctx context.Context, req *models.LoginRequest) (*models.AuthResponse, error) {
	user, err := s.userRepo.GetByEmail(ctx, req.Email)
	if err != nil {
		if errors.Is(err, userRepo.ErrUserNotFound) {
			s.logger.Warn("Login: unknown email=%s", req.Email)
			return nil, ErrInvalidCredentials
		}
		s.logger.Error("Login: repository error: %v", err)
		return nil, fmt.Errorf("%w: Login - repository error: %v", ErrInternal, err)
	}

	if !user.HasPassword() {
		s.logger.Warn("Login: user id=%d has no password", user.ID)
		return nil, ErrInvalidCredentials
	}

	if err := bcrypt.CompareHashAndPassword([]byte(*user.PasswordHash), []byte(req.Password)); err != nil {
		s.logger.Warn("Login: wrong password for user id=%d", user.ID)
		return nil, ErrInvalidCredentials
	}

	s.logger.Info("Login: user id=%d logged in", user.ID)
	return s.issue(user)
}

// RequestMagicLink отправляет одноразовую ссылку для входа
// Пользователь создается, если email ещё не зарегистрирован
func (s *Service) RequestMagicLink(ctx context.Context, email string) error {
	s.logger.Info("RequestMagicLink: email=%s", email)

	if err := validateEmail(email); err != nil {
		return err
	}

	now := s.timeProvider.Now()
	link := &domain.MagicLink{
		Token:     uuid.NewString(),
		ExpiresAt: now.Add(s.settings.MagicLinkTTL),
	}

	var recipient string
	err := s.txManager.Do(ctx, func(txCtx context.Context) error {
		user, err := s.userRepo.GetByEmail(txCtx, email)
		if errors.Is(err, userRepo.ErrUserNotFound) {
			user, err = s.userRepo.Create(txCtx, &domain.User{Email: email, Role: domain.RoleUser}, localPart(email))
		}
		if err != nil {
			return err
		}

		link.UserID = user.ID
		recipient = user.Email
		return s.userRepo.CreateMagicLink(txCtx, link)
	})
	if err != nil {
		s.logger.Error("RequestMagicLink: repository error for email=%s: %v", email, err)
		return fmt.Errorf("%w: RequestMagicLink - repository error: %v", ErrInternal, err)
	}

	mail := mailer.MagicLinkMail{
		Link:       s.magicLinkURL(link.Token),
		TTLMinutes: int(s.settings.MagicLinkTTL / time.Minute),
	}
	if err := s.mailer.SendMagicLink(ctx, recipient, mail); err != nil {
		// Ответ клиенту не зависит от доставки письма
		s.logger.Error("RequestMagicLink: failed to send link to user id=%d: %v", link.UserID, err)
		return nil
	}

	s.logger.Info("RequestMagicLink: link sent to user id=%d", link.UserID)
	return nil
}

// VerifyMagicLink обменивает ссылку на токен; ссылка одноразовая
func (s *Service) VerifyMagicLink(ctx context.Context, token string) (*models.AuthResponse, error) {
	if _, err := uuid.Parse(token); err != nil {
		return nil, ErrInvalidMagicLink
	}

	link, err := s.userRepo.ConsumeMagicLink(ctx, token, s.timeProvider.Now())
	if err != nil {
		if errors.Is(err, userRepo.ErrMagicLinkNotFound) {
			s.logger.Warn("VerifyMagicLink: link is invalid or already used")
			return nil, ErrInvalidMagicLink
		}
		s.logger.Error("VerifyMagicLink: repository error: %v", err)
		return nil, fmt.Errorf("%w: VerifyMagicLink - repository error: %v", ErrInternal, err)
	}

	user, err := s.userRepo.GetByID(ctx, link.UserID)
	if err != nil {
		s.logger.Error("VerifyMagicLink: failed to load user id=%d: %v", link.UserID, err)
		return nil, fmt.Errorf("%w: VerifyMagicLink - repository error: %v", ErrInternal, err)
	}

	s.logger.Info("VerifyMagicLink: user id=%d logged in by link", user.ID)
	return s.issue(user)
}

// GetProfile получает профиль пользователя
func (s *Service) GetProfile(ctx context.Context, userID int64) (*models.ProfileResponse, error) {
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return nil, s.mapNotFound("GetProfile", userID, err)
	}

	profile, err := s.userRepo.GetProfile(ctx, userID)
	if err != nil {
		return nil, s.mapNotFound("GetProfile", userID, err)
	}

	return models.FromDomainProfile(user, profile), nil
}

// UpdateProfile частично обновляет профиль
func (s *Service) UpdateProfile(ctx context.Context, userID int64, req *models.UpdateProfileRequest) (*models.ProfileResponse, error) {
	s.logger.Info("UpdateProfile: user=%d", userID)

	if err := validateProfileUpdate(req); err != nil {
		s.logger.Warn("UpdateProfile: validation failed: %v", err)
		return nil, err
	}

	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return nil, s.mapNotFound("UpdateProfile", userID, err)
	}

	profile, err := s.userRepo.GetProfile(ctx, userID)
	if err != nil {
		return nil, s.mapNotFound("UpdateProfile", userID, err)
	}

	if req.FullName != nil {
		profile.FullName = strings.TrimSpace(*req.FullName)
	}
	if req.Phone != nil {
		profile.Phone = emptyToNil(*req.Phone)
	}
	if req.AvatarURL != nil {
		profile.AvatarURL = emptyToNil(*req.AvatarURL)
	}

	if err := s.userRepo.UpdateProfile(ctx, profile); err != nil {
		return nil, s.mapNotFound("UpdateProfile", userID, err)
	}

	s.logger.Info("UpdateProfile: profile of user=%d updated", userID)
	return models.FromDomainProfile(user, profile), nil
}

// Вспомогательные методы

func (s *Service) issue(user *domain.User) (*models.AuthResponse, error) {
	token, expiresAt, err := s.tokens.Issue(user.ID, string(user.Role), user.Email)
	if err != nil {
		s.logger.Error("issue: failed to sign token for user id=%d: %v", user.ID, err)
		return nil, fmt.Errorf("%w: issue token: %v", ErrInternal, err)
	}
	return &models.AuthResponse{
		Token:     token,
		ExpiresAt: expiresAt,
		User:      models.FromDomainUser(user),
	}, nil
}

func (s *Service) mapNotFound(op string, userID int64, err error) error {
	if errors.Is(err, userRepo.ErrUserNotFound) {
		s.logger.Warn("%s: user id=%d not found", op, userID)
		return ErrUserNotFound
	}
	s.logger.Error("%s: repository error for user id=%d: %v", op, userID, err)
	return fmt.Errorf("%w: %s - repository error: %v", ErrInternal, op, err)
}

func (s *Service) magicLinkURL(token string) string {
	return strings.TrimRight(s.settings.PublicURL, "/") + "/auth/magic?token=" + url.QueryEscape(token)
}

func localPart(email string) string {
	if i := strings.Index(email, "@"); i > 0 {
		return email[:i]
	}
	return email
}

func emptyToNil(s string) *string {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	return &s
}
