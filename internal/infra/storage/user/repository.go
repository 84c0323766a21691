package user

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/lib/pq"

	"github.com/m04kA/SMC-CourtBooking/internal/domain"
	"github.com/m04kA/SMC-CourtBooking/pkg/dbmetrics"
	"github.com/m04kA/SMC-CourtBooking/pkg/psqlbuilder"
)

const uniqueViolation = "23505"

var userColumns = []string{
	"id",
	"email",
	"password_hash",
	"role",
	"created_at",
	"updated_at",
}

var profileColumns = []string{
	"user_id",
	"full_name",
	"phone",
	"avatar_url",
	"updated_at",
}

// Repository репозиторий пользователей, профилей и magic link
type Repository struct {
	db DBExecutor
}

// NewRepository создает новый экземпляр репозитория пользователей
func NewRepository(db DBExecutor) *Repository {
	return &Repository{db: db}
}

// Create создает пользователя вместе с пустым профилем
// Вызывать внутри транзакции, иначе профиль может не создаться
func (r *Repository) Create(ctx context.Context, user *domain.User, fullName string) (*domain.User, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Insert("users").
		Columns("email", "password_hash", "role").
		Values(normalizeEmail(user.Email), user.PasswordHash, user.Role).
		Suffix("RETURNING id, email, created_at, updated_at").
		ToSql()

	if err != nil {
		return nil, fmt.Errorf("%w: Create - build insert query: %w", ErrBuildQuery, err)
	}

	err = executor.QueryRowContext(ctx, query, args...).Scan(&user.ID, &user.Email, &user.CreatedAt, &user.UpdatedAt)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == uniqueViolation {
			return nil, ErrEmailTaken
		}
		return nil, fmt.Errorf("%w: Create - execute insert: %w", ErrExecQuery, err)
	}

	profileQuery, profileArgs, err := psqlbuilder.Insert("profiles").
		Columns("user_id", "full_name").
		Values(user.ID, fullName).
		ToSql()

	if err != nil {
		return nil, fmt.Errorf("%w: Create - build profile insert: %w", ErrBuildQuery, err)
	}

	if _, err := executor.ExecContext(ctx, profileQuery, profileArgs...); err != nil {
		return nil, fmt.Errorf("%w: Create - execute profile insert: %w", ErrExecQuery, err)
	}

	return user, nil
}

// GetByID получает пользователя по ID
func (r *Repository) GetByID(ctx context.Context, id int64) (*domain.User, error) {
	return r.getOne(ctx, "GetByID", squirrel.Eq{"id": id})
}

// GetByEmail получает пользователя по email без учета регистра
func (r *Repository) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	return r.getOne(ctx, "GetByEmail", squirrel.Eq{"email": normalizeEmail(email)})
}

func (r *Repository) getOne(ctx context.Context, op string, where squirrel.Eq) (*domain.User, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Select(userColumns...).
		From("users").
		Where(where).
		ToSql()

	if err != nil {
		return nil, fmt.Errorf("%w: %s - build select query: %w", ErrBuildQuery, op, err)
	}

	var u domain.User
	err = executor.QueryRowContext(ctx, query, args...).Scan(
		&u.ID,
		&u.Email,
		&u.PasswordHash,
		&u.Role,
		&u.CreatedAt,
		&u.UpdatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrUserNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %s - scan user: %w", ErrScanRow, op, err)
	}

	return &u, nil
}

// GetProfile получает профиль пользователя
func (r *Repository) GetProfile(ctx context.Context, userID int64) (*domain.Profile, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Select(profileColumns...).
		From("profiles").
		Where(squirrel.Eq{"user_id": userID}).
		ToSql()

	if err != nil {
		return nil, fmt.Errorf("%w: GetProfile - build select query: %w", ErrBuildQuery, err)
	}

	var p domain.Profile
	err = executor.QueryRowContext(ctx, query, args...).Scan(
		&p.UserID,
		&p.FullName,
		&p.Phone,
		&p.AvatarURL,
		&p.UpdatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrUserNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("%w: GetProfile - scan profile: %w", ErrScanRow, err)
	}

	return &p, nil
}

// UpdateProfile сохраняет профиль пользователя
func (r *Repository) UpdateProfile(ctx context.Context, profile *domain.Profile) error {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Update("profiles").
		Set("full_name", profile.FullName).
		Set("phone", profile.Phone).
		Set("avatar_url", profile.AvatarURL).
		Set("updated_at", squirrel.Expr("NOW()")).
		Where(squirrel.Eq{"user_id": profile.UserID}).
		Suffix("RETURNING updated_at").
		ToSql()

	if err != nil {
		return fmt.Errorf("%w: UpdateProfile - build update query: %w", ErrBuildQuery, err)
	}

	err = executor.QueryRowContext(ctx, query, args...).Scan(&profile.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return ErrUserNotFound
	}
	if err != nil {
		return fmt.Errorf("%w: UpdateProfile - execute update: %w", ErrExecQuery, err)
	}

	return nil
}

// CreateMagicLink сохраняет одноразовую ссылку для входа
func (r *Repository) CreateMagicLink(ctx context.Context, link *domain.MagicLink) error {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Insert("magic_links").
		Columns("user_id", "token", "expires_at").
		Values(link.UserID, link.Token, link.ExpiresAt).
		Suffix("RETURNING id, created_at").
		ToSql()

	if err != nil {
		return fmt.Errorf("%w: CreateMagicLink - build insert query: %w", ErrBuildQuery, err)
	}

	if err := executor.QueryRowContext(ctx, query, args...).Scan(&link.ID, &link.CreatedAt); err != nil {
		return fmt.Errorf("%w: CreateMagicLink - execute insert: %w", ErrExecQuery, err)
	}

	return nil
}

// ConsumeMagicLink атомарно помечает ссылку использованной
// Возвращает ErrMagicLinkNotFound для неизвестной, просроченной или уже использованной ссылки
func (r *Repository) ConsumeMagicLink(ctx context.Context, token string, now time.Time) (*domain.MagicLink, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Update("magic_links").
		Set("used_at", now).
		Where(squirrel.Eq{"token": token, "used_at": nil}).
		Where(squirrel.Gt{"expires_at": now}).
		Suffix("RETURNING id, user_id, token, expires_at, used_at, created_at").
		ToSql()

	if err != nil {
		return nil, fmt.Errorf("%w: ConsumeMagicLink - build update query: %w", ErrBuildQuery, err)
	}

	var link domain.MagicLink
	err = executor.QueryRowContext(ctx, query, args...).Scan(
		&link.ID,
		&link.UserID,
		&link.Token,
		&link.ExpiresAt,
		&link.UsedAt,
		&link.CreatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrMagicLinkNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("%w: ConsumeMagicLink - execute update: %w", ErrExecQuery, err)
	}

	return &link, nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
