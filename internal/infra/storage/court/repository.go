package court

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/Masterminds/squirrel"

	"github.com/m04kA/SMC-CourtBooking/internal/domain"
	"github.com/m04kA/SMC-CourtBooking/pkg/dbmetrics"
	"github.com/m04kA/SMC-CourtBooking/pkg/psqlbuilder"
)

// TIME читается как text, иначе lib/pq превращает 24:00 в 00:00
var courtColumns = []string{
	"id",
	"venue_id",
	"name",
	"sport",
	"open_time::text",
	"close_time::text",
	"slot_duration_minutes",
	"base_price",
	"external_ref",
	"is_active",
	"created_at",
	"updated_at",
}

// Repository репозиторий кортов и их блокировок
type Repository struct {
	db DBExecutor
}

// NewRepository создает новый экземпляр репозитория кортов
func NewRepository(db DBExecutor) *Repository {
	return &Repository{db: db}
}

// Create создает корт
func (r *Repository) Create(ctx context.Context, court *domain.Court) (*domain.Court, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Insert("courts").
		Columns(
			"venue_id",
			"name",
			"sport",
			"open_time",
			"close_time",
			"slot_duration_minutes",
			"base_price",
			"external_ref",
			"is_active",
		).
		Values(
			court.VenueID,
			court.Name,
			court.Sport,
			court.OpenTime,
			court.CloseTime,
			court.SlotDurationMinutes,
			court.BasePrice,
			court.ExternalRef,
			court.IsActive,
		).
		Suffix("RETURNING id, created_at, updated_at").
		ToSql()

	if err != nil {
		return nil, fmt.Errorf("%w: Create - build insert query: %w", ErrBuildQuery, err)
	}

	err = executor.QueryRowContext(ctx, query, args...).Scan(&court.ID, &court.CreatedAt, &court.UpdatedAt)
	if err != nil {
		return nil, fmt.Errorf("%w: Create - execute insert: %w", ErrExecQuery, err)
	}

	return court, nil
}

// GetByID получает корт по ID
func (r *Repository) GetByID(ctx context.Context, id int64) (*domain.Court, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Select(courtColumns...).
		From("courts").
		Where(squirrel.Eq{"id": id}).
		ToSql()

	if err != nil {
		return nil, fmt.Errorf("%w: GetByID - build select query: %w", ErrBuildQuery, err)
	}

	court, err := scanCourt(executor.QueryRowContext(ctx, query, args...))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrCourtNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("%w: GetByID - scan court: %w", ErrScanRow, err)
	}

	return court, nil
}

// ListByVenue получает корты площадки
func (r *Repository) ListByVenue(ctx context.Context, venueID int64, onlyActive bool) ([]*domain.Court, error) {
	selectBuilder := psqlbuilder.Select(courtColumns...).
		From("courts").
		Where(squirrel.Eq{"venue_id": venueID}).
		OrderBy("name ASC", "id ASC")

	if onlyActive {
		selectBuilder = selectBuilder.Where(squirrel.Eq{"is_active": true})
	}

	return r.listCourts(ctx, "ListByVenue", selectBuilder)
}

// ListSynced получает активные корты, связанные с внешним провайдером
func (r *Repository) ListSynced(ctx context.Context) ([]*domain.Court, error) {
	selectBuilder := psqlbuilder.Select(courtColumns...).
		From("courts").
		Where(squirrel.NotEq{"external_ref": nil}).
		Where(squirrel.Eq{"is_active": true}).
		OrderBy("id ASC")

	return r.listCourts(ctx, "ListSynced", selectBuilder)
}

// Update сохраняет изменяемые поля корта
func (r *Repository) Update(ctx context.Context, court *domain.Court) error {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Update("courts").
		Set("name", court.Name).
		Set("sport", court.Sport).
		Set("open_time", court.OpenTime).
		Set("close_time", court.CloseTime).
		Set("slot_duration_minutes", court.SlotDurationMinutes).
		Set("base_price", court.BasePrice).
		Set("external_ref", court.ExternalRef).
		Set("is_active", court.IsActive).
		Set("updated_at", squirrel.Expr("NOW()")).
		Where(squirrel.Eq{"id": court.ID}).
		Suffix("RETURNING updated_at").
		ToSql()

	if err != nil {
		return fmt.Errorf("%w: Update - build update query: %w", ErrBuildQuery, err)
	}

	err = executor.QueryRowContext(ctx, query, args...).Scan(&court.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return ErrCourtNotFound
	}
	if err != nil {
		return fmt.Errorf("%w: Update - execute update: %w", ErrExecQuery, err)
	}

	return nil
}

func (r *Repository) listCourts(ctx context.Context, op string, selectBuilder squirrel.SelectBuilder) ([]*domain.Court, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := selectBuilder.ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: %s - build select query: %w", ErrBuildQuery, op, err)
	}

	rows, err := executor.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%w: %s - execute query: %w", ErrExecQuery, op, err)
	}
	defer rows.Close()

	courts := make([]*domain.Court, 0)
	for rows.Next() {
		c, err := scanCourt(rows)
		if err != nil {
			return nil, fmt.Errorf("%w: %s - scan row: %w", ErrScanRow, op, err)
		}
		courts = append(courts, c)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: %s - rows error: %w", ErrScanRow, op, err)
	}

	return courts, nil
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanCourt(row rowScanner) (*domain.Court, error) {
	var c domain.Court
	err := row.Scan(
		&c.ID,
		&c.VenueID,
		&c.Name,
		&c.Sport,
		&c.OpenTime,
		&c.CloseTime,
		&c.SlotDurationMinutes,
		&c.BasePrice,
		&c.ExternalRef,
		&c.IsActive,
		&c.CreatedAt,
		&c.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &c, nil
}
