package venue

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

var venueColumns = []string{
	"id",
	"owner_id",
	"name",
	"address",
	"city",
	"description",
	"phone",
	"is_active",
	"created_at",
	"updated_at",
}

// Repository репозиторий площадок и их менеджеров
type Repository struct {
	db DBExecutor
}

// NewRepository создает новый экземпляр репозитория площадок
func NewRepository(db DBExecutor) *Repository {
	return &Repository{db: db}
}

// Create создает площадку
func (r *Repository) Create(ctx context.Context, venue *domain.Venue) (*domain.Venue, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Insert("venues").
		Columns("owner_id", "name", "address", "city", "description", "phone", "is_active").
		Values(venue.OwnerID, venue.Name, venue.Address, venue.City, venue.Description, venue.Phone, venue.IsActive).
		Suffix("RETURNING id, created_at, updated_at").
		ToSql()

	if err != nil {
		return nil, fmt.Errorf("%w: Create - build insert query: %w", ErrBuildQuery, err)
	}

	err = executor.QueryRowContext(ctx, query, args...).Scan(&venue.ID, &venue.CreatedAt, &venue.UpdatedAt)
	if err != nil {
		return nil, fmt.Errorf("%w: Create - execute insert: %w", ErrExecQuery, err)
	}

	return venue, nil
}

// GetByID получает площадку вместе со списком менеджеров
func (r *Repository) GetByID(ctx context.Context, id int64) (*domain.Venue, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Select(venueColumns...).
		From("venues").
		Where(squirrel.Eq{"id": id}).
		ToSql()

	if err != nil {
		return nil, fmt.Errorf("%w: GetByID - build select query: %w", ErrBuildQuery, err)
	}

	venue, err := scanVenue(executor.QueryRowContext(ctx, query, args...))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrVenueNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("%w: GetByID - scan venue: %w", ErrScanRow, err)
	}

	managers, err := r.ListManagers(ctx, id)
	if err != nil {
		return nil, err
	}
	venue.ManagerIDs = managers

	return venue, nil
}

// List получает площадки с фильтрацией по городу и активности
func (r *Repository) List(ctx context.Context, city *string, onlyActive bool) ([]*domain.Venue, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	selectBuilder := psqlbuilder.Select(venueColumns...).
		From("venues").
		OrderBy("name ASC")

	if city != nil && *city != "" {
		selectBuilder = selectBuilder.Where(squirrel.ILike{"city": *city})
	}
	if onlyActive {
		selectBuilder = selectBuilder.Where(squirrel.Eq{"is_active": true})
	}

	query, args, err := selectBuilder.ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: List - build select query: %w", ErrBuildQuery, err)
	}

	rows, err := executor.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%w: List - execute query: %w", ErrExecQuery, err)
	}
	defer rows.Close()

	venues := make([]*domain.Venue, 0)
	for rows.Next() {
		v, err := scanVenue(rows)
		if err != nil {
			return nil, fmt.Errorf("%w: List - scan row: %w", ErrScanRow, err)
		}
		venues = append(venues, v)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: List - rows error: %w", ErrScanRow, err)
	}

	return venues, nil
}

// Update сохраняет изменяемые поля площадки
func (r *Repository) Update(ctx context.Context, venue *domain.Venue) error {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Update("venues").
		Set("name", venue.Name).
		Set("address", venue.Address).
		Set("city", venue.City).
		Set("description", venue.Description).
		Set("phone", venue.Phone).
		Set("is_active", venue.IsActive).
		Set("updated_at", squirrel.Expr("NOW()")).
		Where(squirrel.Eq{"id": venue.ID}).
		Suffix("RETURNING updated_at").
		ToSql()

	if err != nil {
		return fmt.Errorf("%w: Update - build update query: %w", ErrBuildQuery, err)
	}

	err = executor.QueryRowContext(ctx, query, args...).Scan(&venue.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return ErrVenueNotFound
	}
	if err != nil {
		return fmt.Errorf("%w: Update - execute update: %w", ErrExecQuery, err)
	}

	return nil
}

// AddManager добавляет менеджера площадки, повторное добавление игнорируется
func (r *Repository) AddManager(ctx context.Context, venueID, userID int64) error {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Insert("venue_managers").
		Columns("venue_id", "user_id").
		Values(venueID, userID).
		Suffix("ON CONFLICT (venue_id, user_id) DO NOTHING").
		ToSql()

	if err != nil {
		return fmt.Errorf("%w: AddManager - build insert query: %w", ErrBuildQuery, err)
	}

	if _, err := executor.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("%w: AddManager - execute insert: %w", ErrExecQuery, err)
	}

	return nil
}

// ListManagers возвращает ID менеджеров площадки
func (r *Repository) ListManagers(ctx context.Context, venueID int64) ([]int64, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Select("user_id").
		From("venue_managers").
		Where(squirrel.Eq{"venue_id": venueID}).
		OrderBy("user_id ASC").
		ToSql()

	if err != nil {
		return nil, fmt.Errorf("%w: ListManagers - build select query: %w", ErrBuildQuery, err)
	}

	rows, err := executor.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%w: ListManagers - execute query: %w", ErrExecQuery, err)
	}
	defer rows.Close()

	ids := make([]int64, 0)
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("%w: ListManagers - scan user_id: %w", ErrScanRow, err)
		}
		ids = append(ids, id)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: ListManagers - rows error: %w", ErrScanRow, err)
	}

	return ids, nil
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanVenue(row rowScanner) (*domain.Venue, error) {
	var v domain.Venue
	err := row.Scan(
		&v.ID,
		&v.OwnerID,
		&v.Name,
		&v.Address,
		&v.City,
		&v.Description,
		&v.Phone,
		&v.IsActive,
		&v.CreatedAt,
		&v.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &v, nil
}
