package pricing

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

var priceColumns = []string{
	"id",
	"court_id",
	"specific_date",
	"day_of_week",
	"start_time::text",
	"end_time::text",
	"price",
	"created_at",
}

// Repository репозиторий динамических цен
type Repository struct {
	db DBExecutor
}

// NewRepository создает новый экземпляр репозитория цен
func NewRepository(db DBExecutor) *Repository {
	return &Repository{db: db}
}

// Create создает правило цены
func (r *Repository) Create(ctx context.Context, rule *domain.DynamicPrice) (*domain.DynamicPrice, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Insert("dynamic_prices").
		Columns("court_id", "specific_date", "day_of_week", "start_time", "end_time", "price").
		Values(rule.CourtID, rule.SpecificDate, rule.DayOfWeek, rule.StartTime, rule.EndTime, rule.Price).
		Suffix("RETURNING id, created_at").
		ToSql()

	if err != nil {
		return nil, fmt.Errorf("%w: Create - build insert query: %w", ErrBuildQuery, err)
	}

	err = executor.QueryRowContext(ctx, query, args...).Scan(&rule.ID, &rule.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("%w: Create - execute insert: %w", ErrExecQuery, err)
	}

	return rule, nil
}

// GetByID получает правило цены по ID
func (r *Repository) GetByID(ctx context.Context, id int64) (*domain.DynamicPrice, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Select(priceColumns...).
		From("dynamic_prices").
		Where(squirrel.Eq{"id": id}).
		ToSql()

	if err != nil {
		return nil, fmt.Errorf("%w: GetByID - build select query: %w", ErrBuildQuery, err)
	}

	rule, err := scanPrice(executor.QueryRowContext(ctx, query, args...))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrPriceNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("%w: GetByID - scan price: %w", ErrScanRow, err)
	}

	return rule, nil
}

// ListByCourt получает все правила цен корта
func (r *Repository) ListByCourt(ctx context.Context, courtID int64) ([]*domain.DynamicPrice, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Select(priceColumns...).
		From("dynamic_prices").
		Where(squirrel.Eq{"court_id": courtID}).
		OrderBy("id ASC").
		ToSql()

	if err != nil {
		return nil, fmt.Errorf("%w: ListByCourt - build select query: %w", ErrBuildQuery, err)
	}

	rows, err := executor.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%w: ListByCourt - execute query: %w", ErrExecQuery, err)
	}
	defer rows.Close()

	rules := make([]*domain.DynamicPrice, 0)
	for rows.Next() {
		rule, err := scanPrice(rows)
		if err != nil {
			return nil, fmt.Errorf("%w: ListByCourt - scan row: %w", ErrScanRow, err)
		}
		rules = append(rules, rule)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: ListByCourt - rows error: %w", ErrScanRow, err)
	}

	return rules, nil
}

// Delete удаляет правило цены
func (r *Repository) Delete(ctx context.Context, id int64) error {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Delete("dynamic_prices").
		Where(squirrel.Eq{"id": id}).
		ToSql()

	if err != nil {
		return fmt.Errorf("%w: Delete - build delete query: %w", ErrBuildQuery, err)
	}

	result, err := executor.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("%w: Delete - execute delete: %w", ErrExecQuery, err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("%w: Delete - get rows affected: %w", ErrExecQuery, err)
	}

	if rowsAffected == 0 {
		return ErrPriceNotFound
	}

	return nil
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanPrice(row rowScanner) (*domain.DynamicPrice, error) {
	var (
		p   domain.DynamicPrice
		dow sql.NullInt16
	)
	err := row.Scan(
		&p.ID,
		&p.CourtID,
		&p.SpecificDate,
		&dow,
		&p.StartTime,
		&p.EndTime,
		&p.Price,
		&p.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	if dow.Valid {
		d := int(dow.Int16)
		p.DayOfWeek = &d
	}
	return &p, nil
}
