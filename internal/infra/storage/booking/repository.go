package booking

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

// Колонки TIME читаются как text: lib/pq декодирует TIME в time.Time и теряет значение 24:00
var bookingColumns = []string{
	"b.id",
	"b.order_id",
	"b.court_id",
	"b.venue_id",
	"b.user_id",
	"b.customer_name",
	"b.customer_phone",
	"b.booking_date",
	"b.start_time::text",
	"b.duration_minutes",
	"b.price",
	"b.status",
	"b.source",
	"b.notes",
	"b.cancellation_reason",
	"b.cancelled_at",
	"o.public_id",
	"b.created_at",
	"b.updated_at",
}

// Repository репозиторий для работы с бронированиями
type Repository struct {
	db DBExecutor
}

// NewRepository создает новый экземпляр репозитория бронирований
func NewRepository(db DBExecutor) *Repository {
	return &Repository{db: db}
}

// Create создает новое бронирование
// Если в контексте передана активная транзакция, использует её
func (r *Repository) Create(ctx context.Context, booking *domain.Booking) (*domain.Booking, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Insert("bookings").
		Columns(
			"order_id",
			"court_id",
			"venue_id",
			"user_id",
			"customer_name",
			"customer_phone",
			"booking_date",
			"start_time",
			"duration_minutes",
			"price",
			"status",
			"source",
			"notes",
		).
		Values(
			booking.OrderID,
			booking.CourtID,
			booking.VenueID,
			booking.UserID,
			booking.CustomerName,
			booking.CustomerPhone,
			booking.BookingDate,
			booking.StartTime,
			booking.DurationMinutes,
			booking.Price,
			booking.Status,
			booking.Source,
			booking.Notes,
		).
		Suffix("RETURNING id, created_at, updated_at").
		ToSql()

	if err != nil {
		return nil, fmt.Errorf("%w: Create - build insert query: %w", ErrBuildQuery, err)
	}

	err = executor.QueryRowContext(ctx, query, args...).Scan(
		&booking.ID,
		&booking.CreatedAt,
		&booking.UpdatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("%w: Create - execute insert: %w", ErrExecQuery, err)
	}

	return booking, nil
}

// GetByID получает бронирование по ID
func (r *Repository) GetByID(ctx context.Context, id int64) (*domain.Booking, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := r.selectBuilder().
		Where(squirrel.Eq{"b.id": id}).
		ToSql()

	if err != nil {
		return nil, fmt.Errorf("%w: GetByID - build select query: %w", ErrBuildQuery, err)
	}

	booking, err := scanBooking(executor.QueryRowContext(ctx, query, args...))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrBookingNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("%w: GetByID - scan booking: %w", ErrScanRow, err)
	}

	return booking, nil
}

// List получает бронирования с гибкой фильтрацией
//
// Примеры использования:
//
//  1. Активные бронирования корта на дату (для сетки слотов):
//     filter := domain.BookingsFilter{CourtID: &courtID, StartDate: &date, EndDate: &date, HoldsValidAt: &now}
//
//  2. Бронирования площадки за период, включая отменённые:
//     filter := domain.BookingsFilter{VenueID: &venueID, StartDate: &from, EndDate: &to, IncludeInactive: true}
//
//  3. Бронирования заказа:
//     filter := domain.BookingsFilter{OrderID: &orderID, IncludeInactive: true}
//
// Внутри транзакции выборка по одному корту и дате блокируется (FOR UPDATE)
func (r *Repository) List(ctx context.Context, filter domain.BookingsFilter) ([]*domain.Booking, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	selectBuilder := r.selectBuilder()

	if filter.VenueID != nil {
		selectBuilder = selectBuilder.Where(squirrel.Eq{"b.venue_id": *filter.VenueID})
	}
	if filter.CourtID != nil {
		selectBuilder = selectBuilder.Where(squirrel.Eq{"b.court_id": *filter.CourtID})
	}
	if filter.UserID != nil {
		selectBuilder = selectBuilder.Where(squirrel.Eq{"b.user_id": *filter.UserID})
	}
	if filter.OrderID != nil {
		selectBuilder = selectBuilder.Where(squirrel.Eq{"b.order_id": *filter.OrderID})
	}
	if filter.StartDate != nil {
		selectBuilder = selectBuilder.Where(squirrel.GtOrEq{"b.booking_date": *filter.StartDate})
	}
	if filter.EndDate != nil {
		selectBuilder = selectBuilder.Where(squirrel.LtOrEq{"b.booking_date": *filter.EndDate})
	}

	// Статус важнее флага IncludeInactive
	if filter.Status != nil {
		selectBuilder = selectBuilder.Where(squirrel.Eq{"b.status": *filter.Status})
	} else if !filter.IncludeInactive {
		selectBuilder = selectBuilder.Where(squirrel.Eq{"b.status": domain.ActiveStatuses})
	}

	// Pending бронирование с истёкшим заказом уже не держит слот, даже если cron ещё не отработал
	if filter.HoldsValidAt != nil {
		selectBuilder = selectBuilder.Where(squirrel.Or{
			squirrel.NotEq{"b.status": domain.StatusPending},
			squirrel.Eq{"o.expires_at": nil},
			squirrel.Gt{"o.expires_at": *filter.HoldsValidAt},
		})
	}

	if filter.IsSingleDay() {
		selectBuilder = selectBuilder.OrderBy("b.start_time ASC", "b.court_id ASC")
	} else {
		selectBuilder = selectBuilder.OrderBy("b.booking_date DESC", "b.start_time DESC")
	}

	if dbmetrics.IsInTransaction(ctx) && filter.IsSingleDay() && filter.CourtID != nil {
		selectBuilder = selectBuilder.Suffix("FOR UPDATE OF b")
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

	return scanBookings(rows)
}

// UpdateStatus обновляет статус бронирования
func (r *Repository) UpdateStatus(ctx context.Context, id int64, status domain.BookingStatus) error {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Update("bookings").
		Set("status", status).
		Set("updated_at", squirrel.Expr("NOW()")).
		Where(squirrel.Eq{"id": id}).
		ToSql()

	if err != nil {
		return fmt.Errorf("%w: UpdateStatus - build update query: %w", ErrBuildQuery, err)
	}

	return r.execAffectingOne(ctx, executor, "UpdateStatus", query, args)
}

// UpdateStatusByOrder переводит бронирования заказа из статусов from в статус to
// Возвращает количество обновлённых строк
func (r *Repository) UpdateStatusByOrder(ctx context.Context, orderID int64, from []domain.BookingStatus, to domain.BookingStatus) (int64, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Update("bookings").
		Set("status", to).
		Set("updated_at", squirrel.Expr("NOW()")).
		Where(squirrel.Eq{"order_id": orderID}).
		Where(squirrel.Eq{"status": from}).
		ToSql()

	if err != nil {
		return 0, fmt.Errorf("%w: UpdateStatusByOrder - build update query: %w", ErrBuildQuery, err)
	}

	result, err := executor.ExecContext(ctx, query, args...)
	if err != nil {
		return 0, fmt.Errorf("%w: UpdateStatusByOrder - execute update: %w", ErrExecQuery, err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("%w: UpdateStatusByOrder - get rows affected: %w", ErrExecQuery, err)
	}

	return affected, nil
}

// Cancel отменяет бронирование с указанием причины
func (r *Repository) Cancel(ctx context.Context, id int64, status domain.BookingStatus, reason *string) error {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Update("bookings").
		Set("status", status).
		Set("cancellation_reason", reason).
		Set("cancelled_at", squirrel.Expr("NOW()")).
		Set("updated_at", squirrel.Expr("NOW()")).
		Where(squirrel.Eq{"id": id}).
		ToSql()

	if err != nil {
		return fmt.Errorf("%w: Cancel - build update query: %w", ErrBuildQuery, err)
	}

	return r.execAffectingOne(ctx, executor, "Cancel", query, args)
}

func (r *Repository) selectBuilder() squirrel.SelectBuilder {
	return psqlbuilder.Select(bookingColumns...).
		From("bookings b").
		Join("orders o ON o.id = b.order_id")
}

func (r *Repository) execAffectingOne(ctx context.Context, executor DBExecutor, op, query string, args []interface{}) error {
	result, err := executor.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("%w: %s - execute update: %w", ErrExecQuery, op, err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("%w: %s - get rows affected: %w", ErrExecQuery, op, err)
	}

	if rowsAffected == 0 {
		return ErrBookingNotFound
	}

	return nil
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanBooking(row rowScanner) (*domain.Booking, error) {
	var booking domain.Booking

	err := row.Scan(
		&booking.ID,
		&booking.OrderID,
		&booking.CourtID,
		&booking.VenueID,
		&booking.UserID,
		&booking.CustomerName,
		&booking.CustomerPhone,
		&booking.BookingDate,
		&booking.StartTime,
		&booking.DurationMinutes,
		&booking.Price,
		&booking.Status,
		&booking.Source,
		&booking.Notes,
		&booking.CancellationReason,
		&booking.CancelledAt,
		&booking.OrderPublicID,
		&booking.CreatedAt,
		&booking.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	return &booking, nil
}

// scanBookings сканирует результаты запроса в слайс бронирований
func scanBookings(rows *sql.Rows) ([]*domain.Booking, error) {
	bookings := make([]*domain.Booking, 0)

	for rows.Next() {
		booking, err := scanBooking(rows)
		if err != nil {
			return nil, fmt.Errorf("%w: scanBookings - scan row: %w", ErrScanRow, err)
		}
		bookings = append(bookings, booking)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: scanBookings - rows error: %w", ErrScanRow, err)
	}

	return bookings, nil
}
