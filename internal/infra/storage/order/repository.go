package order

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/Masterminds/squirrel"

	"github.com/m04kA/SMC-CourtBooking/internal/domain"
	"github.com/m04kA/SMC-CourtBooking/pkg/dbmetrics"
	"github.com/m04kA/SMC-CourtBooking/pkg/psqlbuilder"
)

var orderColumns = []string{
	"id",
	"public_id",
	"user_id",
	"venue_id",
	"total_amount",
	"currency",
	"status",
	"payment_method",
	"expires_at",
	"paid_at",
	"created_at",
	"updated_at",
}

var paymentColumns = []string{
	"id",
	"order_id",
	"provider",
	"provider_ref",
	"amount",
	"currency",
	"status",
	"failure_reason",
	"created_at",
	"updated_at",
}

// Repository репозиторий заказов и платежей
type Repository struct {
	db DBExecutor
}

// NewRepository создает новый экземпляр репозитория заказов
func NewRepository(db DBExecutor) *Repository {
	return &Repository{db: db}
}

// Create создает заказ
func (r *Repository) Create(ctx context.Context, order *domain.Order) (*domain.Order, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Insert("orders").
		Columns(
			"public_id",
			"user_id",
			"venue_id",
			"total_amount",
			"currency",
			"status",
			"payment_method",
			"expires_at",
			"paid_at",
		).
		Values(
			order.PublicID,
			order.UserID,
			order.VenueID,
			order.TotalAmount,
			order.Currency,
			order.Status,
			order.PaymentMethod,
			order.ExpiresAt,
			order.PaidAt,
		).
		Suffix("RETURNING id, created_at, updated_at").
		ToSql()

	if err != nil {
		return nil, fmt.Errorf("%w: Create - build insert query: %w", ErrBuildQuery, err)
	}

	err = executor.QueryRowContext(ctx, query, args...).Scan(&order.ID, &order.CreatedAt, &order.UpdatedAt)
	if err != nil {
		return nil, fmt.Errorf("%w: Create - execute insert: %w", ErrExecQuery, err)
	}

	return order, nil
}

// GetByID получает заказ по ID
// Внутри транзакции строка блокируется (FOR UPDATE)
func (r *Repository) GetByID(ctx context.Context, id int64) (*domain.Order, error) {
	return r.getOne(ctx, "GetByID", squirrel.Eq{"id": id})
}

// GetByPublicID получает заказ по публичному UUID
func (r *Repository) GetByPublicID(ctx context.Context, publicID string) (*domain.Order, error) {
	return r.getOne(ctx, "GetByPublicID", squirrel.Eq{"public_id": publicID})
}

func (r *Repository) getOne(ctx context.Context, op string, where squirrel.Sqlizer) (*domain.Order, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	selectBuilder := psqlbuilder.Select(orderColumns...).
		From("orders").
		Where(where)

	if dbmetrics.IsInTransaction(ctx) {
		selectBuilder = selectBuilder.Suffix("FOR UPDATE")
	}

	query, args, err := selectBuilder.ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: %s - build select query: %w", ErrBuildQuery, op, err)
	}

	order, err := scanOrder(executor.QueryRowContext(ctx, query, args...))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrOrderNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %s - scan order: %w", ErrScanRow, op, err)
	}

	return order, nil
}

// ListExpired возвращает ID pending заказов с истёкшим сроком оплаты
func (r *Repository) ListExpired(ctx context.Context, now time.Time, limit uint64) ([]int64, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Select("id").
		From("orders").
		Where(squirrel.Eq{"status": domain.OrderPending}).
		Where(squirrel.Lt{"expires_at": now}).
		OrderBy("expires_at ASC").
		Limit(limit).
		ToSql()

	if err != nil {
		return nil, fmt.Errorf("%w: ListExpired - build select query: %w", ErrBuildQuery, err)
	}

	rows, err := executor.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%w: ListExpired - execute query: %w", ErrExecQuery, err)
	}
	defer rows.Close()

	ids := make([]int64, 0)
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("%w: ListExpired - scan id: %w", ErrScanRow, err)
		}
		ids = append(ids, id)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: ListExpired - rows error: %w", ErrScanRow, err)
	}

	return ids, nil
}

// UpdateStatus переводит заказ из статуса from в статус to
// Если заказ уже в другом статусе, возвращает ErrStatusConflict
func (r *Repository) UpdateStatus(ctx context.Context, id int64, from, to domain.OrderStatus) error {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	updateBuilder := psqlbuilder.Update("orders").
		Set("status", to).
		Set("updated_at", squirrel.Expr("NOW()")).
		Where(squirrel.Eq{"id": id, "status": from})

	if to == domain.OrderPaid {
		updateBuilder = updateBuilder.Set("paid_at", squirrel.Expr("NOW()"))
	}

	query, args, err := updateBuilder.ToSql()
	if err != nil {
		return fmt.Errorf("%w: UpdateStatus - build update query: %w", ErrBuildQuery, err)
	}

	result, err := executor.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("%w: UpdateStatus - execute update: %w", ErrExecQuery, err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("%w: UpdateStatus - get rows affected: %w", ErrExecQuery, err)
	}

	if rowsAffected == 0 {
		return ErrStatusConflict
	}

	return nil
}

// CreatePayment сохраняет попытку оплаты
func (r *Repository) CreatePayment(ctx context.Context, payment *domain.Payment) (*domain.Payment, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Insert("payments").
		Columns(
			"order_id",
			"provider",
			"provider_ref",
			"amount",
			"currency",
			"status",
			"failure_reason",
		).
		Values(
			payment.OrderID,
			payment.Provider,
			payment.ProviderRef,
			payment.Amount,
			payment.Currency,
			payment.Status,
			payment.FailureReason,
		).
		Suffix("RETURNING id, created_at, updated_at").
		ToSql()

	if err != nil {
		return nil, fmt.Errorf("%w: CreatePayment - build insert query: %w", ErrBuildQuery, err)
	}

	err = executor.QueryRowContext(ctx, query, args...).Scan(&payment.ID, &payment.CreatedAt, &payment.UpdatedAt)
	if err != nil {
		return nil, fmt.Errorf("%w: CreatePayment - execute insert: %w", ErrExecQuery, err)
	}

	return payment, nil
}

// GetPaymentByProviderRef получает платёж по ID у провайдера
func (r *Repository) GetPaymentByProviderRef(ctx context.Context, provider domain.PaymentProvider, ref string) (*domain.Payment, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Select(paymentColumns...).
		From("payments").
		Where(squirrel.Eq{"provider": provider, "provider_ref": ref}).
		ToSql()

	if err != nil {
		return nil, fmt.Errorf("%w: GetPaymentByProviderRef - build select query: %w", ErrBuildQuery, err)
	}

	payment, err := scanPayment(executor.QueryRowContext(ctx, query, args...))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrPaymentNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("%w: GetPaymentByProviderRef - scan payment: %w", ErrScanRow, err)
	}

	return payment, nil
}

// ListPayments возвращает платежи заказа, новые последними
func (r *Repository) ListPayments(ctx context.Context, orderID int64) ([]*domain.Payment, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Select(paymentColumns...).
		From("payments").
		Where(squirrel.Eq{"order_id": orderID}).
		OrderBy("id ASC").
		ToSql()

	if err != nil {
		return nil, fmt.Errorf("%w: ListPayments - build select query: %w", ErrBuildQuery, err)
	}

	rows, err := executor.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%w: ListPayments - execute query: %w", ErrExecQuery, err)
	}
	defer rows.Close()

	payments := make([]*domain.Payment, 0)
	for rows.Next() {
		p, err := scanPayment(rows)
		if err != nil {
			return nil, fmt.Errorf("%w: ListPayments - scan row: %w", ErrScanRow, err)
		}
		payments = append(payments, p)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: ListPayments - rows error: %w", ErrScanRow, err)
	}

	return payments, nil
}

// UpdatePaymentStatus обновляет статус платежа и причину ошибки
func (r *Repository) UpdatePaymentStatus(ctx context.Context, id int64, status domain.PaymentStatus, failureReason *string) error {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Update("payments").
		Set("status", status).
		Set("failure_reason", failureReason).
		Set("updated_at", squirrel.Expr("NOW()")).
		Where(squirrel.Eq{"id": id}).
		ToSql()

	if err != nil {
		return fmt.Errorf("%w: UpdatePaymentStatus - build update query: %w", ErrBuildQuery, err)
	}

	result, err := executor.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("%w: UpdatePaymentStatus - execute update: %w", ErrExecQuery, err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("%w: UpdatePaymentStatus - get rows affected: %w", ErrExecQuery, err)
	}

	if rowsAffected == 0 {
		return ErrPaymentNotFound
	}

	return nil
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanOrder(row rowScanner) (*domain.Order, error) {
	var o domain.Order
	err := row.Scan(
		&o.ID,
		&o.PublicID,
		&o.UserID,
		&o.VenueID,
		&o.TotalAmount,
		&o.Currency,
		&o.Status,
		&o.PaymentMethod,
		&o.ExpiresAt,
		&o.PaidAt,
		&o.CreatedAt,
		&o.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &o, nil
}

func scanPayment(row rowScanner) (*domain.Payment, error) {
	var p domain.Payment
	err := row.Scan(
		&p.ID,
		&p.OrderID,
		&p.Provider,
		&p.ProviderRef,
		&p.Amount,
		&p.Currency,
		&p.Status,
		&p.FailureReason,
		&p.CreatedAt,
		&p.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &p, nil
}
