package court

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

var blockColumns = []string{
	"id",
	"court_id",
	"block_date",
	"start_time::text",
	"end_time::text",
	"reason",
	"source",
	"external_id",
	"created_at",
}

// CreateBlock создает блокировку корта
func (r *Repository) CreateBlock(ctx context.Context, block *domain.CourtBlock) (*domain.CourtBlock, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Insert("court_blocks").
		Columns("court_id", "block_date", "start_time", "end_time", "reason", "source", "external_id").
		Values(block.CourtID, block.BlockDate, block.StartTime, block.EndTime, block.Reason, block.Source, block.ExternalID).
		Suffix("RETURNING id, created_at").
		ToSql()

	if err != nil {
		return nil, fmt.Errorf("%w: CreateBlock - build insert query: %w", ErrBuildQuery, err)
	}

	err = executor.QueryRowContext(ctx, query, args...).Scan(&block.ID, &block.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("%w: CreateBlock - execute insert: %w", ErrExecQuery, err)
	}

	return block, nil
}

// UpsertExternalBlock создает или обновляет блокировку, пришедшую от внешнего провайдера
// Ключ: (court_id, external_id)
func (r *Repository) UpsertExternalBlock(ctx context.Context, block *domain.CourtBlock) error {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Insert("court_blocks").
		Columns("court_id", "block_date", "start_time", "end_time", "reason", "source", "external_id").
		Values(block.CourtID, block.BlockDate, block.StartTime, block.EndTime, block.Reason, domain.BlockExternal, block.ExternalID).
		Suffix("ON CONFLICT (court_id, external_id) DO UPDATE SET " +
			"block_date = EXCLUDED.block_date, start_time = EXCLUDED.start_time, " +
			"end_time = EXCLUDED.end_time, reason = EXCLUDED.reason").
		ToSql()

	if err != nil {
		return fmt.Errorf("%w: UpsertExternalBlock - build insert query: %w", ErrBuildQuery, err)
	}

	if _, err := executor.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("%w: UpsertExternalBlock - execute insert: %w", ErrExecQuery, err)
	}

	return nil
}

// DeleteStaleExternalBlocks удаляет внешние блокировки корта за период, которых нет в keep
func (r *Repository) DeleteStaleExternalBlocks(ctx context.Context, courtID int64, from, to time.Time, keep []string) (int64, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	deleteBuilder := psqlbuilder.Delete("court_blocks").
		Where(squirrel.Eq{"court_id": courtID, "source": domain.BlockExternal}).
		Where(squirrel.GtOrEq{"block_date": from}).
		Where(squirrel.LtOrEq{"block_date": to})

	if len(keep) > 0 {
		deleteBuilder = deleteBuilder.Where(squirrel.NotEq{"external_id": keep})
	}

	query, args, err := deleteBuilder.ToSql()
	if err != nil {
		return 0, fmt.Errorf("%w: DeleteStaleExternalBlocks - build delete query: %w", ErrBuildQuery, err)
	}

	result, err := executor.ExecContext(ctx, query, args...)
	if err != nil {
		return 0, fmt.Errorf("%w: DeleteStaleExternalBlocks - execute delete: %w", ErrExecQuery, err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("%w: DeleteStaleExternalBlocks - get rows affected: %w", ErrExecQuery, err)
	}

	return affected, nil
}

// GetBlock получает блокировку по ID
func (r *Repository) GetBlock(ctx context.Context, id int64) (*domain.CourtBlock, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Select(blockColumns...).
		From("court_blocks").
		Where(squirrel.Eq{"id": id}).
		ToSql()

	if err != nil {
		return nil, fmt.Errorf("%w: GetBlock - build select query: %w", ErrBuildQuery, err)
	}

	block, err := scanBlock(executor.QueryRowContext(ctx, query, args...))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrBlockNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("%w: GetBlock - scan block: %w", ErrScanRow, err)
	}

	return block, nil
}

// ListBlocks получает блокировки корта за период (включительно)
func (r *Repository) ListBlocks(ctx context.Context, courtID int64, from, to time.Time) ([]*domain.CourtBlock, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Select(blockColumns...).
		From("court_blocks").
		Where(squirrel.Eq{"court_id": courtID}).
		Where(squirrel.GtOrEq{"block_date": from}).
		Where(squirrel.LtOrEq{"block_date": to}).
		OrderBy("block_date ASC", "start_time ASC").
		ToSql()

	if err != nil {
		return nil, fmt.Errorf("%w: ListBlocks - build select query: %w", ErrBuildQuery, err)
	}

	rows, err := executor.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%w: ListBlocks - execute query: %w", ErrExecQuery, err)
	}
	defer rows.Close()

	blocks := make([]*domain.CourtBlock, 0)
	for rows.Next() {
		b, err := scanBlock(rows)
		if err != nil {
			return nil, fmt.Errorf("%w: ListBlocks - scan row: %w", ErrScanRow, err)
		}
		blocks = append(blocks, b)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: ListBlocks - rows error: %w", ErrScanRow, err)
	}

	return blocks, nil
}

// DeleteBlock удаляет блокировку
func (r *Repository) DeleteBlock(ctx context.Context, id int64) error {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Delete("court_blocks").
		Where(squirrel.Eq{"id": id}).
		ToSql()

	if err != nil {
		return fmt.Errorf("%w: DeleteBlock - build delete query: %w", ErrBuildQuery, err)
	}

	result, err := executor.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("%w: DeleteBlock - execute delete: %w", ErrExecQuery, err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("%w: DeleteBlock - get rows affected: %w", ErrExecQuery, err)
	}

	if rowsAffected == 0 {
		return ErrBlockNotFound
	}

	return nil
}

func scanBlock(row rowScanner) (*domain.CourtBlock, error) {
	var b domain.CourtBlock
	err := row.Scan(
		&b.ID,
		&b.CourtID,
		&b.BlockDate,
		&b.StartTime,
		&b.EndTime,
		&b.Reason,
		&b.Source,
		&b.ExternalID,
		&b.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &b, nil
}
