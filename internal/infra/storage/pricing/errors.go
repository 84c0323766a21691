package pricing

import "errors"

var (
	// ErrPriceNotFound возвращается, когда правило цены не найдено
	ErrPriceNotFound = errors.New("pricing.repository: price rule not found")

	// ErrBuildQuery возвращается при ошибке построения SQL запроса
	ErrBuildQuery = errors.New("pricing.repository: failed to build query")

	// ErrExecQuery возвращается при ошибке выполнения SQL запроса
	ErrExecQuery = errors.New("pricing.repository: failed to execute query")

	// ErrScanRow возвращается при ошибке сканирования результата запроса
	ErrScanRow = errors.New("pricing.repository: failed to scan row")
)
