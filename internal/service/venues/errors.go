package venues

import "errors"

var (
	// ErrVenueNotFound возвращается, когда площадка не найдена
	ErrVenueNotFound = errors.New("venue not found")

	// ErrCourtNotFound возвращается, когда корт не найден
	ErrCourtNotFound = errors.New("court not found")

	// ErrBlockNotFound возвращается, когда блокировка не найдена
	ErrBlockNotFound = errors.New("block not found")

	// ErrAccessDenied возвращается, когда у пользователя нет прав доступа
	ErrAccessDenied = errors.New("access denied")

	// ErrInvalidInput возвращается при некорректных входных данных
	ErrInvalidInput = errors.New("invalid input data")

	// ErrBlockConflict возвращается, когда блокировка пересекается с активным бронированием
	ErrBlockConflict = errors.New("block overlaps an active booking")

	// ErrExternalBlock возвращается при попытке вручную удалить синхронизированную блокировку
	ErrExternalBlock = errors.New("external block is managed by field sync")

	// ErrInternal возвращается при внутренних ошибках сервиса
	ErrInternal = errors.New("venues service: internal error")
)
