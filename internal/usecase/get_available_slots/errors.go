package get_available_slots

import "errors"

var (
	// ErrCourtNotFound возвращается, когда корт не найден или выключен
	ErrCourtNotFound = errors.New("court not found")

	// ErrDateTooFarInFuture возвращается, когда дата превышает ограничение advance_days
	ErrDateTooFarInFuture = errors.New("date is too far in the future")

	// ErrInvalidInput возвращается при некорректных входных данных
	ErrInvalidInput = errors.New("invalid input data")

	// ErrInternal возвращается при внутренних ошибках usecase
	ErrInternal = errors.New("usecase: internal error")
)
