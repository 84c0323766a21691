package create_manual_booking

import "errors"

var (
	// ErrCourtNotFound возвращается, когда корт не найден или выключен
	ErrCourtNotFound = errors.New("create_manual_booking: court not found")

	// ErrAccessDenied возвращается, когда пользователь не менеджер площадки
	ErrAccessDenied = errors.New("create_manual_booking: access denied")

	// ErrInvalidDate возвращается при бронировании на прошедшее время
	ErrInvalidDate = errors.New("create_manual_booking: invalid booking date")

	// ErrDateTooFarInFuture возвращается, когда дата превышает ограничение advance_days
	ErrDateTooFarInFuture = errors.New("create_manual_booking: date is too far in the future")

	// ErrInvalidTimeSlot возвращается, когда время не на сетке слотов или вне часов работы корта
	ErrInvalidTimeSlot = errors.New("create_manual_booking: invalid time slot")

	// ErrSlotNotAvailable возвращается, когда слот занят или заблокирован
	ErrSlotNotAvailable = errors.New("create_manual_booking: slot is not available")

	// ErrInvalidInput возвращается при некорректных входных данных
	ErrInvalidInput = errors.New("create_manual_booking: invalid input data")

	// ErrInternal возвращается при внутренних ошибках usecase
	ErrInternal = errors.New("create_manual_booking: internal error")
)
