package create_booking

import "errors"

var (
	// ErrCourtNotFound возвращается, когда корт не найден или выключен
	ErrCourtNotFound = errors.New("create_booking: court not found")

	// ErrMixedVenues возвращается, когда позиции заказа относятся к разным площадкам
	ErrMixedVenues = errors.New("create_booking: all courts must belong to the same venue")

	// ErrInvalidDate возвращается при бронировании на прошедшую дату
	ErrInvalidDate = errors.New("create_booking: invalid booking date")

	// ErrDateTooFarInFuture возвращается, когда дата превышает ограничение advance_days
	ErrDateTooFarInFuture = errors.New("create_booking: date is too far in the future")

	// ErrInvalidTimeSlot возвращается, когда время не на сетке слотов или вне часов работы корта
	ErrInvalidTimeSlot = errors.New("create_booking: invalid time slot")

	// ErrTooLateToBook возвращается, когда попытка забронировать слот нарушает min_notice_minutes
	ErrTooLateToBook = errors.New("create_booking: too late to book this slot")

	// ErrSlotNotAvailable возвращается, когда слот занят или заблокирован
	ErrSlotNotAvailable = errors.New("create_booking: slot is not available")

	// ErrOverlappingItems возвращается, когда позиции заказа пересекаются между собой
	ErrOverlappingItems = errors.New("create_booking: order items overlap each other")

	// ErrPaymentProvider возвращается, когда платёжный провайдер не создал платёж
	ErrPaymentProvider = errors.New("create_booking: payment provider error")

	// ErrInvalidInput возвращается при некорректных входных данных
	ErrInvalidInput = errors.New("create_booking: invalid input data")

	// ErrInternal возвращается при внутренних ошибках usecase
	ErrInternal = errors.New("create_booking: internal error")
)
