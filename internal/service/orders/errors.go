package orders

import "errors"

var (
	// ErrOrderNotFound возвращается, когда заказ не найден
	ErrOrderNotFound = errors.New("order not found")

	// ErrAccessDenied возвращается, когда у пользователя нет прав доступа
	ErrAccessDenied = errors.New("access denied")

	// ErrInvalidWebhook возвращается при неверной подписи или теле вебхука
	ErrInvalidWebhook = errors.New("invalid webhook payload or signature")

	// ErrPaymentProvider возвращается, когда платёжный провайдер не смог выполнить операцию
	ErrPaymentProvider = errors.New("payment provider error")

	// ErrInternal возвращается при внутренних ошибках сервиса
	ErrInternal = errors.New("orders service: internal error")
)
