package stripegateway

import "errors"

var (
	// ErrStripeAPI возвращается при ошибке вызова Stripe API
	ErrStripeAPI = errors.New("stripe gateway: api error")

	// ErrInvalidSignature возвращается, если подпись вебхука не прошла проверку
	ErrInvalidSignature = errors.New("stripe gateway: invalid webhook signature")

	// ErrInvalidPayload возвращается, если тело события не удалось разобрать
	ErrInvalidPayload = errors.New("stripe gateway: invalid webhook payload")
)
