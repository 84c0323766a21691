package stripegateway

// Метаданные PaymentIntent
const (
	MetadataOrderID       = "order_id"
	MetadataOrderPublicID = "order_public_id"
)

// Типы событий вебхука, которые обрабатывает сервис
const (
	EventPaymentSucceeded = "payment_intent.succeeded"
	EventPaymentFailed    = "payment_intent.payment_failed"
	EventPaymentCanceled  = "payment_intent.canceled"
)

// PaymentIntentRequest параметры создания платежа
type PaymentIntentRequest struct {
	OrderID        int64
	OrderPublicID  string
	Amount         int64 // в минимальных единицах валюты
	Currency       string
	Description    string
	IdempotencyKey string
}

// PaymentIntent созданный платеж
type PaymentIntent struct {
	ID           string
	ClientSecret string
	Status       string
	Amount       int64
	Currency     string
}

// Refund результат возврата
type Refund struct {
	ID     string
	Amount int64
	Status string
}

// WebhookEvent проверенное событие платежного провайдера
type WebhookEvent struct {
	ID              string
	Type            string
	PaymentIntentID string
	OrderPublicID   string
	Amount          int64
	FailureReason   string
}

// IsPaymentEvent возвращает true для событий жизненного цикла PaymentIntent
func (e *WebhookEvent) IsPaymentEvent() bool {
	switch e.Type {
	case EventPaymentSucceeded, EventPaymentFailed, EventPaymentCanceled:
		return true
	}
	return false
}
