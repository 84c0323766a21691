package payment_webhook

import "context"

type OrderService interface {
	HandleWebhook(ctx context.Context, payload []byte, signature string) error
}

type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
