package payment_webhook

import (
	"errors"
	"io"
	"net/http"

	"github.com/m04kA/SMC-CourtBooking/internal/api/handlers"
	"github.com/m04kA/SMC-CourtBooking/internal/service/orders"
)

// Stripe ограничивает размер события 64KB
const maxPayloadBytes = 65536

const (
	signatureHeader = "Stripe-Signature"

	msgInvalidPayload   = "некорректное тело вебхука"
	msgInvalidSignature = "некорректная подпись вебхука"
)

type Handler struct {
	service OrderService
	logger  Logger
}

func NewHandler(service OrderService, logger Logger) *Handler {
	return &Handler{
		service: service,
		logger:  logger,
	}
}

// Handle POST /api/v1/payments/webhook
// Вызывается платёжным провайдером; подлинность проверяется по подписи, а не по токену
// Ошибка 5xx заставляет провайдера повторить доставку
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	payload, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxPayloadBytes))
	if err != nil {
		h.logger.Warn("POST /payments/webhook - Failed to read payload: %v", err)
		handlers.RespondBadRequest(w, msgInvalidPayload)
		return
	}

	signature := r.Header.Get(signatureHeader)
	if signature == "" {
		h.logger.Warn("POST /payments/webhook - Missing signature header")
		handlers.RespondBadRequest(w, msgInvalidSignature)
		return
	}

	if err := h.service.HandleWebhook(r.Context(), payload, signature); err != nil {
		switch {
		case errors.Is(err, orders.ErrInvalidWebhook):
			h.logger.Warn("POST /payments/webhook - Rejected webhook: %v", err)
			handlers.RespondBadRequest(w, msgInvalidSignature)

		default:
			h.logger.Error("POST /payments/webhook - Failed to process webhook: %v", err)
			handlers.RespondInternalError(w)
		}
		return
	}

	handlers.RespondJSON(w, http.StatusOK, nil)
}
