package stripegateway

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/stripe/stripe-go/v82"
	"github.com/stripe/stripe-go/v82/client"
	"github.com/stripe/stripe-go/v82/webhook"
)

// Client клиент Stripe: платежи, возвраты и проверка вебхуков
type Client struct {
	api           *client.API
	webhookSecret string
	log           Logger
}

// NewClient создает новый экземпляр клиента Stripe
func NewClient(secretKey, webhookSecret string, log Logger) *Client {
	return NewClientWithBackends(secretKey, webhookSecret, nil, log)
}

// NewClientWithBackends создает клиента с собственными backend'ами Stripe (для тестов)
func NewClientWithBackends(secretKey, webhookSecret string, backends *stripe.Backends, log Logger) *Client {
	return &Client{
		api:           client.New(secretKey, backends),
		webhookSecret: webhookSecret,
		log:           log,
	}
}

// CreatePaymentIntent создает PaymentIntent на сумму заказа
func (c *Client) CreatePaymentIntent(ctx context.Context, req PaymentIntentRequest) (*PaymentIntent, error) {
	params := &stripe.PaymentIntentParams{
		Amount:   stripe.Int64(req.Amount),
		Currency: stripe.String(req.Currency),
		AutomaticPaymentMethods: &stripe.PaymentIntentAutomaticPaymentMethodsParams{
			Enabled: stripe.Bool(true),
		},
		Metadata: map[string]string{
			MetadataOrderID:       strconv.FormatInt(req.OrderID, 10),
			MetadataOrderPublicID: req.OrderPublicID,
		},
	}
	if req.Description != "" {
		params.Description = stripe.String(req.Description)
	}
	params.Context = ctx
	if req.IdempotencyKey != "" {
		params.SetIdempotencyKey(req.IdempotencyKey)
	}

	pi, err := c.api.PaymentIntents.New(params)
	if err != nil {
		c.log.Error("Stripe: failed to create payment intent for order=%s: %v", req.OrderPublicID, err)
		return nil, fmt.Errorf("%w: create payment intent: %v", ErrStripeAPI, err)
	}

	c.log.Info("Stripe: payment intent %s created for order=%s, amount=%d %s", pi.ID, req.OrderPublicID, pi.Amount, pi.Currency)

	return &PaymentIntent{
		ID:           pi.ID,
		ClientSecret: pi.ClientSecret,
		Status:       string(pi.Status),
		Amount:       pi.Amount,
		Currency:     string(pi.Currency),
	}, nil
}

// Refund возвращает amount по PaymentIntent; amount <= 0 означает полный возврат
func (c *Client) Refund(ctx context.Context, paymentIntentID string, amount int64, idempotencyKey string) (*Refund, error) {
	params := &stripe.RefundParams{
		PaymentIntent: stripe.String(paymentIntentID),
		Reason:        stripe.String(string(stripe.RefundReasonRequestedByCustomer)),
	}
	if amount > 0 {
		params.Amount = stripe.Int64(amount)
	}
	params.Context = ctx
	if idempotencyKey != "" {
		params.SetIdempotencyKey(idempotencyKey)
	}

	refund, err := c.api.Refunds.New(params)
	if err != nil {
		c.log.Error("Stripe: refund failed for payment intent %s: %v", paymentIntentID, err)
		return nil, fmt.Errorf("%w: refund: %v", ErrStripeAPI, err)
	}

	c.log.Info("Stripe: refund %s created for payment intent %s, amount=%d", refund.ID, paymentIntentID, refund.Amount)

	return &Refund{
		ID:     refund.ID,
		Amount: refund.Amount,
		Status: string(refund.Status),
	}, nil
}

// ParseWebhook проверяет подпись и разбирает событие вебхука
func (c *Client) ParseWebhook(payload []byte, signature string) (*WebhookEvent, error) {
	event, err := webhook.ConstructEventWithOptions(payload, signature, c.webhookSecret, webhook.ConstructEventOptions{
		IgnoreAPIVersionMismatch: true,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidSignature, err)
	}

	result := &WebhookEvent{
		ID:   event.ID,
		Type: string(event.Type),
	}

	if !result.IsPaymentEvent() || event.Data == nil {
		return result, nil
	}

	var pi stripe.PaymentIntent
	if err := json.Unmarshal(event.Data.Raw, &pi); err != nil {
		return nil, fmt.Errorf("%w: payment intent: %v", ErrInvalidPayload, err)
	}

	result.PaymentIntentID = pi.ID
	result.OrderPublicID = pi.Metadata[MetadataOrderPublicID]
	result.Amount = pi.Amount
	if pi.LastPaymentError != nil {
		result.FailureReason = pi.LastPaymentError.Msg
	}
	if result.FailureReason == "" && result.Type == EventPaymentCanceled {
		result.FailureReason = string(pi.CancellationReason)
	}

	return result, nil
}
