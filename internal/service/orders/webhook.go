package orders

import (
	"context"
	"errors"
	"fmt"

	"github.com/m04kA/SMC-CourtBooking/internal/domain"
	orderRepo "github.com/m04kA/SMC-CourtBooking/internal/infra/storage/order"
	"github.com/m04kA/SMC-CourtBooking/internal/integrations/events"
	"github.com/m04kA/SMC-CourtBooking/internal/integrations/stripegateway"
	"github.com/m04kA/SMC-CourtBooking/pkg/ptr"
)

// Результаты обработки вебхука для метрик
const (
	webhookProcessed = "processed"
	webhookDuplicate = "duplicate"
	webhookIgnored   = "ignored"
	webhookFailed    = "failed"
)

// webhookOutcome итог обработки события для действий после коммита
type webhookOutcome struct {
	order    *domain.Order
	bookings []*domain.Booking
	status   domain.OrderStatus // итоговый статус заказа, пустой если не менялся
	refunded bool
}

// HandleWebhook проверяет подпись события платёжного провайдера и применяет его к заказу.
// Событие обрабатывается не более одного раза: ID события захватывается в Redis,
// при ошибке обработки захват снимается, чтобы провайдер мог повторить доставку
func (s *Service) HandleWebhook(ctx context.Context, payload []byte, signature string) error {
	event, err := s.gateway.ParseWebhook(payload, signature)
	if err != nil {
		s.logger.Warn("HandleWebhook: rejected event: %v", err)
		s.metrics.IncWebhookEvent("unknown", "rejected")
		return fmt.Errorf("%w: %v", ErrInvalidWebhook, err)
	}

	if !event.IsPaymentEvent() {
		s.logger.Info("HandleWebhook: ignoring event %s of type %s", event.ID, event.Type)
		s.metrics.IncWebhookEvent(event.Type, webhookIgnored)
		return nil
	}

	claimed, err := s.idempotency.Claim(ctx, event.ID)
	if err != nil {
		s.logger.Error("HandleWebhook: failed to claim event %s: %v", event.ID, err)
		return fmt.Errorf("%w: HandleWebhook - idempotency store: %v", ErrInternal, err)
	}
	if !claimed {
		s.logger.Info("HandleWebhook: event %s already processed", event.ID)
		s.metrics.IncWebhookEvent(event.Type, webhookDuplicate)
		return nil
	}

	outcome, err := s.applyEvent(ctx, event)
	if err != nil {
		if releaseErr := s.idempotency.Release(ctx, event.ID); releaseErr != nil {
			s.logger.Error("HandleWebhook: failed to release event %s: %v", event.ID, releaseErr)
		}
		s.metrics.IncWebhookEvent(event.Type, webhookFailed)
		s.logger.Error("HandleWebhook: failed to process event %s (%s): %v", event.ID, event.Type, err)
		return fmt.Errorf("%w: HandleWebhook - %v", ErrInternal, err)
	}

	s.metrics.IncWebhookEvent(event.Type, webhookProcessed)
	s.afterWebhook(ctx, outcome)
	return nil
}

func (s *Service) applyEvent(ctx context.Context, event *stripegateway.WebhookEvent) (*webhookOutcome, error) {
	payment, err := s.orderRepo.GetPaymentByProviderRef(ctx, domain.ProviderStripe, event.PaymentIntentID)
	if err != nil {
		if !errors.Is(err, orderRepo.ErrPaymentNotFound) {
			return nil, err
		}
		if event.Type != stripegateway.EventPaymentSucceeded || event.OrderPublicID == "" {
			s.logger.Warn("HandleWebhook: no payment for intent %s (order %s), skipping",
				event.PaymentIntentID, event.OrderPublicID)
			return nil, nil
		}
		return s.applyUnrecordedSucceeded(ctx, event)
	}

	var outcome *webhookOutcome
	err = s.txManager.DoSerializable(ctx, func(txCtx context.Context) error {
		order, err := s.orderRepo.GetByID(txCtx, payment.OrderID)
		if err != nil {
			return err
		}

		if event.Type == stripegateway.EventPaymentSucceeded {
			outcome, err = s.applySucceeded(txCtx, order, payment)
		} else {
			outcome, err = s.applyFailed(txCtx, order, payment, event.FailureReason)
		}
		return err
	})
	if err != nil {
		return nil, err
	}

	return outcome, nil
}

// applyUnrecordedSucceeded обрабатывает оплату намерения, строка платежа которого не сохранилась при создании заказа.
// Заказ находится по метаданным намерения. Ожидающий оплаты заказ проходит обычное подтверждение,
// заказ в любом другом статусе получает возврат
func (s *Service) applyUnrecordedSucceeded(ctx context.Context, event *stripegateway.WebhookEvent) (*webhookOutcome, error) {
	var outcome *webhookOutcome
	err := s.txManager.DoSerializable(ctx, func(txCtx context.Context) error {
		order, err := s.orderRepo.GetByPublicID(txCtx, event.OrderPublicID)
		if err != nil {
			return err
		}

		amount := event.Amount
		if amount <= 0 {
			amount = order.TotalAmount
		}

		payment, err := s.orderRepo.CreatePayment(txCtx, &domain.Payment{
			OrderID:     order.ID,
			Provider:    domain.ProviderStripe,
			ProviderRef: ptr.Ptr(event.PaymentIntentID),
			Amount:      amount,
			Currency:    order.Currency,
			Status:      domain.PaymentPending,
		})
		if err != nil {
			return err
		}
		s.logger.Warn("HandleWebhook: payment for intent %s of order %s was not recorded, restored as id=%d",
			event.PaymentIntentID, order.PublicID, payment.ID)

		if order.Status == domain.OrderPending {
			outcome, err = s.applySucceeded(txCtx, order, payment)
			return err
		}
		outcome, err = s.refundLatePayment(txCtx, order, payment)
		return err
	})
	if errors.Is(err, orderRepo.ErrOrderNotFound) {
		s.logger.Warn("HandleWebhook: intent %s references unknown order %s, skipping",
			event.PaymentIntentID, event.OrderPublicID)
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	return outcome, nil
}

// applySucceeded подтверждает заказ; поздняя оплата подтверждается, только если слоты ещё свободны
func (s *Service) applySucceeded(ctx context.Context, order *domain.Order, payment *domain.Payment) (*webhookOutcome, error) {
	if order.Status == domain.OrderPaid || order.Status == domain.OrderRefunded {
		s.logger.Info("HandleWebhook: order %s already %s", order.PublicID, order.Status)
		return &webhookOutcome{order: order}, nil
	}

	if err := s.orderRepo.UpdatePaymentStatus(ctx, payment.ID, domain.PaymentSucceeded, nil); err != nil {
		return nil, err
	}

	now := s.timeProvider.Now()
	late := order.Status != domain.OrderPending || order.IsExpiredAt(now)

	if order.Status == domain.OrderCancelled {
		return s.refundLatePayment(ctx, order, payment)
	}

	if late {
		free, err := s.slotsStillFree(ctx, order)
		if err != nil {
			return nil, err
		}
		if !free {
			return s.refundLatePayment(ctx, order, payment)
		}
		s.logger.Info("HandleWebhook: late payment for order %s accepted, slots are still free", order.PublicID)
	}

	if err := s.orderRepo.UpdateStatus(ctx, order.ID, order.Status, domain.OrderPaid); err != nil {
		return nil, err
	}

	if _, err := s.bookingRepo.UpdateStatusByOrder(ctx, order.ID,
		[]domain.BookingStatus{domain.StatusPending, domain.StatusExpired}, domain.StatusConfirmed); err != nil {
		return nil, err
	}

	bookings, err := s.bookingRepo.List(ctx, domain.BookingsFilter{OrderID: &order.ID})
	if err != nil {
		return nil, err
	}

	order.Status = domain.OrderPaid
	s.logger.Info("HandleWebhook: order %s paid, %d bookings confirmed", order.PublicID, len(bookings))
	return &webhookOutcome{order: order, bookings: bookings, status: domain.OrderPaid}, nil
}

// refundLatePayment возвращает деньги за заказ, который уже нельзя подтвердить
func (s *Service) refundLatePayment(ctx context.Context, order *domain.Order, payment *domain.Payment) (*webhookOutcome, error) {
	s.logger.Warn("HandleWebhook: order %s was paid too late, refunding", order.PublicID)

	if order.Status == domain.OrderPending {
		if err := s.orderRepo.UpdateStatus(ctx, order.ID, domain.OrderPending, domain.OrderExpired); err != nil {
			return nil, err
		}
		if _, err := s.bookingRepo.UpdateStatusByOrder(ctx, order.ID,
			[]domain.BookingStatus{domain.StatusPending}, domain.StatusExpired); err != nil {
			return nil, err
		}
		order.Status = domain.OrderExpired
	}

	if err := s.orderRepo.UpdatePaymentStatus(ctx, payment.ID, domain.PaymentRefunded, nil); err != nil {
		return nil, err
	}

	// Возврат последним шагом: ошибка провайдера откатывает транзакцию и событие будет доставлено повторно
	idempotencyKey := "refund-order-" + order.PublicID
	if _, err := s.gateway.Refund(ctx, ptr.Value(payment.ProviderRef), payment.Amount, idempotencyKey); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrPaymentProvider, err)
	}

	return &webhookOutcome{order: order, refunded: true}, nil
}

// applyFailed помечает платёж неуспешным и освобождает слоты неоплаченного заказа
func (s *Service) applyFailed(ctx context.Context, order *domain.Order, payment *domain.Payment, reason string) (*webhookOutcome, error) {
	var failureReason *string
	if reason != "" {
		failureReason = &reason
	}

	if payment.Status == domain.PaymentPending {
		if err := s.orderRepo.UpdatePaymentStatus(ctx, payment.ID, domain.PaymentFailed, failureReason); err != nil {
			return nil, err
		}
	}

	if order.Status != domain.OrderPending {
		s.logger.Info("HandleWebhook: order %s is %s, failure only recorded on payment", order.PublicID, order.Status)
		return &webhookOutcome{order: order}, nil
	}

	if err := s.orderRepo.UpdateStatus(ctx, order.ID, domain.OrderPending, domain.OrderFailed); err != nil {
		return nil, err
	}
	if _, err := s.bookingRepo.UpdateStatusByOrder(ctx, order.ID,
		[]domain.BookingStatus{domain.StatusPending}, domain.StatusExpired); err != nil {
		return nil, err
	}

	order.Status = domain.OrderFailed
	s.logger.Info("HandleWebhook: order %s failed: %s", order.PublicID, reason)
	return &webhookOutcome{order: order, status: domain.OrderFailed}, nil
}

// slotsStillFree проверяет, что никто не занял слоты заказа и их не заблокировали
func (s *Service) slotsStillFree(ctx context.Context, order *domain.Order) (bool, error) {
	own, err := s.bookingRepo.List(ctx, domain.BookingsFilter{OrderID: &order.ID, IncludeInactive: true})
	if err != nil {
		return false, err
	}

	now := s.timeProvider.Now()
	for _, b := range own {
		if b.IsCancelled() {
			continue
		}

		date := b.BookingDate
		others, err := s.bookingRepo.List(ctx, domain.BookingsFilter{
			CourtID:      &b.CourtID,
			StartDate:    &date,
			EndDate:      &date,
			HoldsValidAt: &now,
		})
		if err != nil {
			return false, err
		}
		for _, other := range others {
			if other.OrderID != order.ID && other.Overlaps(b.StartTime, b.EndTime()) {
				return false, nil
			}
		}

		blocks, err := s.courtRepo.ListBlocks(ctx, b.CourtID, date, date)
		if err != nil {
			return false, err
		}
		for _, block := range blocks {
			if block.Overlaps(b.StartTime, b.EndTime()) {
				return false, nil
			}
		}
	}

	return true, nil
}

func (s *Service) afterWebhook(ctx context.Context, outcome *webhookOutcome) {
	if outcome == nil || outcome.status == "" {
		return
	}

	order := outcome.order
	s.metrics.IncOrderFinished(string(outcome.status))

	event := events.Event{
		OrderPublicID: order.PublicID,
		VenueID:       order.VenueID,
		UserID:        order.UserID,
		Amount:        order.TotalAmount,
		Currency:      order.Currency,
		OccurredAt:    s.timeProvider.Now(),
	}
	for _, b := range outcome.bookings {
		event.BookingIDs = append(event.BookingIDs, b.ID)
	}

	switch outcome.status {
	case domain.OrderPaid:
		event.Type = events.OrderPaid
		s.publisher.Publish(ctx, event)
		s.sendConfirmation(ctx, order, outcome.bookings)
	case domain.OrderFailed:
		event.Type = events.OrderFailed
		s.publisher.Publish(ctx, event)
	}
}
